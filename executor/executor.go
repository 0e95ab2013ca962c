// Package executor does the HTTP orchestration every provider shares: URL
// and header construction via a providerspec.Spec, request/response
// interceptor hooks, retrying per a backoff.Policy, and the single
// 401-retry-with-refresh rule. Grounded in the teacher's
// executeWithRetry/isRetryable/calculateRetryDelay trio
// (agent/builder_execution.go, agent/builder_retry.go), generalized from a
// single adapter call into a provider-agnostic HTTP round trip.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/taipm/go-llm-gateway/backoff"
	"github.com/taipm/go-llm-gateway/cancel"
	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/logging"
	"github.com/taipm/go-llm-gateway/providerspec"
	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/types"
)

// OutboundInterceptor inspects or mutates an outgoing request before it is
// sent. Returning an error aborts the call.
type OutboundInterceptor func(req *http.Request) error

// InboundInterceptor inspects a response before it is parsed. Returning an
// error aborts the call with that error instead of parsing the body.
type InboundInterceptor func(resp *http.Response) error

// Executor performs chat completions (and, via the shared HTTP client, any
// other capability) against one providerspec.Spec.
type Executor struct {
	HTTPClient *http.Client
	Retry      backoff.Policy
	Logger     logging.Logger

	BeforeSend []OutboundInterceptor
	OnResponse []InboundInterceptor
}

// New builds an Executor with a sane default client and retry policy.
func New() *Executor {
	return &Executor{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Retry:      backoff.DefaultPolicy(),
		Logger:     logging.NopLogger{},
	}
}

// Complete performs one non-streaming chat completion against spec.
func (e *Executor) Complete(ctx context.Context, spec *providerspec.Spec, req *types.ChatRequest) (*types.ChatResponse, error) {
	body, err := spec.ChatRequestTransformer.TransformChat(req)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: encode request body", err)
	}

	requestID := uuid.NewString()
	e.Logger.Debug(ctx, "chat request", logging.F("request_id", requestID), logging.F("provider", spec.ID), logging.F("model", req.Common.Model))

	var resp *types.ChatResponse
	err = e.withRetry(ctx, spec.TokenProvider != nil, func(ctx context.Context, attempt int, refreshToken bool) error {
		respBody, statusErr := e.roundTrip(ctx, spec, spec.ChatURL(spec.BaseURL, req.Common.Model), payload, refreshToken)
		if statusErr != nil {
			return statusErr
		}
		parsed, parseErr := spec.ChatResponseTransformer.ParseChat(respBody)
		if parseErr != nil {
			return parseErr
		}
		resp = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Stream performs a streaming chat completion, returning a cancellable
// stream of unified events. The caller owns the returned handle and should
// call Cancel to stop the stream early (spec §4.6).
func (e *Executor) Stream(ctx context.Context, spec *providerspec.Spec, req *types.ChatRequest) (*cancel.CancellableStream[types.ChatStreamEvent], *cancel.Handle, error) {
	req.Stream = true
	body, err := spec.ChatRequestTransformer.TransformChat(req)
	if err != nil {
		return nil, nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: encode request body", err)
	}

	streamURLFn := spec.ChatStreamURL
	if streamURLFn == nil {
		streamURLFn = spec.ChatURL
	}
	httpResp, err := e.doRequestWithAuthRetry(ctx, spec, streamURLFn(spec.BaseURL, req.Common.Model), payload)
	if err != nil {
		return nil, nil, err
	}

	transformer := spec.ChatStreamTransformer()
	byteStream := streamcore.NewByteStream(httpResp.Body, spec.StreamFrameKind, transformer)
	handle := cancel.NewHandle()
	return cancel.NewCancellableStream[types.ChatStreamEvent](byteStream, handle), handle, nil
}

// Embed performs one embedding request against spec, following the same
// transform -> send -> retry -> parse pipeline as Complete (spec §4.3:
// "Each capability has an HTTP executor with the same shape").
func (e *Executor) Embed(ctx context.Context, spec *providerspec.Spec, req *types.EmbeddingRequest) (*types.EmbeddingResponse, error) {
	if spec.EmbeddingRequestTransformer == nil || spec.EmbeddingResponseParser == nil {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "executor: "+spec.ID+" does not support embeddings")
	}

	body, err := spec.EmbeddingRequestTransformer.TransformEmbedding(req)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: encode request body", err)
	}

	requestID := uuid.NewString()
	e.Logger.Debug(ctx, "embedding request", logging.F("request_id", requestID), logging.F("provider", spec.ID), logging.F("model", req.Model))

	var resp *types.EmbeddingResponse
	err = e.withRetry(ctx, spec.TokenProvider != nil, func(ctx context.Context, attempt int, refreshToken bool) error {
		respBody, statusErr := e.roundTrip(ctx, spec, spec.EmbeddingURL(spec.BaseURL, req.Model), payload, refreshToken)
		if statusErr != nil {
			return statusErr
		}
		parsed, parseErr := spec.EmbeddingResponseParser(respBody)
		if parseErr != nil {
			return parseErr
		}
		resp = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GenerateImage performs one image-generation request against spec,
// following the same transform -> send -> retry -> parse pipeline as
// Complete and Embed (spec §4.3: "Each capability has an HTTP executor
// with the same shape"). Warnings returned by the transformer (e.g.
// unsupported size/seed on Imagen) are attached to the parsed response.
func (e *Executor) GenerateImage(ctx context.Context, spec *providerspec.Spec, req *types.ImageGenerationRequest) (*types.ImageGenerationResponse, error) {
	if spec.ImageRequestTransformer == nil || spec.ImageResponseParser == nil {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "executor: "+spec.ID+" does not support image generation")
	}

	body, warnings, err := spec.ImageRequestTransformer.TransformImage(req)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: encode request body", err)
	}

	requestID := uuid.NewString()
	e.Logger.Debug(ctx, "image request", logging.F("request_id", requestID), logging.F("provider", spec.ID), logging.F("model", req.Model))

	var resp *types.ImageGenerationResponse
	err = e.withRetry(ctx, spec.TokenProvider != nil, func(ctx context.Context, attempt int, refreshToken bool) error {
		respBody, statusErr := e.roundTrip(ctx, spec, spec.ImageURL(spec.BaseURL, req.Model), payload, refreshToken)
		if statusErr != nil {
			return statusErr
		}
		parsed, parseErr := spec.ImageResponseParser(respBody)
		if parseErr != nil {
			return parseErr
		}
		resp = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp.Warnings = append(resp.Warnings, warnings...)
	return resp, nil
}

// Rerank performs one document-reranking request against spec, following
// the same transform -> send -> retry -> parse pipeline as Complete/Embed.
func (e *Executor) Rerank(ctx context.Context, spec *providerspec.Spec, req *types.RerankRequest) (*types.RerankResponse, error) {
	if spec.RerankRequestTransformer == nil || spec.RerankResponseParser == nil {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "executor: "+spec.ID+" does not support rerank")
	}

	body, err := spec.RerankRequestTransformer.TransformRerank(req)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: encode request body", err)
	}

	requestID := uuid.NewString()
	e.Logger.Debug(ctx, "rerank request", logging.F("request_id", requestID), logging.F("provider", spec.ID), logging.F("model", req.Model))

	var resp *types.RerankResponse
	err = e.withRetry(ctx, spec.TokenProvider != nil, func(ctx context.Context, attempt int, refreshToken bool) error {
		respBody, statusErr := e.roundTrip(ctx, spec, spec.RerankURL(spec.BaseURL, req.Model), payload, refreshToken)
		if statusErr != nil {
			return statusErr
		}
		parsed, parseErr := spec.RerankResponseParser(respBody)
		if parseErr != nil {
			return parseErr
		}
		resp = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Moderate performs one content-moderation request against spec.
func (e *Executor) Moderate(ctx context.Context, spec *providerspec.Spec, req *types.ModerationRequest) (*types.ModerationResponse, error) {
	if spec.ModerationRequestTransformer == nil || spec.ModerationResponseParser == nil {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "executor: "+spec.ID+" does not support moderation")
	}

	body, err := spec.ModerationRequestTransformer.TransformModeration(req)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: encode request body", err)
	}

	requestID := uuid.NewString()
	e.Logger.Debug(ctx, "moderation request", logging.F("request_id", requestID), logging.F("provider", spec.ID), logging.F("model", req.Model))

	var resp *types.ModerationResponse
	err = e.withRetry(ctx, spec.TokenProvider != nil, func(ctx context.Context, attempt int, refreshToken bool) error {
		respBody, statusErr := e.roundTrip(ctx, spec, spec.ModerationURL(spec.BaseURL, req.Model), payload, refreshToken)
		if statusErr != nil {
			return statusErr
		}
		parsed, parseErr := spec.ModerationResponseParser(respBody)
		if parseErr != nil {
			return parseErr
		}
		resp = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SynthesizeSpeech performs one text-to-speech request against spec. Unlike
// every other capability here, the response body is the audio payload
// itself rather than JSON, so it goes through roundTripContentType to
// recover the response Content-Type instead of roundTrip's JSON-only path.
func (e *Executor) SynthesizeSpeech(ctx context.Context, spec *providerspec.Spec, req *types.TTSRequest) (*types.TTSResponse, error) {
	if spec.TTSRequestTransformer == nil || spec.TTSResponseParser == nil {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "executor: "+spec.ID+" does not support text-to-speech")
	}

	body, err := spec.TTSRequestTransformer.TransformTTS(req)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: encode request body", err)
	}

	requestID := uuid.NewString()
	e.Logger.Debug(ctx, "tts request", logging.F("request_id", requestID), logging.F("provider", spec.ID), logging.F("model", req.Model))

	var resp *types.TTSResponse
	err = e.withRetry(ctx, spec.TokenProvider != nil, func(ctx context.Context, attempt int, refreshToken bool) error {
		respBody, respContentType, statusErr := e.roundTripContentType(ctx, spec, spec.TTSURL(spec.BaseURL, req.Model), payload, "", refreshToken)
		if statusErr != nil {
			return statusErr
		}
		parsed, parseErr := spec.TTSResponseParser(respBody, respContentType)
		if parseErr != nil {
			return parseErr
		}
		resp = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Transcribe performs one speech-to-text request against spec. The request
// transformer builds a multipart/form-data body (spec §4.1); the response
// is a plain JSON envelope like every other capability.
func (e *Executor) Transcribe(ctx context.Context, spec *providerspec.Spec, req *types.STTRequest) (*types.STTResponse, error) {
	if spec.STTRequestTransformer == nil || spec.STTResponseParser == nil {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "executor: "+spec.ID+" does not support speech-to-text")
	}

	form, err := spec.STTRequestTransformer.TransformSTT(req)
	if err != nil {
		return nil, err
	}
	payload, contentType, err := form.Encode()
	if err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: encode multipart body", err)
	}

	requestID := uuid.NewString()
	e.Logger.Debug(ctx, "stt request", logging.F("request_id", requestID), logging.F("provider", spec.ID), logging.F("model", req.Model))

	var resp *types.STTResponse
	err = e.withRetry(ctx, spec.TokenProvider != nil, func(ctx context.Context, attempt int, refreshToken bool) error {
		respBody, _, statusErr := e.roundTripContentType(ctx, spec, spec.STTURL(spec.BaseURL, req.Model), payload, contentType, refreshToken)
		if statusErr != nil {
			return statusErr
		}
		parsed, parseErr := spec.STTResponseParser(respBody)
		if parseErr != nil {
			return parseErr
		}
		resp = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UploadFile performs one file-upload request against spec, the same
// multipart shape as Transcribe.
func (e *Executor) UploadFile(ctx context.Context, spec *providerspec.Spec, req *types.FileUploadRequest) (*types.FileUploadResponse, error) {
	if spec.FilesRequestTransformer == nil || spec.FilesResponseParser == nil {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "executor: "+spec.ID+" does not support file upload")
	}

	form, err := spec.FilesRequestTransformer.TransformFilesUpload(req)
	if err != nil {
		return nil, err
	}
	payload, contentType, err := form.Encode()
	if err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: encode multipart body", err)
	}

	requestID := uuid.NewString()
	e.Logger.Debug(ctx, "file upload request", logging.F("request_id", requestID), logging.F("provider", spec.ID), logging.F("filename", req.Filename))

	var resp *types.FileUploadResponse
	err = e.withRetry(ctx, spec.TokenProvider != nil, func(ctx context.Context, attempt int, refreshToken bool) error {
		respBody, _, statusErr := e.roundTripContentType(ctx, spec, spec.FilesURL(spec.BaseURL), payload, contentType, refreshToken)
		if statusErr != nil {
			return statusErr
		}
		parsed, parseErr := spec.FilesResponseParser(respBody)
		if parseErr != nil {
			return parseErr
		}
		resp = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// withRetry runs op, retrying per e.Retry and classifying errors for
// retryability. A 401 is special-cased: it is retried at most once, and
// only when canRefreshAuth reports a bound TokenProvider that can mint a
// fresh token — never otherwise (spec §4.3/§7, property 6).
func (e *Executor) withRetry(ctx context.Context, canRefreshAuth bool, op func(ctx context.Context, attempt int, refreshToken bool) error) error {
	var lastErr error
	triedAuthRefresh := false

	for attempt := 0; ; attempt++ {
		refreshToken := false
		err := op(ctx, attempt, refreshToken)
		if err == nil {
			return nil
		}
		lastErr = err

		if canRefreshAuth && llmerrors.IsAuthentication(err) && !triedAuthRefresh {
			triedAuthRefresh = true
			e.Logger.Debug(ctx, "retrying once after authentication error with token refresh")
			if refreshErr := op(ctx, attempt, true); refreshErr == nil {
				return nil
			} else {
				lastErr = refreshErr
			}
			if !llmerrors.IsRetryable(lastErr) {
				return lastErr
			}
		}

		// The refresh attempt above is the only retry a 401 ever gets; the
		// backoff loop below never retries an authentication error.
		if llmerrors.IsAuthentication(err) {
			return lastErr
		}
		if !llmerrors.IsRetryable(err) {
			return err
		}
		if !e.Retry.ShouldRetry(attempt + 1) {
			return lastErr
		}

		delay := e.Retry.Delay(attempt)
		e.Logger.Debug(ctx, "retrying after error", logging.F("attempt", attempt+1), logging.F("delay_ms", delay.Milliseconds()), logging.F("error", err.Error()))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return llmerrors.Wrap(llmerrors.KindTimeout, "executor: context cancelled during retry wait", ctx.Err())
		}
	}
}

// roundTrip performs one HTTP round trip and returns the raw response body
// on success, or a classified llmerrors.Error on a non-2xx status.
func (e *Executor) roundTrip(ctx context.Context, spec *providerspec.Spec, url string, payload []byte, refreshToken bool) ([]byte, error) {
	respBody, _, err := e.roundTripContentType(ctx, spec, url, payload, "", refreshToken)
	return respBody, err
}

// roundTripContentType is roundTrip generalized to carry an explicit request
// Content-Type (for multipart/form-data bodies) and to return the
// response's own Content-Type header (for capabilities whose response body
// is not JSON, e.g. TTS audio bytes).
func (e *Executor) roundTripContentType(ctx context.Context, spec *providerspec.Spec, url string, payload []byte, contentType string, refreshToken bool) ([]byte, string, error) {
	httpResp, err := e.doRequest(ctx, spec, url, payload, contentType, refreshToken)
	if err != nil {
		return nil, "", err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, "", llmerrors.Wrap(llmerrors.KindNetworkError, "executor: read response body", err)
	}

	if httpResp.StatusCode >= 300 {
		return nil, "", e.classify(spec, httpResp.StatusCode, respBody)
	}
	return respBody, httpResp.Header.Get("Content-Type"), nil
}

// doRequestWithAuthRetry wraps doRequest for the streaming path, where the
// retry loop lives in withRetry for non-streaming but a stream's first byte
// gates whether we ever enter the stream-event loop at all. The refresh
// retry only fires when spec has a bound TokenProvider (spec §4.3/§7,
// property 6) — without one, a 401 is returned as-is.
func (e *Executor) doRequestWithAuthRetry(ctx context.Context, spec *providerspec.Spec, url string, payload []byte) (*http.Response, error) {
	httpResp, err := e.doRequest(ctx, spec, url, payload, "", false)
	if err == nil && httpResp.StatusCode < 300 {
		return httpResp, nil
	}
	if err == nil {
		defer httpResp.Body.Close()
		body, _ := io.ReadAll(httpResp.Body)
		err = e.classify(spec, httpResp.StatusCode, body)
	}
	if spec.TokenProvider == nil || !llmerrors.IsAuthentication(err) {
		return nil, err
	}
	httpResp, retryErr := e.doRequest(ctx, spec, url, payload, "", true)
	if retryErr != nil {
		return nil, retryErr
	}
	if httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		body, _ := io.ReadAll(httpResp.Body)
		return nil, e.classify(spec, httpResp.StatusCode, body)
	}
	return httpResp, nil
}

// doRequest builds and sends one HTTP request. contentType, when non-empty,
// overrides BuildHeaders' default application/json Content-Type (used for
// multipart/form-data bodies); empty keeps whatever BuildHeaders set.
func (e *Executor) doRequest(ctx context.Context, spec *providerspec.Spec, url string, payload []byte, contentType string, refreshToken bool) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: build request", err)
	}

	headers, err := spec.BuildHeaders(spec, refreshToken)
	if err != nil {
		return nil, err
	}
	httpReq.Header = headers
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for _, hook := range e.BeforeSend {
		if hookErr := hook(httpReq); hookErr != nil {
			return nil, llmerrors.Wrap(llmerrors.KindInvalidInput, "executor: before-send hook", hookErr)
		}
	}

	httpResp, err := e.HTTPClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, llmerrors.Wrap(llmerrors.KindTimeout, "executor: request cancelled", ctx.Err())
		}
		return nil, llmerrors.Wrap(llmerrors.KindNetworkError, "executor: round trip failed", err)
	}

	for _, hook := range e.OnResponse {
		if hookErr := hook(httpResp); hookErr != nil {
			httpResp.Body.Close()
			return nil, llmerrors.Wrap(llmerrors.KindAPIError, "executor: on-response hook", hookErr)
		}
	}

	return httpResp, nil
}

func (e *Executor) classify(spec *providerspec.Spec, statusCode int, body []byte) error {
	if spec.ClassifyError != nil {
		return spec.ClassifyError(statusCode, body)
	}
	return &llmerrors.Error{
		Kind:    llmerrors.KindAPIError,
		Message: fmt.Sprintf("%s: unclassified error", spec.ID),
		Code:    statusCode,
	}
}
