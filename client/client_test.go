package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/executor"
	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/providerspec"
	"github.com/taipm/go-llm-gateway/registry"
	"github.com/taipm/go-llm-gateway/types"
)

func newTestOpenAIServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *registry.Registry) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	spec := providerspec.NewOpenAI("test-key")
	spec.BaseURL = srv.URL

	reg := registry.New()
	reg.Register(spec)
	return srv, reg
}

func TestClient_Chat_ResolvesModelAndStripsPrefix(t *testing.T) {
	var capturedBody map[string]any
	_, reg := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1", "model": "gpt-4o-mini", "created": 1,
			"choices": [{"message": {"content": "hi there"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
		}`))
	})

	c := New(reg, executor.New())
	resp, err := c.Chat(context.Background(), "openai:gpt-4o-mini", &types.ChatRequest{
		Messages: []types.Message{types.User("hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Content)
	assert.Equal(t, "gpt-4o-mini", capturedBody["model"])
}

func TestClient_Chat_UnknownProviderIsNotFound(t *testing.T) {
	c := New(registry.New(), executor.New())
	_, err := c.Chat(context.Background(), "nope:some-model", &types.ChatRequest{
		Messages: []types.Message{types.User("hi")},
	})
	require.Error(t, err)
	assert.True(t, llmerrors.IsNotFound(err))
}

func TestClient_Chat_AppliesMiddlewareChain(t *testing.T) {
	var capturedBody map[string]any
	_, reg := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))
		_, _ = w.Write([]byte(`{"id":"c1","model":"gpt-4o-mini","choices":[{"message":{"content":"ok"},"finish_reason":"stop"}]}`))
	})

	c := New(reg, executor.New()).Use(registry.DefaultParamsMiddleware(0.7, 512))
	_, err := c.Chat(context.Background(), "openai:gpt-4o-mini", &types.ChatRequest{
		Messages: []types.Message{types.User("hello")},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.7, capturedBody["temperature"], 0.0001)
	assert.Equal(t, float64(512), capturedBody["max_tokens"])
}

func TestClient_ChatWithTimeout_DeadlineExceeded(t *testing.T) {
	_, reg := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(`{"id":"c1","model":"m","choices":[{"message":{"content":"late"},"finish_reason":"stop"}]}`))
	})

	c := New(reg, executor.New())
	_, err := c.ChatWithTimeout(context.Background(), "openai:gpt-4o-mini", &types.ChatRequest{
		Messages: []types.Message{types.User("hello")},
	}, 5*time.Millisecond)
	require.Error(t, err)
	assert.True(t, llmerrors.IsTimeout(err))
}

func TestClient_Embed_ResolvesModelAndHitsEmbeddingURL(t *testing.T) {
	var hitPath string
	_, reg := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		hitPath = r.URL.Path
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2]}],"model":"text-embedding-3-small"}`))
	})

	c := New(reg, executor.New())
	resp, err := c.Embed(context.Background(), "openai:text-embedding-3-small", &types.EmbeddingRequest{
		Input: []string{"hello"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Vectors, 1)
	assert.Equal(t, []float64{0.1, 0.2}, resp.Vectors[0])
	assert.Equal(t, "/embeddings", hitPath)
}

func TestClient_Embed_UnsupportedProviderReturnsUnsupportedOp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(srv.Close)
	spec := providerspec.NewAnthropic("test-key")
	spec.BaseURL = srv.URL
	reg := registry.New()
	reg.Register(spec)

	c := New(reg, executor.New())
	_, err := c.Embed(context.Background(), "anthropic:claude-3", &types.EmbeddingRequest{
		Input: []string{"hello"},
	})
	require.Error(t, err)
	assert.True(t, llmerrors.IsUnsupportedOp(err))
}

func TestClient_Rerank_ResolvesModelAndHitsRerankURL(t *testing.T) {
	var hitPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitPath = r.URL.Path
		_, _ = w.Write([]byte(`{"results":[{"index":0,"relevance_score":0.5}]}`))
	}))
	t.Cleanup(srv.Close)
	spec := providerspec.NewOpenAICompat("siliconflow", srv.URL, "key")
	reg := registry.New()
	reg.Register(spec)

	c := New(reg, executor.New())
	resp, err := c.Rerank(context.Background(), "siliconflow:bge-reranker-v2-m3", &types.RerankRequest{
		Query:     "cat",
		Documents: []string{"dog"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "/rerank", hitPath)
}

func TestClient_Rerank_UnsupportedProviderReturnsUnsupportedOp(t *testing.T) {
	_, reg := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {})
	c := New(reg, executor.New())
	_, err := c.Rerank(context.Background(), "openai:gpt-4o-mini", &types.RerankRequest{Query: "q", Documents: []string{"d"}})
	require.Error(t, err)
	assert.True(t, llmerrors.IsUnsupportedOp(err))
}

func TestClient_Moderate_ResolvesModelAndHitsModerationURL(t *testing.T) {
	var hitPath string
	_, reg := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		hitPath = r.URL.Path
		_, _ = w.Write([]byte(`{"results":[{"flagged":false,"categories":{},"category_scores":{}}]}`))
	})

	c := New(reg, executor.New())
	_, err := c.Moderate(context.Background(), "openai:omni-moderation-latest", &types.ModerationRequest{Input: []string{"hi"}})
	require.NoError(t, err)
	assert.Equal(t, "/moderations", hitPath)
}

func TestClient_SynthesizeSpeech_HitsTTSURL(t *testing.T) {
	var hitPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitPath = r.URL.Path
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("audio-bytes"))
	}))
	t.Cleanup(srv.Close)
	spec := providerspec.NewOpenAI("key")
	spec.BaseURL = srv.URL
	reg := registry.New()
	reg.Register(spec)

	c := New(reg, executor.New())
	resp, err := c.SynthesizeSpeech(context.Background(), "openai:tts-1", &types.TTSRequest{Input: "hi", Voice: "alloy"})
	require.NoError(t, err)
	assert.Equal(t, "/audio/speech", hitPath)
	assert.Equal(t, []byte("audio-bytes"), resp.AudioData)
}

func TestClient_Transcribe_HitsSTTURL(t *testing.T) {
	var hitPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitPath = r.URL.Path
		_, _ = w.Write([]byte(`{"text":"hi"}`))
	}))
	t.Cleanup(srv.Close)
	spec := providerspec.NewOpenAI("key")
	spec.BaseURL = srv.URL
	reg := registry.New()
	reg.Register(spec)

	c := New(reg, executor.New())
	resp, err := c.Transcribe(context.Background(), "openai:whisper-1", &types.STTRequest{AudioData: []byte("raw"), AudioMime: "audio/mpeg"})
	require.NoError(t, err)
	assert.Equal(t, "/audio/transcriptions", hitPath)
	assert.Equal(t, "hi", resp.Text)
}

func TestClient_UploadFile_HitsFilesURL(t *testing.T) {
	var hitPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitPath = r.URL.Path
		_, _ = w.Write([]byte(`{"id":"file-1","filename":"doc.pdf","bytes":4}`))
	}))
	t.Cleanup(srv.Close)
	spec := providerspec.NewOpenAI("key")
	spec.BaseURL = srv.URL
	reg := registry.New()
	reg.Register(spec)

	c := New(reg, executor.New())
	resp, err := c.UploadFile(context.Background(), "openai", &types.FileUploadRequest{Filename: "doc.pdf", Data: []byte("data")})
	require.NoError(t, err)
	assert.Equal(t, "/files", hitPath)
	assert.Equal(t, "file-1", resp.ID)
}

func TestClient_ChatStream_StreamsContentDeltas(t *testing.T) {
	_, reg := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`{"id":"c1","model":"gpt-4o-mini","choices":[{"delta":{"content":"Hel"},"finish_reason":null}]}`,
			`{"id":"c1","model":"gpt-4o-mini","choices":[{"delta":{"content":"lo"},"finish_reason":"stop"}]}`,
		}
		for _, c := range chunks {
			_, _ = w.Write([]byte("data: " + c + "\n\n"))
		}
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	})

	c := New(reg, executor.New())
	stream, handle, err := c.ChatStream(context.Background(), "openai:gpt-4o-mini", &types.ChatRequest{
		Messages: []types.Message{types.User("hello")},
	})
	require.NoError(t, err)
	defer handle.Cancel()

	var content string
	for {
		ev, ok, err := stream.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		if ev.Kind == types.EventContentDelta {
			content += ev.Delta
		}
	}
	assert.Equal(t, "Hello", content)
}
