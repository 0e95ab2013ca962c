package providerspec

import (
	"fmt"
	"net/http"

	"github.com/taipm/go-llm-gateway/llmerrors"
)

// OpenAIHeaders builds Authorization: Bearer + optional org/project headers
// (spec §6).
func OpenAIHeaders(s *Spec, refreshToken bool) (http.Header, error) {
	h := baseHeaders(s)
	token, err := resolveToken(s, refreshToken)
	if err != nil {
		return nil, err
	}
	h.Set("Authorization", "Bearer "+token)
	if s.Org != "" {
		h.Set("OpenAI-Organization", s.Org)
	}
	if s.Project != "" {
		h.Set("OpenAI-Project", s.Project)
	}
	return h, nil
}

// AnthropicHeaders builds x-api-key + anthropic-version headers.
func AnthropicHeaders(s *Spec, refreshToken bool) (http.Header, error) {
	h := baseHeaders(s)
	token, err := resolveToken(s, refreshToken)
	if err != nil {
		return nil, err
	}
	h.Set("x-api-key", token)
	h.Set("anthropic-version", "2023-06-01")
	return h, nil
}

// GeminiHeaders builds x-goog-api-key unless an Authorization header is
// already present via ExtraHeaders (Vertex bearer mode), in which case the
// api-key header is omitted (spec §6).
func GeminiHeaders(s *Spec, refreshToken bool) (http.Header, error) {
	h := baseHeaders(s)
	if h.Get("Authorization") != "" {
		return h, nil
	}
	token, err := resolveToken(s, refreshToken)
	if err != nil {
		return nil, err
	}
	h.Set("x-goog-api-key", token)
	return h, nil
}

// OllamaHeaders builds no auth header by default.
func OllamaHeaders(s *Spec, refreshToken bool) (http.Header, error) {
	return baseHeaders(s), nil
}

func baseHeaders(s *Spec) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	for k, vs := range s.ExtraHeaders {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	return h
}

func resolveToken(s *Spec, refresh bool) (string, error) {
	if s.TokenProvider != nil {
		token, _, err := s.TokenProvider.Token(refresh)
		if err != nil {
			return "", llmerrors.Wrap(llmerrors.KindAuthentication, "token provider failed", err)
		}
		return token, nil
	}
	if s.APIKey == "" {
		return "", llmerrors.New(llmerrors.KindAuthentication, fmt.Sprintf("%s: missing API key", s.ID))
	}
	return s.APIKey, nil
}
