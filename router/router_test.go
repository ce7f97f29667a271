package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/adapters/anthropicmsg"
	"github.com/braintrustdata/llm-router/adapters/bedrock"
	"github.com/braintrustdata/llm-router/adapters/openaichat"
	"github.com/braintrustdata/llm-router/auth"
)

func testRegistry() *adapters.Registry {
	return adapters.NewRegistry(openaichat.New(), anthropicmsg.New(), bedrock.New())
}

// TestHandle_BedrockDispatchIsSigV4Signed exercises modelId-based Bedrock
// routing end to end: an OpenAI-shaped caller body
// targeting a Bedrock Converse model reaches the upstream with a SigV4
// Authorization header rather than a bearer token, since
// catalog.AuthAWSSigV4 credentials sign the whole request.
func TestHandle_BedrockDispatchIsSigV4Signed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "AWS4-HMAC-SHA256"))
		require.NotEmpty(t, r.Header.Get("X-Amz-Date"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"output": {"message": {"role": "assistant", "content": [{"text": "hi there"}]}},
			"stopReason": "end_turn",
			"usage": {"inputTokens": 5, "outputTokens": 3, "totalTokens": 8}
		}`))
	}))
	defer upstream.Close()

	signer, err := auth.NewAWSSigV4(context.Background(), "us-east-1", "bedrock", "AKIDEXAMPLE", "secret", "")
	require.NoError(t, err)

	rt := NewRouterBuilder(testRegistry()).
		WithProviderConfig("bedrock_converse", ProviderConfig{
			Endpoint: upstream.URL,
			Signer:   signer,
		}).
		Build()

	body := []byte(`{"model":"amazon.titan-text-premier-v1:0","messages":[{"role":"user","content":"hi"}]}`)

	result, err := rt.Handle(context.Background(), body, http.Header{}, nil)
	require.NoError(t, err)
	require.False(t, result.Streaming)
	require.Contains(t, string(result.Body), `"role":"assistant"`)
}

// TestHandle_OpenAIToAnthropicNonStreaming routes an
// OpenAI-shaped caller body to an Anthropic-native model: the body emerges
// translated on the wire, and the translated upstream response comes back
// in the caller's OpenAI shape.
func TestHandle_OpenAIToAnthropicNonStreaming(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer sk-ant-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-3-5-sonnet-20241022",
			"content": [{"type": "text", "text": "hi there"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 5, "output_tokens": 3}
		}`))
	}))
	defer upstream.Close()

	rt := NewRouterBuilder(testRegistry()).
		WithProviderConfig("anthropic", ProviderConfig{
			Endpoint:   upstream.URL,
			Credential: auth.NewStatic("sk-ant-test"),
		}).
		Build()

	body := []byte(`{"model":"claude-3-5-sonnet-20241022","messages":[{"role":"system","content":"s"},{"role":"user","content":"hi"}],"max_tokens":16}`)

	result, err := rt.Handle(context.Background(), body, http.Header{}, nil)
	require.NoError(t, err)
	require.False(t, result.Streaming)
	require.Contains(t, string(result.Body), `"role":"assistant"`)
}

func TestHandle_UnresolvedModel(t *testing.T) {
	rt := NewRouterBuilder(testRegistry()).Build()
	body := []byte(`{"model":"totally-unknown-model-xyz","messages":[{"role":"user","content":"hi"}]}`)

	_, err := rt.Handle(context.Background(), body, http.Header{}, nil)
	require.Error(t, err)
	var unresolved *UnresolvedModelError
	require.ErrorAs(t, err, &unresolved)
}

func TestHandle_MalformedJSON(t *testing.T) {
	rt := NewRouterBuilder(testRegistry()).Build()
	_, err := rt.Handle(context.Background(), []byte(`{not json`), http.Header{}, nil)
	require.Error(t, err)
	var malformed *MalformedRequestError
	require.ErrorAs(t, err, &malformed)
}

func TestHandle_ProviderNotConfigured(t *testing.T) {
	rt := NewRouterBuilder(testRegistry()).Build()
	body := []byte(`{"model":"claude-3-5-sonnet-20241022","messages":[{"role":"user","content":"hi"}],"max_tokens":16}`)

	_, err := rt.Handle(context.Background(), body, http.Header{}, nil)
	require.Error(t, err)
	var notConfigured *ProviderNotConfiguredError
	require.ErrorAs(t, err, &notConfigured)
}

type failingCredential struct{}

func (failingCredential) Bearer(context.Context) (string, error) {
	return "", errors.New("token exchange failed")
}

func TestHandle_AuthErrorWraps(t *testing.T) {
	rt := NewRouterBuilder(testRegistry()).
		WithProviderConfig("anthropic", ProviderConfig{Endpoint: "http://example.invalid", Credential: failingCredential{}}).
		Build()
	body := []byte(`{"model":"claude-3-5-sonnet-20241022","messages":[{"role":"user","content":"hi"}],"max_tokens":16}`)

	_, err := rt.Handle(context.Background(), body, http.Header{}, nil)
	require.Error(t, err)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestHandle_StreamTrueWithoutStreamSink(t *testing.T) {
	rt := NewRouterBuilder(testRegistry()).Build()
	body := []byte(`{"model":"gpt-4o","stream":true,"messages":[{"role":"user","content":"hi"}]}`)

	_, err := rt.Handle(context.Background(), body, http.Header{}, nil)
	require.Error(t, err)
	var malformed *MalformedRequestError
	require.ErrorAs(t, err, &malformed)
}
