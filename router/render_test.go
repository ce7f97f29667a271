package router

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/llm-router/adapters"
)

func TestRenderError_OpenAIEnvelope(t *testing.T) {
	status, body := RenderError("openai_chat", &UnresolvedModelError{Model: "nope"}, 0)
	require.Equal(t, http.StatusNotFound, status)

	var decoded struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, "unresolved_model", decoded.Error.Type)
	require.Contains(t, decoded.Error.Message, "nope")
}

func TestRenderError_AnthropicEnvelope(t *testing.T) {
	convErr := &adapters.ConvertError{Kind: adapters.ErrMissingRequiredField, Field: "messages", Message: "required field is missing"}
	status, body := RenderError("anthropic", convErr, 0)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, string(body), `"type":"error"`)
	require.Contains(t, string(body), string(adapters.ErrMissingRequiredField))
}

func TestRenderError_GoogleEnvelope(t *testing.T) {
	status, body := RenderError("google", &MalformedRequestError{Reason: "not json"}, 0)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, string(body), `"code":400`)
	require.Contains(t, string(body), "not json")
}

func TestRenderError_UpstreamStatusCarriesThrough(t *testing.T) {
	status, _ := RenderError("openai_chat", &UpstreamHTTPError{Status: 429, ProviderErrorKind: "rate_limit_error", Message: "slow down"}, 0)
	require.Equal(t, 429, status)
}

func TestRenderError_TruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("x", 5000)
	_, body := RenderError("openai_chat", &UpstreamHTTPError{Status: 500, Message: long}, 0)

	var decoded struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.LessOrEqual(t, len(decoded.Error.Message), DefaultErrorTruncateLimit+len("…"))
	require.True(t, strings.HasSuffix(decoded.Error.Message, "…"))
}
