package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/llm-router/adapters/anthropicmsg"
	"github.com/braintrustdata/llm-router/adapters/openaichat"
)

// TestTransformRequest_OpenAIToAnthropic translates an OpenAI-shaped body
// with a leading system message into the Anthropic Messages shape: system
// moves to the top-level field and string content becomes a text block
// array.
func TestTransformRequest_OpenAIToAnthropic(t *testing.T) {
	body := []byte(`{"model":"claude-3-5-sonnet-20241022","messages":[{"role":"system","content":"s"},{"role":"user","content":"hi"}],"max_tokens":16}`)

	out, err := TransformRequest(openaichat.New(), anthropicmsg.New(), body)
	require.NoError(t, err)

	var decoded struct {
		Model     string            `json:"model"`
		System    []map[string]any  `json:"system"`
		MaxTokens int               `json:"max_tokens"`
		Messages  []json.RawMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Equal(t, "claude-3-5-sonnet-20241022", decoded.Model)
	require.Equal(t, 16, decoded.MaxTokens)
	require.Len(t, decoded.System, 1)
	require.Equal(t, "s", decoded.System[0]["text"])
	require.Len(t, decoded.Messages, 1)
	require.Contains(t, string(decoded.Messages[0]), `"type":"text"`)
	require.Contains(t, string(decoded.Messages[0]), `"text":"hi"`)
}

// TestTransformRequest_SameFormatSanitizes runs a body through its own
// format and back: the result is semantically equal, and sanitizing twice
// equals sanitizing once.
func TestTransformRequest_SameFormatSanitizes(t *testing.T) {
	a := openaichat.New()
	body := []byte(`{"model": "gpt-4o",   "messages": [{"role":"user","content":"hi"}], "unknown_extraneous_key": 1}`)

	once, err := TransformRequest(a, a, body)
	require.NoError(t, err)
	require.NotContains(t, string(once), "unknown_extraneous_key")

	twice, err := TransformRequest(a, a, once)
	require.NoError(t, err)
	require.JSONEq(t, string(once), string(twice))
}

func TestTransformResponse_AnthropicToOpenAI(t *testing.T) {
	body := []byte(`{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-3-5-sonnet-20241022",
		"content": [{"type":"text","text":"hi there"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 5, "output_tokens": 3}
	}`)

	out, err := TransformResponse(anthropicmsg.New(), openaichat.New(), body)
	require.NoError(t, err)
	require.Contains(t, string(out), `"finish_reason":"stop"`)
	require.Contains(t, string(out), `"hi there"`)
	require.Contains(t, string(out), `"prompt_tokens":5`)
}

// TestTransformChunk_SingleEvent translates one framed Anthropic event into
// OpenAI chunk JSON outside any stream context.
func TestTransformChunk_SingleEvent(t *testing.T) {
	event := []byte(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`)

	frames, err := TransformChunk(anthropicmsg.New(), openaichat.New(), event)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Contains(t, string(frames[0]), `"content":"Hel"`)
}

func TestTransformChunk_IgnoredEventYieldsNothing(t *testing.T) {
	event := []byte(`{"type":"content_block_stop","index":0}`)
	frames, err := TransformChunk(anthropicmsg.New(), openaichat.New(), event)
	require.NoError(t, err)
	require.Empty(t, frames)
}
