package openaichat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/llm-router/ir"
)

func TestDetectRequest(t *testing.T) {
	a := New()
	require.True(t, a.DetectRequest([]byte(`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`)))
	require.False(t, a.DetectRequest([]byte(`{"model":"claude-sonnet-4-5","max_tokens":10,"messages":[{"role":"user","content":"hi"}],"anthropic_version":"x"}`)))
	require.False(t, a.DetectRequest([]byte(`{"contents":[]}`)))
}

func TestRequestToUniversal_Basic(t *testing.T) {
	a := New()
	req, err := a.RequestToUniversal([]byte(`{
		"model": "gpt-4o",
		"messages": [{"role":"user","content":"hello"}],
		"temperature": 0.5,
		"max_tokens": 100
	}`))
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", req.Model)
	require.Equal(t, 100, req.Params.MaxTokens)
	require.NotNil(t, req.Params.Temperature)
	require.Equal(t, 0.5, *req.Params.Temperature)
}

func TestUniversalToRequest_ReasoningModelRewrite(t *testing.T) {
	a := New()
	temp := 0.7
	req := &ir.Request{
		Model: "o3-mini",
		Messages: []ir.Message{{Role: ir.RoleUser, Content: ir.NewTextContent("hi")}},
		Params: ir.Params{MaxTokens: 500, Temperature: &temp},
	}
	data, err := a.UniversalToRequest(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	_, hasTemp := decoded["temperature"]
	require.False(t, hasTemp)
	_, hasMaxTokens := decoded["max_tokens"]
	require.False(t, hasMaxTokens)
	require.EqualValues(t, 500, decoded["max_completion_tokens"])
}

func TestUniversalToRequest_NonReasoningModelKeepsTemperature(t *testing.T) {
	a := New()
	temp := 0.9
	req := &ir.Request{
		Model: "gpt-4o",
		Messages: []ir.Message{{Role: ir.RoleUser, Content: ir.NewTextContent("hi")}},
		Params: ir.Params{MaxTokens: 500, Temperature: &temp},
	}
	data, err := a.UniversalToRequest(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.EqualValues(t, 500, decoded["max_tokens"])
	require.EqualValues(t, 0.9, decoded["temperature"])
}

func TestResponseToUniversal_ToolCalls(t *testing.T) {
	a := New()
	resp, err := a.ResponseToUniversal([]byte(`{
		"id": "chatcmpl-1",
		"model": "gpt-4o",
		"choices": [{
			"index": 0,
			"message": {"role":"assistant","content":null,"tool_calls":[{"id":"call_1","type":"function","function":{"name":"get_weather","arguments":"{}"}}]},
			"finish_reason": "tool_calls"
		}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`))
	require.NoError(t, err)
	require.Equal(t, ir.FinishToolCalls, resp.FinishReason)
	require.Len(t, resp.Messages[0].ToolCalls, 1)
	require.Equal(t, "get_weather", resp.Messages[0].ToolCalls[0].Name)
}

func TestStreamDecoder_DoneSentinel(t *testing.T) {
	a := New()
	dec := a.NewStreamDecoder()
	ev := dec.ParseEvent([]byte("[DONE]"))
	require.Equal(t, "done", string(ev.Kind))
}

func TestStreamDecoder_ToolCallDeltaSelfContained(t *testing.T) {
	a := New()
	dec := a.NewStreamDecoder()
	ev := dec.ParseEvent([]byte(`{"id":"x","model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"get_weather","arguments":"{\"c"}}]}}]}`))
	require.Equal(t, "chunk", string(ev.Kind))
	require.Equal(t, "get_weather", ev.Chunk.Choices[0].Delta.ToolCallDeltas[0].Name)
}
