package openairesponses

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/llm-router/ir"
)

func TestDetectRequest(t *testing.T) {
	a := New()
	require.True(t, a.DetectRequest([]byte(`{"model":"gpt-4o","input":"hello"}`)))
	require.True(t, a.DetectRequest([]byte(`{"model":"gpt-4o","input":[{"role":"user","content":"hi"}]}`)))
	require.False(t, a.DetectRequest([]byte(`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`)))
	require.False(t, a.DetectRequest([]byte(`{"contents":[]}`)))
}

func TestRequestToUniversal_InstructionsAndInput(t *testing.T) {
	a := New()
	req, err := a.RequestToUniversal([]byte(`{
		"model": "gpt-4o",
		"instructions": "be terse",
		"input": [{"role":"user","content":"hello"}],
		"max_output_tokens": 200
	}`))
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", req.Model)
	require.Equal(t, 200, req.Params.MaxTokens)
	require.Len(t, req.Messages, 2)
	require.Equal(t, ir.RoleSystem, req.Messages[0].Role)
	require.Equal(t, "be terse", req.Messages[0].Content.Text)
	require.Equal(t, ir.RoleUser, req.Messages[1].Role)
}

func TestUniversalToRequest_ReasoningEffort(t *testing.T) {
	a := New()
	req := &ir.Request{
		Model:    "o3-mini",
		Messages: []ir.Message{{Role: ir.RoleUser, Content: ir.NewTextContent("hi")}},
		Params:   ir.Params{Reasoning: &ir.ReasoningConfig{Effort: ir.ReasoningEffortHigh}},
	}
	data, err := a.UniversalToRequest(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	reasoning, ok := decoded["reasoning"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "high", reasoning["effort"])
}

func TestResponseToUniversal_FunctionCall(t *testing.T) {
	a := New()
	resp, err := a.ResponseToUniversal([]byte(`{
		"id": "resp_1",
		"model": "gpt-4o",
		"status": "completed",
		"output": [{"type":"function_call","call_id":"call_1","name":"get_weather","arguments":"{}"}],
		"usage": {"input_tokens": 10, "output_tokens": 5, "total_tokens": 15}
	}`))
	require.NoError(t, err)
	require.Equal(t, ir.FinishToolCalls, resp.FinishReason)
	require.Len(t, resp.Messages[0].ToolCalls, 1)
	require.Equal(t, "get_weather", resp.Messages[0].ToolCalls[0].Name)
}

func TestUniversalToResponse_Text(t *testing.T) {
	a := New()
	resp := &ir.Response{
		ID:           "resp_2",
		Model:        "gpt-4o",
		FinishReason: ir.FinishStop,
		Messages:     []ir.Message{{Role: ir.RoleAssistant, Content: ir.NewTextContent("hi there")}},
	}
	data, err := a.UniversalToResponse(resp)
	require.NoError(t, err)

	var decoded responseWire
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "completed", decoded.Status)
	require.Len(t, decoded.Output, 1)
	require.Equal(t, "message", decoded.Output[0].Type)
	require.Equal(t, "hi there", decoded.Output[0].Content[0].Text)
}

func TestStreamDecoder_FunctionCallArgsAccumulate(t *testing.T) {
	a := New()
	dec := a.NewStreamDecoder()

	ev := dec.ParseEvent([]byte(`{"type":"response.output_item.added","item_id":"item_1","item":{"type":"function_call","call_id":"call_1","name":"get_weather"}}`))
	require.Equal(t, "chunk", string(ev.Kind))
	require.Equal(t, "get_weather", ev.Chunk.Choices[0].Delta.ToolCallDeltas[0].Name)

	ev2 := dec.ParseEvent([]byte(`{"type":"response.function_call_arguments.delta","item_id":"item_1","delta":"{\"c"}`))
	require.Equal(t, "chunk", string(ev2.Kind))
	require.Equal(t, "{\"c", ev2.Chunk.Choices[0].Delta.ToolCallDeltas[0].ArgumentsDelta)

	ev3 := dec.ParseEvent([]byte(`{"type":"response.completed","response":{"status":"completed"}}`))
	require.Equal(t, "chunk", string(ev3.Kind))
	require.Equal(t, ir.FinishToolCalls, ev3.Chunk.Choices[0].FinishReason)
}

func TestStreamEncoder_TextThenFinish(t *testing.T) {
	a := New()
	enc := a.NewStreamEncoder()

	events, err := enc.EncodeChunk(&ir.StreamChunk{Choices: []ir.StreamChoice{{Delta: ir.StreamDelta{Text: "hi"}}}})
	require.NoError(t, err)
	require.Len(t, events, 2)

	events, err = enc.EncodeChunk(&ir.StreamChunk{Choices: []ir.StreamChoice{{FinishReason: ir.FinishStop}}})
	require.NoError(t, err)
	require.Len(t, events, 1)
}
