package anthropicmsg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/llm-router/ir"
)

func TestDetectRequest(t *testing.T) {
	a := New()
	require.True(t, a.DetectRequest([]byte(`{"model":"claude-sonnet-4-5","max_tokens":128,"messages":[]}`)))
	require.False(t, a.DetectRequest([]byte(`{"anthropic_version":"bedrock-2023-05-31","max_tokens":128,"messages":[]}`)))
	require.False(t, a.DetectRequest([]byte(`{"contents":[]}`)))
	require.False(t, a.DetectRequest([]byte(`{"model":"gpt-4o","input":[]}`)))
}

func TestRequestToUniversal_TextOnly(t *testing.T) {
	a := New()
	payload := []byte(`{
		"model": "claude-sonnet-4-5",
		"max_tokens": 256,
		"system": "be terse",
		"messages": [{"role":"user","content":"hello"}]
	}`)

	req, err := a.RequestToUniversal(payload)
	require.NoError(t, err)
	require.Equal(t, "claude-sonnet-4-5", req.Model)
	require.Equal(t, 256, req.Params.MaxTokens)
	require.Len(t, req.Messages, 2)
	require.Equal(t, ir.RoleSystem, req.Messages[0].Role)
	require.Equal(t, "be terse", req.Messages[0].Content.Text)
	require.Equal(t, ir.RoleUser, req.Messages[1].Role)
	require.Equal(t, "hello", req.Messages[1].Content.Text)
}

func TestUniversalToRequest_ToolUse(t *testing.T) {
	a := New()
	req := &ir.Request{
		Model: "claude-sonnet-4-5",
		Params: ir.Params{MaxTokens: 128},
		Messages: []ir.Message{
			{Role: ir.RoleUser, Content: ir.NewTextContent("what's the weather in Boston?")},
		},
		Tools: []ir.Tool{
			{Type: ir.ToolTypeFunction, Name: "get_weather", Description: "fetch weather", Parameters: json.RawMessage(`{"type":"object"}`)},
		},
	}
	data, err := a.UniversalToRequest(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "claude-sonnet-4-5", decoded["model"])
	require.EqualValues(t, 128, decoded["max_tokens"])
	tools, ok := decoded["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
}

func TestResponseToUniversal_TextAndFinish(t *testing.T) {
	a := New()
	payload := []byte(`{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5",
		"content": [{"type":"text","text":"hi there"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 4}
	}`)
	resp, err := a.ResponseToUniversal(payload)
	require.NoError(t, err)
	require.Equal(t, ir.FinishStop, resp.FinishReason)
	require.Equal(t, 10, resp.Usage.InputTokens)
	require.Len(t, resp.Messages, 1)
	require.Equal(t, "hi there", resp.Messages[0].Content.Normalize()[0].(ir.TextPart).Text)
}

func TestResponseToUniversal_ToolUseFinish(t *testing.T) {
	a := New()
	payload := []byte(`{
		"id": "msg_2",
		"content": [{"type":"tool_use","id":"toolu_1","name":"get_weather","input":{"city":"Boston"}}],
		"stop_reason": "tool_use",
		"usage": {"input_tokens": 5, "output_tokens": 2}
	}`)
	resp, err := a.ResponseToUniversal(payload)
	require.NoError(t, err)
	require.Equal(t, ir.FinishToolCalls, resp.FinishReason)
	require.Len(t, resp.Messages[0].ToolCalls, 1)
	require.Equal(t, "get_weather", resp.Messages[0].ToolCalls[0].Name)
}

func TestUniversalToResponse_RoundTripsFinishReason(t *testing.T) {
	a := New()
	data, err := a.UniversalToResponse(&ir.Response{
		ID:           "resp_1",
		Model:        "claude-sonnet-4-5",
		FinishReason: ir.FinishLength,
		Messages:     []ir.Message{{Role: ir.RoleAssistant, Content: ir.NewTextContent("truncated")}},
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "max_tokens", decoded["stop_reason"])
}

func TestStreamDecoder_TextDeltaThenStop(t *testing.T) {
	a := New()
	dec := a.NewStreamDecoder()

	ev1 := dec.ParseEvent([]byte(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hi"}}`))
	require.Equal(t, "chunk", string(ev1.Kind))
	require.Equal(t, "hi", ev1.Chunk.Choices[0].Delta.Text)

	ev2 := dec.ParseEvent([]byte(`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"input_tokens":1,"output_tokens":1}}`))
	require.Equal(t, "chunk", string(ev2.Kind))
	require.NotNil(t, ev2.Chunk.Usage)

	ev3 := dec.ParseEvent([]byte(`{"type":"message_stop"}`))
	require.Equal(t, "chunk", string(ev3.Kind))
	require.Equal(t, ir.FinishStop, ev3.Chunk.Choices[0].FinishReason)
}

func TestStreamDecoder_ToolCallDeltaCarriesNameFromBlockStart(t *testing.T) {
	a := New()
	dec := a.NewStreamDecoder()

	_ = dec.ParseEvent([]byte(`{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_9","name":"get_weather","input":{}}}`))
	ev := dec.ParseEvent([]byte(`{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"city\":"}}`))

	require.Equal(t, "chunk", string(ev.Kind))
	delta := ev.Chunk.Choices[0].Delta.ToolCallDeltas[0]
	require.Equal(t, "toolu_9", delta.ID)
	require.Equal(t, "get_weather", delta.Name)
	require.Equal(t, `{"city":`, delta.ArgumentsDelta)
}

func TestStreamDecoder_MalformedEventIsSoftError(t *testing.T) {
	a := New()
	dec := a.NewStreamDecoder()
	ev := dec.ParseEvent([]byte(`{not json`))
	require.Equal(t, "error", string(ev.Kind))
}

func TestStreamEncoder_TextChunksOpenAndCloseOneBlock(t *testing.T) {
	a := New()
	enc := a.NewStreamEncoder()

	events, err := enc.EncodeChunk(&ir.StreamChunk{
		ID:    "msg_1",
		Model: "claude-sonnet-4-5",
		Choices: []ir.StreamChoice{{Index: 0, Delta: ir.StreamDelta{Text: "hi"}}},
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(events), 2)

	finalEvents, err := enc.EncodeChunk(&ir.StreamChunk{
		Choices: []ir.StreamChoice{{Index: 0, FinishReason: ir.FinishStop}},
	})
	require.NoError(t, err)

	var sawStop bool
	for _, e := range finalEvents {
		var m map[string]any
		require.NoError(t, json.Unmarshal(e, &m))
		if m["type"] == "message_stop" {
			sawStop = true
		}
	}
	require.True(t, sawStop)
}
