package google

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/llm-router/ir"
)

func TestDetectRequest(t *testing.T) {
	a := New()
	require.True(t, a.DetectRequest([]byte(`{"contents":[{"role":"user","parts":[{"text":"hi"}]}]}`)))
	require.False(t, a.DetectRequest([]byte(`{"messages":[{"role":"user","content":"hi"}]}`)))
}

func TestRequestToUniversal_SystemInstruction(t *testing.T) {
	a := New()
	req, err := a.RequestToUniversal([]byte(`{
		"systemInstruction": {"parts":[{"text":"be terse"}]},
		"contents": [{"role":"user","parts":[{"text":"hi"}]}],
		"generationConfig": {"maxOutputTokens": 64, "temperature": 0.3}
	}`))
	require.NoError(t, err)
	require.Equal(t, ir.RoleSystem, req.Messages[0].Role)
	require.Equal(t, "be terse", req.Messages[0].Content.Text)
	require.Equal(t, ir.RoleUser, req.Messages[1].Role)
	require.Equal(t, 64, req.Params.MaxTokens)
	require.NotNil(t, req.Params.Temperature)
}

func TestUniversalToRequest_FlattensConsecutiveAndExtractsSystem(t *testing.T) {
	a := New()
	req := &ir.Request{
		Model: "gemini-2.5-pro",
		Messages: []ir.Message{
			{Role: ir.RoleSystem, Content: ir.NewTextContent("s")},
			{Role: ir.RoleUser, Content: ir.NewTextContent("a")},
			{Role: ir.RoleUser, Content: ir.NewTextContent("b")},
		},
	}
	data, err := a.UniversalToRequest(req)
	require.NoError(t, err)

	back, err := a.RequestToUniversal(data)
	require.NoError(t, err)
	require.Len(t, back.Messages, 2)
	require.Equal(t, "s", back.Messages[0].Content.Text)
}

func TestResponseToUniversal_ToolCall(t *testing.T) {
	a := New()
	resp, err := a.ResponseToUniversal([]byte(`{
		"candidates": [{"content":{"role":"model","parts":[{"functionCall":{"name":"get_weather","args":{"c":"SF"}}}]},"finishReason":"STOP","index":0}],
		"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
	}`))
	require.NoError(t, err)
	require.Equal(t, ir.FinishToolCalls, resp.FinishReason)
	require.Equal(t, "get_weather", resp.Messages[0].ToolCalls[0].Name)
}

func TestStreamDecoder_TextDelta(t *testing.T) {
	a := New()
	dec := a.NewStreamDecoder()
	ev := dec.ParseEvent([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hel"}]},"index":0}]}`))
	require.Equal(t, "chunk", string(ev.Kind))
	require.Equal(t, "Hel", ev.Chunk.Choices[0].Delta.Text)
}
