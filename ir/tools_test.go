package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTools() []Tool {
	return []Tool{
		{Type: ToolTypeFunction, Name: "get_weather", Description: "fetch weather", Parameters: json.RawMessage(`{"type":"object"}`)},
		{Type: ToolTypeBuiltin, BuiltinTag: "web_search"},
	}
}

func TestToolsToOpenAIChatValue_NestedFunctionShape(t *testing.T) {
	out := ToolsToOpenAIChatValue(sampleTools())
	require.Len(t, out, 1, "builtin tools have no function rendering")
	require.Equal(t, "function", out[0]["type"])
	fn := out[0]["function"].(map[string]any)
	require.Equal(t, "get_weather", fn["name"])
	require.Equal(t, "fetch weather", fn["description"])
}

func TestToolsToResponsesValue_FlatShape(t *testing.T) {
	out := ToolsToResponsesValue(sampleTools())
	require.Len(t, out, 1)
	require.Equal(t, "function", out[0]["type"])
	require.Equal(t, "get_weather", out[0]["name"])
	_, nested := out[0]["function"]
	require.False(t, nested)
}

func TestToolsToAnthropicValue_InputSchema(t *testing.T) {
	out := ToolsToAnthropicValue(sampleTools())
	require.Len(t, out, 1)
	require.Equal(t, "get_weather", out[0]["name"])
	require.NotNil(t, out[0]["input_schema"])
}

func TestToolConverters_EmptyInput(t *testing.T) {
	require.Nil(t, ToolsToOpenAIChatValue(nil))
	require.Nil(t, ToolsToResponsesValue(nil))
	require.Nil(t, ToolsToAnthropicValue(nil))
}
