package ir

import "encoding/json"

// ToolsToOpenAIChatValue renders tools in OpenAI Chat Completions'
// {type:"function", function:{name,description,parameters}} nested shape.
func ToolsToOpenAIChatValue(tools []Tool) []map[string]any {
	if len(tools) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		if t.Type != ToolTypeFunction {
			continue
		}
		fn := map[string]any{
			"name": t.Name,
		}
		if t.Description != "" {
			fn["description"] = t.Description
		}
		fn["parameters"] = rawOrEmptyObject(t.Parameters)
		out = append(out, map[string]any{
			"type":     "function",
			"function": fn,
		})
	}
	return out
}

// ToolsToResponsesValue renders tools in OpenAI Responses' flat
// {type:"function", name, parameters} shape.
func ToolsToResponsesValue(tools []Tool) []map[string]any {
	if len(tools) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		if t.Type != ToolTypeFunction {
			continue
		}
		entry := map[string]any{
			"type": "function",
			"name": t.Name,
		}
		if t.Description != "" {
			entry["description"] = t.Description
		}
		entry["parameters"] = rawOrEmptyObject(t.Parameters)
		out = append(out, entry)
	}
	return out
}

// ToolsToAnthropicValue renders tools in Anthropic's
// {name, description, input_schema} shape.
func ToolsToAnthropicValue(tools []Tool) []map[string]any {
	if len(tools) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		if t.Type != ToolTypeFunction {
			continue
		}
		entry := map[string]any{
			"name":         t.Name,
			"input_schema": rawOrEmptyObject(t.Parameters),
		}
		if t.Description != "" {
			entry["description"] = t.Description
		}
		out = append(out, entry)
	}
	return out
}

func rawOrEmptyObject(raw json.RawMessage) any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return map[string]any{}
	}
	return v
}
