package openairesponses

import (
	"encoding/json"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

func (*Adapter) RequestToUniversal(payload []byte) (*ir.Request, error) {
	var w requestWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	if w.Model == "" {
		return nil, adapters.MissingField("model")
	}

	req := &ir.Request{
		Model:  w.Model,
		Stream: w.Stream,
		Params: ir.Params{
			Temperature:       w.Temperature,
			TopP:              w.TopP,
			ParallelToolCalls: w.ParallelToolCalls,
		},
	}
	if w.MaxOutputTokens != nil {
		req.Params.MaxTokens = *w.MaxOutputTokens
	}
	if w.Reasoning != nil && w.Reasoning.Effort != "" {
		req.Params.Reasoning = &ir.ReasoningConfig{Effort: ir.ReasoningEffort(w.Reasoning.Effort)}
	}

	if w.Instructions != "" {
		req.Messages = append(req.Messages, ir.Message{Role: ir.RoleSystem, Content: ir.NewTextContent(w.Instructions)})
	}

	items, err := decodeInputValue(w.Input)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 && w.Instructions == "" {
		return nil, adapters.MissingField("input")
	}
	for _, item := range items {
		switch item.Type {
		case "", "message":
			msg, err := decodeInputItem(item)
			if err != nil {
				return nil, err
			}
			req.Messages = append(req.Messages, msg)
		case "function_call":
			args := json.RawMessage(item.Arguments)
			if len(args) == 0 {
				args = json.RawMessage(ir.PlaceholderToolArguments)
			}
			req.Messages = append(req.Messages, ir.Message{
				Role: ir.RoleAssistant,
				ToolCalls: []ir.ToolCall{{
					ID:        item.CallID,
					Name:      item.Name,
					Arguments: args,
				}},
			})
		case "function_call_output":
			req.Messages = append(req.Messages, ir.Message{
				Role:        ir.RoleTool,
				ToolCallID:  item.CallID,
				ToolContent: decodeOutputContent(item.Output),
			})
		}
	}

	for _, t := range w.Tools {
		if t.Type != "function" {
			continue
		}
		req.Tools = append(req.Tools, ir.Tool{
			Type:        ir.ToolTypeFunction,
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}

	if len(w.ToolChoice) > 0 {
		tc, err := decodeToolChoiceWire(w.ToolChoice)
		if err != nil {
			return nil, err
		}
		req.Params.ToolChoice = tc
	}

	return req, nil
}

// decodeInputValue accepts both forms the Responses API allows for
// "input": a plain string (shorthand for one user message) or an array of
// typed input items.
func decodeInputValue(raw json.RawMessage) ([]inputItemWire, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		content, err := json.Marshal(asString)
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
		return []inputItemWire{{Type: "message", Role: "user", Content: content}}, nil
	}
	var items []inputItemWire
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, adapters.ContentFailed("input is neither a string nor an item array", err)
	}
	return items, nil
}

func decodeInputItem(item inputItemWire) (ir.Message, error) {
	role, err := openAIRoleToUniversal(item.Role)
	if err != nil {
		return ir.Message{}, err
	}
	msg := ir.Message{Role: role}
	if len(item.Content) == 0 {
		return msg, nil
	}
	var asString string
	if err := json.Unmarshal(item.Content, &asString); err == nil {
		msg.Content = ir.NewTextContent(asString)
		return msg, nil
	}
	var parts []inputContentPartWire
	if err := json.Unmarshal(item.Content, &parts); err != nil {
		return ir.Message{}, adapters.ContentFailed("input item content is neither a string nor a part array", err)
	}
	var out []ir.Part
	for _, p := range parts {
		switch p.Type {
		case "input_text", "output_text":
			out = append(out, ir.TextPart{Text: p.Text})
		case "input_image":
			out = append(out, ir.ImagePart{URL: p.ImageURL, Detail: p.Detail})
		}
	}
	msg.Content = ir.NewPartsContent(out...)
	return msg, nil
}

func decodeOutputContent(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}

func openAIRoleToUniversal(role string) (ir.Role, error) {
	switch role {
	case "system":
		return ir.RoleSystem, nil
	case "developer":
		return ir.RoleDeveloper, nil
	case "user":
		return ir.RoleUser, nil
	case "assistant":
		return ir.RoleAssistant, nil
	case "":
		return ir.RoleUser, nil
	default:
		return "", adapters.InvalidRole(ir.Role(role))
	}
}

func decodeToolChoiceWire(raw json.RawMessage) (*ir.ToolChoice, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "auto":
			return &ir.ToolChoice{Mode: ir.ToolChoiceAuto}, nil
		case "none":
			return &ir.ToolChoice{Mode: ir.ToolChoiceNone}, nil
		case "required":
			return &ir.ToolChoice{Mode: ir.ToolChoiceRequired}, nil
		}
		return nil, nil
	}
	var w struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	if w.Type == "function" {
		return &ir.ToolChoice{Mode: ir.ToolChoiceSpecific, Name: w.Name}, nil
	}
	return nil, nil
}

func (*Adapter) UniversalToRequest(req *ir.Request) ([]byte, error) {
	if req.Model == "" {
		return nil, adapters.MissingField("model")
	}

	w := requestWire{
		Model:             req.Model,
		Stream:            req.Stream,
		Temperature:       req.Params.Temperature,
		TopP:              req.Params.TopP,
		ParallelToolCalls: req.Params.ParallelToolCalls,
	}
	if req.Params.MaxTokens > 0 {
		mt := req.Params.MaxTokens
		w.MaxOutputTokens = &mt
	}
	if req.Params.Reasoning != nil && req.Params.Reasoning.Effort != "" {
		w.Reasoning = &reasoningWire{Effort: string(req.Params.Reasoning.Effort)}
	}

	var inputItems []inputItemWire
	for _, m := range req.Messages {
		if m.Role == ir.RoleSystem && w.Instructions == "" {
			w.Instructions = m.Content.Text
			continue
		}
		items, err := encodeInputItems(m)
		if err != nil {
			return nil, err
		}
		inputItems = append(inputItems, items...)
	}
	if len(inputItems) > 0 {
		data, err := json.Marshal(inputItems)
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
		w.Input = data
	}

	for _, t := range req.Tools {
		if t.Type != ir.ToolTypeFunction {
			continue
		}
		w.Tools = append(w.Tools, toolWire{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  rawOrEmptyObject(t.Parameters),
		})
	}

	if req.Params.ToolChoice != nil {
		data, err := encodeToolChoiceWire(req.Params.ToolChoice)
		if err != nil {
			return nil, err
		}
		w.ToolChoice = data
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return data, nil
}

func rawOrEmptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return raw
}

func encodeInputItems(m ir.Message) ([]inputItemWire, error) {
	if m.Role == ir.RoleTool {
		out, err := json.Marshal(toolResultString(m.ToolContent))
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
		return []inputItemWire{{Type: "function_call_output", CallID: m.ToolCallID, Output: out}}, nil
	}

	var items []inputItemWire
	if len(m.ToolCalls) > 0 {
		for _, tc := range m.ToolCalls {
			args := tc.Arguments
			if len(args) == 0 {
				args = json.RawMessage(ir.PlaceholderToolArguments)
			}
			items = append(items, inputItemWire{Type: "function_call", CallID: tc.ID, Name: tc.Name, Arguments: string(args)})
		}
	}

	role, err := universalRoleToOpenAI(m.Role)
	if err != nil {
		return nil, err
	}
	content, hasContent, err := encodeContentWire(m.Content, m.Role == ir.RoleAssistant)
	if err != nil {
		return nil, err
	}
	if hasContent {
		items = append([]inputItemWire{{Type: "message", Role: role, Content: content}}, items...)
	}
	return items, nil
}

func toolResultString(content any) string {
	switch c := content.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		data, err := json.Marshal(c)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func universalRoleToOpenAI(role ir.Role) (string, error) {
	switch role {
	case ir.RoleSystem:
		return "system", nil
	case ir.RoleDeveloper:
		return "developer", nil
	case ir.RoleUser:
		return "user", nil
	case ir.RoleAssistant:
		return "assistant", nil
	default:
		return "", adapters.InvalidRole(role)
	}
}

func encodeContentWire(c ir.Content, isAssistant bool) (json.RawMessage, bool, error) {
	textType := "input_text"
	if isAssistant {
		textType = "output_text"
	}
	if !c.IsParts {
		if c.Text == "" {
			return nil, false, nil
		}
		data, err := json.Marshal([]inputContentPartWire{{Type: textType, Text: c.Text}})
		return data, err == nil, err
	}
	if len(c.Parts) == 0 {
		return nil, false, nil
	}
	var parts []inputContentPartWire
	for _, part := range c.Parts {
		switch v := part.(type) {
		case ir.TextPart:
			parts = append(parts, inputContentPartWire{Type: textType, Text: v.Text})
		case ir.ImagePart:
			url := v.URL
			if url == "" {
				mime := v.MIME
				if mime == "" {
					mime = ir.DefaultImageMIME
				}
				url = "data:" + mime + ";base64," + v.Base64
			}
			parts = append(parts, inputContentPartWire{Type: "input_image", ImageURL: url, Detail: v.Detail})
		}
	}
	if len(parts) == 0 {
		return nil, false, nil
	}
	data, err := json.Marshal(parts)
	if err != nil {
		return nil, false, adapters.JSONFailed(err)
	}
	return data, true, nil
}

func encodeToolChoiceWire(choice *ir.ToolChoice) (json.RawMessage, error) {
	switch choice.Mode {
	case ir.ToolChoiceAuto, "":
		return json.Marshal("auto")
	case ir.ToolChoiceNone:
		return json.Marshal("none")
	case ir.ToolChoiceRequired:
		return json.Marshal("required")
	case ir.ToolChoiceSpecific:
		return json.Marshal(map[string]any{"type": "function", "name": choice.Name})
	default:
		return nil, adapters.ContentFailed("unsupported tool choice mode", nil)
	}
}
