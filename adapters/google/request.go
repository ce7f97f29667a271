package google

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
	if len(w.Contents) == 0 {
		return nil, adapters.MissingField("contents")
	}

	req := &ir.Request{Model: ir.PlaceholderModel}

	if w.SystemInstruction != nil {
		text := flattenPartsToText(w.SystemInstruction.Parts)
		req.Messages = append(req.Messages, ir.Message{Role: ir.RoleSystem, Content: ir.NewTextContent(text)})
	}

	for _, c := range w.Contents {
		msg, err := decodeContentWire(c)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msg)
	}

	if w.GenerationConfig != nil {
		g := w.GenerationConfig
		req.Params.Temperature = g.Temperature
		req.Params.TopP = g.TopP
		req.Params.TopK = g.TopK
		req.Params.PresencePenalty = g.PresencePenalty
		req.Params.FrequencyPenalty = g.FrequencyPenalty
		req.Params.Seed = g.Seed
		req.Params.Stop = g.StopSequences
		if g.MaxOutputTokens != nil {
			req.Params.MaxTokens = *g.MaxOutputTokens
		}
		if g.ThinkingConfig != nil && g.ThinkingConfig.ThinkingBudget != nil {
			req.Params.Reasoning = &ir.ReasoningConfig{BudgetTokens: *g.ThinkingConfig.ThinkingBudget}
		}
		if g.ResponseMimeType == "application/json" {
			rf := &ir.ResponseFormat{Type: ir.ResponseFormatJSONObject}
			if len(g.ResponseSchema) > 0 {
				rf.Type = ir.ResponseFormatJSONSchema
				rf.Schema = g.ResponseSchema
			}
			req.Params.ResponseFormat = rf
		}
	}

	for _, t := range w.Tools {
		for _, fn := range t.FunctionDeclarations {
			req.Tools = append(req.Tools, ir.Tool{
				Type:        ir.ToolTypeFunction,
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  fn.Parameters,
			})
		}
	}
	if w.ToolConfig != nil && w.ToolConfig.FunctionCallingConfig != nil {
		req.Params.ToolChoice = decodeToolChoiceWire(w.ToolConfig.FunctionCallingConfig)
	}

	return req, nil
}

func flattenPartsToText(parts []partWire) string {
	var out string
	for _, p := range parts {
		out += p.Text
	}
	return out
}

func decodeContentWire(c contentWire) (ir.Message, error) {
	role, err := googleRoleToUniversal(c.Role)
	if err != nil {
		return ir.Message{}, err
	}

	msg := ir.Message{Role: role}
	var out []ir.Part
	for _, p := range c.Parts {
		switch {
		case p.FunctionCall != nil:
			args := p.FunctionCall.Args
			if len(args) == 0 {
				args = json.RawMessage(ir.PlaceholderToolArguments)
			}
			msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{
				ID:        p.FunctionCall.Name,
				Name:      p.FunctionCall.Name,
				Arguments: args,
			})
		case p.FunctionResponse != nil:
			msg.ToolCallID = p.FunctionResponse.Name
			msg.ToolContent = decodeFunctionResponseContent(p.FunctionResponse.Response)
		case p.InlineData != nil:
			out = append(out, ir.ImagePart{Base64: p.InlineData.Data, MIME: p.InlineData.MimeType})
		default:
			out = append(out, ir.TextPart{Text: p.Text})
		}
	}
	if len(out) > 0 {
		msg.Content = ir.NewPartsContent(out...)
	}
	if role == ir.RoleTool && msg.ToolContent == nil && len(out) == 1 {
		if t, ok := out[0].(ir.TextPart); ok {
			msg.ToolContent = t.Text
			msg.Content = ir.Content{}
		}
	}
	return msg, nil
}

func decodeFunctionResponseContent(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func googleRoleToUniversal(role string) (ir.Role, error) {
	switch role {
	case "", "user":
		return ir.RoleUser, nil
	case "model":
		return ir.RoleAssistant, nil
	case "function":
		return ir.RoleTool, nil
	default:
		return "", adapters.InvalidRole(ir.Role(role))
	}
}

func decodeToolChoiceWire(cfg *functionCallingCfgWire) *ir.ToolChoice {
	switch cfg.Mode {
	case "ANY":
		if len(cfg.AllowedFunctionNames) == 1 {
			return &ir.ToolChoice{Mode: ir.ToolChoiceSpecific, Name: cfg.AllowedFunctionNames[0]}
		}
		return &ir.ToolChoice{Mode: ir.ToolChoiceRequired}
	case "NONE":
		return &ir.ToolChoice{Mode: ir.ToolChoiceNone}
	default:
		return &ir.ToolChoice{Mode: ir.ToolChoiceAuto}
	}
}

// UniversalToRequest renders a universal request as a Google generateContent
// body. System messages are extracted to the top-level systemInstruction
// field and consecutive same-role turns are merged, since Google rejects
// (or silently misbehaves on) adjacent same-role contents.
func (*Adapter) UniversalToRequest(req *ir.Request) ([]byte, error) {
	if len(req.Messages) == 0 {
		return nil, adapters.MissingField("messages")
	}

	system, rest := ir.ExtractSystemMessages(req.Messages)
	rest = ir.FlattenConsecutiveMessages(rest)

	w := requestWire{}
	if len(system) > 0 {
		var text string
		for _, m := range system {
			for _, p := range m.Content.Normalize() {
				if t, ok := p.(ir.TextPart); ok {
					text += t.Text
				}
			}
		}
		w.SystemInstruction = &contentWire{Parts: []partWire{{Text: text}}}
	}

	for _, m := range rest {
		cw, err := encodeContentWire(m)
		if err != nil {
			return nil, err
		}
		w.Contents = append(w.Contents, cw)
	}

	g := &generationCfgWire{
		Temperature:      req.Params.Temperature,
		TopP:             req.Params.TopP,
		TopK:             req.Params.TopK,
		PresencePenalty:  req.Params.PresencePenalty,
		FrequencyPenalty: req.Params.FrequencyPenalty,
		Seed:             req.Params.Seed,
		StopSequences:    req.Params.Stop,
	}
	if req.Params.MaxTokens > 0 {
		mt := req.Params.MaxTokens
		g.MaxOutputTokens = &mt
	}
	if req.Params.Reasoning != nil && req.Params.Reasoning.BudgetTokens > 0 {
		budget := req.Params.Reasoning.BudgetTokens
		g.ThinkingConfig = &thinkingCfgWire{ThinkingBudget: &budget}
	}
	if rf := req.Params.ResponseFormat; rf != nil {
		switch rf.Type {
		case ir.ResponseFormatJSONObject:
			g.ResponseMimeType = "application/json"
		case ir.ResponseFormatJSONSchema:
			g.ResponseMimeType = "application/json"
			g.ResponseSchema = rf.Schema
		}
	}
	w.GenerationConfig = g

	if len(req.Tools) > 0 {
		var decls []functionDeclWire
		for _, t := range req.Tools {
			if t.Type != ir.ToolTypeFunction {
				continue
			}
			decls = append(decls, functionDeclWire{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
		}
		if len(decls) > 0 {
			w.Tools = []toolWire{{FunctionDeclarations: decls}}
		}
	}
	if req.Params.ToolChoice != nil {
		w.ToolConfig = &toolConfigWire{FunctionCallingConfig: encodeToolChoiceWire(req.Params.ToolChoice)}
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return data, nil
}

func encodeContentWire(m ir.Message) (contentWire, error) {
	role, err := universalRoleToGoogle(m.Role)
	if err != nil {
		return contentWire{}, err
	}
	cw := contentWire{Role: role}

	if m.Role == ir.RoleTool {
		respJSON, err := encodeToolResultJSON(m.ToolContent)
		if err != nil {
			return contentWire{}, err
		}
		cw.Parts = append(cw.Parts, partWire{FunctionResponse: &funcResponseWire{Name: m.ToolCallID, Response: respJSON}})
		return cw, nil
	}

	for _, tc := range m.ToolCalls {
		args := tc.Arguments
		if len(args) == 0 {
			args = json.RawMessage(ir.PlaceholderToolArguments)
		}
		cw.Parts = append(cw.Parts, partWire{FunctionCall: &functionCallWire{Name: tc.Name, Args: args}})
	}

	for _, p := range m.Content.Normalize() {
		switch v := p.(type) {
		case ir.TextPart:
			cw.Parts = append(cw.Parts, partWire{Text: v.Text})
		case ir.ImagePart:
			mime := v.MIME
			if mime == "" {
				mime = ir.DefaultImageMIME
			}
			cw.Parts = append(cw.Parts, partWire{InlineData: &inlineDataWire{MimeType: mime, Data: v.Base64}})
		}
	}
	return cw, nil
}

func encodeToolResultJSON(content any) (json.RawMessage, error) {
	switch c := content.(type) {
	case nil:
		return json.RawMessage(`{}`), nil
	case string:
		data, err := json.Marshal(map[string]any{"content": c})
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
		return data, nil
	default:
		data, err := json.Marshal(c)
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
		return data, nil
	}
}

func universalRoleToGoogle(role ir.Role) (string, error) {
	switch role {
	case ir.RoleUser, ir.RoleSystem, ir.RoleDeveloper:
		return "user", nil
	case ir.RoleAssistant:
		return "model", nil
	case ir.RoleTool:
		return "function", nil
	default:
		return "", adapters.InvalidRole(role)
	}
}

func encodeToolChoiceWire(choice *ir.ToolChoice) *functionCallingCfgWire {
	switch choice.Mode {
	case ir.ToolChoiceNone:
		return &functionCallingCfgWire{Mode: "NONE"}
	case ir.ToolChoiceRequired:
		return &functionCallingCfgWire{Mode: "ANY"}
	case ir.ToolChoiceSpecific:
		return &functionCallingCfgWire{Mode: "ANY", AllowedFunctionNames: []string{choice.Name}}
	default:
		return &functionCallingCfgWire{Mode: "AUTO"}
	}
}
