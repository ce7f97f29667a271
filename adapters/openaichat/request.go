package openaichat

import (
	"encoding/json"
	"strings"

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
	if len(w.Messages) == 0 {
		return nil, adapters.MissingField("messages")
	}

	req := &ir.Request{
		Model:  w.Model,
		Stream: w.Stream,
		Params: ir.Params{
			Temperature:       w.Temperature,
			TopP:              w.TopP,
			PresencePenalty:   w.PresencePenalty,
			FrequencyPenalty:  w.FrequencyPenalty,
			Seed:              w.Seed,
			ParallelToolCalls: w.ParallelToolCalls,
		},
	}
	if w.MaxCompletionTok != nil {
		req.Params.MaxTokens = *w.MaxCompletionTok
	} else if w.MaxTokens != nil {
		req.Params.MaxTokens = *w.MaxTokens
	}
	if w.ReasoningEffort != "" {
		req.Params.Reasoning = &ir.ReasoningConfig{Effort: ir.ReasoningEffort(w.ReasoningEffort)}
	}
	if len(w.Stop) > 0 {
		req.Params.Stop = decodeStopWire(w.Stop)
	}

	for _, m := range w.Messages {
		msg, err := decodeMessageWire(m)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msg)
	}

	for _, t := range w.Tools {
		req.Tools = append(req.Tools, ir.Tool{
			Type:        ir.ToolTypeFunction,
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
		})
	}

	if len(w.ToolChoice) > 0 {
		tc, err := decodeToolChoiceWire(w.ToolChoice)
		if err != nil {
			return nil, err
		}
		req.Params.ToolChoice = tc
	}
	if len(w.ResponseFormat) > 0 {
		rf, err := decodeResponseFormatWire(w.ResponseFormat)
		if err != nil {
			return nil, err
		}
		req.Params.ResponseFormat = rf
	}

	return req, nil
}

func decodeStopWire(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return nil
}

func decodeMessageWire(m messageWire) (ir.Message, error) {
	role, err := openAIRoleToUniversal(m.Role)
	if err != nil {
		return ir.Message{}, err
	}
	msg := ir.Message{Role: role}

	if role == ir.RoleTool {
		msg.ToolCallID = m.ToolCallID
		msg.ToolContent = decodeContentAsToolResult(m.Content)
		return msg, nil
	}

	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	if len(m.Content) > 0 {
		var asString string
		if err := json.Unmarshal(m.Content, &asString); err == nil {
			msg.Content = ir.NewTextContent(asString)
			return msg, nil
		}
		var parts []contentPartWire
		if err := json.Unmarshal(m.Content, &parts); err != nil {
			return ir.Message{}, adapters.ContentFailed("message content is neither a string nor a part array", err)
		}
		var out []ir.Part
		for _, p := range parts {
			switch p.Type {
			case "text":
				out = append(out, ir.TextPart{Text: p.Text})
			case "image_url":
				if p.ImageURL != nil {
					out = append(out, ir.ImagePart{URL: p.ImageURL.URL, Detail: p.ImageURL.Detail})
				}
			}
		}
		msg.Content = ir.NewPartsContent(out...)
	}
	return msg, nil
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
	case "tool":
		return ir.RoleTool, nil
	default:
		return "", adapters.InvalidRole(ir.Role(role))
	}
}

func decodeContentAsToolResult(raw json.RawMessage) any {
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
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	if w.Type == "function" {
		return &ir.ToolChoice{Mode: ir.ToolChoiceSpecific, Name: w.Function.Name}, nil
	}
	return nil, nil
}

func decodeResponseFormatWire(raw json.RawMessage) (*ir.ResponseFormat, error) {
	var w struct {
		Type       string `json:"type"`
		JSONSchema struct {
			Name   string          `json:"name"`
			Schema json.RawMessage `json:"schema"`
			Strict bool            `json:"strict"`
		} `json:"json_schema"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	switch w.Type {
	case "json_object":
		return &ir.ResponseFormat{Type: ir.ResponseFormatJSONObject}, nil
	case "json_schema":
		return &ir.ResponseFormat{
			Type:   ir.ResponseFormatJSONSchema,
			Name:   w.JSONSchema.Name,
			Schema: w.JSONSchema.Schema,
			Strict: w.JSONSchema.Strict,
		}, nil
	default:
		return &ir.ResponseFormat{Type: ir.ResponseFormatText}, nil
	}
}

// reasoningModelPrefixes lists OpenAI reasoning-family model id prefixes
// that reject temperature/top_p and use max_completion_tokens instead of
// max_tokens.
var reasoningModelPrefixes = []string{"o1", "o3", "o4", "gpt-5"}

func isReasoningModel(modelID string) bool {
	lower := strings.ToLower(modelID)
	for _, p := range reasoningModelPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func (*Adapter) UniversalToRequest(req *ir.Request) ([]byte, error) {
	if req.Model == "" {
		return nil, adapters.MissingField("model")
	}
	if len(req.Messages) == 0 {
		return nil, adapters.MissingField("messages")
	}

	w := requestWire{
		Model:             req.Model,
		Stream:            req.Stream,
		PresencePenalty:   req.Params.PresencePenalty,
		FrequencyPenalty:  req.Params.FrequencyPenalty,
		Seed:              req.Params.Seed,
		ParallelToolCalls: req.Params.ParallelToolCalls,
	}

	w.TopP = req.Params.TopP
	// Reasoning-family models reject temperature and take their token
	// limit as max_completion_tokens.
	if isReasoningModel(req.Model) {
		if req.Params.MaxTokens > 0 {
			mt := req.Params.MaxTokens
			w.MaxCompletionTok = &mt
		}
		if req.Params.Reasoning != nil && req.Params.Reasoning.Effort != "" {
			w.ReasoningEffort = string(req.Params.Reasoning.Effort)
		}
	} else {
		w.Temperature = req.Params.Temperature
		if req.Params.MaxTokens > 0 {
			mt := req.Params.MaxTokens
			w.MaxTokens = &mt
		}
	}
	if len(req.Params.Stop) > 0 {
		data, err := json.Marshal(req.Params.Stop)
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
		w.Stop = data
	}

	for _, m := range req.Messages {
		mw, err := encodeMessageWire(m)
		if err != nil {
			return nil, err
		}
		w.Messages = append(w.Messages, mw)
	}

	for _, t := range req.Tools {
		if t.Type != ir.ToolTypeFunction {
			continue
		}
		w.Tools = append(w.Tools, toolWire{
			Type: "function",
			Function: toolFuncWire{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  rawOrEmptyObject(t.Parameters),
			},
		})
	}

	if req.Params.ToolChoice != nil {
		tc, err := encodeToolChoiceWire(req.Params.ToolChoice)
		if err != nil {
			return nil, err
		}
		w.ToolChoice = tc
	}
	if rf := req.Params.ResponseFormat; rf != nil {
		w.ResponseFormat = encodeResponseFormatWire(rf)
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

func encodeMessageWire(m ir.Message) (messageWire, error) {
	role, err := universalRoleToOpenAI(m.Role)
	if err != nil {
		return messageWire{}, err
	}
	mw := messageWire{Role: role}

	if m.Role == ir.RoleTool {
		mw.ToolCallID = m.ToolCallID
		data, err := json.Marshal(toolResultString(m.ToolContent))
		if err != nil {
			return messageWire{}, adapters.JSONFailed(err)
		}
		mw.Content = data
		return mw, nil
	}

	for _, tc := range m.ToolCalls {
		args := string(tc.Arguments)
		if args == "" {
			args = ir.PlaceholderToolArguments
		}
		mw.ToolCalls = append(mw.ToolCalls, toolCallWire{
			ID:   tc.ID,
			Type: "function",
			Function: toolCallFuncWire{
				Name:      tc.Name,
				Arguments: args,
			},
		})
	}

	if !m.Content.IsParts {
		if m.Content.Text != "" || len(mw.ToolCalls) == 0 {
			data, err := json.Marshal(m.Content.Text)
			if err != nil {
				return messageWire{}, adapters.JSONFailed(err)
			}
			mw.Content = data
		}
		return mw, nil
	}

	var parts []contentPartWire
	for _, part := range m.Content.Parts {
		switch v := part.(type) {
		case ir.TextPart:
			parts = append(parts, contentPartWire{Type: "text", Text: v.Text})
		case ir.ImagePart:
			url := v.URL
			if url == "" {
				mime := v.MIME
				if mime == "" {
					mime = ir.DefaultImageMIME
				}
				url = "data:" + mime + ";base64," + v.Base64
			}
			parts = append(parts, contentPartWire{Type: "image_url", ImageURL: &imageURLWire{URL: url, Detail: v.Detail}})
		}
	}
	data, err := json.Marshal(parts)
	if err != nil {
		return messageWire{}, adapters.JSONFailed(err)
	}
	mw.Content = data
	return mw, nil
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
	case ir.RoleTool:
		return "tool", nil
	default:
		return "", adapters.InvalidRole(role)
	}
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
		return json.Marshal(map[string]any{
			"type":     "function",
			"function": map[string]any{"name": choice.Name},
		})
	default:
		return nil, adapters.ContentFailed("unsupported tool choice mode", nil)
	}
}

func encodeResponseFormatWire(rf *ir.ResponseFormat) json.RawMessage {
	switch rf.Type {
	case ir.ResponseFormatJSONObject:
		data, _ := json.Marshal(map[string]any{"type": "json_object"})
		return data
	case ir.ResponseFormatJSONSchema:
		data, _ := json.Marshal(map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   rf.Name,
				"schema": rawOrEmptyObject(rf.Schema),
				"strict": rf.Strict,
			},
		})
		return data
	default:
		data, _ := json.Marshal(map[string]any{"type": "text"})
		return data
	}
}
