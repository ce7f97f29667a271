package anthropicmsg

import (
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

// RequestToUniversal decodes an Anthropic Messages request payload into the
// universal IR. Incoming content is parsed with local wire structs rather
// than anthropic-sdk-go's param types, since those are write-oriented
// builders for outgoing requests, not a decode target for arbitrary
// caller-supplied bytes.
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
			MaxTokens:   w.MaxTokens,
			Temperature: w.Temperature,
			TopP:        w.TopP,
			TopK:        w.TopK,
			Stop:        w.StopSeqs,
		},
	}

	if len(w.System) > 0 {
		sysText, err := decodeSystemBlock(w.System)
		if err != nil {
			return nil, adapters.ContentFailed("decoding system block", err)
		}
		if sysText != "" {
			req.Messages = append(req.Messages, ir.Message{
				Role:    ir.RoleSystem,
				Content: ir.NewTextContent(sysText),
			})
		}
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
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		})
	}

	if len(w.ToolChoice) > 0 {
		tc, err := decodeToolChoiceWire(w.ToolChoice)
		if err != nil {
			return nil, err
		}
		req.Params.ToolChoice = tc
	}

	if w.Thinking != nil && w.Thinking.Type == "enabled" {
		req.Params.Reasoning = &ir.ReasoningConfig{BudgetTokens: w.Thinking.BudgetTokens}
	}
	if w.OutputConfig != nil && w.OutputConfig.Effort != "" {
		req.Params.Reasoning = &ir.ReasoningConfig{Effort: ir.ReasoningEffort(w.OutputConfig.Effort)}
	}

	return req, nil
}

func decodeSystemBlock(raw json.RawMessage) (string, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}
	var blocks []contentBlockWire
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return "", err
	}
	out := ""
	for _, b := range blocks {
		out += b.Text
	}
	return out, nil
}

func decodeMessageWire(m messageWire) (ir.Message, error) {
	role, err := anthropicRoleToUniversal(m.Role)
	if err != nil {
		return ir.Message{}, err
	}
	msg := ir.Message{Role: role}

	var asString string
	if err := json.Unmarshal(m.Content, &asString); err == nil {
		msg.Content = ir.NewTextContent(asString)
		return msg, nil
	}

	var blocks []contentBlockWire
	if err := json.Unmarshal(m.Content, &blocks); err != nil {
		return ir.Message{}, adapters.ContentFailed("message content is neither a string nor a block array", err)
	}

	var parts []ir.Part
	for _, b := range blocks {
		switch b.Type {
		case "text":
			parts = append(parts, ir.TextPart{Text: b.Text})
		case "image":
			parts = append(parts, decodeImageBlock(b))
		case "tool_use":
			msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{ID: b.ID, Name: b.Name, Arguments: b.Input})
		case "tool_result":
			msg.ToolCallID = b.ToolUseID
			msg.ToolIsError = b.IsError
			msg.ToolContent = decodeToolResultContent(b.Content)
		}
	}
	if len(parts) > 0 || (len(blocks) > 0 && msg.Role != ir.RoleTool) {
		msg.Content = ir.NewPartsContent(parts...)
	}
	if msg.ToolCallID != "" {
		msg.Role = ir.RoleTool
	}
	return msg, nil
}

func anthropicRoleToUniversal(role string) (ir.Role, error) {
	switch role {
	case "user":
		return ir.RoleUser, nil
	case "assistant":
		return ir.RoleAssistant, nil
	default:
		return "", &adapters.ConvertError{Kind: adapters.ErrInvalidRole, Message: fmt.Sprintf("unsupported anthropic role %q", role)}
	}
}

func decodeImageBlock(b contentBlockWire) ir.ImagePart {
	var src struct {
		Type      string `json:"type"`
		MediaType string `json:"media_type"`
		Data      string `json:"data"`
		URL       string `json:"url"`
	}
	_ = json.Unmarshal(b.Source, &src)
	if src.Type == "url" {
		return ir.ImagePart{URL: src.URL}
	}
	return ir.ImagePart{Base64: src.Data, MIME: src.MediaType}
}

func decodeToolResultContent(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}

func decodeToolChoiceWire(raw json.RawMessage) (*ir.ToolChoice, error) {
	var w struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	switch w.Type {
	case "auto":
		return &ir.ToolChoice{Mode: ir.ToolChoiceAuto}, nil
	case "none":
		return &ir.ToolChoice{Mode: ir.ToolChoiceNone}, nil
	case "any":
		return &ir.ToolChoice{Mode: ir.ToolChoiceRequired}, nil
	case "tool":
		return &ir.ToolChoice{Mode: ir.ToolChoiceSpecific, Name: w.Name}, nil
	default:
		return nil, nil
	}
}

// UniversalToRequest renders the universal IR as an Anthropic Messages
// request payload. Outgoing bytes are built via anthropic-sdk-go's request
// param constructors (sdk.NewUserMessage, sdk.NewTextBlock, ...) and
// marshaled directly, the same encoding path a live Messages client uses,
// without ever dialing out through the SDK's HTTP transport.
func (a *Adapter) UniversalToRequest(req *ir.Request) ([]byte, error) {
	if req.Model == "" {
		return nil, adapters.MissingField("model")
	}
	maxTokens := req.Params.MaxTokens
	if maxTokens <= 0 {
		return nil, adapters.MissingField("max_tokens")
	}

	canonToSan, toolParams, err := encodeTools(req.Tools)
	if err != nil {
		return nil, err
	}

	msgs, system, err := encodeMessages(req.Messages, canonToSan)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, adapters.MissingField("messages")
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(toolParams) > 0 {
		params.Tools = toolParams
	}
	if req.Params.Temperature != nil {
		params.Temperature = sdk.Float(*req.Params.Temperature)
	}
	if req.Params.TopP != nil {
		params.TopP = sdk.Float(*req.Params.TopP)
	}
	if req.Params.TopK != nil {
		params.TopK = sdk.Int(int64(*req.Params.TopK))
	}
	if len(req.Params.Stop) > 0 {
		params.StopSequences = req.Params.Stop
	}
	if req.Params.ToolChoice != nil {
		tc, err := encodeToolChoice(req.Params.ToolChoice, canonToSan)
		if err != nil {
			return nil, err
		}
		params.ToolChoice = tc
	}
	if r := req.Params.Reasoning; r != nil {
		if isOpusEffortModel(req.Model) && r.Effort != "" {
			// output_config.effort is injected post-marshal below.
		} else if r.BudgetTokens > 0 {
			params.Thinking = sdk.ThinkingConfigParamOfEnabled(int64(r.BudgetTokens))
		}
	}

	data, err := json.Marshal(params)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	if r := req.Params.Reasoning; r != nil && isOpusEffortModel(req.Model) && r.Effort != "" {
		data, err = injectOutputConfigEffort(data, string(r.Effort))
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
	}
	return data, nil
}

func encodeMessages(msgs []ir.Message, canonToSan map[string]string) ([]sdk.MessageParam, []sdk.TextBlockParam, error) {
	conversation := make([]sdk.MessageParam, 0, len(msgs))
	system := make([]sdk.TextBlockParam, 0, len(msgs))

	for _, m := range msgs {
		// Anthropic has no developer role; developer instructions ride in
		// the top-level system field alongside system messages.
		if m.Role == ir.RoleSystem || m.Role == ir.RoleDeveloper {
			if text := contentText(m.Content); text != "" {
				system = append(system, sdk.TextBlockParam{Text: text})
			}
			continue
		}
		if m.Role == ir.RoleTool {
			content := toolResultText(m.ToolContent)
			block := sdk.NewToolResultBlock(m.ToolCallID, content, m.ToolIsError)
			conversation = append(conversation, sdk.NewUserMessage(block))
			continue
		}

		blocks := make([]sdk.ContentBlockParamUnion, 0, len(m.Content.Normalize())+len(m.ToolCalls))
		for _, part := range m.Content.Normalize() {
			switch v := part.(type) {
			case ir.TextPart:
				if v.Text != "" {
					blocks = append(blocks, sdk.NewTextBlock(v.Text))
				}
			case ir.ImagePart:
				blocks = append(blocks, encodeImagePart(v))
			}
		}
		for _, tc := range m.ToolCalls {
			sanitized, ok := canonToSan[tc.Name]
			if !ok {
				sanitized = sanitizeToolName(tc.Name)
			}
			var input any
			if len(tc.Arguments) > 0 {
				if err := json.Unmarshal(tc.Arguments, &input); err != nil {
					return nil, nil, adapters.ContentFailed("tool call arguments are not valid JSON", err)
				}
			} else {
				input = map[string]any{}
			}
			blocks = append(blocks, sdk.NewToolUseBlock(tc.ID, input, sanitized))
		}
		if len(blocks) == 0 {
			continue
		}
		switch m.Role {
		case ir.RoleUser:
			conversation = append(conversation, sdk.NewUserMessage(blocks...))
		case ir.RoleAssistant:
			conversation = append(conversation, sdk.NewAssistantMessage(blocks...))
		default:
			return nil, nil, adapters.InvalidRole(m.Role)
		}
	}
	return conversation, system, nil
}

// contentText flattens a Content value to its concatenated text, ignoring
// non-text parts.
func contentText(c ir.Content) string {
	if !c.IsParts {
		return c.Text
	}
	var sb strings.Builder
	for _, p := range c.Parts {
		if t, ok := p.(ir.TextPart); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}

func toolResultText(content any) string {
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

func encodeImagePart(v ir.ImagePart) sdk.ContentBlockParamUnion {
	if v.URL != "" {
		return sdk.NewImageBlock(sdk.URLImageSourceParam{URL: v.URL})
	}
	mime := v.MIME
	if mime == "" {
		mime = ir.DefaultImageMIME
	}
	return sdk.NewImageBlock(sdk.Base64ImageSourceParam{MediaType: sdk.Base64ImageSourceMediaType(mime), Data: v.Base64})
}

func encodeTools(tools []ir.Tool) (canonToSan map[string]string, out []sdk.ToolUnionParam, err error) {
	if len(tools) == 0 {
		return nil, nil, nil
	}
	canonToSan = make(map[string]string, len(tools))
	sanToCanon := make(map[string]string, len(tools))
	out = make([]sdk.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		if t.Type != ir.ToolTypeFunction {
			continue
		}
		sanitized := sanitizeToolName(t.Name)
		if prev, ok := sanToCanon[sanitized]; ok && prev != t.Name {
			return nil, nil, adapters.ContentFailed(fmt.Sprintf("tool name %q collides with %q after sanitization", t.Name, prev), nil)
		}
		sanToCanon[sanitized] = t.Name
		canonToSan[t.Name] = sanitized

		var schemaFields map[string]any
		if len(t.Parameters) > 0 {
			if err := json.Unmarshal(t.Parameters, &schemaFields); err != nil {
				return nil, nil, adapters.ContentFailed("tool parameters schema is not valid JSON", err)
			}
		}
		u := sdk.ToolUnionParamOfTool(sdk.ToolInputSchemaParam{ExtraFields: schemaFields}, sanitized)
		if u.OfTool != nil && t.Description != "" {
			u.OfTool.Description = sdk.String(t.Description)
		}
		out = append(out, u)
	}
	return canonToSan, out, nil
}

func encodeToolChoice(choice *ir.ToolChoice, canonToSan map[string]string) (sdk.ToolChoiceUnionParam, error) {
	switch choice.Mode {
	case ir.ToolChoiceAuto, "":
		return sdk.ToolChoiceUnionParam{}, nil
	case ir.ToolChoiceNone:
		none := sdk.NewToolChoiceNoneParam()
		return sdk.ToolChoiceUnionParam{OfNone: &none}, nil
	case ir.ToolChoiceRequired:
		return sdk.ToolChoiceUnionParam{OfAny: &sdk.ToolChoiceAnyParam{}}, nil
	case ir.ToolChoiceSpecific:
		sanitized, ok := canonToSan[choice.Name]
		if !ok {
			return sdk.ToolChoiceUnionParam{}, adapters.ContentFailed(fmt.Sprintf("tool choice name %q does not match any declared tool", choice.Name), nil)
		}
		return sdk.ToolChoiceParamOfTool(sanitized), nil
	default:
		return sdk.ToolChoiceUnionParam{}, adapters.ContentFailed(fmt.Sprintf("unsupported tool choice mode %q", choice.Mode), nil)
	}
}

// isOpusEffortModel reports whether modelID belongs to the Claude Opus
// generation (4.5+) that exposes reasoning via output_config.effort instead
// of the legacy thinking.budget_tokens knob. Hosted variants qualify the
// base id ("anthropic.claude-opus-4-5...", "publishers/anthropic/models/
// claude-opus-4-6", region/version suffixes after ':'), so the check runs
// per token after splitting on the qualifier separators.
func isOpusEffortModel(modelID string) bool {
	tokens := strings.FieldsFunc(modelID, func(r rune) bool {
		return r == '.' || r == '/' || r == ':' || r == '@'
	})
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "claude-opus-4-5") || strings.HasPrefix(tok, "claude-opus-4-6") {
			return true
		}
	}
	return false
}

func injectOutputConfigEffort(data []byte, effort string) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	oc, err := json.Marshal(outputConfigWire{Effort: effort})
	if err != nil {
		return nil, err
	}
	m["output_config"] = oc
	delete(m, "thinking")
	return json.Marshal(m)
}
