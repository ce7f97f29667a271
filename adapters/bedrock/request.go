package bedrock

import (
	"encoding/json"
	"strconv"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

func (*Adapter) RequestToUniversal(payload []byte) (*ir.Request, error) {
	var w converseRequestWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	if w.ModelID == "" {
		return nil, adapters.MissingField("modelId")
	}

	req := &ir.Request{Model: w.ModelID}

	if w.ToolConfig != nil {
		for _, t := range w.ToolConfig.Tools {
			if t.ToolSpec == nil {
				continue
			}
			req.Tools = append(req.Tools, ir.Tool{
				Type:        ir.ToolTypeFunction,
				Name:        t.ToolSpec.Name,
				Description: t.ToolSpec.Description,
				Parameters:  t.ToolSpec.InputSchema.JSON,
			})
		}
		if tc, err := decodeToolChoiceWire(w.ToolConfig.ToolChoice); err == nil && tc != nil {
			req.Params.ToolChoice = tc
		}
	}

	for _, s := range w.System {
		if s.Text != "" {
			req.Messages = append(req.Messages, ir.Message{Role: ir.RoleSystem, Content: ir.NewTextContent(s.Text)})
		}
	}

	for _, m := range w.Messages {
		msgs, err := decodeConverseMessage(m)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msgs...)
	}

	if w.InferenceConfig != nil {
		if w.InferenceConfig.MaxTokens != nil {
			req.Params.MaxTokens = *w.InferenceConfig.MaxTokens
		}
		req.Params.Temperature = w.InferenceConfig.Temperature
		req.Params.TopP = w.InferenceConfig.TopP
		req.Params.Stop = w.InferenceConfig.StopSequences
	}

	return req, nil
}

func decodeConverseMessage(m messageWire) ([]ir.Message, error) {
	role, err := converseRoleToUniversal(m.Role)
	if err != nil {
		return nil, err
	}

	var parts []ir.Part
	var toolCalls []ir.ToolCall
	var toolResults []ir.Message

	for _, block := range m.Content {
		switch {
		case block.Text != "":
			parts = append(parts, ir.TextPart{Text: block.Text})
		case block.ToolUse != nil:
			toolCalls = append(toolCalls, ir.ToolCall{
				ID:        block.ToolUse.ToolUseID,
				Name:      block.ToolUse.Name,
				Arguments: block.ToolUse.Input,
			})
		case block.ToolResult != nil:
			toolResults = append(toolResults, ir.Message{
				Role:        ir.RoleTool,
				ToolCallID:  block.ToolResult.ToolUseID,
				ToolContent: decodeToolResultContent(block.ToolResult.Content),
				ToolIsError: block.ToolResult.Status == "error",
			})
		case block.ReasoningContent != nil && block.ReasoningContent.ReasoningText != nil:
			parts = append(parts, ir.ReasoningPart{
				Text:      block.ReasoningContent.ReasoningText.Text,
				Signature: block.ReasoningContent.ReasoningText.Signature,
			})
		case block.Image != nil:
			parts = append(parts, ir.ImagePart{Base64: block.Image.Source.Bytes, MIME: "image/" + block.Image.Format})
		}
	}

	if len(toolResults) > 0 {
		return toolResults, nil
	}

	msg := ir.Message{Role: role, ToolCalls: toolCalls}
	if len(parts) > 0 {
		msg.Content = ir.NewPartsContent(parts...)
	}
	return []ir.Message{msg}, nil
}

func decodeToolResultContent(blocks []toolResultContentWire) any {
	if len(blocks) == 1 && blocks[0].Text != "" {
		return blocks[0].Text
	}
	var out []any
	for _, b := range blocks {
		if b.Text != "" {
			out = append(out, b.Text)
		} else if len(b.JSON) > 0 {
			var v any
			if err := json.Unmarshal(b.JSON, &v); err == nil {
				out = append(out, v)
			}
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func converseRoleToUniversal(role string) (ir.Role, error) {
	switch role {
	case "user":
		return ir.RoleUser, nil
	case "assistant":
		return ir.RoleAssistant, nil
	default:
		return "", adapters.InvalidRole(ir.Role(role))
	}
}

func decodeToolChoiceWire(raw json.RawMessage) (*ir.ToolChoice, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var w struct {
		Auto *struct{} `json:"auto,omitempty"`
		Any  *struct{} `json:"any,omitempty"`
		Tool *struct {
			Name string `json:"name"`
		} `json:"tool,omitempty"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	switch {
	case w.Any != nil:
		return &ir.ToolChoice{Mode: ir.ToolChoiceRequired}, nil
	case w.Tool != nil:
		return &ir.ToolChoice{Mode: ir.ToolChoiceSpecific, Name: w.Tool.Name}, nil
	default:
		return &ir.ToolChoice{Mode: ir.ToolChoiceAuto}, nil
	}
}

func (*Adapter) UniversalToRequest(req *ir.Request) ([]byte, error) {
	if req.Model == "" {
		return nil, adapters.MissingField("model")
	}

	w := converseRequestWire{ModelID: req.Model}

	canonToSan := map[string]string{}
	for _, t := range req.Tools {
		if t.Type != ir.ToolTypeFunction {
			continue
		}
		sanitized := sanitizeToolName(t.Name)
		canonToSan[t.Name] = sanitized
		if w.ToolConfig == nil {
			w.ToolConfig = &toolConfigWire{}
		}
		w.ToolConfig.Tools = append(w.ToolConfig.Tools, toolWire{ToolSpec: &toolSpecWire{
			Name:        sanitized,
			Description: t.Description,
			InputSchema: toolInputSchemaWire{JSON: rawOrEmptyObject(t.Parameters)},
		}})
	}
	if req.Params.ToolChoice != nil && w.ToolConfig != nil {
		data, err := encodeToolChoiceWire(req.Params.ToolChoice)
		if err != nil {
			return nil, err
		}
		w.ToolConfig.ToolChoice = data
	}

	toolUseIDMap := map[string]string{}
	nextID := 0
	toolUseIDFor := func(canonical string) string {
		if canonical == "" {
			return ""
		}
		if isProviderSafeToolUseID(canonical) {
			return canonical
		}
		if id, ok := toolUseIDMap[canonical]; ok {
			return id
		}
		nextID++
		id := "t" + strconv.Itoa(nextID)
		toolUseIDMap[canonical] = id
		return id
	}

	for _, m := range req.Messages {
		if m.Role == ir.RoleSystem {
			if m.Content.Text != "" {
				w.System = append(w.System, systemBlockWire{Text: m.Content.Text})
			}
			continue
		}
		blocks, role, err := encodeConverseMessage(m, canonToSan, toolUseIDFor)
		if err != nil {
			return nil, err
		}
		if len(blocks) == 0 {
			continue
		}
		w.Messages = append(w.Messages, messageWire{Role: role, Content: blocks})
	}

	if req.Params.MaxTokens > 0 || req.Params.Temperature != nil || req.Params.TopP != nil || len(req.Params.Stop) > 0 {
		w.InferenceConfig = &inferenceConfigWire{
			TopP:          req.Params.TopP,
			Temperature:   req.Params.Temperature,
			StopSequences: req.Params.Stop,
		}
		if req.Params.MaxTokens > 0 {
			mt := req.Params.MaxTokens
			w.InferenceConfig.MaxTokens = &mt
		}
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return data, nil
}

func rawOrEmptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{"type":"object"}`)
	}
	return raw
}

func encodeToolChoiceWire(choice *ir.ToolChoice) (json.RawMessage, error) {
	switch choice.Mode {
	case ir.ToolChoiceAuto, "":
		return json.Marshal(map[string]any{"auto": map[string]any{}})
	case ir.ToolChoiceRequired:
		return json.Marshal(map[string]any{"any": map[string]any{}})
	case ir.ToolChoiceSpecific:
		return json.Marshal(map[string]any{"tool": map[string]any{"name": choice.Name}})
	default:
		return nil, adapters.ContentFailed("unsupported tool choice mode for Bedrock", nil)
	}
}

func encodeConverseMessage(m ir.Message, canonToSan map[string]string, toolUseIDFor func(string) string) ([]contentBlockWire, string, error) {
	role := "user"
	if m.Role == ir.RoleAssistant {
		role = "assistant"
	}

	if m.Role == ir.RoleTool {
		content, err := encodeToolResultContent(m.ToolContent)
		if err != nil {
			return nil, "", err
		}
		return []contentBlockWire{{ToolResult: &toolResultWire{
			ToolUseID: toolUseIDFor(m.ToolCallID),
			Content:   content,
			Status:    toolResultStatus(m.ToolIsError),
		}}}, "user", nil
	}

	var blocks []contentBlockWire
	for _, p := range m.Content.Normalize() {
		switch v := p.(type) {
		case ir.TextPart:
			if v.Text != "" {
				blocks = append(blocks, contentBlockWire{Text: v.Text})
			}
		case ir.ReasoningPart:
			if v.Text != "" && v.Signature != "" {
				blocks = append(blocks, contentBlockWire{ReasoningContent: &reasoningContentWire{
					ReasoningText: &reasoningTextWire{Text: v.Text, Signature: v.Signature},
				}})
			}
		case ir.ImagePart:
			format := "jpeg"
			if v.MIME != "" {
				format = stripImagePrefix(v.MIME)
			}
			blocks = append(blocks, contentBlockWire{Image: &imageBlockWire{Format: format, Source: imageSourceWire{Bytes: v.Base64}}})
		}
	}
	for _, tc := range m.ToolCalls {
		sanitized, ok := canonToSan[tc.Name]
		if !ok {
			sanitized = sanitizeToolName(tc.Name)
		}
		args := tc.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		blocks = append(blocks, contentBlockWire{ToolUse: &toolUseWire{
			ToolUseID: toolUseIDFor(tc.ID),
			Name:      sanitized,
			Input:     args,
		}})
	}
	return blocks, role, nil
}

func stripImagePrefix(mime string) string {
	for i := 0; i < len(mime); i++ {
		if mime[i] == '/' {
			return mime[i+1:]
		}
	}
	return mime
}

func toolResultStatus(isError bool) string {
	if isError {
		return "error"
	}
	return ""
}

func encodeToolResultContent(content any) ([]toolResultContentWire, error) {
	switch c := content.(type) {
	case nil:
		return nil, nil
	case string:
		return []toolResultContentWire{{Text: c}}, nil
	default:
		data, err := json.Marshal(c)
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
		return []toolResultContentWire{{JSON: data}}, nil
	}
}
