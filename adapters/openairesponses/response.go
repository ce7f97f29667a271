package openairesponses

import (
	"encoding/json"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

func (*Adapter) ResponseToUniversal(payload []byte) (*ir.Response, error) {
	var w responseWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, adapters.JSONFailed(err)
	}

	resp := &ir.Response{
		ID:    w.ID,
		Model: w.Model,
		Usage: ir.Usage{
			InputTokens:  w.Usage.InputTokens,
			OutputTokens: w.Usage.OutputTokens,
		},
	}
	if w.Usage.InputTokensDetails != nil {
		resp.Usage.CachedTokens = w.Usage.InputTokensDetails.CachedTokens
	}
	if w.Usage.OutputTokensDetails != nil {
		resp.Usage.ReasoningTokens = w.Usage.OutputTokensDetails.ReasoningTokens
	}

	msg := ir.Message{Role: ir.RoleAssistant}
	var parts []ir.Part
	for _, item := range w.Output {
		switch item.Type {
		case "message":
			for _, c := range item.Content {
				if c.Type == "output_text" || c.Type == "text" {
					parts = append(parts, ir.TextPart{Text: c.Text})
				}
			}
		case "function_call":
			msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{
				ID:        item.CallID,
				Name:      item.Name,
				Arguments: json.RawMessage(item.Arguments),
			})
		}
	}
	if len(parts) == 1 {
		if tp, ok := parts[0].(ir.TextPart); ok {
			msg.Content = ir.NewTextContent(tp.Text)
		}
	} else if len(parts) > 1 {
		msg.Content = ir.NewPartsContent(parts...)
	}
	resp.Messages = []ir.Message{msg}
	resp.FinishReason = openAIResponsesStatusToUniversal(w.Status, len(msg.ToolCalls) > 0)

	return resp, nil
}

func openAIResponsesStatusToUniversal(status string, hasToolCalls bool) ir.FinishReason {
	if hasToolCalls {
		return ir.FinishToolCalls
	}
	switch status {
	case "completed":
		return ir.FinishStop
	case "incomplete":
		return ir.FinishLength
	case "failed":
		return ir.FinishOther
	default:
		return ir.FinishStop
	}
}

func universalFinishReasonToResponsesStatus(reason ir.FinishReason) string {
	switch reason {
	case ir.FinishLength:
		return "incomplete"
	case ir.FinishOther:
		return "failed"
	default:
		return "completed"
	}
}

func (*Adapter) UniversalToResponse(resp *ir.Response) ([]byte, error) {
	w := responseWire{
		ID:     resp.ID,
		Object: "response",
		Model:  resp.Model,
		Status: universalFinishReasonToResponsesStatus(resp.FinishReason),
		Usage: usageWire{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
	if resp.Usage.CachedTokens > 0 {
		w.Usage.InputTokensDetails = &inputDetailsWire{CachedTokens: resp.Usage.CachedTokens}
	}
	if resp.Usage.ReasoningTokens > 0 {
		w.Usage.OutputTokensDetails = &outputDetailsWire{ReasoningTokens: resp.Usage.ReasoningTokens}
	}

	if len(resp.Messages) > 0 {
		msg := resp.Messages[0]
		text := flattenTextParts(msg.Content)
		if text != "" {
			w.Output = append(w.Output, outputItemWire{
				Type:    "message",
				Role:    "assistant",
				Content: []outputContentWire{{Type: "output_text", Text: text}},
			})
		}
		for _, tc := range msg.ToolCalls {
			w.Output = append(w.Output, outputItemWire{
				Type:      "function_call",
				CallID:    tc.ID,
				Name:      tc.Name,
				Arguments: string(tc.Arguments),
			})
		}
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return data, nil
}

func flattenTextParts(c ir.Content) string {
	if !c.IsParts {
		return c.Text
	}
	var out string
	for _, p := range c.Parts {
		if tp, ok := p.(ir.TextPart); ok {
			out += tp.Text
		}
	}
	return out
}
