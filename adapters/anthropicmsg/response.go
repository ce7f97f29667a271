package anthropicmsg

import (
	"encoding/json"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

// ResponseToUniversal decodes an Anthropic Messages response payload into
// the universal IR, reusing sdk.Message (anthropic-sdk-go's own response
// decode target) rather than a hand-rolled struct: sdk.Message is exactly
// what a live Messages client unmarshals HTTP response bodies into, so
// decoding arbitrary response bytes into it carries the same guarantees.
func (*Adapter) ResponseToUniversal(payload []byte) (*ir.Response, error) {
	var msg sdk.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	resp := &ir.Response{
		ID:    msg.ID,
		Model: string(msg.Model),
	}

	assistant := ir.Message{Role: ir.RoleAssistant}
	var parts []ir.Part
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if block.Text != "" {
				parts = append(parts, ir.TextPart{Text: block.Text})
			}
		case "thinking":
			parts = append(parts, ir.ReasoningPart{Text: block.Thinking, Signature: block.Signature})
		case "tool_use":
			assistant.ToolCalls = append(assistant.ToolCalls, ir.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			})
		}
	}
	if len(parts) > 0 {
		assistant.Content = ir.NewPartsContent(parts...)
	}
	resp.Messages = append(resp.Messages, assistant)

	resp.FinishReason = anthropicStopReasonToUniversal(string(msg.StopReason))

	u := msg.Usage
	if u.InputTokens != 0 || u.OutputTokens != 0 || u.CacheReadInputTokens != 0 || u.CacheCreationInputTokens != 0 {
		resp.Usage = ir.Usage{
			InputTokens:  int(u.InputTokens),
			OutputTokens: int(u.OutputTokens),
			CachedTokens: int(u.CacheReadInputTokens),
		}
	}
	return resp, nil
}

func anthropicStopReasonToUniversal(reason string) ir.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return ir.FinishStop
	case "max_tokens":
		return ir.FinishLength
	case "tool_use":
		return ir.FinishToolCalls
	default:
		return ir.FinishOther
	}
}

// UniversalToResponse renders the universal IR as an Anthropic Messages
// response payload. A local wire struct is used for encoding (rather than
// populating an sdk.Message by hand) since sdk.Message carries internal
// decode-only bookkeeping fields that are not meant to be reconstructed
// from scratch by a caller.
func (*Adapter) UniversalToResponse(resp *ir.Response) ([]byte, error) {
	out := responseWire{
		ID:    resp.ID,
		Type:  "message",
		Role:  "assistant",
		Model: resp.Model,
		Usage: usageWire{
			InputTokens:          resp.Usage.InputTokens,
			OutputTokens:         resp.Usage.OutputTokens,
			CacheReadInputTokens: resp.Usage.CachedTokens,
		},
		StopReason: universalFinishReasonToAnthropic(resp.FinishReason),
	}
	for _, m := range resp.Messages {
		for _, part := range m.Content.Normalize() {
			switch v := part.(type) {
			case ir.TextPart:
				out.Content = append(out.Content, contentBlockWire{Type: "text", Text: v.Text})
			case ir.ReasoningPart:
				out.Content = append(out.Content, contentBlockWire{Type: "thinking", Text: v.Text})
			}
		}
		for _, tc := range m.ToolCalls {
			input := tc.Arguments
			if len(input) == 0 {
				input = json.RawMessage(ir.PlaceholderToolArguments)
			}
			out.Content = append(out.Content, contentBlockWire{
				Type:  "tool_use",
				ID:    tc.ID,
				Name:  tc.Name,
				Input: input,
			})
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return data, nil
}

func universalFinishReasonToAnthropic(r ir.FinishReason) string {
	switch r {
	case ir.FinishLength:
		return "max_tokens"
	case ir.FinishToolCalls:
		return "tool_use"
	case ir.FinishStop, ir.FinishOther, ir.FinishContentFilter, ir.FinishFunctionCall, "":
		return "end_turn"
	default:
		return "end_turn"
	}
}
