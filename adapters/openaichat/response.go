package openaichat

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
	resp := &ir.Response{ID: w.ID, Model: w.Model}

	if len(w.Choices) > 0 {
		c := w.Choices[0]
		msg := ir.Message{Role: ir.RoleAssistant}
		if c.Message.Content != nil && *c.Message.Content != "" {
			msg.Content = ir.NewTextContent(*c.Message.Content)
		}
		for _, tc := range c.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			})
		}
		resp.Messages = append(resp.Messages, msg)
		resp.FinishReason = openAIFinishReasonToUniversal(c.FinishReason)
	}

	resp.Usage = ir.Usage{
		InputTokens:  w.Usage.PromptTokens,
		OutputTokens: w.Usage.CompletionTokens,
	}
	if w.Usage.PromptTokensDetails != nil {
		resp.Usage.CachedTokens = w.Usage.PromptTokensDetails.CachedTokens
	}
	if w.Usage.CompletionTokensDetails != nil {
		resp.Usage.ReasoningTokens = w.Usage.CompletionTokensDetails.ReasoningTokens
	}
	return resp, nil
}

func openAIFinishReasonToUniversal(reason string) ir.FinishReason {
	switch reason {
	case "stop":
		return ir.FinishStop
	case "length":
		return ir.FinishLength
	case "tool_calls":
		return ir.FinishToolCalls
	case "function_call":
		return ir.FinishFunctionCall
	case "content_filter":
		return ir.FinishContentFilter
	default:
		return ir.FinishOther
	}
}

func universalFinishReasonToOpenAI(r ir.FinishReason) string {
	switch r {
	case ir.FinishLength:
		return "length"
	case ir.FinishToolCalls:
		return "tool_calls"
	case ir.FinishFunctionCall:
		return "function_call"
	case ir.FinishContentFilter:
		return "content_filter"
	default:
		return "stop"
	}
}

func (*Adapter) UniversalToResponse(resp *ir.Response) ([]byte, error) {
	w := responseWire{
		ID:     resp.ID,
		Object: "chat.completion",
		Model:  resp.Model,
		Usage: usageWire{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
	if resp.Usage.CachedTokens > 0 {
		w.Usage.PromptTokensDetails = &promptTokensDetailsWire{CachedTokens: resp.Usage.CachedTokens}
	}
	if resp.Usage.ReasoningTokens > 0 {
		w.Usage.CompletionTokensDetails = &completionTokensDetailsWire{ReasoningTokens: resp.Usage.ReasoningTokens}
	}

	var msg ir.Message
	if len(resp.Messages) > 0 {
		msg = resp.Messages[0]
	}
	rm := responseMsgWire{Role: "assistant"}
	if msg.Content.Text != "" || !msg.Content.IsParts {
		if msg.Content.Text != "" {
			text := msg.Content.Text
			rm.Content = &text
		}
	} else {
		text := flattenTextParts(msg.Content.Parts)
		if text != "" {
			rm.Content = &text
		}
	}
	for _, tc := range msg.ToolCalls {
		args := string(tc.Arguments)
		if args == "" {
			args = ir.PlaceholderToolArguments
		}
		rm.ToolCalls = append(rm.ToolCalls, toolCallWire{
			ID:   tc.ID,
			Type: "function",
			Function: toolCallFuncWire{
				Name:      tc.Name,
				Arguments: args,
			},
		})
	}

	w.Choices = []choiceWire{{
		Index:        0,
		Message:      rm,
		FinishReason: universalFinishReasonToOpenAI(resp.FinishReason),
	}}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return data, nil
}

func flattenTextParts(parts []ir.Part) string {
	var out string
	for _, p := range parts {
		if t, ok := p.(ir.TextPart); ok {
			out += t.Text
		}
	}
	return out
}
