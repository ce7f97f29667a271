package bedrock

import (
	"encoding/json"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

func (*Adapter) ResponseToUniversal(payload []byte) (*ir.Response, error) {
	var w converseResponseWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, adapters.JSONFailed(err)
	}

	msgs, err := decodeConverseMessage(w.Output.Message)
	if err != nil {
		return nil, err
	}

	resp := &ir.Response{
		Messages: msgs,
		Usage: ir.Usage{
			InputTokens:  w.Usage.InputTokens,
			OutputTokens: w.Usage.OutputTokens,
			CachedTokens: w.Usage.CacheReadInputTokens,
		},
		FinishReason: bedrockStopReasonToUniversal(w.StopReason),
	}
	return resp, nil
}

func bedrockStopReasonToUniversal(reason string) ir.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return ir.FinishStop
	case "max_tokens":
		return ir.FinishLength
	case "tool_use":
		return ir.FinishToolCalls
	case "content_filtered":
		return ir.FinishContentFilter
	default:
		return ir.FinishOther
	}
}

func universalFinishReasonToBedrock(reason ir.FinishReason) string {
	switch reason {
	case ir.FinishLength:
		return "max_tokens"
	case ir.FinishToolCalls:
		return "tool_use"
	case ir.FinishContentFilter:
		return "content_filtered"
	default:
		return "end_turn"
	}
}

func (*Adapter) UniversalToResponse(resp *ir.Response) ([]byte, error) {
	w := converseResponseWire{
		StopReason: universalFinishReasonToBedrock(resp.FinishReason),
		Usage: usageWire{
			InputTokens:          resp.Usage.InputTokens,
			OutputTokens:         resp.Usage.OutputTokens,
			TotalTokens:          resp.Usage.InputTokens + resp.Usage.OutputTokens,
			CacheReadInputTokens: resp.Usage.CachedTokens,
		},
	}

	if len(resp.Messages) > 0 {
		msg := resp.Messages[0]
		var blocks []contentBlockWire
		for _, p := range msg.Content.Normalize() {
			if tp, ok := p.(ir.TextPart); ok && tp.Text != "" {
				blocks = append(blocks, contentBlockWire{Text: tp.Text})
			}
		}
		for _, tc := range msg.ToolCalls {
			args := tc.Arguments
			if len(args) == 0 {
				args = json.RawMessage("{}")
			}
			blocks = append(blocks, contentBlockWire{ToolUse: &toolUseWire{
				ToolUseID: tc.ID,
				Name:      tc.Name,
				Input:     args,
			}})
		}
		w.Output.Message = messageWire{Role: "assistant", Content: blocks}
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return data, nil
}
