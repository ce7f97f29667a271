package google

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
	resp := &ir.Response{ID: w.ResponseID, Model: w.ModelVersion}

	if len(w.Candidates) > 0 {
		c := w.Candidates[0]
		msg, err := decodeContentWire(c.Content)
		if err != nil {
			return nil, err
		}
		msg.Role = ir.RoleAssistant
		resp.Messages = append(resp.Messages, msg)
		resp.FinishReason = googleFinishReasonToUniversal(c.FinishReason, len(msg.ToolCalls) > 0)
	}

	if w.UsageMetadata != nil {
		resp.Usage = ir.Usage{
			InputTokens:     w.UsageMetadata.PromptTokenCount,
			OutputTokens:    w.UsageMetadata.CandidatesTokenCount,
			ReasoningTokens: w.UsageMetadata.ThoughtsTokenCount,
			CachedTokens:    w.UsageMetadata.CachedContentTokenCount,
		}
	}
	return resp, nil
}

func googleFinishReasonToUniversal(reason string, hasToolCalls bool) ir.FinishReason {
	if hasToolCalls {
		return ir.FinishToolCalls
	}
	switch reason {
	case "STOP":
		return ir.FinishStop
	case "MAX_TOKENS":
		return ir.FinishLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return ir.FinishContentFilter
	default:
		return ir.FinishOther
	}
}

func universalFinishReasonToGoogle(r ir.FinishReason) string {
	switch r {
	case ir.FinishLength:
		return "MAX_TOKENS"
	case ir.FinishContentFilter:
		return "SAFETY"
	default:
		return "STOP"
	}
}

func (*Adapter) UniversalToResponse(resp *ir.Response) ([]byte, error) {
	w := responseWire{ModelVersion: resp.Model, ResponseID: resp.ID}

	var msg ir.Message
	if len(resp.Messages) > 0 {
		msg = resp.Messages[0]
	}
	cw, err := encodeContentWire(ir.Message{Role: ir.RoleAssistant, Content: msg.Content, ToolCalls: msg.ToolCalls})
	if err != nil {
		return nil, err
	}
	w.Candidates = []candidateWire{{
		Content:      cw,
		FinishReason: universalFinishReasonToGoogle(resp.FinishReason),
		Index:        0,
	}}
	w.UsageMetadata = &usageMetaWire{
		PromptTokenCount:        resp.Usage.InputTokens,
		CandidatesTokenCount:    resp.Usage.OutputTokens,
		TotalTokenCount:         resp.Usage.InputTokens + resp.Usage.OutputTokens,
		CachedContentTokenCount: resp.Usage.CachedTokens,
		ThoughtsTokenCount:      resp.Usage.ReasoningTokens,
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return data, nil
}
