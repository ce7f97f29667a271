package google

import (
	"encoding/json"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

// streamDecoder translates one JSON-array element of a Google
// streamGenerateContent response into a universal stream chunk. Google's
// streaming responses are full GenerateContentResponse objects per
// element (not deltas), so decoding reuses the same responseWire shape as
// the non-streaming path; the streaming framer (not this decoder) is
// responsible for splitting the array into individual elements.
type streamDecoder struct{}

func (*Adapter) NewStreamDecoder() adapters.StreamDecoder { return &streamDecoder{} }

func (d *streamDecoder) ParseEvent(event []byte) adapters.ParsedStreamEvent {
	var w responseWire
	if err := json.Unmarshal(event, &w); err != nil {
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedError, ErrKind: "malformed_event", ErrMsg: err.Error()}
	}
	if len(w.Candidates) == 0 {
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
	}

	chunk := &ir.StreamChunk{ID: w.ResponseID, Model: w.ModelVersion}
	if w.UsageMetadata != nil {
		chunk.Usage = &ir.Usage{
			InputTokens:     w.UsageMetadata.PromptTokenCount,
			OutputTokens:    w.UsageMetadata.CandidatesTokenCount,
			ReasoningTokens: w.UsageMetadata.ThoughtsTokenCount,
			CachedTokens:    w.UsageMetadata.CachedContentTokenCount,
		}
	}

	for _, c := range w.Candidates {
		sc := ir.StreamChoice{Index: c.Index}
		for _, p := range c.Content.Parts {
			switch {
			case p.FunctionCall != nil:
				args := p.FunctionCall.Args
				if len(args) == 0 {
					args = json.RawMessage(ir.PlaceholderToolArguments)
				}
				sc.Delta.ToolCallDeltas = append(sc.Delta.ToolCallDeltas, ir.ToolCallDelta{
					Index:          len(sc.Delta.ToolCallDeltas),
					ID:             p.FunctionCall.Name,
					Name:           p.FunctionCall.Name,
					ArgumentsDelta: string(args),
				})
			default:
				sc.Delta.Text += p.Text
			}
		}
		if c.FinishReason != "" {
			sc.FinishReason = googleFinishReasonToUniversal(c.FinishReason, len(sc.Delta.ToolCallDeltas) > 0)
		}
		chunk.Choices = append(chunk.Choices, sc)
	}
	return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: chunk}
}

// streamEncoder renders universal stream chunks as Google
// streamGenerateContent array elements (one full responseWire-shaped JSON
// object per emitted chunk, matching the source framing).
type streamEncoder struct{}

func (*Adapter) NewStreamEncoder() adapters.StreamEncoder { return &streamEncoder{} }

func (e *streamEncoder) EncodeChunk(chunk *ir.StreamChunk) ([][]byte, error) {
	w := responseWire{ResponseID: chunk.ID, ModelVersion: chunk.Model}
	if chunk.Usage != nil {
		w.UsageMetadata = &usageMetaWire{
			PromptTokenCount:        chunk.Usage.InputTokens,
			CandidatesTokenCount:    chunk.Usage.OutputTokens,
			ThoughtsTokenCount:      chunk.Usage.ReasoningTokens,
			CachedContentTokenCount: chunk.Usage.CachedTokens,
		}
	}
	for _, c := range chunk.Choices {
		cw := contentWire{Role: "model"}
		if c.Delta.Text != "" {
			cw.Parts = append(cw.Parts, partWire{Text: c.Delta.Text})
		}
		for _, td := range c.Delta.ToolCallDeltas {
			var args json.RawMessage = json.RawMessage(td.ArgumentsDelta)
			if len(args) == 0 {
				args = json.RawMessage(ir.PlaceholderToolArguments)
			}
			cw.Parts = append(cw.Parts, partWire{FunctionCall: &functionCallWire{Name: td.Name, Args: args}})
		}
		cc := candidateWire{Content: cw, Index: c.Index}
		if c.FinishReason != "" {
			cc.FinishReason = universalFinishReasonToGoogle(c.FinishReason)
		}
		w.Candidates = append(w.Candidates, cc)
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return [][]byte{data}, nil
}
