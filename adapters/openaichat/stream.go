package openaichat

import (
	"encoding/json"
	"strings"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

// streamDecoder translates Chat Completions SSE events into universal
// stream chunks. Unlike Anthropic's content-block bookkeeping, OpenAI's
// tool-call deltas are already self-contained (each delta carries its own
// index), so the decoder needs no per-stream state.
type streamDecoder struct{}

func (*Adapter) NewStreamDecoder() adapters.StreamDecoder { return &streamDecoder{} }

func (d *streamDecoder) ParseEvent(event []byte) adapters.ParsedStreamEvent {
	trimmed := strings.TrimSpace(string(event))
	if trimmed == "[DONE]" {
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedDone}
	}

	var w chunkWire
	if err := json.Unmarshal(event, &w); err != nil {
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedError, ErrKind: "malformed_event", ErrMsg: err.Error()}
	}

	chunk := &ir.StreamChunk{ID: w.ID, Model: w.Model}
	if w.Usage != nil {
		chunk.Usage = &ir.Usage{InputTokens: w.Usage.PromptTokens, OutputTokens: w.Usage.CompletionTokens}
	}
	for _, c := range w.Choices {
		sc := ir.StreamChoice{Index: c.Index}
		if c.Delta.Role != "" {
			sc.Delta.Role = ir.Role(c.Delta.Role)
		}
		if c.Delta.Content != "" {
			sc.Delta.Text = c.Delta.Content
		}
		for _, tc := range c.Delta.ToolCalls {
			sc.Delta.ToolCallDeltas = append(sc.Delta.ToolCallDeltas, ir.ToolCallDelta{
				Index:          tc.Index,
				ID:             tc.ID,
				Name:           tc.Function.Name,
				ArgumentsDelta: tc.Function.Arguments,
			})
		}
		if c.FinishReason != nil && *c.FinishReason != "" {
			sc.FinishReason = openAIFinishReasonToUniversal(*c.FinishReason)
		}
		chunk.Choices = append(chunk.Choices, sc)
	}
	if len(chunk.Choices) == 0 && chunk.Usage == nil {
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
	}
	return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: chunk}
}

// streamEncoder renders universal stream chunks as Chat Completions SSE
// event JSON. State is minimal: only whether the role-announcing delta has
// already been emitted for this stream.
type streamEncoder struct {
	roleSent bool
}

func (*Adapter) NewStreamEncoder() adapters.StreamEncoder { return &streamEncoder{} }

func (e *streamEncoder) EncodeChunk(chunk *ir.StreamChunk) ([][]byte, error) {
	w := chunkWire{ID: chunk.ID, Object: "chat.completion.chunk", Model: chunk.Model}
	if w.ID == "" {
		w.ID = ir.PlaceholderID
	}
	if w.Model == "" {
		w.Model = ir.PlaceholderModel
	}
	if chunk.Usage != nil {
		w.Usage = &usageWire{PromptTokens: chunk.Usage.InputTokens, CompletionTokens: chunk.Usage.OutputTokens}
	}
	for _, c := range chunk.Choices {
		cc := chunkChoiceWire{Index: c.Index}
		if !e.roleSent {
			cc.Delta.Role = "assistant"
		}
		if c.Delta.Text != "" {
			cc.Delta.Content = c.Delta.Text
		}
		for _, td := range c.Delta.ToolCallDeltas {
			cc.Delta.ToolCalls = append(cc.Delta.ToolCalls, deltaToolCallWire{
				Index: td.Index,
				ID:    td.ID,
				Type:  "function",
				Function: toolCallFuncWire{
					Name:      td.Name,
					Arguments: td.ArgumentsDelta,
				},
			})
		}
		if c.FinishReason != "" {
			reason := universalFinishReasonToOpenAI(c.FinishReason)
			cc.FinishReason = &reason
		}
		w.Choices = append(w.Choices, cc)
	}
	e.roleSent = true

	data, err := json.Marshal(w)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return [][]byte{data}, nil
}
