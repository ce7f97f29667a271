package anthropicmsg

import (
	"encoding/json"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

// streamDecoder translates one Anthropic Messages SSE stream's events into
// universal stream chunks, carrying the per-stream content-block
// bookkeeping that requires (content_block_start carries id+name,
// content_block_delta fragments accumulate by index, content_block_stop
// finalizes). Tool-call indices are remapped from Anthropic's content-block
// numbering (which text and thinking blocks also consume) to the 0-based
// per-tool ordinals the universal delta model uses.
type streamDecoder struct {
	msgID       string
	msgModel    string
	toolNames   map[int]string
	toolIDs     map[int]string
	toolOrdinal map[int]int
	stopReason  string
}

func (a *Adapter) NewStreamDecoder() adapters.StreamDecoder {
	return &streamDecoder{toolNames: map[int]string{}, toolIDs: map[int]string{}, toolOrdinal: map[int]int{}}
}

func (d *streamDecoder) chunk(choices ...ir.StreamChoice) *ir.StreamChunk {
	return &ir.StreamChunk{ID: d.msgID, Model: d.msgModel, Choices: choices}
}

func (d *streamDecoder) ParseEvent(event []byte) adapters.ParsedStreamEvent {
	var ev sdk.MessageStreamEventUnion
	if err := json.Unmarshal(event, &ev); err != nil {
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedError, ErrKind: "malformed_event", ErrMsg: err.Error()}
	}

	switch parsed := ev.AsAny().(type) {
	case sdk.MessageStartEvent:
		d.msgID = parsed.Message.ID
		d.msgModel = string(parsed.Message.Model)
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: d.chunk(
			ir.StreamChoice{Index: 0, Delta: ir.StreamDelta{Role: ir.RoleAssistant}},
		)}

	case sdk.ContentBlockStartEvent:
		idx := int(parsed.Index)
		if tu, ok := parsed.ContentBlock.AsAny().(sdk.ToolUseBlock); ok {
			d.toolNames[idx] = tu.Name
			d.toolIDs[idx] = tu.ID
			d.toolOrdinal[idx] = len(d.toolOrdinal)
		}
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}

	case sdk.ContentBlockDeltaEvent:
		idx := int(parsed.Index)
		switch delta := parsed.Delta.AsAny().(type) {
		case sdk.TextDelta:
			if delta.Text == "" {
				return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
			}
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: d.chunk(
				ir.StreamChoice{Index: 0, Delta: ir.StreamDelta{Text: delta.Text}},
			)}
		case sdk.InputJSONDelta:
			if delta.PartialJSON == "" {
				return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
			}
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: d.chunk(
				ir.StreamChoice{Index: 0, Delta: ir.StreamDelta{ToolCallDeltas: []ir.ToolCallDelta{{
					Index:          d.toolOrdinal[idx],
					ID:             d.toolIDs[idx],
					Name:           d.toolNames[idx],
					ArgumentsDelta: delta.PartialJSON,
				}}}},
			)}
		case sdk.ThinkingDelta:
			if delta.Thinking == "" {
				return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
			}
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: d.chunk(
				ir.StreamChoice{Index: 0, Delta: ir.StreamDelta{Reasoning: &ir.ReasoningDelta{Text: delta.Thinking}}},
			)}
		case sdk.SignatureDelta:
			if delta.Signature == "" {
				return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
			}
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: d.chunk(
				ir.StreamChoice{Index: 0, Delta: ir.StreamDelta{Reasoning: &ir.ReasoningDelta{Signature: delta.Signature}}},
			)}
		default:
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
		}

	case sdk.ContentBlockStopEvent:
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}

	case sdk.MessageDeltaEvent:
		d.stopReason = string(parsed.Delta.StopReason)
		u := parsed.Usage
		c := d.chunk()
		c.Usage = &ir.Usage{
			InputTokens:  int(u.InputTokens),
			OutputTokens: int(u.OutputTokens),
			CachedTokens: int(u.CacheReadInputTokens),
		}
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: c}

	case sdk.MessageStopEvent:
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: d.chunk(
			ir.StreamChoice{Index: 0, FinishReason: anthropicStopReasonToUniversal(d.stopReason)},
		)}

	default:
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
	}
}

// streamEncoder renders universal stream chunks as Anthropic Messages SSE
// event JSON, tracking which content-block index is currently open so
// consecutive text/tool-call/thinking deltas land in the right
// content_block_delta sequence and every opened block is eventually closed.
// Block indices are allocated sequentially as blocks open, matching how the
// Messages API numbers its own content blocks.
type streamEncoder struct {
	openBlock  bool
	openIndex  int
	openKind   string
	startedMsg bool
	nextIndex  int
	toolBlocks map[int]int
}

func (a *Adapter) NewStreamEncoder() adapters.StreamEncoder {
	return &streamEncoder{toolBlocks: map[int]int{}}
}

func (e *streamEncoder) EncodeChunk(chunk *ir.StreamChunk) ([][]byte, error) {
	var out [][]byte
	emit := func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out = append(out, data)
		return nil
	}

	if !e.startedMsg {
		e.startedMsg = true
		id := chunk.ID
		if id == "" {
			id = ir.PlaceholderID
		}
		model := chunk.Model
		if model == "" {
			model = ir.PlaceholderModel
		}
		if err := emit(map[string]any{
			"type": "message_start",
			"message": map[string]any{
				"id":      id,
				"type":    "message",
				"role":    "assistant",
				"model":   model,
				"content": []any{},
			},
		}); err != nil {
			return nil, adapters.JSONFailed(err)
		}
	}

	for _, choice := range chunk.Choices {
		d := choice.Delta
		if d.Text != "" {
			if e.openKind != "text" {
				if err := e.closeOpenBlock(emit); err != nil {
					return nil, err
				}
				idx := e.nextIndex
				e.nextIndex++
				e.openBlock, e.openKind, e.openIndex = true, "text", idx
				if err := emit(map[string]any{"type": "content_block_start", "index": idx, "content_block": map[string]any{"type": "text", "text": ""}}); err != nil {
					return nil, adapters.JSONFailed(err)
				}
			}
			if err := emit(map[string]any{"type": "content_block_delta", "index": e.openIndex, "delta": map[string]any{"type": "text_delta", "text": d.Text}}); err != nil {
				return nil, adapters.JSONFailed(err)
			}
		}
		for _, td := range d.ToolCallDeltas {
			blockIdx, started := e.toolBlocks[td.Index]
			if !started {
				if err := e.closeOpenBlock(emit); err != nil {
					return nil, err
				}
				blockIdx = e.nextIndex
				e.nextIndex++
				e.toolBlocks[td.Index] = blockIdx
				e.openBlock, e.openKind, e.openIndex = true, "tool_use", blockIdx
				if err := emit(map[string]any{
					"type": "content_block_start", "index": blockIdx,
					"content_block": map[string]any{"type": "tool_use", "id": td.ID, "name": td.Name, "input": map[string]any{}},
				}); err != nil {
					return nil, adapters.JSONFailed(err)
				}
			}
			if td.ArgumentsDelta != "" {
				if err := emit(map[string]any{"type": "content_block_delta", "index": blockIdx, "delta": map[string]any{"type": "input_json_delta", "partial_json": td.ArgumentsDelta}}); err != nil {
					return nil, adapters.JSONFailed(err)
				}
			}
		}
		if d.Reasoning != nil && d.Reasoning.Text != "" {
			if e.openKind != "thinking" {
				if err := e.closeOpenBlock(emit); err != nil {
					return nil, err
				}
				idx := e.nextIndex
				e.nextIndex++
				e.openBlock, e.openKind, e.openIndex = true, "thinking", idx
				if err := emit(map[string]any{"type": "content_block_start", "index": idx, "content_block": map[string]any{"type": "thinking", "thinking": ""}}); err != nil {
					return nil, adapters.JSONFailed(err)
				}
			}
			if err := emit(map[string]any{"type": "content_block_delta", "index": e.openIndex, "delta": map[string]any{"type": "thinking_delta", "thinking": d.Reasoning.Text}}); err != nil {
				return nil, adapters.JSONFailed(err)
			}
		}
		if choice.FinishReason != "" {
			if err := e.closeOpenBlock(emit); err != nil {
				return nil, err
			}
			if err := emit(map[string]any{"type": "message_delta", "delta": map[string]any{"stop_reason": universalFinishReasonToAnthropic(choice.FinishReason)}}); err != nil {
				return nil, adapters.JSONFailed(err)
			}
			if err := emit(map[string]any{"type": "message_stop"}); err != nil {
				return nil, adapters.JSONFailed(err)
			}
		}
	}
	return out, nil
}

func (e *streamEncoder) closeOpenBlock(emit func(any) error) error {
	if !e.openBlock {
		return nil
	}
	e.openBlock = false
	if err := emit(map[string]any{"type": "content_block_stop", "index": e.openIndex}); err != nil {
		return adapters.JSONFailed(err)
	}
	return nil
}
