package bedrock

import (
	"encoding/json"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

// streamDecoder translates ConverseStream events into universal stream
// chunks. Like Anthropic, Bedrock announces a tool_use block's id and name
// once on contentBlockStart and streams only JSON fragments afterward, so
// the decoder keeps a per-stream contentBlockIndex->name table.
type streamDecoder struct {
	toolNames map[int]string
	toolIDs   map[int]string
}

func (*Adapter) NewStreamDecoder() adapters.StreamDecoder {
	return &streamDecoder{toolNames: map[int]string{}, toolIDs: map[int]string{}}
}

func (d *streamDecoder) ParseEvent(event []byte) adapters.ParsedStreamEvent {
	var w streamEventWire
	if err := json.Unmarshal(event, &w); err != nil {
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedError, ErrKind: "malformed_event", ErrMsg: err.Error()}
	}

	switch w.Type {
	case "messageStart":
		d.toolNames = map[int]string{}
		d.toolIDs = map[int]string{}
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}

	case "contentBlockStart":
		if w.Start == nil || w.Start.ToolUse == nil || w.ContentBlockIndex == nil {
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
		}
		idx := *w.ContentBlockIndex
		d.toolNames[idx] = w.Start.ToolUse.Name
		d.toolIDs[idx] = w.Start.ToolUse.ToolUseID
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: &ir.StreamChunk{
			Choices: []ir.StreamChoice{{Index: 0, Delta: ir.StreamDelta{
				ToolCallDeltas: []ir.ToolCallDelta{{Index: idx, ID: w.Start.ToolUse.ToolUseID, Name: w.Start.ToolUse.Name}},
			}}},
		}}

	case "contentBlockDelta":
		if w.Delta == nil || w.ContentBlockIndex == nil {
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
		}
		idx := *w.ContentBlockIndex
		switch {
		case w.Delta.Text != "":
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: &ir.StreamChunk{
				Choices: []ir.StreamChoice{{Index: 0, Delta: ir.StreamDelta{Text: w.Delta.Text}}},
			}}
		case w.Delta.ToolUse != nil:
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: &ir.StreamChunk{
				Choices: []ir.StreamChoice{{Index: 0, Delta: ir.StreamDelta{
					ToolCallDeltas: []ir.ToolCallDelta{{Index: idx, ArgumentsDelta: w.Delta.ToolUse.Input}},
				}}},
			}}
		case w.Delta.ReasoningContent != nil:
			rc := w.Delta.ReasoningContent
			if rc.Text == "" {
				return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
			}
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: &ir.StreamChunk{
				Choices: []ir.StreamChoice{{Index: 0, Delta: ir.StreamDelta{Reasoning: &ir.ReasoningDelta{Text: rc.Text, Signature: rc.Signature}}}},
			}}
		default:
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
		}

	case "contentBlockStop":
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}

	case "messageStop":
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: &ir.StreamChunk{
			Choices: []ir.StreamChoice{{Index: 0, FinishReason: bedrockStopReasonToUniversal(w.StopReason)}},
		}}

	case "metadata":
		if w.Usage == nil {
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
		}
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: &ir.StreamChunk{
			Usage: &ir.Usage{InputTokens: w.Usage.InputTokens, OutputTokens: w.Usage.OutputTokens, CachedTokens: w.Usage.CacheReadInputTokens},
		}}

	default:
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
	}
}

// streamEncoder renders universal stream chunks as ConverseStream-style
// events, opening one content block per text run or tool call index and
// closing them on finish.
type streamEncoder struct {
	textOpen  bool
	toolOpen  map[int]bool
	nextIndex int
	textIndex int
	toolIndex map[int]int
}

func (*Adapter) NewStreamEncoder() adapters.StreamEncoder {
	return &streamEncoder{toolOpen: map[int]bool{}, toolIndex: map[int]int{}}
}

func (e *streamEncoder) EncodeChunk(chunk *ir.StreamChunk) ([][]byte, error) {
	var events [][]byte

	for _, c := range chunk.Choices {
		if c.Delta.Text != "" {
			if !e.textOpen {
				e.textOpen = true
				e.textIndex = e.nextIndex
				e.nextIndex++
				idx := e.textIndex
				data, err := json.Marshal(streamEventWire{Type: "contentBlockStart", ContentBlockIndex: &idx})
				if err != nil {
					return nil, adapters.JSONFailed(err)
				}
				events = append(events, data)
			}
			idx := e.textIndex
			data, err := json.Marshal(streamEventWire{Type: "contentBlockDelta", ContentBlockIndex: &idx, Delta: &contentBlockDeltaWire{Text: c.Delta.Text}})
			if err != nil {
				return nil, adapters.JSONFailed(err)
			}
			events = append(events, data)
		}

		for _, td := range c.Delta.ToolCallDeltas {
			if !e.toolOpen[td.Index] {
				e.toolOpen[td.Index] = true
				idx := e.nextIndex
				e.toolIndex[td.Index] = idx
				e.nextIndex++
				data, err := json.Marshal(streamEventWire{
					Type:              "contentBlockStart",
					ContentBlockIndex: &idx,
					Start:             &contentBlockStartWire{ToolUse: &toolUseStartWire{ToolUseID: td.ID, Name: td.Name}},
				})
				if err != nil {
					return nil, adapters.JSONFailed(err)
				}
				events = append(events, data)
			}
			if td.ArgumentsDelta != "" {
				idx := e.toolIndex[td.Index]
				data, err := json.Marshal(streamEventWire{
					Type:              "contentBlockDelta",
					ContentBlockIndex: &idx,
					Delta:             &contentBlockDeltaWire{ToolUse: &toolUseDeltaWire{Input: td.ArgumentsDelta}},
				})
				if err != nil {
					return nil, adapters.JSONFailed(err)
				}
				events = append(events, data)
			}
		}

		if c.FinishReason != "" {
			data, err := json.Marshal(streamEventWire{Type: "messageStop", StopReason: universalFinishReasonToBedrock(c.FinishReason)})
			if err != nil {
				return nil, adapters.JSONFailed(err)
			}
			events = append(events, data)
		}
	}

	if chunk.Usage != nil {
		data, err := json.Marshal(streamEventWire{Type: "metadata", Usage: &usageWire{
			InputTokens:  chunk.Usage.InputTokens,
			OutputTokens: chunk.Usage.OutputTokens,
		}})
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
		events = append(events, data)
	}

	return events, nil
}
