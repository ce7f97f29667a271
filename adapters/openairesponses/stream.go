package openairesponses

import (
	"encoding/json"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

// streamDecoder translates the Responses API's per-type-named SSE events
// into universal stream chunks. Unlike Chat Completions, a function call's
// name and call_id arrive once on response.output_item.added and are never
// repeated on the following response.function_call_arguments.delta events,
// so the decoder keeps a per-stream item_id->(callID,name) table, mirroring
// the bookkeeping adapters/anthropicmsg performs for content-block indices.
type streamDecoder struct {
	toolCallIDs   map[string]string
	toolNames     map[string]string
	toolOutputIdx map[string]int
	nextIndex     int
}

func (*Adapter) NewStreamDecoder() adapters.StreamDecoder {
	return &streamDecoder{
		toolCallIDs:   map[string]string{},
		toolNames:     map[string]string{},
		toolOutputIdx: map[string]int{},
	}
}

func (d *streamDecoder) ParseEvent(event []byte) adapters.ParsedStreamEvent {
	var w streamEventWire
	if err := json.Unmarshal(event, &w); err != nil {
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedError, ErrKind: "malformed_event", ErrMsg: err.Error()}
	}

	switch w.Type {
	case "response.created", "response.in_progress":
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}

	case "response.output_item.added":
		if w.Item != nil && w.Item.Type == "function_call" {
			d.toolCallIDs[w.ItemID] = w.Item.CallID
			d.toolNames[w.ItemID] = w.Item.Name
			d.toolOutputIdx[w.ItemID] = d.nextIndex
			d.nextIndex++
			return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: &ir.StreamChunk{
				Choices: []ir.StreamChoice{{Index: 0, Delta: ir.StreamDelta{
					ToolCallDeltas: []ir.ToolCallDelta{{
						Index: d.toolOutputIdx[w.ItemID],
						ID:    w.Item.CallID,
						Name:  w.Item.Name,
					}},
				}}},
			}}
		}
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}

	case "response.output_text.delta":
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: &ir.StreamChunk{
			Choices: []ir.StreamChoice{{Index: 0, Delta: ir.StreamDelta{Text: w.Delta}}},
		}}

	case "response.function_call_arguments.delta":
		idx := d.toolOutputIdx[w.ItemID]
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: &ir.StreamChunk{
			Choices: []ir.StreamChoice{{Index: 0, Delta: ir.StreamDelta{
				ToolCallDeltas: []ir.ToolCallDelta{{Index: idx, ArgumentsDelta: w.Delta}},
			}}},
		}}

	case "response.output_item.done", "response.content_part.added", "response.content_part.done":
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}

	case "response.completed", "response.incomplete", "response.failed":
		chunk := &ir.StreamChunk{}
		hasToolCalls := len(d.toolCallIDs) > 0
		status := ""
		if w.Response != nil {
			status = w.Response.Status
			chunk.Usage = &ir.Usage{InputTokens: w.Response.Usage.InputTokens, OutputTokens: w.Response.Usage.OutputTokens}
		}
		chunk.Choices = []ir.StreamChoice{{Index: 0, FinishReason: openAIResponsesStatusToUniversal(status, hasToolCalls)}}
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedChunk, Chunk: chunk}

	case "error":
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedError, ErrKind: "upstream_error", ErrMsg: string(event)}

	default:
		return adapters.ParsedStreamEvent{Kind: adapters.ParsedIgnored}
	}
}

// streamEncoder renders universal stream chunks as Responses-style SSE
// events. It assembles one text item and one function_call item per tool
// call index, each announced via output_item.added the first time it is
// seen.
type streamEncoder struct {
	textItemOpen bool
	toolItemOpen map[int]bool
	outputIndex  int
}

func (*Adapter) NewStreamEncoder() adapters.StreamEncoder {
	return &streamEncoder{toolItemOpen: map[int]bool{}}
}

func (e *streamEncoder) EncodeChunk(chunk *ir.StreamChunk) ([][]byte, error) {
	var events [][]byte

	for _, c := range chunk.Choices {
		if c.Delta.Text != "" {
			if !e.textItemOpen {
				e.textItemOpen = true
				data, err := json.Marshal(streamEventWire{Type: "response.output_item.added", OutputIndex: e.outputIndex})
				if err != nil {
					return nil, adapters.JSONFailed(err)
				}
				events = append(events, data)
				e.outputIndex++
			}
			data, err := json.Marshal(streamEventWire{Type: "response.output_text.delta", Delta: c.Delta.Text})
			if err != nil {
				return nil, adapters.JSONFailed(err)
			}
			events = append(events, data)
		}

		for _, td := range c.Delta.ToolCallDeltas {
			if !e.toolItemOpen[td.Index] {
				e.toolItemOpen[td.Index] = true
				data, err := json.Marshal(streamEventWire{
					Type:        "response.output_item.added",
					OutputIndex: e.outputIndex,
					Item:        &outputItemWire{Type: "function_call", CallID: td.ID, Name: td.Name},
				})
				if err != nil {
					return nil, adapters.JSONFailed(err)
				}
				events = append(events, data)
				e.outputIndex++
			}
			if td.ArgumentsDelta != "" {
				data, err := json.Marshal(streamEventWire{Type: "response.function_call_arguments.delta", Delta: td.ArgumentsDelta})
				if err != nil {
					return nil, adapters.JSONFailed(err)
				}
				events = append(events, data)
			}
		}

		if c.FinishReason != "" {
			data, err := json.Marshal(streamEventWire{
				Type: "response.completed",
				Response: &responseWire{
					Status: universalFinishReasonToResponsesStatus(c.FinishReason),
				},
			})
			if err != nil {
				return nil, adapters.JSONFailed(err)
			}
			events = append(events, data)
		}
	}

	return events, nil
}
