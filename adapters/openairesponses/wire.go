// Package openairesponses implements the OpenAI Responses API wire format
// adapter: a flat input-item list instead of Chat Completions' messages
// array, a structured "output" array instead of "choices", and a distinct
// family of typed SSE event names (response.output_text.delta, etc). Local
// wire structs are used for the same reason documented in
// adapters/openaichat: no pack example grounds an actual openai-go call
// shape.
package openairesponses

import "encoding/json"

type requestWire struct {
	Model             string          `json:"model"`
	Input             json.RawMessage `json:"input"`
	Instructions      string          `json:"instructions,omitempty"`
	Temperature       *float64        `json:"temperature,omitempty"`
	TopP              *float64        `json:"top_p,omitempty"`
	MaxOutputTokens   *int            `json:"max_output_tokens,omitempty"`
	Stream            bool            `json:"stream,omitempty"`
	Tools             []toolWire      `json:"tools,omitempty"`
	ToolChoice        json.RawMessage `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool           `json:"parallel_tool_calls,omitempty"`
	Reasoning         *reasoningWire  `json:"reasoning,omitempty"`
	Text              *textFormatWire `json:"text,omitempty"`
}

type reasoningWire struct {
	Effort string `json:"effort,omitempty"`
}

type textFormatWire struct {
	Format json.RawMessage `json:"format,omitempty"`
}

type inputItemWire struct {
	Type    string          `json:"type,omitempty"`
	Role    string          `json:"role,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`

	// function_call item fields
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	ID        string `json:"id,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// function_call_output item fields
	Output json.RawMessage `json:"output,omitempty"`
}

type inputContentPartWire struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type toolWire struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Strict      bool            `json:"strict,omitempty"`
}

type responseWire struct {
	ID     string           `json:"id"`
	Object string           `json:"object"`
	Model  string           `json:"model"`
	Status string           `json:"status"`
	Output []outputItemWire `json:"output"`
	Usage  usageWire        `json:"usage"`
}

type outputItemWire struct {
	Type      string              `json:"type"`
	ID        string              `json:"id,omitempty"`
	Role      string              `json:"role,omitempty"`
	Content   []outputContentWire `json:"content,omitempty"`
	CallID    string              `json:"call_id,omitempty"`
	Name      string              `json:"name,omitempty"`
	Arguments string              `json:"arguments,omitempty"`
}

type outputContentWire struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type usageWire struct {
	InputTokens         int                `json:"input_tokens"`
	OutputTokens        int                `json:"output_tokens"`
	TotalTokens         int                `json:"total_tokens"`
	InputTokensDetails  *inputDetailsWire  `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *outputDetailsWire `json:"output_tokens_details,omitempty"`
}

type inputDetailsWire struct {
	CachedTokens int `json:"cached_tokens"`
}

type outputDetailsWire struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// streamEventWire is the SSE "data:" payload for a Responses stream. The
// Responses API, unlike Chat Completions, names each event distinctly via
// "type" rather than using one chunk shape with a delta sub-object.
type streamEventWire struct {
	Type        string          `json:"type"`
	ItemID      string          `json:"item_id,omitempty"`
	OutputIndex int             `json:"output_index"`
	Delta       string          `json:"delta,omitempty"`
	Item        *outputItemWire `json:"item,omitempty"`
	Response    *responseWire   `json:"response,omitempty"`
}
