// Package anthropicmsg implements the Anthropic Messages wire format
// adapter: bidirectional mapping to/from the universal IR, plus typed SSE
// event translation. Field encoding for outgoing requests is built with
// github.com/anthropics/anthropic-sdk-go's param constructors (the same
// ones a live Messages client would use) and marshaled to bytes directly,
// without ever making a network call through the SDK; incoming payloads
// (arbitrary caller-supplied Anthropic-shaped JSON) are decoded into local
// wire structs mirroring the public Messages API schema, since the SDK's
// param types are write-oriented and not meant to decode arbitrary input.
package anthropicmsg

import "encoding/json"

// requestWire mirrors the public Anthropic Messages request schema for
// decoding an arbitrary incoming payload.
type requestWire struct {
	Model        string            `json:"model"`
	MaxTokens    int               `json:"max_tokens"`
	System       json.RawMessage   `json:"system,omitempty"`
	Messages     []messageWire     `json:"messages"`
	Tools        []toolWire        `json:"tools,omitempty"`
	ToolChoice   json.RawMessage   `json:"tool_choice,omitempty"`
	Temperature  *float64          `json:"temperature,omitempty"`
	TopP         *float64          `json:"top_p,omitempty"`
	TopK         *int              `json:"top_k,omitempty"`
	StopSeqs     []string          `json:"stop_sequences,omitempty"`
	Stream       bool              `json:"stream,omitempty"`
	Thinking     *thinkingWire     `json:"thinking,omitempty"`
	OutputConfig *outputConfigWire `json:"output_config,omitempty"`
}

type thinkingWire struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens,omitempty"`
}

type outputConfigWire struct {
	Effort string `json:"effort,omitempty"`
}

type messageWire struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentBlockWire struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Source    json.RawMessage `json:"source,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type toolWire struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// responseWire mirrors the public Anthropic Messages response schema for
// encoding a universal Response back out to Anthropic-shaped bytes.
type responseWire struct {
	ID           string             `json:"id"`
	Type         string             `json:"type"`
	Role         string             `json:"role"`
	Model        string             `json:"model"`
	Content      []contentBlockWire `json:"content"`
	StopReason   string             `json:"stop_reason,omitempty"`
	StopSequence *string            `json:"stop_sequence,omitempty"`
	Usage        usageWire          `json:"usage"`
}

type usageWire struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
}
