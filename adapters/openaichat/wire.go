// Package openaichat implements the OpenAI Chat Completions wire format
// adapter. Requests and responses are decoded/encoded with local wire
// structs mirroring the public Chat Completions JSON schema.
package openaichat

import "encoding/json"

type requestWire struct {
	Model             string          `json:"model"`
	Messages          []messageWire   `json:"messages"`
	Temperature       *float64        `json:"temperature,omitempty"`
	TopP              *float64        `json:"top_p,omitempty"`
	MaxTokens         *int            `json:"max_tokens,omitempty"`
	MaxCompletionTok  *int            `json:"max_completion_tokens,omitempty"`
	Stop              json.RawMessage `json:"stop,omitempty"`
	PresencePenalty   *float64        `json:"presence_penalty,omitempty"`
	FrequencyPenalty  *float64        `json:"frequency_penalty,omitempty"`
	Seed              *int64          `json:"seed,omitempty"`
	Stream            bool            `json:"stream,omitempty"`
	Tools             []toolWire      `json:"tools,omitempty"`
	ToolChoice        json.RawMessage `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool           `json:"parallel_tool_calls,omitempty"`
	ResponseFormat    json.RawMessage `json:"response_format,omitempty"`
	ReasoningEffort   string          `json:"reasoning_effort,omitempty"`
}

type messageWire struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content,omitempty"`
	Name       string          `json:"name,omitempty"`
	ToolCalls  []toolCallWire  `json:"tool_calls,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	Refusal    string          `json:"refusal,omitempty"`
}

type contentPartWire struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLWire `json:"image_url,omitempty"`
}

type imageURLWire struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type toolCallWire struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function toolCallFuncWire `json:"function"`
}

type toolCallFuncWire struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

type toolWire struct {
	Type     string       `json:"type"`
	Function toolFuncWire `json:"function"`
}

type toolFuncWire struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Strict      bool            `json:"strict,omitempty"`
}

type responseWire struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []choiceWire `json:"choices"`
	Usage   usageWire    `json:"usage"`
}

type choiceWire struct {
	Index        int             `json:"index"`
	Message      responseMsgWire `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

type responseMsgWire struct {
	Role      string         `json:"role"`
	Content   *string        `json:"content"`
	Refusal   *string        `json:"refusal,omitempty"`
	ToolCalls []toolCallWire `json:"tool_calls,omitempty"`
}

type usageWire struct {
	PromptTokens            int                          `json:"prompt_tokens"`
	CompletionTokens        int                          `json:"completion_tokens"`
	TotalTokens             int                          `json:"total_tokens"`
	PromptTokensDetails     *promptTokensDetailsWire     `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *completionTokensDetailsWire `json:"completion_tokens_details,omitempty"`
}

type promptTokensDetailsWire struct {
	CachedTokens int `json:"cached_tokens"`
}

type completionTokensDetailsWire struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// chunkWire is the SSE "data:" event payload for a Chat Completions stream.
type chunkWire struct {
	ID      string            `json:"id"`
	Object  string            `json:"object"`
	Created int64             `json:"created"`
	Model   string            `json:"model"`
	Choices []chunkChoiceWire `json:"choices"`
	Usage   *usageWire        `json:"usage,omitempty"`
}

type chunkChoiceWire struct {
	Index        int       `json:"index"`
	Delta        deltaWire `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

type deltaWire struct {
	Role      string              `json:"role,omitempty"`
	Content   string              `json:"content,omitempty"`
	ToolCalls []deltaToolCallWire `json:"tool_calls,omitempty"`
}

type deltaToolCallWire struct {
	Index    int              `json:"index"`
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type,omitempty"`
	Function toolCallFuncWire `json:"function"`
}
