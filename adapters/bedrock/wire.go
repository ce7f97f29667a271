// Package bedrock implements the AWS Bedrock Converse API wire format
// adapter. The aws-sdk-go-v2/service/bedrockruntime/types content-block
// union types (ContentBlockMemberText, ContentBlockMemberToolUse, ...) use
// smithy's protocol-specific marshaling rather than plain encoding/json
// struct tags, so they cannot be decode targets for arbitrary wire bytes
// received by a gateway; this package's wire structs mirror the same JSON
// shape those types produce on the wire (documented in the Converse API
// reference) using plain struct tags instead.
package bedrock

import "encoding/json"

type converseRequestWire struct {
	ModelID                      string               `json:"modelId"`
	Messages                     []messageWire        `json:"messages"`
	System                       []systemBlockWire    `json:"system,omitempty"`
	ToolConfig                   *toolConfigWire      `json:"toolConfig,omitempty"`
	InferenceConfig              *inferenceConfigWire `json:"inferenceConfig,omitempty"`
	AdditionalModelRequestFields json.RawMessage      `json:"additionalModelRequestFields,omitempty"`
}

type messageWire struct {
	Role    string             `json:"role"`
	Content []contentBlockWire `json:"content"`
}

type systemBlockWire struct {
	Text       string          `json:"text,omitempty"`
	CachePoint *cachePointWire `json:"cachePoint,omitempty"`
}

type contentBlockWire struct {
	Text             string                `json:"text,omitempty"`
	ToolUse          *toolUseWire          `json:"toolUse,omitempty"`
	ToolResult       *toolResultWire       `json:"toolResult,omitempty"`
	ReasoningContent *reasoningContentWire `json:"reasoningContent,omitempty"`
	CachePoint       *cachePointWire       `json:"cachePoint,omitempty"`
	Image            *imageBlockWire       `json:"image,omitempty"`
}

type imageBlockWire struct {
	Format string          `json:"format"`
	Source imageSourceWire `json:"source"`
}

type imageSourceWire struct {
	Bytes string `json:"bytes,omitempty"`
}

type toolUseWire struct {
	ToolUseID string          `json:"toolUseId"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
}

type toolResultWire struct {
	ToolUseID string                  `json:"toolUseId"`
	Content   []toolResultContentWire `json:"content"`
	Status    string                  `json:"status,omitempty"`
}

type toolResultContentWire struct {
	Text string          `json:"text,omitempty"`
	JSON json.RawMessage `json:"json,omitempty"`
}

type reasoningContentWire struct {
	ReasoningText   *reasoningTextWire `json:"reasoningText,omitempty"`
	RedactedContent []byte             `json:"redactedContent,omitempty"`
}

type reasoningTextWire struct {
	Text      string `json:"text,omitempty"`
	Signature string `json:"signature,omitempty"`
}

type cachePointWire struct {
	Type string `json:"type"`
}

type toolConfigWire struct {
	Tools      []toolWire      `json:"tools"`
	ToolChoice json.RawMessage `json:"toolChoice,omitempty"`
}

type toolWire struct {
	ToolSpec   *toolSpecWire   `json:"toolSpec,omitempty"`
	CachePoint *cachePointWire `json:"cachePoint,omitempty"`
}

type toolSpecWire struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	InputSchema toolInputSchemaWire `json:"inputSchema"`
}

type toolInputSchemaWire struct {
	JSON json.RawMessage `json:"json"`
}

type inferenceConfigWire struct {
	MaxTokens     *int     `json:"maxTokens,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"topP,omitempty"`
	StopSequences []string `json:"stopSequences,omitempty"`
}

type converseResponseWire struct {
	Output     outputWire `json:"output"`
	StopReason string     `json:"stopReason"`
	Usage      usageWire  `json:"usage"`
}

type outputWire struct {
	Message messageWire `json:"message"`
}

type usageWire struct {
	InputTokens           int `json:"inputTokens"`
	OutputTokens          int `json:"outputTokens"`
	TotalTokens           int `json:"totalTokens"`
	CacheReadInputTokens  int `json:"cacheReadInputTokens,omitempty"`
	CacheWriteInputTokens int `json:"cacheWriteInputTokens,omitempty"`
}

// streamEventWire is the decoded payload of one ConverseStream event, after
// the smithy eventstream binary framing (message headers carrying the
// per-event ":event-type") has already been unwrapped into an explicit
// Type discriminator by the transport layer. The adapter only concerns
// itself with per-event JSON semantics, mirroring the split between
// framing and payload translation used throughout this module's streaming
// support.
type streamEventWire struct {
	Type              string                 `json:"type"`
	ContentBlockIndex *int                   `json:"contentBlockIndex,omitempty"`
	Start             *contentBlockStartWire `json:"start,omitempty"`
	Delta             *contentBlockDeltaWire `json:"delta,omitempty"`
	StopReason        string                 `json:"stopReason,omitempty"`
	Usage             *usageWire             `json:"usage,omitempty"`
}

type contentBlockStartWire struct {
	ToolUse *toolUseStartWire `json:"toolUse,omitempty"`
}

type toolUseStartWire struct {
	ToolUseID string `json:"toolUseId"`
	Name      string `json:"name"`
}

type contentBlockDeltaWire struct {
	Text             string                     `json:"text,omitempty"`
	ToolUse          *toolUseDeltaWire          `json:"toolUse,omitempty"`
	ReasoningContent *reasoningContentDeltaWire `json:"reasoningContent,omitempty"`
}

type toolUseDeltaWire struct {
	Input string `json:"input,omitempty"`
}

type reasoningContentDeltaWire struct {
	Text            string `json:"text,omitempty"`
	RedactedContent []byte `json:"redactedContent,omitempty"`
	Signature       string `json:"signature,omitempty"`
}
