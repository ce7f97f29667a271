package ir

import "encoding/json"

// ToolType distinguishes a caller-defined function tool from a
// provider-builtin tool tag (e.g. Anthropic's "web_search", OpenAI's
// "code_interpreter").
type ToolType string

const (
	ToolTypeFunction ToolType = "function"
	ToolTypeBuiltin  ToolType = "builtin"
)

// Tool is a tool made available to the model for a Request.
type Tool struct {
	Type ToolType

	// Function fields, populated when Type == ToolTypeFunction.
	Name        string
	Description string
	Parameters  json.RawMessage

	// BuiltinTag is the provider-specific identifier for a builtin tool,
	// populated when Type == ToolTypeBuiltin.
	BuiltinTag string
}

// ToolChoiceMode selects how the model is constrained to use tools.
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
	ToolChoiceSpecific ToolChoiceMode = "tool"
)

// ToolChoice configures tool-use behavior for a Request.
type ToolChoice struct {
	Mode ToolChoiceMode
	// Name identifies the tool to force when Mode == ToolChoiceSpecific.
	Name string
}

// ReasoningEffort is a coarse reasoning-budget hint understood by
// reasoning-family models (OpenAI o-series/gpt-5, Anthropic Opus 4.5+).
type ReasoningEffort string

const (
	ReasoningEffortLow    ReasoningEffort = "low"
	ReasoningEffortMedium ReasoningEffort = "medium"
	ReasoningEffortHigh   ReasoningEffort = "high"
)

// ReasoningConfig configures provider reasoning/thinking behavior. Exactly
// one of Effort or BudgetTokens is typically meaningful for a given target
// provider; adapters pick whichever their provider understands.
type ReasoningConfig struct {
	Effort       ReasoningEffort
	BudgetTokens int
}

// ResponseFormatType selects structured-output behavior.
type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// ResponseFormat configures the shape the model must respond in.
type ResponseFormat struct {
	Type ResponseFormatType
	Name string
	Schema json.RawMessage
	Strict bool
}

// Params carries optional generation knobs common across providers. A zero
// value for any numeric field means "not specified"; adapters must not
// conflate zero with an explicit 0 for fields where that matters (e.g.
// Temperature); callers that want an explicit zero should use a pointer
// wrapper at the adapter boundary where the wire format requires it.
type Params struct {
	MaxTokens         int
	Temperature       *float64
	TopP              *float64
	TopK              *int
	Stop              []string
	PresencePenalty   *float64
	FrequencyPenalty  *float64
	Seed              *int64
	ResponseFormat    *ResponseFormat
	Reasoning         *ReasoningConfig
	ToolChoice        *ToolChoice
	ParallelToolCalls *bool
}

// Request is the universal, provider-neutral chat/completion request.
type Request struct {
	Model   string
	Messages []Message
	Params Params
	Tools  []Tool
	Stream bool

	// ProviderOptions carries opaque per-provider pass-through hints, keyed
	// by provider name (e.g. "anthropic", "openai").
	ProviderOptions map[string]json.RawMessage
}
