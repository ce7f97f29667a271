// Package google implements the Google Generative Language wire format
// adapter (the REST shape used by both the public Gemini API and
// Vertex-hosted Gemini): bidirectional mapping to/from the universal IR,
// plus JSON-array-framed stream translation. Requests and responses are
// decoded/encoded with local wire structs mirroring the public REST schema
// rather than google/generative-ai-go or google.golang.org/genai: both are
// call-oriented client SDKs that issue their own HTTP requests and do not
// expose a marshal-only representation of the raw wire JSON this adapter
// needs to transform before our own dispatch; see DESIGN.md.
package google

import "encoding/json"

type requestWire struct {
	Contents          []contentWire      `json:"contents"`
	SystemInstruction *contentWire       `json:"systemInstruction,omitempty"`
	Tools             []toolWire         `json:"tools,omitempty"`
	ToolConfig        *toolConfigWire    `json:"toolConfig,omitempty"`
	GenerationConfig  *generationCfgWire `json:"generationConfig,omitempty"`
}

type contentWire struct {
	Role  string     `json:"role,omitempty"`
	Parts []partWire `json:"parts"`
}

type partWire struct {
	Text             string            `json:"text,omitempty"`
	InlineData       *inlineDataWire   `json:"inlineData,omitempty"`
	FunctionCall     *functionCallWire `json:"functionCall,omitempty"`
	FunctionResponse *funcResponseWire `json:"functionResponse,omitempty"`
}

type inlineDataWire struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type functionCallWire struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type funcResponseWire struct {
	Name     string          `json:"name"`
	Response json.RawMessage `json:"response,omitempty"`
}

type toolWire struct {
	FunctionDeclarations []functionDeclWire `json:"functionDeclarations,omitempty"`
}

type functionDeclWire struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type toolConfigWire struct {
	FunctionCallingConfig *functionCallingCfgWire `json:"functionCallingConfig,omitempty"`
}

type functionCallingCfgWire struct {
	Mode                 string   `json:"mode,omitempty"`
	AllowedFunctionNames []string `json:"allowedFunctionNames,omitempty"`
}

type generationCfgWire struct {
	Temperature      *float64         `json:"temperature,omitempty"`
	TopP             *float64         `json:"topP,omitempty"`
	TopK             *int             `json:"topK,omitempty"`
	MaxOutputTokens  *int             `json:"maxOutputTokens,omitempty"`
	StopSequences    []string         `json:"stopSequences,omitempty"`
	PresencePenalty  *float64         `json:"presencePenalty,omitempty"`
	FrequencyPenalty *float64         `json:"frequencyPenalty,omitempty"`
	Seed             *int64           `json:"seed,omitempty"`
	ResponseMimeType string           `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage  `json:"responseSchema,omitempty"`
	ThinkingConfig   *thinkingCfgWire `json:"thinkingConfig,omitempty"`
}

type thinkingCfgWire struct {
	ThinkingBudget *int `json:"thinkingBudget,omitempty"`
}

type responseWire struct {
	Candidates    []candidateWire `json:"candidates"`
	UsageMetadata *usageMetaWire  `json:"usageMetadata,omitempty"`
	ModelVersion  string          `json:"modelVersion,omitempty"`
	ResponseID    string          `json:"responseId,omitempty"`
}

type candidateWire struct {
	Content      contentWire `json:"content"`
	FinishReason string      `json:"finishReason,omitempty"`
	Index        int         `json:"index"`
}

type usageMetaWire struct {
	PromptTokenCount        int `json:"promptTokenCount"`
	CandidatesTokenCount    int `json:"candidatesTokenCount"`
	TotalTokenCount         int `json:"totalTokenCount"`
	CachedContentTokenCount int `json:"cachedContentTokenCount,omitempty"`
	ThoughtsTokenCount      int `json:"thoughtsTokenCount,omitempty"`
}
