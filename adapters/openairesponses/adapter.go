package openairesponses

import "github.com/tidwall/gjson"

// Adapter implements adapters.ProviderAdapter for the OpenAI Responses API.
type Adapter struct{}

// New returns the OpenAI Responses adapter.
func New() *Adapter { return &Adapter{} }

func (*Adapter) Name() string { return "openai_responses" }

// DetectRequest reports whether payload looks like a Responses API
// request: a top-level "input" field (array or string) and no "messages"
// array, distinguishing it from Chat Completions.
func (*Adapter) DetectRequest(payload []byte) bool {
	if gjson.GetBytes(payload, "messages").Exists() {
		return false
	}
	if gjson.GetBytes(payload, "anthropic_version").Exists() {
		return false
	}
	if gjson.GetBytes(payload, "contents").Exists() {
		return false
	}
	input := gjson.GetBytes(payload, "input")
	return input.Exists() && (input.IsArray() || input.Type == gjson.String)
}
