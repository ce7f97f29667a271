package openaichat

import "github.com/tidwall/gjson"

// Adapter implements adapters.ProviderAdapter for OpenAI Chat Completions.
type Adapter struct{}

// New returns the OpenAI Chat Completions adapter.
func New() *Adapter { return &Adapter{} }

func (*Adapter) Name() string { return "openai_chat" }

// DetectRequest reports whether payload looks like a Chat Completions
// request: a "messages" array without the Responses API's "input" field
// and without Anthropic's "max_tokens"+"anthropic_version"/"system"
// combination or Google's "contents" array.
func (*Adapter) DetectRequest(payload []byte) bool {
	if !gjson.GetBytes(payload, "messages").IsArray() {
		return false
	}
	if gjson.GetBytes(payload, "anthropic_version").Exists() {
		return false
	}
	if gjson.GetBytes(payload, "contents").Exists() {
		return false
	}
	first := gjson.GetBytes(payload, "messages.0.role")
	if first.Exists() {
		switch first.String() {
		case "system", "developer", "user", "assistant", "tool":
		default:
			return false
		}
	}
	return true
}
