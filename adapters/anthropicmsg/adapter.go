package anthropicmsg

import "github.com/tidwall/gjson"

// Adapter implements adapters.ProviderAdapter for the directly-hosted
// Anthropic Messages API (api.anthropic.com). It is a stateless value
// object; per-stream state lives in the StreamDecoder/StreamEncoder it
// produces.
type Adapter struct{}

// New returns the Anthropic Messages adapter.
func New() *Adapter { return &Adapter{} }

// Name identifies this adapter for routing/logging.
func (*Adapter) Name() string { return "anthropic" }

// DetectRequest reports whether payload looks like a directly-hosted
// Anthropic Messages request: a top-level "model" and "max_tokens" next to
// a "messages" array, and critically no "anthropic_version" field (which
// marks the Bedrock- and Vertex-hosted Anthropic variants instead).
func (*Adapter) DetectRequest(payload []byte) bool {
	if gjson.GetBytes(payload, "anthropic_version").Exists() {
		return false
	}
	msgs := gjson.GetBytes(payload, "messages")
	if !msgs.IsArray() {
		return false
	}
	// A role the Messages API cannot represent (system, developer, tool)
	// marks an OpenAI-shaped body even when max_tokens is present.
	for _, m := range msgs.Array() {
		switch m.Get("role").String() {
		case "user", "assistant":
		default:
			return false
		}
	}
	return gjson.GetBytes(payload, "model").Exists() && gjson.GetBytes(payload, "max_tokens").Exists()
}
