package bedrock

import "github.com/tidwall/gjson"

// Adapter implements adapters.ProviderAdapter for the AWS Bedrock Converse
// API wire format.
type Adapter struct{}

// New returns the Bedrock Converse adapter.
func New() *Adapter { return &Adapter{} }

func (*Adapter) Name() string { return "bedrock_converse" }

// DetectRequest reports whether payload looks like a Converse request: a
// top-level "modelId" plus a "messages" array whose content blocks use
// Converse's {text:...}/{toolUse:...} shape rather than Anthropic's
// {type:"text"} tagged blocks.
func (*Adapter) DetectRequest(payload []byte) bool {
	if !gjson.GetBytes(payload, "modelId").Exists() {
		return false
	}
	msgs := gjson.GetBytes(payload, "messages")
	if !msgs.IsArray() {
		return false
	}
	if gjson.GetBytes(payload, "anthropic_version").Exists() {
		return false
	}
	return true
}
