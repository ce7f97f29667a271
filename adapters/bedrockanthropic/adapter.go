// Package bedrockanthropic implements the wire format Bedrock uses for
// InvokeModel calls against Anthropic-hosted models: the same Anthropic
// Messages body shape as adapters/anthropicmsg, minus the top-level "model"
// field (the model travels in the InvokeModel URL path instead) and with a
// Bedrock-specific anthropic_version value. Field-level mapping is entirely
// delegated to adapters/anthropicmsg; this package only adapts the
// invocation envelope.
package bedrockanthropic

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/adapters/anthropicmsg"
	"github.com/braintrustdata/llm-router/ir"
)

const anthropicVersion = "bedrock-2023-05-31"

// Adapter implements adapters.ProviderAdapter for Bedrock-hosted Anthropic
// models, delegating request/response field mapping to anthropicmsg.Adapter.
type Adapter struct {
	inner *anthropicmsg.Adapter
}

// New returns the Bedrock-hosted Anthropic adapter.
func New() *Adapter { return &Adapter{inner: anthropicmsg.New()} }

func (*Adapter) Name() string { return "bedrock_anthropic" }

// DetectRequest reports whether payload looks like a Bedrock InvokeModel
// body for an Anthropic model: the Messages shape (messages + max_tokens)
// but no top-level "model", since Bedrock's InvokeModel identifies the
// model via the request URL rather than the body. A body carrying a
// Vertex-flavored anthropic_version belongs to the sibling
// vertexanthropic adapter; one without any version defaults here.
func (*Adapter) DetectRequest(payload []byte) bool {
	if gjson.GetBytes(payload, "model").Exists() {
		return false
	}
	if !gjson.GetBytes(payload, "messages").IsArray() {
		return false
	}
	if ver := gjson.GetBytes(payload, "anthropic_version"); ver.Exists() {
		return strings.HasPrefix(ver.String(), "bedrock-")
	}
	return gjson.GetBytes(payload, "max_tokens").Exists()
}

// RequestToUniversal injects a placeholder model identifier before
// delegating, since the universal ir.Request always carries a Model field
// but Bedrock's InvokeModel body never does; callers that know the actual
// model (from the URL path) should overwrite req.Model afterward.
func (a *Adapter) RequestToUniversal(payload []byte) (*ir.Request, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	if _, ok := m["model"]; !ok {
		modelJSON, err := json.Marshal(ir.PlaceholderModel)
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
		m["model"] = modelJSON
		payload, err = json.Marshal(m)
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
	}
	return a.inner.RequestToUniversal(payload)
}

// UniversalToRequest delegates field mapping to anthropicmsg, then strips
// the top-level "model" field (the Bedrock envelope carries it in the URL)
// and overwrites anthropic_version with Bedrock's required value.
func (a *Adapter) UniversalToRequest(req *ir.Request) ([]byte, error) {
	data, err := a.inner.UniversalToRequest(req)
	if err != nil {
		return nil, err
	}
	return rewriteEnvelope(data)
}

func rewriteEnvelope(data []byte) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	delete(m, "model")
	delete(m, "stream")
	versionJSON, err := json.Marshal(anthropicVersion)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	m["anthropic_version"] = versionJSON
	return json.Marshal(m)
}

func (a *Adapter) ResponseToUniversal(payload []byte) (*ir.Response, error) {
	return a.inner.ResponseToUniversal(payload)
}

func (a *Adapter) UniversalToResponse(resp *ir.Response) ([]byte, error) {
	return a.inner.UniversalToResponse(resp)
}

func (a *Adapter) NewStreamDecoder() adapters.StreamDecoder { return a.inner.NewStreamDecoder() }

func (a *Adapter) NewStreamEncoder() adapters.StreamEncoder { return a.inner.NewStreamEncoder() }
