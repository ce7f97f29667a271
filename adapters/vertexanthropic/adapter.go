// Package vertexanthropic implements the wire format Vertex AI uses for
// rawPredict calls against publisher-hosted Anthropic models: the same
// Anthropic Messages body shape as adapters/anthropicmsg, minus the
// top-level "model" field (the model travels in the publisher-model
// endpoint path, e.g. "publishers/anthropic/models/<base>:rawPredict") and
// with a Vertex-specific anthropic_version value. Field-level mapping is
// entirely delegated to adapters/anthropicmsg; this package only adapts the
// invocation envelope, mirroring adapters/bedrockanthropic's envelope-only
// wrapper for the sibling Bedrock flavor.
package vertexanthropic

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/adapters/anthropicmsg"
	"github.com/braintrustdata/llm-router/ir"
)

const anthropicVersion = "vertex-2023-10-16"

// Adapter implements adapters.ProviderAdapter for Vertex-hosted Anthropic
// models, delegating request/response field mapping to anthropicmsg.Adapter.
type Adapter struct {
	inner *anthropicmsg.Adapter
}

// New returns the Vertex-hosted Anthropic adapter.
func New() *Adapter { return &Adapter{inner: anthropicmsg.New()} }

func (*Adapter) Name() string { return "vertex_anthropic" }

// DetectRequest reports whether payload looks like a Vertex rawPredict body
// for an Anthropic model: the Messages shape with a Vertex-flavored
// anthropic_version and no top-level "model", since the publisher-model
// endpoint path carries the model instead. Version-less model-less bodies
// default to the sibling bedrockanthropic adapter.
func (*Adapter) DetectRequest(payload []byte) bool {
	if gjson.GetBytes(payload, "model").Exists() {
		return false
	}
	if !gjson.GetBytes(payload, "messages").IsArray() {
		return false
	}
	ver := gjson.GetBytes(payload, "anthropic_version")
	return ver.Exists() && strings.HasPrefix(ver.String(), "vertex-")
}

// RequestToUniversal injects a placeholder model identifier before
// delegating, since the universal ir.Request always carries a Model field
// but Vertex's rawPredict body never does; callers that know the actual
// model (from the endpoint path) should overwrite req.Model afterward.
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
// the top-level "model"/"stream" fields (Vertex's envelope carries neither:
// the endpoint path selects the model, and rawPredict/streamRawPredict
// selects streaming) and overwrites anthropic_version with Vertex's
// required value.
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
