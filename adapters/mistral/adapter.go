// Package mistral implements the Mistral chat completions wire format: an
// OpenAI Chat Completions-compatible body with one proprietary extension,
// "safe_prompt". Field mapping is entirely delegated to adapters/openaichat;
// this package only adds safe_prompt <-> ir.Request.ProviderOptions
// round-tripping, matching adapters/bedrockanthropic's envelope-only
// wrapper pattern for a sibling delegated adapter.
package mistral

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/adapters/openaichat"
	"github.com/braintrustdata/llm-router/ir"
)

const providerKey = "mistral"

// Adapter implements adapters.ProviderAdapter for Mistral's API, delegating
// field mapping to openaichat.Adapter.
type Adapter struct {
	inner *openaichat.Adapter
}

// New returns the Mistral adapter.
func New() *Adapter { return &Adapter{inner: openaichat.New()} }

func (*Adapter) Name() string { return "mistral" }

// DetectRequest reports whether payload looks like a Mistral request: the
// Chat Completions "messages" shape plus the "safe_prompt" extension that
// distinguishes it from a plain OpenAI Chat Completions body.
func (*Adapter) DetectRequest(payload []byte) bool {
	if !gjson.GetBytes(payload, "messages").IsArray() {
		return false
	}
	return gjson.GetBytes(payload, "safe_prompt").Exists()
}

// RequestToUniversal delegates to openaichat, then carries safe_prompt
// through as a provider option so a round-trip back to Mistral preserves it.
func (a *Adapter) RequestToUniversal(payload []byte) (*ir.Request, error) {
	req, err := a.inner.RequestToUniversal(payload)
	if err != nil {
		return nil, err
	}
	if sp := gjson.GetBytes(payload, "safe_prompt"); sp.Exists() {
		raw, err := json.Marshal(sp.Bool())
		if err != nil {
			return nil, adapters.JSONFailed(err)
		}
		if req.ProviderOptions == nil {
			req.ProviderOptions = map[string]json.RawMessage{}
		}
		req.ProviderOptions[providerKey] = json.RawMessage(`{"safe_prompt":` + string(raw) + `}`)
	}
	return req, nil
}

// UniversalToRequest delegates to openaichat, then re-attaches safe_prompt
// from req.ProviderOptions["mistral"] if present.
func (a *Adapter) UniversalToRequest(req *ir.Request) ([]byte, error) {
	data, err := a.inner.UniversalToRequest(req)
	if err != nil {
		return nil, err
	}
	raw, ok := req.ProviderOptions[providerKey]
	if !ok {
		return data, nil
	}
	safePrompt := gjson.GetBytes(raw, "safe_prompt")
	if !safePrompt.Exists() {
		return data, nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, adapters.JSONFailed(err)
	}
	spJSON, err := json.Marshal(safePrompt.Bool())
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	m["safe_prompt"] = spJSON
	data, err = json.Marshal(m)
	if err != nil {
		return nil, adapters.JSONFailed(err)
	}
	return data, nil
}

func (a *Adapter) ResponseToUniversal(payload []byte) (*ir.Response, error) {
	return a.inner.ResponseToUniversal(payload)
}

func (a *Adapter) UniversalToResponse(resp *ir.Response) ([]byte, error) {
	return a.inner.UniversalToResponse(resp)
}

func (a *Adapter) NewStreamDecoder() adapters.StreamDecoder { return a.inner.NewStreamDecoder() }

func (a *Adapter) NewStreamEncoder() adapters.StreamEncoder { return a.inner.NewStreamEncoder() }
