package mistral

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/llm-router/ir"
)

func TestDetectRequest(t *testing.T) {
	a := New()
	require.True(t, a.DetectRequest([]byte(`{"model":"mistral-large-latest","messages":[{"role":"user","content":"hi"}],"safe_prompt":true}`)))
	require.False(t, a.DetectRequest([]byte(`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`)))
}

func TestSafePromptRoundTrip(t *testing.T) {
	a := New()
	req, err := a.RequestToUniversal([]byte(`{"model":"mistral-large-latest","messages":[{"role":"user","content":"hi"}],"safe_prompt":true}`))
	require.NoError(t, err)
	require.Contains(t, req.ProviderOptions, providerKey)

	data, err := a.UniversalToRequest(req)
	require.NoError(t, err)
	require.Contains(t, string(data), `"safe_prompt":true`)
}

func TestWithoutSafePromptPassesThrough(t *testing.T) {
	a := New()
	req := &ir.Request{
		Model:    "mistral-large-latest",
		Messages: []ir.Message{{Role: ir.RoleUser, Content: ir.NewTextContent("hi")}},
	}
	data, err := a.UniversalToRequest(req)
	require.NoError(t, err)
	require.NotContains(t, string(data), "safe_prompt")
}
