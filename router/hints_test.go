package router

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractRequestHints_Model(t *testing.T) {
	h, err := ExtractRequestHints([]byte(`{"model":"gpt-4o","stream":true}`))
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", h.Model)
	require.True(t, h.Stream)
}

// TestExtractRequestHints_ModelIDFallback reads Bedrock's modelId alias and
// defaults stream to false when the field is absent.
func TestExtractRequestHints_ModelIDFallback(t *testing.T) {
	h, err := ExtractRequestHints([]byte(`{"modelId":"anthropic.claude-3-5-sonnet-20241022-v2:0","messages":[]}`))
	require.NoError(t, err)
	require.Equal(t, "anthropic.claude-3-5-sonnet-20241022-v2:0", h.Model)
	require.False(t, h.Stream)
}

func TestExtractRequestHints_MalformedJSON(t *testing.T) {
	_, err := ExtractRequestHints([]byte(`{not json`))
	var malformed *MalformedRequestError
	require.ErrorAs(t, err, &malformed)
}

func TestExtractRequestHints_MissingModel(t *testing.T) {
	_, err := ExtractRequestHints([]byte(`{"messages":[]}`))
	var malformed *MalformedRequestError
	require.ErrorAs(t, err, &malformed)
}
