package transform

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientHeaders_StripsCanonicalSet(t *testing.T) {
	in := http.Header{}
	in.Set("Host", "api.example.com")
	in.Set("X-Amzn-Trace-Id", "abc")
	in.Set("Anthropic-Beta", "tools-2024-05-16")
	in.Set("X-Custom", "1")
	in.Set("Sec-Fetch-Mode", "cors")
	in.Set("X-Bt-Internal", "secret")

	out := ClientHeaders(in)

	require.Empty(t, out.Get("Host"))
	require.Empty(t, out.Get("X-Amzn-Trace-Id"))
	require.Empty(t, out.Get("Sec-Fetch-Mode"))
	require.Empty(t, out.Get("X-Bt-Internal"))
	require.Equal(t, "tools-2024-05-16", out.Get("Anthropic-Beta"))
	require.Equal(t, "1", out.Get("X-Custom"))
}

func TestClientHeaders_Idempotent(t *testing.T) {
	in := http.Header{}
	in.Set("Host", "api.example.com")
	in.Set("X-Custom", "1")

	once := ClientHeaders(in)
	twice := ClientHeaders(once)
	require.Equal(t, once, twice)
}
