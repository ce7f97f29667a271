package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_StockValues(t *testing.T) {
	s := DefaultSettings()
	require.Equal(t, 16, s.MaxIdleConnsPerHost)
	require.Contains(t, s.UserAgent, "braintrust-llm-router/")
}

func TestBuild_SetsUserAgentWhenCallerOmitsOne(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := Build(DefaultSettings())
	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Contains(t, gotUA, "braintrust-llm-router/")
}

func TestBuild_PreservesCallerSuppliedUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := Build(DefaultSettings())
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom-agent/1")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "custom-agent/1", gotUA)
}

func TestDefault_ReturnsSameInstanceAcrossCalls(t *testing.T) {
	require.Same(t, Default(), Default())
}
