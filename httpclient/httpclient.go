// Package httpclient provides the process-wide connection-pooled HTTP
// client used for every upstream dispatch: fixed connect/request timeouts,
// a bounded idle connection pool, and an identifying user agent.
package httpclient

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Version is the router's version string, embedded in the default client's
// user agent. Overridden at build time via -ldflags if desired.
var Version = "dev"

// Settings configures a pooled HTTP client. The zero value is not usable;
// use DefaultSettings() for the stock configuration.
type Settings struct {
	ConnectTimeout      time.Duration
	RequestTimeout      time.Duration
	PoolIdleTimeout     time.Duration
	MaxIdleConnsPerHost int
	UserAgent           string
}

// DefaultSettings returns the stock configuration: connect timeout 10s,
// request timeout 300s, idle-pool TTL 90s, <=16 idle connections per host,
// and the router's identifying user agent.
func DefaultSettings() Settings {
	return Settings{
		ConnectTimeout:      10 * time.Second,
		RequestTimeout:      300 * time.Second,
		PoolIdleTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 16,
		UserAgent:           "braintrust-llm-router/" + Version,
	}
}

// userAgentTransport wraps an http.RoundTripper, attaching a fixed
// identifying User-Agent to every outbound request unless the caller
// already set one. "user-agent" is one of the headers the dispatcher
// strips from the inbound caller request before forwarding, so this is the
// only place the outbound user agent is set.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// Build constructs a new pooled *http.Client from settings. Each call
// builds an independent client; callers that want the process-wide shared
// instance should use Default() instead.
func Build(settings Settings) *http.Client {
	dialer := &net.Dialer{Timeout: settings.ConnectTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		IdleConnTimeout:     settings.PoolIdleTimeout,
		MaxIdleConnsPerHost: settings.MaxIdleConnsPerHost,
		MaxIdleConns:        settings.MaxIdleConnsPerHost * 8,
	}
	return &http.Client{
		Transport: &userAgentTransport{base: transport, userAgent: settings.UserAgent},
		Timeout:   settings.RequestTimeout,
	}
}

var (
	defaultOnce   sync.Once
	defaultClient *http.Client
)

// Default returns the process-wide pooled client, built once on first use
// with DefaultSettings(). Mutation only happens via explicit
// re-configuration (constructing a fresh client with Build and a
// RouterBuilder.WithClient override); this package-level client is never
// mutated after construction.
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = Build(DefaultSettings())
	})
	return defaultClient
}
