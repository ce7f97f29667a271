// Package auth implements the upstream credential managers: a shared
// Bearer() contract with per-auth-kind implementations (static key, Google
// service-account JWT exchange, Azure Entra client-credentials, Databricks
// PAT/OAuth M2M), each caching a bearer token with refresh-ahead and
// single-flight refresh serialization.
package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Credential is the shared contract every credential manager implements:
// return a valid bearer token, refreshing it if needed.
type Credential interface {
	Bearer(ctx context.Context) (string, error)
}

// cell is the shared mutable state backing every Credential below: a
// cached bearer token with an expiry and a single-flight group ensuring at
// most one refresh is in flight at a time. Reads of a token still within
// its validity window never touch the network.
type cell struct {
	mu     sync.RWMutex
	token  string
	expiry time.Time

	// leeway is subtracted from expiry when checking validity ("refresh
	// ahead"): a token within leeway of expiring is treated as already
	// expired so a refresh has time to complete before callers are handed
	// a token the provider would reject.
	leeway time.Duration

	group singleflight.Group
}

func newCell(leeway time.Duration) *cell {
	return &cell{leeway: leeway}
}

// valid reports whether the cached token can still be served without a
// refresh.
func (c *cell) valid() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return "", false
	}
	if time.Now().Add(c.leeway).After(c.expiry) {
		return "", false
	}
	return c.token, true
}

// store caches a freshly fetched token.
func (c *cell) store(token string, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiry = expiry
}

// getOrRefresh serves the cached token if still valid, otherwise runs fetch
// through the cell's single-flight group so concurrent callers straddling
// expiry share one in-flight refresh. A failed refresh is never cached:
// the next call retries rather than being pinned to an error.
func (c *cell) getOrRefresh(ctx context.Context, fetch func(context.Context) (string, time.Time, error)) (string, error) {
	if tok, ok := c.valid(); ok {
		return tok, nil
	}
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		if tok, ok := c.valid(); ok {
			return tok, nil
		}
		tok, expiry, err := fetch(ctx)
		if err != nil {
			return "", err
		}
		c.store(tok, expiry)
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
