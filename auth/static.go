package auth

import "context"

// Static returns a preconfigured API key unchanged on every call. It never
// refreshes and never fails.
type Static struct {
	key string
}

// NewStatic returns a Credential that always serves apiKey.
func NewStatic(apiKey string) *Static { return &Static{key: apiKey} }

func (s *Static) Bearer(context.Context) (string, error) { return s.key, nil }
