package transform

import (
	"net/http"
	"strings"
)

// strippedHeaders is the canonical strip-set: hop-by-hop,
// security, and browser-tracking headers discarded before forwarding a
// caller's request upstream. Every other header (including
// "anthropic-beta", "accept", and custom "x-*" headers) passes through
// unchanged in name, value, and order.
var strippedHeaders = map[string]bool{
	"host":            true,
	"content-length":  true,
	"origin":          true,
	"referer":         true,
	"user-agent":      true,
	"cache-control":   true,
	"priority":        true,
	"x-amzn-trace-id": true,
}

func isStripped(canonicalKey string) bool {
	lower := strings.ToLower(canonicalKey)
	if strippedHeaders[lower] {
		return true
	}
	if strings.HasPrefix(lower, "sec-fetch-") {
		return true
	}
	if strings.HasPrefix(lower, "x-bt-") {
		return true
	}
	return false
}

// ClientHeaders returns a copy of in with the canonical strip-set removed.
// Header names are matched case-insensitively (via http.CanonicalHeaderKey,
// same as net/http itself); all other headers, including their values and
// relative order, are preserved unchanged. sanitize ∘ sanitize = sanitize:
// re-sanitizing an already-sanitized header map is a no-op, since the
// strip-set check is a pure function of each key.
func ClientHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for k, v := range in {
		canon := http.CanonicalHeaderKey(k)
		if isStripped(canon) {
			continue
		}
		out[canon] = append([]string(nil), v...)
	}
	return out
}
