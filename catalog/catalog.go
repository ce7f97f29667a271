// Package catalog resolves a model identifier to its canonical provider
// wire format, endpoint flavor, and auth kind via a static, build-time
// bundled table. Lookup is exact-match first with a bounded prefix
// normalization fallback; SetLookup lets hosts swap the whole table
// atomically.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
)

// Flavor distinguishes an OpenAI-compatible endpoint dialect from a
// provider-native one within the same wire format family.
type Flavor string

const (
	FlavorOpenAICompatible Flavor = "openai_compatible"
	FlavorNative           Flavor = "native"
)

// AuthType names the credential kind a provider format requires; the router
// uses this to select a Credential implementation from package auth.
type AuthType string

const (
	AuthStaticKey   AuthType = "static_key"
	AuthGoogleOAuth AuthType = "google_oauth"
	AuthAzureEntra  AuthType = "azure_entra"
	AuthDatabricks  AuthType = "databricks"
	AuthAWSSigV4    AuthType = "aws_sigv4"
)

// CapabilityFlags records provider/model capabilities the router or
// dispatcher may need to branch on (e.g. whether streaming is supported at
// all, or whether the model is reasoning-family for the request rewrites in
// adapters/*).
type CapabilityFlags struct {
	SupportsStreaming bool `json:"supports_streaming"`
	SupportsTools     bool `json:"supports_tools"`
	SupportsReasoning bool `json:"supports_reasoning"`
	SupportsVision    bool `json:"supports_vision"`
}

// Entry is one model catalog row.
type Entry struct {
	ModelID          string          `json:"model_id"`
	ProviderFormat   string          `json:"provider_format"`
	Flavor           Flavor          `json:"flavor"`
	EndpointTemplate string          `json:"endpoint_template,omitempty"`
	AuthType         AuthType        `json:"auth_type"`
	CapabilityFlags  CapabilityFlags `json:"capability_flags"`
}

//go:embed catalog.json
var bundledFS embed.FS

// BundledCatalogJSON is the build-time catalog blob, exposed verbatim so
// hosts can inspect or extend the table they inherit.
var BundledCatalogJSON []byte

func init() {
	data, err := bundledFS.ReadFile("catalog.json")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog.json missing or unreadable: %v", err))
	}
	BundledCatalogJSON = data
}

// Resolver resolves a model identifier to its catalog Entry.
type Resolver interface {
	Resolve(model string) (Entry, bool)
}

// Table is a Resolver backed by an in-memory map, built once from parsed
// JSON and never mutated afterward.
type Table struct {
	exact map[string]Entry
}

// ParseTable parses a catalog JSON blob (an array of Entry) into a Table.
func ParseTable(data []byte) (*Table, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("catalog: parse table: %w", err)
	}
	t := &Table{exact: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		t.exact[e.ModelID] = e
	}
	return t, nil
}

// knownPrefixes lists provider-qualified id prefixes stripped during
// suffix-fallback resolution, tried in order.
var knownPrefixes = []string{
	"anthropic.",
	"publishers/anthropic/models/",
	"models/",
}

// Resolve performs an exact match against the table, then a bounded set of
// normalizations: lowercasing, and stripping a known provider-qualifying
// prefix followed by a retried exact match (suffix fallback,
// e.g. "anthropic.claude-3-5-sonnet-20241022-v2:0" falling back to
// a bare "claude-3-5-sonnet-20241022-v2:0" entry when no exact Bedrock-
// qualified row exists).
func (t *Table) Resolve(model string) (Entry, bool) {
	if e, ok := t.exact[model]; ok {
		return e, true
	}
	lower := strings.ToLower(model)
	if e, ok := t.exact[lower]; ok {
		return e, true
	}
	for _, prefix := range knownPrefixes {
		if strings.HasPrefix(model, prefix) {
			base := strings.TrimPrefix(model, prefix)
			if e, ok := t.exact[base]; ok {
				return e, true
			}
		}
		if strings.HasPrefix(lower, prefix) {
			base := strings.TrimPrefix(lower, prefix)
			if e, ok := t.exact[base]; ok {
				return e, true
			}
		}
	}
	// Bedrock region-qualified ids (e.g. "us.anthropic.claude-...-v2:0")
	// carry an extra region-token segment before the provider prefix.
	if idx := strings.Index(lower, ".anthropic."); idx >= 0 {
		if e, ok := t.exact[lower[idx+1:]]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

var defaultResolver atomic.Pointer[Resolver]

func init() {
	table, err := ParseTable(BundledCatalogJSON)
	if err != nil {
		panic(err)
	}
	var r Resolver = table
	defaultResolver.Store(&r)
}

// Resolve resolves model against the process-wide default lookup (the
// bundled table, unless SetLookup has replaced it).
func Resolve(model string) (Entry, bool) {
	r := defaultResolver.Load()
	return (*r).Resolve(model)
}

// SetLookup atomically replaces the process-wide default lookup used by
// Resolve. Tests and embedding hosts use this to substitute an alternative
// table; the swap is a single atomic pointer store, so concurrent readers
// always see a complete, consistent Resolver.
func SetLookup(r Resolver) {
	defaultResolver.Store(&r)
}
