package google

import "github.com/tidwall/gjson"

// Adapter implements adapters.ProviderAdapter for the Google Generative
// Language wire format.
type Adapter struct{}

// New returns the Google Generative Language adapter.
func New() *Adapter { return &Adapter{} }

func (*Adapter) Name() string { return "google" }

// DetectRequest reports whether payload looks like a Google
// generateContent request: a top-level "contents" array with "role"/"parts"
// shaped entries, distinct from every other supported format's "messages"
// array.
func (*Adapter) DetectRequest(payload []byte) bool {
	contents := gjson.GetBytes(payload, "contents")
	if !contents.IsArray() {
		return false
	}
	first := contents.Array()
	if len(first) == 0 {
		return true
	}
	return first[0].Get("parts").Exists()
}
