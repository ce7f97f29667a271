// Package adapters declares the ProviderAdapter capability every supported
// wire format implements, plus an ordered registry used for format
// detection. Concrete adapters live in sibling packages
// (adapters/openaichat, adapters/anthropicmsg, ...).
package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/braintrustdata/llm-router/ir"
)

// ErrorKind classifies a ConvertError.
type ErrorKind string

const (
	ErrUnsupportedInputType    ErrorKind = "unsupported_input_type"
	ErrMissingRequiredField    ErrorKind = "missing_required_field"
	ErrInvalidRole             ErrorKind = "invalid_role"
	ErrContentConversionFailed ErrorKind = "content_conversion_failed"
	ErrJSONSerializationFailed ErrorKind = "json_serialization_failed"
)

// ConvertError is returned by every adapter operation on failure. Adapters
// must never partially populate their output before returning one: callers
// can treat any ConvertError as "nothing happened."
type ConvertError struct {
	Kind  ErrorKind
	Field string
	Message string
	Cause   error
}

func (e *ConvertError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ConvertError) Unwrap() error { return e.Cause }

// MissingField builds a ConvertError for a required-but-absent field.
func MissingField(field string) *ConvertError {
	return &ConvertError{Kind: ErrMissingRequiredField, Field: field, Message: "required field is missing"}
}

// InvalidRole builds a ConvertError for a role the adapter cannot represent.
func InvalidRole(role ir.Role) *ConvertError {
	return &ConvertError{Kind: ErrInvalidRole, Message: fmt.Sprintf("unsupported role %q", role)}
}

// ContentFailed builds a ConvertError for a content part that could not be
// translated.
func ContentFailed(message string, cause error) *ConvertError {
	return &ConvertError{Kind: ErrContentConversionFailed, Message: message, Cause: cause}
}

// JSONFailed wraps a json.Marshal/Unmarshal failure.
func JSONFailed(cause error) *ConvertError {
	return &ConvertError{Kind: ErrJSONSerializationFailed, Message: "json serialization failed", Cause: cause}
}

// ParsedStreamEventKind classifies the result of parsing one upstream
// framed event.
type ParsedStreamEventKind string

const (
	ParsedChunk   ParsedStreamEventKind = "chunk"
	ParsedDone    ParsedStreamEventKind = "done"
	ParsedError   ParsedStreamEventKind = "error"
	ParsedIgnored ParsedStreamEventKind = "ignored"
)

// ParsedStreamEvent is the result of handing one framed upstream event to an
// adapter's stream-event parser.
type ParsedStreamEvent struct {
	Kind  ParsedStreamEventKind
	Chunk *ir.StreamChunk
	ErrKind string
	ErrMsg  string
}

// ProviderAdapter is the capability every supported wire format implements:
// four fallible bidirectional operations between a provider-native payload
// and the universal IR, plus request detection and per-event stream
// parsing. Adapters are stateless value objects; a Registry holds them in
// priority order for detection.
type ProviderAdapter interface {
	// Name identifies the adapter for routing/logging (e.g. "anthropic",
	// "openai_chat", "bedrock_anthropic").
	Name() string

	// DetectRequest reports whether payload structurally matches this
	// adapter's request shape. At most one adapter should claim a given
	// payload; callers try adapters in registry order and take the first
	// match.
	DetectRequest(payload []byte) bool

	RequestToUniversal(payload []byte) (*ir.Request, error)
	UniversalToRequest(req *ir.Request) ([]byte, error)

	ResponseToUniversal(payload []byte) (*ir.Response, error)
	UniversalToResponse(resp *ir.Response) ([]byte, error)

	// NewStreamDecoder returns a fresh, single-stream-scoped decoder that
	// interprets one already-framed upstream event at a time (e.g. the
	// field(s) between two SSE blank-line boundaries, or one JSON-array
	// element) and classifies it. A new instance must be created per
	// upstream stream: incremental tool-call assembly and content-block
	// bookkeeping (e.g. Anthropic's content_block index -> id/name map)
	// are carried in decoder state, not on the adapter itself.
	NewStreamDecoder() StreamDecoder

	// NewStreamEncoder returns a fresh, single-stream-scoped encoder that
	// renders universal stream chunks in this adapter's native per-event
	// JSON shape (the caller is responsible for framing each returned
	// event, e.g. as an SSE "data:" line). A new instance must be created
	// per outgoing stream for the same reason as NewStreamDecoder.
	NewStreamEncoder() StreamEncoder
}

// StreamDecoder parses one provider's framed upstream events into universal
// stream chunks, carrying whatever per-stream state that requires.
type StreamDecoder interface {
	ParseEvent(event []byte) ParsedStreamEvent
}

// StreamEncoder renders universal stream chunks into one provider's native
// per-event JSON shape, carrying whatever per-stream state that requires
// (e.g. which content-block indices have already been opened).
type StreamEncoder interface {
	EncodeChunk(chunk *ir.StreamChunk) ([][]byte, error)
}

// Registry holds ProviderAdapter values in detection-priority order.
type Registry struct {
	adapters []ProviderAdapter
	byName   map[string]ProviderAdapter
}

// NewRegistry builds a Registry from adapters in priority order: earlier
// entries are tried first during detection.
func NewRegistry(adapters ...ProviderAdapter) *Registry {
	r := &Registry{adapters: adapters, byName: make(map[string]ProviderAdapter, len(adapters))}
	for _, a := range adapters {
		r.byName[a.Name()] = a
	}
	return r
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (ProviderAdapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Detect tries each adapter in registration order and returns the first
// whose DetectRequest claims the payload. preferred, when non-empty and
// registered, is tried first (used to break ties via a caller-supplied
// content-type hint).
func (r *Registry) Detect(payload []byte, preferred string) (ProviderAdapter, bool) {
	if preferred != "" {
		if a, ok := r.byName[preferred]; ok && a.DetectRequest(payload) {
			return a, true
		}
	}
	for _, a := range r.adapters {
		if a.DetectRequest(payload) {
			return a, true
		}
	}
	return nil, false
}

// Names lists registered adapter names in priority order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.adapters))
	for i, a := range r.adapters {
		out[i] = a.Name()
	}
	return out
}

// UnmarshalPeek is a small helper adapters use in DetectRequest to check for
// the presence of a handful of top-level keys without committing to a full
// typed unmarshal.
func UnmarshalPeek(payload []byte) (map[string]json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, false
	}
	return m, true
}
