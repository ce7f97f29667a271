package router

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/streaming"
)

// DefaultErrorTruncateLimit bounds how much of an upstream provider's error
// message is echoed back to the caller.
const DefaultErrorTruncateLimit = 1024

// RenderError formats err in the caller's source wire format: the OpenAI
// error envelope for OpenAI-family callers, Anthropic's typed error object
// for Anthropic-family callers, Google's status envelope for Google
// callers, and a bare message object for Bedrock callers. It returns the
// HTTP status the error maps to alongside the body. Provider error
// messages are truncated to limit bytes (0 means
// DefaultErrorTruncateLimit).
func RenderError(sourceFormat string, err error, limit int) (int, []byte) {
	if limit <= 0 {
		limit = DefaultErrorTruncateLimit
	}
	status, kind := classify(err)
	msg := truncate(err.Error(), limit)

	var body any
	switch sourceFormat {
	case "anthropic", "bedrock_anthropic", "vertex_anthropic":
		body = map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": msg},
		}
	case "google":
		body = map[string]any{
			"error": map[string]any{"code": status, "status": kind, "message": msg},
		}
	case "bedrock_converse":
		body = map[string]any{"message": msg}
	default:
		// OpenAI Chat Completions, OpenAI Responses, Mistral, and anything
		// undetected: the OpenAI envelope is the lingua franca.
		body = map[string]any{
			"error": map[string]any{"message": msg, "type": kind, "code": nil},
		}
	}

	data, merr := json.Marshal(body)
	if merr != nil {
		return status, []byte(`{"error":{"message":"internal error"}}`)
	}
	return status, data
}

// classify maps this module's error taxonomy onto an HTTP status and a
// short machine-readable kind string.
func classify(err error) (int, string) {
	var convErr *adapters.ConvertError
	if errors.As(err, &convErr) {
		return http.StatusBadRequest, string(convErr.Kind)
	}
	var malformed *MalformedRequestError
	if errors.As(err, &malformed) {
		return http.StatusBadRequest, "malformed_request"
	}
	var unresolved *UnresolvedModelError
	if errors.As(err, &unresolved) {
		return http.StatusNotFound, "unresolved_model"
	}
	var unsupported *UnsupportedFormatError
	if errors.As(err, &unsupported) {
		return http.StatusBadRequest, "unsupported_format"
	}
	var notConfigured *ProviderNotConfiguredError
	if errors.As(err, &notConfigured) {
		return http.StatusNotImplemented, "provider_not_configured"
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return http.StatusUnauthorized, "auth_error"
	}
	var streamErr *streaming.StreamError
	if errors.As(err, &streamErr) {
		return http.StatusBadGateway, string(streamErr.Kind)
	}
	var upstream *UpstreamHTTPError
	if errors.As(err, &upstream) {
		status := upstream.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		kind := upstream.ProviderErrorKind
		if kind == "" {
			kind = "upstream_error"
		}
		return status, kind
	}
	return http.StatusBadGateway, "upstream_error"
}

// truncate clips s to at most limit bytes, appending an ellipsis marker
// when anything was dropped. The clip never splits a UTF-8 sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "…"
}
