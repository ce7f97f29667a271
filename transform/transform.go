// Package transform implements the transformation dispatcher: given a
// source format, a target format, and payload bytes, it routes the payload
// through the universal IR via the two adapters, applying target-driven
// universal-level normalization (system extraction, message flattening)
// and model-specific request rewrites along the way.
package transform

import (
	"fmt"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

// needsFlattening lists target adapter names that reject or misbehave on
// consecutive same-role messages.
var needsFlattening = map[string]bool{
	"anthropic":         true,
	"bedrock_anthropic": true,
	"vertex_anthropic":  true,
	"google":            true,
}

// needsSystemExtraction lists target adapter names whose wire format
// carries system content in a top-level field rather than as a leading
// message.
var needsSystemExtraction = map[string]bool{
	"anthropic":         true,
	"bedrock_anthropic": true,
	"vertex_anthropic":  true,
	"google":            true,
}

// normalizeForTarget applies the universal-level decisions that are a pure
// function of the target format: extracting leading
// system messages and flattening consecutive same-role messages. Adapters
// whose target format keeps system as an ordinary leading message (OpenAI
// Chat/Responses, Mistral, Bedrock Converse) are left untouched; their own
// encode path still needs system messages in place.
func normalizeForTarget(req *ir.Request, targetName string) *ir.Request {
	if !needsSystemExtraction[targetName] && !needsFlattening[targetName] {
		return req
	}
	out := *req
	msgs := req.Messages
	if needsFlattening[targetName] {
		msgs = ir.FlattenConsecutiveMessages(msgs)
	}
	out.Messages = msgs
	return &out
}

// TransformRequest parses body with the source adapter, applies
// target-driven universal normalization, then emits via the target adapter.
// When source == target by name, the round trip still runs (producing a
// sanitized but semantically equal payload: whitespace-normalized, with any
// source-only extraneous keys dropped).
func TransformRequest(source, target adapters.ProviderAdapter, body []byte) ([]byte, error) {
	req, err := source.RequestToUniversal(body)
	if err != nil {
		return nil, fmt.Errorf("transform: source %s request_to_universal: %w", source.Name(), err)
	}
	req = normalizeForTarget(req, target.Name())

	// Model-specific field rewrites (reasoning-family token-limit renames,
	// output_config.effort) happen inside the target adapter: they depend
	// on wire-level field names only that adapter knows.
	out, err := target.UniversalToRequest(req)
	if err != nil {
		return nil, fmt.Errorf("transform: target %s universal_to_request: %w", target.Name(), err)
	}
	return out, nil
}

// TransformResponse parses body with the source adapter's response decoder
// and re-emits it via the target adapter's response encoder.
func TransformResponse(source, target adapters.ProviderAdapter, body []byte) ([]byte, error) {
	resp, err := source.ResponseToUniversal(body)
	if err != nil {
		return nil, fmt.Errorf("transform: source %s response_to_universal: %w", source.Name(), err)
	}
	out, err := target.UniversalToResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("transform: target %s universal_to_response: %w", target.Name(), err)
	}
	return out, nil
}

// TransformChunk translates a single already-framed stream event from the
// source format to the target format, outside any stream context: fresh
// decoder/encoder state per call. Events the source classifies as
// ignorable or terminal yield no output; continuous translation of a whole
// stream belongs to the streaming package, which carries decoder/encoder
// state across events.
func TransformChunk(source, target adapters.ProviderAdapter, event []byte) ([][]byte, error) {
	parsed := source.NewStreamDecoder().ParseEvent(event)
	switch parsed.Kind {
	case adapters.ParsedChunk:
		out, err := target.NewStreamEncoder().EncodeChunk(parsed.Chunk)
		if err != nil {
			return nil, fmt.Errorf("transform: target %s universal_to_chunk: %w", target.Name(), err)
		}
		return out, nil
	case adapters.ParsedError:
		return nil, fmt.Errorf("transform: source %s chunk: %s: %s", source.Name(), parsed.ErrKind, parsed.ErrMsg)
	default:
		return nil, nil
	}
}
