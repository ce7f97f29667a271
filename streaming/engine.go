package streaming

import (
	"context"
	"errors"
	"io"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/ir"
)

// ChunkStream is a pull-style, single-producer single-consumer sequence of
// universal stream chunks decoded from one upstream provider stream. It
// bounds memory to one in-flight event. A ChunkStream is
// scoped to a single upstream stream and must not be shared across
// concurrent requests.
type ChunkStream struct {
	reader  FramedReader
	decoder adapters.StreamDecoder
	index   int
}

// NewChunkStream returns a ChunkStream that decodes upstream's bytes using
// source's native framing and StreamDecoder.
func NewChunkStream(source adapters.ProviderAdapter, upstream io.Reader) *ChunkStream {
	return &ChunkStream{
		reader:  NewFramedReader(source.Name(), upstream),
		decoder: source.NewStreamDecoder(),
	}
}

// Next pulls and decodes the next universal chunk. It returns (nil, nil) at
// clean end of stream, after which Next must not be called again.
func (cs *ChunkStream) Next(ctx context.Context) (*ir.StreamChunk, error) {
	for {
		ev, err := cs.reader.Next(ctx)
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, &StreamError{UpstreamEventIndex: cs.index, Kind: FramingFailure, Message: err.Error()}
		}
		cs.index++
		if ev.Done {
			return nil, nil
		}

		parsed := cs.decoder.ParseEvent(ev.Data)
		switch parsed.Kind {
		case adapters.ParsedIgnored:
			continue
		case adapters.ParsedDone:
			return nil, nil
		case adapters.ParsedError:
			return nil, &StreamError{UpstreamEventIndex: cs.index, Kind: ErrorKind(parsed.ErrKind), Message: parsed.ErrMsg}
		case adapters.ParsedChunk:
			return parsed.Chunk, nil
		default:
			continue
		}
	}
}

// Engine is the streaming translator: it consumes an
// upstream provider's framed stream via a ChunkStream and re-emits each
// universal chunk through the target adapter's StreamEncoder, preserving
// SSE boundaries and finish-reason-exactly-once semantics.
type Engine struct{}

// NewEngine returns a streaming translation Engine. Engine is stateless;
// state lives in the per-call ChunkStream/FrameWriter values it constructs.
func NewEngine() *Engine { return &Engine{} }

// Translate consumes upstream using source's native framing/decoder,
// re-emits via target's encoder/framing into w, and finally closes the
// target framing (OpenAI-family "[DONE]", Google's closing "]", or nothing
// for Anthropic-family targets whose own event sequence is self-terminating
// with message_stop).
//
// Finish-reason propagation: a finish reason observed on any incoming
// chunk's choice is carried into exactly one outgoing chunk for that
// choice, tracked by seenFinish so a provider that (incorrectly) repeats a
// finish reason across multiple chunks for the same choice index never
// produces a duplicate in the target stream.
func (e *Engine) Translate(ctx context.Context, source, target adapters.ProviderAdapter, upstream io.Reader, w io.Writer) error {
	cs := NewChunkStream(source, upstream)
	encoder := target.NewStreamEncoder()
	fw := NewFrameWriter(target.Name(), w)

	seenFinish := map[int]bool{}
	emitted := false

	// Once frames have reached the caller the HTTP status is long gone, so
	// a mid-stream failure is signaled as a final error event in the
	// caller's own format before the stream closes.
	fail := func(serr error) error {
		if emitted {
			var se *StreamError
			if errors.As(serr, &se) {
				_ = fw.WriteError(se)
			}
			_ = fw.Close()
		}
		return serr
	}

	for {
		chunk, err := cs.Next(ctx)
		if err != nil {
			return fail(err)
		}
		if chunk == nil {
			return fw.Close()
		}

		for i, c := range chunk.Choices {
			if c.FinishReason == "" {
				continue
			}
			if seenFinish[c.Index] {
				chunk.Choices[i].FinishReason = ""
				continue
			}
			seenFinish[c.Index] = true
		}

		frames, err := encoder.EncodeChunk(chunk)
		if err != nil {
			return fail(&StreamError{UpstreamEventIndex: cs.index, Kind: ChunkConversionFailure, Message: err.Error()})
		}
		for _, f := range frames {
			if err := fw.WriteFrame(f); err != nil {
				return &StreamError{UpstreamEventIndex: cs.index, Kind: UpstreamDisconnect, Message: err.Error()}
			}
			emitted = true
		}
	}
}
