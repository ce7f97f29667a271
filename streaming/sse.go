// Package streaming implements the streaming translator: an
// event-at-a-time transformer consuming an upstream provider's framed byte
// stream (SSE or Google's JSON-array framing), parsing one event at a time
// via the source adapter's StreamDecoder, translating it through the
// universal IR, and re-emitting it via the target adapter's StreamEncoder
// with the target's own framing.
//
// The engine runs a goroutine per translated stream feeding a pull-style
// ChunkStream, so framing, decoding, and re-encoding all happen one event
// at a time regardless of the source wire framing.
package streaming

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
)

// RawEvent is one already-framed provider event, independent of which
// framing produced it (SSE blank-line boundary or JSON-array element).
type RawEvent struct {
	Data []byte
	// Done reports an explicit terminal sentinel ("[DONE]" for
	// OpenAI-family SSE); callers stop reading after this event.
	Done bool
}

// FramedReader yields one RawEvent at a time from an upstream byte stream,
// blocking on the underlying reader as needed. Implementations bound memory
// to a single in-flight event.
type FramedReader interface {
	Next(ctx context.Context) (RawEvent, error)
}

// SSEReader frames an io.Reader of text/event-stream bytes into RawEvents
// on blank-line boundaries. A frame's "data:" lines are
// newline-joined per the SSE spec; "event:"/"id:"/"retry:"/comment lines are
// read and discarded, since every supported adapter keys off the JSON
// payload alone, not the SSE event name.
type SSEReader struct {
	br   *bufio.Reader
	data bytes.Buffer
	any  bool
}

// NewSSEReader returns a FramedReader that parses r as an SSE byte stream.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next framed event. It returns io.EOF when the stream
// ends cleanly on a blank-line boundary with no further buffered data, or
// io.ErrUnexpectedEOF when the underlying reader ends mid-event (data
// buffered with no trailing blank-line terminator), the malformed-SSE
// boundary case callers rely on.
func (s *SSEReader) Next(ctx context.Context) (RawEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return RawEvent{}, err
		}
		line, readErr := s.br.ReadString('\n')
		text := strings.TrimRight(line, "\r\n")

		if text == "" {
			if s.any {
				data := append([]byte(nil), s.data.Bytes()...)
				s.data.Reset()
				s.any = false
				return classifySSE(data), nil
			}
			if readErr != nil {
				return RawEvent{}, readErr
			}
			continue
		}

		if strings.HasPrefix(text, "data:") {
			payload := strings.TrimPrefix(text, "data:")
			payload = strings.TrimPrefix(payload, " ")
			if s.any {
				s.data.WriteByte('\n')
			}
			s.data.WriteString(payload)
			s.any = true
		}
		// event:/id:/retry:/comment (":") lines are intentionally ignored.

		if readErr != nil {
			if s.any {
				return RawEvent{}, io.ErrUnexpectedEOF
			}
			return RawEvent{}, readErr
		}
	}
}

func classifySSE(data []byte) RawEvent {
	if strings.TrimSpace(string(data)) == "[DONE]" {
		return RawEvent{Data: data, Done: true}
	}
	return RawEvent{Data: data}
}
