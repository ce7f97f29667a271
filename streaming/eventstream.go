package streaming

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
)

// EventStreamReader frames an io.Reader carrying AWS's binary
// application/vnd.amazon.eventstream body (Bedrock's ConverseStream
// response) into RawEvents, one per message payload. The eventstream
// envelope names each event in a ":event-type" header rather than in the
// payload itself, so the reader splices that name into the payload JSON as
// an explicit "type" discriminator; downstream decoders then work from the
// payload alone, the same way they do for SSE-framed providers.
type EventStreamReader struct {
	r   io.Reader
	dec *eventstream.Decoder
}

// NewEventStreamReader returns a FramedReader that parses r as an AWS
// eventstream binary message stream.
func NewEventStreamReader(r io.Reader) *EventStreamReader {
	return &EventStreamReader{r: r, dec: eventstream.NewDecoder()}
}

func (e *EventStreamReader) Next(ctx context.Context) (RawEvent, error) {
	if err := ctx.Err(); err != nil {
		return RawEvent{}, err
	}
	msg, err := e.dec.Decode(e.r, nil)
	if err != nil {
		return RawEvent{}, err
	}
	typ := headerString(msg.Headers, ":event-type")
	if typ == "" {
		typ = headerString(msg.Headers, ":exception-type")
	}
	return RawEvent{Data: injectEventType(typ, msg.Payload)}, nil
}

func headerString(headers eventstream.Headers, name string) string {
	for _, h := range headers {
		if h.Name != name {
			continue
		}
		if sv, ok := h.Value.(eventstream.StringValue); ok {
			return string(sv)
		}
	}
	return ""
}

// injectEventType prepends a "type" member to a JSON-object payload,
// leaving the payload's own members byte-for-byte intact (tool-use input
// fragments must concatenate verbatim downstream).
func injectEventType(typ string, payload []byte) []byte {
	tag, _ := json.Marshal(typ)
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) < 2 || trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' {
		return []byte(`{"type":` + string(tag) + `}`)
	}
	inner := bytes.TrimSpace(trimmed[1 : len(trimmed)-1])
	var b bytes.Buffer
	b.WriteString(`{"type":`)
	b.Write(tag)
	if len(inner) > 0 {
		b.WriteByte(',')
		b.Write(inner)
	}
	b.WriteByte('}')
	return b.Bytes()
}
