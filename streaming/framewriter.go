package streaming

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
	"github.com/tidwall/gjson"
)

// FrameWriter writes target-format-framed bytes for each re-emitted
// universal chunk and knows how to close out the stream in the target's
// own framing. WriteError renders a mid-stream failure as a final error
// event in the target's native error shape before the stream is closed.
type FrameWriter interface {
	WriteFrame(data []byte) error
	WriteError(serr *StreamError) error
	Close() error
}

// jsonArrayFraming lists adapter names whose native stream framing is a
// top-level JSON array of elements (Google), rather than SSE.
var jsonArrayFraming = map[string]bool{
	"google": true,
}

// eventStreamFraming lists adapter names whose native stream framing is
// AWS's binary eventstream envelope (Bedrock Converse).
var eventStreamFraming = map[string]bool{
	"bedrock_converse": true,
}

// doneTerminated lists SSE-framed adapter names whose stream ends with an
// explicit "data: [DONE]\n\n" sentinel.
var doneTerminated = map[string]bool{
	"openai_chat":      true,
	"openai_responses": true,
	"mistral":          true,
}

// typedEventFraming lists SSE-framed adapter names whose protocol names
// each event in an "event:" line (Anthropic's typed event sequence). The
// event name is recovered from the payload's own "type" discriminator.
var typedEventFraming = map[string]bool{
	"anthropic":         true,
	"bedrock_anthropic": true,
	"vertex_anthropic":  true,
}

// NewFramedReader returns the FramedReader appropriate for sourceName's
// native upstream framing.
func NewFramedReader(sourceName string, upstream io.Reader) FramedReader {
	switch {
	case jsonArrayFraming[sourceName]:
		return NewJSONArrayReader(upstream)
	case eventStreamFraming[sourceName]:
		return NewEventStreamReader(upstream)
	default:
		return NewSSEReader(upstream)
	}
}

// NewFrameWriter returns the FrameWriter appropriate for targetName's
// native outgoing framing.
func NewFrameWriter(targetName string, w io.Writer) FrameWriter {
	switch {
	case jsonArrayFraming[targetName]:
		return &jsonArrayFrameWriter{w: w}
	case eventStreamFraming[targetName]:
		return &eventStreamFrameWriter{w: w, enc: eventstream.NewEncoder()}
	default:
		return &sseFrameWriter{w: w, sendDone: doneTerminated[targetName], eventNames: typedEventFraming[targetName]}
	}
}

// sseFrameWriter renders each frame as a "data: <json>\n\n" SSE event,
// optionally preceded by an "event: <type>\n" line for targets with typed
// event sequences and optionally trailing with "data: [DONE]\n\n" for
// OpenAI-family targets.
type sseFrameWriter struct {
	w          io.Writer
	sendDone   bool
	eventNames bool
}

func (f *sseFrameWriter) WriteFrame(data []byte) error {
	var buf bytes.Buffer
	if f.eventNames {
		if t := gjson.GetBytes(data, "type"); t.Exists() {
			buf.WriteString("event: ")
			buf.WriteString(t.String())
			buf.WriteByte('\n')
		}
	}
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	_, err := f.w.Write(buf.Bytes())
	return err
}

func (f *sseFrameWriter) WriteError(serr *StreamError) error {
	var payload []byte
	var err error
	if f.eventNames {
		// Anthropic's SSE protocol has a typed "error" event for this.
		payload, err = json.Marshal(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": string(serr.Kind), "message": serr.Message},
		})
	} else {
		payload, err = json.Marshal(map[string]any{
			"error": map[string]any{"type": string(serr.Kind), "message": serr.Message},
		})
	}
	if err != nil {
		return err
	}
	return f.WriteFrame(payload)
}

func (f *sseFrameWriter) Close() error {
	if !f.sendDone {
		return nil
	}
	_, err := f.w.Write([]byte("data: [DONE]\n\n"))
	return err
}

// jsonArrayFrameWriter renders frames as elements of a top-level JSON
// array, matching Google's streamGenerateContent response framing: "[",
// comma-separated elements, then "]".
type jsonArrayFrameWriter struct {
	w      io.Writer
	opened bool
}

func (f *jsonArrayFrameWriter) WriteFrame(data []byte) error {
	prefix := []byte(",")
	if !f.opened {
		prefix = []byte("[")
		f.opened = true
	}
	_, err := f.w.Write(append(prefix, data...))
	return err
}

func (f *jsonArrayFrameWriter) WriteError(serr *StreamError) error {
	payload, err := json.Marshal(map[string]any{
		"error": map[string]any{"code": 502, "status": string(serr.Kind), "message": serr.Message},
	})
	if err != nil {
		return err
	}
	return f.WriteFrame(payload)
}

func (f *jsonArrayFrameWriter) Close() error {
	if !f.opened {
		_, err := f.w.Write([]byte("[]"))
		return err
	}
	_, err := f.w.Write([]byte("]"))
	return err
}

// eventStreamFrameWriter renders frames as AWS eventstream binary messages
// (Bedrock's ConverseStream response framing). The encoder's JSON payloads
// carry the event name in a "type" member; it is moved back out to the
// envelope's ":event-type" header, the inverse of EventStreamReader's
// splice.
type eventStreamFrameWriter struct {
	w   io.Writer
	enc *eventstream.Encoder
}

func (f *eventStreamFrameWriter) WriteFrame(data []byte) error {
	typ, payload := splitEventType(data)
	msg := eventstream.Message{
		Headers: eventstream.Headers{
			{Name: ":message-type", Value: eventstream.StringValue("event")},
			{Name: ":event-type", Value: eventstream.StringValue(typ)},
			{Name: ":content-type", Value: eventstream.StringValue("application/json")},
		},
		Payload: payload,
	}
	return f.enc.Encode(f.w, msg)
}

func (f *eventStreamFrameWriter) WriteError(serr *StreamError) error {
	payload, err := json.Marshal(map[string]any{"message": serr.Message})
	if err != nil {
		return err
	}
	msg := eventstream.Message{
		Headers: eventstream.Headers{
			{Name: ":message-type", Value: eventstream.StringValue("exception")},
			{Name: ":exception-type", Value: eventstream.StringValue(string(serr.Kind))},
			{Name: ":content-type", Value: eventstream.StringValue("application/json")},
		},
		Payload: payload,
	}
	return f.enc.Encode(f.w, msg)
}

func (f *eventStreamFrameWriter) Close() error { return nil }

// splitEventType removes the "type" member from a JSON-object payload and
// returns it alongside the remaining object.
func splitEventType(data []byte) (string, []byte) {
	typ := gjson.GetBytes(data, "type").String()
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return typ, data
	}
	delete(m, "type")
	rest, err := json.Marshal(m)
	if err != nil {
		return typ, data
	}
	return typ, rest
}
