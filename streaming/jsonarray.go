package streaming

import (
	"bufio"
	"bytes"
	"context"
	"io"
)

// JSONArrayReader frames an io.Reader carrying a streamed top-level JSON
// array (Google's streamGenerateContent response shape) into RawEvents, one
// per array element, by tracking brace/bracket depth and string escapes
// rather than buffering the whole array, bounding memory to one in-flight
// element at a time.
type JSONArrayReader struct {
	br      *bufio.Reader
	started bool
	depth   int
	inString bool
	escaped bool
	buf     bytes.Buffer
}

// NewJSONArrayReader returns a FramedReader that parses r as a streamed
// top-level JSON array.
func NewJSONArrayReader(r io.Reader) *JSONArrayReader {
	return &JSONArrayReader{br: bufio.NewReaderSize(r, 64*1024)}
}

func (j *JSONArrayReader) Next(ctx context.Context) (RawEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return RawEvent{}, err
		}
		b, err := j.br.ReadByte()
		if err != nil {
			if j.buf.Len() > 0 {
				return RawEvent{}, io.ErrUnexpectedEOF
			}
			return RawEvent{}, err
		}

		if !j.started {
			if b == '[' {
				j.started = true
			}
			continue
		}

		if j.inString {
			j.buf.WriteByte(b)
			switch {
			case j.escaped:
				j.escaped = false
			case b == '\\':
				j.escaped = true
			case b == '"':
				j.inString = false
			}
			continue
		}

		switch b {
		case '"':
			j.inString = true
			j.buf.WriteByte(b)
		case '{', '[':
			j.depth++
			j.buf.WriteByte(b)
		case '}':
			j.depth--
			j.buf.WriteByte(b)
			if j.depth == 0 {
				return j.flush(), nil
			}
		case ']':
			if j.depth == 0 {
				// Closing bracket of the outer array itself.
				if j.buf.Len() > 0 {
					return j.flush(), nil
				}
				return RawEvent{}, io.EOF
			}
			j.depth--
			j.buf.WriteByte(b)
			if j.depth == 0 {
				return j.flush(), nil
			}
		case ',':
			if j.depth == 0 {
				continue
			}
			j.buf.WriteByte(b)
		case ' ', '\t', '\r', '\n':
			if j.depth > 0 {
				j.buf.WriteByte(b)
			}
		default:
			j.buf.WriteByte(b)
		}
	}
}

func (j *JSONArrayReader) flush() RawEvent {
	data := append([]byte(nil), j.buf.Bytes()...)
	j.buf.Reset()
	return RawEvent{Data: data}
}
