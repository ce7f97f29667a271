package streaming

import "fmt"

// ErrorKind classifies a StreamError.
type ErrorKind string

const (
	FramingFailure         ErrorKind = "framing_failure"
	ChunkConversionFailure ErrorKind = "chunk_conversion_failure"
	UpstreamDisconnect     ErrorKind = "upstream_disconnect"
	UpstreamError          ErrorKind = "upstream_error"
)

// StreamError is returned by Engine.Translate on a mid-stream failure, with
// the index of the upstream-framed event being processed when it occurred.
type StreamError struct {
	UpstreamEventIndex int
	Kind    ErrorKind
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("streaming: %s at event %d: %s", e.Kind, e.UpstreamEventIndex, e.Message)
}
