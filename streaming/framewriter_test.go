package streaming

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
	"github.com/stretchr/testify/require"
)

func TestSSEFrameWriter_TypedEventNames(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter("anthropic", &out)

	require.NoError(t, fw.WriteFrame([]byte(`{"type":"message_start","message":{}}`)))
	require.NoError(t, fw.Close())

	require.Contains(t, out.String(), "event: message_start\n")
	require.Contains(t, out.String(), "data: {\"type\":\"message_start\"")
	require.NotContains(t, out.String(), "[DONE]")
}

func TestSSEFrameWriter_DoneSentinelForOpenAI(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter("openai_chat", &out)

	require.NoError(t, fw.WriteFrame([]byte(`{"id":"x"}`)))
	require.NoError(t, fw.Close())

	require.True(t, strings.HasSuffix(out.String(), "data: [DONE]\n\n"))
	require.NotContains(t, out.String(), "event:")
}

func TestSSEFrameWriter_ErrorFrame(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter("openai_chat", &out)

	require.NoError(t, fw.WriteError(&StreamError{Kind: UpstreamDisconnect, Message: "gone"}))
	require.Contains(t, out.String(), `"error"`)
	require.Contains(t, out.String(), "gone")
}

func TestSSEFrameWriter_AnthropicErrorIsTypedEvent(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter("anthropic", &out)

	require.NoError(t, fw.WriteError(&StreamError{Kind: UpstreamError, Message: "boom"}))
	require.Contains(t, out.String(), "event: error\n")
	require.Contains(t, out.String(), `"type":"error"`)
}

func TestJSONArrayFrameWriter_Framing(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter("google", &out)

	require.NoError(t, fw.WriteFrame([]byte(`{"a":1}`)))
	require.NoError(t, fw.WriteFrame([]byte(`{"b":2}`)))
	require.NoError(t, fw.Close())
	require.Equal(t, `[{"a":1},{"b":2}]`, out.String())
}

func TestJSONArrayFrameWriter_EmptyStream(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter("google", &out)
	require.NoError(t, fw.Close())
	require.Equal(t, "[]", out.String())
}

// TestEventStream_RoundTrip writes a frame through the binary eventstream
// writer and reads it back with EventStreamReader, checking that the
// payload "type" member moves to the :event-type header and back.
func TestEventStream_RoundTrip(t *testing.T) {
	var wire bytes.Buffer
	fw := NewFrameWriter("bedrock_converse", &wire)
	require.NoError(t, fw.WriteFrame([]byte(`{"type":"contentBlockDelta","contentBlockIndex":0,"delta":{"text":"hi"}}`)))

	dec := eventstream.NewDecoder()
	msg, err := dec.Decode(bytes.NewReader(wire.Bytes()), nil)
	require.NoError(t, err)
	require.NotContains(t, string(msg.Payload), `"type"`)

	r := NewEventStreamReader(bytes.NewReader(wire.Bytes()))
	ev, err := r.Next(context.Background())
	require.NoError(t, err)
	require.Contains(t, string(ev.Data), `"type":"contentBlockDelta"`)
	require.Contains(t, string(ev.Data), `"text":"hi"`)
}
