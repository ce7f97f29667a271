package streaming

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/braintrustdata/llm-router/adapters/anthropicmsg"
	"github.com/braintrustdata/llm-router/adapters/openaichat"
)

func TestSSEReader_BasicFraming(t *testing.T) {
	r := NewSSEReader(strings.NewReader("data: {\"a\":1}\n\ndata: [DONE]\n\n"))
	ctx := context.Background()

	ev, err := r.Next(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(ev.Data))

	ev, err = r.Next(ctx)
	require.NoError(t, err)
	require.True(t, ev.Done)
}

func TestSSEReader_MalformedNoTrailingBlankLine(t *testing.T) {
	r := NewSSEReader(strings.NewReader("data: {\"a\":1}"))
	_, err := r.Next(context.Background())
	require.Error(t, err)
}

func TestJSONArrayReader_BasicFraming(t *testing.T) {
	r := NewJSONArrayReader(strings.NewReader(`[{"a":1},{"b":2}]`))
	ctx := context.Background()

	ev, err := r.Next(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(ev.Data))

	ev, err = r.Next(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `{"b":2}`, string(ev.Data))

	_, err = r.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

// TestTranslate_AnthropicToOpenAI translates an Anthropic
// event sequence announcing role, two text deltas, and a stop finish reason
// translates to four OpenAI SSE data: frames plus a terminating [DONE].
func TestTranslate_AnthropicToOpenAI(t *testing.T) {
	upstream := strings.Join([]string{
		`event: message_start` + "\n" + `data: {"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-sonnet-20241022"}}`,
		`event: content_block_start` + "\n" + `data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		`event: content_block_delta` + "\n" + `data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`,
		`event: content_block_delta` + "\n" + `data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`,
		`event: content_block_stop` + "\n" + `data: {"type":"content_block_stop","index":0}`,
		`event: message_delta` + "\n" + `data: {"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"input_tokens":1,"output_tokens":2}}`,
		`event: message_stop` + "\n" + `data: {"type":"message_stop"}`,
	}, "\n\n") + "\n\n"

	var out bytes.Buffer
	eng := NewEngine()
	err := eng.Translate(context.Background(), anthropicmsg.New(), openaichat.New(), strings.NewReader(upstream), &out)
	require.NoError(t, err)

	frames := strings.Count(out.String(), "data: ")
	require.GreaterOrEqual(t, frames, 4)
	require.Contains(t, out.String(), "Hel")
	require.Contains(t, out.String(), "lo")
	require.Contains(t, out.String(), `"finish_reason":"stop"`)
	require.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "data: [DONE]"))
}

// TestTranslate_MidStreamErrorIsReframed checks that when the upstream dies
// after frames have already been emitted, the failure surfaces both as a
// StreamError to the caller of Translate and as a final error event in the
// target's own framing.
func TestTranslate_MidStreamErrorIsReframed(t *testing.T) {
	// First event is complete; the second is cut off with no blank-line
	// terminator before EOF.
	upstream := `event: message_start` + "\n" + `data: {"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"m"}}` + "\n\n" +
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`

	var out bytes.Buffer
	eng := NewEngine()
	err := eng.Translate(context.Background(), anthropicmsg.New(), openaichat.New(), strings.NewReader(upstream), &out)

	var serr *StreamError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, FramingFailure, serr.Kind)
	require.Contains(t, out.String(), `"error"`)
	require.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "data: [DONE]"))
}

// TestTranslate_FinishReasonNeverDuplicated feeds a source that repeats the
// finish reason and checks only one outgoing chunk carries it.
func TestTranslate_FinishReasonDedup(t *testing.T) {
	upstream := strings.Join([]string{
		`data: {"id":"c1","model":"m","choices":[{"index":0,"delta":{"role":"assistant","content":"hi"}}]}`,
		`data: {"id":"c1","model":"m","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		`data: {"id":"c1","model":"m","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		`data: [DONE]`,
	}, "\n\n") + "\n\n"

	var out bytes.Buffer
	eng := NewEngine()
	err := eng.Translate(context.Background(), openaichat.New(), openaichat.New(), strings.NewReader(upstream), &out)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(out.String(), `"finish_reason":"stop"`))
}
