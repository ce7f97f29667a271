package router

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Hints is the result of peeking the caller's raw body for routing
// decisions before any upstream contact.
type Hints struct {
	Model  string
	Stream bool
}

// ExtractRequestHints reads "model" (falling back to Bedrock's "modelId")
// and "stream" out of body without a full typed unmarshal, using gjson the
// same way every adapter's DetectRequest does. Malformed JSON is reported
// immediately, before any catalog lookup or upstream contact.
func ExtractRequestHints(body []byte) (Hints, error) {
	if !gjson.ValidBytes(body) {
		return Hints{}, &MalformedRequestError{Reason: "body is not valid JSON"}
	}

	model := gjson.GetBytes(body, "model")
	if !model.Exists() {
		model = gjson.GetBytes(body, "modelId")
	}
	if !model.Exists() || model.String() == "" {
		return Hints{}, &MalformedRequestError{Reason: "missing model/modelId hint"}
	}

	return Hints{
		Model:  model.String(),
		Stream: gjson.GetBytes(body, "stream").Bool(),
	}, nil
}

// MalformedRequestError reports a body that cannot even be peeked for
// routing hints: not parseable JSON, or missing the model/modelId hint.
type MalformedRequestError struct {
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("router: malformed request: %s", e.Reason)
}
