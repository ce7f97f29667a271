package auth

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAWSSigV4_SignRequest_AddsSignatureHeaders(t *testing.T) {
	signer, err := NewAWSSigV4(context.Background(), "us-east-1", "bedrock", "AKIDEXAMPLE", "secret", "")
	require.NoError(t, err)

	body := []byte(`{"messages":[]}`)
	req, err := http.NewRequest(http.MethodPost, "https://bedrock-runtime.us-east-1.amazonaws.com/model/x/converse", strings.NewReader(string(body)))
	require.NoError(t, err)

	require.NoError(t, signer.SignRequest(context.Background(), req, body))

	authHeader := req.Header.Get("Authorization")
	require.Contains(t, authHeader, "AWS4-HMAC-SHA256")
	require.Contains(t, authHeader, "Credential=AKIDEXAMPLE/")
	require.NotEmpty(t, req.Header.Get("X-Amz-Date"))
}
