package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
)

// AWSSigV4 signs outgoing requests for Bedrock's catalog.AuthAWSSigV4 auth
// kind. Unlike every other credential in this package, SigV4 is not a
// bearer token placed in a header: it signs the method, path, headers, and
// payload hash together, so it does not implement Credential and is instead
// consumed directly by router.ProviderConfig.Signer.
//
// Credential resolution is delegated to aws-sdk-go-v2/config's default
// chain (env vars, shared config/credentials files, EC2/ECS metadata, SSO)
// unless static keys are supplied.
type AWSSigV4 struct {
	region  string
	service string
	provider aws.CredentialsProvider
	signer   *v4.Signer
}

// NewAWSSigV4 builds a signer for region/service (service is "bedrock"
// for both Converse and InvokeModel calls). If accessKeyID is empty, the
// default AWS credential chain is used; otherwise the supplied static
// keys (accessKeyID/secretAccessKey/sessionToken) are used unchanged.
func NewAWSSigV4(ctx context.Context, region, service, accessKeyID, secretAccessKey, sessionToken string) (*AWSSigV4, error) {
	var provider aws.CredentialsProvider
	if accessKeyID != "" {
		provider = awscreds.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken)
	} else {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("auth: load default aws config: %w", err)
		}
		provider = cfg.Credentials
	}
	return &AWSSigV4{
		region:   region,
		service:  service,
		provider: provider,
		signer:   v4.NewSigner(),
	}, nil
}

// SignRequest signs req in place with SigV4 over body. body must be the
// exact bytes the request is sent with: SigV4 binds the payload hash into
// the signature.
func (a *AWSSigV4) SignRequest(ctx context.Context, req *http.Request, body []byte) error {
	creds, err := a.provider.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("auth: retrieve aws credentials: %w", err)
	}
	sum := sha256.Sum256(body)
	payloadHash := hex.EncodeToString(sum[:])
	return a.signer.SignHTTP(ctx, creds, req, payloadHash, a.service, a.region, time.Now())
}
