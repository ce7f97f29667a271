package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// refreshLeeway is subtracted from a token's reported expiry when deciding
// whether it still needs a refresh.
const refreshLeeway = 60 * time.Second

// GoogleServiceAccount signs an RS256 JWT with a service account's private
// key and exchanges it at Google's token endpoint for an access token
// (used for Vertex-hosted Anthropic and Google Generative Language calls
// billed through a service account). The exchange itself is delegated to
// golang.org/x/oauth2/google's JWT config, which performs the RS256 signing
// and token-endpoint POST; this type adds the expiry-leeway/single-flight
// cache discipline on top.
type GoogleServiceAccount struct {
	cell   *cell
	source oauth2.TokenSource
}

// NewGoogleServiceAccount builds a GoogleServiceAccount credential from a
// service account JSON key (the format downloaded from Google Cloud
// Console) and the OAuth scopes to request.
func NewGoogleServiceAccount(serviceAccountJSON []byte, scopes ...string) (*GoogleServiceAccount, error) {
	cfg, err := google.JWTConfigFromJSON(serviceAccountJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("auth: parse google service account json: %w", err)
	}
	return &GoogleServiceAccount{
		cell:   newCell(refreshLeeway),
		source: cfg.TokenSource(context.Background()),
	}, nil
}

func (g *GoogleServiceAccount) Bearer(ctx context.Context) (string, error) {
	return g.cell.getOrRefresh(ctx, func(context.Context) (string, time.Time, error) {
		tok, err := g.source.Token()
		if err != nil {
			return "", time.Time{}, fmt.Errorf("auth: google token exchange: %w", err)
		}
		return tok.AccessToken, tok.Expiry, nil
	})
}
