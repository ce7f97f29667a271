package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// AzureEntra runs the OAuth2 client-credentials flow against a tenant's
// Entra ID (formerly Azure AD) token endpoint, caching the resulting
// access token with the same expiry-leeway/single-flight discipline as
// GoogleServiceAccount.
type AzureEntra struct {
	cell *cell
	cfg  *clientcredentials.Config
}

// NewAzureEntra builds an AzureEntra credential for the given tenant,
// application (client) id, and client secret.
func NewAzureEntra(tenantID, clientID, clientSecret string, scopes ...string) *AzureEntra {
	return &AzureEntra{
		cell: newCell(refreshLeeway),
		cfg: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/token",
			Scopes:       scopes,
		},
	}
}

func (a *AzureEntra) Bearer(ctx context.Context) (string, error) {
	return a.cell.getOrRefresh(ctx, func(ctx context.Context) (string, time.Time, error) {
		tok, err := a.cfg.Token(ctx)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("auth: azure entra client-credentials: %w", err)
		}
		return tok.AccessToken, tok.Expiry, nil
	})
}
