package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// Databricks serves either a static personal access token or, for OAuth
// machine-to-machine service principals, a client-credentials token cached
// with the same discipline as AzureEntra/GoogleServiceAccount.
type Databricks struct {
	pat  string
	cell *cell
	cfg  *clientcredentials.Config
}

// NewDatabricksPAT returns a Credential that always serves the given
// personal access token.
func NewDatabricksPAT(token string) *Databricks {
	return &Databricks{pat: token}
}

// NewDatabricksOAuthM2M returns a Credential backed by Databricks' OAuth
// M2M service-principal flow against workspaceHost's token endpoint.
func NewDatabricksOAuthM2M(workspaceHost, clientID, clientSecret string) *Databricks {
	return &Databricks{
		cell: newCell(refreshLeeway),
		cfg: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     "https://" + workspaceHost + "/oidc/v1/token",
			Scopes:       []string{"all-apis"},
		},
	}
}

func (d *Databricks) Bearer(ctx context.Context) (string, error) {
	if d.pat != "" {
		return d.pat, nil
	}
	return d.cell.getOrRefresh(ctx, func(ctx context.Context) (string, time.Time, error) {
		tok, err := d.cfg.Token(ctx)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("auth: databricks oauth m2m: %w", err)
		}
		return tok.AccessToken, tok.Expiry, nil
	})
}
