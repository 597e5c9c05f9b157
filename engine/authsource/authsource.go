// Package authsource is the credential-acquisition adapter (out of core
// scope per §1, but wired here as a concrete collaborator): it turns
// configured client_id/client_secret/tenant_id or a static devops_token into
// the transport.AuthProvider the engine's HTTP clients need.
package authsource

import (
	"context"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/bvtime/reconciler/engine/transport"
)

// OAuth2TokenSource acquires bearer tokens via the client-credentials flow,
// grounded on golang.org/x/oauth2 (already part of the teacher's stack).
type OAuth2TokenSource struct {
	cfg clientcredentials.Config
}

func NewOAuth2TokenSource(clientID, clientSecret, tokenURL string, scopes []string) *OAuth2TokenSource {
	return &OAuth2TokenSource{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		},
	}
}

func (s *OAuth2TokenSource) Token(ctx context.Context) (string, time.Time, error) {
	tok, err := s.cfg.Token(ctx)
	if err != nil {
		return "", time.Time{}, err
	}
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(time.Hour)
	}
	return tok.AccessToken, expiry, nil
}

// AzureADTokenURL builds the tenant-scoped Azure AD v2 token endpoint for
// tenantID, the shape devops_auth.py's bearer flow targets.
func AzureADTokenURL(tenantID string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/token"
}

// NewBearerProvider wires a client_id/client_secret/tenant_id triple into a
// transport.AuthProvider with caching and refresh-before-expiry built in.
func NewBearerProvider(clientID, clientSecret, tenantID string, scopes []string) transport.AuthProvider {
	source := NewOAuth2TokenSource(clientID, clientSecret, AzureADTokenURL(tenantID), scopes)
	return transport.NewBearerTokenProvider(source)
}

// NewBasicProvider wires a static devops_token into a transport.AuthProvider.
func NewBasicProvider(token string) transport.AuthProvider {
	return transport.NewBasicAuthProvider(token)
}
