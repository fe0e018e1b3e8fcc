package oidc

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gogotex/gogoblog/internal/config"
	"github.com/gogotex/gogoblog/pkg/middleware"
)

// Verifier wraps the OIDC provider and token verifier
type Verifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// NewVerifier creates a new OIDC verifier for the given issuer and client ID
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: clientID})
	return &Verifier{provider: provider, verifier: verifier}, nil
}

// KeycloakIssuer returns the realm issuer URL, or the bare URL when no realm
// is configured (older deployments put the realm path in the URL).
func KeycloakIssuer(kc config.KeycloakConfig) string {
	if kc.Realm == "" {
		return kc.URL
	}
	return strings.TrimRight(kc.URL, "/") + "/realms/" + kc.Realm
}

// Verify verifies the provided raw ID token using the provided context and returns a middleware.Token
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}
