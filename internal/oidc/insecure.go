package oidc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gogotex/gogoblog/pkg/middleware"
)

// insecureToken is a minimal token that exposes claims parsed from a JWT payload.
type insecureToken struct {
	claims jwt.MapClaims
}

func (t *insecureToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// InsecureVerifier implements a verifier that does NOT validate signatures.
// Only intended for local/integration tests under explicit opt-in via
// ALLOW_INSECURE_TOKEN=true.
type InsecureVerifier struct{}

func NewInsecureVerifier() *InsecureVerifier { return &InsecureVerifier{} }

func (v *InsecureVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	if sub, _ := claims.GetSubject(); sub == "" {
		return nil, errors.New("token has no subject")
	}
	return &insecureToken{claims: claims}, nil
}
