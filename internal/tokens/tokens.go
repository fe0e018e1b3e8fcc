package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gogotex/gogoblog/internal/config"
	"github.com/gogotex/gogoblog/internal/models"
	"github.com/gogotex/gogoblog/pkg/middleware"
)

// GenerateAccessToken creates a signed JWT access token for the user
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	if cfg.JWT.Secret == "" {
		return "", errors.New("JWT secret not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   u.Sub,
		"name":  u.Name,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// ExpiresAt reads the exp claim without verifying the signature. Callers use
// it only for tokens that were already verified.
func ExpiresAt(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	return exp.Time, nil
}

type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// HMACVerifier verifies HS256 tokens issued by GenerateAccessToken. It is the
// verifier used when no OIDC provider is configured.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}
	return &HMACVerifier{secret: []byte(secret)}, nil
}

func (v *HMACVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return &claimsToken{claims: claims}, nil
}
