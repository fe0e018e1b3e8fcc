package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogoblog/internal/models"
	"github.com/gogotex/gogoblog/internal/sessions"
	"github.com/gogotex/gogoblog/pkg/logger"
)

// Context keys set by AuthMiddleware.
const (
	ClaimsKey = "claims"
	UserKey   = "user"
	TokenKey  = "token"
)

// TokenCookie carries the access token for browser form submissions.
const TokenCookie = "access_token"

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// UserResolver maps verified claims to the acting user. *users.Service satisfies it.
type UserResolver interface {
	UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error)
}

// AuthMiddleware verifies the bearer token (Authorization header, or the
// access_token cookie) and attaches claims and the acting user to the context.
func AuthMiddleware(ver Verifier, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid credentials"})
			return
		}

		blocked, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token)
		if err != nil {
			logger.Errorf("blacklist check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token check failed"})
			return
		}
		if blocked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		u, err := users.UpsertFromClaims(c.Request.Context(), claims)
		if err != nil {
			logger.Errorf("resolve user from claims: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(TokenKey, token)
		c.Set(UserKey, u)
		c.Next()
	}
}

// CurrentUser returns the acting user attached by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

func bearerToken(c *gin.Context) (string, bool) {
	if auth := c.GetHeader("Authorization"); auth != "" {
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			return "", false
		}
		tok := strings.TrimSpace(auth[len(prefix):])
		return tok, tok != "" && !strings.ContainsAny(tok, " \t")
	}
	if tok, err := c.Cookie(TokenCookie); err == nil && tok != "" {
		return tok, true
	}
	return "", false
}
