package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogoblog/internal/sessions"
	"github.com/gogotex/gogoblog/internal/tokens"
	"github.com/gogotex/gogoblog/pkg/logger"
	"github.com/gogotex/gogoblog/pkg/middleware"
)

// AuthHandler serves the endpoints about the acting user. Token issuance is
// the identity provider's job; this service only verifies and revokes.
type AuthHandler struct {
	requireUser gin.HandlerFunc
}

// NewAuthHandler takes the middleware that attaches the acting user
// (middleware.AuthMiddleware).
func NewAuthHandler(requireUser gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{requireUser: requireUser}
}

// Register routes /api/v1/me and /auth/logout
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/api/v1/me", h.requireUser, h.Me)
	rg.POST("/auth/logout", h.requireUser, h.Logout)
}

// Me returns the acting user
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// Logout blacklists the presented access token until it expires and clears
// the token cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := c.GetString(middleware.TokenKey)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	revoked := false
	if sessions.BlacklistEnabled() {
		exp, err := tokens.ExpiresAt(raw)
		if err != nil {
			// Verified tokens without exp cannot be bounded; keep them out for a day.
			logger.Warnf("logout: token has no usable exp: %v", err)
			exp = time.Now().Add(24 * time.Hour)
		}
		if ttl := time.Until(exp); ttl > 0 {
			if err := sessions.BlacklistAccessToken(c.Request.Context(), raw, ttl); err != nil {
				logger.Errorf("logout: blacklist access token: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
				return
			}
		}
		revoked = true
	}

	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out", "revoked": revoked})
}
