package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogoblog/internal/models"
	"github.com/gogotex/gogoblog/internal/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken", "black-token":
		return &fakeToken{data: map[string]interface{}{"sub": "user1", "email": "test@example.com"}}, nil
	case "nosub":
		return &fakeToken{data: map[string]interface{}{"email": "test@example.com"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// fakeUsers implements UserResolver
type fakeUsers struct {
	err error
}

func (f *fakeUsers) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, nil
	}
	email, _ := claims["email"].(string)
	return &models.User{Sub: sub, Email: email}, nil
}

func serve(g *gin.Engine, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if mutate != nil {
		mutate(req)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func okRouter(users UserResolver) *gin.Engine {
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}, users), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return g
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	rw := serve(okRouter(&fakeUsers{}), nil)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	rw := serve(okRouter(&fakeUsers{}), func(r *http.Request) { r.Header.Set("Authorization", "BadHeader") })
	require.Equal(t, http.StatusUnauthorized, rw.Code)

	rw = serve(okRouter(&fakeUsers{}), func(r *http.Request) { r.Header.Set("Authorization", "Bearer wrong") })
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}, &fakeUsers{}), func(c *gin.Context) {
		claims, ok := c.Get(ClaimsKey)
		require.True(t, ok)
		u, ok := CurrentUser(c)
		require.True(t, ok)
		require.Equal(t, "goodtoken", c.GetString(TokenKey))
		resp, _ := json.Marshal(gin.H{"claims": claims, "sub": u.Sub})
		c.Writer.Write(resp)
	})
	rw := serve(g, func(r *http.Request) { r.Header.Set("Authorization", "Bearer goodtoken") })

	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Contains(t, got, "claims")
	require.Equal(t, "user1", got["sub"])
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	rw := serve(okRouter(&fakeUsers{}), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "goodtoken"})
	})
	require.Equal(t, http.StatusOK, rw.Code)
}

func TestAuthMiddleware_NoSubject(t *testing.T) {
	rw := serve(okRouter(&fakeUsers{}), func(r *http.Request) { r.Header.Set("Authorization", "Bearer nosub") })
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_UserLookupFails(t *testing.T) {
	rw := serve(okRouter(&fakeUsers{err: fmt.Errorf("db down")}), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer goodtoken")
	})
	require.Equal(t, http.StatusInternalServerError, rw.Code)
}

func TestAuthMiddleware_RejectsBlacklistedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	sessions.SetBlacklistClient(client)
	defer sessions.SetBlacklistClient(nil)

	// add token to blacklist
	token := "black-token"
	require.NoError(t, sessions.BlacklistAccessToken(context.Background(), token, 5*time.Second))

	rw := serve(okRouter(&fakeUsers{}), func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) })
	require.Equal(t, http.StatusUnauthorized, rw.Code)

	// other tokens still pass
	rw = serve(okRouter(&fakeUsers{}), func(r *http.Request) { r.Header.Set("Authorization", "Bearer goodtoken") })
	require.Equal(t, http.StatusOK, rw.Code)
}

func TestCurrentUser_Absent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentUser(c)
	require.False(t, ok)
}
