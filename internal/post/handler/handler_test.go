package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogoblog/internal/config"
	"github.com/gogotex/gogoblog/internal/models"
	"github.com/gogotex/gogoblog/internal/post"
	"github.com/gogotex/gogoblog/internal/post/service"
	"github.com/gogotex/gogoblog/internal/render"
	"github.com/gogotex/gogoblog/internal/tokens"
	"github.com/gogotex/gogoblog/internal/users"
	"github.com/gogotex/gogoblog/pkg/metrics"
	"github.com/gogotex/gogoblog/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

func newUsers(t *testing.T) *users.Service {
	t.Helper()
	svc := users.NewService(users.NewMemoryUserRepository())
	_, err := svc.UpsertFromClaims(context.Background(), map[string]interface{}{"sub": "alice", "name": "Alice"})
	require.NoError(t, err)
	return svc
}

func fakeAuth(c *gin.Context) {
	c.Set(middleware.UserKey, &models.User{Sub: "alice", Name: "Alice"})
	c.Next()
}

func setup(t *testing.T, requireUser gin.HandlerFunc) (*gin.Engine, service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rnd, err := render.New()
	require.NoError(t, err)
	svc := service.NewMemoryService(newUsers(t))
	r := gin.New()
	RegisterPostRoutes(r, svc, rnd, 5, requireUser)
	return r, svc
}

func seed(t *testing.T, svc service.Service, n int) []*post.Post {
	t.Helper()
	out := make([]*post.Post, 0, n)
	for i := 0; i < n; i++ {
		p, err := svc.Create(context.Background(), &models.User{Sub: "alice"}, post.Input{Title: fmt.Sprintf("Title-%d", i), Text: "Body"})
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func postForm(r http.Handler, path string, form url.Values, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, m := range mutate {
		m(req)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestList_Empty(t *testing.T) {
	r, _ := setup(t, fakeAuth)
	w := get(r, "/posts/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No posts yet.")
	assert.NotContains(t, w.Body.String(), "Page 1 of 1")
}

func TestList_Paginates(t *testing.T) {
	r, svc := setup(t, fakeAuth)
	seed(t, svc, 7)

	w := get(r, "/posts/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for i := 2; i <= 6; i++ {
		assert.Contains(t, body, fmt.Sprintf("Title-%d", i))
	}
	assert.NotContains(t, body, "Title-1")
	assert.Contains(t, body, "Page 1 of 2")
	assert.Contains(t, body, `href="/posts/?page=2"`)
	assert.Less(t, strings.Index(body, "Title-6"), strings.Index(body, "Title-5"))

	w = get(r, "/posts/?page=2")
	body = w.Body.String()
	assert.Contains(t, body, "Title-1")
	assert.Contains(t, body, "Title-0")
	assert.NotContains(t, body, "Title-6")
	assert.Contains(t, body, "Page 2 of 2")
	assert.Contains(t, body, `href="/posts/?page=1"`)
}

func TestList_PageOutOfRangeIsClamped(t *testing.T) {
	r, svc := setup(t, fakeAuth)
	seed(t, svc, 7)

	w := get(r, "/posts/?page=99")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Page 2 of 2")

	for _, raw := range []string{"abc", "0", "-3"} {
		w = get(r, "/posts/?page="+raw)
		assert.Equal(t, http.StatusOK, w.Code, raw)
		assert.Contains(t, w.Body.String(), "Page 1 of 2", raw)
	}
}

func TestDetail(t *testing.T) {
	r, svc := setup(t, fakeAuth)
	p, err := svc.Create(context.Background(), &models.User{Sub: "alice"}, post.Input{Title: "Hello", Text: "some **bold** text"})
	require.NoError(t, err)

	w := get(r, post.MustReverse(post.RouteDetail, p.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello")
	assert.Contains(t, w.Body.String(), "<strong>bold</strong>")
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`href="/posts/%d/update/"`, p.ID))

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, post.MustReverse(post.RouteDetail, p.ID), nil)
	req.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusNotModified, w2.Code)
	assert.Empty(t, w2.Body.String())
}

func TestDetail_NotFound(t *testing.T) {
	r, _ := setup(t, fakeAuth)
	assert.Equal(t, http.StatusNotFound, get(r, "/posts/999/").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/posts/abc/").Code)
}

func TestCreate_Form(t *testing.T) {
	r, _ := setup(t, fakeAuth)
	w := get(r, "/posts/create/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/posts/create/"`)
	assert.Contains(t, w.Body.String(), `name="title"`)
	assert.Contains(t, w.Body.String(), `name="text"`)
}

func TestCreate_RedirectsToList(t *testing.T) {
	r, svc := setup(t, fakeAuth)

	w := postForm(r, "/posts/create/", url.Values{"title": {"New"}, "text": {"Body"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/posts/", w.Header().Get("Location"))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New", list[0].Title)
	assert.Equal(t, "alice", list[0].Author)
	assert.WithinDuration(t, time.Now(), list[0].CreatedDate, time.Minute)
}

func TestCreate_InvalidRerendersForm(t *testing.T) {
	r, svc := setup(t, fakeAuth)
	before := testutil.ToFloat64(metrics.FormRejected.WithLabelValues("create"))

	w := postForm(r, "/posts/create/", url.Values{"title": {"   "}, "text": {"Kept"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")
	assert.Contains(t, w.Body.String(), "Kept")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.FormRejected.WithLabelValues("create")))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_TitleTooLong(t *testing.T) {
	r, _ := setup(t, fakeAuth)
	w := postForm(r, "/posts/create/", url.Values{"title": {strings.Repeat("x", post.MaxTitleLength+1)}, "text": {"Body"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at most 200 characters")
}

func TestUpdate_FormIsPrefilled(t *testing.T) {
	r, svc := setup(t, fakeAuth)
	p := seed(t, svc, 1)[0]

	w := get(r, post.MustReverse(post.RouteUpdate, p.ID))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `value="Title-0"`)
	assert.Contains(t, body, ">Body</textarea>")
	assert.Contains(t, body, fmt.Sprintf(`action="/posts/%d/update/"`, p.ID))
}

func TestUpdate_RedirectsToDetail(t *testing.T) {
	r, svc := setup(t, fakeAuth)
	p := seed(t, svc, 1)[0]

	w := postForm(r, post.MustReverse(post.RouteUpdate, p.ID), url.Values{"title": {"Changed"}, "text": {"New body"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, post.MustReverse(post.RouteDetail, p.ID), w.Header().Get("Location"))

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed", got.Title)
	assert.Equal(t, "New body", got.Text)
	assert.Equal(t, p.CreatedDate, got.CreatedDate)
}

func TestUpdate_InvalidKeepsPost(t *testing.T) {
	r, svc := setup(t, fakeAuth)
	p := seed(t, svc, 1)[0]

	w := postForm(r, post.MustReverse(post.RouteUpdate, p.ID), url.Values{"title": {"Changed"}, "text": {""}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")
	assert.Contains(t, w.Body.String(), `value="Changed"`)

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Title-0", got.Title)
}

func TestUpdate_NotFound(t *testing.T) {
	r, _ := setup(t, fakeAuth)
	assert.Equal(t, http.StatusNotFound, get(r, "/posts/42/update/").Code)
	w := postForm(r, "/posts/42/update/", url.Values{"title": {"T"}, "text": {"X"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdate_InvalidFormForMissingPost(t *testing.T) {
	r, _ := setup(t, fakeAuth)
	before := testutil.ToFloat64(metrics.FormRejected.WithLabelValues("update"))

	w := postForm(r, "/posts/999/update/", url.Values{"title": {""}, "text": {""}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "This field is required.")
	assert.Equal(t, before, testutil.ToFloat64(metrics.FormRejected.WithLabelValues("update")))
}

func TestWritePages_RequireUser(t *testing.T) {
	r, svc := setup(t, nil)
	p := seed(t, svc, 1)[0]

	assert.Equal(t, http.StatusUnauthorized, get(r, "/posts/create/").Code)
	w := postForm(r, "/posts/create/", url.Values{"title": {"T"}, "text": {"X"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = postForm(r, post.MustReverse(post.RouteUpdate, p.ID), url.Values{"title": {"T"}, "text": {"X"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreate_WithAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rnd, err := render.New()
	require.NoError(t, err)
	usersSvc := newUsers(t)
	svc := service.NewMemoryService(usersSvc)
	ver, err := tokens.NewHMACVerifier(testSecret)
	require.NoError(t, err)

	r := gin.New()
	RegisterPostRoutes(r, svc, rnd, 5, middleware.AuthMiddleware(ver, usersSvc))

	form := url.Values{"title": {"Signed"}, "text": {"Body"}}
	w := postForm(r, "/posts/create/", form)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	tok, err := tokens.GenerateAccessToken(cfg, &models.User{Sub: "bob", Name: "Bob"}, time.Minute)
	require.NoError(t, err)

	w = postForm(r, "/posts/create/", form, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: tok})
	})
	require.Equal(t, http.StatusSeeOther, w.Code)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Author)
}
