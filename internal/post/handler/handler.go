package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogoblog/internal/models"
	"github.com/gogotex/gogoblog/internal/pagination"
	"github.com/gogotex/gogoblog/internal/post"
	"github.com/gogotex/gogoblog/internal/post/service"
	"github.com/gogotex/gogoblog/internal/render"
	"github.com/gogotex/gogoblog/pkg/logger"
	"github.com/gogotex/gogoblog/pkg/metrics"
	"github.com/gogotex/gogoblog/pkg/middleware"
)

// formView is the data behind post_create.html and post_update.html.
type formView struct {
	Action string
	Form   post.Input
	Errors map[string]string
	PostID int64
}

type postHandler struct {
	svc      service.Service
	rnd      *render.Renderer
	pageSize int
}

// RegisterPostRoutes mounts the post pages on r. requireUser guards the
// create and update pages; it must attach the acting user (see
// middleware.AuthMiddleware). A nil requireUser leaves the guard to the
// handlers, which then answer 401 for every request.
func RegisterPostRoutes(r *gin.Engine, svc service.Service, rnd *render.Renderer, pageSize int, requireUser gin.HandlerFunc) {
	if pageSize < 1 {
		pageSize = 1
	}
	h := &postHandler{svc: svc, rnd: rnd, pageSize: pageSize}

	guard := func(f gin.HandlerFunc) []gin.HandlerFunc {
		if requireUser == nil {
			return []gin.HandlerFunc{f}
		}
		return []gin.HandlerFunc{requireUser, f}
	}

	r.GET(post.Routes[post.RouteList], h.list)
	r.GET(post.Routes[post.RouteCreate], guard(h.createForm)...)
	r.POST(post.Routes[post.RouteCreate], guard(h.create)...)
	r.GET(post.Routes[post.RouteDetail], h.detail)
	r.GET(post.Routes[post.RouteUpdate], guard(h.updateForm)...)
	r.POST(post.Routes[post.RouteUpdate], guard(h.update)...)
}

func (h *postHandler) list(c *gin.Context) {
	posts, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.serverError(c, "list posts", err)
		return
	}
	page := pagination.Paginate(len(posts), h.pageSize, c.Query("page"))
	h.rnd.HTML(c, http.StatusOK, render.PostList, gin.H{
		"Posts": pagination.Slice(posts, page),
		"Page":  page,
	})
}

func (h *postHandler) detail(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.rnd.ErrorPage(c, http.StatusNotFound, "")
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, "get post", err)
		return
	}
	h.rnd.HTML(c, http.StatusOK, render.PostDetail, gin.H{"Post": p})
}

func (h *postHandler) createForm(c *gin.Context) {
	if _, ok := h.actingUser(c); !ok {
		return
	}
	h.rnd.HTML(c, http.StatusOK, render.PostCreate, formView{Action: post.MustReverse(post.RouteCreate)})
}

func (h *postHandler) create(c *gin.Context) {
	u, ok := h.actingUser(c)
	if !ok {
		return
	}
	view := formView{Action: post.MustReverse(post.RouteCreate)}
	in, ok := h.bindInput(c, render.PostCreate, view)
	if !ok {
		return
	}
	if _, err := h.svc.Create(c.Request.Context(), u, in); err != nil {
		view.Form = in
		h.submitError(c, "create post", render.PostCreate, view, err)
		return
	}
	c.Redirect(http.StatusSeeOther, post.MustReverse(post.RouteList))
}

func (h *postHandler) updateForm(c *gin.Context) {
	if _, ok := h.actingUser(c); !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		h.rnd.ErrorPage(c, http.StatusNotFound, "")
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, "get post", err)
		return
	}
	h.rnd.HTML(c, http.StatusOK, render.PostUpdate, formView{
		Action: post.MustReverse(post.RouteUpdate, id),
		Form:   post.Input{Title: p.Title, Text: p.Text},
		PostID: id,
	})
}

func (h *postHandler) update(c *gin.Context) {
	if _, ok := h.actingUser(c); !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		h.rnd.ErrorPage(c, http.StatusNotFound, "")
		return
	}
	if _, err := h.svc.Get(c.Request.Context(), id); err != nil {
		h.storeError(c, "get post", err)
		return
	}
	view := formView{Action: post.MustReverse(post.RouteUpdate, id), PostID: id}
	in, ok := h.bindInput(c, render.PostUpdate, view)
	if !ok {
		return
	}
	if _, err := h.svc.Update(c.Request.Context(), id, in); err != nil {
		view.Form = in
		h.submitError(c, "update post", render.PostUpdate, view, err)
		return
	}
	c.Redirect(http.StatusSeeOther, post.MustReverse(post.RouteDetail, id))
}

// bindInput binds and validates the submitted form. On failure the response
// has been written.
func (h *postHandler) bindInput(c *gin.Context, page string, view formView) (post.Input, bool) {
	var in post.Input
	if err := c.ShouldBind(&in); err != nil {
		h.rnd.ErrorPage(c, http.StatusBadRequest, "malformed form submission")
		return in, false
	}
	if err := in.Validate(); err != nil {
		view.Form = in
		h.submitError(c, "validate form", page, view, err)
		return in, false
	}
	return in, true
}

// submitError maps a failed submission to a response: the form again for
// validation errors, the 404 page for a missing post, 500 otherwise.
func (h *postHandler) submitError(c *gin.Context, op, page string, view formView, err error) {
	if verr, ok := post.IsValidation(err); ok {
		metrics.FormRejected.WithLabelValues(formLabel(page)).Inc()
		view.Errors = verr.Fields
		h.rnd.HTML(c, http.StatusBadRequest, page, view)
		return
	}
	h.storeError(c, op, err)
}

func (h *postHandler) storeError(c *gin.Context, op string, err error) {
	if errors.Is(err, post.ErrNotFound) {
		h.rnd.ErrorPage(c, http.StatusNotFound, "")
		return
	}
	h.serverError(c, op, err)
}

func (h *postHandler) serverError(c *gin.Context, op string, err error) {
	logger.Errorf("%s: %v", op, err)
	h.rnd.ErrorPage(c, http.StatusInternalServerError, "")
}

// actingUser returns the user attached by the auth middleware, answering 401
// when there is none.
func (h *postHandler) actingUser(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		h.rnd.ErrorPage(c, http.StatusUnauthorized, "Sign in to write posts.")
		c.Abort()
		return nil, false
	}
	return u, true
}

func postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func formLabel(page string) string {
	if page == render.PostUpdate {
		return "update"
	}
	return "create"
}
