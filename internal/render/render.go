// Package render turns page templates into minified HTML responses.
package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogoblog/internal/post"
	"github.com/gogotex/gogoblog/pkg/logger"
	"github.com/russross/blackfriday/v2"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	PostList   = "post_list.html"
	PostDetail = "post_detail.html"
	PostCreate = "post_create.html"
	PostUpdate = "post_update.html"
	Error      = "error.html"
)

var pageNames = []string{PostList, PostDetail, PostCreate, PostUpdate, Error}

// Renderer executes page templates, minifies the result and writes it with
// an ETag so clients can revalidate GET pages.
type Renderer struct {
	pages    map[string]*template.Template
	minifier *minify.M
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames)), minifier: minify.New()}
	r.minifier.Add("text/html", &html.Minifier{
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
		KeepDefaultAttrVals: true,
	})
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html",
			"templates/post_form.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

var funcs = template.FuncMap{
	"markdown": Markdown,
	"datefmt": func(t time.Time) string {
		return t.UTC().Format("January 2, 2006, 15:04")
	},
	"url": func(name string, args ...interface{}) (string, error) {
		return post.Reverse(name, args...)
	},
}

// Markdown renders post text. Raw HTML in the source is dropped and only
// safe link schemes (http, https, mailto, relative) become links.
func Markdown(s string) template.HTML {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML | blackfriday.Safelink,
	})
	out := blackfriday.Run([]byte(s),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(renderer),
	)
	return template.HTML(out)
}

// Render executes the named page into minified HTML.
func (r *Renderer) Render(name string, data interface{}) ([]byte, error) {
	t, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	var out bytes.Buffer
	if err := r.minifier.Minify("text/html", &out, &buf); err != nil {
		return nil, fmt.Errorf("minify %s: %w", name, err)
	}
	return out.Bytes(), nil
}

// HTML renders the named page as the response. Successful GET responses carry
// an ETag; a matching If-None-Match yields 304 with no body.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data interface{}) {
	body, err := r.Render(name, data)
	if err != nil {
		logger.Errorf("render %s: %v", name, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if status == http.StatusOK && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
		etag := ETag(body)
		c.Header("ETag", etag)
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

// ErrorPage renders the error page with the status text as message when msg is empty.
func (r *Renderer) ErrorPage(c *gin.Context, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	r.HTML(c, status, Error, gin.H{"Status": status, "Message": msg})
}

// ETag is a strong validator derived from the xxhash of body.
func ETag(body []byte) string {
	d := make([]byte, 8)
	binary.BigEndian.PutUint64(d, xxhash.Sum64(body))
	return "\"" + base64.RawURLEncoding.EncodeToString(d) + "\""
}
