package post

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength bounds Post.Title in characters.
const MaxTitleLength = 200

var (
	ErrNotFound = errors.New("post not found")
)

// ValidationError reports invalid submitted fields, keyed by form field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid post: " + strings.Join(parts, "; ")
}

// Add records a message for field. The first message per field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Validate checks that title and text are present. It returns nil or a *ValidationError.
func (in Input) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Title) == "" {
		verr.Add("title", "This field is required.")
	} else if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		verr.Add("title", fmt.Sprintf("Ensure this value has at most %d characters.", MaxTitleLength))
	}
	if strings.TrimSpace(in.Text) == "" {
		verr.Add("text", "This field is required.")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
