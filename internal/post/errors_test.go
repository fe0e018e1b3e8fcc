package post

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInputValidate(t *testing.T) {
	require.NoError(t, Input{Title: "T", Text: "X"}.Validate())

	err := Input{Title: "  ", Text: ""}.Validate()
	verr, ok := IsValidation(err)
	require.True(t, ok)
	require.Contains(t, verr.Fields, "title")
	require.Contains(t, verr.Fields, "text")

	err = Input{Title: strings.Repeat("a", MaxTitleLength+1), Text: "x"}.Validate()
	verr, ok = IsValidation(err)
	require.True(t, ok)
	require.Contains(t, verr.Fields["title"], "at most")
	require.NotContains(t, verr.Fields, "text")
}

func TestValidationErrorWrapped(t *testing.T) {
	err := fmt.Errorf("create: %w", Input{}.Validate())
	_, ok := IsValidation(err)
	require.True(t, ok)
	require.Equal(t, "create: invalid post: text: This field is required.; title: This field is required.", err.Error())
}
