package post

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReverse(t *testing.T) {
	p, err := Reverse(RouteList)
	require.NoError(t, err)
	require.Equal(t, "/posts/", p)

	p, err = Reverse(RouteDetail, int64(7))
	require.NoError(t, err)
	require.Equal(t, "/posts/7/", p)

	require.Equal(t, "/posts/7/update/", MustReverse(RouteUpdate, 7))

	_, err = Reverse(RouteDetail)
	require.Error(t, err)
	_, err = Reverse(RouteList, 1)
	require.Error(t, err)
	_, err = Reverse("nope")
	require.Error(t, err)
}
