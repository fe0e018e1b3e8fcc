package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginatePageCount(t *testing.T) {
	for _, tc := range []struct{ total, size, want int }{
		{1, 5, 1}, {5, 5, 1}, {6, 5, 2}, {10, 3, 4}, {11, 1, 11},
	} {
		p := Paginate(tc.total, tc.size, "1")
		assert.Equal(t, tc.want, p.TotalPages, "total=%d size=%d", tc.total, tc.size)
		assert.False(t, p.HasPrevious(), "first page never has a previous page")

		last := Paginate(tc.total, tc.size, "999")
		assert.Equal(t, tc.want, last.Number)
		assert.False(t, last.HasNext(), "last page never has a next page")
	}
}

func TestPaginateEveryItemOnExactlyOnePage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	var seen []int
	first := Paginate(len(items), 3, "")
	for n := 1; n <= first.TotalPages; n++ {
		p := Paginate(len(items), 3, strconv.Itoa(n))
		seen = append(seen, Slice(items, p)...)
	}
	require.Equal(t, items, seen)
}

func TestPaginateClamp(t *testing.T) {
	cases := map[string]int{
		"":                      1,
		"abc":                   1,
		"0":                     1,
		"-3":                    1,
		" 2 ":                   2,
		"3":                     3,
		"4":                     3,
		"100":                   3,
		"99999999999999999999":  3,
		"-99999999999999999999": 1,
	}
	for raw, want := range cases {
		p := Paginate(12, 5, raw)
		assert.Equal(t, want, p.Number, "raw=%q", raw)
	}
}

func TestPaginateMiddlePage(t *testing.T) {
	p := Paginate(12, 5, "2")
	require.True(t, p.HasPrevious())
	require.True(t, p.HasNext())
	require.True(t, p.HasOtherPages())
	require.Equal(t, 1, p.PreviousNumber())
	require.Equal(t, 3, p.NextNumber())
	require.Equal(t, 5, p.Start)
	require.Equal(t, 10, p.End)
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(0, 5, "7")
	require.Equal(t, 1, p.Number)
	require.Equal(t, 1, p.TotalPages)
	require.False(t, p.HasOtherPages())
	require.Empty(t, Slice([]string{}, p))
}
