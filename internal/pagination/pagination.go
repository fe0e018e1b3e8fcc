// Package pagination splits an ordered list into fixed-size pages.
//
// Requested page numbers are clamped: a missing, non-numeric or < 1 value
// selects the first page, a value past the end selects the last page. An
// empty list still has one (empty) page.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// Page describes one page of a list of total items.
type Page struct {
	Number     int
	TotalPages int
	TotalItems int
	Size       int
	// Start and End bound the page's items: items[Start:End].
	Start int
	End   int
}

// Paginate returns the page selected by raw (usually the "page" query value).
// size values < 1 are treated as 1.
func Paginate(total, size int, raw string) Page {
	if size < 1 {
		size = 1
	}
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-"):
		n = pages
	case err != nil || n < 1:
		n = 1
	}
	if n > pages {
		n = pages
	}
	start := (n - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return Page{Number: n, TotalPages: pages, TotalItems: total, Size: size, Start: start, End: end}
}

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.TotalPages }
func (p Page) HasOtherPages() bool {
	return p.HasPrevious() || p.HasNext()
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

// Slice returns the page's window of items.
func Slice[T any](items []T, p Page) []T {
	if p.Start >= len(items) {
		return items[:0]
	}
	end := p.End
	if end > len(items) {
		end = len(items)
	}
	return items[p.Start:end]
}
