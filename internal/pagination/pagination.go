// Package pagination slices ordered feeds into fixed-size pages.
package pagination

import "strconv"

// Page describes one resolved page of a feed. Number is always within
// [1, TotalPages], so requesting past the end returns the last page and a
// malformed page parameter returns the first.
type Page struct {
	Number     int
	Size       int
	TotalItems int64
	TotalPages int
}

// Resolve turns a raw ?page= value into a Page over total items of the given
// page size. Non-numeric input resolves to page 1 and out-of-range numbers
// clamp. A feed with zero items still has exactly one (empty) page.
func Resolve(raw string, size int, total int64) Page {
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		number = 1
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// Offset is the number of items to skip to reach this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// HasPrevious reports whether a previous page exists.
func (p Page) HasPrevious() bool {
	return p.Number > 1
}

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// Previous is the previous page number, for template links.
func (p Page) Previous() int {
	return p.Number - 1
}

// Next is the next page number, for template links.
func (p Page) Next() int {
	return p.Number + 1
}
