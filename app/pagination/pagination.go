// Package pagination slices an ordered candidate sequence into numbered pages.
//
// A requested page arrives as an arbitrary token, usually the "page" query
// parameter. Tokens that are not integers select the first page; integers
// outside [1, total pages] select the last page. The result is never an error.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// TokenKind classifies a parsed page token.
type TokenKind int

const (
	// Valid is an integer within [1, total pages].
	Valid TokenKind = iota
	// NotAnInteger is anything that does not parse as a base-10 integer.
	NotAnInteger
	// OutOfRange is an integer below 1 or above the total page count.
	OutOfRange
)

func (k TokenKind) String() string {
	switch k {
	case Valid:
		return "valid"
	case NotAnInteger:
		return "not_an_integer"
	case OutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}

// Token is the result of parsing a requested page against a page count.
// Number holds the parsed value for Valid and OutOfRange and is zero for
// NotAnInteger. Overflowing integers are OutOfRange with Number zero.
type Token struct {
	Kind   TokenKind
	Number int
}

// ParseToken classifies raw against totalPages.
func ParseToken(raw string, totalPages int) Token {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return Token{Kind: OutOfRange}
		}
		return Token{Kind: NotAnInteger}
	}
	if n < 1 || n > totalPages {
		return Token{Kind: OutOfRange, Number: n}
	}
	return Token{Kind: Valid, Number: n}
}

// Resolve maps a token to the page number that is served.
func (t Token) Resolve(totalPages int) int {
	switch t.Kind {
	case Valid:
		return t.Number
	case NotAnInteger:
		return 1
	default:
		return totalPages
	}
}

// TotalPages returns the number of pages needed for count items. An empty
// sequence still has one (empty) page.
func TotalPages(count, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	if count <= 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}

// Page is one slice of a paginated sequence plus navigation metadata.
type Page[T any] struct {
	Items       []T
	Number      int
	TotalPages  int
	PerPage     int
	Count       int
	HasNext     bool
	HasPrevious bool
	Requested   Token
}

// Paginate returns the page of items selected by the raw token.
// items must already be filtered and ordered. perPage below 1 is treated as 1.
func Paginate[T any](items []T, perPage int, raw string) Page[T] {
	if perPage < 1 {
		perPage = 1
	}
	total := TotalPages(len(items), perPage)
	tok := ParseToken(raw, total)
	number := tok.Resolve(total)

	start := (number - 1) * perPage
	end := min(start+perPage, len(items))
	if start > end {
		start = end
	}

	return Page[T]{
		Items:       items[start:end:end],
		Number:      number,
		TotalPages:  total,
		PerPage:     perPage,
		Count:       len(items),
		HasNext:     number < total,
		HasPrevious: number > 1,
		Requested:   tok,
	}
}

// NextPageNumber returns the following page number, or the current one on the last page.
func (p Page[T]) NextPageNumber() int {
	if p.HasNext {
		return p.Number + 1
	}
	return p.Number
}

// PreviousPageNumber returns the preceding page number, or 1 on the first page.
func (p Page[T]) PreviousPageNumber() int {
	if p.HasPrevious {
		return p.Number - 1
	}
	return 1
}

// StartIndex is the 1-based position of the first item on the page, 0 when empty.
func (p Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// EndIndex is the 1-based position of the last item on the page.
func (p Page[T]) EndIndex() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.StartIndex() + len(p.Items) - 1
}
