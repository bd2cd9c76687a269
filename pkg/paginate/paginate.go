// Package paginate splits listings into pages and builds the prev/next
// controls that move between them without losing other query parameters.
package paginate

import (
	"fmt"
	"strconv"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/navpath"
)

// DefaultParam is the query key holding the page number.
const DefaultParam = "page"

// Page is one slice of a listing. Number is 1-based.
type Page[T any] struct {
	Items  []T
	Number int
	Pages  int
	Total  int
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.Pages }

// Slice returns page number page of items, size items per page. The page
// number is clamped to [1, Pages]; an empty listing has one empty page.
func Slice[T any](items []T, size, page int) Page[T] {
	if size < 1 {
		size = 1
	}
	pages := max((len(items)+size-1)/size, 1)
	page = min(max(page, 1), pages)

	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))
	return Page[T]{
		Items:  items[start:end],
		Number: page,
		Pages:  pages,
		Total:  len(items),
	}
}

// Current reads the page number from path. Missing or malformed values yield 1.
func Current(path navpath.Path, param string) int {
	v, ok := path.Param(param)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Controls returns the navigation row for a page: a previous and a next
// button where applicable and a position indicator. Tokens keep every other
// parameter of path (filters, sort order) and only rewrite param.
func Controls(path navpath.Path, page, pages int, param string) ([]domain.Button, error) {
	if pages <= 1 {
		return nil, nil
	}
	var row []domain.Button
	if page > 1 {
		token, err := path.UpdateParams(navpath.Merge, navpath.Set(param, strconv.Itoa(page-1))).Encode()
		if err != nil {
			return nil, err
		}
		row = append(row, domain.Button{Label: "‹", Token: token})
	}

	current, err := path.Encode()
	if err != nil {
		return nil, err
	}
	row = append(row, domain.Button{Label: fmt.Sprintf("%d/%d", page, pages), Token: current})

	if page < pages {
		token, err := path.UpdateParams(navpath.Merge, navpath.Set(param, strconv.Itoa(page+1))).Encode()
		if err != nil {
			return nil, err
		}
		row = append(row, domain.Button{Label: "›", Token: token})
	}
	return row, nil
}
