package pagination

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Page is one page of a result set.
type Page[T any] struct {
	Items    []T
	Number   int
	Size     int
	Total    int64
	NumPages int
}

func (p *Page[T]) HasNext() bool     { return p.Number < p.NumPages }
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p *Page[T]) HasOther() bool    { return p.NumPages > 1 }
func (p *Page[T]) NextNumber() int   { return p.Number + 1 }
func (p *Page[T]) PrevNumber() int   { return p.Number - 1 }

// Range lists every page number, for page links.
func (p *Page[T]) Range() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// NumPages is the page count for total rows; an empty set still has one
// (empty) page.
func NumPages(total int64, size int) int {
	if size < 1 || total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Resolve maps a raw page parameter onto an existing page: anything that is
// not an integer becomes page 1, an integer outside 1..last becomes the last
// page.
func Resolve(raw string, total int64, size int) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	last := NumPages(total, size)
	if page < 1 || page > last {
		return last
	}
	return page
}

// Paginate counts query, resolves raw against the count and loads the page.
func Paginate[T any](query *gorm.DB, raw string, size int) (*Page[T], error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	number := Resolve(raw, total, size)
	page := &Page[T]{
		Number:   number,
		Size:     size,
		Total:    total,
		NumPages: NumPages(total, size),
	}
	if total == 0 {
		return page, nil
	}

	offset := (number - 1) * size
	if err := query.Session(&gorm.Session{}).Offset(offset).Limit(size).Find(&page.Items).Error; err != nil {
		return nil, err
	}
	return page, nil
}
