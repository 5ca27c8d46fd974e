package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page  int
	Limit int
}

// FromContext extracts page/limit parameters from the echo context.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Block is the pagination section of a list response.
type Block struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	Pages       int  `json:"pages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewBlock computes the pagination block for a total row count. A request
// past the last page yields HasNextPage=false and an empty data slice at the
// query layer; the block still reports the real totals.
func NewBlock(total int, p Params) *Block {
	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	return &Block{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       total,
		Pages:       pages,
		HasNextPage: p.Page < pages,
		HasPrevPage: p.Page > 1 && total > 0,
	}
}
