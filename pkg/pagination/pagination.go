package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds validated pagination parameters
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Meta is the paging block returned next to a page of items.
type Meta struct {
	Params
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// Parse reads page and limit from the query string. Out of range values fall
// back to the defaults and limit is capped at MaxLimit.
func Parse(c *gin.Context) Params {
	return Params{
		Page:  positive(c.Query("page"), DefaultPage),
		Limit: min(positive(c.Query("limit"), DefaultLimit), MaxLimit),
	}
}

func positive(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// WithTotal builds the response metadata for total matching rows.
func (p Params) WithTotal(total int64) Meta {
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return Meta{Params: p, Total: total, TotalPages: pages}
}
