package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters.
// Enabled is false when the caller asked for the full list.
type Params struct {
	Page    int
	Limit   int
	Offset  int
	Enabled bool
}

// Parse extracts and validates page/itemsPerPage from query parameters, falling back to defaults
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("itemsPerPage", strconv.Itoa(DefaultLimit)))
	return New(page, limit)
}

// ParseOptional paginates only when both page and itemsPerPage are present.
// ok is false when a value is not a positive integer, or itemsPerPage comes without page.
func ParseOptional(c *gin.Context) (Params, bool) {
	rawPage, hasPage := c.GetQuery("page")
	rawLimit, hasLimit := c.GetQuery("itemsPerPage")
	if !hasPage && !hasLimit {
		return Params{}, true
	}

	page, err := strconv.Atoi(rawPage)
	if hasPage && (err != nil || page < 1) {
		return Params{}, false
	}
	limit, err := strconv.Atoi(rawLimit)
	if hasLimit && (err != nil || limit < MinLimit) {
		return Params{}, false
	}
	if hasLimit && !hasPage {
		return Params{}, false
	}
	if !hasLimit {
		return Params{}, true
	}
	return New(page, limit), true
}

// New clamps page/limit and computes the offset
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:    page,
		Limit:   limit,
		Offset:  (page - 1) * limit,
		Enabled: true,
	}
}
