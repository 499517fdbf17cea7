package model

import (
	"net/url"
	"strconv"
	"time"
)

// Pagination defaults applied when parameters are absent or malformed.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// QuerySpec is the transient, per-request query description parsed from URL
// parameters. It is never persisted.
type QuerySpec struct {
	Search    string
	Filters   map[string]string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
	SortField string
	SortDesc  bool
}

// Skip returns the number of documents to skip for the requested page.
func (q QuerySpec) Skip() int {
	return (q.Page - 1) * q.Limit
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

// NewPagination computes the page count from the total.
func NewPagination(total int64, page, limit int) Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// ParseQuerySpec translates raw URL parameters into a QuerySpec using the
// collection's configuration. Empty parameter values are treated as absent.
// Unknown filter names are ignored here; the Query Builder only consults the
// configured filter fields anyway.
func ParseQuerySpec(params url.Values, cfg *CollectionConfig) QuerySpec {
	spec := QuerySpec{
		Filters: make(map[string]string),
		Page:    parsePositiveInt(params.Get("page"), DefaultPage),
		Limit:   parsePositiveInt(params.Get("limit"), DefaultLimit),
	}
	if spec.Limit > MaxLimit {
		spec.Limit = MaxLimit
	}

	spec.Search = params.Get("search")
	if spec.Search == "" {
		spec.Search = params.Get("query")
	}

	for _, field := range cfg.FilterFields {
		if val := params.Get(field); val != "" {
			spec.Filters[field] = val
		}
	}

	if cfg.DateField != "" {
		spec.StartDate = parseDate(params.Get("startDate"))
		spec.EndDate = parseDate(params.Get("endDate"))
	}

	sort := cfg.DefaultSortOrDefault()
	spec.SortField = sort.Field
	spec.SortDesc = sort.Descending
	if field := params.Get("sort"); field != "" {
		spec.SortField = field
		spec.SortDesc = params.Get("order") != "asc"
	}

	return spec
}

// parsePositiveInt coerces a parameter to an integer >= 1, falling back to
// the default for absent or non-numeric values.
func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
