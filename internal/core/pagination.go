// AngelaMos | 2026
// pagination.go

package core

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
)

type PageParams struct {
	Page     int
	PageSize int
}

type PageEnvelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type Paginator struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Params reads page and page_size from the query string. A page value that is
// not a positive integer, or whose offset would overflow an int, is rejected;
// an unusable page_size falls back to the default.
func (p Paginator) Params(r *http.Request) (PageParams, error) {
	params := PageParams{Page: 1, PageSize: p.DefaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, fmt.Errorf("page %q: %w", raw, ErrInvalidPage)
		}
		params.Page = page
	}

	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			params.PageSize = size
		}
	}

	if params.PageSize < 1 {
		params.PageSize = 10
	}
	if p.MaxPageSize > 0 && params.PageSize > p.MaxPageSize {
		params.PageSize = p.MaxPageSize
	}

	if params.Page-1 > math.MaxInt/params.PageSize {
		return params, fmt.Errorf("page %d: %w", params.Page, ErrInvalidPage)
	}

	return params, nil
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p PageParams) Limit() int {
	return p.PageSize
}

// NewPage builds the {count, next, previous, results} envelope. Requesting a
// page past the last one is an error, except page 1 of an empty result.
func NewPage[T any](
	r *http.Request,
	params PageParams,
	results []T,
	total int,
) (*PageEnvelope[T], error) {
	if params.Page > 1 && params.Offset() >= total {
		return nil, fmt.Errorf("page %d: %w", params.Page, ErrInvalidPage)
	}

	if results == nil {
		results = []T{}
	}

	env := &PageEnvelope[T]{
		Count:   total,
		Results: results,
	}

	if params.Offset()+len(results) < total {
		next := pageURL(r, params.Page+1)
		env.Next = &next
	}

	if params.Page > 1 {
		prev := pageURL(r, params.Page-1)
		env.Previous = &prev
	}

	return env, nil
}

// Paginated writes a page, or a 404 when the page is out of range.
func Paginated[T any](
	w http.ResponseWriter,
	r *http.Request,
	params PageParams,
	results []T,
	total int,
) {
	page, err := NewPage(r, params, results, total)
	if err != nil {
		NotFoundMessage(w, "invalid page")
		return
	}

	OK(w, page)
}

func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}

	return u.String()
}
