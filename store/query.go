package store

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"bookreviews/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

const (
	DefaultLimit = 5
	MaxLimit     = 100
)

// SortKey is a parsed sort parameter: a whitelisted field name plus
// direction. averageRating and reviewCount refer to the computed
// per-book aggregates, so sorting on them happens after the review
// join, never against a stored field.
type SortKey struct {
	Field string
	Desc  bool
}

var sortableFields = map[string]bool{
	"createdAt":     true,
	"year":          true,
	"title":         true,
	"author":        true,
	"averageRating": true,
	"reviewCount":   true,
}

// DefaultSort is newest-first by creation time.
func DefaultSort() SortKey {
	return SortKey{Field: "createdAt", Desc: true}
}

// ParseSort parses a sort string like "-averageRating". A leading "-"
// means descending. Unknown fields fall back to the default sort.
func ParseSort(s string) SortKey {
	s = strings.TrimSpace(s)
	desc := strings.HasPrefix(s, "-")
	field := strings.TrimPrefix(s, "-")
	if !sortableFields[field] {
		return DefaultSort()
	}
	return SortKey{Field: field, Desc: desc}
}

// BookListQuery is the normalized input to the catalog listing.
type BookListQuery struct {
	Search string
	Genre  string
	Sort   SortKey
	Page   int
	Limit  int
}

// ParseBookListQuery builds a BookListQuery from request query params,
// applying defaults and clamping page/limit to sane bounds.
func ParseBookListQuery(values url.Values) BookListQuery {
	q := BookListQuery{
		Search: strings.TrimSpace(values.Get("search")),
		Genre:  strings.TrimSpace(values.Get("genre")),
		Sort:   ParseSort(values.Get("sort")),
		Page:   1,
		Limit:  DefaultLimit,
	}
	if n, err := strconv.Atoi(values.Get("page")); err == nil && n > 1 {
		q.Page = n
	}
	if n, err := strconv.Atoi(values.Get("limit")); err == nil && n > 0 {
		q.Limit = n
		if q.Limit > MaxLimit {
			q.Limit = MaxLimit
		}
	}
	return q
}

// BookPage is one page of the catalog listing. TotalBooks and
// TotalPages cover the full filtered set, not just this page.
type BookPage struct {
	Books      []models.RatedBook `json:"books"`
	Page       int                `json:"page"`
	TotalBooks int64              `json:"totalBooks"`
	TotalPages int                `json:"totalPages"`
}

// PageCount returns ceil(total/limit).
func PageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// BookUpdate carries the mutable book fields; nil means leave as-is.
type BookUpdate struct {
	Title       *string
	Author      *string
	Description *string
	Genre       *string
	Year        *int
}

// ReviewUpdate carries the mutable review fields; nil means leave as-is.
type ReviewUpdate struct {
	Rating     *int
	ReviewText *string
}
