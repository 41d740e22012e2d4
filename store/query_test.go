package store

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want SortKey
	}{
		{"", SortKey{Field: "createdAt", Desc: true}},
		{"-createdAt", SortKey{Field: "createdAt", Desc: true}},
		{"createdAt", SortKey{Field: "createdAt", Desc: false}},
		{"year", SortKey{Field: "year", Desc: false}},
		{"-year", SortKey{Field: "year", Desc: true}},
		{"-averageRating", SortKey{Field: "averageRating", Desc: true}},
		{"averageRating", SortKey{Field: "averageRating", Desc: false}},
		{"reviewCount", SortKey{Field: "reviewCount", Desc: false}},
		{"title", SortKey{Field: "title", Desc: false}},
		// unknown fields fall back to the default
		{"password", SortKey{Field: "createdAt", Desc: true}},
		{"-__proto__", SortKey{Field: "createdAt", Desc: true}},
		{"-", SortKey{Field: "createdAt", Desc: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSort(tt.in), "sort=%q", tt.in)
	}
}

func TestParseBookListQuery(t *testing.T) {
	q := ParseBookListQuery(url.Values{})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Equal(t, DefaultSort(), q.Sort)

	q = ParseBookListQuery(url.Values{
		"search": {"  dune "},
		"genre":  {"Poetry"},
		"sort":   {"-averageRating"},
		"page":   {"3"},
		"limit":  {"10"},
	})
	assert.Equal(t, "dune", q.Search)
	assert.Equal(t, "Poetry", q.Genre)
	assert.Equal(t, SortKey{Field: "averageRating", Desc: true}, q.Sort)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 10, q.Limit)

	// garbage and out-of-range values clamp to defaults
	q = ParseBookListQuery(url.Values{
		"page":  {"-2"},
		"limit": {"100000"},
	})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxLimit, q.Limit)

	q = ParseBookListQuery(url.Values{
		"page":  {"abc"},
		"limit": {"0"},
	})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 5))
	assert.Equal(t, 1, PageCount(1, 5))
	assert.Equal(t, 1, PageCount(5, 5))
	assert.Equal(t, 2, PageCount(6, 5))
	assert.Equal(t, 3, PageCount(12, 5))
	assert.Equal(t, 12, PageCount(12, 1))
}
