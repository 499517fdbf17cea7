package model

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func queryTestConfig() *CollectionConfig {
	return &CollectionConfig{
		Name:         "events",
		Fields:       []FieldSpec{{Name: "title", Kind: KindString}},
		FilterFields: []string{"eventType"},
	}
}

func TestParseQuerySpec_Defaults(t *testing.T) {
	spec := ParseQuerySpec(url.Values{}, queryTestConfig())

	assert.Equal(t, DefaultPage, spec.Page)
	assert.Equal(t, DefaultLimit, spec.Limit)
	assert.Equal(t, 0, spec.Skip())
	assert.Equal(t, FieldCreatedAt, spec.SortField)
	assert.True(t, spec.SortDesc)
}

func TestParseQuerySpec_MalformedPaginationFallsBack(t *testing.T) {
	cases := map[string]url.Values{
		"non-numeric": {"page": {"abc"}, "limit": {"xyz"}},
		"zero":        {"page": {"0"}, "limit": {"0"}},
		"negative":    {"page": {"-3"}, "limit": {"-1"}},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			spec := ParseQuerySpec(params, queryTestConfig())
			assert.Equal(t, DefaultPage, spec.Page)
			assert.Equal(t, DefaultLimit, spec.Limit)
		})
	}
}

func TestParseQuerySpec_LimitCapped(t *testing.T) {
	spec := ParseQuerySpec(url.Values{"limit": {"10000"}}, queryTestConfig())
	assert.Equal(t, MaxLimit, spec.Limit)
}

func TestParseQuerySpec_Skip(t *testing.T) {
	spec := ParseQuerySpec(url.Values{"page": {"3"}, "limit": {"25"}}, queryTestConfig())
	assert.Equal(t, 50, spec.Skip())
}

func TestParseQuerySpec_SortOverride(t *testing.T) {
	spec := ParseQuerySpec(url.Values{"sort": {"title"}, "order": {"asc"}}, queryTestConfig())
	assert.Equal(t, "title", spec.SortField)
	assert.False(t, spec.SortDesc)

	spec = ParseQuerySpec(url.Values{"sort": {"title"}}, queryTestConfig())
	assert.True(t, spec.SortDesc, "order defaults to descending")
}

func TestParseQuerySpec_DateIgnoredWithoutDateField(t *testing.T) {
	spec := ParseQuerySpec(url.Values{"startDate": {"2024-01-01"}}, queryTestConfig())
	assert.Nil(t, spec.StartDate)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(25, 2, 10)
	assert.Equal(t, int64(25), p.Total)
	assert.Equal(t, int64(3), p.Pages)

	p = NewPagination(30, 1, 10)
	assert.Equal(t, int64(3), p.Pages)

	p = NewPagination(0, 1, 10)
	assert.Equal(t, int64(0), p.Pages)
}
