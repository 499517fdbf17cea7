package service

import (
	"net/url"
	"testing"
	"time"

	"deptsite/internal/content/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func testConfig() *model.CollectionConfig {
	return &model.CollectionConfig{
		Name: "publications",
		Fields: []model.FieldSpec{
			{Name: "title", Kind: model.KindString, Required: true},
			{Name: "abstract", Kind: model.KindString},
			{Name: "year", Kind: model.KindNumber},
			{Name: "archived", Kind: model.KindBool},
			{Name: "publicationType", Kind: model.KindEnum, EnumValues: []string{"journal", "conference"}},
			{Name: "publishedOn", Kind: model.KindDate},
		},
		SearchFields: []string{"title", "abstract"},
		FilterFields: []string{"publicationType", "year", "archived"},
		DateField:    "publishedOn",
	}
}

func TestBuildFilter_SearchProducesCaseInsensitiveOr(t *testing.T) {
	cfg := testConfig()
	spec := model.ParseQuerySpec(url.Values{"search": {"alpha"}}, cfg)

	filter := BuildFilter(spec, cfg)

	or, ok := filter["$or"].([]bson.M)
	require.True(t, ok, "search must produce an $or clause")
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"$regex": "alpha", "$options": "i"}, or[0]["title"])
	assert.Equal(t, bson.M{"$regex": "alpha", "$options": "i"}, or[1]["abstract"])
}

func TestBuildFilter_SearchTermIsRegexEscaped(t *testing.T) {
	cfg := testConfig()
	spec := model.ParseQuerySpec(url.Values{"search": {"c++ (v2)"}}, cfg)

	filter := BuildFilter(spec, cfg)

	or := filter["$or"].([]bson.M)
	pattern := or[0]["title"].(bson.M)["$regex"].(string)
	assert.Equal(t, `c\+\+ \(v2\)`, pattern)
}

func TestBuildFilter_EmptySearchOmitsOrClause(t *testing.T) {
	cfg := testConfig()
	spec := model.ParseQuerySpec(url.Values{"search": {""}}, cfg)

	filter := BuildFilter(spec, cfg)

	_, has := filter["$or"]
	assert.False(t, has)
}

func TestBuildFilter_QueryAliasFeedsSearch(t *testing.T) {
	cfg := testConfig()
	spec := model.ParseQuerySpec(url.Values{"query": {"beta"}}, cfg)

	filter := BuildFilter(spec, cfg)
	_, has := filter["$or"]
	assert.True(t, has)
}

func TestBuildFilter_FilterValueCoercion(t *testing.T) {
	cfg := testConfig()
	spec := model.ParseQuerySpec(url.Values{
		"publicationType": {"journal"},
		"year":            {"2024"},
		"archived":        {"true"},
	}, cfg)

	filter := BuildFilter(spec, cfg)

	assert.Equal(t, "journal", filter["publicationType"])
	assert.Equal(t, float64(2024), filter["year"])
	assert.Equal(t, true, filter["archived"])
}

func TestBuildFilter_UnconfiguredParamsAreIgnored(t *testing.T) {
	cfg := testConfig()
	spec := model.ParseQuerySpec(url.Values{
		"title":   {"sneaky"},
		"$where":  {"1==1"},
		"unknown": {"x"},
	}, cfg)

	filter := BuildFilter(spec, cfg)
	assert.Empty(t, filter)
}

func TestBuildFilter_DateRangeIsInclusive(t *testing.T) {
	cfg := testConfig()
	spec := model.ParseQuerySpec(url.Values{
		"startDate": {"2024-01-01"},
		"endDate":   {"2024-12-31"},
	}, cfg)

	filter := BuildFilter(spec, cfg)

	dateRange, ok := filter["publishedOn"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), dateRange["$gte"])
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), dateRange["$lte"])
}

func TestBuildFilter_OpenEndedDateRange(t *testing.T) {
	cfg := testConfig()
	spec := model.ParseQuerySpec(url.Values{"startDate": {"2024-06-01"}}, cfg)

	filter := BuildFilter(spec, cfg)

	dateRange := filter["publishedOn"].(bson.M)
	_, hasLTE := dateRange["$lte"]
	assert.False(t, hasLTE)
	assert.NotNil(t, dateRange["$gte"])
}

func TestBuildSort(t *testing.T) {
	sort := BuildSort(model.QuerySpec{SortField: "year", SortDesc: true})
	assert.Equal(t, bson.D{{Key: "year", Value: -1}}, sort)

	sort = BuildSort(model.QuerySpec{SortField: "title", SortDesc: false})
	assert.Equal(t, bson.D{{Key: "title", Value: 1}}, sort)
}

func TestMergeFilter_FixedConstraintsWin(t *testing.T) {
	base := bson.M{"published": false, "year": float64(2024)}
	merged := MergeFilter(base, map[string]interface{}{"published": true})

	assert.Equal(t, true, merged["published"])
	assert.Equal(t, float64(2024), merged["year"])
}
