package service

import (
	"regexp"
	"strconv"

	"deptsite/internal/content/domain/model"

	"go.mongodb.org/mongo-driver/bson"
)

// BuildFilter translates a parsed QuerySpec into a store-level filter for the
// given collection. Pure function: no validation of field existence is
// performed, so an unknown field simply matches nothing.
//
// The search clause is an OR of case-insensitive substring matches across the
// configured search fields; every other constraint ANDs in.
func BuildFilter(spec model.QuerySpec, cfg *model.CollectionConfig) bson.M {
	filter := bson.M{}

	if spec.Search != "" && len(cfg.SearchFields) > 0 {
		pattern := regexp.QuoteMeta(spec.Search)
		or := make([]bson.M, 0, len(cfg.SearchFields))
		for _, field := range cfg.SearchFields {
			or = append(or, bson.M{field: bson.M{"$regex": pattern, "$options": "i"}})
		}
		filter["$or"] = or
	}

	for field, raw := range spec.Filters {
		filter[field] = coerceFilterValue(cfg, field, raw)
	}

	if cfg.DateField != "" && (spec.StartDate != nil || spec.EndDate != nil) {
		dateRange := bson.M{}
		if spec.StartDate != nil {
			dateRange["$gte"] = *spec.StartDate
		}
		if spec.EndDate != nil {
			dateRange["$lte"] = *spec.EndDate
		}
		filter[cfg.DateField] = dateRange
	}

	return filter
}

// BuildSort translates the QuerySpec sort into store sort order.
func BuildSort(spec model.QuerySpec) bson.D {
	direction := 1
	if spec.SortDesc {
		direction = -1
	}
	return bson.D{{Key: spec.SortField, Value: direction}}
}

// MergeFilter ANDs extra constraints (visibility predicates, configured
// default filters) into a built filter. Keys already present in the base
// filter are not overwritten; fixed constraints take precedence over
// client-supplied ones.
func MergeFilter(base bson.M, fixed map[string]interface{}) bson.M {
	for key, val := range fixed {
		base[key] = val
	}
	return base
}

// coerceFilterValue converts a raw string parameter into the declared field
// kind. Values stay strings unless the schema marks the field numeric or
// boolean.
func coerceFilterValue(cfg *model.CollectionConfig, field, raw string) interface{} {
	spec, ok := cfg.FieldSpec(field)
	if !ok {
		return raw
	}
	switch spec.Kind {
	case model.KindNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	case model.KindBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}
