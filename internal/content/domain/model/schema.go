package model

import (
	"time"

	"deptsite/internal/shared/errors"
)

// FieldKind enumerates the declared kinds a collection field can have.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
	KindDate   FieldKind = "date"
	KindEnum   FieldKind = "enum"
	KindList   FieldKind = "list"
)

// FieldSpec declares one collection-specific field. Validators and query
// coercion derive from these declarations; collections never hand-roll
// per-field code.
type FieldSpec struct {
	Name       string
	Kind       FieldKind
	Required   bool
	EnumValues []string
	Default    interface{}
	// ItemFields declares the shape of each element for KindList fields,
	// e.g. the {name, institute} pairs of an author list.
	ItemFields []FieldSpec
}

// SortSpec is a default sort order for a collection.
type SortSpec struct {
	Field      string
	Descending bool
}

// CollectionConfig declares one named collection: its field schema and the
// query/visibility behavior of its routes. Adding a collection to the site
// means adding one of these to the registry.
type CollectionConfig struct {
	Name   string
	Fields []FieldSpec

	// Query configuration
	SearchFields []string
	FilterFields []string
	DateField    string
	FacetFields  []string

	// ReferenceFields maps a field holding a record ID (or list of IDs) to
	// the collection it references, for response-side expansion.
	ReferenceFields map[string]string

	DefaultSort   SortSpec
	DefaultFilter map[string]interface{}

	// EnforceOwnership restricts update/delete to the record's creator.
	// Elevated roles bypass the check.
	EnforceOwnership bool

	// PublicRead exposes the collection on the anonymous read surface.
	PublicRead bool
}

// FieldSpec returns the declaration for a named field.
func (c *CollectionConfig) FieldSpec(name string) (*FieldSpec, bool) {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i], true
		}
	}
	return nil, false
}

// DefaultSortOrDefault falls back to most-recent-created-first.
func (c *CollectionConfig) DefaultSortOrDefault() SortSpec {
	if c.DefaultSort.Field == "" {
		return SortSpec{Field: FieldCreatedAt, Descending: true}
	}
	return c.DefaultSort
}

// ApplyDefaults fills declared defaults for absent fields.
func (c *CollectionConfig) ApplyDefaults(fields map[string]interface{}) {
	for _, spec := range c.Fields {
		if spec.Default == nil {
			continue
		}
		if _, present := fields[spec.Name]; !present {
			fields[spec.Name] = spec.Default
		}
	}
}

// Validate checks the given fields against the declared schema. With partial
// set, required-field absence is not an error (partial updates supply only a
// delta). Unknown fields are rejected so typos do not silently persist.
func (c *CollectionConfig) Validate(fields map[string]interface{}, partial bool) *errors.ValidationErrors {
	ve := errors.NewValidationErrors()

	for _, spec := range c.Fields {
		val, present := fields[spec.Name]
		if !present || val == nil {
			if spec.Required && !partial {
				ve.Add(spec.Name, "is required", nil)
			}
			continue
		}
		validateFieldValue(ve, spec, spec.Name, val)
	}

	for name := range fields {
		if IsSystemField(name) || name == FieldPublished {
			continue
		}
		if _, declared := c.FieldSpec(name); !declared {
			ve.Add(name, "is not a declared field", nil)
		}
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateFieldValue(ve *errors.ValidationErrors, spec FieldSpec, path string, val interface{}) {
	switch spec.Kind {
	case KindString:
		if _, ok := val.(string); !ok {
			ve.Add(path, "must be a string", val)
		}
	case KindNumber:
		if !isNumeric(val) {
			ve.Add(path, "must be a number", val)
		}
	case KindBool:
		if _, ok := val.(bool); !ok {
			ve.Add(path, "must be a boolean", val)
		}
	case KindDate:
		if !isDate(val) {
			ve.Add(path, "must be an RFC 3339 date", val)
		}
	case KindEnum:
		s, ok := val.(string)
		if !ok {
			ve.Add(path, "must be a string", val)
			return
		}
		for _, allowed := range spec.EnumValues {
			if s == allowed {
				return
			}
		}
		ve.Add(path, "must be one of the allowed values", val)
	case KindList:
		items, ok := val.([]interface{})
		if !ok {
			ve.Add(path, "must be a list", val)
			return
		}
		for _, item := range items {
			entry, ok := item.(map[string]interface{})
			if !ok {
				ve.Add(path, "list items must be objects", item)
				continue
			}
			for _, itemSpec := range spec.ItemFields {
				itemVal, present := entry[itemSpec.Name]
				if !present || itemVal == nil {
					if itemSpec.Required {
						ve.Add(path+"."+itemSpec.Name, "is required", nil)
					}
					continue
				}
				validateFieldValue(ve, itemSpec, path+"."+itemSpec.Name, itemVal)
			}
		}
	}
}

func isNumeric(val interface{}) bool {
	switch val.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func isDate(val interface{}) bool {
	switch v := val.(type) {
	case time.Time:
		return true
	case string:
		_, err := time.Parse(time.RFC3339, v)
		if err != nil {
			_, err = time.Parse("2006-01-02", v)
		}
		return err == nil
	}
	return false
}
