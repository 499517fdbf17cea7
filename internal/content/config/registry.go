package config

import (
	"deptsite/internal/content/domain/model"
	"deptsite/internal/shared/errors"
)

// Registry holds every configured collection. Collections are declared once
// at startup and the registry is read-only afterwards, so it is safe for
// concurrent use.
type Registry struct {
	collections map[string]*model.CollectionConfig
	order       []string
}

// NewRegistry creates a registry from collection declarations.
func NewRegistry(configs ...*model.CollectionConfig) *Registry {
	reg := &Registry{collections: make(map[string]*model.CollectionConfig, len(configs))}
	for _, cfg := range configs {
		reg.collections[cfg.Name] = cfg
		reg.order = append(reg.order, cfg.Name)
	}
	return reg
}

// Get returns the configuration for a named collection.
func (r *Registry) Get(name string) (*model.CollectionConfig, error) {
	cfg, ok := r.collections[name]
	if !ok {
		return nil, errors.ErrUnknownCollection
	}
	return cfg, nil
}

// Names returns the collection names in declaration order.
func (r *Registry) Names() []string {
	return r.order
}

// PublicNames returns the names of publicly readable collections.
func (r *Registry) PublicNames() []string {
	var names []string
	for _, name := range r.order {
		if r.collections[name].PublicRead {
			names = append(names, name)
		}
	}
	return names
}

// DefaultRegistry declares the site's collections: the activity-portal
// record types and the asset-management record types.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&model.CollectionConfig{
			Name: "publications",
			Fields: []model.FieldSpec{
				{Name: "title", Kind: model.KindString, Required: true},
				{Name: "abstract", Kind: model.KindString},
				{Name: "journal", Kind: model.KindString},
				{Name: "publicationType", Kind: model.KindEnum, EnumValues: []string{"journal", "conference", "book-chapter", "preprint"}, Default: "journal"},
				{Name: "year", Kind: model.KindNumber},
				{Name: "doi", Kind: model.KindString},
				{Name: "publishedOn", Kind: model.KindDate},
				{Name: "authors", Kind: model.KindList, ItemFields: []model.FieldSpec{
					{Name: "name", Kind: model.KindString, Required: true},
					{Name: "institute", Kind: model.KindString},
				}},
			},
			SearchFields:     []string{"title", "abstract", "journal"},
			FilterFields:     []string{"publicationType", "year"},
			DateField:        "publishedOn",
			FacetFields:      []string{"publicationType", "journal"},
			EnforceOwnership: true,
			PublicRead:       true,
		},
		&model.CollectionConfig{
			Name: "patents",
			Fields: []model.FieldSpec{
				{Name: "title", Kind: model.KindString, Required: true},
				{Name: "patentNumber", Kind: model.KindString, Required: true},
				{Name: "status", Kind: model.KindEnum, EnumValues: []string{"filed", "published", "granted"}, Default: "filed"},
				{Name: "filedOn", Kind: model.KindDate},
				{Name: "inventors", Kind: model.KindList, ItemFields: []model.FieldSpec{
					{Name: "name", Kind: model.KindString, Required: true},
					{Name: "institute", Kind: model.KindString},
				}},
			},
			SearchFields:     []string{"title", "patentNumber"},
			FilterFields:     []string{"status"},
			DateField:        "filedOn",
			FacetFields:      []string{"status"},
			EnforceOwnership: true,
			PublicRead:       true,
		},
		&model.CollectionConfig{
			Name: "events",
			Fields: []model.FieldSpec{
				{Name: "title", Kind: model.KindString, Required: true},
				{Name: "description", Kind: model.KindString},
				{Name: "eventType", Kind: model.KindEnum, EnumValues: []string{"seminar", "workshop", "conference", "outreach"}, Default: "seminar"},
				{Name: "venue", Kind: model.KindString},
				{Name: "heldOn", Kind: model.KindDate},
				{Name: "speakers", Kind: model.KindList, ItemFields: []model.FieldSpec{
					{Name: "name", Kind: model.KindString, Required: true},
					{Name: "institute", Kind: model.KindString},
				}},
			},
			SearchFields:     []string{"title", "description", "venue"},
			FilterFields:     []string{"eventType"},
			DateField:        "heldOn",
			FacetFields:      []string{"eventType"},
			EnforceOwnership: true,
			PublicRead:       true,
		},
		&model.CollectionConfig{
			Name: "visits",
			Fields: []model.FieldSpec{
				{Name: "visitorName", Kind: model.KindString, Required: true},
				{Name: "institute", Kind: model.KindString},
				{Name: "purpose", Kind: model.KindString},
				{Name: "visitedOn", Kind: model.KindDate},
			},
			SearchFields:     []string{"visitorName", "institute", "purpose"},
			FilterFields:     []string{"institute"},
			DateField:        "visitedOn",
			FacetFields:      []string{"institute"},
			EnforceOwnership: true,
			PublicRead:       true,
		},
		&model.CollectionConfig{
			Name: "equipment",
			Fields: []model.FieldSpec{
				{Name: "name", Kind: model.KindString, Required: true},
				{Name: "serialNumber", Kind: model.KindString, Required: true},
				{Name: "category", Kind: model.KindString},
				{Name: "status", Kind: model.KindEnum, EnumValues: []string{"active", "maintenance", "retired"}, Default: "active"},
				{Name: "purchasedOn", Kind: model.KindDate},
				{Name: "vendor", Kind: model.KindString},
				{Name: "location", Kind: model.KindString},
			},
			SearchFields: []string{"name", "serialNumber", "category"},
			FilterFields: []string{"category", "status"},
			DateField:    "purchasedOn",
			FacetFields:  []string{"category", "status"},
			ReferenceFields: map[string]string{
				"vendor":   "vendors",
				"location": "locations",
			},
			// Asset records are maintained by the whole asset-management
			// team, not per creator.
			EnforceOwnership: false,
			PublicRead:       false,
		},
		&model.CollectionConfig{
			Name: "vendors",
			Fields: []model.FieldSpec{
				{Name: "name", Kind: model.KindString, Required: true},
				{Name: "contactEmail", Kind: model.KindString},
				{Name: "phone", Kind: model.KindString},
				{Name: "address", Kind: model.KindString},
			},
			SearchFields:     []string{"name", "contactEmail"},
			FilterFields:     []string{},
			EnforceOwnership: false,
			PublicRead:       false,
		},
		&model.CollectionConfig{
			Name: "locations",
			Fields: []model.FieldSpec{
				{Name: "name", Kind: model.KindString, Required: true},
				{Name: "building", Kind: model.KindString},
				{Name: "room", Kind: model.KindString},
			},
			SearchFields:     []string{"name", "building"},
			FilterFields:     []string{"building"},
			FacetFields:      []string{"building"},
			EnforceOwnership: false,
			PublicRead:       false,
		},
	)
}
