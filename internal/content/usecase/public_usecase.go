package usecase

import (
	"context"
	"net/url"

	"deptsite/internal/content/config"
	"deptsite/internal/content/domain/model"
	"deptsite/internal/content/domain/repository"
	"deptsite/internal/content/domain/service"
	"deptsite/internal/shared/errors"
	"deptsite/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
)

// FacetCache caches the distinct facet values served with public list
// responses. Implementations are best-effort; a miss just means a store
// round-trip.
type FacetCache interface {
	Get(ctx context.Context, collection, field string) ([]string, bool)
	Set(ctx context.Context, collection, field string, values []string)
}

// PublicListResult is one page of published records plus the facet values
// clients use to build filter dropdowns.
type PublicListResult struct {
	Records    []*model.Record     `json:"data"`
	Facets     map[string][]string `json:"filters"`
	Pagination model.Pagination    `json:"pagination"`
}

// PublicUsecaseInterface is the anonymous read surface. Only published
// records in publicly readable collections are reachable; everything else
// reads as not found.
type PublicUsecaseInterface interface {
	List(ctx context.Context, collection string, params url.Values) (*PublicListResult, error)
	GetByID(ctx context.Context, collection, id string) (*model.Record, error)
}

// PublicUsecase serves published records without authentication.
type PublicUsecase struct {
	registry *config.Registry
	repo     repository.RecordRepository
	facets   FacetCache
	log      logger.Logger
}

// NewPublicUsecase creates the public read usecase. The facet cache may be
// nil, in which case facet values always come from the store.
func NewPublicUsecase(registry *config.Registry, repo repository.RecordRepository, facets FacetCache, log logger.Logger) *PublicUsecase {
	return &PublicUsecase{
		registry: registry,
		repo:     repo,
		facets:   facets,
		log:      log.WithComponent("public_usecase"),
	}
}

// List returns one page of published records matching the query, with facet
// values computed over all published records of the collection rather than
// the current query's matches.
func (uc *PublicUsecase) List(ctx context.Context, collection string, params url.Values) (*PublicListResult, error) {
	cfg, err := uc.lookupPublicCollection(collection)
	if err != nil {
		return nil, err
	}

	spec := model.ParseQuerySpec(params, cfg)
	filter := service.MergeFilter(service.BuildFilter(spec, cfg), uc.visibility(cfg))

	records, total, err := uc.repo.Find(ctx, cfg.Name, filter, service.BuildSort(spec), spec.Skip(), spec.Limit)
	if err != nil {
		return nil, errors.WrapError(err, "failed to list records")
	}
	if err := uc.repo.Expand(ctx, cfg, records); err != nil {
		return nil, errors.WrapError(err, "failed to expand references")
	}

	facets, err := uc.collectFacets(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &PublicListResult{
		Records:    records,
		Facets:     facets,
		Pagination: model.NewPagination(total, spec.Page, spec.Limit),
	}, nil
}

// GetByID returns a single published record. Unpublished records read as not
// found; the response never reveals that a draft exists.
func (uc *PublicUsecase) GetByID(ctx context.Context, collection, id string) (*model.Record, error) {
	cfg, err := uc.lookupPublicCollection(collection)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.ErrMissingRecordID
	}

	record, err := uc.repo.FindByID(ctx, cfg.Name, id)
	if err != nil {
		return nil, err
	}
	if !record.Published {
		return nil, errors.ErrRecordNotFound
	}
	if err := uc.repo.Expand(ctx, cfg, []*model.Record{record}); err != nil {
		return nil, errors.WrapError(err, "failed to expand references")
	}
	return record, nil
}

// lookupPublicCollection hides non-public collections behind the same not
// found response as unknown ones.
func (uc *PublicUsecase) lookupPublicCollection(name string) (*model.CollectionConfig, error) {
	cfg, err := uc.registry.Get(name)
	if err != nil {
		return nil, errors.NewNotFoundError("collection").WithCause(err)
	}
	if !cfg.PublicRead {
		return nil, errors.NewNotFoundError("collection").WithCause(errors.ErrCollectionNotPublic)
	}
	return cfg, nil
}

// visibility is the fixed predicate every public query ANDs in.
func (uc *PublicUsecase) visibility(cfg *model.CollectionConfig) map[string]interface{} {
	fixed := map[string]interface{}{model.FieldPublished: true}
	for k, v := range cfg.DefaultFilter {
		fixed[k] = v
	}
	return fixed
}

// collectFacets gathers the distinct values of each configured facet field
// among visible records, consulting the cache first.
func (uc *PublicUsecase) collectFacets(ctx context.Context, cfg *model.CollectionConfig) (map[string][]string, error) {
	if len(cfg.FacetFields) == 0 {
		return map[string][]string{}, nil
	}

	facets := make(map[string][]string, len(cfg.FacetFields))
	for _, field := range cfg.FacetFields {
		if uc.facets != nil {
			if values, ok := uc.facets.Get(ctx, cfg.Name, field); ok {
				facets[field] = values
				continue
			}
		}

		values, err := uc.repo.Distinct(ctx, cfg.Name, field, bson.M(uc.visibility(cfg)))
		if err != nil {
			return nil, errors.WrapError(err, "failed to compute facet values")
		}
		facets[field] = values
		if uc.facets != nil {
			uc.facets.Set(ctx, cfg.Name, field, values)
		}
	}
	return facets, nil
}
