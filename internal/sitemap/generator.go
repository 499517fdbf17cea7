package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	contentconfig "deptsite/internal/content/config"
	"deptsite/internal/content/domain/model"
	"deptsite/internal/content/domain/repository"
	"deptsite/internal/sitemap/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// pageSize is the store fetch size while walking a collection.
const pageSize = 100

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Generator builds the sitemap document from the static site pages plus
// every published record of the publicly readable collections.
type Generator struct {
	cfg      *config.Config
	registry *contentconfig.Registry
	repo     repository.RecordRepository
	log      *zap.Logger
}

// NewGenerator creates a sitemap generator.
func NewGenerator(cfg *config.Config, registry *contentconfig.Registry, repo repository.RecordRepository, log *zap.Logger) *Generator {
	return &Generator{
		cfg:      cfg,
		registry: registry,
		repo:     repo,
		log:      log.Named("sitemap"),
	}
}

// Build assembles the sitemap XML. The caller bounds the work through ctx.
func (g *Generator) Build(ctx context.Context) ([]byte, error) {
	start := time.Now()
	set := urlSet{Xmlns: xmlns}

	for _, path := range g.cfg.StaticPaths {
		set.URLs = append(set.URLs, urlEntry{Loc: g.cfg.SiteBaseURL + path})
	}

	for _, collection := range g.registry.PublicNames() {
		entries, err := g.collectionEntries(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("sitemap build failed for %s: %w", collection, err)
		}
		set.URLs = append(set.URLs, entries...)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sitemap encoding failed: %w", err)
	}

	g.log.Info("sitemap built",
		zap.Int("entries", len(set.URLs)),
		zap.Duration("took", time.Since(start)),
	)
	return append([]byte(xml.Header), out...), nil
}

// collectionEntries walks one collection's published records in pages.
func (g *Generator) collectionEntries(ctx context.Context, collection string) ([]urlEntry, error) {
	filter := bson.M{model.FieldPublished: true}
	sort := bson.D{{Key: model.FieldUpdatedAt, Value: -1}}

	var entries []urlEntry
	for skip := 0; skip < g.cfg.MaxEntriesPerCollection; skip += pageSize {
		records, total, err := g.repo.Find(ctx, collection, filter, sort, skip, pageSize)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			entries = append(entries, urlEntry{
				Loc:     fmt.Sprintf("%s/%s/%s", g.cfg.SiteBaseURL, collection, record.ID),
				LastMod: record.UpdatedAt.UTC().Format("2006-01-02"),
			})
		}
		if int64(skip+len(records)) >= total || len(records) == 0 {
			break
		}
	}
	return entries, nil
}
