package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trackrate/internal/metrics"
	"trackrate/internal/models"
	"trackrate/internal/utils"
)

const (
	// CacheMaxAge is how long a refreshed track can answer searches locally.
	CacheMaxAge = 7 * 24 * time.Hour
	SearchLimit = 10
)

// Catalog is the external track source consulted on a cache miss.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
}

// SearchService answers track searches from the local cache, falling back to
// the catalog and writing its results through.
type SearchService struct {
	db      *gorm.DB
	catalog Catalog
	cache   *utils.Cache
	now     func() time.Time
}

// NewSearchService wires a search service. cache may be nil.
func NewSearchService(db *gorm.DB, catalog Catalog, cache *utils.Cache) *SearchService {
	return &SearchService{db: db, catalog: catalog, cache: cache, now: time.Now}
}

// Search returns at most SearchLimit tracks matching query on name, album or
// artist. An empty query yields an empty result without any lookup.
func (s *SearchService) Search(ctx context.Context, query string) ([]models.Track, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []models.Track{}, nil
	}

	cached, err := s.cached(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		metrics.SearchCacheHits.Inc()
		return cached, nil
	}
	metrics.SearchCacheMisses.Inc()

	if s.catalog == nil {
		return nil, fmt.Errorf("%w: no catalog configured", ErrUpstream)
	}
	tracks, err := s.catalog.SearchTracks(ctx, q, SearchLimit)
	if err != nil {
		log.Warn().Err(err).Str("query", q).Msg("catalog search failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(tracks) > SearchLimit {
		tracks = tracks[:SearchLimit]
	}

	if err := s.store(ctx, tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

func (s *SearchService) cached(ctx context.Context, q string) ([]models.Track, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	var tracks []models.Track
	err := s.db.WithContext(ctx).
		Where("cached_at >= ?", s.now().UTC().Add(-CacheMaxAge)).
		Where(`search_text LIKE ? ESCAPE '\'`, pattern).
		Order("cached_at DESC").
		Limit(SearchLimit).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("searching cached tracks: %w", err)
	}
	return tracks, nil
}

// store upserts every catalog result with a fresh cached_at, overwriting any
// placeholder row for the same id.
func (s *SearchService) store(ctx context.Context, tracks []models.Track) error {
	now := s.now().UTC()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range tracks {
		tracks[i].CachedAt = now
		t := tracks[i]
		g.Go(func() error {
			return s.db.WithContext(gctx).Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "artists", "album", "album_image", "preview_url",
					"popularity", "cached_at", "search_text", "updated_at",
				}),
			}).Create(&t).Error
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("caching catalog tracks: %w", err)
	}
	if s.cache != nil && len(tracks) > 0 {
		s.cache.Delete(trendingCacheKey)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
