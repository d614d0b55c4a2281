package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"trackrate/internal/models"
	"trackrate/internal/utils"
)

const (
	trendingCacheKey = "tracks:trending"
	trendingTTL      = time.Minute
	TrendingLimit    = 8
)

type TrackService struct {
	db    *gorm.DB
	cache *utils.Cache
}

func NewTrackService(db *gorm.DB, cache *utils.Cache) *TrackService {
	return &TrackService{db: db, cache: cache}
}

// Get loads a single cached track, placeholders included.
func (s *TrackService) Get(ctx context.Context, id string) (*models.Track, error) {
	var track models.Track
	err := s.db.WithContext(ctx).First(&track, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("track")
	}
	if err != nil {
		return nil, fmt.Errorf("loading track: %w", err)
	}
	return &track, nil
}

// Trending returns the most popular cached tracks. Placeholders have no
// popularity and never appear.
func (s *TrackService) Trending(ctx context.Context) ([]models.Track, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(trendingCacheKey).([]models.Track); ok {
			return v, nil
		}
	}

	var tracks []models.Track
	err := s.db.WithContext(ctx).
		Where("popularity IS NOT NULL").
		Order("popularity DESC").
		Order("cached_at DESC").
		Limit(TrendingLimit).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("loading trending tracks: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(trendingCacheKey, tracks, trendingTTL)
	}
	return tracks, nil
}

// SitemapEntry is a reviewed track and when its row last changed.
type SitemapEntry struct {
	TrackID string
	LastMod time.Time
}

// Reviewed lists tracks that have at least one review, most recently changed first.
func (s *TrackService) Reviewed(ctx context.Context, limit int) ([]SitemapEntry, error) {
	var tracks []models.Track
	err := s.db.WithContext(ctx).
		Select("id", "updated_at").
		Where("EXISTS (SELECT 1 FROM reviews WHERE reviews.track_id = tracks.id)").
		Order("updated_at DESC").
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("listing reviewed tracks: %w", err)
	}
	entries := make([]SitemapEntry, len(tracks))
	for i, t := range tracks {
		entries[i] = SitemapEntry{TrackID: t.ID, LastMod: t.UpdatedAt}
	}
	return entries, nil
}
