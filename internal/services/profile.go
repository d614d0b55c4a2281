package services

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"trackrate/internal/models"
)

const (
	profileRecent    = 50
	profileFavorites = 12
)

// Profile summarises a user's reviewing history.
type Profile struct {
	User      *models.User    `json:"user"`
	Total     int64           `json:"total"`
	Avg       float64         `json:"avg"`
	Reviews   []models.Review `json:"reviews"`
	Favorites []models.Review `json:"favorites"`
}

type ProfileService struct {
	db    *gorm.DB
	users *UserService
}

func NewProfileService(db *gorm.DB, users *UserService) *ProfileService {
	return &ProfileService{db: db, users: users}
}

// Load builds the profile of userID: totals, the 50 latest reviews and up to
// 12 five-star favourites, each with its track.
func (s *ProfileService) Load(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: user, Reviews: []models.Review{}, Favorites: []models.Review{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var stats struct {
			Total int64
			Avg   sql.NullFloat64
		}
		err := s.db.WithContext(gctx).Model(&models.Review{}).
			Select("COUNT(*) AS total, AVG(rating) AS avg").
			Where("author_id = ?", userID).
			Scan(&stats).Error
		if err != nil {
			return fmt.Errorf("profile stats: %w", err)
		}
		p.Total = stats.Total
		if stats.Avg.Valid {
			p.Avg = stats.Avg.Float64
		}
		return nil
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("author_id = ?", userID).
			Preload("Track").
			Order("created_at DESC").
			Limit(profileRecent).
			Find(&p.Reviews).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("author_id = ? AND rating = ?", userID, models.RatingMax).
			Preload("Track").
			Order("created_at DESC").
			Limit(profileFavorites).
			Find(&p.Favorites).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}
