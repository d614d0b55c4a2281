package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trackrate/internal/models"
)

const (
	featuredPool  = 20
	featuredCount = 3
)

// ReviewPage is one page of a track's reviews, newest first.
type ReviewPage struct {
	Items      []models.Review `json:"items"`
	Avg        *float64        `json:"avg"`
	NextCursor *string         `json:"nextCursor"`
}

type CreateReviewInput struct {
	TrackID string  `json:"trackId"`
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Body    *string `json:"body"`
}

type UpdateReviewInput struct {
	Rating Optional[int]    `json:"rating"`
	Title  Optional[string] `json:"title"`
	Body   Optional[string] `json:"body"`
}

type ReviewService struct {
	db      *gorm.DB
	shuffle func(n int, swap func(i, j int))
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db, shuffle: rand.Shuffle}
}

// ListByTrack pages through a track's reviews newest first. avg covers every
// review of the track, not just the page.
func (s *ReviewService) ListByTrack(ctx context.Context, trackID, cursor string, limit int) (*ReviewPage, error) {
	page := &ReviewPage{Items: []models.Review{}}
	if trackID == "" {
		return page, nil
	}
	conn := s.db.WithContext(ctx)

	var exists int64
	if err := conn.Model(&models.Track{}).Where("id = ?", trackID).Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("checking track: %w", err)
	}
	if exists == 0 {
		return nil, notFound("track")
	}

	q := conn.Model(&models.Review{}).Where("track_id = ?", trackID)
	if cursor != "" {
		var anchor models.Review
		err := conn.Select("id", "created_at").Where("id = ? AND track_id = ?", cursor, trackID).First(&anchor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCursor
		}
		if err != nil {
			return nil, fmt.Errorf("resolving cursor: %w", err)
		}
		q = afterCursor(q, anchor.CreatedAt, anchor.ID, true)
	}

	var rows []models.Review
	if err := orderByCursor(q, true).Preload("Author").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	page.Items, page.NextCursor = trimPage(rows, limit, func(r models.Review) string { return r.ID })
	if page.Items == nil {
		page.Items = []models.Review{}
	}

	avg, err := s.averageRating(conn, trackID)
	if err != nil {
		return nil, err
	}
	page.Avg = avg
	return page, nil
}

func (s *ReviewService) averageRating(conn *gorm.DB, trackID string) (*float64, error) {
	var avg sql.NullFloat64
	row := conn.Model(&models.Review{}).Select("AVG(rating)").Where("track_id = ?", trackID).Row()
	if err := row.Scan(&avg); err != nil {
		return nil, fmt.Errorf("averaging ratings: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// Get loads one review with its author and track.
func (s *ReviewService) Get(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Preload("Author").Preload("Track").First(&review, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("review")
	}
	if err != nil {
		return nil, fmt.Errorf("loading review: %w", err)
	}
	return &review, nil
}

// Create stores a review by userID. A track the cache has never seen gets a
// placeholder row, which a later search will overwrite.
func (s *ReviewService) Create(ctx context.Context, userID string, in CreateReviewInput) (*models.Review, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	trackID := strings.TrimSpace(in.TrackID)
	if err := checkField("trackId", trackID, "required,max=64"); err != nil {
		return nil, err
	}
	if in.Rating == nil {
		return nil, invalid("rating", "is required")
	}
	if err := validateRating(*in.Rating); err != nil {
		return nil, err
	}
	body := ""
	if in.Body != nil {
		body = *in.Body
	}
	if err := validateReviewBody(body); err != nil {
		return nil, err
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}

	review := models.Review{
		Rating:   *in.Rating,
		Title:    title,
		Body:     body,
		AuthorID: userID,
		TrackID:  trackID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		placeholder := models.Track{ID: trackID, Name: "Unknown", Artists: models.StringList{}}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&placeholder).Error; err != nil {
			return fmt.Errorf("ensuring track: %w", err)
		}
		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("creating review: %w", err)
		}
		return tx.Preload("Author").First(&review, "id = ?", review.ID).Error
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("review_id", review.ID).Str("track_id", trackID).Str("user_id", userID).Msg("review created")
	return &review, nil
}

// Update applies the fields present in in. Only the author may update.
func (s *ReviewService) Update(ctx context.Context, userID, reviewID string, in UpdateReviewInput) (*models.Review, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOwned(tx, &review, reviewID, userID, "review"); err != nil {
			return err
		}

		updates := map[string]any{}
		if in.Rating.Set {
			if in.Rating.Value == nil {
				return invalid("rating", "is required")
			}
			if err := validateRating(*in.Rating.Value); err != nil {
				return err
			}
			updates["rating"] = *in.Rating.Value
		}
		if in.Title.Set {
			title, err := normalizeTitle(in.Title.Value)
			if err != nil {
				return err
			}
			updates["title"] = title
		}
		if in.Body.Set {
			body := ""
			if in.Body.Value != nil {
				body = *in.Body.Value
			}
			if err := validateReviewBody(body); err != nil {
				return err
			}
			updates["body"] = body
		}

		if len(updates) > 0 {
			if err := tx.Model(&review).Updates(updates).Error; err != nil {
				return fmt.Errorf("updating review: %w", err)
			}
		}
		return tx.Preload("Author").First(&review, "id = ?", reviewID).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes a review together with its comments and reactions.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := loadOwned(tx, &review, reviewID, userID, "review"); err != nil {
			return err
		}
		for _, child := range []any{&models.Like{}, &models.Dislike{}, &models.Comment{}} {
			if err := tx.Where("review_id = ?", reviewID).Delete(child).Error; err != nil {
				return fmt.Errorf("deleting review children: %w", err)
			}
		}
		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("deleting review: %w", err)
		}
		log.Info().Str("review_id", reviewID).Str("user_id", userID).Msg("review deleted")
		return nil
	})
}

// Featured picks up to three of the twenty most recent rated reviews at random.
func (s *ReviewService) Featured(ctx context.Context) ([]models.Review, error) {
	pool := []models.Review{}
	err := s.db.WithContext(ctx).
		Where("rating > 0").
		Preload("Author").
		Preload("Track").
		Order("created_at DESC").
		Limit(featuredPool).
		Find(&pool).Error
	if err != nil {
		return nil, fmt.Errorf("loading featured reviews: %w", err)
	}
	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > featuredCount {
		pool = pool[:featuredCount]
	}
	return pool, nil
}

func normalizeTitle(title *string) (*string, error) {
	if title == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*title)
	if t == "" {
		return nil, nil
	}
	if err := validateTitle(t); err != nil {
		return nil, err
	}
	return &t, nil
}

// loadOwned loads id into dst and checks that userID wrote it.
func loadOwned(tx *gorm.DB, dst interface{ OwnerID() string }, id, userID, entity string) error {
	err := tx.First(dst, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", entity, err)
	}
	if dst.OwnerID() != userID {
		return ErrForbidden
	}
	return nil
}
