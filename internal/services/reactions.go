package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"trackrate/internal/metrics"
	"trackrate/internal/models"
)

// Reaction is a like or a dislike.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// ReactionState is a user's current reaction to a review.
type ReactionState string

const (
	StateNone     ReactionState = "none"
	StateLiked    ReactionState = "liked"
	StateDisliked ReactionState = "disliked"
)

// ReactionCounts are a review's counters after a reaction change.
type ReactionCounts struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

func (r Reaction) row(userID, reviewID string) any {
	if r == ReactionLike {
		return &models.Like{UserID: userID, ReviewID: reviewID}
	}
	return &models.Dislike{UserID: userID, ReviewID: reviewID}
}

func (r Reaction) counter() string {
	if r == ReactionLike {
		return "likes"
	}
	return "dislikes"
}

func (r Reaction) opposite() Reaction {
	if r == ReactionLike {
		return ReactionDislike
	}
	return ReactionLike
}

func (r Reaction) model() any {
	if r == ReactionLike {
		return &models.Like{}
	}
	return &models.Dislike{}
}

// ReactionService keeps Like/Dislike rows and the review counters in step.
// Every row change and its counter change commit in one transaction.
type ReactionService struct {
	db *gorm.DB
}

func NewReactionService(db *gorm.DB) *ReactionService {
	return &ReactionService{db: db}
}

// Add records a reaction. It fails with ErrAlreadyReacted if the user already
// holds this reaction or the opposite one.
func (s *ReactionService) Add(ctx context.Context, userID, reviewID string, kind Reaction) (*ReactionCounts, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	var counts ReactionCounts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reviewExists(tx, reviewID); err != nil {
			return err
		}
		for _, k := range []Reaction{kind, kind.opposite()} {
			held, err := holds(tx, k, userID, reviewID)
			if err != nil {
				return err
			}
			if held {
				return fmt.Errorf("%w: review already %sd", ErrAlreadyReacted, k)
			}
		}
		if err := tx.Create(kind.row(userID, reviewID)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: review already %sd", ErrAlreadyReacted, kind)
			}
			return fmt.Errorf("recording %s: %w", kind, err)
		}
		return bumpCounter(tx, reviewID, kind.counter(), 1, &counts)
	})
	if err != nil {
		return nil, err
	}
	metrics.ReactionsTotal.WithLabelValues(string(kind), "add").Inc()
	return &counts, nil
}

// Remove withdraws a reaction. It fails with ErrNotReacted if the user does
// not hold it.
func (s *ReactionService) Remove(ctx context.Context, userID, reviewID string, kind Reaction) (*ReactionCounts, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	var counts ReactionCounts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reviewExists(tx, reviewID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND review_id = ?", userID, reviewID).Delete(kind.model())
		if res.Error != nil {
			return fmt.Errorf("removing %s: %w", kind, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: review not %sd", ErrNotReacted, kind)
		}
		return bumpCounter(tx, reviewID, kind.counter(), -1, &counts)
	})
	if err != nil {
		return nil, err
	}
	metrics.ReactionsTotal.WithLabelValues(string(kind), "remove").Inc()
	return &counts, nil
}

// State reports which reaction, if any, userID holds on reviewID.
func (s *ReactionService) State(ctx context.Context, userID, reviewID string) (ReactionState, error) {
	if userID == "" {
		return StateNone, ErrUnauthorized
	}
	conn := s.db.WithContext(ctx)
	if err := reviewExists(conn, reviewID); err != nil {
		return StateNone, err
	}
	liked, err := holds(conn, ReactionLike, userID, reviewID)
	if err != nil {
		return StateNone, err
	}
	if liked {
		return StateLiked, nil
	}
	disliked, err := holds(conn, ReactionDislike, userID, reviewID)
	if err != nil {
		return StateNone, err
	}
	if disliked {
		return StateDisliked, nil
	}
	return StateNone, nil
}

func holds(conn *gorm.DB, kind Reaction, userID, reviewID string) (bool, error) {
	var n int64
	err := conn.Model(kind.model()).Where("user_id = ? AND review_id = ?", userID, reviewID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", kind, err)
	}
	return n > 0, nil
}

func bumpCounter(tx *gorm.DB, reviewID, column string, delta int, out *ReactionCounts) error {
	err := tx.Model(&models.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("updating %s counter: %w", column, err)
	}
	var review models.Review
	if err := tx.Select("likes", "dislikes").First(&review, "id = ?", reviewID).Error; err != nil {
		return err
	}
	out.Likes, out.Dislikes = review.Likes, review.Dislikes
	return nil
}
