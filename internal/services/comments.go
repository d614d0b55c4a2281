package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"trackrate/internal/models"
)

// CommentPage is one page of a review's comments, oldest first.
type CommentPage struct {
	Items      []models.Comment `json:"items"`
	NextCursor *string          `json:"nextCursor"`
}

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

func (s *CommentService) ListByReview(ctx context.Context, reviewID, cursor string, limit int) (*CommentPage, error) {
	conn := s.db.WithContext(ctx)
	if err := reviewExists(conn, reviewID); err != nil {
		return nil, err
	}

	q := conn.Model(&models.Comment{}).Where("review_id = ?", reviewID)
	if cursor != "" {
		var anchor models.Comment
		err := conn.Select("id", "created_at").Where("id = ? AND review_id = ?", cursor, reviewID).First(&anchor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCursor
		}
		if err != nil {
			return nil, fmt.Errorf("resolving cursor: %w", err)
		}
		q = afterCursor(q, anchor.CreatedAt, anchor.ID, false)
	}

	var rows []models.Comment
	if err := orderByCursor(q, false).Preload("Author").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	page := &CommentPage{}
	page.Items, page.NextCursor = trimPage(rows, limit, func(c models.Comment) string { return c.ID })
	if page.Items == nil {
		page.Items = []models.Comment{}
	}
	return page, nil
}

// Create adds a comment to reviewID. body is trimmed before validation.
func (s *CommentService) Create(ctx context.Context, userID, reviewID string, body *string) (*models.Comment, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	text := ""
	if body != nil {
		text = strings.TrimSpace(*body)
	}
	if err := validateCommentBody(text); err != nil {
		return nil, err
	}

	comment := models.Comment{Body: text, AuthorID: userID, ReviewID: reviewID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reviewExists(tx, reviewID); err != nil {
			return err
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("creating comment: %w", err)
		}
		return tx.Preload("Author").First(&comment, "id = ?", comment.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update replaces the body when present. Only the author may update, and only
// through the review the comment belongs to.
func (s *CommentService) Update(ctx context.Context, userID, reviewID, commentID string, body Optional[string]) (*models.Comment, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadComment(tx, &comment, reviewID, commentID, userID); err != nil {
			return err
		}
		if body.Set {
			text := ""
			if body.Value != nil {
				text = strings.TrimSpace(*body.Value)
			}
			if err := validateCommentBody(text); err != nil {
				return err
			}
			if err := tx.Model(&comment).Update("body", text).Error; err != nil {
				return fmt.Errorf("updating comment: %w", err)
			}
		}
		return tx.Preload("Author").First(&comment, "id = ?", commentID).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, reviewID, commentID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := loadComment(tx, &comment, reviewID, commentID, userID); err != nil {
			return err
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return fmt.Errorf("deleting comment: %w", err)
		}
		return nil
	})
}

func loadComment(tx *gorm.DB, dst *models.Comment, reviewID, commentID, userID string) error {
	if err := loadOwned(tx, dst, commentID, userID, "comment"); err != nil {
		return err
	}
	if dst.ReviewID != reviewID {
		return ErrForbidden
	}
	return nil
}

func reviewExists(conn *gorm.DB, reviewID string) error {
	var n int64
	if err := conn.Model(&models.Review{}).Where("id = ?", reviewID).Count(&n).Error; err != nil {
		return fmt.Errorf("checking review: %w", err)
	}
	if n == 0 {
		return notFound("review")
	}
	return nil
}
