package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const CommentBodyMax = 500

type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	AuthorID  string    `gorm:"size:36;not null;index" json:"authorId"`
	Author    *User     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
	ReviewID  string    `gorm:"size:36;not null;index:idx_comments_review_created,priority:1" json:"reviewId"`
	Review    *Review   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `gorm:"index:idx_comments_review_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c *Comment) OwnerID() string { return c.AuthorID }
