package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RatingMin     = 1
	RatingMax     = 5
	ReviewBodyMax = 800
)

type Review struct {
	ID       string  `gorm:"primaryKey;size:36" json:"id"`
	Rating   int     `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Title    *string `gorm:"size:200" json:"title"`
	Body     string  `gorm:"type:text;not null" json:"body"`
	AuthorID string  `gorm:"size:36;not null;index" json:"authorId"`
	Author   *User   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
	TrackID  string  `gorm:"size:64;not null;index:idx_reviews_track_created,priority:1" json:"trackId"`
	Track    *Track  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"track,omitempty"`
	// Denormalised counters, written only together with their Like/Dislike rows.
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	Dislikes  int       `gorm:"not null;default:0" json:"dislikes"`
	CreatedAt time.Time `gorm:"index:idx_reviews_track_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *Review) OwnerID() string { return r.AuthorID }
