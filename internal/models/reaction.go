package models

import (
	"time"
)

// Like and Dislike are existence-only rows keyed by (user, review).
// A pair never holds both; the reaction service checks before inserting.
type Like struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"userId"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ReviewID  string    `gorm:"primaryKey;size:36;index" json:"reviewId"`
	Review    *Review   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type Dislike struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"userId"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ReviewID  string    `gorm:"primaryKey;size:36;index" json:"reviewId"`
	Review    *Review   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
