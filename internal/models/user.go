package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null;default:''" json:"name"`
	Email     *string   `gorm:"uniqueIndex" json:"-"` // Spotify accounts may not share an email
	Image     string    `json:"image"`
	GoogleID  *string   `gorm:"uniqueIndex" json:"-"`
	SpotifyID *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
	// No DeletedAt: users are only removed by administrators, outside the app.
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName falls back to the email's local part, then to "User".
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != nil && *u.Email != "" {
		for i, r := range *u.Email {
			if r == '@' {
				return (*u.Email)[:i]
			}
		}
		return *u.Email
	}
	return "User"
}
