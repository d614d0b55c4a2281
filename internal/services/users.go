package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"trackrate/internal/models"
)

// Identity is what a sign-in provider tells us about the person signing in.
type Identity struct {
	Provider string // "google" or "spotify"
	Subject  string // provider's stable user id
	Email    string
	// EmailVerified is set only when the provider vouches for Email.
	// Unverified addresses are neither linked nor stored.
	EmailVerified bool
	Name          string
	Image         string
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return &user, nil
}

// SignIn finds the user for id by provider subject, then by verified email,
// creating one if neither matches. A match by email gets the provider linked.
func (s *UserService) SignIn(ctx context.Context, id Identity) (*models.User, error) {
	column, err := providerColumn(id.Provider)
	if err != nil {
		return nil, err
	}
	if id.Subject == "" {
		return nil, invalid("subject", "is required")
	}
	var email string
	if id.EmailVerified {
		email = strings.ToLower(strings.TrimSpace(id.Email))
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(column+" = ?", id.Subject).First(&user).Error
		if err == nil {
			return fillProfile(tx, &user, id)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if email != "" {
			err = tx.Where("email = ?", email).First(&user).Error
			if err == nil {
				if err := tx.Model(&user).Update(column, id.Subject).Error; err != nil {
					return fmt.Errorf("linking %s account: %w", id.Provider, err)
				}
				return fillProfile(tx, &user, id)
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		user = models.User{Name: id.Name, Image: id.Image}
		if email != "" {
			user.Email = &email
		}
		subject := id.Subject
		switch id.Provider {
		case "google":
			user.GoogleID = &subject
		case "spotify":
			user.SpotifyID = &subject
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		log.Info().Str("user_id", user.ID).Str("provider", id.Provider).Msg("user registered")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// fillProfile copies provider name and image onto a user who has none.
func fillProfile(tx *gorm.DB, user *models.User, id Identity) error {
	updates := map[string]any{}
	if user.Name == "" && id.Name != "" {
		updates["name"] = id.Name
	}
	if user.Image == "" && id.Image != "" {
		updates["image"] = id.Image
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(user).Updates(updates).Error
}

func providerColumn(provider string) (string, error) {
	switch provider {
	case "google":
		return "google_id", nil
	case "spotify":
		return "spotify_id", nil
	}
	return "", fmt.Errorf("unknown sign-in provider %q", provider)
}
