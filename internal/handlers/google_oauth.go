package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"trackrate/internal/config"
	"trackrate/internal/services"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func newGoogleConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.SiteURL + "/auth/google/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleUserInfo is the userinfo endpoint response.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleLogin handles GET /auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		RenderError(c, http.StatusNotFound, "Google sign-in is not configured")
		return
	}
	state, ok := h.beginOAuth(c)
	if !ok {
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

// GoogleCallback handles GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		RenderError(c, http.StatusNotFound, "Google sign-in is not configured")
		return
	}
	_, next, ok := h.checkState(c)
	if !ok {
		return
	}
	code := c.Query("code")
	if code == "" {
		h.signInFailed(c, "google")
		return
	}

	ctx := c.Request.Context()
	token, err := h.google.Exchange(ctx, code)
	if err != nil {
		log.Warn().Err(err).Msg("google token exchange failed")
		h.signInFailed(c, "google")
		return
	}
	info, err := h.googleUserInfo(ctx, token)
	if err != nil {
		log.Warn().Err(err).Msg("google userinfo failed")
		h.signInFailed(c, "google")
		return
	}

	id := services.Identity{
		Provider:      "google",
		Subject:       info.ID,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		Name:          info.Name,
		Image:         info.Picture,
	}
	h.finishSignIn(c, id, next)
}

func (h *AuthHandler) googleUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	resp, err := h.google.Client(ctx, token).Get(h.googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}
