package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"trackrate/internal/config"
	"trackrate/internal/middleware"
	"trackrate/internal/services"
)

const (
	sessionStateKey = "oauth_state"
	sessionNextKey  = "oauth_next"
)

// SpotifySignIn is the Spotify authorization-code flow.
type SpotifySignIn interface {
	AuthURL(state string) string
	Identity(ctx context.Context, state string, r *http.Request) (services.Identity, error)
}

type AuthHandler struct {
	users             *services.UserService
	google            *oauth2.Config
	googleUserInfoURL string
	spotify           SpotifySignIn
}

// NewAuthHandler wires sign-in. Providers without credentials stay disabled;
// spotify may be nil.
func NewAuthHandler(users *services.UserService, cfg *config.Config, spotify SpotifySignIn) *AuthHandler {
	h := &AuthHandler{users: users, googleUserInfoURL: googleUserInfoURL, spotify: spotify}
	if cfg.GoogleEnabled() {
		h.google = newGoogleConfig(cfg)
	}
	return h
}

// SignInPage handles GET /sign-in
func (h *AuthHandler) SignInPage(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, safeNext(c.Query("next")))
		return
	}
	Render(c, http.StatusOK, "auth/sign-in.html", gin.H{
		"Title":          "Sign in",
		"GoogleEnabled":  h.google != nil,
		"SpotifyEnabled": h.spotify != nil,
		"Next":           safeNext(c.Query("next")),
		"Error":          c.Query("error"),
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}

// SpotifyLogin handles GET /auth/spotify
func (h *AuthHandler) SpotifyLogin(c *gin.Context) {
	if h.spotify == nil {
		RenderError(c, http.StatusNotFound, "Spotify sign-in is not configured")
		return
	}
	state, ok := h.beginOAuth(c)
	if !ok {
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.spotify.AuthURL(state))
}

// SpotifyCallback handles GET /auth/spotify/callback
func (h *AuthHandler) SpotifyCallback(c *gin.Context) {
	if h.spotify == nil {
		RenderError(c, http.StatusNotFound, "Spotify sign-in is not configured")
		return
	}
	state, next, ok := h.checkState(c)
	if !ok {
		return
	}
	id, err := h.spotify.Identity(c.Request.Context(), state, c.Request)
	if err != nil {
		log.Warn().Err(err).Msg("spotify sign-in failed")
		h.signInFailed(c, "spotify")
		return
	}
	h.finishSignIn(c, id, next)
}

// beginOAuth stores a fresh state token and the post-sign-in target.
func (h *AuthHandler) beginOAuth(c *gin.Context) (string, bool) {
	state, err := generateStateToken()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not start sign-in")
		return "", false
	}
	session := sessions.Default(c)
	session.Set(sessionStateKey, state)
	session.Set(sessionNextKey, safeNext(c.Query("next")))
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not start sign-in")
		return "", false
	}
	return state, true
}

// checkState verifies the callback's state against the session and clears it.
func (h *AuthHandler) checkState(c *gin.Context) (state, next string, ok bool) {
	session := sessions.Default(c)
	saved, _ := session.Get(sessionStateKey).(string)
	next, _ = session.Get(sessionNextKey).(string)
	session.Delete(sessionStateKey)
	session.Delete(sessionNextKey)
	_ = session.Save()

	if saved == "" || c.Query("state") != saved {
		Render(c, http.StatusBadRequest, "auth/sign-in.html", gin.H{"Title": "Sign in", "Error": "Invalid sign-in state, please try again."})
		return "", "", false
	}
	if e := c.Query("error"); e != "" {
		h.signInFailed(c, e)
		return "", "", false
	}
	return saved, safeNext(next), true
}

func (h *AuthHandler) finishSignIn(c *gin.Context, id services.Identity, next string) {
	user, err := h.users.SignIn(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("provider", id.Provider).Msg("sign-in user lookup failed")
		h.signInFailed(c, id.Provider)
		return
	}
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not save session")
		return
	}
	log.Info().Str("user_id", user.ID).Str("provider", id.Provider).Msg("signed in")
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) signInFailed(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, "/sign-in?error="+reasonCode(reason))
}

func reasonCode(reason string) string {
	switch reason {
	case "access_denied":
		return "denied"
	case "google", "spotify":
		return reason + "_failed"
	}
	return "failed"
}

// generateStateToken returns a random OAuth state value.
func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// safeNext only allows same-site relative paths as redirect targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
