package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"golang.org/x/crypto/hkdf"

	"trackrate/internal/config"
)

const sessionMaxAge = 30 * 24 * 3600

// sessionKeys derives the cookie signing key and the AES-256 encryption key
// from the one configured secret.
func sessionKeys(secret string) (hashKey, blockKey []byte, err error) {
	if secret == "" {
		return nil, nil, fmt.Errorf("session secret is empty")
	}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("trackrate session cookie"))
	hashKey = make([]byte, 64)
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, nil, fmt.Errorf("deriving session hash key: %w", err)
	}
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, nil, fmt.Errorf("deriving session block key: %w", err)
	}
	return hashKey, blockKey, nil
}

// newSessionStore builds the signed and encrypted cookie store.
func newSessionStore(cfg *config.Config) (cookie.Store, error) {
	hashKey, blockKey, err := sessionKeys(cfg.SessionSecret)
	if err != nil {
		return nil, err
	}
	store := cookie.NewStore(hashKey, blockKey)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.SiteURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
