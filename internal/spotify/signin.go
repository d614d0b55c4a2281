package spotify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"trackrate/internal/services"
)

// SignIn runs the authorization-code flow for "Sign in with Spotify".
type SignIn struct {
	auth   *spotifyauth.Authenticator
	apiURL string
}

func NewSignIn(cfg Config, redirectURL string) (*SignIn, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(redirectURL),
		spotifyauth.WithScopes(spotifyauth.ScopeUserReadEmail, spotifyauth.ScopeUserReadPrivate),
	)
	return &SignIn{auth: auth, apiURL: cfg.APIURL}, nil
}

// AuthURL is where the browser is sent to approve the sign-in.
func (s *SignIn) AuthURL(state string) string {
	return s.auth.AuthURL(state)
}

// Identity exchanges the callback code and fetches the signed-in profile.
func (s *SignIn) Identity(ctx context.Context, state string, r *http.Request) (services.Identity, error) {
	tok, err := s.auth.Token(ctx, state, r)
	if err != nil {
		return services.Identity{}, fmt.Errorf("exchanging spotify code: %w", err)
	}

	var opts []spotify.ClientOption
	if s.apiURL != "" {
		opts = append(opts, spotify.WithBaseURL(s.apiURL))
	}
	client := spotify.New(s.auth.Client(ctx, tok), opts...)
	me, err := client.CurrentUser(ctx)
	if err != nil {
		return services.Identity{}, fmt.Errorf("fetching spotify profile: %w", err)
	}

	// Spotify does not guarantee the account email is verified.
	id := services.Identity{
		Provider: "spotify",
		Subject:  me.ID,
		Email:    me.Email,
		Name:     me.DisplayName,
	}
	if len(me.Images) > 0 {
		id.Image = me.Images[0].URL
	}
	return id, nil
}
