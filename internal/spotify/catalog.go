// Package spotify adapts the Spotify Web API to the track catalog the search
// service falls back to on a cache miss.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"trackrate/internal/models"
)

// ErrMissingCredentials is returned when the client id or secret is empty.
var ErrMissingCredentials = errors.New("missing Spotify client id or secret")

const requestTimeout = 10 * time.Second

// Config holds the app-level credentials and endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIURL       string // must end in "/"
}

// Catalog searches tracks with an application token from the client-credentials flow.
type Catalog struct {
	api *spotify.Client
}

// NewCatalog builds a catalog client. Tokens are fetched lazily on the first
// search and refreshed by oauth2 when they expire.
func NewCatalog(cfg Config) (*Catalog, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	base := &http.Client{Timeout: requestTimeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := creds.Client(ctx)
	httpClient.Timeout = requestTimeout

	var opts []spotify.ClientOption
	if cfg.APIURL != "" {
		opts = append(opts, spotify.WithBaseURL(cfg.APIURL))
	}
	return &Catalog{api: spotify.New(httpClient, opts...)}, nil
}

// SearchTracks returns up to limit tracks for query.
func (c *Catalog) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching spotify: %w", err)
	}
	if res.Tracks == nil {
		return []models.Track{}, nil
	}
	tracks := make([]models.Track, 0, len(res.Tracks.Tracks))
	for _, ft := range res.Tracks.Tracks {
		tracks = append(tracks, convertTrack(ft))
	}
	return tracks, nil
}

// convertTrack maps a Spotify track onto a cache row. cached_at is left for
// the caller to stamp.
func convertTrack(ft spotify.FullTrack) models.Track {
	artists := make(models.StringList, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}

	t := models.Track{
		ID:      ft.ID.String(),
		Name:    ft.Name,
		Artists: artists,
		Album:   ft.Album.Name,
	}
	if len(ft.Album.Images) > 0 {
		img := ft.Album.Images[0].URL
		t.AlbumImage = &img
	}
	if ft.PreviewURL != "" {
		preview := ft.PreviewURL
		t.PreviewURL = &preview
	}
	popularity := int(ft.Popularity)
	t.Popularity = &popularity
	return t
}
