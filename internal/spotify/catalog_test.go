package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zmb3/spotify/v2"

	"trackrate/internal/models"
)

const searchBody = `{
  "tracks": {
    "href": "", "limit": 10, "offset": 0, "total": 1,
    "items": [{
      "id": "4uLU6hMCjMI75M1A2tKUQC",
      "name": "Never Gonna Give You Up",
      "popularity": 77,
      "preview_url": "https://p.scdn.co/mp3-preview/abc",
      "artists": [{"id": "a1", "name": "Rick Astley"}],
      "album": {"id": "al1", "name": "Whenever You Need Somebody", "images": [{"url": "https://i.scdn.co/image/big", "height": 640, "width": 640}]}
    }]
  }
}`

func fakeSpotify(t *testing.T, searchStatus int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var searches atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"app-token","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		searches.Add(1)
		if r.Header.Get("Authorization") != "Bearer app-token" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("type") != "track" || r.URL.Query().Get("limit") != "10" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if searchStatus != http.StatusOK {
			w.WriteHeader(searchStatus)
			fmt.Fprint(w, `{"error":{"status":500,"message":"boom"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, searchBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &searches
}

func newTestCatalog(t *testing.T, srv *httptest.Server) *Catalog {
	t.Helper()
	c, err := NewCatalog(Config{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/token",
		APIURL:       srv.URL + "/v1/",
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCatalogSearchTracks(t *testing.T) {
	srv, searches := fakeSpotify(t, http.StatusOK)
	c := newTestCatalog(t, srv)

	tracks, err := c.SearchTracks(context.Background(), "rick", 10)
	if err != nil {
		t.Fatalf("SearchTracks failed: %v", err)
	}
	if searches.Load() != 1 {
		t.Errorf("search endpoint hit %d times", searches.Load())
	}
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks", len(tracks))
	}
	got := tracks[0]
	if got.ID != "4uLU6hMCjMI75M1A2tKUQC" || got.Name != "Never Gonna Give You Up" || got.Album != "Whenever You Need Somebody" {
		t.Errorf("track = %+v", got)
	}
	if len(got.Artists) != 1 || got.Artists[0] != "Rick Astley" {
		t.Errorf("artists = %v", got.Artists)
	}
	if got.AlbumImage == nil || *got.AlbumImage != "https://i.scdn.co/image/big" {
		t.Errorf("album image = %v", got.AlbumImage)
	}
	if got.Popularity == nil || *got.Popularity != 77 {
		t.Errorf("popularity = %v", got.Popularity)
	}
}

func TestCatalogSearchUpstreamError(t *testing.T) {
	srv, _ := fakeSpotify(t, http.StatusInternalServerError)
	c := newTestCatalog(t, srv)

	if _, err := c.SearchTracks(context.Background(), "rick", 10); err == nil {
		t.Fatal("expected error from failing upstream")
	}
}

func TestCatalogTokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusUnauthorized)
	}))
	defer srv.Close()
	c := newTestCatalog(t, srv)

	if _, err := c.SearchTracks(context.Background(), "rick", 10); err == nil {
		t.Fatal("expected error when token endpoint rejects credentials")
	}
}

func TestNewCatalogRequiresCredentials(t *testing.T) {
	if _, err := NewCatalog(Config{ClientID: "id"}); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestConvertTrackWithoutImagesOrPreview(t *testing.T) {
	ft := spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			ID:      "t1",
			Name:    "Quiet",
			Artists: []spotify.SimpleArtist{{Name: "A"}, {Name: "B"}},
		},
		Album: spotify.SimpleAlbum{Name: "LP"},
	}
	got := convertTrack(ft)
	if got.AlbumImage != nil || got.PreviewURL != nil {
		t.Errorf("expected nil image and preview, got %+v", got)
	}
	if len(got.Artists) != 2 || got.Artists[1] != "B" {
		t.Errorf("artists = %v", got.Artists)
	}
	if !got.CachedAt.IsZero() {
		t.Error("convertTrack must not stamp cached_at")
	}
}

type flakySearcher struct {
	calls atomic.Int32
}

func (f *flakySearcher) SearchTracks(ctx context.Context, q string, limit int) ([]models.Track, error) {
	f.calls.Add(1)
	return nil, errors.New("upstream down")
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	inner := &flakySearcher{}
	b := NewBreakerCatalog(inner, BreakerSettings{MinRequests: 3, FailureRatio: 0.5, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		if _, err := b.SearchTracks(context.Background(), "q", 10); err == nil {
			t.Fatal("expected failure")
		}
	}
	if b.State() != "open" {
		t.Fatalf("state = %s, want open", b.State())
	}

	_, err := b.SearchTracks(context.Background(), "q", 10)
	if err == nil {
		t.Fatal("expected open-circuit error")
	}
	if inner.calls.Load() != 3 {
		t.Errorf("inner called %d times, want 3 (open circuit should short-circuit)", inner.calls.Load())
	}
}
