package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"trackrate/internal/db"
	"trackrate/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { db.Close(conn) })
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name}
	if err := conn.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedTrack(t *testing.T, conn *gorm.DB, id, name string, popularity *int, cachedAt time.Time) *models.Track {
	t.Helper()
	tr := &models.Track{ID: id, Name: name, Artists: models.StringList{"Artist " + id}, Album: "Album " + id, Popularity: popularity, CachedAt: cachedAt}
	if err := conn.Create(tr).Error; err != nil {
		t.Fatalf("seed track: %v", err)
	}
	return tr
}

// seedReview inserts a review with an explicit created_at so ordering is deterministic.
func seedReview(t *testing.T, conn *gorm.DB, id, trackID, authorID string, rating int, createdAt time.Time) *models.Review {
	t.Helper()
	r := &models.Review{ID: id, TrackID: trackID, AuthorID: authorID, Rating: rating, Body: "body " + id, CreatedAt: createdAt}
	if err := conn.Create(r).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return r
}

func ptr[T any](v T) *T { return &v }

// fakeCatalog records calls and returns canned tracks.
type fakeCatalog struct {
	mu     sync.Mutex
	calls  int
	tracks []models.Track
	err    error
}

func (f *fakeCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Track, len(f.tracks))
	copy(out, f.tracks)
	return out, nil
}

func (f *fakeCatalog) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
