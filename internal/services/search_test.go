package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"trackrate/internal/models"
	"trackrate/internal/utils"
)

func catalogTracks() []models.Track {
	return []models.Track{
		{ID: "sp1", Name: "Harvest Moon", Artists: models.StringList{"Neil Young"}, Album: "Harvest Moon", Popularity: ptr(70)},
		{ID: "sp2", Name: "Heart of Gold", Artists: models.StringList{"Neil Young"}, Album: "Harvest", Popularity: ptr(80)},
	}
}

func TestSearchEmptyQuerySkipsCatalog(t *testing.T) {
	conn := newTestDB(t)
	cat := &fakeCatalog{tracks: catalogTracks()}
	svc := NewSearchService(conn, cat, nil)

	got, err := svc.Search(context.Background(), "   ")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
	if cat.Calls() != 0 {
		t.Errorf("catalog called %d times for empty query", cat.Calls())
	}
}

func TestSearchArtistWithAmpersandServedFromCache(t *testing.T) {
	conn := newTestDB(t)
	cat := &fakeCatalog{tracks: []models.Track{
		{ID: "sg1", Name: "The Boxer", Artists: models.StringList{"Simon & Garfunkel"}, Album: "Bridge over Troubled Water"},
	}}
	svc := NewSearchService(conn, cat, nil)
	ctx := context.Background()

	if _, err := svc.Search(ctx, "simon & garfunkel"); err != nil {
		t.Fatal(err)
	}
	var stored string
	if err := conn.Raw("SELECT artists FROM tracks WHERE id = ?", "sg1").Scan(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored != `["Simon & Garfunkel"]` {
		t.Errorf("artists column = %s", stored)
	}

	got, err := svc.Search(ctx, "Simon & Garfunkel")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Artists[0] != "Simon & Garfunkel" {
		t.Errorf("cached search = %+v", got)
	}
	if cat.Calls() != 1 {
		t.Errorf("catalog called %d times, want 1", cat.Calls())
	}
}

func TestSearchCaseFoldsNonASCII(t *testing.T) {
	conn := newTestDB(t)
	cat := &fakeCatalog{tracks: []models.Track{
		{ID: "el1", Name: "ÉLAN", Artists: models.StringList{"Nightwish"}, Album: "Endless Forms Most Beautiful"},
	}}
	svc := NewSearchService(conn, cat, nil)
	ctx := context.Background()

	if _, err := svc.Search(ctx, "ÉLAN"); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Search(ctx, "élan")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "el1" {
		t.Errorf("lowercase query = %+v", got)
	}
	if cat.Calls() != 1 {
		t.Errorf("catalog called %d times, want 1", cat.Calls())
	}
}

func TestSearchSecondQueryServedFromCache(t *testing.T) {
	conn := newTestDB(t)
	cat := &fakeCatalog{tracks: catalogTracks()}
	svc := NewSearchService(conn, cat, nil)
	ctx := context.Background()

	first, err := svc.Search(ctx, "neil young")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 {
		t.Fatalf("first search returned %d tracks, want 2", len(first))
	}

	second, err := svc.Search(ctx, "Neil Young")
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 2 {
		t.Errorf("cached search returned %d tracks, want 2", len(second))
	}
	if cat.Calls() != 1 {
		t.Errorf("catalog called %d times, want 1", cat.Calls())
	}

	var stored models.Track
	if err := conn.First(&stored, "id = ?", "sp2").Error; err != nil {
		t.Fatal(err)
	}
	if stored.CachedAt.IsZero() || stored.Popularity == nil || *stored.Popularity != 80 {
		t.Errorf("stored track not refreshed: %+v", stored)
	}
}

func TestSearchMatchesAlbumAndName(t *testing.T) {
	conn := newTestDB(t)
	now := time.Now().UTC()
	seedTrack(t, conn, "a", "Blue Monday", ptr(10), now)
	cat := &fakeCatalog{}
	svc := NewSearchService(conn, cat, nil)

	for _, q := range []string{"monday", "ALBUM A", "artist a"} {
		got, err := svc.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("%q: %v", q, err)
		}
		if len(got) != 1 || got[0].ID != "a" {
			t.Errorf("%q: got %+v", q, got)
		}
	}
	if cat.Calls() != 0 {
		t.Errorf("catalog called on cache hit")
	}
}

func TestSearchBypassesStaleRows(t *testing.T) {
	conn := newTestDB(t)
	seedTrack(t, conn, "old", "Old Song", ptr(1), time.Now().UTC().Add(-8*24*time.Hour))
	cat := &fakeCatalog{tracks: []models.Track{{ID: "old", Name: "Old Song", Artists: models.StringList{"X"}}}}
	svc := NewSearchService(conn, cat, nil)

	if _, err := svc.Search(context.Background(), "old song"); err != nil {
		t.Fatal(err)
	}
	if cat.Calls() != 1 {
		t.Fatalf("stale row should force a catalog call, calls = %d", cat.Calls())
	}
	var count int64
	conn.Model(&models.Track{}).Where("id = ?", "old").Count(&count)
	if count != 1 {
		t.Errorf("expected the stale row to be overwritten, not duplicated; count = %d", count)
	}
}

func TestSearchWildcardsAreLiteral(t *testing.T) {
	conn := newTestDB(t)
	seedTrack(t, conn, "a", "Song", ptr(1), time.Now().UTC())
	cat := &fakeCatalog{}
	svc := NewSearchService(conn, cat, nil)

	got, err := svc.Search(context.Background(), "%")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("%% matched %d rows as a wildcard", len(got))
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSearchService(conn, &fakeCatalog{err: errors.New("boom")}, nil)

	_, err := svc.Search(context.Background(), "anything")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestSearchOverwritesPlaceholder(t *testing.T) {
	conn := newTestDB(t)
	conn.Create(&models.Track{ID: "sp1", Name: "Unknown", Artists: models.StringList{}})
	svc := NewSearchService(conn, &fakeCatalog{tracks: catalogTracks()}, nil)

	if _, err := svc.Search(context.Background(), "harvest"); err != nil {
		t.Fatal(err)
	}
	var tr models.Track
	conn.First(&tr, "id = ?", "sp1")
	if tr.Name != "Harvest Moon" || len(tr.Artists) != 1 {
		t.Errorf("placeholder not overwritten: %+v", tr)
	}
}

func TestTrendingOrderAndCacheInvalidation(t *testing.T) {
	conn := newTestDB(t)
	cache, _ := utils.NewCache(16)
	now := time.Now().UTC()
	seedTrack(t, conn, "low", "Low", ptr(10), now)
	seedTrack(t, conn, "high", "High", ptr(90), now)
	conn.Create(&models.Track{ID: "placeholder", Name: "Unknown", Artists: models.StringList{}})

	tracks := NewTrackService(conn, cache)
	got, err := tracks.Trending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "high" || got[1].ID != "low" {
		t.Fatalf("trending = %+v", got)
	}

	search := NewSearchService(conn, &fakeCatalog{tracks: catalogTracks()}, cache)
	if _, err := search.Search(context.Background(), "neil"); err != nil {
		t.Fatal(err)
	}
	got, _ = tracks.Trending(context.Background())
	if len(got) != 4 || got[0].ID != "high" || got[1].ID != "sp2" {
		t.Errorf("trending after refresh = %+v", got)
	}
}
