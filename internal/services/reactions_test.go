package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trackrate/internal/models"
)

func setupReaction(t *testing.T) (*ReactionService, *models.User, *models.Review) {
	t.Helper()
	conn := newTestDB(t)
	author := seedUser(t, conn, "author")
	fan := seedUser(t, conn, "fan")
	seedTrack(t, conn, "T", "Song", nil, time.Time{})
	r := seedReview(t, conn, "rev", "T", author.ID, 4, time.Now().UTC())
	return NewReactionService(conn), fan, r
}

func TestLikeThenDislikeConflicts(t *testing.T) {
	svc, fan, r := setupReaction(t)
	ctx := context.Background()

	counts, err := svc.Add(ctx, fan.ID, r.ID, ReactionLike)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Likes != 1 || counts.Dislikes != 0 {
		t.Fatalf("counts = %+v", counts)
	}

	if _, err := svc.Add(ctx, fan.ID, r.ID, ReactionDislike); !errors.Is(err, ErrAlreadyReacted) {
		t.Fatalf("dislike while liked: err = %v, want ErrAlreadyReacted", err)
	}
	if _, err := svc.Add(ctx, fan.ID, r.ID, ReactionLike); !errors.Is(err, ErrAlreadyReacted) {
		t.Fatalf("double like: err = %v, want ErrAlreadyReacted", err)
	}

	state, _ := svc.State(ctx, fan.ID, r.ID)
	if state != StateLiked {
		t.Errorf("state = %s, want liked", state)
	}
}

func TestUnlikeThenDislike(t *testing.T) {
	svc, fan, r := setupReaction(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, fan.ID, r.ID, ReactionLike); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Remove(ctx, fan.ID, r.ID, ReactionLike); err != nil {
		t.Fatal(err)
	}
	counts, err := svc.Add(ctx, fan.ID, r.ID, ReactionDislike)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Likes != 0 || counts.Dislikes != 1 {
		t.Errorf("counts = %+v, want likes 0 dislikes 1", counts)
	}

	state, _ := svc.State(ctx, fan.ID, r.ID)
	if state != StateDisliked {
		t.Errorf("state = %s, want disliked", state)
	}
}

func TestRemoveWithoutReaction(t *testing.T) {
	svc, fan, r := setupReaction(t)
	ctx := context.Background()

	if _, err := svc.Remove(ctx, fan.ID, r.ID, ReactionLike); !errors.Is(err, ErrNotReacted) {
		t.Errorf("unlike: err = %v, want ErrNotReacted", err)
	}
	if _, err := svc.Remove(ctx, fan.ID, r.ID, ReactionDislike); !errors.Is(err, ErrNotReacted) {
		t.Errorf("undislike: err = %v, want ErrNotReacted", err)
	}

	var review models.Review
	svc.db.First(&review, "id = ?", r.ID)
	if review.Likes != 0 || review.Dislikes != 0 {
		t.Errorf("counters moved: %d/%d", review.Likes, review.Dislikes)
	}
}

func TestReactionGuards(t *testing.T) {
	svc, fan, _ := setupReaction(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "", "rev", ReactionLike); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("anonymous: err = %v", err)
	}
	if _, err := svc.Add(ctx, fan.ID, "missing", ReactionLike); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing review: err = %v", err)
	}
}

func TestConcurrentLikesCountOnce(t *testing.T) {
	svc, fan, r := setupReaction(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Add(ctx, fan.ID, r.ID, ReactionLike); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("%d concurrent likes succeeded, want 1", succeeded)
	}
	var review models.Review
	svc.db.First(&review, "id = ?", r.ID)
	var rows int64
	svc.db.Model(&models.Like{}).Where("review_id = ?", r.ID).Count(&rows)
	if int64(review.Likes) != rows || rows != 1 {
		t.Errorf("likes counter %d, like rows %d", review.Likes, rows)
	}
}
