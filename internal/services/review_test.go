package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cinedex/apiserver/internal/testutil"
	"github.com/cinedex/apiserver/types"
)

func newReviewFixture(t *testing.T) (*ReviewService, *testutil.Publisher, types.User, types.User) {
	t.Helper()
	users := testutil.NewUserRepo()
	alice, _ := users.Create(context.Background(), types.User{Username: "alice123", DisplayName: "Alice Alice"})
	bob, _ := users.Create(context.Background(), types.User{Username: "bobby123", DisplayName: "Bobby Bob"})
	events := &testutil.Publisher{}
	return NewReviewService(testutil.NewReviewRepo(users, time.Time{}), users, events), events, alice, bob
}

func review(userID int, content string) types.Review {
	return types.Review{
		UserID:      userID,
		MediaType:   types.MediaTypeMovie,
		MediaID:     "27205",
		MediaTitle:  "Inception",
		MediaPoster: "/p.jpg",
		Content:     content,
	}
}

func TestCreateReview(t *testing.T) {
	svc, events, alice, _ := newReviewFixture(t)

	created, err := svc.Create(context.Background(), review(alice.ID, "Great"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.User.ID != alice.ID || created.User.Name != "Alice Alice" {
		t.Errorf("author = %+v", created.User)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt not assigned")
	}
	if len(events.Events()) != 1 || events.Events()[0].Type != types.ActivityReviewCreated {
		t.Errorf("events = %+v", events.Events())
	}

	bad := review(alice.ID, "x")
	bad.MediaType = "book"
	if _, err := svc.Create(context.Background(), bad); !errors.Is(err, ErrInvalidMediaType) {
		t.Errorf("Create(book) = %v, want ErrInvalidMediaType", err)
	}
	if _, err := svc.Create(context.Background(), review(999, "ghost")); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Create(unknown author) = %v, want ErrUserNotFound", err)
	}
}

func TestRemoveReviewOnlyByAuthor(t *testing.T) {
	ctx := context.Background()
	svc, _, alice, bob := newReviewFixture(t)

	created, err := svc.Create(ctx, review(alice.ID, "Great"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Remove(ctx, created.ID, bob.ID); !errors.Is(err, ErrReviewForbidden) {
		t.Fatalf("Remove by non-author = %v, want ErrReviewForbidden", err)
	}
	if err := svc.Remove(ctx, 999, bob.ID); !errors.Is(err, ErrReviewForbidden) {
		t.Fatalf("Remove missing = %v, want ErrReviewForbidden", err)
	}
	if err := svc.Remove(ctx, created.ID, alice.ID); err != nil {
		t.Fatalf("Remove by author: %v", err)
	}
	list, _ := svc.ListByUser(ctx, alice.ID)
	if len(list) != 0 {
		t.Errorf("reviews after remove = %d, want 0", len(list))
	}
}

func TestListByMediaNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, alice, bob := newReviewFixture(t)

	for _, r := range []types.Review{review(alice.ID, "first"), review(bob.ID, "second")} {
		if _, err := svc.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := svc.ListByMedia(ctx, types.MediaTypeMovie, "27205")
	if err != nil {
		t.Fatalf("ListByMedia: %v", err)
	}
	if len(list) != 2 || list[0].Content != "second" || list[0].User.Name != "Bobby Bob" {
		t.Errorf("ListByMedia = %+v", list)
	}

	none, _ := svc.ListByMedia(ctx, types.MediaTypeTV, "27205")
	if len(none) != 0 {
		t.Errorf("ListByMedia(tv) = %d reviews, want 0", len(none))
	}
}
