package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

func TestCreateProfile_AndDuplicate(t *testing.T) {
	db := newTestDB(t, &domain.Profile{})
	ctx := context.Background()

	p, err := CreateProfile(ctx, db, &domain.Profile{UserID: "9990001111", FullName: "Asha"})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if p.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}
	if _, err := CreateProfile(ctx, db, &domain.Profile{UserID: "9990001111"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestListProfiles_NewestFirst(t *testing.T) {
	db := newTestDB(t, &domain.Profile{})
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"p1", "p2", "p3"} {
		at := base.Add(time.Duration(i) * time.Hour)
		if err := db.Create(&domain.Profile{UserID: id, CreatedAt: at, UpdatedAt: at}).Error; err != nil {
			t.Fatal(err)
		}
	}
	got, err := ListProfiles(context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].UserID != "p3" || got[2].UserID != "p1" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestUpdateProfile_PartialAndNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Profile{})
	ctx := context.Background()
	if _, err := CreateProfile(ctx, db, &domain.Profile{UserID: "u1", FullName: "Old", Email: "old@example.com"}); err != nil {
		t.Fatal(err)
	}

	got, err := UpdateProfile(ctx, db, "u1", map[string]any{"full_name": "New"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.FullName != "New" || got.Email != "old@example.com" {
		t.Fatalf("partial update wrong: %+v", got)
	}

	if _, err := UpdateProfile(ctx, db, "ghost", map[string]any{"full_name": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfilesByIDs_Batch(t *testing.T) {
	db := newTestDB(t, &domain.Profile{})
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		if _, err := CreateProfile(ctx, db, &domain.Profile{UserID: id, FullName: "N" + id}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := ProfilesByIDs(ctx, db, []string{"a", "b", "zzz"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["a"].FullName != "Na" || got["b"].FullName != "Nb" {
		t.Fatalf("unexpected map: %+v", got)
	}

	empty, err := ProfilesByIDs(ctx, db, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty map for no ids, got %v %v", empty, err)
	}
}
