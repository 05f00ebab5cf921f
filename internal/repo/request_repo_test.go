package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// newTestDB opens a private in-memory database named after the test and
// migrates the given models.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedRequest(t *testing.T, db *gorm.DB, id, from, to string, at time.Time) {
	t.Helper()
	r := &domain.MatchRequest{ID: id, FromUserID: from, ToUserID: to, Status: domain.StatusPending, CreatedAt: at, UpdatedAt: at}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("seed request %s: %v", id, err)
	}
}

func TestCreateRequest_Error_NoTable(t *testing.T) {
	db := newTestDB(t)
	r, err := CreateRequest(context.Background(), db, "a", "b")
	if err == nil || r != nil {
		t.Fatalf("expected error without table, got r=%v err=%v", r, err)
	}
}

func TestCreateRequest_PendingWithTimestamps(t *testing.T) {
	db := newTestDB(t, &domain.MatchRequest{})
	before := time.Now().UTC().Add(-time.Second)

	r, err := CreateRequest(context.Background(), db, "a", "b")
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if r.ID == "" || r.Status != domain.StatusPending {
		t.Fatalf("unexpected request: %+v", r)
	}
	if r.CreatedAt.Before(before) || !r.CreatedAt.Equal(r.UpdatedAt) {
		t.Fatalf("timestamps not set to now: %+v", r)
	}

	got, err := GetRequest(context.Background(), db, r.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.FromUserID != "a" || got.ToUserID != "b" || got.Status != domain.StatusPending {
		t.Fatalf("readback mismatch: %+v", got)
	}
}

func TestCreateRequest_AllowsDuplicatePendings(t *testing.T) {
	db := newTestDB(t, &domain.MatchRequest{})
	ctx := context.Background()
	if _, err := CreateRequest(ctx, db, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateRequest(ctx, db, "a", "b"); err != nil {
		t.Fatalf("second pending between same pair rejected: %v", err)
	}
	out, err := ListOutgoingRequests(ctx, db, "a")
	if err != nil || len(out) != 2 {
		t.Fatalf("expected 2 outgoing, got %d (err=%v)", len(out), err)
	}
}

func TestGetRequest_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.MatchRequest{})
	_, err := GetRequest(context.Background(), db, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRequests_FilterAndOrder(t *testing.T) {
	db := newTestDB(t, &domain.MatchRequest{})
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	seedRequest(t, db, "r1", "a", "b", base)
	seedRequest(t, db, "r2", "c", "b", base.Add(2*time.Minute))
	seedRequest(t, db, "r3", "b", "a", base.Add(time.Minute))
	seedRequest(t, db, "r4", "d", "e", base.Add(3*time.Minute))

	ctx := context.Background()
	in, err := ListIncomingRequests(ctx, db, "b")
	if err != nil {
		t.Fatalf("incoming: %v", err)
	}
	if len(in) != 2 || in[0].ID != "r2" || in[1].ID != "r1" {
		t.Fatalf("incoming wrong order/filter: %+v", in)
	}

	out, err := ListOutgoingRequests(ctx, db, "b")
	if err != nil {
		t.Fatalf("outgoing: %v", err)
	}
	if len(out) != 1 || out[0].ID != "r3" {
		t.Fatalf("outgoing wrong filter: %+v", out)
	}

	none, err := ListIncomingRequests(ctx, db, "nobody")
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v (err=%v)", none, err)
	}
}

func TestUpdateRequestStatus_SuccessAndNotFound(t *testing.T) {
	db := newTestDB(t, &domain.MatchRequest{})
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedRequest(t, db, "r1", "a", "b", old)

	got, err := UpdateRequestStatus(context.Background(), db, "r1", domain.StatusAccepted)
	if err != nil {
		t.Fatalf("UpdateRequestStatus: %v", err)
	}
	if got.Status != domain.StatusAccepted {
		t.Fatalf("status not updated: %+v", got)
	}
	if !got.UpdatedAt.After(old) {
		t.Fatalf("updated_at not bumped: %v", got.UpdatedAt)
	}

	if _, err := UpdateRequestStatus(context.Background(), db, "nope", domain.StatusRejected); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
