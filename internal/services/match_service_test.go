package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

func newMatchSvc(t *testing.T) (*MatchService, *gorm.DB) {
	t.Helper()
	db := newSvcDB(t)
	return NewMatchService(db, storeShim{}), db
}

// ---------- Send ----------

func TestMatchService_Send_Validation(t *testing.T) {
	s, _ := newMatchSvc(t)
	ctx := context.Background()

	if _, err := s.Send(ctx, " ", "b"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := s.Send(ctx, "a", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := s.Send(ctx, "a", " a "); !errors.Is(err, ErrSelfRequest) {
		t.Fatalf("expected ErrSelfRequest, got %v", err)
	}
}

func TestMatchService_Send_CreatesPending(t *testing.T) {
	s, _ := newMatchSvc(t)
	r, err := s.Send(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if r.ID == "" || r.FromUserID != "a" || r.ToUserID != "b" || r.Status != domain.StatusPending {
		t.Fatalf("unexpected request %+v", r)
	}

	// Duplicate pending requests may coexist.
	r2, err := s.Send(context.Background(), "a", "b")
	if err != nil || r2.ID == r.ID {
		t.Fatalf("second Send: %+v, %v", r2, err)
	}
}

func TestMatchService_Send_StoreError(t *testing.T) {
	s, db := newMatchSvc(t)
	if err := db.Migrator().DropTable(&domain.MatchRequest{}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	_, err := s.Send(context.Background(), "a", "b")
	var se *StoreError
	if !errors.As(err, &se) || se.Op != "create request" {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

// ---------- List ----------

func TestMatchService_ListIncomingOutgoing(t *testing.T) {
	s, _ := newMatchSvc(t)
	ctx := context.Background()

	if _, err := s.ListIncoming(ctx, ""); !errors.Is(err, ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}
	if _, err := s.ListOutgoing(ctx, "  "); !errors.Is(err, ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}

	for _, to := range []string{"b", "c"} {
		if _, err := s.Send(ctx, "a", to); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := s.Send(ctx, "c", "b"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := s.ListOutgoing(ctx, "a")
	if err != nil || len(out) != 2 {
		t.Fatalf("outgoing a: len=%d err=%v", len(out), err)
	}
	in, err := s.ListIncoming(ctx, "b")
	if err != nil || len(in) != 2 {
		t.Fatalf("incoming b: len=%d err=%v", len(in), err)
	}
	for _, r := range in {
		if r.ToUserID != "b" {
			t.Fatalf("incoming list leaked %+v", r)
		}
	}
	none, err := s.ListIncoming(ctx, "zzz")
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil list, got %v, %v", none, err)
	}
}

// ---------- Respond ----------

func TestMatchService_Respond_Validation(t *testing.T) {
	s, _ := newMatchSvc(t)
	ctx := context.Background()
	if _, err := s.Respond(ctx, "", "accept", "b"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := s.Respond(ctx, "r1", " ", "b"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := s.Respond(ctx, "nope", "accept", "b"); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestMatchService_Respond_OnlyRecipient(t *testing.T) {
	s, _ := newMatchSvc(t)
	ctx := context.Background()
	r, _ := s.Send(ctx, "a", "b")

	if _, err := s.Respond(ctx, r.ID, "accept", "a"); !errors.Is(err, ErrNotRecipient) {
		t.Fatalf("expected ErrNotRecipient, got %v", err)
	}
	got, err := s.Get(ctx, r.ID)
	if err != nil || got.Status != domain.StatusPending {
		t.Fatalf("request should stay pending: %+v, %v", got, err)
	}
}

func TestMatchService_Respond_AcceptCreatesMatch(t *testing.T) {
	s, _ := newMatchSvc(t)
	ctx := context.Background()
	r, _ := s.Send(ctx, "a", "b")

	res, err := s.Respond(ctx, r.ID, "  ACCEPT ", "b")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if res.Request.Status != domain.StatusAccepted {
		t.Fatalf("status = %q", res.Request.Status)
	}
	if res.Match == nil || res.Match.UserA != "a" || res.Match.UserB != "b" {
		t.Fatalf("match = %+v", res.Match)
	}

	chk, err := s.CheckMatch(ctx, "b", "a")
	if err != nil || !chk.Matched || chk.Match.ID != res.Match.ID {
		t.Fatalf("CheckMatch = %+v, %v", chk, err)
	}
}

func TestMatchService_Respond_UnknownActionRejects(t *testing.T) {
	s, _ := newMatchSvc(t)
	ctx := context.Background()
	r, _ := s.Send(ctx, "a", "b")

	res, err := s.Respond(ctx, r.ID, "maybe", "b")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if res.Request.Status != domain.StatusRejected || res.Match != nil {
		t.Fatalf("expected rejected without match, got %+v", res)
	}
	chk, _ := s.CheckMatch(ctx, "a", "b")
	if chk.Matched {
		t.Fatalf("reject must not create a match")
	}
}

func TestMatchService_Respond_TerminalGuard(t *testing.T) {
	s, _ := newMatchSvc(t)
	ctx := context.Background()

	acc, _ := s.Send(ctx, "a", "b")
	first, err := s.Respond(ctx, acc.ID, "accept", "b")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	again, err := s.Respond(ctx, acc.ID, "accept", "b")
	if err != nil {
		t.Fatalf("repeat accept should be idempotent: %v", err)
	}
	if again.Match == nil || again.Match.ID != first.Match.ID {
		t.Fatalf("repeat accept should return the same match")
	}
	if again.Request.Status != domain.StatusAccepted || !again.Request.UpdatedAt.After(first.Request.UpdatedAt) {
		t.Fatalf("repeat accept should bump updated_at: %v -> %v", first.Request.UpdatedAt, again.Request.UpdatedAt)
	}
	if _, err := s.Respond(ctx, acc.ID, "reject", "b"); !errors.Is(err, ErrRequestResolved) {
		t.Fatalf("expected ErrRequestResolved, got %v", err)
	}

	rej, _ := s.Send(ctx, "c", "d")
	if _, err := s.Respond(ctx, rej.ID, "reject", "d"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if res, err := s.Respond(ctx, rej.ID, "reject", "d"); err != nil || res.Request.Status != domain.StatusRejected {
		t.Fatalf("repeat reject: %+v, %v", res, err)
	}
	if _, err := s.Respond(ctx, rej.ID, "accept", "d"); !errors.Is(err, ErrRequestResolved) {
		t.Fatalf("expected ErrRequestResolved, got %v", err)
	}
}

func TestMatchService_Respond_OppositeDirectionsShareMatch(t *testing.T) {
	s, _ := newMatchSvc(t)
	ctx := context.Background()

	ab, _ := s.Send(ctx, "a", "b")
	ba, _ := s.Send(ctx, "b", "a")

	r1, err := s.Respond(ctx, ab.ID, "accept", "b")
	if err != nil {
		t.Fatalf("accept a->b: %v", err)
	}
	r2, err := s.Respond(ctx, ba.ID, "accept", "a")
	if err != nil {
		t.Fatalf("accept b->a: %v", err)
	}
	if r1.Match.ID != r2.Match.ID {
		t.Fatalf("expected one match, got %s and %s", r1.Match.ID, r2.Match.ID)
	}
}

func TestMatchService_Respond_ConcurrentAcceptsShareMatch(t *testing.T) {
	s, db := newMatchSvc(t)
	ctx := context.Background()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection: shared-cache SQLite reports table locks instead of
	// waiting, so the two transactions are queued on the pool.
	sqlDB.SetMaxOpenConns(1)

	ab, _ := s.Send(ctx, "a", "b")
	ba, _ := s.Send(ctx, "b", "a")

	type out struct {
		res *RespondResult
		err error
	}
	results := make([]out, 2)
	var wg sync.WaitGroup
	for i, call := range []struct{ id, user string }{{ab.ID, "b"}, {ba.ID, "a"}} {
		wg.Add(1)
		go func(i int, id, user string) {
			defer wg.Done()
			res, err := s.Respond(ctx, id, "accept", user)
			results[i] = out{res, err}
		}(i, call.id, call.user)
	}
	wg.Wait()

	for i, r := range results {
		if r.err != nil {
			t.Fatalf("accept %d: %v", i, r.err)
		}
	}
	var n int64
	if err := db.Model(&domain.Match{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one match row, got %d", n)
	}
	if results[0].res.Match.ID != results[1].res.Match.ID {
		t.Fatalf("accepts returned different matches")
	}
}

// ---------- CheckMatch / Get ----------

func TestMatchService_CheckMatch(t *testing.T) {
	s, _ := newMatchSvc(t)
	ctx := context.Background()
	if _, err := s.CheckMatch(ctx, "a", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	chk, err := s.CheckMatch(ctx, "a", "b")
	if err != nil || chk.Matched || chk.Match != nil {
		t.Fatalf("expected not matched, got %+v, %v", chk, err)
	}
}

func TestMatchService_Get_NotFound(t *testing.T) {
	s, _ := newMatchSvc(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestStatusForAction(t *testing.T) {
	cases := map[string]domain.RequestStatus{
		"accept":   domain.StatusAccepted,
		" Accept ": domain.StatusAccepted,
		"reject":   domain.StatusRejected,
		"accepted": domain.StatusRejected,
		"":         domain.StatusRejected,
	}
	for in, want := range cases {
		if got := statusForAction(in); got != want {
			t.Fatalf("statusForAction(%q) = %q, want %q", in, got, want)
		}
	}
}
