// Package services – MatchService
//
// MatchService owns the request/match lifecycle: it creates pending
// requests, lists them per direction, applies the recipient's response, and
// resolves the symmetric match when a request is accepted.
//
// Match resolution relies on the store's insert-or-fetch over the canonical
// pair key, so accepting A→B and later B→A (or both at once) yields one match.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// MatchRepo defines the persistence contract required by MatchService.
type MatchRepo interface {
	CreateRequest(ctx context.Context, db *gorm.DB, fromUserID, toUserID string) (*domain.MatchRequest, error)
	GetRequest(ctx context.Context, db *gorm.DB, id string) (*domain.MatchRequest, error)
	ListIncomingRequests(ctx context.Context, db *gorm.DB, userID string) ([]domain.MatchRequest, error)
	ListOutgoingRequests(ctx context.Context, db *gorm.DB, userID string) ([]domain.MatchRequest, error)
	UpdateRequestStatus(ctx context.Context, db *gorm.DB, id string, status domain.RequestStatus) (*domain.MatchRequest, error)

	// ResolveMatch returns the match for the unordered pair, creating it if
	// needed; created reports whether a row was inserted.
	ResolveMatch(ctx context.Context, db *gorm.DB, userA, userB string) (m *domain.Match, created bool, err error)
	// FindMatchByPair looks up the match for the unordered pair.
	FindMatchByPair(ctx context.Context, db *gorm.DB, a, b string) (*domain.Match, error)
}

// MatchService implements the request/match lifecycle.
type MatchService struct {
	DB   *gorm.DB
	Repo MatchRepo
}

// NewMatchService constructs a MatchService.
func NewMatchService(db *gorm.DB, r MatchRepo) *MatchService {
	return &MatchService{DB: db, Repo: r}
}

// RespondResult is the outcome of Respond. Match is nil unless the request
// ended up accepted.
type RespondResult struct {
	Request *domain.MatchRequest
	Match   *domain.Match
}

// MatchCheck is the outcome of CheckMatch.
type MatchCheck struct {
	Matched bool
	Match   *domain.Match
}

var matchTracer = otel.Tracer("services/MatchService")

// Send creates a pending request from -> to.
func (s *MatchService) Send(ctx context.Context, fromUserID, toUserID string) (*domain.MatchRequest, error) {
	ctx, span := matchTracer.Start(ctx, "Send", trace.WithAttributes(
		attribute.String("request.from", fromUserID),
		attribute.String("request.to", toUserID),
	))
	defer span.End()

	fromUserID, toUserID = strings.TrimSpace(fromUserID), strings.TrimSpace(toUserID)
	if fromUserID == "" || toUserID == "" {
		return nil, ErrMissingFields
	}
	if fromUserID == toUserID {
		return nil, ErrSelfRequest
	}

	r, err := s.Repo.CreateRequest(ctx, s.DB, fromUserID, toUserID)
	if err != nil {
		span.RecordError(err)
		return nil, storeErr("create request", err)
	}
	requestsSent.Inc()
	return r, nil
}

// Get returns a single request by id.
func (s *MatchService) Get(ctx context.Context, id string) (*domain.MatchRequest, error) {
	r, err := s.Repo.GetRequest(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, storeErr("get request", err)
	}
	return r, nil
}

// ListIncoming returns requests addressed to userID, newest first.
func (s *MatchService) ListIncoming(ctx context.Context, userID string) ([]domain.MatchRequest, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	out, err := s.Repo.ListIncomingRequests(ctx, s.DB, userID)
	if err != nil {
		return nil, storeErr("list incoming requests", err)
	}
	return out, nil
}

// ListOutgoing returns requests sent by userID, newest first.
func (s *MatchService) ListOutgoing(ctx context.Context, userID string) ([]domain.MatchRequest, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	out, err := s.Repo.ListOutgoingRequests(ctx, s.DB, userID)
	if err != nil {
		return nil, storeErr("list outgoing requests", err)
	}
	return out, nil
}

// Respond applies the recipient's decision to a request.
//
// "accept" (case-insensitive) accepts; any other action rejects. Only the
// request's recipient may respond. Repeating the decision rewrites the same
// status and bumps updated_at (for accept, the match is re-resolved, which
// is idempotent); a request holding the other terminal status fails with
// ErrRequestResolved.
func (s *MatchService) Respond(ctx context.Context, requestID, action, actingUserID string) (*RespondResult, error) {
	ctx, span := matchTracer.Start(ctx, "Respond", trace.WithAttributes(
		attribute.String("request.id", requestID),
		attribute.String("request.action", action),
	))
	defer span.End()

	requestID, actingUserID = strings.TrimSpace(requestID), strings.TrimSpace(actingUserID)
	if requestID == "" || strings.TrimSpace(action) == "" || actingUserID == "" {
		return nil, ErrMissingFields
	}
	target := statusForAction(action)

	var res RespondResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.Repo.GetRequest(ctx, tx, requestID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return storeErr("get request", err)
		}
		if req.ToUserID != actingUserID {
			return ErrNotRecipient
		}

		if req.Status.Terminal() && req.Status != target {
			return ErrRequestResolved
		}
		updated, err := s.Repo.UpdateRequestStatus(ctx, tx, requestID, target)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return storeErr("update request", err)
		}
		res.Request = updated

		if target != domain.StatusAccepted {
			return nil
		}
		m, created, err := s.Repo.ResolveMatch(ctx, tx, req.FromUserID, req.ToUserID)
		if err != nil {
			return storeErr("resolve match", err)
		}
		if created {
			matchesResolved.WithLabelValues("created").Inc()
		} else {
			matchesResolved.WithLabelValues("existing").Inc()
		}
		res.Match = m
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	requestsResponded.WithLabelValues(string(res.Request.Status)).Inc()
	return &res, nil
}

// CheckMatch reports whether userA and userB are matched, in either order.
func (s *MatchService) CheckMatch(ctx context.Context, userA, userB string) (*MatchCheck, error) {
	userA, userB = strings.TrimSpace(userA), strings.TrimSpace(userB)
	if userA == "" || userB == "" {
		return nil, ErrMissingFields
	}
	m, err := s.Repo.FindMatchByPair(ctx, s.DB, userA, userB)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &MatchCheck{Matched: false}, nil
	}
	if err != nil {
		return nil, storeErr("find match", err)
	}
	return &MatchCheck{Matched: true, Match: m}, nil
}

// statusForAction maps a response action to the resulting status.
func statusForAction(action string) domain.RequestStatus {
	if strings.EqualFold(strings.TrimSpace(action), "accept") {
		return domain.StatusAccepted
	}
	return domain.StatusRejected
}
