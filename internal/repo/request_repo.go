// Package repo implements the data persistence layer for domain entities,
// backed by GORM.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run inside a transaction as well as on the root handle. They carry no
// business rules: validation and permission checks belong to the services.
//
// Error semantics:
//   - A missing row is reported as gorm.ErrRecordNotFound (exported here as
//     ErrNotFound).
//   - Any other database error is returned unchanged.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRequest inserts a pending MatchRequest from -> to.
func CreateRequest(ctx context.Context, db *gorm.DB, fromUserID, toUserID string) (*domain.MatchRequest, error) {
	now := time.Now().UTC()
	r := &domain.MatchRequest{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRequest fetches a request by id or returns ErrNotFound.
func GetRequest(ctx context.Context, db *gorm.DB, id string) (*domain.MatchRequest, error) {
	var r domain.MatchRequest
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListIncomingRequests returns requests addressed to userID, newest first.
func ListIncomingRequests(ctx context.Context, db *gorm.DB, userID string) ([]domain.MatchRequest, error) {
	out := []domain.MatchRequest{}
	err := db.WithContext(ctx).
		Where("to_user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}

// ListOutgoingRequests returns requests sent by userID, newest first.
func ListOutgoingRequests(ctx context.Context, db *gorm.DB, userID string) ([]domain.MatchRequest, error) {
	out := []domain.MatchRequest{}
	err := db.WithContext(ctx).
		Where("from_user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}

// UpdateRequestStatus sets the status of a request and bumps updated_at.
// It returns the reloaded row, or ErrNotFound when no row matched.
func UpdateRequestStatus(ctx context.Context, db *gorm.DB, id string, status domain.RequestStatus) (*domain.MatchRequest, error) {
	res := db.WithContext(ctx).
		Model(&domain.MatchRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetRequest(ctx, db, id)
}
