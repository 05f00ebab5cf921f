// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (weak ETags) on the request listings.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// RequestDirection selects which side of a request a user is on.
type RequestDirection string

const (
	Incoming RequestDirection = "incoming"
	Outgoing RequestDirection = "outgoing"
)

// column maps a direction to the filtered column.
func (d RequestDirection) column() string {
	if d == Outgoing {
		return "from_user_id"
	}
	return "to_user_id"
}

// RequestsStats returns the number of requests on one side for userID and
// the greatest UpdatedAt among them (nil when there are none). Status
// changes bump updated_at, so the pair changes whenever the listing does.
func RequestsStats(ctx context.Context, db *gorm.DB, userID string, dir RequestDirection) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.MatchRequest{}).Where(dir.column()+" = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
