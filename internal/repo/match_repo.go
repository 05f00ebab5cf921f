package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// FindMatchByPair returns the match covering the unordered pair {a, b}, in
// either stored direction, or ErrNotFound.
func FindMatchByPair(ctx context.Context, db *gorm.DB, a, b string) (*domain.Match, error) {
	low, high := domain.CanonicalPair(a, b)
	var m domain.Match
	err := db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ResolveMatch returns the match for the unordered pair {userA, userB},
// creating it when none exists. The insert uses ON CONFLICT DO NOTHING on
// the canonical pair index, so concurrent callers converge on a single row.
// The boolean reports whether this call created the row.
func ResolveMatch(ctx context.Context, db *gorm.DB, userA, userB string) (*domain.Match, bool, error) {
	low, high := domain.CanonicalPair(userA, userB)
	m := &domain.Match{
		ID:        uuid.NewString(),
		UserA:     userA,
		UserB:     userB,
		PairLow:   low,
		PairHigh:  high,
		CreatedAt: time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_low"}, {Name: "pair_high"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return m, true, nil
	}
	existing, err := FindMatchByPair(ctx, db, userA, userB)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetMatch fetches a match by id or returns ErrNotFound.
func GetMatch(ctx context.Context, db *gorm.DB, id string) (*domain.Match, error) {
	var m domain.Match
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMatchesForUser returns every match where userID is either party,
// newest first with id as the tie-breaker.
func ListMatchesForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Match, error) {
	out := []domain.Match{}
	err := db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}
