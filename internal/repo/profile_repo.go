package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// ErrDuplicate indicates that a unique constraint rejected the insert.
var ErrDuplicate = errors.New("duplicate")

// ListProfiles returns all profiles, newest first.
func ListProfiles(ctx context.Context, db *gorm.DB) ([]domain.Profile, error) {
	out := []domain.Profile{}
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// CreateProfile inserts p. A clash on user_id is reported as ErrDuplicate.
func CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) (*domain.Profile, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// UpdateProfile applies the non-nil columns in fields to the profile of
// userID and returns the reloaded row, or ErrNotFound.
func UpdateProfile(ctx context.Context, db *gorm.DB, userID string, fields map[string]any) (*domain.Profile, error) {
	set := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		set[k] = v
	}
	set["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("user_id = ?", userID).
		Updates(set)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var p domain.Profile
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfilesByIDs returns the profiles of the given users keyed by user id.
// Unknown ids are simply absent from the map.
func ProfilesByIDs(ctx context.Context, db *gorm.DB, userIDs []string) (map[string]domain.Profile, error) {
	out := make(map[string]domain.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []domain.Profile
	if err := db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.UserID] = p
	}
	return out, nil
}

// isDuplicate recognizes unique violations. glebarez/sqlite often returns
// plain-text errors instead of gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
