package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// CreatePublicMessage appends a post to the public room.
func CreatePublicMessage(ctx context.Context, db *gorm.DB, userPhone, message string) (*domain.PublicMessage, error) {
	m := &domain.PublicMessage{
		ID:        uuid.NewString(),
		UserPhone: userPhone,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListPublicMessages returns the public room oldest first. limit <= 0 means
// no limit; otherwise the newest limit posts are returned, still oldest first.
func ListPublicMessages(ctx context.Context, db *gorm.DB, limit int) ([]domain.PublicMessage, error) {
	out := []domain.PublicMessage{}
	if limit <= 0 {
		err := db.WithContext(ctx).Order("created_at asc, id asc").Find(&out).Error
		return out, err
	}
	if err := db.WithContext(ctx).Order("created_at desc, id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// CreateSubscription inserts s with a fresh id and creation time.
func CreateSubscription(ctx context.Context, db *gorm.DB, s *domain.Subscription) (*domain.Subscription, error) {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}
