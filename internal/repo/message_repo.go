package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// CreateMessage inserts m, assigning an id and timestamps. Receipt flags
// always start false.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.Message) (*domain.Message, error) {
	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.Delivered = false
	m.Seen = false
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := db.WithContext(ctx).Omit("Match").Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetMessage fetches a message by id or returns ErrNotFound.
func GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	var m domain.Message
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// CountMessages returns the number of messages in a match.
func CountMessages(ctx context.Context, db *gorm.DB, matchID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("match_id = ?", matchID).
		Count(&total).Error
	return total, err
}

// ListMessagesPage returns messages of a match oldest first.
func ListMessagesPage(ctx context.Context, db *gorm.DB, matchID string, offset, limit int) ([]domain.Message, error) {
	out := []domain.Message{}
	err := db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at asc").
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// MarkDelivered sets delivered=true on the given messages and returns the
// updated rows. Seen is left untouched.
func MarkDelivered(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Message, error) {
	return setReceipts(ctx, db, ids, map[string]any{"delivered": true})
}

// MarkSeen sets seen=true and delivered=true on the given messages.
func MarkSeen(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Message, error) {
	return setReceipts(ctx, db, ids, map[string]any{"seen": true, "delivered": true})
}

// setReceipts only ever writes true values, so flags cannot move back.
func setReceipts(ctx context.Context, db *gorm.DB, ids []string, set map[string]any) ([]domain.Message, error) {
	out := []domain.Message{}
	if len(ids) == 0 {
		return out, nil
	}
	set["updated_at"] = time.Now().UTC()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Message{}).Where("id IN ?", ids).Updates(set).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Order("created_at asc").Find(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LatestMessages returns the most recent message of each listed match,
// keyed by match id. Matches without messages are absent from the map.
// Ties on created_at are broken by the greater id.
func LatestMessages(ctx context.Context, db *gorm.DB, matchIDs []string) (map[string]domain.Message, error) {
	out := make(map[string]domain.Message, len(matchIDs))
	if len(matchIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := db.WithContext(ctx).Raw(`
		SELECT id FROM (
			SELECT m.id, ROW_NUMBER() OVER (
				PARTITION BY m.match_id ORDER BY m.created_at DESC, m.id DESC
			) AS rn
			FROM messages m
			WHERE m.match_id IN ?
		) ranked
		WHERE rn = 1`, matchIDs).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Message
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.MatchID] = m
	}
	return out, nil
}
