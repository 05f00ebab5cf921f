package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-match-gateway/internal/domain"
	"github.com/tbourn/go-match-gateway/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// storeShim backs every service repo interface with the real repo package.
type storeShim struct{}

func (storeShim) CreateRequest(ctx context.Context, db *gorm.DB, from, to string) (*domain.MatchRequest, error) {
	return repo.CreateRequest(ctx, db, from, to)
}
func (storeShim) GetRequest(ctx context.Context, db *gorm.DB, id string) (*domain.MatchRequest, error) {
	return repo.GetRequest(ctx, db, id)
}
func (storeShim) ListIncomingRequests(ctx context.Context, db *gorm.DB, userID string) ([]domain.MatchRequest, error) {
	return repo.ListIncomingRequests(ctx, db, userID)
}
func (storeShim) ListOutgoingRequests(ctx context.Context, db *gorm.DB, userID string) ([]domain.MatchRequest, error) {
	return repo.ListOutgoingRequests(ctx, db, userID)
}
func (storeShim) UpdateRequestStatus(ctx context.Context, db *gorm.DB, id string, st domain.RequestStatus) (*domain.MatchRequest, error) {
	return repo.UpdateRequestStatus(ctx, db, id, st)
}
func (storeShim) ResolveMatch(ctx context.Context, db *gorm.DB, a, b string) (*domain.Match, bool, error) {
	return repo.ResolveMatch(ctx, db, a, b)
}
func (storeShim) FindMatchByPair(ctx context.Context, db *gorm.DB, a, b string) (*domain.Match, error) {
	return repo.FindMatchByPair(ctx, db, a, b)
}
func (storeShim) GetMatch(ctx context.Context, db *gorm.DB, id string) (*domain.Match, error) {
	return repo.GetMatch(ctx, db, id)
}
func (storeShim) ListMatchesForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Match, error) {
	return repo.ListMatchesForUser(ctx, db, userID)
}
func (storeShim) ProfilesByIDs(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.Profile, error) {
	return repo.ProfilesByIDs(ctx, db, ids)
}
func (storeShim) LatestMessages(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.Message, error) {
	return repo.LatestMessages(ctx, db, ids)
}
func (storeShim) CreateMessage(ctx context.Context, db *gorm.DB, m *domain.Message) (*domain.Message, error) {
	return repo.CreateMessage(ctx, db, m)
}
func (storeShim) GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	return repo.GetMessage(ctx, db, id)
}
func (storeShim) CountMessages(ctx context.Context, db *gorm.DB, matchID string) (int64, error) {
	return repo.CountMessages(ctx, db, matchID)
}
func (storeShim) ListMessagesPage(ctx context.Context, db *gorm.DB, matchID string, offset, limit int) ([]domain.Message, error) {
	return repo.ListMessagesPage(ctx, db, matchID, offset, limit)
}
func (storeShim) MarkDelivered(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Message, error) {
	return repo.MarkDelivered(ctx, db, ids)
}
func (storeShim) MarkSeen(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Message, error) {
	return repo.MarkSeen(ctx, db, ids)
}
func (storeShim) ListProfiles(ctx context.Context, db *gorm.DB) ([]domain.Profile, error) {
	return repo.ListProfiles(ctx, db)
}
func (storeShim) CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) (*domain.Profile, error) {
	out, err := repo.CreateProfile(ctx, db, p)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrDuplicateProfile
	}
	return out, err
}
func (storeShim) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, fields map[string]any) (*domain.Profile, error) {
	return repo.UpdateProfile(ctx, db, userID, fields)
}

var (
	_ MatchRepo    = storeShim{}
	_ ChatListRepo = storeShim{}
	_ MessageRepo  = storeShim{}
	_ ProfileRepo  = storeShim{}
)

func (storeShim) CreatePublicMessage(ctx context.Context, db *gorm.DB, userPhone, message string) (*domain.PublicMessage, error) {
	return repo.CreatePublicMessage(ctx, db, userPhone, message)
}

func (storeShim) ListPublicMessages(ctx context.Context, db *gorm.DB, limit int) ([]domain.PublicMessage, error) {
	return repo.ListPublicMessages(ctx, db, limit)
}

func (storeShim) CreateSubscription(ctx context.Context, db *gorm.DB, s *domain.Subscription) (*domain.Subscription, error) {
	return repo.CreateSubscription(ctx, db, s)
}
