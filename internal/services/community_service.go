// Package services – PublicChatService and SubscriptionService
//
// The public room is a single append-only feed shared by every user;
// subscriptions record the plan a user activated.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// defaultPublicFeedSize bounds GET /public-chat.
const defaultPublicFeedSize = 500

// PublicChatRepo defines the persistence contract required by PublicChatService.
type PublicChatRepo interface {
	CreatePublicMessage(ctx context.Context, db *gorm.DB, userPhone, message string) (*domain.PublicMessage, error)
	ListPublicMessages(ctx context.Context, db *gorm.DB, limit int) ([]domain.PublicMessage, error)
}

// PublicChatService posts to and reads the public room.
type PublicChatService struct {
	DB   *gorm.DB
	Repo PublicChatRepo

	// FeedSize caps List to the newest posts; <= 0 returns everything.
	FeedSize int
	// MaxBodyRunes caps a stored post; <= 0 disables the cap.
	MaxBodyRunes int
}

// NewPublicChatService constructs a PublicChatService.
func NewPublicChatService(db *gorm.DB, r PublicChatRepo) *PublicChatService {
	return &PublicChatService{DB: db, Repo: r, FeedSize: defaultPublicFeedSize, MaxBodyRunes: 4000}
}

// Send appends message from userPhone. Both are required.
func (s *PublicChatService) Send(ctx context.Context, userPhone, message string) (*domain.PublicMessage, error) {
	userPhone = strings.TrimSpace(userPhone)
	if userPhone == "" || strings.TrimSpace(message) == "" {
		return nil, ErrMissingFields
	}
	if s.MaxBodyRunes > 0 {
		if r := []rune(message); len(r) > s.MaxBodyRunes {
			message = string(r[:s.MaxBodyRunes])
		}
	}
	out, err := s.Repo.CreatePublicMessage(ctx, s.DB, userPhone, message)
	if err != nil {
		return nil, storeErr("create public message", err)
	}
	return out, nil
}

// List returns the room oldest first.
func (s *PublicChatService) List(ctx context.Context) ([]domain.PublicMessage, error) {
	out, err := s.Repo.ListPublicMessages(ctx, s.DB, s.FeedSize)
	if err != nil {
		return nil, storeErr("list public messages", err)
	}
	return out, nil
}

// SubscriptionRepo defines the persistence contract required by SubscriptionService.
type SubscriptionRepo interface {
	CreateSubscription(ctx context.Context, db *gorm.DB, s *domain.Subscription) (*domain.Subscription, error)
}

// SubscribeInput is one plan activation.
type SubscribeInput struct {
	UserPhone    string
	PlanName     string
	Price        *float64
	DurationDays *int
}

// SubscriptionService records plan activations.
type SubscriptionService struct {
	DB   *gorm.DB
	Repo SubscriptionRepo
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(db *gorm.DB, r SubscriptionRepo) *SubscriptionService {
	return &SubscriptionService{DB: db, Repo: r}
}

// Subscribe stores the activation. UserPhone and PlanName are required.
func (s *SubscriptionService) Subscribe(ctx context.Context, in SubscribeInput) (*domain.Subscription, error) {
	sub := &domain.Subscription{
		UserPhone:    strings.TrimSpace(in.UserPhone),
		PlanName:     strings.TrimSpace(in.PlanName),
		Price:        in.Price,
		DurationDays: in.DurationDays,
	}
	if sub.UserPhone == "" || sub.PlanName == "" {
		return nil, ErrMissingFields
	}
	out, err := s.Repo.CreateSubscription(ctx, s.DB, sub)
	if err != nil {
		return nil, storeErr("create subscription", err)
	}
	subscriptionsActivated.Inc()
	return out, nil
}
