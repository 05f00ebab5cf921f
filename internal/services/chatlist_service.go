// Package services – ChatListService
//
// ChatListService assembles one ChatSummary per match of a user: the
// partner's profile and the match's latest message. Nothing is cached; each
// call reads the current rows. Profile and latest-message lookups are
// batched across all matches instead of issued once per match, and the
// output keeps the order in which the matches were listed.
package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// ChatListRepo defines the read contract required by ChatListService.
type ChatListRepo interface {
	ListMatchesForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Match, error)
	ProfilesByIDs(ctx context.Context, db *gorm.DB, userIDs []string) (map[string]domain.Profile, error)
	LatestMessages(ctx context.Context, db *gorm.DB, matchIDs []string) (map[string]domain.Message, error)
}

// ChatListService builds chat summaries.
type ChatListService struct {
	DB     *gorm.DB
	Repo   ChatListRepo
	Labels PreviewLabels
}

// NewChatListService constructs a ChatListService whose placeholders follow
// locale (see LabelsFor).
func NewChatListService(db *gorm.DB, r ChatListRepo, locale string) *ChatListService {
	return &ChatListService{DB: db, Repo: r, Labels: LabelsFor(locale)}
}

// List returns the chat summaries of userID in match order.
func (s *ChatListService) List(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	tr := otel.Tracer("services/ChatListService")
	ctx, span := tr.Start(ctx, "List", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUser
	}

	matches, err := s.Repo.ListMatchesForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, storeErr("list matches", err)
	}
	span.SetAttributes(attribute.Int("matches", len(matches)))
	if len(matches) == 0 {
		return []domain.ChatSummary{}, nil
	}

	partners := make([]string, 0, len(matches))
	matchIDs := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
		p := m.Partner(userID)
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			partners = append(partners, p)
		}
	}

	profiles, err := s.Repo.ProfilesByIDs(ctx, s.DB, partners)
	if err != nil {
		return nil, storeErr("load profiles", err)
	}
	latest, err := s.Repo.LatestMessages(ctx, s.DB, matchIDs)
	if err != nil {
		return nil, storeErr("load latest messages", err)
	}

	out := make([]domain.ChatSummary, 0, len(matches))
	for _, m := range matches {
		partner := m.Partner(userID)
		sum := domain.ChatSummary{
			MatchID:  m.ID,
			UserID:   partner,
			UserName: partner,
		}
		if p, ok := profiles[partner]; ok {
			if name := strings.TrimSpace(p.FullName); name != "" {
				sum.UserName = name
			}
			if avatar := strings.TrimSpace(p.AvatarURL); avatar != "" {
				sum.UserAvatar = &avatar
			}
		}
		var last *domain.Message
		if msg, ok := latest[m.ID]; ok {
			last = &msg
		}
		sum.LastMessage, sum.LastMessageType, sum.LastMessageTime = s.Labels.Preview(last)
		out = append(out, sum)
	}
	return out, nil
}
