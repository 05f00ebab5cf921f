// Package services – MessageService
//
// This file implements MessageService, which owns private messages exchanged
// inside a match: sending, paginated listing, and delivery/seen receipts.
// Receipt updates only ever set flags, and marking a message seen also
// marks it delivered.
//
// Observability: public methods are OpenTelemetry-instrumented with the
// match id and pagination parameters where applicable.
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
	"github.com/tbourn/go-match-gateway/internal/utils"
)

// MessageRepo defines the persistence contract required by MessageService.
type MessageRepo interface {
	GetMatch(ctx context.Context, db *gorm.DB, id string) (*domain.Match, error)
	CreateMessage(ctx context.Context, db *gorm.DB, m *domain.Message) (*domain.Message, error)
	GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error)
	CountMessages(ctx context.Context, db *gorm.DB, matchID string) (int64, error)
	ListMessagesPage(ctx context.Context, db *gorm.DB, matchID string, offset, limit int) ([]domain.Message, error)
	MarkDelivered(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Message, error)
	MarkSeen(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Message, error)
}

// SendMessageInput carries the fields of a new message.
type SendMessageInput struct {
	MatchID    string
	SenderID   string
	ReceiverID string
	Body       string
	Type       string
	ImageURL   *string
	AudioURL   *string
	Duration   *float64
}

// MessageService coordinates message persistence.
type MessageService struct {
	DB   *gorm.DB
	Repo MessageRepo

	// MaxBodyRunes caps the stored body; <= 0 disables the cap.
	MaxBodyRunes int
}

// NewMessageService constructs a MessageService.
func NewMessageService(db *gorm.DB, r MessageRepo) *MessageService {
	return &MessageService{DB: db, Repo: r, MaxBodyRunes: 4000}
}

// Send validates in and stores a new message. The match must exist and the
// sender and receiver must be its two parties.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*domain.Message, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Send", trace.WithAttributes(
		attribute.String("match.id", in.MatchID),
		attribute.String("message.type", in.Type),
	))
	defer span.End()

	in.MatchID = strings.TrimSpace(in.MatchID)
	in.SenderID = strings.TrimSpace(in.SenderID)
	in.ReceiverID = strings.TrimSpace(in.ReceiverID)
	if in.MatchID == "" || in.SenderID == "" || in.ReceiverID == "" {
		return nil, ErrMissingFields
	}
	typ := strings.ToLower(strings.TrimSpace(in.Type))
	if typ == "" {
		typ = domain.MessageText
	}
	switch typ {
	case domain.MessageText, domain.MessageImage, domain.MessageAudio:
	default:
		return nil, ErrInvalidMessageType
	}

	m, err := s.Repo.GetMatch(ctx, s.DB, in.MatchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, storeErr("get match", err)
	}
	if in.SenderID == in.ReceiverID || !m.Involves(in.SenderID) || !m.Involves(in.ReceiverID) {
		return nil, ErrNotParticipant
	}

	body := in.Body
	if s.MaxBodyRunes > 0 {
		if r := []rune(body); len(r) > s.MaxBodyRunes {
			body = string(r[:s.MaxBodyRunes])
		}
	}

	msg, err := s.Repo.CreateMessage(ctx, s.DB, &domain.Message{
		MatchID:    in.MatchID,
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Body:       body,
		Type:       typ,
		ImageURL:   in.ImageURL,
		AudioURL:   in.AudioURL,
		Duration:   in.Duration,
	})
	if err != nil {
		span.RecordError(err)
		return nil, storeErr("create message", err)
	}
	return msg, nil
}

// Get returns a message by id.
func (s *MessageService) Get(ctx context.Context, id string) (*domain.Message, error) {
	m, err := s.Repo.GetMessage(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, storeErr("get message", err)
	}
	return m, nil
}

// ListPage returns messages of a match oldest first, with the total count.
func (s *MessageService) ListPage(ctx context.Context, matchID string, page, pageSize int) ([]domain.Message, int64, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "ListPage", trace.WithAttributes(
		attribute.String("match.id", matchID),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	))
	defer span.End()

	if strings.TrimSpace(matchID) == "" {
		return nil, 0, ErrMissingFields
	}
	pg := utils.Page{Number: page, Size: pageSize}
	if pg.Number < 1 {
		pg.Number = 1
	}
	if pg.Size <= 0 {
		pg.Size = 50
	}

	if _, err := s.Repo.GetMatch(ctx, s.DB, matchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrMatchNotFound
		}
		return nil, 0, storeErr("get match", err)
	}

	total, err := s.Repo.CountMessages(ctx, s.DB, matchID)
	if err != nil {
		return nil, 0, storeErr("count messages", err)
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}
	items, err := s.Repo.ListMessagesPage(ctx, s.DB, matchID, pg.Offset(), pg.Size)
	if err != nil {
		return nil, 0, storeErr("list messages", err)
	}
	return items, total, nil
}

// MarkDelivered flags the given messages as delivered.
func (s *MessageService) MarkDelivered(ctx context.Context, ids []string) ([]domain.Message, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return nil, ErrNoMessageIDs
	}
	out, err := s.Repo.MarkDelivered(ctx, s.DB, ids)
	if err != nil {
		return nil, storeErr("mark delivered", err)
	}
	return out, nil
}

// MarkSeen flags the given messages as seen (and therefore delivered).
func (s *MessageService) MarkSeen(ctx context.Context, ids []string) ([]domain.Message, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return nil, ErrNoMessageIDs
	}
	out, err := s.Repo.MarkSeen(ctx, s.DB, ids)
	if err != nil {
		return nil, storeErr("mark seen", err)
	}
	return out, nil
}

// compactIDs trims ids and drops blanks and duplicates, keeping order.
func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
