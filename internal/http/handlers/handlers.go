// Package handlers exposes the gateway's REST endpoints. Handlers are
// transport-thin: they bind and validate input, call application services,
// and translate results into the {success, ...} JSON envelopes.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-gateway/internal/ai"
	"github.com/tbourn/go-match-gateway/internal/domain"
	"github.com/tbourn/go-match-gateway/internal/http/middleware"
	"github.com/tbourn/go-match-gateway/internal/services"
)

//
// Service contracts (context-aware)
//

// MatchService covers the request/match lifecycle.
type MatchService interface {
	Send(ctx context.Context, fromUserID, toUserID string) (*domain.MatchRequest, error)
	Get(ctx context.Context, id string) (*domain.MatchRequest, error)
	ListIncoming(ctx context.Context, userID string) ([]domain.MatchRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]domain.MatchRequest, error)
	Respond(ctx context.Context, requestID, action, actingUserID string) (*services.RespondResult, error)
	CheckMatch(ctx context.Context, userA, userB string) (*services.MatchCheck, error)
}

// ChatListService builds the per-user conversation list.
type ChatListService interface {
	List(ctx context.Context, userID string) ([]domain.ChatSummary, error)
}

// MessageService stores and reads private messages and their receipts.
type MessageService interface {
	Send(ctx context.Context, in services.SendMessageInput) (*domain.Message, error)
	Get(ctx context.Context, id string) (*domain.Message, error)
	ListPage(ctx context.Context, matchID string, page, pageSize int) ([]domain.Message, int64, error)
	MarkDelivered(ctx context.Context, ids []string) ([]domain.Message, error)
	MarkSeen(ctx context.Context, ids []string) ([]domain.Message, error)
}

// ProfileService manages profiles and avatar uploads.
type ProfileService interface {
	List(ctx context.Context) ([]domain.Profile, error)
	Create(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	Update(ctx context.Context, userID string, patch services.ProfilePatch) (*domain.Profile, error)
	UploadAvatar(ctx context.Context, up services.AvatarUpload) (*services.AvatarResult, error)
}

// AssistantService answers the AI endpoints.
type AssistantService interface {
	Reply(ctx context.Context, prompt string) (*services.AssistantReply, error)
	AnalyzeImage(ctx context.Context, img ai.Image, prompt string) (*services.AssistantReply, error)
	Transcribe(ctx context.Context, clip ai.Audio) (*services.AssistantReply, error)
}

// PublicChatService posts to and reads the shared public room.
type PublicChatService interface {
	Send(ctx context.Context, userPhone, message string) (*domain.PublicMessage, error)
	List(ctx context.Context) ([]domain.PublicMessage, error)
}

// SubscriptionService records plan activations.
type SubscriptionService interface {
	Subscribe(ctx context.Context, in services.SubscribeInput) (*domain.Subscription, error)
}

// IdempotencyStore remembers which resource a keyed POST produced.
type IdempotencyStore interface {
	// Lookup returns the stored resource id, or found=false.
	Lookup(ctx context.Context, userID, scope, key string, now time.Time) (resourceID string, found bool, err error)
	// Save records resourceID for the key. Duplicates are not an error.
	Save(ctx context.Context, userID, scope, key, resourceID string, status int) error
}

// RequestStats feeds the weak ETags on the request listings.
type RequestStats interface {
	RequestsStats(ctx context.Context, userID string, incoming bool) (count int64, latest *time.Time, err error)
}

// Services bundles the dependencies of Handlers. Idempotency and Stats are
// optional; without them replay and ETags are skipped.
type Services struct {
	Matches     MatchService
	Chats       ChatListService
	Messages    MessageService
	Profiles    ProfileService
	Assistant   AssistantService
	PublicChat  PublicChatService
	Subs        SubscriptionService
	Idempotency IdempotencyStore
	Stats       RequestStats
}

// Handlers groups every HTTP endpoint of the gateway.
type Handlers struct {
	matchSvc  MatchService
	chatSvc   ChatListService
	msgSvc    MessageService
	profSvc   ProfileService
	assistant AssistantService
	publicSvc PublicChatService
	subSvc    SubscriptionService
	idem      IdempotencyStore
	stats     RequestStats
}

// New constructs Handlers bound to s.
func New(s Services) *Handlers {
	return &Handlers{
		matchSvc:  s.Matches,
		chatSvc:   s.Chats,
		msgSvc:    s.Messages,
		profSvc:   s.Profiles,
		assistant: s.Assistant,
		publicSvc: s.PublicChat,
		subSvc:    s.Subs,
		idem:      s.Idempotency,
		stats:     s.Stats,
	}
}

// replayID returns the resource recorded for this request's Idempotency-Key,
// if the validator flagged it as a replay.
func (h *Handlers) replayID(c *gin.Context) (string, bool) {
	if h.idem == nil || !middleware.IsReplay(c) {
		return "", false
	}
	key, ok := middleware.GetIdempotencyKey(c)
	if !ok {
		return "", false
	}
	user, scope := middleware.IdempotencyScope(c)
	id, found, err := h.idem.Lookup(c.Request.Context(), user, scope, key, time.Now().UTC())
	if err != nil || !found {
		return "", false
	}
	return id, true
}

// remember stores resourceID under the request's key. Best effort.
func (h *Handlers) remember(c *gin.Context, resourceID string) {
	if h.idem == nil {
		return
	}
	key, ok := middleware.GetIdempotencyKey(c)
	if !ok {
		return
	}
	user, scope := middleware.IdempotencyScope(c)
	if err := h.idem.Save(c.Request.Context(), user, scope, key, resourceID, http.StatusOK); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency save failed")
	}
}

func markReplayed(c *gin.Context) {
	c.Header(middleware.HeaderIdempotencyReplayed, "true")
}

// failKeyReused rejects a keyed retry whose payload names different parties
// than the stored resource.
func failKeyReused(c *gin.Context) {
	fail(c, http.StatusUnprocessableEntity, ErrCodeKeyReused, "Idempotency-Key already used for a different request")
}

// sameIDs compares stored/requested pairs: sameIDs(stored1, req1, stored2, req2, ...).
func sameIDs(pairs ...string) bool {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] != strings.TrimSpace(pairs[i+1]) {
			return false
		}
	}
	return true
}
