// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, and rate limiting.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-gateway/internal/ai"
	"github.com/tbourn/go-match-gateway/internal/config"
	"github.com/tbourn/go-match-gateway/internal/domain"
	"github.com/tbourn/go-match-gateway/internal/http/handlers"
	"github.com/tbourn/go-match-gateway/internal/http/middleware"
	"github.com/tbourn/go-match-gateway/internal/repo"
	"github.com/tbourn/go-match-gateway/internal/services"
	"github.com/tbourn/go-match-gateway/internal/storage"
)

// storeShim adapts the repo free functions to the services' repository
// interfaces. One value satisfies all of them.
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

func (storeShim) LatestMessages(ctx context.Context, db *gorm.DB, matchIDs []string) (map[string]domain.Message, error) {
	return repo.LatestMessages(ctx, db, matchIDs)
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

// CreateProfile maps the repo duplicate sentinel onto the service's.
func (storeShim) CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) (*domain.Profile, error) {
	out, err := repo.CreateProfile(ctx, db, p)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, services.ErrDuplicateProfile
	}
	return out, err
}

func (storeShim) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, fields map[string]any) (*domain.Profile, error) {
	return repo.UpdateProfile(ctx, db, userID, fields)
}

func (storeShim) CreatePublicMessage(ctx context.Context, db *gorm.DB, userPhone, message string) (*domain.PublicMessage, error) {
	return repo.CreatePublicMessage(ctx, db, userPhone, message)
}

func (storeShim) ListPublicMessages(ctx context.Context, db *gorm.DB, limit int) ([]domain.PublicMessage, error) {
	return repo.ListPublicMessages(ctx, db, limit)
}

func (storeShim) CreateSubscription(ctx context.Context, db *gorm.DB, sub *domain.Subscription) (*domain.Subscription, error) {
	return repo.CreateSubscription(ctx, db, sub)
}

// idempotencyStore persists Idempotency-Key records in the idempotency table.
type idempotencyStore struct {
	db  *gorm.DB
	ttl time.Duration
}

func (s idempotencyStore) Lookup(ctx context.Context, userID, scope, key string, now time.Time) (string, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.ResourceID, true, nil
}

// Save ignores duplicates: a concurrent retry already recorded the key.
func (s idempotencyStore) Save(ctx context.Context, userID, scope, key, resourceID string, status int) error {
	_, err := repo.CreateIdempotency(ctx, s.db, userID, scope, key, resourceID, status, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// exists adapts Lookup to the validator middleware.
func (s idempotencyStore) exists(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	_, found, err := s.Lookup(ctx, userID, scope, key, now)
	return found, err
}

// requestStats feeds the request listing ETags.
type requestStats struct{ db *gorm.DB }

func (s requestStats) RequestsStats(ctx context.Context, userID string, incoming bool) (int64, *time.Time, error) {
	dir := repo.Outgoing
	if incoming {
		dir = repo.Incoming
	}
	return repo.RequestsStats(ctx, s.db, userID, dir)
}

// Externals carries the optional outside collaborators. Nil fields disable
// the matching feature (mock AI replies, 503 on avatar upload).
type Externals struct {
	Text    ai.TextGenerator
	Vision  ai.ImageAnalyzer
	Speech  ai.SpeechTranscriber
	Objects storage.ObjectStore
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID and Identity: correlation id and caller id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Metrics
//  6. Gzip
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS and Security headers
//
// Body caps are applied per route group: JSON routes get MaxBodyBytes and
// multipart routes MaxUploadBytes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, ext Externals, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID(), middleware.Identity())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	idem := idempotencyStore{db: db, ttl: cfg.IdempotencyTTL}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.exists))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	useCORS(r, cfg.CORS.AllowedOrigins)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Backend running"})
	})
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(buildServices(db, ext, cfg, idem))

	api := groupWithPrefix(r, cfg.APIBasePath)

	js := api.Group("", limitBody(cfg.MaxBodyBytes))
	{
		// Requests and matches
		js.POST("/send-request", h.SendRequest)
		js.GET("/requests/incoming", h.IncomingRequests)
		js.GET("/requests/outgoing", h.OutgoingRequests)
		js.POST("/requests/respond", h.RespondRequest)
		js.GET("/check-match", h.CheckMatch)
		js.GET("/chat-list", h.ChatList)

		// Messages
		js.POST("/send-message", h.SendMessage)
		js.GET("/messages/:match_id", h.ListMessages)
		js.POST("/message-delivered", h.MessageDelivered)
		js.POST("/message-seen", h.MessageSeen)

		// Profiles
		js.GET("/profiles", h.ListProfiles)
		js.POST("/profiles", h.CreateProfile)
		js.POST("/update-profile", h.UpdateProfile)

		// Public room and plans
		js.POST("/public-chat/send", h.SendPublicMessage)
		js.GET("/public-chat", h.ListPublicMessages)
		js.POST("/subscribe", h.Subscribe)

		// Assistant
		js.POST("/ai-chat", h.AIChat)
	}

	up := api.Group("", limitBody(cfg.MaxUploadBytes))
	{
		up.POST("/upload-avatar", h.UploadAvatar)
		up.POST("/ai-image", h.AIImage)
		up.POST("/ai-speech-to-text", h.AISpeechToText)
	}
}

// buildServices assembles the service layer over db and the externals.
func buildServices(db *gorm.DB, ext Externals, cfg config.Config, idem idempotencyStore) handlers.Services {
	shim := storeShim{}

	// Assign providers one by one so a nil pointer never becomes a non-nil
	// interface value.
	assistant := services.NewAssistantService(nil, nil, nil)
	if ext.Text != nil {
		assistant.Text = ext.Text
	}
	if ext.Vision != nil {
		assistant.Vision = ext.Vision
	}
	if ext.Speech != nil {
		assistant.Speech = ext.Speech
	}
	if cfg.AI.Timeout > 0 {
		assistant.Timeout = cfg.AI.Timeout
	}

	return handlers.Services{
		Matches:     services.NewMatchService(db, shim),
		Chats:       services.NewChatListService(db, shim, cfg.ChatLocale),
		Messages:    services.NewMessageService(db, shim),
		Profiles:    services.NewProfileService(db, shim, ext.Objects),
		Assistant:   assistant,
		PublicChat:  services.NewPublicChatService(db, shim),
		Subs:        services.NewSubscriptionService(db, shim),
		Idempotency: idem,
		Stats:       requestStats{db: db},
	}
}

// useCORS installs gin-contrib/cors. With no allowlist every origin is
// allowed without credentials.
func useCORS(r *gin.Engine, origins []string) {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			middleware.HeaderUserID, middleware.HeaderIdempotencyKey, "If-None-Match",
		},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		// Set ACAO even without an Origin header so plain clients see it too.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		base.AllowAllOrigins = true
		r.Use(cors.New(base))
		return
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	base.AllowOrigins = origins
	r.Use(cors.New(base))
}

// limitBody caps the request body at maxBytes using http.MaxBytesReader.
// Reads past the cap fail; handlers turn that into 400 or 413.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
