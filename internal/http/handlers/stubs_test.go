package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-gateway/internal/ai"
	"github.com/tbourn/go-match-gateway/internal/domain"
	"github.com/tbourn/go-match-gateway/internal/http/middleware"
	"github.com/tbourn/go-match-gateway/internal/services"
)

// ---------- stub services ----------

type stubMatchSvc struct {
	SendFn         func(ctx context.Context, from, to string) (*domain.MatchRequest, error)
	GetFn          func(ctx context.Context, id string) (*domain.MatchRequest, error)
	ListIncomingFn func(ctx context.Context, userID string) ([]domain.MatchRequest, error)
	ListOutgoingFn func(ctx context.Context, userID string) ([]domain.MatchRequest, error)
	RespondFn      func(ctx context.Context, requestID, action, actingUserID string) (*services.RespondResult, error)
	CheckMatchFn   func(ctx context.Context, a, b string) (*services.MatchCheck, error)
}

func (s *stubMatchSvc) Send(ctx context.Context, from, to string) (*domain.MatchRequest, error) {
	return s.SendFn(ctx, from, to)
}
func (s *stubMatchSvc) Get(ctx context.Context, id string) (*domain.MatchRequest, error) {
	return s.GetFn(ctx, id)
}
func (s *stubMatchSvc) ListIncoming(ctx context.Context, userID string) ([]domain.MatchRequest, error) {
	return s.ListIncomingFn(ctx, userID)
}
func (s *stubMatchSvc) ListOutgoing(ctx context.Context, userID string) ([]domain.MatchRequest, error) {
	return s.ListOutgoingFn(ctx, userID)
}
func (s *stubMatchSvc) Respond(ctx context.Context, requestID, action, actingUserID string) (*services.RespondResult, error) {
	return s.RespondFn(ctx, requestID, action, actingUserID)
}
func (s *stubMatchSvc) CheckMatch(ctx context.Context, a, b string) (*services.MatchCheck, error) {
	return s.CheckMatchFn(ctx, a, b)
}

type stubChatSvc struct {
	ListFn func(ctx context.Context, userID string) ([]domain.ChatSummary, error)
}

func (s *stubChatSvc) List(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	return s.ListFn(ctx, userID)
}

type stubMsgSvc struct {
	SendFn          func(ctx context.Context, in services.SendMessageInput) (*domain.Message, error)
	GetFn           func(ctx context.Context, id string) (*domain.Message, error)
	ListPageFn      func(ctx context.Context, matchID string, page, pageSize int) ([]domain.Message, int64, error)
	MarkDeliveredFn func(ctx context.Context, ids []string) ([]domain.Message, error)
	MarkSeenFn      func(ctx context.Context, ids []string) ([]domain.Message, error)
}

func (s *stubMsgSvc) Send(ctx context.Context, in services.SendMessageInput) (*domain.Message, error) {
	return s.SendFn(ctx, in)
}
func (s *stubMsgSvc) Get(ctx context.Context, id string) (*domain.Message, error) {
	return s.GetFn(ctx, id)
}
func (s *stubMsgSvc) ListPage(ctx context.Context, matchID string, page, pageSize int) ([]domain.Message, int64, error) {
	return s.ListPageFn(ctx, matchID, page, pageSize)
}
func (s *stubMsgSvc) MarkDelivered(ctx context.Context, ids []string) ([]domain.Message, error) {
	return s.MarkDeliveredFn(ctx, ids)
}
func (s *stubMsgSvc) MarkSeen(ctx context.Context, ids []string) ([]domain.Message, error) {
	return s.MarkSeenFn(ctx, ids)
}

type stubProfileSvc struct {
	ListFn         func(ctx context.Context) ([]domain.Profile, error)
	CreateFn       func(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	UpdateFn       func(ctx context.Context, userID string, patch services.ProfilePatch) (*domain.Profile, error)
	UploadAvatarFn func(ctx context.Context, up services.AvatarUpload) (*services.AvatarResult, error)
}

func (s *stubProfileSvc) List(ctx context.Context) ([]domain.Profile, error) { return s.ListFn(ctx) }
func (s *stubProfileSvc) Create(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	return s.CreateFn(ctx, p)
}
func (s *stubProfileSvc) Update(ctx context.Context, userID string, patch services.ProfilePatch) (*domain.Profile, error) {
	return s.UpdateFn(ctx, userID, patch)
}
func (s *stubProfileSvc) UploadAvatar(ctx context.Context, up services.AvatarUpload) (*services.AvatarResult, error) {
	return s.UploadAvatarFn(ctx, up)
}

type stubAssistant struct {
	ReplyFn      func(ctx context.Context, prompt string) (*services.AssistantReply, error)
	AnalyzeFn    func(ctx context.Context, img ai.Image, prompt string) (*services.AssistantReply, error)
	TranscribeFn func(ctx context.Context, clip ai.Audio) (*services.AssistantReply, error)
}

func (s *stubAssistant) Reply(ctx context.Context, prompt string) (*services.AssistantReply, error) {
	return s.ReplyFn(ctx, prompt)
}
func (s *stubAssistant) AnalyzeImage(ctx context.Context, img ai.Image, prompt string) (*services.AssistantReply, error) {
	return s.AnalyzeFn(ctx, img, prompt)
}
func (s *stubAssistant) Transcribe(ctx context.Context, clip ai.Audio) (*services.AssistantReply, error) {
	return s.TranscribeFn(ctx, clip)
}

// memIdem is an in-memory IdempotencyStore keyed by user|scope|key.
type memIdem struct {
	rows map[string]string
}

func newMemIdem() *memIdem { return &memIdem{rows: map[string]string{}} }

func (m *memIdem) Lookup(_ context.Context, userID, scope, key string, _ time.Time) (string, bool, error) {
	id, ok := m.rows[userID+"|"+scope+"|"+key]
	return id, ok, nil
}

func (m *memIdem) Save(_ context.Context, userID, scope, key, resourceID string, _ int) error {
	m.rows[userID+"|"+scope+"|"+key] = resourceID
	return nil
}

// lookup adapts memIdem to the validator middleware.
func (m *memIdem) lookup(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	_, ok, err := m.Lookup(ctx, userID, scope, key, now)
	return ok, err
}

type stubStats struct {
	count  int64
	latest *time.Time
}

func (s stubStats) RequestsStats(context.Context, string, bool) (int64, *time.Time, error) {
	return s.count, s.latest, nil
}

type stubPublicSvc struct {
	SendFn func(ctx context.Context, userPhone, message string) (*domain.PublicMessage, error)
	ListFn func(ctx context.Context) ([]domain.PublicMessage, error)
}

func (s *stubPublicSvc) Send(ctx context.Context, userPhone, message string) (*domain.PublicMessage, error) {
	return s.SendFn(ctx, userPhone, message)
}
func (s *stubPublicSvc) List(ctx context.Context) ([]domain.PublicMessage, error) {
	return s.ListFn(ctx)
}

type stubSubSvc struct {
	SubscribeFn func(ctx context.Context, in services.SubscribeInput) (*domain.Subscription, error)
}

func (s *stubSubSvc) Subscribe(ctx context.Context, in services.SubscribeInput) (*domain.Subscription, error) {
	return s.SubscribeFn(ctx, in)
}

// ---------- router + request helpers ----------

func newTestRouter(h *Handlers, idem *memIdem) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Identity())
	if idem != nil {
		r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, idem.lookup))
	}

	r.POST("/send-request", h.SendRequest)
	r.GET("/requests/incoming", h.IncomingRequests)
	r.GET("/requests/outgoing", h.OutgoingRequests)
	r.POST("/requests/respond", h.RespondRequest)
	r.GET("/check-match", h.CheckMatch)
	r.GET("/chat-list", h.ChatList)

	r.POST("/send-message", h.SendMessage)
	r.GET("/messages/:match_id", h.ListMessages)
	r.POST("/message-delivered", h.MessageDelivered)
	r.POST("/message-seen", h.MessageSeen)

	r.GET("/profiles", h.ListProfiles)
	r.POST("/profiles", h.CreateProfile)
	r.POST("/update-profile", h.UpdateProfile)
	r.POST("/upload-avatar", h.UploadAvatar)

	r.POST("/ai-chat", h.AIChat)
	r.POST("/ai-image", h.AIImage)
	r.POST("/ai-speech-to-text", h.AISpeechToText)

	r.POST("/public-chat/send", h.SendPublicMessage)
	r.GET("/public-chat", h.ListPublicMessages)
	r.POST("/subscribe", h.Subscribe)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, r http.Handler, path, field, filename string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("json: %v (body=%s)", err, w.Body.String())
	}
	return m
}
