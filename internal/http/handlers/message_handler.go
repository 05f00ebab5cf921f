// Message HTTP handlers.
//
// This file exposes private messaging inside a match:
//   - POST /send-message          (store a text, image, or audio message)
//   - GET  /messages/{match_id}   (list messages oldest first, paginated)
//   - POST /message-delivered     (mark messages delivered)
//   - POST /message-seen          (mark messages seen)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous send with
// the same key exists for the caller, the stored message is returned and
// `Idempotency-Replayed: true` is set.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-gateway/internal/domain"
	"github.com/tbourn/go-match-gateway/internal/services"
	"github.com/tbourn/go-match-gateway/internal/utils"
)

//
// DTOs
//

// SendMessageBody is the JSON payload of POST /send-message.
type SendMessageBody struct {
	MatchID    string   `json:"match_id"    example:"0b6f8f4e-3c1a-4f7e-9a51-8d3e2c1b0a99"`
	SenderID   string   `json:"sender_id"   example:"9876543210"`
	ReceiverID string   `json:"receiver_id" example:"9123456780"`
	Message    string   `json:"message"     example:"કેમ છો?"`
	Type       string   `json:"type"        example:"text" enums:"text,image,audio"`
	ImageURL   *string  `json:"image_url"`
	AudioURL   *string  `json:"audio_url"`
	Duration   *float64 `json:"duration"`
}

// ReceiptBody is the JSON payload of the receipt endpoints.
type ReceiptBody struct {
	IDs []string `json:"ids"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListMessagesResponse is a page of messages plus pagination metadata.
type ListMessagesResponse struct {
	Success    bool             `json:"success" example:"true"`
	Data       []domain.Message `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// Message list paging bounds.
const (
	defaultMsgPageSize = 50
	maxMsgPageSize     = 200
)

//
// Handlers
//

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a message inside a match
// @Description Stores a message from sender_id to receiver_id. Both must be the parties of match_id.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       body  body  handlers.SendMessageBody  true  "Message payload"
// @Success     200  {object}  handlers.DataResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields or bad type"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the match participants"
// @Failure     404  {object}  handlers.ErrorResponse  "Match not found"
// @Router      /send-message [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()

	var body SendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "match_id, sender_id, receiver_id required")
		return
	}

	if id, found := h.replayID(c); found {
		if prev, err := h.msgSvc.Get(ctx, id); err == nil {
			if !sameIDs(prev.MatchID, body.MatchID, prev.SenderID, body.SenderID, prev.ReceiverID, body.ReceiverID) {
				failKeyReused(c)
				return
			}
			markReplayed(c)
			okData(c, prev)
			return
		}
	}

	m, err := h.msgSvc.Send(ctx, services.SendMessageInput{
		MatchID:    body.MatchID,
		SenderID:   body.SenderID,
		ReceiverID: body.ReceiverID,
		Body:       body.Message,
		Type:       body.Type,
		ImageURL:   body.ImageURL,
		AudioURL:   body.AudioURL,
		Duration:   body.Duration,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	h.remember(c, m.ID)
	okData(c, m)
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages of a match
// @Description Returns messages oldest first.
// @Tags        Messages
// @Produce     json
// @Param       match_id   path   string  true   "Match ID"
// @Param       page       query  int     false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false  "Items per page"  minimum(1) maximum(200) default(50)
// @Success     200  {object}  handlers.ListMessagesResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Match not found"
// @Router      /messages/{match_id} [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	matchID := c.Param("match_id")
	pg := utils.ParsePage(c.Query("page"), c.Query("page_size"), defaultMsgPageSize, maxMsgPageSize)

	items, total, err := h.msgSvc.ListPage(c.Request.Context(), matchID, pg.Number, pg.Size)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, ListMessagesResponse{
		Success: true,
		Data:    items,
		Pagination: Pagination{
			Page:       pg.Number,
			PageSize:   pg.Size,
			Total:      total,
			TotalPages: pg.TotalPages(total),
			HasNext:    pg.HasNext(total),
		},
	})
}

// MessageDelivered godoc
// @ID          messageDelivered
// @Summary     Mark messages delivered
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ReceiptBody  true  "Message ids"
// @Success     200  {object}  handlers.DataResponse
// @Failure     400  {object}  handlers.ErrorResponse  "ids array required"
// @Router      /message-delivered [post]
func (h *Handlers) MessageDelivered(c *gin.Context) {
	h.receipt(c, h.msgSvc.MarkDelivered)
}

// MessageSeen godoc
// @ID          messageSeen
// @Summary     Mark messages seen
// @Description Seen messages are also marked delivered.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ReceiptBody  true  "Message ids"
// @Success     200  {object}  handlers.DataResponse
// @Failure     400  {object}  handlers.ErrorResponse  "ids array required"
// @Router      /message-seen [post]
func (h *Handlers) MessageSeen(c *gin.Context) {
	h.receipt(c, h.msgSvc.MarkSeen)
}

func (h *Handlers) receipt(c *gin.Context, mark func(ctx context.Context, ids []string) ([]domain.Message, error)) {
	var body ReceiptBody
	if err := c.ShouldBindJSON(&body); err != nil || len(body.IDs) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrNoMessageIDs.Error())
		return
	}
	out, err := mark(c.Request.Context(), body.IDs)
	if err != nil {
		failErr(c, err)
		return
	}
	okData(c, out)
}
