// Match HTTP handlers.
//
// This file exposes the request/match lifecycle:
//   - POST /send-request        (create a pending request)
//   - GET  /requests/incoming   (requests addressed to a user, ETag support)
//   - GET  /requests/outgoing   (requests sent by a user, ETag support)
//   - POST /requests/respond    (accept or reject, resolving the match)
//   - GET  /check-match         (are two users matched?)
//   - GET  /chat-list           (one summary per match of a user)
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-gateway/internal/domain"
	"github.com/tbourn/go-match-gateway/internal/http/middleware"
)

//
// DTOs
//

// SendRequestBody is the JSON payload of POST /send-request.
type SendRequestBody struct {
	FromUserID string `json:"from_user_id" example:"9876543210"`
	ToUserID   string `json:"to_user_id"   example:"9123456780"`
}

// RespondBody is the JSON payload of POST /requests/respond.
type RespondBody struct {
	RequestID     string `json:"requestId"     example:"5f1c2e4a-8d9b-4a3c-9e1f-2b3c4d5e6f70"`
	Action        string `json:"action"        example:"accept"`
	CurrentUserID string `json:"currentUserId" example:"9123456780"`
}

// RespondResponse is returned by POST /requests/respond. Match is null
// unless the request is accepted.
type RespondResponse struct {
	Success bool                 `json:"success" example:"true"`
	Message string               `json:"message" example:"Request Accepted & Match Created"`
	Request *domain.MatchRequest `json:"request"`
	Match   *domain.Match        `json:"match"`
}

// CheckMatchResponse is returned by GET /check-match.
type CheckMatchResponse struct {
	Success bool          `json:"success" example:"true"`
	Matched bool          `json:"matched" example:"true"`
	MatchID string        `json:"match_id,omitempty"`
	Match   *domain.Match `json:"match,omitempty"`
}

// requestUser returns the userId query parameter, falling back to the
// identity recorded by middleware.
func requestUser(c *gin.Context) string {
	if q := strings.TrimSpace(c.Query("userId")); q != "" {
		return q
	}
	return middleware.UserID(c)
}

//
// Handlers
//

// SendRequest godoc
// @ID          sendRequest
// @Summary     Send a match request
// @Description Creates a pending request from from_user_id to to_user_id.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Matches
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       body  body  handlers.SendRequestBody  true  "Request payload"
// @Success     200  {object}  handlers.MessageDataResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields or self request"
// @Failure     422  {object}  handlers.ErrorResponse  "Idempotency-Key reused with a different payload"
// @Router      /send-request [post]
func (h *Handlers) SendRequest(c *gin.Context) {
	ctx := c.Request.Context()

	var body SendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from_user_id and to_user_id required")
		return
	}

	if id, found := h.replayID(c); found {
		if prev, err := h.matchSvc.Get(ctx, id); err == nil {
			if !sameIDs(prev.FromUserID, body.FromUserID, prev.ToUserID, body.ToUserID) {
				failKeyReused(c)
				return
			}
			markReplayed(c)
			ok(c, MessageDataResponse{Success: true, Message: "Request Sent", Data: prev})
			return
		}
	}

	req, err := h.matchSvc.Send(ctx, body.FromUserID, body.ToUserID)
	if err != nil {
		failErr(c, err)
		return
	}
	h.remember(c, req.ID)
	ok(c, MessageDataResponse{Success: true, Message: "Request Sent", Data: req})
}

// IncomingRequests godoc
// @ID          incomingRequests
// @Summary     List incoming requests
// @Description Returns the requests addressed to userId, newest first. Emits a weak ETag.
// @Tags        Matches
// @Produce     json
// @Param       userId         query   string  true   "Recipient user id"
// @Param       If-None-Match  header  string  false  "Return 304 if the listing is unchanged"
// @Success     200  {object}  handlers.DataResponse
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /requests/incoming [get]
func (h *Handlers) IncomingRequests(c *gin.Context) { h.listRequests(c, true) }

// OutgoingRequests godoc
// @ID          outgoingRequests
// @Summary     List outgoing requests
// @Description Returns the requests sent by userId, newest first. Emits a weak ETag.
// @Tags        Matches
// @Produce     json
// @Param       userId         query   string  true   "Requester user id"
// @Param       If-None-Match  header  string  false  "Return 304 if the listing is unchanged"
// @Success     200  {object}  handlers.DataResponse
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /requests/outgoing [get]
func (h *Handlers) OutgoingRequests(c *gin.Context) { h.listRequests(c, false) }

func (h *Handlers) listRequests(c *gin.Context, incoming bool) {
	ctx := c.Request.Context()
	uid := requestUser(c)
	if uid == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "userId required")
		return
	}

	// ETag pre-check (best effort).
	if h.stats != nil {
		if count, maxTS, err := h.stats.RequestsStats(ctx, uid, incoming); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			dir := "outgoing"
			if incoming {
				dir = "incoming"
			}
			etag := fmt.Sprintf(`W/"requests:%s:%s:%d:%d"`, dir, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	list := h.matchSvc.ListOutgoing
	if incoming {
		list = h.matchSvc.ListIncoming
	}
	items, err := list(ctx, uid)
	if err != nil {
		failErr(c, err)
		return
	}
	okData(c, items)
}

// RespondRequest godoc
// @ID          respondRequest
// @Summary     Accept or reject a request
// @Description Only the recipient may respond. "accept" creates the match for the pair
// @Description (or returns the existing one); any other action rejects.
// @Tags        Matches
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RespondBody  true  "Response payload"
// @Success     200  {object}  handlers.RespondResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the recipient"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already responded"
// @Router      /requests/respond [post]
func (h *Handlers) RespondRequest(c *gin.Context) {
	var body RespondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "requestId, action, currentUserId required")
		return
	}
	res, err := h.matchSvc.Respond(c.Request.Context(), body.RequestID, body.Action, body.CurrentUserID)
	if err != nil {
		failErr(c, err)
		return
	}
	msg := "Request Rejected"
	if res.Request.Status == domain.StatusAccepted {
		msg = "Request Accepted & Match Created"
	}
	ok(c, RespondResponse{Success: true, Message: msg, Request: res.Request, Match: res.Match})
}

// CheckMatch godoc
// @ID          checkMatch
// @Summary     Check whether two users are matched
// @Tags        Matches
// @Produce     json
// @Param       user1  query  string  true  "First user id"
// @Param       user2  query  string  true  "Second user id"
// @Success     200  {object}  handlers.CheckMatchResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /check-match [get]
func (h *Handlers) CheckMatch(c *gin.Context) {
	u1, u2 := strings.TrimSpace(c.Query("user1")), strings.TrimSpace(c.Query("user2"))
	if u1 == "" || u2 == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user1 & user2 required")
		return
	}
	res, err := h.matchSvc.CheckMatch(c.Request.Context(), u1, u2)
	if err != nil {
		failErr(c, err)
		return
	}
	out := CheckMatchResponse{Success: true, Matched: res.Matched}
	if res.Matched && res.Match != nil {
		out.MatchID = res.Match.ID
		out.Match = res.Match
	}
	ok(c, out)
}

// ChatList godoc
// @ID          chatList
// @Summary     List conversations
// @Description One entry per match of userId: partner name/avatar and the latest message preview.
// @Tags        Matches
// @Produce     json
// @Param       userId  query  string  true  "User id"
// @Success     200  {object}  handlers.DataResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /chat-list [get]
func (h *Handlers) ChatList(c *gin.Context) {
	uid := requestUser(c)
	if uid == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "userId required")
		return
	}
	items, err := h.chatSvc.List(c.Request.Context(), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	okData(c, items)
}
