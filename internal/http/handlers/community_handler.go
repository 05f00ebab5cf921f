// Public room and subscription handlers.
//
//   - POST /public-chat/send  (append a post)
//   - GET  /public-chat       (feed, oldest first)
//   - POST /subscribe         (record a plan activation)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-gateway/internal/services"
)

// PublicPostBody is the JSON payload of POST /public-chat/send.
type PublicPostBody struct {
	UserPhone string `json:"user_phone" example:"9876543210"`
	Message   string `json:"message"    example:"સૌને નમસ્તે"`
}

// SubscribeBody is the JSON payload of POST /subscribe. Duration is in days.
type SubscribeBody struct {
	UserPhone string   `json:"user_phone" example:"9876543210"`
	PlanName  string   `json:"plan_name"  example:"gold"`
	Price     *float64 `json:"price"      example:"199"`
	Duration  *int     `json:"duration"   example:"30"`
}

// SendPublicMessage godoc
// @ID          sendPublicMessage
// @Summary     Post to the public room
// @Tags        Community
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.PublicPostBody  true  "Post"
// @Success     200  {object}  handlers.DataResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields"
// @Router      /public-chat/send [post]
func (h *Handlers) SendPublicMessage(c *gin.Context) {
	var body PublicPostBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Missing fields")
		return
	}
	m, err := h.publicSvc.Send(c.Request.Context(), body.UserPhone, body.Message)
	if err != nil {
		failErr(c, err)
		return
	}
	okData(c, m)
}

// ListPublicMessages godoc
// @ID          listPublicMessages
// @Summary     Read the public room
// @Tags        Community
// @Produce     json
// @Success     200  {object}  handlers.DataResponse
// @Router      /public-chat [get]
func (h *Handlers) ListPublicMessages(c *gin.Context) {
	items, err := h.publicSvc.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	okData(c, items)
}

// Subscribe godoc
// @ID          subscribe
// @Summary     Activate a subscription plan
// @Tags        Community
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SubscribeBody  true  "Plan"
// @Success     200  {object}  handlers.MessageDataResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields"
// @Router      /subscribe [post]
func (h *Handlers) Subscribe(c *gin.Context) {
	var body SubscribeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Missing fields")
		return
	}
	sub, err := h.subSvc.Subscribe(c.Request.Context(), services.SubscribeInput{
		UserPhone:    body.UserPhone,
		PlanName:     body.PlanName,
		Price:        body.Price,
		DurationDays: body.Duration,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, MessageDataResponse{Success: true, Message: "Subscription Activated", Data: sub})
}
