// Assistant HTTP handlers.
//
//   - POST /ai-chat             (JSON prompt)
//   - POST /ai-image            (multipart "image", optional "prompt")
//   - POST /ai-speech-to-text   (multipart "audio")
//
// Provider failures never surface as errors: the service answers with a
// mock or fallback text and degraded=true.
package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-gateway/internal/ai"
)

// ChatPromptBody is the JSON payload of POST /ai-chat.
type ChatPromptBody struct {
	Prompt string `json:"prompt" example:"આજે શું રાંધું?"`
}

// AssistantResponse is returned by /ai-chat and /ai-image.
type AssistantResponse struct {
	Success  bool   `json:"success"  example:"true"`
	Reply    string `json:"reply"`
	Degraded bool   `json:"degraded" example:"false"`
}

// TranscriptResponse is returned by /ai-speech-to-text.
type TranscriptResponse struct {
	Success    bool   `json:"success"    example:"true"`
	Transcript string `json:"transcript"`
	Degraded   bool   `json:"degraded"   example:"false"`
}

// readUpload loads a multipart file into memory. The router caps the body
// size, so the read is bounded.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// formFile fetches a multipart file. It writes the failure response itself
// (413 when the router's body cap was hit, 400 otherwise) and returns nil.
func formFile(c *gin.Context, field, missing string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err == nil {
		return fh
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "upload too large")
		return nil
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, missing)
	return nil
}

// AIChat godoc
// @ID          aiChat
// @Summary     Chat with the assistant
// @Description Replies in Gujarati. Without a configured provider a mock reply is returned.
// @Tags        Assistant
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ChatPromptBody  true  "Prompt"
// @Success     200  {object}  handlers.AssistantResponse
// @Failure     400  {object}  handlers.ErrorResponse  "prompt required"
// @Router      /ai-chat [post]
func (h *Handlers) AIChat(c *gin.Context) {
	var body ChatPromptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt required")
		return
	}
	rep, err := h.assistant.Reply(c.Request.Context(), body.Prompt)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, AssistantResponse{Success: true, Reply: rep.Text, Degraded: rep.Degraded})
}

// AIImage godoc
// @ID          aiImage
// @Summary     Analyze an image
// @Tags        Assistant
// @Accept      multipart/form-data
// @Produce     json
// @Param       image   formData  file    true   "Image"
// @Param       prompt  formData  string  false  "What to look for"
// @Success     200  {object}  handlers.AssistantResponse
// @Failure     400  {object}  handlers.ErrorResponse  "image required"
// @Router      /ai-image [post]
func (h *Handlers) AIImage(c *gin.Context) {
	fh := formFile(c, "image", "image required")
	if fh == nil {
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "image unreadable")
		return
	}
	rep, err := h.assistant.AnalyzeImage(c.Request.Context(), ai.Image{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, c.PostForm("prompt"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, AssistantResponse{Success: true, Reply: rep.Text, Degraded: rep.Degraded})
}

// AISpeechToText godoc
// @ID          aiSpeechToText
// @Summary     Transcribe an audio clip
// @Tags        Assistant
// @Accept      multipart/form-data
// @Produce     json
// @Param       audio  formData  file  true  "Audio clip"
// @Success     200  {object}  handlers.TranscriptResponse
// @Failure     400  {object}  handlers.ErrorResponse  "audio required"
// @Router      /ai-speech-to-text [post]
func (h *Handlers) AISpeechToText(c *gin.Context) {
	fh := formFile(c, "audio", "audio required")
	if fh == nil {
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "audio unreadable")
		return
	}
	rep, err := h.assistant.Transcribe(c.Request.Context(), ai.Audio{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, TranscriptResponse{Success: true, Transcript: rep.Text, Degraded: rep.Degraded})
}
