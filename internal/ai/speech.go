package ai

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

var transcriptPaths = []string{
	"transcript",
	"text",
	"results.0.alternatives.0.transcript",
}

// SpeechClient uploads audio as multipart form field "audio" to a
// speech-to-text endpoint.
type SpeechClient struct {
	hc       *http.Client
	endpoint string
	token    string
}

// NewSpeechClient returns a client, or nil when endpoint is empty. token is
// optional.
func NewSpeechClient(endpoint, token string, timeout time.Duration) *SpeechClient {
	if strings.TrimSpace(endpoint) == "" {
		return nil
	}
	return &SpeechClient{hc: newHTTPClient(timeout), endpoint: endpoint, token: token}
}

// Transcribe returns the transcript reported by the endpoint.
func (c *SpeechClient) Transcribe(ctx context.Context, clip Audio) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := clip.Name
	if name == "" {
		name = "audio"
	}
	ct := clip.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, name))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("ai: build speech form: %w", err)
	}
	if _, err := part.Write(clip.Data); err != nil {
		return "", fmt.Errorf("ai: build speech form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("ai: build speech form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("ai: build speech request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	body, err := do(c.hc, "speech", req)
	if err != nil {
		return "", err
	}
	text := firstText(body, transcriptPaths...)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
