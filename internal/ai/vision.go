package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// VisionClient posts base64 images to a JSON image-analysis endpoint
// authenticated with a bearer token.
type VisionClient struct {
	hc       *http.Client
	endpoint string
	token    string
}

// NewVisionClient returns a client, or nil unless both endpoint and token
// are set.
func NewVisionClient(endpoint, token string, timeout time.Duration) *VisionClient {
	if strings.TrimSpace(endpoint) == "" || strings.TrimSpace(token) == "" {
		return nil
	}
	return &VisionClient{hc: newHTTPClient(timeout), endpoint: endpoint, token: token}
}

type visionImage struct {
	Content string `json:"content"`
}

type visionRequest struct {
	Image  visionImage `json:"image"`
	Prompt string      `json:"prompt"`
}

const maxRawVisionReply = 1000

// Analyze returns the endpoint's "reply" or "result" field, or the first
// 1000 bytes of the raw body when neither is present.
func (c *VisionClient) Analyze(ctx context.Context, img Image, prompt string) (string, error) {
	payload, err := json.Marshal(visionRequest{
		Image:  visionImage{Content: base64.StdEncoding.EncodeToString(img.Data)},
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("ai: encode vision request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ai: build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	body, err := do(c.hc, "vision", req)
	if err != nil {
		return "", err
	}
	if s := firstText(body, "reply", "result"); s != "" {
		return s, nil
	}
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return "", ErrEmptyResponse
	}
	if len(raw) > maxRawVisionReply {
		raw = raw[:maxRawVisionReply]
	}
	return raw, nil
}
