// Package ai holds the outbound clients for the assistant endpoints: Gemini
// text generation, an image-analysis endpoint, and a speech-to-text
// endpoint. Each client hides its provider's response shape and returns
// plain text.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrEmptyResponse is returned when a provider answered 2xx but none of the
// known response fields carried text.
var ErrEmptyResponse = errors.New("ai: provider returned no text")

// Image is an uploaded image to analyze.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Audio is an uploaded audio clip to transcribe.
type Audio struct {
	Name        string
	ContentType string
	Data        []byte
}

// TextGenerator answers a free-text prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageAnalyzer describes an image, guided by an optional prompt.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, img Image, prompt string) (string, error)
}

// SpeechTranscriber turns an audio clip into text.
type SpeechTranscriber interface {
	Transcribe(ctx context.Context, clip Audio) (string, error)
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai: %s returned %d: %s", e.Provider, e.Status, e.Body)
}

const (
	maxResponseBytes = 4 << 20
	maxErrorBody     = 512
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// do sends req and returns the body of a 2xx response.
func do(hc *http.Client, provider string, req *http.Request) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai: %s request: %w", provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("ai: %s read body: %w", provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &StatusError{Provider: provider, Status: resp.StatusCode, Body: msg}
	}
	return body, nil
}

// firstText returns the first non-blank string found at paths in body.
func firstText(body []byte, paths ...string) string {
	for _, p := range paths {
		if r := gjson.GetBytes(body, p); r.Exists() {
			if s := strings.TrimSpace(r.String()); s != "" {
				return s
			}
		}
	}
	return ""
}
