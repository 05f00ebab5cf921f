package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultGeminiBaseURL is the Generative Language API root.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GujaratiInstruction is prefixed to every prompt so the model answers in
// short, plain Gujarati.
const GujaratiInstruction = "હંમેશા ગુજરાતી માં, સંક્ષિપ્ત અને સહજ ભાષામાં જવાબ આપો. User: "

// geminiReplyPaths lists the response shapes seen across Gemini API
// versions, most specific first.
var geminiReplyPaths = []string{
	"candidates.0.content.parts.0.text",
	"output.0.content.0.text",
	"output.0.text",
	"candidates.0.outputText",
}

// geminiKeyHeader carries the API key on generateContent calls.
const geminiKeyHeader = "x-goog-api-key"

// GeminiConfig configures NewGeminiClient.
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Instruction string
	Timeout     time.Duration
}

// GeminiClient calls models/{model}:generateContent.
type GeminiClient struct {
	hc          *http.Client
	apiKey      string
	model       string
	baseURL     string
	instruction string
}

// NewGeminiClient returns a client, or nil when no API key is configured.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-pro"
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultGeminiBaseURL
	}
	instr := cfg.Instruction
	if instr == "" {
		instr = GujaratiInstruction
	}
	return &GeminiClient{
		hc:          newHTTPClient(cfg.Timeout),
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     base,
		instruction: instr,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// Generate sends prompt and returns the model's first text candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: c.instruction + prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("ai: encode gemini request: %w", err)
	}

	// The key goes in a header: transport errors quote the URL verbatim.
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ai: build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(geminiKeyHeader, c.apiKey)

	body, err := do(c.hc, "gemini", req)
	if err != nil {
		return "", err
	}
	reply := firstText(body, geminiReplyPaths...)
	if reply == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}
