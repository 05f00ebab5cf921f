// Package services – AssistantService
//
// AssistantService fronts the AI providers. An unconfigured provider yields
// a mock answer so clients keep working in development; a failing provider
// yields a degraded answer instead of an error.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-match-gateway/internal/ai"
)

// Fixed assistant texts.
const (
	ChatFallbackReply = "માફ કરશો, જવાબ આપવા સમસ્યા આવી."
	MockTranscript    = "હેલો, આ એક નમૂનો ટ્રાન્સક્રિપ્ટ છે — તમે જે કહ્યું તે અહીં દેખાશે."

	mockChatRunes   = 240
	mockPromptRunes = 120
)

// AssistantReply is the text returned to the client. Degraded is set when a
// configured provider failed and a stand-in text was returned.
type AssistantReply struct {
	Text     string
	Degraded bool
}

// AssistantService routes prompts to the configured providers. Any of the
// providers may be nil; leave the field unset rather than storing a typed
// nil pointer.
type AssistantService struct {
	Text    ai.TextGenerator
	Vision  ai.ImageAnalyzer
	Speech  ai.SpeechTranscriber
	Timeout time.Duration
}

// NewAssistantService constructs an AssistantService with a 30s call bound.
func NewAssistantService(text ai.TextGenerator, vision ai.ImageAnalyzer, speech ai.SpeechTranscriber) *AssistantService {
	return &AssistantService{Text: text, Vision: vision, Speech: speech, Timeout: 30 * time.Second}
}

func (s *AssistantService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// Reply answers a chat prompt.
func (s *AssistantService) Reply(ctx context.Context, prompt string) (*AssistantReply, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if s.Text == nil {
		assistantCalls.WithLabelValues("text", "mock").Inc()
		return &AssistantReply{Text: fmt.Sprintf("મોક જવાબ: \"%s\" — (Gemini API key not configured)", clipRunes(prompt, mockChatRunes))}, nil
	}

	ctx, span := otel.Tracer("services/AssistantService").Start(ctx, "Reply",
		trace.WithAttributes(attribute.Int("prompt.runes", len([]rune(prompt)))))
	defer span.End()

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	text, err := s.Text.Generate(cctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			span.RecordError(err)
			log.Ctx(ctx).Warn().Err(err).Msg("ai chat provider failed")
		}
		assistantCalls.WithLabelValues("text", "fallback").Inc()
		return &AssistantReply{Text: ChatFallbackReply, Degraded: true}, nil
	}
	assistantCalls.WithLabelValues("text", "ok").Inc()
	return &AssistantReply{Text: text}, nil
}

// AnalyzeImage describes img. Missing or failing vision providers fall back
// to the mock analysis.
func (s *AssistantService) AnalyzeImage(ctx context.Context, img ai.Image, prompt string) (*AssistantReply, error) {
	if len(img.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	mock := fmt.Sprintf("મોક ઇમેજ વિશ્લેષણ: ફાઈલ %s - પ્રોમ્પ્ટ: \"%s\"", img.Name, clipRunes(prompt, mockPromptRunes))
	if s.Vision == nil {
		assistantCalls.WithLabelValues("image", "mock").Inc()
		return &AssistantReply{Text: mock}, nil
	}

	ctx, span := otel.Tracer("services/AssistantService").Start(ctx, "AnalyzeImage",
		trace.WithAttributes(attribute.Int("image.bytes", len(img.Data))))
	defer span.End()

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	text, err := s.Vision.Analyze(cctx, img, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			span.RecordError(err)
			log.Ctx(ctx).Warn().Err(err).Msg("vision provider failed")
		}
		assistantCalls.WithLabelValues("image", "fallback").Inc()
		return &AssistantReply{Text: mock, Degraded: true}, nil
	}
	assistantCalls.WithLabelValues("image", "ok").Inc()
	return &AssistantReply{Text: text}, nil
}

// Transcribe converts clip to text, or returns the sample transcript.
func (s *AssistantService) Transcribe(ctx context.Context, clip ai.Audio) (*AssistantReply, error) {
	if len(clip.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	if s.Speech == nil {
		assistantCalls.WithLabelValues("speech", "mock").Inc()
		return &AssistantReply{Text: MockTranscript}, nil
	}

	ctx, span := otel.Tracer("services/AssistantService").Start(ctx, "Transcribe",
		trace.WithAttributes(attribute.Int("audio.bytes", len(clip.Data))))
	defer span.End()

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	text, err := s.Speech.Transcribe(cctx, clip)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			span.RecordError(err)
			log.Ctx(ctx).Warn().Err(err).Msg("speech provider failed")
		}
		assistantCalls.WithLabelValues("speech", "fallback").Inc()
		return &AssistantReply{Text: MockTranscript, Degraded: true}, nil
	}
	assistantCalls.WithLabelValues("speech", "ok").Inc()
	return &AssistantReply{Text: text}, nil
}

func clipRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
