package services

import (
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/tbourn/go-match-gateway/internal/domain"
)

// PreviewLabels are the fixed strings shown in a chat summary instead of
// raw content.
type PreviewLabels struct {
	Audio   string
	Image   string
	NoReply string
}

// Gujarati is listed first so it is the matcher's fallback.
var (
	previewTags = []language.Tag{language.Gujarati, language.English}

	previewCatalog = map[language.Tag]PreviewLabels{
		language.Gujarati: {
			Audio:   "🎤 ઓડિઓ સંદેશ",
			Image:   "📷 છબી",
			NoReply: "કોઈ સંદેશ નથી",
		},
		language.English: {
			Audio:   "🎤 Audio message",
			Image:   "📷 Photo",
			NoReply: "No messages yet",
		},
	}

	previewMatcher = language.NewMatcher(previewTags)
)

// LabelsFor returns the placeholder labels best matching locale (a BCP 47
// tag such as "gu", "en-GB"). Unknown or unparsable locales get Gujarati.
func LabelsFor(locale string) PreviewLabels {
	tag, err := language.Parse(locale)
	if err != nil {
		return previewCatalog[language.Gujarati]
	}
	_, idx, conf := previewMatcher.Match(tag)
	if conf == language.No {
		return previewCatalog[language.Gujarati]
	}
	return previewCatalog[previewTags[idx]]
}

// Preview renders the last-message fields of a summary. A nil message
// yields the "no message" label, type text, and no timestamp; a blank body
// keeps its type and time but also shows the "no message" label.
func (l PreviewLabels) Preview(m *domain.Message) (text, typ string, at *time.Time) {
	if m == nil {
		return l.NoReply, domain.MessageText, nil
	}
	ts := m.CreatedAt
	switch m.Type {
	case domain.MessageAudio:
		return l.Audio, m.Type, &ts
	case domain.MessageImage:
		return l.Image, m.Type, &ts
	}
	typ = m.Type
	if typ == "" {
		typ = domain.MessageText
	}
	if strings.TrimSpace(m.Body) == "" {
		return l.NoReply, typ, &ts
	}
	return m.Body, typ, &ts
}
