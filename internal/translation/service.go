package translation

import (
	"context"

	"horse.fit/easydict/internal/backend"
)

// Provider queries one translation or dictionary backend.
type Provider interface {
	Name() backend.ID
	Role() backend.Role
	// MaxQueryLength is the longest text, in runes, the backend accepts.
	MaxQueryLength() int
	Query(ctx context.Context, req Request) (*Result, error)
}

// Request describes one backend query. Codes are already mapped to the
// backend's own language vocabulary.
type Request struct {
	Text       string
	Source     string // canonical id
	Target     string
	SourceCode string
	TargetCode string
}

// Result is a backend's successful payload. Dictionary backends fill the
// word-level fields; translation backends only fill Translations.
type Result struct {
	Provider       backend.ID `json:"provider"`
	Translations   []string   `json:"translations,omitempty"`
	Phonetic       string     `json:"phonetic,omitempty"`
	ExamTypes      []string   `json:"exam_types,omitempty"`
	Explanations   []string   `json:"explanations,omitempty"`
	Forms          []Form     `json:"forms,omitempty"`
	WebTranslation *WebEntry  `json:"web_translation,omitempty"`
	WebPhrases     []WebEntry `json:"web_phrases,omitempty"`
	// DetectedSource is the source code the backend reports, if any.
	DetectedSource string `json:"detected_source,omitempty"`
}

// Form is one inflection of a dictionary word, such as a plural.
type Form struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// WebEntry is a phrase with its web-sourced translations.
type WebEntry struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Empty reports whether the result carries nothing to show.
func (r *Result) Empty() bool {
	if r == nil {
		return true
	}
	return len(r.Translations) == 0 &&
		len(r.Explanations) == 0 &&
		len(r.Forms) == 0 &&
		r.WebTranslation == nil &&
		len(r.WebPhrases) == 0
}
