// Package langdetect runs independent language detectors over query text
// and arbitrates their answers into one confirmed source language.
package langdetect

import (
	"context"
	"errors"

	"horse.fit/easydict/internal/backend"
)

var (
	ErrTooShort     = errors.New("text too short for detection")
	ErrUndetermined = errors.New("language could not be determined")
)

// Candidate is one ranked alternative reported by a detector.
type Candidate struct {
	Code  string  `json:"code"`
	Score float64 `json:"score"`
}

// Signal is one detector's guess for one query.
type Signal struct {
	Detector backend.ID
	RawCode  string
	// Language is the canonical id, empty when RawCode is not in the registry.
	Language string
	// Confidence is meaningful only when Scored is set.
	Confidence   float64
	Scored       bool
	Alternatives []Candidate
	Err          error
}

// Usable reports whether the signal can take part in arbitration.
func (s Signal) Usable() bool {
	return s.Err == nil && s.Language != ""
}

// Detector produces a language guess for a text.
type Detector interface {
	Name() backend.ID
	Detect(ctx context.Context, text string) (Signal, error)
}
