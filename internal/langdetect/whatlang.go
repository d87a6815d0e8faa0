package langdetect

import (
	"context"
	"strings"

	"github.com/abadojack/whatlanggo"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/language"
)

// WhatlangDetector is a trigram detector. It is weaker than lingua on short
// input but independent of it, which is what a quorum needs.
type WhatlangDetector struct {
	registry *language.Registry
}

func NewWhatlangDetector(registry *language.Registry) *WhatlangDetector {
	return &WhatlangDetector{registry: registry}
}

func (d *WhatlangDetector) Name() backend.ID {
	return backend.Whatlang
}

func (d *WhatlangDetector) Detect(ctx context.Context, text string) (Signal, error) {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return Signal{}, ErrTooShort
	}
	if err := ctx.Err(); err != nil {
		return Signal{}, err
	}

	info := whatlanggo.Detect(sample)
	code := strings.ToLower(info.Lang.Iso6391())
	if code == "" || info.Confidence <= 0 {
		return Signal{}, ErrUndetermined
	}

	sig := Signal{
		RawCode:    code,
		Confidence: info.Confidence,
		Scored:     true,
	}
	sig.Language, _ = d.registry.CanonicalFor(backend.ISO, code)
	return sig, nil
}
