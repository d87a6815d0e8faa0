package langdetect

import (
	"context"
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/language"
)

const linguaMinLetters = 3

var (
	linguaOnce     sync.Once
	linguaDetector lingua.LanguageDetector
)

// linguaLanguages is limited to languages the registry knows, which keeps
// model loading small and every answer mappable.
var linguaLanguages = []lingua.Language{
	lingua.Chinese, lingua.English, lingua.Japanese, lingua.Korean,
	lingua.French, lingua.Spanish, lingua.Italian, lingua.German,
	lingua.Portuguese, lingua.Russian, lingua.Arabic, lingua.Thai,
	lingua.Swedish, lingua.Dutch, lingua.Romanian, lingua.Slovak,
	lingua.Hungarian, lingua.Greek, lingua.Danish, lingua.Finnish,
	lingua.Polish, lingua.Czech,
}

// LinguaDetector is a local n-gram detector that reports ranked confidences.
type LinguaDetector struct {
	registry *language.Registry
}

func NewLinguaDetector(registry *language.Registry) *LinguaDetector {
	return &LinguaDetector{registry: registry}
}

func (d *LinguaDetector) Name() backend.ID {
	return backend.Lingua
}

func (d *LinguaDetector) Detect(ctx context.Context, text string) (Signal, error) {
	sample := strings.TrimSpace(text)
	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < linguaMinLetters {
		return Signal{}, ErrTooShort
	}
	if err := ctx.Err(); err != nil {
		return Signal{}, err
	}

	values := getLinguaDetector().ComputeLanguageConfidenceValues(sample)
	if len(values) == 0 || values[0].Value() <= 0 {
		return Signal{}, ErrUndetermined
	}

	sig := Signal{
		RawCode:    isoCode(values[0].Language()),
		Confidence: values[0].Value(),
		Scored:     true,
	}
	sig.Language, _ = d.registry.CanonicalFor(backend.ISO, sig.RawCode)
	for _, v := range values[1:] {
		if v.Value() <= 0 || len(sig.Alternatives) == 3 {
			break
		}
		sig.Alternatives = append(sig.Alternatives, Candidate{Code: isoCode(v.Language()), Score: v.Value()})
	}
	return sig, nil
}

func isoCode(lang lingua.Language) string {
	return strings.ToLower(lang.IsoCode639_1().String())
}

func getLinguaDetector() lingua.LanguageDetector {
	linguaOnce.Do(func() {
		linguaDetector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(linguaLanguages...).
			Build()
	})
	return linguaDetector
}
