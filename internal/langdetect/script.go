package langdetect

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/language"
)

// scriptWeights caps the confidence a script can give on its own. Scripts
// shared by several languages, Han included, stay below the authoritative
// threshold.
var scriptWeights = map[string]float64{
	"zh-Hans": 0.7,
	"zh-Hant": 0.7,
	"ja":      1.0,
	"ko":      1.0,
	"th":      0.95,
	"el":      0.95,
	"ar":      0.9,
	"ru":      0.7,
	"en":      0.6,
}

// ScriptDetector guesses the language from the writing system alone.
// It is cheap, never blocks and is exact for kana and hangul text.
type ScriptDetector struct {
	registry *language.Registry
}

func NewScriptDetector(registry *language.Registry) *ScriptDetector {
	return &ScriptDetector{registry: registry}
}

func (d *ScriptDetector) Name() backend.ID {
	return backend.Script
}

func (d *ScriptDetector) Detect(_ context.Context, text string) (Signal, error) {
	counts := countScripts(text)
	if counts.letters == 0 {
		return Signal{}, ErrTooShort
	}

	votes := map[string]int{}
	switch {
	case counts.kana > 0:
		// Kanji mixed with kana is still Japanese.
		votes["ja"] = counts.kana + counts.han
	case counts.hangul > 0:
		votes["ko"] = counts.hangul + counts.han
	case counts.han > 0 && counts.traditional > counts.simplified:
		votes["zh-Hant"] = counts.han
	case counts.han > 0:
		votes["zh-Hans"] = counts.han
	}
	if counts.ascii > 0 && counts.latinExtended == 0 {
		votes["en"] = counts.ascii
	}
	if counts.cyrillic > 0 {
		votes["ru"] = counts.cyrillic
	}
	if counts.thai > 0 {
		votes["th"] = counts.thai
	}
	if counts.arabic > 0 {
		votes["ar"] = counts.arabic
	}
	if counts.greek > 0 {
		votes["el"] = counts.greek
	}
	if len(votes) == 0 {
		// Accented Latin text: the script alone says nothing useful.
		return Signal{}, ErrUndetermined
	}

	alternatives := make([]Candidate, 0, len(votes))
	for id, n := range votes {
		share := float64(n) / float64(counts.letters)
		alternatives = append(alternatives, Candidate{Code: id, Score: share * scriptWeights[id]})
	}
	sort.Slice(alternatives, func(i, j int) bool {
		if alternatives[i].Score != alternatives[j].Score {
			return alternatives[i].Score > alternatives[j].Score
		}
		return alternatives[i].Code < alternatives[j].Code
	})

	top := alternatives[0]
	sig := Signal{
		RawCode:      top.Code,
		Confidence:   top.Score,
		Scored:       true,
		Alternatives: alternatives[1:],
	}
	if _, ok := d.registry.Lookup(top.Code); ok {
		sig.Language = top.Code
	}
	return sig, nil
}

// Common characters written differently in the two Chinese scripts.
const (
	simplifiedOnly  = "们学习国语这来时为说会对开关见电话车门问题东书长经发现实从样还点过边给头种无当与万岁网号处应术机专业欢买卖让认识听亲爱气汉华丽阳队难"
	traditionalOnly = "們學習國語這來時為說會對開關見電話車門問題東書長經發現實從樣還點過邊給頭種無當與萬歲網號處應術機專業歡買賣讓認識聽親愛氣漢華麗陽隊難體後幾麼"
)

type scriptCounts struct {
	letters       int
	ascii         int
	latinExtended int
	han           int
	simplified    int
	traditional   int
	kana          int
	hangul        int
	cyrillic      int
	thai          int
	arabic        int
	greek         int
}

func countScripts(text string) scriptCounts {
	var c scriptCounts
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		c.letters++
		switch {
		case r < unicode.MaxASCII:
			c.ascii++
		case unicode.Is(unicode.Han, r):
			c.han++
			if strings.ContainsRune(simplifiedOnly, r) {
				c.simplified++
			} else if strings.ContainsRune(traditionalOnly, r) {
				c.traditional++
			}
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			c.kana++
		case unicode.Is(unicode.Hangul, r):
			c.hangul++
		case unicode.Is(unicode.Latin, r):
			c.latinExtended++
		case unicode.Is(unicode.Cyrillic, r):
			c.cyrillic++
		case unicode.Is(unicode.Thai, r):
			c.thai++
		case unicode.Is(unicode.Arabic, r):
			c.arabic++
		case unicode.Is(unicode.Greek, r):
			c.greek++
		}
	}
	return c
}
