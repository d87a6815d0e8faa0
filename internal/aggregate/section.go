package aggregate

import (
	"fmt"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/errkind"
	"horse.fit/easydict/internal/translation"
)

// SectionKind is the category of a display section. The declaration order
// is the display order within one provider's block.
type SectionKind int

const (
	KindDictionaryEntry SectionKind = iota
	KindTranslation
	KindExplanation
	KindForms
	KindWebTranslation
	KindWebPhrase
)

var sectionKindNames = [...]string{
	KindDictionaryEntry: "dictionary-entry",
	KindTranslation:     "translation",
	KindExplanation:     "explanation",
	KindForms:           "forms",
	KindWebTranslation:  "web-translation",
	KindWebPhrase:       "web-phrase",
}

func (k SectionKind) String() string {
	if int(k) >= 0 && int(k) < len(sectionKindNames) {
		return sectionKindNames[k]
	}
	return fmt.Sprintf("SectionKind(%d)", int(k))
}

func (k SectionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k SectionKind) web() bool {
	return k == KindWebTranslation || k == KindWebPhrase
}

// Row is one display line. Label is a part of speech, form name or web
// phrase key depending on the section kind.
type Row struct {
	Text      string   `json:"text,omitempty"`
	Label     string   `json:"label,omitempty"`
	Values    []string `json:"values,omitempty"`
	Phonetic  string   `json:"phonetic,omitempty"`
	ExamTypes []string `json:"exam_types,omitempty"`
}

// Section is an ordered group of rows from one provider.
type Section struct {
	Kind     SectionKind   `json:"kind"`
	Provider backend.ID    `json:"provider"`
	Badge    backend.Badge `json:"badge"`
	Rows     []Row         `json:"rows"`
}

// Notice reports a provider that answered without a usable result.
type Notice struct {
	Provider backend.ID        `json:"provider"`
	Badge    backend.Badge     `json:"badge"`
	State    translation.State `json:"state"`
	Kind     errkind.Kind      `json:"kind"`
	Code     string            `json:"code,omitempty"`
	Message  string            `json:"message"`
}

// sectionsFor splits one successful result into its sections, in kind order.
func sectionsFor(outcome translation.Outcome, query string) []Section {
	result := outcome.Result
	if result == nil {
		return nil
	}
	badge := outcome.Badge()
	newSection := func(kind SectionKind, rows []Row) Section {
		return Section{Kind: kind, Provider: outcome.Provider, Badge: badge, Rows: rows}
	}

	var sections []Section
	if result.Phonetic != "" || len(result.ExamTypes) > 0 {
		sections = append(sections, newSection(KindDictionaryEntry, []Row{{
			Text:      query,
			Phonetic:  result.Phonetic,
			ExamTypes: result.ExamTypes,
		}}))
	}
	if len(result.Translations) > 0 {
		rows := make([]Row, 0, len(result.Translations))
		for _, text := range result.Translations {
			rows = append(rows, Row{Text: text})
		}
		sections = append(sections, newSection(KindTranslation, rows))
	}
	if len(result.Explanations) > 0 {
		rows := make([]Row, 0, len(result.Explanations))
		for _, text := range result.Explanations {
			rows = append(rows, Row{Text: text})
		}
		sections = append(sections, newSection(KindExplanation, rows))
	}
	if len(result.Forms) > 0 {
		rows := make([]Row, 0, len(result.Forms))
		for _, form := range result.Forms {
			rows = append(rows, Row{Label: form.Name, Text: form.Value})
		}
		sections = append(sections, newSection(KindForms, rows))
	}
	if web := result.WebTranslation; web != nil && len(web.Values) > 0 {
		sections = append(sections, newSection(KindWebTranslation, []Row{{Label: web.Key, Values: web.Values}}))
	}
	if len(result.WebPhrases) > 0 {
		rows := make([]Row, 0, len(result.WebPhrases))
		for _, phrase := range result.WebPhrases {
			rows = append(rows, Row{Label: phrase.Key, Values: phrase.Values})
		}
		sections = append(sections, newSection(KindWebPhrase, rows))
	}
	return sections
}
