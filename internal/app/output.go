package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"horse.fit/easydict/internal/aggregate"
	"horse.fit/easydict/internal/language"
	"horse.fit/easydict/internal/query"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}

func renderSnapshot(w io.Writer, languages *language.Registry, snapshot query.Snapshot) {
	source := snapshot.Query.Source
	if snapshot.Confirmed != nil {
		source = snapshot.Confirmed.Language
	}
	target := snapshot.Target
	if target == "" {
		target = snapshot.Query.Target
	}
	fmt.Fprintf(w, "%s  [%s -> %s]\n", snapshot.Query.Text, languageLabel(languages, source), languageLabel(languages, target))
	if c := snapshot.Confirmed; c != nil {
		detector := string(c.Detector)
		if detector == "" {
			detector = "-"
		}
		fmt.Fprintf(w, "detected %s by %s (%s, %.2f)\n", c.Language, detector, c.Method, c.Confidence)
	}

	for _, section := range snapshot.Sections {
		fmt.Fprintf(w, "\n%s · %s\n", section.Badge.Label, section.Kind)
		for _, row := range section.Rows {
			fmt.Fprintf(w, "  %s\n", formatRow(section.Kind, row))
		}
	}

	if len(snapshot.Notices) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, notice := range snapshot.Notices {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", notice.Badge.Label, notice.State, notice.Message)
		}
		_ = tw.Flush()
	}
	for _, pending := range snapshot.Pending {
		fmt.Fprintf(w, "%s\tno answer\n", pending)
	}
}

func formatRow(kind aggregate.SectionKind, row aggregate.Row) string {
	switch kind {
	case aggregate.KindDictionaryEntry:
		parts := []string{row.Text}
		if row.Phonetic != "" {
			parts = append(parts, "/"+row.Phonetic+"/")
		}
		if len(row.ExamTypes) > 0 {
			parts = append(parts, strings.Join(row.ExamTypes, " "))
		}
		return strings.Join(parts, "  ")
	case aggregate.KindForms:
		return row.Label + ": " + row.Text
	case aggregate.KindWebTranslation, aggregate.KindWebPhrase:
		return row.Label + ": " + strings.Join(row.Values, "; ")
	default:
		return row.Text
	}
}

func languageLabel(languages *language.Registry, id string) string {
	if record, ok := languages.Lookup(id); ok && record.Title != "" {
		return record.Title
	}
	return id
}
