package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/language"
)

var languageColumns = []backend.ID{
	backend.Youdao,
	backend.Baidu,
	backend.Tencent,
	backend.Caiyun,
	backend.Google,
}

func runLanguages(args []string) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	format := fs.String("format", outputFormatTable, "Output format: table or json")
	resolve := fs.String("resolve", "", "Resolve a free-form language tag (for example zh-TW or pt_BR) and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	registry := language.Default()
	if tag := strings.TrimSpace(*resolve); tag != "" {
		id, err := registry.Resolve(tag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot resolve %q: %v\n", tag, err)
			return 1
		}
		fmt.Println(id)
		return 0
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(os.Stdout, map[string]any{"items": registry.Options()}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode languages: %v\n", err)
			return 1
		}
		return 0
	}
	renderLanguages(os.Stdout, registry)
	return 0
}

func renderLanguages(w io.Writer, registry *language.Registry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := []string{"ID", "NAME", "CHINESE"}
	for _, id := range languageColumns {
		header = append(header, strings.ToUpper(string(id)))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, id := range registry.IDs() {
		record, _ := registry.Lookup(id)
		cols := []string{record.ID, record.Title, dash(record.ChineseTitle)}
		for _, b := range languageColumns {
			code, _ := registry.CodeFor(id, b)
			cols = append(cols, dash(code))
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	_ = tw.Flush()
}
