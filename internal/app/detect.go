package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/unicode/norm"

	"horse.fit/easydict/internal/cli"
	"horse.fit/easydict/internal/langdetect"
	"horse.fit/easydict/internal/language"
	"horse.fit/easydict/internal/translation"
)

type detectReport struct {
	Text      string               `json:"text"`
	Signals   []signalView         `json:"signals"`
	Confirmed langdetect.Confirmed `json:"confirmed"`
}

type signalView struct {
	Detector   string  `json:"detector"`
	RawCode    string  `json:"raw_code,omitempty"`
	Language   string  `json:"language,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Scored     bool    `json:"scored"`
	Error      string  `json:"error,omitempty"`
}

func runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	detectors := fs.String("detectors", "", "Comma-separated detectors (default EASYDICT_DETECTORS)")
	timeout := fs.Duration("timeout", 10*time.Second, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text := strings.TrimSpace(norm.NFC.String(strings.Join(fs.Args(), " ")))
	if text == "" {
		fmt.Fprintln(os.Stderr, "detect requires text")
		printDetectUsage()
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if names := splitFlagList(*detectors); len(names) > 0 {
		cfg.Detectors = strings.Join(names, ",")
	}

	languages := language.Default()
	client := translation.NewHTTPClient(cfg.Proxy)
	detectorSet, err := buildDetectors(cfg, languages, client, translation.NewRegistry(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build detectors: %v\n", err)
		return 1
	}
	pool := langdetect.NewPool(logger, detectorSet...)
	arbitrator := langdetect.NewArbitrator(arbitrationPolicy(cfg), logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report := detectText(ctx, pool, arbitrator, text, cfg.FallbackSource)
	if outputFormat == outputFormatJSON {
		if err := printJSON(os.Stdout, report); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
			return 1
		}
		return 0
	}
	renderDetectReport(os.Stdout, report)
	return 0
}

// detectText records every signal the pool produces, then replays them to
// the arbitrator in arrival order.
func detectText(ctx context.Context, pool *langdetect.Pool, arbitrator *langdetect.Arbitrator, text, fallback string) detectReport {
	signals := pool.Detect(ctx, text, arbitrator.Deadline())

	var collected []langdetect.Signal
	for sig := range signals {
		collected = append(collected, sig)
	}

	replay := make(chan langdetect.Signal, len(collected))
	for _, sig := range collected {
		replay <- sig
	}
	close(replay)

	report := detectReport{
		Text:      text,
		Signals:   make([]signalView, 0, len(collected)),
		Confirmed: arbitrator.Arbitrate(ctx, replay, fallback),
	}
	for _, sig := range collected {
		view := signalView{
			Detector:   string(sig.Detector),
			RawCode:    sig.RawCode,
			Language:   sig.Language,
			Confidence: sig.Confidence,
			Scored:     sig.Scored,
		}
		if sig.Err != nil {
			view.Error = sig.Err.Error()
		}
		report.Signals = append(report.Signals, view)
	}
	return report
}

func renderDetectReport(w io.Writer, report detectReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DETECTOR\tCODE\tLANGUAGE\tCONFIDENCE\tERROR")
	for _, sig := range report.Signals {
		confidence := "-"
		if sig.Scored {
			confidence = fmt.Sprintf("%.2f", sig.Confidence)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", sig.Detector, dash(sig.RawCode), dash(sig.Language), confidence, dash(sig.Error))
	}
	_ = tw.Flush()

	c := report.Confirmed
	fmt.Fprintf(w, "\nconfirmed=%s method=%s detector=%s confidence=%.2f\n", c.Language, c.Method, dash(string(c.Detector)), c.Confidence)
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func printDetectUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  easydict detect [--detectors script,lingua,whatlang] [--format table|json] [--env .env] [--timeout 10s] <text>")
}
