package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/easydict/internal/cli"
	"horse.fit/easydict/internal/query"
)

func runQuery(args []string) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	from := fs.String("from", "", "Source language, or auto to detect (default EASYDICT_DEFAULT_SOURCE)")
	to := fs.String("to", "", "Target language (default EASYDICT_DEFAULT_TARGET)")
	providers := fs.String("providers", "", "Comma-separated providers to query, in priority order (default EASYDICT_PROVIDERS)")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	noCache := fs.Bool("no-cache", false, "Skip the result store even when DATABASE_URL is set")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "query requires text")
		printQueryUsage()
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *timeout <= 0 {
		fmt.Fprintln(os.Stderr, "--timeout must be > 0")
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	eng, err := newEngine(ctx, cfg, logger, engineOptions{
		providers: splitFlagList(*providers),
		withStore: !*noCache,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start query engine: %v\n", err)
		return 1
	}
	defer eng.Close()

	snapshot, err := runOneQuery(ctx, eng.orchestrator, text, *from, *to)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error().Err(err).Msg("query failed")
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: timed out after %s; showing partial results\n", *timeout)
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(os.Stdout, snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
			return 1
		}
		return 0
	}
	renderSnapshot(os.Stdout, eng.languages, snapshot)
	return 0
}

// runOneQuery runs the orchestrator loop for the lifetime of one query.
func runOneQuery(ctx context.Context, orchestrator *query.Orchestrator, text, source, target string) (query.Snapshot, error) {
	loopCtx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- orchestrator.Run(loopCtx) }()
	defer func() {
		stop()
		<-done
	}()

	select {
	case <-orchestrator.Ready():
	case <-ctx.Done():
		return query.Snapshot{}, ctx.Err()
	}
	return orchestrator.Query(ctx, text, source, target)
}

func splitFlagList(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if value := strings.ToLower(strings.TrimSpace(part)); value != "" {
			values = append(values, value)
		}
	}
	return values
}

func printQueryUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  easydict query [--from auto] [--to zh-Hans] [--providers youdao,google] [--format table|json] [--no-cache] [--env .env] [--timeout 30s] <text>")
}
