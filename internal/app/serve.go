package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"horse.fit/easydict/internal/cli"
	"horse.fit/easydict/internal/httpapi"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "127.0.0.1", "Host interface to bind")
	port := fs.Int("port", 8765, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	waitTimeout := fs.Duration("wait-timeout", 15*time.Second, "Longest a waiting query request blocks")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	eng, err := newEngine(ctx, cfg, logger, engineOptions{withStore: true})
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to build query engine")
		fmt.Fprintf(os.Stderr, "Failed to start query engine: %v\n", err)
		return 1
	}
	defer eng.Close()

	if eng.store != nil {
		pruned, err := eng.store.Prune(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("prune expired cache entries failed")
		} else {
			logger.Info().Int64("pruned", pruned).Msg("pruned expired cache entries")
		}
	}

	loopDone := make(chan error, 1)
	go func() { loopDone <- eng.orchestrator.Run(ctx) }()

	logger.Info().
		Strs("providers", eng.registry.ProviderNames()).
		Int("detectors", eng.pool.Size()).
		Bool("result_store", eng.store != nil).
		Msg("query engine ready")

	srv := httpapi.NewServer(eng.orchestrator, eng.languages, eng.prometheus, logger, httpapi.Options{
		Host:            *host,
		Port:            *port,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
		WaitTimeout:     *waitTimeout,
		AllowOrigins:    cfg.CORSAllowedOriginsList(),
	})

	serveErr := srv.Start(ctx)
	cancel()
	<-loopDone

	if serveErr != nil {
		logger.Error().Err(serveErr).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", serveErr)
		return 1
	}
	return 0
}
