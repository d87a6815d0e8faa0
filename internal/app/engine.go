package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/cli"
	"horse.fit/easydict/internal/config"
	"horse.fit/easydict/internal/langdetect"
	"horse.fit/easydict/internal/language"
	"horse.fit/easydict/internal/logging"
	"horse.fit/easydict/internal/metrics"
	"horse.fit/easydict/internal/query"
	"horse.fit/easydict/internal/store"
	"horse.fit/easydict/internal/translation"
)

type engineOptions struct {
	// providers overrides EASYDICT_PROVIDERS when non-empty.
	providers []string
	withStore bool
}

// engine holds every long-lived component a command needs.
type engine struct {
	cfg          *config.Config
	logger       zerolog.Logger
	languages    *language.Registry
	client       *http.Client
	registry     *translation.Registry
	pool         *langdetect.Pool
	arbitrator   *langdetect.Arbitrator
	dispatcher   *translation.Dispatcher
	orchestrator *query.Orchestrator
	metrics      *metrics.QueryMetrics
	prometheus   *prometheus.Registry
	store        *store.Store
}

// loadRuntime loads the .env file, configuration and logger in the order
// every command shares.
func loadRuntime(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func newEngine(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts engineOptions) (*engine, error) {
	client := translation.NewHTTPClient(cfg.Proxy)
	e := &engine{
		cfg:        cfg,
		logger:     logger,
		languages:  language.Default(),
		client:     client,
		prometheus: prometheus.NewRegistry(),
	}

	var err error
	e.metrics, err = metrics.NewQueryMetrics(e.prometheus)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	registry, err := translation.NewRegistryFromConfig(cfg, e.languages, client, logger)
	if err != nil {
		return nil, fmt.Errorf("build provider registry: %w", err)
	}
	if len(opts.providers) > 0 {
		registry, err = registry.Only(opts.providers...)
		if err != nil {
			return nil, fmt.Errorf("select providers: %w", err)
		}
	}
	e.registry = registry

	detectors, err := buildDetectors(cfg, e.languages, client, registry, logger)
	if err != nil {
		return nil, err
	}
	e.pool = langdetect.NewPool(logger, detectors...)
	e.arbitrator = langdetect.NewArbitrator(arbitrationPolicy(cfg), logger)

	dispatcherOpts := translation.DispatcherOptions{
		Timeout:       cfg.ProviderTimeout,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.RateBurst,
		Observer:      e.metrics,
	}
	if opts.withStore && strings.TrimSpace(cfg.DatabaseURL) != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		e.store, err = store.Open(dbCtx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open result store: %w", err)
		}
		dispatcherOpts.Store = e.store
	}
	e.dispatcher = translation.NewDispatcher(registry, e.languages, logger, dispatcherOpts)

	e.orchestrator = query.NewOrchestrator(e.languages, e.pool, e.arbitrator, e.dispatcher, logger, query.Options{
		DefaultSource:  cfg.DefaultSource,
		DefaultTarget:  cfg.DefaultTarget,
		FallbackSource: cfg.FallbackSource,
		Observer:       e.metrics,
	})
	return e, nil
}

func (e *engine) Close() {
	if e == nil || e.store == nil {
		return
	}
	if err := e.store.Close(); err != nil {
		e.logger.Warn().Err(err).Msg("close result store failed")
	}
}

// buildDetectors turns EASYDICT_DETECTORS into detector instances. Remote
// detectors reuse the registered provider when there is one.
func buildDetectors(
	cfg *config.Config,
	languages *language.Registry,
	client *http.Client,
	registry *translation.Registry,
	logger zerolog.Logger,
) ([]langdetect.Detector, error) {
	detectors := make([]langdetect.Detector, 0, len(cfg.DetectorList()))
	for _, name := range cfg.DetectorList() {
		id := backend.Parse(name)
		switch id {
		case backend.Script:
			detectors = append(detectors, langdetect.NewScriptDetector(languages))
		case backend.Lingua:
			detectors = append(detectors, langdetect.NewLinguaDetector(languages))
		case backend.Whatlang:
			detectors = append(detectors, langdetect.NewWhatlangDetector(languages))
		case backend.Baidu, backend.Google, backend.Tencent:
			provider, err := registry.Provider(string(id))
			if errors.Is(err, translation.ErrProviderNotRegistered) {
				provider, err = translation.NewProvider(id, cfg, languages, client)
			}
			if errors.Is(err, translation.ErrMissingCredentials) {
				logger.Warn().Str("detector", string(id)).Msg("detector credentials are not configured; skipping")
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("build %s detector: %w", id, err)
			}
			identifier, ok := provider.(langdetect.Identifier)
			if !ok {
				return nil, fmt.Errorf("%s cannot detect languages", id)
			}
			detectors = append(detectors, langdetect.NewRemoteDetector(identifier, languages, cfg.DetectCacheTTL))
		default:
			return nil, fmt.Errorf("unknown detector %q", name)
		}
	}
	if len(detectors) == 0 {
		return nil, fmt.Errorf("no language detectors are configured (requested: %s)", cfg.Detectors)
	}
	return detectors, nil
}

func arbitrationPolicy(cfg *config.Config) langdetect.Policy {
	policy := langdetect.DefaultPolicy()
	policy.Threshold = cfg.ConfidenceThreshold
	policy.Deadline = cfg.DetectDeadline
	return policy
}
