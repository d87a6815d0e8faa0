package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"horse.fit/easydict/internal/language"
	"horse.fit/easydict/internal/query"
)

// QueryService is the part of the query orchestrator the HTTP surface uses.
type QueryService interface {
	Submit(ctx context.Context, text, source, target string) (query.Context, error)
	OverrideTarget(ctx context.Context, target string) (query.Context, error)
	Query(ctx context.Context, text, source, target string) (query.Snapshot, error)
	Snapshot() query.Snapshot
	Subscribe(ctx context.Context) <-chan query.Snapshot
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// WaitTimeout bounds how long a waiting POST /api/v1/queries blocks.
	WaitTimeout  time.Duration
	AllowOrigins []string
}

type Server struct {
	queries   QueryService
	languages *language.Registry
	gatherer  prometheus.Gatherer
	logger    zerolog.Logger
	opts      Options
}

func NewServer(
	queries QueryService,
	languages *language.Registry,
	gatherer prometheus.Gatherer,
	logger zerolog.Logger,
	opts Options,
) *Server {
	if languages == nil {
		languages = language.Default()
	}
	return &Server{
		queries:   queries,
		languages: languages,
		gatherer:  gatherer,
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

func (o Options) withDefaults() Options {
	o.Host = strings.TrimSpace(o.Host)
	if o.Host == "" {
		o.Host = "127.0.0.1"
	}
	if o.Port <= 0 {
		o.Port = 8765
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 30 * time.Second
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = 15 * time.Second
	}
	if len(o.AllowOrigins) == 0 {
		o.AllowOrigins = []string{"*"}
	}
	return o
}

// Handler builds the echo router with every route registered.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Last-Event-ID"},
		MaxAge:       3600,
	}))
	e.Use(requestLogger(s.logger))

	e.GET("/healthz", s.handleHealth)
	if s.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1")
	api.GET("/languages", s.handleLanguages)
	api.POST("/queries", s.handleSubmitQuery)
	api.GET("/queries/current", s.handleCurrentQuery)
	api.PUT("/queries/current/target", s.handleOverrideTarget)
	api.GET("/queries/stream", s.handleStream)

	return e
}

// requestLogger logs client errors at warn, server errors at error and
// everything else at debug.
func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			var event *zerolog.Event
			switch {
			case v.Status >= http.StatusInternalServerError:
				event = logger.Error()
			case v.Status >= http.StatusBadRequest || v.Error != nil:
				event = logger.Warn()
			default:
				event = logger.Debug()
			}
			event.
				Err(v.Error).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	})
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.queries == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("easydict server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("easydict server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}
