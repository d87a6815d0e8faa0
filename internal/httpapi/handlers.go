package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"horse.fit/easydict/internal/language"
	"horse.fit/easydict/internal/query"
)

const streamKeepAlive = 20 * time.Second

func (s *Server) handleHealth(c echo.Context) error {
	snapshot := s.queries.Snapshot()
	return success(c, map[string]any{
		"service": "easydict",
		"time":    time.Now().UTC(),
		"seq":     snapshot.Seq,
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, map[string]any{
		"items": s.languages.Options(),
	})
}

func (s *Server) handleSubmitQuery(c echo.Context) error {
	var req queryRequest
	fieldErrors, err := decodeValidated(c.Request().Body, queryRequestSchema, &req)
	if err != nil {
		s.logger.Error().Err(err).Msg("load query request schema failed")
		return internalError(c, "Failed to validate request")
	}
	if fieldErrors != nil {
		return failValidation(c, fieldErrors)
	}

	if !req.Wait {
		submitted, err := s.queries.Submit(c.Request().Context(), req.Text, req.Source, req.Target)
		if err != nil {
			return s.queryError(c, err)
		}
		return successWithStatus(c, http.StatusAccepted, map[string]any{
			"query": submitted,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.opts.WaitTimeout)
	defer cancel()
	snapshot, err := s.queries.Query(ctx, req.Text, req.Source, req.Target)
	switch {
	case err == nil:
		return success(c, snapshot)
	case errors.Is(err, context.DeadlineExceeded) && snapshot.Seq > 0:
		return successWithStatus(c, http.StatusAccepted, snapshot)
	case errors.Is(err, query.ErrSuperseded):
		return failConflict(c, "Query was superseded by a newer query", snapshot)
	default:
		return s.queryError(c, err)
	}
}

func (s *Server) handleCurrentQuery(c echo.Context) error {
	snapshot := s.queries.Snapshot()
	if snapshot.Seq == 0 {
		return failNotFound(c, "No query has been submitted")
	}
	return success(c, snapshot)
}

func (s *Server) handleOverrideTarget(c echo.Context) error {
	var req targetRequest
	fieldErrors, err := decodeValidated(c.Request().Body, targetRequestSchema, &req)
	if err != nil {
		s.logger.Error().Err(err).Msg("load target request schema failed")
		return internalError(c, "Failed to validate request")
	}
	if fieldErrors != nil {
		return failValidation(c, fieldErrors)
	}

	overridden, err := s.queries.OverrideTarget(c.Request().Context(), req.Target)
	if err != nil {
		return s.queryError(c, err)
	}
	return successWithStatus(c, http.StatusAccepted, map[string]any{
		"query": overridden,
	})
}

// handleStream writes every published snapshot as a server-sent event until
// the client disconnects.
func (s *Server) handleStream(c echo.Context) error {
	ctx := c.Request().Context()
	updates := s.queries.Subscribe(ctx)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_ = http.NewResponseController(w.Writer).SetWriteDeadline(time.Time{})
	w.Flush()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case snapshot, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeSnapshotEvent(w, snapshot); err != nil {
				s.logger.Debug().Err(err).Msg("stream client went away")
				return nil
			}
			w.Flush()
		}
	}
}

func writeSnapshotEvent(w *echo.Response, snapshot query.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snapshot.Seq, payload)
	return err
}

func (s *Server) queryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, query.ErrEmptyText):
		return failValidation(c, map[string]string{"text": "must not be empty"})
	case errors.Is(err, query.ErrAutoTarget):
		return failValidation(c, map[string]string{"target": "must name a language"})
	case errors.Is(err, language.ErrNotFound):
		return failValidation(c, map[string]string{"language": err.Error()})
	case errors.Is(err, query.ErrNoQuery):
		return failNotFound(c, "No query has been submitted")
	case errors.Is(err, query.ErrUndetected):
		return failConflict(c, "Source language is not confirmed yet", nil)
	case errors.Is(err, query.ErrNotRunning):
		return errorWithStatus(c, http.StatusServiceUnavailable, "Query engine is not running")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorWithStatus(c, http.StatusServiceUnavailable, "Request was canceled")
	default:
		s.logger.Error().Err(err).Msg("query request failed")
		return internalError(c, "Failed to run query")
	}
}
