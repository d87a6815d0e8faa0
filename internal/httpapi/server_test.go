package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horse.fit/easydict/internal/aggregate"
	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/language"
	"horse.fit/easydict/internal/query"
)

type submitCall struct {
	text   string
	source string
	target string
}

type fakeQueries struct {
	mu          sync.Mutex
	submits     []submitCall
	overrides   []string
	submitErr   error
	overrideErr error
	queryResult query.Snapshot
	queryErr    error
	current     query.Snapshot
	stream      []query.Snapshot
}

func (f *fakeQueries) Submit(_ context.Context, text, source, target string) (query.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, submitCall{text: text, source: source, target: target})
	if f.submitErr != nil {
		return query.Context{}, f.submitErr
	}
	return query.Context{Seq: uint64(len(f.submits)), ID: "q-1", Text: text, Source: "auto", Target: "zh-Hans"}, nil
}

func (f *fakeQueries) OverrideTarget(_ context.Context, target string) (query.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides = append(f.overrides, target)
	if f.overrideErr != nil {
		return query.Context{}, f.overrideErr
	}
	return query.Context{Seq: 7, Text: "hello", Source: "en", Target: target}, nil
}

func (f *fakeQueries) Query(_ context.Context, text, source, target string) (query.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, submitCall{text: text, source: source, target: target})
	return f.queryResult, f.queryErr
}

func (f *fakeQueries) Snapshot() query.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeQueries) Subscribe(context.Context) <-chan query.Snapshot {
	ch := make(chan query.Snapshot, len(f.stream))
	for _, snapshot := range f.stream {
		ch <- snapshot
	}
	close(ch)
	return ch
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
}

type snapshotView struct {
	Seq      uint64 `json:"seq"`
	Complete bool   `json:"complete"`
	Sections []struct {
		Kind     string `json:"kind"`
		Provider string `json:"provider"`
		Rows     []struct {
			Text string `json:"text"`
		} `json:"rows"`
	} `json:"sections"`
}

type validationData struct {
	ValidationErrors map[string]string `json:"validation_errors"`
}

func newTestServer(queries *fakeQueries, gatherer prometheus.Gatherer) *echo.Echo {
	return NewServer(queries, language.Default(), gatherer, zerolog.Nop(), Options{}).Handler()
}

func doRequest(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func completedSnapshot() query.Snapshot {
	return query.Snapshot{
		Seq:      3,
		Query:    query.Context{Seq: 3, Text: "hello", Source: "auto", Target: "zh-Hans"},
		Target:   "zh-Hans",
		Complete: true,
		Sections: []aggregate.Section{{
			Kind:     aggregate.KindTranslation,
			Provider: backend.Google,
			Rows:     []aggregate.Row{{Text: "你好"}},
		}},
		Notices: []aggregate.Notice{},
	}
}

func TestSubmitQueryAccepted(t *testing.T) {
	queries := &fakeQueries{}
	e := newTestServer(queries, nil)

	rec, env := doRequest(t, e, http.MethodPost, "/api/v1/queries", `{"text":"hello","target":"ja"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "success", env.Status)

	var data struct {
		Query query.Context `json:"query"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, uint64(1), data.Query.Seq)
	assert.Equal(t, "hello", data.Query.Text)
	require.Len(t, queries.submits, 1)
	assert.Equal(t, submitCall{text: "hello", target: "ja"}, queries.submits[0])
}

func TestSubmitQueryWaitReturnsSnapshot(t *testing.T) {
	queries := &fakeQueries{queryResult: completedSnapshot()}
	e := newTestServer(queries, nil)

	rec, env := doRequest(t, e, http.MethodPost, "/api/v1/queries", `{"text":"hello","wait":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot snapshotView
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.True(t, snapshot.Complete)
	require.Len(t, snapshot.Sections, 1)
	assert.Equal(t, "translation", snapshot.Sections[0].Kind)
	assert.Equal(t, "google", snapshot.Sections[0].Provider)
	assert.Equal(t, "你好", snapshot.Sections[0].Rows[0].Text)
}

func TestSubmitQueryWaitTimeoutReturnsPartialSnapshot(t *testing.T) {
	partial := completedSnapshot()
	partial.Complete = false
	partial.Pending = []backend.ID{backend.Baidu}
	queries := &fakeQueries{queryResult: partial, queryErr: context.DeadlineExceeded}
	e := newTestServer(queries, nil)

	rec, env := doRequest(t, e, http.MethodPost, "/api/v1/queries", `{"text":"hello","wait":true}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "success", env.Status)
	assert.Contains(t, string(env.Data), `"pending":["baidu"]`)
}

func TestSubmitQuerySuperseded(t *testing.T) {
	newer := completedSnapshot()
	newer.Seq = 4
	queries := &fakeQueries{queryResult: newer, queryErr: query.ErrSuperseded}
	e := newTestServer(queries, nil)

	rec, env := doRequest(t, e, http.MethodPost, "/api/v1/queries", `{"text":"hello","wait":true}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "fail", env.Status)
	assert.Contains(t, env.Message, "superseded")
}

func TestSubmitQueryValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "empty body", body: " ", field: "body"},
		{name: "not json", body: `{"text":`, field: "body"},
		{name: "trailing content", body: `{"text":"a"} {}`, field: "body"},
		{name: "missing text", body: `{"target":"en"}`, field: "body"},
		{name: "empty text", body: `{"text":""}`, field: "text"},
		{name: "wrong type", body: `{"text":42}`, field: "text"},
		{name: "unknown field", body: `{"text":"a","engine":"google"}`, field: "body"},
		{name: "wait not bool", body: `{"text":"a","wait":"yes"}`, field: "wait"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			queries := &fakeQueries{}
			e := newTestServer(queries, nil)

			rec, env := doRequest(t, e, http.MethodPost, "/api/v1/queries", tc.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "fail", env.Status)
			var data validationData
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Contains(t, data.ValidationErrors, tc.field)
			assert.Empty(t, queries.submits)
		})
	}
}

func TestSubmitQueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{name: "blank after normalization", err: query.ErrEmptyText, status: http.StatusBadRequest, field: "text"},
		{name: "auto target", err: query.ErrAutoTarget, status: http.StatusBadRequest, field: "target"},
		{name: "unknown language", err: fmt.Errorf("resolve target language: %w", language.ErrNotFound), status: http.StatusBadRequest, field: "language"},
		{name: "not running", err: query.ErrNotRunning, status: http.StatusServiceUnavailable},
		{name: "unexpected", err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer(&fakeQueries{submitErr: tc.err}, nil)

			rec, env := doRequest(t, e, http.MethodPost, "/api/v1/queries", `{"text":"hello"}`)

			require.Equal(t, tc.status, rec.Code)
			if tc.field != "" {
				var data validationData
				require.NoError(t, json.Unmarshal(env.Data, &data))
				assert.Contains(t, data.ValidationErrors, tc.field)
			}
			if tc.status >= 500 {
				assert.Equal(t, "error", env.Status)
				assert.Equal(t, tc.status, env.Code)
			}
		})
	}
}

func TestCurrentQuery(t *testing.T) {
	queries := &fakeQueries{}
	e := newTestServer(queries, nil)

	rec, env := doRequest(t, e, http.MethodGet, "/api/v1/queries/current", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "fail", env.Status)

	queries.current = completedSnapshot()
	rec, env = doRequest(t, e, http.MethodGet, "/api/v1/queries/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot snapshotView
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, uint64(3), snapshot.Seq)
}

func TestOverrideTarget(t *testing.T) {
	queries := &fakeQueries{}
	e := newTestServer(queries, nil)

	rec, env := doRequest(t, e, http.MethodPut, "/api/v1/queries/current/target", `{"target":"fr"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, string(env.Data), `"target":"fr"`)
	assert.Equal(t, []string{"fr"}, queries.overrides)
}

func TestOverrideTargetErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "missing target", body: `{}`, status: http.StatusBadRequest},
		{name: "no query yet", body: `{"target":"fr"}`, err: query.ErrNoQuery, status: http.StatusNotFound},
		{name: "detection pending", body: `{"target":"fr"}`, err: query.ErrUndetected, status: http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer(&fakeQueries{overrideErr: tc.err}, nil)
			rec, env := doRequest(t, e, http.MethodPut, "/api/v1/queries/current/target", tc.body)
			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "fail", env.Status)
		})
	}
}

func TestLanguages(t *testing.T) {
	e := newTestServer(&fakeQueries{}, nil)

	rec, env := doRequest(t, e, http.MethodGet, "/api/v1/languages", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Items []language.Option `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Items, len(language.Default().Options()))
}

func TestStreamWritesSnapshotEvents(t *testing.T) {
	first := completedSnapshot()
	first.Seq = 1
	first.Complete = false
	second := completedSnapshot()
	second.Seq = 2
	e := newTestServer(&fakeQueries{stream: []query.Snapshot{first, second}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queries/stream", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	body := rec.Body.String()
	assert.Contains(t, body, "id: 1\nevent: snapshot\ndata: {")
	assert.Contains(t, body, "id: 2\nevent: snapshot\ndata: {")
	assert.Less(t, strings.Index(body, "id: 1\n"), strings.Index(body, "id: 2\n"))
}

func TestHealthAndMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "easydict_test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()
	e := newTestServer(&fakeQueries{current: completedSnapshot()}, registry)

	rec, env := doRequest(t, e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"service":"easydict"`)
	assert.Contains(t, string(env.Data), `"seq":3`)

	rec, _ = doRequest(t, e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "easydict_test_total 1")
}

func TestUnknownRouteUsesJSendEnvelope(t *testing.T) {
	e := newTestServer(&fakeQueries{}, nil)

	rec, env := doRequest(t, e, http.MethodGet, "/api/v1/nope", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "fail", env.Status)
}
