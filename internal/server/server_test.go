package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/evaluator"
	"github.com/njchilds90/gocalc/internal/metrics"
)

func newTestServer(t *testing.T, mutate ...func(*config.Config)) (*Server, *metrics.Metrics) {
	t.Helper()
	cfg := config.DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	m := metrics.New()
	s := New(cfg, evaluator.New(zerolog.Nop()), m, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s, m
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEvaluate(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/v1/evaluate",
		`{"operation":"definite-integral","expression":"1/x**2","lower":"1","upper":"oo"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got evaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.OK)
	assert.Equal(t, evaluator.DefiniteIntegral, got.Operation)
	assert.Equal(t, "∫_1^∞ 1/x^2 dx = 1", got.Text)
	assert.NotEmpty(t, got.Typeset)
}

func TestEvaluate_ComputationErrorIsStill200(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/v1/evaluate", `{"operation":"simplify","expression":"2x+"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got evaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.OK)
	assert.Empty(t, got.Typeset)
	assert.Contains(t, got.Text, "computation error:")
}

func TestEvaluate_ConfiguredDefaults(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.Variable = "t" })
	rec := do(t, s.Handler(), http.MethodPost, "/v1/evaluate", `{"operation":"diff","expression":"t**3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"text":"d/dt (t^3) = 3*t^2"`)
}

func TestEvaluate_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty expression", `{"operation":"limit","expression":"  "}`, "expression is empty"},
		{"missing operation", `{"expression":"x"}`, "unknown operation"},
		{"unknown operation", `{"operation":"solve","expression":"x"}`, "unknown operation"},
		{"unknown field", `{"operation":"limit","expression":"x","foo":1}`, "invalid request body"},
		{"not json", `operation=limit`, "invalid request body"},
	}
	s, _ := newTestServer(t)
	h := s.Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/evaluate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestRender(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/v1/render", `{"expression":"sqrt(x)"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got evaluator.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, evaluator.Result{Typeset: `\sqrt{x}`, Text: "expression: sqrt(x)"}, got)

	rec = do(t, h, http.MethodPost, "/v1/render", `{"expression":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/v1/report", `{"operation":"integrate","expression":"cos(x)"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, `attachment; filename="gocalc-indefinite-integral.txt"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "Computed at: 2024-01-02 03:04:05\n"), body)
	assert.Contains(t, body, "Operation: indefinite-integral\n")
	assert.Contains(t, body, "∫ cos(x) dx = sin(x)")
}

func TestOperations(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/v1/operations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []operationInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 5)
	assert.Equal(t, operationInfo{Name: "limit", Params: []string{"variable", "point"}}, got[3])
	assert.Equal(t, []string{}, got[4].Params)
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	do(t, h, http.MethodPost, "/v1/evaluate", `{"operation":"limit","expression":"sin(x)/x"}`)
	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gocalc_evaluations_total{operation="limit",outcome="success"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	s := New(config.DefaultConfig(), evaluator.New(zerolog.Nop()), nil, zerolog.Nop())
	rec := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s.Handler(), http.MethodPost, "/v1/evaluate", `{"operation":"simplify","expression":"x + x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.CORSOrigins = []string{"https://calc.example"} })
	req := httptest.NewRequest(http.MethodOptions, "/v1/evaluate", nil)
	req.Header.Set("Origin", "https://calc.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://calc.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestEvaluate_InFlightCap(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.MaxInFlight = 1 })
	h := s.Handler()
	body := `{"operation":"simplify","expression":"x + x"}`

	// An abandoned evaluation still holds its slot.
	s.inflight <- struct{}{}
	rec := do(t, h, http.MethodPost, "/v1/evaluate", body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too many evaluations")

	<-s.inflight
	rec = do(t, h, http.MethodPost, "/v1/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, s.inflight, "slot should be released after the evaluation")
}
