package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cabpool/cabpool-backend/config"
	"github.com/cabpool/cabpool-backend/handlers"
	"github.com/cabpool/cabpool-backend/internal/store/sqlite"
	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/middleware"
	"github.com/cabpool/cabpool-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:5173"

func init() {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  *sqlite.Store
}

func newTestServer(t *testing.T, opts ...func(*Dependencies)) *testServer {
	t.Helper()

	s, err := sqlite.Open(sqlite.InMemory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{
			Environment:    config.EnvDevelopment,
			AllowedOrigins: []string{testOrigin},
			MaxBodyBytes:   4096,
			Version:        "test",
		},
		Feedback: config.FeedbackConfig{DefaultLimit: 10, MaxLimit: 100},
	}

	reg := prometheus.NewRegistry()
	metrics := services.NewSubmissionMetrics(reg)

	deps := Dependencies{
		Config:              cfg,
		RegistrationHandler: handlers.NewRegistrationHandler(services.NewRegistrationService(s, nil, metrics)),
		FeedbackHandler:     handlers.NewFeedbackHandler(services.NewFeedbackService(s, cfg.Feedback, metrics)),
		StatsHandler:        handlers.NewStatsHandler(services.NewStatsService(s)),
		HealthHandler:       handlers.NewHealthHandler(services.NewHealthService(s, nil, cfg.Server.Version)),
		HTTPMetrics:         middleware.NewHTTPMetrics(reg),
		Gatherer:            reg,
		Logger:              logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &testServer{router: SetupRouter(deps), store: s}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Reader
	switch b := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case string:
		buf = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func registration(email string) map[string]any {
	return map[string]any{
		"name":         "Asha",
		"email":        email,
		"phone":        "+91 98765 43210",
		"pickup_point": "Koramangala",
		"drop_point":   "Whitefield",
	}
}

func feedback(name, comment string) map[string]any {
	return map[string]any{"name": name, "comment": comment}
}

func TestRegisterThenDuplicate(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/register", registration("asha@example.com"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, services.MsgRegistrationCreated, body["message"])
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "asha@example.com", data["email"])

	w = ts.do(t, http.MethodPost, "/api/register", registration("asha@example.com"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, map[string]any{"success": false, "error": services.MsgRegistrationDuplicate}, decode(t, w))
}

func TestRegisterEmailCaseInsensitive(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/register", registration("foo@bar.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/api/register", registration("Foo@Bar.COM"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	missingPickup := registration("a@b.co")
	delete(missingPickup, "pickup_point")
	blankName := registration("a@b.co")
	blankName["name"] = "   "

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"missing pickup point", missingPickup, services.MsgRegistrationRequired},
		{"blank name", blankName, services.MsgRegistrationRequired},
		{"invalid email", registration("not-an-email"), services.MsgRegistrationEmail},
		{"malformed json", `{"name":`, middleware.MsgInvalidBody},
		{"empty body", "", services.MsgRegistrationRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, decode(t, w)["error"])
		})
	}

	w := ts.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 0, stats["totalRegistrations"])
}

func TestFeedbackCommentBoundaries(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		length int
		status int
	}{
		{9, http.StatusBadRequest},
		{10, http.StatusCreated},
		{1000, http.StatusCreated},
		{1001, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d characters", tt.length), func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/feedback", feedback("Ravi", strings.Repeat("x", tt.length)))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := ts.do(t, http.MethodGet, "/api/feedback", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 2)
}

func TestListFeedbackLimitAndOrder(t *testing.T) {
	ts := newTestServer(t)

	for i := 1; i <= 5; i++ {
		w := ts.do(t, http.MethodPost, "/api/feedback", feedback(fmt.Sprintf("user-%d", i), "a useful comment"))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := ts.do(t, http.MethodGet, "/api/feedback?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	items := body["data"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "user-5", items[0].(map[string]any)["name"])
	assert.Equal(t, "user-4", items[1].(map[string]any)["name"])

	w = ts.do(t, http.MethodGet, "/api/feedback?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, services.MsgInvalidLimit, decode(t, w)["error"])
}

func TestListFeedbackEmpty(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/feedback", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
}

func TestStatsCounts(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 3; i++ {
		w := ts.do(t, http.MethodPost, "/api/register", registration(fmt.Sprintf("rider%d@example.com", i)))
		require.Equal(t, http.StatusCreated, w.Code)
	}
	for i := 0; i < 2; i++ {
		w := ts.do(t, http.MethodPost, "/api/feedback", feedback("Meera", "looking forward to it"))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := ts.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	stats := body["data"].(map[string]any)
	assert.EqualValues(t, 3, stats["totalRegistrations"])
	assert.EqualValues(t, 2, stats["totalFeedback"])
	assert.NotEmpty(t, stats["timestamp"])
}

func TestHealthIndependentOfStore(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.store.Close())

	w := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, services.HealthMessage, body["message"])

	w = ts.do(t, http.MethodGet, "/health/liveness", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/health/readiness", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = ts.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, services.MsgStatsFailed, decode(t, w)["error"])
}

func TestReadinessUp(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health/readiness", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UP", decode(t, w)["status"])
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Route not found"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/stats", nil, "Origin", testOrigin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))

	w = ts.do(t, http.MethodGet, "/api/stats", nil, "Origin", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Origin not allowed"}`, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/feedback", feedback("Ravi", "a useful comment"), "Origin", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, false, decode(t, w)["success"])

	w = ts.do(t, http.MethodGet, "/api/feedback", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["data"], "rejected submission must not be stored")

	w = ts.do(t, http.MethodOptions, "/api/register", nil,
		"Origin", testOrigin,
		"Access-Control-Request-Method", http.MethodPost)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBodyTooLarge(t *testing.T) {
	ts := newTestServer(t)

	payload := feedback("Ravi", strings.Repeat("x", 8192))
	w := ts.do(t, http.MethodPost, "/api/feedback", payload)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/register", registration("metrics@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `cabpool_registrations_total{outcome="created"} 1`)
	assert.Contains(t, w.Body.String(), `cabpool_http_requests_total{method="POST",route="/api/register",status="201"} 1`)
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", nil, "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRateLimitedSubmissions(t *testing.T) {
	const key = "ratelimit:/api/feedback:192.0.2.1"
	client, mock := redismock.NewClientMock()

	ts := newTestServer(t, func(d *Dependencies) {
		d.Config.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerWindow: 1, WindowSeconds: 60}
		d.RedisClient = client
	})

	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpireNX(key, time.Minute).SetVal(true)
	mock.ExpectTTL(key).SetVal(time.Minute)
	mock.ExpectTxPipelineExec()

	w := ts.do(t, http.MethodPost, "/api/feedback", feedback("Ravi", "first comment here"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectExpireNX(key, time.Minute).SetVal(false)
	mock.ExpectTTL(key).SetVal(45 * time.Second)
	mock.ExpectTxPipelineExec()

	w = ts.do(t, http.MethodPost, "/api/feedback", feedback("Ravi", "second comment here"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "45", w.Header().Get("Retry-After"))
	assert.Equal(t, middleware.MsgRateLimited, decode(t, w)["error"])

	// Reads are never limited.
	w = ts.do(t, http.MethodGet, "/api/feedback", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
