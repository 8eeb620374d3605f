package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"chargestats/backend/libs/auth"
	"chargestats/backend/services/sessions-service/internal/http/handlers"
	"chargestats/backend/services/sessions-service/internal/http/middleware"
	"chargestats/backend/services/sessions-service/internal/repository"
	"chargestats/backend/services/sessions-service/internal/service"
	"chargestats/backend/services/sessions-service/internal/stats"
)

func newTestRouter(t *testing.T, protect Middleware) (http.Handler, *stats.Engine) {
	logger := zaptest.NewLogger(t)
	engine := stats.NewEngine(logger)
	svc := service.NewSessionsService(repository.NewMemorySessionRepository(), engine, logger)
	h := handlers.NewSessionsHandlers(svc, logger)

	routes := Routes{
		StartSession: h.Start,
		StopSession:  h.Stop,
		ListSessions: h.List,
		Summary:      h.Summary,
		Health:       handlers.NewHealthHandler(),
	}
	return NewRouter(routes, protect, middleware.Recover(logger), middleware.RequestLogger(logger)), engine
}

func do(t *testing.T, h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionLifecycleThroughRouter(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/chargingSessions", `{"stationId":"ABC-12345"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "IN_PROGRESS", created.Status)

	rec = do(t, router, http.MethodGet, "/chargingSessions/summary", "", nil)
	assert.JSONEq(t, `{"startedCount":1,"stoppedCount":0,"totalCount":1}`, rec.Body.String())

	rec = do(t, router, http.MethodPut, "/chargingSessions/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"FINISHED"`)

	rec = do(t, router, http.MethodPut, "/chargingSessions/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/chargingSessions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(t, router, http.MethodGet, "/chargingSessions/summary", "", nil)
	assert.JSONEq(t, `{"startedCount":1,"stoppedCount":1,"totalCount":2}`, rec.Body.String())
}

func TestRouterStatusCodes(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "stop with bad id", method: http.MethodPut, path: "/chargingSessions/not-a-uuid", want: http.StatusBadRequest},
		{name: "stop summary path", method: http.MethodPut, path: "/chargingSessions/summary", want: http.StatusBadRequest},
		{name: "delete not allowed", method: http.MethodDelete, path: "/chargingSessions", want: http.StatusMethodNotAllowed},
		{name: "post summary not allowed", method: http.MethodPost, path: "/chargingSessions/summary", want: http.StatusMethodNotAllowed},
		{name: "unknown", method: http.MethodGet, path: "/nope", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, router, tt.method, tt.path, "", nil).Code)
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Minute)
	protect := middleware.Auth(tokens, func(w http.ResponseWriter, status int, msg string) {
		handlers.WriteError(w, status, msg)
	})
	router, _ := newTestRouter(t, protect)

	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodGet, "/chargingSessions/summary", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodGet, "/chargingSessions/summary", "",
		http.Header{"Authorization": {"Bearer junk"}}).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodGet, "/chargingSessions/summary", "",
		http.Header{"Authorization": {"Token abc"}}).Code)

	token, err := tokens.GenerateToken("operator", "")
	require.NoError(t, err)
	rec := do(t, router, http.MethodGet, "/chargingSessions/summary", "", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", "", nil).Code)
}

func TestServerServeStopsOnCancel(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	srv := NewServer("127.0.0.1:0", router, zaptest.NewLogger(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
