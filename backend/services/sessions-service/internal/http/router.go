package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes groups handlers.
type Routes struct {
	StartSession  http.HandlerFunc
	StopSession   http.HandlerFunc
	ListSessions  http.HandlerFunc
	Summary       http.HandlerFunc
	SummaryStream http.Handler
	Health        http.HandlerFunc
	Metrics       http.Handler
}

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// NewRouter registers endpoints. protect wraps the /chargingSessions routes and may be nil.
func NewRouter(routes Routes, protect Middleware, global ...Middleware) http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	if routes.Health != nil {
		r.Handle("/health", routes.Health).Methods(http.MethodGet)
	}
	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics).Methods(http.MethodGet)
	}

	sessions := r.PathPrefix("/chargingSessions").Subrouter()
	if protect != nil {
		sessions.Use(mux.MiddlewareFunc(protect))
	}
	if routes.Summary != nil {
		sessions.Handle("/summary", routes.Summary).Methods(http.MethodGet)
	}
	if routes.SummaryStream != nil {
		sessions.Handle("/summary/stream", routes.SummaryStream).Methods(http.MethodGet)
	}
	if routes.StopSession != nil {
		sessions.Handle("/{id}", routes.StopSession).Methods(http.MethodPut)
	}
	if routes.ListSessions != nil {
		sessions.Handle("", routes.ListSessions).Methods(http.MethodGet)
	}
	if routes.StartSession != nil {
		sessions.Handle("", routes.StartSession).Methods(http.MethodPost)
	}

	var handler http.Handler = r
	for i := len(global) - 1; i >= 0; i-- {
		handler = global[i](handler)
	}
	return handler
}
