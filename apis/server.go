// Package apis serves sessions over HTTP for hosts that run the agent loop
// out of process.
package apis

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/metrics"
	"github.com/reusee/taibox/runners"
	"github.com/reusee/taibox/sessions"
	"github.com/reusee/taibox/values"
	"golang.org/x/net/netutil"
)

// MaxQueryBytes bounds run request bodies.
const MaxQueryBytes = 1 << 20

type Server struct {
	manager *sessions.Manager
	logger  logs.Logger
	handler http.Handler
}

func NewServer(manager *sessions.Manager, m *metrics.Metrics, logger logs.Logger) *Server {
	s := &Server{
		manager: manager,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", s.handleCreate)
	mux.HandleFunc("POST /v1/sessions/{id}/run", s.handleRun)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleClose)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if m != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	}

	s.handler = s.recovery(mux)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Serve accepts at most maxConns connections at a time on ln until ctx is
// done.
func (s *Server) Serve(ctx context.Context, ln net.Listener, maxConns int) error {
	if maxConns > 0 {
		ln = netutil.LimitListener(ln, maxConns)
	}
	server := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("http shutdown", "error", err)
		}
	}()
	if s.logger != nil {
		s.logger.Info("serving", "addr", ln.Addr().String(), "max_connections", maxConns)
	}
	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type CreateResponse struct {
	ID string `json:"id"`
}

type RunRequest struct {
	Query string `json:"query"`
}

type RunResponse struct {
	Observation string `json:"observation"`
	Value       any    `json:"value,omitempty"`
	Output      string `json:"output,omitempty"`
	Display     string `json:"display,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Error       string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	session, err := s.manager.Create(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateResponse{
		ID: session.ID,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	body := http.MaxBytesReader(w, r.Body, MaxQueryBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	turn, err := s.manager.Run(r.Context(), r.PathValue("id"), req.Query)
	if errors.Is(err, sessions.ErrNotFound) || errors.Is(err, sessions.ErrClosed) {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	} else if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}

	writeJSON(w, http.StatusOK, renderTurn(turn))
}

func renderTurn(turn sessions.Turn) RunResponse {
	resp := RunResponse{
		Observation: turn.Observation(),
		Output:      turn.Output,
		Display:     turn.Display,
	}
	if turn.Err != nil {
		resp.ErrorKind = runners.ErrorKind(turn.Err)
		resp.Error = turn.Err.Error()
		return resp
	}
	if turn.Value != nil {
		value, err := values.ToGo(turn.Value)
		if err != nil {
			// not representable as JSON; the observation still carries it
			value = turn.Value.String()
		}
		resp.Value = value
	}
	return resp
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Close(r.PathValue("id")); err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.manager.Len(),
	})
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				if s.logger != nil {
					s.logger.ErrorContext(r.Context(), "handler panic",
						"panic", p,
						"path", r.URL.Path,
					)
				}
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{
					Error: "internal error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if s.logger != nil {
		s.logger.InfoContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, ErrorResponse{
		Error: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// a failed write means the client is gone
	_ = json.NewEncoder(w).Encode(v)
}
