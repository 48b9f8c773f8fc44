// Package server содержит HTTP сервер: запуск сборки, health check и API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"monthlymix/internal/model"
	"monthlymix/internal/service"

	"go.uber.org/zap"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Submitter принимает отправки
type Submitter interface {
	Submit(ctx context.Context, texts []string) (*service.SubmitResult, error)
}

// SummaryProvider выдает статистику истории
type SummaryProvider interface {
	GetSummary(ctx context.Context, topArtists, lastRuns int) (*service.Summary, error)
}

// SchedulerStatus отдает состояние планировщика
type SchedulerStatus interface {
	GetStatus() map[string]interface{}
}

// Deps зависимости сервера. Nil поля отключают соответствующие маршруты.
type Deps struct {
	Runner      service.Runner
	Submissions Submitter
	History     SummaryProvider
	DB          Pinger
	Scheduler   SchedulerStatus
}

// Server представляет HTTP сервер
type Server struct {
	server *http.Server
	deps   Deps
	logger *zap.Logger
}

// NewServer создает сервер
func NewServer(port int, deps Deps, logger *zap.Logger) *Server {
	s := &Server{
		deps:   deps,
		logger: logger,
	}
	s.server = &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler возвращает маршруты сервера
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /run", s.runHandler)
	mux.HandleFunc("POST /run", s.runHandler)
	mux.HandleFunc("GET /api/stats", s.statsHandler)
	mux.HandleFunc("POST /api/links", s.linksHandler)
	return s.recoverer(mux)
}

// Start запускает сервер и блокируется до Stop
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve обслуживает готовый listener
func (s *Server) Serve(l net.Listener) error {
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("HTTP handler panic recovered",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stack"))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// reportStatus код ответа для отчета
func reportStatus(report *model.Report) int {
	if report.Success {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}
