package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"monthlymix/internal/model"
	"monthlymix/internal/service"

	"go.uber.org/zap"
)

// maxLinksPerRequest ограничивает размер ручной отправки
const maxLinksPerRequest = 500

// healthHandler обрабатывает запросы /health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	if s.deps.DB != nil {
		if err := s.deps.DB.PingContext(r.Context()); err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			s.logger.Error("Health check failed", zap.Error(err))
		}
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if s.deps.Scheduler != nil {
		response["scheduler"] = s.deps.Scheduler.GetStatus()
	}

	writeJSON(w, code, response)
}

// runHandler запускает сборку и отвечает отчетом
func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Runner == nil {
		writeError(w, http.StatusNotFound, "runs are not available")
		return
	}

	// обрыв соединения не прерывает начатый запуск
	report, err := s.deps.Runner.TryRun(context.WithoutCancel(r.Context()), model.TriggerHTTP)
	if errors.Is(err, service.ErrRunInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, reportStatus(report), report)
}

// statsHandler возвращает статистику истории
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, http.StatusNotFound, "history is not available")
		return
	}

	summary, err := s.deps.History.GetSummary(r.Context(), 10, 10)
	if errors.Is(err, service.ErrHistoryUnavailable) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("Failed to get stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

type linksRequest struct {
	Links []string `json:"links"`
}

// linksHandler принимает ручную отправку ссылок в текущий месяц
func (s *Server) linksHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Submissions == nil {
		writeError(w, http.StatusNotFound, "submissions are not available")
		return
	}

	var req linksRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	links := make([]string, 0, len(req.Links))
	for _, link := range req.Links {
		if link = strings.TrimSpace(link); link != "" {
			links = append(links, link)
		}
	}
	if len(links) == 0 {
		writeError(w, http.StatusBadRequest, "links must not be empty")
		return
	}
	if len(links) > maxLinksPerRequest {
		writeError(w, http.StatusBadRequest, "too many links")
		return
	}

	result, err := s.deps.Submissions.Submit(r.Context(), links)
	if err != nil {
		s.logger.Error("Failed to store links", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store links")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
