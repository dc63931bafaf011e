package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"painel/internal/log"
	"painel/internal/services"
	"painel/internal/theme"
)

type dashboardSecretaria struct {
	services.SecretariaSummary
	Obras []services.ObraSummary
}

type dashboardPage struct {
	Theme       theme.Theme
	Secretarias []dashboardSecretaria
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	if s.templates == nil {
		logger.ErrorContext(ctx, "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	sums, err := s.budget.ListSecretarias(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Secretaria list error", log.FieldError, err)
		http.Error(w, "failed to load secretarias", http.StatusInternalServerError)
		return
	}
	obras, err := s.budget.ListObras(ctx, services.ObraQuery{})
	if err != nil {
		logger.ErrorContext(ctx, "Obra list error", log.FieldError, err)
		http.Error(w, "failed to load obras", http.StatusInternalServerError)
		return
	}

	bySecretaria := make(map[int64][]services.ObraSummary)
	for _, o := range obras {
		bySecretaria[o.Obra.SecretariaID] = append(bySecretaria[o.Obra.SecretariaID], o)
	}
	page := dashboardPage{
		Theme:       s.requestTheme(r),
		Secretarias: make([]dashboardSecretaria, 0, len(sums)),
	}
	for _, sum := range sums {
		page.Secretarias = append(page.Secretarias, dashboardSecretaria{
			SecretariaSummary: sum,
			Obras:             bySecretaria[sum.Secretaria.ID],
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", page); err != nil {
		logger.ErrorContext(ctx, "Dashboard template execution failed", log.FieldError, err)
	}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.budget.Ping(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	hits, misses := s.charts.Stats()
	checks["chart_cache"] = map[string]any{
		"entries": s.charts.Size(),
		"hits":    hits,
		"misses":  misses,
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.activeClients(),
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
