package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"painel/internal/chart"
	"painel/internal/log"
	"painel/internal/metrics"
	"painel/internal/theme"
)

// Payload endpoints consumed by the dashboard renderer.

func (s *Server) handleSecretariaBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.budget.SecretariaBudget(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleObraBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.budget.ObraBudget(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDailyCashFlow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cf, err := s.budget.DailyCashFlow(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cf)
}

// Composed chart specs.

// composeFunc renders one chart. ok is false when the chart must not be shown.
type composeFunc func(ctx context.Context, id int64, colors chart.Colors) (rendered chart.Rendered, ok bool, err error)

func chartKey(kind chart.Kind, id int64, themeName string) string {
	return fmt.Sprintf("%s:%d:%s", kind, id, themeName)
}

// serveChart answers from the spec cache or composes, caches and returns the
// chart. A suppressed chart answers 204 so the page removes it and its legend.
func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, kind chart.Kind, compose composeFunc) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	th := s.requestTheme(r)
	key := chartKey(kind, id, th.Name)

	if rendered, ok := s.charts.Get(key); ok {
		s.metrics.RecordRender(string(kind), metrics.OutcomeCached)
		writeJSON(w, http.StatusOK, rendered)
		return
	}

	rendered, ok, err := compose(ctx, id, th.Chart)
	if err != nil {
		s.metrics.RecordRender(string(kind), metrics.OutcomeFailed)
		writeError(w, r, err)
		return
	}
	if !ok {
		s.metrics.RecordRender(string(kind), metrics.OutcomeSuppressed)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.metrics.RecordRender(string(kind), metrics.OutcomeRendered)
	s.metrics.RecordMarkersDropped(rendered.Dropped)
	if rendered.Dropped > 0 {
		log.FromContext(ctx).DebugContext(ctx, "Measurement events matched no day",
			log.NewFields().WithChart(string(kind), rendered.ID).ToSlice()...)
	}
	s.charts.Set(key, rendered)
	writeJSON(w, http.StatusOK, rendered)
}

func (s *Server) handleCashFlowChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, chart.KindCashFlow, func(ctx context.Context, id int64, colors chart.Colors) (chart.Rendered, bool, error) {
		cf, err := s.budget.DailyCashFlow(ctx, id)
		if err != nil {
			return chart.Rendered{}, false, err
		}
		rendered, ok := chart.RenderCashFlow(strconv.FormatInt(id, 10), cf, colors)
		return rendered, ok, nil
	})
}

func (s *Server) handleSecretariaDonut(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, chart.KindSecretariaDonut, func(ctx context.Context, id int64, colors chart.Colors) (chart.Rendered, bool, error) {
		b, err := s.budget.SecretariaBudget(ctx, id)
		if err != nil {
			return chart.Rendered{}, false, err
		}
		return chart.RenderSecretariaDonut(strconv.FormatInt(id, 10), b, colors), true, nil
	})
}

func (s *Server) handleObraDonut(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, chart.KindObraDonut, func(ctx context.Context, id int64, colors chart.Colors) (chart.Rendered, bool, error) {
		b, err := s.budget.ObraBudget(ctx, id)
		if err != nil {
			return chart.Rendered{}, false, err
		}
		return chart.RenderObraDonut(strconv.FormatInt(id, 10), b, colors), true, nil
	})
}

// Theme.

// requestTheme returns the stored theme unless the request names a known one.
func (s *Server) requestTheme(r *http.Request) theme.Theme {
	if name := r.URL.Query().Get("theme"); theme.Valid(name) {
		return theme.ByName(name)
	}
	return s.themes.Current()
}

func newThemeView(t theme.Theme) themeView {
	return themeView{
		Theme:      t.Name,
		Background: t.Background,
		Surface:    t.Surface,
		Text:       t.Text,
		TextMuted:  t.TextMuted,
	}
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newThemeView(s.themes.Current()))
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	t, err := s.themes.Toggle()
	if err != nil {
		writeError(w, r, fmt.Errorf("toggle theme: %w", err))
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Theme toggled", log.FieldTheme, t.Name)
	writeJSON(w, http.StatusOK, newThemeView(t))
}
