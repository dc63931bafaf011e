package dashboard

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"painel/internal/chart"
	"painel/internal/log"
	"painel/internal/metrics"
	"painel/internal/theme"
)

// ThemeSource supplies the theme a render pass uses. *theme.Store implements it.
type ThemeSource interface {
	Current() theme.Theme
}

// ReadyFunc is the host's readiness hook. Its failure is logged and ignored.
type ReadyFunc func(ctx context.Context) error

// Result counts the outcome of each placeholder of a render pass.
type Result struct {
	Rendered   int
	Suppressed int
	Failed     int
}

type Option func(*Orchestrator)

// WithConcurrency caps the number of placeholders rendered at once. 0 means unlimited.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.limit = n
		}
	}
}

func WithReadinessHook(fn ReadyFunc) Option {
	return func(o *Orchestrator) { o.ready = fn }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l.WithComponent(log.ComponentDashboard)
		}
	}
}

// Orchestrator renders a page's placeholders. Each placeholder is fetched,
// composed and mounted on its own; one placeholder failing never affects
// another.
type Orchestrator struct {
	fetcher Fetcher
	surface Surface
	themes  ThemeSource
	limit   int
	ready   ReadyFunc
	metrics *metrics.Metrics
	logger  *log.Logger
}

func New(fetcher Fetcher, surface Surface, themes ThemeSource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher: fetcher,
		surface: surface,
		themes:  themes,
		logger:  log.New(log.DefaultConfig()).WithComponent(log.ComponentDashboard),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RenderPage discovers the placeholders of page and renders them.
func (o *Orchestrator) RenderPage(ctx context.Context, page io.Reader) (Result, error) {
	placeholders, err := Discover(page)
	if err != nil {
		return Result{}, err
	}
	return o.Render(ctx, placeholders), nil
}

// Render starts one independent fetch per placeholder and waits for all of
// them. Failures are logged at debug level and counted, never returned.
// Only ctx cancels in-flight fetches.
func (o *Orchestrator) Render(ctx context.Context, placeholders []Placeholder) Result {
	if o.ready != nil {
		if err := o.ready(ctx); err != nil {
			o.logger.WarnContext(ctx, "Host readiness hook failed, rendering anyway", log.FieldError, err)
		}
	}

	colors := o.themes.Current().Chart

	var rendered, suppressed, failed atomic.Int64
	var g errgroup.Group
	if o.limit > 0 {
		g.SetLimit(o.limit)
	}
	for _, p := range placeholders {
		g.Go(func() error {
			switch o.renderOne(ctx, p, colors) {
			case metrics.OutcomeRendered:
				rendered.Add(1)
			case metrics.OutcomeSuppressed:
				suppressed.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		Rendered:   int(rendered.Load()),
		Suppressed: int(suppressed.Load()),
		Failed:     int(failed.Load()),
	}
	o.logger.InfoContext(ctx, "Dashboard render pass completed",
		"placeholders", len(placeholders),
		"rendered", res.Rendered,
		"suppressed", res.Suppressed,
		"failed", res.Failed)
	return res
}

func (o *Orchestrator) renderOne(ctx context.Context, p Placeholder, colors chart.Colors) string {
	outcome, err := o.compose(ctx, p, colors)
	if err != nil {
		outcome = metrics.OutcomeFailed
		o.logger.DebugContext(ctx, "Placeholder not rendered",
			log.NewFields().WithChart(string(p.Kind), p.ID).WithError(err).ToSlice()...)
	}
	o.metrics.RecordRender(string(p.Kind), outcome)
	return outcome
}

func (o *Orchestrator) compose(ctx context.Context, p Placeholder, colors chart.Colors) (string, error) {
	var rendered chart.Rendered

	switch p.Kind {
	case chart.KindSecretariaDonut:
		b, err := o.fetcher.SecretariaBudget(ctx, p.ID)
		if err != nil {
			return "", err
		}
		rendered = chart.RenderSecretariaDonut(p.ID, b, colors)

	case chart.KindObraDonut:
		b, err := o.fetcher.ObraBudget(ctx, p.ID)
		if err != nil {
			return "", err
		}
		rendered = chart.RenderObraDonut(p.ID, b, colors)

	case chart.KindCashFlow:
		cf, err := o.fetcher.DailyCashFlow(ctx, p.ID)
		if err != nil {
			return "", err
		}
		var ok bool
		rendered, ok = chart.RenderCashFlow(p.ID, cf, colors)
		if !ok {
			if err := o.surface.Release(p.Key()); err != nil {
				return "", err
			}
			if p.Legend {
				if err := o.surface.ReplaceLegend(chart.LegendKey(p.ID), nil); err != nil {
					return "", err
				}
			}
			return metrics.OutcomeSuppressed, nil
		}
		o.metrics.RecordMarkersDropped(rendered.Dropped)

	default:
		return "", fmt.Errorf("unknown chart kind %q", p.Kind)
	}

	if err := o.surface.Mount(p.Key(), rendered); err != nil {
		return "", err
	}
	if p.Kind == chart.KindCashFlow && p.Legend {
		if err := o.surface.ReplaceLegend(chart.LegendKey(p.ID), rendered.Legend); err != nil {
			return "", err
		}
	}
	return metrics.OutcomeRendered, nil
}
