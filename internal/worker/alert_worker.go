package worker

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"painel/internal/amqp"
	"painel/internal/chart"
	"painel/internal/dashboard"
	"painel/internal/log"
	"painel/internal/metrics"
)

// Alert handling results recorded in metrics.
const (
	ResultHandled = "handled"
	ResultFailed  = "failed"
)

// Renderer draws placeholders onto the worker's surface. *dashboard.Orchestrator implements it.
type Renderer interface {
	Render(ctx context.Context, placeholders []dashboard.Placeholder) dashboard.Result
	RenderPage(ctx context.Context, page io.Reader) (dashboard.Result, error)
}

// PageSource serves the live dashboard page. *dashboard.APIClient implements it.
type PageSource interface {
	Page(ctx context.Context) (io.ReadCloser, error)
}

// AlertWorker reacts to budget alerts by logging them and refreshing the
// snapshots of the affected charts.
type AlertWorker struct {
	renderer Renderer
	pages    PageSource
	metrics  *metrics.Metrics
	logger   *log.Logger
}

func NewAlertWorker(renderer Renderer, pages PageSource, m *metrics.Metrics, logger *log.Logger) *AlertWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AlertWorker{
		renderer: renderer,
		pages:    pages,
		metrics:  m,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// AlertPlaceholders lists the charts an alert makes stale: both charts of
// the secretaria and the donut of the obra.
func AlertPlaceholders(alert *amqp.BudgetAlert) []dashboard.Placeholder {
	sid := strconv.FormatInt(alert.SecretariaID, 10)
	out := []dashboard.Placeholder{
		{Kind: chart.KindSecretariaDonut, ID: sid},
		{Kind: chart.KindCashFlow, ID: sid, Legend: true},
	}
	if alert.ObraID > 0 {
		out = append(out, dashboard.Placeholder{Kind: chart.KindObraDonut, ID: strconv.FormatInt(alert.ObraID, 10)})
	}
	return out
}

// HandleBudgetAlert processes one alert from the queue. An error requeues the
// message, so it is returned only when no chart could be refreshed at all.
func (w *AlertWorker) HandleBudgetAlert(ctx context.Context, alert *amqp.BudgetAlert) error {
	w.logger.WarnContext(ctx, alert.Text(),
		"secretaria_id", alert.SecretariaID,
		"obra_id", alert.ObraID,
		"gasto_id", alert.GastoID,
		"saldo_cents", alert.SaldoCents)

	placeholders := AlertPlaceholders(alert)
	res := w.renderer.Render(ctx, placeholders)
	if res.Failed == len(placeholders) {
		w.metrics.RecordBudgetAlert(ResultFailed)
		return fmt.Errorf("refresh charts for secretaria %d: all %d renders failed", alert.SecretariaID, res.Failed)
	}

	w.metrics.RecordBudgetAlert(ResultHandled)
	w.logger.InfoContext(ctx, "Charts refreshed after budget alert",
		"secretaria_id", alert.SecretariaID,
		"rendered", res.Rendered,
		"suppressed", res.Suppressed,
		"failed", res.Failed)
	return nil
}

// StartupSnapshot renders every placeholder of the live dashboard so the
// snapshot directory is complete before the first alert arrives.
func (w *AlertWorker) StartupSnapshot(ctx context.Context) (dashboard.Result, error) {
	page, err := w.pages.Page(ctx)
	if err != nil {
		return dashboard.Result{}, fmt.Errorf("fetch dashboard page: %w", err)
	}
	defer page.Close()

	res, err := w.renderer.RenderPage(ctx, page)
	if err != nil {
		return dashboard.Result{}, err
	}
	w.logger.InfoContext(ctx, "Startup snapshot completed",
		"rendered", res.Rendered,
		"suppressed", res.Suppressed,
		"failed", res.Failed)
	return res, nil
}
