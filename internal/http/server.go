package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"painel/internal/cache"
	"painel/internal/chart"
	"painel/internal/core"
	"painel/internal/log"
	"painel/internal/metrics"
	"painel/internal/services"
	"painel/internal/theme"
	appweb "painel/web"
)

// Options carries the server's collaborators. Budget and Themes are required.
type Options struct {
	Addr    string
	Budget  *services.BudgetService
	Themes  *theme.Store
	Metrics *metrics.Metrics
	Logger  *log.Logger

	// Chart spec cache, sized in entries.
	CacheSize int
	CacheTTL  time.Duration

	// Write requests allowed per client and minute; 0 disables the limit.
	WriteRateLimit int
}

type Server struct {
	http.Server
	budget    *services.BudgetService
	themes    *theme.Store
	metrics   *metrics.Metrics
	logger    *log.Logger
	templates *template.Template
	started   time.Time

	// Composed chart specs keyed by kind, id and theme.
	charts       *cache.LRUCache[chart.Rendered]
	cacheManager *cache.Manager
	rateLimiter  *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		Server:       http.Server{Addr: opts.Addr},
		budget:       opts.Budget,
		themes:       opts.Themes,
		metrics:      opts.Metrics,
		logger:       logger.WithComponent(log.ComponentHTTP),
		started:      time.Now(),
		charts:       cache.NewLRUCache[chart.Rendered](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
		rateLimiter:  newRateLimiter(opts.WriteRateLimit),
	}

	s.cacheManager.Register(s.charts)
	s.cacheManager.StartCleanup(10 * time.Minute)
	s.budget.OnChange(s.invalidateCharts)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(log.RequestMiddleware(s.logger))
	r.Use(s.instrument)
	r.Use(s.securityHeaders)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		})
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/orcamento/secretaria/{id}", s.handleSecretariaBudget)
		r.Get("/orcamento/obra/{id}", s.handleObraBudget)
		r.Get("/gastos_diarios/secretaria/{id}", s.handleDailyCashFlow)

		r.Get("/charts/cashflow/{id}", s.handleCashFlowChart)
		r.Get("/charts/secretaria/{id}/donut", s.handleSecretariaDonut)
		r.Get("/charts/obra/{id}/donut", s.handleObraDonut)

		r.Get("/theme", s.handleTheme)
		r.Post("/theme/toggle", s.handleThemeToggle)

		r.Get("/secretarias", s.handleListSecretarias)
		r.Post("/secretarias", s.handleCreateSecretaria)
		r.Get("/secretarias/{id}", s.handleSecretariaDetail)
		r.Post("/secretarias/{id}/medicoes", s.handleCreateMedicao)

		r.Get("/obras", s.handleListObras)
		r.Post("/obras", s.handleCreateObra)
		r.Get("/obras/{id}", s.handleObraDetail)
		r.Post("/obras/{id}/gastos", s.handleCreateGasto)

		r.Delete("/gastos/{id}", s.handleDeleteGasto)
		r.Put("/medicoes/{id}/orcamentos", s.handleSetOrcamentos)
	})

	return r
}

// instrument records every request under its route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RecordHTTPRequest(route, r.Method, status, time.Since(start))
	})
}

// invalidateCharts drops every cached spec that shows the secretaria's balance.
func (s *Server) invalidateCharts(secretariaID int64) {
	removed := s.charts.DeletePrefix(fmt.Sprintf("%s:%d:", chart.KindCashFlow, secretariaID))
	removed += s.charts.DeletePrefix(fmt.Sprintf("%s:%d:", chart.KindSecretariaDonut, secretariaID))
	// Every obra donut of the secretaria shows its balance.
	removed += s.charts.DeletePrefix(string(chart.KindObraDonut) + ":")
	s.logger.Debug("Chart cache invalidated",
		log.FieldSecretariaID, secretariaID,
		"entries_removed", removed)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

var templateFuncs = template.FuncMap{
	"brl": core.FormatBRL,
	"legendKey": func(id int64) string {
		return chart.LegendKey(fmt.Sprint(id))
	},
}
