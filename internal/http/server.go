package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "obras/internal/log"
	"obras/internal/metrics"
	"obras/internal/middleware/ratelimit"
	"obras/internal/middleware/security"
	"obras/internal/middleware/trace"
	"obras/internal/report"
	"obras/internal/services"
	appweb "obras/web"
)

type Config struct {
	Addr             string
	FeaturedDocument string
	RateLimit        ratelimit.Config
	TrustedProxies   []string
	Logger           *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	svc       *services.DashboardService
	renderers *report.Capability
	limiter   *ratelimit.Limiter
	featured  string
	logger    *applog.Logger
	started   time.Time

	stopBackground context.CancelFunc
	shutdownOnce   sync.Once
}

func NewServer(cfg Config, svc *services.DashboardService, renderers *report.Capability) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	t, err := template.New("obras").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	proxies := cfg.TrustedProxies
	if proxies == nil {
		proxies = security.DefaultTrustedProxies
	}
	clientIP, err := security.NewClientIP(proxies...)
	if err != nil {
		return nil, err
	}

	rl := cfg.RateLimit
	if rl.RequestsPerMinute == 0 {
		rl = ratelimit.DefaultConfig()
	}

	s := &Server{
		templates: t,
		svc:       svc,
		renderers: renderers,
		limiter:   ratelimit.NewLimiter(rl),
		featured:  cfg.FeaturedDocument,
		logger:    logger,
		started:   time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	tracer := trace.NewMiddleware(logger, clientIP.Extract, func(r *http.Request) string {
		if _, pattern := mux.Handler(r); pattern != "" {
			return pattern
		}
		return "unmatched"
	})

	var handler http.Handler = mux
	handler = s.limiter.Middleware(clientIP.Extract, s.onRateLimit)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopBackground = cancel
	go s.limiter.RunCleanup(ctx, 5*time.Minute)

	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /gestion", s.handleGestion)

	mux.HandleFunc("GET /ui/kpis", s.handleKPIs)
	mux.HandleFunc("GET /ui/receivables", s.handleReceivables)
	mux.HandleFunc("GET /ui/obras", s.handleProjectList)
	mux.HandleFunc("GET /ui/obras/{id}", s.handleProjectDetail)
	mux.HandleFunc("GET /ui/obras/{id}/modal", s.handleProjectModal)

	mux.HandleFunc("GET /obras/export.csv", s.handleExport)
	mux.HandleFunc("GET /obras/{id}/report.pdf", s.handleReport)
	mux.HandleFunc("POST /obras/{id}/approve", s.handleApprove)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldPath, r.URL.Path, applog.FieldMethod, r.Method)
	ErrorResponse(http.StatusTooManyRequests, "Demasiadas solicitudes. Intente nuevamente en un minuto.").
		TriggerErrorNotification("Demasiadas solicitudes. Intente nuevamente en un minuto.").
		Write(w)
}

// Shutdown stops background work and drains open connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.stopBackground()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// render executes the named template into a buffer so a failing template
// never leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", name, applog.FieldError, err)
		InternalServerError("Error interno al mostrar la página").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
