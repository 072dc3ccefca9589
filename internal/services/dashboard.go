package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"obras/internal/amqp"
	"obras/internal/cache"
	"obras/internal/catalog"
	"obras/internal/core"
	"obras/internal/export"
	applog "obras/internal/log"
	"obras/internal/metrics"
	"obras/internal/middleware/trace"
	"obras/internal/report"
)

// ApprovalPublisher announces approved progress to other systems.
type ApprovalPublisher interface {
	PublishProgressApproved(ctx context.Context, msg *amqp.ProgressApprovedMessage) error
}

// Report is a rendered project report ready for download.
type Report struct {
	FileName string
	Data     []byte
	Pages    int
}

// DashboardService holds the loaded catalog and answers every read the
// dashboard and the CLI make. The catalog is replaced whole on Reload.
type DashboardService struct {
	source    catalog.Source
	renderers *report.Capability
	reports   cache.Cache[Report]
	publisher ApprovalPublisher
	logger    *applog.Logger
	events    *applog.StructuredLogger

	mu         sync.RWMutex
	catalog    core.Catalog
	loadedAt   time.Time
	generation uint64
}

type Option func(*DashboardService)

// WithReportCache keeps rendered reports keyed by project id.
func WithReportCache(c cache.Cache[Report]) Option {
	return func(s *DashboardService) { s.reports = c }
}

// WithPublisher sends approvals through p instead of only logging them.
func WithPublisher(p ApprovalPublisher) Option {
	return func(s *DashboardService) { s.publisher = p }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *DashboardService) { s.logger = l }
}

func NewDashboardService(source catalog.Source, renderers *report.Capability, opts ...Option) *DashboardService {
	s := &DashboardService{source: source, renderers: renderers}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(applog.ComponentDashboard)
	s.events = applog.NewStructuredLogger(s.logger)
	return s
}

// Reload reads the catalog from the source. On failure the previous
// catalog stays in place.
func (s *DashboardService) Reload(ctx context.Context) error {
	c, err := catalog.Load(ctx, s.source)
	if err != nil {
		return fmt.Errorf("reload catalog: %w", err)
	}
	s.mu.Lock()
	s.catalog = c
	s.loadedAt = time.Now()
	s.generation++
	if s.reports != nil {
		s.reports.Purge()
	}
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "Catalog loaded",
		applog.FieldOperation, applog.OpLoad,
		"projects", len(c.Projects),
		"receivables", len(c.Receivables))
	return nil
}

func (s *DashboardService) Catalog() core.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// LoadedAt is when the current catalog was read; zero before the first
// successful Reload.
func (s *DashboardService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *DashboardService) KPIs() core.KPISummary {
	c := s.Catalog()
	return core.ComputeKPIs(c.Projects, c.Receivables)
}

func (s *DashboardService) Receivables() []core.Receivable {
	return s.Catalog().Receivables
}

// Projects returns the projects matching the status filter and search term.
func (s *DashboardService) Projects(ctx context.Context, status, term string) ([]core.Project, error) {
	filter, err := core.ParseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	out := core.FilterProjects(s.Catalog().Projects, filter, term)
	metrics.RecordFilter(len(out))
	s.events.LogFilter(ctx, string(filter), term, len(out))
	return out, nil
}

func (s *DashboardService) Project(id string) (core.Project, error) {
	return core.FindProject(s.Catalog().Projects, id)
}

func (s *DashboardService) snapshot() (core.Catalog, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, s.generation
}

// storeReport caches out unless the catalog was reloaded after gen was read.
func (s *DashboardService) storeReport(id string, gen uint64, out Report) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if gen != s.generation {
		return false
	}
	s.reports.Set(id, out)
	return true
}

// Report renders the PDF report of one project, served from the cache when
// possible. It fails with report.ErrRendererUnavailable until a renderer
// has been provided.
func (s *DashboardService) Report(ctx context.Context, id string) (Report, error) {
	c, gen := s.snapshot()
	p, err := core.FindProject(c.Projects, id)
	if err != nil {
		return Report{}, err
	}
	if s.reports != nil {
		if cached, ok := s.reports.Get(id); ok {
			metrics.RecordCacheLookup(true)
			metrics.RecordReport(metrics.OutcomeCached, 0)
			s.events.LogReportGenerated(ctx, id, cached.Pages, len(cached.Data), true)
			return cached, nil
		}
		metrics.RecordCacheLookup(false)
	}

	r, err := s.renderers.Renderer()
	if err != nil {
		metrics.RecordReport(metrics.OutcomeUnavailable, 0)
		return Report{}, err
	}

	start := time.Now()
	data, doc, err := report.Generate(r, p)
	if err != nil {
		metrics.RecordReport(metrics.OutcomeFailed, 0)
		s.events.LogError(ctx, "Report generation failed", err, applog.ComponentReport, applog.OpRender,
			applog.NewFields().WithProject(p.ID, p.Name))
		return Report{}, err
	}
	metrics.RecordReport(metrics.OutcomeRendered, time.Since(start))

	out := Report{FileName: report.FileName(p), Data: data, Pages: len(doc.Pages)}
	if s.reports != nil && !s.storeReport(id, gen, out) {
		s.logger.DebugContext(ctx, "Catalog reloaded during render, report not cached", applog.FieldProjectID, id)
	}
	s.events.LogReportGenerated(ctx, id, out.Pages, len(out.Data), false)
	return out, nil
}

// WaitForRenderer blocks until a PDF renderer is provided or ctx is done.
func (s *DashboardService) WaitForRenderer(ctx context.Context) error {
	_, err := s.renderers.Wait(ctx)
	return err
}

// ExportCSV writes the filtered project list as CSV.
func (s *DashboardService) ExportCSV(ctx context.Context, w io.Writer, status, term string) error {
	projects, err := s.Projects(ctx, status, term)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(w, projects); err != nil {
		return fmt.Errorf("export projects: %w", err)
	}
	return nil
}

// Approve records the approval of a project's current progress and returns
// the confirmation message shown to the user. A failed publish is logged
// and does not fail the approval.
func (s *DashboardService) Approve(ctx context.Context, id string) (string, error) {
	p, err := s.Project(id)
	if err != nil {
		return "", err
	}

	published := false
	if s.publisher != nil {
		msg := amqp.NewProgressApprovedMessage(p.ID, p.Name, p.Progress, string(p.Status), trace.GetRequestID(ctx))
		if err := s.publisher.PublishProgressApproved(ctx, msg); err != nil {
			metrics.RecordApproval("failed")
			s.events.LogError(ctx, "Failed to publish approval", err, applog.ComponentAMQP, applog.OpApprove,
				applog.NewFields().WithProject(p.ID, p.Name))
		} else {
			published = true
			metrics.RecordApproval("published")
		}
	} else {
		metrics.RecordApproval("logged")
	}
	s.events.LogApproval(ctx, p.ID, p.Name, published)
	return core.ApprovalMessage(p), nil
}

// IsNotFound reports whether err means the requested project does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrProjectNotFound)
}

// Close releases the publisher when it holds a connection.
func (s *DashboardService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
