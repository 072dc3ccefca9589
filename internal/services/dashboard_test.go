package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obras/internal/amqp"
	"obras/internal/cache"
	"obras/internal/catalog/memory"
	"obras/internal/core"
	applog "obras/internal/log"
	"obras/internal/report"
)

type countingRenderer struct {
	calls    int32
	fail     error
	onRender func()
}

func (r *countingRenderer) Render(doc report.Document) ([]byte, error) {
	atomic.AddInt32(&r.calls, 1)
	if r.onRender != nil {
		r.onRender()
	}
	if r.fail != nil {
		return nil, r.fail
	}
	return []byte("%PDF-fake " + doc.Title), nil
}

func (r *countingRenderer) Measurer() report.Measurer {
	return report.MeasurerFunc(func(text string, f report.Font) float64 {
		return float64(len([]rune(text))) * 2 * f.Size / 10
	})
}

type recordingPublisher struct {
	msgs []*amqp.ProgressApprovedMessage
	err  error
}

func (p *recordingPublisher) PublishProgressApproved(_ context.Context, msg *amqp.ProgressApprovedMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

type failingSource struct{}

func (failingSource) ListProjects(context.Context) ([]core.Project, error) {
	return nil, errors.New("sheet unavailable")
}

func (failingSource) ListReceivables(context.Context) ([]core.Receivable, error) {
	return nil, nil
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func newSeededService(t *testing.T, opts ...Option) (*DashboardService, *report.Capability) {
	t.Helper()
	store, err := memory.NewSeed()
	require.NoError(t, err)
	caps := report.NewCapability()
	svc := NewDashboardService(store, caps, append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, svc.Reload(context.Background()))
	return svc, caps
}

func TestDashboardService_KPIs(t *testing.T) {
	svc, _ := newSeededService(t)

	kpis := svc.KPIs()
	assert.Equal(t, 2, kpis.Active)
	assert.Equal(t, 1, kpis.Pending)
	assert.Equal(t, 1, kpis.Completed)
	assert.Equal(t, 4, kpis.Total)
	assert.True(t, kpis.HasPending)
	assert.Len(t, svc.Receivables(), 3)
}

func TestDashboardService_Projects(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	all, err := svc.Projects(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	active, err := svc.Projects(ctx, "activa", "")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "1", active[0].ID)
	assert.Equal(t, "4", active[1].ID)

	byClient, err := svc.Projects(ctx, "todas", "fundación")
	require.NoError(t, err)
	require.Len(t, byClient, 1)
	assert.Equal(t, "2", byClient[0].ID)

	_, err = svc.Projects(ctx, "archivada", "")
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
}

func TestDashboardService_ReloadKeepsPreviousCatalogOnError(t *testing.T) {
	svc, _ := newSeededService(t)
	loaded := svc.LoadedAt()
	require.False(t, loaded.IsZero())
	svc.source = failingSource{}

	err := svc.Reload(context.Background())
	require.Error(t, err)
	assert.Len(t, svc.Catalog().Projects, 4)
	assert.Equal(t, loaded, svc.LoadedAt())
}

func TestDashboardService_Report(t *testing.T) {
	reports := cache.NewLRUCache[Report](8, time.Minute)
	svc, caps := newSeededService(t, WithReportCache(reports))
	ctx := context.Background()

	_, err := svc.Report(ctx, "1")
	assert.ErrorIs(t, err, report.ErrRendererUnavailable)

	r := &countingRenderer{}
	caps.Provide(r)

	got, err := svc.Report(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "informe-Centro_Comunitario_Norte.pdf", got.FileName)
	assert.True(t, bytes.HasPrefix(got.Data, []byte("%PDF-")))
	assert.GreaterOrEqual(t, got.Pages, 1)

	again, err := svc.Report(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, got.Data, again.Data)
	assert.Equal(t, int32(1), atomic.LoadInt32(&r.calls), "second request is served from cache")

	_, err = svc.Report(ctx, "99")
	assert.True(t, IsNotFound(err))

	require.NoError(t, svc.Reload(ctx))
	assert.Zero(t, reports.Size(), "reload drops cached reports")
}

func TestDashboardService_ReportNotCachedAcrossReload(t *testing.T) {
	reports := cache.NewLRUCache[Report](8, time.Minute)
	svc, caps := newSeededService(t, WithReportCache(reports))
	ctx := context.Background()

	r := &countingRenderer{}
	reloaded := false
	r.onRender = func() {
		if !reloaded {
			reloaded = true
			require.NoError(t, svc.Reload(ctx))
		}
	}
	caps.Provide(r)

	_, err := svc.Report(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, reports.Size(), "report rendered from the old catalog is not kept")

	_, err = svc.Report(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, reports.Size())
	assert.Equal(t, int32(2), atomic.LoadInt32(&r.calls))
}

func TestDashboardService_ReportRenderFailure(t *testing.T) {
	svc, caps := newSeededService(t)
	caps.Provide(&countingRenderer{fail: report.ErrRenderFailed})

	_, err := svc.Report(context.Background(), "2")
	assert.ErrorIs(t, err, report.ErrRenderFailed)
}

func TestDashboardService_ExportCSV(t *testing.T) {
	svc, _ := newSeededService(t)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, "completada", ""))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "3,Biblioteca Municipal,completada,"))
}

func TestDashboardService_Approve(t *testing.T) {
	t.Run("publishes the approval", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc, _ := newSeededService(t, WithPublisher(pub))

		msg, err := svc.Approve(context.Background(), "4")
		require.NoError(t, err)
		assert.Equal(t, `El avance del proyecto "Centro de Salud Este" ha sido aprobado.`, msg)
		require.Len(t, pub.msgs, 1)
		assert.Equal(t, "4", pub.msgs[0].ProjectID)
		assert.Equal(t, 60, pub.msgs[0].Progress)
	})

	t.Run("publish failure still approves", func(t *testing.T) {
		pub := &recordingPublisher{err: amqp.ErrCircuitOpen}
		svc, _ := newSeededService(t, WithPublisher(pub))

		msg, err := svc.Approve(context.Background(), "1")
		require.NoError(t, err)
		assert.Contains(t, msg, "Centro Comunitario Norte")
	})

	t.Run("without publisher", func(t *testing.T) {
		svc, _ := newSeededService(t)
		_, err := svc.Approve(context.Background(), "1")
		require.NoError(t, err)
		assert.NoError(t, svc.Close())
	})

	t.Run("unknown project", func(t *testing.T) {
		svc, _ := newSeededService(t)
		_, err := svc.Approve(context.Background(), "nope")
		assert.True(t, IsNotFound(err))
	})
}
