package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obras/internal/catalog"
	"obras/internal/core"
)

func newRepo(t *testing.T, path string) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_SeededCatalog(t *testing.T) {
	repo := newRepo(t, filepath.Join(t.TempDir(), "data", "obras.db"))

	c, err := catalog.Load(context.Background(), repo)
	require.NoError(t, err)

	require.Len(t, c.Projects, 4)
	require.Len(t, c.Receivables, 3)
	assert.Equal(t, []string{"1", "2", "3", "4"}, []string{c.Projects[0].ID, c.Projects[1].ID, c.Projects[2].ID, c.Projects[3].ID})

	first := c.Projects[0]
	assert.Equal(t, core.Pesos(450000), first.Budget)
	require.Len(t, first.Timeline, 4)
	assert.Equal(t, "t1_1", first.Timeline[0].ID)
	assert.Equal(t, core.MilestonePending, first.Timeline[3].Status)

	assert.Equal(t, "20/Ago/2025", c.Projects[2].CompletedOn)
	assert.Equal(t, core.ReceivableUpcomingDue, c.Receivables[0].Status)

	kpis := core.ComputeKPIs(c.Projects, c.Receivables)
	assert.Equal(t, 2, kpis.Active)
	assert.Equal(t, core.Pesos(2240000), kpis.TotalBudget)
}

func TestSQLiteRepository_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obras.db")
	first := newRepo(t, path)
	require.NoError(t, first.Close())

	second := newRepo(t, path)
	ps, err := second.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, ps, 4)
}
