// Package storage serves the catalog from a SQLite database whose schema
// and seed rows are applied with golang-migrate.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"obras/internal/catalog"
	"obras/internal/core"
)

var _ catalog.Source = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteRepository(dbPath string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const (
	listProjectsSQL = `SELECT id, name, status, budget_cents, progress, deadline, completed_on,
       responsible, contractor, client, next_milestone, observations
FROM projects ORDER BY position, id`

	listMilestonesSQL = `SELECT project_id, id, date, title, description, status
FROM milestones ORDER BY project_id, position, id`

	listReceivablesSQL = `SELECT id, client, amount_cents, concept, due_date, status
FROM receivables ORDER BY position, id`
)

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx, listProjectsSQL)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		var (
			p      core.Project
			status string
		)
		if err := rows.Scan(&p.ID, &p.Name, &status, &p.Budget.Cents, &p.Progress, &p.Deadline, &p.CompletedOn,
			&p.Responsible, &p.Contractor, &p.Client, &p.NextMilestone, &p.Observations); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if p.Status, err = core.ParseProjectStatus(status); err != nil {
			return nil, fmt.Errorf("project %s: %w", p.ID, err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	milestones, err := r.listMilestones(ctx)
	if err != nil {
		return nil, err
	}
	if orphans := catalog.AttachTimelines(projects, milestones); len(orphans) > 0 {
		r.logger.WarnContext(ctx, "Milestones reference unknown projects", "project_ids", orphans)
	}
	return projects, nil
}

func (r *SQLiteRepository) listMilestones(ctx context.Context) (map[string][]core.Milestone, error) {
	rows, err := r.db.QueryContext(ctx, listMilestonesSQL)
	if err != nil {
		return nil, fmt.Errorf("query milestones: %w", err)
	}
	defer rows.Close()

	out := map[string][]core.Milestone{}
	for rows.Next() {
		var (
			projectID, status string
			m                 core.Milestone
		)
		if err := rows.Scan(&projectID, &m.ID, &m.Date, &m.Title, &m.Description, &status); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		if m.Status, err = core.ParseMilestoneStatus(status); err != nil {
			return nil, fmt.Errorf("milestone %s: %w", m.ID, err)
		}
		out[projectID] = append(out[projectID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate milestones: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListReceivables(ctx context.Context) ([]core.Receivable, error) {
	rows, err := r.db.QueryContext(ctx, listReceivablesSQL)
	if err != nil {
		return nil, fmt.Errorf("query receivables: %w", err)
	}
	defer rows.Close()

	var out []core.Receivable
	for rows.Next() {
		var (
			rc     core.Receivable
			status string
		)
		if err := rows.Scan(&rc.ID, &rc.Client, &rc.Amount.Cents, &rc.Concept, &rc.DueDate, &status); err != nil {
			return nil, fmt.Errorf("scan receivable: %w", err)
		}
		if rc.Status, err = core.ParseReceivableStatus(status); err != nil {
			return nil, fmt.Errorf("receivable %s: %w", rc.ID, err)
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receivables: %w", err)
	}
	return out, nil
}
