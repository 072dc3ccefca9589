package storage

import (
	"context"
	"fmt"
	"time"
)

// Approval is one journaled progress approval.
type Approval struct {
	EventID     string
	ProjectID   string
	ProjectName string
	Progress    int
	Status      string
	RequestID   string
	ApprovedAt  time.Time
	RecordedAt  time.Time
}

const (
	insertApprovalSQL = `INSERT INTO approvals
    (event_id, project_id, project_name, progress, status, request_id, approved_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(event_id) DO NOTHING`

	listApprovalsSQL = `SELECT event_id, project_id, project_name, progress, status, request_id, approved_at, recorded_at
FROM approvals
WHERE (? = '' OR project_id = ?)
ORDER BY approved_at DESC, event_id
LIMIT ?`
)

// RecordApproval stores a. Redelivered events are ignored and reported
// with inserted=false.
func (r *SQLiteRepository) RecordApproval(ctx context.Context, a Approval) (inserted bool, err error) {
	res, err := r.db.ExecContext(ctx, insertApprovalSQL,
		a.EventID, a.ProjectID, a.ProjectName, a.Progress, a.Status, a.RequestID, a.ApprovedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("insert approval %s: %w", a.EventID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// ListApprovals returns the newest approvals first. An empty projectID
// lists every project.
func (r *SQLiteRepository) ListApprovals(ctx context.Context, projectID string, limit int) ([]Approval, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listApprovalsSQL, projectID, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("query approvals: %w", err)
	}
	defer rows.Close()

	var out []Approval
	for rows.Next() {
		var a Approval
		if err := rows.Scan(&a.EventID, &a.ProjectID, &a.ProjectName, &a.Progress, &a.Status, &a.RequestID,
			&a.ApprovedAt, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approvals: %w", err)
	}
	return out, nil
}
