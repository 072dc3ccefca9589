package worker

import (
	"context"
	"fmt"

	"obras/internal/amqp"
	applog "obras/internal/log"
	"obras/internal/storage"
)

// ApprovalStore persists approval events.
type ApprovalStore interface {
	RecordApproval(ctx context.Context, a storage.Approval) (bool, error)
}

// ApprovalJournal writes every approval event it receives to the store.
// Redelivered events are recorded once.
type ApprovalJournal struct {
	store  ApprovalStore
	logger *applog.Logger
}

func NewApprovalJournal(store ApprovalStore, logger *applog.Logger) *ApprovalJournal {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ApprovalJournal{store: store, logger: logger.WithComponent(applog.ComponentStorage)}
}

// HandleApproval matches amqp.ApprovalHandler.
func (j *ApprovalJournal) HandleApproval(ctx context.Context, msg *amqp.ProgressApprovedMessage) error {
	inserted, err := j.store.RecordApproval(ctx, storage.Approval{
		EventID:     msg.EventID,
		ProjectID:   msg.ProjectID,
		ProjectName: msg.ProjectName,
		Progress:    msg.Progress,
		Status:      msg.Status,
		RequestID:   msg.RequestID,
		ApprovedAt:  msg.ApprovedAt,
	})
	if err != nil {
		return fmt.Errorf("journal approval: %w", err)
	}

	fields := applog.NewFields().
		WithProject(msg.ProjectID, msg.ProjectName).
		WithOperation(applog.OpApprove)
	if msg.RequestID != "" {
		fields.WithRequestID(msg.RequestID)
	}
	if !inserted {
		j.logger.InfoContext(ctx, "Duplicate approval event ignored", append(fields.ToSlice(), "event_id", msg.EventID)...)
		return nil
	}
	j.logger.InfoContext(ctx, "Approval journaled", append(fields.ToSlice(), "event_id", msg.EventID, "progress", msg.Progress)...)
	return nil
}
