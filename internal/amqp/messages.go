package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProgressApprovedMessage announces that a project's reported progress was
// approved from the dashboard.
type ProgressApprovedMessage struct {
	EventID     string    `json:"event_id"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Progress    int       `json:"progress"`
	Status      string    `json:"status"`
	RequestID   string    `json:"request_id,omitempty"`
	ApprovedAt  time.Time `json:"approved_at"`
}

func NewProgressApprovedMessage(projectID, projectName string, progress int, status, requestID string) *ProgressApprovedMessage {
	return &ProgressApprovedMessage{
		EventID:     uuid.NewString(),
		ProjectID:   projectID,
		ProjectName: projectName,
		Progress:    progress,
		Status:      status,
		RequestID:   requestID,
		ApprovedAt:  time.Now().UTC(),
	}
}

func (m *ProgressApprovedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ProgressApprovedMessageFromJSON(data []byte) (*ProgressApprovedMessage, error) {
	var msg ProgressApprovedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
