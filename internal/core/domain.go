package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StatusActive    ProjectStatus = "activa"
	StatusPending   ProjectStatus = "pendiente"
	StatusCompleted ProjectStatus = "completada"
)

const (
	MilestoneCompleted MilestoneStatus = "completed"
	MilestoneCurrent   MilestoneStatus = "current"
	MilestonePending   MilestoneStatus = "pending"
)

const (
	ReceivableUpcomingDue     ReceivableStatus = "Próximo Vencimiento"
	ReceivableReadyToInvoice  ReceivableStatus = "Listo para Cobro"
	ReceivablePendingApproval ReceivableStatus = "Pendiente Aprobación"
)

type (
	ProjectStatus    string
	MilestoneStatus  string
	ReceivableStatus string

	// Project is a construction project ("obra").
	Project struct {
		ID            string
		Name          string
		Status        ProjectStatus
		Budget        Money
		Progress      int    // percent, 0-100
		Deadline      string // display date, e.g. "15/Oct/2025"
		CompletedOn   string // only set when Status is StatusCompleted
		Responsible   string
		Contractor    string
		Client        string
		NextMilestone string
		Observations  string
		Timeline      []Milestone
	}

	// Milestone is a dated checkpoint in a project's timeline.
	Milestone struct {
		ID          string
		Date        string
		Title       string
		Description string
		Status      MilestoneStatus
	}

	// Receivable tracks money owed by a client ("cobranza").
	Receivable struct {
		ID      string
		Client  string
		Amount  Money
		Concept string
		DueDate string
		Status  ReceivableStatus
	}

	// Catalog is the single read-only data source handed to every view.
	Catalog struct {
		Projects    []Project
		Receivables []Receivable
	}
)

var (
	ErrEmptyID           = errors.New("empty id")
	ErrEmptyName         = errors.New("empty name")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidProgress   = errors.New("progress must be between 0 and 100")
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrUnexpectedDone    = errors.New("completion date set on a project that is not completed")
	ErrMissingCompletion = errors.New("completed project without completion date")
	ErrProjectNotFound   = errors.New("project not found")
)

// ProjectStatuses lists the project statuses in display order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{StatusActive, StatusPending, StatusCompleted}
}

// ParseProjectStatus accepts only the three known statuses.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch st := ProjectStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusPending, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s ProjectStatus) IsValid() bool {
	_, err := ParseProjectStatus(string(s))
	return err == nil
}

// Label returns the status with its first letter in upper case ("Activa").
func (s ProjectStatus) Label() string {
	return capitalize(string(s))
}

func ParseMilestoneStatus(s string) (MilestoneStatus, error) {
	switch st := MilestoneStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case MilestoneCompleted, MilestoneCurrent, MilestonePending:
		return st, nil
	}
	return "", fmt.Errorf("%w: milestone %q", ErrInvalidStatus, s)
}

// Tag renders the status as used in report headers, e.g. "[COMPLETED]".
func (s MilestoneStatus) Tag() string {
	return "[" + strings.ToUpper(string(s)) + "]"
}

func ParseReceivableStatus(s string) (ReceivableStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range []ReceivableStatus{ReceivableUpcomingDue, ReceivableReadyToInvoice, ReceivablePendingApproval} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: receivable %q", ErrInvalidStatus, s)
}

// Action is the follow-up offered on a receivable card.
func (s ReceivableStatus) Action() string {
	switch s {
	case ReceivableReadyToInvoice:
		return "Generar Factura"
	case ReceivablePendingApproval:
		return "Seguimiento"
	}
	return "Gestionar Cobranza"
}

// DueLabel and DueDate pick the completion date for finished projects.
func (p Project) DueLabel() string {
	if p.Status == StatusCompleted {
		return "Completada"
	}
	return "Fecha Límite"
}

func (p Project) DueDate() string {
	if p.Status == StatusCompleted {
		return p.CompletedOn
	}
	return p.Deadline
}

// CurrentMilestone returns the first milestone marked current, if any.
func (p Project) CurrentMilestone() (Milestone, bool) {
	for _, m := range p.Timeline {
		if m.Status == MilestoneCurrent {
			return m, true
		}
	}
	return Milestone{}, false
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	if p.Progress < 0 || p.Progress > 100 {
		return ErrInvalidProgress
	}
	if p.Budget.Cents < 0 {
		return ErrNegativeAmount
	}
	if p.Status == StatusCompleted && strings.TrimSpace(p.CompletedOn) == "" {
		return ErrMissingCompletion
	}
	if p.Status != StatusCompleted && strings.TrimSpace(p.CompletedOn) != "" {
		return ErrUnexpectedDone
	}
	for _, m := range p.Timeline {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("milestone %s: %w", m.ID, err)
		}
	}
	return nil
}

func (m Milestone) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrEmptyID
	}
	if _, err := ParseMilestoneStatus(string(m.Status)); err != nil {
		return err
	}
	return nil
}

func (r Receivable) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(r.Client) == "" {
		return ErrEmptyName
	}
	if r.Amount.Cents < 0 {
		return ErrNegativeAmount
	}
	if _, err := ParseReceivableStatus(string(r.Status)); err != nil {
		return err
	}
	return nil
}

// Validate checks every record and reports the first failure with its id.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Projects))
	for _, p := range c.Projects {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("project %q: %w", p.ID, err)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("project %q: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	for _, r := range c.Receivables {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("receivable %q: %w", r.ID, err)
		}
	}
	return nil
}

// FindProject returns the project with the given id.
func FindProject(projects []Project, id string) (Project, error) {
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
