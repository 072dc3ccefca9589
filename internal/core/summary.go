package core

import (
	"fmt"
	"math"
)

// KPISummary is the dashboard's aggregate view over the catalog.
type KPISummary struct {
	Active          int
	Pending         int
	Completed       int
	Total           int
	TotalBudget     Money
	AverageProgress float64 // mean progress of active projects, 0 when none
	TotalReceivable Money
	HasPending      bool
}

// StatusShare is one slice of the status pie chart.
type StatusShare struct {
	Status ProjectStatus
	Count  int
	Color  string
}

var statusColors = map[ProjectStatus]string{
	StatusActive:    "#f39c12",
	StatusPending:   "#3498db",
	StatusCompleted: "#2ecc71",
}

// ComputeKPIs aggregates counts and totals in a single pass over projects.
// Unknown statuses count toward Total only.
func ComputeKPIs(projects []Project, receivables []Receivable) KPISummary {
	var s KPISummary
	var activeProgress int
	for _, p := range projects {
		switch p.Status {
		case StatusActive:
			s.Active++
			activeProgress += p.Progress
		case StatusPending:
			s.Pending++
		case StatusCompleted:
			s.Completed++
		}
		s.TotalBudget = s.TotalBudget.Add(p.Budget)
	}
	s.Total = len(projects)
	if s.Active > 0 {
		s.AverageProgress = float64(activeProgress) / float64(s.Active)
	}
	for _, r := range receivables {
		s.TotalReceivable = s.TotalReceivable.Add(r.Amount)
	}
	s.HasPending = s.Pending > 0
	return s
}

// StatusShares returns the per-status counts in the order active, pending,
// completed.
func (s KPISummary) StatusShares() []StatusShare {
	return []StatusShare{
		{Status: StatusActive, Count: s.Active, Color: statusColors[StatusActive]},
		{Status: StatusPending, Count: s.Pending, Color: statusColors[StatusPending]},
		{Status: StatusCompleted, Count: s.Completed, Color: statusColors[StatusCompleted]},
	}
}

// RoundedPercent renders the average progress as "50%".
func (s KPISummary) RoundedPercent() string {
	return fmt.Sprintf("%d%%", int(math.Round(s.AverageProgress)))
}

// FormatMillions renders an amount as "$2.2M".
func FormatMillions(m Money) string {
	return fmt.Sprintf("$%.1fM", m.Float()/1e6)
}

// FormatThousands renders an amount as "$1350k".
func FormatThousands(m Money) string {
	return fmt.Sprintf("$%.0fk", m.Float()/1e3)
}
