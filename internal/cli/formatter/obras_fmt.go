package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"obras/internal/core"
	"obras/internal/storage"
)

// FormatKPIs renders the dashboard summary cards as text.
func FormatKPIs(s core.KPISummary) string {
	var b strings.Builder
	b.WriteString(Header("Resumen de Obras"))
	b.WriteString("\n")

	rows := [][]string{
		{"Obras totales", humanize.Comma(int64(s.Total))},
		{"Presupuesto total", core.FormatMillions(s.TotalBudget)},
		{"Avance promedio (activas)", ProgressBar(int(s.AverageProgress+0.5), 20)},
		{"Por cobrar", core.FormatThousands(s.TotalReceivable)},
	}
	b.WriteString(RenderTable([]string{"Indicador", "Valor"}, rows))

	b.WriteString("\n")
	for _, share := range s.StatusShares() {
		fmt.Fprintf(&b, "%s  %d\n", StatusIndicator(share.Status), share.Count)
	}
	if s.HasPending {
		b.WriteString("\n" + StyleRed.Render("Hay obras pendientes de aprobación.") + "\n")
	}
	return b.String()
}

// FormatProjectList renders the filtered projects as a table.
func FormatProjectList(projects []core.Project) string {
	if len(projects) == 0 {
		return Dim("No se encontraron obras.") + "\n"
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			StatusIndicator(p.Status),
			p.Budget.String(),
			fmt.Sprintf("%d%%", p.Progress),
			p.DueDate(),
			p.Responsible,
		})
	}
	out := RenderTable([]string{"ID", "Obra", "Estado", "Presupuesto", "Avance", "Fecha", "Responsable"}, rows)
	return out + Dim(fmt.Sprintf("%d obra(s)", len(projects))) + "\n"
}

// FormatProject renders one project with its timeline inside a box.
func FormatProject(p core.Project) string {
	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", StyleDim.Render(label+":"), value)
	}
	field("Estado", StatusIndicator(p.Status))
	field("Presupuesto", p.Budget.String())
	field("Avance", ProgressBar(p.Progress, 20))
	field(p.DueLabel(), p.DueDate())
	field("Responsable", p.Responsible)
	field("Contratista", p.Contractor)
	field("Cliente", p.Client)
	field("Próximo hito", p.NextMilestone)
	field("Observaciones", p.Observations)

	if len(p.Timeline) > 0 {
		b.WriteString("\n" + Bold("Cronograma") + "\n")
		for _, m := range p.Timeline {
			fmt.Fprintf(&b, "%s %s %s\n", milestoneTag(m.Status), StyleDim.Render(m.Date), m.Title)
		}
	}
	return RenderBox(p.Name, strings.TrimRight(b.String(), "\n"))
}

func milestoneTag(s core.MilestoneStatus) string {
	switch s {
	case core.MilestoneCompleted:
		return StyleGreen.Render(s.Tag())
	case core.MilestoneCurrent:
		return StyleOrange.Render(s.Tag())
	default:
		return StyleDim.Render(s.Tag())
	}
}

// FormatReceivables renders the collections list with its suggested action.
func FormatReceivables(receivables []core.Receivable) string {
	if len(receivables) == 0 {
		return Dim("Sin cobranzas registradas.") + "\n"
	}
	rows := make([][]string, 0, len(receivables))
	var total core.Money
	for _, r := range receivables {
		total = total.Add(r.Amount)
		rows = append(rows, []string{
			r.Client,
			r.Concept,
			r.Amount.String(),
			r.DueDate,
			ReceivableStyle(r.Status).Render(string(r.Status)),
			r.Status.Action(),
		})
	}
	out := RenderTable([]string{"Cliente", "Concepto", "Monto", "Vence", "Estado", "Acción"}, rows)
	return out + Bold("Total: "+total.String()) + "\n"
}

// RenderBox wraps content in a rounded border with an optional title.
func RenderBox(title, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)
	if title != "" {
		return box.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return box.Render(content)
}

// FormatApprovals renders the approval journal, newest first.
func FormatApprovals(approvals []storage.Approval, now time.Time) string {
	if len(approvals) == 0 {
		return Dim("Sin aprobaciones registradas.") + "\n"
	}
	rows := make([][]string, 0, len(approvals))
	for _, a := range approvals {
		rows = append(rows, []string{
			a.ApprovedAt.Local().Format("02/01/2006 15:04"),
			a.ProjectID,
			a.ProjectName,
			fmt.Sprintf("%d%%", a.Progress),
			Dim(humanize.RelTime(a.ApprovedAt, now, "antes", "después")),
		})
	}
	return RenderTable([]string{"Fecha", "ID", "Obra", "Avance", ""}, rows)
}
