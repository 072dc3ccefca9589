package google

import (
	"fmt"
	"strconv"
	"strings"

	"obras/internal/core"
)

// Sheet headers, matched case-insensitively.
var (
	projectHeaders = struct {
		ID, Name, Status, Budget, Progress, Deadline, CompletedOn, Responsible, Contractor, Client, Next, Observations string
	}{"ID", "Nombre", "Status", "Presupuesto", "Avance", "Fecha Límite", "Fecha Completada", "Responsable", "Contratista", "Cliente", "Próximo Hito", "Observaciones"}

	milestoneHeaders = struct {
		Project, ID, Date, Title, Description, Status string
	}{"Obra", "ID", "Fecha", "Título", "Descripción", "Status"}

	receivableHeaders = struct {
		ID, Client, Amount, Concept, DueDate, Status string
	}{"ID", "Cliente", "Monto", "Concepto", "Fecha", "Status"}
)

// parseProjects converts the projects sheet into projects without
// timelines. Blank rows are skipped.
func parseProjects(values [][]interface{}) ([]core.Project, error) {
	if len(values) == 0 {
		return nil, nil
	}
	h := projectHeaders
	cols, err := columns(toStrings(values[0]), h.ID, h.Name, h.Status, h.Budget, h.Progress, h.Deadline)
	if err != nil {
		return nil, fmt.Errorf("projects sheet: %w", err)
	}
	headers := toStrings(values[0])
	colCompleted := indexOf(headers, h.CompletedOn)
	colResp := indexOf(headers, h.Responsible)
	colContractor := indexOf(headers, h.Contractor)
	colClient := indexOf(headers, h.Client)
	colNext := indexOf(headers, h.Next)
	colObs := indexOf(headers, h.Observations)

	var out []core.Project
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		id := safeGet(row, cols[0])
		if id == "" {
			continue
		}
		status, err := core.ParseProjectStatus(safeGet(row, cols[2]))
		if err != nil {
			return nil, fmt.Errorf("projects row %d: %w", i+1, err)
		}
		budget, err := core.ParseAmount(safeGet(row, cols[3]))
		if err != nil {
			return nil, fmt.Errorf("projects row %d budget: %w", i+1, err)
		}
		progress, err := parsePercent(safeGet(row, cols[4]))
		if err != nil {
			return nil, fmt.Errorf("projects row %d progress: %w", i+1, err)
		}
		out = append(out, core.Project{
			ID:            id,
			Name:          safeGet(row, cols[1]),
			Status:        status,
			Budget:        core.Money{Cents: budget},
			Progress:      progress,
			Deadline:      safeGet(row, cols[5]),
			CompletedOn:   safeGet(row, colCompleted),
			Responsible:   safeGet(row, colResp),
			Contractor:    safeGet(row, colContractor),
			Client:        safeGet(row, colClient),
			NextMilestone: safeGet(row, colNext),
			Observations:  safeGet(row, colObs),
		})
	}
	return out, nil
}

// parseMilestones groups the milestones sheet by project id, keeping row
// order.
func parseMilestones(values [][]interface{}) (map[string][]core.Milestone, error) {
	out := map[string][]core.Milestone{}
	if len(values) == 0 {
		return out, nil
	}
	h := milestoneHeaders
	cols, err := columns(toStrings(values[0]), h.Project, h.ID, h.Date, h.Title, h.Description, h.Status)
	if err != nil {
		return nil, fmt.Errorf("milestones sheet: %w", err)
	}
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		project := safeGet(row, cols[0])
		if project == "" {
			continue
		}
		status, err := core.ParseMilestoneStatus(safeGet(row, cols[5]))
		if err != nil {
			return nil, fmt.Errorf("milestones row %d: %w", i+1, err)
		}
		out[project] = append(out[project], core.Milestone{
			ID:          safeGet(row, cols[1]),
			Date:        safeGet(row, cols[2]),
			Title:       safeGet(row, cols[3]),
			Description: safeGet(row, cols[4]),
			Status:      status,
		})
	}
	return out, nil
}

func parseReceivables(values [][]interface{}) ([]core.Receivable, error) {
	if len(values) == 0 {
		return nil, nil
	}
	h := receivableHeaders
	cols, err := columns(toStrings(values[0]), h.ID, h.Client, h.Amount, h.Concept, h.DueDate, h.Status)
	if err != nil {
		return nil, fmt.Errorf("receivables sheet: %w", err)
	}
	var out []core.Receivable
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		id := safeGet(row, cols[0])
		if id == "" {
			continue
		}
		amount, err := core.ParseAmount(safeGet(row, cols[2]))
		if err != nil {
			return nil, fmt.Errorf("receivables row %d amount: %w", i+1, err)
		}
		status, err := core.ParseReceivableStatus(safeGet(row, cols[5]))
		if err != nil {
			return nil, fmt.Errorf("receivables row %d: %w", i+1, err)
		}
		out = append(out, core.Receivable{
			ID:      id,
			Client:  safeGet(row, cols[1]),
			Amount:  core.Money{Cents: amount},
			Concept: safeGet(row, cols[3]),
			DueDate: safeGet(row, cols[4]),
			Status:  status,
		})
	}
	return out, nil
}

// columns resolves required headers, reporting every missing one.
func columns(headers []string, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		idx[i] = indexOf(headers, n)
		if idx[i] == -1 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}
	return idx, nil
}

// parsePercent accepts "75", "75%" and fractions such as "0.75" as
// formatted by percent cells.
func parsePercent(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percent %q", s)
	}
	if f > 0 && f < 1 {
		f *= 100
	}
	return int(f + 0.5), nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
