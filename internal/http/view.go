package http

import (
	"html/template"
	"math"

	"github.com/dustin/go-humanize"

	"obras/internal/core"
)

const (
	msgRendererMissing = "La librería para generar PDF no se ha cargado. Por favor, recarga la página."
	msgReportFailed    = "Hubo un error al generar el informe PDF."
	msgPendingTasks    = "¡Hay tareas pendientes en algunas obras!"
	msgNoSelection     = "Selecciona una obra para ver detalles"
	msgNotFound        = "Obra no encontrada"
	msgBadFilter       = "Filtro de estado no válido"
)

// gaugeLength is the length of the half-circle arc drawn for the average
// progress gauge.
const gaugeLength = 125.6

type pieSlice struct {
	Label   string
	Count   int
	Color   string
	Percent float64
	Rest    float64
	Offset  float64
}

type dashboardView struct {
	KPIs             core.KPISummary
	Pie              []pieSlice
	GaugeOffset      float64
	TopReceivables   []core.Receivable
	Receivables      []core.Receivable
	FeaturedDocument string
}

type filterOption struct {
	Value  string
	Label  string
	Active bool
}

type listView struct {
	Banner     string
	Projects   []core.Project
	Params     ListParams
	Filters    []filterOption
	HasPending bool
	ExportURL  string
}

type detailView struct {
	Project *core.Project
}

type gestionView struct {
	List        listView
	Detail      detailView
	Receivables []core.Receivable
}

func newDashboardView(kpis core.KPISummary, receivables []core.Receivable, featured string) dashboardView {
	top := receivables
	if len(top) > 3 {
		top = top[:3]
	}
	return dashboardView{
		KPIs:             kpis,
		Pie:              pieSlices(kpis),
		GaugeOffset:      gaugeLength * (1 - kpis.AverageProgress/100),
		TopReceivables:   top,
		Receivables:      receivables,
		FeaturedDocument: featured,
	}
}

// pieSlices lays the status shares out as dash segments on a circle of
// circumference 100, so each slice length is its percentage.
func pieSlices(kpis core.KPISummary) []pieSlice {
	var out []pieSlice
	offset := 25.0 // start at twelve o'clock
	for _, sh := range kpis.StatusShares() {
		if sh.Count == 0 || kpis.Total == 0 {
			continue
		}
		pct := round2(float64(sh.Count) * 100 / float64(kpis.Total))
		out = append(out, pieSlice{
			Label:   sh.Status.Label(),
			Count:   sh.Count,
			Color:   sh.Color,
			Percent: pct,
			Rest:    round2(100 - pct),
			Offset:  round2(offset),
		})
		offset -= pct
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func newListView(projects []core.Project, params ListParams, hasPending bool) listView {
	filters := []filterOption{{Value: string(core.FilterAll), Label: "Todas"}}
	for _, st := range core.ProjectStatuses() {
		filters = append(filters, filterOption{Value: string(st), Label: st.Label()})
	}
	current := params.Status
	if current == "" || current == "all" {
		current = string(core.FilterAll)
	}
	for i := range filters {
		filters[i].Active = filters[i].Value == current
	}
	exportURL := "/obras/export.csv"
	if q := params.Encode(); q != "" {
		exportURL += "?" + q
	}
	banner := ""
	if hasPending {
		banner = msgPendingTasks
	}
	return listView{
		Banner:     banner,
		Projects:   projects,
		Params:     params,
		Filters:    filters,
		HasPending: hasPending,
		ExportURL:  exportURL,
	}
}

var templateFuncs = template.FuncMap{
	"money":       func(m core.Money) string { return m.String() },
	"millions":    core.FormatMillions,
	"thousands":   core.FormatThousands,
	"contactLink": func(p core.Project) template.URL { return template.URL(core.ContactLink(p)) },
	"statusClass": func(s core.ProjectStatus) string { return "status-" + string(s) },
	"receivableClass": func(s core.ReceivableStatus) string {
		switch s {
		case core.ReceivableReadyToInvoice:
			return "receivable-ready"
		case core.ReceivablePendingApproval:
			return "receivable-approval"
		}
		return "receivable-due"
	},
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"fallback": func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	},
}
