package report

import (
	"regexp"
	"strconv"

	"obras/internal/core"
)

const noObservations = "Sin observaciones."

type options struct {
	measurer Measurer
	geometry Geometry
}

type Option func(*options)

func WithMeasurer(m Measurer) Option {
	return func(o *options) { o.measurer = m }
}

func WithGeometry(g Geometry) Option {
	return func(o *options) { o.geometry = g }
}

// layout tracks the cursor while blocks are placed.
type layout struct {
	g     Geometry
	m     Measurer
	pages []Page
	y     float64
}

func (l *layout) newPage() {
	l.pages = append(l.pages, Page{})
	l.y = l.g.Margin
}

// ensure starts a new page when h more millimetres would cross the bottom
// margin.
func (l *layout) ensure(h float64) {
	if l.y+h > l.g.bottom() {
		l.newPage()
	}
}

func (l *layout) emit(b Block) {
	cur := &l.pages[len(l.pages)-1]
	cur.Blocks = append(cur.Blocks, b)
}

func (l *layout) text(x float64, s string, f Font) {
	if s == "" {
		return
	}
	l.emit(Block{Kind: KindText, X: x, Y: l.y, Text: s, Font: f})
}

// lines writes wrapped text, checking the page before every line.
func (l *layout) lines(x, width float64, s string, f Font) {
	for _, ln := range Wrap(l.m, s, f, width) {
		l.ensure(l.g.LineHeight)
		l.text(x, ln, f)
		l.y += l.g.LineHeight
	}
}

// section writes a header with a rule under it. need is the space the
// header must find on the current page.
func (l *layout) section(title string, need float64) {
	l.ensure(need)
	l.text(l.g.Margin, title, Font{Style: Bold, Size: l.g.HeaderSize})
	l.y += l.g.LineHeight / 2
	l.emit(Block{Kind: KindRule, X: l.g.Margin, Y: l.y, Width: l.g.contentWidth(), Stroke: l.g.RuleStroke})
	l.y += l.g.SectionGap
}

// Compose lays out the report for p. It fails only when no measurer is
// configured.
func Compose(p core.Project, opts ...Option) (Document, error) {
	o := options{geometry: DefaultGeometry()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.measurer == nil {
		return Document{}, ErrNoMeasurer
	}
	g := o.geometry
	l := &layout{g: g, m: o.measurer}
	l.newPage()

	body := Font{Style: Regular, Size: g.BodySize}
	bold := Font{Style: Bold, Size: g.BodySize}
	title := "Informe de Obra: " + p.Name

	l.lines(g.Margin, g.contentWidth(), title, Font{Style: Bold, Size: g.TitleSize})
	l.y += g.LineHeight

	l.section("Información General", g.LineHeight)
	valueX := g.Margin + g.LabelOffset
	for _, row := range infoRows(p) {
		l.ensure(g.LineHeight)
		l.text(g.Margin, row.label, bold)
		first := true
		for _, ln := range Wrap(l.m, row.value, body, g.contentWidth()-g.LabelOffset) {
			if !first {
				l.ensure(g.LineHeight)
			}
			l.text(valueX, ln, body)
			l.y += g.LineHeight
			first = false
		}
	}
	l.y += g.SectionGap

	l.section("Observaciones", g.LineHeight)
	obs := p.Observations
	if obs == "" {
		obs = noObservations
	}
	l.lines(g.Margin, g.contentWidth(), obs, Font{Style: Italic, Size: g.BodySize})
	l.y += g.SectionGap

	l.section("Hitos del Proyecto", g.LineHeight*3)
	for _, m := range p.Timeline {
		l.ensure(g.LineHeight * 2)
		header := m.Status.Tag() + " " + m.Date + " - " + m.Title
		l.lines(g.Margin, g.contentWidth(), header, bold)
		l.lines(g.Margin+g.Indent, g.contentWidth()-g.Indent, m.Description, body)
		l.y += g.SectionGap / 2
	}

	return Document{Title: title, Geometry: g, Pages: l.pages}, nil
}

type infoRow struct{ label, value string }

func infoRows(p core.Project) []infoRow {
	rows := []infoRow{
		{"Cliente:", p.Client},
		{"Responsable:", p.Responsible},
		{"Contratista:", p.Contractor},
		{"Presupuesto Total:", p.Budget.String()},
		{"Avance Actual:", strconv.Itoa(p.Progress) + "%"},
		{"Estado:", p.Status.Label()},
	}
	if p.Status == core.StatusCompleted {
		return append(rows, infoRow{"Fecha Completada:", p.CompletedOn})
	}
	return append(rows, infoRow{"Fecha Límite:", p.Deadline})
}

var whitespace = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]`)

// FileName is the download name for a project's report.
func FileName(p core.Project) string {
	return "informe-" + whitespace.ReplaceAllString(p.Name, "_") + ".pdf"
}
