// Package report lays out a project report as positioned text and rule
// blocks split into pages, and serializes that layout to PDF.
//
// Layout and serialization are separate steps: Compose only needs a Measurer
// to wrap text, so pagination can be tested without producing a PDF.
package report

import "errors"

type Kind int

const (
	KindText Kind = iota
	KindRule
)

// FontStyle uses the fpdf style letters.
type FontStyle string

const (
	Regular FontStyle = ""
	Bold    FontStyle = "B"
	Italic  FontStyle = "I"
)

type Font struct {
	Style FontStyle
	Size  float64 // points
}

// Block is one positioned element. For text, Y is the baseline. For rules,
// the line runs from X to X+Width at height Y with the given Stroke.
type Block struct {
	Kind   Kind
	X, Y   float64
	Text   string
	Font   Font
	Width  float64
	Stroke float64
}

type Page struct {
	Blocks []Block
}

type Document struct {
	Title    string
	Geometry Geometry
	Pages    []Page
}

// Geometry holds page size and spacing, all in millimetres except font sizes.
type Geometry struct {
	PageWidth   float64
	PageHeight  float64
	Margin      float64
	LineHeight  float64
	SectionGap  float64
	LabelOffset float64
	Indent      float64
	RuleStroke  float64
	TitleSize   float64
	HeaderSize  float64
	BodySize    float64
}

// DefaultGeometry is an A4 portrait page.
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:   210,
		PageHeight:  297,
		Margin:      15,
		LineHeight:  7,
		SectionGap:  5,
		LabelOffset: 40,
		Indent:      5,
		RuleStroke:  0.5,
		TitleSize:   16,
		HeaderSize:  12,
		BodySize:    10,
	}
}

func (g Geometry) contentWidth() float64 { return g.PageWidth - 2*g.Margin }
func (g Geometry) bottom() float64       { return g.PageHeight - g.Margin }

// Measurer reports the rendered width of text in millimetres.
type Measurer interface {
	Width(text string, f Font) float64
}

type MeasurerFunc func(text string, f Font) float64

func (fn MeasurerFunc) Width(text string, f Font) float64 { return fn(text, f) }

// Renderer turns a composed Document into a file. Measurer must match the
// metrics Render uses, so wrapped lines fit once written.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	Measurer() Measurer
}

var (
	ErrNoMeasurer          = errors.New("report: no measurer configured")
	ErrRendererUnavailable = errors.New("report: pdf renderer unavailable")
	ErrRenderFailed        = errors.New("report: render failed")
	ErrEmptyDocument       = errors.New("report: document has no pages")
)

// Lines returns the text of every text block in page order.
func (d Document) Lines() []string {
	var out []string
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			if b.Kind == KindText {
				out = append(out, b.Text)
			}
		}
	}
	return out
}
