package report

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"
)

const pdfFamily = "Helvetica"

// PDFRenderer writes documents with fpdf using the core Helvetica font, so
// no font files are needed at runtime.
type PDFRenderer struct {
	mu      sync.Mutex
	metrics *fpdf.Fpdf
	tr      func(string) string
	now     func() time.Time
}

func NewPDFRenderer() *PDFRenderer {
	m := fpdf.New("P", "mm", "A4", "")
	return &PDFRenderer{
		metrics: m,
		tr:      m.UnicodeTranslatorFromDescriptor(""),
		now:     time.Now,
	}
}

// Measurer returns widths from the same font metrics Render writes with.
func (r *PDFRenderer) Measurer() Measurer {
	return MeasurerFunc(func(text string, f Font) float64 {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.metrics.SetFont(pdfFamily, string(f.Style), f.Size)
		return r.metrics.GetStringWidth(r.tr(text))
	})
}

// Render serializes doc into an in-memory PDF. Nothing is returned unless
// the whole document was written.
func (r *PDFRenderer) Render(doc Document) ([]byte, error) {
	if len(doc.Pages) == 0 {
		return nil, ErrEmptyDocument
	}
	g := doc.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
	})
	pdf.SetMargins(g.Margin, g.Margin, g.Margin)
	pdf.SetAutoPageBreak(false, g.Margin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("obras", true)
	pdf.SetCreationDate(r.now())
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, b := range page.Blocks {
			switch b.Kind {
			case KindText:
				pdf.SetFont(pdfFamily, string(b.Font.Style), b.Font.Size)
				pdf.Text(b.X, b.Y, tr(b.Text))
			case KindRule:
				pdf.SetLineWidth(b.Stroke)
				pdf.Line(b.X, b.Y, b.X+b.Width, b.Y)
			}
		}
		if pdf.Err() {
			break
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}
