package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obras/internal/core"
)

// fixedWidth measures every rune as 2mm at 10pt, scaled by font size.
var fixedWidth = MeasurerFunc(func(text string, f Font) float64 {
	return float64(len([]rune(text))) * 2 * f.Size / 10
})

func sampleProject() core.Project {
	return core.Project{
		ID:            "1",
		Name:          "Centro Comunitario Norte",
		Status:        core.StatusActive,
		Budget:        core.Pesos(450000),
		Progress:      75,
		Deadline:      "15/Oct/2025",
		Responsible:   "Ing. Ana Torres",
		Contractor:    "Construcciones Modernas S.A.",
		Client:        "Municipio de Guadalajara",
		NextMilestone: "Instalación de sistema eléctrico.",
		Observations:  "Pendiente la entrega de materiales de acabado por parte del proveedor.",
		Timeline: []core.Milestone{
			{ID: "t1_1", Date: "10/Mar/2025", Title: "Inicio de Obra", Description: "Movimiento de tierras y cimentación.", Status: core.MilestoneCompleted},
			{ID: "t1_2", Date: "20/Jun/2025", Title: "Estructura Principal", Description: "Levantamiento de muros y estructura de acero.", Status: core.MilestoneCompleted},
			{ID: "t1_3", Date: "05/Sep/2025", Title: "Acabados Interiores", Description: "Instalación de pisos y pintura.", Status: core.MilestoneCurrent},
			{ID: "t1_4", Date: "15/Oct/2025", Title: "Entrega Final", Description: "Inspección final y entrega al cliente.", Status: core.MilestonePending},
		},
	}
}

func longText(n int) string {
	var b strings.Builder
	words := []string{"avance", "de", "obra", "pendiente", "por", "revisar", "con", "el", "contratista"}
	for i := 0; b.Len() < n; i++ {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(words[i%len(words)])
	}
	return b.String()[:n]
}

func assertWithinMargins(t *testing.T, doc Document) {
	t.Helper()
	g := doc.Geometry
	for i, p := range doc.Pages {
		for _, b := range p.Blocks {
			assert.GreaterOrEqual(t, b.Y, g.Margin, "page %d block %q above top margin", i, b.Text)
			assert.LessOrEqual(t, b.Y, g.PageHeight-g.Margin, "page %d block %q below bottom margin", i, b.Text)
		}
	}
}

func TestCompose_RequiresMeasurer(t *testing.T) {
	doc, err := Compose(sampleProject())
	assert.ErrorIs(t, err, ErrNoMeasurer)
	assert.Empty(t, doc.Pages)
}

func TestCompose_SectionOrder(t *testing.T) {
	doc, err := Compose(sampleProject(), WithMeasurer(fixedWidth))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)

	lines := doc.Lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "Informe de Obra: Centro Comunitario Norte", lines[0])

	idx := func(s string) int {
		for i, l := range lines {
			if l == s {
				return i
			}
		}
		t.Fatalf("line %q not found", s)
		return -1
	}
	general, obs, hitos := idx("Información General"), idx("Observaciones"), idx("Hitos del Proyecto")
	assert.Less(t, general, obs)
	assert.Less(t, obs, hitos)

	assert.Contains(t, lines, "$450,000")
	assert.Contains(t, lines, "75%")
	assert.Contains(t, lines, "Activa")
	assert.Contains(t, lines, "Fecha Límite:")
	assert.Contains(t, lines, "[CURRENT] 05/Sep/2025 - Acabados Interiores")

	var rules int
	for _, b := range doc.Pages[0].Blocks {
		if b.Kind == KindRule {
			rules++
			assert.Equal(t, 180.0, b.Width)
		}
	}
	assert.Equal(t, 3, rules)
}

func TestCompose_CompletedProjectShowsCompletionDate(t *testing.T) {
	p := sampleProject()
	p.Status = core.StatusCompleted
	p.CompletedOn = "20/Ago/2025"

	doc, err := Compose(p, WithMeasurer(fixedWidth))
	require.NoError(t, err)

	lines := doc.Lines()
	assert.Contains(t, lines, "Fecha Completada:")
	assert.Contains(t, lines, "20/Ago/2025")
	assert.NotContains(t, lines, "Fecha Límite:")
	assert.Contains(t, lines, "Completada")
}

func TestCompose_EmptyObservationsFallback(t *testing.T) {
	p := sampleProject()
	p.Observations = ""

	doc, err := Compose(p, WithMeasurer(fixedWidth))
	require.NoError(t, err)

	var italic []string
	for _, b := range doc.Pages[0].Blocks {
		if b.Font.Style == Italic {
			italic = append(italic, b.Text)
		}
	}
	assert.Equal(t, []string{"Sin observaciones."}, italic)
}

func TestCompose_LongObservationsBreakPage(t *testing.T) {
	p := sampleProject()
	p.Observations = longText(500)
	g := DefaultGeometry()
	g.PageHeight = 140 // observations start near the bottom of the first page

	doc, err := Compose(p, WithMeasurer(fixedWidth), WithGeometry(g))
	require.NoError(t, err)

	assert.Greater(t, len(doc.Pages), 1)
	assertWithinMargins(t, doc)

	var obs []string
	var pagesWithObs int
	for _, page := range doc.Pages {
		found := false
		for _, b := range page.Blocks {
			if b.Font.Style == Italic {
				obs = append(obs, b.Text)
				found = true
			}
		}
		if found {
			pagesWithObs++
		}
	}
	assert.Greater(t, len(obs), 1, "observations should wrap")
	assert.Greater(t, pagesWithObs, 1, "observations should span a page break")
	// no word is split across lines
	assert.Equal(t, strings.Join(strings.Fields(p.Observations), " "), strings.Join(obs, " "))
	for _, l := range obs {
		assert.LessOrEqual(t, fixedWidth.Width(l, Font{Style: Italic, Size: g.BodySize}), g.PageWidth-2*g.Margin)
	}
}

func TestCompose_ManyMilestonesStayWithinMargins(t *testing.T) {
	p := sampleProject()
	for i := 0; i < 40; i++ {
		p.Timeline = append(p.Timeline, core.Milestone{
			ID: "extra", Date: "01/Nov/2025", Title: "Revisión", Description: longText(150), Status: core.MilestonePending,
		})
	}

	doc, err := Compose(p, WithMeasurer(fixedWidth))
	require.NoError(t, err)

	assert.Greater(t, len(doc.Pages), 2)
	assertWithinMargins(t, doc)

	// the first block of every continuation page sits on the top margin
	for _, page := range doc.Pages[1:] {
		require.NotEmpty(t, page.Blocks)
		assert.Equal(t, doc.Geometry.Margin, page.Blocks[0].Y)
	}
}

func TestWrap(t *testing.T) {
	f := Font{Size: 10}
	cases := []struct {
		name string
		text string
		max  float64
		want []string
	}{
		{"fits", "hola mundo", 100, []string{"hola mundo"}},
		{"breaks on space", "hola mundo", 10, []string{"hola", "mundo"}},
		{"long word kept whole", "supercalifragilistico de", 10, []string{"supercalifragilistico", "de"}},
		{"collapses spaces", "a   b", 100, []string{"a b"}},
		{"paragraphs", "uno\n\ndos", 100, []string{"uno", "", "dos"}},
		{"empty", "", 100, []string{""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Wrap(fixedWidth, tc.text, f, tc.max))
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "informe-Centro_Comunitario_Norte.pdf", FileName(sampleProject()))
	assert.Equal(t, "informe-a__b.pdf", FileName(core.Project{Name: "a \tb"}))
	assert.Equal(t, "informe-Obra_Norte_2.pdf", FileName(core.Project{Name: "Obra\u00a0Norte\u20032"}))
}
