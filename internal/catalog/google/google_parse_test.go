package google

import (
	"strings"
	"testing"

	"obras/internal/catalog"
	"obras/internal/core"
)

func projectsSheet() [][]interface{} {
	return [][]interface{}{
		{"ID", "Nombre", "Status", "Presupuesto", "Avance", "Fecha Límite", "Fecha Completada", "Responsable", "Contratista", "Cliente", "Próximo Hito", "Observaciones"},
		{"1", "Centro Comunitario Norte", "activa", "$450,000", "75%", "15/Oct/2025", "", "Ing. Ana Torres", "Construcciones Modernas S.A.", "Municipio de Guadalajara", "Instalación de sistema eléctrico.", "Pendiente la entrega"},
		{""},
		{"3", "Biblioteca Municipal", "Completada", 620000.0, 1.0, "20/Ago/2025", "20/Ago/2025", "Ing. Sofia Reyes"},
	}
}

func TestParseProjects(t *testing.T) {
	ps, err := parseProjects(projectsSheet())
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(ps))
	}
	if ps[0].Budget != core.Pesos(450000) || ps[0].Progress != 75 || ps[0].Status != core.StatusActive {
		t.Fatalf("unexpected first project: %+v", ps[0])
	}
	if ps[0].Client != "Municipio de Guadalajara" {
		t.Fatalf("unexpected client %q", ps[0].Client)
	}
	// short rows fall back to empty strings
	if ps[1].Status != core.StatusCompleted || ps[1].Budget != core.Pesos(620000) || ps[1].Client != "" {
		t.Fatalf("unexpected second project: %+v", ps[1])
	}
	if ps[1].Progress != 1 {
		t.Fatalf("expected progress 1, got %d", ps[1].Progress)
	}
}

func TestParseProjects_MissingHeaders(t *testing.T) {
	_, err := parseProjects([][]interface{}{{"ID", "Nombre"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Presupuesto") || !strings.Contains(err.Error(), "Avance") {
		t.Fatalf("error should list missing headers: %v", err)
	}
}

func TestParseProjects_BadStatus(t *testing.T) {
	values := projectsSheet()[:2]
	values[1][2] = "cancelada"
	if _, err := parseProjects(values); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseMilestonesAndAttach(t *testing.T) {
	values := [][]interface{}{
		{"obra", "id", "fecha", "título", "descripción", "status"},
		{"1", "t1_1", "10/Mar/2025", "Inicio de Obra", "Movimiento de tierras y cimentación.", "completed"},
		{"1", "t1_2", "20/Jun/2025", "Estructura Principal", "Levantamiento de muros.", "current"},
		{"7", "t7_1", "01/Ene/2025", "Huérfano", "", "pending"},
	}
	ms, err := parseMilestones(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	ps, _ := parseProjects(projectsSheet())
	orphans := catalog.AttachTimelines(ps, ms)

	if len(ps[0].Timeline) != 2 || ps[0].Timeline[1].ID != "t1_2" {
		t.Fatalf("unexpected timeline: %+v", ps[0].Timeline)
	}
	if len(ps[1].Timeline) != 0 {
		t.Fatalf("expected empty timeline, got %+v", ps[1].Timeline)
	}
	if len(orphans) != 1 || orphans[0] != "7" {
		t.Fatalf("unexpected orphans: %v", orphans)
	}
}

func TestParseReceivables(t *testing.T) {
	values := [][]interface{}{
		{"ID", "Cliente", "Monto", "Concepto", "Fecha", "Status"},
		{"c1", "Municipio de Guadalajara", "450000", "Centro Comunitario Norte - Pago 3/4", "15 de Septiembre, 2025", "Próximo Vencimiento"},
		{"c2", "Gobierno del Estado", "$620,000.00", "Biblioteca Municipal - Pago Final", "10 de Septiembre, 2025", "listo para cobro"},
	}
	rs, err := parseReceivables(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("expected 2 receivables, got %d", len(rs))
	}
	if rs[1].Amount != core.Pesos(620000) || rs[1].Status != core.ReceivableReadyToInvoice {
		t.Fatalf("unexpected receivable: %+v", rs[1])
	}
}

func TestParsePercent(t *testing.T) {
	cases := map[string]int{"75": 75, "75%": 75, " 60 % ": 60, "0.25": 25, "": 0, "100": 100}
	for in, want := range cases {
		got, err := parsePercent(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %d, got %d (err=%v)", in, want, got, err)
		}
	}
	if _, err := parsePercent("mucho"); err == nil {
		t.Error("expected error")
	}
}

func TestToStrings_Floats(t *testing.T) {
	got := toStrings([]interface{}{1200000.0, " x ", 3})
	if got[0] != "1200000" || got[1] != "x" || got[2] != "3" {
		t.Fatalf("unexpected: %v", got)
	}
}
