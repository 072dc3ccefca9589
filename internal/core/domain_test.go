package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectValidate(t *testing.T) {
	valid := sampleProjects()[0]
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(p *Project)
		want   error
	}{
		{"empty id", func(p *Project) { p.ID = " " }, ErrEmptyID},
		{"empty name", func(p *Project) { p.Name = "" }, ErrEmptyName},
		{"bad status", func(p *Project) { p.Status = "cancelada" }, ErrInvalidStatus},
		{"progress high", func(p *Project) { p.Progress = 101 }, ErrInvalidProgress},
		{"progress low", func(p *Project) { p.Progress = -1 }, ErrInvalidProgress},
		{"negative budget", func(p *Project) { p.Budget = Money{Cents: -1} }, ErrNegativeAmount},
		{"completion on active", func(p *Project) { p.CompletedOn = "01/Ene/2025" }, ErrUnexpectedDone},
		{"completed without date", func(p *Project) { p.Status = StatusCompleted }, ErrMissingCompletion},
		{"bad milestone", func(p *Project) { p.Timeline = []Milestone{{ID: "m", Status: "late"}} }, ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			assert.ErrorIs(t, p.Validate(), tc.want)
		})
	}
}

func TestCatalogValidate_DuplicateID(t *testing.T) {
	ps := sampleProjects()
	ps[1].ID = ps[0].ID
	err := Catalog{Projects: ps}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")

	assert.NoError(t, Catalog{Projects: sampleProjects(), Receivables: sampleReceivables()}.Validate())
}

func TestProjectDueDate(t *testing.T) {
	ps := sampleProjects()
	assert.Equal(t, "Fecha Límite", ps[0].DueLabel())
	assert.Equal(t, "15/Oct/2025", ps[0].DueDate())
	assert.Equal(t, "Completada", ps[2].DueLabel())
	assert.Equal(t, "20/Ago/2025", ps[2].DueDate())
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Activa", StatusActive.Label())
	assert.Equal(t, "Completada", StatusCompleted.Label())
	assert.Equal(t, "[CURRENT]", MilestoneCurrent.Tag())

	st, err := ParseReceivableStatus("listo para cobro")
	require.NoError(t, err)
	assert.Equal(t, ReceivableReadyToInvoice, st)
	assert.Equal(t, "Generar Factura", st.Action())
	assert.Equal(t, "Seguimiento", ReceivablePendingApproval.Action())
	assert.Equal(t, "Gestionar Cobranza", ReceivableUpcomingDue.Action())
}

func TestContactEmail(t *testing.T) {
	cases := map[string]string{
		"Ing. Ana Torres":        "ana.torres@geotest.com",
		"Arq. Luis Vega":         "luis.vega@geotest.com",
		"Sofia  Reyes Pérez":     "sofia.reyes.pérez@geotest.com",
		"Ing. Carlos\u00a0Ponce": "carlos.ponce@geotest.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, ContactEmail(in), in)
	}

	link := ContactLink(sampleProjects()[0])
	assert.Equal(t, "mailto:ana.torres@geotest.com?subject=Consulta%20sobre%20obra%3A%20Centro%20Comunitario%20Norte", link)
	assert.Equal(t, `El avance del proyecto "Parque Infantil Sur" ha sido aprobado.`, ApprovalMessage(sampleProjects()[1]))
}
