package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obras/internal/core"
)

func TestWriteCSV(t *testing.T) {
	projects := []core.Project{
		{ID: "1", Name: "Centro Comunitario Norte", Status: core.StatusActive, Budget: core.Pesos(450000), Progress: 75, Deadline: "15/Oct/2025", Responsible: "Ing. Carlos Rodríguez"},
		{ID: "2", Name: "Escuela, Sur", Status: core.StatusPending, Budget: core.Money{Cents: 12345}, Progress: 0, Deadline: "01/Dic/2025", Responsible: `Arq. "Ana" López`},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, projects))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Nombre", "Status", "Presupuesto", "Avance", "Fecha Límite", "Responsable"}, rows[0])
	assert.Equal(t, []string{"1", "Centro Comunitario Norte", "activa", "450000", "75", "15/Oct/2025", "Ing. Carlos Rodríguez"}, rows[1])
	assert.Equal(t, "Escuela, Sur", rows[2][1])
	assert.Equal(t, "123.45", rows[2][3])
	assert.Equal(t, `Arq. "Ana" López`, rows[2][6])
}

func TestWriteCSV_EmptyListHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "ID,Nombre,Status,Presupuesto,Avance,Fecha Límite,Responsable\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_WriterError(t *testing.T) {
	err := WriteCSV(failingWriter{}, []core.Project{{ID: "1"}})
	assert.Error(t, err)
}
