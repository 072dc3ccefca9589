// Package export writes project lists in spreadsheet-friendly formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"obras/internal/core"
)

// FileName is the download name of the CSV export.
const FileName = "obras_geotest.csv"

var header = []string{"ID", "Nombre", "Status", "Presupuesto", "Avance", "Fecha Límite", "Responsable"}

// WriteCSV writes one row per project after the header row. Budgets are
// plain numbers without currency symbol or grouping.
func WriteCSV(w io.Writer, projects []core.Project) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range projects {
		row := []string{
			p.ID,
			p.Name,
			string(p.Status),
			plainAmount(p.Budget),
			strconv.Itoa(p.Progress),
			p.Deadline,
			p.Responsible,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func plainAmount(m core.Money) string {
	if m.Cents%100 == 0 {
		return strconv.FormatInt(m.Cents/100, 10)
	}
	return strconv.FormatFloat(m.Float(), 'f', 2, 64)
}
