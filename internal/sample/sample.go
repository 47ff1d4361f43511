// Package sample renders small table-bearing PDFs for demos and smoke tests.
package sample

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// Table holds the content of one ruled table on the sample page.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// DefaultTable is the document written when the caller does not supply data.
var DefaultTable = Table{
	Title:   "Quarterly shipments",
	Columns: []string{"Region", "Q1", "Q2", "Q3", "Q4"},
	Rows: [][]string{
		{"North", "120", "134", "129", "151"},
		{"South", "98", "102", "97", "110"},
		{"East", "143", "150", "162", "158"},
		{"West", "87", "91", "95", "99"},
	},
}

// GenerateTable writes a one-page PDF containing tbl to path. A zero-value
// table falls back to DefaultTable.
func GenerateTable(path string, tbl Table) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	if err := render(pdf, tbl); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WriteTable renders tbl as a PDF to w.
func WriteTable(w io.Writer, tbl Table) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	if err := render(pdf, tbl); err != nil {
		return err
	}
	return pdf.Output(w)
}

func render(pdf *gofpdf.Fpdf, tbl Table) error {
	if len(tbl.Columns) == 0 {
		tbl = DefaultTable
	}
	for i, row := range tbl.Rows {
		if len(row) != len(tbl.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(tbl.Columns))
		}
	}

	pdf.AddPage()
	if tbl.Title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, tbl.Title, "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	// Ruled cells so lattice detection has lines to find.
	width := 180.0 / float64(len(tbl.Columns))
	pdf.SetFont("Helvetica", "B", 11)
	for _, col := range tbl.Columns {
		pdf.CellFormat(width, 8, col, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range tbl.Rows {
		for _, cell := range row {
			pdf.CellFormat(width, 7, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Error()
}
