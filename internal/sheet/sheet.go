// Package sheet reads uploaded spreadsheets into header->value rows and writes
// template and export workbooks.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"simventas/internal"
	"simventas/internal/sales"
)

var ErrNoHeader = errors.New("spreadsheet has no header row")

// ReadRows returns the data rows of the first sheet that has a header row.
// Cells keep their raw value, so dates arrive as serial numbers.
func ReadRows(r io.Reader) ([]map[string]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			continue
		}
		out, ok := rowsToMaps(rows)
		if ok {
			return out, nil
		}
	}
	return nil, ErrNoHeader
}

func ReadRowsBytes(content []byte) ([]map[string]any, error) {
	return ReadRows(bytes.NewReader(content))
}

func ReadRowsFile(path string) ([]map[string]any, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return ReadRows(fh)
}

// rowsToMaps uses the first non-empty row as header. Columns with a blank or
// repeated header are ignored, as are rows with no values.
func rowsToMaps(rows [][]string) ([]map[string]any, bool) {
	headerAt := -1
	for i, row := range rows {
		if !emptyRow(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, false
	}

	header := make([]string, len(rows[headerAt]))
	seen := map[string]bool{}
	for i, h := range rows[headerAt] {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		header[i] = h
	}

	out := make([]map[string]any, 0, len(rows)-headerAt-1)
	for _, row := range rows[headerAt+1:] {
		if emptyRow(row) {
			continue
		}
		m := make(map[string]any, len(header))
		for i, h := range header {
			if h == "" || i >= len(row) {
				continue
			}
			m[h] = row[i]
		}
		out = append(out, m)
	}
	return out, true
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteTemplate writes a workbook holding only a header row with columns.
func WriteTemplate(w io.Writer, columns []string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := writeHeader(f, sheet, columns); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func SaveTemplate(path string, columns []string) error {
	return saveTo(path, func(w io.Writer) error { return WriteTemplate(w, columns) })
}

// ExportSales writes the month records, one row each, in the standard column order.
func ExportSales(w io.Writer, month string, recs []internal.SaleRecord) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if name := sheetName(month); name != "" {
		if err := f.SetSheetName(sheet, name); err != nil {
			return err
		}
		sheet = name
	}
	if err := writeHeader(f, sheet, sales.AllFields); err != nil {
		return err
	}

	for i, rec := range recs {
		if err := writeRow(f, sheet, i+2, recordCells(rec)); err != nil {
			return fmt.Errorf("export %s row %d: %w", rec.Numero, i+2, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	for c, v := range cells {
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func SaveSales(path, month string, recs []internal.SaleRecord) error {
	return saveTo(path, func(w io.Writer) error { return ExportSales(w, month, recs) })
}

// recordCells follows sales.AllFields.
func recordCells(rec internal.SaleRecord) []any {
	return []any{
		rec.Numero, rec.ICCID, registroCell(rec.RegistroSIM), rec.FechaIngreso, rec.FechaActivacion,
		rec.EstadoSim, rec.TipoVenta, rec.NovedadEnGestion, rec.Nombre, rec.Contacto1,
		rec.Contacto2, rec.FechaCartera, derefFloat(rec.Saldo), derefFloat(rec.Abono), rec.Guia, rec.Transportadora,
		rec.EstadoGuia, rec.Novedad, rec.DescripcionNovedad, rec.FechaHoraReporte,
	}
}

func registroCell(r internal.RegistroSIM) string {
	switch r {
	case internal.RegistroRegistered:
		return "SI"
	case internal.RegistroNotRegistered:
		return "NO"
	}
	return ""
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	if len(columns) == 0 {
		return errors.New("no columns")
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

// sheetName keeps what excelize accepts: at most 31 chars, none of :\/?*[].
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}

func saveTo(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(fh); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
