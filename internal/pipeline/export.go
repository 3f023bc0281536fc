package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/conluiben/excel-data-extraction/internal"
)

// WriteTable writes rows in the format named by the output extension.
// Missing values are written as empty cells.
func WriteTable(columns []string, rows []internal.OutputRow, outputPath string) error {
	switch ext := strings.ToLower(filepath.Ext(outputPath)); ext {
	case ".xlsx":
		return WriteXLSX(columns, rows, outputPath)
	case ".csv", "":
		return WriteCSV(columns, rows, outputPath)
	default:
		return fmt.Errorf("unsupported output format: %s", ext)
	}
}

func WriteXLSX(columns []string, rows []internal.OutputRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value string) {
			if value == "" {
				return
			}
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		for c, name := range columns {
			set(c+1, row.Values[name])
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func WriteCSV(columns []string, rows []internal.OutputRow, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for c, name := range columns {
			record[c] = row.Values[name]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
