package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/conluiben/excel-data-extraction/internal"
)

var exportRows = []internal.OutputRow{
	{LineNo: 1, Values: map[string]string{"extracted": "Y", "Description": "RED WIRE", "color": "RED", "info": "WIRE"}},
	{LineNo: 2, Values: map[string]string{"Description": "GOGGLES"}, Degraded: true},
}

func TestWriteCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "out.csv")
	cols := []string{"extracted", "Description", "info", "color"}
	if err := WriteTable(cols, exportRows, out); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("len=%d", len(records))
	}
	if records[1][3] != "RED" || records[2][0] != "" || records[2][1] != "GOGGLES" {
		t.Fatalf("records=%v", records)
	}
}

func TestWriteXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")
	cols := []string{"extracted", "Description", "info"}
	if err := WriteTable(cols, exportRows, out); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][2] != "info" || rows[1][2] != "WIRE" {
		t.Fatalf("rows=%v", rows)
	}
}

func TestWriteTableRejectsUnknownExtension(t *testing.T) {
	if err := WriteTable([]string{"a"}, nil, filepath.Join(t.TempDir(), "out.json")); err == nil {
		t.Fatal("expected error")
	}
}
