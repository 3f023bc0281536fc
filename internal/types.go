package internal

type SourceType string

const (
	SourceCSV       SourceType = "csv"
	SourceXLSX      SourceType = "xlsx"
	SourceHTMLTable SourceType = "html"
	SourceEmail     SourceType = "eml"
	SourcePDF       SourceType = "pdf"
)

// Record is one input row. Fields holds only the cells that were present;
// a short row simply lacks the trailing columns.
type Record struct {
	LineNo int
	Source SourceType
	Fields map[string]string
	Meta   map[string]any
}

type Table struct {
	Columns []string
	Records []Record
}

type UnitValue struct {
	Property  string
	Text      string
	Unit      string
	Magnitude *float64
}

// OutputRow is a widened record. Degraded rows passed through without
// extraction because their description field was missing.
type OutputRow struct {
	LineNo   int
	Values   map[string]string
	Units    []UnitValue
	Degraded bool
}

type RunRecord struct {
	ID                string
	Input             string
	InputType         string
	DescriptionColumn string
	Columns           []string
	Rows              int
	Extracted         int
	Degraded          int
	DurationMs        int64
	CreatedAt         string
}
