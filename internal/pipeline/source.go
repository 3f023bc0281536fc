package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/conluiben/excel-data-extraction/internal"
	"github.com/conluiben/excel-data-extraction/internal/util"
)

var utf8BOM = []byte("\xef\xbb\xbf")

type ReadOptions struct {
	Encoding string
	// Column name given to the single text column of line-oriented sources.
	DescriptionColumn string
}

func ReadTable(inputType, path string, opts ReadOptions) (internal.Table, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.Table{}, err
	}
	return ParseTable(internal.SourceType(inputType), blob, opts)
}

func ParseTable(source internal.SourceType, blob []byte, opts ReadOptions) (internal.Table, error) {
	switch source {
	case internal.SourceCSV:
		text, err := decodeText(blob, opts.Encoding)
		if err != nil {
			return internal.Table{}, err
		}
		return parseCSV(text)
	case internal.SourceXLSX:
		return parseXLSX(blob)
	case internal.SourceHTMLTable:
		text, err := decodeText(blob, opts.Encoding)
		if err != nil {
			return internal.Table{}, err
		}
		return parseHTMLTable(string(text))
	case internal.SourceEmail:
		return parseEmail(blob, opts)
	case internal.SourcePDF:
		return parsePDF(blob, firstNonEmpty(opts.DescriptionColumn, "Description"))
	default:
		return internal.Table{}, fmt.Errorf("unsupported input type: %s", source)
	}
}

func decodeText(blob []byte, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return bytes.TrimPrefix(blob, utf8BOM), nil
	case "latin-1", "latin1", "iso-8859-1":
		out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), blob)
		if err != nil {
			return nil, fmt.Errorf("decode latin-1: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported input encoding: %s", encoding)
	}
}

func parseCSV(blob []byte) (internal.Table, error) {
	r := csv.NewReader(bytes.NewReader(blob))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return internal.Table{}, nil
	}
	if err != nil {
		return internal.Table{}, fmt.Errorf("csv header: %w", err)
	}

	table := internal.Table{Columns: uniqueColumns(header)}
	lineNo := 0
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return internal.Table{}, fmt.Errorf("csv row %d: %w", lineNo, err)
			}
			table.Records = append(table.Records, internal.Record{
				LineNo: lineNo,
				Source: internal.SourceCSV,
				Fields: map[string]string{},
				Meta:   map[string]any{"error": perr.Error()},
			})
			continue
		}
		table.Records = append(table.Records, internal.Record{
			LineNo: lineNo,
			Source: internal.SourceCSV,
			Fields: rowFields(table.Columns, row, false),
			Meta:   map[string]any{"line": lineNo + 1},
		})
	}
	return table, nil
}

func parseXLSX(content []byte) (internal.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return internal.Table{}, err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		table := internal.Table{}
		lineNo := 0
		for i, row := range rows {
			if isBlankRow(row) {
				continue
			}
			if table.Columns == nil {
				table.Columns = uniqueColumns(row)
				continue
			}
			lineNo++
			table.Records = append(table.Records, internal.Record{
				LineNo: lineNo,
				Source: internal.SourceXLSX,
				Fields: rowFields(table.Columns, row, true),
				Meta:   map[string]any{"sheet": sheet, "rowNumber": i + 1},
			})
		}
		if table.Columns != nil {
			return table, nil
		}
	}
	return internal.Table{}, nil
}

// parseHTMLTable reads the first table with a header and at least one row.
func parseHTMLTable(html string) (internal.Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return internal.Table{}, err
	}

	var table internal.Table
	doc.Find("table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		rows := sel.Find("tr")
		if rows.Length() < 2 {
			return true
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, util.CollapseSpaces(cell.Text()))
		})
		table.Columns = uniqueColumns(headers)

		lineNo := 0
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.CollapseSpaces(cell.Text()))
			})
			if isBlankRow(cells) {
				return
			}
			lineNo++
			table.Records = append(table.Records, internal.Record{
				LineNo: lineNo,
				Source: internal.SourceHTMLTable,
				Fields: rowFields(table.Columns, cells, false),
				Meta:   map[string]any{"row": cells},
			})
		})
		return false
	})
	return table, nil
}

// parseEmail prefers CSV and XLSX attachments and falls back to tables in the
// HTML body. Tables whose columns differ from the first one are skipped.
func parseEmail(raw []byte, opts ReadOptions) (internal.Table, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return internal.Table{}, err
	}

	tables := []internal.Table{}
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		lower := strings.ToLower(filename)

		var (
			table internal.Table
			err   error
		)
		switch {
		case strings.HasSuffix(lower, ".csv"):
			var text []byte
			if text, err = decodeText(att.Content, opts.Encoding); err == nil {
				table, err = parseCSV(text)
			}
		case strings.HasSuffix(lower, ".xlsx"):
			table, err = parseXLSX(att.Content)
		default:
			continue
		}
		if err != nil || len(table.Columns) == 0 {
			continue
		}
		for i := range table.Records {
			table.Records[i].Source = internal.SourceEmail
			if table.Records[i].Meta == nil {
				table.Records[i].Meta = map[string]any{}
			}
			table.Records[i].Meta["attachment"] = filename
		}
		tables = append(tables, table)
	}

	if len(tables) == 0 && env.HTML != "" {
		table, err := parseHTMLTable(env.HTML)
		if err != nil {
			return internal.Table{}, err
		}
		if len(table.Columns) > 0 {
			for i := range table.Records {
				table.Records[i].Source = internal.SourceEmail
			}
			tables = append(tables, table)
		}
	}

	if len(tables) == 0 {
		return internal.Table{}, fmt.Errorf("email %q has no tabular content", env.GetHeader("Subject"))
	}

	out := internal.Table{Columns: tables[0].Columns}
	for _, t := range tables {
		if !sameColumns(out.Columns, t.Columns) {
			continue
		}
		out.Records = append(out.Records, t.Records...)
	}
	for i := range out.Records {
		out.Records[i].LineNo = i + 1
	}
	return out, nil
}

// parsePDF turns every non-empty text line into a one-column record.
func parsePDF(content []byte, column string) (internal.Table, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return internal.Table{}, err
	}

	table := internal.Table{Columns: []string{column}}
	lineNo := 0
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range splitLines(text) {
			lineNo++
			table.Records = append(table.Records, internal.Record{
				LineNo: lineNo,
				Source: internal.SourcePDF,
				Fields: map[string]string{column: util.CollapseSpaces(line)},
				Meta:   map[string]any{"page": i},
			})
		}
	}
	return table, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// rowFields maps cells to column names. Cells beyond the header are dropped
// and missing trailing cells stay absent, unless fill is set: spreadsheet
// rows omit trailing empty cells, which are present but empty.
func rowFields(columns, cells []string, fill bool) map[string]string {
	fields := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(cells) {
			fields[col] = cells[i]
		} else if fill {
			fields[col] = ""
		}
	}
	return fields
}

// uniqueColumns trims header names, names blank headers by position and
// suffixes repeats so every column keeps its own value.
func uniqueColumns(header []string) []string {
	out := make([]string, 0, len(header))
	seen := map[string]int{}
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = name + "_" + strconv.Itoa(n)
		}
		out = append(out, name)
	}
	return out
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
