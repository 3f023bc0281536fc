package pipeline

import (
	"strings"

	"github.com/conluiben/excel-data-extraction/internal"
	"github.com/conluiben/excel-data-extraction/internal/extract"
	"github.com/conluiben/excel-data-extraction/internal/util"
	"github.com/conluiben/excel-data-extraction/internal/vocab"
)

const (
	ColumnExtracted     = "extracted"
	ColumnInfo          = "info"
	ColumnColor         = "color"
	ColumnConfiguration = "configuration"
	ColumnStyle         = "style"
	ColumnSize          = "size"
	ColumnDiameter      = "diameter"
	ColumnWireType      = "wire type"
)

var derivedColumns = []string{
	ColumnInfo, ColumnColor, ColumnConfiguration, ColumnStyle, ColumnSize, ColumnDiameter, ColumnWireType,
}

// Size properties never enter the configuration column.
var sizeProperties = map[string]struct{}{"weight": {}, "volume": {}, "length": {}}

// State names the point a description has reached in the pass sequence.
type State int

const (
	StateRaw State = iota
	StateNormalized
	StateLabeled
	StateDiameterExtracted
	StateUnitsExtracted
	StateColorExtracted
	StateWireTypeExtracted
	StateKeywordsExtracted
	StateAssembled
)

var stateNames = [...]string{
	"RAW", "NORMALIZED", "LABELED", "DIAMETER-EXTRACTED", "UNITS-EXTRACTED",
	"COLOR-EXTRACTED", "WIRETYPE-EXTRACTED", "KEYWORDS-EXTRACTED", "ASSEMBLED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Step is the residual text right after a state was reached.
type Step struct {
	State    State
	Residual string
}

type Assembler struct {
	reg               *vocab.Registry
	scope             extract.KeywordScope
	descriptionColumn string
	configProps       []string
}

func NewAssembler(reg *vocab.Registry, descriptionColumn string, scope extract.KeywordScope) *Assembler {
	a := &Assembler{reg: reg, scope: scope, descriptionColumn: descriptionColumn}
	seen := map[string]struct{}{}
	for _, prop := range append(append([]string(nil), reg.UnitProperties()...), "grade", "no.") {
		if _, skip := sizeProperties[prop]; skip {
			continue
		}
		if _, dup := seen[prop]; dup {
			continue
		}
		seen[prop] = struct{}{}
		a.configProps = append(a.configProps, prop)
	}
	return a
}

// Columns is the fixed output header: extracted flag, passthrough columns,
// derived columns, labeled properties, unit properties and keyword
// categories. A name appears once, at its first position.
func (a *Assembler) Columns(passthrough []string) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(names ...string) {
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	add(ColumnExtracted)
	add(passthrough...)
	add(derivedColumns...)
	for _, label := range a.reg.Labels() {
		add(label.Name)
	}
	add(a.reg.UnitProperties()...)
	for _, cat := range a.reg.Categories() {
		add(cat.Name)
	}
	return out
}

// Extract runs every pass over one raw description, threading the residual
// text from pass to pass. The returned trace holds the residual after each
// state up to KEYWORDS-EXTRACTED.
func (a *Assembler) Extract(raw string) (extract.Result, []Step) {
	var res extract.Result
	passes := []struct {
		state State
		run   func(string) string
	}{
		{StateNormalized, func(s string) string {
			res.Input = extract.Normalize(s)
			return res.Input
		}},
		{StateLabeled, func(s string) (rest string) {
			res.Labels, rest = extract.Labeled(a.reg, s)
			return rest
		}},
		{StateDiameterExtracted, func(s string) (rest string) {
			res.Diameter, rest = extract.Diameter(a.reg, s)
			return rest
		}},
		{StateUnitsExtracted, func(s string) (rest string) {
			res.Units, rest = extract.Units(a.reg, s)
			return rest
		}},
		{StateColorExtracted, func(s string) (rest string) {
			res.Color, rest = extract.Color(a.reg, s)
			return rest
		}},
		{StateWireTypeExtracted, func(s string) (rest string) {
			res.WireTypes, rest = extract.WireTypes(a.reg, s)
			return rest
		}},
		{StateKeywordsExtracted, func(s string) (rest string) {
			res.Keywords, rest = extract.Keywords(a.reg, s, a.scope)
			return rest
		}},
	}

	text := raw
	trace := make([]Step, 0, len(passes)+1)
	trace = append(trace, Step{State: StateRaw, Residual: raw})
	for _, p := range passes {
		text = p.run(text)
		trace = append(trace, Step{State: p.state, Residual: text})
	}
	res.Residual = text
	return res, trace
}

// Assemble widens one record. A record without the description field passes
// through untouched apart from an empty extracted flag.
func (a *Assembler) Assemble(rec internal.Record) internal.OutputRow {
	values := make(map[string]string, len(rec.Fields)+len(derivedColumns)+1)
	for k, v := range rec.Fields {
		values[k] = v
	}
	row := internal.OutputRow{LineNo: rec.LineNo, Values: values}

	raw, ok := rec.Fields[a.descriptionColumn]
	if !ok {
		row.Degraded = true
		values[ColumnExtracted] = ""
		return row
	}

	res, _ := a.Extract(raw)
	a.merge(&row, res)
	return row
}

func (a *Assembler) merge(row *internal.OutputRow, res extract.Result) {
	values := row.Values

	for _, lv := range res.Labels {
		appendValue(values, lv.Label, lv.Value, ", ")
	}

	if res.Diameter != nil {
		values[ColumnDiameter] = *res.Diameter
		row.Units = append(row.Units, internal.UnitValue{
			Property:  ColumnDiameter,
			Text:      *res.Diameter,
			Unit:      strings.TrimLeft(*res.Diameter, "0123456789/ "),
			Magnitude: util.ParseMagnitude(*res.Diameter),
		})
	}

	for _, um := range res.Units {
		if !um.Mapped {
			continue
		}
		sep := ", "
		if um.Property == "length" {
			sep = " X "
		}
		appendValue(values, um.Property, um.Text, sep)
		row.Units = append(row.Units, internal.UnitValue{
			Property:  um.Property,
			Text:      um.Text,
			Unit:      um.Unit,
			Magnitude: util.ParseMagnitude(um.Text),
		})
	}

	if res.Color != nil {
		values[ColumnColor] = *res.Color
	}
	values[ColumnWireType] = strings.Join(res.WireTypes, ", ")

	for _, km := range res.Keywords {
		appendValue(values, km.Category, km.Text, ", ")
	}

	values[ColumnConfiguration] = a.configuration(values)
	values[ColumnSize] = size(values)
	values[ColumnInfo] = res.Residual
	values[ColumnExtracted] = ""
	if res.Changed() {
		values[ColumnExtracted] = "Y"
	}
}

// appendValue sets key, or appends with sep when key already holds a
// non-empty value.
func appendValue(values map[string]string, key, value, sep string) {
	if prev, ok := values[key]; ok && prev != "" {
		values[key] = prev + sep + value
		return
	}
	values[key] = value
}

func (a *Assembler) configuration(values map[string]string) string {
	var parts []string
	for _, prop := range a.configProps {
		v, ok := values[prop]
		if !ok || v == "" {
			continue
		}
		switch prop {
		case "grade":
			parts = append(parts, "GRADE")
		case "no.":
			parts = append(parts, "No.")
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, " ")
}

func size(values map[string]string) string {
	var parts []string
	if v := values["weight"]; v != "" {
		parts = append(parts, v)
	}
	if v := values["length"]; v != "" {
		parts = append(parts, v)
	}
	if v := values[ColumnDiameter]; v != "" {
		parts = append(parts, v+" DIA")
	}
	return strings.Join(parts, " X ")
}
