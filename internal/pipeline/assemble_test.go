package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conluiben/excel-data-extraction/internal"
	"github.com/conluiben/excel-data-extraction/internal/extract"
	"github.com/conluiben/excel-data-extraction/internal/vocab"
)

func newAssembler() *Assembler {
	return NewAssembler(vocab.MustDefault(), "Description", extract.ScopeAll)
}

func record(desc string, extra map[string]string) internal.Record {
	fields := map[string]string{"Description": desc}
	for k, v := range extra {
		fields[k] = v
	}
	return internal.Record{LineNo: 1, Source: internal.SourceCSV, Fields: fields}
}

func TestAssembleLabel(t *testing.T) {
	row := newAssembler().Assemble(record("CLUTCH MASTER ASSY P/N 8-97024293-0", nil))
	assert.Equal(t, "8-97024293-0", row.Values["P/N"])
	assert.Equal(t, "CLUTCH MASTER ASSY", row.Values[ColumnInfo])
	assert.Equal(t, "Y", row.Values[ColumnExtracted])
	assert.False(t, row.Degraded)
}

func TestAssembleDiameterAndSize(t *testing.T) {
	row := newAssembler().Assemble(record("ANCHOR BOLT A307 20MM DIA X 500MM L", nil))
	assert.Equal(t, "20MM", row.Values[ColumnDiameter])
	assert.Equal(t, "500MM", row.Values["length"])
	assert.Equal(t, "500MM X 20MM DIA", row.Values[ColumnSize])
	assert.Equal(t, "", row.Values[ColumnConfiguration])
	assert.Equal(t, "ANCHOR BOLT A307 L", row.Values[ColumnInfo])

	require.Len(t, row.Units, 2)
	assert.Equal(t, ColumnDiameter, row.Units[0].Property)
	require.NotNil(t, row.Units[0].Magnitude)
	assert.Equal(t, 20.0, *row.Units[0].Magnitude)
	assert.Equal(t, "length", row.Units[1].Property)
}

func TestAssembleLengthAccumulatesWithX(t *testing.T) {
	row := newAssembler().Assemble(record("ANCHOR PLATE 100MM X 310MM X 12MM", nil))
	assert.Equal(t, "100MM X 310MM X 12MM", row.Values["length"])
	assert.Equal(t, "100MM X 310MM X 12MM", row.Values[ColumnSize])
	assert.Equal(t, "ANCHOR PLATE", row.Values[ColumnInfo])
}

func TestAssembleConfigurationOrder(t *testing.T) {
	row := newAssembler().Assemble(record("BREAKER 100 A 240 V 2 P BOLT-ON", nil))
	assert.Equal(t, "100 A", row.Values["current"])
	assert.Equal(t, "240 V", row.Values["voltage rating"])
	assert.Equal(t, "2 P", row.Values["pole"])
	assert.Equal(t, "100 A 240 V 2 P", row.Values[ColumnConfiguration])
	assert.Equal(t, "", row.Values[ColumnSize])
	assert.Equal(t, "BREAKER BOLT-ON", row.Values[ColumnInfo])
}

func TestAssembleGradeInConfiguration(t *testing.T) {
	row := newAssembler().Assemble(record("BOLT GRADE 8 ZINC", nil))
	assert.Equal(t, "8", row.Values["grade"])
	assert.Equal(t, "GRADE 8", row.Values[ColumnConfiguration])
	assert.Equal(t, "BOLT ZINC", row.Values[ColumnInfo])
}

func TestAssembleFullDescription(t *testing.T) {
	row := newAssembler().Assemble(record("WIRE THHN 3.5mm sq RED 600V Phelps Dodge", nil))
	assert.Equal(t, "3.5mm sq", row.Values["cross-sectional area"])
	assert.Equal(t, "600V", row.Values["voltage rating"])
	assert.Equal(t, "RED", row.Values[ColumnColor])
	assert.Equal(t, "THHN", row.Values[ColumnWireType])
	assert.Equal(t, "Phelps Dodge", row.Values["brand"])
	assert.Equal(t, "3.5mm sq 600V", row.Values[ColumnConfiguration])
	assert.Equal(t, "WIRE", row.Values[ColumnInfo])
}

func TestAssembleNothingExtracted(t *testing.T) {
	row := newAssembler().Assemble(record("  SAFETY GOGGLES, ", nil))
	assert.Equal(t, "SAFETY GOGGLES", row.Values[ColumnInfo])
	assert.Equal(t, "", row.Values[ColumnExtracted])
	assert.Equal(t, "", row.Values[ColumnWireType])
}

func TestAssembleAppendsToPassthroughColumn(t *testing.T) {
	row := newAssembler().Assemble(record("LAMP Philips", map[string]string{"brand": "Generic"}))
	assert.Equal(t, "Generic, Philips", row.Values["brand"])

	row = newAssembler().Assemble(record("LAMP Philips", map[string]string{"brand": ""}))
	assert.Equal(t, "Philips", row.Values["brand"])
}

func TestAssembleMissingDescriptionDegrades(t *testing.T) {
	rec := internal.Record{LineNo: 7, Fields: map[string]string{"Qty": "3"}}
	row := newAssembler().Assemble(rec)
	assert.True(t, row.Degraded)
	assert.Equal(t, 7, row.LineNo)
	assert.Equal(t, "3", row.Values["Qty"])
	assert.Equal(t, "", row.Values[ColumnExtracted])
	_, hasInfo := row.Values[ColumnInfo]
	assert.False(t, hasInfo)
}

func TestColumnsOrderAndDedup(t *testing.T) {
	cols := newAssembler().Columns([]string{"Item", "Description", "brand", "Qty"})
	require.GreaterOrEqual(t, len(cols), 12)
	assert.Equal(t, []string{"extracted", "Item", "Description", "brand", "Qty", "info", "color", "configuration", "style", "size", "diameter", "wire type"}, cols[:12])

	seen := map[string]int{}
	for _, c := range cols {
		seen[c]++
	}
	for c, n := range seen {
		assert.Equal(t, 1, n, "column %q repeated", c)
	}
	assert.Contains(t, cols, "P/N")
	assert.Contains(t, cols, "weight")
	assert.Contains(t, cols, "spline")
}

func TestExtractTraceShrinks(t *testing.T) {
	inputs := []string{
		"ANCHOR BOLT A307 20MM DIA X 500MM L",
		"WIRE THHN 3.5mm sq RED 600V Phelps Dodge",
		"LAMP P/N 1092629700 hello SN Ilove234 hi",
		"ELBOW 1 1/2 IN GALVANIZED, (BLACK)",
	}
	asm := newAssembler()
	for _, in := range inputs {
		_, trace := asm.Extract(in)
		require.Len(t, trace, int(StateKeywordsExtracted)+1)
		assert.Equal(t, StateRaw, trace[0].State)
		for i := 2; i < len(trace); i++ {
			assert.LessOrEqual(t, len(trace[i].Residual), len(trace[i-1].Residual),
				"%q grew at %s", in, trace[i].State)
		}
	}
}

func TestExtractCoversEveryToken(t *testing.T) {
	inputs := []string{
		"ANCHOR BOLT A307 20MM DIA X 500MM L",
		"WIRE THHN 3.5mm sq RED 600V Phelps Dodge",
		"CLUTCH MASTER ASSY P/N 8-97024293-0",
		"BREAKER 100 A 240 V 2 P BOLT-ON",
		"PAINT Light Grey GLOSS",
	}
	reg := vocab.MustDefault()
	skip := map[string]struct{}{"X": {}, "x": {}, "DIA": {}}
	for _, l := range reg.Labels() {
		skip[strings.ToUpper(l.Name)] = struct{}{}
	}

	asm := newAssembler()
	for _, in := range inputs {
		row := asm.Assemble(record(in, nil))
		var bag strings.Builder
		for k, v := range row.Values {
			if k == "Description" {
				continue
			}
			bag.WriteString(v)
			bag.WriteString(" ")
		}
		for _, tok := range strings.Fields(in) {
			if _, ok := skip[strings.ToUpper(tok)]; ok {
				continue
			}
			assert.Contains(t, bag.String(), tok, "token %q of %q lost", tok, in)
		}
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "RAW", StateRaw.String())
	assert.Equal(t, "WIRETYPE-EXTRACTED", StateWireTypeExtracted.String())
	assert.Equal(t, "ASSEMBLED", StateAssembled.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}
