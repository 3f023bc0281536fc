package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "colon label", input: "BULB P/N: 1092805900", want: "BULB P/N 1092805900"},
		{name: "commas and semicolons", input: "WIRE,THHN;RED", want: "WIRE THHN RED"},
		{name: "parentheses", input: "BREAKER (2P) 30A", want: "BREAKER 2P 30A"},
		{name: "sentence period", input: "ASSY. COMPLETE.", want: "ASSY COMPLETE"},
		{name: "decimal kept", input: "CABLE 2.5 MM", want: "CABLE 2.5 MM"},
		{name: "edge punctuation", input: " -- LAMP, 20W. ", want: "LAMP 20W"},
		{name: "stacked separators", input: "A.. B.\tC", want: "A B C"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalization must be idempotent")
		})
	}
}

func TestCutLeavesNoFusedTokens(t *testing.T) {
	assert.Equal(t, "AB CD", cut("AB20MMCD", span{2, 6}))
	assert.Equal(t, "ABC", cut("ABC ,", span{3, 4}))
	assert.Equal(t, "X Y", cut("X 1 Y 2", span{2, 3}, span{6, 7}))
}
