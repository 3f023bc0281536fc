package util

import "testing"

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Item_Category":     "ITEM CATEGORY",
		"  item   category ": "ITEM CATEGORY",
		"Wire-Type":         "WIRE TYPE",
		"P/N":               "P/N",
		"no.":               "NO.",
	}
	for input, want := range cases {
		if got := NormalizeHeader(input); got != want {
			t.Fatalf("NormalizeHeader(%q)=%q want %q", input, got, want)
		}
	}
}

func TestDiceCoefficient(t *testing.T) {
	if got := DiceCoefficient("DESCRIPTION", "DESCRIPTION"); got != 1 {
		t.Fatalf("identical=%v", got)
	}
	if got := DiceCoefficient("DESCRIPTION", "DESCR"); got < 0.5 {
		t.Fatalf("prefix score too low: %v", got)
	}
	if got := DiceCoefficient("", "X"); got != 0 {
		t.Fatalf("empty=%v", got)
	}
}
