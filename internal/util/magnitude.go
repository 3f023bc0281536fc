package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	mixedFractionPattern = regexp.MustCompile(`^(?:(\d+)\s+)?(\d+)/(\d+)`)
	rangePattern         = regexp.MustCompile(`^(\d+)-(\d+)`)
	decimalPattern       = regexp.MustCompile(`^\d+(?:[.,]\d+)?`)
)

// ParseMagnitude reads the leading number of an extracted value such as
// "1 1/2 IN", "2.5 MM", "3-5 A" or "20MM". Ranges yield their lower bound.
func ParseMagnitude(input string) *float64 {
	line := strings.TrimSpace(strings.ReplaceAll(input, "\u00A0", " "))
	if line == "" {
		return nil
	}

	if m := mixedFractionPattern.FindStringSubmatch(line); m != nil {
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den == 0 {
			return nil
		}
		value := num / den
		if m[1] != "" {
			whole, _ := strconv.ParseFloat(m[1], 64)
			value += whole
		}
		return FloatPtr(value)
	}

	if m := rangePattern.FindStringSubmatch(line); m != nil {
		if parsed, err := strconv.ParseFloat(m[1], 64); err == nil {
			return FloatPtr(parsed)
		}
	}

	token := decimalPattern.FindString(line)
	if token == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(normalizeNumericToken(token), 64)
	if err != nil {
		return nil
	}
	return FloatPtr(parsed)
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
