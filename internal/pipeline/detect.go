package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/conluiben/excel-data-extraction/internal"
	"github.com/conluiben/excel-data-extraction/internal/util"
)

type DetectResult struct {
	Column string
	Score  float64
	Reason string
}

var descriptionProbes = []string{"DESCRIPTION", "ITEM DESCRIPTION", "DESCR", "PARTICULARS", "ITEM NAME", "MATERIAL DESCRIPTION"}

const headerProbeThreshold = 0.75

// DetectDescriptionColumn picks the column holding the free-text
// descriptions: the configured name when present, else the header closest to
// a known description header, else the column with the longest average
// letter-bearing text over the first sampleRows records.
func DetectDescriptionColumn(columns []string, records []internal.Record, preferred string, sampleRows int) DetectResult {
	want := util.NormalizeHeader(preferred)
	for _, c := range columns {
		if c == preferred {
			return DetectResult{Column: c, Score: 1, Reason: "configured"}
		}
	}
	for _, c := range columns {
		if want != "" && util.NormalizeHeader(c) == want {
			return DetectResult{Column: c, Score: 1, Reason: "configured_normalized"}
		}
	}

	best, bestScore := "", 0.0
	for _, c := range columns {
		h := util.NormalizeHeader(c)
		for _, probe := range descriptionProbes {
			score := util.DiceCoefficient(h, probe)
			if strings.Contains(h, probe) && score < 0.9 {
				score = 0.9
			}
			if score > bestScore {
				best, bestScore = c, score
			}
		}
	}
	if bestScore >= headerProbeThreshold {
		return DetectResult{Column: best, Score: bestScore, Reason: "header_probe"}
	}

	if sampleRows <= 0 || sampleRows > len(records) {
		sampleRows = len(records)
	}
	best, bestAvg, bestShare := "", 0.0, 0.0
	for _, c := range columns {
		total, hits := 0, 0
		for _, rec := range records[:sampleRows] {
			v := rec.Fields[c]
			if !util.HasLetters(v) {
				continue
			}
			hits++
			total += utf8.RuneCountInString(v)
		}
		if hits == 0 {
			continue
		}
		avg := float64(total) / float64(hits)
		if avg > bestAvg {
			best, bestAvg, bestShare = c, avg, float64(hits)/float64(sampleRows)
		}
	}
	if best == "" {
		return DetectResult{Reason: "none"}
	}
	return DetectResult{Column: best, Score: bestShare, Reason: "longest_text"}
}
