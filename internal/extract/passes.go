package extract

import (
	"regexp"
	"strings"

	"github.com/conluiben/excel-data-extraction/internal/vocab"
)

// Labeled pulls "<label> <token>" pairs, each label at most once, in
// vocabulary order.
func Labeled(reg *vocab.Registry, text string) ([]LabeledValue, string) {
	var out []LabeledValue
	for _, label := range reg.Labels() {
		loc := label.Pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		out = append(out, LabeledValue{Label: label.Name, Value: text[loc[2]:loc[3]]})
		text = cut(text, span{loc[0], loc[1]})
	}
	return out, tidy(text)
}

// Diameter looks for a numeric value with a diameter unit next to the first
// DIA token: the nearest one before it, else the nearest one after it.
// Fractions win over whole numbers on the same side. Without a value the DIA
// token stays in the text.
func Diameter(reg *vocab.Registry, text string) (*string, string) {
	anchor := reg.DiameterAnchor().FindStringIndex(text)
	if anchor == nil {
		return nil, tidy(text)
	}

	h, ok := diameterHit(reg, text, 0, anchor[0], true)
	if !ok {
		h, ok = diameterHit(reg, text, anchor[1], len(text), false)
	}
	if !ok {
		return nil, tidy(text)
	}

	value := strings.TrimSpace(text[h.start:h.end])
	return &value, cut(text, span{h.start, h.end}, span{anchor[0], anchor[1]})
}

func diameterHit(reg *vocab.Registry, text string, lo, hi int, nearestLast bool) (hit, bool) {
	for _, re := range []*regexp.Regexp{reg.DiameterFractionPattern(), reg.DiameterWholePattern()} {
		hits := scan(re, text, lo, hi)
		if len(hits) == 0 {
			continue
		}
		if nearestLast {
			return hits[len(hits)-1], true
		}
		return hits[0], true
	}
	return hit{}, false
}

// Units extracts number+unit values. Fractions are taken first across the
// whole text, then decimals, whole numbers and ranges from what is left.
// Standalone X separators are dropped at the end.
func Units(reg *vocab.Registry, text string) ([]UnitMatch, string) {
	var matches []UnitMatch
	for _, re := range []*regexp.Regexp{reg.UnitFractionPattern(), reg.UnitDecimalPattern()} {
		var spans []span
		for _, h := range scan(re, text, 0, len(text)) {
			unit := text[h.unitStart:h.unitEnd]
			prop, ok := reg.UnitProperty(unit)
			matches = append(matches, UnitMatch{Text: text[h.start:h.end], Unit: unit, Property: prop, Mapped: ok})
			if ok {
				spans = append(spans, span{h.start, h.end})
			}
		}
		text = cut(text, spans...)
	}
	text = cut(text, spansOf(reg.SeparatorPattern().FindAllStringIndex(text, -1))...)
	return matches, text
}

// Color takes the first color phrase only.
func Color(reg *vocab.Registry, text string) (*string, string) {
	loc := reg.ColorPattern().FindStringIndex(text)
	if loc == nil {
		return nil, tidy(text)
	}
	color := text[loc[0]:loc[1]]
	return &color, cut(text, span{loc[0], loc[1]})
}

func WireTypes(reg *vocab.Registry, text string) ([]string, string) {
	locs := reg.WireTypePattern().FindAllStringIndex(text, -1)
	codes := make([]string, 0, len(locs))
	for _, loc := range locs {
		codes = append(codes, text[loc[0]:loc[1]])
	}
	return codes, cut(text, spansOf(locs)...)
}

// Keywords runs every keyword category in order over the shrinking text.
func Keywords(reg *vocab.Registry, text string, scope KeywordScope) ([]KeywordMatch, string) {
	var all, last []KeywordMatch
	for _, cat := range reg.Categories() {
		locs := cat.Pattern.FindAllStringIndex(text, -1)
		last = nil
		for _, loc := range locs {
			kw := text[loc[0]:loc[1]]
			category, ok := reg.KeywordCategory(kw)
			if !ok {
				category = cat.Name
			}
			m := KeywordMatch{Text: kw, Category: category}
			all = append(all, m)
			last = append(last, m)
		}
		text = cut(text, spansOf(locs)...)
	}
	if scope == ScopeLast {
		return last, text
	}
	return all, text
}
