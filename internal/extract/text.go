package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// trimSet is ASCII punctuation plus whitespace; residual text never starts or
// ends with either.
const trimSet = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ \t\r\n\v\f"

var separators = strings.NewReplacer(": ", " ", ",", " ", ". ", " ", ";", " ", "(", " ", ")", " ")

// Normalize replaces separator punctuation with spaces, collapses whitespace
// and trims punctuation from both ends. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	s := raw
	for {
		next := separators.Replace(collapse(s))
		if next == s {
			break
		}
		s = next
	}
	return tidy(s)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func tidy(s string) string {
	return strings.Trim(collapse(s), trimSet)
}

type span struct {
	start, end int
}

// cut removes the given byte spans, leaving a space at each cut so that the
// neighbours of a removed token never fuse, then tidies the result.
func cut(text string, spans ...span) string {
	if len(spans) == 0 {
		return tidy(text)
	}
	sorted := append([]span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, s := range sorted {
		if s.start < pos {
			s.start = pos
		}
		if s.end <= s.start {
			continue
		}
		b.WriteString(text[pos:s.start])
		b.WriteByte(' ')
		pos = s.end
	}
	b.WriteString(text[pos:])
	return tidy(b.String())
}

func spansOf(locs [][]int) []span {
	out := make([]span, 0, len(locs))
	for _, loc := range locs {
		out = append(out, span{loc[0], loc[1]})
	}
	return out
}

type hit struct {
	start, end         int
	unitStart, unitEnd int
}

// scan returns the non-overlapping first-group matches of re within
// text[lo:hi]. A match is skipped when its first character continues a
// token, i.e. follows a letter, digit, '.' or '/'; the search then resumes one
// byte later. Patterns passed here must not rely on ^ or \b at their start.
func scan(re *regexp.Regexp, text string, lo, hi int) []hit {
	var hits []hit
	for off := lo; off < hi; {
		loc := re.FindStringSubmatchIndex(text[off:hi])
		if loc == nil || loc[2] < 0 {
			break
		}
		h := hit{start: off + loc[2], end: off + loc[3], unitStart: -1, unitEnd: -1}
		if len(loc) >= 6 && loc[4] >= 0 {
			h.unitStart, h.unitEnd = off+loc[4], off+loc[5]
		}
		if continuesToken(text, h.start) {
			off = h.start + 1
			continue
		}
		hits = append(hits, h)
		off = h.end
	}
	return hits
}

func continuesToken(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '/'
}
