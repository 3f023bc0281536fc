package vocab

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Registry is the compiled, read-only vocabulary shared by every record of a
// run. All alternations are built here, longest alternative first, so the
// extractors never sort or compile anything per call.
type Registry struct {
	tables Tables

	labels []Label

	properties     []string
	unitToProperty map[string]string
	unitFraction   *regexp.Regexp
	unitDecimal    *regexp.Regexp

	diameterAnchor   *regexp.Regexp
	diameterFraction *regexp.Regexp
	diameterWhole    *regexp.Regexp

	wireTypes *regexp.Regexp

	categories        []Category
	keywordToCategory map[string]string

	color *regexp.Regexp
	x     *regexp.Regexp
}

type Label struct {
	Name    string
	Pattern *regexp.Regexp
}

type Category struct {
	Name    string
	Pattern *regexp.Regexp
}

func New(t Tables) (*Registry, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		tables:            t,
		unitToProperty:    map[string]string{},
		keywordToCategory: map[string]string{},
	}

	for _, name := range t.Labels {
		pattern, err := regexp.Compile(`(?i)` + leadingBoundary(name) + regexp.QuoteMeta(name) + `\s+(\S+)\b`)
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", name, err)
		}
		r.labels = append(r.labels, Label{Name: name, Pattern: pattern})
	}

	seenProperty := map[string]struct{}{}
	for _, group := range t.Units {
		if _, ok := seenProperty[group.Property]; !ok {
			seenProperty[group.Property] = struct{}{}
			r.properties = append(r.properties, group.Property)
		}
		for _, unit := range group.Units {
			key := strings.ToLower(strings.TrimSpace(unit))
			if _, ok := r.unitToProperty[key]; ok {
				continue
			}
			r.unitToProperty[key] = group.Property
		}
	}
	units := make([]string, 0, len(r.unitToProperty))
	for unit := range r.unitToProperty {
		units = append(units, unit)
	}
	unitAlt := alternation(units)

	var err error
	if r.unitFraction, err = regexp.Compile(`(?i)((?:\d+\s+)?\d+/\d+\s*(` + unitAlt + `))(?:\s|$)`); err != nil {
		return nil, fmt.Errorf("unit fraction pattern: %w", err)
	}
	if r.unitDecimal, err = regexp.Compile(`(?i)(\d+(?:[-.]\d+)?\s*(` + unitAlt + `))(?:/\S+)?(?:\s|$)`); err != nil {
		return nil, fmt.Errorf("unit decimal pattern: %w", err)
	}

	diaAlt := alternation(lowerAll(t.DiameterUnits))
	r.diameterAnchor = regexp.MustCompile(`(?i)\bDIA\b`)
	if r.diameterFraction, err = regexp.Compile(`(?i)((?:\d+\s+)?\d+/\d+\s*(` + diaAlt + `))(?:\s|$)`); err != nil {
		return nil, fmt.Errorf("diameter fraction pattern: %w", err)
	}
	if r.diameterWhole, err = regexp.Compile(`(?i)(\d+\s*(` + diaAlt + `))(?:\s|$)`); err != nil {
		return nil, fmt.Errorf("diameter pattern: %w", err)
	}

	if r.wireTypes, err = wordPattern(t.WireTypes); err != nil {
		return nil, fmt.Errorf("wire type pattern: %w", err)
	}

	for _, group := range t.Keywords {
		pattern, err := wordPattern(group.Keywords)
		if err != nil {
			return nil, fmt.Errorf("keyword category %q: %w", group.Category, err)
		}
		r.categories = append(r.categories, Category{Name: group.Category, Pattern: pattern})
		for _, kw := range group.Keywords {
			key := strings.ToLower(strings.TrimSpace(kw))
			if _, ok := r.keywordToCategory[key]; ok {
				continue
			}
			r.keywordToCategory[key] = group.Category
		}
	}

	modifiers := make([]string, 0, len(t.ColorModifiers))
	for _, m := range t.ColorModifiers {
		modifiers = append(modifiers, regexp.QuoteMeta(strings.ToLower(m)))
	}
	colorExpr := `(?i)\b`
	if len(modifiers) > 0 {
		colorExpr += `(?:(?:` + strings.Join(modifiers, "|") + `) )?`
	}
	colorExpr += `(?:` + alternation(lowerAll(t.Colors)) + `)\b`
	if r.color, err = regexp.Compile(colorExpr); err != nil {
		return nil, fmt.Errorf("color pattern: %w", err)
	}

	r.x = regexp.MustCompile(`(?i)\bX\b`)
	return r, nil
}

// MustDefault compiles the built-in tables.
func MustDefault() *Registry {
	r, err := New(Default())
	if err != nil {
		panic(err)
	}
	return r
}

func (t Tables) Validate() error {
	var errs []error
	if len(t.Units) == 0 {
		errs = append(errs, errors.New("vocabulary has no unit groups"))
	}
	for i, g := range t.Units {
		if strings.TrimSpace(g.Property) == "" {
			errs = append(errs, fmt.Errorf("unit group %d: empty property", i))
		}
		if len(nonEmpty(g.Units)) == 0 {
			errs = append(errs, fmt.Errorf("unit group %q: no units", g.Property))
		}
	}
	if len(nonEmpty(t.DiameterUnits)) == 0 {
		errs = append(errs, errors.New("vocabulary has no diameter units"))
	}
	if len(nonEmpty(t.WireTypes)) == 0 {
		errs = append(errs, errors.New("vocabulary has no wire types"))
	}
	if len(nonEmpty(t.Colors)) == 0 {
		errs = append(errs, errors.New("vocabulary has no colors"))
	}
	for i, g := range t.Keywords {
		if strings.TrimSpace(g.Category) == "" {
			errs = append(errs, fmt.Errorf("keyword group %d: empty category", i))
		}
		if len(nonEmpty(g.Keywords)) == 0 {
			errs = append(errs, fmt.Errorf("keyword group %q: no keywords", g.Category))
		}
	}
	for _, l := range t.Labels {
		if strings.TrimSpace(l) == "" {
			errs = append(errs, errors.New("empty label"))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) Tables() Tables { return r.tables }

func (r *Registry) Labels() []Label { return r.labels }

// UnitProperties lists canonical unit properties in table order.
func (r *Registry) UnitProperties() []string { return r.properties }

func (r *Registry) UnitProperty(unit string) (string, bool) {
	prop, ok := r.unitToProperty[strings.ToLower(strings.TrimSpace(unit))]
	return prop, ok
}

func (r *Registry) UnitFractionPattern() *regexp.Regexp { return r.unitFraction }

func (r *Registry) UnitDecimalPattern() *regexp.Regexp { return r.unitDecimal }

func (r *Registry) DiameterAnchor() *regexp.Regexp { return r.diameterAnchor }

func (r *Registry) DiameterFractionPattern() *regexp.Regexp { return r.diameterFraction }

func (r *Registry) DiameterWholePattern() *regexp.Regexp { return r.diameterWhole }

func (r *Registry) WireTypePattern() *regexp.Regexp { return r.wireTypes }

func (r *Registry) Categories() []Category { return r.categories }

func (r *Registry) KeywordCategory(keyword string) (string, bool) {
	cat, ok := r.keywordToCategory[strings.ToLower(strings.TrimSpace(keyword))]
	return cat, ok
}

func (r *Registry) ColorPattern() *regexp.Regexp { return r.color }

// SeparatorPattern matches standalone X tokens between dimensions.
func (r *Registry) SeparatorPattern() *regexp.Regexp { return r.x }

// alternation joins literals longest first, ties broken alphabetically, so a
// leftmost-first engine prefers "mm sq" over "mm" and "THW-2" over "THW".
func alternation(items []string) string {
	sorted := byLengthDesc(nonEmpty(items))
	quoted := make([]string, 0, len(sorted))
	for _, item := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(item))
	}
	return strings.Join(quoted, "|")
}

func wordPattern(items []string) (*regexp.Regexp, error) {
	sorted := byLengthDesc(nonEmpty(items))
	parts := make([]string, 0, len(sorted))
	for _, item := range sorted {
		parts = append(parts, leadingBoundary(item)+regexp.QuoteMeta(item)+trailingBoundary(item))
	}
	return regexp.Compile(`(?i)(?:` + strings.Join(parts, "|") + `)`)
}

func byLengthDesc(items []string) []string {
	out := append([]string(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// \b only asserts anything next to a word character; literals that start or
// end with punctuation get no boundary on that side.
func leadingBoundary(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if isWord(r) {
		return `\b`
	}
	return ""
}

func trailingBoundary(s string) string {
	r, _ := utf8.DecodeLastRuneInString(s)
	if isWord(r) {
		return `\b`
	}
	return ""
}

func isWord(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, strings.TrimSpace(item))
		}
	}
	return out
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.ToLower(item))
	}
	return out
}
