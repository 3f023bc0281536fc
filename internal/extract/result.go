package extract

type LabeledValue struct {
	Label string
	Value string
}

// UnitMatch is one number+unit occurrence. Property is empty and Mapped false
// when the unit has no canonical property; such matches stay in the text.
type UnitMatch struct {
	Text     string
	Unit     string
	Property string
	Mapped   bool
}

type KeywordMatch struct {
	Text     string
	Category string
}

type KeywordScope string

const (
	// ScopeAll reports the matches of every keyword category.
	ScopeAll KeywordScope = "all"
	// ScopeLast reports only the last category's matches. Earlier categories
	// are still removed from the text.
	ScopeLast KeywordScope = "last"
)

func ParseKeywordScope(value string) (KeywordScope, bool) {
	switch KeywordScope(value) {
	case ScopeAll, "":
		return ScopeAll, true
	case ScopeLast:
		return ScopeLast, true
	default:
		return ScopeAll, false
	}
}

// Result collects what every pass pulled out of one description.
type Result struct {
	Input     string
	Labels    []LabeledValue
	Diameter  *string
	Units     []UnitMatch
	Color     *string
	WireTypes []string
	Keywords  []KeywordMatch
	Residual  string
}

// Changed reports whether any pass removed text.
func (r Result) Changed() bool {
	return r.Residual != r.Input
}
