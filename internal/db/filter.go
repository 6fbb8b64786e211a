package db

import (
	"fmt"
	"strings"
)

// Filter is a minimal FT.SEARCH predicate builder: tag matches, tag
// exclusions, and numeric ranges, implicitly AND-ed.
type Filter struct {
	Tags    []TagMatch
	NotTags []TagMatch
	Ranges  []NumRange
}

// TagMatch matches a TAG field against any of the given values.
type TagMatch struct {
	Field  string
	Values []string
}

// NumRange restricts a NUMERIC field to [Min, Max]. Use NegInf/PosInf for
// open bounds.
type NumRange struct {
	Field string
	Min   string
	Max   string
}

// Open numeric bounds.
const (
	NegInf = "-inf"
	PosInf = "+inf"
)

// IsEmpty reports whether no predicates are set.
func (f *Filter) IsEmpty() bool {
	return len(f.Tags) == 0 && len(f.NotTags) == 0 && len(f.Ranges) == 0
}

// String renders the filter as an FT.SEARCH query fragment, "*" when empty.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "*"
	}

	var parts []string
	for _, t := range f.Tags {
		parts = append(parts, tagClause(t, false))
	}
	for _, t := range f.NotTags {
		parts = append(parts, tagClause(t, true))
	}
	for _, r := range f.Ranges {
		parts = append(parts, fmt.Sprintf("@%s:[%s %s]", r.Field, r.Min, r.Max))
	}
	return strings.Join(parts, " ")
}

func tagClause(t TagMatch, negate bool) string {
	escaped := make([]string, len(t.Values))
	for i, v := range t.Values {
		escaped[i] = EscapeTag(v)
	}
	clause := fmt.Sprintf("@%s:{%s}", t.Field, strings.Join(escaped, "|"))
	if negate {
		return "-" + clause
	}
	return clause
}

// tagSpecials are the characters FT.SEARCH treats as syntax inside TAG queries.
const tagSpecials = `,.<>{}[]"':;!@#$%^&*()-+=~|/\ `

// EscapeTag backslash-escapes TAG query syntax characters in a value.
func EscapeTag(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if strings.ContainsRune(tagSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
