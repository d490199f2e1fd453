package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxConditions is the maximum number of conditions in one expression.
const MaxConditions = 32

// Record exposes the attributes of a stored item that conditions are evaluated against.
type Record interface {
	Number(key string) (float64, bool)
	Tags(key string) []string
}

// Expression is an ordered conjunction of must conditions.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must ...Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditions)
	}
	return Expression{must: append([]Condition(nil), must...)}, nil
}

// Must returns the must conditions in insertion order.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// And returns a copy of e with c appended. A range on a key that already has a
// range is intersected into the existing condition instead of being appended.
func (e Expression) And(c Condition) Expression {
	out := make([]Condition, len(e.must), len(e.must)+1)
	copy(out, e.must)

	if c.IsRange() {
		for i := range out {
			if out[i].IsRange() && out[i].key == c.key {
				merged := out[i].rangeExpr.Intersect(*c.rangeExpr)
				out[i].rangeExpr = &merged
				return Expression{must: out}
			}
		}
	}

	return Expression{must: append(out, c)}
}

// Unsatisfiable reports whether some range condition admits no value.
func (e Expression) Unsatisfiable() bool {
	for _, c := range e.must {
		if c.IsRange() && c.rangeExpr.IsEmpty() {
			return true
		}
	}
	return false
}

// Evaluate reports whether r satisfies every condition.
func (e Expression) Evaluate(r Record) bool {
	for _, c := range e.must {
		if !c.Evaluate(r) {
			return false
		}
	}
	return true
}

// String renders the expression for logs.
func (e Expression) String() string {
	parts := make([]string, len(e.must))
	for i, c := range e.must {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// Condition is a single filter clause: a tag match, a tag prefix or a numeric range.
type Condition struct {
	key       string
	match     string
	prefix    string
	rangeExpr *Range
}

// NewMatch creates an exact, case-insensitive tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewPrefix creates a case-insensitive, start-anchored tag prefix condition.
func NewPrefix(key, prefix string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if prefix == "" {
		return Condition{}, fmt.Errorf("prefix value is required for key %q", key)
	}
	return Condition{key: key, prefix: prefix}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Prefix returns the tag prefix.
func (c Condition) Prefix() string { return c.prefix }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsPrefix reports whether this is a prefix condition.
func (c Condition) IsPrefix() bool { return c.prefix != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Evaluate reports whether r satisfies the condition. Missing attributes never match.
func (c Condition) Evaluate(r Record) bool {
	switch {
	case c.IsRange():
		v, ok := r.Number(c.key)
		return ok && c.rangeExpr.Contains(v)
	case c.IsPrefix():
		want := strings.ToLower(c.prefix)
		for _, tag := range r.Tags(c.key) {
			if strings.HasPrefix(strings.ToLower(tag), want) {
				return true
			}
		}
		return false
	case c.IsMatch():
		for _, tag := range r.Tags(c.key) {
			if strings.EqualFold(tag, c.match) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (c Condition) String() string {
	switch {
	case c.IsRange():
		return c.key + " in " + c.rangeExpr.String()
	case c.IsPrefix():
		return c.key + " ^= " + c.prefix
	default:
		return c.key + " = " + c.match
	}
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// AtLeast returns the range [v, +inf).
func AtLeast(v float64) Range { return Range{gte: &v} }

// AtMost returns the range (-inf, v].
func AtMost(v float64) Range { return Range{lte: &v} }

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.gt != nil && v <= *r.gt {
		return false
	}
	if r.gte != nil && v < *r.gte {
		return false
	}
	if r.lt != nil && v >= *r.lt {
		return false
	}
	if r.lte != nil && v > *r.lte {
		return false
	}
	return true
}

// IsEmpty reports whether no value can satisfy the range.
func (r Range) IsEmpty() bool {
	lo, loExcl, hasLo := r.lower()
	hi, hiExcl, hasHi := r.upper()
	if !hasLo || !hasHi {
		return false
	}
	if lo > hi {
		return true
	}
	return lo == hi && (loExcl || hiExcl)
}

// Intersect returns the tightest range contained in both r and o.
func (r Range) Intersect(o Range) Range {
	var out Range

	aLo, aExcl, aOK := r.lower()
	bLo, bExcl, bOK := o.lower()
	if lo, excl, ok := tighter(aLo, aExcl, aOK, bLo, bExcl, bOK, func(x, y float64) bool { return x > y }); ok {
		if excl {
			out.gt = &lo
		} else {
			out.gte = &lo
		}
	}

	aHi, aExcl, aOK := r.upper()
	bHi, bExcl, bOK := o.upper()
	if hi, excl, ok := tighter(aHi, aExcl, aOK, bHi, bExcl, bOK, func(x, y float64) bool { return x < y }); ok {
		if excl {
			out.lt = &hi
		} else {
			out.lte = &hi
		}
	}

	return out
}

func (r Range) String() string {
	lo, hi := "-inf", "+inf"
	open, closeB := "[", "]"
	if v, excl, ok := r.lower(); ok {
		lo = strconv.FormatFloat(v, 'f', -1, 64)
		if excl {
			open = "("
		}
	}
	if v, excl, ok := r.upper(); ok {
		hi = strconv.FormatFloat(v, 'f', -1, 64)
		if excl {
			closeB = ")"
		}
	}
	return open + lo + ", " + hi + closeB
}

func (r Range) lower() (float64, bool, bool) {
	switch {
	case r.gt != nil:
		return *r.gt, true, true
	case r.gte != nil:
		return *r.gte, false, true
	default:
		return 0, false, false
	}
}

func (r Range) upper() (float64, bool, bool) {
	switch {
	case r.lt != nil:
		return *r.lt, true, true
	case r.lte != nil:
		return *r.lte, false, true
	default:
		return 0, false, false
	}
}

// tighter picks the stricter of two optional bounds; on equal values the exclusive one wins.
func tighter(
	a float64, aExcl, aOK bool,
	b float64, bExcl, bOK bool,
	stricter func(x, y float64) bool,
) (float64, bool, bool) {
	switch {
	case !aOK && !bOK:
		return 0, false, false
	case !bOK:
		return a, aExcl, true
	case !aOK:
		return b, bExcl, true
	case stricter(a, b):
		return a, aExcl, true
	case stricter(b, a):
		return b, bExcl, true
	default:
		return a, aExcl || bExcl, true
	}
}
