// Package match implements the interval predicates behind frame and
// procedure lookup. Frame lookup uses Intersects; procedure lookup uses
// Overlaps, whose clause set is preserved exactly.
package match

// Number covers the two interval units in use: milliseconds (int64) and
// seconds (float64).
type Number interface {
	~int64 | ~float64
}

// Overlaps reports whether candidate [cs, ce] matches query [qs, qe] under
// the union of three clauses:
//
//	containment:  cs <= qs && ce >= qe
//	left overlap: cs >= qs && cs <= qe
//	right overlap: ce >= qe && ce <= qs
//
// The right-overlap clause requires qe <= ce <= qs, which no well-formed
// query (qs <= qe) can satisfy. Callers depend on this exact clause set;
// do not simplify it.
func Overlaps[T Number](qs, qe, cs, ce T) bool {
	if cs <= qs && ce >= qe {
		return true
	}
	if cs >= qs && cs <= qe {
		return true
	}
	if ce >= qe && ce <= qs {
		return true
	}
	return false
}

// Intersects reports whether candidate [cs, ce] shares any point with query
// [qs, qe] under the union of three clauses:
//
//	contained in query:  cs >= qs && ce <= qe
//	covers query start:  ce >= qs && cs <= qs
//	covers query end:    ce >= qe && cs <= qe
//
// For normalized intervals this is plain interval intersection; the clause
// form is kept so each case stays checkable on its own.
func Intersects[T Number](qs, qe, cs, ce T) bool {
	if cs >= qs && ce <= qe {
		return true
	}
	if ce >= qs && cs <= qs {
		return true
	}
	if ce >= qe && cs <= qe {
		return true
	}
	return false
}
