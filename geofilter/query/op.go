package query

import "github.com/geofilter/geofilter/geofilter"

// Op enumerates the grammar operators. The reducer maps each onto a
// canonical registered function name; negated forms canonicalize to the
// base function wrapped in not(...).
type Op int

const (
	OpInvalid Op = iota

	// boolean connectives
	OpAnd
	OpOr
	OpNot

	// monadic
	OpIsNull
	OpIsNotNull
	OpCaseI
	OpAccentI
	OpNeg

	// comparison
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLte
	OpGte

	// extended comparison
	OpLike
	OpNotLike
	OpBetween
	OpNotBetween
	OpIn
	OpNotIn

	// arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpIntDiv
	OpMod
	OpPow

	// spatial
	OpSIntersects
	OpSEquals
	OpSDisjoint
	OpSTouches
	OpSWithin
	OpSOverlaps
	OpSCrosses
	OpSContains

	// temporal
	OpTAfter
	OpTBefore
	OpTContains
	OpTDisjoint
	OpTDuring
	OpTEquals
	OpTFinishedBy
	OpTFinishes
	OpTIntersects
	OpTMeets
	OpTMetBy
	OpTOverlappedBy
	OpTOverlaps
	OpTStartedBy
	OpTStarts

	// array
	OpAEquals
	OpAContains
	OpAContainedBy
	OpAOverlaps
)

var opNames = map[Op]string{
	OpAnd: "AND", OpOr: "OR", OpNot: "NOT",
	OpIsNull: "IS NULL", OpIsNotNull: "IS NOT NULL",
	OpCaseI: "CASEI", OpAccentI: "ACCENTI", OpNeg: "-",
	OpEq: "=", OpNeq: "<>", OpLt: "<", OpGt: ">", OpLte: "<=", OpGte: ">=",
	OpLike: "LIKE", OpNotLike: "NOT LIKE",
	OpBetween: "BETWEEN", OpNotBetween: "NOT BETWEEN",
	OpIn: "IN", OpNotIn: "NOT IN",
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpIntDiv: "DIV", OpMod: "%", OpPow: "^",
	OpSIntersects: "S_INTERSECTS", OpSEquals: "S_EQUALS",
	OpSDisjoint: "S_DISJOINT", OpSTouches: "S_TOUCHES",
	OpSWithin: "S_WITHIN", OpSOverlaps: "S_OVERLAPS",
	OpSCrosses: "S_CROSSES", OpSContains: "S_CONTAINS",
	OpTAfter: "T_AFTER", OpTBefore: "T_BEFORE", OpTContains: "T_CONTAINS",
	OpTDisjoint: "T_DISJOINT", OpTDuring: "T_DURING", OpTEquals: "T_EQUALS",
	OpTFinishedBy: "T_FINISHEDBY", OpTFinishes: "T_FINISHES",
	OpTIntersects: "T_INTERSECTS", OpTMeets: "T_MEETS", OpTMetBy: "T_METBY",
	OpTOverlappedBy: "T_OVERLAPPEDBY", OpTOverlaps: "T_OVERLAPS",
	OpTStartedBy: "T_STARTEDBY", OpTStarts: "T_STARTS",
	OpAEquals: "A_EQUALS", OpAContains: "A_CONTAINS",
	OpAContainedBy: "A_CONTAINEDBY", OpAOverlaps: "A_OVERLAPS",
}

func (o Op) String() string { return opNames[o] }

// Canonical maps the operator onto its registered function name. The
// second result is true for negated forms, which canonicalize to
// not(name(...)).
func (o Op) Canonical() (name string, negated bool) {
	switch o {
	case OpAnd:
		return geofilter.FnAnd, false
	case OpOr:
		return geofilter.FnOr, false
	case OpNot:
		return geofilter.FnNot, false
	case OpIsNull:
		return geofilter.FnIsNull, false
	case OpIsNotNull:
		return geofilter.FnIsNull, true
	case OpCaseI:
		return geofilter.FnCaseI, false
	case OpAccentI:
		return geofilter.FnAccentI, false
	case OpNeg:
		return geofilter.FnNeg, false
	case OpEq:
		return geofilter.FnEq, false
	case OpNeq:
		return geofilter.FnNeq, false
	case OpLt:
		return geofilter.FnLt, false
	case OpGt:
		return geofilter.FnGt, false
	case OpLte:
		return geofilter.FnLte, false
	case OpGte:
		return geofilter.FnGte, false
	case OpLike:
		return geofilter.FnLike, false
	case OpNotLike:
		return geofilter.FnLike, true
	case OpBetween:
		return geofilter.FnBetween, false
	case OpNotBetween:
		return geofilter.FnBetween, true
	case OpIn:
		return geofilter.FnIn, false
	case OpNotIn:
		return geofilter.FnIn, true
	case OpAdd:
		return geofilter.FnAdd, false
	case OpSub:
		return geofilter.FnSub, false
	case OpMul:
		return geofilter.FnMul, false
	case OpDiv:
		return geofilter.FnDiv, false
	case OpIntDiv:
		return geofilter.FnIntDiv, false
	case OpMod:
		return geofilter.FnMod, false
	case OpPow:
		return geofilter.FnPow, false
	}
	if o.Spatial() || o.Temporal() || o.Array() {
		return canonicalPredicate[o], false
	}
	return "", false
}

var canonicalPredicate = map[Op]string{
	OpSIntersects: "s_intersects", OpSEquals: "s_equals",
	OpSDisjoint: "s_disjoint", OpSTouches: "s_touches",
	OpSWithin: "s_within", OpSOverlaps: "s_overlaps",
	OpSCrosses: "s_crosses", OpSContains: "s_contains",
	OpTAfter: "t_after", OpTBefore: "t_before", OpTContains: "t_contains",
	OpTDisjoint: "t_disjoint", OpTDuring: "t_during", OpTEquals: "t_equals",
	OpTFinishedBy: "t_finishedBy", OpTFinishes: "t_finishes",
	OpTIntersects: "t_intersects", OpTMeets: "t_meets", OpTMetBy: "t_metBy",
	OpTOverlappedBy: "t_overlappedBy", OpTOverlaps: "t_overlaps",
	OpTStartedBy: "t_startedBy", OpTStarts: "t_starts",
	OpAEquals: "a_equals", OpAContains: "a_contains",
	OpAContainedBy: "a_containedBy", OpAOverlaps: "a_overlaps",
}

func (o Op) Arithmetic() bool {
	return o >= OpAdd && o <= OpPow
}

func (o Op) Comparison() bool {
	return o >= OpEq && o <= OpGte
}

func (o Op) Spatial() bool {
	return o >= OpSIntersects && o <= OpSContains
}

func (o Op) Temporal() bool {
	return o >= OpTAfter && o <= OpTStarts
}

func (o Op) Array() bool {
	return o >= OpAEquals && o <= OpAOverlaps
}
