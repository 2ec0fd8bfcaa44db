package geofilter

import (
	"fmt"
	"math"

	"github.com/geofilter/geofilter/geofilter/geo"
)

// Canonical names the reducer rewrites operator nodes into. Every one of
// them is pre-registered so reduction, evaluation and SQL lowering all
// resolve operators through the same registry as host functions.
const (
	FnAnd     = "and"
	FnOr      = "or"
	FnNot     = "not"
	FnIsNull  = "isNull"
	FnCaseI   = "casei"
	FnAccentI = "accenti"
	FnNeg     = "neg"

	FnEq  = "="
	FnNeq = "<>"
	FnLt  = "<"
	FnGt  = ">"
	FnLte = "<="
	FnGte = ">="

	FnLike    = "like"
	FnBetween = "between"
	FnIn      = "in"

	FnAdd    = "+"
	FnSub    = "-"
	FnMul    = "*"
	FnDiv    = "/"
	FnIntDiv = "div"
	FnMod    = "%"
	FnPow    = "^"
)

// IsConnective reports whether name is a boolean connective the evaluator
// must short-circuit with three-valued semantics instead of calling through
// the registry (which would propagate NULL arguments).
func IsConnective(name string) bool {
	return name == FnAnd || name == FnOr || name == FnNot
}

// IsNullTolerant reports whether a standard function accepts NULL
// arguments instead of propagating them.
func IsNullTolerant(name string) bool {
	return name == FnIsNull || IsConnective(name)
}

// IsVolatile reports whether a function reads the clock and must be
// re-evaluated on every call instead of being folded at reduce time, so
// compiled SQL binds the engine's clock rather than the client's.
func IsVolatile(name string) bool {
	return name == "now" || name == "today"
}

func registerStandard(c *Context) {
	c.register(FnAnd, []DataType{TypeBool, TypeBool}, TypeBool, func(a []Value) (Value, error) {
		x, err := a[0].AsBool()
		if err != nil {
			return Null(), err
		}
		y, err := a[1].AsBool()
		if err != nil {
			return Null(), err
		}
		return Bool(x && y), nil
	})
	c.register(FnOr, []DataType{TypeBool, TypeBool}, TypeBool, func(a []Value) (Value, error) {
		x, err := a[0].AsBool()
		if err != nil {
			return Null(), err
		}
		y, err := a[1].AsBool()
		if err != nil {
			return Null(), err
		}
		return Bool(x || y), nil
	})
	c.register(FnNot, []DataType{TypeBool}, TypeBool, func(a []Value) (Value, error) {
		x, err := a[0].AsBool()
		if err != nil {
			return Null(), err
		}
		return Bool(!x), nil
	})
	c.register(FnIsNull, []DataType{TypeAny}, TypeBool, func(a []Value) (Value, error) {
		return Bool(a[0].IsNull()), nil
	})
	c.register(FnCaseI, []DataType{TypeStr}, TypeStr, func(a []Value) (Value, error) {
		s, err := a[0].AsStr()
		if err != nil {
			return Null(), err
		}
		return QStr(s.AndICase()), nil
	})
	c.register(FnAccentI, []DataType{TypeStr}, TypeStr, func(a []Value) (Value, error) {
		s, err := a[0].AsStr()
		if err != nil {
			return Null(), err
		}
		return QStr(s.AndIAccent()), nil
	})
	c.register(FnNeg, []DataType{TypeNum}, TypeNum, func(a []Value) (Value, error) {
		x, err := a[0].AsNum()
		if err != nil {
			return Null(), err
		}
		return Num(-x), nil
	})

	registerComparisons(c)
	registerExtendedComparisons(c)
	registerArithmetic(c)
	registerSpatial(c)
	registerTemporal(c)
	registerArray(c)
}

func registerComparisons(c *Context) {
	cmp := func(name string, ok func(int) bool) {
		c.register(name, []DataType{TypeAny, TypeAny}, TypeBool, func(a []Value) (Value, error) {
			n, err := a[0].Compare(a[1])
			if err != nil {
				return Null(), err
			}
			return Bool(ok(n)), nil
		})
	}
	c.register(FnEq, []DataType{TypeAny, TypeAny}, TypeBool, func(a []Value) (Value, error) {
		if !SameType(a[0], a[1]) {
			return Null(), EvalError(fmt.Sprintf("cannot compare %s with %s", a[0], a[1]))
		}
		return Bool(a[0].Equal(a[1])), nil
	})
	c.register(FnNeq, []DataType{TypeAny, TypeAny}, TypeBool, func(a []Value) (Value, error) {
		if !SameType(a[0], a[1]) {
			return Null(), EvalError(fmt.Sprintf("cannot compare %s with %s", a[0], a[1]))
		}
		return Bool(!a[0].Equal(a[1])), nil
	})
	cmp(FnLt, func(n int) bool { return n < 0 })
	cmp(FnGt, func(n int) bool { return n > 0 })
	cmp(FnLte, func(n int) bool { return n <= 0 })
	cmp(FnGte, func(n int) bool { return n >= 0 })
}

func registerExtendedComparisons(c *Context) {
	c.register(FnLike, []DataType{TypeStr, TypeStr}, TypeBool, func(a []Value) (Value, error) {
		in, err := a[0].AsStr()
		if err != nil {
			return Null(), err
		}
		pat, err := a[1].AsStr()
		if err != nil {
			return Null(), err
		}
		return Bool(in.Like(pat)), nil
	})
	c.register(FnBetween, []DataType{TypeNum, TypeNum, TypeNum}, TypeBool, func(a []Value) (Value, error) {
		x, err := a[0].AsNum()
		if err != nil {
			return Null(), err
		}
		lo, err := a[1].AsNum()
		if err != nil {
			return Null(), err
		}
		hi, err := a[2].AsNum()
		if err != nil {
			return Null(), err
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return Bool(lo <= x && x <= hi), nil
	})
	c.register(FnIn, []DataType{TypeAny, TypeAny}, TypeBool, func(a []Value) (Value, error) {
		if a[0].Type() == TypeUnknown {
			return Null(), EvalError("IN left-hand side is not a literal value")
		}
		list, err := a[1].AsList()
		if err != nil {
			return Null(), err
		}
		for _, e := range list {
			if !e.IsNull() && !SameType(a[0], e) {
				return Null(), EvalError("incompatible IN predicate types")
			}
		}
		return Bool(a[0].ContainedBy(list)), nil
	})
}

func registerArithmetic(c *Context) {
	arith := func(name string, f func(a, b float64) (float64, error)) {
		c.register(name, []DataType{TypeNum, TypeNum}, TypeNum, func(a []Value) (Value, error) {
			x, err := a[0].AsNum()
			if err != nil {
				return Null(), err
			}
			y, err := a[1].AsNum()
			if err != nil {
				return Null(), err
			}
			out, err := f(x, y)
			if err != nil {
				return Null(), err
			}
			return Num(out), nil
		})
	}
	arith(FnAdd, func(a, b float64) (float64, error) { return a + b, nil })
	arith(FnSub, func(a, b float64) (float64, error) { return a - b, nil })
	arith(FnMul, func(a, b float64) (float64, error) { return a * b, nil })
	arith(FnDiv, func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, EvalError("division by zero")
		}
		return a / b, nil
	})
	arith(FnIntDiv, func(a, b float64) (float64, error) {
		// truncation can turn a small nonzero divisor into zero
		if int64(b) == 0 {
			return 0, EvalError("integer division by zero")
		}
		return float64(int64(a) / int64(b)), nil
	})
	arith(FnMod, func(a, b float64) (float64, error) {
		if int64(b) == 0 {
			return 0, EvalError("modulo by zero")
		}
		return float64(int64(a) % int64(b)), nil
	})
	arith(FnPow, func(a, b float64) (float64, error) { return math.Pow(a, b), nil })
}

func registerSpatial(c *Context) {
	rel := func(name string, f func(a, b geo.Geometry) (bool, error)) {
		c.register(name, []DataType{TypeGeom, TypeGeom}, TypeBool, func(a []Value) (Value, error) {
			x, err := a[0].AsGeom()
			if err != nil {
				return Null(), err
			}
			y, err := a[1].AsGeom()
			if err != nil {
				return Null(), err
			}
			ok, err := f(x, y)
			if err != nil {
				return Null(), err
			}
			return Bool(ok), nil
		})
	}
	rel("s_intersects", func(a, b geo.Geometry) (bool, error) { return a.Intersects(b) })
	rel("s_equals", func(a, b geo.Geometry) (bool, error) { return a.Equals(b) })
	rel("s_disjoint", func(a, b geo.Geometry) (bool, error) { return a.Disjoint(b) })
	rel("s_touches", func(a, b geo.Geometry) (bool, error) { return a.Touches(b) })
	rel("s_within", func(a, b geo.Geometry) (bool, error) { return a.Within(b) })
	rel("s_overlaps", func(a, b geo.Geometry) (bool, error) { return a.Overlaps(b) })
	rel("s_crosses", func(a, b geo.Geometry) (bool, error) { return a.Crosses(b) })
	rel("s_contains", func(a, b geo.Geometry) (bool, error) { return a.Contains(b) })
}

// The Allen interval relations. Instant operands behave as the degenerate
// interval [t, t]; the five basic predicates accept either form, the rest
// expect proper intervals on both sides.
func registerTemporal(c *Context) {
	tmp := func(name string, f func(lo1, hi1, lo2, hi2 Instant) bool) {
		c.register(name, []DataType{TypeAny, TypeAny}, TypeBool, func(a []Value) (Value, error) {
			lo1, hi1, err := a[0].AsInterval()
			if err != nil {
				return Null(), err
			}
			lo2, hi2, err := a[1].AsInterval()
			if err != nil {
				return Null(), err
			}
			return Bool(f(lo1, hi1, lo2, hi2)), nil
		})
	}
	tmp("t_after", func(lo1, _, _, hi2 Instant) bool { return lo1.After(hi2) })
	tmp("t_before", func(_, hi1, lo2, _ Instant) bool { return hi1.Before(lo2) })
	tmp("t_disjoint", func(lo1, hi1, lo2, hi2 Instant) bool {
		return hi1.Before(lo2) || lo1.After(hi2)
	})
	tmp("t_equals", func(lo1, hi1, lo2, hi2 Instant) bool {
		return lo1.Equal(lo2) && hi1.Equal(hi2)
	})
	tmp("t_intersects", func(lo1, hi1, lo2, hi2 Instant) bool {
		return !(hi1.Before(lo2) || lo1.After(hi2))
	})
	tmp("t_contains", func(lo1, hi1, lo2, hi2 Instant) bool {
		return lo1.Before(lo2) && hi1.After(hi2)
	})
	tmp("t_during", func(lo1, hi1, lo2, hi2 Instant) bool {
		return lo1.After(lo2) && hi1.Before(hi2)
	})
	tmp("t_finishedBy", func(lo1, hi1, lo2, hi2 Instant) bool {
		return lo1.Before(lo2) && hi1.Equal(hi2)
	})
	tmp("t_finishes", func(lo1, hi1, lo2, hi2 Instant) bool {
		return lo1.After(lo2) && hi1.Equal(hi2)
	})
	tmp("t_meets", func(_, hi1, lo2, _ Instant) bool { return hi1.Equal(lo2) })
	tmp("t_metBy", func(lo1, _, _, hi2 Instant) bool { return lo1.Equal(hi2) })
	tmp("t_overlappedBy", func(lo1, hi1, lo2, hi2 Instant) bool {
		return lo1.After(lo2) && lo1.Before(hi2) && hi1.After(hi2)
	})
	tmp("t_overlaps", func(lo1, hi1, lo2, hi2 Instant) bool {
		return lo1.Before(lo2) && hi1.After(lo2) && hi1.Before(hi2)
	})
	tmp("t_startedBy", func(lo1, hi1, lo2, hi2 Instant) bool {
		return lo1.Equal(lo2) && hi1.After(hi2)
	})
	tmp("t_starts", func(lo1, hi1, lo2, hi2 Instant) bool {
		return lo1.Equal(lo2) && hi1.Before(hi2)
	})
}

func registerArray(c *Context) {
	arr := func(name string, f func(a, b []Value) bool) {
		c.register(name, []DataType{TypeAny, TypeAny}, TypeBool, func(a []Value) (Value, error) {
			x, err := a[0].AsList()
			if err != nil {
				return Null(), err
			}
			y, err := a[1].AsList()
			if err != nil {
				return Null(), err
			}
			return Bool(f(x, y)), nil
		})
	}
	arr("a_equals", func(a, b []Value) bool {
		return List(a).Equal(List(b))
	})
	arr("a_contains", func(a, b []Value) bool {
		for _, e := range b {
			if !e.ContainedBy(a) {
				return false
			}
		}
		return true
	})
	arr("a_containedBy", func(a, b []Value) bool {
		for _, e := range a {
			if !e.ContainedBy(b) {
				return false
			}
		}
		return true
	})
	arr("a_overlaps", func(a, b []Value) bool {
		for _, e := range a {
			if e.ContainedBy(b) {
				return true
			}
		}
		return false
	})
}
