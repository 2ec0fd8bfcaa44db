package query

import (
	"strings"

	"github.com/geofilter/geofilter/geofilter"
)

// Expr is a node of the filter expression tree. Parsers (text and
// structured) produce trees mixing operator nodes with calls; the reducer
// rewrites every operator into canonical Call form, so downstream
// consumers only see Literal, Property, Call, Array and Interval.
type Expr interface {
	isExpr()
	String() string
}

// Literal is a typed constant value.
type Literal struct {
	Val geofilter.Value
}

func (Literal) isExpr() {}

func (l Literal) String() string { return l.Val.String() }

// Property references a queryable by name.
type Property struct {
	Name string
}

func (Property) isExpr() {}

func (p Property) String() string {
	if strings.ContainsAny(p.Name, " -") {
		return `"` + p.Name + `"`
	}
	return p.Name
}

// Call invokes a registered function with ordered arguments. Result is the
// inferred result type, filled in by the reducer.
type Call struct {
	Name   string
	Args   []Expr
	Result geofilter.DataType
}

func (Call) isExpr() {}

func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Unary is a pre-reduction operator node with one operand.
type Unary struct {
	Op Op
	X  Expr
}

func (Unary) isExpr() {}

func (u Unary) String() string {
	if u.Op == OpIsNull || u.Op == OpIsNotNull {
		return u.X.String() + " " + u.Op.String()
	}
	return u.Op.String() + "(" + u.X.String() + ")"
}

// Binary is a pre-reduction operator node with two operands.
type Binary struct {
	Op   Op
	L, R Expr
}

func (Binary) isExpr() {}

func (b Binary) String() string {
	switch {
	case b.Op == OpBetween || b.Op == OpNotBetween:
		if arr, ok := b.R.(Array); ok && len(arr.Elems) == 2 {
			return b.L.String() + " " + b.Op.String() + " " +
				arr.Elems[0].String() + " AND " + arr.Elems[1].String()
		}
		return b.L.String() + " " + b.Op.String() + " " + b.R.String()
	case b.Op.Spatial() || b.Op.Temporal() || b.Op.Array():
		return b.Op.String() + "(" + b.L.String() + ", " + b.R.String() + ")"
	default:
		return b.L.String() + " " + b.Op.String() + " " + b.R.String()
	}
}

// Array is an ordered list of element expressions.
type Array struct {
	Elems []Expr
}

func (Array) isExpr() {}

func (a Array) String() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Interval is a temporal interval with possibly open bounds.
type Interval struct {
	Lo, Hi Expr
}

func (Interval) isExpr() {}

func (iv Interval) String() string {
	return "INTERVAL(" + iv.Lo.String() + ", " + iv.Hi.String() + ")"
}

// IsLiteral reports whether e is a constant: a literal, or an array or
// interval whose members are all constants.
func IsLiteral(e Expr) bool {
	switch x := e.(type) {
	case Literal:
		return true
	case Array:
		for _, el := range x.Elems {
			if !IsLiteral(el) {
				return false
			}
		}
		return true
	case Interval:
		return IsLiteral(x.Lo) && IsLiteral(x.Hi)
	default:
		return false
	}
}

// AsLiteral extracts the constant value of a literal-only expression.
func AsLiteral(e Expr) (geofilter.Value, bool) {
	switch x := e.(type) {
	case Literal:
		return x.Val, true
	case Array:
		vs := make([]geofilter.Value, len(x.Elems))
		for i, el := range x.Elems {
			v, ok := AsLiteral(el)
			if !ok {
				return geofilter.Null(), false
			}
			vs[i] = v
		}
		return geofilter.List(vs), true
	case Interval:
		lo, ok := AsLiteral(x.Lo)
		if !ok {
			return geofilter.Null(), false
		}
		hi, ok := AsLiteral(x.Hi)
		if !ok {
			return geofilter.Null(), false
		}
		l, err := lo.AsInstant()
		if err != nil {
			return geofilter.Null(), false
		}
		h, err := hi.AsInstant()
		if err != nil {
			return geofilter.Null(), false
		}
		return geofilter.Interval(l, h), true
	default:
		return geofilter.Null(), false
	}
}
