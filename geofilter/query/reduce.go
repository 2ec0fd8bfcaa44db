package query

import (
	"fmt"

	"github.com/geofilter/geofilter/geofilter"
)

// Reduce rewrites an expression tree into canonical function-call form,
// type-checks every call against the registry, and folds constant
// subtrees. The result contains only Literal, Property, Call, Array and
// Interval nodes. Reduction is idempotent: reducing an already reduced
// tree returns it unchanged.
func Reduce(e Expr, fz *geofilter.Frozen) (Expr, error) {
	r := &reducer{fz: fz}
	return r.reduce(e)
}

type reducer struct {
	fz *geofilter.Frozen
}

func (r *reducer) reduce(e Expr) (Expr, error) {
	switch x := e.(type) {
	case Literal, Property:
		return e, nil

	case Array:
		elems := make([]Expr, len(x.Elems))
		for i, el := range x.Elems {
			re, err := r.reduce(el)
			if err != nil {
				return nil, err
			}
			elems[i] = re
		}
		return Array{Elems: elems}, nil

	case Interval:
		lo, err := r.reduce(x.Lo)
		if err != nil {
			return nil, err
		}
		hi, err := r.reduce(x.Hi)
		if err != nil {
			return nil, err
		}
		return Interval{Lo: lo, Hi: hi}, nil

	case Unary:
		arg, err := r.reduce(x.X)
		if err != nil {
			return nil, err
		}
		name, negated := x.Op.Canonical()
		return r.canonical(name, negated, []Expr{arg})

	case Binary:
		l, err := r.reduce(x.L)
		if err != nil {
			return nil, err
		}
		rhs, err := r.reduce(x.R)
		if err != nil {
			return nil, err
		}
		name, negated := x.Op.Canonical()
		args := []Expr{l, rhs}
		if x.Op == OpBetween || x.Op == OpNotBetween {
			bounds, ok := rhs.(Array)
			if !ok || len(bounds.Elems) != 2 {
				return nil, geofilter.TypeError(name, "BETWEEN requires two bounds")
			}
			args = []Expr{l, bounds.Elems[0], bounds.Elems[1]}
		}
		return r.canonical(name, negated, args)

	case Call:
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			ra, err := r.reduce(a)
			if err != nil {
				return nil, err
			}
			args[i] = ra
		}
		return r.call(Call{Name: x.Name, Args: args})
	}
	return nil, geofilter.New(geofilter.ErrType, "unknown expression node")
}

func (r *reducer) canonical(name string, negated bool, args []Expr) (Expr, error) {
	e, err := r.call(Call{Name: name, Args: args})
	if err != nil {
		return nil, err
	}
	if !negated {
		return e, nil
	}
	return r.call(Call{Name: geofilter.FnNot, Args: []Expr{e}})
}

// call type-checks one canonical call and constant-folds it when every
// argument is a literal.
func (r *reducer) call(c Call) (Expr, error) {
	sig, ok := r.fz.Lookup(c.Name)
	if !ok {
		return nil, geofilter.TypeError(c.Name, "function is not registered")
	}
	if len(c.Args) != len(sig.Args) {
		return nil, geofilter.TypeError(c.Name, fmt.Sprintf(
			"expected %d argument(s), got %d", len(sig.Args), len(c.Args)))
	}
	for i, a := range c.Args {
		want := sig.Args[i]
		if want == geofilter.TypeAny {
			continue
		}
		got := staticType(a)
		if got == geofilter.TypeUnknown {
			continue
		}
		if !kindsMatch(want, got) {
			return nil, geofilter.TypeError(c.Name, fmt.Sprintf(
				"argument %d: expected %s, got %s", i+1, want, got))
		}
	}

	switch c.Name {
	case geofilter.FnAnd:
		return r.connective(c, sig, false)
	case geofilter.FnOr:
		return r.connective(c, sig, true)
	case geofilter.FnIsNull:
		if v, ok := AsLiteral(c.Args[0]); ok {
			return Literal{Val: geofilter.Bool(v.IsNull())}, nil
		}
		c.Result = sig.Result
		return c, nil
	case geofilter.FnCaseI, geofilter.FnAccentI:
		// the fold is idempotent, nesting the same wrapper adds nothing
		if inner, ok := c.Args[0].(Call); ok && inner.Name == c.Name {
			return inner, nil
		}
	}

	if geofilter.IsVolatile(c.Name) || !allLiteral(c.Args) {
		c.Result = sig.Result
		return c, nil
	}
	vals := make([]geofilter.Value, len(c.Args))
	for i, a := range c.Args {
		vals[i], _ = AsLiteral(a)
	}
	out, err := r.fz.Call(c.Name, vals)
	if err != nil {
		return nil, err
	}
	return Literal{Val: out}, nil
}

// connective folds AND/OR with three-valued semantics. A literal absorbing
// operand (FALSE for AND, TRUE for OR) decides the result regardless of
// the other side; a literal identity operand drops out.
func (r *reducer) connective(c Call, sig geofilter.Signature, isOr bool) (Expr, error) {
	var known []geofilter.Outcome
	var rest []Expr
	for _, a := range c.Args {
		v, ok := AsLiteral(a)
		if !ok {
			rest = append(rest, a)
			continue
		}
		o, err := geofilter.OutcomeOf(v)
		if err != nil {
			return nil, geofilter.TypeError(c.Name, "operand is not a boolean")
		}
		known = append(known, o)
	}

	absorbing := geofilter.False
	if isOr {
		absorbing = geofilter.True
	}
	unknownSeen := false
	for _, o := range known {
		switch o {
		case absorbing:
			return Literal{Val: geofilter.Bool(isOr)}, nil
		case geofilter.Unknown:
			unknownSeen = true
		}
	}
	if len(rest) == 0 {
		if unknownSeen {
			return Literal{Val: geofilter.Null()}, nil
		}
		return Literal{Val: geofilter.Bool(!isOr)}, nil
	}
	if len(rest) == 1 && !unknownSeen {
		// identity operands vanish
		return rest[0], nil
	}
	c.Result = sig.Result
	c.Args = rest
	if unknownSeen {
		// keep the unknown operand so three-valued semantics survive
		c.Args = append([]Expr{Literal{Val: geofilter.Null()}}, rest...)
	}
	return c, nil
}

func allLiteral(args []Expr) bool {
	for _, a := range args {
		if !IsLiteral(a) {
			return false
		}
	}
	return true
}

// staticType is the compile-time kind of an expression, Unknown when it
// cannot be determined before evaluation.
func staticType(e Expr) geofilter.DataType {
	switch x := e.(type) {
	case Literal:
		return x.Val.Type()
	case Call:
		return x.Result
	default:
		return geofilter.TypeUnknown
	}
}

func kindsMatch(want, got geofilter.DataType) bool {
	if want == got {
		return true
	}
	return (want == geofilter.TypeDate || want == geofilter.TypeTimestamp) &&
		(got == geofilter.TypeDate || got == geofilter.TypeTimestamp)
}
