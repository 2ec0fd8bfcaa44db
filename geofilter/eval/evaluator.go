// Package eval executes reduced filter expressions against individual
// resources with three-valued semantics.
package eval

import (
	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/query"
)

type state int

const (
	stateCreated state = iota
	stateReady
	stateTornDown
)

// Evaluator binds one expression to a frozen context and applies it to any
// number of resources. It moves through a strict lifecycle: Setup must
// succeed before Evaluate, and Teardown retires it permanently. Evaluators
// are cheap; a frozen context may back many of them concurrently, but a
// single Evaluator is not safe for concurrent use.
type Evaluator struct {
	fz    *geofilter.Frozen
	expr  query.Expr
	state state
}

// New creates an Evaluator bound to a frozen context.
func New(fz *geofilter.Frozen) *Evaluator {
	return &Evaluator{fz: fz}
}

// Setup reduces the expression and validates every geometry literal
// against the context CRS. Reduction is idempotent, so handing in an
// already reduced tree is fine. Setup may be called again with a new
// expression until the Evaluator is torn down.
func (ev *Evaluator) Setup(e query.Expr) error {
	if ev.state == stateTornDown {
		return geofilter.New(geofilter.ErrSetup, "evaluator has been torn down")
	}
	reduced, err := query.Reduce(e, ev.fz)
	if err != nil {
		return err
	}
	if err := ev.checkGeometries(reduced); err != nil {
		return err
	}
	ev.expr = reduced
	ev.state = stateReady
	return nil
}

// SetupText parses a text-encoded filter and sets it up.
func (ev *Evaluator) SetupText(filter string) error {
	if ev.state == stateTornDown {
		return geofilter.New(geofilter.ErrSetup, "evaluator has been torn down")
	}
	e, err := query.ParseWithPrecision(filter, ev.fz.Precision())
	if err != nil {
		return err
	}
	return ev.Setup(e)
}

// Evaluate applies the expression to one resource. Missing queryables
// evaluate to NULL; the result maps to Unknown rather than an error.
func (ev *Evaluator) Evaluate(res geofilter.Resource) (geofilter.Outcome, error) {
	if ev.state != stateReady {
		if ev.state == stateTornDown {
			return geofilter.Unknown, geofilter.New(geofilter.ErrSetup, "evaluator has been torn down")
		}
		return geofilter.Unknown, geofilter.New(geofilter.ErrSetup, "evaluator is not set up")
	}
	v, err := ev.eval(ev.expr, res)
	if err != nil {
		return geofilter.Unknown, err
	}
	return geofilter.OutcomeOf(v)
}

// Teardown retires the Evaluator. Calling it more than once is harmless;
// Setup and Evaluate fail afterwards.
func (ev *Evaluator) Teardown() {
	ev.state = stateTornDown
	ev.expr = nil
}

func (ev *Evaluator) eval(e query.Expr, res geofilter.Resource) (geofilter.Value, error) {
	switch x := e.(type) {
	case query.Literal:
		return x.Val, nil

	case query.Property:
		v, ok := res.Get(x.Name)
		if !ok {
			return geofilter.Null(), nil
		}
		if v.IsGeom() {
			g, _ := v.AsGeom()
			if err := ev.fz.CRS().CheckGeometry(g); err != nil {
				return geofilter.Null(), err
			}
		}
		return v, nil

	case query.Array:
		vs := make([]geofilter.Value, len(x.Elems))
		for i, el := range x.Elems {
			v, err := ev.eval(el, res)
			if err != nil {
				return geofilter.Null(), err
			}
			vs[i] = v
		}
		return geofilter.List(vs), nil

	case query.Interval:
		lo, err := ev.evalInstant(x.Lo, res)
		if err != nil {
			return geofilter.Null(), err
		}
		hi, err := ev.evalInstant(x.Hi, res)
		if err != nil {
			return geofilter.Null(), err
		}
		return geofilter.Interval(lo, hi), nil

	case query.Call:
		return ev.evalCall(x, res)
	}
	return geofilter.Null(), geofilter.EvalError("unknown expression node")
}

func (ev *Evaluator) evalInstant(e query.Expr, res geofilter.Resource) (geofilter.Instant, error) {
	v, err := ev.eval(e, res)
	if err != nil {
		return geofilter.Instant{}, err
	}
	return v.AsInstant()
}

// evalCall intercepts the null-tolerant functions (short-circuiting the
// connectives with three-valued semantics) and routes everything else
// through the registry, which propagates NULL arguments.
func (ev *Evaluator) evalCall(c query.Call, res geofilter.Resource) (geofilter.Value, error) {
	switch c.Name {
	case geofilter.FnAnd:
		return ev.evalConnective(c, res, false)
	case geofilter.FnOr:
		return ev.evalConnective(c, res, true)

	case geofilter.FnNot:
		v, err := ev.eval(c.Args[0], res)
		if err != nil {
			return geofilter.Null(), err
		}
		o, err := geofilter.OutcomeOf(v)
		if err != nil {
			return geofilter.Null(), err
		}
		switch o {
		case geofilter.True:
			return geofilter.Bool(false), nil
		case geofilter.False:
			return geofilter.Bool(true), nil
		}
		return geofilter.Null(), nil

	case geofilter.FnIsNull:
		v, err := ev.eval(c.Args[0], res)
		if err != nil {
			return geofilter.Null(), err
		}
		return geofilter.Bool(v.IsNull()), nil
	}

	args := make([]geofilter.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := ev.eval(a, res)
		if err != nil {
			return geofilter.Null(), err
		}
		args[i] = v
	}
	return ev.fz.Call(c.Name, args)
}

// evalConnective applies the SQL truth table: AND is FALSE as soon as one
// operand is FALSE, OR is TRUE as soon as one is TRUE, and NULL otherwise
// when any operand is NULL.
func (ev *Evaluator) evalConnective(c query.Call, res geofilter.Resource, isOr bool) (geofilter.Value, error) {
	absorbing := geofilter.False
	if isOr {
		absorbing = geofilter.True
	}
	unknownSeen := false
	for _, a := range c.Args {
		v, err := ev.eval(a, res)
		if err != nil {
			return geofilter.Null(), err
		}
		o, err := geofilter.OutcomeOf(v)
		if err != nil {
			return geofilter.Null(), err
		}
		if o == absorbing {
			return geofilter.Bool(isOr), nil
		}
		if o == geofilter.Unknown {
			unknownSeen = true
		}
	}
	if unknownSeen {
		return geofilter.Null(), nil
	}
	return geofilter.Bool(!isOr), nil
}

// checkGeometries rejects setups whose geometry literals fall outside the
// context CRS extent.
func (ev *Evaluator) checkGeometries(e query.Expr) error {
	switch x := e.(type) {
	case query.Literal:
		if x.Val.IsGeom() {
			g, _ := x.Val.AsGeom()
			return ev.fz.CRS().CheckGeometry(g)
		}
	case query.Array:
		for _, el := range x.Elems {
			if err := ev.checkGeometries(el); err != nil {
				return err
			}
		}
	case query.Interval:
		if err := ev.checkGeometries(x.Lo); err != nil {
			return err
		}
		return ev.checkGeometries(x.Hi)
	case query.Call:
		for _, a := range x.Args {
			if err := ev.checkGeometries(a); err != nil {
				return err
			}
		}
	}
	return nil
}
