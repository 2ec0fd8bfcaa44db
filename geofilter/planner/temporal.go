package planner

import (
	"strings"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/query"
	"github.com/geofilter/geofilter/geofilter/storage/sqlbuilder"
)

// endpoint produces the SQL for one interval bound. It is a closure rather
// than a string because a bound may appear several times within one
// relation, and every occurrence of a literal must emit its own bind
// argument to keep positional placeholders in step.
type endpoint func() (string, error)

// tside is one side of a temporal predicate unfolded to its endpoints. An
// instant acts as the degenerate interval whose bounds coincide.
type tside struct {
	lo, hi endpoint
	guards []string
}

func (c *compiler) temporalSide(e query.Expr) (*tside, error) {
	switch x := e.(type) {
	case query.Interval:
		return &tside{
			lo:     func() (string, error) { return c.expr(x.Lo) },
			hi:     func() (string, error) { return c.expr(x.Hi) },
			guards: append(propertyGuards(x.Lo), propertyGuards(x.Hi)...),
		}, nil

	case query.Literal:
		if x.Val.IsInterval() {
			lo, hi, err := x.Val.AsInterval()
			if err != nil {
				return nil, err
			}
			return &tside{
				lo: func() (string, error) { return c.instant(lo), nil },
				hi: func() (string, error) { return c.instant(hi), nil },
			}, nil
		}
		inst, err := x.Val.AsInstant()
		if err != nil {
			return nil, geofilter.New(geofilter.ErrSQL,
				"temporal operand is neither an instant nor an interval")
		}
		same := func() (string, error) { return c.instant(inst), nil }
		return &tside{lo: same, hi: same}, nil

	case query.Property:
		ident := sqlbuilder.QuoteIdent(x.Name)
		same := func() (string, error) { return ident, nil }
		return &tside{lo: same, hi: same, guards: propertyGuards(e)}, nil

	case query.Call:
		same := func() (string, error) { return c.operand(e) }
		return &tside{lo: same, hi: same}, nil
	}
	return nil, geofilter.New(geofilter.ErrSQL,
		"temporal operand is neither an instant nor an interval")
}

// propertyGuards emits the IS NOT NULL checks that keep a comparison
// against a NULL column from silently matching.
func propertyGuards(e query.Expr) []string {
	if p, ok := e.(query.Property); ok {
		return []string{sqlbuilder.QuoteIdent(p.Name) + " IS NOT NULL"}
	}
	return nil
}

type trelation func(c *compiler, a, b *tside) (string, error)

var temporalRelations = map[string]trelation{
	"t_after": func(c *compiler, a, b *tside) (string, error) {
		return c.cmp(a.lo, ">", b.hi)
	},
	"t_before": func(c *compiler, a, b *tside) (string, error) {
		return c.cmp(a.hi, "<", b.lo)
	},
	"t_disjoint": func(c *compiler, a, b *tside) (string, error) {
		return c.join(" OR ", c.pair(a.hi, "<", b.lo), c.pair(a.lo, ">", b.hi))
	},
	"t_equals": func(c *compiler, a, b *tside) (string, error) {
		return c.join(" AND ", c.pair(a.lo, "=", b.lo), c.pair(a.hi, "=", b.hi))
	},
	"t_intersects": func(c *compiler, a, b *tside) (string, error) {
		inner, err := c.join(" OR ", c.pair(a.hi, "<", b.lo), c.pair(a.lo, ">", b.hi))
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	},
	"t_contains": func(c *compiler, a, b *tside) (string, error) {
		return c.join(" AND ", c.pair(a.lo, "<", b.lo), c.pair(a.hi, ">", b.hi))
	},
	"t_during": func(c *compiler, a, b *tside) (string, error) {
		return c.join(" AND ", c.pair(a.lo, ">", b.lo), c.pair(a.hi, "<", b.hi))
	},
	"t_finishedBy": func(c *compiler, a, b *tside) (string, error) {
		return c.join(" AND ", c.pair(a.lo, "<", b.lo), c.pair(a.hi, "=", b.hi))
	},
	"t_finishes": func(c *compiler, a, b *tside) (string, error) {
		return c.join(" AND ", c.pair(a.lo, ">", b.lo), c.pair(a.hi, "=", b.hi))
	},
	"t_meets": func(c *compiler, a, b *tside) (string, error) {
		return c.cmp(a.hi, "=", b.lo)
	},
	"t_metBy": func(c *compiler, a, b *tside) (string, error) {
		return c.cmp(a.lo, "=", b.hi)
	},
	"t_overlappedBy": func(c *compiler, a, b *tside) (string, error) {
		return c.join(" AND ",
			c.pair(a.lo, ">", b.lo), c.pair(a.lo, "<", b.hi), c.pair(a.hi, ">", b.hi))
	},
	"t_overlaps": func(c *compiler, a, b *tside) (string, error) {
		return c.join(" AND ",
			c.pair(a.lo, "<", b.lo), c.pair(a.hi, ">", b.lo), c.pair(a.hi, "<", b.hi))
	},
	"t_startedBy": func(c *compiler, a, b *tside) (string, error) {
		return c.join(" AND ", c.pair(a.lo, "=", b.lo), c.pair(a.hi, ">", b.hi))
	},
	"t_starts": func(c *compiler, a, b *tside) (string, error) {
		return c.join(" AND ", c.pair(a.lo, "=", b.lo), c.pair(a.hi, "<", b.hi))
	},
}

func (c *compiler) temporal(x query.Call) (string, error) {
	a, err := c.temporalSide(x.Args[0])
	if err != nil {
		return "", err
	}
	b, err := c.temporalSide(x.Args[1])
	if err != nil {
		return "", err
	}
	rel := temporalRelations[x.Name]
	base, err := rel(c, a, b)
	if err != nil {
		return "", err
	}
	guards := append(append([]string(nil), a.guards...), b.guards...)
	if len(guards) == 0 {
		return base, nil
	}
	return strings.Join(guards, " AND ") + " AND (" + base + ")", nil
}

// cmp emits one endpoint comparison.
func (c *compiler) cmp(a endpoint, op string, b endpoint) (string, error) {
	l, err := a()
	if err != nil {
		return "", err
	}
	r, err := b()
	if err != nil {
		return "", err
	}
	return l + " " + op + " " + r, nil
}

// pair defers a comparison so join can evaluate operands left to right,
// keeping bind arguments in emission order.
func (c *compiler) pair(a endpoint, op string, b endpoint) func() (string, error) {
	return func() (string, error) { return c.cmp(a, op, b) }
}

func (c *compiler) join(word string, parts ...func() (string, error)) (string, error) {
	out := make([]string, len(parts))
	for i, p := range parts {
		s, err := p()
		if err != nil {
			return "", err
		}
		out[i] = s
	}
	return strings.Join(out, word), nil
}
