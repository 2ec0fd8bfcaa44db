package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/query"
	"github.com/geofilter/geofilter/geofilter/storage/sqlbuilder"
)

var comparisonSQL = map[string]string{
	geofilter.FnEq: "=", geofilter.FnNeq: "<>",
	geofilter.FnLt: "<", geofilter.FnGt: ">",
	geofilter.FnLte: "<=", geofilter.FnGte: ">=",
}

var arithmeticSQL = map[string]string{
	geofilter.FnAdd: "+", geofilter.FnSub: "-",
	geofilter.FnMul: "*", geofilter.FnDiv: "/", geofilter.FnMod: "%",
}

var spatialSQL = map[string]string{
	"s_intersects": "ST_Intersects", "s_equals": "ST_Equals",
	"s_disjoint": "ST_Disjoint", "s_touches": "ST_Touches",
	"s_within": "ST_Within", "s_overlaps": "ST_Overlaps",
	"s_crosses": "ST_Crosses", "s_contains": "ST_Contains",
}

// spatial predicates that need coordinate snapping on engines with the
// precision quirk
var snappedSpatial = map[string]bool{
	"s_within": true, "s_overlaps": true, "s_touches": true,
}

var arraySQL = map[string]string{
	"a_equals": "=", "a_contains": "@>",
	"a_containedBy": "<@", "a_overlaps": "&&",
}

// Compile lowers a reduced expression to a WHERE clause fragment with bind
// arguments. Literals always travel as arguments, never as inline SQL
// text.
func Compile(e query.Expr, d Dialect) (string, []any, error) {
	c := &compiler{d: d, b: sqlbuilder.New(d.Placeholder)}
	sql, err := c.expr(e)
	if err != nil {
		return "", nil, err
	}
	return sql, c.b.Args(), nil
}

type compiler struct {
	d Dialect
	b *sqlbuilder.Builder
}

func (c *compiler) expr(e query.Expr) (string, error) {
	switch x := e.(type) {
	case query.Literal:
		return c.literal(x.Val)
	case query.Property:
		return sqlbuilder.QuoteIdent(x.Name), nil
	case query.Array:
		return c.list(x.Elems, "(", ")")
	case query.Interval:
		return "", geofilter.New(geofilter.ErrSQL,
			"interval outside a temporal predicate cannot be lowered")
	case query.Call:
		return c.call(x)
	}
	return "", geofilter.New(geofilter.ErrSQL, "unknown expression node")
}

// operand compiles a sub-expression, parenthesizing anything that is not a
// literal or a column reference.
func (c *compiler) operand(e query.Expr) (string, error) {
	sql, err := c.expr(e)
	if err != nil {
		return "", err
	}
	switch e.(type) {
	case query.Literal, query.Property:
		return sql, nil
	}
	return "(" + sql + ")", nil
}

func (c *compiler) list(elems []query.Expr, open, close string) (string, error) {
	parts := make([]string, len(elems))
	for i, el := range elems {
		s, err := c.expr(el)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return open + strings.Join(parts, ", ") + close, nil
}

func (c *compiler) literal(v geofilter.Value) (string, error) {
	switch {
	case v.IsNull():
		return "NULL", nil
	case v.IsBool():
		b, _ := v.AsBool()
		if b {
			return "TRUE", nil
		}
		return "FALSE", nil
	case v.IsNum():
		n, _ := v.AsNum()
		return c.b.Arg(n), nil
	case v.IsStr():
		s, _ := v.AsStr()
		return c.b.Arg(s.String()) + c.collateSuffix(s), nil
	case v.IsInstant():
		inst, _ := v.AsInstant()
		return c.instant(inst), nil
	case v.IsGeom():
		g, _ := v.AsGeom()
		wkt := g.WKTWithPrecision(c.d.Precision)
		if srid := g.SRID(); srid > 0 {
			return c.d.GeomFromText + "(" + c.b.Arg(wkt) + ", " +
				strconv.Itoa(int(srid)) + ")", nil
		}
		return c.d.GeomFromText + "(" + c.b.Arg(wkt) + ")", nil
	case v.IsList():
		vs, _ := v.AsList()
		parts := make([]string, len(vs))
		for i, el := range vs {
			s, err := c.literal(el)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	}
	return "", geofilter.New(geofilter.ErrSQL, "literal cannot be lowered")
}

func (c *compiler) instant(i geofilter.Instant) string {
	switch {
	case i.IsMin():
		return c.b.Arg(minDateSQL)
	case i.IsMax():
		return c.b.Arg(maxDateSQL)
	default:
		return c.b.Arg(i.String())
	}
}

func (c *compiler) collateSuffix(s geofilter.QString) string {
	switch {
	case s.IgnoresCase() && s.IgnoresAccents():
		return " COLLATE " + c.d.CollateCAI
	case s.IgnoresCase():
		return " COLLATE " + c.d.CollateCI
	case s.IgnoresAccents():
		return " COLLATE " + c.d.CollateAI
	default:
		return ""
	}
}

func (c *compiler) call(x query.Call) (string, error) {
	switch x.Name {
	case geofilter.FnAnd, geofilter.FnOr:
		return c.connective(x)
	case geofilter.FnNot:
		op, err := c.operand(x.Args[0])
		if err != nil {
			return "", err
		}
		return "NOT " + op, nil
	case geofilter.FnIsNull:
		op, err := c.operand(x.Args[0])
		if err != nil {
			return "", err
		}
		return op + " IS NULL", nil
	case geofilter.FnCaseI, geofilter.FnAccentI:
		return c.collation(x)
	case geofilter.FnNeg:
		op, err := c.operand(x.Args[0])
		if err != nil {
			return "", err
		}
		return "- " + op, nil
	case geofilter.FnLike:
		return c.infix(x, "LIKE")
	case geofilter.FnBetween:
		return c.between(x)
	case geofilter.FnIn:
		return c.in(x)
	case geofilter.FnIntDiv:
		return c.intDiv(x)
	case geofilter.FnPow:
		return c.pow(x)
	}

	if op, ok := comparisonSQL[x.Name]; ok {
		return c.infix(x, op)
	}
	if op, ok := arithmeticSQL[x.Name]; ok {
		return c.infix(x, op)
	}
	if fn, ok := spatialSQL[x.Name]; ok {
		return c.spatial(x, fn)
	}
	if op, ok := arraySQL[x.Name]; ok {
		return c.array(x, op)
	}
	if _, ok := temporalRelations[x.Name]; ok {
		return c.temporal(x)
	}
	return c.function(x)
}

func (c *compiler) connective(x query.Call) (string, error) {
	word := " AND "
	if x.Name == geofilter.FnOr {
		word = " OR "
	}
	parts := make([]string, len(x.Args))
	for i, a := range x.Args {
		s, err := c.operand(a)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, word), nil
}

// collation lowers CASEI/ACCENTI to a COLLATE suffix; the direct
// composition of the two maps onto the combined collation.
func (c *compiler) collation(x query.Call) (string, error) {
	arg := x.Args[0]
	collate := c.d.CollateCI
	if x.Name == geofilter.FnAccentI {
		collate = c.d.CollateAI
	}
	if inner, ok := arg.(query.Call); ok &&
		(inner.Name == geofilter.FnCaseI || inner.Name == geofilter.FnAccentI) &&
		inner.Name != x.Name {
		arg = inner.Args[0]
		collate = c.d.CollateCAI
	}
	op, err := c.operand(arg)
	if err != nil {
		return "", err
	}
	return op + " COLLATE " + collate, nil
}

func (c *compiler) infix(x query.Call, op string) (string, error) {
	l, err := c.operand(x.Args[0])
	if err != nil {
		return "", err
	}
	r, err := c.operand(x.Args[1])
	if err != nil {
		return "", err
	}
	return l + " " + op + " " + r, nil
}

// in lowers the membership predicate. The right-hand list already carries
// its own parentheses; wrapping it again would read as a row value.
func (c *compiler) in(x query.Call) (string, error) {
	l, err := c.operand(x.Args[0])
	if err != nil {
		return "", err
	}
	var r string
	if arr, ok := x.Args[1].(query.Array); ok {
		r, err = c.list(arr.Elems, "(", ")")
	} else {
		r, err = c.expr(x.Args[1])
	}
	if err != nil {
		return "", err
	}
	return l + " IN " + r, nil
}

func (c *compiler) between(x query.Call) (string, error) {
	v, err := c.operand(x.Args[0])
	if err != nil {
		return "", err
	}
	lo, err := c.operand(x.Args[1])
	if err != nil {
		return "", err
	}
	hi, err := c.operand(x.Args[2])
	if err != nil {
		return "", err
	}
	return v + " BETWEEN " + lo + " AND " + hi, nil
}

func (c *compiler) intDiv(x query.Call) (string, error) {
	l, err := c.operand(x.Args[0])
	if err != nil {
		return "", err
	}
	r, err := c.operand(x.Args[1])
	if err != nil {
		return "", err
	}
	if c.d.Name == "postgis" {
		return "div(" + l + ", " + r + ")", nil
	}
	return "CAST(" + l + " / " + r + " AS INTEGER)", nil
}

func (c *compiler) pow(x query.Call) (string, error) {
	l, err := c.operand(x.Args[0])
	if err != nil {
		return "", err
	}
	r, err := c.operand(x.Args[1])
	if err != nil {
		return "", err
	}
	if c.d.Name == "postgis" {
		return l + " ^ " + r, nil
	}
	return "pow(" + l + ", " + r + ")", nil
}

func (c *compiler) spatial(x query.Call, fn string) (string, error) {
	snap := c.d.ReducePrecisionSpatial && snappedSpatial[x.Name]
	side := func(e query.Expr) (string, error) {
		s, err := c.expr(e)
		if err != nil {
			return "", err
		}
		if _, isProp := e.(query.Property); snap && isProp {
			s = fmt.Sprintf("ST_ReducePrecision(%s, 1E-%d)", s, c.d.Precision)
		}
		return s, nil
	}
	l, err := side(x.Args[0])
	if err != nil {
		return "", err
	}
	r, err := side(x.Args[1])
	if err != nil {
		return "", err
	}
	return fn + "(" + l + ", " + r + ")", nil
}

func (c *compiler) array(x query.Call, op string) (string, error) {
	if !c.d.ArrayOps {
		return "", geofilter.UnsupportedFunctionError(x.Name, c.d.Name)
	}
	side := func(e query.Expr) (string, error) {
		if arr, ok := e.(query.Array); ok {
			return c.list(arr.Elems, "ARRAY[", "]")
		}
		if lit, ok := e.(query.Literal); ok && lit.Val.IsList() {
			vs, _ := lit.Val.AsList()
			parts := make([]string, len(vs))
			for i, el := range vs {
				s, err := c.literal(el)
				if err != nil {
					return "", err
				}
				parts[i] = s
			}
			return "ARRAY[" + strings.Join(parts, ", ") + "]", nil
		}
		return c.operand(e)
	}
	l, err := side(x.Args[0])
	if err != nil {
		return "", err
	}
	r, err := side(x.Args[1])
	if err != nil {
		return "", err
	}
	return l + " " + op + " " + r, nil
}

func (c *compiler) function(x query.Call) (string, error) {
	switch x.Name {
	case "starts_with":
		return c.startsWith(x)
	case "ends_with":
		return c.endsWith(x)
	case "now":
		if c.d.Name == "postgis" {
			return "now()", nil
		}
		return "datetime('now')", nil
	case "today":
		if c.d.Name == "postgis" {
			return "current_date", nil
		}
		return "date('now')", nil
	}
	fn, ok := c.d.Funcs[x.Name]
	if !ok {
		return "", geofilter.UnsupportedFunctionError(x.Name, c.d.Name)
	}
	args, err := c.list(x.Args, "(", ")")
	if err != nil {
		return "", err
	}
	return fn + args, nil
}

func (c *compiler) startsWith(x query.Call) (string, error) {
	l, err := c.operand(x.Args[0])
	if err != nil {
		return "", err
	}
	r, err := c.operand(x.Args[1])
	if err != nil {
		return "", err
	}
	if c.d.Name == "postgis" {
		return "starts_with(" + l + ", " + r + ")", nil
	}
	return l + " LIKE " + r + " || '%'", nil
}

// endsWith avoids LIKE on PostgreSQL, where a suffix pattern defeats any
// index; right() against the argument length compares exactly.
func (c *compiler) endsWith(x query.Call) (string, error) {
	l, err := c.operand(x.Args[0])
	if err != nil {
		return "", err
	}
	if c.d.Name == "postgis" {
		r1, err := c.operand(x.Args[1])
		if err != nil {
			return "", err
		}
		r2, err := c.operand(x.Args[1])
		if err != nil {
			return "", err
		}
		return "right(" + l + ", length(" + r1 + ")) = " + r2, nil
	}
	r, err := c.operand(x.Args[1])
	if err != nil {
		return "", err
	}
	return l + " LIKE '%' || " + r, nil
}
