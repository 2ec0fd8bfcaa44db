package query

import (
	"encoding/json"
	"strings"

	geomt "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/geo"
)

// jsonOps maps structured-encoding operator names onto operators. The
// structured form spells negation with an outer "not", so no negated
// variants appear here.
var jsonOps = map[string]Op{
	"and": OpAnd, "or": OpOr, "not": OpNot,
	"isNull": OpIsNull, "casei": OpCaseI, "accenti": OpAccentI,
	"=": OpEq, "<>": OpNeq, "<": OpLt, ">": OpGt, "<=": OpLte, ">=": OpGte,
	"like": OpLike, "between": OpBetween, "in": OpIn,
	"+": OpAdd, "*": OpMul, "/": OpDiv, "div": OpIntDiv,
	"%": OpMod, "^": OpPow,
	"s_intersects": OpSIntersects, "s_equals": OpSEquals,
	"s_disjoint": OpSDisjoint, "s_touches": OpSTouches,
	"s_within": OpSWithin, "s_overlaps": OpSOverlaps,
	"s_crosses": OpSCrosses, "s_contains": OpSContains,
	"t_after": OpTAfter, "t_before": OpTBefore, "t_contains": OpTContains,
	"t_disjoint": OpTDisjoint, "t_during": OpTDuring, "t_equals": OpTEquals,
	"t_finishedBy": OpTFinishedBy, "t_finishes": OpTFinishes,
	"t_intersects": OpTIntersects, "t_meets": OpTMeets, "t_metBy": OpTMetBy,
	"t_overlappedBy": OpTOverlappedBy, "t_overlaps": OpTOverlaps,
	"t_startedBy": OpTStartedBy, "t_starts": OpTStarts,
	"a_equals": OpAEquals, "a_contains": OpAContains,
	"a_containedBy": OpAContainedBy, "a_overlaps": OpAOverlaps,
}

// jsonOpsFolded resolves operator names case-insensitively; the camelCase
// temporal names are commonly seen all-lowercase in the wild.
var jsonOpsFolded = func() map[string]Op {
	m := make(map[string]Op, len(jsonOps))
	for k, v := range jsonOps {
		m[strings.ToLower(k)] = v
	}
	return m
}()

// ParseJSON parses a structured (JSON) encoded filter expression into the
// same expression tree the text parser produces.
func ParseJSON(data []byte) (Expr, error) {
	return ParseJSONWithPrecision(data, geofilter.DefaultPrecision)
}

// ParseJSONWithPrecision parses a structured filter, rounding geometry
// coordinates to the given number of decimal places.
func ParseJSONWithPrecision(data []byte, precision int) (Expr, error) {
	jp := &jsonParser{precision: precision}
	return jp.node(json.RawMessage(data))
}

type jsonParser struct {
	precision int
}

func jsonErr(msg string, found string) *ParseError {
	return &ParseError{Pos: -1, Found: found, Message: msg}
}

func (jp *jsonParser) node(raw json.RawMessage) (Expr, error) {
	var v any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, jsonErr("invalid JSON", compact(raw))
	}

	switch x := v.(type) {
	case bool:
		return Literal{Val: geofilter.Bool(x)}, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, jsonErr("invalid number", x.String())
		}
		return Literal{Val: geofilter.Num(f)}, nil
	case string:
		return Literal{Val: geofilter.Str(x)}, nil
	case nil:
		return Literal{Val: geofilter.Null()}, nil
	case []any:
		var elems []Expr
		var raws []json.RawMessage
		if err := json.Unmarshal(raw, &raws); err != nil {
			return nil, jsonErr("invalid array", compact(raw))
		}
		for _, r := range raws {
			e, err := jp.node(r)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return Array{Elems: elems}, nil
	case map[string]any:
		return jp.object(raw, x)
	}
	return nil, jsonErr("unsupported JSON value", compact(raw))
}

func (jp *jsonParser) object(raw json.RawMessage, m map[string]any) (Expr, error) {
	if name, ok := m["property"].(string); ok {
		return Property{Name: name}, nil
	}
	if s, ok := m["timestamp"].(string); ok {
		inst, err := geofilter.ParseTimestamp(s)
		if err != nil {
			return nil, jsonErr("invalid timestamp", s)
		}
		return Literal{Val: geofilter.InstantVal(inst)}, nil
	}
	if s, ok := m["date"].(string); ok {
		inst, err := geofilter.ParseDate(s)
		if err != nil {
			return nil, jsonErr("invalid date", s)
		}
		return Literal{Val: geofilter.InstantVal(inst)}, nil
	}
	if _, ok := m["interval"]; ok {
		return jp.interval(m)
	}
	if _, ok := m["bbox"]; ok {
		return jp.bbox(m)
	}
	if t, ok := m["type"].(string); ok && t != "" && m["op"] == nil {
		return jp.geometry(raw)
	}
	if _, ok := m["op"].(string); ok {
		return jp.operation(raw)
	}
	return nil, jsonErr("unrecognized object", compact(raw))
}

func (jp *jsonParser) operation(raw json.RawMessage) (Expr, error) {
	var env struct {
		Op   string            `json:"op"`
		Args []json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, jsonErr("invalid operation", compact(raw))
	}
	args := make([]Expr, len(env.Args))
	for i, r := range env.Args {
		a, err := jp.node(r)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}

	// "-" is subtraction with two arguments, negation with one
	if env.Op == "-" {
		switch len(args) {
		case 1:
			return Unary{Op: OpNeg, X: args[0]}, nil
		case 2:
			return Binary{Op: OpSub, L: args[0], R: args[1]}, nil
		}
		return nil, jsonErr(`"-" takes one or two arguments`, compact(raw))
	}

	op, ok := jsonOpsFolded[strings.ToLower(env.Op)]
	if !ok {
		// not an operator: a function call
		return Call{Name: env.Op, Args: args}, nil
	}

	switch {
	case op == OpNot || op == OpIsNull || op == OpCaseI || op == OpAccentI:
		if len(args) != 1 {
			return nil, jsonErr(env.Op+" takes one argument", compact(raw))
		}
		return Unary{Op: op, X: args[0]}, nil

	case op == OpAnd || op == OpOr:
		if len(args) < 2 {
			return nil, jsonErr(env.Op+" takes at least two arguments", compact(raw))
		}
		// n-ary connectives fold left
		l := args[0]
		for _, r := range args[1:] {
			l = Binary{Op: op, L: l, R: r}
		}
		return l, nil

	case op == OpBetween:
		if len(args) != 3 {
			return nil, jsonErr("between takes three arguments", compact(raw))
		}
		return Binary{Op: op, L: args[0], R: Array{Elems: args[1:3]}}, nil

	case op == OpIn:
		if len(args) != 2 {
			return nil, jsonErr("in takes two arguments", compact(raw))
		}
		arr, ok := args[1].(Array)
		if !ok {
			return nil, jsonErr("in requires an array of candidates", compact(raw))
		}
		return Binary{Op: op, L: args[0], R: arr}, nil

	default:
		if len(args) != 2 {
			return nil, jsonErr(env.Op+" takes two arguments", compact(raw))
		}
		return Binary{Op: op, L: args[0], R: args[1]}, nil
	}
}

func (jp *jsonParser) interval(m map[string]any) (Expr, error) {
	bounds, ok := m["interval"].([]any)
	if !ok || len(bounds) != 2 {
		return nil, jsonErr("interval requires two bounds", "")
	}
	lo, err := jp.intervalBound(bounds[0], geofilter.MinInstant)
	if err != nil {
		return nil, err
	}
	hi, err := jp.intervalBound(bounds[1], geofilter.MaxInstant)
	if err != nil {
		return nil, err
	}
	return Interval{Lo: lo, Hi: hi}, nil
}

func (jp *jsonParser) intervalBound(b any, open geofilter.Instant) (Expr, error) {
	switch x := b.(type) {
	case string:
		if x == ".." {
			return Literal{Val: geofilter.InstantVal(open)}, nil
		}
		inst, err := geofilter.ParseTimestamp(x)
		if err != nil {
			inst, err = geofilter.ParseDate(x)
		}
		if err != nil {
			return nil, jsonErr("invalid interval bound", x)
		}
		return Literal{Val: geofilter.InstantVal(inst)}, nil
	case map[string]any:
		if name, ok := x["property"].(string); ok {
			return Property{Name: name}, nil
		}
	}
	return nil, jsonErr("invalid interval bound", "")
}

func (jp *jsonParser) bbox(m map[string]any) (Expr, error) {
	vals, ok := m["bbox"].([]any)
	if !ok {
		return nil, jsonErr("invalid bbox", "")
	}
	coords := make([]float64, 0, len(vals))
	for _, v := range vals {
		switch n := v.(type) {
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil, jsonErr("invalid bbox coordinate", n.String())
			}
			coords = append(coords, f)
		case float64:
			coords = append(coords, n)
		default:
			return nil, jsonErr("invalid bbox coordinate", "")
		}
	}
	var g geo.Geometry
	switch len(coords) {
	case 4:
		g = geo.FromBBox(coords[0], coords[1], coords[2], coords[3])
	case 6:
		g = geo.FromBBox(coords[0], coords[1], coords[3], coords[4])
	default:
		return nil, jsonErr("bbox takes 4 or 6 coordinates", "")
	}
	return Literal{Val: geofilter.Geom(g.Round(jp.precision))}, nil
}

// geometry decodes a GeoJSON geometry and re-reads it as WKT so the same
// rounding applies to both encodings.
func (jp *jsonParser) geometry(raw json.RawMessage) (Expr, error) {
	var t geomt.T
	if err := geojson.Unmarshal(raw, &t); err != nil {
		return nil, jsonErr("invalid GeoJSON geometry", compact(raw))
	}
	s, err := wkt.Marshal(t)
	if err != nil {
		return nil, jsonErr("invalid GeoJSON geometry", compact(raw))
	}
	g, err := geo.ParseWKT(s, jp.precision)
	if err != nil {
		return nil, jsonErr("invalid GeoJSON geometry", compact(raw))
	}
	return Literal{Val: geofilter.Geom(g)}, nil
}

func compact(raw json.RawMessage) string {
	s := string(raw)
	if len(s) > 60 {
		s = s[:60] + "..."
	}
	return s
}
