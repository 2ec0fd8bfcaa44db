package geofilter

import (
	"fmt"
	"strings"

	"github.com/geofilter/geofilter/geofilter/geo"
)

// DataType is the closed set of operand kinds a function signature may
// declare for its arguments and result.
type DataType int

const (
	TypeUnknown DataType = iota
	TypeNum
	TypeStr
	TypeBool
	TypeTimestamp
	TypeDate
	TypeGeom
	// TypeAny is used only by the pre-seeded standard operator signatures,
	// which accept any scalar operand. User registrations must declare a
	// concrete kind for every argument.
	TypeAny
)

func (t DataType) String() string {
	switch t {
	case TypeNum:
		return "Num"
	case TypeStr:
		return "Str"
	case TypeBool:
		return "Bool"
	case TypeTimestamp:
		return "Timestamp"
	case TypeDate:
		return "Date"
	case TypeGeom:
		return "Geom"
	case TypeAny:
		return "Any"
	default:
		return "Unknown"
	}
}

type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindNum
	kindStr
	kindInstant
	kindInterval
	kindGeom
	kindList
)

// Value is a typed queryable value: the runtime currency of evaluation.
// The zero Value is NULL.
type Value struct {
	kind    valueKind
	boolean bool
	num     float64
	str     QString
	instant Instant
	hi      Instant
	geom    geo.Geometry
	list    []Value
}

func Null() Value                 { return Value{} }
func Bool(b bool) Value           { return Value{kind: kindBool, boolean: b} }
func Num(f float64) Value         { return Value{kind: kindNum, num: f} }
func Str(s string) Value          { return Value{kind: kindStr, str: PlainStr(s)} }
func QStr(q QString) Value        { return Value{kind: kindStr, str: q} }
func Geom(g geo.Geometry) Value   { return Value{kind: kindGeom, geom: g} }
func List(vs []Value) Value       { return Value{kind: kindList, list: vs} }
func InstantVal(i Instant) Value  { return Value{kind: kindInstant, instant: i} }
func Interval(lo, hi Instant) Value {
	return Value{kind: kindInterval, instant: lo, hi: hi}
}

func (v Value) IsNull() bool     { return v.kind == kindNull }
func (v Value) IsBool() bool     { return v.kind == kindBool }
func (v Value) IsNum() bool      { return v.kind == kindNum }
func (v Value) IsStr() bool      { return v.kind == kindStr }
func (v Value) IsInstant() bool  { return v.kind == kindInstant }
func (v Value) IsInterval() bool { return v.kind == kindInterval }
func (v Value) IsGeom() bool     { return v.kind == kindGeom }
func (v Value) IsList() bool     { return v.kind == kindList }

// Type maps a value onto its declared kind; instants report Timestamp or
// Date per their granularity. NULL, intervals and lists have no declared
// kind and report Unknown.
func (v Value) Type() DataType {
	switch v.kind {
	case kindBool:
		return TypeBool
	case kindNum:
		return TypeNum
	case kindStr:
		return TypeStr
	case kindInstant:
		if v.instant.Gran == GranDate {
			return TypeDate
		}
		return TypeTimestamp
	case kindGeom:
		return TypeGeom
	default:
		return TypeUnknown
	}
}

func (v Value) AsBool() (bool, error) {
	if v.kind != kindBool {
		return false, EvalError(fmt.Sprintf("expected a boolean, got %s", v))
	}
	return v.boolean, nil
}

func (v Value) AsNum() (float64, error) {
	if v.kind != kindNum {
		return 0, EvalError(fmt.Sprintf("expected a number, got %s", v))
	}
	return v.num, nil
}

func (v Value) AsStr() (QString, error) {
	if v.kind != kindStr {
		return QString{}, EvalError(fmt.Sprintf("expected a string, got %s", v))
	}
	return v.str, nil
}

func (v Value) AsGeom() (geo.Geometry, error) {
	if v.kind != kindGeom {
		return geo.Geometry{}, EvalError(fmt.Sprintf("expected a geometry, got %s", v))
	}
	return v.geom, nil
}

func (v Value) AsInstant() (Instant, error) {
	if v.kind != kindInstant {
		return Instant{}, EvalError(fmt.Sprintf("expected a date or timestamp, got %s", v))
	}
	return v.instant, nil
}

// AsInterval widens a bare instant into the degenerate interval [t, t] the
// way the temporal predicates expect.
func (v Value) AsInterval() (lo, hi Instant, err error) {
	switch v.kind {
	case kindInterval:
		return v.instant, v.hi, nil
	case kindInstant:
		return v.instant, v.instant, nil
	default:
		return Instant{}, Instant{}, EvalError(fmt.Sprintf("expected a temporal value, got %s", v))
	}
}

func (v Value) AsList() ([]Value, error) {
	if v.kind != kindList {
		return nil, EvalError(fmt.Sprintf("expected a list, got %s", v))
	}
	return v.list, nil
}

// SameType reports whether two values would satisfy the same declared kind.
// Dates and timestamps are the same for this purpose since they share a
// runtime representation and a total order.
func SameType(a, b Value) bool {
	if a.kind == kindInstant && b.kind == kindInstant {
		return true
	}
	return a.kind == b.kind
}

// Equal is deep equality for same-kind values.
func (v Value) Equal(o Value) bool {
	if !SameType(v, o) {
		return false
	}
	switch v.kind {
	case kindNull:
		return true
	case kindBool:
		return v.boolean == o.boolean
	case kindNum:
		return v.num == o.num
	case kindStr:
		return v.str.Equal(o.str)
	case kindInstant:
		return v.instant.Equal(o.instant)
	case kindInterval:
		return v.instant.Equal(o.instant) && v.hi.Equal(o.hi)
	case kindGeom:
		return v.geom.Equal(o.geom)
	case kindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two same-kind scalar values. Geometries, intervals and
// lists have no total order.
func (v Value) Compare(o Value) (int, error) {
	if !SameType(v, o) {
		return 0, EvalError(fmt.Sprintf("cannot compare %s with %s", v, o))
	}
	switch v.kind {
	case kindNum:
		switch {
		case v.num < o.num:
			return -1, nil
		case v.num > o.num:
			return 1, nil
		default:
			return 0, nil
		}
	case kindStr:
		return v.str.Compare(o.str), nil
	case kindBool:
		switch {
		case !v.boolean && o.boolean:
			return -1, nil
		case v.boolean && !o.boolean:
			return 1, nil
		default:
			return 0, nil
		}
	case kindInstant:
		return v.instant.Compare(o.instant), nil
	default:
		return 0, EvalError(fmt.Sprintf("values of kind %s have no order", v.Type()))
	}
}

// ContainedBy reports membership of a scalar in a list per IN semantics.
func (v Value) ContainedBy(list []Value) bool {
	for _, e := range list {
		if v.Equal(e) {
			return true
		}
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case kindNull:
		return "NULL"
	case kindBool:
		if v.boolean {
			return "TRUE"
		}
		return "FALSE"
	case kindNum:
		return fmt.Sprintf("%v", v.num)
	case kindStr:
		return "'" + v.str.String() + "'"
	case kindInstant:
		return v.instant.String()
	case kindInterval:
		return fmt.Sprintf("[%s .. %s]", v.instant, v.hi)
	case kindGeom:
		return v.geom.WKT()
	case kindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "?"
	}
}
