package geofilter

import (
	"math"
	"strings"
	"time"

	"github.com/geofilter/geofilter/geofilter/geo"
)

// The builtin function set: numeric, string, temporal and geometry helpers
// available to every expression without host registration. All of them run
// in-process; the SQL-lowerable subset additionally carries a per-dialect
// rule in the planner.
func registerBuiltins(c *Context) {
	num1 := func(name string, f func(float64) float64) {
		c.register(name, []DataType{TypeNum}, TypeNum, func(a []Value) (Value, error) {
			x, err := a[0].AsNum()
			if err != nil {
				return Null(), err
			}
			return Num(f(x)), nil
		})
	}
	num2 := func(name string, f func(a, b float64) float64) {
		c.register(name, []DataType{TypeNum, TypeNum}, TypeNum, func(a []Value) (Value, error) {
			x, err := a[0].AsNum()
			if err != nil {
				return Null(), err
			}
			y, err := a[1].AsNum()
			if err != nil {
				return Null(), err
			}
			return Num(f(x, y)), nil
		})
	}

	num1("abs", math.Abs)
	num1("acos", math.Acos)
	num1("asin", math.Asin)
	num1("atan", math.Atan)
	num1("cbrt", math.Cbrt)
	num1("ceil", math.Ceil)
	num1("cos", math.Cos)
	num1("floor", math.Floor)
	num1("ln", math.Log)
	num1("sin", math.Sin)
	num1("sqrt", math.Sqrt)
	num1("tan", math.Tan)
	num2("max", math.Max)
	num2("min", math.Min)
	num2("avg", func(a, b float64) float64 { return (a + b) / 2 })
	num2("sum", func(a, b float64) float64 { return a + b })

	c.register("trim", []DataType{TypeStr}, TypeStr, func(a []Value) (Value, error) {
		s, err := a[0].AsStr()
		if err != nil {
			return Null(), err
		}
		return Str(strings.TrimSpace(s.String())), nil
	})
	c.register("len", []DataType{TypeStr}, TypeNum, func(a []Value) (Value, error) {
		s, err := a[0].AsStr()
		if err != nil {
			return Null(), err
		}
		return Num(float64(len([]rune(s.String())))), nil
	})
	c.register("concat", []DataType{TypeStr, TypeStr}, TypeStr, func(a []Value) (Value, error) {
		x, err := a[0].AsStr()
		if err != nil {
			return Null(), err
		}
		y, err := a[1].AsStr()
		if err != nil {
			return Null(), err
		}
		return Str(x.String() + y.String()), nil
	})
	c.register("starts_with", []DataType{TypeStr, TypeStr}, TypeBool, func(a []Value) (Value, error) {
		x, err := a[0].AsStr()
		if err != nil {
			return Null(), err
		}
		y, err := a[1].AsStr()
		if err != nil {
			return Null(), err
		}
		return Bool(strings.HasPrefix(x.String(), y.String())), nil
	})
	c.register("ends_with", []DataType{TypeStr, TypeStr}, TypeBool, func(a []Value) (Value, error) {
		x, err := a[0].AsStr()
		if err != nil {
			return Null(), err
		}
		y, err := a[1].AsStr()
		if err != nil {
			return Null(), err
		}
		return Bool(strings.HasSuffix(x.String(), y.String())), nil
	})

	c.register("now", nil, TypeTimestamp, func([]Value) (Value, error) {
		return InstantVal(NewTimestamp(time.Now())), nil
	})
	c.register("today", nil, TypeDate, func([]Value) (Value, error) {
		return InstantVal(NewDate(time.Now())), nil
	})

	geom1 := func(name string, f func(Value) (Value, error)) {
		c.register(name, []DataType{TypeGeom}, TypeGeom, func(a []Value) (Value, error) {
			return f(a[0])
		})
	}
	geom1("boundary", func(v Value) (Value, error) {
		g, err := v.AsGeom()
		if err != nil {
			return Null(), err
		}
		return Geom(g.Boundary()), nil
	})
	geom1("envelope", func(v Value) (Value, error) {
		g, err := v.AsGeom()
		if err != nil {
			return Null(), err
		}
		return Geom(g.Envelope()), nil
	})
	geom1("centroid", func(v Value) (Value, error) {
		g, err := v.AsGeom()
		if err != nil {
			return Null(), err
		}
		return Geom(g.Centroid()), nil
	})
	geom1("convex_hull", func(v Value) (Value, error) {
		g, err := v.AsGeom()
		if err != nil {
			return Null(), err
		}
		return Geom(g.ConvexHull()), nil
	})
	c.register("buffer", []DataType{TypeGeom, TypeNum}, TypeGeom, func(a []Value) (Value, error) {
		g, err := a[0].AsGeom()
		if err != nil {
			return Null(), err
		}
		d, err := a[1].AsNum()
		if err != nil {
			return Null(), err
		}
		out, err := g.Buffer(d)
		if err != nil {
			return Null(), EvalError(err.Error())
		}
		return Geom(out), nil
	})
	c.register("get_x", []DataType{TypeGeom}, TypeNum, func(a []Value) (Value, error) {
		g, err := a[0].AsGeom()
		if err != nil {
			return Null(), err
		}
		x, err := g.X()
		if err != nil {
			return Null(), EvalError(err.Error())
		}
		return Num(x), nil
	})
	c.register("get_y", []DataType{TypeGeom}, TypeNum, func(a []Value) (Value, error) {
		g, err := a[0].AsGeom()
		if err != nil {
			return Null(), err
		}
		y, err := g.Y()
		if err != nil {
			return Null(), EvalError(err.Error())
		}
		return Num(y), nil
	})
	// get_z on a 2-D point is NULL by contract, not an error.
	c.register("get_z", []DataType{TypeGeom}, TypeNum, func(a []Value) (Value, error) {
		g, err := a[0].AsGeom()
		if err != nil {
			return Null(), err
		}
		z, ok, err := g.Z()
		if err != nil {
			return Null(), EvalError(err.Error())
		}
		if !ok {
			return Null(), nil
		}
		return Num(z), nil
	})
	c.register("wkt", []DataType{TypeGeom}, TypeStr, func(a []Value) (Value, error) {
		g, err := a[0].AsGeom()
		if err != nil {
			return Null(), err
		}
		return Str(g.WKT()), nil
	})
}

// CheckGeometry validates that every coordinate of g lies inside this
// system's extent of validity.
func (c CRS) CheckGeometry(g geo.Geometry) error {
	var err error
	g.EachXY(func(x, y float64) bool {
		err = c.CheckPoint(x, y)
		return err == nil
	})
	return err
}
