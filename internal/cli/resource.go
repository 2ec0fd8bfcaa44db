package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/geo"
)

// ParseResource maps a JSON object to a Resource. Strings are promoted to
// timestamps, dates or WKT geometry when they parse as one.
func ParseResource(raw string, precision int) (geofilter.Resource, error) {
	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid resource JSON: %w", err)
	}
	res := make(geofilter.Resource, len(m))
	for k, v := range m {
		res[k] = resourceValue(v, precision)
	}
	return res, nil
}

func resourceValue(v any, precision int) geofilter.Value {
	switch x := v.(type) {
	case nil:
		return geofilter.Null()
	case bool:
		return geofilter.Bool(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return geofilter.Null()
		}
		return geofilter.Num(f)
	case string:
		if inst, err := geofilter.ParseTimestamp(x); err == nil {
			return geofilter.InstantVal(inst)
		}
		if inst, err := geofilter.ParseDate(x); err == nil {
			return geofilter.InstantVal(inst)
		}
		if looksLikeWKT(x) {
			if g, err := geo.ParseWKT(x, precision); err == nil {
				return geofilter.Geom(g)
			}
		}
		return geofilter.Str(x)
	case []any:
		vs := make([]geofilter.Value, len(x))
		for i, el := range x {
			vs[i] = resourceValue(el, precision)
		}
		return geofilter.List(vs)
	default:
		return geofilter.Null()
	}
}

func looksLikeWKT(s string) bool {
	u := strings.ToUpper(strings.TrimSpace(s))
	for _, kw := range []string{
		"POINT", "LINESTRING", "POLYGON", "MULTIPOINT",
		"MULTILINESTRING", "MULTIPOLYGON", "GEOMETRYCOLLECTION",
	} {
		if strings.HasPrefix(u, kw) {
			return true
		}
	}
	return false
}
