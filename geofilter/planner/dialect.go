// Package planner lowers reduced filter expressions to parameterized SQL
// WHERE clauses for the supported storage engines.
package planner

import "github.com/geofilter/geofilter/geofilter/storage/sqlbuilder"

// minDateSQL substitutes for the unbounded low end of an interval. Although
// PostgreSQL documents 4713 BC as its floor, anything older than this value
// is rejected in practice; SQLite accepts it as well.
const minDateSQL = "-2021-01-01"

// maxDateSQL substitutes for the unbounded high end of an interval.
const maxDateSQL = "9999-12-31T23:59:59Z"

// Dialect describes how one storage engine spells the pieces of a WHERE
// clause that differ between engines. The lowering logic itself is shared.
type Dialect struct {
	Name        string
	Placeholder sqlbuilder.PlaceholderStyle

	// geometry literals are inlined as GeomFromText(wkt, srid)
	GeomFromText string

	// collations backing CASEI, ACCENTI and their composition
	CollateCI  string
	CollateAI  string
	CollateCAI string

	// spatial comparisons against table columns disagree with the
	// in-process predicates on some engines unless coordinates are
	// snapped first
	ReducePrecisionSpatial bool
	Precision              int

	// native array operators (PostgreSQL); engines without them reject
	// the array predicates
	ArrayOps bool

	// function-name translations for the portable builtins; names absent
	// here and not lowered specially are unsupported on the engine
	Funcs map[string]string
}

// GeoPackage targets SQLite with SpatiaLite functions loaded, which is how
// GeoPackage layers are queried.
func GeoPackage(precision int) Dialect {
	return Dialect{
		Name:                   "gpkg",
		Placeholder:            sqlbuilder.PlaceholderQuestion,
		GeomFromText:           "ST_GeomFromText",
		CollateCI:              "CQL2_CI",
		CollateAI:              "CQL2_AI",
		CollateCAI:             "CQL2_CI_AI",
		ReducePrecisionSpatial: true,
		Precision:              precision,
		Funcs: map[string]string{
			"abs": "abs", "acos": "acos", "asin": "asin", "atan": "atan",
			"ceil": "ceiling", "cos": "cos", "floor": "floor", "ln": "ln",
			"sin": "sin", "sqrt": "sqrt", "tan": "tan",
			"max": "max", "min": "min",
			"trim": "trim", "len": "length", "concat": "concat",
			"boundary": "ST_Boundary", "envelope": "ST_Envelope",
			"centroid": "ST_Centroid", "convex_hull": "ST_ConvexHull",
			"buffer": "ST_Buffer", "get_x": "ST_X", "get_y": "ST_Y",
			"get_z": "ST_Z", "wkt": "ST_AsText",
		},
	}
}

// PostGIS targets PostgreSQL with the PostGIS extension.
func PostGIS(precision int) Dialect {
	return Dialect{
		Name:         "postgis",
		Placeholder:  sqlbuilder.PlaceholderDollar,
		GeomFromText: "ST_GeomFromText",
		CollateCI:    "cql2_ci",
		CollateAI:    "cql2_ai",
		CollateCAI:   "cql2_ci_ai",
		Precision:    precision,
		ArrayOps:     true,
		Funcs: map[string]string{
			"abs": "abs", "acos": "acos", "asin": "asin", "atan": "atan",
			"cbrt": "cbrt", "ceil": "ceil", "cos": "cos", "floor": "floor",
			"ln": "ln", "sin": "sin", "sqrt": "sqrt", "tan": "tan",
			"trim": "trim", "len": "length", "concat": "concat",
			"boundary": "ST_Boundary", "envelope": "ST_Envelope",
			"centroid": "ST_Centroid", "convex_hull": "ST_ConvexHull",
			"buffer": "ST_Buffer", "get_x": "ST_X", "get_y": "ST_Y",
			"get_z": "ST_Z", "wkt": "ST_AsText",
		},
	}
}
