package cliopt

import (
	"flag"

	"github.com/geofilter/geofilter/geofilter"
)

// GlobalOptions are parsed once at the CLI root and shared by the one-shot
// and REPL modes.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command code and per-concern helpers.
type GlobalOptions struct {
	CRS       string
	Precision int

	// Dialect additionally lowers each expression to SQL: gpkg|postgis.
	Dialect string

	// Resource is an inline JSON object expressions are evaluated against.
	Resource string

	// Source points at feature data to filter: a .csv or .gpkg path, or a
	// postgres:// DSN.
	Source string
	// Layer names the table/layer inside a gpkg or postgres source.
	Layer string
	// GeomColumn names the WKT geometry column of a CSV source.
	GeomColumn string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		CRS:       geofilter.DefaultCRS,
		Precision: geofilter.DefaultPrecision,
	}
}

func BindGlobalFlags(fs *flag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.CRS, "crs", g.CRS, "implicit coordinate reference system")
	fs.IntVar(&g.Precision, "precision", g.Precision, "coordinate decimal places")

	fs.StringVar(&g.Dialect, "dialect", g.Dialect, "also show SQL for a dialect: gpkg|postgis")
	fs.StringVar(&g.Resource, "resource", g.Resource, "JSON object to evaluate filters against")

	fs.StringVar(&g.Source, "source", g.Source, "feature source: .csv or .gpkg path, or postgres:// DSN")
	fs.StringVar(&g.Layer, "layer", g.Layer, "layer/table name inside a gpkg or postgres source")
	fs.StringVar(&g.GeomColumn, "geom-column", g.GeomColumn, "WKT geometry column of a CSV source")
}
