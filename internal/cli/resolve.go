package cli

import (
	"context"
	"strings"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/storage"
	"github.com/geofilter/geofilter/geofilter/storage/csvfile"
	"github.com/geofilter/geofilter/geofilter/storage/gpkg"
	"github.com/geofilter/geofilter/geofilter/storage/postgis"
	"github.com/geofilter/geofilter/internal/cliopt"
)

// ResolveSource maps the --source value to a concrete backend:
//
//   - *.csv: iterable CSV source, optionally with a WKT geometry column
//   - *.gpkg: GeoPackage layer (--layer required)
//   - postgres:// or postgresql:// DSN: PostGIS table (--layer required)
//
// gpkg and postgis sources are opened before returning.
func ResolveSource(ctx context.Context, g cliopt.GlobalOptions) (storage.DataSource, error) {
	switch {
	case g.Source == "":
		return nil, nil

	case strings.HasSuffix(g.Source, ".csv"):
		opts := []csvfile.Option{csvfile.WithPrecision(g.Precision)}
		if g.GeomColumn != "" {
			opts = append(opts, csvfile.WithGeometryColumn(g.GeomColumn))
		}
		return csvfile.New(g.Source, opts...), nil

	case strings.HasSuffix(g.Source, ".gpkg"):
		if g.Layer == "" {
			return nil, geofilter.New(geofilter.ErrConfig, "gpkg source requires --layer")
		}
		src := gpkg.New(g.Source, g.Layer)
		src.SetPrecision(g.Precision)
		if err := src.Open(ctx); err != nil {
			return nil, err
		}
		return src, nil

	case strings.HasPrefix(g.Source, "postgres://"), strings.HasPrefix(g.Source, "postgresql://"):
		if g.Layer == "" {
			return nil, geofilter.New(geofilter.ErrConfig, "postgres source requires --layer")
		}
		src := postgis.New(g.Source, g.Layer)
		src.SetPrecision(g.Precision)
		if err := src.Open(ctx); err != nil {
			return nil, err
		}
		return src, nil
	}
	return nil, geofilter.New(geofilter.ErrConfig,
		"source must be a .csv or .gpkg path, or a postgres:// DSN")
}
