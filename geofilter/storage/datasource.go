// Package storage defines the boundary between filter evaluation and the
// places feature data lives, plus shared row-decoding helpers for the
// concrete backends.
package storage

import (
	"context"
	"time"

	"github.com/spf13/cast"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/query"
)

type Backend string

const (
	BackendCSV        Backend = "csv"
	BackendGeoPackage Backend = "gpkg"
	BackendPostGIS    Backend = "postgis"
)

// DataSource is a named collection of features with a known CRS.
type DataSource interface {
	Backend() Backend
	Layer() string
	SRID() geofilter.SRID
	Close() error
}

// Iterable is a data source that can only hand over its resources one at a
// time, leaving all filtering to an in-process Evaluator.
type Iterable interface {
	DataSource

	// Iterate calls fn for every resource; returning an error from fn
	// stops the iteration and surfaces that error.
	Iterate(ctx context.Context, fn func(geofilter.Resource) error) error
}

// Streamable is a data source backed by an engine that can evaluate
// filters itself: the expression is lowered to SQL and only matching rows
// cross the boundary.
type Streamable interface {
	DataSource

	// FetchWhere materializes every resource matching the expression.
	FetchWhere(ctx context.Context, e query.Expr) ([]geofilter.Resource, error)

	// StreamWhere returns matching resources incrementally.
	StreamWhere(ctx context.Context, e query.Expr) (ResourceStream, error)
}

// ResourceStream yields resources one at a time in database-cursor style.
type ResourceStream interface {
	Next() bool
	Resource() geofilter.Resource
	Err() error
	Close() error
}

// ScanValue coerces a raw database column value to a typed Value. Geometry
// columns are decoded by the backend before reaching this point.
func ScanValue(raw any) geofilter.Value {
	switch v := raw.(type) {
	case nil:
		return geofilter.Null()
	case bool:
		return geofilter.Bool(v)
	case int64:
		return geofilter.Num(float64(v))
	case float64:
		return geofilter.Num(v)
	case time.Time:
		return geofilter.InstantVal(geofilter.NewTimestamp(v))
	case []byte:
		return geofilter.Str(string(v))
	case string:
		return geofilter.Str(v)
	default:
		if f, err := cast.ToFloat64E(raw); err == nil {
			return geofilter.Num(f)
		}
		return geofilter.Str(cast.ToString(raw))
	}
}
