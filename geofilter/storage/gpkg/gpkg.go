// Package gpkg exposes one layer of a GeoPackage file as a streamable data
// source. Filters are lowered to SQLite WHERE clauses; geometry columns
// are decoded from the GeoPackage binary blob format.
package gpkg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/geo"
	"github.com/geofilter/geofilter/geofilter/planner"
	"github.com/geofilter/geofilter/geofilter/query"
	"github.com/geofilter/geofilter/geofilter/storage"
	"github.com/geofilter/geofilter/geofilter/storage/sqlbuilder"
)

const (
	findContents = `SELECT data_type, srs_id FROM gpkg_contents WHERE table_name = ?`
	findGeomCol  = `SELECT column_name FROM gpkg_geometry_columns WHERE table_name = ?`
	findSRS      = `SELECT organization, organization_coordsys_id FROM gpkg_spatial_ref_sys WHERE srs_id = ?`
)

type Source struct {
	Path       string
	LayerName  string
	DriverName string

	db        *sql.DB
	geomCol   string
	srid      geofilter.SRID
	precision int
}

// New opens a source over the pure-Go SQLite driver.
func New(path, layer string) *Source {
	return NewWithDriver(path, layer, "sqlite")
}

// NewWithDriver selects an alternative registered SQLite driver, such as
// "sqlite3" for the cgo one.
func NewWithDriver(path, layer, driver string) *Source {
	return &Source{
		Path:       path,
		LayerName:  layer,
		DriverName: driver,
		precision:  geofilter.DefaultPrecision,
	}
}

func (s *Source) Backend() storage.Backend { return storage.BackendGeoPackage }

func (s *Source) Layer() string { return s.LayerName }

func (s *Source) SRID() geofilter.SRID { return s.srid }

// SetPrecision overrides the coordinate precision used when lowering
// geometry literals into SQL.
func (s *Source) SetPrecision(p int) { s.precision = p }

// Open connects and resolves the layer through the GeoPackage catalog
// tables: its geometry column and its spatial reference system, which must
// be EPSG-registered or one of the undefined codes.
func (s *Source) Open(ctx context.Context) error {
	db, err := sql.Open(s.DriverName, s.Path)
	if err != nil {
		return geofilter.Wrap(geofilter.ErrIO, "opening GeoPackage", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return geofilter.Wrap(geofilter.ErrIO, "opening GeoPackage", err)
	}

	var dataType string
	var srsID int32
	if err := db.QueryRowContext(ctx, findContents, s.LayerName).Scan(&dataType, &srsID); err != nil {
		_ = db.Close()
		return geofilter.Wrap(geofilter.ErrIO,
			fmt.Sprintf("layer %q not found in gpkg_contents", s.LayerName), err)
	}
	if dataType != "features" {
		_ = db.Close()
		return geofilter.New(geofilter.ErrIO,
			fmt.Sprintf("layer %q holds %q, not features", s.LayerName, dataType))
	}
	if err := db.QueryRowContext(ctx, findGeomCol, s.LayerName).Scan(&s.geomCol); err != nil {
		_ = db.Close()
		return geofilter.Wrap(geofilter.ErrIO,
			fmt.Sprintf("layer %q not found in gpkg_geometry_columns", s.LayerName), err)
	}

	srid, err := s.resolveSRS(ctx, db, srsID)
	if err != nil {
		_ = db.Close()
		return err
	}
	s.srid = srid
	s.db = db
	return nil
}

func (s *Source) resolveSRS(ctx context.Context, db *sql.DB, srsID int32) (geofilter.SRID, error) {
	if srsID == -1 || srsID == 0 {
		return geofilter.SRID(srsID), nil
	}
	var org string
	var code int32
	if err := db.QueryRowContext(ctx, findSRS, srsID).Scan(&org, &code); err != nil {
		return 0, geofilter.Wrap(geofilter.ErrCRS,
			fmt.Sprintf("srs_id %d not found in gpkg_spatial_ref_sys", srsID), err)
	}
	if org != "EPSG" && org != "epsg" {
		return 0, geofilter.New(geofilter.ErrCRS,
			fmt.Sprintf("unexpected %q authority for srs_id %d", org, srsID))
	}
	return geofilter.ParseSRID(code)
}

func (s *Source) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// WhereSQL lowers an expression to the WHERE clause this source would run.
func (s *Source) WhereSQL(e query.Expr) (string, []any, error) {
	return planner.Compile(e, planner.GeoPackage(s.precision))
}

func (s *Source) FetchWhere(ctx context.Context, e query.Expr) ([]geofilter.Resource, error) {
	stream, err := s.StreamWhere(ctx, e)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	var out []geofilter.Resource
	for stream.Next() {
		out = append(out, stream.Resource())
	}
	return out, stream.Err()
}

func (s *Source) StreamWhere(ctx context.Context, e query.Expr) (storage.ResourceStream, error) {
	if s.db == nil {
		return nil, geofilter.New(geofilter.ErrSetup, "source is not open")
	}
	where, args, err := s.WhereSQL(e)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf(`SELECT * FROM %s WHERE %s`,
		sqlbuilder.QuoteIdent(s.LayerName), where)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, geofilter.Wrap(geofilter.ErrSQL, "querying GeoPackage layer", err)
	}
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, geofilter.Wrap(geofilter.ErrSQL, "reading result columns", err)
	}
	return &stream{rows: rows, cols: cols, geomCol: s.geomCol, srid: s.srid}, nil
}

type stream struct {
	rows    *sql.Rows
	cols    []string
	geomCol string
	srid    geofilter.SRID
	cur     geofilter.Resource
	err     error
}

func (st *stream) Next() bool {
	if st.err != nil || !st.rows.Next() {
		return false
	}
	raw := make([]any, len(st.cols))
	ptrs := make([]any, len(st.cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := st.rows.Scan(ptrs...); err != nil {
		st.err = geofilter.Wrap(geofilter.ErrSQL, "scanning row", err)
		return false
	}
	res := make(geofilter.Resource, len(st.cols))
	for i, name := range st.cols {
		if name == st.geomCol {
			v, err := decodeGeometry(raw[i], st.srid)
			if err != nil {
				st.err = err
				return false
			}
			res[name] = v
			continue
		}
		res[name] = storage.ScanValue(raw[i])
	}
	st.cur = res
	return true
}

func (st *stream) Resource() geofilter.Resource { return st.cur }

func (st *stream) Err() error {
	if st.err != nil {
		return st.err
	}
	return st.rows.Err()
}

func (st *stream) Close() error { return st.rows.Close() }

func decodeGeometry(raw any, srid geofilter.SRID) (geofilter.Value, error) {
	switch b := raw.(type) {
	case nil:
		return geofilter.Null(), nil
	case []byte:
		g, err := geo.ParseGeoPackage(b)
		if err != nil {
			return geofilter.Null(), err
		}
		if g.SRID() <= 0 && srid > 0 {
			g = g.WithSRID(int32(srid))
		}
		return geofilter.Geom(g), nil
	default:
		return geofilter.Null(), geofilter.New(geofilter.ErrIO,
			"geometry column does not hold a blob")
	}
}
