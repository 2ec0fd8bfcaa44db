// Package postgis exposes a PostGIS table as a streamable data source.
// Filters are lowered to PostgreSQL WHERE clauses; the geometry column is
// fetched as WKB.
package postgis

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/geo"
	"github.com/geofilter/geofilter/geofilter/planner"
	"github.com/geofilter/geofilter/geofilter/query"
	"github.com/geofilter/geofilter/geofilter/storage"
	"github.com/geofilter/geofilter/geofilter/storage/sqlbuilder"
)

const findGeometryColumn = `SELECT f_geometry_column, srid
FROM geometry_columns WHERE f_table_name = $1`

type Source struct {
	DSN   string
	Table string

	db        *sql.DB
	geomCol   string
	srid      geofilter.SRID
	precision int
}

func New(dsn, table string) *Source {
	return &Source{DSN: dsn, Table: table, precision: geofilter.DefaultPrecision}
}

func (s *Source) Backend() storage.Backend { return storage.BackendPostGIS }

func (s *Source) Layer() string { return s.Table }

func (s *Source) SRID() geofilter.SRID { return s.srid }

// SetPrecision overrides the coordinate precision used when lowering
// geometry literals into SQL.
func (s *Source) SetPrecision(p int) { s.precision = p }

// Open connects and resolves the table's geometry column and SRID through
// the PostGIS geometry_columns view.
func (s *Source) Open(ctx context.Context) error {
	cfg, err := pgx.ParseConfig(s.DSN)
	if err != nil {
		return geofilter.Wrap(geofilter.ErrConfig, "parsing PostGIS DSN", err)
	}
	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return geofilter.Wrap(geofilter.ErrIO, "connecting to PostGIS", err)
	}

	var srid int32
	if err := db.QueryRowContext(ctx, findGeometryColumn, s.Table).Scan(&s.geomCol, &srid); err != nil {
		_ = db.Close()
		return geofilter.Wrap(geofilter.ErrIO,
			fmt.Sprintf("table %q not found in geometry_columns", s.Table), err)
	}
	parsed, err := geofilter.ParseSRID(srid)
	if err != nil {
		_ = db.Close()
		return err
	}
	s.srid = parsed
	s.db = db
	return nil
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
	return planner.Compile(e, planner.PostGIS(s.precision))
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
	table := sqlbuilder.QuoteIdent(s.Table)
	cols, err := s.columnList(ctx, table)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(cols, ", "), table, where)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, geofilter.Wrap(geofilter.ErrSQL, "querying PostGIS table", err)
	}
	names, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, geofilter.Wrap(geofilter.ErrSQL, "reading result columns", err)
	}
	return &stream{rows: rows, cols: names, geomCol: s.geomCol, srid: s.srid}, nil
}

// columnList selects every column, swapping the geometry column for its
// WKB rendering so the driver hands back plain bytes.
func (s *Source) columnList(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+table+" LIMIT 0")
	if err != nil {
		return nil, geofilter.Wrap(geofilter.ErrSQL, "describing table", err)
	}
	defer rows.Close()
	names, err := rows.Columns()
	if err != nil {
		return nil, geofilter.Wrap(geofilter.ErrSQL, "describing table", err)
	}
	out := make([]string, len(names))
	for i, n := range names {
		q := sqlbuilder.QuoteIdent(n)
		if n == s.geomCol {
			out[i] = "ST_AsBinary(" + q + ") AS " + q
		} else {
			out[i] = q
		}
	}
	return out, nil
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
		g, err := geo.ParseWKB(b, int32(srid))
		if err != nil {
			return geofilter.Null(), err
		}
		return geofilter.Geom(g), nil
	default:
		return geofilter.Null(), geofilter.New(geofilter.ErrIO,
			"geometry column does not hold WKB bytes")
	}
}
