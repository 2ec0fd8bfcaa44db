// Package csvfile exposes a CSV file as an iterable data source. CSV rows
// carry no engine-side filtering, so callers pair this source with an
// in-process Evaluator.
package csvfile

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/geo"
	"github.com/geofilter/geofilter/geofilter/storage"
)

// Option adjusts how rows map to resources.
type Option func(*Source)

// WithGeometryColumn names a column holding WKT geometry.
func WithGeometryColumn(name string) Option {
	return func(s *Source) { s.geomCol = name }
}

// WithPrecision sets the coordinate rounding applied to parsed geometry.
func WithPrecision(p int) Option {
	return func(s *Source) { s.precision = p }
}

// Source reads features from a CSV file with a header row. Column values
// are typed by shape: numbers, booleans, timestamps and dates are
// recognized, everything else stays a string. Empty cells become NULL.
type Source struct {
	path      string
	geomCol   string
	precision int
}

func New(path string, opts ...Option) *Source {
	s := &Source{path: path, precision: geofilter.DefaultPrecision}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Source) Backend() storage.Backend { return storage.BackendCSV }

func (s *Source) Layer() string { return s.path }

// SRID is undefined for CSV sources; WKT columns carry no reference system.
func (s *Source) SRID() geofilter.SRID { return geofilter.SRIDUndefinedGeographic }

func (s *Source) Close() error { return nil }

func (s *Source) Iterate(ctx context.Context, fn func(geofilter.Resource) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return geofilter.Wrap(geofilter.ErrIO, "opening CSV source", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	header, err := r.Read()
	if err != nil {
		return geofilter.Wrap(geofilter.ErrIO, "reading CSV header", err)
	}
	cols := append([]string(nil), header...)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return geofilter.Wrap(geofilter.ErrIO, "reading CSV record", err)
		}
		res := make(geofilter.Resource, len(cols))
		for i, name := range cols {
			if i >= len(rec) {
				break
			}
			v, err := s.cell(name, rec[i])
			if err != nil {
				return err
			}
			res[name] = v
		}
		if err := fn(res); err != nil {
			return err
		}
	}
}

func (s *Source) cell(col, raw string) (geofilter.Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return geofilter.Null(), nil
	}
	if col == s.geomCol {
		g, err := geo.ParseWKT(raw, s.precision)
		if err != nil {
			return geofilter.Null(), err
		}
		return geofilter.Geom(g), nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return geofilter.Num(n), nil
	}
	switch strings.ToLower(raw) {
	case "true":
		return geofilter.Bool(true), nil
	case "false":
		return geofilter.Bool(false), nil
	}
	if inst, err := geofilter.ParseTimestamp(raw); err == nil {
		return geofilter.InstantVal(inst), nil
	}
	if inst, err := geofilter.ParseDate(raw); err == nil {
		return geofilter.InstantVal(inst), nil
	}
	return geofilter.Str(raw), nil
}
