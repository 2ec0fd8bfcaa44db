// Package geo wraps the external geometry library behind the narrow
// capability surface the filter engine needs: WKT/WKB codecs honoring a
// configured coordinate precision, the spatial relationship predicates, and
// the handful of accessors exposed as builtin functions. No computational
// geometry is implemented here beyond interpreting DE-9IM matrices.
package geo

import (
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"
)

// Geometry is a spatial value carrying its source reference system
// identifier (0 when undefined/geographic per GeoPackage conventions).
type Geometry struct {
	g    geom.Geometry
	srid int32
}

// ParseWKT recognizes a WKT string and ingests its coordinates rounded
// (not truncated) to the given number of decimal digits.
func ParseWKT(wkt string, precision int) (Geometry, error) {
	g, err := geom.UnmarshalWKT(wkt)
	if err != nil {
		return Geometry{}, fmt.Errorf("invalid WKT: %w", err)
	}
	return Geometry{g: roundGeom(g, precision)}, nil
}

// ParseWKB decodes a well-known-binary blob.
func ParseWKB(b []byte, srid int32) (Geometry, error) {
	g, err := geom.UnmarshalWKB(b)
	if err != nil {
		return Geometry{}, fmt.Errorf("invalid WKB: %w", err)
	}
	return Geometry{g: g, srid: srid}, nil
}

// FromBBox expands a BBOX(west, south, east, north) literal into its
// equivalent polygon.
func FromBBox(w, s, e, n float64) Geometry {
	coords := []float64{w, s, e, s, e, n, w, n, w, s}
	ring := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	poly := geom.NewPolygon([]geom.LineString{ring})
	return Geometry{g: poly.AsGeometry()}
}

func roundGeom(g geom.Geometry, precision int) geom.Geometry {
	scale := math.Pow(10, float64(precision))
	out := g.TransformXY(func(xy geom.XY) geom.XY {
		return geom.XY{
			X: math.Round(xy.X*scale) / scale,
			Y: math.Round(xy.Y*scale) / scale,
		}
	})
	return out
}

func (g Geometry) SRID() int32 { return g.srid }

func (g Geometry) WithSRID(srid int32) Geometry {
	g.srid = srid
	return g
}

func (g Geometry) IsEmpty() bool { return g.g.IsEmpty() }

// WKT renders the geometry as ingested; coordinates were already rounded to
// the context precision at parse time.
func (g Geometry) WKT() string {
	return g.g.AsText()
}

// WKTWithPrecision renders the geometry with coordinates rounded to an
// explicit number of decimal digits, overriding the ingest precision.
func (g Geometry) WKTWithPrecision(precision int) string {
	return roundGeom(g.g, precision).AsText()
}

// WKB renders the geometry as well-known binary.
func (g Geometry) WKB() []byte {
	return g.g.AsBinary()
}

// Round returns a copy with coordinates rounded to the given digit count.
func (g Geometry) Round(precision int) Geometry {
	return Geometry{g: roundGeom(g.g, precision), srid: g.srid}
}

// Equal reports exact equality of the two geometries' rendered forms. Used
// for round-trip checks, not as the topological S_EQUALS predicate.
func (g Geometry) Equal(o Geometry) bool {
	return g.g.AsText() == o.g.AsText()
}

// EachXY visits every coordinate pair; the walk stops when fn returns false.
func (g Geometry) EachXY(fn func(x, y float64) bool) {
	seq := g.g.DumpCoordinates()
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		if !fn(xy.X, xy.Y) {
			return
		}
	}
}

func (g Geometry) Boundary() Geometry {
	return Geometry{g: g.g.Boundary(), srid: g.srid}
}

func (g Geometry) Centroid() Geometry {
	return Geometry{g: g.g.Centroid().AsGeometry(), srid: g.srid}
}

func (g Geometry) ConvexHull() Geometry {
	return Geometry{g: g.g.ConvexHull(), srid: g.srid}
}

func (g Geometry) Envelope() Geometry {
	return Geometry{g: g.g.Envelope().AsGeometry(), srid: g.srid}
}

// Buffer expands a point into a circular polygon approximated with 32
// segments. Buffering lines and polygons requires the full computational
// library and is handled by SQL backends, not in-process.
func (g Geometry) Buffer(dist float64) (Geometry, error) {
	pt, ok := g.g.AsPoint()
	if !ok {
		return Geometry{}, fmt.Errorf("buffer: only point geometries are buffered in-process")
	}
	xy, ok := pt.XY()
	if !ok {
		return Geometry{}, fmt.Errorf("buffer: empty point")
	}
	const segments = 32
	coords := make([]float64, 0, (segments+1)*2)
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		coords = append(coords, xy.X+dist*math.Cos(a), xy.Y+dist*math.Sin(a))
	}
	ring := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	poly := geom.NewPolygon([]geom.LineString{ring})
	return Geometry{g: poly.AsGeometry(), srid: g.srid}, nil
}

// X returns the x (longitude/easting) coordinate of a point.
func (g Geometry) X() (float64, error) {
	xy, err := g.pointXY()
	if err != nil {
		return 0, err
	}
	return xy.X, nil
}

// Y returns the y (latitude/northing) coordinate of a point.
func (g Geometry) Y() (float64, error) {
	xy, err := g.pointXY()
	if err != nil {
		return 0, err
	}
	return xy.Y, nil
}

// Z returns the z coordinate of a 3-D point. The second result is false
// when the point has no z dimension; that condition is indeterminate by
// contract, not an error.
func (g Geometry) Z() (float64, bool, error) {
	pt, ok := g.g.AsPoint()
	if !ok {
		return 0, false, fmt.Errorf("z coordinate of a non-point geometry")
	}
	c, ok := pt.Coordinates()
	if !ok {
		return 0, false, fmt.Errorf("z coordinate of an empty point")
	}
	if !c.Type.Is3D() {
		return 0, false, nil
	}
	return c.Z, true, nil
}

func (g Geometry) pointXY() (geom.XY, error) {
	pt, ok := g.g.AsPoint()
	if !ok {
		return geom.XY{}, fmt.Errorf("coordinate access on a non-point geometry")
	}
	xy, ok := pt.XY()
	if !ok {
		return geom.XY{}, fmt.Errorf("coordinate access on an empty point")
	}
	return xy, nil
}

func (g Geometry) String() string { return g.WKT() }
