package geofilter

import (
	"fmt"
	"strconv"
	"strings"
)

// extent is a CRS area-of-use expressed in degrees of longitude/latitude.
type extent struct {
	west, east   float64
	south, north float64
}

// Well-known codes and their published extents of validity. Full projection
// math belongs to an external transform capability; the core only needs the
// bounds to validate ingested coordinates.
var knownCRS = map[string]extent{
	"EPSG:4326":  {-180, 180, -90, 90},
	"OGC:CRS84":  {-180, 180, -90, 90},
	"EPSG:3857":  {-180, 180, -85.06, 85.06},
	"EPSG:4269":  {-172.54, -47.74, 23.81, 86.46},
	"EPSG:2154":  {-9.86, 10.38, 41.15, 51.56},
	"EPSG:27700": {-9.01, 2.01, 49.75, 61.01},
}

// CRS is a validated coordinate reference system code together with its
// extent of validity.
type CRS struct {
	code string
	eov  extent
}

// NewCRS validates a CRS code against the set of known systems. Codes with
// no known area of use are rejected.
func NewCRS(code string) (CRS, error) {
	eov, ok := knownCRS[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return CRS{}, &Error{Kind: ErrCRS, Message: fmt.Sprintf("unrecognized CRS code %q", code)}
	}
	return CRS{code: strings.ToUpper(strings.TrimSpace(code)), eov: eov}, nil
}

func (c CRS) Code() string { return c.code }

func (c CRS) String() string { return c.code }

// SRID returns the numeric EPSG identifier for this system, or false when
// the authority is not EPSG.
func (c CRS) SRID() (SRID, bool) {
	rest, ok := strings.CutPrefix(c.code, "EPSG:")
	if !ok {
		if c.code == "OGC:CRS84" {
			return SRID(4326), true
		}
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return SRID(n), true
}

// CheckPoint reports an error when the coordinate pair falls outside this
// system's extent of validity.
func (c CRS) CheckPoint(x, y float64) error {
	if x < c.eov.west || x > c.eov.east {
		return &Error{Kind: ErrCRS, Message: fmt.Sprintf("x coordinate %v outside %s extent of validity", x, c.code)}
	}
	if y < c.eov.south || y > c.eov.north {
		return &Error{Kind: ErrCRS, Message: fmt.Sprintf("y coordinate %v outside %s extent of validity", y, c.code)}
	}
	return nil
}

// SRID is a spatial reference identifier. The authority is implied to be
// EPSG; -1 and 0 are the GeoPackage codes for undefined cartesian and
// undefined geographic systems.
type SRID int32

const (
	SRIDUndefinedCartesian  SRID = -1
	SRIDUndefinedGeographic SRID = 0
	SRIDWGS84               SRID = 4326
)

// ParseSRID validates a raw identifier as read from a WKB blob or a
// database catalog.
func ParseSRID(v int32) (SRID, error) {
	switch {
	case v == -1 || v == 0:
		return SRID(v), nil
	case v > 0:
		return SRID(v), nil
	default:
		return 0, &Error{Kind: ErrCRS, Message: fmt.Sprintf("invalid SRID %d", v)}
	}
}

func (s SRID) String() string {
	switch s {
	case SRIDUndefinedCartesian:
		return "Undefined (cartesian)"
	case SRIDUndefinedGeographic:
		return "Undefined (geographic)"
	default:
		return fmt.Sprintf("EPSG:%d", int32(s))
	}
}

// CRS returns the validated reference system for this identifier when it
// names a known one.
func (s SRID) CRS() (CRS, error) {
	return NewCRS(fmt.Sprintf("EPSG:%d", int32(s)))
}
