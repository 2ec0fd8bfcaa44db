package geo

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"
)

// The spatial relationship predicates are answered by asking the geometry
// library for the DE-9IM intersection matrix and matching it against the
// standard patterns. Matrix cells are indexed interior/boundary/exterior of
// the first geometry against the second, row-major.
const (
	imII = 0
	imIB = 1
	imIE = 2
	imBI = 3
	imBB = 4
	imBE = 5
	imEI = 6
	imEB = 7
)

func (g Geometry) relate(o Geometry) (string, error) {
	m, err := geom.Relate(g.g, o.g)
	if err != nil {
		return "", fmt.Errorf("relate: %w", err)
	}
	if len(m) != 9 {
		return "", fmt.Errorf("relate: unexpected matrix %q", m)
	}
	return m, nil
}

func hit(m string, cell int) bool { return m[cell] != 'F' }

func (g Geometry) Intersects(o Geometry) (bool, error) {
	d, err := g.Disjoint(o)
	return !d, err
}

func (g Geometry) Disjoint(o Geometry) (bool, error) {
	m, err := g.relate(o)
	if err != nil {
		return false, err
	}
	return !hit(m, imII) && !hit(m, imIB) && !hit(m, imBI) && !hit(m, imBB), nil
}

// Equals is topological equality (T*F**FFF*), not coordinate-list equality.
func (g Geometry) Equals(o Geometry) (bool, error) {
	m, err := g.relate(o)
	if err != nil {
		return false, err
	}
	return hit(m, imII) && !hit(m, imIE) && !hit(m, imBE) && !hit(m, imEI) && !hit(m, imEB), nil
}

func (g Geometry) Within(o Geometry) (bool, error) {
	m, err := g.relate(o)
	if err != nil {
		return false, err
	}
	return hit(m, imII) && !hit(m, imIE) && !hit(m, imBE), nil
}

func (g Geometry) Contains(o Geometry) (bool, error) {
	return o.Within(g)
}

func (g Geometry) Touches(o Geometry) (bool, error) {
	m, err := g.relate(o)
	if err != nil {
		return false, err
	}
	return !hit(m, imII) && (hit(m, imIB) || hit(m, imBI) || hit(m, imBB)), nil
}

func (g Geometry) Crosses(o Geometry) (bool, error) {
	m, err := g.relate(o)
	if err != nil {
		return false, err
	}
	da, db := g.g.Dimension(), o.g.Dimension()
	switch {
	case da < db:
		return hit(m, imII) && hit(m, imIE), nil
	case da > db:
		return hit(m, imII) && hit(m, imEI), nil
	case da == 1 && db == 1:
		return m[imII] == '0', nil
	default:
		return false, nil
	}
}

func (g Geometry) Overlaps(o Geometry) (bool, error) {
	m, err := g.relate(o)
	if err != nil {
		return false, err
	}
	da, db := g.g.Dimension(), o.g.Dimension()
	if da != db {
		return false, nil
	}
	if da == 1 {
		return m[imII] == '1' && hit(m, imIE) && hit(m, imEI), nil
	}
	return hit(m, imII) && hit(m, imIE) && hit(m, imEI), nil
}
