package geo

import (
	"encoding/binary"
	"fmt"
)

// GeoPackage geometry BLOBs carry a header before the WKB payload:
// 2-byte "GP" magic, a version byte, a flags byte, an int32 srs_id, then an
// optional envelope of doubles. Flags: bit 0 is the byte order of srs_id
// and envelope (1 = little endian), bits 1-3 the envelope contents
// indicator, bit 4 the empty-geometry flag, bit 5 extended-format.
// See https://www.geopackage.org/spec140/index.html section 2.1.3.1.1.

// envelope double counts per contents-indicator code
var envelopeDoubles = [...]int{0, 4, 6, 6, 8}

// ParseGeoPackage decodes a GeoPackage geometry BLOB: header, SRID, then
// the WKB payload.
func ParseGeoPackage(b []byte) (Geometry, error) {
	if len(b) < 8 {
		return Geometry{}, fmt.Errorf("geopackage blob too short (%d bytes)", len(b))
	}
	if b[0] != 'G' || b[1] != 'P' {
		return Geometry{}, fmt.Errorf("geopackage blob does not start with GP magic")
	}
	if b[2] != 0 {
		return Geometry{}, fmt.Errorf("unsupported geopackage binary version %d", b[2])
	}
	flags := b[3]
	if flags&0x20 != 0 {
		return Geometry{}, fmt.Errorf("extended geopackage binary is not supported")
	}
	if flags&0x10 != 0 {
		return Geometry{}, fmt.Errorf("empty geometry flag set")
	}
	var order binary.ByteOrder = binary.BigEndian
	if flags&0x01 != 0 {
		order = binary.LittleEndian
	}
	eci := int(flags>>1) & 0x07
	if eci >= len(envelopeDoubles) {
		return Geometry{}, fmt.Errorf("invalid envelope contents indicator %d", eci)
	}
	srid := int32(order.Uint32(b[4:8]))
	offset := 8 + 8*envelopeDoubles[eci]
	if len(b) <= offset {
		return Geometry{}, fmt.Errorf("geopackage blob truncated before WKB payload")
	}
	return ParseWKB(b[offset:], srid)
}

// AsGeoPackage encodes the geometry as a GeoPackage BLOB with no envelope,
// little-endian header.
func (g Geometry) AsGeoPackage() []byte {
	wkb := g.WKB()
	out := make([]byte, 8, 8+len(wkb))
	out[0], out[1] = 'G', 'P'
	out[2] = 0
	out[3] = 0x01
	binary.LittleEndian.PutUint32(out[4:8], uint32(g.srid))
	return append(out, wkb...)
}
