package geofilter

import "fmt"

const (
	// DefaultCRS is the implicit coordinate reference system assumed for
	// geometry literals when the caller does not configure one.
	DefaultCRS = "EPSG:4326"

	DefaultPrecision = 7
	MinPrecision     = 0
	MaxPrecision     = 32
)

// Config carries the environment-level settings a Context is built from.
// Defaults are supplied by the calling layer; nothing here is read from the
// process environment.
type Config struct {
	// CRS is the implicit coordinate reference system code applied to
	// geometry literals and coordinate validity checks.
	CRS string
	// Precision is the number of decimal digits retained when ingesting
	// and rendering coordinates.
	Precision int
}

func DefaultConfig() Config {
	return Config{CRS: DefaultCRS, Precision: DefaultPrecision}
}

// Validate rejects out-of-range precision and CRS codes with no known
// area of use. Called once at Context construction; a failure here is a
// construction-time error, never a later silent clamp.
func (c Config) Validate() error {
	if c.Precision < MinPrecision || c.Precision > MaxPrecision {
		return ConfigError(fmt.Sprintf(
			"precision %d out of range [%d, %d]", c.Precision, MinPrecision, MaxPrecision))
	}
	if _, err := NewCRS(c.CRS); err != nil {
		return err
	}
	return nil
}
