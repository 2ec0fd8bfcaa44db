package storage

import (
	"testing"
	"time"

	"github.com/geofilter/geofilter/geofilter"
)

func TestScanValue(t *testing.T) {
	if !ScanValue(nil).IsNull() {
		t.Error("expected NULL for nil")
	}
	if v := ScanValue(int64(7)); !v.IsNum() {
		t.Errorf("expected number for int64, got %v", v)
	}
	if v := ScanValue(3.5); !v.IsNum() {
		t.Errorf("expected number for float64, got %v", v)
	}
	if v := ScanValue(true); !v.IsBool() {
		t.Errorf("expected bool, got %v", v)
	}
	if v := ScanValue([]byte("blob")); !v.IsStr() {
		t.Errorf("expected string for bytes, got %v", v)
	}
	if v := ScanValue(time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)); v.Type() != geofilter.TypeTimestamp {
		t.Errorf("expected timestamp, got %v", v)
	}
	if v := ScanValue(int32(4)); !v.IsNum() {
		t.Errorf("expected number for int32 via cast, got %v", v)
	}
}
