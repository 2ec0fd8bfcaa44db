package geofilter

import "testing"

func TestValueCompare(t *testing.T) {
	if n, err := Num(1).Compare(Num(2)); err != nil || n >= 0 {
		t.Errorf("expected 1 < 2, got %d (%v)", n, err)
	}
	if n, err := Str("b").Compare(Str("a")); err != nil || n <= 0 {
		t.Errorf("expected b > a, got %d (%v)", n, err)
	}
	if _, err := Num(1).Compare(Str("a")); err == nil {
		t.Error("expected error comparing number with string")
	}
	if _, err := List(nil).Compare(List(nil)); err == nil {
		t.Error("expected error: lists have no order")
	}
}

func TestValueEqual(t *testing.T) {
	if !Num(2).Equal(Num(2)) {
		t.Error("expected equal numbers")
	}
	if Num(2).Equal(Str("2")) {
		t.Error("number and string must not be equal")
	}
	if !Null().Equal(Null()) {
		t.Error("expected NULL to equal NULL for list membership purposes")
	}
	a := List([]Value{Num(1), Str("x")})
	b := List([]Value{Num(1), Str("x")})
	if !a.Equal(b) {
		t.Error("expected element-wise list equality")
	}
}

func TestValueContainedBy(t *testing.T) {
	list := []Value{Str("a"), Str("b")}
	if !Str("b").ContainedBy(list) {
		t.Error("expected membership")
	}
	if Str("c").ContainedBy(list) {
		t.Error("expected no membership")
	}
}

func TestValueTypeOfInstant(t *testing.T) {
	d, err := ParseDate("2020-01-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Gran != GranDate {
		t.Errorf("expected date granularity, got %v", d.Gran)
	}
	if InstantVal(d).Type() != TypeDate {
		t.Errorf("expected TypeDate, got %v", InstantVal(d).Type())
	}
	ts, err := ParseTimestamp("2020-01-02T03:04:05Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if InstantVal(ts).Type() != TypeTimestamp {
		t.Errorf("expected TypeTimestamp, got %v", InstantVal(ts).Type())
	}
}

func TestValueAsMismatch(t *testing.T) {
	if _, err := Str("x").AsNum(); err == nil {
		t.Error("expected conversion error")
	}
	if _, err := Num(1).AsGeom(); err == nil {
		t.Error("expected conversion error")
	}
	if _, _, err := Num(1).AsInterval(); err == nil {
		t.Error("expected conversion error")
	}
}
