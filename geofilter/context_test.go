package geofilter

import "testing"

func sumImpl(a []Value) (Value, error) {
	x, _ := a[0].AsNum()
	y, _ := a[1].AsNum()
	return Num(x + y), nil
}

func TestRegisterAndCall(t *testing.T) {
	ctx, err := NewContext(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctx.Register("total", []DataType{TypeNum, TypeNum}, TypeNum, sumImpl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fz := ctx.Freeze()

	out, err := fz.Call("total", []Value{Num(1), Num(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := out.AsNum(); n != 3 {
		t.Errorf("expected 3, got %v", out)
	}
}

func TestRegisterRejections(t *testing.T) {
	ctx, err := NewContext(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ctx.Register("", []DataType{TypeNum}, TypeNum, sumImpl); err == nil {
		t.Error("expected rejection of empty name")
	}
	if err := ctx.Register("f", []DataType{TypeNum}, TypeNum, nil); err == nil {
		t.Error("expected rejection of nil implementation")
	}
	if err := ctx.Register("f", []DataType{TypeAny}, TypeNum, sumImpl); err == nil {
		t.Error("expected rejection of TypeAny argument")
	}
	if err := ctx.Register(FnAnd, []DataType{TypeBool}, TypeBool, sumImpl); err == nil {
		t.Error("expected rejection of a standard function name")
	}

	if err := ctx.Register("f", []DataType{TypeNum, TypeNum}, TypeNum, sumImpl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctx.Register("f", []DataType{TypeNum, TypeNum}, TypeNum, sumImpl); err == nil {
		t.Error("expected rejection of duplicate name")
	}

	ctx.Freeze()
	if err := ctx.Register("g", []DataType{TypeNum}, TypeNum, sumImpl); err == nil {
		t.Error("expected rejection after freeze")
	}
}

func TestCallArityAndTypeChecks(t *testing.T) {
	ctx, _ := NewContext(DefaultConfig())
	if err := ctx.Register("total", []DataType{TypeNum, TypeNum}, TypeNum, sumImpl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fz := ctx.Freeze()

	if _, err := fz.Call("total", []Value{Num(1)}); !IsKind(err, ErrType) {
		t.Errorf("expected type error for arity mismatch, got %v", err)
	}
	if _, err := fz.Call("total", []Value{Num(1), Str("x")}); !IsKind(err, ErrType) {
		t.Errorf("expected type error for string argument, got %v", err)
	}
	if _, err := fz.Call("missing", []Value{Num(1)}); !IsKind(err, ErrType) {
		t.Errorf("expected type error for unknown function, got %v", err)
	}
}

func TestCallNullPropagation(t *testing.T) {
	ctx, _ := NewContext(DefaultConfig())
	if err := ctx.Register("total", []DataType{TypeNum, TypeNum}, TypeNum, sumImpl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fz := ctx.Freeze()

	out, err := fz.Call("total", []Value{Num(1), Null()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsNull() {
		t.Errorf("expected NULL result, got %v", out)
	}
}

func TestCallDateTimestampInterop(t *testing.T) {
	ctx, _ := NewContext(DefaultConfig())
	fz := ctx.Freeze()

	d, err := ParseDate("2020-06-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts, err := ParseTimestamp("2020-06-01T12:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := fz.Call(FnLt, []Value{InstantVal(d), InstantVal(ts)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, _ := out.AsBool(); !b {
		t.Errorf("expected the date to order before the timestamp, got %v", out)
	}
}

func TestCallFractionalDivisor(t *testing.T) {
	ctx, err := NewContext(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fz := ctx.Freeze()

	// divisors that truncate to zero must not reach the integer op
	for _, name := range []string{FnIntDiv, FnMod} {
		_, err := fz.Call(name, []Value{Num(1), Num(0.5)})
		if !IsKind(err, ErrEval) {
			t.Errorf("%s with divisor 0.5: expected eval error, got %v", name, err)
		}
		_, err = fz.Call(name, []Value{Num(1), Num(0)})
		if !IsKind(err, ErrEval) {
			t.Errorf("%s with divisor 0: expected eval error, got %v", name, err)
		}
	}
	out, err := fz.Call(FnIntDiv, []Value{Num(7), Num(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := out.AsNum(); n != 3 {
		t.Errorf("expected 3, got %v", out)
	}
}

func TestConfigValidation(t *testing.T) {
	if _, err := NewContext(Config{CRS: DefaultCRS, Precision: 99}); err == nil {
		t.Error("expected rejection of out-of-range precision")
	}
	if _, err := NewContext(Config{CRS: "EPSG:0", Precision: DefaultPrecision}); err == nil {
		t.Error("expected rejection of unknown CRS")
	}
}
