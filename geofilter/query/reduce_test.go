package query

import (
	"testing"

	"github.com/geofilter/geofilter/geofilter"
)

func testFrozen(t *testing.T) *geofilter.Frozen {
	t.Helper()
	ctx, err := geofilter.NewContext(geofilter.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = ctx.Register("total",
		[]geofilter.DataType{geofilter.TypeNum, geofilter.TypeNum},
		geofilter.TypeNum,
		func(a []geofilter.Value) (geofilter.Value, error) {
			x, _ := a[0].AsNum()
			y, _ := a[1].AsNum()
			return geofilter.Num(x + y), nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ctx.Freeze()
}

func mustParse(t *testing.T, input string) Expr {
	t.Helper()
	e, err := Parse(input)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return e
}

func mustReduce(t *testing.T, fz *geofilter.Frozen, input string) Expr {
	t.Helper()
	r, err := Reduce(mustParse(t, input), fz)
	if err != nil {
		t.Fatalf("reduce %q: %v", input, err)
	}
	return r
}

func TestReduceCanonicalCall(t *testing.T) {
	fz := testFrozen(t)
	r := mustReduce(t, fz, "height > 10")
	c, ok := r.(Call)
	if !ok {
		t.Fatalf("expected Call, got %T", r)
	}
	if c.Name != geofilter.FnGt {
		t.Errorf("expected %q, got %q", geofilter.FnGt, c.Name)
	}
	if c.Result != geofilter.TypeBool {
		t.Errorf("expected bool result, got %v", c.Result)
	}
}

func TestReduceNegatedForms(t *testing.T) {
	fz := testFrozen(t)
	cases := map[string]string{
		"name NOT LIKE 'x%'":  geofilter.FnLike,
		"owner IS NOT NULL":   geofilter.FnIsNull,
		"kind NOT IN ('a')":   geofilter.FnIn,
		"depth NOT BETWEEN 1 AND 2": geofilter.FnBetween,
	}
	for input, inner := range cases {
		r := mustReduce(t, fz, input)
		not, ok := r.(Call)
		if !ok || not.Name != geofilter.FnNot {
			t.Errorf("%s: expected not(...), got %v", input, r)
			continue
		}
		base, ok := not.Args[0].(Call)
		if !ok || base.Name != inner {
			t.Errorf("%s: expected inner %q, got %v", input, inner, not.Args[0])
		}
	}
}

func TestReduceBetweenThreeArgs(t *testing.T) {
	fz := testFrozen(t)
	r := mustReduce(t, fz, "depth BETWEEN 100 AND 150")
	c, ok := r.(Call)
	if !ok || c.Name != geofilter.FnBetween {
		t.Fatalf("expected between call, got %v", r)
	}
	if len(c.Args) != 3 {
		t.Errorf("expected 3 args, got %d", len(c.Args))
	}
}

func TestReduceConstantFold(t *testing.T) {
	fz := testFrozen(t)
	r := mustReduce(t, fz, "1 + 2 = 3")
	lit, ok := r.(Literal)
	if !ok {
		t.Fatalf("expected folded literal, got %T", r)
	}
	b, err := lit.Val.AsBool()
	if err != nil || !b {
		t.Errorf("expected TRUE, got %v", lit.Val)
	}
}

func TestReduceFoldsRegisteredFunction(t *testing.T) {
	fz := testFrozen(t)
	r := mustReduce(t, fz, "3 = total(1, 2)")
	lit, ok := r.(Literal)
	if !ok {
		t.Fatalf("expected folded literal, got %T", r)
	}
	if b, _ := lit.Val.AsBool(); !b {
		t.Errorf("expected TRUE, got %v", lit.Val)
	}
}

func TestReduceConnectiveAbsorbing(t *testing.T) {
	fz := testFrozen(t)

	r := mustReduce(t, fz, "false AND height > 10")
	if lit, ok := r.(Literal); !ok || lit.Val.IsNull() {
		t.Errorf("expected FALSE, got %v", r)
	} else if b, _ := lit.Val.AsBool(); b {
		t.Errorf("expected FALSE, got %v", lit.Val)
	}

	r = mustReduce(t, fz, "true OR height > 10")
	lit, ok := r.(Literal)
	if !ok {
		t.Fatalf("expected TRUE, got %T", r)
	}
	if b, _ := lit.Val.AsBool(); !b {
		t.Errorf("expected TRUE, got %v", lit.Val)
	}
}

func TestReduceConnectiveIdentity(t *testing.T) {
	fz := testFrozen(t)
	r := mustReduce(t, fz, "true AND height > 10")
	c, ok := r.(Call)
	if !ok || c.Name != geofilter.FnGt {
		t.Errorf("expected the comparison alone, got %v", r)
	}
}

func TestReduceCollapsesNestedFolds(t *testing.T) {
	fz := testFrozen(t)

	r := mustReduce(t, fz, "CASEI(CASEI(name)) = 'x'")
	eq, ok := r.(Call)
	if !ok {
		t.Fatalf("expected Call, got %T", r)
	}
	inner, ok := eq.Args[0].(Call)
	if !ok || inner.Name != geofilter.FnCaseI {
		t.Fatalf("expected a casei call, got %v", eq.Args[0])
	}
	if _, nested := inner.Args[0].(Call); nested {
		t.Errorf("expected the duplicate wrapper to collapse, got %v", inner)
	}

	// mixed composition is not idempotent and must survive
	r = mustReduce(t, fz, "CASEI(ACCENTI(name)) = 'x'")
	outer := r.(Call).Args[0].(Call)
	if _, nested := outer.Args[0].(Call); !nested {
		t.Errorf("expected accenti inside casei, got %v", outer)
	}
}

func TestReduceKeepsVolatileFunctions(t *testing.T) {
	fz := testFrozen(t)
	r := mustReduce(t, fz, "now() > TIMESTAMP('2020-01-01T00:00:00Z')")
	c, ok := r.(Call)
	if !ok || c.Name != geofilter.FnGt {
		t.Fatalf("expected a > call, got %v", r)
	}
	clock, ok := c.Args[0].(Call)
	if !ok || clock.Name != "now" {
		t.Errorf("expected now() to survive reduction, got %v", c.Args[0])
	}
	if clock.Result != geofilter.TypeTimestamp {
		t.Errorf("expected timestamp result, got %v", clock.Result)
	}
}

func TestReduceUnknownFunction(t *testing.T) {
	fz := testFrozen(t)
	_, err := Reduce(mustParse(t, "nope(1) = 2"), fz)
	if err == nil {
		t.Fatal("expected error for unregistered function")
	}
	if !geofilter.IsKind(err, geofilter.ErrType) {
		t.Errorf("expected type error, got %v", err)
	}
}

func TestReduceTypeMismatch(t *testing.T) {
	fz := testFrozen(t)
	_, err := Reduce(mustParse(t, "total('a', 1) = 2"), fz)
	if err == nil {
		t.Fatal("expected error for string argument to numeric function")
	}
	if !geofilter.IsKind(err, geofilter.ErrType) {
		t.Errorf("expected type error, got %v", err)
	}
}

func TestReduceIdempotent(t *testing.T) {
	fz := testFrozen(t)
	inputs := []string{
		"height > 10 AND name LIKE 'a%'",
		"depth NOT BETWEEN 1 AND 2",
		"S_INTERSECTS(geom, POINT(1 2))",
		"T_DURING(acquired, INTERVAL('2020-01-01', '2020-12-31'))",
	}
	for _, input := range inputs {
		once := mustReduce(t, fz, input)
		twice, err := Reduce(once, fz)
		if err != nil {
			t.Fatalf("%s: second reduce: %v", input, err)
		}
		if once.String() != twice.String() {
			t.Errorf("%s: not idempotent:\n  once:  %s\n  twice: %s",
				input, once.String(), twice.String())
		}
	}
}
