package query

import (
	"testing"

	"github.com/geofilter/geofilter/geofilter"
)

func TestParseComparison(t *testing.T) {
	e, err := Parse("height > 10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := e.(Binary)
	if !ok {
		t.Fatalf("expected Binary, got %T", e)
	}
	if b.Op != OpGt {
		t.Errorf("expected OpGt, got %v", b.Op)
	}
	if p, ok := b.L.(Property); !ok || p.Name != "height" {
		t.Errorf("expected property height, got %v", b.L)
	}
	if l, ok := b.R.(Literal); !ok || !l.Val.IsNum() {
		t.Errorf("expected numeric literal, got %v", b.R)
	}
}

func TestParseBooleanPrecedence(t *testing.T) {
	e, err := Parse("a = 1 OR b = 2 AND c = 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	or, ok := e.(Binary)
	if !ok || or.Op != OpOr {
		t.Fatalf("expected OR at the root, got %v", e)
	}
	and, ok := or.R.(Binary)
	if !ok || and.Op != OpAnd {
		t.Errorf("expected AND on the right, got %v", or.R)
	}
}

func TestParseParenthesizedBoolean(t *testing.T) {
	e, err := Parse("(a = 1 OR b = 2) AND c = 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	and, ok := e.(Binary)
	if !ok || and.Op != OpAnd {
		t.Fatalf("expected AND at the root, got %v", e)
	}
	if or, ok := and.L.(Binary); !ok || or.Op != OpOr {
		t.Errorf("expected OR on the left, got %v", and.L)
	}
}

func TestParseParenthesizedScalar(t *testing.T) {
	e, err := Parse("(a + b) > 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gt, ok := e.(Binary)
	if !ok || gt.Op != OpGt {
		t.Fatalf("expected comparison at the root, got %v", e)
	}
	if add, ok := gt.L.(Binary); !ok || add.Op != OpAdd {
		t.Errorf("expected addition on the left, got %v", gt.L)
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	e, err := Parse("a + b * 2 = 7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eq := e.(Binary)
	add, ok := eq.L.(Binary)
	if !ok || add.Op != OpAdd {
		t.Fatalf("expected addition at the top of the scalar, got %v", eq.L)
	}
	if mul, ok := add.R.(Binary); !ok || mul.Op != OpMul {
		t.Errorf("expected multiplication bound tighter, got %v", add.R)
	}
}

func TestParseNotLike(t *testing.T) {
	e, err := Parse("name NOT LIKE 'foo%'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := e.(Binary)
	if !ok || b.Op != OpNotLike {
		t.Fatalf("expected NOT LIKE, got %v", e)
	}
}

func TestParseBetween(t *testing.T) {
	e, err := Parse("depth BETWEEN 100 AND 150 AND kind = 'trench'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	and, ok := e.(Binary)
	if !ok || and.Op != OpAnd {
		t.Fatalf("expected AND at the root, got %v", e)
	}
	btw, ok := and.L.(Binary)
	if !ok || btw.Op != OpBetween {
		t.Fatalf("expected BETWEEN on the left, got %v", and.L)
	}
	bounds, ok := btw.R.(Array)
	if !ok || len(bounds.Elems) != 2 {
		t.Errorf("expected two bounds, got %v", btw.R)
	}
}

func TestParseInList(t *testing.T) {
	e, err := Parse("kind NOT IN ('a', 'b', 'c')")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := e.(Binary)
	if !ok || b.Op != OpNotIn {
		t.Fatalf("expected NOT IN, got %v", e)
	}
	arr := b.R.(Array)
	if len(arr.Elems) != 3 {
		t.Errorf("expected 3 candidates, got %d", len(arr.Elems))
	}
}

func TestParseIsNull(t *testing.T) {
	e, err := Parse("owner IS NOT NULL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, ok := e.(Unary)
	if !ok || u.Op != OpIsNotNull {
		t.Fatalf("expected IS NOT NULL, got %v", e)
	}
}

func TestParseSpatialPredicate(t *testing.T) {
	e, err := Parse("S_INTERSECTS(geom, POINT(4.3 51.2))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := e.(Binary)
	if !ok || b.Op != OpSIntersects {
		t.Fatalf("expected S_INTERSECTS, got %v", e)
	}
	lit, ok := b.R.(Literal)
	if !ok || !lit.Val.IsGeom() {
		t.Fatalf("expected geometry literal, got %v", b.R)
	}
}

func TestParseGeometryCollection(t *testing.T) {
	e, err := Parse("S_CONTAINS(GEOMETRYCOLLECTION(POINT(1 2), LINESTRING(0 0, 1 1)), geom)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := e.(Binary)
	if lit, ok := b.L.(Literal); !ok || !lit.Val.IsGeom() {
		t.Errorf("expected nested geometry literal, got %v", b.L)
	}
}

func TestParseEmptyGeometry(t *testing.T) {
	e, err := Parse("S_INTERSECTS(geom, POINT EMPTY)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := e.(Binary)
	lit := b.R.(Literal)
	g, err := lit.Val.AsGeom()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.IsEmpty() {
		t.Error("expected empty geometry")
	}
}

func TestParseBBox(t *testing.T) {
	e, err := Parse("S_INTERSECTS(geom, BBOX(-10, -10, 10, 10))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := e.(Binary)
	if lit, ok := b.R.(Literal); !ok || !lit.Val.IsGeom() {
		t.Errorf("expected geometry literal from BBOX, got %v", b.R)
	}
}

func TestParseTemporalInterval(t *testing.T) {
	e, err := Parse("T_DURING(acquired, INTERVAL('2020-01-01', '2020-12-31'))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := e.(Binary)
	if !ok || b.Op != OpTDuring {
		t.Fatalf("expected T_DURING, got %v", e)
	}
	if _, ok := b.R.(Interval); !ok {
		t.Errorf("expected Interval node, got %T", b.R)
	}
}

func TestParseOpenInterval(t *testing.T) {
	e, err := Parse("T_AFTER(acquired, INTERVAL(.., '2020-01-01'))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	iv := e.(Binary).R.(Interval)
	lo := iv.Lo.(Literal)
	inst, err := lo.Val.AsInstant()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inst.IsMin() {
		t.Error("expected open low bound to be the minimum instant")
	}
}

func TestParseInstantLiterals(t *testing.T) {
	e, err := Parse("acquired >= TIMESTAMP('2020-06-01T12:00:00Z')")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit := e.(Binary).R.(Literal)
	if lit.Val.Type() != geofilter.TypeTimestamp {
		t.Errorf("expected timestamp, got %v", lit.Val.Type())
	}

	e, err = Parse("acquired >= DATE('2020-06-01')")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit = e.(Binary).R.(Literal)
	if lit.Val.Type() != geofilter.TypeDate {
		t.Errorf("expected date, got %v", lit.Val.Type())
	}
}

func TestParseCaseI(t *testing.T) {
	e, err := Parse("CASEI(name) = CASEI('Brussels')")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eq := e.(Binary)
	if u, ok := eq.L.(Unary); !ok || u.Op != OpCaseI {
		t.Errorf("expected CASEI on the left, got %v", eq.L)
	}
}

func TestParseFunctionCall(t *testing.T) {
	e, err := Parse("3 = sum(1, 2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eq := e.(Binary)
	c, ok := eq.R.(Call)
	if !ok || c.Name != "sum" || len(c.Args) != 2 {
		t.Errorf("expected sum(1, 2), got %v", eq.R)
	}
}

func TestParseTrailingInput(t *testing.T) {
	if _, err := Parse("a = 1 bogus"); err == nil {
		t.Fatal("expected error for trailing input")
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("height >")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Errorf("expected *ParseError, got %T", err)
	}
}
