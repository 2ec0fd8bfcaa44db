package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/eval"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "features.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestIterateTypesCells(t *testing.T) {
	path := writeCSV(t, "name,height,active,built,geom\n"+
		"tower,320.5,true,1889-03-31,POINT(2.2945 48.8584)\n"+
		"void,,,,\n")
	src := New(path, WithGeometryColumn("geom"))

	var rows []geofilter.Resource
	err := src.Iterate(context.Background(), func(r geofilter.Resource) error {
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if v, _ := first.Get("height"); !v.IsNum() {
		t.Errorf("expected numeric height, got %v", v)
	}
	if v, _ := first.Get("active"); !v.IsBool() {
		t.Errorf("expected boolean active, got %v", v)
	}
	if v, _ := first.Get("built"); v.Type() != geofilter.TypeDate {
		t.Errorf("expected date built, got %v", v)
	}
	if v, _ := first.Get("geom"); !v.IsGeom() {
		t.Errorf("expected geometry, got %v", v)
	}
	if v, _ := first.Get("name"); !v.IsStr() {
		t.Errorf("expected string name, got %v", v)
	}

	for _, col := range []string{"height", "active", "built", "geom"} {
		if v, _ := rows[1].Get(col); !v.IsNull() {
			t.Errorf("expected NULL %s in empty row, got %v", col, v)
		}
	}
}

func TestIterateWithEvaluator(t *testing.T) {
	path := writeCSV(t, "name,height\nA,10\nB,25\nC,\n")
	src := New(path)

	ctx, err := geofilter.NewContext(geofilter.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ev := eval.New(ctx.Freeze())
	if err := ev.SetupText("height > 15"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer ev.Teardown()

	var matched []string
	err = src.Iterate(context.Background(), func(r geofilter.Resource) error {
		o, err := ev.Evaluate(r)
		if err != nil {
			return err
		}
		if o == geofilter.True {
			name, _ := r.Get("name")
			s, _ := name.AsStr()
			matched = append(matched, s.String())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != 1 || matched[0] != "B" {
		t.Errorf("expected only B to match, got %v", matched)
	}
}

func TestIterateMissingFile(t *testing.T) {
	err := New("/does/not/exist.csv").Iterate(context.Background(), func(geofilter.Resource) error {
		return nil
	})
	if !geofilter.IsKind(err, geofilter.ErrIO) {
		t.Errorf("expected io error, got %v", err)
	}
}

func TestIterateContextCancel(t *testing.T) {
	path := writeCSV(t, "a\n1\n2\n")
	cctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(path).Iterate(cctx, func(geofilter.Resource) error { return nil })
	if err == nil {
		t.Error("expected context error")
	}
}
