package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/query"
)

func reduced(t *testing.T, filter string) query.Expr {
	t.Helper()
	ctx, err := geofilter.NewContext(geofilter.DefaultConfig())
	require.NoError(t, err)
	e, err := query.Parse(filter)
	require.NoError(t, err)
	r, err := query.Reduce(e, ctx.Freeze())
	require.NoError(t, err)
	return r
}

func compile(t *testing.T, filter string, d Dialect) (string, []any) {
	t.Helper()
	sql, args, err := Compile(reduced(t, filter), d)
	require.NoError(t, err)
	return sql, args
}

func TestCompileComparisonQuestion(t *testing.T) {
	sql, args := compile(t, "height > 10", GeoPackage(7))
	assert.Equal(t, `"height" > ?`, sql)
	assert.Equal(t, []any{10.0}, args)
}

func TestCompileComparisonDollar(t *testing.T) {
	sql, args := compile(t, "a = 1 AND b = 'x'", PostGIS(7))
	assert.Equal(t, `("a" = $1) AND ("b" = $2)`, sql)
	assert.Equal(t, []any{1.0, "x"}, args)
}

func TestCompileLiteralsNeverInline(t *testing.T) {
	sql, args := compile(t, "name = 'Robert''); DROP TABLE--'", GeoPackage(7))
	assert.Equal(t, `"name" = ?`, sql)
	require.Len(t, args, 1)
	assert.NotContains(t, sql, "DROP")
}

func TestCompileBooleanShapes(t *testing.T) {
	sql, _ := compile(t, "NOT (a = 1 OR b = 2)", GeoPackage(7))
	assert.Equal(t, `NOT (("a" = ?) OR ("b" = ?))`, sql)

	sql, _ = compile(t, "owner IS NULL", GeoPackage(7))
	assert.Equal(t, `"owner" IS NULL`, sql)

	sql, _ = compile(t, "owner IS NOT NULL", GeoPackage(7))
	assert.Equal(t, `NOT ("owner" IS NULL)`, sql)
}

func TestCompileBetweenAndIn(t *testing.T) {
	sql, args := compile(t, "depth BETWEEN 100 AND 150", PostGIS(7))
	assert.Equal(t, `"depth" BETWEEN $1 AND $2`, sql)
	assert.Equal(t, []any{100.0, 150.0}, args)

	sql, args = compile(t, "kind IN ('a', 'b')", GeoPackage(7))
	assert.Equal(t, `"kind" IN (?, ?)`, sql)
	assert.Equal(t, []any{"a", "b"}, args)

	// extra parentheses around the list would read as a row value
	sql, args = compile(t, "kind NOT IN ('a', 'b', 'c')", PostGIS(7))
	assert.Equal(t, `NOT ("kind" IN ($1, $2, $3))`, sql)
	assert.Equal(t, []any{"a", "b", "c"}, args)
}

func TestCompileClockFunctions(t *testing.T) {
	sql, args := compile(t, "acquired < now()", GeoPackage(7))
	assert.Equal(t, `"acquired" < (datetime('now'))`, sql)
	assert.Empty(t, args)

	sql, _ = compile(t, "acquired < now()", PostGIS(7))
	assert.Equal(t, `"acquired" < (now())`, sql)

	sql, _ = compile(t, "day = today()", PostGIS(7))
	assert.Equal(t, `"day" = (current_date)`, sql)
}

func TestCompileArithmetic(t *testing.T) {
	sql, _ := compile(t, "x DIV 2 = 3", GeoPackage(7))
	assert.Equal(t, `(CAST("x" / ? AS INTEGER)) = ?`, sql)

	sql, _ = compile(t, "x DIV 2 = 3", PostGIS(7))
	assert.Equal(t, `(div("x", $1)) = $2`, sql)

	sql, _ = compile(t, "x ^ 2 = 9", GeoPackage(7))
	assert.Equal(t, `(pow("x", ?)) = ?`, sql)

	sql, _ = compile(t, "x ^ 2 = 9", PostGIS(7))
	assert.Equal(t, `("x" ^ $1) = $2`, sql)
}

func TestCompileCollation(t *testing.T) {
	sql, args := compile(t, "CASEI(name) = CASEI('Brussels')", GeoPackage(7))
	assert.Equal(t, `("name" COLLATE CQL2_CI) = ? COLLATE CQL2_CI`, sql)
	assert.Equal(t, []any{"Brussels"}, args)

	sql, _ = compile(t, "CASEI(ACCENTI(name)) = 'liege'", PostGIS(7))
	assert.Equal(t, `("name" COLLATE cql2_ci_ai) = $1`, sql)
}

func TestCompileSpatial(t *testing.T) {
	sql, args := compile(t, "S_INTERSECTS(geom, POINT(4.35 50.85))", PostGIS(7))
	assert.Equal(t, `ST_Intersects("geom", ST_GeomFromText($1))`, sql)
	assert.Equal(t, []any{"POINT(4.35 50.85)"}, args)
}

func TestCompileSpatialSnapping(t *testing.T) {
	sql, _ := compile(t, "S_WITHIN(geom, POINT(1 2))", GeoPackage(7))
	assert.Equal(t,
		`ST_Within(ST_ReducePrecision("geom", 1E-7), ST_GeomFromText(?))`, sql)

	// snapping applies only to the predicates that need it
	sql, _ = compile(t, "S_INTERSECTS(geom, POINT(1 2))", GeoPackage(7))
	assert.Equal(t, `ST_Intersects("geom", ST_GeomFromText(?))`, sql)
}

func TestCompileArrayOps(t *testing.T) {
	sql, args := compile(t, "A_CONTAINS(tags, ('a', 'b'))", PostGIS(7))
	assert.Equal(t, `"tags" @> ARRAY[$1, $2]`, sql)
	assert.Equal(t, []any{"a", "b"}, args)

	_, _, err := Compile(reduced(t, "A_CONTAINS(tags, ('a', 'b'))"), GeoPackage(7))
	require.Error(t, err)
	assert.True(t, geofilter.IsKind(err, geofilter.ErrUnsupportedFn))
}

func TestCompileTemporalGuards(t *testing.T) {
	sql, args := compile(t,
		"T_DURING(acquired, INTERVAL('2020-01-01', '2020-12-31'))", GeoPackage(7))
	assert.Equal(t,
		`"acquired" IS NOT NULL AND ("acquired" > ? AND "acquired" < ?)`, sql)
	assert.Equal(t, []any{"2020-01-01", "2020-12-31"}, args)
}

func TestCompileTemporalOpenBound(t *testing.T) {
	sql, args := compile(t,
		"T_BEFORE(acquired, INTERVAL(.., '2020-01-01'))", GeoPackage(7))
	assert.Equal(t, `"acquired" IS NOT NULL AND ("acquired" < ?)`, sql)
	assert.Equal(t, []any{minDateSQL}, args)
}

func TestCompileTemporalRepeatedEndpoint(t *testing.T) {
	// the instant bound appears in both endpoint comparisons; each
	// occurrence must emit its own bind argument
	sql, args := compile(t,
		"T_EQUALS(acquired, DATE('2020-01-01'))", GeoPackage(7))
	assert.Equal(t,
		`"acquired" IS NOT NULL AND ("acquired" = ? AND "acquired" = ?)`, sql)
	assert.Equal(t, []any{"2020-01-01", "2020-01-01"}, args)
}

func TestCompileEndsWithPerDialect(t *testing.T) {
	sql, args := compile(t, "ends_with(name, '.txt')", GeoPackage(7))
	assert.Equal(t, `"name" LIKE '%' || ?`, sql)
	assert.Equal(t, []any{".txt"}, args)

	sql, args = compile(t, "ends_with(name, '.txt')", PostGIS(7))
	assert.Equal(t, `right("name", length($1)) = $2`, sql)
	assert.Equal(t, []any{".txt", ".txt"}, args)
}

func TestCompileStartsWithPerDialect(t *testing.T) {
	sql, _ := compile(t, "starts_with(name, 'img')", GeoPackage(7))
	assert.Equal(t, `"name" LIKE ? || '%'`, sql)

	sql, _ = compile(t, "starts_with(name, 'img')", PostGIS(7))
	assert.Equal(t, `starts_with("name", $1)`, sql)
}

func TestCompileFunctionTranslation(t *testing.T) {
	sql, _ := compile(t, "ceil(x) = 3", GeoPackage(7))
	assert.Equal(t, `(ceiling("x")) = ?`, sql)

	sql, _ = compile(t, "ceil(x) = 3", PostGIS(7))
	assert.Equal(t, `(ceil("x")) = $1`, sql)
}

func TestCompileUnsupportedFunction(t *testing.T) {
	_, _, err := Compile(reduced(t, "cbrt(x) = 2"), GeoPackage(7))
	require.Error(t, err)
	assert.True(t, geofilter.IsKind(err, geofilter.ErrUnsupportedFn))
}
