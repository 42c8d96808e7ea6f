package manager

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"slices"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/dot5enko/simple-range-join/index"
	"github.com/dot5enko/simple-range-join/manager/query"
	"github.com/dot5enko/simple-range-join/ops"
	"github.com/dot5enko/simple-range-join/schema"
)

func primaryTable(values ...any) *schema.Table {
	rows := make([]schema.Row, len(values))
	for i, v := range values {
		rows[i] = schema.Row{"Id": i, "SomeValue": v}
	}
	return schema.MustTable("primary", []string{"Id", "SomeValue"}, rows)
}

type interval struct {
	low, high any
	label     string
}

func lookupTable(intervals ...interval) *schema.Table {
	rows := make([]schema.Row, len(intervals))
	for i, it := range intervals {
		rows[i] = schema.Row{"Low": it.low, "High": it.high, "ValueOfInterest": it.label}
	}
	return schema.MustTable("lookup", []string{"Low", "High", "ValueOfInterest"}, rows)
}

func buildIndex(t *testing.T, m *Manager, lookup *schema.Table) *index.IntervalIndex {
	t.Helper()

	idx, err := m.BuildIndex(lookup, "Low", "High")
	if err != nil {
		t.Fatalf("unable to build index : %s", err.Error())
	}
	return idx
}

func column(tbl *schema.Table, name string) []any {
	out := make([]any, len(tbl.Rows))
	for i, row := range tbl.Rows {
		out[i] = row[name]
	}
	return out
}

func TestScenarioWorkedExample(t *testing.T) {

	// small chunks so several workers take part in the join
	m := New(Config{Workers: 3, ChunkRows: 2})

	idx := buildIndex(t, m, lookupTable(
		interval{1, 3, "a"},
		interval{4, 5, "b"},
		interval{10, 16, "c"},
	))

	res, err := m.ConditionalJoin(context.Background(), primaryTable(10, 8, 14, 6, 2), idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.LeftJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	expected := []any{"c", nil, "c", nil, "a"}
	if got := column(res.Table, "ValueOfInterest"); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v but got %v", expected, got)
	}

	if !slices.Equal(res.Table.Columns, []string{"Id", "SomeValue", "ValueOfInterest"}) {
		t.Errorf("unexpected columns %v", res.Table.Columns)
	}

	if res.Stats.MatchedRows != 3 || res.Stats.UnmatchedRows != 2 || res.Stats.LookupMatched != 2 {
		t.Errorf("unexpected stats %s", spew.Sdump(res.Stats))
	}
}

func TestEmptyLookup(t *testing.T) {

	m := New(Config{Workers: 2})
	idx := buildIndex(t, m, lookupTable())
	primary := primaryTable(10, 8, 14)

	left, err := m.ConditionalJoin(context.Background(), primary, idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.LeftJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if left.Table.Len() != 3 {
		t.Errorf("Expected %d but got %d", 3, left.Table.Len())
	}
	for _, v := range column(left.Table, "ValueOfInterest") {
		if v != nil {
			t.Errorf("expected null lookup value, got %v", v)
		}
	}

	inner, err := m.ConditionalJoin(context.Background(), primary, idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.InnerJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if inner.Table.Len() != 0 {
		t.Errorf("Expected %d but got %d", 0, inner.Table.Len())
	}
}

func TestOverlappingFanOut(t *testing.T) {

	m := New(Config{})
	idx := buildIndex(t, m, lookupTable(interval{5, 15, "y"}, interval{1, 10, "x"}))

	for _, how := range []query.JoinType{query.InnerJoin, query.LeftJoin} {

		res, err := m.ConditionalJoin(context.Background(), primaryTable(7), idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, how)
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}

		expected := []any{"x", "y"}
		if got := column(res.Table, "ValueOfInterest"); !reflect.DeepEqual(got, expected) {
			t.Errorf("%s join: Expected %v but got %v", how.String(), expected, got)
		}
	}
}

func TestMalformedIntervalNeverMatches(t *testing.T) {

	m := New(Config{})
	idx := buildIndex(t, m, lookupTable(interval{10, 5, "bad"}))

	res, err := m.ConditionalJoin(context.Background(), primaryTable(7, 10, 5), idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.InnerJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Table.Len() != 0 {
		t.Errorf("malformed interval matched %s", spew.Sdump(res.Table.Rows))
	}
}

func TestExclusiveLowerBound(t *testing.T) {

	m := New(Config{})
	idx := buildIndex(t, m, lookupTable(interval{1, 3, "a"}))

	res, err := m.ConditionalJoin(context.Background(), primaryTable(1, 3), idx, "SomeValue", ops.Less, ops.LessOrEqual, query.LeftJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	expected := []any{nil, "a"}
	if got := column(res.Table, "ValueOfInterest"); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v but got %v", expected, got)
	}
}

func TestRowCountLawsAndOrder(t *testing.T) {

	rnd := rand.New(rand.NewSource(42))

	intervals := make([]interval, 80)
	for i := range intervals {
		low := rnd.Intn(1000)
		intervals[i] = interval{low, low + rnd.Intn(60), "i"}
	}
	// a few malformed ones
	intervals = append(intervals, interval{500, 400, "bad"}, interval{20, 10, "bad"})

	values := make([]any, 1500)
	for i := range values {
		values[i] = rnd.Intn(1100)
	}

	m := New(Config{Workers: 4, ChunkRows: 64})
	idx := buildIndex(t, m, lookupTable(intervals...))
	primary := primaryTable(values...)

	ev, _ := ops.NewEvaluator(ops.Less, ops.LessOrEqual)

	expectedInner, expectedLeft := 0, 0
	for _, v := range values {
		matches := 0
		for _, it := range intervals {
			if ev.Matches(schema.KeyOf(v), schema.KeyOf(it.low), schema.KeyOf(it.high)) {
				matches++
			}
		}
		expectedInner += matches
		expectedLeft += max(1, matches)
	}

	inner, err := m.ConditionalJoin(context.Background(), primary, idx, "SomeValue", ops.Less, ops.LessOrEqual, query.InnerJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	left, err := m.ConditionalJoin(context.Background(), primary, idx, "SomeValue", ops.Less, ops.LessOrEqual, query.LeftJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if inner.Table.Len() != expectedInner {
		t.Errorf("inner: Expected %d but got %d", expectedInner, inner.Table.Len())
	}
	if left.Table.Len() != expectedLeft {
		t.Errorf("left: Expected %d but got %d", expectedLeft, left.Table.Len())
	}
	if left.Stats.ResultRows != expectedLeft {
		t.Errorf("left stats: Expected %d but got %d", expectedLeft, left.Stats.ResultRows)
	}

	// primary order is kept and rows of one primary row are contiguous
	prev := -1
	for _, row := range left.Table.Rows {
		id := row["Id"].(int)
		if id != prev && id != prev+1 {
			t.Fatalf("row %d follows row %d", id, prev)
		}
		prev = id
	}
	if prev != len(values)-1 {
		t.Errorf("left join lost primary rows, last id %d", prev)
	}
}

func TestParallelMatchesSingleWorker(t *testing.T) {

	rnd := rand.New(rand.NewSource(7))

	intervals := make([]interval, 200)
	for i := range intervals {
		low := rnd.Float64() * 100
		intervals[i] = interval{low, low + rnd.Float64()*5, "v"}
	}

	values := make([]any, 3000)
	for i := range values {
		values[i] = rnd.Float64() * 105
	}

	single := New(Config{Workers: 1, ChunkRows: 100000})
	parallel := New(Config{Workers: 8, ChunkRows: 17})

	lookup := lookupTable(intervals...)
	primary := primaryTable(values...)

	a, err := single.ConditionalJoin(context.Background(), primary, buildIndex(t, single, lookup), "SomeValue", ops.LessOrEqual, ops.Less, query.LeftJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	b, err := parallel.ConditionalJoin(context.Background(), primary, buildIndex(t, parallel, lookup), "SomeValue", ops.LessOrEqual, ops.Less, query.LeftJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if !reflect.DeepEqual(a.Table.Rows, b.Table.Rows) {
		t.Errorf("parallel join differs from single worker join")
	}
	if a.Stats.ProbeStats != b.Stats.ProbeStats || a.Stats.LookupMatched != b.Stats.LookupMatched {
		t.Errorf("stats differ:\n%s\n%s", spew.Sdump(a.Stats.ProbeStats), spew.Sdump(b.Stats.ProbeStats))
	}
}

func incomparablePrimary() *schema.Table {
	values := make([]any, 100)
	for i := range values {
		values[i] = i % 20
	}
	values[37] = "thirty seven"
	values[80] = "eighty"

	return primaryTable(values...)
}

func TestIncomparableProbeFailsAtFirstRow(t *testing.T) {

	m := New(Config{Workers: 4, ChunkRows: 5})
	idx := buildIndex(t, m, lookupTable(interval{1, 3, "a"}))

	for range 20 {
		_, err := m.ConditionalJoin(context.Background(), incomparablePrimary(), idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.LeftJoin)

		if !errors.Is(err, schema.ErrIncomparable) {
			t.Fatalf("expected incomparable error, got %v", err)
		}

		se, ok := schema.AsSchemaError(err)
		if !ok {
			t.Fatalf("expected schema error, got %v", err)
		}
		if se.Stage != schema.JoinStage || se.Row != 37 || se.Column != "SomeValue" {
			t.Errorf("unexpected error %s", se.Error())
		}
	}
}

func TestSkipIncomparable(t *testing.T) {

	m := New(Config{Workers: 4, ChunkRows: 5, SkipIncomparable: true})
	idx := buildIndex(t, m, lookupTable(interval{1, 3, "a"}))

	res, err := m.ConditionalJoin(context.Background(), incomparablePrimary(), idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.LeftJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if res.Stats.SkippedIncomparable != 2 {
		t.Errorf("Expected %d but got %d", 2, res.Stats.SkippedIncomparable)
	}
	if res.Table.Len() != 100 {
		t.Errorf("Expected %d but got %d", 100, res.Table.Len())
	}
	if v := res.Table.Rows[37]["ValueOfInterest"]; v != nil {
		t.Errorf("skipped row got lookup value %v", v)
	}
}

func TestNullProbeNeverMatches(t *testing.T) {

	m := New(Config{})
	idx := buildIndex(t, m, lookupTable(interval{1, 3, "a"}))

	res, err := m.ConditionalJoin(context.Background(), primaryTable(nil, 2), idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.LeftJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	expected := []any{nil, "a"}
	if got := column(res.Table, "ValueOfInterest"); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v but got %v", expected, got)
	}
}

func TestJoinValidation(t *testing.T) {

	m := New(Config{})
	idx := buildIndex(t, m, lookupTable(interval{1, 3, "a"}))

	_, err := m.ConditionalJoin(context.Background(), primaryTable(1), idx, "Missing", ops.LessOrEqual, ops.LessOrEqual, query.LeftJoin)
	if se, ok := schema.AsSchemaError(err); !ok || se.Stage != schema.JoinStage || !errors.Is(err, schema.ErrColumnNotFound) {
		t.Errorf("expected join stage missing column error, got %v", err)
	}

	_, err = m.ConditionalJoin(context.Background(), primaryTable(1), idx, "SomeValue", ops.CompareOp(5), ops.LessOrEqual, query.LeftJoin)
	if se, ok := schema.AsSchemaError(err); !ok || se.Stage != schema.JoinStage || !errors.Is(err, schema.ErrUnknownOperator) {
		t.Errorf("expected join stage operator error, got %v", err)
	}

	_, err = m.ConditionalJoin(context.Background(), primaryTable(1), nil, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.LeftJoin)
	if !errors.Is(err, schema.ErrNilIndex) {
		t.Errorf("expected nil index error, got %v", err)
	}

	_, err = m.BuildIndex(lookupTable(interval{1, 3, "a"}), "Low", "Missing")
	if se, ok := schema.AsSchemaError(err); !ok || se.Stage != schema.IndexStage {
		t.Errorf("expected index stage error, got %v", err)
	}
}

func TestCancelledJoin(t *testing.T) {

	m := New(Config{Workers: 2, ChunkRows: 1})
	idx := buildIndex(t, m, lookupTable(interval{1, 3, "a"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.ConditionalJoin(ctx, primaryTable(1, 2, 3, 4), idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.LeftJoin)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context cancelled, got %v", err)
	}
}

func TestLookupColumnClash(t *testing.T) {

	lookup := schema.MustTable("lookup", []string{"Low", "High", "SomeValue"}, []schema.Row{
		{"Low": 1, "High": 3, "SomeValue": "from lookup"},
	})

	m := New(Config{Suffix: "_lookup"})
	idx := buildIndex(t, m, lookup)

	res, err := m.ConditionalJoin(context.Background(), primaryTable(2), idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.InnerJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	row := res.Table.Rows[0]
	if row["SomeValue"] != 2 || row["SomeValue_lookup"] != "from lookup" {
		t.Errorf("unexpected row %v", row)
	}
}

func TestJoinWhere(t *testing.T) {

	m := New(Config{})
	idx := buildIndex(t, m, lookupTable(interval{1, 3, "a"}))

	res, err := m.JoinWhere(context.Background(), primaryTable(1, 2, 3), idx, query.LeftJoin, "SomeValue > Low", "SomeValue < High")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	expected := []any{nil, "a", nil}
	if got := column(res.Table, "ValueOfInterest"); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v but got %v", expected, got)
	}

	_, err = m.JoinWhere(context.Background(), primaryTable(1), idx, query.LeftJoin, "SomeValue > Low")
	if !errors.Is(err, query.ErrIncompleteCondition) {
		t.Errorf("expected incomplete condition, got %v", err)
	}
}

func TestJoinRowsMatchesTableJoin(t *testing.T) {

	m := New(Config{Workers: 3, ChunkRows: 2})
	idx := buildIndex(t, m, lookupTable(interval{1, 10, "x"}, interval{5, 15, "y"}, interval{20, 30, "z"}))
	primary := primaryTable(7, 0, 25, 12, nil)

	tableRes, err := m.ConditionalJoin(context.Background(), primary, idx, "SomeValue", ops.LessOrEqual, ops.LessOrEqual, query.LeftJoin)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	cond, _ := query.NewJoinCondition("SomeValue", "Low", "High", ops.LessOrEqual, ops.LessOrEqual)

	streamed := []schema.Row{}
	stats, err := m.JoinRows(context.Background(), slices.Values(primary.Rows), primary.Columns, idx, cond, query.JoinOptions{How: query.LeftJoin}, func(row schema.Row) error {
		streamed = append(streamed, row)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if !reflect.DeepEqual(streamed, tableRes.Table.Rows) {
		t.Errorf("streamed rows differ:\n%s\n%s", spew.Sdump(streamed), spew.Sdump(tableRes.Table.Rows))
	}
	if stats.ProbeStats != tableRes.Stats.ProbeStats {
		t.Errorf("stats differ:\n%s\n%s", spew.Sdump(stats), spew.Sdump(tableRes.Stats))
	}
}

func TestJoinRowsSinkError(t *testing.T) {

	m := New(Config{})
	idx := buildIndex(t, m, lookupTable(interval{1, 10, "x"}))
	primary := primaryTable(1, 2, 3)

	cond, _ := query.NewJoinCondition("SomeValue", "", "", ops.LessOrEqual, ops.LessOrEqual)
	stop := errors.New("stop")

	calls := 0
	_, err := m.JoinRows(context.Background(), slices.Values(primary.Rows), primary.Columns, idx, cond, query.JoinOptions{How: query.InnerJoin}, func(row schema.Row) error {
		calls++
		return stop
	})

	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("expected the sink error after one call, got %v after %d calls", err, calls)
	}
}

func TestCachedIndexIsShared(t *testing.T) {

	m := New(Config{})
	lookup := lookupTable(interval{1, 3, "a"})

	a, err := m.CachedIndex("ranges", lookup, "Low", "High")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	b, err := m.CachedIndex("ranges", lookup, "Low", "High")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if a != b || m.Indexes.Len() != 1 {
		t.Errorf("expected one cached index")
	}

	_, err = m.CachedIndex("broken", lookup, "Low", "Missing")
	if !errors.Is(err, schema.ErrColumnNotFound) || m.Indexes.Len() != 1 {
		t.Errorf("failed builds must not be cached, got %v", err)
	}
}
