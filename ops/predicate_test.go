package ops

import (
	"errors"
	"testing"

	"github.com/dot5enko/simple-range-join/schema"
)

func TestInclusiveMatches(t *testing.T) {

	ev := Inclusive()
	lower, upper := schema.NumericKey(10), schema.NumericKey(16)

	for _, v := range []float64{10, 12, 16} {
		if !ev.Matches(schema.NumericKey(v), lower, upper) {
			t.Errorf("expected %v to be within [10, 16]", v)
		}
	}

	for _, v := range []float64{9.99, 16.01} {
		if ev.Matches(schema.NumericKey(v), lower, upper) {
			t.Errorf("expected %v to be outside [10, 16]", v)
		}
	}
}

func TestExclusiveEnds(t *testing.T) {

	lower, upper := schema.NumericKey(1), schema.NumericKey(3)

	exclusiveLower, _ := NewEvaluator(Less, LessOrEqual)
	if exclusiveLower.Matches(schema.NumericKey(1), lower, upper) {
		t.Errorf("value equal to exclusive lower bound must not match")
	}
	if !exclusiveLower.Matches(schema.NumericKey(3), lower, upper) {
		t.Errorf("value equal to inclusive upper bound must match")
	}

	strict, _ := NewEvaluator(Less, Less)
	if strict.Matches(schema.NumericKey(3), lower, upper) {
		t.Errorf("value equal to exclusive upper bound must not match")
	}
	if !strict.Matches(schema.NumericKey(2), lower, upper) {
		t.Errorf("value strictly between bounds must match")
	}

	// strictly between a point interval is always empty
	if strict.Matches(schema.NumericKey(2), schema.NumericKey(2), schema.NumericKey(2)) {
		t.Errorf("exclusive point interval must not match")
	}
}

func TestMalformedAndIncomparable(t *testing.T) {

	ev := Inclusive()

	if ev.Matches(schema.NumericKey(7), schema.NumericKey(10), schema.NumericKey(5)) {
		t.Errorf("lower > upper must never match")
	}
	if ev.Matches(schema.KeyOf("7"), schema.NumericKey(1), schema.NumericKey(10)) {
		t.Errorf("string value must not match numeric bounds")
	}
	if ev.Matches(schema.NullKey, schema.NumericKey(1), schema.NumericKey(10)) {
		t.Errorf("null value must not match")
	}
}

func TestEvaluatorFromString(t *testing.T) {

	ev, err := EvaluatorFromString("<", "<=")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if ev.LowerOp != Less || ev.UpperOp != LessOrEqual {
		t.Errorf("unexpected evaluator %s", ev.String())
	}

	_, err = EvaluatorFromString(">=", "<=")
	if !errors.Is(err, schema.ErrUnknownOperator) {
		t.Errorf("expected unknown operator error, got %v", err)
	}

	_, err = NewEvaluator(CompareOp(9), LessOrEqual)
	if !errors.Is(err, schema.ErrUnknownOperator) {
		t.Errorf("expected unknown operator error, got %v", err)
	}
}
