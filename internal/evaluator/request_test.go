package evaluator_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalc/internal/evaluator"
)

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in   string
		want evaluator.Operation
	}{
		{"derivative", evaluator.Derivative},
		{"Diff", evaluator.Derivative},
		{"indefinite-integral", evaluator.IndefiniteIntegral},
		{"integrate", evaluator.IndefiniteIntegral},
		{"Definite_Integral", evaluator.DefiniteIntegral},
		{"improper", evaluator.DefiniteIntegral},
		{"LIM", evaluator.Limit},
		{" simplify ", evaluator.Simplify},
	}
	for _, tt := range tests {
		got, err := evaluator.ParseOperation(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := evaluator.ParseOperation("solve")
	assert.True(t, errors.Is(err, evaluator.ErrUnknownOperation))
}

func TestOperation_Params(t *testing.T) {
	got := map[string][]string{}
	for _, op := range evaluator.Operations() {
		got[op.String()] = op.Params()
	}
	want := map[string][]string{
		"derivative":          {"variable"},
		"indefinite-integral": {"variable"},
		"definite-integral":   {"variable", "lower", "upper"},
		"limit":               {"variable", "point"},
		"simplify":            nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Params() mismatch (-want +got):\n%s", diff)
	}
}

func TestRequest_JSON(t *testing.T) {
	var req evaluator.Request
	err := json.Unmarshal([]byte(`{"operation":"lim","expression":"sin(x)/x","point":"0"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, evaluator.Limit, req.Operation)

	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"operation":"limit","expression":"sin(x)/x","point":"0"}`, string(out))

	err = json.Unmarshal([]byte(`{"operation":"solve","expression":"x"}`), &req)
	assert.ErrorIs(t, err, evaluator.ErrUnknownOperation)
}

func TestRequest_WithDefaults(t *testing.T) {
	got := evaluator.Request{Operation: evaluator.Limit, Expression: "x", Point: "oo"}.WithDefaults()
	want := evaluator.Request{
		Operation: evaluator.Limit, Expression: "x",
		Variable: "x", Lower: "0", Upper: "1", Point: "oo",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WithDefaults() mismatch (-want +got):\n%s", diff)
	}
}

func TestRequest_Validate(t *testing.T) {
	assert.ErrorIs(t, evaluator.Request{Operation: evaluator.Simplify, Expression: "  "}.Validate(), evaluator.ErrEmptyExpression)
	assert.ErrorIs(t, evaluator.Request{Expression: "x"}.Validate(), evaluator.ErrUnknownOperation)
	assert.NoError(t, evaluator.Request{Operation: evaluator.Simplify, Expression: "x"}.Validate())
}

func TestResult_OK(t *testing.T) {
	assert.True(t, evaluator.Result{Typeset: "1", Text: "1"}.OK())
	assert.False(t, evaluator.Result{Text: "computation error: boom"}.OK())
	assert.True(t, evaluator.Result{}.Empty())
}
