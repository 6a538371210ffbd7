package evaluator_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalc/internal/evaluator"
)

func newEvaluator() *evaluator.Evaluator {
	return evaluator.New(zerolog.Nop())
}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		req    evaluator.Request
		want   evaluator.Result
		suffix string
	}{
		{
			name: "derivative",
			req:  evaluator.Request{Operation: evaluator.Derivative, Expression: "x**2", Variable: "x"},
			want: evaluator.Result{
				Typeset: `\frac{\mathrm{d}}{\mathrm{d}x}\left(x^{2}\right) = 2 x`,
				Text:    "d/dx (x^2) = 2*x",
			},
		},
		{
			name: "indefinite integral has no constant",
			req:  evaluator.Request{Operation: evaluator.IndefiniteIntegral, Expression: "cos(x)", Variable: "x"},
			want: evaluator.Result{
				Typeset: `\int \cos\left(x\right) \, \mathrm{d}x = \sin\left(x\right)`,
				Text:    "∫ cos(x) dx = sin(x)",
			},
		},
		{
			name: "improper integral",
			req: evaluator.Request{
				Operation: evaluator.DefiniteIntegral, Expression: "1/x**2",
				Variable: "x", Lower: "1", Upper: "oo",
			},
			want: evaluator.Result{
				Typeset: `\int_{1}^{\infty} \frac{1}{x^{2}} \, \mathrm{d}x = 1`,
				Text:    "∫_1^∞ 1/x^2 dx = 1",
			},
		},
		{
			name: "limit",
			req:  evaluator.Request{Operation: evaluator.Limit, Expression: "sin(x)/x", Variable: "x", Point: "0"},
			want: evaluator.Result{
				Typeset: `\lim_{x \to 0} \frac{\sin\left(x\right)}{x} = 1`,
				Text:    "lim_{x->0} (sin(x)/x) = 1",
			},
		},
		{
			name: "simplify",
			req:  evaluator.Request{Operation: evaluator.Simplify, Expression: "sin(x)**2 + cos(x)**2"},
			want:   evaluator.Result{Text: "sin(x)^2 + cos(x)^2 = 1"},
			suffix: " = 1",
		},
	}

	ev := newEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ev.Evaluate(tt.req)
			require.True(t, got.OK(), "result: %+v", got)
			if tt.want.Typeset != "" {
				assert.Equal(t, tt.want.Typeset, got.Typeset)
			}
			assert.Equal(t, tt.want.Text, got.Text)
			assert.True(t, strings.HasSuffix(got.Typeset, tt.suffix), got.Typeset)
		})
	}
}

func TestEvaluate_DerivativeTypeset(t *testing.T) {
	got := newEvaluator().Evaluate(evaluator.Request{Operation: evaluator.Derivative, Expression: "x**2"})
	require.True(t, got.OK())
	assert.True(t, strings.HasPrefix(got.Typeset, `\frac{\mathrm{d}}{\mathrm{d}x}\left(x^{2}\right) = `))
}

func TestEvaluate_NoPowerTokenInText(t *testing.T) {
	ev := newEvaluator()
	for _, op := range evaluator.Operations() {
		req := evaluator.Request{Operation: op, Expression: "x**3 + x**2", Point: "1"}
		got := ev.Evaluate(req)
		require.True(t, got.OK(), "%s: %s", op, got.Text)
		assert.NotEmpty(t, got.Typeset)
		assert.NotContains(t, got.Text, "**", "%s", op)
	}
}

func TestEvaluate_ParseFailure(t *testing.T) {
	ev := newEvaluator()
	for _, op := range evaluator.Operations() {
		got := ev.Evaluate(evaluator.Request{Operation: op, Expression: "2x+"})
		assert.Empty(t, got.Typeset, "%s", op)
		assert.True(t, strings.HasPrefix(got.Text, "computation error: "), "%s: %q", op, got.Text)
	}
}

func TestEvaluate_Failures(t *testing.T) {
	tests := []struct {
		name string
		req  evaluator.Request
		want string
	}{
		{"unknown operation", evaluator.Request{Expression: "x"}, "unknown operation"},
		{"bad variable", evaluator.Request{Operation: evaluator.Derivative, Expression: "x", Variable: "pi"}, `invalid variable "pi"`},
		{"bad bound", evaluator.Request{Operation: evaluator.DefiniteIntegral, Expression: "x", Upper: "(1"}, "upper bound"},
		{"no antiderivative", evaluator.Request{Operation: evaluator.IndefiniteIntegral, Expression: "exp(x**2)"}, "cannot integrate"},
		{"oscillating limit", evaluator.Request{Operation: evaluator.Limit, Expression: "sin(1/x)"}, "could not be determined"},
		{"even root of negative", evaluator.Request{Operation: evaluator.Simplify, Expression: "sqrt(-4)"}, "sqrt(-4) has no real value"},
		{"divergent across a pole", evaluator.Request{Operation: evaluator.DefiniteIntegral, Expression: "1/(x - 1/3)"}, "does not converge"},
	}
	ev := newEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ev.Evaluate(tt.req)
			assert.False(t, got.OK())
			assert.Contains(t, got.Text, "computation error: ")
			assert.Contains(t, got.Text, tt.want)
		})
	}
}

func TestEvaluate_RationalAndOneSided(t *testing.T) {
	ev := newEvaluator()
	tests := []struct {
		req  evaluator.Request
		want string
	}{
		{evaluator.Request{Operation: evaluator.Simplify, Expression: "(x**2 - 1)/(x - 1)"}, "(x^2 - 1)/(x - 1) = x + 1"},
		{evaluator.Request{Operation: evaluator.Limit, Expression: "Abs(x)/x", Point: "0"}, "lim_{x->0} (Abs(x)/x) = 1"},
		{evaluator.Request{Operation: evaluator.Simplify, Expression: "sqrt(8)"}, "sqrt(8) = 2*sqrt(2)"},
	}
	for _, tt := range tests {
		got := ev.Evaluate(tt.req)
		require.True(t, got.OK(), got.Text)
		assert.Equal(t, tt.want, got.Text)
	}
}

func TestEvaluate_Defaults(t *testing.T) {
	// lower 0 and upper 1 are filled in
	got := newEvaluator().Evaluate(evaluator.Request{Operation: evaluator.DefiniteIntegral, Expression: "x"})
	require.True(t, got.OK(), got.Text)
	assert.Equal(t, "∫_0^1 x dx = 1/2", got.Text)
}

func TestRender(t *testing.T) {
	ev := newEvaluator()

	got := ev.Render("x**2 + 1")
	want := evaluator.Result{Typeset: "x^{2} + 1", Text: "expression: x^2 + 1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}

	bad := ev.Render("(x")
	assert.Empty(t, bad.Typeset)
	assert.True(t, strings.HasPrefix(bad.Text, "render error: "))
}
