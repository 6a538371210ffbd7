package gocalc_test

import (
	"math"
	"testing"

	"github.com/njchilds90/gocalc"
)

var x = gocalc.S("x")

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := gocalc.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := gocalc.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	if got := gocalc.F(2, 5).LaTeX(); got != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", got)
	}
	if got := gocalc.F(-1, 2).LaTeX(); got != `-\frac{1}{2}` {
		t.Errorf("want -\\frac{1}{2}, got %s", got)
	}
}

func TestNum_Diff_IsZero(t *testing.T) {
	result := gocalc.N(5).Diff("x")
	if gocalc.String(result) != "0" {
		t.Errorf("d/dx(5) should be 0, got %s", gocalc.String(result))
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub_Match(t *testing.T) {
	result := x.Sub("x", gocalc.N(3))
	if gocalc.String(result) != "3" {
		t.Errorf("want 3, got %s", gocalc.String(result))
	}
}

func TestSym_Sub_NoMatch(t *testing.T) {
	result := x.Sub("y", gocalc.N(3))
	if gocalc.String(result) != "x" {
		t.Errorf("want x, got %s", gocalc.String(result))
	}
}

func TestSym_Float_Unbound(t *testing.T) {
	if v := x.Float(nil); !math.IsNaN(v) {
		t.Errorf("unbound symbol should evaluate to NaN, got %v", v)
	}
}

// ============================================================
// Add / Mul / Pow tests
// ============================================================

func TestAdd_LikeTerms(t *testing.T) {
	if got := gocalc.AddOf(x, x).String(); got != "2*x" {
		t.Errorf("x + x: want 2*x, got %s", got)
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	if got := gocalc.AddOf(x, gocalc.MulOf(gocalc.N(-1), x)).String(); got != "0" {
		t.Errorf("x - x: want 0, got %s", got)
	}
}

func TestAdd_TermOrder(t *testing.T) {
	e := gocalc.AddOf(gocalc.N(1), gocalc.MulOf(gocalc.N(2), x), gocalc.PowOf(x, gocalc.N(2)))
	if got := e.String(); got != "x**2 + 2*x + 1" {
		t.Errorf("want x**2 + 2*x + 1, got %s", got)
	}
}

func TestAdd_NegativeTerm(t *testing.T) {
	e := gocalc.AddOf(x, gocalc.MulOf(gocalc.N(-1), gocalc.SinOf(x)))
	if got := e.String(); got != "x - sin(x)" {
		t.Errorf("want x - sin(x), got %s", got)
	}
}

func TestMul_LikeBases(t *testing.T) {
	if got := gocalc.MulOf(x, x).String(); got != "x**2" {
		t.Errorf("x*x: want x**2, got %s", got)
	}
	if got := gocalc.MulOf(x, gocalc.PowOf(x, gocalc.N(-1))).String(); got != "1" {
		t.Errorf("x/x: want 1, got %s", got)
	}
}

func TestMul_ExpFold(t *testing.T) {
	e := gocalc.MulOf(gocalc.ExpOf(x), gocalc.ExpOf(gocalc.MulOf(gocalc.N(-1), x)))
	if got := e.String(); got != "1" {
		t.Errorf("exp(x)*exp(-x): want 1, got %s", got)
	}
}

func TestMul_QuotientForm(t *testing.T) {
	cases := []struct {
		e    gocalc.Expr
		want string
	}{
		{gocalc.PowOf(x, gocalc.N(-2)), "1/x**2"},
		{gocalc.MulOf(gocalc.N(-1), gocalc.PowOf(x, gocalc.N(-1))), "-1/x"},
		{gocalc.MulOf(gocalc.F(1, 2), x), "x/2"},
		{gocalc.MulOf(gocalc.SinOf(x), gocalc.PowOf(x, gocalc.N(-1))), "sin(x)/x"},
		{gocalc.MulOf(gocalc.N(2), gocalc.AddOf(x, gocalc.N(1))), "2*(x + 1)"},
	}
	for _, c := range cases {
		if got := c.e.String(); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

func TestMul_LaTeX_Fraction(t *testing.T) {
	e := gocalc.MulOf(gocalc.SinOf(x), gocalc.PowOf(x, gocalc.N(-1)))
	if got := e.LaTeX(); got != `\frac{\sin\left(x\right)}{x}` {
		t.Errorf("got %s", got)
	}
}

func TestPow_ExactRoots(t *testing.T) {
	if got := gocalc.SqrtOf(gocalc.N(4)).String(); got != "2" {
		t.Errorf("sqrt(4): want 2, got %s", got)
	}
	if got := gocalc.SqrtOf(gocalc.N(2)).String(); got != "sqrt(2)" {
		t.Errorf("sqrt(2): want sqrt(2), got %s", got)
	}
	if got := gocalc.PowOf(gocalc.N(2), gocalc.N(-1)).String(); got != "1/2" {
		t.Errorf("2**-1: want 1/2, got %s", got)
	}
}

func TestPow_RadicalCanonicalForm(t *testing.T) {
	tests := []struct{ in, want string }{
		{"sqrt(8)", "2*sqrt(2)"},
		{"sqrt(12)", "2*sqrt(3)"},
		{"8**(3/2)", "16*sqrt(2)"},
		{"(-8)**(1/3)", "-2"},
		{"(-2)**(1/3)", "-2**(1/3)"},
		{"sqrt(2)*sqrt(8)", "4"},
	}
	for _, tt := range tests {
		if got := gocalc.MustParse(tt.in).String(); got != tt.want {
			t.Errorf("%s: want %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestPow_EvenRootOfNegativeIsNaN(t *testing.T) {
	for _, src := range []string{"sqrt(-4)", "(-3)**(1/2)", "sqrt(-1)*x"} {
		if e := gocalc.MustParse(src); !gocalc.IsNaN(e) {
			t.Errorf("%s: want nan, got %s", src, e)
		}
	}
	if gocalc.IsNaN(gocalc.MustParse("sqrt(x)")) {
		t.Error("sqrt(x) must stay symbolic")
	}
}

func TestPow_LaTeX(t *testing.T) {
	if got := gocalc.PowOf(x, gocalc.N(2)).LaTeX(); got != "x^{2}" {
		t.Errorf("want x^{2}, got %s", got)
	}
	if got := gocalc.SqrtOf(x).LaTeX(); got != `\sqrt{x}` {
		t.Errorf("want \\sqrt{x}, got %s", got)
	}
}

func TestPow_Diff_PowerRule(t *testing.T) {
	if got := gocalc.Diff(gocalc.PowOf(x, gocalc.N(2)), "x").String(); got != "2*x" {
		t.Errorf("d/dx x**2: want 2*x, got %s", got)
	}
}

// ============================================================
// Infinity arithmetic
// ============================================================

func TestSpecial_Arithmetic(t *testing.T) {
	cases := []struct {
		name string
		e    gocalc.Expr
		want string
	}{
		{"oo + 1", gocalc.AddOf(gocalc.Infinity, gocalc.N(1)), "oo"},
		{"oo - oo", gocalc.AddOf(gocalc.Infinity, gocalc.NegInfinity), "nan"},
		{"0*oo", gocalc.MulOf(gocalc.N(0), gocalc.Infinity), "nan"},
		{"-2*oo", gocalc.MulOf(gocalc.N(-2), gocalc.Infinity), "-oo"},
		{"1/0", gocalc.PowOf(gocalc.N(0), gocalc.N(-1)), "zoo"},
		{"1/oo", gocalc.PowOf(gocalc.Infinity, gocalc.N(-1)), "0"},
		{"exp(-oo)", gocalc.ExpOf(gocalc.NegInfinity), "0"},
		{"atan(oo)", gocalc.AtanOf(gocalc.Infinity), "pi/2"},
		{"sin(oo)", gocalc.SinOf(gocalc.Infinity), "nan"},
		{"log(0)", gocalc.LogOf(gocalc.N(0)), "zoo"},
	}
	for _, c := range cases {
		if got := c.e.String(); got != c.want {
			t.Errorf("%s: want %s, got %s", c.name, c.want, got)
		}
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_SpecialValues(t *testing.T) {
	cases := []struct {
		name string
		e    gocalc.Expr
		want string
	}{
		{"sin(0)", gocalc.SinOf(gocalc.N(0)), "0"},
		{"cos(pi)", gocalc.CosOf(gocalc.Pi), "-1"},
		{"sin(pi/2)", gocalc.SinOf(gocalc.MulOf(gocalc.F(1, 2), gocalc.Pi)), "1"},
		{"log(E)", gocalc.LogOf(gocalc.E), "1"},
		{"exp(log(x))", gocalc.ExpOf(gocalc.LogOf(x)), "x"},
		{"cos(-x)", gocalc.CosOf(gocalc.MulOf(gocalc.N(-1), x)), "cos(x)"},
		{"sin(-x)", gocalc.SinOf(gocalc.MulOf(gocalc.N(-1), x)), "-sin(x)"},
		{"sin(2)", gocalc.SinOf(gocalc.N(2)), "sin(2)"},
	}
	for _, c := range cases {
		if got := c.e.String(); got != c.want {
			t.Errorf("%s: want %s, got %s", c.name, c.want, got)
		}
	}
}

func TestFunc_Diff(t *testing.T) {
	cases := []struct {
		e    gocalc.Expr
		want string
	}{
		{gocalc.SinOf(x), "cos(x)"},
		{gocalc.CosOf(x), "-sin(x)"},
		{gocalc.LogOf(x), "1/x"},
		{gocalc.ExpOf(gocalc.MulOf(gocalc.N(2), x)), "2*exp(2*x)"},
		{gocalc.MulOf(x, gocalc.SinOf(x)), "x*cos(x) + sin(x)"},
	}
	for _, c := range cases {
		if got := gocalc.Diff(c.e, "x").String(); got != c.want {
			t.Errorf("d/dx %s: want %s, got %s", c.e, c.want, got)
		}
	}
}

func TestFunc_LaTeX(t *testing.T) {
	if got := gocalc.SinOf(x).LaTeX(); got != `\sin\left(x\right)` {
		t.Errorf("got %s", got)
	}
	if got := gocalc.AbsOf(x).LaTeX(); got != `\left|x\right|` {
		t.Errorf("got %s", got)
	}
}

func TestFloat(t *testing.T) {
	e := gocalc.AddOf(gocalc.PowOf(x, gocalc.N(2)), gocalc.N(1))
	if v := e.Float(map[string]float64{"x": 2}); v != 5 {
		t.Errorf("want 5, got %v", v)
	}
}

func TestFreeSymbols(t *testing.T) {
	e := gocalc.AddOf(x, gocalc.MulOf(gocalc.S("y"), gocalc.Pi))
	syms := gocalc.FreeSymbols(e)
	if len(syms) != 2 {
		t.Fatalf("want 2 symbols, got %d", len(syms))
	}
	for _, name := range []string{"x", "y"} {
		if _, ok := syms[name]; !ok {
			t.Errorf("missing symbol %s", name)
		}
	}
}
