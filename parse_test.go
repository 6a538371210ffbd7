package gocalc_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/njchilds90/gocalc"
)

func TestParse_Canonical(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x**2", "x**2"},
		{"x^2", "x**2"},
		{"2*x + 3", "2*x + 3"},
		{"-x**2", "-x**2"},
		{"2**-1", "1/2"},
		{"2**3**2", "512"},
		{"0.5*x", "x/2"},
		{"sin(x)/x", "sin(x)/x"},
		{"ln(x)", "log(x)"},
		{"sqrt(x)", "sqrt(x)"},
		{"abs(-x)", "Abs(x)"},
		{"log(8, 2)", "log(8)/log(2)"},
		{"  (x + 1) * 2 ", "2*(x + 1)"},
		{"pi", "pi"},
		{"oo", "oo"},
		{"E", "E"},
	}
	for _, c := range cases {
		e, err := gocalc.Parse(c.src)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", c.src, err)
			continue
		}
		if got := e.String(); got != c.want {
			t.Errorf("Parse(%q): want %s, got %s", c.src, c.want, got)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"", "empty expression"},
		{"   ", "empty expression"},
		{"(x", "expected ')'"},
		{"x +", "unexpected end of input"},
		{"foo(x)", `unknown function "foo"`},
		{"sin x", "needs parenthesized arguments"},
		{"sin(x, 2)", "takes 1 argument"},
		{"I*x", "complex numbers"},
		{"x $ 2", "unexpected"},
	}
	for _, c := range cases {
		_, err := gocalc.Parse(c.src)
		if err == nil {
			t.Errorf("Parse(%q): expected error", c.src)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("Parse(%q): error %q should contain %q", c.src, err, c.want)
		}
	}
}

func TestParse_ImplicitMultiplicationIsError(t *testing.T) {
	_, err := gocalc.Parse("2x+")
	var pe *gocalc.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if pe.Column != 2 {
		t.Errorf("want column 2, got %d", pe.Column)
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on a syntax error")
		}
	}()
	gocalc.MustParse("(")
}
