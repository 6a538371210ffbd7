// Package gocalc provides a deterministic symbolic kernel for
// single-variable calculus.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Deterministic simplification and stable output
//   - Python-style string form ("x**2") and LaTeX output for every expression
//   - Errors, not panics, for anything a user can type
package gocalc

import (
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is a node of a symbolic expression tree. Values are immutable;
// every operation returns a new tree.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	// Float evaluates the expression numerically. Symbols missing from env
	// evaluate to NaN.
	Float(env map[string]float64) float64
	Equal(other Expr) bool
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// F returns the rational p/q. It panics when q is zero.
func F(p, q int64) *Num {
	if q == 0 {
		panic("gocalc: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

func newNum(r *big.Rat) *Num { return &Num{val: r} }

func (n *Num) Simplify() Expr                 { return n }
func (n *Num) Sub(string, Expr) Expr          { return n }
func (n *Num) Diff(string) Expr               { return N(0) }
func (n *Num) Float(map[string]float64) float64 { f, _ := n.val.Float64(); return f }
func (n *Num) Equal(other Expr) bool          { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) IsZero() bool                   { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool                    { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool                 { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool                { return n.val.IsInt() }
func (n *Num) IsNegative() bool               { return n.val.Sign() < 0 }
func (n *Num) IsPositive() bool               { return n.val.Sign() > 0 }
func (n *Num) Rat() *big.Rat                  { return new(big.Rat).Set(n.val) }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func numAdd(a, b *Num) *Num { return newNum(new(big.Rat).Add(a.val, b.val)) }
func numMul(a, b *Num) *Num { return newNum(new(big.Rat).Mul(a.val, b.val)) }
func numNeg(a *Num) *Num    { return newNum(new(big.Rat).Neg(a.val)) }

// numRecip panics on zero; callers check first.
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("gocalc: division by zero")
	}
	return newNum(new(big.Rat).Inv(a.val))
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(big.NewRat(v, 1)) == 0
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) LaTeX() string         { return s.name }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }

func (s *Sym) Float(env map[string]float64) float64 {
	if v, ok := env[s.name]; ok {
		return v
	}
	return math.NaN()
}

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value.Simplify()
	}
	return s
}

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Constant: pi and E
// ============================================================

type Constant struct {
	name  string
	latex string
	value float64
}

var (
	Pi = &Constant{name: "pi", latex: `\pi`, value: math.Pi}
	E  = &Constant{name: "E", latex: "e", value: math.E}
)

func (c *Constant) Simplify() Expr                   { return c }
func (c *Constant) String() string                   { return c.name }
func (c *Constant) LaTeX() string                    { return c.latex }
func (c *Constant) Sub(string, Expr) Expr            { return c }
func (c *Constant) Diff(string) Expr                 { return N(0) }
func (c *Constant) Float(map[string]float64) float64 { return c.value }
func (c *Constant) Equal(other Expr) bool            { o, ok := other.(*Constant); return ok && c.name == o.name }

// ============================================================
// Special: infinities and undefined values
// ============================================================

type specialKind int

const (
	posInf specialKind = iota
	negInf
	complexInf
	notANumber
)

type Special struct{ kind specialKind }

var (
	Infinity        = &Special{kind: posInf}
	NegInfinity     = &Special{kind: negInf}
	ComplexInfinity = &Special{kind: complexInf}
	NaN             = &Special{kind: notANumber}
)

func (s *Special) Simplify() Expr        { return s }
func (s *Special) Sub(string, Expr) Expr { return s }
func (s *Special) Diff(string) Expr      { return N(0) }
func (s *Special) Equal(other Expr) bool { o, ok := other.(*Special); return ok && s.kind == o.kind }

func (s *Special) String() string {
	switch s.kind {
	case posInf:
		return "oo"
	case negInf:
		return "-oo"
	case complexInf:
		return "zoo"
	}
	return "nan"
}

func (s *Special) LaTeX() string {
	switch s.kind {
	case posInf:
		return `\infty`
	case negInf:
		return `-\infty`
	case complexInf:
		return `\tilde{\infty}`
	}
	return `\mathrm{NaN}`
}

func (s *Special) Float(map[string]float64) float64 {
	switch s.kind {
	case posInf:
		return math.Inf(1)
	case negInf:
		return math.Inf(-1)
	}
	return math.NaN()
}

func (s *Special) negate() *Special {
	switch s.kind {
	case posInf:
		return NegInfinity
	case negInf:
		return Infinity
	}
	return s
}

func isKind(e Expr, kind specialKind) bool {
	s, ok := e.(*Special)
	return ok && s.kind == kind
}

// IsInfinite reports whether e is oo, -oo or zoo.
func IsInfinite(e Expr) bool {
	s, ok := e.(*Special)
	return ok && s.kind != notANumber
}

// IsFinite reports whether e contains no special values and evaluates to
// a finite real number.
func IsFinite(e Expr) bool {
	found := false
	walk(e, func(n Expr) bool {
		if _, ok := n.(*Special); ok {
			found = true
		}
		return !found
	})
	if found {
		return false
	}
	if len(FreeSymbols(e)) > 0 {
		return true
	}
	f := e.Float(nil)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsNaN reports whether e holds nan anywhere, as produced by an even root
// of a negative number or another operation with no real value.
func IsNaN(e Expr) bool {
	found := false
	walk(e, func(n Expr) bool {
		found = isKind(n, notANumber)
		return !found
	})
	return found
}

// determinate reports whether e holds neither nan nor zoo anywhere.
func determinate(e Expr) bool {
	ok := true
	walk(e, func(n Expr) bool {
		if isKind(n, notANumber) || isKind(n, complexInf) {
			ok = false
		}
		return ok
	})
	return ok
}

// ============================================================
// Traversal
// ============================================================

// walk visits e and its children depth-first until fn returns false.
func walk(e Expr, fn func(Expr) bool) bool {
	if !fn(e) {
		return false
	}
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if !walk(t, fn) {
				return false
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if !walk(f, fn) {
				return false
			}
		}
	case *Pow:
		return walk(v.base, fn) && walk(v.exp, fn)
	case *Func:
		return walk(v.arg, fn)
	}
	return true
}

// transform rebuilds e bottom-up, replacing each node with fn(node) once
// its children have been rebuilt.
func transform(e Expr, fn func(Expr) Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = transform(t, fn)
		}
		return fn(AddOf(terms...))
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = transform(f, fn)
		}
		return fn(MulOf(factors...))
	case *Pow:
		return fn(PowOf(transform(v.base, fn), transform(v.exp, fn)))
	case *Func:
		return fn(funcOf(v.name, transform(v.arg, fn)).Simplify())
	}
	return fn(e)
}

// FreeSymbols returns the set of symbol names in e.
func FreeSymbols(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	walk(e, func(n Expr) bool {
		if s, ok := n.(*Sym); ok {
			out[s.name] = struct{}{}
		}
		return true
	})
	return out
}

func dependsOn(e Expr, varName string) bool {
	found := false
	walk(e, func(n Expr) bool {
		if s, ok := n.(*Sym); ok && s.name == varName {
			found = true
		}
		return !found
	})
	return found
}

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}
