package gocalc

import (
	"math"
	"math/big"
)

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LogOf(arg Expr) Expr  { return funcOf("log", arg).Simplify() }
func AbsOf(arg Expr) Expr  { return funcOf("Abs", arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }

var (
	oddFuncs  = map[string]bool{"sin": true, "tan": true, "asin": true, "atan": true, "sinh": true, "tanh": true}
	evenFuncs = map[string]bool{"cos": true, "cosh": true, "Abs": true}
)

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if sp, ok := arg.(*Special); ok {
		return funcAtSpecial(f.name, sp)
	}
	if neg, ok := negateTerm(arg); ok {
		switch {
		case oddFuncs[f.name]:
			return MulOf(N(-1), funcOf(f.name, neg).Simplify())
		case evenFuncs[f.name]:
			return funcOf(f.name, neg).Simplify()
		}
	}
	if v, ok := specialValue(f.name, arg); ok {
		return v
	}
	return &Func{name: f.name, arg: arg}
}

const signTolerance = 1e-12

// specialValue returns exact values at well-known points. Other numeric
// arguments stay symbolic.
func specialValue(name string, arg Expr) (Expr, bool) {
	switch name {
	case "sin":
		if k, ok := twelfthsOfPi(arg); ok {
			return sinOfTwelfths(k)
		}
	case "cos":
		if k, ok := twelfthsOfPi(arg); ok {
			return sinOfTwelfths(k + 6)
		}
	case "tan":
		if k, ok := twelfthsOfPi(arg); ok {
			s, ok1 := sinOfTwelfths(k)
			c, ok2 := sinOfTwelfths(k + 6)
			if ok1 && ok2 {
				if isNumEqual(c, 0) {
					return ComplexInfinity, true
				}
				return MulOf(s, PowOf(c, N(-1))), true
			}
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1), true
		}
		if isNumEqual(arg, 1) {
			return E, true
		}
		// exp(c*log(u)) = u**c
		c, rest := splitCoeff(arg)
		if inner, ok := rest.(*Func); ok && inner.name == "log" {
			return PowOf(inner.arg, c), true
		}
	case "log":
		switch {
		case isNumEqual(arg, 0):
			return ComplexInfinity, true
		case isNumEqual(arg, 1):
			return N(0), true
		case arg == Expr(E):
			return N(1), true
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg, true
		}
	case "asin":
		switch {
		case isNumEqual(arg, 0):
			return N(0), true
		case isNumEqual(arg, 1):
			return MulOf(F(1, 2), Pi), true
		}
	case "acos":
		switch {
		case isNumEqual(arg, 1):
			return N(0), true
		case isNumEqual(arg, 0):
			return MulOf(F(1, 2), Pi), true
		case isNumEqual(arg, -1):
			return Pi, true
		}
	case "atan":
		switch {
		case isNumEqual(arg, 0):
			return N(0), true
		case isNumEqual(arg, 1):
			return MulOf(F(1, 4), Pi), true
		}
	case "sinh", "tanh":
		if isNumEqual(arg, 0) {
			return N(0), true
		}
	case "cosh":
		if isNumEqual(arg, 0) {
			return N(1), true
		}
	case "Abs":
		switch v := arg.(type) {
		case *Num, *Constant:
			return v, true
		case *Func:
			if v.name == "Abs" || v.name == "exp" {
				return v, true
			}
		}
		// Closed-form numbers resolve by sign: Abs(cos(2)) = -cos(2).
		if len(FreeSymbols(arg)) == 0 {
			switch f := arg.Float(nil); {
			case f > signTolerance:
				return arg, true
			case f < -signTolerance:
				return MulOf(N(-1), arg), true
			}
		}
	}
	return nil, false
}

// twelfthsOfPi reports arg as k*pi/12 with 0 <= k < 24.
func twelfthsOfPi(arg Expr) (int, bool) {
	var c *big.Rat
	switch v := arg.(type) {
	case *Num:
		if !v.IsZero() {
			return 0, false
		}
		c = new(big.Rat)
	case *Constant:
		if v != Pi {
			return 0, false
		}
		c = big.NewRat(1, 1)
	case *Mul:
		coeff, rest := splitCoeff(v)
		if rest != Expr(Pi) {
			return 0, false
		}
		c = coeff.Rat()
	default:
		return 0, false
	}
	t := new(big.Rat).Mul(c, big.NewRat(12, 1))
	if !t.IsInt() {
		return 0, false
	}
	k := new(big.Int).Mod(t.Num(), big.NewInt(24))
	return int(k.Int64()), true
}

func sinOfTwelfths(k int) (Expr, bool) {
	k %= 24
	sign := int64(1)
	if k >= 12 {
		k -= 12
		sign = -1
	}
	if k > 6 {
		k = 12 - k
	}
	var v Expr
	switch k {
	case 0:
		return N(0), true
	case 2:
		v = F(1, 2)
	case 3:
		v = MulOf(F(1, 2), SqrtOf(N(2)))
	case 4:
		v = MulOf(F(1, 2), SqrtOf(N(3)))
	case 6:
		v = N(1)
	default:
		return nil, false
	}
	return MulOf(N(sign), v), true
}

func funcAtSpecial(name string, sp *Special) Expr {
	if sp.kind == notANumber {
		return NaN
	}
	if sp.kind == complexInf {
		switch name {
		case "Abs":
			return Infinity
		case "log":
			return ComplexInfinity
		}
		return NaN
	}
	pos := sp.kind == posInf
	switch name {
	case "exp":
		if pos {
			return Infinity
		}
		return N(0)
	case "log", "cosh", "Abs":
		return Infinity
	case "sinh":
		return sp
	case "atan":
		if pos {
			return MulOf(F(1, 2), Pi)
		}
		return MulOf(F(-1, 2), Pi)
	case "tanh":
		if pos {
			return N(1)
		}
		return N(-1)
	}
	return NaN
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "log", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "Abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "log":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	case "Abs":
		outer = MulOf(f.arg, PowOf(AbsOf(f.arg), N(-1)))
	default:
		return NaN
	}
	return MulOf(outer, du)
}

func (f *Func) Float(env map[string]float64) float64 {
	v := f.arg.Float(env)
	switch f.name {
	case "sin":
		return math.Sin(v)
	case "cos":
		return math.Cos(v)
	case "tan":
		return math.Tan(v)
	case "exp":
		return math.Exp(v)
	case "log":
		return math.Log(v)
	case "Abs":
		return math.Abs(v)
	case "asin":
		return math.Asin(v)
	case "acos":
		return math.Acos(v)
	case "atan":
		return math.Atan(v)
	case "sinh":
		return math.Sinh(v)
	case "cosh":
		return math.Cosh(v)
	case "tanh":
		return math.Tanh(v)
	}
	return math.NaN()
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }
