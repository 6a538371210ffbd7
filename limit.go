package gocalc

import (
	"fmt"
	"math"
)

// ============================================================
// Limits
// ============================================================

const maxLimitDepth = 6

// Limit computes lim_{varName -> point} expr, approaching from the right.
// Tries direct substitution, sign sampling for 1/0 forms, then L'Hôpital on
// 0/0 and ∞/∞ quotients and 0·∞ products.
func Limit(expr Expr, varName string, point Expr) (Expr, error) {
	return LimitDir(expr, varName, point, 1)
}

// LimitDir computes a one-sided limit: from the right for dir >= 0, from
// the left otherwise. At ±oo the direction is implied by the point.
func LimitDir(expr Expr, varName string, point Expr, dir int) (Expr, error) {
	expr, point = expr.Simplify(), point.Simplify()
	if dependsOn(point, varName) {
		return nil, fmt.Errorf("limit point %s depends on %s", point, varName)
	}
	if !determinate(point) {
		return nil, fmt.Errorf("invalid limit point %s", point)
	}
	if dir >= 0 {
		dir = 1
	} else {
		dir = -1
	}
	expr = resolveAbs(expr, varName, point, dir)
	if v, ok := limit(expr, varName, point, dir, maxLimitDepth); ok {
		return v, nil
	}
	return nil, fmt.Errorf("limit of %s as %s -> %s could not be determined", expr, varName, point)
}

func limit(e Expr, x string, p Expr, dir, depth int) (Expr, bool) {
	v := e.Sub(x, p).Simplify()
	if determinate(v) {
		return v, true
	}
	if isKind(v, complexInf) {
		if r, ok := signedInfinity(e, x, p, dir); ok {
			return r, true
		}
	}
	if depth == 0 {
		return nil, false
	}

	if num, den, ok := quotient(e); ok {
		if r, ok := lHopital(num, den, x, p, dir, depth); ok {
			return r, true
		}
	}
	if m, ok := e.(*Mul); ok {
		for _, q := range productQuotients(m, x, p) {
			if r, ok := lHopital(q[0], q[1], x, p, dir, depth); ok {
				return r, true
			}
		}
	}

	switch v := e.(type) {
	case *Add:
		parts := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			r, ok := limit(t, x, p, dir, depth-1)
			if !ok {
				return nil, false
			}
			parts[i] = r
		}
		if sum := AddOf(parts...); determinate(sum) {
			return sum, true
		}
		if IsInfinite(p) {
			return dominantFactor(v, x, p, dir, depth)
		}
	case *Mul:
		parts := make([]Expr, 0, len(v.factors))
		oscillating := false
		for _, f := range v.factors {
			r, ok := limit(f, x, p, dir, depth-1)
			if !ok {
				if !bounded(f) {
					return nil, false
				}
				oscillating = true
				continue
			}
			parts = append(parts, r)
		}
		prod := MulOf(parts...)
		if oscillating {
			// A bounded factor times something tending to zero.
			if isNumEqual(prod, 0) {
				return N(0), true
			}
			return nil, false
		}
		if determinate(prod) {
			return prod, true
		}
	case *Func:
		inner, ok := limit(v.arg, x, p, dir, depth-1)
		if !ok {
			return nil, false
		}
		if r := funcOf(v.name, inner).Simplify(); determinate(r) {
			return r, true
		}
	case *Pow:
		if dependsOn(v.exp, x) {
			// b**g = exp(g*log(b)) covers 1**oo, 0**0 and oo**0.
			inner, ok := limit(MulOf(v.exp, LogOf(v.base)), x, p, dir, depth-1)
			if !ok {
				return nil, false
			}
			if r := ExpOf(inner); determinate(r) {
				return r, true
			}
			return nil, false
		}
		base, ok := limit(v.base, x, p, dir, depth-1)
		if !ok {
			return nil, false
		}
		if r := PowOf(base, v.exp); determinate(r) {
			return r, true
		}
	}
	return nil, false
}

// bounded reports whether |e| stays below a constant for every real x.
func bounded(e Expr) bool {
	switch v := e.(type) {
	case *Num, *Constant:
		return true
	case *Func:
		switch v.name {
		case "sin", "cos", "atan", "tanh":
			return true
		}
	case *Mul:
		for _, f := range v.factors {
			if !bounded(f) {
				return false
			}
		}
		return true
	case *Pow:
		n, ok := v.exp.(*Num)
		return ok && n.IsInteger() && n.IsPositive() && bounded(v.base)
	}
	return false
}

// dominantFactor resolves ∞ - ∞ at an infinite point. Square roots of
// even-degree polynomials become x**n*sqrt(P/x**(2n)), then the highest
// power of x is factored out: sqrt(x**2 + x) - x = x*(sqrt(1 + 1/x) - 1).
func dominantFactor(a *Add, x string, p Expr, dir, depth int) (Expr, bool) {
	sign := int64(1)
	if isKind(p, negInf) {
		sign = -1
	}
	terms := make([]Expr, len(a.terms))
	changed := false
	top := int64(0)
	for i, t := range a.terms {
		terms[i] = t
		c, rest := splitCoeff(t)
		if pw, ok := rest.(*Pow); ok && pw.exp.Equal(F(1, 2)) {
			if q, ok := polyOf(pw.base, x); ok && q.degree() > 0 && q.degree()%2 == 0 && q.lead().Sign() > 0 {
				n := int64(q.degree() / 2)
				scaled := Expand(MulOf(pw.base, PowOf(S(x), N(-2*n))))
				terms[i] = MulOf(c, PowOf(MulOf(N(sign), S(x)), N(n)), SqrtOf(scaled))
				changed = true
			}
		}
		if k := powerOfX(terms[i], x); k > top {
			top = k
		}
	}
	if top > 0 {
		scaled := make([]Expr, len(terms))
		for i, t := range terms {
			scaled[i] = MulOf(t, PowOf(S(x), N(-top)))
		}
		return limit(&Mul{factors: []Expr{PowOf(S(x), N(top)), AddOf(scaled...)}}, x, p, dir, depth-1)
	}
	if changed {
		return limit(AddOf(terms...), x, p, dir, depth-1)
	}
	return nil, false
}

// powerOfX returns the integer power of x among the factors of a term.
func powerOfX(t Expr, x string) int64 {
	factors := []Expr{t}
	if m, ok := t.(*Mul); ok {
		factors = m.factors
	}
	var k int64
	for _, f := range factors {
		switch v := f.(type) {
		case *Sym:
			if v.name == x {
				k++
			}
		case *Pow:
			s, ok1 := v.base.(*Sym)
			n, ok2 := v.exp.(*Num)
			if ok1 && ok2 && s.name == x && n.IsInteger() && n.val.Num().IsInt64() {
				k += n.val.Num().Int64()
			}
		}
	}
	return k
}

// resolveAbs replaces each Abs(u) by u or -u according to the sign of u
// beside the limit point on the approach side.
func resolveAbs(e Expr, x string, p Expr, dir int) Expr {
	hasAbs := false
	walk(e, func(n Expr) bool {
		if f, ok := n.(*Func); ok && f.name == "Abs" {
			hasAbs = true
		}
		return !hasAbs
	})
	if !hasAbs {
		return e
	}
	var points []float64
	switch pv := p.Float(nil); {
	case math.IsNaN(pv):
		return e
	case math.IsInf(pv, 0):
		for _, t := range []float64{1e3, 1e6} {
			points = append(points, math.Copysign(t, pv))
		}
	default:
		for _, h := range []float64{1e-6, 1e-9} {
			points = append(points, pv+float64(dir)*h*math.Max(1, math.Abs(pv)))
		}
	}
	return transform(e, func(n Expr) Expr {
		f, ok := n.(*Func)
		if !ok || f.name != "Abs" || !dependsOn(f.arg, x) {
			return n
		}
		sign := 0
		for _, t := range points {
			v := f.arg.Float(map[string]float64{x: t})
			if math.IsNaN(v) || v == 0 {
				return n
			}
			s := 1
			if v < 0 {
				s = -1
			}
			if sign != 0 && s != sign {
				return n
			}
			sign = s
		}
		if sign > 0 {
			return f.arg
		}
		return MulOf(N(-1), f.arg)
	})
}

// lHopital applies L'Hôpital's rule when num/den is a 0/0 or ∞/∞ form.
func lHopital(num, den Expr, x string, p Expr, dir, depth int) (Expr, bool) {
	nv, ok1 := limit(num, x, p, dir, depth-1)
	dv, ok2 := limit(den, x, p, dir, depth-1)
	if !ok1 || !ok2 {
		return nil, false
	}
	zeroZero := isNumEqual(nv, 0) && isNumEqual(dv, 0)
	infInf := IsInfinite(nv) && IsInfinite(dv)
	if !zeroZero && !infInf {
		return nil, false
	}
	dd := Diff(den, x)
	if isNumEqual(dd, 0) {
		return nil, false
	}
	return limit(MulOf(Diff(num, x), PowOf(dd, N(-1))), x, p, dir, depth-1)
}

// quotient splits e into numerator and denominator when e has factors
// with negative exponents.
func quotient(e Expr) (Expr, Expr, bool) {
	var factors []Expr
	switch v := e.(type) {
	case *Mul:
		factors = v.factors
	case *Pow:
		factors = []Expr{v}
	default:
		return nil, nil, false
	}
	c, num, den := splitFraction(factors)
	if len(den) == 0 {
		return nil, nil, false
	}
	return MulOf(append([]Expr{c}, num...)...), MulOf(den...), true
}

// productQuotients rewrites a 0·∞ product as both f/(1/g) and g/(1/f).
func productQuotients(m *Mul, x string, p Expr) [][2]Expr {
	var zeros, infs, rest []Expr
	for _, f := range m.factors {
		v := f.Sub(x, p).Simplify()
		switch {
		case isNumEqual(v, 0):
			zeros = append(zeros, f)
		case IsInfinite(v):
			infs = append(infs, f)
		default:
			rest = append(rest, f)
		}
	}
	if len(zeros) == 0 || len(infs) == 0 {
		return nil
	}
	reciprocal := func(fs []Expr) Expr {
		out := make([]Expr, len(fs))
		for i, f := range fs {
			out[i] = PowOf(f, N(-1))
		}
		return MulOf(out...)
	}
	return [][2]Expr{
		{MulOf(append(append([]Expr{}, zeros...), rest...)...), reciprocal(infs)},
		{MulOf(append(append([]Expr{}, infs...), rest...)...), reciprocal(zeros)},
	}
}

// signedInfinity resolves a zoo substitution at a finite point by
// sampling the sign of e on the approach side.
func signedInfinity(e Expr, x string, p Expr, dir int) (Expr, bool) {
	pv := p.Float(nil)
	if math.IsNaN(pv) || math.IsInf(pv, 0) {
		return nil, false
	}
	sign := 0
	for _, h := range []float64{1e-4, 1e-6, 1e-8} {
		v := e.Float(map[string]float64{x: pv + float64(dir)*h})
		if math.IsNaN(v) || v == 0 {
			return nil, false
		}
		s := 1
		if v < 0 {
			s = -1
		}
		if sign != 0 && s != sign {
			return nil, false
		}
		sign = s
	}
	if sign > 0 {
		return Infinity, true
	}
	return NegInfinity, true
}
