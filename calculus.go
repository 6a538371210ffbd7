package gocalc

import (
	"fmt"
	"math"
	"sort"
)

// ============================================================
// Integration (rule-based)
// ============================================================

const (
	maxIntegrateDepth = 6
	singularityGrid   = 64
)

// Integrate computes an antiderivative of expr with respect to varName.
// No constant of integration is added.
func Integrate(expr Expr, varName string) (Expr, error) {
	e := expr.Simplify()
	if !determinate(e) {
		return nil, fmt.Errorf("cannot integrate undefined expression %s", e)
	}
	res, ok := integrate(e, varName, 0)
	if !ok {
		return nil, fmt.Errorf("cannot integrate %s with respect to %s", e, varName)
	}
	return res.Simplify(), nil
}

// integrate tries the table rules first and falls back to partial
// fractions for quotients of polynomials.
func integrate(e Expr, x string, depth int) (Expr, bool) {
	if r, ok := integrateRules(e, x, depth); ok {
		return r, true
	}
	return integrateRational(e, x)
}

func integrateRules(e Expr, x string, depth int) (Expr, bool) {
	if depth > maxIntegrateDepth {
		return nil, false
	}
	if !dependsOn(e, x) {
		return MulOf(e, S(x)), true
	}
	switch v := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(v, N(2))), true
	case *Add:
		parts := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			r, ok := integrate(t, x, depth)
			if !ok {
				return nil, false
			}
			parts[i] = r
		}
		return AddOf(parts...), true
	case *Mul:
		return integrateProduct(v, x, depth)
	case *Pow:
		return integratePow(v, x)
	case *Func:
		return integrateFunc(v, x)
	}
	return nil, false
}

func integrateProduct(m *Mul, x string, depth int) (Expr, bool) {
	var constant, variable []Expr
	for _, f := range m.factors {
		if dependsOn(f, x) {
			variable = append(variable, f)
		} else {
			constant = append(constant, f)
		}
	}
	c := MulOf(constant...)
	if len(variable) == 1 {
		r, ok := integrate(variable[0], x, depth)
		if !ok {
			return nil, false
		}
		return MulOf(c, r), true
	}
	if r, ok := integrateSubstitution(variable, x); ok {
		return MulOf(c, r), true
	}
	if r, ok := integrateByParts(variable, x, depth); ok {
		return MulOf(c, r), true
	}
	if expanded := Expand(m); !expanded.Equal(m) {
		if r, ok := integrate(expanded, x, depth+1); ok {
			return r, true
		}
	}
	return nil, false
}

// integrateSubstitution handles k*w'(x)*g(w(x)) where g has a known
// antiderivative, including g(w) = w itself.
func integrateSubstitution(factors []Expr, x string) (Expr, bool) {
	for i, g := range factors {
		rest := make([]Expr, 0, len(factors)-1)
		for j, f := range factors {
			if j != i {
				rest = append(rest, f)
			}
		}
		other := MulOf(rest...)

		// u = g: ∫ g' g = g**2/2
		if dg := Diff(g, x); !isNumEqual(dg, 0) {
			if k := MulOf(other, PowOf(dg, N(-1))); !dependsOn(k, x) {
				return MulOf(k, F(1, 2), PowOf(g, N(2))), true
			}
		}

		var w, anti Expr
		switch v := g.(type) {
		case *Func:
			a, ok := antiderivative(v.name, v.arg)
			if !ok {
				continue
			}
			w, anti = v.arg, a
		case *Pow:
			if dependsOn(v.exp, x) {
				continue
			}
			w = v.base
			if isNumEqual(v.exp, -1) {
				anti = LogOf(w)
			} else {
				n1 := AddOf(v.exp, N(1))
				anti = MulOf(PowOf(n1, N(-1)), PowOf(w, n1))
			}
		default:
			continue
		}
		dw := Diff(w, x)
		if isNumEqual(dw, 0) {
			continue
		}
		if k := MulOf(other, PowOf(dw, N(-1))); !dependsOn(k, x) {
			return MulOf(k, anti), true
		}
	}
	return nil, false
}

// integrateByParts applies ∫u dv = u*v - ∫v du to two-factor products
// where u is a monomial against exp/sin/cos, or a log/inverse-trig
// function against a power of x.
func integrateByParts(factors []Expr, x string, depth int) (Expr, bool) {
	if len(factors) != 2 {
		return nil, false
	}
	for _, order := range [][2]int{{0, 1}, {1, 0}} {
		u, dv := factors[order[0]], factors[order[1]]
		if !preferAsU(u, dv, x) {
			continue
		}
		v, ok := integrate(dv, x, depth+1)
		if !ok {
			continue
		}
		rest, ok := integrate(MulOf(Diff(u, x), v), x, depth+1)
		if !ok {
			continue
		}
		return AddOf(MulOf(u, v), MulOf(N(-1), rest)), true
	}
	return nil, false
}

func preferAsU(u, dv Expr, x string) bool {
	if isMonomial(u, x) {
		if f, ok := dv.(*Func); ok {
			switch f.name {
			case "exp", "sin", "cos", "sinh", "cosh":
				_, _, linearArg := linear(f.arg, x)
				return linearArg
			}
		}
		return false
	}
	if f, ok := u.(*Func); ok {
		switch f.name {
		case "log", "atan", "asin", "acos":
			_, _, linearArg := linear(f.arg, x)
			return linearArg && isPowerOf(dv, x)
		}
	}
	return false
}

func isMonomial(e Expr, x string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == x
	case *Pow:
		s, ok := v.base.(*Sym)
		n, isNum := v.exp.(*Num)
		return ok && s.name == x && isNum && n.IsInteger() && n.IsPositive()
	}
	return false
}

func isPowerOf(e Expr, x string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == x
	case *Pow:
		s, ok := v.base.(*Sym)
		_, isNum := v.exp.(*Num)
		return ok && s.name == x && isNum && !isNumEqual(v.exp, -1)
	}
	return false
}

func integratePow(p *Pow, x string) (Expr, bool) {
	base, exp := p.base, p.exp
	if !dependsOn(exp, x) {
		if a, _, ok := linear(base, x); ok {
			if isNumEqual(exp, -1) {
				return MulOf(PowOf(a, N(-1)), LogOf(base)), true
			}
			n1 := AddOf(exp, N(1))
			return MulOf(PowOf(MulOf(a, n1), N(-1)), PowOf(base, n1)), true
		}
		qa, qb, qc, ok := quadratic(base, x)
		if !ok || !isNumEqual(qb, 0) {
			return nil, false
		}
		an, ok1 := qa.(*Num)
		cn, ok2 := qc.(*Num)
		if !ok1 || !ok2 {
			return nil, false
		}
		switch {
		case isNumEqual(exp, -1) && an.IsPositive() && cn.IsPositive():
			// 1/(a*x**2 + c) = atan(x*sqrt(a/c))/sqrt(a*c)
			return MulOf(
				PowOf(numMul(an, cn), F(-1, 2)),
				AtanOf(MulOf(S(x), PowOf(numMul(an, numRecip(cn)), F(1, 2)))),
			), true
		case exp.Equal(F(-1, 2)) && an.IsNegative() && cn.IsPositive():
			// 1/sqrt(c - a*x**2) = asin(x*sqrt(a/c))/sqrt(a)
			pa := numNeg(an)
			return MulOf(
				PowOf(pa, F(-1, 2)),
				AsinOf(MulOf(S(x), PowOf(numMul(pa, numRecip(cn)), F(1, 2)))),
			), true
		}
		return nil, false
	}
	if !dependsOn(base, x) {
		if a, _, ok := linear(exp, x); ok {
			return MulOf(PowOf(MulOf(a, LogOf(base)), N(-1)), p), true
		}
	}
	return nil, false
}

func integrateFunc(f *Func, x string) (Expr, bool) {
	a, _, ok := linear(f.arg, x)
	if !ok {
		return nil, false
	}
	anti, ok := antiderivative(f.name, f.arg)
	if !ok {
		return nil, false
	}
	return MulOf(PowOf(a, N(-1)), anti), true
}

// antiderivative returns G(u) with G' = g for the named function g.
func antiderivative(name string, u Expr) (Expr, bool) {
	switch name {
	case "sin":
		return MulOf(N(-1), CosOf(u)), true
	case "cos":
		return SinOf(u), true
	case "tan":
		return MulOf(N(-1), LogOf(CosOf(u))), true
	case "exp":
		return ExpOf(u), true
	case "log":
		return AddOf(MulOf(u, LogOf(u)), MulOf(N(-1), u)), true
	case "sinh":
		return CoshOf(u), true
	case "cosh":
		return SinhOf(u), true
	case "tanh":
		return LogOf(CoshOf(u)), true
	case "atan":
		return AddOf(MulOf(u, AtanOf(u)), MulOf(F(-1, 2), LogOf(AddOf(PowOf(u, N(2)), N(1))))), true
	case "asin":
		return AddOf(MulOf(u, AsinOf(u)), SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))))), true
	case "acos":
		return AddOf(MulOf(u, AcosOf(u)), MulOf(N(-1), SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2))))))), true
	}
	return nil, false
}

// linear reports e = a*x + b with a, b free of x and a != 0.
func linear(e Expr, x string) (a, b Expr, ok bool) {
	d := Diff(e, x)
	if dependsOn(d, x) || isNumEqual(d, 0) {
		return nil, nil, false
	}
	b = AddOf(e, MulOf(N(-1), d, S(x)))
	if dependsOn(b, x) {
		return nil, nil, false
	}
	return d, b, true
}

// quadratic reports e = a*x**2 + b*x + c with a != 0.
func quadratic(e Expr, x string) (a, b, c Expr, ok bool) {
	d1 := Diff(e, x)
	d2 := Diff(d1, x)
	if dependsOn(d2, x) || isNumEqual(d2, 0) {
		return nil, nil, nil, false
	}
	return MulOf(F(1, 2), d2), Sub(d1, x, N(0)), Sub(e, x, N(0)), true
}

// ============================================================
// Definite and improper integrals
// ============================================================

// IntegrateDefinite evaluates the integral of expr from lower to upper.
// The interval is split at the integrand's interior poles and every piece
// is resolved with one-sided limits, so infinite bounds and singular
// endpoints are handled alike. A divergent integral yields oo, -oo or a
// "does not converge" error when the pieces disagree.
func IntegrateDefinite(expr Expr, varName string, lower, upper Expr) (Expr, error) {
	expr, lower, upper = expr.Simplify(), lower.Simplify(), upper.Simplify()
	for _, b := range []Expr{lower, upper} {
		if dependsOn(b, varName) {
			return nil, fmt.Errorf("integration bound %s depends on %s", b, varName)
		}
		if !determinate(b) {
			return nil, fmt.Errorf("invalid integration bound %s", b)
		}
	}
	if lower.Equal(upper) {
		return N(0), nil
	}
	expr = Cancel(expr)
	anti, err := Integrate(expr, varName)
	if err != nil {
		return nil, err
	}

	lf, uf := lower.Float(nil), upper.Float(nil)
	switch {
	case math.IsNaN(lf) || math.IsNaN(uf):
		// Symbolic bounds: no ordering to split on.
		return evaluateBetween(anti, varName, lower, upper)
	case lf > uf:
		r, err := definite(expr, anti, varName, upper, lower)
		if err != nil {
			return nil, err
		}
		return MulOf(N(-1), r), nil
	}
	return definite(expr, anti, varName, lower, upper)
}

func evaluateBetween(anti Expr, x string, lower, upper Expr) (Expr, error) {
	hi, err := boundValue(anti, x, upper, -1)
	if err != nil {
		return nil, err
	}
	lo, err := boundValue(anti, x, lower, 1)
	if err != nil {
		return nil, err
	}
	return AddOf(hi, MulOf(N(-1), lo)), nil
}

// definite integrates over lower < upper piece by piece.
func definite(integrand, anti Expr, x string, lower, upper Expr) (Expr, error) {
	diverges := fmt.Errorf("integral of %s from %s to %s does not converge", integrand, lower, upper)
	if !realOn(integrand, x, lower, upper) {
		return nil, fmt.Errorf("%s is not real between %s and %s", integrand, lower, upper)
	}
	anti = realLogs(anti)
	poles := interiorPoles(integrand, x, lower, upper)
	cuts := append(append([]Expr{lower}, poles...), upper)

	var parts []Expr
	for i := 0; i+1 < len(cuts); i++ {
		a, b := cuts[i], cuts[i+1]
		if crossesSingularity(anti, x, a, b) {
			return nil, diverges
		}
		v, err := evaluateBetween(anti, x, a, b)
		if err != nil {
			if len(poles) > 0 {
				return nil, diverges
			}
			return nil, err
		}
		parts = append(parts, v)
	}
	result := AddOf(parts...)
	if !determinate(result) {
		return nil, diverges
	}
	return result, nil
}

// boundValue evaluates the antiderivative at a bound, falling back to a
// one-sided limit at infinite or singular bounds.
func boundValue(anti Expr, x string, b Expr, dir int) (Expr, error) {
	if !IsInfinite(b) {
		if v := Sub(anti, x, b); IsFinite(v) {
			return v, nil
		}
	}
	v, err := LimitDir(anti, x, b, dir)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate antiderivative at %s: %w", b, err)
	}
	return v, nil
}

// realLogs rewrites log(u) as log(Abs(u)), the real antiderivative form
// on intervals where u < 0.
func realLogs(e Expr) Expr {
	return transform(e, func(n Expr) Expr {
		if f, ok := n.(*Func); ok && f.name == "log" {
			if inner, ok := f.arg.(*Func); !ok || inner.name != "Abs" {
				return LogOf(AbsOf(f.arg))
			}
		}
		return n
	})
}

// ============================================================
// Poles
// ============================================================

// interiorPoles returns the sorted points strictly between lower and upper
// where a denominator, a log argument or a tan argument vanishes.
func interiorPoles(integrand Expr, x string, lower, upper Expr) []Expr {
	lf, uf := lower.Float(nil), upper.Float(nil)
	var candidates []Expr
	walk(integrand, func(n Expr) bool {
		switch v := n.(type) {
		case *Pow:
			if en, ok := v.exp.(*Num); ok && en.IsNegative() {
				candidates = append(candidates, zerosOf(v.base, x, lf, uf)...)
			}
		case *Func:
			switch v.name {
			case "log":
				candidates = append(candidates, zerosOf(v.arg, x, lf, uf)...)
			case "tan":
				candidates = append(candidates, trigZeros(v.arg, x, MulOf(F(1, 2), Pi), lf, uf)...)
			}
		}
		return true
	})

	type point struct {
		at Expr
		f  float64
	}
	var inside []point
	for _, c := range candidates {
		f := c.Float(nil)
		if math.IsNaN(f) || f <= lf+signTolerance || f >= uf-signTolerance {
			continue
		}
		inside = append(inside, point{at: c, f: f})
	}
	sort.Slice(inside, func(i, j int) bool { return inside[i].f < inside[j].f })
	var out []Expr
	for i, p := range inside {
		if i > 0 && p.f-inside[i-1].f < signTolerance {
			continue
		}
		out = append(out, p.at)
	}
	return out
}

// zerosOf returns the real zeros of e that it can find exactly. The
// interval bounds limit the periodic families.
func zerosOf(e Expr, x string, lf, uf float64) []Expr {
	if !dependsOn(e, x) {
		return nil
	}
	switch v := e.(type) {
	case *Mul:
		var out []Expr
		for _, f := range v.factors {
			out = append(out, zerosOf(f, x, lf, uf)...)
		}
		return out
	case *Pow:
		if en, ok := v.exp.(*Num); ok && en.IsPositive() {
			return zerosOf(v.base, x, lf, uf)
		}
		return nil
	case *Func:
		switch v.name {
		case "sin", "tan":
			return trigZeros(v.arg, x, N(0), lf, uf)
		case "cos":
			return trigZeros(v.arg, x, MulOf(F(1, 2), Pi), lf, uf)
		case "sinh", "tanh", "asin", "atan", "Abs":
			return zerosOf(v.arg, x, lf, uf)
		case "log":
			return zerosOf(AddOf(v.arg, N(-1)), x, lf, uf)
		}
		return nil
	}
	if p, ok := polyOf(e, x); ok && p.degree() >= 1 {
		return polyZeros(p)
	}
	if a, b, ok := linear(e, x); ok {
		return []Expr{MulOf(N(-1), b, PowOf(a, N(-1)))}
	}
	return nil
}

// trigZeros returns the points in [lf, uf] where arg = offset + k*pi, for
// arg linear in x.
func trigZeros(arg Expr, x string, offset Expr, lf, uf float64) []Expr {
	a, b, ok := linear(arg, x)
	if !ok || math.IsInf(lf, 0) || math.IsInf(uf, 0) {
		return nil
	}
	af, bf, of := a.Float(nil), b.Float(nil), offset.Float(nil)
	if math.IsNaN(af) || math.IsNaN(bf) {
		return nil
	}
	k1 := (af*lf + bf - of) / math.Pi
	k2 := (af*uf + bf - of) / math.Pi
	if k1 > k2 {
		k1, k2 = k2, k1
	}
	var out []Expr
	for k := math.Ceil(k1); k <= k2 && len(out) < singularityGrid; k++ {
		at := AddOf(offset, MulOf(N(int64(k)), Pi), MulOf(N(-1), b))
		out = append(out, MulOf(at, PowOf(a, N(-1))))
	}
	return out
}

// ============================================================
// Sampled checks
// ============================================================

// samplePoints spreads points over the open interval (lf, uf), spacing
// them exponentially along infinite sides.
func samplePoints(lf, uf float64) []float64 {
	out := make([]float64, 0, singularityGrid)
	reach := func(k int) float64 { return math.Expm1(float64(k+1) * 20 / singularityGrid) }
	switch {
	case math.IsInf(lf, -1) && math.IsInf(uf, 1):
		for k := 0; k < singularityGrid/2; k++ {
			out = append(out, -reach(2*k), reach(2*k))
		}
	case math.IsInf(uf, 1):
		for k := 0; k < singularityGrid; k++ {
			out = append(out, lf+reach(k))
		}
	case math.IsInf(lf, -1):
		for k := 0; k < singularityGrid; k++ {
			out = append(out, uf-reach(k))
		}
	default:
		for k := 0; k < singularityGrid; k++ {
			out = append(out, lf+(uf-lf)*(float64(k)+0.5)/singularityGrid)
		}
	}
	sort.Float64s(out)
	return out
}

// realOn reports false when the integrand is undefined at two adjacent
// sample points, as sqrt(x) is on negative x.
func realOn(integrand Expr, x string, lower, upper Expr) bool {
	prev := false
	for _, t := range samplePoints(lower.Float(nil), upper.Float(nil)) {
		bad := math.IsNaN(integrand.Float(map[string]float64{x: t}))
		if bad && prev {
			return false
		}
		prev = bad
	}
	return true
}

// crossesSingularity reports whether a log argument or a denominator of
// the antiderivative changes sign inside (a, b), a pole that interiorPoles
// could not locate exactly.
func crossesSingularity(anti Expr, x string, a, b Expr) bool {
	var watched []Expr
	walk(anti, func(n Expr) bool {
		switch v := n.(type) {
		case *Pow:
			if en, ok := v.exp.(*Num); ok && en.IsNegative() && dependsOn(v.base, x) {
				watched = append(watched, v.base)
			}
		case *Func:
			if v.name != "log" {
				break
			}
			u := v.arg
			if inner, ok := u.(*Func); ok && inner.name == "Abs" {
				u = inner.arg
			}
			if dependsOn(u, x) {
				watched = append(watched, u)
			}
		}
		return true
	})
	if len(watched) == 0 {
		return false
	}
	points := samplePoints(a.Float(nil), b.Float(nil))
	for _, u := range watched {
		sign := 0
		for _, t := range points {
			v := u.Float(map[string]float64{x: t})
			if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
				continue
			}
			s := 1
			if v < 0 {
				s = -1
			}
			if sign != 0 && s != sign {
				return true
			}
			sign = s
		}
	}
	return false
}
