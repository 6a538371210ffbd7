package gocalc

import (
	"math/big"
	"sort"
)

// ============================================================
// Polynomials with rational coefficients
// ============================================================

const (
	maxPolyDegree = 24
	maxRootSearch = 1 << 20
)

// poly holds coefficients in ascending order of power. The zero polynomial
// is empty.
type poly []*big.Rat

func (p poly) trim() poly {
	for len(p) > 0 && p[len(p)-1].Sign() == 0 {
		p = p[:len(p)-1]
	}
	return p
}

// degree is -1 for the zero polynomial.
func (p poly) degree() int { return len(p) - 1 }

func (p poly) lead() *big.Rat { return p[len(p)-1] }

func (p poly) eval(r *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(acc, r)
		acc.Add(acc, p[i])
	}
	return acc
}

func newPoly(n int) poly {
	p := make(poly, n)
	for i := range p {
		p[i] = new(big.Rat)
	}
	return p
}

func polyAdd(a, b poly) poly {
	out := newPoly(max(len(a), len(b)))
	for i := range out {
		if i < len(a) {
			out[i].Add(out[i], a[i])
		}
		if i < len(b) {
			out[i].Add(out[i], b[i])
		}
	}
	return out.trim()
}

func polyMul(a, b poly) poly {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := newPoly(len(a) + len(b) - 1)
	for i, ac := range a {
		for j, bc := range b {
			out[i+j].Add(out[i+j], new(big.Rat).Mul(ac, bc))
		}
	}
	return out.trim()
}

func polyScale(p poly, r *big.Rat) poly {
	out := newPoly(len(p))
	for i, c := range p {
		out[i].Mul(c, r)
	}
	return out.trim()
}

func polyPow(p poly, n int) poly {
	out := poly{big.NewRat(1, 1)}
	for i := 0; i < n; i++ {
		out = polyMul(out, p)
	}
	return out
}

// linearFactor is x - r.
func linearFactor(r *big.Rat) poly {
	return poly{new(big.Rat).Neg(r), big.NewRat(1, 1)}
}

func monic(p poly) poly {
	return polyScale(p, new(big.Rat).Inv(p.lead()))
}

// polyDivMod returns q, r with a = q*b + r and deg r < deg b. b must be
// nonzero.
func polyDivMod(a, b poly) (poly, poly) {
	r := newPoly(len(a))
	for i, c := range a {
		r[i].Set(c)
	}
	r = r.trim()
	q := newPoly(max(len(r)-len(b)+1, 0))
	for len(r) > 0 && r.degree() >= b.degree() {
		shift := r.degree() - b.degree()
		f := new(big.Rat).Quo(r.lead(), b.lead())
		q[shift] = f
		for i, bc := range b {
			r[i+shift] = new(big.Rat).Sub(r[i+shift], new(big.Rat).Mul(f, bc))
		}
		r = r.trim()
	}
	return q.trim(), r
}

// polyGCD returns the monic greatest common divisor of a and b.
func polyGCD(a, b poly) poly {
	for len(b) > 0 {
		_, r := polyDivMod(a, b)
		a, b = b, r
	}
	if len(a) == 0 {
		return nil
	}
	return monic(a)
}

// polyOf reads e as a polynomial in x with rational coefficients.
func polyOf(e Expr, x string) (poly, bool) {
	out := poly{}
	for _, t := range addends(Expand(e)) {
		if n, ok := t.(*Num); ok {
			out = polyAdd(out, poly{n.Rat()})
			continue
		}
		c, rest := splitCoeff(t)
		k, ok := monomialDegree(rest, x)
		if !ok || k > maxPolyDegree {
			return nil, false
		}
		term := newPoly(k + 1)
		term[k].Set(c.val)
		out = polyAdd(out, term)
	}
	return out, true
}

func monomialDegree(e Expr, x string) (int, bool) {
	switch v := e.(type) {
	case *Sym:
		return 1, v.name == x
	case *Pow:
		s, ok := v.base.(*Sym)
		n, isNum := v.exp.(*Num)
		if !ok || s.name != x || !isNum || !n.IsInteger() || !n.IsPositive() || !n.val.Num().IsInt64() {
			return 0, false
		}
		return int(n.val.Num().Int64()), true
	}
	return 0, false
}

// polyExpr rebuilds p as an expression in x.
func polyExpr(p poly, x string) Expr {
	terms := make([]Expr, 0, len(p))
	for i, c := range p {
		if c.Sign() == 0 {
			continue
		}
		terms = append(terms, MulOf(newNum(new(big.Rat).Set(c)), PowOf(S(x), N(int64(i)))))
	}
	return AddOf(terms...)
}

// rationalParts splits e into polynomial numerator and denominator when e
// is a quotient of polynomials in x.
func rationalParts(e Expr, x string) (poly, poly, bool) {
	factors := []Expr{e}
	if m, ok := e.(*Mul); ok {
		factors = m.factors
	}
	c, nums, dens := splitFraction(factors)
	if len(dens) == 0 {
		return nil, nil, false
	}
	num, ok := polyOf(MulOf(append([]Expr{c}, nums...)...), x)
	if !ok {
		return nil, nil, false
	}
	den, ok := polyOf(MulOf(dens...), x)
	if !ok || den.degree() < 1 {
		return nil, nil, false
	}
	return num, den, true
}

// ============================================================
// Rational roots
// ============================================================

type root struct {
	val  *big.Rat
	mult int
}

// rationalRoots strips the rational roots off p and returns them with
// their multiplicities, plus the monic cofactor left over.
func rationalRoots(p poly) ([]root, poly) {
	p = monic(p)
	var roots []root
	for p.degree() >= 1 {
		r, ok := findRationalRoot(p)
		if !ok {
			break
		}
		p, _ = polyDivMod(p, linearFactor(r))
		found := false
		for i := range roots {
			if roots[i].val.Cmp(r) == 0 {
				roots[i].mult++
				found = true
			}
		}
		if !found {
			roots = append(roots, root{val: r, mult: 1})
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].val.Cmp(roots[j].val) < 0 })
	return roots, p
}

// findRationalRoot tries every ±d/e with d dividing the constant term and e
// dividing the leading coefficient, once denominators are cleared.
func findRationalRoot(p poly) (*big.Rat, bool) {
	if p[0].Sign() == 0 {
		return new(big.Rat), true
	}
	lcm := big.NewInt(1)
	for _, c := range p {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	scale := new(big.Rat).SetInt(lcm)
	a0 := new(big.Rat).Mul(p[0], scale).Num()
	an := new(big.Rat).Mul(p.lead(), scale).Num()
	ds, ok1 := divisors(a0)
	es, ok2 := divisors(an)
	if !ok1 || !ok2 {
		return nil, false
	}
	for _, d := range ds {
		for _, e := range es {
			for _, sign := range []int64{1, -1} {
				r := big.NewRat(sign*d, e)
				if p.eval(r).Sign() == 0 {
					return r, true
				}
			}
		}
	}
	return nil, false
}

func divisors(n *big.Int) ([]int64, bool) {
	a := new(big.Int).Abs(n)
	if !a.IsInt64() || a.Int64() > maxRootSearch {
		return nil, false
	}
	v := a.Int64()
	var small, large []int64
	for d := int64(1); d*d <= v; d++ {
		if v%d == 0 {
			small = append(small, d)
			if d*d != v {
				large = append([]int64{v / d}, large...)
			}
		}
	}
	return append(small, large...), true
}

// polyZeros returns the real zeros of p: the rational ones and those of a
// leftover quadratic.
func polyZeros(p poly) []Expr {
	roots, rest := rationalRoots(p)
	out := make([]Expr, 0, len(roots)+2)
	for _, r := range roots {
		out = append(out, newNum(r.val))
	}
	if rest.degree() == 2 {
		b, c := rest[1], rest[0]
		disc := new(big.Rat).Mul(b, b)
		disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), c))
		if disc.Sign() >= 0 {
			mid := newNum(new(big.Rat).Quo(b, big.NewRat(-2, 1)))
			s := SqrtOf(newNum(disc))
			out = append(out, AddOf(mid, MulOf(F(-1, 2), s)), AddOf(mid, MulOf(F(1, 2), s)))
		}
	}
	return out
}

// ============================================================
// Cancellation and partial fractions
// ============================================================

// Cancel divides out the polynomial factors shared by the numerator and
// denominator of every quotient in a single-variable expression:
// (x**2 - 1)/(x - 1) = x + 1.
func Cancel(e Expr) Expr {
	e = e.Simplify()
	syms := FreeSymbols(e)
	if len(syms) != 1 {
		return e
	}
	var x string
	for name := range syms {
		x = name
	}
	return transform(e, func(n Expr) Expr { return cancelQuotient(n, x) })
}

func cancelQuotient(e Expr, x string) Expr {
	num, den, ok := rationalParts(e, x)
	if !ok {
		return e
	}
	g := polyGCD(num, den)
	if g.degree() < 1 {
		return e
	}
	num, _ = polyDivMod(num, g)
	den, _ = polyDivMod(den, g)
	return MulOf(polyExpr(num, x), PowOf(polyExpr(den, x), N(-1)))
}

// integrateRational integrates a quotient of polynomials by long division
// and partial fractions. The denominator must split into rational linear
// factors and at most one quadratic.
func integrateRational(e Expr, x string) (Expr, bool) {
	num, den, ok := rationalParts(e, x)
	if !ok {
		return nil, false
	}
	q, r := polyDivMod(num, den)
	parts := []Expr{polyIntegral(q, x)}
	if len(r) > 0 {
		pf, ok := partialFractions(r, den, x)
		if !ok {
			return nil, false
		}
		parts = append(parts, pf)
	}
	return AddOf(parts...), true
}

func polyIntegral(p poly, x string) Expr {
	out := newPoly(len(p) + 1)
	for i, c := range p {
		out[i+1].Quo(c, big.NewRat(int64(i+1), 1))
	}
	return polyExpr(out.trim(), x)
}

type fraction struct {
	root  *big.Rat
	power int
}

// partialFractions integrates r/den with deg r < deg den.
func partialFractions(r, den poly, x string) (Expr, bool) {
	inv := new(big.Rat).Inv(den.lead())
	den, r = polyScale(den, inv), polyScale(r, inv)
	roots, rest := rationalRoots(den)
	if rest.degree() > 2 {
		return nil, false
	}

	var basis []poly
	var fracs []fraction
	for _, rt := range roots {
		for j := 1; j <= rt.mult; j++ {
			b, _ := polyDivMod(den, polyPow(linearFactor(rt.val), j))
			basis = append(basis, b)
			fracs = append(fracs, fraction{root: rt.val, power: j})
		}
	}
	if rest.degree() == 2 {
		b, _ := polyDivMod(den, rest)
		basis = append(basis, polyMul(b, poly{new(big.Rat), big.NewRat(1, 1)}), b)
	}
	coeffs, ok := solveCoefficients(basis, r, den.degree())
	if !ok {
		return nil, false
	}

	var terms []Expr
	for i, f := range fracs {
		a := coeffs[i]
		if a.Sign() == 0 {
			continue
		}
		u := AddOf(S(x), newNum(new(big.Rat).Neg(f.root)))
		if f.power == 1 {
			terms = append(terms, MulOf(newNum(a), LogOf(u)))
			continue
		}
		k := int64(1 - f.power)
		terms = append(terms, MulOf(newNum(a), F(1, k), PowOf(u, N(k))))
	}
	if rest.degree() == 2 {
		n := len(coeffs)
		terms = append(terms, integrateQuadratic(coeffs[n-2], coeffs[n-1], rest, x))
	}
	return AddOf(terms...), true
}

// integrateQuadratic integrates (B*x + C)/(x**2 + b*x + c) for a quadratic
// with no rational roots.
func integrateQuadratic(bCoeff, cCoeff *big.Rat, q poly, x string) Expr {
	b, c := q[1], q[0]
	qExpr := polyExpr(q, x)
	half := new(big.Rat).Quo(bCoeff, big.NewRat(2, 1))
	// (B*x + C) = B/2*(2x + b) + (C - B*b/2)
	k := new(big.Rat).Sub(cCoeff, new(big.Rat).Mul(half, b))
	logPart := MulOf(newNum(half), LogOf(qExpr))
	if k.Sign() == 0 {
		return logPart
	}

	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), c))
	lin := AddOf(MulOf(N(2), S(x)), newNum(b))
	var rest Expr
	if disc.Sign() < 0 {
		s := SqrtOf(newNum(new(big.Rat).Neg(disc)))
		rest = MulOf(N(2), PowOf(s, N(-1)), AtanOf(MulOf(lin, PowOf(s, N(-1)))))
	} else {
		s := SqrtOf(newNum(disc))
		rest = MulOf(PowOf(s, N(-1)), AddOf(
			LogOf(AddOf(lin, MulOf(N(-1), s))),
			MulOf(N(-1), LogOf(AddOf(lin, s))),
		))
	}
	return AddOf(logPart, MulOf(newNum(k), rest))
}

// solveCoefficients finds c with sum(c[j]*basis[j]) = target, comparing the
// coefficients of x**0 .. x**(n-1), by Gauss-Jordan elimination.
func solveCoefficients(basis []poly, target poly, n int) ([]*big.Rat, bool) {
	if len(basis) != n {
		return nil, false
	}
	coef := func(p poly, i int) *big.Rat {
		if i < len(p) {
			return new(big.Rat).Set(p[i])
		}
		return new(big.Rat)
	}
	m := make([][]*big.Rat, n)
	for i := range m {
		m[i] = make([]*big.Rat, n+1)
		for j, b := range basis {
			m[i][j] = coef(b, i)
		}
		m[i][n] = coef(target, i)
	}
	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if m[row][col].Sign() != 0 {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		inv := new(big.Rat).Inv(m[col][col])
		for j := col; j <= n; j++ {
			m[col][j].Mul(m[col][j], inv)
		}
		for row := 0; row < n; row++ {
			if row == col || m[row][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(m[row][col])
			for j := col; j <= n; j++ {
				m[row][j].Sub(m[row][j], new(big.Rat).Mul(f, m[col][j]))
			}
		}
	}
	out := make([]*big.Rat, n)
	for i := range out {
		out[i] = m[i][n]
	}
	return out, true
}
