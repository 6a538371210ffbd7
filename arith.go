package gocalc

import (
	"math"
	"math/big"
	"sort"
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	// oo + finite = oo; oo - oo and zoo + zoo are undefined.
	var inf *Special
	for _, t := range flat {
		sp, ok := t.(*Special)
		if !ok {
			continue
		}
		switch {
		case sp.kind == notANumber:
			return NaN
		case inf == nil:
			inf = sp
		case inf.kind != sp.kind || sp.kind == complexInf:
			return NaN
		}
	}
	if inf != nil {
		return inf
	}

	constant := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		c, rest := splitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}

	terms := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		terms = append(terms, scale(c, rests[key]))
	}
	sortTerms(terms)
	if !constant.IsZero() {
		terms = append(terms, constant)
	}
	switch len(terms) {
	case 0:
		return N(0)
	case 1:
		return terms[0]
	}
	return &Add{terms: terms}
}

func (a *Add) String() string {
	out := ""
	for i, t := range a.terms {
		if i == 0 {
			out = t.String()
			continue
		}
		if neg, ok := negateTerm(t); ok {
			out += " - " + neg.String()
		} else {
			out += " + " + t.String()
		}
	}
	return out
}

func (a *Add) LaTeX() string {
	out := ""
	for i, t := range a.terms {
		if i == 0 {
			out = t.LaTeX()
			continue
		}
		if neg, ok := negateTerm(t); ok {
			out += " - " + neg.LaTeX()
		} else {
			out += " + " + t.LaTeX()
		}
	}
	return out
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Float(env map[string]float64) float64 {
	acc := 0.0
	for _, t := range a.terms {
		acc += t.Float(env)
	}
	return acc
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) Terms() []Expr { return a.terms }

// splitCoeff separates the rational coefficient of a canonical term.
func splitCoeff(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok {
		if c, ok := m.factors[0].(*Num); ok {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return c, rest[0]
			}
			return c, &Mul{factors: rest}
		}
	}
	return N(1), e
}

// scale rebuilds c*rest without re-simplifying; rest must be canonical.
func scale(c *Num, rest Expr) Expr {
	if c.IsOne() {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...)}
	}
	return &Mul{factors: []Expr{c, rest}}
}

func negateTerm(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Special:
		if v.kind == negInf {
			return Infinity, true
		}
	case *Mul:
		c, rest := splitCoeff(v)
		if c.IsNegative() {
			return scale(numNeg(c), rest), true
		}
	}
	return nil, false
}

// degree is the total power of symbols in a term, used for term order.
func degree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			return v.exp.Float(nil)
		}
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += degree(f)
		}
		return d
	}
	return 0
}

func sortTerms(terms []Expr) {
	type keyed struct {
		e   Expr
		deg float64
		key string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, rest := splitCoeff(t)
		ks[i] = keyed{e: t, deg: degree(t), key: rest.String()}
		if math.IsNaN(ks[i].deg) {
			ks[i].deg = 0
		}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].deg != ks[j].deg {
			return ks[i].deg > ks[j].deg
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	var specials []*Special
	others := []Expr{}
	for _, f := range flat {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Special:
			if v.kind == notANumber {
				return NaN
			}
			specials = append(specials, v)
		default:
			others = append(others, f)
		}
	}
	if len(specials) > 0 {
		return mulSpecial(coeff, specials, others)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if merged, changed := combineBases(others); changed {
		return MulOf(append([]Expr{coeff}, merged...)...)
	}
	if len(others) == 0 {
		return coeff
	}
	sortFactors(others)
	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// mulSpecial folds infinities into a product. A symbolic cofactor keeps the
// product unevaluated.
func mulSpecial(coeff *Num, specials []*Special, others []Expr) Expr {
	if coeff.IsZero() {
		return NaN
	}
	sign := coeff.val.Sign()
	complexInfinity := false
	for _, sp := range specials {
		switch sp.kind {
		case complexInf:
			complexInfinity = true
		case negInf:
			sign = -sign
		}
	}
	if len(others) > 0 {
		v := (&Mul{factors: others}).Float(nil)
		switch {
		case math.IsNaN(v):
			factors := append([]Expr{}, others...)
			for _, sp := range specials {
				factors = append(factors, sp)
			}
			if !coeff.IsOne() {
				factors = append([]Expr{coeff}, factors...)
			}
			return &Mul{factors: factors}
		case v == 0:
			return NaN
		case v < 0:
			sign = -sign
		}
	}
	switch {
	case complexInfinity:
		return ComplexInfinity
	case sign > 0:
		return Infinity
	}
	return NegInfinity
}

// combineBases merges factors sharing a base (x*x**2 → x**3) and folds
// exponentials (exp(a)*exp(b) → exp(a + b)).
func combineBases(factors []Expr) ([]Expr, bool) {
	type group struct {
		base Expr
		exps []Expr
	}
	groups := map[string]*group{}
	order := []string{}
	var expArgs []Expr
	for _, f := range factors {
		if fn, ok := f.(*Func); ok && fn.name == "exp" {
			expArgs = append(expArgs, fn.arg)
			continue
		}
		base, exp := splitPow(f)
		key := base.String()
		g, seen := groups[key]
		if !seen {
			g = &group{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	changed := len(expArgs) > 1
	for _, key := range order {
		if len(groups[key].exps) > 1 {
			changed = true
		}
	}
	if !changed {
		return factors, false
	}
	out := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		if len(g.exps) == 1 {
			out = append(out, PowOf(g.base, g.exps[0]))
			continue
		}
		out = append(out, PowOf(g.base, AddOf(g.exps...)))
	}
	if len(expArgs) > 0 {
		out = append(out, ExpOf(AddOf(expArgs...)))
	}
	return out, true
}

func splitPow(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

func factorRank(e Expr) int {
	switch v := e.(type) {
	case *Constant:
		return 0
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			return 1
		}
	}
	return 2
}

func sortFactors(factors []Expr) {
	type keyed struct {
		e    Expr
		rank int
		key  string
	}
	ks := make([]keyed, len(factors))
	for i, f := range factors {
		base, _ := splitPow(f)
		ks[i] = keyed{e: f, rank: factorRank(f), key: base.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].rank != ks[j].rank {
			return ks[i].rank < ks[j].rank
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		factors[i] = ks[i].e
	}
}

func (m *Mul) String() string {
	c, num, den := splitFraction(m.factors)
	return fractionString(c, num, den)
}

func (m *Mul) LaTeX() string {
	c, num, den := splitFraction(m.factors)
	return fractionLaTeX(c, num, den)
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		terms[i] = MulOf(append([]Expr{dfi}, others...)...)
	}
	return AddOf(terms...)
}

func (m *Mul) Float(env map[string]float64) float64 {
	acc := 1.0
	for _, f := range m.factors {
		acc *= f.Float(env)
	}
	return acc
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base**exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()
	if isKind(base, notANumber) || isKind(exp, notANumber) {
		return NaN
	}

	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}
	if c, ok := base.(*Constant); ok && c == E {
		return ExpOf(exp)
	}
	if sp, ok := base.(*Special); ok {
		return powSpecialBase(sp, exp)
	}
	if sp, ok := exp.(*Special); ok {
		return powSpecialExp(base, sp)
	}

	if bn, ok := base.(*Num); ok {
		en, expIsNum := exp.(*Num)
		switch {
		case bn.IsZero() && expIsNum && en.IsNegative():
			return ComplexInfinity
		case bn.IsZero() && expIsNum:
			return N(0)
		case bn.IsOne():
			return N(1)
		case expIsNum:
			if r, ok := ratPow(bn, en); ok {
				return r
			}
			return rootOf(bn, en)
		}
		return &Pow{base: base, exp: exp}
	}

	if en, ok := exp.(*Num); ok {
		switch b := base.(type) {
		case *Pow:
			if en.IsInteger() {
				return PowOf(b.base, MulOf(b.exp, en))
			}
			// sqrt(x**4) is x**2, but sqrt(x**2) is not x.
			if inner, ok := b.exp.(*Num); ok && inner.IsInteger() && en.IsPositive() {
				if r := numMul(inner, en); r.IsInteger() && r.val.Num().Bit(0) == 0 {
					return PowOf(b.base, r)
				}
			}
		case *Mul:
			if en.IsInteger() {
				factors := make([]Expr, len(b.factors))
				for i, f := range b.factors {
					factors[i] = PowOf(f, en)
				}
				return MulOf(factors...)
			}
		case *Func:
			if b.name == "exp" {
				return ExpOf(MulOf(b.arg, en))
			}
		}
	}
	return &Pow{base: base, exp: exp}
}

// powSpecialBase handles oo**e, (-oo)**e and zoo**e.
func powSpecialBase(sp *Special, exp Expr) Expr {
	ev := exp.Float(nil)
	if math.IsNaN(ev) {
		return &Pow{base: sp, exp: exp}
	}
	switch sp.kind {
	case posInf:
		if ev > 0 {
			return Infinity
		}
		return N(0)
	case negInf:
		if ev < 0 {
			return N(0)
		}
		if en, ok := exp.(*Num); ok && en.IsInteger() {
			if en.val.Num().Bit(0) == 0 {
				return Infinity
			}
			return NegInfinity
		}
		return ComplexInfinity
	}
	if ev > 0 {
		return ComplexInfinity
	}
	return N(0)
}

// powSpecialExp handles b**oo and b**-oo for numeric b.
func powSpecialExp(base Expr, sp *Special) Expr {
	bv := base.Float(nil)
	if math.IsNaN(bv) {
		return &Pow{base: base, exp: sp}
	}
	switch sp.kind {
	case posInf:
		switch {
		case bv > 1:
			return Infinity
		case bv > -1 && bv < 1:
			return N(0)
		}
	case negInf:
		switch {
		case bv > 1:
			return N(0)
		case bv > 0 && bv < 1:
			return Infinity
		}
	}
	return NaN
}

// ratPow computes b**e exactly when the result is rational.
func ratPow(b, e *Num) (Expr, bool) {
	if e.IsInteger() {
		k := e.val.Num()
		if !k.IsInt64() || k.Int64() > 256 || k.Int64() < -256 {
			return nil, false
		}
		n := k.Int64()
		neg := n < 0
		if neg {
			n = -n
		}
		num := new(big.Int).Exp(b.val.Num(), big.NewInt(n), nil)
		den := new(big.Int).Exp(b.val.Denom(), big.NewInt(n), nil)
		r := new(big.Rat).SetFrac(num, den)
		if neg {
			if r.Sign() == 0 {
				return ComplexInfinity, true
			}
			r.Inv(r)
		}
		return newNum(r), true
	}
	if b.IsNegative() {
		return nil, false
	}
	q := e.val.Denom()
	if !q.IsInt64() || q.Int64() > 16 {
		return nil, false
	}
	rn, ok1 := intRoot(b.val.Num(), int(q.Int64()))
	rd, ok2 := intRoot(b.val.Denom(), int(q.Int64()))
	if !ok1 || !ok2 {
		return nil, false
	}
	root := newNum(new(big.Rat).SetFrac(rn, rd))
	return ratPow(root, newNum(new(big.Rat).SetInt(e.val.Num())))
}

const maxRootFactor = 1000

// rootOf canonicalises b**(p/q) when the result is irrational. Odd roots
// of negatives stay real, even roots of negatives are nan, and perfect
// q-th powers move out of the radical: sqrt(8) = 2*sqrt(2).
func rootOf(b, e *Num) Expr {
	q := e.val.Denom()
	if e.IsInteger() || !q.IsInt64() || q.Int64() > 16 {
		return &Pow{base: b, exp: e}
	}
	qi := int(q.Int64())
	p := e.val.Num()
	if b.IsNegative() {
		if qi%2 == 0 {
			return NaN
		}
		r := PowOf(numNeg(b), e)
		if p.Bit(0) == 1 {
			return MulOf(N(-1), r)
		}
		return r
	}
	if p.Cmp(q) > 0 {
		whole := new(big.Int).Quo(p, q)
		frac := new(big.Rat).SetFrac(new(big.Int).Rem(p, q), q)
		return MulOf(PowOf(b, newNum(new(big.Rat).SetInt(whole))), PowOf(b, newNum(frac)))
	}
	on, in := extractPower(b.val.Num(), qi)
	od, id := extractPower(b.val.Denom(), qi)
	if on.IsInt64() && on.Int64() == 1 && od.IsInt64() && od.Int64() == 1 {
		return &Pow{base: b, exp: e}
	}
	outside := newNum(new(big.Rat).SetFrac(on, od))
	inside := newNum(new(big.Rat).SetFrac(in, id))
	return MulOf(PowOf(outside, newNum(new(big.Rat).SetInt(p))), PowOf(inside, e))
}

// extractPower splits n into out**q * in, pulling out factors below
// maxRootFactor.
func extractPower(n *big.Int, q int) (*big.Int, *big.Int) {
	out, in := big.NewInt(1), new(big.Int).Set(n)
	bq := big.NewInt(int64(q))
	for d := int64(2); d <= maxRootFactor; d++ {
		dq := new(big.Int).Exp(big.NewInt(d), bq, nil)
		if dq.Cmp(in) > 0 {
			break
		}
		for new(big.Int).Rem(in, dq).Sign() == 0 {
			in.Quo(in, dq)
			out.Mul(out, big.NewInt(d))
		}
	}
	return out, in
}

// intRoot returns the exact q-th root of a non-negative n, if it exists.
func intRoot(n *big.Int, q int) (*big.Int, bool) {
	if q == 2 {
		r := new(big.Int).Sqrt(n)
		return r, new(big.Int).Mul(r, r).Cmp(n) == 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	if f > 1e18 {
		return nil, false
	}
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	for c := guess - 1; c <= guess+1; c++ {
		if c < 0 {
			continue
		}
		r := big.NewInt(c)
		if new(big.Int).Exp(r, big.NewInt(int64(q)), nil).Cmp(n) == 0 {
			return r, true
		}
	}
	return nil, false
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok {
		if en.IsNegative() {
			return fractionString(N(1), nil, []Expr{PowOf(p.base, numNeg(en))})
		}
		if en.Equal(F(1, 2)) {
			return "sqrt(" + p.base.String() + ")"
		}
	}
	baseStr := p.base.String()
	if needsPowParens(p.base) {
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	if !isAtomicExponent(p.exp) {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "**" + expStr
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok {
		if en.IsNegative() {
			return fractionLaTeX(N(1), nil, []Expr{PowOf(p.base, numNeg(en))})
		}
		if en.Equal(F(1, 2)) {
			return `\sqrt{` + p.base.LaTeX() + "}"
		}
	}
	baseStr := p.base.LaTeX()
	if needsPowParens(p.base) {
		baseStr = `\left(` + baseStr + `\right)`
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func needsPowParens(base Expr) bool {
	switch v := base.(type) {
	case *Add, *Mul, *Pow, *Special:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

func isAtomicExponent(e Expr) bool {
	switch v := e.(type) {
	case *Sym, *Constant:
		return true
	case *Num:
		return v.IsInteger() && !v.IsNegative()
	}
	return false
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if !dependsOn(p.exp, varName) {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if !dependsOn(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LogOf(p.base), dv)
	}
	logTerm := MulOf(dv, LogOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Float(env map[string]float64) float64 {
	return math.Pow(p.base.Float(env), p.exp.Float(env))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }
