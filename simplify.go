package gocalc

// ============================================================
// Expansion
// ============================================================

const maxExpandPower = 10

// Expand distributes products over sums and multiplies out small integer
// powers of sums.
func Expand(e Expr) Expr { return expandExpr(e.Simplify()).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			a, ok := f.(*Add)
			if !ok {
				continue
			}
			rest := make([]Expr, 0, len(expanded)-1)
			for j, ef := range expanded {
				if j != i {
					rest = append(rest, ef)
				}
			}
			terms := make([]Expr, len(a.terms))
			for k, t := range a.terms {
				terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
			}
			return AddOf(terms...)
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			if _, isAdd := base.(*Add); isAdd {
				k := n.val.Num().Int64()
				if k >= 2 && k <= maxExpandPower {
					result := base
					for i := int64(1); i < k; i++ {
						result = distribute(result, base)
					}
					return result
				}
			}
		}
		return PowOf(base, expandExpr(v.exp))
	case *Func:
		return funcOf(v.name, expandExpr(v.arg)).Simplify()
	}
	return e
}

// distribute multiplies two sums term by term. MulOf would fold equal
// sums back into a power.
func distribute(a, b Expr) Expr {
	as, bs := addends(a), addends(b)
	terms := make([]Expr, 0, len(as)*len(bs))
	for _, s := range as {
		for _, t := range bs {
			terms = append(terms, expandExpr(MulOf(s, t)))
		}
	}
	return AddOf(terms...)
}

func addends(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Trigonometric identities
// ============================================================

// TrigSimplify applies sin²+cos² = 1, c - c*sin² = c*cos² (and the cos
// counterpart) and sin/cos = tan.
func TrigSimplify(e Expr) Expr {
	return trigSimplifyExpr(e.Simplify()).Simplify()
}

func trigSimplifyExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = trigSimplifyExpr(t)
		}
		return trigFindPythagorean(AddOf(newTerms...))
	case *Mul:
		newFactors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			newFactors[i] = trigSimplifyExpr(f)
		}
		return trigFindTangent(MulOf(newFactors...))
	case *Pow:
		return PowOf(trigSimplifyExpr(v.base), v.exp)
	case *Func:
		return funcOf(v.name, trigSimplifyExpr(v.arg)).Simplify()
	}
	return e
}

type trigSquare struct {
	funcName string
	arg      Expr
	coeff    *Num
	idx      int
}

// squaredTrig matches c*sin(u)**2 and c*cos(u)**2.
func squaredTrig(idx int, t Expr) (trigSquare, bool) {
	coeff, inner := splitCoeff(t)
	p, ok := inner.(*Pow)
	if !ok || !isNumEqual(p.exp, 2) {
		return trigSquare{}, false
	}
	fn, ok := p.base.(*Func)
	if !ok || (fn.name != "sin" && fn.name != "cos") {
		return trigSquare{}, false
	}
	return trigSquare{funcName: fn.name, arg: fn.arg, coeff: coeff, idx: idx}, true
}

func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	var squares []trigSquare
	constIdx := -1
	for idx, t := range add.terms {
		if _, isNum := t.(*Num); isNum {
			constIdx = idx
			continue
		}
		if sq, ok := squaredTrig(idx, t); ok {
			squares = append(squares, sq)
		}
	}
	without := func(skip ...int) []Expr {
		out := []Expr{}
	next:
		for idx, t := range add.terms {
			for _, s := range skip {
				if idx == s {
					continue next
				}
			}
			out = append(out, t)
		}
		return out
	}

	// c*sin(u)**2 + c*cos(u)**2 = c
	for i := 0; i < len(squares); i++ {
		for j := i + 1; j < len(squares); j++ {
			si, sj := squares[i], squares[j]
			if si.funcName != sj.funcName && si.arg.Equal(sj.arg) && si.coeff.Equal(sj.coeff) {
				return AddOf(append(without(si.idx, sj.idx), si.coeff)...)
			}
		}
	}

	// c - c*sin(u)**2 = c*cos(u)**2
	if constIdx >= 0 {
		c := add.terms[constIdx].(*Num)
		for _, sq := range squares {
			if numNeg(sq.coeff).Equal(c) {
				other := "cos"
				if sq.funcName == "cos" {
					other = "sin"
				}
				swapped := MulOf(c, PowOf(funcOf(other, sq.arg).Simplify(), N(2)))
				return AddOf(append(without(constIdx, sq.idx), swapped)...)
			}
		}
	}
	return e
}

// trigFindTangent rewrites sin(u)**n * cos(u)**-n as tan(u)**n.
func trigFindTangent(e Expr) Expr {
	m, ok := e.(*Mul)
	if !ok {
		return e
	}
	for i, fi := range m.factors {
		sBase, sExp := splitPow(fi)
		sin, ok := sBase.(*Func)
		if !ok || sin.name != "sin" {
			continue
		}
		for j, fj := range m.factors {
			cBase, cExp := splitPow(fj)
			cos, ok := cBase.(*Func)
			if !ok || cos.name != "cos" || !cos.arg.Equal(sin.arg) {
				continue
			}
			if !AddOf(sExp, cExp).Equal(N(0)) {
				continue
			}
			rest := []Expr{PowOf(TanOf(sin.arg), sExp)}
			for k, f := range m.factors {
				if k != i && k != j {
					rest = append(rest, f)
				}
			}
			return MulOf(rest...)
		}
	}
	return e
}

// ============================================================
// Full simplification
// ============================================================

// SimplifyFull returns the shortest of the canonical form, its expansion,
// its cancelled quotient and their trigonometric simplifications.
func SimplifyFull(e Expr) Expr {
	s := e.Simplify()
	expanded := Expand(s)
	best := s
	for _, c := range []Expr{TrigSimplify(s), expanded, TrigSimplify(expanded), Cancel(s)} {
		if len(c.String()) < len(best.String()) {
			best = c
		}
	}
	return best
}
