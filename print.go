package gocalc

import (
	"math/big"
	"strings"
)

// splitFraction separates a product into its rational coefficient, the
// numerator factors and the denominator factors. Denominator factors are
// returned with positive exponents.
func splitFraction(factors []Expr) (*Num, []Expr, []Expr) {
	coeff := N(1)
	var num, den []Expr
	for _, f := range factors {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() {
				den = append(den, PowOf(p.base, numNeg(en)))
				continue
			}
		}
		num = append(num, f)
	}
	return coeff, num, den
}

// coefficientParts splits a rational into its sign and the absolute
// numerator and denominator.
func coefficientParts(c *Num) (string, *big.Int, *big.Int) {
	r := c.Rat()
	sign := ""
	if r.Sign() < 0 {
		sign = "-"
		r.Neg(r)
	}
	return sign, r.Num(), r.Denom()
}

func fractionString(c *Num, num, den []Expr) string {
	sign, p, q := coefficientParts(c)
	one := big.NewInt(1)

	var top []string
	if p.Cmp(one) != 0 || len(num) == 0 {
		top = append(top, p.String())
	}
	for _, f := range num {
		top = append(top, factorString(f))
	}
	var bottom []string
	if q.Cmp(one) != 0 {
		bottom = append(bottom, q.String())
	}
	for _, f := range den {
		bottom = append(bottom, factorString(f))
	}

	out := sign + strings.Join(top, "*")
	if len(bottom) == 0 {
		return out
	}
	denStr := strings.Join(bottom, "*")
	if len(bottom) > 1 {
		denStr = "(" + denStr + ")"
	}
	return out + "/" + denStr
}

func factorString(f Expr) string {
	if _, ok := f.(*Add); ok {
		return "(" + f.String() + ")"
	}
	return f.String()
}

func fractionLaTeX(c *Num, num, den []Expr) string {
	sign, p, q := coefficientParts(c)
	one := big.NewInt(1)

	var top []string
	if p.Cmp(one) != 0 || len(num) == 0 {
		top = append(top, p.String())
	}
	for _, f := range num {
		top = append(top, factorLaTeX(f))
	}
	var bottom []string
	if q.Cmp(one) != 0 {
		bottom = append(bottom, q.String())
	}
	for _, f := range den {
		bottom = append(bottom, factorLaTeX(f))
	}

	numStr := strings.Join(top, " ")
	if len(bottom) == 0 {
		return sign + numStr
	}
	if len(top) == 1 && len(num) == 1 {
		numStr = num[0].LaTeX()
	}
	return sign + "\\frac{" + numStr + "}{" + strings.Join(bottom, " ") + "}"
}

func factorLaTeX(f Expr) string {
	if _, ok := f.(*Add); ok {
		return "\\left(" + f.LaTeX() + "\\right)"
	}
	return f.LaTeX()
}
