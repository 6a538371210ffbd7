package gocalc

import (
	"fmt"
	"math/big"
	"strings"
	"text/scanner"
)

// ============================================================
// Parser
// ============================================================
//
// Grammar (Python operator precedence, no implicit multiplication):
//
//	expression := term { ("+" | "-") term }
//	term       := unary { ("*" | "/") unary }
//	unary      := ("+" | "-") unary | power
//	power      := atom [ ("**" | "^") unary ]
//	atom       := number | name | name "(" args ")" | "(" expression ")"

// ParseError reports a syntax error at a 1-based column of the input.
type ParseError struct {
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at column %d: %s", e.Column, e.Msg)
}

var functionNames = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan",
	"asin": "asin", "acos": "acos", "atan": "atan",
	"arcsin": "asin", "arccos": "acos", "arctan": "atan",
	"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"exp": "exp", "log": "log", "ln": "log",
	"sqrt": "sqrt", "Abs": "Abs", "abs": "Abs",
}

var constantNames = map[string]Expr{
	"pi": Pi,
	"π":  Pi,
	"E":  E,
	"oo": Infinity,
}

type lexer struct {
	scanner.Scanner
	token rune
	err   *ParseError
}

func (lex *lexer) next() {
	lex.token = lex.Scan()
}

func (lex *lexer) text() string {
	if lex.token == scanner.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", lex.TokenText())
}

func (lex *lexer) fail(format string, args ...interface{}) {
	col := lex.Position.Column
	if lex.token == scanner.EOF || col == 0 {
		col = lex.Pos().Column
	}
	panic(&ParseError{Column: col, Msg: fmt.Sprintf(format, args...)})
}

// Parse reads a Python-style expression such as "sin(x)**2 + 1/x".
func Parse(src string) (expr Expr, err error) {
	if strings.TrimSpace(src) == "" {
		return nil, &ParseError{Column: 1, Msg: "empty expression"}
	}
	lex := &lexer{}
	lex.Init(strings.NewReader(src))
	lex.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	lex.Error = func(s *scanner.Scanner, msg string) {
		if lex.err == nil {
			lex.err = &ParseError{Column: s.Pos().Column, Msg: msg}
		}
	}

	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			expr, err = nil, pe
		}
	}()

	lex.next()
	e := expression(lex)
	if lex.token != scanner.EOF {
		lex.fail("unexpected %s", lex.text())
	}
	if lex.err != nil {
		return nil, lex.err
	}
	return e, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func expression(lex *lexer) Expr {
	e := term(lex)
	for {
		switch lex.token {
		case '+':
			lex.next()
			e = AddOf(e, term(lex))
		case '-':
			lex.next()
			e = AddOf(e, MulOf(N(-1), term(lex)))
		default:
			return e
		}
	}
}

func term(lex *lexer) Expr {
	e := unary(lex)
	for {
		switch lex.token {
		case '*':
			lex.next()
			e = MulOf(e, unary(lex))
		case '/':
			lex.next()
			e = MulOf(e, PowOf(unary(lex), N(-1)))
		default:
			return e
		}
	}
}

func unary(lex *lexer) Expr {
	switch lex.token {
	case '+':
		lex.next()
		return unary(lex)
	case '-':
		lex.next()
		return MulOf(N(-1), unary(lex))
	}
	return power(lex)
}

func power(lex *lexer) Expr {
	base := atom(lex)
	switch {
	case lex.token == '^':
		lex.next()
		return PowOf(base, unary(lex))
	case lex.token == '*' && lex.Peek() == '*':
		lex.next() // second '*'
		lex.next()
		return PowOf(base, unary(lex))
	}
	return base
}

func atom(lex *lexer) Expr {
	switch lex.token {
	case '(':
		lex.next()
		e := expression(lex)
		if lex.token != ')' {
			lex.fail("expected ')' but found %s", lex.text())
		}
		lex.next()
		return e
	case '∞':
		lex.next()
		return Infinity
	case scanner.Int, scanner.Float:
		r, ok := new(big.Rat).SetString(lex.TokenText())
		if !ok {
			lex.fail("invalid number %s", lex.text())
		}
		lex.next()
		return newNum(r)
	case scanner.Ident:
		return identifier(lex)
	case scanner.EOF:
		lex.fail("unexpected end of input")
	}
	lex.fail("unexpected %s", lex.text())
	return nil
}

func identifier(lex *lexer) Expr {
	id := lex.TokenText()
	lex.next()
	if fn, ok := functionNames[id]; ok {
		if lex.token != '(' {
			lex.fail("function %s needs parenthesized arguments", id)
		}
		return call(lex, id, fn, callArgs(lex))
	}
	if lex.token == '(' {
		lex.fail("unknown function %q", id)
	}
	if c, ok := constantNames[id]; ok {
		return c
	}
	if id == "I" {
		lex.fail("complex numbers are not supported")
	}
	return S(id)
}

func callArgs(lex *lexer) []Expr {
	lex.next() // '('
	var xs []Expr
	for {
		xs = append(xs, expression(lex))
		switch lex.token {
		case ')':
			lex.next()
			return xs
		case ',':
			lex.next()
		default:
			lex.fail("expected ')' but found %s", lex.text())
		}
	}
}

func call(lex *lexer, id, fn string, xs []Expr) Expr {
	if fn == "log" && len(xs) == 2 {
		return MulOf(LogOf(xs[0]), PowOf(LogOf(xs[1]), N(-1)))
	}
	if len(xs) != 1 {
		lex.fail("%s takes 1 argument, got %d", id, len(xs))
	}
	if fn == "sqrt" {
		return SqrtOf(xs[0])
	}
	return funcOf(fn, xs[0]).Simplify()
}
