// Package evaluator maps a calculus Request to a rendered Result.
//
// Evaluate never fails: parse errors, unsupported integrals, undetermined
// limits and recovered kernel panics all become a Result with an empty
// Typeset and a "computation error: " message.
package evaluator

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/njchilds90/gocalc"
)

const (
	computationErrorPrefix = "computation error: "
	renderErrorPrefix      = "render error: "
	renderTextPrefix       = "expression: "
)

// Evaluator dispatches requests onto the symbolic kernel.
type Evaluator struct {
	log zerolog.Logger
}

// New returns an Evaluator that logs each evaluation at debug level.
func New(log zerolog.Logger) *Evaluator {
	return &Evaluator{log: log.With().Str("component", "evaluator").Logger()}
}

// Evaluate computes req. Blank parameters take the package defaults.
func (e *Evaluator) Evaluate(req Request) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = failure(fmt.Errorf("%v", r))
		}
		e.log.Debug().
			Str("operation", req.Operation.String()).
			Str("expression", req.Expression).
			Dur("took", time.Since(start)).
			Bool("ok", res.OK()).
			Msg("evaluated")
	}()

	req = req.WithDefaults()
	if !req.Operation.Valid() {
		return failure(fmt.Errorf("%w: %d", ErrUnknownOperation, int(req.Operation)))
	}
	typeset, text, err := evaluate(req)
	if err != nil {
		return failure(err)
	}
	return Result{Typeset: typeset, Text: caret(text)}
}

// Render parses expr without evaluating it.
func (e *Evaluator) Render(expr string) Result {
	parsed, err := gocalc.Parse(expr)
	if err != nil {
		return Result{Text: renderErrorPrefix + err.Error()}
	}
	return Result{Typeset: parsed.LaTeX(), Text: renderTextPrefix + caret(parsed.String())}
}

func failure(err error) Result {
	return Result{Text: computationErrorPrefix + err.Error()}
}

// caret rewrites the power operator for display.
func caret(s string) string { return strings.ReplaceAll(s, "**", "^") }

// infinitySymbol shows oo as ∞ in bounds and limit points.
func infinitySymbol(s string) string { return strings.ReplaceAll(s, "oo", "∞") }

func evaluate(req Request) (typeset, text string, err error) {
	expr, err := gocalc.Parse(req.Expression)
	if err != nil {
		return "", "", err
	}
	src := strings.TrimSpace(req.Expression)

	if req.Operation == Simplify {
		result := gocalc.SimplifyFull(expr)
		if gocalc.IsNaN(result) {
			return "", "", notReal(src)
		}
		return statement(expr.LaTeX(), result), fmt.Sprintf("%s = %s", src, result), nil
	}

	v, err := variable(req.Variable)
	if err != nil {
		return "", "", err
	}
	name := v.Name()

	switch req.Operation {
	case Derivative:
		result := gocalc.Diff(expr, name)
		if gocalc.IsNaN(result) {
			return "", "", notReal(src)
		}
		tex := fmt.Sprintf(`\frac{\mathrm{d}}{\mathrm{d}%s}\left(%s\right)`, v.LaTeX(), expr.LaTeX())
		return statement(tex, result), fmt.Sprintf("d/d%s (%s) = %s", name, src, result), nil

	case IndefiniteIntegral:
		result, err := gocalc.Integrate(expr, name)
		if err != nil {
			return "", "", err
		}
		tex := fmt.Sprintf(`\int %s \, \mathrm{d}%s`, expr.LaTeX(), v.LaTeX())
		return statement(tex, result), fmt.Sprintf("∫ %s d%s = %s", src, name, result), nil

	case DefiniteIntegral:
		lower, err := parseParam("lower bound", req.Lower)
		if err != nil {
			return "", "", err
		}
		upper, err := parseParam("upper bound", req.Upper)
		if err != nil {
			return "", "", err
		}
		result, err := gocalc.IntegrateDefinite(expr, name, lower, upper)
		if err != nil {
			return "", "", err
		}
		tex := fmt.Sprintf(`\int_{%s}^{%s} %s \, \mathrm{d}%s`, lower.LaTeX(), upper.LaTeX(), expr.LaTeX(), v.LaTeX())
		txt := fmt.Sprintf("∫_%s^%s %s d%s = %s",
			infinitySymbol(lower.String()), infinitySymbol(upper.String()), src, name, result)
		return statement(tex, result), txt, nil

	case Limit:
		point, err := parseParam("limit point", req.Point)
		if err != nil {
			return "", "", err
		}
		result, err := gocalc.Limit(expr, name, point)
		if err != nil {
			return "", "", err
		}
		tex := fmt.Sprintf(`\lim_{%s \to %s} %s`, v.LaTeX(), point.LaTeX(), expr.LaTeX())
		txt := fmt.Sprintf("lim_{%s->%s} (%s) = %s", name, infinitySymbol(point.String()), src, result)
		return statement(tex, result), txt, nil
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnknownOperation, req.Operation)
}

// notReal reports an expression that is undefined over the reals, such as
// an even root of a negative number. There is no imaginary unit.
func notReal(src string) error {
	return fmt.Errorf("%s has no real value", src)
}

func statement(lhs string, result gocalc.Expr) string {
	return lhs + " = " + result.LaTeX()
}

func variable(s string) (*gocalc.Sym, error) {
	e, err := gocalc.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("variable: %w", err)
	}
	v, ok := e.(*gocalc.Sym)
	if !ok {
		return nil, fmt.Errorf("invalid variable %q", strings.TrimSpace(s))
	}
	return v, nil
}

func parseParam(what, s string) (gocalc.Expr, error) {
	e, err := gocalc.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return e, nil
}
