package evaluator

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyExpression is returned for a request whose expression is blank.
	ErrEmptyExpression = errors.New("expression is empty")
	// ErrUnknownOperation is returned for an operation outside the defined set.
	ErrUnknownOperation = errors.New("unknown operation")
)

// Default parameter values, matching the initial contents of the input form.
const (
	DefaultVariable = "x"
	DefaultLower    = "0"
	DefaultUpper    = "1"
	DefaultPoint    = "0"
)

// Request carries one evaluation. Lower and Upper are read by
// DefiniteIntegral, Point by Limit; unused fields are ignored.
type Request struct {
	Operation  Operation `json:"operation"`
	Expression string    `json:"expression"`
	Variable   string    `json:"variable,omitempty"`
	Lower      string    `json:"lower,omitempty"`
	Upper      string    `json:"upper,omitempty"`
	Point      string    `json:"point,omitempty"`
}

// WithDefaults returns a copy of r with blank parameters replaced by the
// package defaults.
func (r Request) WithDefaults() Request {
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&r.Variable, DefaultVariable)
	fill(&r.Lower, DefaultLower)
	fill(&r.Upper, DefaultUpper)
	fill(&r.Point, DefaultPoint)
	return r
}

// Validate performs the checks a caller runs before submitting.
func (r Request) Validate() error {
	if !r.Operation.Valid() {
		return ErrUnknownOperation
	}
	if strings.TrimSpace(r.Expression) == "" {
		return ErrEmptyExpression
	}
	return nil
}

// Result is the rendered "input = output" statement. On failure Typeset is
// empty and Text holds the error message.
type Result struct {
	Typeset string `json:"typeset"`
	Text    string `json:"text"`
}

// OK reports whether r holds a successful evaluation.
func (r Result) OK() bool { return r.Typeset != "" }

// Empty reports whether r holds nothing at all.
func (r Result) Empty() bool { return r.Typeset == "" && r.Text == "" }
