package evaluator

import (
	"fmt"
	"strings"
)

// Operation is one of the calculus operations the evaluator dispatches on.
// The zero value is not a valid operation.
type Operation int

const (
	Derivative Operation = iota + 1
	IndefiniteIntegral
	DefiniteIntegral
	Limit
	Simplify
)

// Operations lists every valid operation in display order.
func Operations() []Operation {
	return []Operation{Derivative, IndefiniteIntegral, DefiniteIntegral, Limit, Simplify}
}

var operationNames = map[Operation]string{
	Derivative:         "derivative",
	IndefiniteIntegral: "indefinite-integral",
	DefiniteIntegral:   "definite-integral",
	Limit:              "limit",
	Simplify:           "simplify",
}

var operationAliases = map[string]Operation{
	"diff":       Derivative,
	"d":          Derivative,
	"integrate":  IndefiniteIntegral,
	"integral":   IndefiniteIntegral,
	"indefinite": IndefiniteIntegral,
	"definite":   DefiniteIntegral,
	"improper":   DefiniteIntegral,
	"lim":        Limit,
	"simp":       Simplify,
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// Valid reports whether o is one of the defined operations.
func (o Operation) Valid() bool {
	_, ok := operationNames[o]
	return ok
}

// Params returns the request fields the operation reads besides the
// expression.
func (o Operation) Params() []string {
	switch o {
	case Derivative, IndefiniteIntegral:
		return []string{"variable"}
	case DefiniteIntegral:
		return []string{"variable", "lower", "upper"}
	case Limit:
		return []string{"variable", "point"}
	}
	return nil
}

// ParseOperation resolves a canonical name or alias, ignoring case.
// Underscores and spaces are accepted in place of hyphens.
func ParseOperation(s string) (Operation, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	for op, name := range operationNames {
		if name == key {
			return op, nil
		}
	}
	if op, ok := operationAliases[key]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

func (o Operation) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, int(o))
	}
	return []byte(o.String()), nil
}

func (o *Operation) UnmarshalText(b []byte) error {
	op, err := ParseOperation(string(b))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
