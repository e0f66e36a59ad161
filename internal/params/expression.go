// Package params declares deploy-time parameters and the deferred
// expressions built from them.
//
// Every expression can do two separate things: Value resolves it against
// the local environment at run time, and Reference renders the canonical
// "{{ ... }}" string that ships in the descriptor document. The descriptor
// only ever carries the reference.
package params

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/fnmanifest/internal/spec"
)

// Expression is a deferred value of type T.
// Implemented by Param, SecretParam, CompareExpression, TernaryExpression and Literal.
type Expression[T any] interface {
	// Value resolves the expression against the environment.
	Value() (T, error)
	// Reference renders the canonical reference string, e.g. "{{ params.MIN }}".
	Reference() string

	cel() string // Sealed
}

// Scalar is the set of types that support comparison expressions.
type Scalar interface {
	string | int | float64 | bool
}

func reference(cel string) string {
	return "{{ " + cel + " }}"
}

// Literal is a constant expression. It lets literals appear wherever an
// Expression is accepted, such as param defaults and ternary branches.
type Literal[T any] struct {
	v T
}

// Lit wraps v as a constant expression.
func Lit[T any](v T) Literal[T] {
	return Literal[T]{v: v}
}

// Value returns the wrapped constant.
func (l Literal[T]) Value() (T, error) {
	return l.v, nil
}

// Reference renders the literal as a CEL expression.
func (l Literal[T]) Reference() string {
	return reference(l.cel())
}

func (l Literal[T]) cel() string {
	return celLiteral(l.v)
}

// LowerSpec lowers a literal to its raw value rather than a reference string.
func (l Literal[T]) LowerSpec() (spec.Value, bool, error) {
	return spec.Lower(l.v)
}

// celLiteral renders a Go constant in CEL syntax. Strings are quoted.
func celLiteral(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		s := strconv.FormatFloat(val, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(val)
	case []string:
		quoted := make([]string, len(val))
		for i, s := range val {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

// celOf renders an expression operand without the surrounding braces.
func celOf[T any](e Expression[T]) string {
	return e.cel()
}
