// Package options holds the per-function configuration records and the
// merge against process-wide defaults.
package options

import (
	"fmt"

	"github.com/roach88/fnmanifest/internal/params"
	"github.com/roach88/fnmanifest/internal/spec"
)

type fieldState uint8

const (
	stateUnset fieldState = iota
	stateLiteral
	stateExpr
	stateReset
)

// Field is one optional option value: unset, a literal, a deferred
// expression, or explicitly reset to the platform default.
// The zero value is unset.
type Field[T any] struct {
	state fieldState
	lit   T
	expr  params.Expression[T]
}

// Set returns a field holding the literal v.
func Set[T any](v T) Field[T] {
	return Field[T]{state: stateLiteral, lit: v}
}

// FromExpr returns a field holding a deferred expression.
// A nil expression yields an unset field.
func FromExpr[T any](e params.Expression[T]) Field[T] {
	if e == nil {
		return Field[T]{}
	}
	return Field[T]{state: stateExpr, expr: e}
}

// Reset returns a field that restores the platform default.
func Reset[T any]() Field[T] {
	return Field[T]{state: stateReset}
}

// IsSet reports whether the field carries an explicit instruction,
// reset included.
func (f Field[T]) IsSet() bool {
	return f.state != stateUnset
}

// IsReset reports whether the field is explicitly reset.
func (f Field[T]) IsReset() bool {
	return f.state == stateReset
}

// Literal returns the literal value, if the field holds one.
func (f Field[T]) Literal() (T, bool) {
	return f.lit, f.state == stateLiteral
}

// Expr returns the deferred expression, if the field holds one.
func (f Field[T]) Expr() (params.Expression[T], bool) {
	return f.expr, f.state == stateExpr
}

// Or returns f when it is set and fallback otherwise.
func (f Field[T]) Or(fallback Field[T]) Field[T] {
	if f.IsSet() {
		return f
	}
	return fallback
}

// Value resolves the field at run time. Unset and reset fields resolve to
// the zero value.
func (f Field[T]) Value() (T, error) {
	switch f.state {
	case stateLiteral:
		return f.lit, nil
	case stateExpr:
		return f.expr.Value()
	}
	var zero T
	return zero, nil
}

// LowerSpec drops unset fields, renders reset as null and expressions as
// their reference string. Literal expressions lower to their value.
func (f Field[T]) LowerSpec() (spec.Value, bool, error) {
	switch f.state {
	case stateLiteral:
		return spec.Lower(f.lit)
	case stateExpr:
		if l, ok := any(f.expr).(spec.Lowerer); ok {
			return l.LowerSpec()
		}
		return spec.String(f.expr.Reference()), true, nil
	case stateReset:
		return spec.Lower(spec.ResetValue)
	}
	return nil, false, nil
}

func (f Field[T]) String() string {
	switch f.state {
	case stateLiteral:
		return fmt.Sprint(f.lit)
	case stateExpr:
		return f.expr.Reference()
	case stateReset:
		return "RESET"
	}
	return "unset"
}
