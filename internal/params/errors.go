package params

import (
	"errors"
	"fmt"
)

// Construction-time errors. Returned wrapped with the offending name.
var (
	ErrDuplicateParam    = errors.New("duplicate parameter")
	ErrInvalidParamName  = errors.New("invalid parameter name")
	ErrUnknownComparator = errors.New("unknown comparator")
	ErrTypeMismatch      = errors.New("parameter type mismatch")
)

// ParseError is returned when an environment value cannot be coerced to
// the declared kind. Only boolean params raise it; other kinds fall back.
type ParseError struct {
	Name  string
	Value string
	Kind  Kind
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("param %s: cannot parse %q as %s", e.Name, e.Value, e.Kind)
}
