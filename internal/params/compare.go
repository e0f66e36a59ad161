package params

import (
	"cmp"
	"fmt"
)

// Comparators accepted by Compare.
const (
	OpEqual        = "=="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpLess         = "<"
	OpLessEqual    = "<="
)

// CompareExpression is a boolean expression comparing an expression with a
// literal of the same type.
type CompareExpression[T Scalar] struct {
	op    string
	left  Expression[T]
	right T
}

// Compare builds "left op right". Unknown comparators fail here, not at
// resolution time.
func Compare[T Scalar](left Expression[T], op string, right T) (*CompareExpression[T], error) {
	switch op {
	case OpEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownComparator, op)
	}
	return &CompareExpression[T]{op: op, left: left, right: right}, nil
}

// Equals builds "left == right".
func Equals[T Scalar](left Expression[T], right T) *CompareExpression[T] {
	return &CompareExpression[T]{op: OpEqual, left: left, right: right}
}

// Value evaluates the comparison against the left side's resolved value.
func (c *CompareExpression[T]) Value() (bool, error) {
	left, err := c.left.Value()
	if err != nil {
		return false, err
	}
	n := compareScalar(left, c.right)
	switch c.op {
	case OpEqual:
		return n == 0, nil
	case OpGreater:
		return n > 0, nil
	case OpGreaterEqual:
		return n >= 0, nil
	case OpLess:
		return n < 0, nil
	case OpLessEqual:
		return n <= 0, nil
	}
	return false, fmt.Errorf("%w %q", ErrUnknownComparator, c.op)
}

// Reference renders e.g. `{{ params.REGION == "us" }}`.
func (c *CompareExpression[T]) Reference() string {
	return reference(c.cel())
}

func (c *CompareExpression[T]) cel() string {
	return fmt.Sprintf("%s %s %s", celOf(c.left), c.op, celLiteral(c.right))
}

func (c *CompareExpression[T]) String() string {
	return c.Reference()
}

// compareScalar orders two scalars; false sorts before true.
func compareScalar[T Scalar](a, b T) int {
	switch av := any(a).(type) {
	case bool:
		bv := any(b).(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case string:
		return cmp.Compare(av, any(b).(string))
	case int:
		return cmp.Compare(av, any(b).(int))
	case float64:
		return cmp.Compare(av, any(b).(float64))
	}
	return 0
}

// TernaryExpression selects one of two expressions based on a boolean test.
type TernaryExpression[T any] struct {
	test    Expression[bool]
	ifTrue  Expression[T]
	ifFalse Expression[T]
}

// Ternary builds "test ? ifTrue : ifFalse". Branches may be literals (Lit)
// or other expressions.
func Ternary[T any](test Expression[bool], ifTrue, ifFalse Expression[T]) *TernaryExpression[T] {
	return &TernaryExpression[T]{test: test, ifTrue: ifTrue, ifFalse: ifFalse}
}

// Then is shorthand for Ternary with literal branches.
func Then[T any](test Expression[bool], ifTrue, ifFalse T) *TernaryExpression[T] {
	return Ternary[T](test, Lit(ifTrue), Lit(ifFalse))
}

// Value resolves the test and returns the selected branch's value.
func (e *TernaryExpression[T]) Value() (T, error) {
	ok, err := e.test.Value()
	if err != nil {
		var zero T
		return zero, err
	}
	if ok {
		return e.ifTrue.Value()
	}
	return e.ifFalse.Value()
}

// Reference renders e.g. "{{ params.LARGE ? 1024 : 256 }}".
func (e *TernaryExpression[T]) Reference() string {
	return reference(e.cel())
}

func (e *TernaryExpression[T]) cel() string {
	return fmt.Sprintf("%s ? %s : %s", celOf(e.test), celOf(e.ifTrue), celOf(e.ifFalse))
}

func (e *TernaryExpression[T]) String() string {
	return e.Reference()
}
