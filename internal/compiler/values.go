package compiler

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/fnmanifest/internal/options"
	"github.com/roach88/fnmanifest/internal/params"
)

var refPattern = regexp.MustCompile(`^\{\{\s*params\.([A-Za-z0-9_]+)\s*\}\}$`)

// at looks up a direct child of v.
func at(v cue.Value, key string) cue.Value {
	return v.LookupPath(cue.MakePath(cue.Str(key)))
}

// reader reads the options of one struct. The first error sticks and
// every later read becomes a no-op returning the zero value.
type reader struct {
	c   *compiler
	v   cue.Value
	err error
}

func (r *reader) get(key string) cue.Value {
	return at(r.v, key)
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// read reads key as an option field. See field.
func read[T any](r *reader, key string, lit func(cue.Value) (T, error)) options.Field[T] {
	if r.err != nil {
		return options.Field[T]{}
	}
	f, err := field(r.c, r.get(key), lit)
	r.fail(err)
	return f
}

func (r *reader) int(key string) options.Field[int] {
	return read(r, key, intLit)
}

func (r *reader) str(key string) options.Field[string] {
	return read(r, key, stringLit)
}

func (r *reader) boolean(key string) options.Field[bool] {
	return read(r, key, boolLit)
}

// text reads a plain string. Absent keys read as "".
func (r *reader) text(key string) string {
	v := r.get(key)
	if r.err != nil || !v.Exists() {
		return ""
	}
	s, err := stringLit(v)
	r.fail(err)
	return s
}

// required reads a plain string that must be present and non-empty.
func (r *reader) required(key string) string {
	if r.err != nil {
		return ""
	}
	if s := r.text(key); s != "" || r.err != nil {
		return s
	}
	r.fail(&CompileError{
		Field:   "required",
		Message: fmt.Sprintf("%s is required", key),
		Pos:     r.v.Pos(),
	})
	return ""
}

// strings reads a string or a list of strings.
func (r *reader) strings(key string) []string {
	v := r.get(key)
	if r.err != nil || !v.Exists() {
		return nil
	}
	out, err := stringsLit(v)
	r.fail(err)
	return out
}

// flag reads an optional boolean literal.
func (r *reader) flag(key string) *bool {
	v := r.get(key)
	if r.err != nil || !v.Exists() || v.IsNull() {
		return nil
	}
	b, err := boolLit(v)
	if err != nil {
		r.fail(err)
		return nil
	}
	return options.Bool(b)
}

// labels reads a struct of string values.
func (r *reader) labels(key string) map[string]string {
	v := r.get(key)
	if r.err != nil || !v.Exists() {
		return nil
	}
	out, err := stringMap(v)
	r.fail(err)
	return out
}

// nested runs fn over the struct at key after checking its keys. It
// reports whether the struct was present and read cleanly.
func (r *reader) nested(key string, keys []string, fn func(*reader)) bool {
	v := r.get(key)
	if r.err != nil || !v.Exists() {
		return false
	}
	if err := r.c.checkKeys(v, keys); err != nil {
		r.fail(err)
		return false
	}
	sub := &reader{c: r.c, v: v}
	fn(sub)
	r.fail(sub.err)
	return r.err == nil
}

// field reads v as an option field: absent is unset, null is reset, a
// "{{ params.NAME }}" string is a param expression, anything else goes
// through lit.
func field[T any](c *compiler, v cue.Value, lit func(cue.Value) (T, error)) (options.Field[T], error) {
	switch {
	case !v.Exists():
		return options.Field[T]{}, nil
	case v.IsNull():
		return options.Reset[T](), nil
	}

	name, ok, err := reference(v)
	if err != nil {
		return options.Field[T]{}, err
	}
	if ok {
		e, err := resolve[T](c, v, name)
		if err != nil {
			return options.Field[T]{}, err
		}
		return options.FromExpr(e), nil
	}

	x, err := lit(v)
	if err != nil {
		return options.Field[T]{}, err
	}
	return options.Set(x), nil
}

// reference reports the param named by a "{{ params.NAME }}" string.
func reference(v cue.Value) (string, bool, error) {
	if v.IncompleteKind() != cue.StringKind {
		return "", false, nil
	}
	s, err := v.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	if m := refPattern.FindStringSubmatch(s); m != nil {
		return m[1], true, nil
	}
	if strings.Contains(s, "{{") {
		return "", false, &CompileError{
			Field:   "reference.syntax",
			Message: fmt.Sprintf("malformed param reference %q", s),
			Pos:     v.Pos(),
		}
	}
	return "", false, nil
}

// resolve finds the declared param name as an expression of type T.
func resolve[T any](c *compiler, v cue.Value, name string) (params.Expression[T], error) {
	d, ok := c.fc.Params().Lookup(name)
	if !ok {
		return nil, &CompileError{
			Field:   "reference",
			Message: fmt.Sprintf("param %s is not declared", name),
			Pos:     v.Pos(),
		}
	}
	e, ok := d.(params.Expression[T])
	if !ok {
		var zero T
		return nil, &CompileError{
			Field:   "reference.type",
			Message: fmt.Sprintf("param %s is a %s param, cannot be used as %T", name, d.Declaration().Kind, zero),
			Pos:     v.Pos(),
			Err:     params.ErrTypeMismatch,
		}
	}
	return e, nil
}

func kindError(v cue.Value, want string) error {
	return &CompileError{
		Field:   "type",
		Message: fmt.Sprintf("expected %s, found %v", want, v.IncompleteKind()),
		Pos:     v.Pos(),
	}
}

func intLit(v cue.Value) (int, error) {
	if v.IncompleteKind() != cue.IntKind {
		return 0, kindError(v, "int")
	}
	n, err := v.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func floatLit(v cue.Value) (float64, error) {
	switch v.IncompleteKind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
	default:
		return 0, kindError(v, "number")
	}
	f, err := v.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

func stringLit(v cue.Value) (string, error) {
	if v.IncompleteKind() != cue.StringKind {
		return "", kindError(v, "string")
	}
	s, err := v.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func boolLit(v cue.Value) (bool, error) {
	if v.IncompleteKind() != cue.BoolKind {
		return false, kindError(v, "bool")
	}
	b, err := v.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// stringsLit accepts a single string or a list of strings.
func stringsLit(v cue.Value) ([]string, error) {
	if v.IncompleteKind() == cue.StringKind {
		s, err := stringLit(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	return stringList(v)
}

func stringList(v cue.Value) ([]string, error) {
	if v.IncompleteKind() != cue.ListKind {
		return nil, kindError(v, "list of strings")
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	out := []string{}
	for iter.Next() {
		s, err := stringLit(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func stringMap(v cue.Value) (map[string]string, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, kindError(v, "struct of strings")
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	out := map[string]string{}
	for iter.Next() {
		s, err := stringLit(iter.Value())
		if err != nil {
			return nil, err
		}
		out[iter.Selector().Unquoted()] = s
	}
	return out, nil
}

// scalarLit reads a string, number or bool as its Go value.
func scalarLit(v cue.Value) (any, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return stringLit(v)
	case cue.IntKind:
		return intLit(v)
	case cue.FloatKind, cue.NumberKind:
		return floatLit(v)
	case cue.BoolKind:
		return boolLit(v)
	default:
		return nil, kindError(v, "string, number or bool")
	}
}

// enumLit reads a string restricted to allowed.
func enumLit[T ~string](allowed ...T) func(cue.Value) (T, error) {
	return func(v cue.Value) (T, error) {
		s, err := stringLit(v)
		if err != nil {
			return "", err
		}
		if !slices.Contains(allowed, T(s)) {
			return "", &CompileError{
				Field:   "option",
				Message: fmt.Sprintf("%q is not one of %v", s, allowed),
				Pos:     v.Pos(),
			}
		}
		return T(s), nil
	}
}

// cpuLit reads a CPU count or "gcf_gen1".
func cpuLit(v cue.Value) (options.CPU, error) {
	if v.IncompleteKind() == cue.StringKind {
		s, err := stringLit(v)
		if err != nil {
			return options.CPU{}, err
		}
		if s != "gcf_gen1" {
			return options.CPU{}, &CompileError{
				Field:   "option",
				Message: fmt.Sprintf("cpu must be a count or \"gcf_gen1\", got %q", s),
				Pos:     v.Pos(),
			}
		}
		return options.GCFGen1, nil
	}
	n, err := intLit(v)
	if err != nil {
		return options.CPU{}, err
	}
	return options.CPUs(n), nil
}

// checkKeys rejects any field of v not named in one of the key sets.
func (c *compiler) checkKeys(v cue.Value, sets ...[]string) error {
	if v.IncompleteKind() != cue.StructKind {
		return kindError(v, "struct")
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		key := iter.Selector().Unquoted()
		known := false
		for _, set := range sets {
			if slices.Contains(set, key) {
				known = true
				break
			}
		}
		if !known {
			return &CompileError{
				Field:   "option",
				Message: fmt.Sprintf("unknown option %q", key),
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}
