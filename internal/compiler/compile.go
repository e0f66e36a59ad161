// Package compiler turns CUE function declarations into registrations on a
// functions.Context.
//
// A declaration document has three optional top-level fields:
//
//	globalOptions: { region: "us-central1", maxInstances: 10 }
//	params: { MIN_INSTANCES: { type: "int", default: 1 } }
//	functions: { onOrder: { trigger: "firestore.document.written", document: "orders/{id}" } }
//
// Option values are literals, null (reset to the platform default), or a
// "{{ params.NAME }}" reference to a declared param.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/fnmanifest/internal/functions"
)

// Top-level field names of a declaration document.
const (
	FieldGlobalOptions = "globalOptions"
	FieldParams        = "params"
	FieldFunctions     = "functions"
)

// Compile registers the params, global options and functions declared in v,
// in that order. It stops at the first error.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`functions: api: trigger: "https.request"`)
//	err := Compile(v, functions.NewContext(nil))
func Compile(v cue.Value, fc *functions.Context) error {
	if err := v.Validate(); err != nil {
		return formatCUEError(err)
	}
	c := &compiler{fc: fc}

	if p := v.LookupPath(cue.ParsePath(FieldParams)); p.Exists() {
		if err := c.forEach(p, c.declareParam); err != nil {
			return err
		}
	}

	if g := v.LookupPath(cue.ParsePath(FieldGlobalOptions)); g.Exists() {
		if err := c.checkKeys(g, runtimeKeys); err != nil {
			return err
		}
		opts, err := c.runtimeOptions(g)
		if err != nil {
			return err
		}
		fc.SetGlobalOptions(opts)
	}

	if f := v.LookupPath(cue.ParsePath(FieldFunctions)); f.Exists() {
		if err := c.forEach(f, c.compileFunction); err != nil {
			return err
		}
	}
	return nil
}

// compiler carries the target context through one Compile call.
type compiler struct {
	fc *functions.Context
}

// forEach calls fn for every regular field of the struct v.
func (c *compiler) forEach(v cue.Value, fn func(name string, v cue.Value) error) error {
	if v.IncompleteKind() != cue.StructKind {
		return &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("expected a struct, found %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Selector().Unquoted(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
