package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/fnmanifest/internal/params"
)

var (
	paramKeys  = []string{"type", "default", "label", "description", "immutable", "input"}
	inputKinds = []string{"text", "select", "multiSelect", "resource"}
)

// declareParam registers one param declaration. Defaults may reference
// params declared earlier.
func (c *compiler) declareParam(name string, v cue.Value) error {
	if err := c.checkKeys(v, paramKeys); err != nil {
		return err
	}
	r := &reader{c: c, v: v}
	kind := params.Kind(r.required("type"))
	label := r.text("label")
	description := r.text("description")
	immutable := r.flag("immutable")
	if r.err != nil {
		return r.err
	}
	if !kind.Known() {
		return &CompileError{
			Field:   "params",
			Message: fmt.Sprintf("param %s: unknown type %q", name, kind),
			Pos:     at(v, "type").Pos(),
		}
	}
	input, err := c.input(at(v, "input"))
	if err != nil {
		return err
	}

	reg := c.fc.Params()
	switch kind {
	case params.KindString:
		err = declare(r, name, stringLit, reg.String, params.Options[string]{
			Label: label, Description: description, Immutable: immutable, Input: input,
		})
	case params.KindInt:
		err = declare(r, name, intLit, reg.Int, params.Options[int]{
			Label: label, Description: description, Immutable: immutable, Input: input,
		})
	case params.KindFloat:
		err = declare(r, name, floatLit, reg.Float, params.Options[float64]{
			Label: label, Description: description, Immutable: immutable, Input: input,
		})
	case params.KindBool:
		err = declare(r, name, boolLit, reg.Bool, params.Options[bool]{
			Label: label, Description: description, Immutable: immutable, Input: input,
		})
	case params.KindList:
		err = declare(r, name, stringList, reg.List, params.Options[[]string]{
			Label: label, Description: description, Immutable: immutable, Input: input,
		})
	case params.KindSecret:
		if d := at(v, "default"); d.Exists() {
			return &CompileError{
				Field:   "params",
				Message: fmt.Sprintf("param %s: secret params cannot have a default", name),
				Pos:     d.Pos(),
			}
		}
		if input != nil {
			return &CompileError{
				Field:   "params",
				Message: fmt.Sprintf("param %s: secret params cannot have an input", name),
				Pos:     at(v, "input").Pos(),
			}
		}
		_, err = reg.Secret(name, params.SecretOptions{Label: label, Description: description, Immutable: immutable})
	}
	var ce *CompileError
	if errors.As(err, &ce) {
		return err
	}
	if err != nil {
		return &CompileError{Field: "params", Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return nil
}

// declare reads the default and registers the param through fn.
func declare[T any](r *reader, name string, lit func(cue.Value) (T, error),
	fn func(string, params.Options[T]) (*params.Param[T], error), opts params.Options[T]) error {
	opts.Default = defaultOf(r, lit)
	if r.err != nil {
		return r.err
	}
	_, err := fn(name, opts)
	return err
}

// defaultOf reads the default of a param: a literal or an expression over
// earlier params. nil when absent.
func defaultOf[T any](r *reader, lit func(cue.Value) (T, error)) params.Expression[T] {
	f := read(r, "default", lit)
	if f.IsReset() {
		r.fail(&CompileError{Field: "type", Message: "default cannot be null", Pos: r.get("default").Pos()})
		return nil
	}
	if e, ok := f.Expr(); ok {
		return e
	}
	if x, ok := f.Literal(); ok {
		return params.Lit(x)
	}
	return nil
}

// input reads a prompt hint such as { select: { options: [...] } }.
func (c *compiler) input(v cue.Value) (params.Input, error) {
	if !v.Exists() {
		return nil, nil
	}
	if err := c.checkKeys(v, inputKinds); err != nil {
		return nil, err
	}

	var found []string
	for _, k := range inputKinds {
		if at(v, k).Exists() {
			found = append(found, k)
		}
	}
	if len(found) != 1 {
		return nil, &CompileError{
			Field:   "params",
			Message: fmt.Sprintf("input needs exactly one of %v", inputKinds),
			Pos:     v.Pos(),
		}
	}

	body := at(v, found[0])
	r := &reader{c: c, v: body}
	switch found[0] {
	case "text":
		if err := c.checkKeys(body, []string{"example", "validationRegex", "validationErrorMessage"}); err != nil {
			return nil, err
		}
		in := params.TextInput{
			Example:                r.text("example"),
			ValidationRegex:        r.text("validationRegex"),
			ValidationErrorMessage: r.text("validationErrorMessage"),
		}
		return in, r.err
	case "select":
		opts, err := c.selectOptions(body)
		return params.SelectInput{Options: opts}, err
	case "multiSelect":
		opts, err := c.selectOptions(body)
		return params.MultiSelectInput{Options: opts}, err
	default:
		if err := c.checkKeys(body, []string{"type"}); err != nil {
			return nil, err
		}
		in := params.ResourceInput{Type: r.required("type")}
		return in, r.err
	}
}

func (c *compiler) selectOptions(v cue.Value) ([]params.SelectOption, error) {
	if err := c.checkKeys(v, []string{"options"}); err != nil {
		return nil, err
	}
	list := at(v, "options")
	if list.IncompleteKind() != cue.ListKind {
		return nil, kindError(list, "list of options")
	}
	iter, err := list.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []params.SelectOption
	for iter.Next() {
		item := iter.Value()
		if err := c.checkKeys(item, []string{"value", "label"}); err != nil {
			return nil, err
		}
		value, err := scalarLit(at(item, "value"))
		if err != nil {
			return nil, err
		}
		r := &reader{c: c, v: item}
		out = append(out, params.SelectOption{Value: value, Label: r.text("label")})
		if r.err != nil {
			return nil, r.err
		}
	}
	return out, nil
}
