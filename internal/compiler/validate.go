package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/fnmanifest/internal/functions"
	"github.com/roach88/fnmanifest/internal/params"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrCUE = "E100" // CUE evaluation error or unclassified failure

	// Declaration shape errors (E101-E109)
	ErrMissingTrigger   = "E101" // function has no trigger
	ErrUnknownTrigger   = "E102" // trigger id not recognized
	ErrInvalidOption    = "E103" // unknown option key or value outside its set
	ErrInvalidFieldType = "E104" // value of the wrong CUE kind
	ErrInvalidParam     = "E105" // bad param declaration
	ErrMissingRequired  = "E106" // required trigger field missing

	// Param reference errors (E110-E119)
	ErrUndefinedParam     = "E110" // reference to an undeclared param
	ErrParamTypeMismatch  = "E111" // param kind does not fit the option
	ErrMalformedReference = "E112" // "{{ ... }}" that is not params.NAME

	// Endpoint assembly errors (E120)
	ErrEndpointRejected = "E120" // options rejected while building the endpoint
)

// CodeFor maps a CompileError field to its validation code.
func CodeFor(field string) string {
	switch field {
	case "trigger":
		return ErrMissingTrigger
	case "trigger.id":
		return ErrUnknownTrigger
	case "option":
		return ErrInvalidOption
	case "type":
		return ErrInvalidFieldType
	case "params":
		return ErrInvalidParam
	case "required":
		return ErrMissingRequired
	case "reference":
		return ErrUndefinedParam
	case "reference.type":
		return ErrParamTypeMismatch
	case "reference.syntax":
		return ErrMalformedReference
	case "build":
		return ErrEndpointRejected
	default:
		return ErrCUE
	}
}

// ValidationError represents a declaration validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a declaration document against a scratch context.
// Returns all errors found (does not fail-fast): each param and each
// function is checked independently.
func Validate(v cue.Value, lookup params.LookupFunc) []ValidationError {
	if err := v.Validate(); err != nil {
		return []ValidationError{toValidationError(formatCUEError(err))}
	}

	fc := functions.NewContext(lookup)
	c := &compiler{fc: fc}
	var errs []ValidationError
	collect := func(err error) error {
		if err != nil {
			errs = append(errs, toValidationError(err))
		}
		return nil
	}

	if p := v.LookupPath(cue.ParsePath(FieldParams)); p.Exists() {
		collect(c.forEach(p, func(name string, pv cue.Value) error {
			return collect(c.declareParam(name, pv))
		}))
	}

	if g := v.LookupPath(cue.ParsePath(FieldGlobalOptions)); g.Exists() {
		if err := c.checkKeys(g, runtimeKeys); err != nil {
			collect(err)
		} else if opts, err := c.runtimeOptions(g); err != nil {
			collect(err)
		} else {
			fc.SetGlobalOptions(opts)
		}
	}

	if f := v.LookupPath(cue.ParsePath(FieldFunctions)); f.Exists() {
		collect(c.forEach(f, func(name string, fv cue.Value) error {
			return collect(c.compileFunction(name, fv))
		}))
	}
	return errs
}

func toValidationError(err error) ValidationError {
	var ce *CompileError
	if !errors.As(err, &ce) {
		return ValidationError{Field: "cue", Message: err.Error(), Code: ErrCUE}
	}
	ve := ValidationError{Field: ce.Field, Message: ce.Message, Code: CodeFor(ce.Field)}
	if ce.Pos.IsValid() {
		ve.Line = ce.Pos.Line()
	}
	return ve
}
