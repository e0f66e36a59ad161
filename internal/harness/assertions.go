package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/fnmanifest/internal/functions"
	"github.com/roach88/fnmanifest/internal/params"
	"github.com/roach88/fnmanifest/internal/spec"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against a scenario outcome
// and returns one error per failed assertion. fc is nil when the
// declarations did not compile.
func EvaluateAssertions(fc *functions.Context, result *Result, assertions []Assertion) []error {
	var errs []error
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFunctionCount:
			err = assertFunctionCount(result, a)
		case AssertEndpointField:
			err = assertEndpointField(result, a)
		case AssertRequiredAPI:
			err = assertRequiredAPI(result, a)
		case AssertParamDeclared:
			err = assertParamDeclared(fc, a)
		case AssertParamValue:
			err = assertParamValue(fc, a)
		case AssertValidationError:
			err = assertValidationError(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("assertion %d (%s): %w", i+1, a.Type, err))
		}
	}
	return errs
}

func assertFunctionCount(result *Result, a Assertion) error {
	if len(result.Functions) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertFunctionCount,
		Expected: fmt.Sprintf("%d function(s)", a.Count),
		Actual:   fmt.Sprintf("%d function(s) %v", len(result.Functions), result.Functions),
	}
}

func assertEndpointField(result *Result, a Assertion) error {
	if result.document == nil {
		return noDescriptor(a.Type)
	}
	endpoint, ok := lookupField(result.document, "endpoints", a.Function)
	if !ok {
		return &AssertionError{
			Type:     AssertEndpointField,
			Expected: fmt.Sprintf("endpoint %s", a.Function),
			Actual:   "no such endpoint",
		}
	}

	actual, found := lookupField(endpoint, strings.Split(a.Field, ".")...)
	if a.Absent {
		if !found {
			return nil
		}
		return &AssertionError{
			Type:     AssertEndpointField,
			Expected: fmt.Sprintf("%s.%s absent", a.Function, a.Field),
			Actual:   render(spec.ToAny(actual)),
		}
	}
	if !found {
		return &AssertionError{
			Type:     AssertEndpointField,
			Expected: fmt.Sprintf("%s.%s = %s", a.Function, a.Field, render(a.Value)),
			Actual:   "field absent",
		}
	}

	match, err := valuesEqual(spec.ToAny(actual), a.Value)
	if err != nil {
		return err
	}
	if !match {
		return &AssertionError{
			Type:     AssertEndpointField,
			Expected: fmt.Sprintf("%s.%s = %s", a.Function, a.Field, render(a.Value)),
			Actual:   render(spec.ToAny(actual)),
		}
	}
	return nil
}

func assertRequiredAPI(result *Result, a Assertion) error {
	if result.document == nil {
		return noDescriptor(a.Type)
	}
	apis, _ := lookupField(result.document, "requiredAPIs")
	list, _ := apis.(spec.List)
	var listed []string
	for _, item := range list {
		api, _ := lookupField(item, "api")
		if api == spec.String(a.API) {
			return nil
		}
		if s, ok := api.(spec.String); ok {
			listed = append(listed, string(s))
		}
	}
	return &AssertionError{
		Type:     AssertRequiredAPI,
		Expected: fmt.Sprintf("required API %s", a.API),
		Actual:   fmt.Sprintf("%v", listed),
	}
}

func assertParamDeclared(fc *functions.Context, a Assertion) error {
	if fc == nil {
		return noDescriptor(a.Type)
	}
	if _, ok := fc.Params().Lookup(a.Param); ok {
		return nil
	}
	return &AssertionError{
		Type:     AssertParamDeclared,
		Expected: fmt.Sprintf("param %s declared", a.Param),
		Actual:   "not declared",
	}
}

func assertParamValue(fc *functions.Context, a Assertion) error {
	if fc == nil {
		return noDescriptor(a.Type)
	}
	declared, ok := fc.Params().Lookup(a.Param)
	if !ok {
		return &AssertionError{
			Type:     AssertParamValue,
			Expected: fmt.Sprintf("param %s = %s", a.Param, render(a.Value)),
			Actual:   "not declared",
		}
	}

	actual, err := paramValue(declared)
	if err != nil {
		return &AssertionError{
			Type:     AssertParamValue,
			Expected: fmt.Sprintf("param %s = %s", a.Param, render(a.Value)),
			Actual:   err.Error(),
		}
	}
	match, err := valuesEqual(actual, a.Value)
	if err != nil {
		return err
	}
	if !match {
		return &AssertionError{
			Type:     AssertParamValue,
			Expected: fmt.Sprintf("param %s = %s", a.Param, render(a.Value)),
			Actual:   render(actual),
		}
	}
	return nil
}

func assertValidationError(result *Result, a Assertion) error {
	var codes []string
	for _, ve := range result.ValidationErrors {
		if ve.Code == a.Code {
			return nil
		}
		codes = append(codes, ve.Code)
	}
	return &AssertionError{
		Type:     AssertValidationError,
		Expected: fmt.Sprintf("validation error %s", a.Code),
		Actual:   fmt.Sprintf("%v", codes),
	}
}

func noDescriptor(assertionType string) error {
	return &AssertionError{
		Type:     assertionType,
		Expected: "compiled declarations",
		Actual:   "declarations did not compile",
	}
}

// lookupField walks nested maps by key.
func lookupField(v spec.Value, keys ...string) (spec.Value, bool) {
	for _, key := range keys {
		m, ok := v.(*spec.Map)
		if !ok {
			return nil, false
		}
		if v, ok = m.Get(key); !ok {
			return nil, false
		}
	}
	return v, true
}

// paramValue resolves a param under its registry's environment.
func paramValue(d params.Declared) (any, error) {
	switch p := d.(type) {
	case *params.Param[string]:
		return valueOf(p.Value())
	case *params.Param[int]:
		return valueOf(p.Value())
	case *params.Param[float64]:
		return valueOf(p.Value())
	case *params.Param[bool]:
		return valueOf(p.Value())
	case *params.Param[[]string]:
		return valueOf(p.Value())
	case *params.SecretParam:
		return valueOf(p.Value())
	default:
		return nil, fmt.Errorf("unsupported param type %T", d)
	}
}

func valueOf[T any](v T, err error) (any, error) {
	return v, err
}

// valuesEqual compares two values after a JSON round trip, so numeric
// types and YAML-decoded maps compare by content.
func valuesEqual(actual, expected any) (bool, error) {
	a, err := normalize(actual)
	if err != nil {
		return false, err
	}
	e, err := normalize(expected)
	if err != nil {
		return false, err
	}
	return reflect.DeepEqual(a, e), nil
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalizing %v: %w", v, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("normalizing %v: %w", v, err)
	}
	return out, nil
}

func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
