package harness

import (
	"fmt"
	"log/slog"
	"maps"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/fnmanifest/internal/compiler"
	"github.com/roach88/fnmanifest/internal/functions"
	"github.com/roach88/fnmanifest/internal/manifest"
	"github.com/roach88/fnmanifest/internal/params"
	"github.com/roach88/fnmanifest/internal/spec"
	"github.com/roach88/fnmanifest/internal/testutil"
)

// Harness runs one scenario against an isolated environment.
type Harness struct {
	scenario *Scenario
	lookup   params.LookupFunc
	fc       *functions.Context // nil until the declarations compile
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Unify the declaration files and inline source into one CUE value
// 2. Validate every param and function, collecting all errors
// 3. Compile, lower and schema-check the descriptor
// 4. Bind each invocation's paths against its function's patterns
// 5. Evaluate assertions
//
// The returned error is set only when the declarations cannot be read or
// built. Scenario failures are reported through Result.
func Run(scenario *Scenario) (*Result, error) {
	value, err := loadDeclarations(scenario)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		scenario: scenario,
		lookup:   testutil.Env(scenario.Env).Lookup,
		logger:   slog.Default().With("scenario", scenario.Name),
	}

	result := NewResult()
	h.compile(value, result)
	h.executeInvocations(result)

	for _, err := range EvaluateAssertions(h.fc, result, scenario.Assertions) {
		result.AddError(err.Error())
	}

	h.logger.Debug("scenario finished", "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

// loadDeclarations unifies the scenario's declaration files and inline
// source.
func loadDeclarations(s *Scenario) (cue.Value, error) {
	ctx := cuecontext.New()
	var values []cue.Value
	for _, path := range s.Declarations {
		data, err := os.ReadFile(path)
		if err != nil {
			return cue.Value{}, fmt.Errorf("failed to read declarations: %w", err)
		}
		values = append(values, ctx.CompileBytes(data, cue.Filename(path)))
	}
	if s.Source != "" {
		values = append(values, ctx.CompileString(s.Source, cue.Filename(s.Name+".cue")))
	}
	if len(values) == 0 {
		return cue.Value{}, fmt.Errorf("scenario %s has no declarations", s.Name)
	}

	value := values[0]
	for _, v := range values[1:] {
		value = value.Unify(v)
	}
	if err := value.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("building declarations: %w", err)
	}
	return value, nil
}

// compile validates and compiles value, filling in the descriptor fields
// of result.
func (h *Harness) compile(value cue.Value, result *Result) {
	if verrs := compiler.Validate(value, h.lookup); len(verrs) > 0 {
		result.ValidationErrors = verrs
		if !expectsValidationErrors(h.scenario) {
			for _, ve := range verrs {
				result.AddError(fmt.Sprintf("unexpected validation error: %s", ve.Error()))
			}
		}
		h.logger.Debug("declarations rejected", "errors", len(verrs))
		return
	}

	fc := functions.NewContext(h.lookup)
	if err := compiler.Compile(value, fc); err != nil {
		result.AddError(fmt.Sprintf("compile failed: %v", err))
		return
	}
	h.fc = fc
	for _, f := range fc.Functions() {
		result.Functions = append(result.Functions, f.Name)
	}

	doc, err := fc.Manifest().ToSpec()
	if err != nil {
		result.AddError(fmt.Sprintf("lowering descriptor: %v", err))
		return
	}
	validator, err := manifest.NewValidator()
	if err != nil {
		result.AddError(fmt.Sprintf("loading schema: %v", err))
		return
	}
	if err := validator.Validate(doc); err != nil {
		result.AddError(fmt.Sprintf("descriptor rejected by schema: %v", err))
		return
	}

	hash, err := spec.ManifestHash(doc)
	if err != nil {
		result.AddError(fmt.Sprintf("hashing descriptor: %v", err))
		return
	}
	rendered, err := spec.MarshalYAML(doc)
	if err != nil {
		result.AddError(fmt.Sprintf("rendering descriptor: %v", err))
		return
	}
	result.document = doc
	result.Hash = hash
	result.Descriptor = string(rendered)
	h.logger.Debug("descriptor assembled", "functions", len(result.Functions), "hash", hash)
}

// executeInvocations binds each invocation's paths and checks the
// captures against its expect clause.
func (h *Harness) executeInvocations(result *Result) {
	for i, inv := range h.scenario.Invocations {
		if h.fc == nil {
			result.AddError(fmt.Sprintf("invocations[%d]: %s not invoked, declarations did not compile", i, inv.Function))
			continue
		}
		f, ok := h.fc.Function(inv.Function)
		if !ok {
			result.AddError(fmt.Sprintf("invocations[%d]: unknown function %q", i, inv.Function))
			continue
		}

		captures := f.ExtractParams(inv.Paths)
		result.AddExtraction(inv.Function, inv.Paths, captures)

		if inv.Expect != nil && !maps.Equal(captures, inv.Expect) {
			result.AddError(fmt.Sprintf("invocations[%d]: %s captured %v, expected %v", i, inv.Function, captures, inv.Expect))
		}
	}
}

func expectsValidationErrors(s *Scenario) bool {
	for _, a := range s.Assertions {
		if a.Type == AssertValidationError {
			return true
		}
	}
	return false
}
