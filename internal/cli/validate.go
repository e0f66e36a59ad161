package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fnmanifest/internal/compiler"
	"github.com/roach88/fnmanifest/internal/params"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	Functions int                        `json:"functions,omitempty"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <declarations-dir>",
		Short: "Validate declarations without writing a descriptor",
		Long: `Validate CUE function declarations without writing output.

Every param and function is checked and all errors are reported. When the
declarations are valid the assembled descriptor is also checked against
the descriptor JSON schema.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	errs, functions, err := ValidateSpecsDir(dir, opts.lookup())
	if err != nil {
		code, message := parseCompileError(err)
		return fail(formatter, ExitCommandError, code, message)
	}
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	formatter.VerboseLog("Validated %d function(s) in %s", functions, dir)

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Functions: functions})
	}
	fmt.Fprintf(formatter.Writer, "✓ All declarations valid (%d function(s))\n", functions)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		// JSON keeps the typed errors (field, line) in data.
		_ = formatter.encodeIndented(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		})
	} else {
		cliErrs := make([]CLIError, len(errs))
		for i, e := range errs {
			cliErrs[i] = CLIError{Code: e.Code, Message: e.Message, Location: locationOf(e)}
		}
		_ = formatter.Errors("Validation failed", cliErrs)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidateSpecsDir validates all declarations in a directory and returns
// the validation errors and the number of declared functions. The error
// return is set only when the directory itself cannot be loaded.
func ValidateSpecsDir(dir string, lookup params.LookupFunc) ([]compiler.ValidationError, int, error) {
	result, loadErrors := LoadSpecs(dir, LoadModeCollectAll, lookup)
	if result == nil {
		return nil, 0, loadErrors[0]
	}

	var errs []compiler.ValidationError
	for _, err := range loadErrors {
		code, message := parseCompileError(err)
		ve := compiler.ValidationError{Field: "load", Message: message, Code: code}
		if v, ok := err.(compiler.ValidationError); ok {
			ve = v
		} else if le, ok := err.(*LoadError); ok && le.Pos.IsValid() {
			ve.Line = le.Pos.Line()
		}
		errs = append(errs, ve)
	}
	if len(errs) > 0 {
		return errs, 0, nil
	}

	if _, err := describe(result.Context); err != nil {
		code, message := parseCompileError(err)
		return []compiler.ValidationError{{Field: "descriptor", Message: message, Code: code}}, 0, nil
	}
	return nil, len(result.Context.Functions()), nil
}
