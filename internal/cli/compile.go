package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fnmanifest/internal/compiler"
	"github.com/roach88/fnmanifest/internal/functions"
	"github.com/roach88/fnmanifest/internal/manifest"
	"github.com/roach88/fnmanifest/internal/spec"
	"github.com/roach88/fnmanifest/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
	JSON   bool   // render JSON instead of YAML
	Record string // snapshot database path
}

// CompilationResult is the JSON payload of a successful compile.
type CompilationResult struct {
	Functions []FunctionSummary `json:"functions"`
	Hash      string            `json:"hash"`
	Output    string            `json:"output,omitempty"`
	Snapshot  *store.Snapshot   `json:"snapshot,omitempty"`
	Recorded  bool              `json:"recorded,omitempty"`
	Document  json.RawMessage   `json:"document,omitempty"`
}

// FunctionSummary describes one compiled function.
type FunctionSummary struct {
	Name      string `json:"name"`
	Trigger   string `json:"trigger"`
	EventType string `json:"eventType,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <declarations-dir>",
		Short: "Compile CUE function declarations to a descriptor",
		Long: `Compile CUE function declarations into the deployment descriptor.

The descriptor is checked against the descriptor JSON schema and written
as YAML (or JSON with --json) to stdout or --output. With --record the
canonical document is appended to a SQLite snapshot log.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "render the descriptor as JSON")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record the descriptor in this snapshot database")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadSpecs(dir, LoadModeCollectAll, opts.lookup())
	if loadResult == nil {
		code, message := parseCompileError(loadErrors[0])
		return fail(formatter, ExitCommandError, code, message)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	if len(loadErrors) > 0 {
		_ = formatter.Errors("Compilation failed", toCLIErrors(loadErrors))
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(loadErrors)))
	}

	fc := loadResult.Context
	doc, err := describe(fc)
	if err != nil {
		code, message := parseCompileError(err)
		return fail(formatter, ExitFailure, code, message)
	}
	hash, err := spec.ManifestHash(doc)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLowerFailed, err.Error())
	}

	render := spec.MarshalYAML
	if opts.JSON {
		render = spec.MarshalJSONIndent
	}
	data, err := render(doc)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeLowerFailed, fmt.Sprintf("rendering descriptor: %v", err))
	}

	result := &CompilationResult{
		Functions: summarize(fc),
		Hash:      hash,
		Output:    opts.Output,
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	if opts.Record != "" {
		snap, created, err := record(cmd, opts.Record, doc)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
		result.Snapshot = &snap
		result.Recorded = created
	}

	return outputCompileSuccess(formatter, result, doc, data)
}

// describe lowers the context's descriptor and checks it against the schema.
func describe(fc *functions.Context) (*spec.Map, error) {
	doc, err := fc.Manifest().ToSpec()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLowerFailed, Message: fmt.Sprintf("lowering descriptor: %v", err)}
	}
	validator, err := manifest.NewValidator()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeSchemaInvalid, Message: fmt.Sprintf("loading schema: %v", err)}
	}
	if err := validator.Validate(doc); err != nil {
		return nil, &LoadError{Code: ErrCodeSchemaInvalid, Message: fmt.Sprintf("descriptor rejected by schema: %v", err)}
	}
	return doc, nil
}

// record appends doc to the snapshot database at path.
func record(cmd *cobra.Command, path string, doc *spec.Map) (store.Snapshot, bool, error) {
	st, err := store.Open(path)
	if err != nil {
		return store.Snapshot{}, false, fmt.Errorf("opening snapshot database: %w", err)
	}
	defer st.Close()

	snap, created, err := st.SaveSnapshot(cmd.Context(), doc)
	if err != nil {
		return store.Snapshot{}, false, fmt.Errorf("recording snapshot: %w", err)
	}
	return snap, created, nil
}

// summarize lists the compiled functions in registration order.
func summarize(fc *functions.Context) []FunctionSummary {
	fns := fc.Functions()
	out := make([]FunctionSummary, len(fns))
	for i, f := range fns {
		out[i] = FunctionSummary{Name: f.Name, Trigger: f.Trigger.Kind().String(), EventType: f.EventType}
	}
	return out
}

// outputCompileSuccess outputs successful compilation results. In text
// mode without --output the rendered descriptor itself goes to stdout.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, doc *spec.Map, data []byte) error {
	if formatter.Format == "json" {
		if result.Output == "" {
			canonical, err := spec.MarshalCanonical(doc)
			if err != nil {
				return err
			}
			result.Document = canonical
		}
		return formatter.Success(result)
	}

	if result.Output == "" {
		if _, err := formatter.Writer.Write(data); err != nil {
			return err
		}
		if result.Snapshot != nil {
			formatter.VerboseLog("Snapshot %s (seq %d)", result.Snapshot.Hash, result.Snapshot.Seq)
		}
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d function(s)\n\n", len(result.Functions))
	for _, f := range result.Functions {
		if f.EventType != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s (%s)\n", f.Name, f.Trigger, f.EventType)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", f.Name, f.Trigger)
		}
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "Wrote descriptor to %s\n", result.Output)

	if result.Snapshot != nil {
		if result.Recorded {
			fmt.Fprintf(formatter.Writer, "Recorded snapshot %s (seq %d)\n", result.Snapshot.Hash, result.Snapshot.Seq)
		} else {
			fmt.Fprintf(formatter.Writer, "Snapshot %s already recorded (seq %d)\n", result.Snapshot.Hash, result.Snapshot.Seq)
		}
	}
	return nil
}

// toCLIErrors converts load and validation errors for output.
func toCLIErrors(errs []error) []CLIError {
	out := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := parseCompileError(err)
		out[i] = CLIError{Code: code, Message: message, Location: locationOf(err)}
	}
	return out
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	var validationErr compiler.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code, validationErr.Message
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// locationOf renders the source position carried by err, if any.
func locationOf(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
	}
	var validationErr compiler.ValidationError
	if errors.As(err, &validationErr) && validationErr.Line > 0 {
		return fmt.Sprintf("line %d", validationErr.Line)
	}
	return ""
}
