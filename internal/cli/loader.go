package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/fnmanifest/internal/compiler"
	"github.com/roach88/fnmanifest/internal/functions"
	"github.com/roach88/fnmanifest/internal/params"
)

// LoadMode controls how errors are handled during declaration loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading declarations from a directory.
type LoadResult struct {
	Context   *functions.Context // nil when compilation failed
	CUEValue  cue.Value          // The raw CUE value for additional processing
	FileCount int                // Number of CUE files found
}

// LoadError represents an error that occurred during declaration loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads the CUE declarations in dir and compiles them into a
// functions.Context that reads the environment through lookup.
//
// In LoadModeFailFast the first compile error is returned. In
// LoadModeCollectAll every param and function is checked and all errors
// are returned as compiler.ValidationError values.
//
// A nil result means the directory itself could not be loaded.
func LoadSpecs(dir string, mode LoadMode, lookup params.LookupFunc) (*LoadResult, []error) {
	value, fileCount, loadErr := loadValue(dir)
	if loadErr != nil {
		return nil, []error{loadErr}
	}
	result := &LoadResult{CUEValue: value, FileCount: fileCount}

	if mode == LoadModeCollectAll {
		if verrs := compiler.Validate(value, lookup); len(verrs) > 0 {
			errs := make([]error, len(verrs))
			for i, ve := range verrs {
				errs[i] = ve
			}
			return result, errs
		}
	}

	fc := functions.NewContext(lookup)
	if err := compiler.Compile(value, fc); err != nil {
		return result, []error{convertCompileError(err)}
	}
	if len(fc.Functions()) == 0 {
		return result, []error{&LoadError{Code: ErrCodeNoFunctions, Message: "no functions found in declarations"}}
	}

	slog.Debug("declarations loaded", "dir", dir, "files", fileCount, "functions", len(fc.Functions()))
	result.Context = fc
	return result, nil
}

// loadValue builds the CUE value of the package in dir.
func loadValue(dir string) (cue.Value, int, *LoadError) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("declarations directory not found: %s", dir)}
	}
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing declarations directory: %v", err)}
	}
	if !info.IsDir() {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, len(cueFiles), nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
//
// E0xx are load errors, E1xx come from the compiler (see compiler.CodeFor),
// E2xx from descriptor assembly and E3xx from the scenario runner.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeNoFunctions = "E008" // Declarations define no functions

	ErrCodeLowerFailed   = "E201" // Descriptor could not be lowered or rendered
	ErrCodeSchemaInvalid = "E202" // Descriptor rejected by the JSON schema
	ErrCodeStoreFailed   = "E203" // Snapshot store error
	ErrCodeTestFailed    = "E301" // One or more scenarios failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	return compiler.CodeFor(field)
}
