package harness

import (
	"github.com/roach88/fnmanifest/internal/compiler"
	"github.com/roach88/fnmanifest/internal/spec"
)

// Extraction records the captures bound by one invocation.
type Extraction struct {
	Function string            `json:"function"`
	Paths    map[string]string `json:"paths"`
	Captures map[string]string `json:"captures"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every invocation and assertion held.
	Pass bool `json:"pass"`

	// Functions lists the declared function names in registration order.
	Functions []string `json:"functions"`

	// Descriptor is the YAML rendering of the descriptor. Empty when the
	// declarations did not compile.
	Descriptor string `json:"descriptor,omitempty"`

	// Hash is the descriptor's content hash.
	Hash string `json:"hash,omitempty"`

	Extractions      []Extraction               `json:"extractions,omitempty"`
	ValidationErrors []compiler.ValidationError `json:"validation_errors,omitempty"`

	// Errors holds failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	document *spec.Map
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Functions: []string{},
		Errors:    []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddExtraction records the captures of an invocation.
func (r *Result) AddExtraction(function string, paths, captures map[string]string) {
	r.Extractions = append(r.Extractions, Extraction{Function: function, Paths: paths, Captures: captures})
}
