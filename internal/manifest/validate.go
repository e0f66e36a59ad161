package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/roach88/fnmanifest/internal/spec"
)

//go:embed schema/descriptor.schema.json
var descriptorSchema string

const descriptorSchemaURL = "https://fnmanifest.dev/schema/descriptor.schema.json"

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(descriptorSchemaURL, strings.NewReader(descriptorSchema)); err != nil {
			schemaErr = fmt.Errorf("add descriptor schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(descriptorSchemaURL)
	})
	return compiledSchema, schemaErr
}

// Validator checks lowered descriptor documents against the embedded schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the descriptor schema.
func NewValidator() (*Validator, error) {
	sch, err := loadSchema()
	if err != nil {
		return nil, err
	}
	return &Validator{schema: sch}, nil
}

// Validate checks a lowered document.
func (v *Validator) Validate(doc spec.Value) error {
	data, err := spec.MarshalValueJSON(doc)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}
	return v.ValidateJSON(data)
}

// ValidateJSON checks a JSON-encoded document.
func (v *Validator) ValidateJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var document any
	if err := dec.Decode(&document); err != nil {
		return fmt.Errorf("decode descriptor: %w", err)
	}
	return v.schema.Validate(document)
}
