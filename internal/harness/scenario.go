package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a descriptor conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Declarations lists CUE files to unify, relative to the scenario
	// base path.
	Declarations []string `yaml:"declarations,omitempty"`

	// Source is inline CUE unified with the declaration files.
	Source string `yaml:"source,omitempty"`

	// Env is the complete environment visible to params.
	Env map[string]string `yaml:"env,omitempty"`

	// Invocations bind concrete paths against a function's patterns.
	Invocations []Invocation `yaml:"invocations,omitempty"`

	// Assertions validate the assembled descriptor.
	Assertions []Assertion `yaml:"assertions"`
}

// Invocation supplies concrete paths, keyed by pattern role
// ("document", "ref", "instance", ...), to one function.
type Invocation struct {
	Function string            `yaml:"function"`
	Paths    map[string]string `yaml:"paths"`

	// Expect is the exact capture map. If nil, captures are recorded but
	// not checked.
	Expect map[string]string `yaml:"expect,omitempty"`
}

// Assertion validates the descriptor or the declaration outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "function_count": Count functions are declared
	// - "endpoint_field": Field of Function's endpoint equals Value (or is Absent)
	// - "required_api": the descriptor lists API
	// - "param_declared": Param is registered
	// - "param_value": Param resolves to Value
	// - "validation_error": validation reported Code
	Type string `yaml:"type"`

	Function string `yaml:"function,omitempty"`

	// Field is a dotted path into the endpoint (e.g. "eventTrigger.retry").
	Field string `yaml:"field,omitempty"`

	// Value is compared after JSON normalization, so 2 and 2.0 match.
	Value any `yaml:"value,omitempty"`

	// Absent asserts that Field is not present at all.
	Absent bool `yaml:"absent,omitempty"`

	Count int    `yaml:"count,omitempty"`
	API   string `yaml:"api,omitempty"`
	Param string `yaml:"param,omitempty"`
	Code  string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertFunctionCount   = "function_count"
	AssertEndpointField   = "endpoint_field"
	AssertRequiredAPI     = "required_api"
	AssertParamDeclared   = "param_declared"
	AssertParamValue      = "param_value"
	AssertValidationError = "validation_error"
)

// LoadScenario reads and parses a scenario YAML file. Declaration paths
// are resolved relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving declaration paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve paths BEFORE validation so existence checks see real files.
	for i, declPath := range scenario.Declarations {
		if !filepath.IsAbs(declPath) && basePath != "" {
			scenario.Declarations[i] = filepath.Join(basePath, declPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Declarations) == 0 && s.Source == "" {
		return fmt.Errorf("declarations or source is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, declPath := range s.Declarations {
		if _, err := os.Stat(declPath); os.IsNotExist(err) {
			return fmt.Errorf("declaration file not found: %s", declPath)
		}
	}

	for i, inv := range s.Invocations {
		if inv.Function == "" {
			return fmt.Errorf("invocations[%d]: function is required", i)
		}
		if len(inv.Paths) == 0 {
			return fmt.Errorf("invocations[%d]: paths is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFunctionCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for function_count", index)
		}
	case AssertEndpointField:
		if a.Function == "" {
			return fmt.Errorf("assertions[%d]: function is required for endpoint_field", index)
		}
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for endpoint_field", index)
		}
		if a.Absent && a.Value != nil {
			return fmt.Errorf("assertions[%d]: value and absent are exclusive", index)
		}
	case AssertRequiredAPI:
		if a.API == "" {
			return fmt.Errorf("assertions[%d]: api is required for required_api", index)
		}
	case AssertParamDeclared, AssertParamValue:
		if a.Param == "" {
			return fmt.Errorf("assertions[%d]: param is required for %s", index, a.Type)
		}
	case AssertValidationError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for validation_error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
