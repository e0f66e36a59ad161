package harness

import (
	"maps"
	"slices"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/fnmanifest/internal/spec"
)

// Snapshot renders the deterministic parts of a result as indented JSON:
// the descriptor, its hash, the invocation captures and any validation
// errors. Keys keep a fixed order so snapshots diff cleanly.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snap := spec.M(
		spec.P("scenario", spec.String(scenarioName)),
		spec.P("pass", spec.Bool(result.Pass)),
	)

	names := make(spec.List, len(result.Functions))
	for i, name := range result.Functions {
		names[i] = spec.String(name)
	}
	snap.Set("functions", names)

	if result.Hash != "" {
		snap.Set("hash", spec.String(result.Hash))
	}
	if result.document != nil {
		snap.Set("descriptor", result.document)
	}

	if len(result.Extractions) > 0 {
		extractions := make(spec.List, len(result.Extractions))
		for i, ex := range result.Extractions {
			extractions[i] = spec.M(
				spec.P("function", spec.String(ex.Function)),
				spec.P("paths", stringMap(ex.Paths)),
				spec.P("captures", stringMap(ex.Captures)),
			)
		}
		snap.Set("extractions", extractions)
	}

	if len(result.ValidationErrors) > 0 {
		verrs := make(spec.List, len(result.ValidationErrors))
		for i, ve := range result.ValidationErrors {
			verrs[i] = spec.M(
				spec.P("code", spec.String(ve.Code)),
				spec.P("field", spec.String(ve.Field)),
				spec.P("message", spec.String(ve.Message)),
			)
		}
		snap.Set("validationErrors", verrs)
	}

	return spec.MarshalJSONIndent(snap)
}

func stringMap(m map[string]string) *spec.Map {
	out := spec.NewMap()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out.Set(k, spec.String(m[k]))
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden. Extra goldie options override
// the fixture directory and suffix.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. A snapshot mismatch fails t.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...goldie.Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result, opts...); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's snapshot against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result, opts ...goldie.Option) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t, append([]goldie.Option{
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	}, opts...)...)
	g.Assert(t, scenarioName, data)

	return nil
}
