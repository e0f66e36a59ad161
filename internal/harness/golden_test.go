package harness

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Testdata(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/unknown_trigger.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestRunWithGolden_FixtureDir(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/orders.yaml")
	require.NoError(t, err)

	// Seed the fixture from a first run, then compare a second run to it.
	first, err := Run(scenario)
	require.NoError(t, err)
	data, err := Snapshot(scenario.Name, first)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, scenario.Name+".golden"), data, 0644))

	result, err := RunWithGolden(t, scenario, goldie.WithFixtureDir(dir))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario := inlineScenario("assert_golden", ordersSource, Assertion{Type: AssertFunctionCount, Count: 2})
	result, err := Run(scenario)
	require.NoError(t, err)

	data, err := Snapshot("assert_golden", result)
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assert_golden.golden"), data, 0644))

	require.NoError(t, AssertGolden(t, "assert_golden", result, goldie.WithFixtureDir(dir)))
}

func TestSnapshot_Contents(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/orders.yaml")
	require.NoError(t, err)
	result, err := Run(scenario)
	require.NoError(t, err)

	data, err := Snapshot(scenario.Name, result)
	require.NoError(t, err)

	var snap struct {
		Scenario    string         `json:"scenario"`
		Pass        bool           `json:"pass"`
		Functions   []string       `json:"functions"`
		Hash        string         `json:"hash"`
		Descriptor  map[string]any `json:"descriptor"`
		Extractions []Extraction   `json:"extractions"`
	}
	require.NoError(t, json.Unmarshal(data, &snap))

	assert.Equal(t, "orders", snap.Scenario)
	assert.True(t, snap.Pass)
	assert.Len(t, snap.Functions, 3)
	assert.Equal(t, result.Hash, snap.Hash)
	assert.Equal(t, "v1alpha1", snap.Descriptor["specVersion"])
	require.Len(t, snap.Extractions, 1)
	assert.Equal(t, map[string]string{"id": "o-1"}, snap.Extractions[0].Captures)
	assert.Equal(t, map[string]string{"document": "orders/o-1"}, snap.Extractions[0].Paths)
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/orders.yaml")
	require.NoError(t, err)

	var snapshots [][]byte
	for range 2 {
		result, err := Run(scenario)
		require.NoError(t, err)
		data, err := Snapshot(scenario.Name, result)
		require.NoError(t, err)
		snapshots = append(snapshots, data)
	}
	assert.Equal(t, string(snapshots[0]), string(snapshots[1]))
}
