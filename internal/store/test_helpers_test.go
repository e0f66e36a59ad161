package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/fnmanifest/internal/spec"
	"github.com/roach88/fnmanifest/internal/testutil"
)

// createTestStore creates a new store in a temp dir, stamped by a step clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(testutil.NewStepClock().Now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDocument builds a minimal descriptor document. Each endpoint
// gets the given memory size.
func createTestDocument(memory map[string]int64) *spec.Map {
	endpoints := spec.NewMap()
	for name, mb := range memory {
		endpoints.Set(name, spec.M(
			spec.P("entryPoint", spec.String(name)),
			spec.P("platform", spec.String("gcfv2")),
			spec.P("availableMemoryMb", spec.Int(mb)),
			spec.P("httpsTrigger", spec.NewMap()),
		))
	}
	return spec.M(
		spec.P("specVersion", spec.String(spec.SpecVersion)),
		spec.P("endpoints", endpoints),
		spec.P("params", spec.List{}),
		spec.P("requiredAPIs", spec.List{}),
	)
}
