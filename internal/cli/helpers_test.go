package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fnmanifest/internal/testutil"
)

const validDeclarations = `
package functions

params: MIN_INSTANCES: { type: "int", default: 1 }

functions: {
	api: { trigger: "https.request", minInstances: "{{ params.MIN_INSTANCES }}" }
	onOrder: { trigger: "firestore.document.written", document: "orders/{id}" }
}
`

// writeDeclarations creates a directory holding one CUE file per source.
func writeDeclarations(t *testing.T, sources ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i, src := range sources {
		name := filepath.Join(dir, "functions"+string(rune('a'+i))+".cue")
		require.NoError(t, os.WriteFile(name, []byte(src), 0644))
	}
	return dir
}

func testRootOptions(format string) *RootOptions {
	return &RootOptions{Format: format, Lookup: testutil.Env{}.Lookup}
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
