package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fnmanifest/internal/compiler"
	"github.com/roach88/fnmanifest/internal/testutil"
)

func TestValidateValidDeclarations(t *testing.T) {
	dir := writeDeclarations(t, validDeclarations)

	out, _, err := execute(NewValidateCommand(testRootOptions("text")), dir)
	require.NoError(t, err)
	assert.Equal(t, "✓ All declarations valid (2 function(s))\n", out)
}

func TestValidateValidDeclarationsJSON(t *testing.T) {
	dir := writeDeclarations(t, validDeclarations)

	out, _, err := execute(NewValidateCommand(testRootOptions("json")), dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Functions)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, _, err := execute(NewValidateCommand(testRootOptions("text")), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, out, "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, _, err := execute(NewValidateCommand(testRootOptions("text")), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, out, "no CUE files found")
}

const invalidDeclarations = `
package functions

params: BAD: type: "date"

functions: {
	a: memory: 256
	b: { trigger: "https.request", colour: "red" }
}
`

func TestValidateInvalidDeclarations(t *testing.T) {
	dir := writeDeclarations(t, invalidDeclarations)

	out, _, err := execute(NewValidateCommand(testRootOptions("text")), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed with 3 error(s)")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E105")
	assert.Contains(t, out, "E101")
	assert.Contains(t, out, "E103")
}

func TestValidateInvalidDeclarationsJSON(t *testing.T) {
	dir := writeDeclarations(t, invalidDeclarations)

	out, _, err := execute(NewValidateCommand(testRootOptions("json")), dir)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Error  CLIError         `json:"error"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, compiler.ErrInvalidParam, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 3)
	assert.Equal(t, 4, resp.Data.Errors[0].Line)
}

func TestValidateSpecsDir(t *testing.T) {
	errs, functions, err := ValidateSpecsDir(writeDeclarations(t, validDeclarations), testutil.Env{}.Lookup)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 2, functions)

	errs, _, err = ValidateSpecsDir(writeDeclarations(t, invalidDeclarations), testutil.Env{}.Lookup)
	require.NoError(t, err)
	assert.Len(t, errs, 3)

	_, _, err = ValidateSpecsDir(t.TempDir(), testutil.Env{}.Lookup)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestValidateNoFunctions(t *testing.T) {
	dir := writeDeclarations(t, "package functions\n\nparams: X: type: \"string\"\n")
	errs, _, err := ValidateSpecsDir(dir, testutil.Env{}.Lookup)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeNoFunctions, errs[0].Code)
}
