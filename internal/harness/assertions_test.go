package harness

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fnmanifest/internal/compiler"
	"github.com/roach88/fnmanifest/internal/functions"
	"github.com/roach88/fnmanifest/internal/testutil"
)

const assertionSource = ordersSource + `
functions: nightly: { trigger: "scheduler.schedule", schedule: "0 3 * * *" }
`

// compiled compiles assertionSource under env and returns the context and
// the result carrying the descriptor.
func compiled(t *testing.T, env testutil.Env) (*functions.Context, *Result) {
	t.Helper()
	h := &Harness{
		scenario: inlineScenario("assertions", assertionSource),
		lookup:   env.Lookup,
		logger:   slog.Default(),
	}
	value, err := loadDeclarations(h.scenario)
	require.NoError(t, err)

	result := NewResult()
	h.compile(value, result)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	require.NotNil(t, h.fc)
	return h.fc, result
}

func evaluate(fc *functions.Context, result *Result, a Assertion) []error {
	return EvaluateAssertions(fc, result, []Assertion{a})
}

func TestAssertFunctionCount(t *testing.T) {
	fc, result := compiled(t, testutil.Env{})

	assert.Empty(t, evaluate(fc, result, Assertion{Type: AssertFunctionCount, Count: 3}))

	errs := evaluate(fc, result, Assertion{Type: AssertFunctionCount, Count: 1})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "Expected: 1 function(s)")
	assert.Contains(t, errs[0].Error(), "Actual: 3 function(s) [api onOrder nightly]")
}

func TestAssertEndpointField(t *testing.T) {
	fc, result := compiled(t, testutil.Env{})

	passing := []Assertion{
		{Type: AssertEndpointField, Function: "api", Field: "platform", Value: "gcfv2"},
		{Type: AssertEndpointField, Function: "api", Field: "minInstances", Value: "{{ params.MIN_INSTANCES }}"},
		{Type: AssertEndpointField, Function: "onOrder", Field: "eventTrigger.retry", Value: false},
		{Type: AssertEndpointField, Function: "onOrder", Field: "eventTrigger.eventFilters", Value: map[string]any{
			"database":  "(default)",
			"namespace": "(default)",
		}},
		{Type: AssertEndpointField, Function: "nightly", Field: "scheduleTrigger.schedule", Value: "0 3 * * *"},
		{Type: AssertEndpointField, Function: "api", Field: "eventTrigger", Absent: true},
		{Type: AssertEndpointField, Function: "api", Field: "httpsTrigger.nope.deeper", Absent: true},
	}
	for _, a := range passing {
		assert.Empty(t, evaluate(fc, result, a), "%s.%s", a.Function, a.Field)
	}
}

func TestAssertEndpointField_Failures(t *testing.T) {
	fc, result := compiled(t, testutil.Env{})

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{
			name:      "wrong value",
			assertion: Assertion{Type: AssertEndpointField, Function: "api", Field: "platform", Value: "gcfv1"},
			want:      `Actual: "gcfv2"`,
		},
		{
			name:      "missing field",
			assertion: Assertion{Type: AssertEndpointField, Function: "api", Field: "scheduleTrigger", Value: "x"},
			want:      "field absent",
		},
		{
			name:      "present field asserted absent",
			assertion: Assertion{Type: AssertEndpointField, Function: "api", Field: "platform", Absent: true},
			want:      "api.platform absent",
		},
		{
			name:      "unknown endpoint",
			assertion: Assertion{Type: AssertEndpointField, Function: "missing", Field: "platform", Value: "gcfv2"},
			want:      "no such endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := evaluate(fc, result, tt.assertion)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.want)

			var assertionErr *AssertionError
			require.ErrorAs(t, errs[0], &assertionErr)
			assert.Equal(t, AssertEndpointField, assertionErr.Type)
		})
	}
}

func TestAssertRequiredAPI(t *testing.T) {
	fc, result := compiled(t, testutil.Env{})

	assert.Empty(t, evaluate(fc, result, Assertion{Type: AssertRequiredAPI, API: "cloudscheduler.googleapis.com"}))

	errs := evaluate(fc, result, Assertion{Type: AssertRequiredAPI, API: "cloudtasks.googleapis.com"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "[cloudscheduler.googleapis.com]")
}

func TestAssertParamDeclared(t *testing.T) {
	fc, result := compiled(t, testutil.Env{})

	assert.Empty(t, evaluate(fc, result, Assertion{Type: AssertParamDeclared, Param: "MIN_INSTANCES"}))
	assert.Empty(t, evaluate(fc, result, Assertion{Type: AssertParamDeclared, Param: "GCLOUD_PROJECT"}), "builtins are registered")

	errs := evaluate(fc, result, Assertion{Type: AssertParamDeclared, Param: "NOPE"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "not declared")
}

func TestAssertParamValue(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		fc, result := compiled(t, testutil.Env{})
		assert.Empty(t, evaluate(fc, result, Assertion{Type: AssertParamValue, Param: "MIN_INSTANCES", Value: 1}))
	})

	t.Run("env", func(t *testing.T) {
		fc, result := compiled(t, testutil.Env{"MIN_INSTANCES": "3"})
		assert.Empty(t, evaluate(fc, result, Assertion{Type: AssertParamValue, Param: "MIN_INSTANCES", Value: 3}))

		errs := evaluate(fc, result, Assertion{Type: AssertParamValue, Param: "MIN_INSTANCES", Value: "3"})
		require.Len(t, errs, 1, "a string does not match an int")
		assert.Contains(t, errs[0].Error(), "Actual: 3")
	})

	t.Run("unparseable env falls back to default", func(t *testing.T) {
		fc, result := compiled(t, testutil.Env{"MIN_INSTANCES": "many"})
		assert.Empty(t, evaluate(fc, result, Assertion{Type: AssertParamValue, Param: "MIN_INSTANCES", Value: 1}))
	})

	t.Run("undeclared", func(t *testing.T) {
		fc, result := compiled(t, testutil.Env{})
		errs := evaluate(fc, result, Assertion{Type: AssertParamValue, Param: "NOPE", Value: 1})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "not declared")
	})
}

func TestAssertValidationError(t *testing.T) {
	result := NewResult()
	result.ValidationErrors = []compiler.ValidationError{
		{Field: "trigger.id", Message: "unknown trigger", Code: "E102"},
	}

	assert.Empty(t, evaluate(nil, result, Assertion{Type: AssertValidationError, Code: "E102"}))

	errs := evaluate(nil, result, Assertion{Type: AssertValidationError, Code: "E101"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "[E102]")
}

func TestAssertions_WithoutDescriptor(t *testing.T) {
	result := NewResult()
	for _, a := range []Assertion{
		{Type: AssertEndpointField, Function: "api", Field: "platform", Value: "gcfv2"},
		{Type: AssertRequiredAPI, API: "cloudscheduler.googleapis.com"},
		{Type: AssertParamDeclared, Param: "MIN_INSTANCES"},
		{Type: AssertParamValue, Param: "MIN_INSTANCES", Value: 1},
	} {
		errs := evaluate(nil, result, a)
		require.Len(t, errs, 1, a.Type)
		assert.Contains(t, errs[0].Error(), "declarations did not compile")
	}
}

func TestEvaluateAssertions_ReportsEachFailure(t *testing.T) {
	fc, result := compiled(t, testutil.Env{})
	errs := EvaluateAssertions(fc, result, []Assertion{
		{Type: AssertFunctionCount, Count: 3},
		{Type: AssertFunctionCount, Count: 4},
		{Type: "bogus"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "assertion 2 (function_count)")
	assert.Contains(t, errs[1].Error(), `unknown assertion type "bogus"`)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertRequiredAPI, Expected: "required API x", Actual: "[]"}
	assert.Equal(t, "Assertion failed: required_api\n  Expected: required API x\n  Actual: []", err.Error())
}
