package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fnmanifest/internal/spec"
)

func TestValidatorAcceptsBuiltDocument(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	doc, err := sampleStack(t).ToSpec()
	require.NoError(t, err)
	assert.NoError(t, v.Validate(doc))
}

func TestValidatorRejectsMissingTrigger(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	doc := spec.M(
		spec.P("specVersion", spec.String(spec.SpecVersion)),
		spec.P("endpoints", spec.M(
			spec.P("api", spec.M(
				spec.P("entryPoint", spec.String("api")),
				spec.P("platform", spec.String("gcfv2")),
			)),
		)),
	)
	assert.Error(t, v.Validate(doc))
}

func TestValidatorRejectsBadValues(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	cases := map[string]string{
		"wrong version":  `{"specVersion":"v2","endpoints":{}}`,
		"memory string":  `{"specVersion":"v1alpha1","endpoints":{"a":{"entryPoint":"a","platform":"gcfv2","availableMemoryMb":"lots","httpsTrigger":{}}}}`,
		"unknown field":  `{"specVersion":"v1alpha1","endpoints":{"a":{"entryPoint":"a","platform":"gcfv2","memory":1,"httpsTrigger":{}}}}`,
		"bad param name": `{"specVersion":"v1alpha1","endpoints":{},"params":[{"name":"lower","type":"string"}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, v.ValidateJSON([]byte(doc)))
		})
	}

	ok := `{"specVersion":"v1alpha1","endpoints":{"a":{"entryPoint":"a","platform":"gcfv2","availableMemoryMb":"{{ params.MEM }}","httpsTrigger":{}}}}`
	assert.NoError(t, v.ValidateJSON([]byte(ok)))
}
