package params

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fnmanifest/internal/spec"
)

func envOf(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestParamReference(t *testing.T) {
	r := NewRegistry(envOf(nil))
	p := Must(r.Int("MIN_INSTANCES", Options[int]{}))
	assert.Equal(t, "{{ params.MIN_INSTANCES }}", p.Reference())
	assert.Equal(t, "MIN_INSTANCES", p.Name())
}

func TestParamResolvesFromEnvironment(t *testing.T) {
	r := NewRegistry(envOf(map[string]string{
		"S":    "hello",
		"I":    "42",
		"F":    "1.5",
		"B":    "Yes",
		"L":    `["a","","b"]`,
		"LCSV": "x,,y,",
	}))

	s := Must(r.String("S", Options[string]{}))
	i := Must(r.Int("I", Options[int]{}))
	f := Must(r.Float("F", Options[float64]{}))
	b := Must(r.Bool("B", Options[bool]{}))
	l := Must(r.List("L", Options[[]string]{}))
	lcsv := Must(r.List("LCSV", Options[[]string]{}))

	sv, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, "hello", sv)

	iv, err := i.Value()
	require.NoError(t, err)
	assert.Equal(t, 42, iv)

	fv, err := f.Value()
	require.NoError(t, err)
	assert.Equal(t, 1.5, fv)

	bv, err := b.Value()
	require.NoError(t, err)
	assert.True(t, bv)

	lv, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lv)

	csv, err := lcsv.Value()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, csv)
}

func TestParamDefaults(t *testing.T) {
	r := NewRegistry(envOf(map[string]string{"BASE": "7"}))
	base := Must(r.Int("BASE", Options[int]{}))
	derived := Must(r.Int("DERIVED", Options[int]{Default: base}))
	literal := Must(r.Int("LITERAL", Options[int]{Default: Lit(3)}))
	none := Must(r.Int("NONE", Options[int]{}))

	v, err := derived.Value()
	require.NoError(t, err)
	assert.Equal(t, 7, v, "expression default resolves recursively")

	v, err = literal.Value()
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = none.Value()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestParamPermissiveFallback(t *testing.T) {
	r := NewRegistry(envOf(map[string]string{"I": "lots", "F": "many"}))
	i := Must(r.Int("I", Options[int]{Default: Lit(5)}))
	f := Must(r.Float("F", Options[float64]{}))

	iv, err := i.Value()
	require.NoError(t, err)
	assert.Equal(t, 5, iv)

	fv, err := f.Value()
	require.NoError(t, err)
	assert.Equal(t, 0.0, fv)
}

func TestBoolParseTokens(t *testing.T) {
	for _, tok := range []string{"true", "T", "1", "y", "YES"} {
		r := NewRegistry(envOf(map[string]string{"B": tok}))
		v, err := Must(r.Bool("B", Options[bool]{})).Value()
		require.NoError(t, err, tok)
		assert.True(t, v, tok)
	}
	for _, tok := range []string{"false", "F", "0", "n", "No"} {
		r := NewRegistry(envOf(map[string]string{"B": tok}))
		v, err := Must(r.Bool("B", Options[bool]{})).Value()
		require.NoError(t, err, tok)
		assert.False(t, v, tok)
	}
}

func TestBoolParseErrorNamesValue(t *testing.T) {
	r := NewRegistry(envOf(map[string]string{"B": "maybe"}))
	_, err := Must(r.Bool("B", Options[bool]{})).Value()

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "maybe", pe.Value)
	assert.Contains(t, err.Error(), `"maybe"`)
}

func TestSecretParam(t *testing.T) {
	r := NewRegistry(envOf(map[string]string{"API_KEY": "s3cret"}))
	s := Must(r.Secret("API_KEY", SecretOptions{Label: "key"}))
	missing := Must(r.Secret("OTHER_KEY", SecretOptions{}))

	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	v, err = missing.Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)
	assert.Equal(t, "{{ params.API_KEY }}", s.Reference())
	assert.Equal(t, KindSecret, s.Declaration().Kind)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(envOf(nil))
	_, err := r.String("DUP", Options[string]{})
	require.NoError(t, err)

	_, err = r.Int("DUP", Options[int]{})
	require.ErrorIs(t, err, ErrDuplicateParam)
	assert.Contains(t, err.Error(), "'DUP' has already been declared")

	_, err = r.Secret("DUP", SecretOptions{})
	require.ErrorIs(t, err, ErrDuplicateParam)

	_, err = r.String(ProjectIDName, Options[string]{})
	require.ErrorIs(t, err, ErrDuplicateParam, "built-ins occupy their names")
}

func TestRegistryRejectsBadNames(t *testing.T) {
	r := NewRegistry(envOf(nil))
	for _, name := range []string{"lower", "Mixed_Case", "WITH-DASH", ""} {
		_, err := r.String(name, Options[string]{})
		require.ErrorIs(t, err, ErrInvalidParamName, name)
	}
	_, err := r.Secret("bad", SecretOptions{})
	require.ErrorIs(t, err, ErrInvalidParamName)
}

func TestRegistryOrderAndBuiltins(t *testing.T) {
	r := NewRegistry(envOf(map[string]string{"GCLOUD_PROJECT": "demo"}))
	Must(r.String("B_PARAM", Options[string]{}))
	Must(r.Secret("A_SECRET", SecretOptions{}))

	surfaced := r.Surfaced()
	require.Len(t, surfaced, 2)
	assert.Equal(t, "B_PARAM", surfaced[0].Declaration().Name)
	assert.Equal(t, "A_SECRET", surfaced[1].Declaration().Name)
	assert.Len(t, r.All(), 7)

	project, err := r.ProjectID().Value()
	require.NoError(t, err)
	assert.Equal(t, "demo", project)

	ext, err := r.ExtensionID().Value()
	require.NoError(t, err)
	assert.Equal(t, "", ext)
	assert.True(t, r.StorageBucket().Declaration().Builtin)

	d, ok := r.Lookup("B_PARAM")
	require.True(t, ok)
	assert.Equal(t, KindString, d.Declaration().Kind)
}

func TestCompareExpression(t *testing.T) {
	r := NewRegistry(envOf(map[string]string{"MAX": "8", "REGION": "us"}))
	limit := Must(r.Int("MAX", Options[int]{}))
	region := Must(r.String("REGION", Options[string]{}))

	tests := []struct {
		op       string
		right    int
		expected bool
	}{
		{OpEqual, 8, true},
		{OpGreater, 6, true},
		{OpGreaterEqual, 8, true},
		{OpLess, 8, false},
		{OpLessEqual, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			c, err := Compare[int](limit, tt.op, tt.right)
			require.NoError(t, err)
			v, err := c.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}

	eq := Equals[string](region, "yes")
	assert.Equal(t, `{{ params.REGION == "yes" }}`, eq.Reference())
	v, err := eq.Value()
	require.NoError(t, err)
	assert.False(t, v)
}

func TestCompareUnknownComparator(t *testing.T) {
	r := NewRegistry(envOf(nil))
	limit := Must(r.Int("MAX", Options[int]{}))
	_, err := Compare[int](limit, "!=", 3)
	require.ErrorIs(t, err, ErrUnknownComparator)
}

func TestTernaryExpression(t *testing.T) {
	r := NewRegistry(envOf(map[string]string{"LARGE_BOOL": "true", "LARGE_STR": "no", "MAX": "4"}))
	large := Must(r.Bool("LARGE_BOOL", Options[bool]{}))
	largeStr := Must(r.String("LARGE_STR", Options[string]{}))
	limit := Must(r.Int("MAX", Options[int]{}))

	mem := Then[int](large, 1024, 256)
	assert.Equal(t, "{{ params.LARGE_BOOL ? 1024 : 256 }}", mem.Reference())
	v, err := mem.Value()
	require.NoError(t, err)
	assert.Equal(t, 1024, v)

	cpu := Then[int](Equals[string](largeStr, "yes"), 6, 1)
	assert.Equal(t, `{{ params.LARGE_STR == "yes" ? 6 : 1 }}`, cpu.Reference())
	v, err = cpu.Value()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	capped := Ternary[int](Must(Compare[int](limit, OpGreater, 6)), Lit(6), limit)
	assert.Equal(t, "{{ params.MAX > 6 ? 6 : params.MAX }}", capped.Reference())
	v, err = capped.Value()
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	names := Then[string](large, "big", "small")
	assert.Equal(t, `{{ params.LARGE_BOOL ? "big" : "small" }}`, names.Reference())
}

func TestTernaryPropagatesParseError(t *testing.T) {
	r := NewRegistry(envOf(map[string]string{"FLAG": "sometimes"}))
	flag := Must(r.Bool("FLAG", Options[bool]{}))
	_, err := Then[int](flag, 1, 2).Value()
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
}

func TestLiteralLowersToRawValue(t *testing.T) {
	v, ok, err := spec.Lower(Lit(512))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, spec.Int(512), v)
	assert.Equal(t, `{{ "us" }}`, Lit("us").Reference())
	assert.Equal(t, "{{ 2.0 }}", Lit(2.0).Reference())
}

func TestExpressionsLowerToReferences(t *testing.T) {
	r := NewRegistry(envOf(nil))
	p := Must(r.Int("MEMORY", Options[int]{}))
	v, ok, err := spec.Lower(p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, spec.String("{{ params.MEMORY }}"), v)
}

func TestInputLowering(t *testing.T) {
	text := spec.MustLower(TextInput{Example: "us-east1", ValidationRegex: "^[a-z0-9-]+$"})
	b, err := spec.MarshalValueJSON(text)
	require.NoError(t, err)
	assert.Equal(t, `{"text":{"example":"us-east1","validationRegex":"^[a-z0-9-]+$"}}`, string(b))

	sel := spec.MustLower(SelectInput{Options: []SelectOption{{Value: 256, Label: "small"}, {Value: 1024}}})
	b, err = spec.MarshalValueJSON(sel)
	require.NoError(t, err)
	assert.Equal(t, `{"select":{"options":[{"value":256,"label":"small"},{"value":1024}]}}`, string(b))

	multi := spec.MustLower(MultiSelectInput{Options: []SelectOption{{Value: "a"}}})
	b, err = spec.MarshalValueJSON(multi)
	require.NoError(t, err)
	assert.Equal(t, `{"multiSelect":{"options":[{"value":"a"}]}}`, string(b))

	res := spec.MustLower(ResourceInput{Type: ResourceStorageBucket})
	b, err = spec.MarshalValueJSON(res)
	require.NoError(t, err)
	assert.Equal(t, `{"resource":{"type":"storage.googleapis.com/Bucket"}}`, string(b))
}
