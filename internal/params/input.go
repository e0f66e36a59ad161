package params

import "github.com/roach88/fnmanifest/internal/spec"

// ResourceStorageBucket is the only resource type the deploy tool can pick.
const ResourceStorageBucket = "storage.googleapis.com/Bucket"

// Input hints how the deploy tool should prompt for an unbound param.
// Implemented by TextInput, SelectInput, MultiSelectInput and ResourceInput.
type Input interface {
	spec.Lowerer
	input() // Sealed
}

// TextInput prompts for free text, retried until it matches ValidationRegex.
type TextInput struct {
	Example                string `spec:"example,omitempty"`
	ValidationRegex        string `spec:"validationRegex,omitempty"`
	ValidationErrorMessage string `spec:"validationErrorMessage,omitempty"`
}

func (TextInput) input() {}

func (t TextInput) LowerSpec() (spec.Value, bool, error) {
	return wrapInput("text", t)
}

// SelectOption is one choice of a select input. Value is a string, int,
// float64 or bool matching the param's kind.
type SelectOption struct {
	Value any    `spec:"value"`
	Label string `spec:"label,omitempty"`
}

// SelectInput prompts for one of a fixed list of options.
type SelectInput struct {
	Options []SelectOption `spec:"options"`
}

func (SelectInput) input() {}

func (s SelectInput) LowerSpec() (spec.Value, bool, error) {
	return wrapInput("select", s)
}

// MultiSelectInput prompts for any subset of a fixed list of options.
// Only list params accept it.
type MultiSelectInput struct {
	Options []SelectOption `spec:"options"`
}

func (MultiSelectInput) input() {}

func (m MultiSelectInput) LowerSpec() (spec.Value, bool, error) {
	return wrapInput("multiSelect", m)
}

// ResourceInput prompts the operator to pick a managed resource of Type.
type ResourceInput struct {
	Type string `spec:"type"`
}

func (ResourceInput) input() {}

func (r ResourceInput) LowerSpec() (spec.Value, bool, error) {
	return wrapInput("resource", r)
}

// wrapInput nests the lowered fields of body under kind.
func wrapInput(kind string, body any) (spec.Value, bool, error) {
	inner, _, err := spec.Lower(plain(body))
	if err != nil {
		return nil, false, err
	}
	return spec.M(spec.P(kind, inner)), true, nil
}

type (
	plainText        TextInput
	plainSelect      SelectInput
	plainMultiSelect MultiSelectInput
	plainResource    ResourceInput
)

// plain strips the Lowerer method set so spec.Lower walks the fields.
func plain(body any) any {
	switch b := body.(type) {
	case TextInput:
		return plainText(b)
	case SelectInput:
		return plainSelect(b)
	case MultiSelectInput:
		return plainMultiSelect(b)
	case ResourceInput:
		return plainResource(b)
	}
	return body
}
