package spec

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"
)

// Sentinel is the one-value type meaning "explicitly restore the platform
// default for this field". It lowers to Null and is never confused with an
// absent value.
type Sentinel struct{}

// ResetValue is the only Sentinel.
var ResetValue = Sentinel{}

// Lowerer is implemented by types that control their own lowering.
// present=false means the value is absent and the enclosing field is dropped.
type Lowerer interface {
	LowerSpec() (v Value, present bool, err error)
}

// Referencer is implemented by deferred expressions. Lowering renders the
// canonical reference string, never a resolved value.
type Referencer interface {
	Reference() string
}

// UnsupportedTypeError is returned when a Go value has no lowered form.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("spec: unsupported type %s", e.Type)
}

// Lower converts a descriptor record into a Value tree.
//
// Rules, applied in order:
//   - nil, nil pointers, nil maps and nil slices are absent
//   - Sentinel lowers to Null
//   - Value, Lowerer and Referencer lower themselves
//   - named string/int/float/bool types lower to their raw value
//   - structs lower field by field in declaration order using `spec` tags
//   - maps lower with keys sorted
func Lower(v any) (Value, bool, error) {
	if v == nil {
		return nil, false, nil
	}
	return lowerReflect(reflect.ValueOf(v))
}

// MustLower is like Lower but panics on error. Absent values become Null.
// Use only in tests or for values known to be lowerable.
func MustLower(v any) Value {
	out, ok, err := Lower(v)
	if err != nil {
		panic(err)
	}
	if !ok {
		return Null{}
	}
	return out
}

var (
	lowererType    = reflect.TypeFor[Lowerer]()
	referencerType = reflect.TypeFor[Referencer]()
)

func lowerReflect(rv reflect.Value) (Value, bool, error) {
	if !rv.IsValid() {
		return nil, false, nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil, false, nil
		}
	}

	if rv.CanInterface() {
		switch val := rv.Interface().(type) {
		case Sentinel:
			return Null{}, true, nil
		case Value:
			return val, true, nil
		}
		if rv.Type().Implements(lowererType) {
			return rv.Interface().(Lowerer).LowerSpec()
		}
		if rv.Type().Implements(referencerType) {
			return String(rv.Interface().(Referencer).Reference()), true, nil
		}
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return lowerReflect(rv.Elem())
	case reflect.String:
		return String(rv.String()), true, nil
	case reflect.Bool:
		return Bool(rv.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint())), true, nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), true, nil
	case reflect.Slice, reflect.Array:
		return lowerList(rv)
	case reflect.Map:
		return lowerMap(rv)
	case reflect.Struct:
		return lowerStruct(rv)
	default:
		return nil, false, &UnsupportedTypeError{Type: rv.Type()}
	}
}

func lowerList(rv reflect.Value) (Value, bool, error) {
	out := make(List, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem, ok, err := lowerReflect(rv.Index(i))
		if err != nil {
			return nil, false, fmt.Errorf("[%d]: %w", i, err)
		}
		if !ok {
			elem = Null{}
		}
		out = append(out, elem)
	}
	return out, true, nil
}

func lowerMap(rv reflect.Value) (Value, bool, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, false, &UnsupportedTypeError{Type: rv.Type()}
	}
	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(a.String(), b.String())
	})
	out := NewMap()
	for _, k := range keys {
		elem, ok, err := lowerReflect(rv.MapIndex(k))
		if err != nil {
			return nil, false, fmt.Errorf("[%q]: %w", k.String(), err)
		}
		if ok {
			out.Set(k.String(), elem)
		}
	}
	return out, true, nil
}

func lowerStruct(rv reflect.Value) (Value, bool, error) {
	out := NewMap()
	if err := lowerFields(rv, out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// lowerFields appends rv's fields to out. Untagged embedded structs are
// flattened into the parent.
func lowerFields(rv reflect.Value, out *Map) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() && !(sf.Anonymous && sf.Type.Kind() == reflect.Struct) {
			continue
		}
		name, omitEmpty, skip := parseTag(sf)
		if skip {
			continue
		}
		fv := rv.Field(i)

		if sf.Anonymous && sf.Tag.Get("spec") == "" && fv.Kind() == reflect.Struct {
			if err := lowerFields(fv, out); err != nil {
				return err
			}
			continue
		}

		if omitEmpty && fv.IsZero() {
			continue
		}
		elem, ok, err := lowerReflect(fv)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if ok {
			out.Set(name, elem)
		}
	}
	return nil
}

func parseTag(sf reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := sf.Tag.Get("spec")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = lowerFirst(sf.Name)
	}
	return name, opts == "omitempty", false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
