package params

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
)

// Kind is the descriptor type tag of a param.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "boolean"
	KindList   Kind = "list"
	KindSecret Kind = "secret"
)

// Known reports whether k is one of the declared kinds.
func (k Kind) Known() bool {
	switch k {
	case KindString, KindInt, KindFloat, KindBool, KindList, KindSecret:
		return true
	}
	return false
}

// Names of the built-in params. They are always available and never
// surfaced in the descriptor document.
const (
	ProjectIDName        = "GCLOUD_PROJECT"
	StorageBucketName    = "STORAGE_BUCKET"
	DatabaseURLName      = "DATABASE_URL"
	DatabaseInstanceName = "DATABASE_INSTANCE"
	ExtensionIDName      = "EXT_INSTANCE_ID"
)

var nameRegex = regexp.MustCompile(`^[A-Z0-9_]+$`)

// LookupFunc reads an environment binding. os.LookupEnv is the default.
type LookupFunc func(name string) (string, bool)

// Declaration is the static description of a declared param.
type Declaration struct {
	Name        string
	Kind        Kind
	Label       string
	Description string
	Immutable   *bool
	// Default is a Literal or another Expression; nil when there is none.
	Default any
	Input   Input
	Builtin bool
}

// Declared is implemented by Param and SecretParam.
type Declared interface {
	Declaration() Declaration
	Reference() string
}

// Registry holds every param declared for one deployable unit, keyed by
// name in declaration order. It is append-only.
type Registry struct {
	lookup LookupFunc
	order  []Declared
	byName map[string]Declared

	projectID        *Param[string]
	storageBucket    *Param[string]
	databaseURL      *Param[string]
	databaseInstance *Param[string]
	extensionID      *Param[string]
}

// NewRegistry creates a registry reading bindings through lookup.
// A nil lookup uses os.LookupEnv. The built-in params are pre-registered.
func NewRegistry(lookup LookupFunc) *Registry {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	r := &Registry{lookup: lookup, byName: map[string]Declared{}}

	r.projectID = r.builtin(ProjectIDName, "", "The active Firebase project", nil)
	r.storageBucket = r.builtin(StorageBucketName, "", "The default Cloud Storage for Firebase bucket", nil)
	r.databaseURL = r.builtin(DatabaseURLName, "", "The Firebase project's default Realtime Database instance URL", nil)
	r.databaseInstance = r.builtin(DatabaseInstanceName, "", "The Firebase project's default Realtime Database instance name", nil)
	empty := Lit("")
	r.extensionID = r.builtin(ExtensionIDName, "Extension instance ID",
		"When a function is running as part of an extension, this is the unique identifier for the installed extension instance", empty)
	return r
}

func (r *Registry) builtin(name, label, description string, def Expression[string]) *Param[string] {
	p := &Param[string]{
		reg:   r,
		parse: parseString,
		decl: Declaration{
			Name:        name,
			Kind:        KindString,
			Label:       label,
			Description: description,
			Builtin:     true,
		},
		def: def,
	}
	if def != nil {
		p.decl.Default = def
	}
	r.order = append(r.order, p)
	r.byName[name] = p
	return p
}

// register validates the name and appends d. Duplicate names are rejected
// rather than overwritten.
func (r *Registry) register(name string, d Declared) error {
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w %q: parameter names must only use uppercase letters, numbers and underscores, e.g. 'UPPER_SNAKE_CASE'", ErrInvalidParamName, name)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: the parameter '%s' has already been declared", ErrDuplicateParam, name)
	}
	r.order = append(r.order, d)
	r.byName[name] = d
	slog.Debug("param declared", "name", name, "kind", d.Declaration().Kind)
	return nil
}

// Lookup returns the param declared under name.
func (r *Registry) Lookup(name string) (Declared, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// All returns every param, built-ins included, in declaration order.
func (r *Registry) All() []Declared {
	out := make([]Declared, len(r.order))
	copy(out, r.order)
	return out
}

// Surfaced returns the params shown to the operator: everything except built-ins.
func (r *Registry) Surfaced() []Declared {
	var out []Declared
	for _, d := range r.order {
		if !d.Declaration().Builtin {
			out = append(out, d)
		}
	}
	return out
}

// ProjectID is the built-in GCLOUD_PROJECT param.
func (r *Registry) ProjectID() *Param[string] { return r.projectID }

// StorageBucket is the built-in STORAGE_BUCKET param.
func (r *Registry) StorageBucket() *Param[string] { return r.storageBucket }

// DatabaseURL is the built-in DATABASE_URL param.
func (r *Registry) DatabaseURL() *Param[string] { return r.databaseURL }

// DatabaseInstance is the built-in DATABASE_INSTANCE param.
func (r *Registry) DatabaseInstance() *Param[string] { return r.databaseInstance }

// ExtensionID is the built-in EXT_INSTANCE_ID param.
func (r *Registry) ExtensionID() *Param[string] { return r.extensionID }

// Must panics if err is non-nil. Use only for declarations known to be valid.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
