package params

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
)

// Options are the optional parts of a param declaration.
type Options[T any] struct {
	// Default is used when the environment has no binding. Use Lit for a
	// constant or pass another Expression.
	Default     Expression[T]
	Label       string
	Description string
	Immutable   *bool
	Input       Input
}

// Param is a named, environment-backed expression of type T.
type Param[T any] struct {
	reg   *Registry
	decl  Declaration
	def   Expression[T]
	parse func(p *Param[T], raw string) (T, error)
}

// String declares a string param.
func (r *Registry) String(name string, opts Options[string]) (*Param[string], error) {
	return declare(r, name, KindString, opts, parseString)
}

// Int declares an int param.
func (r *Registry) Int(name string, opts Options[int]) (*Param[int], error) {
	return declare(r, name, KindInt, opts, parseInt)
}

// Float declares a float param.
func (r *Registry) Float(name string, opts Options[float64]) (*Param[float64], error) {
	return declare(r, name, KindFloat, opts, parseFloat)
}

// Bool declares a boolean param.
func (r *Registry) Bool(name string, opts Options[bool]) (*Param[bool], error) {
	return declare(r, name, KindBool, opts, parseBool)
}

// List declares a list-of-string param.
func (r *Registry) List(name string, opts Options[[]string]) (*Param[[]string], error) {
	return declare(r, name, KindList, opts, parseList)
}

func declare[T any](r *Registry, name string, kind Kind, opts Options[T], parse func(*Param[T], string) (T, error)) (*Param[T], error) {
	p := &Param[T]{
		reg:   r,
		parse: parse,
		def:   opts.Default,
		decl: Declaration{
			Name:        name,
			Kind:        kind,
			Label:       opts.Label,
			Description: opts.Description,
			Immutable:   opts.Immutable,
			Input:       opts.Input,
		},
	}
	if opts.Default != nil {
		p.decl.Default = opts.Default
	}
	if err := r.register(name, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the environment variable backing the param.
func (p *Param[T]) Name() string {
	return p.decl.Name
}

// Declaration returns the static description of the param.
func (p *Param[T]) Declaration() Declaration {
	return p.decl
}

// Reference renders "{{ params.NAME }}".
func (p *Param[T]) Reference() string {
	return reference(p.cel())
}

func (p *Param[T]) cel() string {
	return "params." + p.decl.Name
}

func (p *Param[T]) String() string {
	return p.Reference()
}

// Value resolves the param: the environment binding if present, else the
// default (resolved recursively), else the zero value of T.
func (p *Param[T]) Value() (T, error) {
	if raw, ok := p.reg.lookup(p.decl.Name); ok {
		return p.parse(p, raw)
	}
	return p.fallback()
}

func (p *Param[T]) fallback() (T, error) {
	if p.def != nil {
		return p.def.Value()
	}
	var zero T
	return zero, nil
}

func parseString(_ *Param[string], raw string) (string, error) {
	return raw, nil
}

func parseInt(p *Param[int], raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("param value is not an int, using default", "name", p.decl.Name, "value", raw)
		return p.fallback()
	}
	return n, nil
}

func parseFloat(p *Param[float64], raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		slog.Warn("param value is not a float, using default", "name", p.decl.Name, "value", raw)
		return p.fallback()
	}
	return f, nil
}

var (
	trueTokens  = []string{"true", "t", "1", "y", "yes"}
	falseTokens = []string{"false", "f", "0", "n", "no"}
)

func parseBool(p *Param[bool], raw string) (bool, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range trueTokens {
		if token == t {
			return true, nil
		}
	}
	for _, f := range falseTokens {
		if token == f {
			return false, nil
		}
	}
	return false, &ParseError{Name: p.decl.Name, Value: raw, Kind: KindBool}
}

// parseList accepts a JSON array literal or a comma-joined string. Empty
// elements are dropped either way.
func parseList(p *Param[[]string], raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return nonEmpty(items), nil
		}
		slog.Warn("param value is not a JSON string array, splitting on commas", "name", p.decl.Name)
	}
	return nonEmpty(strings.Split(trimmed, ",")), nil
}

func nonEmpty(items []string) []string {
	out := []string{}
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SecretParam is a param resolved only from the environment or secret
// storage. It never has a default.
type SecretParam struct {
	reg  *Registry
	decl Declaration
}

// SecretOptions are the optional parts of a secret declaration.
type SecretOptions struct {
	Label       string
	Description string
	Immutable   *bool
}

// Secret declares a secret param.
func (r *Registry) Secret(name string, opts SecretOptions) (*SecretParam, error) {
	s := &SecretParam{
		reg: r,
		decl: Declaration{
			Name:        name,
			Kind:        KindSecret,
			Label:       opts.Label,
			Description: opts.Description,
			Immutable:   opts.Immutable,
		},
	}
	if err := r.register(name, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the secret's name.
func (s *SecretParam) Name() string {
	return s.decl.Name
}

// Declaration returns the static description of the secret.
func (s *SecretParam) Declaration() Declaration {
	return s.decl
}

// Value reads the secret from the environment, defaulting to "".
func (s *SecretParam) Value() (string, error) {
	v, _ := s.reg.lookup(s.decl.Name)
	return v, nil
}

// Reference renders "{{ params.NAME }}".
func (s *SecretParam) Reference() string {
	return reference(s.cel())
}

func (s *SecretParam) cel() string {
	return "params." + s.decl.Name
}

func (s *SecretParam) String() string {
	return s.Reference()
}
