package manifest

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/fnmanifest/internal/params"
	"github.com/roach88/fnmanifest/internal/spec"
)

// Stack is the whole descriptor document of one deployable unit.
type Stack struct {
	SpecVersion  string
	Endpoints    map[string]*Endpoint
	Params       []params.Declared
	RequiredAPIs []RequiredAPI
}

// BuildStack aggregates endpoints, the surfaced params of reg and the
// merged required APIs. Built-in params are never included.
func BuildStack(endpoints map[string]*Endpoint, reg *params.Registry, apis []RequiredAPI) *Stack {
	s := &Stack{
		SpecVersion:  spec.SpecVersion,
		Endpoints:    endpoints,
		RequiredAPIs: MergeRequiredAPIs(apis),
	}
	if reg != nil {
		s.Params = reg.Surfaced()
	}
	slog.Debug("manifest assembled", "endpoints", len(endpoints), "params", len(s.Params), "requiredAPIs", len(s.RequiredAPIs))
	return s
}

// ToSpec lowers the document. Endpoints are keyed by function name in
// sorted order.
func (s *Stack) ToSpec() (*spec.Map, error) {
	endpoints := spec.NewMap()
	names := make([]string, 0, len(s.Endpoints))
	for name := range s.Endpoints {
		names = append(names, name)
	}
	slices.SortFunc(names, strings.Compare)
	for _, name := range names {
		e, err := s.Endpoints[name].ToSpec()
		if err != nil {
			return nil, err
		}
		endpoints.Set(name, e)
	}

	ps := make(spec.List, 0, len(s.Params))
	for _, p := range s.Params {
		m, err := ParamSpec(p)
		if err != nil {
			return nil, err
		}
		ps = append(ps, m)
	}

	apis, _, err := spec.Lower(s.RequiredAPIs)
	if err != nil {
		return nil, fmt.Errorf("requiredAPIs: %w", err)
	}
	if apis == nil {
		apis = spec.List{}
	}

	return spec.M(
		spec.P("specVersion", spec.String(s.SpecVersion)),
		spec.P("endpoints", endpoints),
		spec.P("params", ps),
		spec.P("requiredAPIs", apis),
	), nil
}

// ParamSpec lowers one param declaration. A default that is itself an
// expression renders as its reference string.
func ParamSpec(d params.Declared) (*spec.Map, error) {
	decl := d.Declaration()
	if !decl.Kind.Known() {
		return nil, fmt.Errorf("param %s: unsupported param kind %q", decl.Name, decl.Kind)
	}

	out := spec.M(spec.P("name", spec.String(decl.Name)))
	if decl.Label != "" {
		out.Set("label", spec.String(decl.Label))
	}
	if decl.Description != "" {
		out.Set("description", spec.String(decl.Description))
	}
	if decl.Immutable != nil {
		out.Set("immutable", spec.Bool(*decl.Immutable))
	}
	if decl.Default != nil {
		v, ok, err := spec.Lower(decl.Default)
		if err != nil {
			return nil, fmt.Errorf("param %s: default: %w", decl.Name, err)
		}
		if ok {
			out.Set("default", v)
		}
	}
	if decl.Input != nil {
		v, ok, err := decl.Input.LowerSpec()
		if err != nil {
			return nil, fmt.Errorf("param %s: input: %w", decl.Name, err)
		}
		if ok {
			out.Set("input", v)
		}
	}
	out.Set("type", spec.String(string(decl.Kind)))
	return out, nil
}
