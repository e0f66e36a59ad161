package functions

import (
	"github.com/roach88/fnmanifest/internal/manifest"
	"github.com/roach88/fnmanifest/internal/options"
	"github.com/roach88/fnmanifest/internal/pathpattern"
)

// Path roles under which concrete event paths are supplied to ExtractParams.
const (
	RoleDocument  = "document"
	RoleRef       = "ref"
	RoleInstance  = "instance"
	RoleService   = "service"
	RoleConnector = "connector"
	RoleOperation = "operation"
)

type rolePattern struct {
	role    string
	pattern *pathpattern.PathPattern
}

// Function is one registered function and its assembled endpoint.
type Function struct {
	Name         string
	Trigger      options.Trigger
	EventType    string
	Endpoint     *manifest.Endpoint
	RequiredAPIs []manifest.RequiredAPI

	patterns []rolePattern
}

func newFunction(name, eventType string, trigger options.Trigger) *Function {
	f := &Function{Name: name, Trigger: trigger, EventType: eventType}
	add := func(role, template string) {
		if template != "" {
			f.patterns = append(f.patterns, rolePattern{role: role, pattern: pathpattern.Parse(template)})
		}
	}
	switch opts := trigger.(type) {
	case options.FirestoreOptions:
		add(RoleDocument, opts.Document)
	case options.DatabaseOptions:
		add(RoleRef, opts.Reference)
		add(RoleInstance, opts.Instance)
	case options.DataConnectOptions:
		add(RoleService, opts.Service)
		add(RoleConnector, opts.Connector)
		add(RoleOperation, opts.Operation)
	}
	return f
}

// Patterns returns the function's path patterns keyed by role.
func (f *Function) Patterns() map[string]*pathpattern.PathPattern {
	out := make(map[string]*pathpattern.PathPattern, len(f.patterns))
	for _, rp := range f.patterns {
		out[rp.role] = rp.pattern
	}
	return out
}

// ExtractParams binds the captures of each of the function's patterns
// against the concrete path supplied under the same role. Later patterns
// win on name clashes. Roles without a supplied path are skipped.
func (f *Function) ExtractParams(paths map[string]string) map[string]string {
	out := map[string]string{}
	for _, rp := range f.patterns {
		path, ok := paths[rp.role]
		if !ok {
			continue
		}
		for k, v := range rp.pattern.ExtractMatches(path) {
			out[k] = v
		}
	}
	return out
}
