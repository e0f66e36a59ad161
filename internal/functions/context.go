// Package functions is the registration surface: functions are declared
// on a Context, which assembles their endpoints and the descriptor document.
package functions

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/fnmanifest/internal/manifest"
	"github.com/roach88/fnmanifest/internal/options"
	"github.com/roach88/fnmanifest/internal/params"
)

// ErrDuplicateFunction is returned when a name is registered twice.
var ErrDuplicateFunction = errors.New("duplicate function")

// Context holds the params, global options and functions of one
// deployable unit. Endpoints are built at registration against the global
// options current at that time, so set global options first.
type Context struct {
	mu     sync.Mutex
	lookup params.LookupFunc
	params *params.Registry
	global options.RuntimeOptions
	fns    []*Function
	byName map[string]*Function

	configOnce sync.Once
	config     *FirebaseConfig
	configErr  error
}

// NewContext creates a context reading the environment through lookup.
// A nil lookup uses os.LookupEnv.
func NewContext(lookup params.LookupFunc) *Context {
	return &Context{
		lookup: lookup,
		params: params.NewRegistry(lookup),
		byName: map[string]*Function{},
	}
}

// Params returns the param registry.
func (c *Context) Params() *params.Registry {
	return c.params
}

// SetGlobalOptions replaces the global options wholesale. An unset CPU
// becomes the gen-1 allocation.
func (c *Context) SetGlobalOptions(o options.RuntimeOptions) {
	if !o.CPU.IsSet() {
		o.CPU = options.Set(options.GCFGen1)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.global = o
}

// GlobalOptions returns the current global options.
func (c *Context) GlobalOptions() options.RuntimeOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.global
}

// FirebaseConfig returns the project config from FIREBASE_CONFIG, loaded once.
func (c *Context) FirebaseConfig() (*FirebaseConfig, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = LoadFirebaseConfig(c.lookup)
	})
	return c.config, c.configErr
}

// Register builds the endpoint of a function and records it. eventType is
// required for families with several events and ignored otherwise.
func (c *Context) Register(name, eventType string, trigger options.Trigger) (*Function, error) {
	d := manifest.Defaults{Global: c.GlobalOptions()}
	if trigger != nil && trigger.Kind() == options.KindStorage {
		cfg, err := c.FirebaseConfig()
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		if cfg != nil {
			d.Bucket = cfg.StorageBucket
		}
	}

	endpoint, err := manifest.BuildEndpoint(manifest.Target{
		EntryPoint: name,
		Trigger:    trigger,
		EventType:  eventType,
	}, d)
	if err != nil {
		return nil, err
	}

	f := newFunction(name, eventType, trigger)
	f.Endpoint = endpoint
	f.RequiredAPIs = manifest.RequiredAPIsFor(trigger)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateFunction, name)
	}
	c.fns = append(c.fns, f)
	c.byName[name] = f
	slog.Debug("function registered", "name", name, "trigger", trigger.Kind())
	return f, nil
}

// Function returns the function registered under name.
func (c *Context) Function(name string) (*Function, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.byName[name]
	return f, ok
}

// Functions returns every registered function in registration order.
func (c *Context) Functions() []*Function {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Function, len(c.fns))
	copy(out, c.fns)
	return out
}

// Manifest aggregates every registered function into a descriptor document.
func (c *Context) Manifest() *manifest.Stack {
	fns := c.Functions()
	endpoints := make(map[string]*manifest.Endpoint, len(fns))
	var apis []manifest.RequiredAPI
	for _, f := range fns {
		endpoints[f.Name] = f.Endpoint
		apis = append(apis, f.RequiredAPIs...)
	}
	return manifest.BuildStack(endpoints, c.params, apis)
}
