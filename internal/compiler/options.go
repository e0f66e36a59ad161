package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/fnmanifest/internal/options"
	"github.com/roach88/fnmanifest/internal/params"
)

// runtimeKeys are accepted by globalOptions and by every function.
var runtimeKeys = []string{
	"region", "memory", "timeoutSeconds", "minInstances", "maxInstances",
	"concurrency", "cpu", "vpcConnector", "vpcEgress", "serviceAccount",
	"ingress", "labels", "secrets", "enforceAppCheck", "preserveExternalChanges",
}

var (
	corsKeys       = []string{"origins", "methods"}
	taskRetryKeys  = []string{"maxAttempts", "maxRetrySeconds", "maxBackoffSeconds", "maxDoublings", "minBackoffSeconds"}
	rateLimitsKeys = []string{"maxConcurrentDispatches", "maxDispatchesPerSecond"}
)

var (
	egressLit  = enumLit(options.EgressPrivateRangesOnly, options.EgressAllTraffic)
	ingressLit = enumLit(options.IngressAllowAll, options.IngressAllowInternalOnly, options.IngressAllowInternalAndGCLB)
)

func (c *compiler) runtimeOptions(v cue.Value) (options.RuntimeOptions, error) {
	r := &reader{c: c, v: v}
	o := r.runtime()
	return o, r.err
}

func (r *reader) runtime() options.RuntimeOptions {
	return options.RuntimeOptions{
		Region:                  r.strings("region"),
		Memory:                  r.int("memory"),
		TimeoutSeconds:          r.int("timeoutSeconds"),
		MinInstances:            r.int("minInstances"),
		MaxInstances:            r.int("maxInstances"),
		Concurrency:             r.int("concurrency"),
		CPU:                     read(r, "cpu", cpuLit),
		VPCConnector:            r.str("vpcConnector"),
		VPCEgress:               read(r, "vpcEgress", egressLit),
		ServiceAccount:          r.str("serviceAccount"),
		Ingress:                 read(r, "ingress", ingressLit),
		Labels:                  r.labels("labels"),
		Secrets:                 r.secrets("secrets"),
		EnforceAppCheck:         r.flag("enforceAppCheck"),
		PreserveExternalChanges: r.flag("preserveExternalChanges"),
	}
}

// secrets reads a list of declared secret param names. null resets the
// bound secrets.
func (r *reader) secrets(key string) options.Field[[]string] {
	v := r.get(key)
	switch {
	case r.err != nil || !v.Exists():
		return options.Field[[]string]{}
	case v.IsNull():
		return options.Reset[[]string]()
	}
	names, err := stringList(v)
	if err != nil {
		r.fail(err)
		return options.Field[[]string]{}
	}
	for _, name := range names {
		d, ok := r.c.fc.Params().Lookup(name)
		if !ok {
			r.fail(&CompileError{
				Field:   "reference",
				Message: fmt.Sprintf("secret %s is not declared", name),
				Pos:     v.Pos(),
			})
			return options.Field[[]string]{}
		}
		if kind := d.Declaration().Kind; kind != params.KindSecret {
			r.fail(&CompileError{
				Field:   "reference.type",
				Message: fmt.Sprintf("param %s is a %s param, not a secret", name, kind),
				Pos:     v.Pos(),
			})
			return options.Field[[]string]{}
		}
	}
	return options.Set(names)
}

func (r *reader) events() options.EventHandlerOptions {
	return options.EventHandlerOptions{
		RuntimeOptions: r.runtime(),
		Retry:          r.boolean("retry"),
	}
}

func (r *reader) cors() *options.CorsOptions {
	var cors *options.CorsOptions
	r.nested("cors", corsKeys, func(s *reader) {
		cors = &options.CorsOptions{
			Origins: s.strings("origins"),
			Methods: s.strings("methods"),
		}
	})
	return cors
}

func (r *reader) taskRetry() *options.TaskRetryConfig {
	var rc *options.TaskRetryConfig
	r.nested("retryConfig", taskRetryKeys, func(s *reader) {
		rc = &options.TaskRetryConfig{
			MaxAttempts:       s.int("maxAttempts"),
			MaxRetrySeconds:   s.int("maxRetrySeconds"),
			MaxBackoffSeconds: s.int("maxBackoffSeconds"),
			MaxDoublings:      s.int("maxDoublings"),
			MinBackoffSeconds: s.int("minBackoffSeconds"),
		}
	})
	return rc
}

func (r *reader) rateLimits() *options.RateLimits {
	var rl *options.RateLimits
	r.nested("rateLimits", rateLimitsKeys, func(s *reader) {
		rl = &options.RateLimits{
			MaxConcurrentDispatches: s.int("maxConcurrentDispatches"),
			MaxDispatchesPerSecond:  s.int("maxDispatchesPerSecond"),
		}
	})
	return rl
}
