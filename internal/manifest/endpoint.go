// Package manifest assembles per-function endpoint descriptors and the
// descriptor document handed to the deployment tool.
package manifest

import (
	"fmt"

	"github.com/roach88/fnmanifest/internal/options"
	"github.com/roach88/fnmanifest/internal/spec"
)

// Endpoint is the canonical descriptor of one function. Exactly one of
// the trigger fields is set.
type Endpoint struct {
	EntryPoint                 string                                `spec:"entryPoint"`
	Region                     []string                              `spec:"region"`
	Platform                   string                                `spec:"platform"`
	AvailableMemoryMb          options.Field[int]                    `spec:"availableMemoryMb"`
	MaxInstances               options.Field[int]                    `spec:"maxInstances"`
	MinInstances               options.Field[int]                    `spec:"minInstances"`
	Concurrency                options.Field[int]                    `spec:"concurrency"`
	ServiceAccountEmail        options.Field[string]                 `spec:"serviceAccountEmail"`
	TimeoutSeconds             options.Field[int]                    `spec:"timeoutSeconds"`
	CPU                        options.Field[options.CPU]            `spec:"cpu"`
	VPC                        VPC                                   `spec:"vpc"`
	Labels                     map[string]string                     `spec:"labels"`
	IngressSettings            options.Field[options.IngressSetting] `spec:"ingressSettings"`
	SecretEnvironmentVariables SecretEnvironment                     `spec:"secretEnvironmentVariables"`
	HTTPSTrigger               *HTTPSTrigger                         `spec:"httpsTrigger"`
	CallableTrigger            *CallableTrigger                      `spec:"callableTrigger"`
	EventTrigger               *EventTrigger                         `spec:"eventTrigger"`
	ScheduleTrigger            *ScheduleTrigger                      `spec:"scheduleTrigger"`
	BlockingTrigger            *BlockingTrigger                      `spec:"blockingTrigger"`
	TaskQueueTrigger           *TaskQueueTrigger                     `spec:"taskQueueTrigger"`
}

// ToSpec lowers the endpoint.
func (e *Endpoint) ToSpec() (*spec.Map, error) {
	v, _, err := spec.Lower(e)
	if err != nil {
		return nil, fmt.Errorf("endpoint %s: %w", e.EntryPoint, err)
	}
	return v.(*spec.Map), nil
}

// VPC pairs a connector with its egress setting. It is omitted when the
// connector is unset and rendered as null when the connector is reset.
type VPC struct {
	Connector      options.Field[string]
	EgressSettings options.Field[options.VpcEgressSetting]
}

// LowerSpec implements spec.Lowerer.
func (v VPC) LowerSpec() (spec.Value, bool, error) {
	switch {
	case !v.Connector.IsSet():
		return nil, false, nil
	case v.Connector.IsReset():
		return spec.Null{}, true, nil
	}
	return spec.Lower(struct {
		Connector      options.Field[string]                   `spec:"connector"`
		EgressSettings options.Field[options.VpcEgressSetting] `spec:"egressSettings"`
	}{v.Connector, v.EgressSettings})
}

// SecretEnvironment binds secrets as environment variables. An unset list
// renders as [], a reset one as null.
type SecretEnvironment struct {
	Secrets options.Field[[]string]
}

// LowerSpec implements spec.Lowerer.
func (s SecretEnvironment) LowerSpec() (spec.Value, bool, error) {
	if s.Secrets.IsReset() {
		return spec.Null{}, true, nil
	}
	names, _ := s.Secrets.Literal()
	out := make(spec.List, 0, len(names))
	for _, name := range names {
		out = append(out, spec.M(spec.P("key", spec.String(name))))
	}
	return out, true, nil
}

// HTTPSTrigger marks a raw request handler.
type HTTPSTrigger struct {
	Invoker []string `spec:"invoker"`
}

// CallableTrigger marks a callable RPC handler.
type CallableTrigger struct{}

// EventTrigger subscribes to CloudEvents. EventFilters match attributes
// exactly; EventFilterPathPatterns match them as path patterns.
type EventTrigger struct {
	EventType               string              `spec:"eventType"`
	EventFilters            map[string]any      `spec:"eventFilters"`
	EventFilterPathPatterns map[string]any      `spec:"eventFilterPathPatterns"`
	Channel                 string              `spec:"channel,omitempty"`
	Retry                   options.Field[bool] `spec:"retry"`
}

// ScheduleRetryConfig is the retry policy of a scheduled job.
type ScheduleRetryConfig struct {
	RetryCount        options.Field[int] `spec:"retryCount"`
	MaxRetrySeconds   options.Field[int] `spec:"maxRetrySeconds"`
	MaxBackoffSeconds options.Field[int] `spec:"maxBackoffSeconds"`
	MaxDoublings      options.Field[int] `spec:"maxDoublings"`
	MinBackoffSeconds options.Field[int] `spec:"minBackoffSeconds"`
}

// ScheduleTrigger runs the function on a schedule.
type ScheduleTrigger struct {
	Schedule    string                `spec:"schedule"`
	TimeZone    options.Field[string] `spec:"timeZone"`
	RetryConfig ScheduleRetryConfig   `spec:"retryConfig"`
}

// BlockingTriggerOptions choose the credentials passed to a blocking function.
type BlockingTriggerOptions struct {
	IDToken      bool `spec:"idToken"`
	AccessToken  bool `spec:"accessToken"`
	RefreshToken bool `spec:"refreshToken"`
}

// BlockingTrigger intercepts an identity platform event.
type BlockingTrigger struct {
	EventType string                 `spec:"eventType"`
	Options   BlockingTriggerOptions `spec:"options"`
}

// TaskRetryConfig is the retry policy of a task queue.
type TaskRetryConfig struct {
	MaxAttempts       options.Field[int] `spec:"maxAttempts"`
	MaxRetrySeconds   options.Field[int] `spec:"maxRetrySeconds"`
	MaxBackoffSeconds options.Field[int] `spec:"maxBackoffSeconds"`
	MaxDoublings      options.Field[int] `spec:"maxDoublings"`
	MinBackoffSeconds options.Field[int] `spec:"minBackoffSeconds"`
}

// RateLimits bound task dispatch.
type RateLimits struct {
	MaxConcurrentDispatches options.Field[int] `spec:"maxConcurrentDispatches"`
	MaxDispatchesPerSecond  options.Field[int] `spec:"maxDispatchesPerSecond"`
}

// TaskQueueTrigger receives tasks from a queue.
type TaskQueueTrigger struct {
	RetryConfig *TaskRetryConfig `spec:"retryConfig"`
	RateLimits  *RateLimits      `spec:"rateLimits"`
	Invoker     []string         `spec:"invoker"`
}
