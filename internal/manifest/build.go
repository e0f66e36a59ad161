package manifest

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/gorhill/cronexpr"

	"github.com/roach88/fnmanifest/internal/options"
	"github.com/roach88/fnmanifest/internal/pathpattern"
)

// Target is one function registration ready for assembly.
type Target struct {
	EntryPoint string
	Trigger    options.Trigger
	// EventType selects the event for families that offer several
	// (storage, database, firestore, blocking). Other families ignore it.
	EventType string
}

// Defaults carries the process-wide inputs of assembly.
type Defaults struct {
	Global options.RuntimeOptions
	// Bucket is the project's default storage bucket, used by storage
	// functions that name none.
	Bucket string
}

// BuildEndpoint merges the target's options with the global defaults and
// layers the trigger-specific fields on top.
func BuildEndpoint(t Target, d Defaults) (*Endpoint, error) {
	if t.EntryPoint == "" {
		return nil, &BuildError{Function: "<unnamed>", Message: "entry point is required"}
	}
	if t.Trigger == nil {
		return nil, &BuildError{Function: t.EntryPoint, Message: "trigger is required"}
	}

	e, err := baseEndpoint(t.EntryPoint, t.Trigger.Runtime(), d.Global)
	if err != nil {
		return nil, err
	}

	b := builder{target: t, defaults: d, endpoint: e}
	switch opts := t.Trigger.(type) {
	case options.HttpsOptions:
		err = b.https(opts)
	case options.CallableOptions:
		b.callable()
	case options.TaskQueueOptions:
		err = b.taskQueue(opts)
	case options.ScheduleOptions:
		err = b.schedule(opts)
	case options.BlockingOptions:
		err = b.blocking(opts)
	case options.PubSubOptions:
		err = b.pubsub(opts)
	case options.AlertOptions:
		err = b.alert(opts)
	case options.EventarcOptions:
		err = b.eventarc(opts)
	case options.StorageOptions:
		err = b.storage(opts)
	case options.DatabaseOptions:
		err = b.database(opts)
	case options.FirestoreOptions:
		err = b.firestore(opts)
	case options.DataConnectOptions:
		err = b.dataConnect(opts)
	case options.TestLabOptions:
		b.event(EventTestMatrixCompleted, opts.Retry, map[string]any{}, nil)
	case options.RemoteConfigOptions:
		b.event(EventRemoteConfigUpdated, opts.Retry, map[string]any{}, nil)
	default:
		err = b.fail("", fmt.Sprintf("unsupported trigger %T", t.Trigger))
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("endpoint built", "function", t.EntryPoint, "trigger", t.Trigger.Kind())
	return e, nil
}

func baseEndpoint(entryPoint string, local, global options.RuntimeOptions) (*Endpoint, error) {
	m := options.MergeWithGlobal(local, global)
	if _, isExpr := m.Secrets.Expr(); isExpr {
		return nil, &BuildError{Function: entryPoint, Field: "secrets", Message: "must list secret names, not an expression"}
	}
	return &Endpoint{
		EntryPoint:                 entryPoint,
		Region:                     m.Region,
		Platform:                   Platform,
		AvailableMemoryMb:          m.Memory,
		MaxInstances:               m.MaxInstances,
		MinInstances:               m.MinInstances,
		Concurrency:                m.Concurrency,
		ServiceAccountEmail:        m.ServiceAccount,
		TimeoutSeconds:             m.TimeoutSeconds,
		CPU:                        m.CPU,
		VPC:                        VPC{Connector: m.VPCConnector, EgressSettings: m.VPCEgress},
		Labels:                     m.Labels,
		IngressSettings:            m.Ingress,
		SecretEnvironmentVariables: SecretEnvironment{Secrets: m.Secrets},
	}, nil
}

type builder struct {
	target   Target
	defaults Defaults
	endpoint *Endpoint
}

func (b *builder) fail(field, msg string) error {
	return &BuildError{Function: b.target.EntryPoint, Field: field, Message: msg}
}

func (b *builder) event(eventType string, retry options.Field[bool], filters, pathPatterns map[string]any) *EventTrigger {
	b.endpoint.EventTrigger = &EventTrigger{
		EventType:               eventType,
		EventFilters:            filters,
		EventFilterPathPatterns: pathPatterns,
		Retry:                   retry.Or(options.Set(false)),
	}
	return b.endpoint.EventTrigger
}

// validateInvoker accepts a non-empty list of non-empty entries in which
// "public" and "private" only ever appear alone.
func (b *builder) validateInvoker(invoker []string) error {
	if invoker == nil {
		return nil
	}
	if len(invoker) == 0 {
		return b.fail("invoker", "must be a non-empty list")
	}
	if slices.Contains(invoker, "") {
		return b.fail("invoker", "must not contain an empty string")
	}
	if len(invoker) > 1 && (slices.Contains(invoker, "public") || slices.Contains(invoker, "private")) {
		return b.fail("invoker", "cannot have 'public' or 'private' in a list of service accounts")
	}
	return nil
}

func (b *builder) https(opts options.HttpsOptions) error {
	if err := b.validateInvoker(opts.Invoker); err != nil {
		return err
	}
	b.endpoint.HTTPSTrigger = &HTTPSTrigger{Invoker: opts.Invoker}
	return nil
}

func (b *builder) callable() {
	b.endpoint.Labels["deployment-callable"] = "true"
	b.endpoint.CallableTrigger = &CallableTrigger{}
}

func (b *builder) taskQueue(opts options.TaskQueueOptions) error {
	if err := b.validateInvoker(opts.Invoker); err != nil {
		return err
	}
	trigger := &TaskQueueTrigger{Invoker: opts.Invoker}
	if rc := opts.RetryConfig; rc != nil {
		trigger.RetryConfig = &TaskRetryConfig{
			MaxAttempts:       rc.MaxAttempts,
			MaxRetrySeconds:   rc.MaxRetrySeconds,
			MaxBackoffSeconds: rc.MaxBackoffSeconds,
			MaxDoublings:      rc.MaxDoublings,
			MinBackoffSeconds: rc.MinBackoffSeconds,
		}
	}
	if rl := opts.RateLimits; rl != nil {
		trigger.RateLimits = &RateLimits{
			MaxConcurrentDispatches: rl.MaxConcurrentDispatches,
			MaxDispatchesPerSecond:  rl.MaxDispatchesPerSecond,
		}
	}
	b.endpoint.TaskQueueTrigger = trigger
	return nil
}

func (b *builder) schedule(opts options.ScheduleOptions) error {
	if err := validateSchedule(opts.Schedule); err != nil {
		return b.fail("schedule", err.Error())
	}
	if tz, ok := opts.TimeZone.Literal(); ok {
		if _, err := time.LoadLocation(tz); err != nil {
			return b.fail("timeZone", fmt.Sprintf("unknown time zone %q", tz))
		}
	}
	b.endpoint.ScheduleTrigger = &ScheduleTrigger{
		Schedule: opts.Schedule,
		TimeZone: opts.TimeZone,
		RetryConfig: ScheduleRetryConfig{
			RetryCount:        opts.RetryCount,
			MaxRetrySeconds:   opts.MaxRetrySeconds,
			MaxBackoffSeconds: opts.MaxBackoffSeconds,
			MaxDoublings:      opts.MaxDoublings,
			MinBackoffSeconds: opts.MinBackoffSeconds,
		},
	}
	return nil
}

// validateSchedule checks crontab schedules. App Engine schedules
// ("every 5 minutes") are passed through for the scheduler to check.
func validateSchedule(schedule string) error {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return errors.New("is required")
	}
	if strings.HasPrefix(schedule, "every ") {
		return nil
	}
	if _, err := cronexpr.Parse(schedule); err != nil {
		return fmt.Errorf("invalid crontab %q: %w", schedule, err)
	}
	return nil
}

func (b *builder) blocking(opts options.BlockingOptions) error {
	switch b.target.EventType {
	case EventBeforeUserCreated, EventBeforeUserSignedIn:
	default:
		return b.fail("eventType", fmt.Sprintf("unsupported blocking event %q", b.target.EventType))
	}
	b.endpoint.BlockingTrigger = &BlockingTrigger{
		EventType: b.target.EventType,
		Options: BlockingTriggerOptions{
			IDToken:      deref(opts.IDToken),
			AccessToken:  deref(opts.AccessToken),
			RefreshToken: deref(opts.RefreshToken),
		},
	}
	return nil
}

func (b *builder) pubsub(opts options.PubSubOptions) error {
	if opts.Topic == "" {
		return b.fail("topic", "is required")
	}
	b.event(EventPubSubMessagePublished, opts.Retry, map[string]any{"topic": opts.Topic}, nil)
	return nil
}

func (b *builder) alert(opts options.AlertOptions) error {
	if opts.AlertType == "" {
		return b.fail("alertType", "is required")
	}
	filters := map[string]any{"alerttype": string(opts.AlertType)}
	if opts.AppID != "" {
		filters["appid"] = opts.AppID
	}
	b.event(EventAlertPublished, opts.Retry, filters, nil)
	return nil
}

func (b *builder) eventarc(opts options.EventarcOptions) error {
	if opts.EventType == "" {
		return b.fail("eventType", "is required")
	}
	filters := make(map[string]any, len(opts.Filters))
	for k, v := range opts.Filters {
		filters[k] = v
	}
	trigger := b.event(opts.EventType, opts.Retry, filters, nil)
	trigger.Channel = opts.Channel
	if trigger.Channel == "" {
		trigger.Channel = DefaultEventarcChannel
	}
	return nil
}

func (b *builder) storage(opts options.StorageOptions) error {
	if !isStorageEvent(b.target.EventType) {
		return b.fail("eventType", fmt.Sprintf("unsupported storage event %q", b.target.EventType))
	}
	var bucket any
	switch {
	case opts.Bucket.IsSet() && !opts.Bucket.IsReset():
		bucket = opts.Bucket
	case b.defaults.Bucket != "":
		bucket = b.defaults.Bucket
	default:
		return b.fail("bucket", "missing bucket name; name a bucket on the function or set the FIREBASE_CONFIG environment variable")
	}
	b.event(b.target.EventType, opts.Retry, map[string]any{"bucket": bucket}, nil)
	return nil
}

func isStorageEvent(eventType string) bool {
	switch eventType {
	case EventStorageObjectArchived, EventStorageObjectFinalized,
		EventStorageObjectDeleted, EventStorageObjectMetadataUpdated:
		return true
	}
	return false
}

// Database references are always path patterns; the instance is one only
// when it holds a wildcard.
func (b *builder) database(opts options.DatabaseOptions) error {
	switch b.target.EventType {
	case EventDatabaseRefWritten, EventDatabaseRefCreated, EventDatabaseRefUpdated, EventDatabaseRefDeleted:
	default:
		return b.fail("eventType", fmt.Sprintf("unsupported database event %q", b.target.EventType))
	}
	if strings.Trim(opts.Reference, "/") == "" {
		return b.fail("reference", "is required")
	}
	instance := opts.Instance
	if instance == "" {
		instance = "*"
	}

	filters := map[string]any{}
	patterns := map[string]any{"ref": strings.Trim(opts.Reference, "/")}
	splitFilter(filters, patterns, "instance", instance)
	b.event(b.target.EventType, opts.Retry, filters, patterns)
	return nil
}

func (b *builder) firestore(opts options.FirestoreOptions) error {
	switch b.target.EventType {
	case EventFirestoreDocumentWritten, EventFirestoreDocumentCreated,
		EventFirestoreDocumentUpdated, EventFirestoreDocumentDeleted:
	default:
		return b.fail("eventType", fmt.Sprintf("unsupported firestore event %q", b.target.EventType))
	}
	if strings.Trim(opts.Document, "/") == "" {
		return b.fail("document", "is required")
	}

	filters := map[string]any{
		"database":  orDefault(opts.Database, "(default)"),
		"namespace": orDefault(opts.Namespace, "(default)"),
	}
	patterns := map[string]any{}
	splitFilter(filters, patterns, "document", opts.Document)
	b.event(b.target.EventType, opts.Retry, filters, patterns)
	return nil
}

func (b *builder) dataConnect(opts options.DataConnectOptions) error {
	filters := map[string]any{}
	patterns := map[string]any{}
	for _, f := range []struct{ key, value string }{
		{"service", opts.Service},
		{"connector", opts.Connector},
		{"operation", opts.Operation},
	} {
		if f.value != "" {
			splitFilter(filters, patterns, f.key, f.value)
		}
	}
	b.event(EventDataConnectMutationExecuted, opts.Retry, filters, patterns)
	return nil
}

// splitFilter files value under key as an exact filter, or as a path
// pattern filter when it contains captures or wildcards.
func splitFilter(filters, patterns map[string]any, key, value string) {
	p := pathpattern.Parse(value)
	if p.HasWildcards() {
		patterns[key] = p.Value()
		return
	}
	filters[key] = p.Value()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func deref(b *bool) bool {
	return b != nil && *b
}
