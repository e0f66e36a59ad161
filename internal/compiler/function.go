package compiler

import (
	"fmt"
	"log/slog"
	"sort"

	"cuelang.org/go/cue"

	"github.com/roach88/fnmanifest/internal/manifest"
	"github.com/roach88/fnmanifest/internal/options"
)

// triggerDef maps a declaration trigger id to an options record.
type triggerDef struct {
	eventType string
	keys      []string
	build     func(r *reader) options.Trigger
}

var retryKey = []string{"retry"}

var triggers = map[string]triggerDef{
	"https.request": {
		keys: []string{"invoker", "cors"},
		build: func(r *reader) options.Trigger {
			return options.HttpsOptions{
				RuntimeOptions: r.runtime(),
				Invoker:        r.strings("invoker"),
				Cors:           r.cors(),
			}
		},
	},
	"https.call": {
		keys: []string{"cors"},
		build: func(r *reader) options.Trigger {
			return options.CallableOptions{RuntimeOptions: r.runtime(), Cors: r.cors()}
		},
	},
	"tasks.queue.dispatched": {
		keys: []string{"retryConfig", "rateLimits", "invoker"},
		build: func(r *reader) options.Trigger {
			return options.TaskQueueOptions{
				RuntimeOptions: r.runtime(),
				RetryConfig:    r.taskRetry(),
				RateLimits:     r.rateLimits(),
				Invoker:        r.strings("invoker"),
			}
		},
	},
	"scheduler.schedule": {
		keys: []string{"schedule", "timeZone", "retryCount", "maxRetrySeconds", "maxBackoffSeconds", "maxDoublings", "minBackoffSeconds"},
		build: func(r *reader) options.Trigger {
			return options.ScheduleOptions{
				RuntimeOptions:    r.runtime(),
				Schedule:          r.required("schedule"),
				TimeZone:          r.str("timeZone"),
				RetryCount:        r.int("retryCount"),
				MaxRetrySeconds:   r.int("maxRetrySeconds"),
				MaxBackoffSeconds: r.int("maxBackoffSeconds"),
				MaxDoublings:      r.int("maxDoublings"),
				MinBackoffSeconds: r.int("minBackoffSeconds"),
			}
		},
	},
	"pubsub.topic.published": {
		eventType: manifest.EventPubSubMessagePublished,
		keys:      []string{"topic", "retry"},
		build: func(r *reader) options.Trigger {
			return options.PubSubOptions{EventHandlerOptions: r.events(), Topic: r.required("topic")}
		},
	},
	"alerts.published": {
		eventType: manifest.EventAlertPublished,
		keys:      []string{"alertType", "appId", "retry"},
		build: func(r *reader) options.Trigger {
			return options.AlertOptions{
				EventHandlerOptions: r.events(),
				AlertType:           options.AlertType(r.required("alertType")),
				AppID:               r.text("appId"),
			}
		},
	},
	"eventarc.custom": {
		keys: []string{"eventType", "channel", "filters", "retry"},
		build: func(r *reader) options.Trigger {
			return options.EventarcOptions{
				EventHandlerOptions: r.events(),
				EventType:           r.required("eventType"),
				Channel:             r.text("channel"),
				Filters:             r.labels("filters"),
			}
		},
	},
	"testlab.testMatrix.completed": {
		eventType: manifest.EventTestMatrixCompleted,
		keys:      retryKey,
		build: func(r *reader) options.Trigger {
			return options.TestLabOptions{EventHandlerOptions: r.events()}
		},
	},
	"remoteconfig.updated": {
		eventType: manifest.EventRemoteConfigUpdated,
		keys:      retryKey,
		build: func(r *reader) options.Trigger {
			return options.RemoteConfigOptions{EventHandlerOptions: r.events()}
		},
	},
	"dataconnect.mutation.executed": {
		eventType: manifest.EventDataConnectMutationExecuted,
		keys:      []string{"service", "connector", "operation", "retry"},
		build: func(r *reader) options.Trigger {
			return options.DataConnectOptions{
				EventHandlerOptions: r.events(),
				Service:             r.text("service"),
				Connector:           r.text("connector"),
				Operation:           r.text("operation"),
			}
		},
	},
}

func init() {
	for id, eventType := range map[string]string{
		"storage.object.archived":        manifest.EventStorageObjectArchived,
		"storage.object.finalized":       manifest.EventStorageObjectFinalized,
		"storage.object.deleted":         manifest.EventStorageObjectDeleted,
		"storage.object.metadataUpdated": manifest.EventStorageObjectMetadataUpdated,
	} {
		triggers[id] = triggerDef{eventType: eventType, keys: []string{"bucket", "retry"}, build: storageTrigger}
	}
	for id, eventType := range map[string]string{
		"database.ref.written": manifest.EventDatabaseRefWritten,
		"database.ref.created": manifest.EventDatabaseRefCreated,
		"database.ref.updated": manifest.EventDatabaseRefUpdated,
		"database.ref.deleted": manifest.EventDatabaseRefDeleted,
	} {
		triggers[id] = triggerDef{eventType: eventType, keys: []string{"ref", "instance", "retry"}, build: databaseTrigger}
	}
	for id, eventType := range map[string]string{
		"firestore.document.written": manifest.EventFirestoreDocumentWritten,
		"firestore.document.created": manifest.EventFirestoreDocumentCreated,
		"firestore.document.updated": manifest.EventFirestoreDocumentUpdated,
		"firestore.document.deleted": manifest.EventFirestoreDocumentDeleted,
	} {
		triggers[id] = triggerDef{eventType: eventType, keys: []string{"document", "database", "namespace", "retry"}, build: firestoreTrigger}
	}
	for id, eventType := range map[string]string{
		"identity.user.beforeCreate": manifest.EventBeforeUserCreated,
		"identity.user.beforeSignIn": manifest.EventBeforeUserSignedIn,
	} {
		triggers[id] = triggerDef{eventType: eventType, keys: []string{"idToken", "accessToken", "refreshToken"}, build: blockingTrigger}
	}
}

func storageTrigger(r *reader) options.Trigger {
	return options.StorageOptions{EventHandlerOptions: r.events(), Bucket: r.str("bucket")}
}

func databaseTrigger(r *reader) options.Trigger {
	return options.DatabaseOptions{
		EventHandlerOptions: r.events(),
		Reference:           r.required("ref"),
		Instance:            r.text("instance"),
	}
}

func firestoreTrigger(r *reader) options.Trigger {
	return options.FirestoreOptions{
		EventHandlerOptions: r.events(),
		Document:            r.required("document"),
		Database:            r.text("database"),
		Namespace:           r.text("namespace"),
	}
}

func blockingTrigger(r *reader) options.Trigger {
	return options.BlockingOptions{
		RuntimeOptions: r.runtime(),
		IDToken:        r.flag("idToken"),
		AccessToken:    r.flag("accessToken"),
		RefreshToken:   r.flag("refreshToken"),
	}
}

// TriggerIDs lists the accepted trigger ids in sorted order.
func TriggerIDs() []string {
	ids := make([]string, 0, len(triggers))
	for id := range triggers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// compileFunction registers one function declaration.
func (c *compiler) compileFunction(name string, v cue.Value) error {
	tv := at(v, "trigger")
	if !tv.Exists() {
		return &CompileError{
			Field:   "trigger",
			Message: fmt.Sprintf("function %s: trigger is required", name),
			Pos:     v.Pos(),
		}
	}
	id, err := stringLit(tv)
	if err != nil {
		return err
	}
	def, ok := triggers[id]
	if !ok {
		return &CompileError{
			Field:   "trigger.id",
			Message: fmt.Sprintf("function %s: unknown trigger %q", name, id),
			Pos:     tv.Pos(),
		}
	}
	if err := c.checkKeys(v, runtimeKeys, []string{"trigger"}, def.keys); err != nil {
		return err
	}

	r := &reader{c: c, v: v}
	t := def.build(r)
	if r.err != nil {
		return r.err
	}

	eventType := def.eventType
	if e, ok := t.(options.EventarcOptions); ok {
		eventType = e.EventType
	}
	if _, err := c.fc.Register(name, eventType, t); err != nil {
		return &CompileError{
			Field:   "build",
			Message: err.Error(),
			Pos:     v.Pos(),
			Err:     err,
		}
	}
	slog.Debug("function compiled", "name", name, "trigger", id)
	return nil
}
