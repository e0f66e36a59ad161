package functions

import (
	"github.com/roach88/fnmanifest/internal/manifest"
	"github.com/roach88/fnmanifest/internal/options"
)

// OnRequest registers a raw HTTPS request handler.
func (c *Context) OnRequest(name string, opts options.HttpsOptions) (*Function, error) {
	return c.Register(name, "", opts)
}

// OnCall registers a callable RPC handler.
func (c *Context) OnCall(name string, opts options.CallableOptions) (*Function, error) {
	return c.Register(name, "", opts)
}

// OnTaskDispatched registers a task queue handler.
func (c *Context) OnTaskDispatched(name string, opts options.TaskQueueOptions) (*Function, error) {
	return c.Register(name, "", opts)
}

// OnSchedule registers a scheduled function.
func (c *Context) OnSchedule(name string, opts options.ScheduleOptions) (*Function, error) {
	return c.Register(name, "", opts)
}

// OnMessagePublished registers a Pub/Sub topic handler.
func (c *Context) OnMessagePublished(name string, opts options.PubSubOptions) (*Function, error) {
	return c.Register(name, manifest.EventPubSubMessagePublished, opts)
}

// OnAlertPublished registers a Firebase Alerts handler.
func (c *Context) OnAlertPublished(name string, opts options.AlertOptions) (*Function, error) {
	return c.Register(name, manifest.EventAlertPublished, opts)
}

// OnCustomEventPublished registers an Eventarc custom event handler.
func (c *Context) OnCustomEventPublished(name string, opts options.EventarcOptions) (*Function, error) {
	return c.Register(name, opts.EventType, opts)
}

// OnObjectArchived registers a handler for archived Cloud Storage objects.
func (c *Context) OnObjectArchived(name string, opts options.StorageOptions) (*Function, error) {
	return c.Register(name, manifest.EventStorageObjectArchived, opts)
}

// OnObjectFinalized registers a handler for newly written Cloud Storage objects.
func (c *Context) OnObjectFinalized(name string, opts options.StorageOptions) (*Function, error) {
	return c.Register(name, manifest.EventStorageObjectFinalized, opts)
}

// OnObjectDeleted registers a handler for deleted Cloud Storage objects.
func (c *Context) OnObjectDeleted(name string, opts options.StorageOptions) (*Function, error) {
	return c.Register(name, manifest.EventStorageObjectDeleted, opts)
}

// OnObjectMetadataUpdated registers a handler for Cloud Storage metadata changes.
func (c *Context) OnObjectMetadataUpdated(name string, opts options.StorageOptions) (*Function, error) {
	return c.Register(name, manifest.EventStorageObjectMetadataUpdated, opts)
}

// OnValueWritten registers a Realtime Database handler for any write.
func (c *Context) OnValueWritten(name string, opts options.DatabaseOptions) (*Function, error) {
	return c.Register(name, manifest.EventDatabaseRefWritten, opts)
}

// OnValueCreated registers a Realtime Database handler for creations.
func (c *Context) OnValueCreated(name string, opts options.DatabaseOptions) (*Function, error) {
	return c.Register(name, manifest.EventDatabaseRefCreated, opts)
}

// OnValueUpdated registers a Realtime Database handler for updates.
func (c *Context) OnValueUpdated(name string, opts options.DatabaseOptions) (*Function, error) {
	return c.Register(name, manifest.EventDatabaseRefUpdated, opts)
}

// OnValueDeleted registers a Realtime Database handler for deletions.
func (c *Context) OnValueDeleted(name string, opts options.DatabaseOptions) (*Function, error) {
	return c.Register(name, manifest.EventDatabaseRefDeleted, opts)
}

// OnDocumentWritten registers a Firestore handler for any write.
func (c *Context) OnDocumentWritten(name string, opts options.FirestoreOptions) (*Function, error) {
	return c.Register(name, manifest.EventFirestoreDocumentWritten, opts)
}

// OnDocumentCreated registers a Firestore handler for creations.
func (c *Context) OnDocumentCreated(name string, opts options.FirestoreOptions) (*Function, error) {
	return c.Register(name, manifest.EventFirestoreDocumentCreated, opts)
}

// OnDocumentUpdated registers a Firestore handler for updates.
func (c *Context) OnDocumentUpdated(name string, opts options.FirestoreOptions) (*Function, error) {
	return c.Register(name, manifest.EventFirestoreDocumentUpdated, opts)
}

// OnDocumentDeleted registers a Firestore handler for deletions.
func (c *Context) OnDocumentDeleted(name string, opts options.FirestoreOptions) (*Function, error) {
	return c.Register(name, manifest.EventFirestoreDocumentDeleted, opts)
}

// OnMutationExecuted registers a Data Connect mutation handler.
func (c *Context) OnMutationExecuted(name string, opts options.DataConnectOptions) (*Function, error) {
	return c.Register(name, manifest.EventDataConnectMutationExecuted, opts)
}

// BeforeUserCreated registers an identity blocking function run before sign-up.
func (c *Context) BeforeUserCreated(name string, opts options.BlockingOptions) (*Function, error) {
	return c.Register(name, manifest.EventBeforeUserCreated, opts)
}

// BeforeUserSignedIn registers an identity blocking function run before sign-in.
func (c *Context) BeforeUserSignedIn(name string, opts options.BlockingOptions) (*Function, error) {
	return c.Register(name, manifest.EventBeforeUserSignedIn, opts)
}

// OnTestMatrixCompleted registers a Test Lab handler.
func (c *Context) OnTestMatrixCompleted(name string, opts options.TestLabOptions) (*Function, error) {
	return c.Register(name, manifest.EventTestMatrixCompleted, opts)
}

// OnConfigUpdated registers a Remote Config handler.
func (c *Context) OnConfigUpdated(name string, opts options.RemoteConfigOptions) (*Function, error) {
	return c.Register(name, manifest.EventRemoteConfigUpdated, opts)
}
