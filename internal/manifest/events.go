package manifest

// CloudEvent types emitted by the event-delivered trigger families.
const (
	EventPubSubMessagePublished = "google.cloud.pubsub.topic.v1.messagePublished"
	EventAlertPublished         = "google.firebase.firebasealerts.alerts.v1.published"

	EventStorageObjectArchived        = "google.cloud.storage.object.v1.archived"
	EventStorageObjectFinalized       = "google.cloud.storage.object.v1.finalized"
	EventStorageObjectDeleted         = "google.cloud.storage.object.v1.deleted"
	EventStorageObjectMetadataUpdated = "google.cloud.storage.object.v1.metadataUpdated"

	EventDatabaseRefWritten = "google.firebase.database.ref.v1.written"
	EventDatabaseRefCreated = "google.firebase.database.ref.v1.created"
	EventDatabaseRefUpdated = "google.firebase.database.ref.v1.updated"
	EventDatabaseRefDeleted = "google.firebase.database.ref.v1.deleted"

	EventFirestoreDocumentWritten = "google.cloud.firestore.document.v1.written"
	EventFirestoreDocumentCreated = "google.cloud.firestore.document.v1.created"
	EventFirestoreDocumentUpdated = "google.cloud.firestore.document.v1.updated"
	EventFirestoreDocumentDeleted = "google.cloud.firestore.document.v1.deleted"

	EventDataConnectMutationExecuted = "google.firebase.dataconnect.connector.v1.mutationExecuted"

	EventTestMatrixCompleted = "google.firebase.testlab.testMatrix.v1.completed"
	EventRemoteConfigUpdated = "google.firebase.remoteconfig.remoteConfig.v1.updated"

	EventBeforeUserCreated  = "providers/cloud.auth/eventTypes/user.beforeCreate"
	EventBeforeUserSignedIn = "providers/cloud.auth/eventTypes/user.beforeSignIn"
)

// DefaultEventarcChannel is used by custom event functions without a channel.
const DefaultEventarcChannel = "locations/us-central1/channels/firebase"

// Platform is the only deployment platform emitted.
const Platform = "gcfv2"
