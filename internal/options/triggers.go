package options

// TriggerKind selects the trigger family of a function.
type TriggerKind int

const (
	KindHTTPSRequest TriggerKind = iota
	KindCallable
	KindPubSub
	KindAlert
	KindEventarc
	KindSchedule
	KindStorage
	KindDatabase
	KindFirestore
	KindDataConnect
	KindBlocking
	KindTaskQueue
	KindTestLab
	KindRemoteConfig
)

var triggerKindNames = [...]string{
	KindHTTPSRequest: "https",
	KindCallable:     "callable",
	KindPubSub:       "pubsub",
	KindAlert:        "alerts",
	KindEventarc:     "eventarc",
	KindSchedule:     "schedule",
	KindStorage:      "storage",
	KindDatabase:     "database",
	KindFirestore:    "firestore",
	KindDataConnect:  "dataconnect",
	KindBlocking:     "blocking",
	KindTaskQueue:    "tasks",
	KindTestLab:      "testlab",
	KindRemoteConfig: "remoteconfig",
}

func (k TriggerKind) String() string {
	if k < 0 || int(k) >= len(triggerKindNames) {
		return "unknown"
	}
	return triggerKindNames[k]
}

// IsEvent reports whether functions of this kind are delivered as events
// and therefore carry an eventTrigger.
func (k TriggerKind) IsEvent() bool {
	switch k {
	case KindPubSub, KindAlert, KindEventarc, KindStorage, KindDatabase,
		KindFirestore, KindDataConnect, KindTestLab, KindRemoteConfig:
		return true
	}
	return false
}

// Trigger is an option record for one trigger family.
type Trigger interface {
	Kind() TriggerKind
	// Runtime returns the embedded base options.
	Runtime() RuntimeOptions

	trigger() // Sealed
}

// CorsOptions restricts cross-origin requests to HTTP and callable functions.
type CorsOptions struct {
	Origins []string
	Methods []string
}

// HttpsOptions configure a raw request handler.
type HttpsOptions struct {
	RuntimeOptions
	// Invoker lists who may call the function. "public" and "private"
	// must appear alone.
	Invoker []string
	Cors    *CorsOptions
}

func (HttpsOptions) Kind() TriggerKind { return KindHTTPSRequest }
func (HttpsOptions) trigger()          {}

// CallableOptions configure a callable RPC function.
type CallableOptions struct {
	RuntimeOptions
	Cors *CorsOptions
}

func (CallableOptions) Kind() TriggerKind { return KindCallable }
func (CallableOptions) trigger()          {}

// TaskRetryConfig is the retry policy of a task queue.
type TaskRetryConfig struct {
	MaxAttempts       Field[int]
	MaxRetrySeconds   Field[int]
	MaxBackoffSeconds Field[int]
	MaxDoublings      Field[int]
	MinBackoffSeconds Field[int]
}

// RateLimits bound task dispatch.
type RateLimits struct {
	MaxConcurrentDispatches Field[int]
	MaxDispatchesPerSecond  Field[int]
}

// TaskQueueOptions configure a task queue function.
type TaskQueueOptions struct {
	RuntimeOptions
	RetryConfig *TaskRetryConfig
	RateLimits  *RateLimits
	Invoker     []string
}

func (TaskQueueOptions) Kind() TriggerKind { return KindTaskQueue }
func (TaskQueueOptions) trigger()          {}

// EventHandlerOptions are shared by every event-delivered family.
type EventHandlerOptions struct {
	RuntimeOptions
	// Retry redelivers failed events. Defaults to false.
	Retry Field[bool]
}

// RetryField returns the retry policy of an event record.
func (o EventHandlerOptions) RetryField() Field[bool] {
	return o.Retry
}

// PubSubOptions configure a Pub/Sub topic handler.
type PubSubOptions struct {
	EventHandlerOptions
	Topic string
}

func (PubSubOptions) Kind() TriggerKind { return KindPubSub }
func (PubSubOptions) trigger()          {}

// AlertType names a Firebase Alerts event.
type AlertType string

const (
	AlertCrashlyticsNewFatalIssue          AlertType = "crashlytics.newFatalIssue"
	AlertCrashlyticsNewNonfatalIssue       AlertType = "crashlytics.newNonfatalIssue"
	AlertCrashlyticsRegression             AlertType = "crashlytics.regression"
	AlertCrashlyticsStabilityDigest        AlertType = "crashlytics.stabilityDigest"
	AlertCrashlyticsVelocity               AlertType = "crashlytics.velocity"
	AlertCrashlyticsNewAnrIssue            AlertType = "crashlytics.newAnrIssue"
	AlertBillingPlanUpdate                 AlertType = "billing.planUpdate"
	AlertBillingPlanAutomatedUpdate        AlertType = "billing.planAutomatedUpdate"
	AlertAppDistributionNewTesterIosDevice AlertType = "appDistribution.newTesterIosDevice"
	AlertAppDistributionInAppFeedback      AlertType = "appDistribution.inAppFeedback"
	AlertPerformanceThreshold              AlertType = "performance.threshold"
)

// AlertOptions configure a Firebase Alerts handler.
type AlertOptions struct {
	EventHandlerOptions
	AlertType AlertType
	// AppID scopes the alert to one app. Empty means every app.
	AppID string
}

func (AlertOptions) Kind() TriggerKind { return KindAlert }
func (AlertOptions) trigger()          {}

// EventarcOptions configure a custom event handler.
type EventarcOptions struct {
	EventHandlerOptions
	EventType string
	// Channel defaults to the Firebase channel in us-central1.
	Channel string
	Filters map[string]string
}

func (EventarcOptions) Kind() TriggerKind { return KindEventarc }
func (EventarcOptions) trigger()          {}

// ScheduleOptions configure a scheduled function.
type ScheduleOptions struct {
	RuntimeOptions
	// Schedule is a crontab or App Engine ("every 5 minutes") expression.
	Schedule          string
	TimeZone          Field[string]
	RetryCount        Field[int]
	MaxRetrySeconds   Field[int]
	MaxBackoffSeconds Field[int]
	MaxDoublings      Field[int]
	MinBackoffSeconds Field[int]
}

func (ScheduleOptions) Kind() TriggerKind { return KindSchedule }
func (ScheduleOptions) trigger()          {}

// StorageOptions configure a Cloud Storage object handler.
type StorageOptions struct {
	EventHandlerOptions
	// Bucket defaults to the project's default bucket.
	Bucket Field[string]
}

func (StorageOptions) Kind() TriggerKind { return KindStorage }
func (StorageOptions) trigger()          {}

// DatabaseOptions configure a Realtime Database handler.
type DatabaseOptions struct {
	EventHandlerOptions
	// Reference is a path pattern such as "users/{uid}".
	Reference string
	// Instance defaults to every instance ("*").
	Instance string
}

func (DatabaseOptions) Kind() TriggerKind { return KindDatabase }
func (DatabaseOptions) trigger()          {}

// FirestoreOptions configure a Firestore document handler.
type FirestoreOptions struct {
	EventHandlerOptions
	// Document is a path pattern such as "users/{uid}".
	Document  string
	Database  string
	Namespace string
}

func (FirestoreOptions) Kind() TriggerKind { return KindFirestore }
func (FirestoreOptions) trigger()          {}

// DataConnectOptions configure a Data Connect mutation handler. Each of
// the three names may contain wildcards.
type DataConnectOptions struct {
	EventHandlerOptions
	Service   string
	Connector string
	Operation string
}

func (DataConnectOptions) Kind() TriggerKind { return KindDataConnect }
func (DataConnectOptions) trigger()          {}

// BlockingOptions configure an identity blocking function. The flags
// choose which credentials are passed to the function.
type BlockingOptions struct {
	RuntimeOptions
	IDToken      *bool
	AccessToken  *bool
	RefreshToken *bool
}

func (BlockingOptions) Kind() TriggerKind { return KindBlocking }
func (BlockingOptions) trigger()          {}

// TestLabOptions configure a Test Lab matrix handler.
type TestLabOptions struct {
	EventHandlerOptions
}

func (TestLabOptions) Kind() TriggerKind { return KindTestLab }
func (TestLabOptions) trigger()          {}

// RemoteConfigOptions configure a Remote Config update handler.
type RemoteConfigOptions struct {
	EventHandlerOptions
}

func (RemoteConfigOptions) Kind() TriggerKind { return KindRemoteConfig }
func (RemoteConfigOptions) trigger()          {}

// Retrier is implemented by records that embed EventHandlerOptions.
type Retrier interface {
	RetryField() Field[bool]
}
