package options

import (
	"maps"

	"github.com/roach88/fnmanifest/internal/params"
	"github.com/roach88/fnmanifest/internal/spec"
)

// VpcEgressSetting controls which traffic leaves through the VPC connector.
type VpcEgressSetting string

const (
	EgressPrivateRangesOnly VpcEgressSetting = "PRIVATE_RANGES_ONLY"
	EgressAllTraffic        VpcEgressSetting = "ALL_TRAFFIC"
)

// IngressSetting controls where a function can be called from.
type IngressSetting string

const (
	IngressAllowAll             IngressSetting = "ALLOW_ALL"
	IngressAllowInternalOnly    IngressSetting = "ALLOW_INTERNAL_ONLY"
	IngressAllowInternalAndGCLB IngressSetting = "ALLOW_INTERNAL_AND_GCLB"
)

// Memory sizes, in MB, accepted by the platform.
const (
	MB128 = 128
	MB256 = 256
	MB512 = 512
	GB1   = 1 << 10
	GB2   = 2 << 10
	GB4   = 4 << 10
	GB8   = 8 << 10
	GB16  = 16 << 10
	GB32  = 32 << 10
)

// Regions supported by the platform.
const (
	RegionAsiaEast1              = "asia-east1"
	RegionAsiaEast2              = "asia-east2"
	RegionAsiaNortheast1         = "asia-northeast1"
	RegionAsiaNortheast2         = "asia-northeast2"
	RegionAsiaNortheast3         = "asia-northeast3"
	RegionAsiaSouth1             = "asia-south1"
	RegionAsiaSoutheast1         = "asia-southeast1"
	RegionAsiaSoutheast2         = "asia-southeast2"
	RegionAustraliaSoutheast1    = "australia-southeast1"
	RegionEuropeCentral2         = "europe-central2"
	RegionEuropeNorth1           = "europe-north1"
	RegionEuropeWest1            = "europe-west1"
	RegionEuropeWest2            = "europe-west2"
	RegionEuropeWest3            = "europe-west3"
	RegionEuropeWest4            = "europe-west4"
	RegionEuropeWest6            = "europe-west6"
	RegionNorthamericaNortheast1 = "northamerica-northeast1"
	RegionSouthamericaEast1      = "southamerica-east1"
	RegionUSCentral1             = "us-central1"
	RegionUSEast1                = "us-east1"
	RegionUSEast4                = "us-east4"
	RegionUSWest1                = "us-west1"
	RegionUSWest2                = "us-west2"
	RegionUSWest3                = "us-west3"
	RegionUSWest4                = "us-west4"
)

// CPU is either a CPU count or the gen-1 compatible allocation.
type CPU struct {
	count int
	gen1  bool
}

// GCFGen1 reverts to the CPU amounts of the first generation platform.
var GCFGen1 = CPU{gen1: true}

// CPUs allocates n CPUs.
func CPUs(n int) CPU {
	return CPU{count: n}
}

// IsGen1 reports whether c is the gen-1 allocation.
func (c CPU) IsGen1() bool {
	return c.gen1
}

// LowerSpec renders "gcf_gen1" or the CPU count.
func (c CPU) LowerSpec() (spec.Value, bool, error) {
	if c.gen1 {
		return spec.String("gcf_gen1"), true, nil
	}
	return spec.Int(c.count), true, nil
}

// RuntimeOptions are the options every function accepts, and the shape of
// the process-wide defaults.
type RuntimeOptions struct {
	// Region is where the function deploys. HTTP functions may list several.
	Region []string
	Memory Field[int]
	// TimeoutSeconds is 1 to 540 for event functions, up to 3600 for HTTP.
	TimeoutSeconds Field[int]
	MinInstances   Field[int]
	MaxInstances   Field[int]
	Concurrency    Field[int]
	CPU            Field[CPU]
	VPCConnector   Field[string]
	VPCEgress      Field[VpcEgressSetting]
	ServiceAccount Field[string]
	Ingress        Field[IngressSetting]
	Labels         map[string]string
	// Secrets lists secret names bound as environment variables.
	Secrets         Field[[]string]
	EnforceAppCheck *bool
	// PreserveExternalChanges keeps settings edited outside of source
	// instead of resetting them on every deploy.
	PreserveExternalChanges *bool
}

// Runtime returns the base options of a record.
func (o RuntimeOptions) Runtime() RuntimeOptions {
	return o
}

// SecretsOf binds the given secret params.
func SecretsOf(secrets ...*params.SecretParam) Field[[]string] {
	names := make([]string, len(secrets))
	for i, s := range secrets {
		names[i] = s.Name()
	}
	return Set(names)
}

// Merge combines a function's options with the global defaults. Every
// field set locally (reset included) wins; unset fields take the global
// value. Labels merge key-wise with local keys overriding, and are never
// nil in the result.
func Merge(local, global RuntimeOptions) RuntimeOptions {
	merged := RuntimeOptions{
		Region:                  local.Region,
		Memory:                  local.Memory.Or(global.Memory),
		TimeoutSeconds:          local.TimeoutSeconds.Or(global.TimeoutSeconds),
		MinInstances:            local.MinInstances.Or(global.MinInstances),
		MaxInstances:            local.MaxInstances.Or(global.MaxInstances),
		Concurrency:             local.Concurrency.Or(global.Concurrency),
		CPU:                     local.CPU.Or(global.CPU),
		VPCConnector:            local.VPCConnector.Or(global.VPCConnector),
		VPCEgress:               local.VPCEgress.Or(global.VPCEgress),
		ServiceAccount:          local.ServiceAccount.Or(global.ServiceAccount),
		Ingress:                 local.Ingress.Or(global.Ingress),
		Secrets:                 local.Secrets.Or(global.Secrets),
		EnforceAppCheck:         local.EnforceAppCheck,
		PreserveExternalChanges: local.PreserveExternalChanges,
	}
	if merged.Region == nil {
		merged.Region = global.Region
	}
	if merged.EnforceAppCheck == nil {
		merged.EnforceAppCheck = global.EnforceAppCheck
	}
	if merged.PreserveExternalChanges == nil {
		merged.PreserveExternalChanges = global.PreserveExternalChanges
	}

	merged.Labels = make(map[string]string, len(global.Labels)+len(local.Labels))
	maps.Copy(merged.Labels, global.Labels)
	maps.Copy(merged.Labels, local.Labels)
	return merged
}

// ApplyResets forces the resettable fields that are still unset to reset,
// unless o opts into preserving external changes.
func ApplyResets(o RuntimeOptions) RuntimeOptions {
	if o.PreserveExternalChanges != nil && *o.PreserveExternalChanges {
		return o
	}
	resetIfUnset(&o.Memory)
	resetIfUnset(&o.TimeoutSeconds)
	resetIfUnset(&o.MinInstances)
	resetIfUnset(&o.MaxInstances)
	resetIfUnset(&o.Ingress)
	resetIfUnset(&o.Concurrency)
	resetIfUnset(&o.ServiceAccount)
	resetIfUnset(&o.VPCConnector)
	resetIfUnset(&o.VPCEgress)
	return o
}

func resetIfUnset[T any](f *Field[T]) {
	if !f.IsSet() {
		*f = Reset[T]()
	}
}

// MergeWithGlobal is Merge followed by ApplyResets. This is what endpoint
// assembly uses.
func MergeWithGlobal(local, global RuntimeOptions) RuntimeOptions {
	return ApplyResets(Merge(local, global))
}

// Bool returns a pointer to b, for the optional boolean options.
func Bool(b bool) *bool {
	return &b
}
