package manifest

import (
	"slices"
	"strings"

	"github.com/roach88/fnmanifest/internal/options"
)

// RequiredAPI is a platform capability a function depends on.
type RequiredAPI struct {
	API    string `spec:"api"`
	Reason string `spec:"reason"`
}

// Capabilities required by trigger families.
var (
	APICloudTasks = RequiredAPI{
		API:    "cloudtasks.googleapis.com",
		Reason: "Needed for task queue functions",
	}
	APIEventarcPublishing = RequiredAPI{
		API:    "eventarcpublishing.googleapis.com",
		Reason: "Needed for custom event functions",
	}
	APICloudScheduler = RequiredAPI{
		API:    "cloudscheduler.googleapis.com",
		Reason: "Needed for scheduled functions.",
	}
	APIIdentityToolkit = RequiredAPI{
		API:    "identitytoolkit.googleapis.com",
		Reason: "Needed for auth blocking functions",
	}
)

// RequiredAPIsFor returns the capabilities a trigger depends on.
func RequiredAPIsFor(t options.Trigger) []RequiredAPI {
	switch t.Kind() {
	case options.KindTaskQueue:
		return []RequiredAPI{APICloudTasks}
	case options.KindEventarc:
		return []RequiredAPI{APIEventarcPublishing}
	case options.KindSchedule:
		return []RequiredAPI{APICloudScheduler}
	case options.KindBlocking:
		return []RequiredAPI{APIIdentityToolkit}
	}
	return nil
}

// MergeRequiredAPIs collapses entries with the same API into one, keeping
// first-occurrence order. Distinct reasons are joined with a single space;
// a reason already present is not repeated, so merging a merged list is a
// no-op.
func MergeRequiredAPIs(apis []RequiredAPI) []RequiredAPI {
	var order []string
	reasons := map[string][]string{}
	for _, a := range apis {
		seen, ok := reasons[a.API]
		if !ok {
			order = append(order, a.API)
		}
		if !slices.Contains(seen, a.Reason) {
			reasons[a.API] = append(seen, a.Reason)
		}
	}

	out := make([]RequiredAPI, 0, len(order))
	for _, api := range order {
		out = append(out, RequiredAPI{API: api, Reason: strings.Join(reasons[api], " ")})
	}
	return out
}
