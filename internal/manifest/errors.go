package manifest

import "fmt"

// BuildError reports an option that cannot be turned into a descriptor.
type BuildError struct {
	Function string
	Field    string
	Message  string
}

func (e *BuildError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("function %s: %s", e.Function, e.Message)
	}
	return fmt.Sprintf("function %s: %s: %s", e.Function, e.Field, e.Message)
}
