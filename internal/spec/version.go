package spec

// Version constants for the descriptor document and the tool.
const (
	// SpecVersion is the descriptor document schema version.
	SpecVersion = "v1alpha1"

	// ToolVersion is the fnmanifest version.
	ToolVersion = "0.1.0"
)
