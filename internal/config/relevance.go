package config

// Relevance engines.
const (
	RelevanceExternal = "external"
	RelevanceMangle   = "mangle"
)

// RelevanceConfig selects how relevant predicates are computed.
type RelevanceConfig struct {
	// Engine is "external" (diagnostic-stream tool) or "mangle" (in-process).
	Engine string `yaml:"engine" validate:"oneof=external mangle"`

	// Binary is the external tool, resolved inside the solvers folder.
	Binary string `yaml:"binary"`

	// Args are appended after the rule files and query.
	Args []string `yaml:"args"`

	// ScratchFile receives the tool's diagnostic stream inside the
	// workspace scratch folder.
	ScratchFile string `yaml:"scratch_file" validate:"required,excludesall=/\\"`
}

// DefaultRelevanceConfig returns defaults for the external relevance tool.
func DefaultRelevanceConfig() RelevanceConfig {
	return RelevanceConfig{
		Engine:      RelevanceExternal,
		Binary:      "dlvEx",
		Args:        []string{"-relevance", "-silent"},
		ScratchFile: "relevant.txt",
	}
}
