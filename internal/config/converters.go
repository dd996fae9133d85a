package config

// ConvertersConfig configures the OWL->rules and RDF->facts converters.
type ConvertersConfig struct {
	Java         string   `yaml:"java" validate:"required"`
	OWL2DPM      string   `yaml:"owl2dpm" validate:"required"`
	TStore2Facts string   `yaml:"tstore2facts" validate:"required"`
	ABoxJVMFlags []string `yaml:"abox_jvm_flags"`

	// RuleExt is appended to converted tbox file names.
	RuleExt string `yaml:"rule_ext" validate:"required"`
}

// DefaultConvertersConfig returns the jar-based converter defaults.
func DefaultConvertersConfig() ConvertersConfig {
	return ConvertersConfig{
		Java:         "java",
		OWL2DPM:      "owl2dpm.jar",
		TStore2Facts: "tstore2facts.jar",
		ABoxJVMFlags: []string{"-Xmx8192m", "-DentityExpansionLimit=100000000"},
		RuleExt:      ".rul",
	}
}
