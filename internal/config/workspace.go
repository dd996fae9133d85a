package config

// WorkspaceConfig names the staging layout. Folder names are fixed per
// process; the workspace root is relative to BasePath.
type WorkspaceConfig struct {
	Dir           string `yaml:"dir" validate:"required"`
	TBoxFolder    string `yaml:"tbox_folder" validate:"required,excludesall=/\\"`
	ABoxFolder    string `yaml:"abox_folder" validate:"required,excludesall=/\\"`
	ScratchFolder string `yaml:"scratch_folder" validate:"required,excludesall=/\\"`
}

// DefaultWorkspaceConfig returns the classic tmp/{tbox,abox} layout.
func DefaultWorkspaceConfig() WorkspaceConfig {
	return WorkspaceConfig{
		Dir:           "tmp",
		TBoxFolder:    "tbox",
		ABoxFolder:    "abox",
		ScratchFolder: "scratch",
	}
}
