package types

// BackupConfig holds the settings for one backup run.
type BackupConfig struct {
	// DatabasePath is the path to Bear's SQLite database. Required.
	DatabasePath string `json:"database_path" yaml:"database_path"`

	// OutputDir is the directory the markdown files are written into.
	// Created if missing. Required.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// AttachmentsDir is the root of Bear's attachment storage (contains
	// "Note Images/" and "Note Files/"). Empty disables attachment export:
	// no assets directory is created and note text is written unmodified.
	AttachmentsDir string `json:"attachments_dir,omitempty" yaml:"attachments_dir,omitempty"`

	// GroupByTag writes each note into a subdirectory named after its tag
	// ("untagged" for notes without one) instead of the output root.
	GroupByTag bool `json:"group_by_tag" yaml:"group_by_tag"`
}
