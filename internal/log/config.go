package log

// Config controls the global logger behaviour.
type Config struct {
	// Level is the minimum enabled level: debug, info, warn or error.
	Level string `conf:"level" yaml:"level" json:"level"`

	// Format selects the encoder: json or console.
	Format string `conf:"format" yaml:"format" json:"format"`

	// Output is where log entries go: stdout, stderr or a file path.
	Output string `conf:"output" yaml:"output" json:"output"`

	// Rotation configures size-based rotation when Output is a file path.
	Rotation Rotation `conf:"rotation" yaml:"rotation" json:"rotation"`
}

type Rotation struct {
	// MaxSize is the maximum size in megabytes before the file is rotated.
	MaxSize int `conf:"max_size" yaml:"max_size" json:"max_size"`

	// MaxBackups is the maximum number of rotated files to retain.
	MaxBackups int `conf:"max_backups" yaml:"max_backups" json:"max_backups"`

	// MaxAge is the maximum number of days to retain rotated files.
	MaxAge int `conf:"max_age" yaml:"max_age" json:"max_age"`
}

// DefaultConfig is used until SetGlobalConfig is called.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}
