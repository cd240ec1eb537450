package logging

// Options mirrors the logger.* bootstrap properties.
type Options struct {
	// Enabled turns on the rolling log file next to console output.
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
	// File is the log file name prefix.
	File string `mapstructure:"file"`
	Dir  string `mapstructure:"log_dir"`
}

// DefaultOptions returns the values used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Enabled: false,
		Level:   "info",
		File:    "info",
		Dir:     "./logs",
	}
}
