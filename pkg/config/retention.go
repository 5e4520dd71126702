package config

import "time"

// RetentionConfig controls background data retention (pkg/cleanup).
type RetentionConfig struct {
	// SessionRetentionDays is how many days a terminal session (Completed,
	// Cancelled, Stuck) is kept before the cleanup service drops it.
	SessionRetentionDays int `yaml:"session_retention_days"`

	// CleanupInterval is how often the cleanup loop runs.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		SessionRetentionDays: 30,
		CleanupInterval:      1 * time.Hour,
	}
}
