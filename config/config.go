// Package config loads yaml configuration through viper and watches it for
// changes through fsnotify. Components register as change listeners to pick
// up edits without a restart.
package config

// Config interface defines the basic configuration contract
type Config interface {
	GetName() string
	Validate() error
}

// ConfigChangeListener is implemented by components that want to be told
// when the configuration they loaded is rewritten on disk.
type ConfigChangeListener interface {
	// OnConfigChanged is called with the validated new configuration and the
	// one it replaces. Returning an error keeps the old configuration active.
	OnConfigChanged(configName string, newConfig, oldConfig Config) error

	// GetConfigName returns the configuration name the listener cares about.
	GetConfigName() string
}
