package log

import "fmt"

// LogCfg configures the process logger. Loaded under the "logger" config
// name; the level can be changed at runtime through a config reload.
type LogCfg struct {
	Level           string `mapstructure:"level"`
	ConsoleAppender bool   `mapstructure:"consoleAppender"`
	FileAppender    bool   `mapstructure:"fileAppender"`
	LogPath         string `mapstructure:"logPath"`
}

// GetName returns the configuration name for LogCfg
func (c *LogCfg) GetName() string {
	return "logger"
}

// Validate validates the LogCfg parameters
func (c *LogCfg) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	if c.FileAppender && c.LogPath == "" {
		return fmt.Errorf("LogPath cannot be empty with file appender enabled")
	}
	return nil
}

func getDefaultCfg() *LogCfg {
	return &LogCfg{
		Level:           "info",
		ConsoleAppender: true,
	}
}
