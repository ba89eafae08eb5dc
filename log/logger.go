// Package log is the process-wide structured logging facade. It keeps the
// familiar event-chain call shape (log.Info().Str(...).Msg(...)) and lets
// zerolog do the formatting and level filtering underneath.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lcx/garuda/config"
)

var (
	mu             sync.RWMutex
	_defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Initialize configures the default logger from cfg. A nil cfg selects the
// defaults (info level, console appender).
func Initialize(cfg *LogCfg) error {
	if cfg == nil {
		cfg = getDefaultCfg()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var writers []io.Writer
	if cfg.ConsoleAppender {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if cfg.FileAppender {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}
	var out io.Writer = os.Stderr
	if len(writers) == 1 {
		out = writers[0]
	} else if len(writers) > 1 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		level = parsed
	}

	mu.Lock()
	_defaultLogger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	mu.Unlock()
	return nil
}

// InitializeWithConfigManager loads the "logger" configuration, applies it,
// and registers for hot reload so level changes take effect live.
func InitializeWithConfigManager(configManager config.ConfigManager) error {
	if configManager == nil {
		return Initialize(nil)
	}

	logCfg := &LogCfg{}
	if err := configManager.LoadConfig("logger", logCfg); err != nil {
		return err
	}
	if err := Initialize(logCfg); err != nil {
		return err
	}
	configManager.AddChangeListener(&reloadListener{})
	return nil
}

type reloadListener struct{}

func (l *reloadListener) GetConfigName() string { return "logger" }

func (l *reloadListener) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	cfg, ok := newConfig.(*LogCfg)
	if !ok {
		return nil
	}
	return Initialize(cfg)
}

func logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return _defaultLogger
}

// Debug creates a new debug-level log event using the default logger.
func Debug() *zerolog.Event {
	l := logger()
	return l.Debug()
}

// Info creates a new info-level log event using the default logger.
func Info() *zerolog.Event {
	l := logger()
	return l.Info()
}

// Warn creates a new warn-level log event using the default logger.
func Warn() *zerolog.Event {
	l := logger()
	return l.Warn()
}

// Error creates a new error-level log event using the default logger.
func Error() *zerolog.Event {
	l := logger()
	return l.Error()
}

// Fatal creates a new fatal-level log event using the default logger.
func Fatal() *zerolog.Event {
	l := logger()
	return l.Fatal()
}
