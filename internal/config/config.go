package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/flowpbx/ovcore/internal/threadloop"
)

// Config holds all runtime configuration for the ovcore-demo binary.
// Precedence: CLI flags > env vars > defaults.
type Config struct {
	CodecPluginDir string // directory scanned for codec shared objects

	ThreadQueueCapacity    int  // capacity of both the to-threads and to-loop rings
	ThreadLockTimeoutUsecs int  // lock-with-timeout bound, microseconds
	NumWorkerThreads       int  // worker goroutines in the thread-loop pool
	DisableToLoopQueue     bool // bypass the to-loop ring for an unbounded passthrough

	LogLevel  string // log level: debug, info, warn, error
	LogFormat string // log output format: text or json
}

// defaults
const (
	defaultCodecPluginDir         = "./plugins"
	defaultThreadQueueCapacity    = 100
	defaultThreadLockTimeoutUsecs = 100000
	defaultNumWorkerThreads       = 4
	defaultLogLevel               = "info"
	defaultLogFormat              = "text"
)

// envPrefix is the prefix for all ovcore-demo environment variables.
const envPrefix = "OVCORE_"

// Load parses configuration from CLI flags and environment variables.
// Precedence: CLI flags > env vars > defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("ovcore-demo", flag.ContinueOnError)

	fs.StringVar(&cfg.CodecPluginDir, "codec-plugin-dir", defaultCodecPluginDir, "directory scanned for codec shared objects at startup")
	fs.IntVar(&cfg.ThreadQueueCapacity, "thread-queue-capacity", defaultThreadQueueCapacity, "capacity of the to-threads and to-loop message queues")
	fs.IntVar(&cfg.ThreadLockTimeoutUsecs, "thread-lock-timeout-usecs", defaultThreadLockTimeoutUsecs, "lock-with-timeout bound in microseconds")
	fs.IntVar(&cfg.NumWorkerThreads, "num-worker-threads", defaultNumWorkerThreads, "number of worker goroutines in the thread-loop pool")
	fs.BoolVar(&cfg.DisableToLoopQueue, "disable-to-loop-queue", false, "bypass the bounded to-loop queue for an unbounded passthrough")
	fs.StringVar(&cfg.LogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", defaultLogFormat, "log output format (text, json)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// Apply env var overrides for any flags not explicitly set on the command line.
	// CLI flags take precedence over env vars.
	applyEnvOverrides(fs, cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides checks environment variables for any flag that was not
// explicitly provided on the command line. This preserves the precedence:
// CLI flags > env vars > defaults.
func applyEnvOverrides(fs *flag.FlagSet, cfg *Config) {
	// Track which flags were explicitly set via CLI.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	// Map of flag name to env var name.
	envMap := map[string]string{
		"codec-plugin-dir":          envPrefix + "CODEC_PLUGIN_DIR",
		"thread-queue-capacity":     envPrefix + "THREAD_QUEUE_CAPACITY",
		"thread-lock-timeout-usecs": envPrefix + "THREAD_LOCK_TIMEOUT_USECS",
		"num-worker-threads":        envPrefix + "NUM_WORKER_THREADS",
		"disable-to-loop-queue":     envPrefix + "DISABLE_TO_LOOP_QUEUE",
		"log-level":                 envPrefix + "LOG_LEVEL",
		"log-format":                envPrefix + "LOG_FORMAT",
	}

	for flagName, envVar := range envMap {
		if set[flagName] {
			continue
		}
		val, ok := os.LookupEnv(envVar)
		if !ok || val == "" {
			continue
		}
		switch flagName {
		case "codec-plugin-dir":
			cfg.CodecPluginDir = val
		case "thread-queue-capacity":
			if v, err := strconv.Atoi(val); err == nil {
				cfg.ThreadQueueCapacity = v
			}
		case "thread-lock-timeout-usecs":
			if v, err := strconv.Atoi(val); err == nil {
				cfg.ThreadLockTimeoutUsecs = v
			}
		case "num-worker-threads":
			if v, err := strconv.Atoi(val); err == nil {
				cfg.NumWorkerThreads = v
			}
		case "disable-to-loop-queue":
			if v, err := strconv.ParseBool(val); err == nil {
				cfg.DisableToLoopQueue = v
			}
		case "log-level":
			cfg.LogLevel = val
		case "log-format":
			cfg.LogFormat = val
		}
	}
}

// validate checks that the config values are sane.
func (c *Config) validate() error {
	if c.ThreadQueueCapacity < 1 {
		return fmt.Errorf("thread-queue-capacity must be positive, got %d", c.ThreadQueueCapacity)
	}
	if c.ThreadLockTimeoutUsecs < 1 {
		return fmt.Errorf("thread-lock-timeout-usecs must be positive, got %d", c.ThreadLockTimeoutUsecs)
	}
	if c.NumWorkerThreads < 1 {
		return fmt.Errorf("num-worker-threads must be positive, got %d", c.NumWorkerThreads)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log-level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		return fmt.Errorf("log-format must be one of text, json; got %q", c.LogFormat)
	}
	c.LogFormat = strings.ToLower(c.LogFormat)

	return nil
}

// ThreadLoopConfig converts the parsed flags into a threadloop.Config.
func (c *Config) ThreadLoopConfig() threadloop.Config {
	return threadloop.Config{
		MessageQueueCapacity: c.ThreadQueueCapacity,
		LockTimeoutUsecs:     c.ThreadLockTimeoutUsecs,
		NumThreads:           c.NumWorkerThreads,
		DisableToLoopQueue:   c.DisableToLoopQueue,
	}
}

// SlogHandler returns a slog.Handler configured with the appropriate format
// (text or json) and log level.
func (c *Config) SlogHandler(w *os.File) slog.Handler {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.LogFormat == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SlogLevel returns the slog.Level corresponding to the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
