// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Agent modes.
const (
	AgentModeExec = "exec"
	AgentModeHTTP = "http"
)

// Defaults.
const (
	DefaultAgentBinary  = "agent-b"
	DefaultTaskTimeout  = 10 * time.Minute
	DefaultPollInterval = 3 * time.Second
	DefaultTaskDelay    = 3 * time.Second
	DefaultDatasetDir   = "captured_states"
	DefaultReportPath   = "dataset_summary.json"
)

// Config holds the runner settings.
type Config struct {
	AgentMode         string
	AgentBinary       string
	AgentURL          string
	AgentAPIToken     string
	AgentTaskTimeout  time.Duration
	AgentPollInterval time.Duration
	Headless          bool
	TaskDelay         time.Duration
	DatasetDir        string
	ReportPath        string
	CatalogFile       string
}

// Load reads .env (if present) and then the environment.
// It reports whether a .env file was found.
func Load() (*Config, bool, error) {
	// It's okay if .env doesn't exist, environment variables might be set manually
	envLoaded := godotenv.Load() == nil
	cfg, err := FromEnv()
	return cfg, envLoaded, err
}

// FromEnv builds a Config from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AgentMode:     getEnv("AGENT_MODE", AgentModeExec),
		AgentBinary:   getEnv("AGENT_BIN", DefaultAgentBinary),
		AgentURL:      os.Getenv("AGENT_URL"),
		AgentAPIToken: os.Getenv("AGENT_API_TOKEN"),
		DatasetDir:    getEnv("DATASET_DIR", DefaultDatasetDir),
		ReportPath:    getEnv("REPORT_PATH", DefaultReportPath),
		CatalogFile:   os.Getenv("CATALOG_FILE"),
	}

	var err error
	if cfg.AgentTaskTimeout, err = getDuration("AGENT_TASK_TIMEOUT", DefaultTaskTimeout); err != nil {
		return nil, err
	}
	if cfg.AgentPollInterval, err = getDuration("AGENT_POLL_INTERVAL", DefaultPollInterval); err != nil {
		return nil, err
	}
	if cfg.TaskDelay, err = getDuration("TASK_DELAY", DefaultTaskDelay); err != nil {
		return nil, err
	}
	if cfg.Headless, err = getBool("AGENT_HEADLESS", false); err != nil {
		return nil, err
	}

	switch cfg.AgentMode {
	case AgentModeExec:
	case AgentModeHTTP:
		if cfg.AgentURL == "" {
			return nil, fmt.Errorf("AGENT_URL environment variable not set (required for AGENT_MODE=http)")
		}
	default:
		return nil, fmt.Errorf("invalid AGENT_MODE %q: must be %q or %q", cfg.AgentMode, AgentModeExec, AgentModeHTTP)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, v)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
