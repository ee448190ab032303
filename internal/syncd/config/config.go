package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	home, _            = os.UserHomeDir()
	DefaultConfigPath  = filepath.Join(home, ".syncv", "config.json")
	DefaultLogFilePath = filepath.Join(home, ".syncv", "logs", "syncv.log")
)

// Change-detection policies.
const (
	DetectModTime = "modtime"
	DetectContent = "content"
)

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Config is everything the daemon needs for one source/replica pair.
// The CLI layer owns where the values come from (flags, env, config
// file); the daemon only sees the merged result.
type Config struct {
	SourceDir  string        `json:"source_dir"`
	ReplicaDir string        `json:"replica_dir"`
	Interval   time.Duration `json:"interval"`
	LogFile    string        `json:"log_file"`
	LogLevel   string        `json:"log_level"`
	Watch      bool          `json:"watch"`
	Detect     string        `json:"detect"`
	HistoryDB  string        `json:"history_db"`
}

func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return errors.New("source directory is required")
	}
	if c.ReplicaDir == "" {
		return errors.New("replica directory is required")
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %s", c.Interval)
	}
	if c.Detect != "" && c.Detect != DetectModTime && c.Detect != DetectContent {
		return fmt.Errorf("unknown detect policy %q (want %s or %s)", c.Detect, DetectModTime, DetectContent)
	}
	if c.LogLevel != "" && !logLevels[c.LogLevel] {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
