package cachyr

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailscale/hujson"
)

// ConfigFileName is the default config file name, looked up under the
// base directory resolved by [DefaultBaseDir].
const ConfigFileName = "cachyr.json"

// Config holds the file-configurable cache settings. The file format is
// HuJSON (JSON with comments and trailing commas), so a hand-maintained
// config can be annotated.
type Config struct {
	// BaseDir overrides the directory under which named caches live.
	BaseDir string `json:"base_dir,omitempty"`

	// SweepIntervalSeconds overrides the minimum delay between full
	// expiration sweeps. Zero means the default (600).
	SweepIntervalSeconds int `json:"sweep_interval_seconds,omitempty"`

	// LogLevel is a logrus level name. Empty means "warn".
	LogLevel string `json:"log_level,omitempty"`

	// LogFile, when set, routes cache logs to this file as rotated JSON
	// lines instead of text on stderr.
	LogFile string `json:"log_file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig(env map[string]string) Config {
	return Config{
		BaseDir: DefaultBaseDir(env),
	}
}

// LoadConfig reads a config file, layered over [DefaultConfig].
// A missing file is not an error; defaults are returned.
func LoadConfig(path string, env map[string]string) (Config, error) {
	cfg := DefaultConfig(env)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Standardize strips comments and trailing commas, then it's plain JSON.
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = DefaultBaseDir(env)
	}

	return cfg, nil
}

// sweepInterval returns the configured sweep interval, or the default.
func (c Config) sweepInterval() time.Duration {
	if c.SweepIntervalSeconds <= 0 {
		return DefaultSweepInterval
	}

	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
