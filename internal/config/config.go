package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/777genius/vccli/internal/logging"
	"github.com/777genius/vccli/internal/platform"
)

// Config represents the vccli configuration
type Config struct {
	Quiet    bool                      `json:"quiet"`   // Minimal output, same as -q
	NoColor  bool                      `json:"noColor"` // Disable ANSI colors, same as -n
	Log      LogConfig                 `json:"log"`
	Notify   NotifyConfig              `json:"notify"`
	Preview  PreviewConfig             `json:"preview"`
	Profiles map[string][]ProfileEntry `json:"profiles"`
}

// LogConfig represents logging settings
type LogConfig struct {
	Level      string `json:"level"` // debug, info, warn, error (default: warn)
	File       string `json:"file"`  // Log file path (empty = stderr only)
	MaxSizeMB  int    `json:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

// NotifyConfig represents desktop notification settings
type NotifyConfig struct {
	Enabled bool   `json:"enabled"` // Always notify, same as -N
	AppIcon string `json:"appIcon"`
}

// PreviewConfig represents the sound played after a change
type PreviewConfig struct {
	Sound string `json:"sound"` // Default file for --preview
}

// ProfileEntry is one target inside a profile
type ProfileEntry struct {
	Target  string `json:"target"`
	Device  bool   `json:"device"`  // Only match devices
	Session bool   `json:"session"` // Only match sessions
	Flow    string `json:"flow"`    // "output", "input" or "" for both
	Volume  *int   `json:"volume"`  // 0-100, nil leaves the volume unchanged
	Muted   *bool  `json:"muted"`   // nil leaves the mute state unchanged
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  5,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Profiles: make(map[string][]ProfileEntry),
	}
}

// DefaultPath returns VCCLI_CONFIG or the per-user config file
func DefaultPath() string {
	if p := os.Getenv("VCCLI_CONFIG"); p != "" {
		return platform.ExpandEnv(p)
	}
	return filepath.Join(platform.ConfigDir(), "config.json")
}

// LoadEnv loads .env files into the environment without overriding existing variables.
// Missing files are ignored.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env", filepath.Join(platform.ConfigDir(), ".env")}
	}
	for _, f := range files {
		if !platform.FileExists(f) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			logging.Warn("Failed to load %s: %v", f, err)
		}
	}
}

// Load loads configuration from a file
// If the file doesn't exist, returns default config
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if platform.FileExists(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Expand environment variables in paths
	config.Log.File = platform.ExpandEnv(config.Log.File)
	config.Notify.AppIcon = platform.ExpandEnv(config.Notify.AppIcon)
	config.Preview.Sound = platform.ExpandEnv(config.Preview.Sound)

	config.ApplyEnv()
	config.ApplyDefaults()

	return config, nil
}

// ApplyEnv overrides settings from VCCLI_* variables and NO_COLOR
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv("VCCLI_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("VCCLI_LOG_FILE"); ok {
		c.Log.File = platform.ExpandEnv(v)
	}
	if v, ok := lookupBool("VCCLI_QUIET"); ok {
		c.Quiet = v
	}
	if v, ok := lookupBool("VCCLI_NO_COLOR"); ok {
		c.NoColor = v
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.NoColor = true
	}
}

func lookupBool(key string) (bool, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		logging.Warn("Ignoring %s=%q: not a boolean", key, v)
		return false, false
	}
	return b, true
}

// ApplyDefaults fills in missing fields with default values
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = defaults.Log.MaxBackups
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = defaults.Log.MaxAgeDays
	}
	if c.Profiles == nil {
		c.Profiles = make(map[string][]ProfileEntry)
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must be >= 0")
	}

	for _, name := range c.ProfileNames() {
		for i, e := range c.Profiles[name] {
			if err := e.Validate(); err != nil {
				return fmt.Errorf("profile %q entry %d: %w", name, i, err)
			}
		}
	}
	return nil
}

// Validate validates a single profile entry
func (e ProfileEntry) Validate() error {
	if strings.TrimSpace(e.Target) == "" {
		return fmt.Errorf("target is required")
	}
	switch strings.ToLower(e.Flow) {
	case "", "output", "input":
	default:
		return fmt.Errorf("invalid flow: %s (must be one of: output, input)", e.Flow)
	}
	if e.Volume != nil && (*e.Volume < 0 || *e.Volume > 100) {
		return fmt.Errorf("volume must be between 0 and 100 (got %d)", *e.Volume)
	}
	if e.Volume == nil && e.Muted == nil {
		return fmt.Errorf("entry for %s changes nothing (set volume or muted)", e.Target)
	}
	return nil
}

// IsOutput reports whether the entry is restricted to output devices
func (e ProfileEntry) IsOutput() bool { return strings.EqualFold(e.Flow, "output") }

// IsInput reports whether the entry is restricted to input devices
func (e ProfileEntry) IsInput() bool { return strings.EqualFold(e.Flow, "input") }

// Profile returns the entries of a named profile
func (c *Config) Profile(name string) ([]ProfileEntry, error) {
	entries, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s (available: %s)", name, strings.Join(c.ProfileNames(), ", "))
	}
	return entries, nil
}

// ProfileNames returns the profile names in sorted order
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoggingConfig converts the log section for the logging package
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Console:    true,
	}
}
