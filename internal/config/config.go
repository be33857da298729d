package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when the config file omits a value.
const (
	DefaultPort            = 8000
	DefaultListenHost      = "127.0.0.1"
	DefaultHistoryLimit    = 1000
	DefaultCPUSampleMillis = 200
	DefaultLogMaxSizeMB    = 10
	DefaultLogMaxBackups   = 3
	DefaultLogMaxAgeDays   = 28
	DefaultPrompt          = "[cmd]"
)

// Config captures the tunable runtime settings for every front end.
type Config struct {
	Workdir         string `yaml:"workdir"`
	HistoryPath     string `yaml:"history_path"`
	HistoryLimit    int    `yaml:"history_limit"`
	LogPath         string `yaml:"log_path"`
	LogMaxSizeMB    int    `yaml:"log_max_size_mb"`
	LogMaxBackups   int    `yaml:"log_max_backups"`
	LogMaxAgeDays   int    `yaml:"log_max_age_days"`
	LogJSON         bool   `yaml:"log_json"`
	ListenHost      string `yaml:"listen_host"`
	Port            int    `yaml:"port"`
	CPUSampleMillis int    `yaml:"cpu_sample_millis"`
	Prompt          string `yaml:"prompt"`
}

// ConfigPath returns the file LoadUserConfig reads.
// Checks CMDTERM_CONFIG_PATH environment variable first.
func ConfigPath() string {
	if p := os.Getenv("CMDTERM_CONFIG_PATH"); p != "" {
		return p
	}
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// EnsureDefaultConfig writes config.yaml with defaults if it doesn't exist.
func EnsureDefaultConfig() error {
	configPath := ConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	cfg := Config{}
	cfg.applyDefaults()
	return writeFile(configPath, cfg)
}

// LoadUserConfig loads configuration from the user's config file.
// If the file doesn't exist, returns defaults.
func LoadUserConfig() (Config, error) {
	configPath := ConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := Config{}
		cfg.applyDefaults()
		return cfg, nil
	}
	return Load(configPath)
}

// Load reads the YAML configuration from disk and injects sane defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills in optional values to keep the YAML file concise.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Workdir) == "" {
		c.Workdir = "."
	}
	if c.HistoryPath == "" {
		c.HistoryPath = filepath.Join(GetConfigDir(), "history.db")
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(GetConfigDir(), "cmdterm.log")
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = DefaultLogMaxBackups
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = DefaultLogMaxAgeDays
	}
	if c.ListenHost == "" {
		c.ListenHost = DefaultListenHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.CPUSampleMillis == 0 {
		c.CPUSampleMillis = DefaultCPUSampleMillis
	}
	if strings.TrimSpace(c.Prompt) == "" {
		c.Prompt = DefaultPrompt
	}
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (got %d)", c.Port)
	}
	if c.CPUSampleMillis < 10 || c.CPUSampleMillis > 5000 {
		return fmt.Errorf("cpu_sample_millis must be between 10 and 5000 (got %d)", c.CPUSampleMillis)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must be >= 0")
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must be >= 0")
	}
	if strings.TrimSpace(c.HistoryPath) == "" {
		return fmt.Errorf("history_path must be set")
	}
	return nil
}

// CPUSample turns the configured milliseconds into a duration.
func (c Config) CPUSample() time.Duration {
	return time.Duration(c.CPUSampleMillis) * time.Millisecond
}

// ListenAddr joins host and port for net.Listen.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ListenHost, c.Port)
}

// OverrideWorkdir swaps the starting directory at runtime.
func (c *Config) OverrideWorkdir(dir string) {
	if c == nil {
		return
	}
	if trimmed := strings.TrimSpace(dir); trimmed != "" {
		c.Workdir = trimmed
	}
}

// ResolvedWorkdir returns Workdir as an absolute path, expanding "~".
func (c Config) ResolvedWorkdir() (string, error) {
	dir := strings.TrimSpace(c.Workdir)
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand workdir: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return filepath.Abs(dir)
}

// GetConfigDir returns the directory holding config, history and logs.
func GetConfigDir() string {
	if configDir := os.Getenv("CMDTERM_CONFIG_DIR"); configDir != "" {
		return configDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cmdterm"
	}
	return filepath.Join(home, ".cmdterm")
}

// Save writes the config to the user's config file
func Save(c Config) error {
	return writeFile(ConfigPath(), c)
}

func writeFile(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
