package config

import (
	"os"
	"path/filepath"

	"mimesync/internal/mimeapps"
	"mimesync/internal/scanner"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	AppsDir      string `yaml:"apps_dir"`      // Directory holding *.desktop files
	MimeappsPath string `yaml:"mimeapps_path"` // Association file to reconcile
	Pretty       bool   `yaml:"pretty"`        // Pad '=' with spaces when writing
	SkipInvalid  bool   `yaml:"skip_invalid"`  // Skip unparsable descriptors
	Backup       bool   `yaml:"backup"`        // Keep a copy before overwriting
	BackupDir    string `yaml:"backup_dir"`    // Where copies go
	BackupKeep   int    `yaml:"backup_keep"`   // Copies to retain, 0 keeps all
	path         string
}

// configFileName is the name of the config file
const configFileName = "config.yaml"

// Default returns the default configuration
func Default() *Config {
	return &Config{
		AppsDir:      scanner.DefaultAppsDir,
		MimeappsPath: mimeapps.DefaultPath,
		Pretty:       false,
		SkipInvalid:  false,
		Backup:       true,
		BackupDir:    filepath.Join(StateDir(), "backups"),
		BackupKeep:   5,
		path:         ConfigPath(),
	}
}

// ConfigDir returns the directory containing mimesync config files
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mimesync")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "mimesync")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// StateDir returns the directory for backups and other state
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "mimesync")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "state", "mimesync")
}

// Load loads the configuration from path, or from ConfigPath when path is
// empty. Values missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Path returns where the configuration is read from and saved to
func (c *Config) Path() string {
	return c.path
}

// Save saves the configuration to file
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = ConfigPath()
	}

	// Create config directory
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
