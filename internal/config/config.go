package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "wifiprov"
	configFile = "config.yaml"
)

// Config holds the daemon configuration.
type Config struct {
	// HTTPAddr is the listen address for the portal and management API.
	HTTPAddr string `yaml:"http_addr"`

	// DNSAddr is the listen address for the capture resolver while the
	// portal is active.
	DNSAddr string `yaml:"dns_addr"`

	// APSSID is the identity of the access point started for provisioning.
	APSSID string `yaml:"ap_ssid"`

	// APAddress is the IPv4 address the device claims while in portal mode.
	// Every captured DNS query resolves to this address.
	APAddress string `yaml:"ap_address"`

	// DeviceName is the instance name announced over mDNS once connected.
	DeviceName string `yaml:"device_name"`

	// StorePath overrides the credential store location. Empty means the
	// OS-appropriate config directory.
	StorePath string `yaml:"store_path"`

	// AllowRawScan enables the raw-body credential scan fallback on
	// POST /api/wifi. Compatibility shim for clients that send neither
	// valid JSON nor a urlencoded form; off by default.
	AllowRawScan bool `yaml:"allow_raw_scan"`

	// Simulate runs against the in-memory simulated radio instead of nmcli.
	Simulate bool `yaml:"simulate"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	// Empty means silent unless WIFIPROV_LOG_LEVEL is set.
	LogLevel string `yaml:"log_level"`
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		HTTPAddr:   ":8080",
		DNSAddr:    ":53",
		APSSID:     "WiFiProv-Setup",
		APAddress:  "192.168.4.1",
		DeviceName: "wifiprov",
	}
}

// GetConfigDir returns the OS-appropriate configuration directory for the
// daemon. This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/wifiprov or $HOME/.config/wifiprov
//   - macOS: $HOME/.config/wifiprov (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\wifiprov
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads the configuration from the given path. An empty path falls back
// to the default location; a missing file at either yields defaults rather
// than an error, so a bare device boots straight into provisioning.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("http_addr must not be empty")
	}
	if c.APSSID == "" {
		return fmt.Errorf("ap_ssid must not be empty")
	}
	if c.APAddress == "" {
		return fmt.Errorf("ap_address must not be empty")
	}
	return nil
}
