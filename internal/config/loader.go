package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".phishguard"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .phishguard YAML file. Every field is
// optional; zero values leave the corresponding Config field untouched.
type File struct {
	Listen           string        `yaml:"listen,omitempty"`
	CollectorTimeout time.Duration `yaml:"collectorTimeout,omitempty"`
	BatchSize        int           `yaml:"batchSize,omitempty"`
	Offline          *bool         `yaml:"offline,omitempty"`
	CORSOrigin       string        `yaml:"corsOrigin,omitempty"`

	Lists    ListsSection    `yaml:"lists,omitempty"`
	Model    ModelSection    `yaml:"model,omitempty"`
	Database DatabaseSection `yaml:"database,omitempty"`
	Proxy    ProxySection    `yaml:"proxy,omitempty"`
	Content  ContentSection  `yaml:"content,omitempty"`
	Log      LogSection      `yaml:"log,omitempty"`
}

// ListsSection configures the override list files.
type ListsSection struct {
	Dir string `yaml:"dir,omitempty"`
}

// ModelSection configures the classifier artifacts.
type ModelSection struct {
	Dir string `yaml:"dir,omitempty"`
}

// DatabaseSection configures the SQLite archive.
type DatabaseSection struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ProxySection configures SOCKS5 routing of the collectors.
type ProxySection struct {
	Address        string        `yaml:"address,omitempty"`
	EmbeddedTor    *bool         `yaml:"embeddedTor,omitempty"`
	StartupTimeout time.Duration `yaml:"startupTimeout,omitempty"`
}

// ContentSection configures the content prober.
type ContentSection struct {
	UserAgent   string `yaml:"userAgent,omitempty"`
	MaxBodySize int64  `yaml:"maxBodySize,omitempty"`
}

// LogSection configures logging.
type LogSection struct {
	Verbose *bool `yaml:"verbose,omitempty"`
	JSON    *bool `yaml:"json,omitempty"`
}

// LoadConfigFile parses the YAML file at path.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies every field set in cf onto c.
func (cf *File) Apply(c *Config) {
	setString(&c.ListenAddress, cf.Listen)
	setString(&c.CORSOrigin, cf.CORSOrigin)
	setString(&c.ListsDir, expandHome(cf.Lists.Dir))
	setString(&c.ModelDir, expandHome(cf.Model.Dir))
	setString(&c.DBDir, expandHome(cf.Database.Dir))
	setString(&c.ProxyAddress, cf.Proxy.Address)
	setString(&c.UserAgent, cf.Content.UserAgent)

	if cf.CollectorTimeout > 0 {
		c.CollectorTimeout = cf.CollectorTimeout
	}
	if cf.BatchSize > 0 {
		c.BatchSize = cf.BatchSize
	}
	if cf.Proxy.StartupTimeout > 0 {
		c.TorStartupTimeout = cf.Proxy.StartupTimeout
	}
	if cf.Content.MaxBodySize > 0 {
		c.MaxBodySize = cf.Content.MaxBodySize
	}

	setBool(&c.Offline, cf.Offline)
	setBool(&c.SaveToDB, cf.Database.Enabled)
	setBool(&c.EmbeddedTor, cf.Proxy.EmbeddedTor)
	setBool(&c.Verbose, cf.Log.Verbose)
	setBool(&c.LogJSON, cf.Log.JSON)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .phishguard in the current directory
// 3. Look for .phishguard in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
