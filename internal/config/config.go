// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the ambient application configuration: where to find the
// default mapping file, how verbose to log, and whether the hook should
// start enabled. The mapping file's own contents are owned by
// internal/persistence, not by this package. LogLevel is loaded and saved
// with the file, but cmd/keyremap takes its log level from the -log-level
// flag only and does not read LogLevel.
type Config struct {
	MappingFile string `yaml:"mapping_file"`
	LogLevel    string `yaml:"log_level"`
	StartHook   bool   `yaml:"start_hook"`
	ConfigDir   string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no config file is found.
func DefaultConfig() *Config {
	return &Config{
		MappingFile: "default.yaml",
		LogLevel:    "info",
		StartHook:   true,
	}
}

// Load reads configuration from the specified path or default locations.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	searchPaths := []string{}
	if configPath != "" {
		searchPaths = append(searchPaths, configPath)
	}

	// %APPDATA% is the Windows analogue of the XDG config dir this
	// corpus's other config loaders search.
	if appData := os.Getenv("APPDATA"); appData != "" {
		searchPaths = append(searchPaths, filepath.Join(appData, "keyremap", "config.yaml"))
	}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		searchPaths = append(searchPaths, filepath.Join(exeDir, "config.yaml"))
	}

	var loadedPath string
	for _, path := range searchPaths {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
			loadedPath = path
			break
		}
	}

	if loadedPath != "" {
		cfg.ConfigDir = filepath.Dir(loadedPath)
	} else if appData := os.Getenv("APPDATA"); appData != "" {
		cfg.ConfigDir = filepath.Join(appData, "keyremap")
	} else if exe, err := os.Executable(); err == nil {
		cfg.ConfigDir = filepath.Dir(exe)
	} else {
		cfg.ConfigDir = "."
	}

	return cfg, nil
}

// MappingPath resolves a mapping file name against ConfigDir.
func (c *Config) MappingPath(name string) string {
	return filepath.Join(c.ConfigDir, "mappings", name)
}

// AvailableMappingFiles lists the mapping files found in ConfigDir/mappings.
func (c *Config) AvailableMappingFiles() ([]string, error) {
	mappingDir := filepath.Join(c.ConfigDir, "mappings")
	entries, err := os.ReadDir(mappingDir)
	if err != nil {
		return nil, fmt.Errorf("reading mappings directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".yaml" {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// Save writes the config back to ConfigDir/config.yaml.
func (c *Config) Save() error {
	configPath := filepath.Join(c.ConfigDir, "config.yaml")

	if err := os.MkdirAll(c.ConfigDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
