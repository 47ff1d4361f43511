package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema. Nested sections map
// naturally to flags and environment variables.
type FileConfig struct {
	Engine struct {
		Jar             string   `yaml:"jar" json:"jar"`
		Java            string   `yaml:"java" json:"java"`
		JavaOptions     []string `yaml:"javaOptions" json:"javaOptions"`
		Encoding        string   `yaml:"encoding" json:"encoding"`
		Silent          bool     `yaml:"silent" json:"silent"`
		ForceSubprocess bool     `yaml:"forceSubprocess" json:"forceSubprocess"`
	} `yaml:"engine" json:"engine"`

	Fetch struct {
		UserAgent string `yaml:"userAgent" json:"userAgent"`
		TempDir   string `yaml:"tempDir" json:"tempDir"`
		// Timeout is a duration string such as "30s" or "2m".
		Timeout string `yaml:"timeout" json:"timeout"`
	} `yaml:"fetch" json:"fetch"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig, selected by extension.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse config: %w", err)
		}
	}
	if s := strings.TrimSpace(fc.Fetch.Timeout); s != "" {
		if _, err := time.ParseDuration(s); err != nil {
			return fc, fmt.Errorf("fetch.timeout: %w", err)
		}
	}
	return fc, nil
}

// Apply overlays file values onto cfg, leaving fields the file does not set
// untouched.
func (fc FileConfig) Apply(cfg Config) Config {
	if fc.Engine.Jar != "" {
		cfg.JarPath = fc.Engine.Jar
	}
	if fc.Engine.Java != "" {
		cfg.JavaCommand = fc.Engine.Java
	}
	if len(fc.Engine.JavaOptions) > 0 {
		cfg.JavaOptions = fc.Engine.JavaOptions
	}
	if fc.Engine.Encoding != "" {
		cfg.Encoding = fc.Engine.Encoding
	}
	if fc.Engine.Silent {
		cfg.Silent = true
	}
	if fc.Engine.ForceSubprocess {
		cfg.ForceSubprocess = true
	}
	if fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fetch.TempDir != "" {
		cfg.TempDir = fc.Fetch.TempDir
	}
	if strings.TrimSpace(fc.Fetch.Timeout) != "" {
		if d, err := time.ParseDuration(fc.Fetch.Timeout); err == nil && d > 0 {
			cfg.DownloadTimeout = d
		}
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
	return cfg
}
