package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the site file name searched for by FindConfigFile.
const DefaultConfigFile = ".beforeiplay.yaml"

// File is the structure of the YAML site file. Every field is optional;
// CLI flags take precedence over values set here.
type File struct {
	IndexURL       string        `yaml:"indexUrl,omitempty"`
	OutputDir      string        `yaml:"outputDir,omitempty"`
	Delay          time.Duration `yaml:"delay,omitempty"`
	RandomizeDelay bool          `yaml:"randomizeDelay,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	UserAgent      string        `yaml:"userAgent,omitempty"`
	MaxIndexPages  int           `yaml:"maxIndexPages,omitempty"`
	FrontMatter    bool          `yaml:"frontMatter,omitempty"`
	RespectRobots  bool          `yaml:"respectRobots,omitempty"`
	Site           Site          `yaml:"site,omitempty"`
}

// LoadConfigFile reads a site file. A missing file returns ErrConfigNotFound
// so callers can decide whether that matters.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply overlays the values set in f onto c.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.IndexURL != "" {
		c.IndexURL = f.IndexURL
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if f.Delay != 0 {
		c.Delay = f.Delay
	}
	if f.RandomizeDelay {
		c.RandomizeDelay = true
	}
	if f.Timeout != 0 {
		c.Timeout = f.Timeout
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.MaxIndexPages != 0 {
		c.MaxIndexPages = f.MaxIndexPages
	}
	if f.FrontMatter {
		c.FrontMatter = true
	}
	if f.RespectRobots {
		c.RespectRobots = true
	}
	c.Site = c.Site.merge(f.Site)
}

// FindConfigFile searches for the site file in the following order:
// 1. If configPath is specified, use it directly
// 2. .beforeiplay.yaml in the current directory
// 3. .beforeiplay.yaml in the user's home directory
// 4. config.yaml in the XDG config directory
//
// Returns the path of the file found, or "" if none exists.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
