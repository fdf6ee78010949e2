// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSiteFile is the project metadata file read at process start.
const DefaultSiteFile = "site.yaml"

// Site holds the project metadata rendered into every page header.
// It is loaded once and passed by value, so it never changes under a build.
type Site struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
	Homepage    string `yaml:"homepage"`
	Author      string `yaml:"author"`
}

// DefaultSite is used when no metadata file exists.
func DefaultSite() Site {
	return Site{Title: "Documentation"}
}

// LoadSite reads the YAML metadata file at path. A missing file yields
// DefaultSite; a file that exists but cannot be parsed is an error.
func LoadSite(path string) (Site, error) {
	cfg := DefaultSite()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Site{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Site{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	if cfg.Title == "" {
		cfg.Title = DefaultSite().Title
	}
	return cfg, nil
}
