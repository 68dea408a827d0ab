// Package config provides the run configuration for the scraper.
// It defines the defaults, validation, and the optional YAML site file
// that describes where the catalog lives and how pages are laid out.
package config
