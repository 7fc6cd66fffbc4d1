// Package config loads the per-repository .gitsplit.yaml file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/gitsplit/internal/highlight"
)

const FileName = ".gitsplit.yaml"

const maxContextLines = 100

// DefaultTruncate lists suffixes of generated files whose diffs are hidden
// from planners.
var DefaultTruncate = []string{
	"go.sum",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"Cargo.lock",
	"poetry.lock",
	"composer.lock",
	"Gemfile.lock",
	"flake.lock",
}

type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type Config struct {
	// Truncate replaces the default list when set; an explicit empty list
	// disables truncation.
	Truncate     []string `yaml:"truncate"`
	ContextLines int      `yaml:"context_lines"`
	Author       Author   `yaml:"author"`
	// Theme is "auto", "light" or "dark" and selects the diff colors.
	Theme string `yaml:"theme"`

	path string
}

func Default() Config {
	return Config{
		Truncate:     append([]string(nil), DefaultTruncate...),
		ContextLines: 3,
		Theme:        "auto",
	}
}

// Path returns the file the config was read from, empty for defaults.
func (c Config) Path() string {
	return c.path
}

// Load reads path, or FileName under repoRoot when path is empty. A missing
// file yields the defaults.
func Load(repoRoot, path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(repoRoot, FileName)
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	parsed, err := Parse(data)
	if err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.path = path
	return parsed, nil
}

func Parse(data []byte) (Config, error) {
	var raw struct {
		Truncate     *[]string `yaml:"truncate"`
		ContextLines int       `yaml:"context_lines"`
		Author       Author    `yaml:"author"`
		Theme        string    `yaml:"theme"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, err
	}
	cfg := Default()
	if raw.Truncate != nil {
		cfg.Truncate = *raw.Truncate
	}
	if raw.ContextLines != 0 {
		cfg.ContextLines = raw.ContextLines
	}
	cfg.Author = raw.Author
	if raw.Theme != "" {
		cfg.Theme = raw.Theme
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	kept := c.Truncate[:0]
	for _, s := range c.Truncate {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	c.Truncate = kept
	c.Author.Name = strings.TrimSpace(c.Author.Name)
	c.Author.Email = strings.TrimSpace(c.Author.Email)
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
}

func (c Config) validate() error {
	if c.ContextLines < 0 || c.ContextLines > maxContextLines {
		return fmt.Errorf("context_lines must be between 0 and %d", maxContextLines)
	}
	if (c.Author.Name == "") != (c.Author.Email == "") {
		return fmt.Errorf("author needs both name and email")
	}
	if _, err := highlight.ParseTheme(c.Theme); err != nil {
		return err
	}
	return nil
}
