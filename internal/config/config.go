// Package config loads the optional kbsite.yaml runtime configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	kberrors "git.home.luguber.info/inful/kbsite/internal/errors"
	"git.home.luguber.info/inful/kbsite/internal/site"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "kbsite.yaml"

// Config is the runtime configuration. Every field is optional.
type Config struct {
	Profile  site.Overrides `yaml:"profile,omitempty"`
	DocsDir  string         `yaml:"docs_dir"`
	Exclude  []string       `yaml:"exclude,omitempty"` // sidebar glob excludes
	Revision RevisionConfig `yaml:"revision"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`

	// path is the file the config was read from; empty for defaults.
	path string
}

// RevisionConfig selects how version-control metadata is read.
type RevisionConfig struct {
	Backend  string `yaml:"backend"`  // git|gogit
	Timeout  string `yaml:"timeout"`  // per query, e.g. "5s"
	Parallel bool   `yaml:"parallel"` // run the two git queries concurrently
	Dir      string `yaml:"dir"`      // defaults to docs_dir
}

type OutputConfig struct {
	Path   string `yaml:"path"`   // "-" for stdout
	Format string `yaml:"format"` // json|yaml|toml
}

type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	applyDefaults(c)
	return c
}

// Load reads path, which must exist. .env and .env.local next to it are
// loaded first without overriding the process environment, then ${VAR}
// references in the file are expanded.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, kberrors.ConfigNotFound(path)
		}
		return nil, kberrors.ConfigInvalid(path, err)
	}
	loadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kberrors.ConfigInvalid(path, fmt.Errorf("read: %w", err))
	}

	var c Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &c); err != nil {
		return nil, kberrors.ConfigInvalid(path, fmt.Errorf("unmarshal: %w", err))
	}
	c.path = path
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadOptional is Load, except that a missing file yields Default.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		loadEnvFiles(filepath.Dir(path))
		return Default(), nil
	}
	return Load(path)
}

// Path returns the file the configuration came from, or "".
func (c *Config) Path() string { return c.path }

// loadEnvFiles loads .env.local before .env so local values take precedence;
// godotenv never overrides variables that are already set.
func loadEnvFiles(dir string) {
	for _, name := range []string{".env.local", ".env"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			fmt.Fprintf(os.Stderr, "Note: %s could not be loaded: %v\n", p, err)
		}
	}
}

// TimeoutDuration returns the parsed per-query timeout.
func (r RevisionConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// DebounceDuration returns the parsed debounce interval.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 0
	}
	return d
}
