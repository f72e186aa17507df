// Package config loads the prismicgen configuration file.
//
// The file is YAML. ${VAR} references are expanded from the environment
// after .env.local and .env have been loaded (existing variables win).
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
	"git.home.luguber.info/inful/prismicgen/internal/integration"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "prismicgen.yaml"

// Config represents the application configuration.
type Config struct {
	Version string              `yaml:"version"`
	Prismic integration.Options `yaml:"prismic"`
	Site    SiteConfig          `yaml:"site"`
	Metrics MetricsConfig       `yaml:"metrics,omitempty"`
	Watch   WatchConfig         `yaml:"watch,omitempty"`
}

// SiteConfig describes the site pipeline.
type SiteConfig struct {
	SrcDir   string `yaml:"src_dir"`
	AppDir   string `yaml:"app_dir,omitempty"`
	BuildDir string `yaml:"build_dir,omitempty"`
	// Routes are generated in addition to repository routes.
	Routes []string `yaml:"routes,omitempty"`
	// Middleware is the router middleware list before integrations prepend theirs.
	Middleware []string `yaml:"middleware,omitempty"`
}

// MetricsConfig controls Prometheus textfile output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// WatchConfig controls periodic regeneration.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval,omitempty"`
	// Debounce delays regeneration after file changes.
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

const (
	defaultVersion       = "1"
	defaultSrcDir        = "."
	defaultWatchInterval = 15 * time.Minute
	defaultWatchDebounce = 500 * time.Millisecond
	minWatchInterval     = 10 * time.Second
)

// Load loads, defaults and validates the configuration file at configPath.
func Load(configPath string) (*Config, error) {
	if _, err := LoadEnvFiles(); err != nil {
		return nil, err
	}

	// #nosec G304 -- configuration path is supplied by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.FileSystemError("failed to read config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return Parse(data)
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references. A bare $ is kept as written, so
// route paths and link resolver patterns may contain it.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// Parse decodes configuration from YAML, expanding ${VAR} references.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.ConfigError("failed to parse config").WithCause(err).Build()
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	if cfg.Site.SrcDir == "" {
		cfg.Site.SrcDir = defaultSrcDir
	}
	if cfg.Watch.Interval == 0 {
		cfg.Watch.Interval = defaultWatchInterval
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = defaultWatchDebounce
	}
	if cfg.Prismic.AccessToken == "" {
		cfg.Prismic.AccessToken = os.Getenv("PRISMIC_ACCESS_TOKEN")
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Version != defaultVersion {
		return errors.ConfigError(fmt.Sprintf("unsupported config version %q", c.Version)).
			WithContext("field", "version").
			Build()
	}

	endpoint := strings.TrimSpace(c.Prismic.Endpoint)
	if endpoint == "" {
		return errors.ConfigError("prismic.endpoint is required").
			WithContext("field", "prismic.endpoint").
			Build()
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.ConfigError("prismic.endpoint must be an http(s) URL").
			WithContext("field", "prismic.endpoint").
			WithContext("value", endpoint).
			Build()
	}

	if p := c.Prismic.PreviewPath(); p != "" && !strings.HasPrefix(p, "/") {
		return errors.ConfigError("prismic.preview must be a path starting with /").
			WithContext("field", "prismic.preview").
			WithContext("value", p).
			Build()
	}

	for i, r := range c.Site.Routes {
		if !strings.HasPrefix(r, "/") {
			return errors.ConfigError("site routes must start with /").
				WithContext("field", fmt.Sprintf("site.routes[%d]", i)).
				WithContext("value", r).
				Build()
		}
	}

	if c.Watch.Interval < minWatchInterval {
		return errors.ConfigError(fmt.Sprintf("watch.interval must be at least %s", minWatchInterval)).
			WithContext("field", "watch.interval").
			Build()
	}
	if c.Watch.Debounce < 0 {
		return errors.ConfigError("watch.debounce must not be negative").
			WithContext("field", "watch.debounce").
			Build()
	}
	return nil
}

const exampleConfig = `version: "1"

prismic:
  endpoint: https://your-repo.cdn.prismic.io/api/v2
  # Needed for private repositories.
  access_token: ${PRISMIC_ACCESS_TOKEN}
  # true (/preview), false, or a route path.
  preview: true
  components: true
  # Overridden by <app_dir>/prismic/link-resolver.yaml when present.
  link_resolver:
    - type: page
      path: /:uid
    - type: blog_post
      path: /blog/:uid

site:
  src_dir: .
  app_dir: app
  build_dir: .prismicgen
  routes:
    - /
  middleware: []

metrics:
  textfile: ""

watch:
  interval: 15m
  debounce: 500ms
`

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath).
			Build()
	}

	// #nosec G306 -- example config holds no secrets, only ${VAR} references
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return errors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
