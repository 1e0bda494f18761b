// Package config loads client settings from a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ambiyansyah-risyal/fetchdedupe"
)

// Config represents the client configuration
type Config struct {
	ResponseType string         `yaml:"response_type"`
	Policies     PolicyConfig   `yaml:"policies"`
	Cache        CacheConfig    `yaml:"cache"`
	Prefetch     PrefetchConfig `yaml:"prefetch"`
	Metrics      MetricsConfig  `yaml:"metrics"`
	LogLevel     string         `yaml:"log_level"`
}

// PolicyConfig holds the default cache policies per method class
type PolicyConfig struct {
	Read  string `yaml:"read"`  // GET and HEAD
	Write string `yaml:"write"` // every other method
}

// CacheConfig contains response cache configuration
type CacheConfig struct {
	Shards int `yaml:"shards"`
}

// PrefetchConfig contains cache warm-up configuration
type PrefetchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// MetricsConfig contains Prometheus configuration
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration matching fetchdedupe.New with no options.
func Default() *Config {
	return &Config{
		ResponseType: string(fetchdedupe.BodyJSON),
		Policies: PolicyConfig{
			Read:  string(fetchdedupe.CacheFirst),
			Write: string(fetchdedupe.NetworkOnly),
		},
		Cache:    CacheConfig{Shards: 16},
		Prefetch: PrefetchConfig{Concurrency: 8},
		Metrics:  MetricsConfig{Namespace: "fetchdedupe"},
		LogLevel: "info",
	}
}

// Load loads configuration from a YAML file. Missing fields keep their
// Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration on top of Default.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := fetchdedupe.ParseCachePolicy(c.Policies.Read); err != nil {
		return fmt.Errorf("invalid read policy: %w", err)
	}
	if _, err := fetchdedupe.ParseCachePolicy(c.Policies.Write); err != nil {
		return fmt.Errorf("invalid write policy: %w", err)
	}

	if _, ok := fetchdedupe.ParseBodyKind(c.ResponseType); !ok {
		return fmt.Errorf("response_type must be 'json', 'text' or 'empty', got: %s", c.ResponseType)
	}

	if c.Cache.Shards <= 0 {
		return fmt.Errorf("invalid cache shards: %d", c.Cache.Shards)
	}

	if c.Prefetch.Concurrency <= 0 {
		return fmt.Errorf("invalid prefetch concurrency: %d", c.Prefetch.Concurrency)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics namespace is required when metrics are enabled")
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// Logger returns a logrus logger at the configured level.
func (c *Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	return logger, nil
}

// ClientOptions validates the configuration and converts it into client
// options. Metrics, when enabled, are registered on registry.
func (c *Config) ClientOptions(registry prometheus.Registerer) ([]fetchdedupe.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	read, _ := fetchdedupe.ParseCachePolicy(c.Policies.Read)
	write, _ := fetchdedupe.ParseCachePolicy(c.Policies.Write)
	kind, _ := fetchdedupe.ParseBodyKind(c.ResponseType)

	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	opts := []fetchdedupe.Option{
		fetchdedupe.WithDefaultPolicies(read, write),
		fetchdedupe.WithDefaultResponseType(kind),
		fetchdedupe.WithShards(c.Cache.Shards),
		fetchdedupe.WithPrefetchConcurrency(c.Prefetch.Concurrency),
		fetchdedupe.WithLogger(logger),
	}

	if c.Metrics.Enabled {
		if registry == nil {
			registry = prometheus.DefaultRegisterer
		}
		opts = append(opts, fetchdedupe.WithMetricsCollector(
			fetchdedupe.NewMetricsCollectorWithNamespace(registry, c.Metrics.Namespace),
		))
	}

	return opts, nil
}

// NewClient builds a client from the configuration. extra options are
// applied after the configured ones.
func (c *Config) NewClient(registry prometheus.Registerer, extra ...fetchdedupe.Option) (*fetchdedupe.Client, error) {
	opts, err := c.ClientOptions(registry)
	if err != nil {
		return nil, err
	}

	client := fetchdedupe.New(append(opts, extra...)...)
	if err := client.ValidationError(); err != nil {
		return nil, err
	}
	return client, nil
}
