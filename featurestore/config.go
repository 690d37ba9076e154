package featurestore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/transform"
)

const defaultRegistryTTL = 600 * time.Second

// Config is the environment driven client configuration.
type Config struct {
	Project          string        `env:"FEATURESTORE_PROJECT"`
	RegistryTTL      time.Duration `env:"FEATURESTORE_REGISTRY_TTL" envDefault:"600s"`
	LoopLoadInterval time.Duration `env:"FEATURESTORE_LOOP_LOAD_INTERVAL"`
	ReadConcurrency  int           `env:"FEATURESTORE_READ_CONCURRENCY"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse featurestore config: %w", err)
	}
	return cfg, nil
}

// Options turns the configuration into client options.
func (c *Config) Options() []ClientOption {
	opts := []ClientOption{
		WithRegistryTTL(c.RegistryTTL),
		WithReadConcurrency(c.ReadConcurrency),
	}
	if c.LoopLoadInterval > 0 {
		opts = append(opts, WithLoopLoadData(c.LoopLoadInterval))
	}
	return opts
}

type ClientOption func(c *FeatureStoreClient)

func WithLogger(l *slog.Logger) ClientOption {
	return func(e *FeatureStoreClient) {
		e.logger = l
	}
}

// WithRegistryTTL sets how long a registry snapshot is served, 0 keeps it until RefreshRegistry.
func WithRegistryTTL(ttl time.Duration) ClientOption {
	return func(e *FeatureStoreClient) {
		e.registryTTL = ttl
	}
}

// WithLoopLoadData refreshes the registry every interval until Close.
func WithLoopLoadData(interval time.Duration) ClientOption {
	return func(e *FeatureStoreClient) {
		e.loopLoadInterval = interval
	}
}

// WithReadConcurrency bounds the concurrent table reads of one request, 0 means unbounded.
func WithReadConcurrency(n int) ClientOption {
	return func(e *FeatureStoreClient) {
		e.readConcurrency = n
	}
}

func WithTransformRegistry(r *transform.Registry) ClientOption {
	return func(e *FeatureStoreClient) {
		e.transforms = r
	}
}

func WithMetricsRegisterer(reg prometheus.Registerer) ClientOption {
	return func(e *FeatureStoreClient) {
		e.registerer = reg
	}
}

func WithClock(now func() time.Time) ClientOption {
	return func(e *FeatureStoreClient) {
		e.now = now
	}
}
