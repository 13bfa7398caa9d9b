// Package config holds the storefront binary's environment configuration.
package config

import (
	"fmt"
	"time"

	"Storefront/internal/catalog"
	"Storefront/internal/kv"
	"Storefront/pkg/kit"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080" validate:"required,numeric"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	CatalogKind       string        `env:"CATALOG_KIND" envDefault:"phones" validate:"oneof=phones manga"`
	CatalogBaseURL    string        `env:"CATALOG_BASE_URL" envDefault:"http://localhost:3000" validate:"required,url"`
	CatalogCollection string        `env:"CATALOG_COLLECTION"`
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"5s" validate:"gt=0"`

	KVBackend     string `env:"KV_BACKEND" envDefault:"file" validate:"oneof=memory file redis postgres"`
	KVFilePath    string `env:"KV_FILE_PATH" envDefault:"data/storefront.json" validate:"required_if=KVBackend file"`
	RedisAddr     string `env:"REDIS_ADDR" validate:"required_if=KVBackend redis"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0,lte=15"`
	DatabaseURL   string `env:"DATABASE_URL" validate:"required_if=KVBackend postgres"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"false"`
	MetricsToken   string `env:"METRICS_TOKEN" validate:"required_if=MetricsEnabled true"`

	ReviewRateLimit   int           `env:"REVIEW_RATE_LIMIT" envDefault:"10" validate:"gte=0"`
	ReviewRateWindow  time.Duration `env:"REVIEW_RATE_WINDOW" envDefault:"1m" validate:"gt=0"`
	TrustProxyHeaders bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

func Load() (Config, error) {
	var cfg Config
	if err := kit.LoadConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Kind resolves CATALOG_KIND, applying CATALOG_COLLECTION when set.
func (c Config) Kind() (catalog.Kind, error) {
	k, ok := catalog.KindByName(c.CatalogKind)
	if !ok {
		return catalog.Kind{}, fmt.Errorf("unknown catalog kind %q", c.CatalogKind)
	}
	if c.CatalogCollection != "" {
		k.Collection = c.CatalogCollection
	}
	return k, nil
}

func (c Config) KVOptions() kv.Options {
	return kv.Options{
		Backend:       c.KVBackend,
		FilePath:      c.KVFilePath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		DatabaseURL:   c.DatabaseURL,
	}
}
