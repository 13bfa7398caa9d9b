package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/kv"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "phones", cfg.CatalogKind)
	assert.Equal(t, "http://localhost:3000", cfg.CatalogBaseURL)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, kv.BackendFile, cfg.KVBackend)
	assert.Equal(t, time.Minute, cfg.ReviewRateWindow)
	assert.False(t, cfg.TrustProxyHeaders)

	k, err := cfg.Kind()
	require.NoError(t, err)
	assert.Equal(t, "phones", k.Collection)
	assert.Equal(t, "phoneReviews", k.ReviewsKey)
}

func TestLoad_MangaWithCollectionOverride(t *testing.T) {
	t.Setenv("CATALOG_KIND", "manga")
	t.Setenv("CATALOG_COLLECTION", "api/v2/manga")
	t.Setenv("KV_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	k, err := cfg.Kind()
	require.NoError(t, err)
	assert.Equal(t, "api/v2/manga", k.Collection)
	assert.Equal(t, "mangaReviews", k.ReviewsKey)

	opts := cfg.KVOptions()
	assert.Equal(t, kv.BackendRedis, opts.Backend)
	assert.Equal(t, "localhost:6379", opts.RedisAddr)
	assert.Equal(t, 3, opts.RedisDB)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "unknown kind", env: map[string]string{"CATALOG_KIND": "books"}, want: "CatalogKind"},
		{name: "bad url", env: map[string]string{"CATALOG_BASE_URL": "not a url"}, want: "CatalogBaseURL"},
		{name: "redis without addr", env: map[string]string{"KV_BACKEND": "redis"}, want: "RedisAddr"},
		{name: "postgres without dsn", env: map[string]string{"KV_BACKEND": "postgres"}, want: "DatabaseURL"},
		{name: "metrics without token", env: map[string]string{"METRICS_ENABLED": "true"}, want: "MetricsToken"},
		{name: "bad duration", env: map[string]string{"FETCH_TIMEOUT": "soon"}, want: "parse config"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
