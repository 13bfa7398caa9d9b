package main

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/config"
	"Storefront/internal/kv"
	"Storefront/internal/storefront"
	"Storefront/internal/theme"
	"Storefront/pkg/kit"
)

const (
	service       = "storefront"
	startupBudget = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "").Fatal("config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	kind, err := cfg.Kind()
	if err != nil {
		log.Fatal("catalog kind", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupBudget)
	defer cancel()

	storage, closeStorage, err := kv.Open(ctx, cfg.KVOptions())
	if err != nil {
		log.Fatal("kv open", zap.String("backend", cfg.KVBackend), zap.Error(err))
	}
	defer closeStorage()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	view := storefront.NewView()
	src := catalog.NewHTTPSource(cfg.CatalogBaseURL, kind.Collection, cfg.FetchTimeout)

	cat := catalog.NewStore(catalog.Options{
		Kind:     kind,
		Source:   src,
		KV:       storage,
		Renderer: view,
		Log:      log,
		Metrics:  catalog.NewMetrics(reg, kind.Name),
	})

	th := theme.NewController(storage, view, log)
	if _, err := th.Load(ctx); err != nil {
		log.Warn("theme not restored", zap.Error(err))
	}

	if err := cat.Load(ctx); err != nil {
		log.Warn("initial catalog load failed; POST /reload once the data server is up",
			zap.String("url", src.URL()), zap.Error(err))
	}

	var limiter *kit.IPRateLimiter
	if cfg.ReviewRateLimit > 0 {
		limiter = kit.NewIPRateLimiter(cfg.ReviewRateLimit, cfg.ReviewRateWindow)
		limiter.TrustForwardedFor = cfg.TrustProxyHeaders
	}

	s := &storefront.Server{
		Catalog:       cat,
		Theme:         th,
		View:          view,
		Storage:       storage,
		Log:           log,
		ReviewLimiter: limiter,
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
		closeStorage()
		os.Exit(1)
	}
}
