package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/directus"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/ext/toolcache"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/ext/toolotel"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/ext/toolprom"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/internal/config"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/internal/logging"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/internal/telemetry"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/toolkits/directustool"
)

// app wires the registry and its middlewares from the configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *agenttool.Registry
	tracing  *telemetry.Provider
	// metrics is nil when metrics are disabled.
	metrics *prometheus.Registry
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	logger, err := logging.New(logOut, cfg.Log)
	if err != nil {
		return nil, err
	}
	client, err := directus.NewClient(cfg.Directus.URL,
		directus.WithToken(cfg.Directus.Token),
		directus.WithTimeout(cfg.Directus.Timeout),
		directus.WithUserAgent(cfg.Directus.UserAgent),
	)
	if err != nil {
		return nil, err
	}

	reg := agenttool.NewRegistry(
		agenttool.WithDefaultTimeout(cfg.Registry.DefaultTimeout),
		agenttool.WithMaxConcurrency(cfg.Registry.MaxConcurrency),
		agenttool.WithLogger(logger),
	)
	if err := directustool.Register(reg, client); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, registry: reg}
	a.tracing, err = telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}

	// outermost first: cache hits are still logged, traced and counted
	middlewares := []agenttool.Middleware{agenttool.WithLogging(logger)}
	if a.tracing.Enabled() {
		middlewares = append(middlewares, toolotel.WithTracing(a.tracing.Tracer("directus-tools")))
	}
	if cfg.Metrics.Enabled {
		a.metrics = prometheus.NewRegistry()
		a.metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m, err := toolprom.New(a.metrics)
		if err != nil {
			return nil, err
		}
		middlewares = append(middlewares, m.Middleware())
	}
	if cfg.Cache.Enabled {
		cache, err := toolcache.New(toolcache.Config{Size: cfg.Cache.Size, TTL: cfg.Cache.TTL})
		if err != nil {
			return nil, err
		}
		middlewares = append(middlewares, cache.Middleware())
	}
	reg.Use(middlewares...)
	return a, nil
}

func (a *app) Close(ctx context.Context) error {
	return a.tracing.Shutdown(ctx)
}
