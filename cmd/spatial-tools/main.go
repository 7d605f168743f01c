package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/featurestore"
	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/parsecache"
	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/redisstore"
	"github.com/linnea-strand/wkt-spatial-tools/internal/config"
	"github.com/linnea-strand/wkt-spatial-tools/internal/health"
	"github.com/linnea-strand/wkt-spatial-tools/internal/hitevents"
	"github.com/linnea-strand/wkt-spatial-tools/internal/hotness/expdecay"
	"github.com/linnea-strand/wkt-spatial-tools/internal/index"
	"github.com/linnea-strand/wkt-spatial-tools/internal/invalidation/kafkaconsumer"
	"github.com/linnea-strand/wkt-spatial-tools/internal/logger"
	"github.com/linnea-strand/wkt-spatial-tools/internal/metrics"
	"github.com/linnea-strand/wkt-spatial-tools/internal/observability"
	"github.com/linnea-strand/wkt-spatial-tools/internal/server"
	"github.com/linnea-strand/wkt-spatial-tools/pkg/adaptive"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "spatial-tools",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting spatial-tools",
		"addr", cfg.Addr,
		"version", Version,
		"redis", cfg.RedisAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	cli, err := redisstore.New(dialCtx, cfg.RedisAddr)
	cancel()
	if err != nil {
		appLog.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
		return 1
	}
	defer func() { _ = cli.Close() }()

	store := featurestore.NewRedis(cli, cfg.FeatureTTL)
	parsed := parsecache.New(cfg.ParseCacheSize)
	hot := expdecay.New(cfg.HotHalfLife)
	ttl := adaptive.NewTTLDecider(adaptive.Config{
		Threshold: cfg.HotThreshold,
		TTLCold:   cfg.AdaptiveTTLCold,
		TTLWarm:   cfg.AdaptiveTTLWarm,
		TTLHot:    cfg.AdaptiveTTLHot,
	})

	idx, err := index.New(cfg.H3Res)
	if err != nil {
		appLog.Error("cell index setup failed", "res", cfg.H3Res, "err", err)
		return 1
	}

	var publishHit func(hitevents.Event)
	if cfg.HitEvents.Enabled {
		pub, err := hitevents.NewPublisher(
			splitBrokers(cfg.HitEvents.Brokers), cfg.HitEvents.Topic, cfg.HitEvents.QueueSize)
		if err != nil {
			appLog.Error("hit events publisher setup failed", "err", err)
			return 1
		}
		hitevents.InitGlobal(pub)
		defer func() { _ = hitevents.CloseGlobal() }()
		publishHit = hitevents.Publish
	}

	if cfg.Invalidation.Enabled {
		kcfg := kafkaconsumer.FromEnv()
		consumer := kafkaconsumer.New(kcfg, appLog, store, parsed, idx, hot)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("invalidation consumer exited", "err", err)
			}
		}()
	}

	startMetrics(ctx, cfg.MetricsAddr)

	srv := server.New(appLog, server.Options{
		Store:        store,
		ParseCache:   parsed,
		Index:        idx,
		Hotness:      hot,
		TTL:          ttl,
		TTLOverrides: cfg.FeatureTTLOvr,
		NearRings:    cfg.NearRings,
		PublishHit:   publishHit,
		Readiness: map[string]health.Check{
			"redis": func() error {
				pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_, err := cli.TTL(pingCtx, "readyz-probe")
				return err
			},
		},
	})

	if err := server.Run(ctx, cfg.Addr, appLog, srv); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

func startMetrics(ctx context.Context, addr string) {
	p := metrics.Init(metrics.Config{Enabled: true, Addr: addr, Path: "/metrics", Version: Version})

	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("metrics: listening on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("metrics: shutdown error: %v", err)
		}
	}()
}

func splitBrokers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
