package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.Addr != ":8090" {
		t.Fatalf("Addr=%q", cfg.Addr)
	}
	if cfg.ParseCacheSize != 4096 {
		t.Fatalf("ParseCacheSize=%d", cfg.ParseCacheSize)
	}
	if cfg.FeatureTTL != 10*time.Minute {
		t.Fatalf("FeatureTTL=%v", cfg.FeatureTTL)
	}
	if cfg.AdaptiveTTLCold != 5*time.Minute || cfg.AdaptiveTTLHot != 20*time.Minute {
		t.Fatalf("adaptive TTLs=%v/%v", cfg.AdaptiveTTLCold, cfg.AdaptiveTTLHot)
	}
	if cfg.Invalidation.Topic != "record-changes" {
		t.Fatalf("topic=%q", cfg.Invalidation.Topic)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":7000")
	t.Setenv("PARSE_CACHE_SIZE", "128")
	t.Setenv("FEATURE_TTL_DEFAULT", "30s")
	t.Setenv("FEATURE_TTL_OVERRIDES", "places=5m, roads=45s,=1m,junk")
	t.Setenv("INVALIDATION_ENABLED", "yes")

	cfg := FromEnv()
	if cfg.Addr != ":7000" || cfg.ParseCacheSize != 128 || cfg.FeatureTTL != 30*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.Invalidation.Enabled {
		t.Fatalf("INVALIDATION_ENABLED=yes not parsed")
	}
	ovr := cfg.FeatureTTLOvr
	if len(ovr) != 2 || ovr["places"] != 5*time.Minute || ovr["roads"] != 45*time.Second {
		t.Fatalf("overrides map=%v", ovr)
	}
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("PARSE_CACHE_SIZE", "lots")
	t.Setenv("FEATURE_TTL_DEFAULT", "soon")
	cfg := FromEnv()
	if cfg.ParseCacheSize != 4096 || cfg.FeatureTTL != 10*time.Minute {
		t.Fatalf("bad values should fall back to defaults: %+v", cfg)
	}
}
