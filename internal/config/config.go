// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type InvalidationCfg struct {
	Enabled bool
	Topic   string
	Brokers string
	GroupID string
}

type HitEventsCfg struct {
	Enabled   bool
	Topic     string
	Brokers   string
	QueueSize int
}

type Config struct {
	Addr            string
	MetricsAddr     string
	LogLevel        string
	LogConsole      bool
	RedisAddr       string
	ParseCacheSize  int
	FeatureTTL      time.Duration
	FeatureTTLOvr   map[string]time.Duration
	H3Res           int
	NearRings       int
	HotThreshold    float64
	HotHalfLife     time.Duration
	AdaptiveTTLCold time.Duration
	AdaptiveTTLWarm time.Duration
	AdaptiveTTLHot  time.Duration
	Invalidation    InvalidationCfg
	HitEvents       HitEventsCfg
}

func FromEnv() Config {
	ttlDefault := getduration("FEATURE_TTL_DEFAULT", 10*time.Minute)
	brokers := getenv("KAFKA_BROKERS", "localhost:9092")

	return Config{
		Addr:            getenv("ADDR", ":8090"),
		MetricsAddr:     getenv("METRICS_ADDR", ":9090"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogConsole:      getbool("LOG_CONSOLE", false),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		ParseCacheSize:  getint("PARSE_CACHE_SIZE", 4096),
		FeatureTTL:      ttlDefault,
		FeatureTTLOvr:   parseDurationMap(getenv("FEATURE_TTL_OVERRIDES", "")),
		H3Res:           getint("H3_RES", 8),
		NearRings:       getint("NEAR_RINGS", 1),
		HotThreshold:    getfloat("HOT_THRESHOLD", 10.0),
		HotHalfLife:     getduration("HOT_HALF_LIFE", time.Minute),
		AdaptiveTTLCold: getduration("ADAPTIVE_TTL_COLD", ttlDefault/2),
		AdaptiveTTLWarm: getduration("ADAPTIVE_TTL_WARM", ttlDefault),
		AdaptiveTTLHot:  getduration("ADAPTIVE_TTL_HOT", 2*ttlDefault),
		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Topic:   getenv("KAFKA_TOPIC", "record-changes"),
			Brokers: brokers,
			GroupID: getenv("KAFKA_GROUP_ID", "spatial-invalidator"),
		},
		HitEvents: HitEventsCfg{
			Enabled:   getbool("HIT_EVENTS_ENABLED", false),
			Topic:     getenv("HIT_EVENTS_TOPIC", "feature-access"),
			Brokers:   brokers,
			QueueSize: getint("HIT_EVENTS_QUEUE", 1024),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parse "places=5m,roads=30s" into map
func parseDurationMap(s string) map[string]time.Duration {
	out := map[string]time.Duration{}
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.TrimSpace(kv[0])
		v := strings.TrimSpace(kv[1])
		if k == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil {
			out[k] = d
		}
	}
	return out
}
