// Package adaptive maps feature hotness to cache TTLs so frequently
// requested features stay in the store longer than cold ones.
package adaptive

import "time"

type HotnessView interface {
	Score(key string) float64
}

type Tier string

const (
	TierCold Tier = "cold"
	TierWarm Tier = "warm"
	TierHot  Tier = "hot"
)

type Config struct {
	// Threshold separates cold from warm; 4x the threshold is hot.
	Threshold float64
	TTLCold   time.Duration
	TTLWarm   time.Duration
	TTLHot    time.Duration
}

type TTLDecider struct {
	cfg Config
}

func NewTTLDecider(cfg Config) *TTLDecider {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 10
	}
	return &TTLDecider{cfg: cfg}
}

// Decide returns the TTL for a feature given the current hotness view.
func (d *TTLDecider) Decide(key string, view HotnessView) (time.Duration, Tier) {
	score := 0.0
	if view != nil {
		score = view.Score(key)
	}
	switch {
	case score >= 4*d.cfg.Threshold && d.cfg.TTLHot > 0:
		return d.cfg.TTLHot, TierHot
	case score >= d.cfg.Threshold && d.cfg.TTLWarm > 0:
		return d.cfg.TTLWarm, TierWarm
	default:
		return d.cfg.TTLCold, TierCold
	}
}
