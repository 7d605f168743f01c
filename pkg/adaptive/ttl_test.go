package adaptive

import (
	"testing"
	"time"
)

type fixedView map[string]float64

func (v fixedView) Score(key string) float64 { return v[key] }

func TestDecide_Tiers(t *testing.T) {
	d := NewTTLDecider(Config{
		Threshold: 10,
		TTLCold:   30 * time.Second,
		TTLWarm:   time.Minute,
		TTLHot:    2 * time.Minute,
	})
	view := fixedView{"cold": 1, "warm": 15, "hot": 45}

	cases := []struct {
		key  string
		ttl  time.Duration
		tier Tier
	}{
		{"cold", 30 * time.Second, TierCold},
		{"warm", time.Minute, TierWarm},
		{"hot", 2 * time.Minute, TierHot},
		{"unknown", 30 * time.Second, TierCold},
	}
	for _, c := range cases {
		ttl, tier := d.Decide(c.key, view)
		if ttl != c.ttl || tier != c.tier {
			t.Fatalf("%s: ttl=%v tier=%s want %v/%s", c.key, ttl, tier, c.ttl, c.tier)
		}
	}
}

func TestDecide_NilViewIsCold(t *testing.T) {
	d := NewTTLDecider(Config{Threshold: 10, TTLCold: time.Second})
	ttl, tier := d.Decide("anything", nil)
	if tier != TierCold || ttl != time.Second {
		t.Fatalf("ttl=%v tier=%s", ttl, tier)
	}
}
