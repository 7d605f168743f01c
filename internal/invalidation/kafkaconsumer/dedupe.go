package kafkaconsumer

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// seqDedupe remembers the highest sequence number applied per table and
// drops replayed or reordered deliveries. Checking and recording are
// separate steps so a failed apply does not poison the window: the seq is
// recorded only once the event's side effects have landed.
type seqDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, uint64]
}

func newSeqDedupe(size int) *seqDedupe {
	if size <= 0 {
		size = 4096
	}
	c, _ := lru.New[string, uint64](size)
	return &seqDedupe{lru: c}
}

// stale reports whether seq is at or below the last applied value for key.
func (d *seqDedupe) stale(key string, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lru.Get(key)
	return ok && seq <= last
}

// applied records seq as the last applied value for key.
func (d *seqDedupe) applied(key string, seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(key); ok && last >= seq {
		return
	}
	d.lru.Add(key, seq)
}
