// Package dedupe drops observation records whose source ID was already seen.
package dedupe

import (
	"context"
	"sync"

	"github.com/okian/gatecompass/internal/domain/model"
)

// Deduper records seen record IDs.
type Deduper interface {
	// SeenAndRecord reports whether id was seen before and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool
	Size() int
}

type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper returns an empty, concurrency-safe deduper. It is meant
// to live for a single load; nothing is ever evicted.
func NewInMemoryDeduper() Deduper {
	return &inMemoryDeduper{seen: make(map[string]struct{})}
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Records keeps the first occurrence of every non-empty ID, preserving order.
// Records without an ID are always kept.
func Records(ctx context.Context, d Deduper, records []model.Record) (kept []model.Record, dropped int) {
	kept = make([]model.Record, 0, len(records))
	for _, r := range records {
		if r.ID != "" && d.SeenAndRecord(ctx, r.ID) {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}
