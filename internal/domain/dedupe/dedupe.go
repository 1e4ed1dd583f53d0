// Package dedupe tracks which videos have been submitted for analysis so a
// resubmission can be acknowledged without re-running the pipeline.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen video names to ensure at-most-once analysis.
type Deduper interface {
	// SeenAndRecord atomically checks if name was seen and records it if
	// not. Returns true if name was already seen, false if it was newly
	// recorded.
	SeenAndRecord(ctx context.Context, name string) bool

	// Unrecord removes a name from the seen set, allowing resubmission.
	// Used when a submission was recorded but could not be enqueued.
	Unrecord(ctx context.Context, name string)

	Size() int64
}

// inMemoryDeduper is a bounded seen-set. When full, the oldest recorded
// name is evicted; its video becomes submittable again, which is acceptable
// because analysis itself is idempotent per video.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion ring, oldest at head
	head    int
	maxSize int // 0 or negative disables eviction
}

// NewInMemoryDeduper creates an in-memory deduper. The default bound keeps
// the last 50000 names.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: 50000}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[name]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[name] = struct{}{}
	if d.maxSize > 0 {
		d.order = append(d.order, name)
	}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, name)
	// The ring entry stays; evictOldest skips names no longer in the set.
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

// evictOldest drops the oldest still-recorded name. Must hold d.mu.
func (d *inMemoryDeduper) evictOldest() {
	for d.head < len(d.order) {
		name := d.order[d.head]
		d.order[d.head] = ""
		d.head++
		if _, ok := d.seen[name]; ok {
			delete(d.seen, name)
			break
		}
	}
	// Compact once the consumed prefix dominates the ring.
	if d.head > len(d.order)/2 {
		d.order = append(d.order[:0:0], d.order[d.head:]...)
		d.head = 0
	}
}
