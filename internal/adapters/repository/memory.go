package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/mgreen/swinglab/internal/domain/model"
	"github.com/mgreen/swinglab/internal/domain/types"
)

// MemoryStore keeps detections in memory. It backs tests and zero-config
// runs where no database path is set.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*model.Detection
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*model.Detection)}
}

func (s *MemoryStore) SaveDetection(_ context.Context, d *model.Detection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[d.Video] = copyDetection(d)
	return nil
}

func (s *MemoryStore) Detection(_ context.Context, video string) (*model.Detection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[video]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDetection(d), nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*model.Detection, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Detection, 0, len(s.byID))
	for _, d := range s.byID {
		out = append(out, copyDetection(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AnalyzedAt.Equal(out[j].AnalyzedAt) {
			return out[i].AnalyzedAt.After(out[j].AnalyzedAt)
		}
		return out[i].Video < out[j].Video
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Summary(_ context.Context) (types.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum types.Summary
	sum.Videos = len(s.byID)
	for _, d := range s.byID {
		sum.Swings += d.NumSwings()
		sum.Contacts += d.NumContacts()
		if len(d.Problems) > 0 {
			sum.Problems++
		}
	}
	return sum, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *MemoryStore) Close() error { return nil }

// copyDetection deep-copies so callers cannot mutate stored state.
func copyDetection(d *model.Detection) *model.Detection {
	out := *d
	out.Swings = append([]model.Swing(nil), d.Swings...)
	out.FilterLog = append([]string(nil), d.FilterLog...)
	out.Problems = append([]string(nil), d.Problems...)
	return &out
}
