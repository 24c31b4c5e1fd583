package submissions

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
)

var storeTracer = otel.Tracer("leadrelay.internal.submissions")

// ErrNotFound is returned when a submission id is unknown.
var ErrNotFound = errors.New("submissions: not found")

// Store persists submissions. A single best-effort write per submission; no
// retries and no read-after-write guarantees.
type Store interface {
	Save(ctx context.Context, sub *Submission) error
}

// MemoryStore keeps submissions in process memory for local development.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]*Submission
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]*Submission)}
}

// Save stores a copy of sub.
func (s *MemoryStore) Save(_ context.Context, sub *Submission) error {
	if sub == nil {
		return errors.New("submissions: submission cannot be nil")
	}
	cp := *sub
	s.mu.Lock()
	s.subs[sub.ID] = &cp
	s.mu.Unlock()
	return nil
}

// Get retrieves a submission by id.
func (s *MemoryStore) Get(_ context.Context, id string) (*Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

// List returns all submissions, oldest first.
func (s *MemoryStore) List(_ context.Context) []*Submission {
	s.mu.RLock()
	out := make([]*Submission, 0, len(s.subs))
	for _, sub := range s.subs {
		cp := *sub
		out = append(out, &cp)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

var _ Store = (*MemoryStore)(nil)
