package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator hands out identifiers for submissions and conversion events.
type Generator interface {
	NewID() string
}

// UUIDv7 generates time-ordered UUIDs. Within one process values are
// monotonic, which keeps submission ids sortable by arrival.
type UUIDv7 struct{}

// NewID returns a new UUIDv7 string, falling back to a random UUID if the
// clock source fails.
func (UUIDv7) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Sequence yields prefix-1, prefix-2, ... and is meant for tests.
type Sequence struct {
	Prefix string

	mu sync.Mutex
	n  int
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.Prefix, s.n)
}

var (
	_ Generator = UUIDv7{}
	_ Generator = (*Sequence)(nil)
)
