package store

import (
	"context"
	"sync"

	"github.com/sugit/boardsync/internal/modules/discussion/domain"
)

// MemoryStore keeps discussion documents in process memory. Each document
// carries its own mutex, so mutations to one discussion are totally ordered
// while unrelated discussions never contend.
type MemoryStore struct {
	mu          sync.RWMutex
	discussions map[string]*memoryEntry
}

type memoryEntry struct {
	mu       sync.Mutex
	document domain.Discussion
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		discussions: make(map[string]*memoryEntry),
	}
}

func (s *MemoryStore) Create(_ context.Context, name string) (domain.Discussion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	document := domain.NewDiscussion(name)
	s.discussions[document.ID] = &memoryEntry{document: document}

	return document, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.Discussion, error) {
	s.mu.RLock()
	entry, exists := s.discussions[id]
	s.mu.RUnlock()

	if !exists {
		return domain.Discussion{}, domain.ErrDiscussionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.document, nil
}

func (s *MemoryStore) Mutate(_ context.Context, id string, fn MutateFunc) (domain.Discussion, error) {
	s.mu.RLock()
	entry, exists := s.discussions[id]
	s.mu.RUnlock()

	if !exists {
		return domain.Discussion{}, domain.ErrDiscussionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next, err := fn(entry.document)
	if err != nil {
		return domain.Discussion{}, err
	}

	entry.document = next
	return next, nil
}
