package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryStore is an in-process Service used by the local REPL and tests
type memoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewMemory() Service {
	return &memoryStore{docs: make(map[string]*Document)}
}

func (s *memoryStore) Save(ctx context.Context, userID, name, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[objectPath(userID, name)] = &Document{
		Name:      name,
		Content:   content,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *memoryStore) Get(ctx context.Context, userID, name string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.docs[objectPath(userID, name)]
	if !exists {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (s *memoryStore) List(ctx context.Context, userID, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := objectPath(userID, prefix)
	base := objectPath(userID, "")

	var names []string
	for path := range s.docs {
		if strings.HasPrefix(path, root) {
			names = append(names, strings.TrimPrefix(path, base))
		}
	}
	sort.Strings(names)
	return names, nil
}
