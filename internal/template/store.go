package template

import "sync"

// Store holds the active notification template text. The config UI replaces
// it through Set; the dispatch engine reads it per dispatch through Get.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	text string
}

// NewStore creates a store seeded with the given template. An empty seed
// selects DefaultMessage.
func NewStore(text string) *Store {
	if text == "" {
		text = DefaultMessage
	}
	return &Store{text: text}
}

// Get returns the current template text.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Set replaces the template text.
func (s *Store) Set(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}
