package chat

import "sync/atomic"

// Store holds the current transcript. Writers replace the whole value, so a
// reader on another goroutine sees either the old or the new transcript,
// never a half-applied change. Writes are expected from one goroutine at a
// time.
type Store struct {
	current atomic.Pointer[Conversation]
}

func NewStore() *Store {
	return NewStoreWith(NewConversation())
}

// NewStoreWith creates a store seeded with an existing transcript
func NewStoreWith(conv Conversation) *Store {
	s := &Store{}
	s.current.Store(&conv)
	return s
}

// Load returns the current transcript
func (s *Store) Load() Conversation {
	return *s.current.Load()
}

// Store publishes conv as the current transcript
func (s *Store) Store(conv Conversation) {
	s.current.Store(&conv)
}

// Update applies fn to the current transcript and publishes the result
func (s *Store) Update(fn func(Conversation) Conversation) Conversation {
	next := fn(s.Load())
	s.Store(next)
	return next
}
