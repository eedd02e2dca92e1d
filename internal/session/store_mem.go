package session

import "sync"

// DefaultRetention is the maximum number of turns kept per user.
const DefaultRetention = 20

// userState holds the history and preference for a single user.
type userState struct {
	turns []Turn
	pref  Preference
}

// InMemoryStore is a thread-safe, in-memory implementation of Store.
type InMemoryStore struct {
	mu        sync.RWMutex
	retention int
	users     map[string]*userState
}

// NewInMemoryStore creates an empty store with the given retention bound.
// A retention <= 0 uses DefaultRetention.
func NewInMemoryStore(retention int) *InMemoryStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &InMemoryStore{
		retention: retention,
		users:     make(map[string]*userState),
	}
}

// Compile-time interface check.
var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) getOrCreate(userID string) *userState {
	us, ok := s.users[userID]
	if !ok {
		us = &userState{}
		s.users[userID] = us
	}
	return us
}

// History returns a copy of the stored turns for a user, oldest first.
func (s *InMemoryStore) History(userID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	us, ok := s.users[userID]
	if !ok {
		return nil
	}

	result := make([]Turn, len(us.turns))
	copy(result, us.turns)
	return result
}

// Append adds a turn and trims the log to the retention bound.
func (s *InMemoryStore) Append(userID string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	us := s.getOrCreate(userID)
	us.turns = append(us.turns, turn)
	if over := len(us.turns) - s.retention; over > 0 {
		us.turns = append(us.turns[:0], us.turns[over:]...)
	}
}

// Clear removes all turns for a user. The model preference is a separate
// setting and survives; state with no turns and no preference is dropped
// entirely. No-op for unknown users.
func (s *InMemoryStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	us, ok := s.users[userID]
	if !ok {
		return
	}
	if us.pref == "" {
		delete(s.users, userID)
		return
	}
	us.turns = nil
}

// Preference returns the user's model preference.
func (s *InMemoryStore) Preference(userID string) Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()

	us, ok := s.users[userID]
	if !ok {
		return ""
	}
	return us.pref
}

// SetPreference records the user's model preference.
func (s *InMemoryStore) SetPreference(userID string, pref Preference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(userID).pref = pref
}

// Len returns the number of users with live state.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
