package session

import "sync"

// MemoryStore keeps all session state in process memory. State is lost on
// restart; users restart their flow from the menu.
type MemoryStore struct {
	mu      sync.Mutex
	users   map[int64]UserState
	admins  map[int64]AdminState
	replies map[int64]PendingReply
	support map[int64]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[int64]UserState),
		admins:  make(map[int64]AdminState),
		replies: make(map[int64]PendingReply),
		support: make(map[int64]bool),
	}
}

func (s *MemoryStore) User(chatID int64) (UserState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.users[chatID]
	return state, ok
}

func (s *MemoryStore) SetUser(chatID int64, state UserState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[chatID] = state
}

func (s *MemoryStore) DeleteUser(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, chatID)
}

func (s *MemoryStore) Admin(chatID int64) (AdminState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.admins[chatID]
	return state, ok
}

func (s *MemoryStore) SetAdmin(chatID int64, state AdminState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.admins[chatID] = state
}

func (s *MemoryStore) DeleteAdmin(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.admins, chatID)
}

func (s *MemoryStore) Reply(chatID int64) (PendingReply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.replies[chatID]
	return pending, ok
}

func (s *MemoryStore) SetReply(chatID int64, pending PendingReply) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replies[chatID] = pending
}

func (s *MemoryStore) DeleteReply(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.replies, chatID)
}

func (s *MemoryStore) SupportPending(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.support[chatID]
}

func (s *MemoryStore) SetSupportPending(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.support[chatID] = true
}

func (s *MemoryStore) DeleteSupportPending(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.support, chatID)
}
