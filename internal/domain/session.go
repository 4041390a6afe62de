package domain

import "sync"

// Step identifies where a curation session is in the promotion workflow.
type Step string

const (
	StepTitle       Step = "title"
	StepCategory    Step = "category"
	StepNewCategory Step = "new_category"
)

// CurationSession tracks a single user's progress through the promotion
// workflow.
type CurationSession struct {
	Code  string
	Step  Step
	Title string
}

// BrowseCursor records which category page a user is viewing.
type BrowseCursor struct {
	Category string
	Page     int
}

// SessionStore holds per-user transient state: curation progress and the
// browse cursor, independently keyed by user id. State lives only in memory;
// losing it on restart degrades to "start over", never to data loss. Safe
// for concurrent use.
type SessionStore struct {
	mu       sync.Mutex
	curation map[int64]CurationSession
	cursors  map[int64]BrowseCursor
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		curation: make(map[int64]CurationSession),
		cursors:  make(map[int64]BrowseCursor),
	}
}

// Curation returns the user's curation session, if any.
func (s *SessionStore) Curation(userID int64) (CurationSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.curation[userID]
	return sess, ok
}

// SetCuration replaces the user's curation session. Starting a new session
// while one is active implicitly abandons the previous one.
func (s *SessionStore) SetCuration(userID int64, sess CurationSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.curation[userID] = sess
}

// ClearCuration removes the user's curation session.
func (s *SessionStore) ClearCuration(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.curation, userID)
}

// Cursor returns the user's browse cursor, if any.
func (s *SessionStore) Cursor(userID int64) (BrowseCursor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.cursors[userID]
	return cur, ok
}

// SetCursor replaces the user's browse cursor.
func (s *SessionStore) SetCursor(userID int64, cur BrowseCursor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[userID] = cur
}

// ClearCursor removes the user's browse cursor.
func (s *SessionStore) ClearCursor(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cursors, userID)
}

// Reset clears all state for a user, used on explicit navigation reset.
func (s *SessionStore) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.curation, userID)
	delete(s.cursors, userID)
}
