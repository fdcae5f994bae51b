
// Package session keeps short-lived per-admin conversation state, such as
// "waiting for a footer format" after a prompt. Entries expire so an admin who
// walks away mid-flow gets a clean slate.
package session

import (
	"sync"
	"time"
)

type State string

const (
	StateNone            State = ""
	StateAwaitFooterText State = "await_footer_text"
	StateAwaitIDFormat   State = "await_id_format"
	StateAwaitHashtags   State = "await_hashtags"
	StateAwaitManualText State = "await_manual_text"
	StateAwaitManualFile State = "await_manual_file"
	StateAwaitBookTitle  State = "await_book_title"
	StateAwaitSchedule   State = "await_schedule"
)

type Entry struct {
	State State

	// Flow-specific payload.
	ContentKind string
	BookID      int64
	ContentID   int64
}

type entry struct {
	Entry
	at time.Time
}

type Store struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[int64]entry
	now func() time.Time
}

const DefaultTTL = 15 * time.Minute

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{ttl: ttl, m: map[int64]entry{}, now: time.Now}
}

// Get returns the live entry for a user. Expired entries are dropped and
// reported as absent.
func (s *Store) Get(userID int64) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[userID]
	if !ok {
		return Entry{}, false
	}
	if s.now().Sub(e.at) > s.ttl {
		delete(s.m, userID)
		return Entry{}, false
	}
	return e.Entry, true
}

func (s *Store) Set(userID int64, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = entry{Entry: e, at: s.now()}
}

func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
