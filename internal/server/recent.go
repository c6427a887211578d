package server

import (
	"sync"

	"github.com/dushyant25398/Persistent-Systems/internal/model"
)

// RecentRecordsStore keeps the last N records in a ring. A zero limit disables it.
type RecentRecordsStore struct {
	mu   sync.Mutex
	buf  []model.RequestRecord
	next int
	full bool
}

func newRecentRecordsStore(limit int) *RecentRecordsStore {
	if limit < 0 {
		limit = 0
	}
	return &RecentRecordsStore{buf: make([]model.RequestRecord, limit)}
}

func (s *RecentRecordsStore) Insert(rec model.RequestRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return
	}
	s.buf[s.next] = rec
	s.next = (s.next + 1) % len(s.buf)
	if s.next == 0 {
		s.full = true
	}
}

// Recent returns a copy of the stored records, newest first.
func (s *RecentRecordsStore) Recent() []model.RequestRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.next
	if s.full {
		n = len(s.buf)
	}
	out := make([]model.RequestRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.buf)) % len(s.buf)
		out = append(out, s.buf[idx])
	}
	return out
}
