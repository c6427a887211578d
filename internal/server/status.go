package server

import (
	"sync"
	"time"

	"github.com/dushyant25398/Persistent-Systems/internal/model"
)

type counters interface {
	Pending() int64
	Dropped() int64
}

// ArchiveStatusStore tracks the outcome of the latest archive flush.
type ArchiveStatusStore struct {
	mu        sync.Mutex
	enabled   bool
	sinks     []string
	lastAt    time.Time
	lastSink  string
	lastCount int
	lastErr   string
	counters  counters
}

// SetLastFlush records one sink write. Used as the batcher's OnFlush callback.
func (s *ArchiveStatusStore) SetLastFlush(sink string, count int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAt = time.Now().UTC()
	s.lastSink = sink
	s.lastCount = count
	s.lastErr = ""
	if err != nil {
		s.lastErr = err.Error()
	}
}

func (s *ArchiveStatusStore) Get() model.ArchiveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := model.ArchiveStatus{
		Enabled:        s.enabled,
		Sinks:          append([]string{}, s.sinks...),
		LastFlushSink:  s.lastSink,
		LastFlushCount: s.lastCount,
		LastError:      s.lastErr,
	}
	if !s.lastAt.IsZero() {
		at := s.lastAt
		st.LastFlushAt = &at
	}
	if s.counters != nil {
		st.Pending = s.counters.Pending()
		st.Dropped = s.counters.Dropped()
	}
	return st
}
