// Package focus accumulates the per-batch focus verdicts of one study
// session and turns them into a daily score record.
package focus

import (
	"sync"
	"time"

	"brainbuddy/focusws/pkg/store"
)

// Series is the focus history of a single session.
type Series struct {
	mu    sync.Mutex
	bits  []bool
	start time.Time
	end   time.Time
}

// NewSeries starts a session at start.
func NewSeries(start time.Time) *Series {
	start = start.UTC()
	return &Series{start: start, end: start}
}

// Append records the verdict of one frame batch.
func (s *Series) Append(focused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bits = append(s.bits, focused)
}

// End marks the session finished at t.
func (s *Series) End(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t = t.UTC()
	if t.Before(s.start) {
		t = s.start
	}
	s.end = t
}

// Len returns the number of recorded batches.
func (s *Series) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bits)
}

// Score is the percentage of focused batches, 0 for an empty series.
func (s *Series) Score() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return score(s.bits)
}

// Record builds the daily record of the finished session.
func (s *Series) Record(user, subject, location string) store.DailyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.DailyRecord{
		UserName:  user,
		ScoreDate: s.start,
		StartTime: s.start,
		StudyTime: s.end.Sub(s.start).Truncate(time.Second),
		Subject:   subject,
		Location:  location,
		Score:     score(s.bits),
	}
}

func score(bits []bool) float64 {
	if len(bits) == 0 {
		return 0
	}
	focused := 0
	for _, b := range bits {
		if b {
			focused++
		}
	}
	return float64(focused) * 100 / float64(len(bits))
}
