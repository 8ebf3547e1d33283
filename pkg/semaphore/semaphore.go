// Package semaphore limits the number of concurrently running sessions.
package semaphore

// SessionSemaphore hands out a fixed number of slots. Callers that cannot
// get a slot are rejected immediately instead of queueing.
type SessionSemaphore struct {
	sem chan struct{}
}

// New creates a semaphore with capacity n. All slots start free.
func New(n int) *SessionSemaphore {
	sem := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		sem <- struct{}{}
	}
	return &SessionSemaphore{sem: sem}
}

// TryAcquire takes a slot if one is free and reports whether it did.
// A nil semaphore never limits.
func (s *SessionSemaphore) TryAcquire() bool {
	if s == nil {
		return true
	}

	select {
	case <-s.sem:
		return true
	default:
		return false
	}
}

// Release gives a slot back. A nil semaphore is a no-op.
func (s *SessionSemaphore) Release() {
	if s == nil {
		return
	}
	s.sem <- struct{}{}
}

// InUse returns the number of slots currently taken.
func (s *SessionSemaphore) InUse() int {
	if s == nil {
		return 0
	}
	return cap(s.sem) - len(s.sem)
}
