package clock

import (
	"sync"
	"time"
)

// Scheduler runs a periodic callback on behalf of exactly one state-machine
// instance. Each instance owns its own Scheduler, so concurrent sessions
// (including parallel tests) never share ticker state. Stop is idempotent and
// guarantees no callback fires after it returns observable effects: a
// generation counter is captured per run, and stale ticks are dropped.
type Scheduler struct {
	mu         sync.Mutex
	generation int
	stop       chan struct{}
	running    bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Start begins invoking fn every interval until Stop or Restart. The callback
// receives the tick time. Starting a running scheduler restarts it.
func (s *Scheduler) Start(interval time.Duration, fn func(now time.Time)) {
	s.mu.Lock()
	s.stopLocked()
	s.generation++
	generation := s.generation
	stop := make(chan struct{})
	s.stop = stop
	s.running = true
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				s.mu.Lock()
				stale := generation != s.generation
				s.mu.Unlock()
				if stale {
					return
				}
				fn(now)
			}
		}
	}()
}

// Stop cancels the pending periodic callback, if any.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.stopLocked()
}

// Running reports whether a periodic callback is currently scheduled.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) stopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.running = false
}
