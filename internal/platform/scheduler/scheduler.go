package scheduler

import (
	"sync"
	"time"
)

// Tasks is the subset of Scheduler that feature code depends on.
type Tasks interface {
	After(key string, d time.Duration, fn func()) bool
	Every(key string, d time.Duration, fn func())
	Cancel(key string) bool
	Pending(key string) bool
}

// Scheduler runs keyed, cancellable timers. Scheduling a key that already has a
// pending task replaces it, so a key never has more than one live timer.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*task
	stopped bool
}

type task struct {
	timer *time.Timer
	stop  chan struct{}
}

func New() *Scheduler {
	return &Scheduler{tasks: make(map[string]*task)}
}

// After runs fn once d has elapsed. It reports false when fn is nil or the
// scheduler has been stopped.
func (s *Scheduler) After(key string, d time.Duration, fn func()) bool {
	if fn == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.cancelLocked(key)

	t := &task{}
	t.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.tasks[key] != t {
			s.mu.Unlock()
			return
		}
		delete(s.tasks, key)
		s.mu.Unlock()
		fn()
	})
	s.tasks[key] = t
	return true
}

func (s *Scheduler) Every(key string, d time.Duration, fn func()) {
	if fn == nil || d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked(key)

	t := &task{stop: make(chan struct{})}
	s.tasks[key] = t
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				live := s.tasks[key] == t
				s.mu.Unlock()
				if !live {
					return
				}
				fn()
			}
		}
	}()
}

// Cancel reports whether a pending task was removed.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(key)
}

func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Stop cancels every task; later calls to After/Every are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.tasks {
		s.cancelLocked(key)
	}
	s.stopped = true
}

func (s *Scheduler) cancelLocked(key string) bool {
	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	delete(s.tasks, key)
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.stop != nil {
		close(t.stop)
	}
	return true
}
