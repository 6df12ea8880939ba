package embed

import (
	"time"
)

// manualScheduler runs scheduled functions on the test goroutine when the
// virtual clock is advanced past their deadline.
type manualScheduler struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	at   time.Duration
	seq  int
	fn   func()
	done bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	task := &manualTask{at: s.now + d, seq: s.seq, fn: fn}
	s.seq++
	s.tasks = append(s.tasks, task)
	return func() bool {
		if task.done {
			return false
		}
		task.done = true
		return true
	}
}

// Advance moves the clock forward, firing due tasks in deadline order
func (s *manualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		var next *manualTask
		for _, task := range s.tasks {
			if task.done || task.at > target {
				continue
			}
			if next == nil || task.at < next.at || (task.at == next.at && task.seq < next.seq) {
				next = task
			}
		}
		if next == nil {
			break
		}
		next.done = true
		s.now = next.at
		next.fn()
	}
	s.now = target
}

// Pending counts tasks that have neither fired nor been stopped
func (s *manualScheduler) Pending() int {
	n := 0
	for _, task := range s.tasks {
		if !task.done {
			n++
		}
	}
	return n
}
