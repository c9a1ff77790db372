package spritesheet

import "time"

// MinInterval is the shortest repeating timer period the Scheduler accepts.
const MinInterval = time.Millisecond

// TimerID identifies a timer registered with a Scheduler. The zero value is
// never issued.
type TimerID uint32

type timer struct {
	id       TimerID
	interval time.Duration
	due      time.Duration // scheduler time of the next firing
	fn       func()
	canceled bool
}

// Scheduler runs repeating callbacks on the caller's goroutine in time order.
// It is not safe for concurrent use; the host advances it from its update
// loop.
type Scheduler struct {
	timers    []*timer
	now       time.Duration
	nextID    TimerID
	advancing bool
}

// Every registers fn to run once per interval of advanced time and returns its
// id. Intervals below MinInterval are raised to MinInterval. The first firing
// is one interval after the current scheduler time, which inside a callback
// is the time of that callback.
func (s *Scheduler) Every(interval time.Duration, fn func()) TimerID {
	if fn == nil {
		panic("spritesheet: Every with nil callback")
	}
	if interval < MinInterval {
		interval = MinInterval
	}
	s.nextID++
	s.timers = append(s.timers, &timer{id: s.nextID, interval: interval, due: s.now + interval, fn: fn})
	return s.nextID
}

// Cancel stops the timer. Unknown or already canceled ids are ignored. Safe to
// call from inside any callback, including the timer's own.
func (s *Scheduler) Cancel(id TimerID) {
	if t := s.find(id); t != nil {
		t.canceled = true
		if !s.advancing {
			s.sweep()
		}
	}
}

// Active reports whether id refers to a live timer.
func (s *Scheduler) Active(id TimerID) bool {
	return s.find(id) != nil
}

// Len returns the number of live timers.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.timers {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Now returns the total time advanced so far.
func (s *Scheduler) Now() time.Duration { return s.now }

// Advance moves time forward by dt and runs every callback that falls due, in
// order of due time. A timer whose interval elapsed k times fires k times.
// Timers due at the same instant fire in registration order.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	s.advancing = true
	end := s.now + dt
	for {
		t := s.nextDue(end)
		if t == nil {
			break
		}
		s.now = t.due
		t.due += t.interval
		t.fn()
	}
	s.now = end
	s.advancing = false
	s.sweep()
}

// nextDue returns the earliest live timer due at or before end.
func (s *Scheduler) nextDue(end time.Duration) *timer {
	var next *timer
	for _, t := range s.timers {
		if t.canceled || t.due > end {
			continue
		}
		if next == nil || t.due < next.due {
			next = t
		}
	}
	return next
}

func (s *Scheduler) find(id TimerID) *timer {
	for _, t := range s.timers {
		if t.id == id && !t.canceled {
			return t
		}
	}
	return nil
}

// sweep drops canceled timers, keeping registration order.
func (s *Scheduler) sweep() {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.canceled {
			kept = append(kept, t)
		}
	}
	clear(s.timers[len(kept):])
	s.timers = kept
}
