package spritesheet

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSchedulerFiresPerInterval(t *testing.T) {
	var s Scheduler
	n := 0
	s.Every(25*time.Millisecond, func() { n++ })

	s.Advance(10 * time.Millisecond)
	if n != 0 {
		t.Fatalf("fired %d times after 10ms, want 0", n)
	}
	s.Advance(15 * time.Millisecond)
	if n != 1 {
		t.Fatalf("fired %d times after 25ms, want 1", n)
	}
	// A long frame catches up.
	s.Advance(100 * time.Millisecond)
	if n != 5 {
		t.Fatalf("fired %d times after 125ms, want 5", n)
	}
}

func TestSchedulerRegistrationOrder(t *testing.T) {
	var s Scheduler
	var got []string
	s.Every(10*time.Millisecond, func() { got = append(got, "a") })
	s.Every(10*time.Millisecond, func() { got = append(got, "b") })
	s.Every(20*time.Millisecond, func() { got = append(got, "c") })

	s.Advance(20 * time.Millisecond)
	want := []string{"a", "b", "a", "b", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSchedulerCancel(t *testing.T) {
	var s Scheduler
	n := 0
	id := s.Every(10*time.Millisecond, func() { n++ })
	if !s.Active(id) {
		t.Fatal("timer should be active")
	}
	s.Cancel(id)
	s.Cancel(id) // idempotent
	if s.Active(id) {
		t.Fatal("timer should be inactive after Cancel")
	}
	s.Advance(time.Second)
	if n != 0 {
		t.Errorf("canceled timer fired %d times", n)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestSchedulerCancelSelfInCallback(t *testing.T) {
	var s Scheduler
	n := 0
	var id TimerID
	id = s.Every(10*time.Millisecond, func() {
		n++
		s.Cancel(id)
	})
	s.Advance(100 * time.Millisecond)
	if n != 1 {
		t.Errorf("fired %d times, want 1", n)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestSchedulerCancelOtherInCallback(t *testing.T) {
	var s Scheduler
	var second TimerID
	fired := 0
	s.Every(10*time.Millisecond, func() { s.Cancel(second) })
	second = s.Every(10*time.Millisecond, func() { fired++ })
	s.Advance(10 * time.Millisecond)
	if fired != 0 {
		t.Errorf("timer canceled earlier in the same Advance fired %d times", fired)
	}
}

func TestSchedulerEveryInsideCallback(t *testing.T) {
	var s Scheduler
	inner := 0
	armed := false
	s.Every(10*time.Millisecond, func() {
		if !armed {
			armed = true
			s.Every(10*time.Millisecond, func() { inner++ })
		}
	})
	// Armed at 10ms, so due at 20, 30, 40 and 50ms.
	s.Advance(50 * time.Millisecond)
	if inner != 4 {
		t.Fatalf("inner fired %d times, want 4", inner)
	}
	s.Advance(10 * time.Millisecond)
	if inner != 5 {
		t.Errorf("inner fired %d times, want 5", inner)
	}
}

func TestSchedulerTimeOrder(t *testing.T) {
	var s Scheduler
	var got []string
	s.Every(30*time.Millisecond, func() { got = append(got, "slow") })
	s.Every(20*time.Millisecond, func() { got = append(got, "fast") })
	s.Advance(60 * time.Millisecond)
	want := []string{"fast", "slow", "fast", "slow", "fast"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if s.Now() != 60*time.Millisecond {
		t.Errorf("Now = %v, want 60ms", s.Now())
	}
}

func TestSchedulerMinInterval(t *testing.T) {
	var s Scheduler
	n := 0
	s.Every(0, func() { n++ })
	s.Advance(5 * time.Millisecond)
	if n != 5 {
		t.Errorf("fired %d times, want 5 at MinInterval", n)
	}
}

func TestSchedulerIgnoresNonPositiveDelta(t *testing.T) {
	var s Scheduler
	n := 0
	s.Every(time.Millisecond, func() { n++ })
	s.Advance(0)
	s.Advance(-time.Second)
	if n != 0 {
		t.Errorf("fired %d times, want 0", n)
	}
}
