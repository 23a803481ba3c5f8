package monocore

import (
	"fmt"
	"testing"
)

func TestSemaphore_Counting(t *testing.T) {
	k := Boot("sem-count")
	s := NewSemaphore(k, "units", 2)
	if s.Name() != "units" {
		t.Fatalf("name %q", s.Name())
	}
	s.P()
	s.P()
	if got := s.Count(); got != 0 {
		t.Fatalf("count %d after two P, want 0", got)
	}
	s.V()
	if got := s.Count(); got != 1 {
		t.Fatalf("count %d after V, want 1", got)
	}
	s.P()
	s.Destroy()
}

func TestSemaphore_NegativeInitialPanics(t *testing.T) {
	k := Boot("sem-negative")
	defer expectPanic(t, "negative")()
	NewSemaphore(k, "bad", -1)
}

func TestSemaphore_BlocksAtZero(t *testing.T) {
	k := Boot("sem-block")
	s := NewSemaphore(k, "empty", 0)
	got := false
	k.Fork("waiter", func(*Thread) {
		s.P()
		got = true
	})
	k.Yield()
	if got {
		t.Fatal("P completed on a zero semaphore")
	}
	spl := k.SplHigh()
	n := s.wc.Sleepers()
	k.Splx(spl)
	if n != 1 {
		t.Fatalf("sleepers %d, want 1", n)
	}
	s.V()
	k.Yield()
	if !got {
		t.Fatal("waiter still blocked after V")
	}
	if c := s.Count(); c != 0 {
		t.Fatalf("count %d after handoff, want 0", c)
	}
}

func TestSemaphore_PFromInterruptPanics(t *testing.T) {
	k := Boot("sem-intr")
	s := NewSemaphore(k, "units", 1)
	defer expectPanic(t, "interrupt context")()
	// the count is positive, but blocking-in-interrupt is checked
	// unconditionally
	k.RaiseInterrupt(func(*Kernel) {
		s.P()
	})
}

func TestSemaphore_VFromInterrupt(t *testing.T) {
	k := Boot("sem-v-intr")
	s := NewSemaphore(k, "device", 0)
	k.Fork("device", func(*Thread) {
		k.RaiseInterrupt(func(*Kernel) { s.V() })
	})
	s.P() // completes once the simulated device interrupt posts the unit
	if c := s.Count(); c != 0 {
		t.Fatalf("count %d, want 0", c)
	}
}

func TestSemaphore_DestroyWithSleeperPanics(t *testing.T) {
	k := Boot("sem-destroy")
	s := NewSemaphore(k, "busy", 0)
	k.Fork("waiter", func(*Thread) {
		// never satisfied; the waiter outlives the recovered panic and
		// its goroutine is deliberately leaked
		s.P()
	})
	k.Yield()
	defer expectPanic(t, "sleeper")()
	s.Destroy()
}

func TestSemaphore_AsMutex(t *testing.T) {
	k := Boot("sem-mutex")
	mutex := NewSemaphore(k, "mutex", 1)
	done := NewSemaphore(k, "done", 0)
	const workers, rounds = 4, 25
	shared := 0
	inside := 0
	violations := 0
	for w := range workers {
		k.Fork(fmt.Sprintf("w%d", w), func(*Thread) {
			for range rounds {
				mutex.P()
				inside++
				if inside != 1 {
					violations++
				}
				v := shared
				k.Yield() // give contenders a chance mid-section
				shared = v + 1
				inside--
				mutex.V()
				k.Yield()
			}
			done.V()
		})
	}
	for range workers {
		done.P()
	}
	if violations != 0 {
		t.Fatalf("%d threads observed inside the critical section together", violations)
	}
	if shared != workers*rounds {
		t.Fatalf("shared %d, want %d", shared, workers*rounds)
	}
	if c := mutex.Count(); c != 1 {
		t.Fatalf("mutex count %d at rest, want 1", c)
	}
}
