package monocore

import "fmt"

// ThreadID identifies a thread for the lifetime of its kernel.
// The boot thread is always ID 0.
type ThreadID uint64

type threadState uint8

const (
	threadReady threadState = iota
	threadRunning
	threadSleeping
	threadZombie
)

func (s threadState) String() string {
	switch s {
	case threadReady:
		return "ready"
	case threadRunning:
		return "running"
	case threadSleeping:
		return "sleeping"
	case threadZombie:
		return "zombie"
	}
	return "unknown"
}

// Thread is a kernel thread record. One goroutine backs each thread, but
// the goroutine only executes while the thread holds the core; all fields
// are therefore owned by kernel context and need no further locking.
type Thread struct {
	id    ThreadID
	name  string
	kern  *Kernel
	state threadState

	// gate hands the core to this thread. Sending on it is the context
	// switch; the backing goroutine blocks on it whenever the thread is
	// not running.
	gate chan struct{}

	// wc is the wait channel the thread sleeps on, nil unless sleeping.
	wc *WChan
}

// ID returns the thread's identifier.
func (t *Thread) ID() ThreadID { return t.id }

// Name returns the diagnostic name given at Fork (or "boot").
func (t *Thread) Name() string { return t.name }

func (t *Thread) String() string {
	if t == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s#%d", t.name, t.id)
}

// run is the backing goroutine of a forked thread. The first gate receive
// is the thread's first time on the core; switches happen with the IPL
// raised, so the thread lowers it itself before entering its function.
func (t *Thread) run(fn func(*Thread)) {
	<-t.gate
	t.kern.Splx(IPLNone)
	fn(t)
	t.kern.exitCurrent()
}
