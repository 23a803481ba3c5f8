package monocore

import "github.com/gammazero/deque"

// WChan is a wait channel: an opaque rendezvous point that threads can
// sleep on and be woken from. It knows nothing about why its sleepers are
// waiting; the semantics live entirely in the primitive that owns it.
// Each primitive instance owns one WChan, so the channel object itself is
// the stable rendezvous identity.
//
// Sleepers queue FIFO and wake in that order, but callers must not rely
// on it: any waiter can be woken at any time (spuriously, or along with
// others by WakeAll), so the guarded condition is always re-checked in a
// loop after Sleep returns.
//
// Every method requires the caller to have raised the IPL. For Sleep this
// is what makes "test the condition, then sleep" a single uninterruptible
// step: a wakeup cannot slip in between and be lost.
type WChan struct {
	_    noCopy
	kern *Kernel
	name string
	q    deque.Deque[*Thread]
}

// NewWChan creates a wait channel. name is diagnostic only; it shows up
// in traces and in the deadlock report.
func NewWChan(k *Kernel, name string) *WChan {
	return &WChan{kern: k, name: name}
}

// Name returns the channel's diagnostic name.
func (wc *WChan) Name() string { return wc.name }

// Sleep blocks the current thread on wc until a wake call moves it back
// to the run queue. The IPL must be raised and the caller must not be in
// interrupt context; both are fatal contract violations otherwise.
// Sleep surrenders the core; it returns with the IPL still raised, on the
// next occasion the thread is scheduled after being woken.
func (wc *WChan) Sleep() {
	k := wc.kern
	if k.inIntr {
		k.panicf("sleep on %q from interrupt context", wc.name)
	}
	if k.ipl == IPLNone {
		k.panicf("sleep on %q with interrupts enabled", wc.name)
	}
	k.sleepCurrent(wc)
}

// WakeOne makes the longest-sleeping thread on wc runnable, if there is
// one. Requires the IPL raised. The woken thread runs no earlier than the
// caller's next yield, sleep, or exit.
func (wc *WChan) WakeOne() {
	k := wc.kern
	if k.ipl == IPLNone {
		k.panicf("wake on %q with interrupts enabled", wc.name)
	}
	if wc.q.Len() == 0 {
		return
	}
	k.ready(wc.q.PopFront())
}

// WakeAll makes every thread sleeping on wc runnable. Requires the IPL
// raised.
func (wc *WChan) WakeAll() {
	k := wc.kern
	if k.ipl == IPLNone {
		k.panicf("wake on %q with interrupts enabled", wc.name)
	}
	for wc.q.Len() > 0 {
		k.ready(wc.q.PopFront())
	}
}

// Sleepers returns the number of threads currently sleeping on wc.
// Requires the IPL raised; used by destroy-time sanity checks.
func (wc *WChan) Sleepers() int {
	if wc.kern.ipl == IPLNone {
		wc.kern.panicf("sleeper count on %q with interrupts enabled", wc.name)
	}
	return wc.q.Len()
}
