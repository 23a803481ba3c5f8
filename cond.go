package monocore

// Cond is a condition variable. It carries no state beyond its wait
// channel: all waiter bookkeeping lives there, and the associated Lock is
// supplied by the caller on every operation rather than stored.
//
// Monitor discipline is enforced: Wait, Signal, and Broadcast all require
// the calling thread to hold the supplied lock, and violating that is a
// fatal contract violation.
type Cond struct {
	_    noCopy
	kern *Kernel
	name string
	wc   *WChan
}

// NewCond creates a condition variable. name is diagnostic only.
func NewCond(k *Kernel, name string) *Cond {
	return &Cond{kern: k, name: name, wc: NewWChan(k, name)}
}

// Name returns the condition variable's diagnostic name.
func (c *Cond) Name() string { return c.name }

// Wait releases lk, sleeps on the condition variable, and reacquires lk
// before returning. The release and the sleep registration happen inside
// one raised-IPL region: no signal can arrive between them and be lost.
// The lock is held again by the time Wait returns, however many other
// threads ran in between.
//
// Wakeups carry no information; callers re-check their condition in a
// loop around Wait.
func (c *Cond) Wait(lk *Lock) {
	k := c.kern
	if lk == nil {
		k.panicf("wait on cv %q with no lock", c.name)
	}
	if !lk.DoIHold() {
		k.panicf("wait on cv %q without holding lock %q", c.name, lk.name)
	}
	spl := k.SplHigh()
	lk.Release()
	c.wc.Sleep()
	k.Splx(spl)
	lk.Acquire()
}

// Signal wakes at most one thread sleeping on the condition variable.
// The caller must hold lk. The wakeup runs inside a raised-IPL region so
// it cannot race a concurrent Wait registering on the same channel.
func (c *Cond) Signal(lk *Lock) {
	k := c.kern
	if lk == nil {
		k.panicf("signal on cv %q with no lock", c.name)
	}
	if !lk.DoIHold() {
		k.panicf("signal on cv %q without holding lock %q", c.name, lk.name)
	}
	spl := k.SplHigh()
	c.wc.WakeOne()
	k.Splx(spl)
}

// Broadcast wakes every thread sleeping on the condition variable. The
// caller must hold lk. Each woken thread reacquires lk inside Wait before
// its Wait returns, so they drain one at a time.
func (c *Cond) Broadcast(lk *Lock) {
	k := c.kern
	if lk == nil {
		k.panicf("broadcast on cv %q with no lock", c.name)
	}
	if !lk.DoIHold() {
		k.panicf("broadcast on cv %q without holding lock %q", c.name, lk.name)
	}
	spl := k.SplHigh()
	c.wc.WakeAll()
	k.Splx(spl)
}

// Destroy checks that no thread is waiting on the condition variable and
// gives it up. Same accepted check-then-free race as Semaphore.Destroy.
func (c *Cond) Destroy() {
	k := c.kern
	spl := k.SplHigh()
	n := c.wc.Sleepers()
	k.Splx(spl)
	if n != 0 {
		k.panicf("destroying cv %q with %d waiter(s)", c.name, n)
	}
}
