package monocore

// Lock is a sleeping mutual-exclusion lock with an explicit holder.
// At most one thread holds it at a time; contenders sleep on the lock's
// wait channel until it is released.
//
// The lock is not reentrant: a holder that calls Acquire again sleeps
// waiting for itself and the kernel's deadlock detector fires. Reentrant
// locking, if ever wanted, is a different primitive.
type Lock struct {
	_      noCopy
	kern   *Kernel
	name   string
	wc     *WChan
	holder *Thread
}

// NewLock creates an unheld lock. name is diagnostic only.
func NewLock(k *Kernel, name string) *Lock {
	return &Lock{kern: k, name: name, wc: NewWChan(k, name)}
}

// Name returns the lock's diagnostic name.
func (l *Lock) Name() string { return l.name }

// Holder returns the thread currently holding the lock, or nil.
// Diagnostic only; the answer can be stale as soon as it is returned,
// except when the caller itself is the holder.
func (l *Lock) Holder() *Thread {
	spl := l.kern.SplHigh()
	defer l.kern.Splx(spl)
	return l.holder
}

// Acquire blocks until the lock is unheld, then takes it for the calling
// thread. May not be called from interrupt context. The holder test is
// re-run after every wakeup; being woken does not mean the lock is yours
// until the test passes.
func (l *Lock) Acquire() {
	k := l.kern
	if k.inIntr {
		k.panicf("acquire of lock %q in interrupt context", l.name)
	}
	spl := k.SplHigh()
	defer k.Splx(spl)
	for l.holder != nil {
		l.wc.Sleep()
	}
	l.holder = k.cur
}

// Release gives the lock up and wakes every thread sleeping on it. The
// caller must be the holder; releasing a lock held by another thread (or
// by nobody) is a fatal contract violation.
func (l *Lock) Release() {
	k := l.kern
	spl := k.SplHigh()
	defer k.Splx(spl)
	if l.holder != k.cur {
		k.panicf("release of lock %q by %s, holder %s", l.name, k.cur, l.holder)
	}
	l.holder = nil
	l.wc.WakeAll()
}

// DoIHold reports whether the calling thread holds the lock. Pure query:
// no side effects, no blocking. No IPL region is needed because the
// holder field can only change under the caller's feet when the answer is
// false either way.
func (l *Lock) DoIHold() bool {
	return l.holder == l.kern.cur
}

// Destroy gives the lock up. It does not verify that the lock is unheld
// or that nothing sleeps on it; destroying a lock still in use is caller
// error with undefined consequences.
func (l *Lock) Destroy() {
}
