package monocore

// Semaphore is a counting semaphore: a bounded resource counter that
// blocks acquirers while the count is zero.
//
// The count is the only mutable state and is touched exclusively with the
// IPL raised, so on the single core no further locking is needed. The
// count never goes negative; that invariant is checked after every
// change.
//
// Unlike a Lock, a semaphore has no owner: P and V may be called by
// different threads, and V is legal from interrupt context (P is not,
// since it may block).
type Semaphore struct {
	_     noCopy
	kern  *Kernel
	name  string
	wc    *WChan
	count int
}

// NewSemaphore creates a semaphore with the given initial count. name is
// diagnostic only. A negative initial count is a fatal contract
// violation.
func NewSemaphore(k *Kernel, name string, count int) *Semaphore {
	if count < 0 {
		k.panicf("semaphore %q created with negative count %d", name, count)
	}
	return &Semaphore{kern: k, name: name, wc: NewWChan(k, name), count: count}
}

// Name returns the semaphore's diagnostic name.
func (s *Semaphore) Name() string { return s.name }

// Count returns a snapshot of the current count. Diagnostic only: by the
// time the caller looks at it, it may already be stale.
func (s *Semaphore) Count() int {
	spl := s.kern.SplHigh()
	defer s.kern.Splx(spl)
	return s.count
}

// P acquires one unit, blocking while the count is zero. May not be
// called from interrupt context: blocking inside an interrupt handler is
// a kernel design violation, and the check is made unconditionally even
// when the P could complete without blocking.
//
// The count is re-checked in a loop after every wakeup; a woken thread
// may find another waiter already took the unit and go back to sleep.
func (s *Semaphore) P() {
	k := s.kern
	if k.inIntr {
		k.panicf("P on semaphore %q in interrupt context", s.name)
	}
	spl := k.SplHigh()
	defer k.Splx(spl)
	for s.count == 0 {
		s.wc.Sleep()
	}
	if s.count <= 0 {
		k.panicf("semaphore %q count %d after wakeup", s.name, s.count)
	}
	s.count--
}

// V releases one unit and wakes every thread sleeping on the semaphore.
// The woken threads race through P's re-check loop; all but one (per
// unit released) go back to sleep.
func (s *Semaphore) V() {
	k := s.kern
	spl := k.SplHigh()
	defer k.Splx(spl)
	s.count++
	if s.count <= 0 {
		k.panicf("semaphore %q count %d after V", s.name, s.count)
	}
	s.wc.WakeAll()
}

// Destroy checks that no thread is sleeping on the semaphore and gives it
// up. A thread could in principle start sleeping right after the check;
// that race is accepted. Ensuring no concurrent users remain before
// destruction is the caller's job.
func (s *Semaphore) Destroy() {
	k := s.kern
	spl := k.SplHigh()
	n := s.wc.Sleepers()
	k.Splx(spl)
	if n != 0 {
		k.panicf("destroying semaphore %q with %d sleeper(s)", s.name, n)
	}
}
