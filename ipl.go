package monocore

// IPL is the core's interrupt priority level. Raising it to IPLHigh
// blocks all maskable interrupts and therefore all preemption on the
// (single) core, making the span until the matching restore atomic with
// respect to every other thread and interrupt handler.
type IPL uint8

const (
	// IPLNone leaves all interrupts enabled.
	IPLNone IPL = iota
	// IPLHigh blocks all maskable interrupts.
	IPLHigh
)

func (l IPL) String() string {
	if l == IPLHigh {
		return "high"
	}
	return "none"
}

// InterruptHandler runs in interrupt context: on whichever thread's stack
// happens to be current, with the IPL raised and InInterrupt reporting
// true. Handlers may wake sleepers (e.g. call Semaphore.V) but must not
// block.
type InterruptHandler func(*Kernel)

// SplHigh raises the IPL and returns the previous level. Pair every call
// with a deferred Splx of the returned value so the restore happens on
// all exit paths:
//
//	spl := k.SplHigh()
//	defer k.Splx(spl)
//
// Calls nest: an inner SplHigh returns IPLHigh and its restore leaves the
// level raised.
func (k *Kernel) SplHigh() IPL {
	old := k.ipl
	k.ipl = IPLHigh
	return old
}

// Splx restores a level previously returned by SplHigh. Dropping back to
// IPLNone delivers any interrupts that were raised while masked.
func (k *Kernel) Splx(old IPL) {
	k.ipl = old
	if old == IPLNone && !k.inIntr {
		k.deliverInterrupts()
	}
}

// CurIPL returns the core's current interrupt priority level.
func (k *Kernel) CurIPL() IPL { return k.ipl }

// InInterrupt reports whether the core is executing an interrupt handler.
// Blocking is forbidden while it is true.
func (k *Kernel) InInterrupt() bool { return k.inIntr }

// RaiseInterrupt queues handler for delivery. With interrupts enabled it
// runs before RaiseInterrupt returns; while masked (or while already in
// a handler) it stays pending until the IPL next drops to IPLNone or the
// scheduler idles waiting for something to become runnable.
//
// Must be called from kernel context, like every other entry point; it is
// how tests and drivers model asynchronous device interrupts at
// deterministic points.
func (k *Kernel) RaiseInterrupt(h InterruptHandler) {
	k.pending.PushBack(h)
	if k.ipl == IPLNone && !k.inIntr {
		k.deliverInterrupts()
	}
}

// deliverInterrupts drains the pending queue in FIFO order. Each handler
// runs with the IPL forced high and inIntr set; a handler that queues
// further interrupts has them delivered by the same drain. The idle loop
// calls this even at raised IPL, mirroring a core that opens the
// interrupt window while it has nothing to run.
func (k *Kernel) deliverInterrupts() {
	for k.pending.Len() > 0 {
		h := k.pending.PopFront()
		old := k.ipl
		k.ipl = IPLHigh
		k.inIntr = true
		k.trace("interrupt", nil)
		h(k)
		k.inIntr = false
		k.ipl = old
	}
}
