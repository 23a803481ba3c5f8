package monocore

import (
	"strings"

	"github.com/gammazero/deque"
	"github.com/llxisdsh/pb"
	"github.com/sirupsen/logrus"
)

// Kernel is a simulated single-core kernel: a set of threads, a FIFO run
// queue, a global interrupt priority level, and a pending-interrupt queue.
//
// Exactly one goroutine executes kernel code at any instant. The core is
// handed from thread to thread directly (there is no separate scheduler
// goroutine), so every field below is owned by the thread currently on
// the core and is mutated without any additional locking. That ownership
// discipline is the whole point of the single-core model: raising the IPL
// is a complete mutual-exclusion mechanism here.
//
// All kernel entry points (Fork, Yield, SplHigh, the primitives' methods)
// must be called from kernel context, i.e. from the boot goroutine or
// from inside a forked thread's function.
type Kernel struct {
	_    noCopy
	name string
	log  *logrus.Logger

	cur     *Thread
	runq    deque.Deque[*Thread]
	pending deque.Deque[InterruptHandler]
	ipl     IPL
	inIntr  bool

	nextID ThreadID
	alive  int

	// threads indexes every live thread by ID, for the deadlock report
	// and diagnostics.
	threads pb.MapOf[ThreadID, *Thread]
}

// Option configures a Kernel at Boot time.
type Option func(*Kernel)

// WithLogger replaces the kernel's default (warn-level) logger.
func WithLogger(log *logrus.Logger) Option {
	return func(k *Kernel) { k.log = log }
}

// WithTracing turns on debug-level tracing of scheduling events
// (fork, switch, sleep, wake, interrupt, exit) on the kernel's logger.
func WithTracing() Option {
	return func(k *Kernel) { k.log.SetLevel(logrus.DebugLevel) }
}

// Boot creates a kernel and adopts the calling goroutine as its boot
// thread (thread 0). The caller is on the core from this point on and
// runs with interrupts enabled.
func Boot(name string, opts ...Option) *Kernel {
	k := &Kernel{name: name, log: defaultLogger()}
	for _, opt := range opts {
		opt(k)
	}
	boot := &Thread{
		id:    0,
		name:  "boot",
		kern:  k,
		state: threadRunning,
		gate:  make(chan struct{}, 1),
	}
	k.cur = boot
	k.alive = 1
	k.threads.Store(boot.id, boot)
	k.trace("boot", logrus.Fields{"kernel": name})
	return k
}

// Name returns the kernel's diagnostic name.
func (k *Kernel) Name() string { return k.name }

// CurThread returns the thread currently on the core. It is the identity
// used for lock ownership bookkeeping.
func (k *Kernel) CurThread() *Thread { return k.cur }

// Fork creates a new thread that will run fn when scheduled. The child is
// appended to the run queue; the caller keeps the core until it yields,
// sleeps, or exits. fn returning ends the thread.
func (k *Kernel) Fork(name string, fn func(*Thread)) *Thread {
	k.nextID++
	t := &Thread{
		id:    k.nextID,
		name:  name,
		kern:  k,
		state: threadReady,
		gate:  make(chan struct{}, 1),
	}
	k.alive++
	k.threads.Store(t.id, t)
	k.runq.PushBack(t)
	go t.run(fn)
	k.trace("fork", logrus.Fields{"thread": t.String(), "parent": k.cur.String()})
	return t
}

// Yield surrenders the core to the next runnable thread. With nothing
// else runnable it returns immediately. Pending interrupts are delivered
// on the way out when the caller runs with interrupts enabled.
func (k *Kernel) Yield() {
	spl := k.SplHigh()
	cur := k.cur
	cur.state = threadReady
	k.runq.PushBack(cur)
	k.switchAway(cur)
	k.Splx(spl)
}

// sleepCurrent parks the current thread on wc and switches away. Called
// with the IPL raised; the thread resumes here, still at raised IPL, when
// a waker moves it back to the run queue and it is next scheduled.
func (k *Kernel) sleepCurrent(wc *WChan) {
	cur := k.cur
	cur.state = threadSleeping
	cur.wc = wc
	wc.q.PushBack(cur)
	k.trace("sleep", logrus.Fields{"thread": cur.String(), "wchan": wc.name})
	k.switchAway(cur)
}

// ready moves a sleeping thread to the run queue.
func (k *Kernel) ready(t *Thread) {
	t.state = threadReady
	t.wc = nil
	k.runq.PushBack(t)
	k.trace("wake", logrus.Fields{"thread": t.String()})
}

// switchAway hands the core to the next runnable thread and parks the
// caller until it is scheduled again. Always entered with the IPL raised;
// the thread that is switched in observes the raised IPL and restores its
// own saved level, so the level seen across a switch is consistent.
func (k *Kernel) switchAway(cur *Thread) {
	next := k.pickNext()
	if next == cur {
		cur.state = threadRunning
		return
	}
	k.cur = next
	next.state = threadRunning
	k.trace("switch", logrus.Fields{"from": cur.String(), "to": next.String()})
	next.gate <- struct{}{}
	<-cur.gate
}

// pickNext returns the next runnable thread. When the run queue is empty
// it plays the idle loop: open the interrupt window, deliver anything
// pending (which may wake sleepers), and look again. If nothing is
// pending either, every live thread is asleep and nothing can ever wake
// one: that is a deadlock, reported as a kernel panic rather than a
// silent hang.
func (k *Kernel) pickNext() *Thread {
	for {
		if k.runq.Len() > 0 {
			return k.runq.PopFront()
		}
		if k.pending.Len() > 0 {
			k.deliverInterrupts()
			continue
		}
		k.panicf("deadlock: no runnable threads, sleepers: %s", k.sleeperReport())
	}
}

// sleeperReport names every sleeping thread and its wait channel.
func (k *Kernel) sleeperReport() string {
	var sleepers []string
	k.threads.Range(func(_ ThreadID, t *Thread) bool {
		if t.state == threadSleeping {
			sleepers = append(sleepers, t.String()+" on "+t.wc.name)
		}
		return true
	})
	if len(sleepers) == 0 {
		return "none"
	}
	return strings.Join(sleepers, ", ")
}

// exitCurrent ends the current thread and hands the core onward. The
// backing goroutine returns right after and never touches kernel state
// again. When the last thread exits the kernel is simply finished.
func (k *Kernel) exitCurrent() {
	k.SplHigh()
	cur := k.cur
	cur.state = threadZombie
	k.threads.Delete(cur.id)
	k.alive--
	k.trace("exit", logrus.Fields{"thread": cur.String(), "alive": k.alive})
	if k.alive == 0 {
		return
	}
	next := k.pickNext()
	k.cur = next
	next.state = threadRunning
	next.gate <- struct{}{}
}
