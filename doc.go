// Package monocore implements the classical blocking synchronization
// primitives of a single-core kernel (counting semaphore, mutual-exclusion
// lock, condition variable) together with the minimal runtime they need:
// a deterministic one-core thread scheduler, wait channels, and a global
// interrupt priority level (IPL).
//
// The model is a single processor with preemption disabled whenever the
// IPL is raised. Mutual exclusion for the primitives' internal state is
// achieved purely by raising the IPL across the critical section; there
// are no spinlocks and no atomics, because at any instant exactly one
// thread executes kernel code. This is a complete mutual-exclusion
// mechanism on one core and deliberately does not generalize to SMP.
//
// Threads block by sleeping on a wait channel ([WChan]) and are made
// runnable again by WakeOne/WakeAll. Every blocking operation re-checks
// its predicate in a loop after waking, so correctness never depends on
// wakeup order or on the absence of spurious wakeups.
//
// Usage-contract violations (blocking in interrupt context, releasing a
// lock the caller does not hold, waiting on a condition variable without
// its lock, destroying a semaphore with sleepers) are programming defects
// of the caller and halt the kernel with a [*KernelPanic] rather than
// being reported as recoverable errors.
package monocore
