package monocore

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// KernelPanic is the value thrown (via Go panic) for usage-contract and
// invariant violations. These are programming defects in the caller, not
// recoverable conditions, so the kernel halts deterministically instead
// of continuing with an inconsistent primitive.
type KernelPanic struct {
	Kernel string
	Thread string
	Reason string
}

func (p *KernelPanic) Error() string {
	return fmt.Sprintf("kernel panic (%s, thread %s): %s", p.Kernel, p.Thread, p.Reason)
}

// panicf logs the report and halts the kernel.
func (k *Kernel) panicf(format string, args ...any) {
	p := &KernelPanic{
		Kernel: k.name,
		Thread: k.cur.String(),
		Reason: fmt.Sprintf(format, args...),
	}
	k.log.WithFields(logrus.Fields{
		"kernel": p.Kernel,
		"thread": p.Thread,
	}).Error("kernel panic: " + p.Reason)
	panic(p)
}
