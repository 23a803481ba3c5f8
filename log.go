package monocore

import "github.com/sirupsen/logrus"

// defaultLogger is quiet: only panics (error level) and worse get out
// unless the kernel was booted with WithTracing or a custom logger.
func defaultLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}

// trace emits a debug-level scheduling event. The level check keeps the
// field map off the hot path when tracing is off.
func (k *Kernel) trace(event string, fields logrus.Fields) {
	if !k.log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	if fields == nil {
		fields = logrus.Fields{"thread": k.cur.String()}
	}
	fields["kernel"] = k.name
	k.log.WithFields(fields).Debug(event)
}
