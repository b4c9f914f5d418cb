// Package sysbase defines the platform time and scheduling primitives an
// async task executor depends on. One implementation is selected per build
// target in driver/sys; callers never branch on platform.
package sysbase

// System is the syscall boundary for timers, fairness accounting and worker
// pool sizing. Implementations are stateless and safe for concurrent use
// from any number of goroutines; only SleepMillis blocks its calling thread.
type System interface {
	// SleepMillis suspends the calling thread for at least ms milliseconds.
	// A negative value fails with InvalidArgument without touching the OS.
	// If the underlying wait is cut short by the OS, the call fails with
	// Interrupted; it is never retried here, retry policy belongs to the
	// caller.
	SleepMillis(ms int64) error

	// MonotonicNano returns nanoseconds of the platform's monotonic clock
	// since an arbitrary epoch. Values are non-decreasing within a process
	// and immune to wall-clock adjustments; only differences are
	// meaningful. Fails with ClockUnavailable.
	MonotonicNano() (int64, error)

	// ProcessCPUNano returns nanoseconds of CPU time (kernel plus user)
	// consumed by the whole process since it started. Non-decreasing.
	// Fails with ClockUnavailable. Not a wall-clock measurement.
	ProcessCPUNano() (int64, error)

	// Yield relinquishes the calling thread's remaining scheduling
	// quantum. Another thread is not guaranteed to run. Fails with
	// SchedulerError; nothing changed in that case.
	Yield() error

	// LogicalCores returns the number of logical processors visible to
	// the process, at least 1 on success. Fails with QueryFailed; callers
	// supply a fallback (commonly 1) instead of treating this as fatal.
	LogicalCores() (uint32, error)
}
