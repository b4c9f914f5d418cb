//go:build linux

package sys

import (
	"math"

	"golang.org/x/sys/unix"

	"github.com/tklauser/go-sysconf"

	"example.com/task-time/base/sysbase"
)

// System is the Linux implementation of sysbase.System, built on raw
// syscalls. It holds no state; the zero value is ready to use.
type System struct{}

var _ sysbase.System = System{}

func (System) SleepMillis(ms int64) error {
	if ms < 0 || ms > math.MaxInt64/int64(1e6) {
		return &sysbase.Error{Code: sysbase.CodeInvalidArgument, Op: "sleep"}
	}
	ts := unix.NsecToTimespec(ms * 1e6)
	err := unix.Nanosleep(&ts, nil)
	if err == unix.EINTR {
		return &sysbase.Error{Code: sysbase.CodeInterrupted, Op: "sleep", Err: err}
	}
	if err != nil {
		return &sysbase.Error{Code: sysbase.CodeInvalidArgument, Op: "sleep", Err: err}
	}
	return nil
}

func (System) MonotonicNano() (int64, error) {
	var ts unix.Timespec
	err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	if err != nil {
		return 0, &sysbase.Error{Code: sysbase.CodeClockUnavailable, Op: "monotonic_time", Err: err}
	}
	return ts.Nano(), nil
}

func (System) ProcessCPUNano() (int64, error) {
	var ts unix.Timespec
	err := unix.ClockGettime(unix.CLOCK_PROCESS_CPUTIME_ID, &ts)
	if err != nil {
		return 0, &sysbase.Error{Code: sysbase.CodeClockUnavailable, Op: "cpu_time", Err: err}
	}
	return ts.Nano(), nil
}

func (System) Yield() error {
	_, _, errno := unix.Syscall(unix.SYS_SCHED_YIELD, 0, 0, 0)
	if errno != 0 {
		return &sysbase.Error{Code: sysbase.CodeSchedulerError, Op: "yield", Err: errno}
	}
	return nil
}

func (System) LogicalCores() (uint32, error) {
	n, err := sysconf.Sysconf(sysconf.SC_NPROCESSORS_ONLN)
	if err != nil {
		return 0, &sysbase.Error{Code: sysbase.CodeQueryFailed, Op: "core_count", Err: err}
	}
	if n < 1 || n > math.MaxUint32 {
		return 0, &sysbase.Error{Code: sysbase.CodeQueryFailed, Op: "core_count"}
	}
	return uint32(n), nil
}
