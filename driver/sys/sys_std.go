//go:build !linux

package sys

import (
	"math"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"

	"example.com/task-time/base/sysbase"
)

// System is the portable implementation of sysbase.System for targets
// without a dedicated syscall driver. Sleeps ride on the Go runtime timer
// and are not interruptible by signals, so SleepMillis never reports
// Interrupted here.
type System struct{}

var _ sysbase.System = System{}

// The Go runtime reads the platform monotonic clock into every time.Time,
// so differences against a fixed reference are wall-clock immune.
var monotonicEpoch = time.Now()

func (System) SleepMillis(ms int64) error {
	if ms < 0 || ms > math.MaxInt64/int64(time.Millisecond) {
		return &sysbase.Error{Code: sysbase.CodeInvalidArgument, Op: "sleep"}
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return nil
}

func (System) MonotonicNano() (int64, error) {
	return time.Since(monotonicEpoch).Nanoseconds(), nil
}

func (System) ProcessCPUNano() (int64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, &sysbase.Error{Code: sysbase.CodeClockUnavailable, Op: "cpu_time", Err: err}
	}
	t, err := p.Times()
	if err != nil {
		return 0, &sysbase.Error{Code: sysbase.CodeClockUnavailable, Op: "cpu_time", Err: err}
	}
	return int64((t.User + t.System) * float64(time.Second)), nil
}

func (System) Yield() error {
	runtime.Gosched()
	return nil
}

func (System) LogicalCores() (uint32, error) {
	n, err := cpu.Counts(true /* logical */)
	if err != nil {
		return 0, &sysbase.Error{Code: sysbase.CodeQueryFailed, Op: "core_count", Err: err}
	}
	if n < 1 {
		return 0, &sysbase.Error{Code: sysbase.CodeQueryFailed, Op: "core_count"}
	}
	return uint32(n), nil
}
