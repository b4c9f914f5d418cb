package sysbase

import (
	"sync/atomic"

	"example.com/task-time/base/sysbase"
)

var sys atomic.Value

// RegisterSystem installs the platform implementation for the process.
// Registering nil or registering twice is a programming error.
func RegisterSystem(s sysbase.System) {
	if s == nil {
		panic("system must not be nil")
	}
	swapped := sys.CompareAndSwap(nil, s)
	if !swapped {
		panic("system already registered")
	}
}

func system() sysbase.System {
	s := sys.Load()
	if s == nil {
		panic("no system registered")
	}
	return s.(sysbase.System)
}

func SleepMillis(ms int64) error {
	return system().SleepMillis(ms)
}

func MonotonicNano() (int64, error) {
	return system().MonotonicNano()
}

func ProcessCPUNano() (int64, error) {
	return system().ProcessCPUNano()
}

func Yield() error {
	return system().Yield()
}

func LogicalCores() (uint32, error) {
	return system().LogicalCores()
}

// WorkerCount is the pool-sizing value consumers use: the logical core
// count, or a single worker when the query fails. Pool sizing is a
// performance concern, not a correctness one.
func WorkerCount() int {
	n, err := LogicalCores()
	if err != nil || n == 0 {
		return 1
	}
	return int(n)
}
