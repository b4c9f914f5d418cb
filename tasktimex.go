// Driver for quick experiments

package main

import (
	"go.uber.org/zap"

	"example.com/task-time/core/sysbase"
)

func runX() {
	initLogger(true /* verbose */)

	t0, err := sysbase.MonotonicNano()
	if err != nil {
		log.Fatal("failed to read monotonic clock", zap.Error(err))
	}
	c0, err := sysbase.ProcessCPUNano()
	if err != nil {
		log.Fatal("failed to read process CPU time", zap.Error(err))
	}
	err = sysbase.SleepMillis(10)
	if err != nil {
		log.Fatal("failed to sleep", zap.Error(err))
	}
	t1, err := sysbase.MonotonicNano()
	if err != nil {
		log.Fatal("failed to read monotonic clock", zap.Error(err))
	}
	c1, err := sysbase.ProcessCPUNano()
	if err != nil {
		log.Fatal("failed to read process CPU time", zap.Error(err))
	}

	log.Debug("slept 10ms",
		zap.Int64("wall_ns", t1-t0),
		zap.Int64("cpu_ns", c1-c0),
		zap.Int("workers", sysbase.WorkerCount()),
	)
}
