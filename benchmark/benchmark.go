// Latency benchmarks for the platform time and scheduling primitives.
package benchmark

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/mmcloughlin/profile"

	"go.uber.org/zap"

	"example.com/task-time/base/zaplog"
	"example.com/task-time/core/sysbase"
)

// Options controls a benchmark run. The zero value is not useful; the CLI
// fills it from flags.
type Options struct {
	NumGoroutine int
	NumCalls     int
	SleepMillis  int64
	ProfileCPU   bool
}

func (o Options) normalized() Options {
	if o.NumGoroutine < 1 {
		o.NumGoroutine = 1
	}
	if o.NumCalls < 1 {
		o.NumCalls = 1
	}
	return o
}

// RunClockBenchmark records the call latency of MonotonicNano and
// ProcessCPUNano in nanoseconds and prints the percentile distributions.
func RunClockBenchmark(opts Options) {
	opts = opts.normalized()
	log := zaplog.LoggerOrNop()
	if opts.ProfileCPU {
		defer profile.Start(profile.CPUProfile).Stop()
	}
	run(opts, func(hg *hdrhistogram.Histogram) bool {
		t0, err := sysbase.MonotonicNano()
		if err != nil {
			log.Error("failed to read monotonic clock", zap.Error(err))
			return false
		}
		_, err = sysbase.ProcessCPUNano()
		if err != nil {
			log.Error("failed to read process CPU time", zap.Error(err))
			return false
		}
		t1, err := sysbase.MonotonicNano()
		if err != nil {
			log.Error("failed to read monotonic clock", zap.Error(err))
			return false
		}
		// Half the bracket approximates a single read.
		err = hg.RecordValue((t1 - t0) / 2)
		if err != nil {
			log.Error("failed to record histogram value", zap.Error(err))
			return false
		}
		return true
	})
}

// RunYieldBenchmark records the wall time of a cooperative yield in
// nanoseconds.
func RunYieldBenchmark(opts Options) {
	opts = opts.normalized()
	log := zaplog.LoggerOrNop()
	run(opts, func(hg *hdrhistogram.Histogram) bool {
		t0, err := sysbase.MonotonicNano()
		if err != nil {
			log.Error("failed to read monotonic clock", zap.Error(err))
			return false
		}
		err = sysbase.Yield()
		if err != nil {
			log.Error("failed to yield", zap.Error(err))
			return false
		}
		t1, err := sysbase.MonotonicNano()
		if err != nil {
			log.Error("failed to read monotonic clock", zap.Error(err))
			return false
		}
		err = hg.RecordValue(t1 - t0)
		if err != nil {
			log.Error("failed to record histogram value", zap.Error(err))
			return false
		}
		return true
	})
}

// RunSleepBenchmark records sleep overshoot, the wall time beyond the
// requested duration, in microseconds.
func RunSleepBenchmark(opts Options) {
	opts = opts.normalized()
	log := zaplog.LoggerOrNop()
	if opts.SleepMillis < 1 {
		opts.SleepMillis = 1
	}
	want := opts.SleepMillis * int64(time.Millisecond)
	run(opts, func(hg *hdrhistogram.Histogram) bool {
		t0, err := sysbase.MonotonicNano()
		if err != nil {
			log.Error("failed to read monotonic clock", zap.Error(err))
			return false
		}
		err = sysbase.SleepMillis(opts.SleepMillis)
		if err != nil {
			log.Error("failed to sleep", zap.Error(err))
			return false
		}
		t1, err := sysbase.MonotonicNano()
		if err != nil {
			log.Error("failed to read monotonic clock", zap.Error(err))
			return false
		}
		overshoot := (t1 - t0 - want) / int64(time.Microsecond)
		if overshoot < 0 {
			overshoot = 0
		}
		err = hg.RecordValue(overshoot)
		if err != nil {
			log.Error("failed to record histogram value", zap.Error(err))
			return false
		}
		return true
	})
}

func run(opts Options, call func(hg *hdrhistogram.Histogram) bool) {
	var mu sync.Mutex
	sg := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(opts.NumGoroutine)
	for i := opts.NumGoroutine; i > 0; i-- {
		go func() {
			hg := hdrhistogram.New(1, 60_000_000_000, 3)

			defer wg.Done()
			<-sg
			for j := opts.NumCalls; j > 0; j-- {
				if !call(hg) {
					return
				}
			}
			mu.Lock()
			defer mu.Unlock()
			hg.PercentilesPrint(os.Stdout, 1, 1.0)
		}()
	}
	t0 := time.Now()
	close(sg)
	wg.Wait()
	fmt.Printf("total duration: %v\n", time.Since(t0))
}
