// Package probe measures scheduling fairness using the platform
// primitives: each round interleaves CPU-bound spinning, cooperative
// yields, and a timed sleep, sampling the monotonic and process CPU
// clocks around every phase. Consumers use the resulting wall/CPU split
// and per-round jitter to judge how fairly the OS schedules their
// workers. The probe implements no scheduling policy of its own.
package probe

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go.uber.org/zap"

	"example.com/task-time/base/floats"
	"example.com/task-time/base/metrics"
	basesys "example.com/task-time/base/sysbase"
	"example.com/task-time/base/timemath"
	"example.com/task-time/core/sysbase"
)

type Config struct {
	// Rounds is the number of spin/yield/sleep cycles to run.
	Rounds int
	// SleepMillis is the sleep request per round.
	SleepMillis int64
	// SpinMillis is the CPU-bound busy time per round.
	SpinMillis int64
	// YieldsPerRound is the number of cooperative yields per round.
	YieldsPerRound int
}

type Result struct {
	Rounds            int
	Cores             uint32
	WallTime          time.Duration
	CPUTime           time.Duration
	RoundMedian       time.Duration
	RoundMidpoint     time.Duration
	JitterMedian      time.Duration
	SleepOvershoot    float64
	SleepsInterrupted int
	YieldErrors       int
}

type probeMetrics struct {
	rounds            prometheus.Counter
	sleepsInterrupted prometheus.Counter
	yieldErrors       prometheus.Counter
}

var (
	mtrcs     *probeMetrics
	mtrcsOnce sync.Once
)

func probeMtrcs() *probeMetrics {
	mtrcsOnce.Do(func() {
		mtrcs = &probeMetrics{
			rounds: promauto.NewCounter(prometheus.CounterOpts{
				Name: metrics.ProbeRoundsN,
				Help: metrics.ProbeRoundsH,
			}),
			sleepsInterrupted: promauto.NewCounter(prometheus.CounterOpts{
				Name: metrics.ProbeSleepsInterruptedN,
				Help: metrics.ProbeSleepsInterruptedH,
			}),
			yieldErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: metrics.ProbeYieldErrorsN,
				Help: metrics.ProbeYieldErrorsH,
			}),
		}
	})
	return mtrcs
}

// spin burns CPU until the monotonic clock advances by d.
func spin(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	start, err := sysbase.MonotonicNano()
	if err != nil {
		return err
	}
	deadline := start + d.Nanoseconds()
	for {
		now, err := sysbase.MonotonicNano()
		if err != nil {
			return err
		}
		if now >= deadline {
			return nil
		}
	}
}

// Run executes cfg.Rounds probe rounds. A ClockUnavailable failure is
// fatal to the probe; interrupted sleeps and scheduler errors are counted
// and the run continues, since retry policy belongs to the consumer.
func Run(log *zap.Logger, cfg Config) (Result, error) {
	if cfg.Rounds <= 0 {
		cfg.Rounds = 10
	}
	if cfg.SleepMillis < 0 || cfg.SpinMillis < 0 || cfg.YieldsPerRound < 0 {
		return Result{}, &basesys.Error{Code: basesys.CodeInvalidArgument, Op: "probe"}
	}
	m := probeMtrcs()

	res := Result{Rounds: cfg.Rounds}

	cores, err := sysbase.LogicalCores()
	if err != nil {
		// Core count is informational here; 1 is the conventional fallback.
		log.Info("failed to query logical core count", zap.Error(err))
		cores = 1
	}
	res.Cores = cores

	wall0, err := sysbase.MonotonicNano()
	if err != nil {
		return Result{}, err
	}
	cpu0, err := sysbase.ProcessCPUNano()
	if err != nil {
		return Result{}, err
	}

	roundWalls := make([]time.Duration, 0, cfg.Rounds)
	overshoots := make([]float64, 0, cfg.Rounds)

	for i := 0; i < cfg.Rounds; i++ {
		r0, err := sysbase.MonotonicNano()
		if err != nil {
			return Result{}, err
		}

		err = spin(timemath.DurationFromMillis(cfg.SpinMillis))
		if err != nil {
			return Result{}, err
		}

		for j := 0; j < cfg.YieldsPerRound; j++ {
			err = sysbase.Yield()
			if err != nil {
				// Benign, nothing changed; count and continue.
				res.YieldErrors++
				m.yieldErrors.Inc()
			}
		}

		s0, err := sysbase.MonotonicNano()
		if err != nil {
			return Result{}, err
		}
		interrupted := false
		err = sysbase.SleepMillis(cfg.SleepMillis)
		if err != nil {
			if !errors.Is(err, basesys.ErrInterrupted) {
				return Result{}, err
			}
			interrupted = true
			res.SleepsInterrupted++
			m.sleepsInterrupted.Inc()
		}
		s1, err := sysbase.MonotonicNano()
		if err != nil {
			return Result{}, err
		}
		if cfg.SleepMillis > 0 && !interrupted {
			want := timemath.DurationFromMillis(cfg.SleepMillis)
			got := time.Duration(s1 - s0)
			overshoots = append(overshoots, timemath.Seconds(got-want)/timemath.Seconds(want))
		}

		r1, err := sysbase.MonotonicNano()
		if err != nil {
			return Result{}, err
		}
		roundWalls = append(roundWalls, time.Duration(r1-r0))
		m.rounds.Inc()

		log.Debug("probe round",
			zap.Int("round", i),
			zap.Duration("wall", time.Duration(r1-r0)),
		)
	}

	wall1, err := sysbase.MonotonicNano()
	if err != nil {
		return Result{}, err
	}
	cpu1, err := sysbase.ProcessCPUNano()
	if err != nil {
		return Result{}, err
	}

	res.WallTime = time.Duration(wall1 - wall0)
	res.CPUTime = time.Duration(cpu1 - cpu0)
	// Median and FaultTolerantMidpoint sort in place; keep the round order
	// intact for the jitter pass.
	res.RoundMedian = timemath.Median(append([]time.Duration(nil), roundWalls...))
	res.RoundMidpoint = timemath.FaultTolerantMidpoint(append([]time.Duration(nil), roundWalls...))
	jitter := make([]time.Duration, 0, len(roundWalls))
	for _, w := range roundWalls {
		jitter = append(jitter, timemath.Abs(w-res.RoundMedian))
	}
	res.JitterMedian = timemath.Median(jitter)
	if len(overshoots) > 0 {
		res.SleepOvershoot = floats.Median(overshoots)
	}
	return res, nil
}
