package sys_test

import (
	"errors"
	"testing"

	"example.com/task-time/base/sysbase"
	"example.com/task-time/driver/sys"
)

func monotonicNano(t *testing.T, s sys.System) int64 {
	t.Helper()
	ns, err := s.MonotonicNano()
	if err != nil {
		t.Fatalf("failed to read monotonic clock: %v", err)
	}
	return ns
}

func cpuNano(t *testing.T, s sys.System) int64 {
	t.Helper()
	ns, err := s.ProcessCPUNano()
	if err != nil {
		t.Fatalf("failed to read process CPU time: %v", err)
	}
	return ns
}

func TestSleepElapsed(t *testing.T) {
	s := sys.System{}
	start := monotonicNano(t, s)
	err := s.SleepMillis(50)
	if errors.Is(err, sysbase.ErrInterrupted) {
		t.Skip("sleep interrupted by a signal")
	}
	if err != nil {
		t.Fatalf("SleepMillis(50) = %v, want nil", err)
	}
	elapsed := monotonicNano(t, s) - start
	if elapsed < 45_000_000 {
		t.Errorf("SleepMillis(50) elapsed %d ns, want >= 45000000 ns", elapsed)
	}
	if elapsed > 2_000_000_000 {
		t.Errorf("SleepMillis(50) elapsed %d ns, want a delay in the same order of magnitude", elapsed)
	}
}

func TestSleepZero(t *testing.T) {
	s := sys.System{}
	err := s.SleepMillis(0)
	if err != nil && !errors.Is(err, sysbase.ErrInterrupted) {
		t.Errorf("SleepMillis(0) = %v, want nil", err)
	}
}

func TestSleepNegative(t *testing.T) {
	s := sys.System{}
	start := monotonicNano(t, s)
	err := s.SleepMillis(-1)
	elapsed := monotonicNano(t, s) - start
	if !errors.Is(err, sysbase.ErrInvalidArgument) {
		t.Errorf("SleepMillis(-1) = %v, want ErrInvalidArgument", err)
	}
	// The contract violation must be rejected before any OS wait.
	if elapsed > 5_000_000 {
		t.Errorf("SleepMillis(-1) took %d ns, want no measurable delay", elapsed)
	}
}

func TestMonotonicNonDecreasing(t *testing.T) {
	s := sys.System{}
	prev := monotonicNano(t, s)
	for i := 0; i < 10_000; i++ {
		now := monotonicNano(t, s)
		if now < prev {
			t.Fatalf("monotonic clock went backward: %d after %d", now, prev)
		}
		prev = now
	}
}

func TestCPUTimeBusyLoop(t *testing.T) {
	s := sys.System{}
	cpu0 := cpuNano(t, s)
	deadline := monotonicNano(t, s) + 50_000_000
	for monotonicNano(t, s) < deadline {
	}
	cpu1 := cpuNano(t, s)
	if cpu1 <= cpu0 {
		t.Errorf("process CPU time did not advance across a busy loop: %d -> %d", cpu0, cpu1)
	}
}

func TestCPUTimeSleep(t *testing.T) {
	s := sys.System{}
	cpu0 := cpuNano(t, s)
	err := s.SleepMillis(100)
	if errors.Is(err, sysbase.ErrInterrupted) {
		t.Skip("sleep interrupted by a signal")
	}
	if err != nil {
		t.Fatalf("SleepMillis(100) = %v, want nil", err)
	}
	cpu1 := cpuNano(t, s)
	if cpu1 < cpu0 {
		t.Fatalf("process CPU time went backward: %d -> %d", cpu0, cpu1)
	}
	// Sleeping consumes no CPU time beyond runtime background work.
	if cpu1-cpu0 > 50_000_000 {
		t.Errorf("sleeping for 100ms consumed %d ns of CPU time, want a negligible amount", cpu1-cpu0)
	}
}

func TestYieldLoop(t *testing.T) {
	s := sys.System{}
	for i := 0; i < 1_000; i++ {
		if err := s.Yield(); err != nil {
			t.Fatalf("Yield() = %v, want nil", err)
		}
	}
}

func TestLogicalCores(t *testing.T) {
	s := sys.System{}
	n, err := s.LogicalCores()
	if err != nil {
		t.Fatalf("LogicalCores() = %v, want nil", err)
	}
	if n < 1 {
		t.Fatalf("LogicalCores() = %d, want >= 1", n)
	}
	for i := 0; i < 10; i++ {
		m, err := s.LogicalCores()
		if err != nil {
			t.Fatalf("LogicalCores() = %v, want nil", err)
		}
		if m != n {
			t.Errorf("LogicalCores() = %d, want stable value %d", m, n)
		}
	}
}
