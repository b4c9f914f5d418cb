package probe_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	basesys "example.com/task-time/base/sysbase"
	"example.com/task-time/core/probe"
	"example.com/task-time/core/sysbase"
	"example.com/task-time/driver/sys"
)

func TestMain(m *testing.M) {
	sysbase.RegisterSystem(sys.System{})
	os.Exit(m.Run())
}

func TestRunInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  probe.Config
	}{
		{"Negative sleep", probe.Config{Rounds: 1, SleepMillis: -1}},
		{"Negative spin", probe.Config{Rounds: 1, SpinMillis: -1}},
		{"Negative yields", probe.Config{Rounds: 1, YieldsPerRound: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := probe.Run(zap.NewNop(), tt.cfg)
			if !errors.Is(err, basesys.ErrInvalidArgument) {
				t.Errorf("probe.Run = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestRun(t *testing.T) {
	cfg := probe.Config{
		Rounds:         4,
		SleepMillis:    5,
		SpinMillis:     2,
		YieldsPerRound: 8,
	}
	res, err := probe.Run(zap.NewNop(), cfg)
	if err != nil {
		t.Fatalf("probe.Run = %v, want nil", err)
	}

	if res.Rounds != cfg.Rounds {
		t.Errorf("res.Rounds = %d, want %d", res.Rounds, cfg.Rounds)
	}
	if res.Cores < 1 {
		t.Errorf("res.Cores = %d, want >= 1", res.Cores)
	}
	// Each round sleeps 5ms and spins 2ms.
	if minWall := 4 * 7 * time.Millisecond; res.WallTime < minWall-5*time.Millisecond {
		t.Errorf("res.WallTime = %v, want >= %v", res.WallTime, minWall)
	}
	if res.CPUTime <= 0 {
		t.Errorf("res.CPUTime = %v, want > 0", res.CPUTime)
	}
	if res.RoundMedian < 5*time.Millisecond {
		t.Errorf("res.RoundMedian = %v, want >= sleep request", res.RoundMedian)
	}
	if res.RoundMidpoint <= 0 {
		t.Errorf("res.RoundMidpoint = %v, want > 0", res.RoundMidpoint)
	}
	if res.JitterMedian < 0 {
		t.Errorf("res.JitterMedian = %v, want >= 0", res.JitterMedian)
	}
	if res.YieldErrors != 0 {
		t.Errorf("res.YieldErrors = %d, want 0", res.YieldErrors)
	}
}

func TestRunDefaultRounds(t *testing.T) {
	res, err := probe.Run(zap.NewNop(), probe.Config{SleepMillis: 1})
	if err != nil {
		t.Fatalf("probe.Run = %v, want nil", err)
	}
	if res.Rounds != 10 {
		t.Errorf("res.Rounds = %d, want default 10", res.Rounds)
	}
}
