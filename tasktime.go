// Task runtime time and scheduling inspection tool

package main

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shirou/gopsutil/v4/cpu"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"example.com/task-time/base/metrics"
	"example.com/task-time/base/timemath"
	"example.com/task-time/base/zaplog"
	"example.com/task-time/benchmark"
	"example.com/task-time/core/probe"
	"example.com/task-time/core/sysbase"
	"example.com/task-time/driver/sys"
)

const (
	benchmarkKindClock = "clock"
	benchmarkKindYield = "yield"
	benchmarkKindSleep = "sleep"

	defaultMetricsAddr     = "127.0.0.1:8080"
	defaultMonitorInterval = 1000
)

type svcConfig struct {
	MetricsAddr           string `toml:"metrics_address,omitempty"`
	MonitorIntervalMillis int64  `toml:"monitor_interval_milliseconds,omitempty"`
	ProbeRounds           int    `toml:"probe_rounds,omitempty"`
	ProbeSleepMillis      int64  `toml:"probe_sleep_milliseconds,omitempty"`
	ProbeSpinMillis       int64  `toml:"probe_spin_milliseconds,omitempty"`
	ProbeYieldsPerRound   int    `toml:"probe_yields_per_round,omitempty"`
}

var (
	log *zap.Logger
)

func initLogger(verbose bool) {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	c.EncoderConfig.EncodeCaller = func(
		caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		p := caller.TrimmedPath()
		if len(p) > 30 {
			p = "..." + p[len(p)-27:]
		}
		enc.AppendString(fmt.Sprintf("%30s", p))
	}
	if !verbose {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	var err error
	log, err = c.Build()
	if err != nil {
		panic(err)
	}
	zaplog.SetLogger(log)
}

func loadConfig(configFile string) svcConfig {
	raw, err := os.ReadFile(configFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	var cfg svcConfig
	err = toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&cfg)
	if err != nil {
		log.Fatal("failed to decode configuration", zap.Error(err))
	}
	return cfg
}

func runInfo() {
	cores, err := sysbase.LogicalCores()
	if err != nil {
		// Pool sizing is a performance concern, not a correctness one.
		log.Info("failed to query logical core count, assuming 1", zap.Error(err))
		cores = 1
	}
	mono, err := sysbase.MonotonicNano()
	if err != nil {
		log.Fatal("failed to read monotonic clock", zap.Error(err))
	}
	cputime, err := sysbase.ProcessCPUNano()
	if err != nil {
		log.Fatal("failed to read process CPU time", zap.Error(err))
	}

	fmt.Printf("logical cores:\t%d\n", cores)
	fmt.Printf("worker count:\t%d\n", sysbase.WorkerCount())
	fmt.Printf("monotonic:\t%d ns\n", mono)
	fmt.Printf("cpu time:\t%d ns\n", cputime)

	logical, err := cpu.Counts(true)
	if err == nil {
		fmt.Printf("gopsutil logical cores:\t%d\n", logical)
	}
	physical, err := cpu.Counts(false)
	if err == nil {
		fmt.Printf("gopsutil physical cores:\t%d\n", physical)
	}
}

func runProbe(configFile string) {
	cfg := loadConfig(configFile)
	res, err := probe.Run(log, probe.Config{
		Rounds:         cfg.ProbeRounds,
		SleepMillis:    cfg.ProbeSleepMillis,
		SpinMillis:     cfg.ProbeSpinMillis,
		YieldsPerRound: cfg.ProbeYieldsPerRound,
	})
	if err != nil {
		log.Fatal("failed to run probe", zap.Error(err))
	}

	fmt.Printf("rounds:\t%d\n", res.Rounds)
	fmt.Printf("cores:\t%d\n", res.Cores)
	fmt.Printf("wall time:\t%v\n", res.WallTime)
	fmt.Printf("cpu time:\t%v\n", res.CPUTime)
	fmt.Printf("round median:\t%v\n", res.RoundMedian)
	fmt.Printf("round midpoint:\t%v\n", res.RoundMidpoint)
	fmt.Printf("jitter median:\t%v\n", res.JitterMedian)
	fmt.Printf("sleep overshoot:\t%.4f\n", res.SleepOvershoot)
	fmt.Printf("sleeps interrupted:\t%d\n", res.SleepsInterrupted)
	fmt.Printf("yield errors:\t%d\n", res.YieldErrors)
}

func runBenchmark(kind string, opts benchmark.Options) {
	switch kind {
	case benchmarkKindClock:
		benchmark.RunClockBenchmark(opts)
	case benchmarkKindYield:
		benchmark.RunYieldBenchmark(opts)
	case benchmarkKindSleep:
		benchmark.RunSleepBenchmark(opts)
	default:
		exitWithUsage()
	}
}

func runMonitor(configFile string) {
	cfg := svcConfig{}
	if configFile != "" {
		cfg = loadConfig(configFile)
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = defaultMetricsAddr
	}
	if cfg.MonitorIntervalMillis <= 0 {
		cfg.MonitorIntervalMillis = defaultMonitorInterval
	}

	monotonicSeconds := promauto.NewGauge(prometheus.GaugeOpts{
		Name: metrics.MonitorMonotonicSecondsN,
		Help: metrics.MonitorMonotonicSecondsH,
	})
	cpuSeconds := promauto.NewGauge(prometheus.GaugeOpts{
		Name: metrics.MonitorCPUSecondsN,
		Help: metrics.MonitorCPUSecondsH,
	})
	logicalCores := promauto.NewGauge(prometheus.GaugeOpts{
		Name: metrics.MonitorLogicalCoresN,
		Help: metrics.MonitorLogicalCoresH,
	})
	sampleErrors := promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.MonitorSampleErrorsN,
		Help: metrics.MonitorSampleErrorsH,
	})

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		err := http.ListenAndServe(cfg.MetricsAddr, nil)
		log.Fatal("failed to serve metrics", zap.Error(err))
	}()

	log.Info("serving metrics",
		zap.String("address", cfg.MetricsAddr),
		zap.Int64("interval_ms", cfg.MonitorIntervalMillis),
	)
	for {
		mono, err := sysbase.MonotonicNano()
		if err != nil {
			log.Fatal("failed to read monotonic clock", zap.Error(err))
		}
		monotonicSeconds.Set(timemath.Seconds(time.Duration(mono)))
		cputime, err := sysbase.ProcessCPUNano()
		if err != nil {
			log.Fatal("failed to read process CPU time", zap.Error(err))
		}
		cpuSeconds.Set(timemath.Seconds(time.Duration(cputime)))
		cores, err := sysbase.LogicalCores()
		if err != nil {
			sampleErrors.Inc()
		} else {
			logicalCores.Set(float64(cores))
		}
		err = sysbase.SleepMillis(cfg.MonitorIntervalMillis)
		if err != nil {
			// An interrupted wait only shortens one sampling interval.
			log.Info("monitor sleep interrupted", zap.Error(err))
		}
	}
}

func exitWithUsage() {
	fmt.Println("usage: tasktime <info|probe|benchmark|monitor|x> [flags]")
	os.Exit(1)
}

func main() {
	var (
		verbose      bool
		configFile   string
		kind         string
		numGoroutine int
		numCalls     int
		sleepMillis  int64
		profileCPU   bool
	)

	infoFlags := flag.NewFlagSet("info", flag.ExitOnError)
	probeFlags := flag.NewFlagSet("probe", flag.ExitOnError)
	benchmarkFlags := flag.NewFlagSet("benchmark", flag.ExitOnError)
	monitorFlags := flag.NewFlagSet("monitor", flag.ExitOnError)

	infoFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")

	probeFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	probeFlags.StringVar(&configFile, "config", "", "Config file")

	benchmarkFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	benchmarkFlags.StringVar(&kind, "kind", benchmarkKindClock, "Benchmark kind (clock, yield, sleep)")
	benchmarkFlags.IntVar(&numGoroutine, "goroutines", 1, "Number of benchmark goroutines")
	benchmarkFlags.IntVar(&numCalls, "calls", 100_000, "Number of calls per goroutine")
	benchmarkFlags.Int64Var(&sleepMillis, "sleep", 1, "Sleep request in milliseconds (sleep kind)")
	benchmarkFlags.BoolVar(&profileCPU, "profile", false, "Write a CPU profile")

	monitorFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	monitorFlags.StringVar(&configFile, "config", "", "Config file")

	if len(os.Args) < 2 {
		exitWithUsage()
	}

	sysbase.RegisterSystem(sys.System{})

	switch os.Args[1] {
	case infoFlags.Name():
		err := infoFlags.Parse(os.Args[2:])
		if err != nil || infoFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runInfo()
	case probeFlags.Name():
		err := probeFlags.Parse(os.Args[2:])
		if err != nil || probeFlags.NArg() != 0 {
			exitWithUsage()
		}
		if configFile == "" {
			exitWithUsage()
		}
		initLogger(verbose)
		runProbe(configFile)
	case benchmarkFlags.Name():
		err := benchmarkFlags.Parse(os.Args[2:])
		if err != nil || benchmarkFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runBenchmark(kind, benchmark.Options{
			NumGoroutine: numGoroutine,
			NumCalls:     numCalls,
			SleepMillis:  sleepMillis,
			ProfileCPU:   profileCPU,
		})
	case monitorFlags.Name():
		err := monitorFlags.Parse(os.Args[2:])
		if err != nil || monitorFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runMonitor(configFile)
	case "x":
		runX()
	default:
		exitWithUsage()
	}
}
