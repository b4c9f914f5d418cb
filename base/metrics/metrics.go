package metrics

const (
	ProbeRoundsH            = "The total number of fairness probe rounds completed"
	ProbeRoundsN            = "tasktime_probe_rounds"
	ProbeSleepsInterruptedH = "The total number of probe sleeps interrupted before completion"
	ProbeSleepsInterruptedN = "tasktime_probe_sleeps_interrupted"
	ProbeYieldErrorsH       = "The total number of probe yields that reported a scheduler error"
	ProbeYieldErrorsN       = "tasktime_probe_yield_errors"

	MonitorMonotonicSecondsH = "The current monotonic clock reading in seconds since an arbitrary epoch"
	MonitorMonotonicSecondsN = "tasktime_monitor_monotonic_seconds"
	MonitorCPUSecondsH       = "The CPU time consumed by the process in seconds"
	MonitorCPUSecondsN       = "tasktime_monitor_cpu_seconds"
	MonitorLogicalCoresH     = "The number of logical processors visible to the process"
	MonitorLogicalCoresN     = "tasktime_monitor_logical_cores"
	MonitorSampleErrorsH     = "The total number of monitor sampling failures"
	MonitorSampleErrorsN     = "tasktime_monitor_sample_errors"
)
