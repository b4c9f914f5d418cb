package timemath

import (
	"math"
	"slices"
	"time"
)

func Duration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func Seconds(d time.Duration) float64 {
	return float64(d) / float64(time.Second)
}

func DurationFromMillis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func Abs(d time.Duration) time.Duration {
	if d == math.MinInt64 {
		panic("unexpected duration value")
	}
	if d < 0 {
		return -d
	}
	return d
}

func Midpoint(x, y time.Duration) time.Duration {
	return x + (y-x)/2.0
}

func Median(ds []time.Duration) time.Duration {
	n := len(ds)
	if n == 0 {
		panic("unexpected number of values")
	}
	slices.Sort(ds)
	i := n / 2
	if n%2 != 0 {
		return ds[i]
	}
	return Midpoint(ds[i-1], ds[i])
}

func FaultTolerantMidpoint(ds []time.Duration) time.Duration {
	n := len(ds)
	if n == 0 {
		panic("unexpected number of values")
	}
	slices.Sort(ds)
	f := (n - 1) / 3
	return Midpoint(ds[f], ds[n-1-f])
}
