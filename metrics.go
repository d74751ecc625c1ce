package inject

import (
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// Metric names recorded by a container.
const (
	MetricResolveOK    = "resolve.ok"
	MetricResolveError = "resolve.error"
	MetricResolveTime  = "resolve.time"
)

type resolveMetrics struct {
	registry metrics.Registry
	ok       metrics.Counter
	failed   metrics.Counter
	timer    metrics.Timer
}

func newResolveMetrics(r metrics.Registry) *resolveMetrics {
	return &resolveMetrics{
		registry: r,
		ok:       metrics.GetOrRegisterCounter(MetricResolveOK, r),
		failed:   metrics.GetOrRegisterCounter(MetricResolveError, r),
		timer:    metrics.GetOrRegisterTimer(MetricResolveTime, r),
	}
}

func (m *resolveMetrics) resolved(d time.Duration, err error) {
	m.timer.Update(d)
	if err != nil {
		m.failed.Inc(1)
		return
	}
	m.ok.Inc(1)
}

// served counts a repository hit or miss as repository.<scope>.hit or .miss.
func (m *resolveMetrics) served(scope ScopeID, hit bool) {
	name := "repository." + string(scope) + ".miss"
	if hit {
		name = "repository." + string(scope) + ".hit"
	}
	metrics.GetOrRegisterCounter(name, m.registry).Inc(1)
}
