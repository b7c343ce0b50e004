package prometheus

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/xesdoog/cotick/core"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	TickDurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	tickDurationSeconds *prom.HistogramVec
	taskFinishedTotal   *prom.CounterVec
	taskPanicTotal      *prom.CounterVec
	liveTasks           *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for
// core.Metrics. Registering twice against the same registry reuses the
// existing collectors.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "cotick"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.TickDurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	tickVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_duration_seconds",
		Help:      "Wall time spent in one scheduler Advance call.",
		Buckets:   buckets,
	}, []string{"scheduler"})
	finishedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_finished_total",
		Help:      "Total number of tasks removed, by terminal status.",
	}, []string{"scheduler", "status"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of task body panics.",
	}, []string{"scheduler"})
	liveVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "live_tasks",
		Help:      "Live task count after the most recent tick.",
	}, []string{"scheduler"})

	var err error
	if tickVec, err = registerCollector(reg, tickVec); err != nil {
		return nil, err
	}
	if finishedVec, err = registerCollector(reg, finishedVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if liveVec, err = registerCollector(reg, liveVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		tickDurationSeconds: tickVec,
		taskFinishedTotal:   finishedVec,
		taskPanicTotal:      panicVec,
		liveTasks:           liveVec,
	}, nil
}

// RecordTickDuration records the wall time of one Advance call.
func (m *MetricsExporter) RecordTickDuration(schedulerName string, duration time.Duration) {
	if m == nil {
		return
	}
	m.tickDurationSeconds.WithLabelValues(normalizeLabel(schedulerName, "unknown")).Observe(duration.Seconds())
}

// RecordTaskFinished records a task removal by terminal status.
func (m *MetricsExporter) RecordTaskFinished(schedulerName string, status core.Status, lifetime time.Duration) {
	if m == nil {
		return
	}
	m.taskFinishedTotal.WithLabelValues(normalizeLabel(schedulerName, "unknown"), status.String()).Inc()
}

// RecordTaskPanic records a task body panic.
func (m *MetricsExporter) RecordTaskPanic(schedulerName string, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(schedulerName, "unknown")).Inc()
}

// RecordLiveTasks records the live-task count after a tick.
func (m *MetricsExporter) RecordLiveTasks(schedulerName string, n int) {
	if m == nil {
		return
	}
	m.liveTasks.WithLabelValues(normalizeLabel(schedulerName, "unknown")).Set(float64(n))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
