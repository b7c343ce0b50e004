package prometheus

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xesdoog/cotick/core"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("cotick", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordTickDuration("sched-a", 5*time.Millisecond)
	exporter.RecordTaskFinished("sched-a", core.StatusDone, 250*time.Millisecond)
	exporter.RecordTaskFinished("sched-a", core.StatusCancelled, time.Second)
	exporter.RecordTaskPanic("sched-a", "panic")
	exporter.RecordLiveTasks("sched-a", 7)

	doneTotal := testutil.ToFloat64(exporter.taskFinishedTotal.WithLabelValues("sched-a", "done"))
	if doneTotal != 1 {
		t.Fatalf("finished{done} = %v, want 1", doneTotal)
	}
	cancelledTotal := testutil.ToFloat64(exporter.taskFinishedTotal.WithLabelValues("sched-a", "cancelled"))
	if cancelledTotal != 1 {
		t.Fatalf("finished{cancelled} = %v, want 1", cancelledTotal)
	}

	panicTotal := testutil.ToFloat64(exporter.taskPanicTotal.WithLabelValues("sched-a"))
	if panicTotal != 1 {
		t.Fatalf("panic total = %v, want 1", panicTotal)
	}

	live := testutil.ToFloat64(exporter.liveTasks.WithLabelValues("sched-a"))
	if live != 7 {
		t.Fatalf("live tasks = %v, want 7", live)
	}

	if n := testutil.CollectAndCount(exporter.tickDurationSeconds, "cotick_tick_duration_seconds"); n != 1 {
		t.Fatalf("tick duration series = %d, want 1", n)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("cotick", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("cotick", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordTaskPanic("sched-a", nil)
	second.RecordTaskPanic("sched-a", nil)

	got := testutil.ToFloat64(first.taskPanicTotal.WithLabelValues("sched-a"))
	if got != 2 {
		t.Fatalf("shared panic counter = %v, want 2", got)
	}
}

func TestMetricsExporter_WiredIntoScheduler(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("cotick", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	s := core.NewSchedulerWithConfig("wired", &core.Config{
		Logger:  core.NewNoOpLogger(),
		Metrics: exporter,
	})
	s.Spawn("ok", func(tc *core.TaskContext) (any, error) { return nil, nil })
	s.Advance(0)

	finished := testutil.ToFloat64(exporter.taskFinishedTotal.WithLabelValues("wired", "done"))
	if finished != 1 {
		t.Fatalf("finished{wired,done} = %v, want 1", finished)
	}
	live := testutil.ToFloat64(exporter.liveTasks.WithLabelValues("wired"))
	if live != 0 {
		t.Fatalf("live{wired} = %v, want 0", live)
	}
}
