package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/xesdoog/cotick/core"
)

// StatsProvider provides current scheduler stats snapshots.
// *core.Scheduler satisfies it.
type StatsProvider interface {
	Stats() core.SchedulerStats
}

// SnapshotPoller periodically exports Stats() snapshots into Prometheus
// gauges. Stats reads are atomic on the scheduler side, so polling from
// this background goroutine is safe while the host loop keeps ticking.
type SnapshotPoller struct {
	interval time.Duration

	schedulersMu sync.RWMutex
	schedulers   map[string]StatsProvider

	live      *prom.GaugeVec
	paused    *prom.GaugeVec
	spawned   *prom.GaugeVec
	finished  *prom.GaugeVec
	cancelled *prom.GaugeVec
	ticks     *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	live := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cotick",
		Name:      "scheduler_live_tasks",
		Help:      "Live task count per scheduler.",
	}, []string{"scheduler"})
	paused := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cotick",
		Name:      "scheduler_paused_tasks",
		Help:      "Paused task count per scheduler.",
	}, []string{"scheduler"})
	spawned := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cotick",
		Name:      "scheduler_spawned_total",
		Help:      "Spawned task count snapshot.",
	}, []string{"scheduler"})
	finished := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cotick",
		Name:      "scheduler_finished_total",
		Help:      "Normally finished task count snapshot.",
	}, []string{"scheduler"})
	cancelled := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cotick",
		Name:      "scheduler_cancelled_total",
		Help:      "Cancelled task count snapshot.",
	}, []string{"scheduler"})
	ticks := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cotick",
		Name:      "scheduler_ticks_total",
		Help:      "Advance call count snapshot.",
	}, []string{"scheduler"})

	var err error
	if live, err = registerCollector(reg, live); err != nil {
		return nil, err
	}
	if paused, err = registerCollector(reg, paused); err != nil {
		return nil, err
	}
	if spawned, err = registerCollector(reg, spawned); err != nil {
		return nil, err
	}
	if finished, err = registerCollector(reg, finished); err != nil {
		return nil, err
	}
	if cancelled, err = registerCollector(reg, cancelled); err != nil {
		return nil, err
	}
	if ticks, err = registerCollector(reg, ticks); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:   interval,
		schedulers: make(map[string]StatsProvider),
		live:       live,
		paused:     paused,
		spawned:    spawned,
		finished:   finished,
		cancelled:  cancelled,
		ticks:      ticks,
	}, nil
}

// AddScheduler adds or replaces a stats provider by name.
func (p *SnapshotPoller) AddScheduler(name string, provider StatsProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "scheduler")
	p.schedulersMu.Lock()
	p.schedulers[name] = provider
	p.schedulersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.schedulersMu.RLock()
	defer p.schedulersMu.RUnlock()

	for name, provider := range p.schedulers {
		stats := provider.Stats()
		p.live.WithLabelValues(name).Set(float64(stats.Live))
		p.paused.WithLabelValues(name).Set(float64(stats.Paused))
		p.spawned.WithLabelValues(name).Set(float64(stats.Spawned))
		p.finished.WithLabelValues(name).Set(float64(stats.Finished))
		p.cancelled.WithLabelValues(name).Set(float64(stats.Cancelled))
		p.ticks.WithLabelValues(name).Set(float64(stats.Ticks))
	}
}
