package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nimbusbi/timefact/pkg/eventbus"
)

// MetricsRecorder exposes run counters on the Prometheus registry and
// keeps them updated from SyncCompletedEvent.
type MetricsRecorder struct {
	runsTotal    prometheus.Counter
	rowsAppended *prometheus.CounterVec
	runSeconds   prometheus.Histogram
}

func NewMetricsRecorder(registerer prometheus.Registerer) *MetricsRecorder {
	r := &MetricsRecorder{
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timefact_sync_runs_total",
			Help: "Completed synchronization runs.",
		}),
		rowsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timefact_sync_rows_appended_total",
			Help: "Fact rows appended, by fact table.",
		}, []string{"table"}),
		runSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timefact_sync_run_duration_seconds",
			Help:    "Wall-clock duration of synchronization runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	if registerer != nil {
		registerer.MustRegister(r.runsTotal, r.rowsAppended, r.runSeconds)
	}
	return r
}

// Subscribe attaches the recorder to the event bus.
func (r *MetricsRecorder) Subscribe(bus eventbus.EventBus) {
	bus.Subscribe(r.OnSyncCompleted)
}

func (r *MetricsRecorder) OnSyncCompleted(ev *SyncCompletedEvent) {
	r.runsTotal.Inc()
	r.rowsAppended.WithLabelValues("Fact_Imputaciones").Add(float64(ev.Result.ImputationsAdded))
	r.rowsAppended.WithLabelValues("Fact_Fichajes").Add(float64(ev.Result.AttendanceAdded))
	r.runSeconds.Observe(ev.Result.Elapsed.Seconds())
}
