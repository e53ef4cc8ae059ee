package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Node table metrics
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shardsched_nodes_total",
			Help: "Total number of nodes known to the scheduler, by may-schedule eligibility",
		},
		[]string{"eligible"},
	)

	AttachedShardsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardsched_attached_shards_total",
			Help: "Total number of attached shard locations across all nodes",
		},
	)

	ShardLocationsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardsched_shard_locations_total",
			Help: "Total number of shard locations (attached + secondary) across all nodes",
		},
	)

	// Scheduling outcome metrics
	SchedulingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shardsched_schedule_duration_seconds",
			Help:    "Time taken by schedule_shard calls, by shard tag",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tag"},
	)

	SchedulingDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shardsched_schedule_decisions_total",
			Help: "Total number of schedule_shard outcomes, by tag and result",
		},
		[]string{"tag", "result"},
	)

	ConsistencyCheckFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shardsched_consistency_check_failures_total",
			Help: "Total number of consistency_check calls that detected a discrepancy",
		},
	)

	UnknownNodeUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shardsched_unknown_node_updates_total",
			Help: "Total number of update_ref_counts / node_remove calls referencing an unknown node id",
		},
	)

	// Shard store (Raft) metrics, polled from the shardstore.Store the
	// collector was given.
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardsched_shardstore_raft_is_leader",
			Help: "Whether this process is the shard store's Raft leader (1=leader, 0=follower)",
		},
	)

	RaftLogIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardsched_shardstore_raft_log_index",
			Help: "Current Raft log index of the shard store",
		},
	)

	RaftAppliedIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shardsched_shardstore_raft_applied_index",
			Help: "Last applied Raft log index of the shard store",
		},
	)
)

func init() {
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(AttachedShardsTotal)
	prometheus.MustRegister(ShardLocationsTotal)
	prometheus.MustRegister(SchedulingLatency)
	prometheus.MustRegister(SchedulingDecisionsTotal)
	prometheus.MustRegister(ConsistencyCheckFailuresTotal)
	prometheus.MustRegister(UnknownNodeUpdatesTotal)
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftLogIndex)
	prometheus.MustRegister(RaftAppliedIndex)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed duration to a plain histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram *prometheus.HistogramVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
