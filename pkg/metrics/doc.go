/*
Package metrics defines and registers every Prometheus metric this module
exposes, plus a small health-check surface used by the CLI's
serve-metrics command.

All metrics are package-level prometheus client_golang vars, registered in
init() via prometheus.MustRegister, following the same pattern the
scheduler's own logging uses: a handful of globals any package can reach
without being handed a registry.

# Metrics Catalog

Node table:

	shardsched_nodes_total{eligible}        - Gauge: known nodes by eligibility
	shardsched_attached_shards_total        - Gauge: attached shard locations
	shardsched_shard_locations_total        - Gauge: attached + secondary locations

Scheduling outcomes:

	shardsched_schedule_duration_seconds{tag}   - Histogram: schedule_shard latency
	shardsched_schedule_decisions_total{tag,result} - Counter: ok / no_pageservers / impossible_constraint
	shardsched_consistency_check_failures_total     - Counter
	shardsched_unknown_node_updates_total           - Counter

Shard store (Raft):

	shardsched_shardstore_raft_is_leader       - Gauge: 1 if this process is leader
	shardsched_shardstore_raft_log_index       - Gauge
	shardsched_shardstore_raft_applied_index   - Gauge

# Collector

Collector polls a node registry and a shard store on a ticker and
republishes what it finds as shardsched_nodes_total and the three Raft
gauges above, rather than requiring every call site to update them inline.
It does not set shardsched_attached_shards_total or
shardsched_shard_locations_total. It depends on two narrow interfaces
(nodeCounter, raftStats) rather than importing pkg/registry or
pkg/shardstore directly, since both of those already import this package
indirectly through pkg/scheduler.

# Health

HealthHandler, ReadyHandler, and LivenessHandler serve /health, /ready, and
/live. Readiness additionally requires the "raft" and "registry" components
to have been registered healthy via RegisterComponent - the two
collaborators a running control plane cannot make progress without.
*/
package metrics
