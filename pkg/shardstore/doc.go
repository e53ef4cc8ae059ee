// Package shardstore replicates tenant shard placement intents across a
// Raft group, keyed by shard id, and persists the current committed state
// to a local bolt database.
//
// shardstore is the thing callers propose changes to; pkg/scheduler only
// ever sees the result via Store.Intents feeding Scheduler.ConsistencyCheck,
// and via Scheduler.UpdateRefCounts being called once a propose succeeds.
// shardstore itself knows nothing about scoring or node selection.
package shardstore
