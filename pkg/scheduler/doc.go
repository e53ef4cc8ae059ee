/*
Package scheduler selects which storage node a tenant shard location should
live on: attached (the node currently serving reads/writes for that shard)
or secondary (a warm standby holding a local copy for fast failover).

The scheduler itself does no I/O and runs no background loop. It is a pure
in-memory decision function over a node table its caller keeps in sync: the
node registry drives NodeUpsert/NodeRemove as nodes report in, and the shard
store drives UpdateRefCounts as placement intents are committed. Callers are
expected to serialize access to one Scheduler; it does not lock internally.

# Architecture

	┌──────────────────┐   heartbeats    ┌───────────────┐
	│  node registry   │ ───────────────▶│   Scheduler   │
	└──────────────────┘                 │ (in-memory,   │
	┌──────────────────┐  committed      │  no locking,  │
	│   shard store    │ ───intents─────▶│  no I/O)      │
	└──────────────────┘                 └───────┬───────┘
	                                              │ ScheduleAttached /
	                                              │ ScheduleSecondary
	                                              ▼
	                                      chosen NodeID, or
	                                      ErrNoPageservers /
	                                      ErrImpossibleConstraint

# Core Components

Scheduler: the node table plus the two placement entry points.

	sched := scheduler.New(registry.Snapshot())
	ctx := scheduler.NewScheduleContext()
	nodeID, err := sched.ScheduleAttached(nil, ctx)
	if err != nil {
		return err
	}
	// persist the intent, then:
	sched.UpdateRefCounts(nodeID, types.Attach)

ScheduleContext: soft-constraint accumulator for one batch of related
placements, typically every location belonging to one tenant shard's
attached-plus-secondaries set. Call Avoid to deprioritize nodes already
holding a conflicting replica (e.g. a different shard of the same tenant),
and PushAttached after each attached placement so subsequent placements in
the same batch spread out.

# Scoring

Candidate nodes are hard-excluded first (explicit exclusion list, or
ineligible per the node registry), then overload-filtered (an overloaded
node is only used if every alternative is also overloaded), then sorted by
a totally-ordered score. For an attached location the fields are compared in
this order: soft-affinity penalty, in-batch attached count, cached
utilization, cluster-wide attached count, node id. A secondary location's
score omits the in-batch attached count. Node id is always the final
tiebreak, which is what makes scheduling decisions deterministic for a given
node table and context.

This ordering is load-bearing: hard-exclusion, then overload filtering, then
sort, and never any other sequence — overload filtering that ran before
hard-exclusion would let an explicitly-excluded node "absorb" an overload
verdict meant for a real candidate.

# Counter Bookkeeping

UpdateRefCounts keeps the scheduler's per-node shard counters in lockstep
with whatever the shard store just committed. Updates that add load
(Attach, AddSecondary) immediately bump the node's cached utilization
shard-count estimate, so a rapid burst of placements spreads across nodes
even before the next heartbeat arrives. Updates that remove load
deliberately do not touch the cached estimate: the scheduler waits for the
node registry's next heartbeat to confirm the location is actually gone,
rather than risk over-eagerly piling new work onto a node whose detach
hasn't physically completed.

# Consistency Checking

ConsistencyCheck is an offline diagnostic, not something the scheduler calls
on its own: it replays a shard store's intents against a node set and
reports any discrepancy with the scheduler's live counters. Run it
periodically, or after a suspected bug, to catch counter drift before it
causes bad placement decisions.

# Non-goals

The scheduler does not decide *when* to reschedule, does not talk to
storage nodes, and does not persist anything. Those are the node registry's
and shard store's jobs; see pkg/registry and pkg/shardstore.
*/
package scheduler
