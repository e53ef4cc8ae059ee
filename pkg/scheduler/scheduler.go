package scheduler

import (
	"slices"

	"github.com/pageplane/shardsched/pkg/log"
	"github.com/pageplane/shardsched/pkg/metrics"
	"github.com/pageplane/shardsched/pkg/types"
	"github.com/rs/zerolog"
)

// Scheduler selects which node a tenant shard location should be placed on.
// It holds no persistent state of its own: it is rebuilt from the shard
// store at process startup via New plus one Attach/AddSecondary
// UpdateRefCounts call per existing intent entry, and kept in sync
// thereafter by the node registry (NodeUpsert/NodeRemove) and the shard
// store (UpdateRefCounts). All operations require exclusive access; the
// scheduler does not lock internally.
type Scheduler struct {
	nodes  map[NodeID]*schedulerNode
	logger zerolog.Logger
}

// New builds a node table from the node registry's current view of known
// nodes. Each entry starts with zero counters; MaySchedule is copied
// verbatim from the supplied descriptor.
func New(nodes []NodeDescriptor) *Scheduler {
	table := make(map[NodeID]*schedulerNode, len(nodes))
	for _, n := range nodes {
		table[n.ID] = &schedulerNode{maySchedule: n.MaySchedule}
	}
	return &Scheduler{
		nodes:  table,
		logger: log.WithComponent("scheduler"),
	}
}

// NodeUpsert inserts a newly-seen node, or refreshes an existing node's
// eligibility/utilization. When the refreshed value is schedulable, the
// incoming utilization's shard-count estimate is bumped up
// to at least the scheduler's own shardCount: the node registry's heartbeat
// may not yet reflect locations the scheduler already knows about.
func (s *Scheduler) NodeUpsert(n NodeDescriptor) {
	existing, ok := s.nodes[n.ID]
	if !ok {
		s.nodes[n.ID] = &schedulerNode{maySchedule: n.MaySchedule}
		return
	}

	maySchedule := n.MaySchedule
	if maySchedule.Eligible() {
		maySchedule.Utilization().AdjustShardCountMax(existing.shardCount)
	}
	existing.maySchedule = maySchedule
}

// NodeRemove erases a node's entry. It does not relocate any shards: the
// caller is presumed to have already moved any shards off the node. Removing
// an unknown node is tolerated and logged.
func (s *Scheduler) NodeRemove(id NodeID) {
	if _, ok := s.nodes[id]; !ok {
		metrics.UnknownNodeUpdatesTotal.Inc()
		s.logger.Warn().Stringer("node_id", id).Msg("removed non-existent node from scheduler")
		return
	}
	delete(s.nodes, id)
}

// UpdateRefCounts adjusts a node's counters to reflect a shard store intent
// change that has just been committed. Updates that add load bump the node's cached utilization
// shard-count estimate immediately; updates that remove load deliberately
// leave it stale until the node's next heartbeat, so the scheduler does not
// over-eagerly re-place work on a node whose detach has not physically
// completed yet. An unknown node id is logged and tolerated.
func (s *Scheduler) UpdateRefCounts(id NodeID, update RefCountUpdate) {
	node, ok := s.nodes[id]
	if !ok {
		metrics.UnknownNodeUpdatesTotal.Inc()
		s.logger.Error().Stringer("node_id", id).Msg("scheduler missing node")
		return
	}

	switch update {
	case types.Attach:
		node.shardCount++
		node.attachedShardCount++
	case types.Detach:
		node.shardCount--
		node.attachedShardCount--
	case types.AddSecondary:
		node.shardCount++
	case types.RemoveSecondary:
		node.shardCount--
	case types.PromoteSecondary:
		node.attachedShardCount++
	case types.DemoteAttached:
		node.attachedShardCount--
	}

	if update.AddsLoad() && node.maySchedule.Eligible() {
		node.maySchedule.Utilization().AdjustShardCountMax(node.shardCount)
	}
}

// NodePreferred picks a preferred member of a non-empty candidate set -
// typically the secondaries of one shard being considered for promotion -
// by returning the first member whose MaySchedule is eligible. It returns
// (zero, false) if the input is empty or every member is ineligible; the
// caller should fall back to some other selection strategy in that case.
func (s *Scheduler) NodePreferred(candidates []NodeID) (NodeID, bool) {
	for _, id := range candidates {
		node, ok := s.nodes[id]
		if ok && node.maySchedule.Eligible() {
			return id, true
		}
	}
	return 0, false
}

// ComputeFillRequirement returns how many additional attached shards id
// needs to reach the cluster average, or 0 if it is already at or above
// average. The node table must be non-empty.
func (s *Scheduler) ComputeFillRequirement(id NodeID) uint64 {
	node, ok := s.nodes[id]
	if !ok {
		s.logger.Error().Stringer("node_id", id).Msg("scheduler missing node")
		return 0
	}

	expected := s.ExpectedAttachedShardCount()
	for nodeID, n := range s.nodes {
		s.logger.Debug().
			Stringer("node_id", nodeID).
			Uint64("attached_shard_count", n.attachedShardCount).
			Uint64("shard_count", n.shardCount).
			Uint64("expected", expected).
			Msg("fill requirement trace")
	}

	if node.attachedShardCount < expected {
		return expected - node.attachedShardCount
	}
	return 0
}

// ExpectedAttachedShardCount returns the integer-divided cluster-wide
// average attached shard count, or 0 for an empty node table.
func (s *Scheduler) ExpectedAttachedShardCount() uint64 {
	if len(s.nodes) == 0 {
		return 0
	}
	var total uint64
	for _, n := range s.nodes {
		total += n.attachedShardCount
	}
	return total / uint64(len(s.nodes))
}

// NodeAttachedShardCount pairs every known node with its attached shard
// count, sorted by count descending.
func (s *Scheduler) NodeAttachedShardCount() []NodeSnapshot {
	out := make([]NodeSnapshot, 0, len(s.nodes))
	for id, n := range s.nodes {
		out = append(out, NodeSnapshot{
			ID:                 id,
			ShardCount:         n.shardCount,
			AttachedShardCount: n.attachedShardCount,
			Eligible:           n.maySchedule.Eligible(),
		})
	}
	slices.SortFunc(out, func(a, b NodeSnapshot) int {
		switch {
		case a.AttachedShardCount > b.AttachedShardCount:
			return -1
		case a.AttachedShardCount < b.AttachedShardCount:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Dump is a JSON-serializable snapshot of the scheduler's entire node table,
// suitable for printing or diffing against another dump.
type Dump struct {
	Nodes []NodeSnapshot `json:"nodes"`
}

// Dump returns a serializable snapshot of every known node's scheduler
// state, sorted by node id so two dumps of the same topology compare equal
// byte-for-byte regardless of map iteration order.
func (s *Scheduler) Dump() Dump {
	nodes := make([]NodeSnapshot, 0, len(s.nodes))
	for id, n := range s.nodes {
		nodes = append(nodes, NodeSnapshot{
			ID:                 id,
			ShardCount:         n.shardCount,
			AttachedShardCount: n.attachedShardCount,
			Eligible:           n.maySchedule.Eligible(),
		})
	}
	slices.SortFunc(nodes, func(a, b NodeSnapshot) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return Dump{Nodes: nodes}
}

// ScheduleAttached selects a node for an attached shard location. See
// scheduleShard for the shared selection algorithm.
func (s *Scheduler) ScheduleAttached(hardExclude []NodeID, ctx *ScheduleContext) (NodeID, error) {
	return scheduleShard(s, generateAttachedScore, "attached", hardExclude, ctx)
}

// ScheduleSecondary selects a node for a secondary shard location. See
// scheduleShard for the shared selection algorithm.
func (s *Scheduler) ScheduleSecondary(hardExclude []NodeID, ctx *ScheduleContext) (NodeID, error) {
	return scheduleShard(s, generateSecondaryScore, "secondary", hardExclude, ctx)
}

// score is implemented by AttachedScore and SecondaryScore: the two
// totally-ordered scoring types scheduleShard is generic over.
type score[S any] interface {
	Less(other S) bool
	Overloaded() bool
	Node() NodeID
}

// scheduleShard is the single selection algorithm behind ScheduleAttached
// and ScheduleSecondary, parameterized by the scoring function for the
// shard tag in play. It does not mutate any counters: the caller commits
// the placement into its own intent representation and then calls
// UpdateRefCounts. This split lets the same function be used speculatively
// (to probe "where would this go?") without corrupting scheduler state.
//
// Ordering is significant and must not be reordered: hard-exclusion first,
// overload filtering second, sort last.
func scheduleShard[S score[S]](
	s *Scheduler,
	generate func(NodeID, *schedulerNode, *ScheduleContext) (S, bool),
	tag string,
	hardExclude []NodeID,
	ctx *ScheduleContext,
) (NodeID, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.SchedulingLatency, tag)

	if len(s.nodes) == 0 {
		metrics.SchedulingDecisionsTotal.WithLabelValues(tag, "no_pageservers").Inc()
		return 0, ErrNoPageservers
	}

	scores := make([]S, 0, len(s.nodes))
	for id, n := range s.nodes {
		if slices.Contains(hardExclude, id) {
			continue
		}
		if sc, ok := generate(id, n, ctx); ok {
			scores = append(scores, sc)
		}
	}

	nonOverloaded := make([]S, 0, len(scores))
	for _, sc := range scores {
		if !sc.Overloaded() {
			nonOverloaded = append(nonOverloaded, sc)
		}
	}
	if len(nonOverloaded) > 0 {
		scores = nonOverloaded
	}

	slices.SortFunc(scores, func(a, b S) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})

	if len(scores) == 0 {
		metrics.SchedulingDecisionsTotal.WithLabelValues(tag, "impossible_constraint").Inc()
		if ctx.Mode() != Speculative {
			s.logger.Info().
				Interface("hard_exclude", hardExclude).
				Msg("scheduling failure, node states follow")
			for id, n := range s.nodes {
				s.logger.Info().
					Stringer("node_id", id).
					Bool("eligible", n.maySchedule.Eligible()).
					Uint64("shard_count", n.shardCount).
					Msg("node state")
			}
		}
		return 0, ErrImpossibleConstraint
	}

	winner := scores[0].Node()
	metrics.SchedulingDecisionsTotal.WithLabelValues(tag, "ok").Inc()

	if ctx.Mode() != Speculative {
		s.logger.Info().
			Stringer("node_id", winner).
			Interface("hard_exclude", hardExclude).
			Int("eligible_candidates", len(scores)).
			Msg("scheduler selected node")
	}

	return winner, nil
}
