package scheduler

// AffinityScore is a non-negative, additive anti-affinity penalty: lower is
// better, and FREE means the scheduler has no preference at all against a
// node for the tenant currently being scheduled.
type AffinityScore uint64

// FREE is the affinity score of a node the caller has expressed no
// anti-affinity toward.
const FREE AffinityScore = 0

func (a AffinityScore) inc() AffinityScore {
	return a + 1
}

// ScheduleMode hints whether a ScheduleAttached/ScheduleSecondary call is a
// real placement
// attempt or a speculative probe (e.g. from an optimizer asking "where would
// this go?"). Speculative calls suppress the diagnostic logging that a real
// scheduling failure would otherwise emit.
type ScheduleMode int

const (
	// Normal is a sincere attempt to schedule a shard that will be committed.
	Normal ScheduleMode = iota
	// Speculative is a probe that will not be committed.
	Speculative
)

// ScheduleContext accumulates soft-constraint state across the sequence of
// ScheduleAttached/ScheduleSecondary calls made for one batch of related
// placements - typically
// every shard location belonging to one tenant. It is caller-owned and
// transient: it carries no identity of its own beyond the lifetime of the
// batch it is used for.
type ScheduleContext struct {
	nodes         map[NodeID]AffinityScore
	attachedNodes map[NodeID]int
	mode          ScheduleMode
}

// NewScheduleContext returns an empty context in Normal mode.
func NewScheduleContext() *ScheduleContext {
	return &ScheduleContext{mode: Normal}
}

// NewSpeculativeContext returns an empty context in Speculative mode, for
// probing placements that will not be committed.
func NewSpeculativeContext() *ScheduleContext {
	return &ScheduleContext{mode: Speculative}
}

// Avoid records that each of the given nodes should be increasingly
// disfavored within this batch: the more times a node is passed here, the
// higher its affinity score climbs.
func (c *ScheduleContext) Avoid(nodeIDs []NodeID) {
	if c.nodes == nil {
		c.nodes = make(map[NodeID]AffinityScore, len(nodeIDs))
	}
	for _, id := range nodeIDs {
		c.nodes[id] = c.nodes[id].inc()
	}
}

// PushAttached records that an attached location for this batch's tenant
// was placed on nodeID, so that further attached placements within the same
// batch deprioritize that node.
func (c *ScheduleContext) PushAttached(nodeID NodeID) {
	if c.attachedNodes == nil {
		c.attachedNodes = make(map[NodeID]int, 1)
	}
	c.attachedNodes[nodeID]++
}

// NodeAffinity returns the current affinity score for nodeID, FREE if absent.
func (c *ScheduleContext) NodeAffinity(nodeID NodeID) AffinityScore {
	if c.nodes == nil {
		return FREE
	}
	return c.nodes[nodeID]
}

// NodeAttachments returns how many attached locations of this batch's
// tenant are already recorded on nodeID within this context.
func (c *ScheduleContext) NodeAttachments(nodeID NodeID) int {
	if c.attachedNodes == nil {
		return 0
	}
	return c.attachedNodes[nodeID]
}

// Mode reports whether this context is Normal or Speculative.
func (c *ScheduleContext) Mode() ScheduleMode {
	return c.mode
}
