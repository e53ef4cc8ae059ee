package shardstore

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/raft"
	"github.com/pageplane/shardsched/pkg/types"
)

// Command represents one committed change to a shard's placement intent.
type Command struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

const (
	opAttach           = "attach"
	opDetach           = "detach"
	opAddSecondary     = "add_secondary"
	opRemoveSecondary  = "remove_secondary"
	opPromoteSecondary = "promote_secondary"
	opDemoteAttached   = "demote_attached"
)

// nodePayload is the Command payload shape shared by every op: a shard id
// and, where relevant, the node the op applies to.
type nodePayload struct {
	ShardID string       `json:"shard_id"`
	NodeID  types.NodeID `json:"node_id"`
}

// FSM applies committed shard-placement commands to the bolt-backed intent
// table.
type FSM struct {
	mu    sync.RWMutex
	store *boltIntentStore
}

func newFSM(store *boltIntentStore) *FSM {
	return &FSM{store: store}
}

// Apply applies one committed Raft log entry to the intent table.
func (f *FSM) Apply(l *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(l.Data, &cmd); err != nil {
		return fmt.Errorf("unmarshal command: %w", err)
	}
	var p nodePayload
	if err := json.Unmarshal(cmd.Data, &p); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd.Op {
	case opAttach:
		return f.store.mutate(p.ShardID, func(r *ShardRecord) {
			r.Attached, r.HasAttached = p.NodeID, true
		})
	case opDetach:
		return f.store.mutate(p.ShardID, func(r *ShardRecord) {
			r.Attached, r.HasAttached = 0, false
		})
	case opAddSecondary:
		return f.store.mutate(p.ShardID, func(r *ShardRecord) {
			r.Secondaries = appendNode(r.Secondaries, p.NodeID)
		})
	case opRemoveSecondary:
		return f.store.mutate(p.ShardID, func(r *ShardRecord) {
			r.Secondaries = removeNode(r.Secondaries, p.NodeID)
		})
	case opPromoteSecondary:
		return f.store.mutate(p.ShardID, func(r *ShardRecord) {
			r.Secondaries = removeNode(r.Secondaries, p.NodeID)
			r.Attached, r.HasAttached = p.NodeID, true
		})
	case opDemoteAttached:
		return f.store.mutate(p.ShardID, func(r *ShardRecord) {
			r.Attached, r.HasAttached = 0, false
			r.Secondaries = appendNode(r.Secondaries, p.NodeID)
		})
	default:
		return fmt.Errorf("unknown command: %s", cmd.Op)
	}
}

// Snapshot captures every recorded shard intent for Raft log compaction.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	records, err := f.store.list()
	if err != nil {
		return nil, fmt.Errorf("list intents: %w", err)
	}
	return &fsmSnapshot{records: records}, nil
}

// Restore replaces the intent table's contents from a prior snapshot.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()
	var records []*ShardRecord
	if err := json.NewDecoder(rc).Decode(&records); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		if err := f.store.put(r); err != nil {
			return fmt.Errorf("restore shard %s: %w", r.ShardID, err)
		}
	}
	return nil
}

type fsmSnapshot struct {
	records []*ShardRecord
}

func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if err := json.NewEncoder(sink).Encode(s.records); err != nil {
			return err
		}
		return sink.Close()
	}()
	if err != nil {
		sink.Cancel()
	}
	return err
}

func (s *fsmSnapshot) Release() {}

func appendNode(nodes []types.NodeID, n types.NodeID) []types.NodeID {
	for _, existing := range nodes {
		if existing == n {
			return nodes
		}
	}
	return append(nodes, n)
}

func removeNode(nodes []types.NodeID, n types.NodeID) []types.NodeID {
	out := nodes[:0]
	for _, existing := range nodes {
		if existing != n {
			out = append(out, existing)
		}
	}
	return out
}
