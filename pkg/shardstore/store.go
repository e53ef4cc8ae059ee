// Package shardstore is the durable, replicated source of truth for tenant
// shard placement intents: which node holds the attached location for a
// shard, and which nodes hold its secondaries. It is the shard store
// collaborator the scheduler package's doc comments refer to.
//
// Every mutation goes through Raft: callers never write to the bolt-backed
// intent table directly, they propose a command and wait for it to commit.
package shardstore

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	"github.com/pageplane/shardsched/pkg/log"
	"github.com/pageplane/shardsched/pkg/scheduler"
	"github.com/pageplane/shardsched/pkg/types"
	"github.com/rs/zerolog"
)

// Store is a Raft-replicated table of tenant shard placement intents.
type Store struct {
	nodeID   string
	bindAddr string
	dataDir  string

	raft    *raft.Raft
	fsm     *FSM
	intents *boltIntentStore
	logger  zerolog.Logger
}

// Config configures a Store.
type Config struct {
	// NodeID is this store's Raft server ID.
	NodeID string
	// BindAddr is the address Raft listens on for replication traffic.
	BindAddr string
	// DataDir holds the intent database, Raft log, and snapshots.
	DataDir string
}

// New opens (creating if necessary) a shard store rooted at cfg.DataDir. The
// returned Store is not yet part of a Raft cluster; call Bootstrap to form a
// new single-node cluster, or join it to an existing one out of band.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	intents, err := newBoltIntentStore(filepath.Join(cfg.DataDir, "intents.db"))
	if err != nil {
		return nil, fmt.Errorf("open intent store: %w", err)
	}

	return &Store{
		nodeID:   cfg.NodeID,
		bindAddr: cfg.BindAddr,
		dataDir:  cfg.DataDir,
		fsm:      newFSM(intents),
		intents:  intents,
		logger:   log.WithComponent("shardstore"),
	}, nil
}

// Bootstrap forms a new single-node Raft cluster with this store as its only
// member. Tuned for the same fast-failover targets as the node registry's
// heartbeat cadence: a lost leader should be detected and re-elected in low
// single-digit seconds, not the multi-second defaults tuned for WAN
// deployments.
func (s *Store) Bootstrap() error {
	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(s.nodeID)
	config.HeartbeatTimeout = 500 * time.Millisecond
	config.ElectionTimeout = 500 * time.Millisecond
	config.LeaderLeaseTimeout = 250 * time.Millisecond

	addr, err := net.ResolveTCPAddr("tcp", s.bindAddr)
	if err != nil {
		return fmt.Errorf("resolve bind address: %w", err)
	}
	transport, err := raft.NewTCPTransport(s.bindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return fmt.Errorf("create transport: %w", err)
	}

	snapshotStore, err := raft.NewFileSnapshotStore(s.dataDir, 2, os.Stderr)
	if err != nil {
		return fmt.Errorf("create snapshot store: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(s.dataDir, "raft-log.db"))
	if err != nil {
		return fmt.Errorf("create log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(s.dataDir, "raft-stable.db"))
	if err != nil {
		return fmt.Errorf("create stable store: %w", err)
	}

	r, err := raft.NewRaft(config, s.fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return fmt.Errorf("create raft: %w", err)
	}
	s.raft = r

	future := r.BootstrapCluster(raft.Configuration{
		Servers: []raft.Server{{ID: config.LocalID, Address: transport.LocalAddr()}},
	})
	return future.Error()
}

// IsLeader reports whether this store is currently the Raft leader.
func (s *Store) IsLeader() bool {
	return s.raft.State() == raft.Leader
}

// Stats exposes a handful of Raft stats useful for monitoring: the last log
// index and the last applied index. Both are parsed from raft.Raft's own
// stats map, which reports them as decimal strings.
func (s *Store) Stats() (lastLogIndex, appliedIndex uint64) {
	stats := s.raft.Stats()
	lastLogIndex, _ = strconv.ParseUint(stats["last_log_index"], 10, 64)
	appliedIndex, _ = strconv.ParseUint(stats["applied_index"], 10, 64)
	return lastLogIndex, appliedIndex
}

// Close closes the intent database. It does not shut down Raft or close
// the Raft log and stable stores;
// callers that bootstrapped a cluster should shut down raft.Raft themselves
// first.
func (s *Store) Close() error {
	return s.intents.close()
}

// propose commits one op against shardID. It holds shardID's intent lease
// for the duration of the Raft round trip. Acquiring a lease never blocks,
// so two goroutines proposing for the same shard are not serialized by it.
func (s *Store) propose(shardID, op string, payload any) error {
	lease := s.AcquireLease(shardID)
	defer lease.Release()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	cmd, err := json.Marshal(Command{Op: op, Data: data})
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	future := s.raft.Apply(cmd, 5*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("raft apply: %w", err)
	}
	if resp := future.Response(); resp != nil {
		if applyErr, ok := resp.(error); ok {
			return applyErr
		}
	}
	return nil
}

// Attach commits a new attached location for shardID.
func (s *Store) Attach(shardID string, node types.NodeID) error {
	return s.propose(shardID, opAttach, nodePayload{ShardID: shardID, NodeID: node})
}

// Detach commits the removal of shardID's attached location.
func (s *Store) Detach(shardID string) error {
	return s.propose(shardID, opDetach, nodePayload{ShardID: shardID})
}

// AddSecondary commits a new secondary location for shardID on node.
func (s *Store) AddSecondary(shardID string, node types.NodeID) error {
	return s.propose(shardID, opAddSecondary, nodePayload{ShardID: shardID, NodeID: node})
}

// RemoveSecondary commits the removal of a secondary location from node.
func (s *Store) RemoveSecondary(shardID string, node types.NodeID) error {
	return s.propose(shardID, opRemoveSecondary, nodePayload{ShardID: shardID, NodeID: node})
}

// PromoteSecondary commits node's promotion from secondary to attached for
// shardID. Node is expected to already hold a secondary location.
func (s *Store) PromoteSecondary(shardID string, node types.NodeID) error {
	return s.propose(shardID, opPromoteSecondary, nodePayload{ShardID: shardID, NodeID: node})
}

// DemoteAttached commits shardID's current attached node's demotion to a
// secondary location.
func (s *Store) DemoteAttached(shardID string, node types.NodeID) error {
	return s.propose(shardID, opDemoteAttached, nodePayload{ShardID: shardID, NodeID: node})
}

// Get returns shardID's current intent, if any is recorded.
func (s *Store) Get(shardID string) (ShardRecord, bool) {
	r, err := s.intents.get(shardID)
	if err != nil || r == nil {
		return ShardRecord{}, false
	}
	return *r, true
}

// List returns every recorded shard intent.
func (s *Store) List() ([]ShardRecord, error) {
	records, err := s.intents.list()
	if err != nil {
		return nil, err
	}
	out := make([]ShardRecord, 0, len(records))
	for _, r := range records {
		out = append(out, *r)
	}
	return out, nil
}

// Intents projects every recorded shard into the shape
// scheduler.ConsistencyCheck expects.
func (s *Store) Intents() ([]scheduler.ShardIntent, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make([]scheduler.ShardIntent, 0, len(records))
	for _, r := range records {
		out = append(out, scheduler.ShardIntent{
			ShardID:     r.ShardID,
			Attached:    r.Attached,
			HasAttached: r.HasAttached,
			Secondaries: append([]types.NodeID(nil), r.Secondaries...),
		})
	}
	return out, nil
}
