package shardstore

import (
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/pageplane/shardsched/pkg/types"
)

var bucketIntents = []byte("shard_intents")

// errNotFound is returned internally by get; callers of the public API see
// it only as a (ShardRecord{}, false) return via Store.Get.
var errNotFound = errors.New("shard intent not found")

// ShardRecord is one tenant shard's current placement intent.
type ShardRecord struct {
	ShardID     string         `json:"shard_id"`
	Attached    types.NodeID   `json:"attached"`
	HasAttached bool           `json:"has_attached"`
	Secondaries []types.NodeID `json:"secondaries"`
}

// boltIntentStore is a bucket-per-entity, JSON-per-key storage layer
// underneath FSM.
type boltIntentStore struct {
	db *bolt.DB
}

func newBoltIntentStore(path string) (*boltIntentStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketIntents)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &boltIntentStore{db: db}, nil
}

func (s *boltIntentStore) close() error {
	return s.db.Close()
}

func (s *boltIntentStore) get(shardID string) (*ShardRecord, error) {
	var record *ShardRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketIntents).Get([]byte(shardID))
		if data == nil {
			return errNotFound
		}
		record = &ShardRecord{}
		return json.Unmarshal(data, record)
	})
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	return record, err
}

func (s *boltIntentStore) put(r *ShardRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketIntents).Put([]byte(r.ShardID), data)
	})
}

// mutate loads shardID's current record (or a fresh zero-value one), applies
// fn, and persists the result. fn runs under the FSM's lock, so it never
// needs to worry about concurrent mutation of the same record.
func (s *boltIntentStore) mutate(shardID string, fn func(*ShardRecord)) error {
	existing, err := s.get(shardID)
	if err != nil {
		return err
	}
	if existing == nil {
		existing = &ShardRecord{ShardID: shardID}
	}
	fn(existing)
	return s.put(existing)
}

func (s *boltIntentStore) list() ([]*ShardRecord, error) {
	var records []*ShardRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIntents).ForEach(func(_, v []byte) error {
			var r ShardRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			records = append(records, &r)
			return nil
		})
	})
	return records, err
}
