package shardstore

// IntentLease represents exclusive ownership of one shard's placement
// intent for the duration of a reconcile attempt: whoever holds the lease
// is the only party allowed to propose a change to that shard until they
// release it. The shard store does not enforce this itself (it has no
// notion of "in-flight reconcile"); IntentLease exists so reconcile code has
// a single, named thing to hold and release, instead of passing a bare
// shard id around and hoping every call site remembers to let go of it.
//
// Go has no destructors to panic when a guard value goes out of scope
// unconsumed, so AcquireLease installs a debug-build-only finalizer (see
// lease_debug.go) that catches the same class of leak without paying for it
// in production builds.
type IntentLease struct {
	shardID  string
	released bool
}

// AcquireLease claims shardID for the caller. The caller must call Release
// exactly once.
func (s *Store) AcquireLease(shardID string) *IntentLease {
	l := &IntentLease{shardID: shardID}
	watchLease(l)
	return l
}

// Release marks the lease as done. Safe to call more than once.
func (l *IntentLease) Release() {
	l.released = true
}

// ShardID returns the shard this lease was acquired for.
func (l *IntentLease) ShardID() string {
	return l.shardID
}
