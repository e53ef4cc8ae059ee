//go:build debug

package shardstore

import "runtime"

// watchLease installs a finalizer that panics if l is garbage collected
// without Release having been called. Only built into debug builds
// (-tags debug): the finalizer machinery has a real cost and production
// reconcile code is expected to already be covered by tests that would
// catch a missing Release.
func watchLease(l *IntentLease) {
	runtime.SetFinalizer(l, func(l *IntentLease) {
		if !l.released {
			panic("shardstore: intent lease for shard " + l.shardID + " was never released")
		}
	})
}
