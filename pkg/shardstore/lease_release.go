//go:build !debug

package shardstore

// watchLease is a no-op in non-debug builds; see lease_debug.go.
func watchLease(*IntentLease) {}
