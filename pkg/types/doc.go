/*
Package types defines the contract types the scheduler shares with its two
collaborators: a node registry (supplies node identity, eligibility and
utilization) and a tenant-shard store (owns shard intents and commits
reference-count updates).

Neither collaborator is implemented here - see pkg/registry and
pkg/shardstore for reference implementations used by this repository's tests
and CLI. This package only defines the shapes that cross the boundary.
*/
package types
