// Package utilization is the node registry's reference Utilization
// implementation. It is intentionally the simplest thing that satisfies
// types.Utilization: real deployments are free to swap in a richer signal
// (CPU, IOPS, connection count) without touching the scheduler at all, since
// the scheduler only ever sees the interface.
package utilization
