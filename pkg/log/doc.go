/*
Package log provides structured logging for the scheduler and its
collaborators, built on zerolog.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	logger := log.WithComponent("scheduler")
	logger.Info().Str("node_id", id.String()).Msg("scheduler selected node")

Component loggers (WithComponent, WithNodeID, WithTenantShardID) attach a
single structured field and return a child zerolog.Logger; callers combine
them with .With() for additional fields, the same pattern used throughout
this repository for consistency between the scheduler's decision logs and
the reference registry/shard-store collaborators' operational logs.

# Levels

Debug is reserved for per-candidate scoring detail (see
Scheduler.ComputeFillRequirement's trace logging); Info is used for
scheduling decisions and registry/shard-store state transitions; Warn and
Error are used for tolerated-but-logged failure modes such as an unknown
node id reaching UpdateRefCounts or NodeRemove.
*/
package log
