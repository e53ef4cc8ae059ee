package main

import (
	"fmt"
	"net/http"

	"github.com/pageplane/shardsched/pkg/log"
	"github.com/pageplane/shardsched/pkg/metrics"
	"github.com/pageplane/shardsched/pkg/registry"
	"github.com/pageplane/shardsched/pkg/shardstore"
	"github.com/spf13/cobra"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Run a standalone node registry and shard store, and serve their metrics over HTTP",
	Long: `serve-metrics boots a single-node registry and a single-node Raft
shard store purely so the metrics and health endpoints have live
collaborators to poll - it does not schedule anything on its own. Use
simulate to exercise actual placement decisions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		registryDB, _ := cmd.Flags().GetString("registry-db")
		shardstoreDir, _ := cmd.Flags().GetString("shardstore-dir")
		nodeID, _ := cmd.Flags().GetString("node-id")
		raftBindAddr, _ := cmd.Flags().GetString("raft-bind-addr")

		reg, err := registry.New(registryDB)
		if err != nil {
			return fmt.Errorf("open node registry: %w", err)
		}
		defer reg.Close()
		metrics.RegisterComponent("registry", true, "")

		store, err := shardstore.New(shardstore.Config{
			NodeID:   nodeID,
			BindAddr: raftBindAddr,
			DataDir:  shardstoreDir,
		})
		if err != nil {
			return fmt.Errorf("open shard store: %w", err)
		}
		defer store.Close()
		if err := store.Bootstrap(); err != nil {
			return fmt.Errorf("bootstrap shard store raft cluster: %w", err)
		}
		metrics.RegisterComponent("raft", true, "")

		collector := metrics.NewCollector(reg, store)
		collector.Start()
		defer collector.Stop()

		http.Handle("/metrics", metrics.Handler())
		http.Handle("/health", metrics.HealthHandler())
		http.Handle("/ready", metrics.ReadyHandler())
		http.Handle("/live", metrics.LivenessHandler())

		log.Info(fmt.Sprintf("serving scheduler metrics on %s", addr))
		fmt.Printf("Listening on http://%s/metrics\n", addr)
		return http.ListenAndServe(addr, nil)
	},
}

func init() {
	serveMetricsCmd.Flags().String("addr", "127.0.0.1:9090", "Address to listen on")
	serveMetricsCmd.Flags().String("registry-db", "shardsched-registry.db", "Path to the node registry's bolt database")
	serveMetricsCmd.Flags().String("shardstore-dir", "shardsched-shardstore", "Directory for the shard store's intent and Raft data")
	serveMetricsCmd.Flags().String("node-id", "standalone", "Raft server ID for the shard store's single-node cluster")
	serveMetricsCmd.Flags().String("raft-bind-addr", "127.0.0.1:9091", "Address the shard store's Raft transport listens on")
}
