package main

import (
	"fmt"
	"os"

	"github.com/pageplane/shardsched/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shardschedctl",
	Short: "Exercise and inspect the tenant shard placement scheduler",
	Long: `shardschedctl loads a cluster topology fixture and runs it through
the scheduler package's placement algorithm, without needing a live
storage-node fleet or Raft quorum to talk to.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("shardschedctl version %s (%s)\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(serveMetricsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOutput})
}
