package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pageplane/shardsched/pkg/scheduler"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump TOPOLOGY_FILE",
	Short: "Serialize a scheduler's node table to JSON",
	Long: `dump loads a node topology fixture, builds a scheduler from it the way
a manager would at startup, and prints a JSON snapshot of its node table.
Useful for diffing scheduler state across runs or feeding into other tooling
without needing a live storage-node fleet to inspect.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := loadTopology(args[0])
		if err != nil {
			return err
		}

		sched := scheduler.New(fixture.descriptors())

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sched.Dump()); err != nil {
			return fmt.Errorf("encode dump: %w", err)
		}
		return nil
	},
}
