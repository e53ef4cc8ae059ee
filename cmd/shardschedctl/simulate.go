package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pageplane/shardsched/pkg/scheduler"
	"github.com/pageplane/shardsched/pkg/types"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate TOPOLOGY_FILE",
	Short: "Schedule every tenant in a topology fixture and print the result",
	Long: `simulate reads a YAML topology file describing a node table and a
list of tenants, schedules each tenant's attached location plus its
requested number of secondaries in order, and prints the resulting
cluster-wide distribution.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := loadTopology(args[0])
		if err != nil {
			return err
		}
		if len(fixture.Nodes) == 0 {
			return fmt.Errorf("topology defines no nodes")
		}

		sched := scheduler.New(fixture.descriptors())

		for _, tenant := range fixture.Tenants {
			shardID := fmt.Sprintf("%s-%s", tenant.Name, uuid.NewString()[:8])
			ctx := scheduler.NewScheduleContext()

			attached, err := sched.ScheduleAttached(nil, ctx)
			if err != nil {
				return fmt.Errorf("schedule attached location for %s: %w", tenant.Name, err)
			}
			sched.UpdateRefCounts(attached, types.Attach)
			ctx.PushAttached(attached)
			fmt.Printf("%s: attached -> %s\n", shardID, attached)

			for i := 0; i < tenant.SecondaryCount; i++ {
				secondary, err := sched.ScheduleSecondary([]types.NodeID{attached}, ctx)
				if err != nil {
					return fmt.Errorf("schedule secondary location for %s: %w", tenant.Name, err)
				}
				sched.UpdateRefCounts(secondary, types.AddSecondary)
				fmt.Printf("%s: secondary -> %s\n", shardID, secondary)
			}
		}

		fmt.Println()
		fmt.Println("Final distribution:")
		for _, snap := range sched.NodeAttachedShardCount() {
			fmt.Printf("  %s: %d attached, %d total, eligible=%v\n",
				snap.ID, snap.AttachedShardCount, snap.ShardCount, snap.Eligible)
		}
		return nil
	},
}
