package main

import (
	"fmt"
	"os"

	"github.com/pageplane/shardsched/pkg/scheduler"
	"github.com/pageplane/shardsched/pkg/types"
	"github.com/pageplane/shardsched/pkg/utilization"
	"gopkg.in/yaml.v3"
)

// nodeFixture describes one node in a topology YAML file.
type nodeFixture struct {
	ID            uint64 `yaml:"id"`
	Eligible      bool   `yaml:"eligible"`
	ShardCount    uint64 `yaml:"shard_count"`
	DiskUsedBytes uint64 `yaml:"disk_used_bytes"`
	DiskCapBytes  uint64 `yaml:"disk_cap_bytes"`
}

// tenantFixture describes one tenant whose shard should be placed.
type tenantFixture struct {
	Name           string `yaml:"tenant"`
	SecondaryCount int    `yaml:"secondary_count"`
}

// topologyFixture is the top-level shape of a simulate input file.
type topologyFixture struct {
	Nodes   []nodeFixture   `yaml:"nodes"`
	Tenants []tenantFixture `yaml:"tenants"`
}

func loadTopology(path string) (*topologyFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology file: %w", err)
	}
	var fixture topologyFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse topology file: %w", err)
	}
	return &fixture, nil
}

// descriptors builds the node table scheduler.New expects.
func (f *topologyFixture) descriptors() []scheduler.NodeDescriptor {
	out := make([]scheduler.NodeDescriptor, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		ms := types.NotSchedulable()
		if n.Eligible {
			ms = types.Schedulable(utilization.New(n.ShardCount, n.DiskUsedBytes, n.DiskCapBytes))
		}
		out = append(out, scheduler.NodeDescriptor{ID: types.NodeID(n.ID), MaySchedule: ms})
	}
	return out
}
