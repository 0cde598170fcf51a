// Copyright 2024 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opt

import (
	"testing"

	"github.com/dolthub/go-mysql-server/sql/expression"
	"github.com/dolthub/go-mysql-server/sql/plan"
	"github.com/dolthub/go-mysql-server/sql/types"
	"github.com/stretchr/testify/require"
)

func TestBFSVisitsEachNodeOnce(t *testing.T) {
	require := require.New(t)

	// A diamond: two projections sharing one scan.
	scan := NewPlanNode(0, LogicalScan{NewTableScan("t1")}, nil)
	left := NewPlanNode(1, LogicalProject{NewProjection(expression.NewGetField(0, types.Int64, "a", false))}, []*PlanNode{scan})
	right := NewPlanNode(2, LogicalProject{NewProjection(expression.NewGetField(1, types.Int64, "b", false))}, []*PlanNode{scan})
	join := NewPlanNode(3, LogicalJoin{NewJoin(plan.JoinTypeInner, expression.NewLiteral(true, types.Boolean))}, []*PlanNode{left, right})
	p := NewPlan(join)

	var visited []*PlanNode
	it := p.BFS()
	for n, ok := it.Next(); ok; n, ok = it.Next() {
		visited = append(visited, n)
	}

	require.Len(visited, 4)
	require.Same(join, visited[0])
	require.Same(left, visited[1])
	require.Same(right, visited[2])
	require.Same(scan, visited[3])
}

func TestBFSYieldsParentsBeforeChildren(t *testing.T) {
	require := require.New(t)

	p := NewLogicalPlanBuilder().
		Scan("t1").
		Limit(10).
		Project(expression.NewGetField(0, types.Int64, "a", false)).
		Build()

	seen := map[PlanNodeID]bool{}
	it := p.BFS()
	for n, ok := it.Next(); ok; n, ok = it.Next() {
		for _, in := range n.Inputs() {
			require.False(seen[in.ID()], "child yielded before parent")
		}
		seen[n.ID()] = true
	}
	require.Len(seen, 3)
}

func TestPlanNodeEqualIgnoresID(t *testing.T) {
	require := require.New(t)

	a := NewPlanNode(1, LogicalScan{NewTableScan("t1")}, nil)
	b := NewPlanNode(42, LogicalScan{NewTableScan("t1")}, nil)
	require.True(a.Equal(b))

	pa := NewPlanNode(2, LogicalLimit{NewLimit(10)}, []*PlanNode{a})
	pb := NewPlanNode(77, LogicalLimit{NewLimit(10)}, []*PlanNode{b})
	require.True(pa.Equal(pb))

	other := NewPlanNode(2, LogicalLimit{NewLimit(11)}, []*PlanNode{a})
	require.False(pa.Equal(other))

	otherChild := NewPlanNode(2, LogicalLimit{NewLimit(10)}, []*PlanNode{
		NewPlanNode(3, LogicalScan{NewTableScan("t2")}, nil),
	})
	require.False(pa.Equal(otherChild))
}

func TestPlanNodeEqualComparesProperties(t *testing.T) {
	require := require.New(t)

	schema := testSchema("t1", "a")
	a := NewPlanNodeBuilder(0, LogicalScan{NewTableScan("t1")}).
		WithLogicalProp(NewLogicalProperty(schema)).
		Build()
	b := NewPlanNodeBuilder(9, LogicalScan{NewTableScan("t1")}).
		WithLogicalProp(NewLogicalProperty(schema)).
		Build()
	c := NewPlanNodeBuilder(0, LogicalScan{NewTableScan("t1")}).Build()

	require.True(a.Equal(b))
	require.False(a.Equal(c))
}

func TestLogicalPlanBuilderAssignsDistinctIDs(t *testing.T) {
	require := require.New(t)

	b := NewLogicalPlanBuilder()
	right := b.Scan("t2").Build().Root()
	p := b.Scan("t1").
		Join(plan.JoinTypeInner, expression.NewLiteral(true, types.Boolean), right).
		Build()

	ids := map[PlanNodeID]struct{}{}
	it := p.BFS()
	for n, ok := it.Next(); ok; n, ok = it.Next() {
		_, dup := ids[n.ID()]
		require.False(dup, "builder reused id %d", n.ID())
		ids[n.ID()] = struct{}{}
	}
	require.Len(ids, 3)

	// Build resets only the root; the id counter survives.
	require.Equal(PlanNodeID(2), p.Root().ID())
	require.Panics(func() { b.Build() })
}

func TestPhysicalPlanBuilder(t *testing.T) {
	require := require.New(t)

	b := NewPhysicalPlanBuilder()
	right := b.Scan("t2").Build().Root()
	p := b.ScanWithLimit("t1", 10).
		HashJoin(plan.JoinTypeInner, expression.NewLiteral(true, types.Boolean), right).
		Build()

	root := p.Root()
	require.IsType(HashJoin{}, root.Operator())
	require.Len(root.Inputs(), 2)
	require.IsType(PhysicalTableScan{}, root.Inputs()[0].Operator())
	require.Equal("PhysicalTableScan(t1, limit=10)", root.Inputs()[0].Operator().String())
	require.IsType(PhysicalTableScan{}, root.Inputs()[1].Operator())
}
