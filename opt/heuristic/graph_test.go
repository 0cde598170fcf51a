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

package heuristic

import (
	"testing"

	"github.com/dolthub/go-mysql-server/sql/expression"
	"github.com/dolthub/go-mysql-server/sql/plan"
	"github.com/dolthub/go-mysql-server/sql/types"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-plan-optimizer/opt"
)

// diamondPlan returns Join(Project(scan), Project(scan)) with a shared
// scan node.
func diamondPlan() *opt.Plan {
	scan := opt.NewPlanNode(0, opt.LogicalScan{TableScan: opt.NewTableScan("t1")}, nil)
	left := opt.NewPlanNode(1, opt.LogicalProject{Projection: opt.NewProjection(
		expression.NewGetField(0, types.Int64, "a", false),
	)}, []*opt.PlanNode{scan})
	right := opt.NewPlanNode(2, opt.LogicalProject{Projection: opt.NewProjection(
		expression.NewGetField(1, types.Int64, "b", false),
	)}, []*opt.PlanNode{scan})
	join := opt.NewPlanNode(3, opt.LogicalJoin{Join: opt.NewJoin(
		plan.JoinTypeInner, expression.NewLiteral(true, types.Boolean),
	)}, []*opt.PlanNode{left, right})
	return opt.NewPlan(join)
}

func findNode(g *PlanGraph, match func(opt.Operator) bool) NodeID {
	for _, id := range g.topDownIDs() {
		if match(g.node(id).op) {
			return id
		}
	}
	panic("graph_test: node not found")
}

func TestPlanGraphRoundTrip(t *testing.T) {
	require := require.New(t)

	p := diamondPlan()
	g := newPlanGraph(p)
	require.True(p.Equal(g.toPlan()))

	// Shared subtrees stay shared through the conversion.
	out := g.toPlan()
	require.Same(out.Root().Inputs()[0].Inputs()[0], out.Root().Inputs()[1].Inputs()[0])
}

func TestReplaceRedirectsParents(t *testing.T) {
	require := require.New(t)

	g := newPlanGraph(diamondPlan())
	scan := findNode(g, func(op opt.Operator) bool {
		_, ok := op.(opt.LogicalScan)
		return ok
	})
	parentsBefore := g.parents(scan)
	require.Len(parentsBefore, 2)

	replacement := opt.NewOperatorExpr(opt.LogicalScan{TableScan: opt.NewTableScanWithLimit("t1", 10)})
	require.True(g.Replace(replacement, scan))

	// The origin is gone and the new node inherited its parent set.
	require.Nil(g.nodes[scan])
	newID := findNode(g, func(op opt.Operator) bool {
		s, ok := op.(opt.LogicalScan)
		return ok && s.TableScan.Limit != nil
	})
	require.NotEqual(scan, newID)
	require.Equal(parentsBefore, g.parents(newID))
}

func TestReplacePromotesRoot(t *testing.T) {
	require := require.New(t)

	p := diamondPlan()
	g := newPlanGraph(p)
	root := g.Root()

	replacement := opt.NewOperatorExpr(opt.LogicalScan{TableScan: opt.NewTableScan("t2")})
	require.True(g.Replace(replacement, root))
	require.NotEqual(root, g.Root())

	out := g.toPlan()
	require.Equal("LogicalScan(t2)", out.Root().Operator().String())
	require.Empty(out.Root().Inputs())
}

func TestReplaceWithExistingHandleIsNoop(t *testing.T) {
	require := require.New(t)

	g := newPlanGraph(diamondPlan())
	scan := findNode(g, func(op opt.Operator) bool {
		_, ok := op.(opt.LogicalScan)
		return ok
	})

	// Substituting a node for itself does not change the graph.
	require.False(g.Replace(opt.NewExprHandleExpr(scan), scan))
	require.NotNil(g.nodes[scan])
}

func TestReplaceInheritsLogicalProp(t *testing.T) {
	require := require.New(t)

	schema := sqlSchema("t1", "a", "b")
	scan := opt.NewPlanNodeBuilder(0, opt.LogicalScan{TableScan: opt.NewTableScan("t1")}).
		WithLogicalProp(opt.NewLogicalProperty(schema)).
		Build()
	limit := opt.NewPlanNodeBuilder(1, opt.LogicalLimit{Limit: opt.NewLimit(10)}).
		AddInputs(scan).
		WithLogicalProp(opt.NewLogicalProperty(schema)).
		Build()
	g := newPlanGraph(opt.NewPlan(limit))

	replacement := opt.NewOperatorExpr(opt.LogicalScan{TableScan: opt.NewTableScanWithLimit("t1", 10)})
	require.True(g.Replace(replacement, g.Root()))

	out := g.toPlan()
	require.NotNil(out.Root().LogicalProp())
	require.True(out.Root().LogicalProp().Schema.Equals(schema))
}
