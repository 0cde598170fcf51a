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

package cascades

import (
	"testing"

	"github.com/dolthub/go-mysql-server/sql/expression"
	"github.com/dolthub/go-mysql-server/sql/plan"
	"github.com/dolthub/go-mysql-server/sql/types"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-plan-optimizer/opt"
	"github.com/dolthub/go-plan-optimizer/opt/rules"
)

func equiCond() *expression.Equals {
	return expression.NewEquals(
		expression.NewGetFieldWithTable(0, types.Int64, "db", "t1", "a", false),
		expression.NewGetFieldWithTable(0, types.Int64, "db", "t2", "b", false),
	)
}

func TestImplementInnerJoinAsHashJoin(t *testing.T) {
	require := require.New(t)

	b := opt.NewLogicalPlanBuilder()
	right := b.Scan("t2").Build().Root()
	p := b.Scan("t1").Join(plan.JoinTypeInner, equiCond(), right).Build()

	o := New(opt.PhysicalPropertySet{}, nil, rules.DefaultImplementationRules(), p, opt.NewEmptyContext())
	out, err := o.FindBestPlan()
	require.NoError(err)

	root := out.Root()
	join, ok := root.Operator().(opt.HashJoin)
	require.True(ok)
	require.Equal(plan.JoinTypeInner, join.Op)
	require.Equal(equiCond().String(), join.Cond.String())

	require.Len(root.Inputs(), 2)
	require.Equal("PhysicalTableScan(t1)", root.Inputs()[0].Operator().String())
	require.Equal("PhysicalTableScan(t2)", root.Inputs()[1].Operator().String())
	require.NotNil(root.PhysicalProps())

	// Scan + scan + join under the constant cost model.
	key, err := (opt.PhysicalPropertySet{}).HashKey()
	require.NoError(err)
	w := o.memo.group(o.root).winners[key]
	require.NotNil(w)
	require.Equal(opt.Cost(3.0), w.cost)
}

func TestScanOnlyPlan(t *testing.T) {
	require := require.New(t)

	p := opt.NewLogicalPlanBuilder().Scan("t1").Build()
	o := New(opt.PhysicalPropertySet{}, nil, rules.DefaultImplementationRules(), p, opt.NewEmptyContext())
	out, err := o.FindBestPlan()
	require.NoError(err)
	require.Equal("PhysicalTableScan(t1)", out.Root().Operator().String())
}

func TestNoImplementationMeansNoPlan(t *testing.T) {
	require := require.New(t)

	p := opt.NewLogicalPlanBuilder().Scan("t1").Build()
	_, err := New(opt.PhysicalPropertySet{}, nil, nil, p, opt.NewEmptyContext()).FindBestPlan()
	require.Error(err)
	require.True(opt.ErrPlanNotFound.Is(err))
}

func TestTransformationBeatsNaiveImplementation(t *testing.T) {
	require := require.New(t)

	// Limit(10) over Scan(t1). Implementing the limit as-is costs 2;
	// the pushed-down scan the transformation adds to the group costs 1,
	// so the search must pick it.
	p := opt.NewLogicalPlanBuilder().Scan("t1").Limit(10).Build()
	o := New(
		opt.PhysicalPropertySet{},
		[]opt.Rule{rules.PushLimitIntoScan{}},
		rules.DefaultImplementationRules(),
		p,
		opt.NewEmptyContext(),
	)
	out, err := o.FindBestPlan()
	require.NoError(err)

	require.Equal("PhysicalTableScan(t1, limit=10)", out.Root().Operator().String())
	require.Empty(out.Root().Inputs())

	key, err := (opt.PhysicalPropertySet{}).HashKey()
	require.NoError(err)
	require.Equal(opt.Cost(1.0), o.memo.group(o.root).winners[key].cost)
}

func TestCostNeverIncreasesAcrossRuleApplications(t *testing.T) {
	require := require.New(t)

	p := opt.NewLogicalPlanBuilder().Scan("t1").Limit(10).Build()
	o := New(
		opt.PhysicalPropertySet{},
		[]opt.Rule{rules.PushLimitIntoScan{}},
		rules.DefaultImplementationRules(),
		p,
		opt.NewEmptyContext(),
	)
	_, err := o.FindBestPlan()
	require.NoError(err)

	// Every winner cell holds the cheapest alternative seen for its
	// requirement; re-running the search over the same memo state must
	// not change any of them.
	key, err := (opt.PhysicalPropertySet{}).HashKey()
	require.NoError(err)
	before := map[GroupID]opt.Cost{}
	for _, g := range o.memo.groups {
		if w, ok := g.winners[key]; ok {
			before[g.id] = w.cost
		}
	}

	require.NoError(o.optimizeGroup(o.ctx, o.root, opt.PhysicalPropertySet{}))
	for gid, cost := range before {
		w := o.memo.group(gid).winners[key]
		require.NotNil(w)
		require.False(w.cost.Less(cost) || cost.Less(w.cost))
	}
}

func TestMemoSharesSubtreeGroups(t *testing.T) {
	require := require.New(t)

	// Two projections over one shared scan node.
	scan := opt.NewPlanNode(0, opt.LogicalScan{TableScan: opt.NewTableScan("t1")}, nil)
	left := opt.NewPlanNode(1, opt.LogicalProject{Projection: opt.NewProjection(
		expression.NewGetField(0, types.Int64, "a", false),
	)}, []*opt.PlanNode{scan})
	right := opt.NewPlanNode(2, opt.LogicalProject{Projection: opt.NewProjection(
		expression.NewGetField(1, types.Int64, "b", false),
	)}, []*opt.PlanNode{scan})
	join := opt.NewPlanNode(3, opt.LogicalJoin{Join: opt.NewJoin(
		plan.JoinTypeInner, equiCond(),
	)}, []*opt.PlanNode{left, right})

	o := New(opt.PhysicalPropertySet{}, nil, nil, opt.NewPlan(join), opt.NewEmptyContext())
	require.Len(o.memo.groups, 4)

	leftExpr := o.memo.group(o.root).exprs[0]
	lproj := o.memo.group(leftExpr.children[0]).exprs[0]
	rproj := o.memo.group(leftExpr.children[1]).exprs[0]
	require.Equal(lproj.children[0], rproj.children[0])
}

func TestMemoInternsExpressions(t *testing.T) {
	require := require.New(t)

	m := newMemo()
	g := m.newGroup(nil, nil)
	id1, new1 := m.insert(g.id, opt.LogicalScan{TableScan: opt.NewTableScan("t1")}, nil)
	id2, new2 := m.insert(g.id, opt.LogicalScan{TableScan: opt.NewTableScan("t1")}, nil)
	require.True(new1)
	require.False(new2)
	require.Equal(id1, id2)
	require.Len(g.exprs, 1)
}
