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

// Package bridge converts between go-mysql-server plans and the
// optimizer's plan representation. Inbound conversion turns an engine
// logical plan into an opt.Plan; outbound conversion turns an optimized
// logical opt.Plan back into an engine plan. Only the operator kinds the
// optimizer models are supported; everything else fails conversion with
// a descriptive error.
package bridge

import (
	"fmt"

	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/expression"
	"github.com/dolthub/go-mysql-server/sql/plan"
	"github.com/dolthub/go-mysql-server/sql/types"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/dolthub/go-plan-optimizer/opt"
)

// FromNode converts an engine logical plan into an optimizer plan. Each
// node captures the engine schema as its logical property. Join
// predicates come through as-is; a join without a condition (including a
// cross join) gets the literal `true`.
func FromNode(n sql.Node) (*opt.Plan, error) {
	var nextID opt.PlanNodeID
	root, err := fromNode(n, &nextID)
	if err != nil {
		return nil, err
	}
	return opt.NewPlan(root), nil
}

func fromNode(n sql.Node, nextID *opt.PlanNodeID) (*opt.PlanNode, error) {
	var (
		op     opt.Operator
		inputs []*opt.PlanNode
		schema sql.Schema
	)

	switch n := n.(type) {
	case *plan.Project:
		child, err := fromNode(n.Child, nextID)
		if err != nil {
			return nil, err
		}
		op = opt.LogicalProject{Projection: opt.NewProjection(n.Projections...)}
		inputs = []*opt.PlanNode{child}
		schema = n.Schema()

	case *plan.Limit:
		count, err := limitCount(n.Limit)
		if err != nil {
			return nil, err
		}
		child, err := fromNode(n.Child, nextID)
		if err != nil {
			return nil, err
		}
		op = opt.LogicalLimit{Limit: opt.NewLimit(count)}
		inputs = []*opt.PlanNode{child}
		schema = n.Schema()

	case *plan.JoinNode:
		jt, ok := joinKind(n.Op)
		if !ok {
			return nil, opt.ErrUnsupportedPlan.New(fmt.Sprintf("join type %s", n.Op))
		}
		cond := n.JoinCond()
		if cond == nil {
			cond = expression.NewLiteral(true, types.Boolean)
		}
		left, err := fromNode(n.Left(), nextID)
		if err != nil {
			return nil, err
		}
		right, err := fromNode(n.Right(), nextID)
		if err != nil {
			return nil, err
		}
		op = opt.LogicalJoin{Join: opt.NewJoin(jt, cond)}
		inputs = []*opt.PlanNode{left, right}
		schema = n.Schema()

	case *plan.ResolvedTable:
		op = opt.LogicalScan{TableScan: opt.NewTableScan(n.Name()).WithSource(n.Table)}
		schema = n.Schema()

	case *plan.UnresolvedTable:
		// An unresolved table has no schema yet, so the node carries no
		// logical property.
		op = opt.LogicalScan{TableScan: opt.NewTableScan(n.Name())}

	default:
		return nil, opt.ErrUnsupportedPlan.New(fmt.Sprintf("%T", n))
	}

	b := opt.NewPlanNodeBuilder(*nextID, op).AddInputs(inputs...)
	*nextID++
	if schema != nil {
		b.WithLogicalProp(opt.NewLogicalProperty(schema))
	}
	return b.Build(), nil
}

// limitCount evaluates an engine limit expression. Only literal limits
// are supported.
func limitCount(e sql.Expression) (uint64, error) {
	lit, ok := e.(*expression.Literal)
	if !ok {
		return 0, opt.ErrUnsupportedPlan.New(fmt.Sprintf("non-literal limit %s", e))
	}
	count, err := cast.ToUint64E(lit.Value())
	if err != nil {
		return 0, errors.Wrapf(err, "limit %s", e)
	}
	return count, nil
}

// joinKind maps an engine join type onto the kinds the optimizer models.
// A cross join becomes an inner join; its missing condition becomes the
// literal `true` at the call site.
func joinKind(op plan.JoinType) (plan.JoinType, bool) {
	switch op {
	case plan.JoinTypeInner, plan.JoinTypeLeftOuter, plan.JoinTypeRightOuter,
		plan.JoinTypeFullOuter, plan.JoinTypeSemi, plan.JoinTypeAnti:
		return op, true
	case plan.JoinTypeCross:
		return plan.JoinTypeInner, true
	default:
		return op, false
	}
}

// ToNode converts an optimized logical plan back into an engine plan.
// Join conditions must be conjunctions of column equalities; in
// particular the literal `true` that inbound conversion produces for an
// empty join condition does not convert back, so a condition-less join
// does not round-trip.
func ToNode(p *opt.Plan) (sql.Node, error) {
	return toNode(p.Root())
}

func toNode(n *opt.PlanNode) (sql.Node, error) {
	inputs := make([]sql.Node, len(n.Inputs()))
	for i, in := range n.Inputs() {
		converted, err := toNode(in)
		if err != nil {
			return nil, err
		}
		inputs[i] = converted
	}

	switch op := n.Operator().(type) {
	case opt.LogicalProject:
		if n.LogicalProp() == nil {
			return nil, opt.ErrMissingLogicalProp.New(op)
		}
		return plan.NewProject(op.Exprs, inputs[0]), nil

	case opt.LogicalLimit:
		return plan.NewLimit(expression.NewLiteral(int64(op.Count), types.Int64), inputs[0]), nil

	case opt.LogicalJoin:
		if n.LogicalProp() == nil {
			return nil, opt.ErrMissingLogicalProp.New(op)
		}
		if _, _, ok := opt.EquiJoinKeys(op.Cond); !ok {
			return nil, opt.ErrUnsupportedJoinCond.New(op.Cond)
		}
		return plan.NewJoin(inputs[0], inputs[1], op.Op, op.Cond), nil

	case opt.LogicalScan:
		return scanToNode(op)

	default:
		return nil, opt.ErrUnsupportedPlan.New(fmt.Sprintf("operator %s", op))
	}
}

// scanToNode rebuilds an engine table node from a scan. A scan built
// from a resolved table resolves again; one built from an unresolved
// table stays unresolved. A row-limit hint surfaces as a limit over the
// table, the engine's representation of a capped read.
func scanToNode(op opt.LogicalScan) (sql.Node, error) {
	var node sql.Node
	if src := op.Source(); src != nil {
		node = plan.NewResolvedTable(src, nil, nil)
	} else {
		node = plan.NewUnresolvedTable(op.Table, "")
	}
	if op.TableScan.Limit != nil {
		node = plan.NewLimit(expression.NewLiteral(int64(*op.TableScan.Limit), types.Int64), node)
	}
	return node, nil
}
