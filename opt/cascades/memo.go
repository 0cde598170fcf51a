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
	"fmt"
	"strings"

	"github.com/dolthub/go-plan-optimizer/opt"
)

// GroupID is a stable handle to an equivalence group in the memo.
type GroupID int32

// ExprID is a stable handle to one expression within a group.
type ExprID struct {
	Group GroupID
	Index int32
}

// groupExpr is an operator whose children are equivalence groups.
type groupExpr struct {
	id       ExprID
	op       opt.Operator
	children []GroupID
}

// Operator implements opt.Expr.
func (e *groupExpr) Operator() opt.Operator {
	return e.op
}

// InputCount implements opt.Expr.
func (e *groupExpr) InputCount(opt.Optimizer) int {
	return len(e.children)
}

// Input implements opt.Expr. The handle of an input is its group: the
// binding engine expands it to the group's expressions through
// Candidates.
func (e *groupExpr) Input(i int, _ opt.Optimizer) opt.ExprHandle {
	return e.children[i]
}

var _ opt.Expr = (*groupExpr)(nil)

// winner is the best known implementation of a group under one required
// property set.
type winner struct {
	cost       opt.Cost
	expr       ExprID
	outputProp opt.PhysicalPropertySet
	inputProps []opt.PhysicalPropertySet
}

// group is an equivalence class of expressions producing the same
// logical result.
type group struct {
	id          GroupID
	exprs       []*groupExpr
	logicalProp *opt.LogicalProperty
	stat        *opt.Statistics

	// winners maps a required property set, by hash key, to the
	// cheapest known physical expression satisfying it. The cost in a
	// cell only ever decreases.
	winners  map[uint64]*winner
	explored bool
}

// LogicalProp implements opt.Group.
func (g *group) LogicalProp() *opt.LogicalProperty {
	return g.logicalProp
}

// Stat implements opt.Group.
func (g *group) Stat() *opt.Statistics {
	return g.stat
}

var _ opt.Group = (*group)(nil)

// memo stores the equivalence groups of one optimization pass.
// Expressions are interned: inserting an operator with the same
// fingerprint and children twice yields the original handle.
type memo struct {
	groups   []*group
	interned map[string]ExprID
}

func newMemo() *memo {
	return &memo{interned: make(map[string]ExprID)}
}

func (m *memo) group(id GroupID) *group {
	return m.groups[id]
}

func (m *memo) exprAt(id ExprID) *groupExpr {
	return m.groups[id.Group].exprs[id.Index]
}

func (m *memo) exprCount() int {
	return len(m.interned)
}

func (m *memo) newGroup(lp *opt.LogicalProperty, stat *opt.Statistics) *group {
	g := &group{
		id:          GroupID(len(m.groups)),
		logicalProp: lp,
		stat:        stat,
		winners:     make(map[uint64]*winner),
	}
	m.groups = append(m.groups, g)
	return g
}

// insert adds an expression to target, deduplicating by fingerprint. The
// second return value reports whether the expression is new. When an
// equal expression already exists in another group the existing handle
// is returned; group merging is not performed.
func (m *memo) insert(target GroupID, op opt.Operator, children []GroupID) (ExprID, bool) {
	fp := fingerprint(op, children)
	if id, ok := m.interned[fp]; ok {
		return id, false
	}
	g := m.group(target)
	id := ExprID{Group: target, Index: int32(len(g.exprs))}
	g.exprs = append(g.exprs, &groupExpr{id: id, op: op, children: children})
	m.interned[fp] = id
	return id, true
}

// addPlan recursively memoizes a plan subtree, one group per distinct
// plan node, and returns the root's group. Shared subtrees share groups.
func (m *memo) addPlan(n *opt.PlanNode, seen map[opt.PlanNodeID]GroupID) GroupID {
	if gid, ok := seen[n.ID()]; ok {
		return gid
	}
	children := make([]GroupID, len(n.Inputs()))
	for i, in := range n.Inputs() {
		children[i] = m.addPlan(in, seen)
	}
	g := m.newGroup(n.LogicalProp(), n.Stat())
	m.insert(g.id, n.Operator(), children)
	seen[n.ID()] = g.id
	return g.id
}

func fingerprint(op opt.Operator, children []GroupID) string {
	var sb strings.Builder
	sb.WriteString(op.String())
	for _, c := range children {
		fmt.Fprintf(&sb, "|%d", c)
	}
	return sb.String()
}
