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
	"fmt"

	"github.com/dolthub/go-plan-optimizer/opt"
)

// NodeID is a stable handle to a node in a PlanGraph. Handles are slot
// indexes: they survive removals of other nodes and are never reused
// within one pass.
type NodeID int32

// node is one mutable graph node. It doubles as the expression and group
// the optimizer capability interface exposes for this handle.
type node struct {
	id            NodeID
	op            opt.Operator
	inputs        []NodeID
	logicalProp   *opt.LogicalProperty
	stat          *opt.Statistics
	physicalProps *opt.PhysicalPropertySet
}

// Operator implements opt.Expr.
func (n *node) Operator() opt.Operator {
	return n.op
}

// InputCount implements opt.Expr.
func (n *node) InputCount(opt.Optimizer) int {
	return len(n.inputs)
}

// Input implements opt.Expr.
func (n *node) Input(i int, _ opt.Optimizer) opt.ExprHandle {
	return n.inputs[i]
}

// LogicalProp implements opt.Group.
func (n *node) LogicalProp() *opt.LogicalProperty {
	return n.logicalProp
}

// Stat implements opt.Group.
func (n *node) Stat() *opt.Statistics {
	return n.stat
}

var _ opt.Expr = (*node)(nil)
var _ opt.Group = (*node)(nil)

// PlanGraph is the mutable form of a plan during a heuristic pass: a
// single-rooted DAG with ordered child edges and stable node handles, so
// a rewrite can replace a node and redirect every parent edge in place.
type PlanGraph struct {
	nodes []*node // slot map indexed by NodeID; nil slots are removed nodes
	root  NodeID
}

// newPlanGraph converts an immutable plan into graph form. Shared
// subtrees become shared nodes.
func newPlanGraph(p *opt.Plan) *PlanGraph {
	g := &PlanGraph{}
	ids := make(map[opt.PlanNodeID]NodeID)

	// First pass creates a graph node per distinct plan node.
	it := p.BFS()
	for pn, ok := it.Next(); ok; pn, ok = it.Next() {
		ids[pn.ID()] = g.add(&node{
			op:            pn.Operator(),
			logicalProp:   pn.LogicalProp(),
			stat:          pn.Stat(),
			physicalProps: pn.PhysicalProps(),
		})
	}

	// Second pass wires ordered child edges.
	it = p.BFS()
	for pn, ok := it.Next(); ok; pn, ok = it.Next() {
		n := g.node(ids[pn.ID()])
		for _, in := range pn.Inputs() {
			n.inputs = append(n.inputs, ids[in.ID()])
		}
	}

	g.root = ids[p.Root().ID()]
	return g
}

func (g *PlanGraph) add(n *node) NodeID {
	id := NodeID(len(g.nodes))
	n.id = id
	g.nodes = append(g.nodes, n)
	return id
}

func (g *PlanGraph) node(id NodeID) *node {
	if int(id) >= len(g.nodes) || g.nodes[id] == nil {
		panic(fmt.Sprintf("heuristic: no node for handle %d", id))
	}
	return g.nodes[id]
}

// Root returns the root handle.
func (g *PlanGraph) Root() NodeID {
	return g.root
}

// parents returns the handles of every live node with an edge into id,
// in handle order.
func (g *PlanGraph) parents(id NodeID) []NodeID {
	var ps []NodeID
	for pid, n := range g.nodes {
		if n == nil {
			continue
		}
		for _, in := range n.inputs {
			if in == id {
				ps = append(ps, NodeID(pid))
				break
			}
		}
	}
	return ps
}

// topDownIDs returns the reachable handles in BFS order from the root:
// every parent before its children. The order is fully determined by the
// graph's handles, so repeated sweeps are deterministic.
func (g *PlanGraph) topDownIDs() []NodeID {
	visited := map[NodeID]struct{}{g.root: {}}
	order := []NodeID{g.root}
	for i := 0; i < len(order); i++ {
		for _, in := range g.node(order[i]).inputs {
			if _, ok := visited[in]; ok {
				continue
			}
			visited[in] = struct{}{}
			order = append(order, in)
		}
	}
	return order
}

// bottomUpIDs returns the reachable handles with every child before its
// parents.
func (g *PlanGraph) bottomUpIDs() []NodeID {
	ids := g.topDownIDs()
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

func (g *PlanGraph) nodeIDs(order MatchOrder) []NodeID {
	if order == BottomUp {
		return g.bottomUpIDs()
	}
	return g.topDownIDs()
}

// Replace substitutes the subtree produced by a rule for the node at
// origin. Handles inside the expression are reused unchanged; fresh
// operators become new nodes. When the insertion yields a node other
// than origin, every edge into origin is redirected to it, origin is
// removed, and the root is promoted if needed. The return value reports
// whether the graph changed.
func (g *PlanGraph) Replace(e *opt.OptExpression, origin NodeID) bool {
	newID := g.insert(e)
	if newID == origin {
		return false
	}

	// A rewrite preserves the logical result, so the replacement root
	// inherits the origin's logical property and statistics when it has
	// none of its own.
	originNode := g.node(origin)
	newNode := g.node(newID)
	if newNode.logicalProp == nil {
		newNode.logicalProp = originNode.logicalProp
	}
	if newNode.stat == nil {
		newNode.stat = originNode.stat
	}

	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		for i, in := range n.inputs {
			if in == origin {
				n.inputs[i] = newID
			}
		}
	}
	g.nodes[origin] = nil

	if g.root == origin {
		g.root = newID
	}
	return true
}

// insert materializes an expression tree into the graph and returns the
// handle of its root. Handle nodes resolve to the nodes they reference;
// operator nodes are added fresh.
func (g *PlanGraph) insert(e *opt.OptExpression) NodeID {
	switch n := e.Node().(type) {
	case opt.ExprHandleNode:
		return n.Handle.(NodeID)
	case opt.GroupHandleNode:
		return n.Handle.(NodeID)
	case opt.OperatorNode:
		inputs := make([]NodeID, len(e.Inputs()))
		for i, in := range e.Inputs() {
			inputs[i] = g.insert(in)
		}
		// TODO: derive the logical property and statistics of fresh
		// nodes instead of inheriting them in Replace.
		return g.add(&node{op: n.Op, inputs: inputs})
	default:
		panic(fmt.Sprintf("heuristic: unknown opt expression node %T", n))
	}
}

// toPlan materializes the graph back into an immutable plan. Children
// are built before their parents, so shared nodes become shared
// subtrees.
func (g *PlanGraph) toPlan() *opt.Plan {
	built := make(map[NodeID]*opt.PlanNode)
	nextID := opt.PlanNodeID(0)
	for _, id := range g.bottomUpIDs() {
		n := g.node(id)
		inputs := make([]*opt.PlanNode, len(n.inputs))
		for i, in := range n.inputs {
			inputs[i] = built[in]
		}
		built[id] = opt.NewPlanNodeBuilder(nextID, n.op).
			AddInputs(inputs...).
			WithLogicalProp(n.logicalProp).
			WithStatistics(n.stat).
			WithPhysicalProps(n.physicalProps).
			Build()
		nextID++
	}
	return opt.NewPlan(built[g.root])
}
