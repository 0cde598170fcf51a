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
	"fmt"
	"strings"

	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/plan"
)

// PlanNodeID identifies a node within one plan. Ids are assigned at
// construction and are informational only: structural equality ignores
// them, and they are not handles into any optimizer.
type PlanNodeID uint32

// PlanNode is one node of a plan DAG. Nodes are immutable once built and
// may be shared as input by multiple parents. The inputs must form a DAG.
type PlanNode struct {
	id            PlanNodeID
	op            Operator
	inputs        []*PlanNode
	logicalProp   *LogicalProperty
	stat          *Statistics
	physicalProps *PhysicalPropertySet
}

// NewPlanNode returns a plan node without properties or statistics.
func NewPlanNode(id PlanNodeID, op Operator, inputs []*PlanNode) *PlanNode {
	return &PlanNode{id: id, op: op, inputs: inputs}
}

// ID returns the node id.
func (n *PlanNode) ID() PlanNodeID {
	return n.id
}

// Operator returns the node's operator.
func (n *PlanNode) Operator() Operator {
	return n.op
}

// Inputs returns the ordered child nodes.
func (n *PlanNode) Inputs() []*PlanNode {
	return n.inputs
}

// LogicalProp returns the node's logical property, or nil.
func (n *PlanNode) LogicalProp() *LogicalProperty {
	return n.logicalProp
}

// Stat returns the node's statistics, or nil.
func (n *PlanNode) Stat() *Statistics {
	return n.stat
}

// PhysicalProps returns the node's physical properties, or nil.
func (n *PlanNode) PhysicalProps() *PhysicalPropertySet {
	return n.physicalProps
}

// Equal compares two nodes structurally: operator, inputs (recursively)
// and properties. Ids play no part.
func (n *PlanNode) Equal(other *PlanNode) bool {
	if n == nil || other == nil {
		return n == other
	}
	if !n.op.Equal(other.op) || len(n.inputs) != len(other.inputs) {
		return false
	}
	for i := range n.inputs {
		if !n.inputs[i].Equal(other.inputs[i]) {
			return false
		}
	}
	if !n.logicalProp.Equal(other.logicalProp) || !n.stat.Equal(other.stat) {
		return false
	}
	if (n.physicalProps == nil) != (other.physicalProps == nil) {
		return false
	}
	return n.physicalProps == nil || n.physicalProps.Equal(*other.physicalProps)
}

func (n *PlanNode) String() string {
	return n.op.String()
}

// PlanNodeBuilder assembles one PlanNode.
type PlanNodeBuilder struct {
	node PlanNode
}

// NewPlanNodeBuilder opens a builder for a node with the given id and
// operator.
func NewPlanNodeBuilder(id PlanNodeID, op Operator) *PlanNodeBuilder {
	return &PlanNodeBuilder{node: PlanNode{id: id, op: op}}
}

// AddInputs appends child nodes in order.
func (b *PlanNodeBuilder) AddInputs(inputs ...*PlanNode) *PlanNodeBuilder {
	b.node.inputs = append(b.node.inputs, inputs...)
	return b
}

// WithLogicalProp sets the logical property.
func (b *PlanNodeBuilder) WithLogicalProp(p *LogicalProperty) *PlanNodeBuilder {
	b.node.logicalProp = p
	return b
}

// WithStatistics sets the statistics.
func (b *PlanNodeBuilder) WithStatistics(s *Statistics) *PlanNodeBuilder {
	b.node.stat = s
	return b
}

// WithPhysicalProps sets the physical properties.
func (b *PlanNodeBuilder) WithPhysicalProps(p *PhysicalPropertySet) *PlanNodeBuilder {
	b.node.physicalProps = p
	return b
}

// Build returns the assembled node.
func (b *PlanNodeBuilder) Build() *PlanNode {
	n := b.node
	return &n
}

// Plan is a query plan: a handle to the root of a single-rooted DAG. It
// represents both the input and the output of an optimizer, so the same
// structure carries a plan through every optimization phase.
type Plan struct {
	root *PlanNode
}

// NewPlan returns a plan rooted at root.
func NewPlan(root *PlanNode) *Plan {
	return &Plan{root: root}
}

// Root returns the root node.
func (p *Plan) Root() *PlanNode {
	return p.root
}

// Equal compares plans structurally.
func (p *Plan) Equal(other *Plan) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.root.Equal(other.root)
}

// String renders the plan as an indented tree. Shared subtrees are
// printed once per reference.
func (p *Plan) String() string {
	var sb strings.Builder
	var walk func(n *PlanNode, depth int)
	walk = func(n *PlanNode, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.String())
		sb.WriteByte('\n')
		for _, in := range n.inputs {
			walk(in, depth+1)
		}
	}
	walk(p.root, 0)
	return sb.String()
}

// BFS returns an iterator visiting each node reachable from the root
// exactly once, level by level starting at the root. Nodes are
// deduplicated by id, so shared subtrees are yielded once.
func (p *Plan) BFS() *PlanBFSIter {
	it := &PlanBFSIter{visited: map[PlanNodeID]struct{}{p.root.id: {}}}
	it.queue = append(it.queue, p.root)
	return it
}

// PlanBFSIter is a breadth-first iterator over a plan DAG.
type PlanBFSIter struct {
	visited map[PlanNodeID]struct{}
	queue   []*PlanNode
}

// Next returns the next node, or false when the traversal is done.
func (it *PlanBFSIter) Next() (*PlanNode, bool) {
	if len(it.queue) == 0 {
		return nil, false
	}
	n := it.queue[0]
	it.queue = it.queue[1:]
	for _, in := range n.inputs {
		if _, ok := it.visited[in.id]; ok {
			continue
		}
		it.visited[in.id] = struct{}{}
		it.queue = append(it.queue, in)
	}
	return n, true
}

// LogicalPlanBuilder builds logical plans bottom-up. Every node gets a
// fresh, monotonically increasing id; Build hands out the current plan
// and resets only the root, so sibling subtrees built afterwards (for
// example the right side of a join) keep getting distinct ids.
type LogicalPlanBuilder struct {
	root   *PlanNode
	nextID PlanNodeID
}

// NewLogicalPlanBuilder returns an empty logical plan builder.
func NewLogicalPlanBuilder() *LogicalPlanBuilder {
	return &LogicalPlanBuilder{}
}

func (b *LogicalPlanBuilder) push(op Operator, inputs ...*PlanNode) *LogicalPlanBuilder {
	b.root = NewPlanNode(b.nextID, op, inputs)
	b.nextID++
	return b
}

func (b *LogicalPlanBuilder) current() *PlanNode {
	if b.root == nil {
		panic("opt: plan builder has no current root")
	}
	return b.root
}

// Scan starts a plan at a scan of the named table.
func (b *LogicalPlanBuilder) Scan(table string) *LogicalPlanBuilder {
	return b.push(LogicalScan{NewTableScan(table)})
}

// ScanWithLimit starts a plan at a scan carrying a row-limit hint.
func (b *LogicalPlanBuilder) ScanWithLimit(table string, limit uint64) *LogicalPlanBuilder {
	return b.push(LogicalScan{NewTableScanWithLimit(table, limit)})
}

// Project puts a projection over the current root.
func (b *LogicalPlanBuilder) Project(exprs ...sql.Expression) *LogicalPlanBuilder {
	return b.push(LogicalProject{NewProjection(exprs...)}, b.current())
}

// Limit puts a limit over the current root.
func (b *LogicalPlanBuilder) Limit(count uint64) *LogicalPlanBuilder {
	return b.push(LogicalLimit{NewLimit(count)}, b.current())
}

// Join joins the current root, as the left input, with a pre-built right
// subtree.
func (b *LogicalPlanBuilder) Join(op plan.JoinType, cond sql.Expression, right *PlanNode) *LogicalPlanBuilder {
	return b.push(LogicalJoin{NewJoin(op, cond)}, b.current(), right)
}

// Build consumes the current plan but keeps the id counter, so the
// builder can be reused for sibling subtrees.
func (b *LogicalPlanBuilder) Build() *Plan {
	p := NewPlan(b.current())
	b.root = nil
	return p
}

// PhysicalPlanBuilder builds physical plans bottom-up, with the same id
// discipline as LogicalPlanBuilder.
type PhysicalPlanBuilder struct {
	root   *PlanNode
	nextID PlanNodeID
}

// NewPhysicalPlanBuilder returns an empty physical plan builder.
func NewPhysicalPlanBuilder() *PhysicalPlanBuilder {
	return &PhysicalPlanBuilder{}
}

func (b *PhysicalPlanBuilder) push(op Operator, inputs ...*PlanNode) *PhysicalPlanBuilder {
	b.root = NewPlanNode(b.nextID, op, inputs)
	b.nextID++
	return b
}

func (b *PhysicalPlanBuilder) current() *PlanNode {
	if b.root == nil {
		panic("opt: plan builder has no current root")
	}
	return b.root
}

// Scan starts a plan at a physical scan of the named table.
func (b *PhysicalPlanBuilder) Scan(table string) *PhysicalPlanBuilder {
	return b.push(PhysicalTableScan{NewTableScan(table)})
}

// ScanWithLimit starts a plan at a physical scan with a row-limit hint.
func (b *PhysicalPlanBuilder) ScanWithLimit(table string, limit uint64) *PhysicalPlanBuilder {
	return b.push(PhysicalTableScan{NewTableScanWithLimit(table, limit)})
}

// Project puts a physical projection over the current root.
func (b *PhysicalPlanBuilder) Project(exprs ...sql.Expression) *PhysicalPlanBuilder {
	return b.push(PhysicalProject{NewProjection(exprs...)}, b.current())
}

// Limit puts a physical limit over the current root.
func (b *PhysicalPlanBuilder) Limit(count uint64) *PhysicalPlanBuilder {
	return b.push(PhysicalLimit{NewLimit(count)}, b.current())
}

// HashJoin joins the current root, as the build side, with a pre-built
// right subtree.
func (b *PhysicalPlanBuilder) HashJoin(op plan.JoinType, cond sql.Expression, right *PlanNode) *PhysicalPlanBuilder {
	return b.push(HashJoin{NewJoin(op, cond)}, b.current(), right)
}

// Build consumes the current plan but keeps the id counter.
func (b *PhysicalPlanBuilder) Build() *Plan {
	p := NewPlan(b.current())
	b.root = nil
	return p
}

var _ fmt.Stringer = (*Plan)(nil)
