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

// OptExprNode is the node of a rule-facing expression tree. It is one of
// OperatorNode, ExprHandleNode or GroupHandleNode.
type OptExprNode interface {
	optExprNode()
}

// OperatorNode is a freshly constructed operator, introduced by a rule.
type OperatorNode struct {
	Op Operator
}

// ExprHandleNode references an existing expression in the owning
// optimizer, reused unchanged.
type ExprHandleNode struct {
	Handle ExprHandle
}

// GroupHandleNode references an equivalence group. The cost-based
// optimizer resolves one to its group; the heuristic optimizer, whose
// groups are single nodes, treats the handle as a node handle.
type GroupHandleNode struct {
	Handle GroupHandle
}

func (OperatorNode) optExprNode()    {}
func (ExprHandleNode) optExprNode()  {}
func (GroupHandleNode) optExprNode() {}

// OptExpression is the operator tree rules consume and produce. Mixing
// fresh operator nodes with handles to existing expressions lets a rule
// rewrite part of a tree without rebuilding the unchanged subtrees.
type OptExpression struct {
	node   OptExprNode
	inputs []*OptExpression
}

// NewOperatorExpr returns an expression introducing op over inputs.
func NewOperatorExpr(op Operator, inputs ...*OptExpression) *OptExpression {
	return &OptExpression{node: OperatorNode{Op: op}, inputs: inputs}
}

// NewExprHandleExpr returns an expression reusing the subtree at h.
func NewExprHandleExpr(h ExprHandle) *OptExpression {
	return &OptExpression{node: ExprHandleNode{Handle: h}}
}

// NewGroupHandleExpr returns an expression referencing the group at h.
func NewGroupHandleExpr(h GroupHandle) *OptExpression {
	return &OptExpression{node: GroupHandleNode{Handle: h}}
}

// Node returns the root node of the expression.
func (e *OptExpression) Node() OptExprNode {
	return e.node
}

// Inputs returns the ordered child expressions.
func (e *OptExpression) Inputs() []*OptExpression {
	return e.inputs
}

// Input returns the i-th child expression.
func (e *OptExpression) Input(i int) *OptExpression {
	return e.inputs[i]
}

// ResolveOperator returns the operator at the root of the expression,
// resolving expression handles through the owning optimizer. ok is false
// for group references, which have no single operator.
func (e *OptExpression) ResolveOperator(o Optimizer) (Operator, bool) {
	switch n := e.node.(type) {
	case OperatorNode:
		return n.Op, true
	case ExprHandleNode:
		return o.ExprAt(n.Handle).Operator(), true
	default:
		return nil, false
	}
}

// RuleResult accumulates the replacement expressions one rule
// application produces.
type RuleResult struct {
	exprs []*OptExpression
}

// Add appends one replacement expression.
func (r *RuleResult) Add(e *OptExpression) {
	r.exprs = append(r.exprs, e)
}

// Results returns the accumulated expressions in insertion order.
func (r *RuleResult) Results() []*OptExpression {
	return r.exprs
}

// Rule is a named plan transformation. Pattern describes the subtree a
// rule binds against; Apply inspects a bound expression and appends zero
// or more replacements to the result. Apply must not mutate optimizer
// state: every change flows through the returned expressions and the
// optimizer's own substitution step. An error from Apply aborts the
// optimization pass.
//
// Rewrite rules, used by the heuristic optimizer, must produce at most
// one result; the heuristic pass fails otherwise. Transformation and
// implementation rules, used by the cost-based optimizer, may produce
// several.
type Rule interface {
	// Name identifies the rule in logs and errors.
	Name() string
	// Pattern returns the subtree shape this rule binds against.
	Pattern() *Pattern
	// Apply transforms one bound expression.
	Apply(e *OptExpression, o Optimizer, result *RuleResult) error
}
