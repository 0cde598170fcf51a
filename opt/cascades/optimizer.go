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

// Package cascades implements a cost-based plan optimizer after Graefe's
// Cascades framework. Equivalent plans are enumerated into a memo of
// equivalence groups, and a top-down search selects the cheapest
// physical expression satisfying the required physical properties of
// each (group, requirement) pair.
package cascades

import (
	"github.com/sirupsen/logrus"

	"github.com/dolthub/go-plan-optimizer/opt"
)

// DefaultMaxMemoExprs bounds the number of distinct expressions one memo
// may hold before exploration stops expanding it.
const DefaultMaxMemoExprs = 1 << 12

// Optimizer is the cost-based optimizer. One value optimizes one plan
// and is discarded afterwards.
type Optimizer struct {
	required       opt.PhysicalPropertySet
	transformation []opt.Rule
	implementation []opt.Rule
	memo           *memo
	root           GroupID
	ctx            *opt.Context
	maxMemoExprs   int
}

// New returns an optimizer that searches for the cheapest physical form
// of plan whose output satisfies required. Transformation rules populate
// groups with equivalent logical expressions; implementation rules turn
// them into physical ones.
func New(required opt.PhysicalPropertySet, transformation, implementation []opt.Rule, plan *opt.Plan, ctx *opt.Context) *Optimizer {
	m := newMemo()
	root := m.addPlan(plan.Root(), make(map[opt.PlanNodeID]GroupID))
	return &Optimizer{
		required:       required,
		transformation: transformation,
		implementation: implementation,
		memo:           m,
		root:           root,
		ctx:            ctx,
		maxMemoExprs:   DefaultMaxMemoExprs,
	}
}

// Context implements opt.Optimizer.
func (o *Optimizer) Context() *opt.Context {
	return o.ctx
}

// GroupAt implements opt.Optimizer.
func (o *Optimizer) GroupAt(h opt.GroupHandle) opt.Group {
	return o.memo.group(h.(GroupID))
}

// ExprAt implements opt.Optimizer.
func (o *Optimizer) ExprAt(h opt.ExprHandle) opt.Expr {
	return o.memo.exprAt(h.(ExprID))
}

// Candidates implements opt.Optimizer. An expression handle names
// exactly one expression; a group handle expands to every expression of
// the group, which is how a pattern descends into child groups.
func (o *Optimizer) Candidates(h opt.ExprHandle) []opt.ExprHandle {
	switch h := h.(type) {
	case ExprID:
		return []opt.ExprHandle{h}
	case GroupID:
		g := o.memo.group(h)
		cands := make([]opt.ExprHandle, len(g.exprs))
		for i, e := range g.exprs {
			cands[i] = e.id
		}
		return cands
	default:
		return nil
	}
}

// FindBestPlan searches the plan space and returns the cheapest physical
// plan satisfying the required properties, or ErrPlanNotFound when no
// complete physical plan exists under them.
func (o *Optimizer) FindBestPlan() (*opt.Plan, error) {
	span, ctx := o.ctx.Span("cascades.FindBestPlan")
	defer span.Finish()

	if err := o.optimizeGroup(ctx, o.root, o.required); err != nil {
		return nil, err
	}
	return o.extractPlan()
}

// optimizeGroup computes the winner of (g, required): it explores the
// group to logical fixpoint, implements its expressions, and costs every
// property alternative of every physical expression, recursing into the
// child groups under that alternative's input requirements. Results are
// memoized per (group, required) cell, and partial costs are pruned
// against the cell's incumbent.
func (o *Optimizer) optimizeGroup(ctx *opt.Context, gid GroupID, required opt.PhysicalPropertySet) error {
	key, err := required.HashKey()
	if err != nil {
		return err
	}
	grp := o.memo.group(gid)
	if _, done := grp.winners[key]; done {
		return nil
	}

	if err := o.exploreGroup(ctx, gid); err != nil {
		return err
	}
	if err := o.implementGroup(ctx, gid); err != nil {
		return err
	}

	for _, expr := range grp.exprs {
		phys, ok := expr.op.(opt.PhysicalOperator)
		if !ok {
			continue
		}
		alts, err := phys.DeriveProperties(&opt.DerivePropContext{Handle: expr.id, Optimizer: o})
		if err != nil {
			return err
		}
		for _, alt := range alts {
			if !alt.OutputProp.Satisfies(required) {
				// No enforcer operator exists in the operator set, so an
				// alternative that cannot deliver the requirement is
				// pruned instead of enforced.
				continue
			}
			if err := o.costAlternative(ctx, grp, key, expr, alt); err != nil {
				return err
			}
		}
	}
	return nil
}

// costAlternative costs one (expression, property alternative) pair and
// installs it as the cell's winner when it beats the incumbent.
func (o *Optimizer) costAlternative(ctx *opt.Context, grp *group, key uint64, expr *groupExpr, alt opt.DerivePropResult) error {
	phys := expr.op.(opt.PhysicalOperator)
	total, err := phys.Cost(expr.id, o)
	if err != nil {
		return err
	}

	for i, child := range expr.children {
		childReq := opt.PhysicalPropertySet{}
		if i < len(alt.InputRequiredProps) {
			childReq = alt.InputRequiredProps[i]
		}
		if err := o.optimizeGroup(ctx, child, childReq); err != nil {
			return err
		}
		childKey, err := childReq.HashKey()
		if err != nil {
			return err
		}
		w, ok := o.memo.group(child).winners[childKey]
		if !ok {
			// The child has no implementation under the requirement;
			// this alternative is infeasible.
			return nil
		}
		total = total.Add(w.cost)
		if incumbent, ok := grp.winners[key]; ok && !total.Less(incumbent.cost) {
			return nil
		}
	}

	if incumbent, ok := grp.winners[key]; !ok || total.Less(incumbent.cost) {
		grp.winners[key] = &winner{
			cost:       total,
			expr:       expr.id,
			outputProp: alt.OutputProp,
			inputProps: alt.InputRequiredProps,
		}
		ctx.Logger().WithFields(logrus.Fields{
			"group":    grp.id,
			"operator": expr.op.String(),
			"cost":     float64(total),
		}).Debug("new group winner")
	}
	return nil
}

// exploreGroup applies the transformation rules to the group's logical
// expressions until no new expression appears. Child groups are explored
// first so patterns that descend into them see their full contents.
func (o *Optimizer) exploreGroup(ctx *opt.Context, gid GroupID) error {
	grp := o.memo.group(gid)
	if grp.explored {
		return nil
	}
	grp.explored = true

	for i := 0; i < len(grp.exprs); i++ {
		for _, child := range grp.exprs[i].children {
			if err := o.exploreGroup(ctx, child); err != nil {
				return err
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for i := 0; i < len(grp.exprs); i++ {
			expr := grp.exprs[i]
			if !expr.op.Logical() {
				continue
			}
			fired, err := o.applyRules(ctx, o.transformation, expr, gid)
			if err != nil {
				return err
			}
			changed = changed || fired
		}
	}
	return nil
}

// implementGroup applies the implementation rules once to every logical
// expression of the group.
func (o *Optimizer) implementGroup(ctx *opt.Context, gid GroupID) error {
	grp := o.memo.group(gid)
	for i := 0; i < len(grp.exprs); i++ {
		expr := grp.exprs[i]
		if !expr.op.Logical() {
			continue
		}
		if _, err := o.applyRules(ctx, o.implementation, expr, gid); err != nil {
			return err
		}
	}
	return nil
}

// applyRules binds every rule at expr and inserts every produced
// expression into the target group. It reports whether any insertion was
// new.
func (o *Optimizer) applyRules(ctx *opt.Context, rules []opt.Rule, expr *groupExpr, target GroupID) (bool, error) {
	changed := false
	for _, rule := range rules {
		binding := opt.NewBinding(expr.id, rule.Pattern(), o)
		for bound, ok := binding.Next(); ok; bound, ok = binding.Next() {
			var result opt.RuleResult
			if err := rule.Apply(bound, o, &result); err != nil {
				return false, err
			}
			for _, e := range result.Results() {
				if o.memo.exprCount() >= o.maxMemoExprs {
					ctx.Logger().WithField("limit", o.maxMemoExprs).
						Warn("memo expression limit reached; stopping expansion")
					return changed, nil
				}
				if _, isNew := o.insertOptExpr(e, target); isNew {
					changed = true
				}
			}
		}
	}
	return changed, nil
}

// insertOptExpr stores a rule-produced expression tree in the memo.
// Handle children resolve to the groups they already live in; fresh
// operator children get groups of their own.
func (o *Optimizer) insertOptExpr(e *opt.OptExpression, target GroupID) (ExprID, bool) {
	if n, ok := e.Node().(opt.ExprHandleNode); ok {
		// The result reuses an existing expression unchanged.
		return n.Handle.(ExprID), false
	}
	op, children := o.flatten(e)
	return o.memo.insert(target, op, children)
}

func (o *Optimizer) flatten(e *opt.OptExpression) (opt.Operator, []GroupID) {
	n := e.Node().(opt.OperatorNode)
	children := make([]GroupID, len(e.Inputs()))
	for i, in := range e.Inputs() {
		children[i] = o.childGroup(in)
	}
	return n.Op, children
}

func (o *Optimizer) childGroup(e *opt.OptExpression) GroupID {
	switch n := e.Node().(type) {
	case opt.ExprHandleNode:
		return n.Handle.(ExprID).Group
	case opt.GroupHandleNode:
		return n.Handle.(GroupID)
	case opt.OperatorNode:
		op, children := o.flatten(e)
		g := o.memo.newGroup(nil, nil)
		o.memo.insert(g.id, op, children)
		return g.id
	default:
		panic("cascades: unknown opt expression node")
	}
}

// extractPlan materializes the winning physical plan of the root group.
func (o *Optimizer) extractPlan() (*opt.Plan, error) {
	nextID := opt.PlanNodeID(0)
	root, err := o.buildWinner(o.root, o.required, &nextID)
	if err != nil {
		return nil, err
	}
	return opt.NewPlan(root), nil
}

func (o *Optimizer) buildWinner(gid GroupID, required opt.PhysicalPropertySet, nextID *opt.PlanNodeID) (*opt.PlanNode, error) {
	key, err := required.HashKey()
	if err != nil {
		return nil, err
	}
	grp := o.memo.group(gid)
	w, ok := grp.winners[key]
	if !ok {
		return nil, opt.ErrPlanNotFound.New(gid)
	}

	expr := o.memo.exprAt(w.expr)
	inputs := make([]*opt.PlanNode, len(expr.children))
	for i, child := range expr.children {
		childReq := opt.PhysicalPropertySet{}
		if i < len(w.inputProps) {
			childReq = w.inputProps[i]
		}
		inputs[i], err = o.buildWinner(child, childReq, nextID)
		if err != nil {
			return nil, err
		}
	}

	outputProp := w.outputProp
	node := opt.NewPlanNodeBuilder(*nextID, expr.op).
		AddInputs(inputs...).
		WithLogicalProp(grp.logicalProp).
		WithStatistics(grp.stat).
		WithPhysicalProps(&outputProp).
		Build()
	*nextID++
	return node, nil
}

var _ opt.Optimizer = (*Optimizer)(nil)
