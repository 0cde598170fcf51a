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

// Package heuristic implements a rule-based plan optimizer. It applies a
// batch of rewrite rules to the plan repeatedly until a fixed point is
// reached or the iteration cap runs out, in the manner of Calcite's
// HepPlanner. It is useful on its own for cheap point queries and as a
// preprocessing stage in front of the cost-based optimizer.
package heuristic

import (
	"github.com/sirupsen/logrus"

	"github.com/dolthub/go-plan-optimizer/opt"
)

// MatchOrder selects the order nodes are visited within one sweep.
type MatchOrder byte

const (
	// TopDown visits ancestors before descendants.
	TopDown MatchOrder = iota
	// BottomUp visits descendants before ancestors.
	BottomUp
)

func (m MatchOrder) String() string {
	if m == BottomUp {
		return "bottom-up"
	}
	return "top-down"
}

// Optimizer is the heuristic optimizer. One value optimizes one plan and
// is discarded afterwards.
type Optimizer struct {
	matchOrder   MatchOrder
	maxIterTimes int
	rules        []opt.Rule
	graph        *PlanGraph
	ctx          *opt.Context

	// iters and fired count outer iterations and rule firings, for
	// tests and logs.
	iters int
	fired int
}

// New returns an optimizer that rewrites plan with rules in the given
// match order, for at most maxIterTimes iterations.
func New(order MatchOrder, maxIterTimes int, rules []opt.Rule, plan *opt.Plan, ctx *opt.Context) *Optimizer {
	return &Optimizer{
		matchOrder:   order,
		maxIterTimes: maxIterTimes,
		rules:        rules,
		graph:        newPlanGraph(plan),
		ctx:          ctx,
	}
}

// Context implements opt.Optimizer.
func (o *Optimizer) Context() *opt.Context {
	return o.ctx
}

// GroupAt implements opt.Optimizer. The heuristic optimizer has no
// equivalence groups; a group handle resolves to the single node it
// names.
func (o *Optimizer) GroupAt(h opt.GroupHandle) opt.Group {
	return o.graph.node(h.(NodeID))
}

// ExprAt implements opt.Optimizer.
func (o *Optimizer) ExprAt(h opt.ExprHandle) opt.Expr {
	return o.graph.node(h.(NodeID))
}

// Candidates implements opt.Optimizer. Every handle names exactly one
// expression here.
func (o *Optimizer) Candidates(h opt.ExprHandle) []opt.ExprHandle {
	return []opt.ExprHandle{h}
}

// FindBestPlan rewrites the plan to a fixed point and returns it. Each
// outer iteration sweeps the nodes in match order and tries every rule
// at every node; the first rule firing that changes the graph ends the
// sweep, so the next iteration re-enumerates from the new root. The pass
// ends when a full sweep changes nothing or maxIterTimes is reached.
func (o *Optimizer) FindBestPlan() (*opt.Plan, error) {
	span, ctx := o.ctx.Span("heuristic.FindBestPlan")
	defer span.Finish()
	log := ctx.Logger().WithField("match_order", o.matchOrder)

	o.iters = 0
	for i := 0; i < o.maxIterTimes; i++ {
		o.iters++
		fixedPoint := true
		for _, id := range o.graph.nodeIDs(o.matchOrder) {
			for _, rule := range o.rules {
				changed, err := o.applyRule(ctx, rule, id)
				if err != nil {
					return nil, err
				}
				if changed {
					fixedPoint = false
					break
				}
			}
			if !fixedPoint {
				break
			}
		}
		if fixedPoint {
			return o.graph.toPlan(), nil
		}
	}

	log.Warnf("reached max iteration times (%d) before a fixed point", o.maxIterTimes)
	return o.graph.toPlan(), nil
}

// applyRule binds rule's pattern at id and, on a match, substitutes the
// rule's replacement for the node. A rewrite rule yields at most one
// replacement; more is an error that aborts the pass.
func (o *Optimizer) applyRule(ctx *opt.Context, rule opt.Rule, id NodeID) (bool, error) {
	bound, ok := opt.NewBinding(id, rule.Pattern(), o).Next()
	if !ok {
		return false, nil
	}

	log := ctx.Logger().WithFields(logrus.Fields{
		"rule":     rule.Name(),
		"operator": o.graph.node(id).op.String(),
	})

	var result opt.RuleResult
	if err := rule.Apply(bound, o, &result); err != nil {
		return false, err
	}

	exprs := result.Results()
	switch {
	case len(exprs) == 0:
		return false, nil
	case len(exprs) > 1:
		return false, opt.ErrRewriteRuleResult.New()
	}

	changed := o.graph.Replace(exprs[0], id)
	if changed {
		o.fired++
		log.Debug("rule fired")
	}
	return changed, nil
}

var _ opt.Optimizer = (*Optimizer)(nil)
