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

package bridge

import (
	"github.com/dolthub/go-mysql-server/sql"
	"github.com/pkg/errors"

	"github.com/dolthub/go-plan-optimizer/opt"
	"github.com/dolthub/go-plan-optimizer/opt/cascades"
	"github.com/dolthub/go-plan-optimizer/opt/heuristic"
)

// DefaultMaxIterTimes caps the heuristic optimizer's outer iterations
// when optimizing through the planner hooks.
const DefaultMaxIterTimes = 1000

// HeuristicOptimize rewrites an engine logical plan with the given
// rewrite rules and returns it as an engine plan again:
//
//	engine plan -> opt plan -> heuristic optimizer -> opt plan -> engine plan
type HeuristicOptimize struct {
	MatchOrder   heuristic.MatchOrder
	MaxIterTimes int
	Rules        []opt.Rule
}

// Apply runs the rewrite pass over node.
func (h HeuristicOptimize) Apply(ctx *opt.Context, node sql.Node) (sql.Node, error) {
	p, err := FromNode(node)
	if err != nil {
		return nil, errors.Wrap(err, "inbound conversion")
	}

	maxIter := h.MaxIterTimes
	if maxIter == 0 {
		maxIter = DefaultMaxIterTimes
	}
	optimized, err := heuristic.New(h.MatchOrder, maxIter, h.Rules, p, ctx).FindBestPlan()
	if err != nil {
		return nil, err
	}

	out, err := ToNode(optimized)
	if err != nil {
		return nil, errors.Wrap(err, "outbound conversion")
	}
	return out, nil
}

// CascadesOptimize searches for the cheapest physical form of an engine
// logical plan:
//
//	engine plan -> opt plan -> cost-based optimizer -> physical opt plan
//
// The physical plan stays in the optimizer's representation; handing it
// to an executor is the caller's concern.
type CascadesOptimize struct {
	Required       opt.PhysicalPropertySet
	Transformation []opt.Rule
	Implementation []opt.Rule
}

// Apply runs the cost-based search over node.
func (c CascadesOptimize) Apply(ctx *opt.Context, node sql.Node) (*opt.Plan, error) {
	p, err := FromNode(node)
	if err != nil {
		return nil, errors.Wrap(err, "inbound conversion")
	}
	return cascades.New(c.Required, c.Transformation, c.Implementation, p, ctx).FindBestPlan()
}
