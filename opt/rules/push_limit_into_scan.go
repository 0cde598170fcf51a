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

package rules

import (
	"github.com/dolthub/go-plan-optimizer/opt"
)

// PushLimitIntoScan is a rewrite rule that folds a limit over a table
// scan into the scan's row-limit hint, removing the limit node. When the
// scan already carries a hint, the smaller of the two wins.
type PushLimitIntoScan struct{}

var pushLimitIntoScanPattern = opt.NewPattern(isLogicalLimit).
	Leaf(isLogicalScan).
	Build()

// Name implements opt.Rule.
func (PushLimitIntoScan) Name() string {
	return "push_limit_into_scan"
}

// Pattern implements opt.Rule.
func (PushLimitIntoScan) Pattern() *opt.Pattern {
	return pushLimitIntoScanPattern
}

// Apply implements opt.Rule.
func (PushLimitIntoScan) Apply(e *opt.OptExpression, o opt.Optimizer, result *opt.RuleResult) error {
	op, _ := e.ResolveOperator(o)
	limit := op.(opt.LogicalLimit)

	scanHandle := childHandle(e, 0)
	scan := o.ExprAt(scanHandle).Operator().(opt.LogicalScan)

	count := limit.Count
	if scan.TableScan.Limit != nil && *scan.TableScan.Limit < count {
		count = *scan.TableScan.Limit
	}

	pushed := opt.NewTableScanWithLimit(scan.Table, count)
	if src := scan.Source(); src != nil {
		pushed = pushed.WithSource(src)
	}
	result.Add(opt.NewOperatorExpr(opt.LogicalScan{TableScan: pushed}))
	return nil
}

var _ opt.Rule = PushLimitIntoScan{}
