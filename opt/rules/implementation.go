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

// ImplementTableScan turns a logical scan into a physical sequential
// scan, keeping the row-limit hint and catalog source.
type ImplementTableScan struct{}

var implementTableScanPattern = opt.NewLeafPattern(isLogicalScan)

// Name implements opt.Rule.
func (ImplementTableScan) Name() string {
	return "implement_table_scan"
}

// Pattern implements opt.Rule.
func (ImplementTableScan) Pattern() *opt.Pattern {
	return implementTableScanPattern
}

// Apply implements opt.Rule.
func (ImplementTableScan) Apply(e *opt.OptExpression, o opt.Optimizer, result *opt.RuleResult) error {
	op, _ := e.ResolveOperator(o)
	scan := op.(opt.LogicalScan)
	result.Add(opt.NewOperatorExpr(opt.PhysicalTableScan{TableScan: scan.TableScan}))
	return nil
}

// ImplementLimit turns a logical limit into a physical row counter over
// the same input.
type ImplementLimit struct{}

var implementLimitPattern = opt.NewPattern(isLogicalLimit).
	Leaf(opt.AnyOperator).
	Build()

// Name implements opt.Rule.
func (ImplementLimit) Name() string {
	return "implement_limit"
}

// Pattern implements opt.Rule.
func (ImplementLimit) Pattern() *opt.Pattern {
	return implementLimitPattern
}

// Apply implements opt.Rule.
func (ImplementLimit) Apply(e *opt.OptExpression, o opt.Optimizer, result *opt.RuleResult) error {
	op, _ := e.ResolveOperator(o)
	limit := op.(opt.LogicalLimit)
	result.Add(opt.NewOperatorExpr(opt.PhysicalLimit{Limit: limit.Limit}, e.Input(0)))
	return nil
}

// ImplementProject turns a logical projection into row-wise expression
// evaluation over the same input.
type ImplementProject struct{}

var implementProjectPattern = opt.NewPattern(isLogicalProject).
	Leaf(opt.AnyOperator).
	Build()

// Name implements opt.Rule.
func (ImplementProject) Name() string {
	return "implement_project"
}

// Pattern implements opt.Rule.
func (ImplementProject) Pattern() *opt.Pattern {
	return implementProjectPattern
}

// Apply implements opt.Rule.
func (ImplementProject) Apply(e *opt.OptExpression, o opt.Optimizer, result *opt.RuleResult) error {
	op, _ := e.ResolveOperator(o)
	proj := op.(opt.LogicalProject)
	result.Add(opt.NewOperatorExpr(opt.PhysicalProject{Projection: proj.Projection}, e.Input(0)))
	return nil
}

// ImplementHashJoin turns a logical join into a hash join over the same
// inputs.
type ImplementHashJoin struct{}

var implementHashJoinPattern = opt.NewPattern(isLogicalJoin).
	Leaf(opt.AnyOperator).
	Leaf(opt.AnyOperator).
	Build()

// Name implements opt.Rule.
func (ImplementHashJoin) Name() string {
	return "implement_hash_join"
}

// Pattern implements opt.Rule.
func (ImplementHashJoin) Pattern() *opt.Pattern {
	return implementHashJoinPattern
}

// Apply implements opt.Rule.
func (ImplementHashJoin) Apply(e *opt.OptExpression, o opt.Optimizer, result *opt.RuleResult) error {
	op, _ := e.ResolveOperator(o)
	join := op.(opt.LogicalJoin)
	result.Add(opt.NewOperatorExpr(opt.HashJoin{Join: join.Join}, e.Input(0), e.Input(1)))
	return nil
}

var (
	_ opt.Rule = ImplementTableScan{}
	_ opt.Rule = ImplementLimit{}
	_ opt.Rule = ImplementProject{}
	_ opt.Rule = ImplementHashJoin{}
)
