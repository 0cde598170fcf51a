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

// Package rules holds the built-in optimization rules. Rewrite rules
// drive the heuristic optimizer; transformation and implementation rules
// drive the cost-based one. All of them speak the same rule contract.
package rules

import (
	"github.com/dolthub/go-plan-optimizer/opt"
)

func isLogicalLimit(op opt.Operator) bool {
	_, ok := op.(opt.LogicalLimit)
	return ok
}

func isLogicalProject(op opt.Operator) bool {
	_, ok := op.(opt.LogicalProject)
	return ok
}

func isLogicalJoin(op opt.Operator) bool {
	_, ok := op.(opt.LogicalJoin)
	return ok
}

func isLogicalScan(op opt.Operator) bool {
	_, ok := op.(opt.LogicalScan)
	return ok
}

// DefaultRewriteRules returns the rewrite rules the heuristic optimizer
// runs by default, in application order.
func DefaultRewriteRules() []opt.Rule {
	return []opt.Rule{
		RemoveProjection{},
		PushLimitIntoScan{},
	}
}

// DefaultImplementationRules returns the implementation rules that turn
// every supported logical operator into its physical counterpart.
func DefaultImplementationRules() []opt.Rule {
	return []opt.Rule{
		ImplementTableScan{},
		ImplementLimit{},
		ImplementProject{},
		ImplementHashJoin{},
	}
}

// childHandle returns the expression handle a bound leaf child refers
// to.
func childHandle(e *opt.OptExpression, i int) opt.ExprHandle {
	return e.Input(i).Node().(opt.ExprHandleNode).Handle
}
