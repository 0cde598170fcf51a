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

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrUnsupportedPlan is returned when inbound conversion meets an
	// engine plan node the optimizer does not understand.
	ErrUnsupportedPlan = errors.NewKind("unsupported engine plan node: %s")

	// ErrUnsupportedJoinCond is returned when outbound conversion meets a
	// join condition that is not a conjunction of column equalities.
	ErrUnsupportedJoinCond = errors.NewKind("unsupported join condition: %s")

	// ErrRewriteRuleResult is returned when a rewrite rule produces more
	// than one replacement expression.
	ErrRewriteRuleResult = errors.NewKind("Rewrite rule should not return no more than 1 result.")

	// ErrMissingLogicalProp is returned when a conversion needs a node's
	// logical property and the node does not carry one.
	ErrMissingLogicalProp = errors.NewKind("plan node %s has no logical property")

	// ErrPlanNotFound is returned when the cost-based search cannot
	// produce a physical plan satisfying the required properties.
	ErrPlanNotFound = errors.NewKind("no physical plan found for group %d")
)
