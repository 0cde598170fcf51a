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
	"github.com/dolthub/go-mysql-server/sql/expression"

	"github.com/dolthub/go-plan-optimizer/opt"
)

// RemoveProjection is a rewrite rule that drops a projection over a
// table scan when the projection is exactly the scan's schema: every
// output column, in schema order, with no computation. The scan then
// serves the projection's parents directly.
//
// The scan's schema comes from the logical property captured at the
// engine boundary; a scan without one is left alone.
type RemoveProjection struct{}

var removeProjectionPattern = opt.NewPattern(isLogicalProject).
	Leaf(isLogicalScan).
	Build()

// Name implements opt.Rule.
func (RemoveProjection) Name() string {
	return "remove_projection"
}

// Pattern implements opt.Rule.
func (RemoveProjection) Pattern() *opt.Pattern {
	return removeProjectionPattern
}

// Apply implements opt.Rule.
func (RemoveProjection) Apply(e *opt.OptExpression, o opt.Optimizer, result *opt.RuleResult) error {
	op, _ := e.ResolveOperator(o)
	proj := op.(opt.LogicalProject)

	scanHandle := childHandle(e, 0)
	prop := o.GroupAt(scanHandle).LogicalProp()
	if prop == nil {
		return nil
	}

	schema := prop.Schema
	if len(proj.Exprs) != len(schema) {
		return nil
	}
	for i, pe := range proj.Exprs {
		gf, ok := pe.(*expression.GetField)
		if !ok || gf.Name() != schema[i].Name {
			return nil
		}
	}

	result.Add(e.Input(0))
	return nil
}

var _ opt.Rule = RemoveProjection{}
