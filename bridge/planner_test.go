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
	"testing"

	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/expression"
	"github.com/dolthub/go-mysql-server/sql/plan"
	"github.com/dolthub/go-mysql-server/sql/types"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-plan-optimizer/opt"
	"github.com/dolthub/go-plan-optimizer/opt/rules"
)

func TestHeuristicOptimizeCollapsesProjection(t *testing.T) {
	require := require.New(t)
	rt1, _ := testTables()

	node := plan.NewProject([]sql.Expression{
		expression.NewGetFieldWithTable(0, types.Int64, "mydb", "t1", "a", false),
		expression.NewGetFieldWithTable(1, types.Int64, "mydb", "t1", "b", false),
	}, rt1)

	out, err := HeuristicOptimize{Rules: rules.DefaultRewriteRules()}.
		Apply(opt.NewEmptyContext(), node)
	require.NoError(err)

	// The projection of the full schema is gone; only the table remains.
	require.Equal(rt1.String(), out.String())
}

func TestHeuristicOptimizePushesLimit(t *testing.T) {
	require := require.New(t)
	rt1, _ := testTables()

	node := plan.NewLimit(expression.NewLiteral(int64(10), types.Int64), rt1)
	out, err := HeuristicOptimize{Rules: rules.DefaultRewriteRules()}.
		Apply(opt.NewEmptyContext(), node)
	require.NoError(err)

	// The limit is folded into the scan's read hint. The engine has no
	// limit field on its table node, so the hint surfaces as a limit
	// over the table again on the way out.
	require.Equal(node.String(), out.String())
}

func TestCascadesOptimizeImplementsHashJoin(t *testing.T) {
	require := require.New(t)
	rt1, rt2 := testTables()

	node := plan.NewJoin(rt1, rt2, plan.JoinTypeInner, joinCond())
	p, err := CascadesOptimize{Implementation: rules.DefaultImplementationRules()}.
		Apply(opt.NewEmptyContext(), node)
	require.NoError(err)

	join, ok := p.Root().Operator().(opt.HashJoin)
	require.True(ok)
	require.Equal(plan.JoinTypeInner, join.Op)
	require.Len(p.Root().Inputs(), 2)
	require.Equal("PhysicalTableScan(t1)", p.Root().Inputs()[0].Operator().String())
	require.Equal("PhysicalTableScan(t2)", p.Root().Inputs()[1].Operator().String())
}

func TestHeuristicOptimizeSurfacesConversionErrors(t *testing.T) {
	require := require.New(t)
	rt1, _ := testTables()

	filter := plan.NewFilter(expression.NewLiteral(true, types.Boolean), rt1)
	_, err := HeuristicOptimize{Rules: rules.DefaultRewriteRules()}.
		Apply(opt.NewEmptyContext(), filter)
	require.Error(err)
	require.True(opt.ErrUnsupportedPlan.Is(errorCause(err)))
}

func errorCause(err error) error {
	type causer interface {
		Cause() error
	}
	for {
		c, ok := err.(causer)
		if !ok {
			return err
		}
		err = c.Cause()
	}
}
