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

package heuristic

import (
	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/types"

	"github.com/dolthub/go-plan-optimizer/opt"
)

func sqlSchema(table string, cols ...string) sql.Schema {
	schema := make(sql.Schema, len(cols))
	for i, col := range cols {
		schema[i] = &sql.Column{Name: col, Source: table, Type: types.Int64}
	}
	return schema
}

// scanWithSchema returns a scan node carrying its schema as logical
// property, the way inbound conversion builds them.
func scanWithSchema(id opt.PlanNodeID, table string, cols ...string) *opt.PlanNode {
	return opt.NewPlanNodeBuilder(id, opt.LogicalScan{TableScan: opt.NewTableScan(table)}).
		WithLogicalProp(opt.NewLogicalProperty(sqlSchema(table, cols...))).
		Build()
}
