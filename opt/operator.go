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

import (
	"fmt"
	"strings"

	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/plan"
)

// Operator is one relational operation in a plan, either logical or
// physical. Operators are value types: comparing two operators compares
// the variant and its fields, never node identity.
type Operator interface {
	fmt.Stringer
	// Logical reports whether this is a logical operator. Physical
	// operators additionally implement PhysicalOperator.
	Logical() bool
	// Equal compares the operator variant and its fields.
	Equal(other Operator) bool
}

// PhysicalOperator is an operator that can appear in an executable plan.
// It knows how to estimate its own cost and how to derive the physical
// properties it produces together with the properties it requires of each
// input.
type PhysicalOperator interface {
	Operator
	// DeriveProperties returns the property alternatives this operator
	// can deliver. Each result carries one required property set per
	// input, in input order.
	DeriveProperties(ctx *DerivePropContext) ([]DerivePropResult, error)
	// Cost estimates the cost of this operator alone, excluding inputs.
	// It must be deterministic given the same inputs and statistics.
	Cost(handle ExprHandle, o Optimizer) (Cost, error)
}

// DerivePropContext carries the expression being derived and the owning
// optimizer, so operators can inspect their inputs through the optimizer
// capability set.
type DerivePropContext struct {
	Handle    ExprHandle
	Optimizer Optimizer
}

// DerivePropResult is one property alternative of a physical operator: the
// properties its output exhibits and the properties each input must
// satisfy for that to hold.
type DerivePropResult struct {
	OutputProp         PhysicalPropertySet
	InputRequiredProps []PhysicalPropertySet
}

const (
	scanCost  = Cost(1.0)
	joinCost  = Cost(1.0)
	limitCost = Cost(1.0)
	// Projection cost scales with the number of expressions evaluated
	// per row.
	projectCostPerExpr = Cost(0.1)
)

// Limit caps the number of rows flowing out of its single input.
type Limit struct {
	Count uint64
}

// NewLimit returns a limit over count rows.
func NewLimit(count uint64) Limit {
	return Limit{Count: count}
}

// Projection evaluates an ordered list of expressions per input row.
type Projection struct {
	Exprs []sql.Expression
}

// NewProjection returns a projection over the given expressions.
func NewProjection(exprs ...sql.Expression) Projection {
	return Projection{Exprs: exprs}
}

// Join combines two inputs under a join predicate. The predicate is an
// engine expression; equi-join predicates are conjunctions of column
// equalities.
type Join struct {
	Op   plan.JoinType
	Cond sql.Expression
}

// NewJoin returns a join of the given kind over cond.
func NewJoin(op plan.JoinType, cond sql.Expression) Join {
	return Join{Op: op, Cond: cond}
}

// TableScan reads a named table. Limit, when set, is a push-down hint
// capping the rows read from the table.
type TableScan struct {
	Table string
	Limit *uint64

	// source is the catalog table captured at the engine boundary. It is
	// carried so outbound conversion can rebuild a resolved table, and is
	// ignored by Equal.
	source sql.Table
}

// NewTableScan returns a scan of the named table.
func NewTableScan(table string) TableScan {
	return TableScan{Table: table}
}

// NewTableScanWithLimit returns a scan of the named table reading at most
// limit rows.
func NewTableScanWithLimit(table string, limit uint64) TableScan {
	return TableScan{Table: table, Limit: &limit}
}

// WithSource returns a copy of the scan carrying the resolved catalog
// table.
func (t TableScan) WithSource(src sql.Table) TableScan {
	t.source = src
	return t
}

// Source returns the resolved catalog table, or nil when the scan was not
// built from a resolved engine plan.
func (t TableScan) Source() sql.Table {
	return t.source
}

func (t TableScan) equal(other TableScan) bool {
	if t.Table != other.Table {
		return false
	}
	if (t.Limit == nil) != (other.Limit == nil) {
		return false
	}
	return t.Limit == nil || *t.Limit == *other.Limit
}

func (t TableScan) describe() string {
	if t.Limit != nil {
		return fmt.Sprintf("%s, limit=%d", t.Table, *t.Limit)
	}
	return t.Table
}

// LogicalLimit is the logical limit operator.
type LogicalLimit struct {
	Limit
}

// LogicalProject is the logical projection operator.
type LogicalProject struct {
	Projection
}

// LogicalJoin is the logical join operator.
type LogicalJoin struct {
	Join
}

// LogicalScan is the logical table scan operator.
type LogicalScan struct {
	TableScan
}

func (LogicalLimit) Logical() bool   { return true }
func (LogicalProject) Logical() bool { return true }
func (LogicalJoin) Logical() bool    { return true }
func (LogicalScan) Logical() bool    { return true }

func (l LogicalLimit) String() string {
	return fmt.Sprintf("LogicalLimit(%d)", l.Count)
}

func (p LogicalProject) String() string {
	return fmt.Sprintf("LogicalProject(%s)", exprsString(p.Exprs))
}

func (j LogicalJoin) String() string {
	return fmt.Sprintf("LogicalJoin(%s, %s)", j.Op, exprString(j.Cond))
}

func (s LogicalScan) String() string {
	return fmt.Sprintf("LogicalScan(%s)", s.describe())
}

func (l LogicalLimit) Equal(other Operator) bool {
	o, ok := other.(LogicalLimit)
	return ok && l.Count == o.Count
}

func (p LogicalProject) Equal(other Operator) bool {
	o, ok := other.(LogicalProject)
	return ok && exprsEqual(p.Exprs, o.Exprs)
}

func (j LogicalJoin) Equal(other Operator) bool {
	o, ok := other.(LogicalJoin)
	return ok && j.Op == o.Op && exprEqual(j.Cond, o.Cond)
}

func (s LogicalScan) Equal(other Operator) bool {
	o, ok := other.(LogicalScan)
	return ok && s.TableScan.equal(o.TableScan)
}

// PhysicalLimit implements a logical limit by counting rows.
type PhysicalLimit struct {
	Limit
}

// PhysicalProject implements a logical projection by row-wise expression
// evaluation.
type PhysicalProject struct {
	Projection
}

// HashJoin implements a logical join by building a hash table over one
// input and probing it with the other.
type HashJoin struct {
	Join
}

// PhysicalTableScan implements a logical scan as a sequential read.
type PhysicalTableScan struct {
	TableScan
}

func (PhysicalLimit) Logical() bool     { return false }
func (PhysicalProject) Logical() bool   { return false }
func (HashJoin) Logical() bool          { return false }
func (PhysicalTableScan) Logical() bool { return false }

func (l PhysicalLimit) String() string {
	return fmt.Sprintf("PhysicalLimit(%d)", l.Count)
}

func (p PhysicalProject) String() string {
	return fmt.Sprintf("PhysicalProject(%s)", exprsString(p.Exprs))
}

func (j HashJoin) String() string {
	return fmt.Sprintf("HashJoin(%s, %s)", j.Op, exprString(j.Cond))
}

func (s PhysicalTableScan) String() string {
	return fmt.Sprintf("PhysicalTableScan(%s)", s.describe())
}

func (l PhysicalLimit) Equal(other Operator) bool {
	o, ok := other.(PhysicalLimit)
	return ok && l.Count == o.Count
}

func (p PhysicalProject) Equal(other Operator) bool {
	o, ok := other.(PhysicalProject)
	return ok && exprsEqual(p.Exprs, o.Exprs)
}

func (j HashJoin) Equal(other Operator) bool {
	o, ok := other.(HashJoin)
	return ok && j.Op == o.Op && exprEqual(j.Cond, o.Cond)
}

func (s PhysicalTableScan) Equal(other Operator) bool {
	o, ok := other.(PhysicalTableScan)
	return ok && s.TableScan.equal(o.TableScan)
}

func (l PhysicalLimit) DeriveProperties(*DerivePropContext) ([]DerivePropResult, error) {
	return []DerivePropResult{{
		OutputProp:         PhysicalPropertySet{},
		InputRequiredProps: []PhysicalPropertySet{{}},
	}}, nil
}

func (l PhysicalLimit) Cost(ExprHandle, Optimizer) (Cost, error) {
	return limitCost, nil
}

func (p PhysicalProject) DeriveProperties(*DerivePropContext) ([]DerivePropResult, error) {
	return []DerivePropResult{{
		OutputProp:         PhysicalPropertySet{},
		InputRequiredProps: []PhysicalPropertySet{{}},
	}}, nil
}

func (p PhysicalProject) Cost(ExprHandle, Optimizer) (Cost, error) {
	return projectCostPerExpr * Cost(len(p.Exprs)), nil
}

func (j HashJoin) DeriveProperties(*DerivePropContext) ([]DerivePropResult, error) {
	results := []DerivePropResult{{
		OutputProp: PhysicalPropertySet{},
		InputRequiredProps: []PhysicalPropertySet{
			{}, {},
		},
	}}

	// When the predicate is a conjunction of column equalities the join
	// can also deliver output partitioned on the build keys, at the price
	// of requiring both inputs hashed on their respective keys.
	if left, right, ok := EquiJoinKeys(j.Cond); ok {
		results = append(results, DerivePropResult{
			OutputProp: PhysicalPropertySet{
				Distribution: HashedDistribution(left),
			},
			InputRequiredProps: []PhysicalPropertySet{
				{Distribution: HashedDistribution(left)},
				{Distribution: HashedDistribution(right)},
			},
		})
	}

	return results, nil
}

func (j HashJoin) Cost(ExprHandle, Optimizer) (Cost, error) {
	return joinCost, nil
}

func (s PhysicalTableScan) DeriveProperties(*DerivePropContext) ([]DerivePropResult, error) {
	return []DerivePropResult{{
		OutputProp:         PhysicalPropertySet{},
		InputRequiredProps: nil,
	}}, nil
}

func (s PhysicalTableScan) Cost(ExprHandle, Optimizer) (Cost, error) {
	return scanCost, nil
}

// Expressions are engine values without value equality of their own, so
// operators compare them by their rendered form.
func exprEqual(a, b sql.Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

func exprsEqual(a, b []sql.Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !exprEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func exprString(e sql.Expression) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

func exprsString(exprs []sql.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = exprString(e)
	}
	return strings.Join(parts, ", ")
}
