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

// ExprHandle is an opaque reference to an expression inside an
// optimizer's internal storage. Handles are created and interpreted only
// by the optimizer that owns them; rules and the binding engine pass them
// through without looking inside.
type ExprHandle interface{}

// GroupHandle is an opaque reference to an equivalence group. For the
// heuristic optimizer a group degenerates to a single graph node, so
// group and expression handles coincide there.
type GroupHandle interface{}

// Expr is an optimizer-resident expression: an operator plus handles to
// its inputs. Input access goes through the owning optimizer because the
// expression's storage lives there.
type Expr interface {
	// Operator returns the operator at this expression.
	Operator() Operator
	// InputCount returns the number of inputs.
	InputCount(o Optimizer) int
	// Input returns a handle to the i-th input.
	Input(i int, o Optimizer) ExprHandle
}

// Group is an equivalence class of expressions producing the same
// logical result, carrying the properties shared by all of them.
type Group interface {
	// LogicalProp returns the group's logical property, or nil when it
	// has not been derived.
	LogicalProp() *LogicalProperty
	// Stat returns the group's statistics, or nil.
	Stat() *Statistics
}

// Optimizer is the capability set rules and operators see. Both the
// heuristic and the cost-based optimizer implement it, so the same rule
// sources drive either one.
type Optimizer interface {
	// Context returns the ambient state of the running pass.
	Context() *Context
	// GroupAt resolves a group handle.
	GroupAt(h GroupHandle) Group
	// ExprAt resolves an expression handle.
	ExprAt(h ExprHandle) Expr
	// Candidates enumerates the concrete expressions a pattern node may
	// match at h. The heuristic optimizer returns h itself; the
	// cost-based optimizer expands a group reference into every
	// expression of the group.
	Candidates(h ExprHandle) []ExprHandle
	// FindBestPlan runs the optimization pass to completion and returns
	// the optimized plan. The optimizer value must not be reused after.
	FindBestPlan() (*Plan, error)
}
