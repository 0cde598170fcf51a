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

// Package opt holds the shared core of the plan optimizer framework: the
// operator model, the immutable plan DAG, physical and logical
// properties, the pattern DSL, and the rule and optimizer contracts both
// optimizer strategies implement.
//
// A query optimizer accepts an unoptimized logical plan and produces an
// optimized plan ready for execution. Optimization comes in two flavors.
// Rule-based optimization applies a collection of substitution rules to
// the plan repeatedly until a fixed point or an iteration cap is
// reached; it is cheap, and fits both heuristic cleanup (removing
// useless projections, pushing limits into scans) and latency-sensitive
// point queries. Cost-based optimization searches the space of
// equivalent plans for the one with the lowest estimated cost; this
// module follows the top-down, memoizing strategy of Graefe's Cascades
// framework.
//
// Both strategies live behind the Optimizer interface and share the
// same Rule, Pattern and OptExpression machinery, so a rule written once
// drives either engine: the heuristic optimizer substitutes rule output
// in place in its plan graph, while the cost-based optimizer records it
// as another expression in an equivalence group.
//
// Plans are immutable DAGs with shared subtrees. Converting to and from
// an executable engine representation is the bridge package's job; the
// concrete optimizers live in the heuristic and cascades packages, and
// the built-in rules in the rules package.
package opt
