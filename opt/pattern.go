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

// OperatorMatcher tests a single operator during pattern matching.
type OperatorMatcher func(Operator) bool

// AnyOperator matches every operator.
func AnyOperator(Operator) bool {
	return true
}

// Pattern describes how to match a subtree of a plan. Each node carries a
// predicate over the operator at that position and either an ordered list
// of child patterns or no children at all. A childless pattern is a leaf:
// it matches a node with any inputs and leaves them untouched.
//
// To match a Join(Limit(any), Scan) subtree:
//
//	NewPattern(isJoin).
//		Pattern(isLimit).
//			Leaf(AnyOperator).
//		Finish().
//		Leaf(isScan).
//	Build()
type Pattern struct {
	// Matches tests the operator at this position.
	Matches OperatorMatcher
	// Children are the child patterns, in input order. Nil for leaves.
	Children []*Pattern
}

// NewLeafPattern returns a single-node pattern that accepts the matched
// node's inputs as-is.
func NewLeafPattern(m OperatorMatcher) *Pattern {
	return &Pattern{Matches: m}
}

func newPatternNode(m OperatorMatcher, children []*Pattern) *Pattern {
	if len(children) == 0 {
		return NewLeafPattern(m)
	}
	return &Pattern{Matches: m, Children: children}
}

// PatternBuilder assembles a pattern tree level by level. Pattern pushes
// a child level, Finish pops back to the parent, and Build closes the
// root. Mismatched nesting panics at construction, so only well-formed
// patterns can be produced.
type PatternBuilder struct {
	stack []*patternLevel
}

type patternLevel struct {
	matcher  OperatorMatcher
	children []*Pattern
}

// NewPattern opens a builder whose root matches m.
func NewPattern(m OperatorMatcher) *PatternBuilder {
	return &PatternBuilder{stack: []*patternLevel{{matcher: m}}}
}

func (b *PatternBuilder) top() *patternLevel {
	if len(b.stack) == 0 {
		panic("opt: pattern builder used after Build")
	}
	return b.stack[len(b.stack)-1]
}

// Pattern pushes a child level matching m. Close it with Finish.
func (b *PatternBuilder) Pattern(m OperatorMatcher) *PatternBuilder {
	b.top()
	b.stack = append(b.stack, &patternLevel{matcher: m})
	return b
}

// Leaf appends a leaf child matching m to the current level.
func (b *PatternBuilder) Leaf(m OperatorMatcher) *PatternBuilder {
	lvl := b.top()
	lvl.children = append(lvl.children, NewLeafPattern(m))
	return b
}

// Finish closes the current child level and returns to its parent.
func (b *PatternBuilder) Finish() *PatternBuilder {
	if len(b.stack) < 2 {
		panic("opt: Finish called at pattern root; use Build to close it")
	}
	lvl := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	parent := b.stack[len(b.stack)-1]
	parent.children = append(parent.children, newPatternNode(lvl.matcher, lvl.children))
	return b
}

// Build closes the root level and returns the assembled pattern. It
// panics when child levels are still open.
func (b *PatternBuilder) Build() *Pattern {
	if len(b.stack) != 1 {
		panic("opt: pattern builder has unfinished child levels")
	}
	lvl := b.stack[0]
	b.stack = nil
	return newPatternNode(lvl.matcher, lvl.children)
}

// Leaf reports whether p is a leaf pattern.
func (p *Pattern) Leaf() bool {
	return p.Children == nil
}
