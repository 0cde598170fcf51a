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

// Binding lazily enumerates the ways a pattern matches at an expression
// handle. Each yielded OptExpression mirrors the pattern's shape: fresh
// operator nodes at internal positions, expression handles at leaves. A
// non-matching pattern yields an empty sequence, never an error.
//
// Enumeration is incremental: a caller consuming only the first match
// pays nothing for the rest. The heuristic optimizer does exactly that;
// the cost-based optimizer drains the sequence, visiting the full
// cartesian product of child matches.
type Binding struct {
	iter *bindIter
}

// NewBinding opens a binding of pattern p at handle h over optimizer o.
func NewBinding(h ExprHandle, p *Pattern, o Optimizer) *Binding {
	return &Binding{iter: newBindIter(o, p, h)}
}

// Next returns the next bound expression, or false when no more matches
// exist.
func (b *Binding) Next() (*OptExpression, bool) {
	return b.iter.next()
}

// bindIter matches one pattern node against the candidate expressions at
// one handle. Child matches combine as an odometer over per-child
// iterators, so the cartesian product is never materialized.
type bindIter struct {
	o       Optimizer
	pattern *Pattern
	handle  ExprHandle

	cands    []ExprHandle
	ci       int
	started  bool
	children []*bindIter
	current  []*OptExpression
}

func newBindIter(o Optimizer, p *Pattern, h ExprHandle) *bindIter {
	return &bindIter{o: o, pattern: p, handle: h}
}

func (it *bindIter) next() (*OptExpression, bool) {
	if !it.started {
		it.started = true
		it.cands = it.o.Candidates(it.handle)
		it.ci = -1
		return it.nextCandidate()
	}
	if it.ci >= len(it.cands) {
		return nil, false
	}
	if it.pattern.Leaf() || len(it.children) == 0 {
		// Leaves and childless internal matches yield one expression per
		// candidate.
		return it.nextCandidate()
	}
	if e, ok := it.advance(); ok {
		return e, true
	}
	return it.nextCandidate()
}

// nextCandidate moves to the next candidate expression and yields its
// first match, if any.
func (it *bindIter) nextCandidate() (*OptExpression, bool) {
	for it.ci++; it.ci < len(it.cands); it.ci++ {
		cand := it.cands[it.ci]
		expr := it.o.ExprAt(cand)
		if !it.pattern.Matches(expr.Operator()) {
			continue
		}
		if it.pattern.Leaf() {
			return NewExprHandleExpr(cand), true
		}
		if expr.InputCount(it.o) != len(it.pattern.Children) {
			continue
		}
		if e, ok := it.first(cand, expr); ok {
			return e, true
		}
	}
	return nil, false
}

// first builds child iterators for cand and yields the first combined
// match, or false when some child pattern has no match.
func (it *bindIter) first(cand ExprHandle, expr Expr) (*OptExpression, bool) {
	k := len(it.pattern.Children)
	it.children = make([]*bindIter, k)
	it.current = make([]*OptExpression, k)
	for i := 0; i < k; i++ {
		it.children[i] = newBindIter(it.o, it.pattern.Children[i], expr.Input(i, it.o))
		e, ok := it.children[i].next()
		if !ok {
			it.children = nil
			it.current = nil
			return nil, false
		}
		it.current[i] = e
	}
	return it.emit(), true
}

// advance steps the odometer of child iterators one combination forward.
func (it *bindIter) advance() (*OptExpression, bool) {
	expr := it.o.ExprAt(it.cands[it.ci])
	for i := len(it.children) - 1; i >= 0; i-- {
		if e, ok := it.children[i].next(); ok {
			it.current[i] = e
			// Children to the right restart from their first match.
			for j := i + 1; j < len(it.children); j++ {
				it.children[j] = newBindIter(it.o, it.pattern.Children[j], expr.Input(j, it.o))
				first, ok := it.children[j].next()
				if !ok {
					return nil, false
				}
				it.current[j] = first
			}
			return it.emit(), true
		}
	}
	return nil, false
}

func (it *bindIter) emit() *OptExpression {
	op := it.o.ExprAt(it.cands[it.ci]).Operator()
	inputs := make([]*OptExpression, len(it.current))
	copy(inputs, it.current)
	return NewOperatorExpr(op, inputs...)
}
