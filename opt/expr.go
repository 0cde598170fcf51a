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
	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/expression"
)

// EquiJoinKeys splits a join predicate into its left and right column
// names when the predicate is a conjunction of column equalities. ok is
// false for any other predicate shape, including the literal `true` that
// stands in for an empty join condition.
func EquiJoinKeys(cond sql.Expression) (left, right []string, ok bool) {
	if cond == nil {
		return nil, nil, false
	}
	for _, conjunct := range expression.SplitConjunction(cond) {
		eq, isEq := conjunct.(*expression.Equals)
		if !isEq {
			return nil, nil, false
		}
		l, lok := columnName(eq.Left())
		r, rok := columnName(eq.Right())
		if !lok || !rok {
			return nil, nil, false
		}
		left = append(left, l)
		right = append(right, r)
	}
	return left, right, len(left) > 0
}

func columnName(e sql.Expression) (string, bool) {
	if gf, ok := e.(*expression.GetField); ok {
		return gf.String(), true
	}
	return "", false
}
