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

import "math"

// Cost is the estimated cost of a plan or operator: a non-negative scalar
// with a total order under < and closed under addition.
type Cost float64

// MaxCost is greater than the cost of any real plan.
const MaxCost = Cost(math.MaxFloat64)

// Add returns the sum of two costs.
func (c Cost) Add(other Cost) Cost {
	return c + other
}

// Less reports whether c orders strictly before other.
func (c Cost) Less(other Cost) bool {
	return c < other
}
