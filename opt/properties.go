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
	"github.com/mitchellh/hashstructure"
)

// LogicalProperty describes the logical output of a plan node. It is
// currently a schema descriptor.
type LogicalProperty struct {
	Schema sql.Schema
}

// NewLogicalProperty returns a logical property over the given schema.
func NewLogicalProperty(schema sql.Schema) *LogicalProperty {
	return &LogicalProperty{Schema: schema}
}

// Equal compares two logical properties, treating nil as equal to nil.
func (p *LogicalProperty) Equal(other *LogicalProperty) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Schema.Equals(other.Schema)
}

// DistributionKind enumerates how rows of an operator's output are
// spread across execution units.
type DistributionKind uint8

// The zero value of Distribution places no constraint: every produced
// distribution satisfies a required any-distribution. Values of the other
// kinds are built through the constructors below.
const (
	anyDistribution DistributionKind = iota
	hashedDistribution
	broadcastDistribution
	singletonDistribution
)

// Distribution is one physical distribution of an operator's output.
type Distribution struct {
	Kind DistributionKind
	// Keys are the partitioning columns. Only meaningful for hashed
	// distributions.
	Keys []string
}

// HashedDistribution returns a distribution partitioned by keys.
func HashedDistribution(keys []string) Distribution {
	return Distribution{Kind: hashedDistribution, Keys: keys}
}

// BroadcastDistribution returns a distribution with a full copy of the
// rows on every execution unit.
func BroadcastDistribution() Distribution {
	return Distribution{Kind: broadcastDistribution}
}

// SingletonDistribution returns a distribution with all rows on a single
// execution unit.
func SingletonDistribution() Distribution {
	return Distribution{Kind: singletonDistribution}
}

// Satisfies reports whether a produced distribution meets a required one.
// A required any-distribution (the zero value) is met by everything;
// otherwise kinds and,
// for hashed distributions, keys must match.
func (d Distribution) Satisfies(required Distribution) bool {
	if required.Kind == anyDistribution {
		return true
	}
	if d.Kind != required.Kind {
		return false
	}
	if d.Kind == hashedDistribution {
		return stringsEqual(d.Keys, required.Keys)
	}
	return true
}

// Equal compares distributions field-wise.
func (d Distribution) Equal(other Distribution) bool {
	return d.Kind == other.Kind && stringsEqual(d.Keys, other.Keys)
}

// OrderingColumn is one column of a sort order.
type OrderingColumn struct {
	Column     string
	Descending bool
}

// Ordering is the sort order of an operator's output, outermost column
// first. The zero value means unordered.
type Ordering struct {
	Columns []OrderingColumn
}

// Satisfies reports whether a produced ordering meets a required one: the
// required columns must be a prefix of the produced ones.
func (o Ordering) Satisfies(required Ordering) bool {
	if len(required.Columns) > len(o.Columns) {
		return false
	}
	for i, col := range required.Columns {
		if o.Columns[i] != col {
			return false
		}
	}
	return true
}

// Equal compares orderings column-wise.
func (o Ordering) Equal(other Ordering) bool {
	if len(o.Columns) != len(other.Columns) {
		return false
	}
	for i := range o.Columns {
		if o.Columns[i] != other.Columns[i] {
			return false
		}
	}
	return true
}

// PhysicalPropertySet is the set of independent physical properties an
// operator's output exhibits. The zero value requires nothing and
// promises nothing.
type PhysicalPropertySet struct {
	Distribution Distribution
	Ordering     Ordering
}

// Satisfies is the conjunction of component-wise satisfaction.
func (p PhysicalPropertySet) Satisfies(required PhysicalPropertySet) bool {
	return p.Distribution.Satisfies(required.Distribution) &&
		p.Ordering.Satisfies(required.Ordering)
}

// Equal compares property sets component-wise.
func (p PhysicalPropertySet) Equal(other PhysicalPropertySet) bool {
	return p.Distribution.Equal(other.Distribution) &&
		p.Ordering.Equal(other.Ordering)
}

// HashKey returns a stable hash of the property set, usable as a memo
// key.
func (p PhysicalPropertySet) HashKey() (uint64, error) {
	return hashstructure.Hash(p, nil)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
