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

// ColumnStatistic summarizes the value distribution of one column.
type ColumnStatistic struct {
	Column        string
	DistinctCount uint64
	NullCount     uint64
}

// Statistics carries the row count and per-column statistics attached to
// a plan node.
type Statistics struct {
	RowCount uint64
	Columns  []ColumnStatistic
}

// NewStatistics returns statistics with the given row count.
func NewStatistics(rowCount uint64) *Statistics {
	return &Statistics{RowCount: rowCount}
}

// Equal compares statistics field-wise, treating nil as equal to nil.
func (s *Statistics) Equal(other *Statistics) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.RowCount != other.RowCount || len(s.Columns) != len(other.Columns) {
		return false
	}
	for i := range s.Columns {
		if s.Columns[i] != other.Columns[i] {
			return false
		}
	}
	return true
}
