// Copyright 2026 pmhc Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

// Dict assigns dense ids to string labels in first-seen order. The matrix
// builder relies on this order to keep rows and columns aligned with their
// label lists.
type Dict struct {
	si map[string]int
	is []string
}

func NewDict() *Dict {
	return &Dict{si: map[string]int{}}
}

// Id returns the id of a label, assigning the next free id on first sight.
func (d *Dict) Id(s string) int {
	if y, ok := d.si[s]; ok {
		return y
	}
	y := len(d.is)
	d.si[s] = y
	d.is = append(d.is, s)
	return y
}

// Lookup returns the id of a label without inserting it.
func (d *Dict) Lookup(s string) (int, bool) {
	y, ok := d.si[s]
	return y, ok
}

func (d *Dict) Count() int {
	return len(d.is)
}

// Strings returns the labels in id order. The returned slice is a copy.
func (d *Dict) Strings() []string {
	labels := make([]string, len(d.is))
	copy(labels, d.is)
	return labels
}
