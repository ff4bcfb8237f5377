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

import "github.com/juju/errors"

// Cache loads allele datasets on demand and keeps one copy per max IC50
// cutoff, since the cutoff changes the regression targets. It is owned by a
// single driver invocation and passed explicitly into the configuration loop.
type Cache struct {
	path          string
	peptideLength int
	loaded        map[float32]map[string]*AlleleData
}

func NewCache(path string, peptideLength int) *Cache {
	return &Cache{
		path:          path,
		peptideLength: peptideLength,
		loaded:        make(map[float32]map[string]*AlleleData),
	}
}

// Get returns the allele datasets for a max IC50 cutoff, loading them from
// the binding data file on the first request.
func (c *Cache) Get(maxIC50 float32) (map[string]*AlleleData, error) {
	if data, ok := c.loaded[maxIC50]; ok {
		return data, nil
	}
	data, err := LoadBindingData(c.path, c.peptideLength, maxIC50)
	if err != nil {
		return nil, errors.Trace(err)
	}
	c.loaded[maxIC50] = data
	return data, nil
}
