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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformIC50(t *testing.T) {
	// the cutoff maps to zero, 1 nM maps to one
	assert.InDelta(t, 0, TransformIC50(5000, 5000), 1e-6)
	assert.InDelta(t, 1, TransformIC50(1, 5000), 1e-6)
	// values above the cutoff are clamped
	assert.Equal(t, float32(0), TransformIC50(50000, 5000))
	// round trip through the inverse
	y := TransformIC50(500, 5000)
	assert.InDelta(t, 500, InverseTransformIC50(y, 5000), 1e-2)
}

func TestEncodePeptide(t *testing.T) {
	indices, err := EncodePeptide("ACY")
	assert.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 19}, indices)
	_, err = EncodePeptide("AXB")
	assert.Error(t, err)
}

func TestIndicesToHotshot(t *testing.T) {
	encoded := IndicesToHotshot([][]int32{{0, 19}}, NumResidues)
	require.Len(t, encoded, 1)
	assert.Len(t, encoded[0], 2*NumResidues)
	assert.Equal(t, float32(1), encoded[0][0])
	assert.Equal(t, float32(1), encoded[0][NumResidues+19])
	total := float32(0)
	for _, v := range encoded[0] {
		total += v
	}
	assert.Equal(t, float32(2), total)
}

func TestNewAlleleData(t *testing.T) {
	data, err := NewAlleleData([]string{"AAACCCDDD", "CCCDDDEEE"}, []float32{100, 10000}, 5000)
	require.NoError(t, err)
	assert.Equal(t, 2, data.Count())
	assert.Len(t, data.X, 2)
	assert.Len(t, data.X[0], 9)
	assert.Equal(t, float32(100), data.IC50[0])
	assert.Equal(t, TransformIC50(100, 5000), data.Y[0])
	// non-binder above the cutoff
	assert.Equal(t, float32(0), data.Y[1])

	_, err = NewAlleleData([]string{"AAA"}, []float32{1, 2}, 5000)
	assert.Error(t, err)
}

func TestNewAlleleDataFromAffinityDict(t *testing.T) {
	data, err := NewAlleleDataFromAffinityDict(map[string]float32{
		"CCCDDDEEE": 0.25,
		"AAACCCDDD": 0.75,
	}, 5000)
	require.NoError(t, err)
	// peptides are sorted for stable order
	assert.Equal(t, []string{"AAACCCDDD", "CCCDDDEEE"}, data.Peptides)
	assert.Equal(t, []float32{0.75, 0.25}, data.Y)
	assert.InDelta(t, InverseTransformIC50(0.75, 5000), data.IC50[0], 1e-3)
}

func TestDict(t *testing.T) {
	dict := NewDict()
	assert.Equal(t, 0, dict.Id("b"))
	assert.Equal(t, 1, dict.Id("a"))
	assert.Equal(t, 0, dict.Id("b"))
	assert.Equal(t, 2, dict.Count())
	assert.Equal(t, []string{"b", "a"}, dict.Strings())
	_, ok := dict.Lookup("c")
	assert.False(t, ok)
}
