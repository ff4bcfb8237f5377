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

package impute

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/openvax/pmhc/dataset"
)

// spyImputer records whether Complete was invoked.
type spyImputer struct {
	called bool
	fill   float64
}

func (s *spyImputer) Complete(x *mat.Dense) (*mat.Dense, error) {
	s.called = true
	rows, cols := x.Dims()
	completed := mat.DenseCopyOf(x)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(completed.At(i, j)) {
				completed.Set(i, j, s.fill)
			}
		}
	}
	return completed, nil
}

func TestFromName(t *testing.T) {
	imputer, err := FromName("mice", nil)
	assert.NoError(t, err)
	mice, ok := imputer.(*MICE)
	require.True(t, ok)
	assert.Equal(t, 5, mice.nBurnIn)
	assert.Equal(t, 25, mice.nImputations)
	assert.Equal(t, 0.0, mice.minValue)
	assert.Equal(t, 1.0, mice.maxValue)

	imputer, err = FromName(" KNN ", nil)
	assert.NoError(t, err)
	knn, ok := imputer.(*KNN)
	require.True(t, ok)
	assert.Equal(t, 3, knn.k)
	assert.Equal(t, "columns", knn.orientation)
	assert.Equal(t, 10, knn.printInterval)

	imputer, err = FromName("svd", Params{Rank: 2})
	assert.NoError(t, err)
	svd, ok := imputer.(*IterativeSVD)
	require.True(t, ok)
	// caller overrides win over method defaults
	assert.Equal(t, 2, svd.rank)

	for _, alias := range []string{"svt", "softimpute"} {
		imputer, err = FromName(alias, nil)
		assert.NoError(t, err)
		assert.IsType(t, &SoftImpute{}, imputer)
	}

	imputer, err = FromName("mean", nil)
	assert.NoError(t, err)
	assert.IsType(t, &MeanFill{}, imputer)

	imputer, err = FromName("none", nil)
	assert.NoError(t, err)
	assert.Nil(t, imputer)

	_, err = FromName("bogus", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestCreateImputedDatasetsSkipsCompleteMatrix(t *testing.T) {
	// both alleles observe both peptides, so there is nothing to impute
	alleleData := map[string]*dataset.AlleleData{
		"HLA-A0201": mustAlleleData(t, []string{"AAAAAAAAA", "CCCCCCCCC"}, []float32{10, 100}),
		"HLA-B0702": mustAlleleData(t, []string{"AAAAAAAAA", "CCCCCCCCC"}, []float32{20, 200}),
	}
	spy := &spyImputer{fill: 0.5}
	imputed, err := CreateImputedDatasets(alleleData, spy, 1, 1, 5000)
	require.NoError(t, err)
	assert.False(t, spy.called)
	require.Len(t, imputed, 2)
	for allele, data := range alleleData {
		result := imputed[allele]
		require.NotNil(t, result)
		assert.ElementsMatch(t, data.Peptides, result.Peptides)
		for i, peptide := range result.Peptides {
			original := data.Y[indexOf(t, data.Peptides, peptide)]
			assert.InDelta(t, original, result.Y[i], 1e-6)
		}
	}
}

func TestCreateImputedDatasets(t *testing.T) {
	alleleData := map[string]*dataset.AlleleData{
		"HLA-A0201": mustAlleleData(t, []string{"AAAAAAAAA", "CCCCCCCCC"}, []float32{10, 100}),
		"HLA-B0702": mustAlleleData(t, []string{"AAAAAAAAA"}, []float32{20}),
	}
	spy := &spyImputer{fill: 0.5}
	imputed, err := CreateImputedDatasets(alleleData, spy, 1, 1, 5000)
	require.NoError(t, err)
	assert.True(t, spy.called)
	// the missing (HLA-B0702, CCCCCCCCC) cell is filled in
	require.Len(t, imputed, 2)
	b0702 := imputed["HLA-B0702"]
	require.NotNil(t, b0702)
	assert.Equal(t, 2, b0702.Count())
	assert.InDelta(t, 0.5, b0702.Y[indexOf(t, b0702.Peptides, "CCCCCCCCC")], 1e-6)
}

func TestCreateImputedDatasetsDropsNonFinite(t *testing.T) {
	// a completion that leaves NaN behind loses those cells, not the run
	alleleData := map[string]*dataset.AlleleData{
		"HLA-A0201": mustAlleleData(t, []string{"AAAAAAAAA", "CCCCCCCCC"}, []float32{10, 100}),
		"HLA-B0702": mustAlleleData(t, []string{"AAAAAAAAA"}, []float32{20}),
	}
	spy := &spyImputer{fill: math.NaN()}
	imputed, err := CreateImputedDatasets(alleleData, spy, 1, 1, 5000)
	require.NoError(t, err)
	b0702 := imputed["HLA-B0702"]
	require.NotNil(t, b0702)
	assert.Equal(t, []string{"AAAAAAAAA"}, b0702.Peptides)
}

func TestCreateImputedDatasetsFullyPruned(t *testing.T) {
	alleleData := map[string]*dataset.AlleleData{
		"HLA-A0201": mustAlleleData(t, []string{"AAAAAAAAA"}, []float32{10}),
	}
	imputed, err := CreateImputedDatasets(alleleData, &spyImputer{}, 5, 5, 5000)
	require.NoError(t, err)
	assert.Empty(t, imputed)
}

func indexOf(t *testing.T, haystack []string, needle string) int {
	t.Helper()
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	t.Fatalf("%q not found", needle)
	return -1
}
