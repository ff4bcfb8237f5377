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

	"gonum.org/v1/gonum/mat"
)

// MeanFill replaces every missing entry with the mean of the observed values
// in its column. A column without a single observation stays NaN.
type MeanFill struct{}

func NewMeanFill() *MeanFill {
	return &MeanFill{}
}

func (m *MeanFill) Complete(x *mat.Dense) (*mat.Dense, error) {
	return meanFill(x), nil
}

// observedMask marks the finite cells of a matrix.
func observedMask(x *mat.Dense) [][]bool {
	rows, cols := x.Dims()
	mask := make([][]bool, rows)
	for i := 0; i < rows; i++ {
		mask[i] = make([]bool, cols)
		for j := 0; j < cols; j++ {
			v := x.At(i, j)
			mask[i][j] = !math.IsNaN(v) && !math.IsInf(v, 0)
		}
	}
	return mask
}

// columnMeans computes per-column means over the observed cells. Columns
// without observations yield NaN.
func columnMeans(x *mat.Dense) []float64 {
	rows, cols := x.Dims()
	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		sum, count := 0.0, 0
		for i := 0; i < rows; i++ {
			v := x.At(i, j)
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				sum += v
				count++
			}
		}
		if count == 0 {
			means[j] = math.NaN()
		} else {
			means[j] = sum / float64(count)
		}
	}
	return means
}

func meanFill(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	means := columnMeans(x)
	filled := mat.DenseCopyOf(x)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := filled.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				filled.Set(i, j, means[j])
			}
		}
	}
	return filled
}
