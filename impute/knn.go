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
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/openvax/pmhc/base/log"
)

// KNN completes missing entries from the k nearest columns (or rows, per
// Orientation). Distance between two columns is the mean squared difference
// over their overlapping observed entries; neighbors contribute with inverse
// distance weights. Entries with no observed neighbor stay NaN.
type KNN struct {
	k             int
	orientation   string
	printInterval int
}

func NewKNN(params Params) *KNN {
	return &KNN{
		k:             params.GetInt(K, 3),
		orientation:   params.GetString(Orientation, "columns"),
		printInterval: params.GetInt(PrintInterval, 10),
	}
}

func (knn *KNN) Complete(x *mat.Dense) (*mat.Dense, error) {
	if knn.orientation == "rows" {
		transposed := mat.DenseCopyOf(x.T())
		completed, err := knn.completeColumns(transposed)
		if err != nil {
			return nil, err
		}
		return mat.DenseCopyOf(completed.T()), nil
	}
	return knn.completeColumns(x)
}

func (knn *KNN) completeColumns(x *mat.Dense) (*mat.Dense, error) {
	rows, cols := x.Dims()
	mask := observedMask(x)
	filled := mat.DenseCopyOf(x)

	// pairwise column distances over overlapping observations
	distances := make([][]float64, cols)
	for a := 0; a < cols; a++ {
		distances[a] = make([]float64, cols)
	}
	for a := 0; a < cols; a++ {
		for b := a + 1; b < cols; b++ {
			sum, overlap := 0.0, 0
			for i := 0; i < rows; i++ {
				if mask[i][a] && mask[i][b] {
					diff := x.At(i, a) - x.At(i, b)
					sum += diff * diff
					overlap++
				}
			}
			d := math.NaN()
			if overlap > 0 {
				d = sum / float64(overlap)
			}
			distances[a][b] = d
			distances[b][a] = d
		}
	}

	for j := 0; j < cols; j++ {
		if knn.printInterval > 0 && j%knn.printInterval == 0 {
			log.Logger().Debug("knn imputation progress",
				zap.Int("column", j), zap.Int("columns", cols))
		}
		candidates := make([]int, 0, cols-1)
		for c := 0; c < cols; c++ {
			if c != j && !math.IsNaN(distances[j][c]) {
				candidates = append(candidates, c)
			}
		}
		sort.Slice(candidates, func(a, b int) bool {
			return distances[j][candidates[a]] < distances[j][candidates[b]]
		})
		for i := 0; i < rows; i++ {
			if mask[i][j] {
				continue
			}
			weightSum, valueSum := 0.0, 0.0
			neighbors := 0
			for _, c := range candidates {
				if neighbors == knn.k {
					break
				}
				if !mask[i][c] {
					continue
				}
				w := 1.0 / (distances[j][c] + 1e-6)
				weightSum += w
				valueSum += w * x.At(i, c)
				neighbors++
			}
			if neighbors > 0 {
				filled.Set(i, j, valueSum/weightSum)
			}
		}
	}
	return filled, nil
}
