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

	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// IterativeSVD alternates between a truncated rank-k reconstruction and
// re-filling the missing entries until the fill converges. Observed entries
// are never changed.
type IterativeSVD struct {
	rank                 int
	maxIterations        int
	convergenceThreshold float64
}

func NewIterativeSVD(params Params) *IterativeSVD {
	return &IterativeSVD{
		rank:                 params.GetInt(Rank, 10),
		maxIterations:        params.GetInt(MaxIterations, 200),
		convergenceThreshold: params.GetFloat64(ConvergenceThreshold, 1e-5),
	}
}

func (svd *IterativeSVD) Complete(x *mat.Dense) (*mat.Dense, error) {
	mask := observedMask(x)
	filled := meanFill(x)
	for iter := 0; iter < svd.maxIterations; iter++ {
		approx, _, err := truncatedSVD(filled, svd.rank, 0)
		if err != nil {
			return nil, errors.Trace(err)
		}
		restoreObserved(approx, x, mask)
		delta := missingDelta(filled, approx, mask)
		filled = approx
		if delta < svd.convergenceThreshold {
			break
		}
	}
	return filled, nil
}

// SoftImpute iterates a soft-thresholded SVD: all singular values are shrunk
// towards zero by the shrinkage value, the matrix is rebuilt and the observed
// entries restored. A zero ShrinkageValue selects the largest singular value
// of the initial fill divided by 50.
type SoftImpute struct {
	shrinkageValue       float64
	maxIterations        int
	convergenceThreshold float64
}

func NewSoftImpute(params Params) *SoftImpute {
	return &SoftImpute{
		shrinkageValue:       params.GetFloat64(ShrinkageValue, 0),
		maxIterations:        params.GetInt(MaxIterations, 100),
		convergenceThreshold: params.GetFloat64(ConvergenceThreshold, 1e-5),
	}
}

func (si *SoftImpute) Complete(x *mat.Dense) (*mat.Dense, error) {
	mask := observedMask(x)
	filled := meanFill(x)
	shrinkage := si.shrinkageValue
	if shrinkage <= 0 {
		_, largest, err := truncatedSVD(filled, 0, 0)
		if err != nil {
			return nil, errors.Trace(err)
		}
		shrinkage = largest / 50
	}
	for iter := 0; iter < si.maxIterations; iter++ {
		approx, _, err := truncatedSVD(filled, 0, shrinkage)
		if err != nil {
			return nil, errors.Trace(err)
		}
		restoreObserved(approx, x, mask)
		delta := missingDelta(filled, approx, mask)
		filled = approx
		if delta < si.convergenceThreshold {
			break
		}
	}
	return filled, nil
}

// truncatedSVD reconstructs a matrix from its SVD, keeping the rank largest
// singular values (rank 0 keeps all) and shrinking each kept value by
// shrinkage with soft thresholding. It also reports the largest singular
// value of the input.
func truncatedSVD(x *mat.Dense, rank int, shrinkage float64) (*mat.Dense, float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, 0, errors.New("SVD failed to converge")
	}
	values := svd.Values(nil)
	largest := 0.0
	if len(values) > 0 {
		largest = values[0]
	}
	for i := range values {
		if rank > 0 && i >= rank {
			values[i] = 0
		} else {
			values[i] = math.Max(values[i]-shrinkage, 0)
		}
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := mat.NewDiagDense(len(values), values)
	var approx mat.Dense
	approx.Product(&u, sigma, v.T())
	return mat.DenseCopyOf(&approx), largest, nil
}

// restoreObserved copies the observed entries of original back into approx,
// so only the missing cells move between iterations.
func restoreObserved(approx, original *mat.Dense, mask [][]bool) {
	rows, cols := approx.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if mask[i][j] {
				approx.Set(i, j, original.At(i, j))
			}
		}
	}
}

// missingDelta measures the relative change of the missing cells between two
// successive fills.
func missingDelta(previous, current *mat.Dense, mask [][]bool) float64 {
	rows, cols := previous.Dims()
	change, norm := 0.0, 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !mask[i][j] {
				change += math.Abs(current.At(i, j) - previous.At(i, j))
				norm += math.Abs(previous.At(i, j))
			}
		}
	}
	return change / (norm + 1e-12)
}
