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

// MICE runs multiple imputation by chained equations: starting from a mean
// fill, each incomplete column is repeatedly regressed on all other columns
// over the rows where it was observed, and the fitted values replace its
// missing cells. After the burn-in rounds the fills are averaged over the
// remaining rounds. Predictions are clamped to [MinValue, MaxValue].
type MICE struct {
	nBurnIn      int
	nImputations int
	minValue     float64
	maxValue     float64
}

func NewMICE(params Params) *MICE {
	return &MICE{
		nBurnIn:      params.GetInt(NBurnIn, 5),
		nImputations: params.GetInt(NImputations, 25),
		minValue:     params.GetFloat64(MinValue, 0),
		maxValue:     params.GetFloat64(MaxValue, 1),
	}
}

func (mice *MICE) Complete(x *mat.Dense) (*mat.Dense, error) {
	rows, cols := x.Dims()
	mask := observedMask(x)
	incompleteColumns := make([]int, 0, cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			if !mask[i][j] {
				incompleteColumns = append(incompleteColumns, j)
				break
			}
		}
	}
	filled := meanFill(x)
	if len(incompleteColumns) == 0 {
		return filled, nil
	}

	accumulated := mat.NewDense(rows, cols, nil)
	rounds := mice.nBurnIn + mice.nImputations
	for round := 0; round < rounds; round++ {
		for _, j := range incompleteColumns {
			if err := mice.imputeColumn(filled, mask, j); err != nil {
				return nil, errors.Annotatef(err, "column %d", j)
			}
		}
		if round >= mice.nBurnIn {
			accumulated.Add(accumulated, filled)
		}
	}

	result := mat.DenseCopyOf(x)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !mask[i][j] {
				result.Set(i, j, accumulated.At(i, j)/float64(mice.nImputations))
			}
		}
	}
	return result, nil
}

// imputeColumn regresses column j on every other column over the rows where
// j was observed and writes the fitted values into its missing rows.
func (mice *MICE) imputeColumn(filled *mat.Dense, mask [][]bool, j int) error {
	rows, cols := filled.Dims()
	trainRows := make([]int, 0, rows)
	missingRows := make([]int, 0)
	for i := 0; i < rows; i++ {
		if mask[i][j] {
			trainRows = append(trainRows, i)
		} else {
			missingRows = append(missingRows, i)
		}
	}
	// intercept plus one predictor per remaining column; with fewer observed
	// rows than coefficients the regression is underdetermined, fall back to
	// the column mean
	if len(trainRows) < cols {
		mean := 0.0
		for _, i := range trainRows {
			mean += filled.At(i, j)
		}
		mean /= float64(len(trainRows))
		for _, i := range missingRows {
			filled.Set(i, j, mice.clamp(mean))
		}
		return nil
	}

	design := mat.NewDense(len(trainRows), cols, nil)
	target := mat.NewVecDense(len(trainRows), nil)
	for row, i := range trainRows {
		design.Set(row, 0, 1)
		col := 1
		for c := 0; c < cols; c++ {
			if c == j {
				continue
			}
			design.Set(row, col, filled.At(i, c))
			col++
		}
		target.SetVec(row, filled.At(i, j))
	}
	var beta mat.VecDense
	if err := beta.SolveVec(design, target); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return errors.Trace(err)
		}
	}
	for _, i := range missingRows {
		prediction := beta.AtVec(0)
		col := 1
		for c := 0; c < cols; c++ {
			if c == j {
				continue
			}
			prediction += beta.AtVec(col) * filled.At(i, c)
			col++
		}
		filled.Set(i, j, mice.clamp(prediction))
	}
	return nil
}

func (mice *MICE) clamp(v float64) float64 {
	return math.Min(mice.maxValue, math.Max(mice.minValue, v))
}
