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
	"strings"

	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/openvax/pmhc/dataset"
)

// Imputer completes a matrix whose missing entries are marked by NaN. A
// completion may fail on degenerate observation patterns; such errors are
// reported to the caller untouched.
type Imputer interface {
	Complete(x *mat.Dense) (*mat.Dense, error)
}

// FromName constructs an imputer from a method name, typically taken from a
// command line argument. Names are case-insensitive and surrounding
// whitespace is ignored. Method defaults are merged under caller-supplied
// params. The name "none" yields a nil imputer: the caller must skip
// imputation entirely.
func FromName(name string, params Params) (Imputer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mice":
		defaults := Params{
			NBurnIn:      5,
			NImputations: 25,
			MinValue:     0.0,
			MaxValue:     1.0,
		}
		return NewMICE(defaults.Overwrite(params)), nil
	case "knn":
		defaults := Params{
			K:             3,
			Orientation:   "columns",
			PrintInterval: 10,
		}
		return NewKNN(defaults.Overwrite(params)), nil
	case "svd":
		defaults := Params{
			Rank: 10,
		}
		return NewIterativeSVD(defaults.Overwrite(params)), nil
	case "svt", "softimpute":
		return NewSoftImpute(params.Copy()), nil
	case "mean":
		return NewMeanFill(), nil
	case "none":
		return nil, nil
	default:
		return nil, errors.NotValidf("imputation method %q", name)
	}
}

// CreateImputedDatasets builds the dense affinity matrix from the given
// allele datasets, prunes it under the observation thresholds, completes the
// missing entries and converts the result back into one dataset per allele.
// Completion is skipped when the pruned matrix is already fully observed,
// since some algorithms fail on input without missing entries. Alleles that
// are pruned away or recover no finite entries are absent from the result.
func CreateImputedDatasets(
	alleleData map[string]*dataset.AlleleData,
	imputer Imputer,
	minObservationsPerPeptide, minObservationsPerAllele int,
	maxIC50 float32,
) (map[string]*dataset.AlleleData, error) {
	incomplete := BuildMatrix(alleleData).Prune(minObservationsPerPeptide, minObservationsPerAllele)
	if rows, cols := incomplete.Dims(); rows == 0 || cols == 0 {
		return map[string]*dataset.AlleleData{}, nil
	}
	completed := incomplete.X
	if incomplete.CountMissing() > 0 {
		var err error
		completed, err = imputer.Complete(incomplete.X)
		if err != nil {
			return nil, errors.Trace(err)
		}
	}
	nested := (&Matrix{
		X:        completed,
		Peptides: incomplete.Peptides,
		Alleles:  incomplete.Alleles,
	}).ToNestedDict()
	imputed := make(map[string]*dataset.AlleleData, len(nested))
	for allele, affinities := range nested {
		data, err := dataset.NewAlleleDataFromAffinityDict(affinities, maxIC50)
		if err != nil {
			return nil, errors.Annotatef(err, "allele %s", allele)
		}
		imputed[allele] = data
	}
	return imputed, nil
}
