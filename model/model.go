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

package model

// History records the per-epoch training loss of one Fit call.
type History struct {
	Loss []float32
}

// Model is a trainable binding affinity predictor. Inputs are residue-index
// encoded peptides; predictions live in [0,1] on the rescaled affinity scale.
// Weight snapshots taken with GetWeights and restored with SetWeights let the
// cross-validation driver reset the model between folds and alleles.
type Model interface {
	// GetWeights returns a deep copy of all trainable weights.
	GetWeights() [][]float32
	// SetWeights restores weights captured by GetWeights.
	SetWeights(weights [][]float32) error
	// Fit trains on the given samples for a number of epochs.
	Fit(x [][]int32, y []float32, epochs int, verbose bool) *History
	// Predict returns one prediction in [0,1] per sample.
	Predict(x [][]int32) []float32
}
