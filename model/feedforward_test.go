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

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		HiddenLayerSize: 8,
		Activation:      "tanh",
		Loss:            "mse",
		Init:            "glorot_uniform",
		NEpochs:         100,
		MaxIC50:         5000,
	}
}

// toySamples labels peptides by their first residue: index 0 binds, index 5
// does not.
func toySamples() ([][]int32, []float32) {
	x := [][]int32{
		{0, 1, 2},
		{0, 3, 4},
		{0, 6, 7},
		{5, 1, 2},
		{5, 3, 4},
		{5, 6, 7},
	}
	y := []float32{1, 1, 1, 0, 0, 0}
	return x, y
}

func TestGetSetWeights(t *testing.T) {
	m := NewHotshotNetwork(testConfig(), 3)
	weights := m.GetWeights()
	require.Len(t, weights, 4)

	// returned slices are copies, not views
	weights[0][0] += 1
	assert.NotEqual(t, weights[0][0], m.GetWeights()[0][0])

	other := NewHotshotNetwork(testConfig(), 3)
	require.NoError(t, other.SetWeights(m.GetWeights()))
	assert.Equal(t, m.GetWeights(), other.GetWeights())

	assert.Error(t, other.SetWeights(m.GetWeights()[:2]))
	bad := m.GetWeights()
	bad[1] = bad[1][:1]
	assert.Error(t, other.SetWeights(bad))
}

func TestEmbeddingLayers(t *testing.T) {
	cfg := testConfig()
	cfg.EmbeddingSize = 4
	m := NewEmbeddingNetwork(cfg, 3)
	assert.Len(t, m.GetWeights(), 5)
}

func TestFromConfig(t *testing.T) {
	m := FromConfig(testConfig(), 3)
	assert.Len(t, m.GetWeights(), 4)

	cfg := testConfig()
	cfg.EmbeddingSize = 4
	m = FromConfig(cfg, 3)
	assert.Len(t, m.GetWeights(), 5)
}

func TestPredictRange(t *testing.T) {
	m := NewHotshotNetwork(testConfig(), 3)
	x, _ := toySamples()
	for _, pred := range m.Predict(x) {
		assert.Greater(t, pred, float32(0))
		assert.Less(t, pred, float32(1))
	}
}

func TestFitDecreasesLoss(t *testing.T) {
	m := NewHotshotNetwork(testConfig(), 3)
	x, y := toySamples()
	history := m.Fit(x, y, 150, false)
	require.Len(t, history.Loss, 150)
	assert.Less(t, history.Loss[len(history.Loss)-1], history.Loss[0])

	// the trained network separates the two classes
	predictions := m.Predict(x)
	for i, pred := range predictions {
		if y[i] == 1 {
			assert.Greater(t, pred, float32(0.5), "sample %d", i)
		} else {
			assert.Less(t, pred, float32(0.5), "sample %d", i)
		}
	}
}

func TestFitEmbeddingNetwork(t *testing.T) {
	cfg := testConfig()
	cfg.EmbeddingSize = 4
	cfg.Activation = "relu"
	m := NewEmbeddingNetwork(cfg, 3)
	x, y := toySamples()
	history := m.Fit(x, y, 150, false)
	require.Len(t, history.Loss, 150)
	assert.Less(t, history.Loss[len(history.Loss)-1], history.Loss[0])
}

func TestFitWithDropout(t *testing.T) {
	cfg := testConfig()
	cfg.DropoutProbability = 0.5
	m := NewHotshotNetwork(cfg, 3)
	x, y := toySamples()
	history := m.Fit(x, y, 20, false)
	require.Len(t, history.Loss, 20)
	for _, loss := range history.Loss {
		assert.False(t, math32.IsNaN(loss))
	}
}

func TestFitEmpty(t *testing.T) {
	m := NewHotshotNetwork(testConfig(), 3)
	history := m.Fit(nil, nil, 10, false)
	assert.Empty(t, history.Loss)
}
