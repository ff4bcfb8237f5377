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
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/openvax/pmhc/base/log"
	"github.com/openvax/pmhc/dataset"
)

// rmspropLearningRate, rmspropRho and rmspropEpsilon follow the usual RMSprop
// settings the original Keras networks trained with.
const (
	rmspropLearningRate = 0.001
	rmspropRho          = 0.9
	rmspropEpsilon      = 1e-7
)

// feedforward is a single-hidden-layer network over a peptide. The hotshot
// variant consumes the one-hot expansion of the residue indices; the
// embedding variant first maps each residue through a learned embedding
// table. The sigmoid output predicts the rescaled affinity in [0,1].
type feedforward struct {
	cfg           Config
	peptideLength int
	inputWidth    int
	hidden        int

	// trainable weights, flat per layer: optional embedding table
	// (NumResidues x EmbeddingSize), then w1 (inputWidth x hidden), b1,
	// w2 (hidden), b2
	embedding []float32
	w1        []float32
	b1        []float32
	w2        []float32
	b2        []float32

	cache map[*[]float32][]float32 // RMSprop mean square per layer
	rng   *rand.Rand
}

// NewHotshotNetwork builds the one-hot input variant.
func NewHotshotNetwork(cfg Config, peptideLength int) Model {
	n := &feedforward{
		cfg:           cfg,
		peptideLength: peptideLength,
		inputWidth:    peptideLength * dataset.NumResidues,
		hidden:        cfg.HiddenLayerSize,
		rng:           rand.New(rand.NewSource(0)),
	}
	n.initialize()
	return n
}

// NewEmbeddingNetwork builds the learned-embedding input variant.
func NewEmbeddingNetwork(cfg Config, peptideLength int) Model {
	n := &feedforward{
		cfg:           cfg,
		peptideLength: peptideLength,
		inputWidth:    peptideLength * cfg.EmbeddingSize,
		hidden:        cfg.HiddenLayerSize,
		rng:           rand.New(rand.NewSource(0)),
	}
	n.embedding = make([]float32, dataset.NumResidues*cfg.EmbeddingSize)
	n.initialize()
	return n
}

// FromConfig builds the network a configuration describes: embedding size
// zero selects the hotshot encoding.
func FromConfig(cfg Config, peptideLength int) Model {
	if cfg.EmbeddingSize > 0 {
		return NewEmbeddingNetwork(cfg, peptideLength)
	}
	return NewHotshotNetwork(cfg, peptideLength)
}

func (n *feedforward) initialize() {
	if n.embedding != nil {
		n.initLayer(n.embedding, dataset.NumResidues, n.cfg.EmbeddingSize)
	}
	n.w1 = make([]float32, n.inputWidth*n.hidden)
	n.b1 = make([]float32, n.hidden)
	n.w2 = make([]float32, n.hidden)
	n.b2 = make([]float32, 1)
	n.initLayer(n.w1, n.inputWidth, n.hidden)
	n.initLayer(n.w2, n.hidden, 1)
	n.cache = make(map[*[]float32][]float32)
}

// initLayer fills a weight slice according to the configured initialization
// scheme.
func (n *feedforward) initLayer(w []float32, fanIn, fanOut int) {
	switch n.cfg.Init {
	case "glorot_normal":
		std := math32.Sqrt(2 / float32(fanIn+fanOut))
		for i := range w {
			w[i] = float32(n.rng.NormFloat64()) * std
		}
	case "uniform":
		for i := range w {
			w[i] = (n.rng.Float32()*2 - 1) * 0.05
		}
	default: // glorot_uniform
		limit := math32.Sqrt(6 / float32(fanIn+fanOut))
		for i := range w {
			w[i] = (n.rng.Float32()*2 - 1) * limit
		}
	}
}

func (n *feedforward) layers() []*[]float32 {
	layers := make([]*[]float32, 0, 5)
	if n.embedding != nil {
		layers = append(layers, &n.embedding)
	}
	return append(layers, &n.w1, &n.b1, &n.w2, &n.b2)
}

func (n *feedforward) GetWeights() [][]float32 {
	weights := make([][]float32, 0, 5)
	for _, layer := range n.layers() {
		w := make([]float32, len(*layer))
		copy(w, *layer)
		weights = append(weights, w)
	}
	return weights
}

func (n *feedforward) SetWeights(weights [][]float32) error {
	layers := n.layers()
	if len(weights) != len(layers) {
		return errors.NotValidf("%d weight arrays for %d layers", len(weights), len(layers))
	}
	for i, layer := range layers {
		if len(weights[i]) != len(*layer) {
			return errors.NotValidf("weight array %d of length %d, expected %d",
				i, len(weights[i]), len(*layer))
		}
		copy(*layer, weights[i])
	}
	// optimizer state belongs to the previous weights
	n.cache = make(map[*[]float32][]float32)
	return nil
}

// input expands one sample to the network input vector.
func (n *feedforward) input(indices []int32) []float32 {
	in := make([]float32, n.inputWidth)
	if n.embedding != nil {
		size := n.cfg.EmbeddingSize
		for pos, index := range indices {
			copy(in[pos*size:(pos+1)*size], n.embedding[int(index)*size:(int(index)+1)*size])
		}
	} else {
		for pos, index := range indices {
			in[pos*dataset.NumResidues+int(index)] = 1
		}
	}
	return in
}

func (n *feedforward) activate(z float32) float32 {
	if n.cfg.Activation == "tanh" {
		return math32.Tanh(z)
	}
	return math32.Max(0, z)
}

func (n *feedforward) activateGrad(z, a float32) float32 {
	if n.cfg.Activation == "tanh" {
		return 1 - a*a
	}
	if z > 0 {
		return 1
	}
	return 0
}

func sigmoid(z float32) float32 {
	return 1 / (1 + math32.Exp(-z))
}

// forward runs one sample, returning the input vector, hidden pre-activation,
// hidden activation and prediction.
func (n *feedforward) forward(indices []int32) (in, z1, a1 []float32, pred float32) {
	in = n.input(indices)
	z1 = make([]float32, n.hidden)
	a1 = make([]float32, n.hidden)
	for h := 0; h < n.hidden; h++ {
		z := n.b1[h]
		for i, v := range in {
			if v != 0 {
				z += v * n.w1[i*n.hidden+h]
			}
		}
		z1[h] = z
		a1[h] = n.activate(z)
	}
	z2 := n.b2[0]
	for h := 0; h < n.hidden; h++ {
		z2 += a1[h] * n.w2[h]
	}
	return in, z1, a1, sigmoid(z2)
}

// step applies one RMSprop update to a flat gradient of a layer.
func (n *feedforward) step(layer *[]float32, grad []float32) {
	cache, ok := n.cache[layer]
	if !ok {
		cache = make([]float32, len(*layer))
		n.cache[layer] = cache
	}
	w := *layer
	for i, g := range grad {
		if g == 0 {
			continue
		}
		cache[i] = rmspropRho*cache[i] + (1-rmspropRho)*g*g
		w[i] -= rmspropLearningRate * g / (math32.Sqrt(cache[i]) + rmspropEpsilon)
	}
}

func (n *feedforward) Fit(x [][]int32, y []float32, epochs int, verbose bool) *History {
	history := &History{Loss: make([]float32, 0, epochs)}
	if len(x) == 0 || epochs <= 0 {
		return history
	}
	dropout := n.cfg.DropoutProbability
	gradEmbedding := make([]float32, len(n.embedding))
	gradW1 := make([]float32, len(n.w1))
	gradB1 := make([]float32, len(n.b1))
	gradW2 := make([]float32, len(n.w2))
	gradB2 := make([]float32, len(n.b2))
	for epoch := 0; epoch < epochs; epoch++ {
		epochLoss := float32(0)
		for _, s := range n.rng.Perm(len(x)) {
			in, z1, a1, pred := n.forward(x[s])
			// inverted dropout on the hidden activations
			var mask []float32
			if dropout > 0 {
				mask = make([]float32, n.hidden)
				for h := range mask {
					if n.rng.Float32() >= dropout {
						mask[h] = 1 / (1 - dropout)
						a1[h] *= mask[h]
					} else {
						a1[h] = 0
					}
				}
				z2 := n.b2[0]
				for h := 0; h < n.hidden; h++ {
					z2 += a1[h] * n.w2[h]
				}
				pred = sigmoid(z2)
			}
			diff := pred - y[s]
			epochLoss += diff * diff

			dz2 := 2 * diff * pred * (1 - pred)
			for h := 0; h < n.hidden; h++ {
				gradW2[h] = dz2 * a1[h]
			}
			gradB2[0] = dz2
			for h := 0; h < n.hidden; h++ {
				da1 := dz2 * n.w2[h]
				if mask != nil {
					da1 *= mask[h]
				}
				dz1 := da1 * n.activateGrad(z1[h], a1[h])
				gradB1[h] = dz1
				for i, v := range in {
					if v != 0 {
						gradW1[i*n.hidden+h] = dz1 * v
					}
				}
			}
			if n.embedding != nil {
				size := n.cfg.EmbeddingSize
				for i := range gradEmbedding {
					gradEmbedding[i] = 0
				}
				for pos, index := range x[s] {
					for e := 0; e < size; e++ {
						dIn := float32(0)
						for h := 0; h < n.hidden; h++ {
							da1 := dz2 * n.w2[h]
							if mask != nil {
								da1 *= mask[h]
							}
							dIn += da1 * n.activateGrad(z1[h], a1[h]) * n.w1[(pos*size+e)*n.hidden+h]
						}
						gradEmbedding[int(index)*size+e] += dIn
					}
				}
			}

			if n.embedding != nil {
				n.step(&n.embedding, gradEmbedding)
			}
			n.step(&n.w1, gradW1)
			n.step(&n.b1, gradB1)
			n.step(&n.w2, gradW2)
			n.step(&n.b2, gradB2)
			for i := range gradW1 {
				gradW1[i] = 0
			}
		}
		epochLoss /= float32(len(x))
		history.Loss = append(history.Loss, epochLoss)
		if verbose && (epoch%10 == 0 || epoch == epochs-1) {
			log.Logger().Info("training",
				zap.Int("epoch", epoch),
				zap.Float32("loss", epochLoss))
		}
	}
	return history
}

func (n *feedforward) Predict(x [][]int32) []float32 {
	predictions := make([]float32, len(x))
	for s, indices := range x {
		_, _, _, pred := n.forward(indices)
		predictions[s] = pred
	}
	return predictions
}
