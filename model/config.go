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

// Package model defines the binding affinity predictors and their
// hyperparameter configurations.
package model

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

// Config is one hyperparameter configuration of a feedforward predictor.
// Configs are plain values; the grid deduplicates them by equality.
type Config struct {
	EmbeddingSize      int
	HiddenLayerSize    int
	Activation         string
	Loss               string
	Init               string
	NPretrainEpochs    int
	NEpochs            int
	DropoutProbability float32
	MaxIC50            float32
}

var hiddenLayerSizes = []int{64, 512}

var initializationMethods = []string{
	"glorot_uniform",
	"glorot_normal",
	"uniform",
}

var activations = []string{"relu", "tanh"}

// GenerateConfigs enumerates the model selection grid. Duplicates (the
// dropout axis collapses when maxDropout is zero) are removed, keeping the
// first occurrence.
func GenerateConfigs(trainingEpochs int, maxDropout float32) []Config {
	embeddingSizes := []int{0, 16, 64}
	configs := make([]Config, 0)
	for _, activation := range activations {
		for _, loss := range []string{"mse"} {
			for _, init := range initializationMethods {
				for _, nPretrainEpochs := range []int{0, 10} {
					for _, hiddenLayerSize := range hiddenLayerSizes {
						for _, embeddingSize := range embeddingSizes {
							for _, dropout := range []float32{0, maxDropout} {
								for _, maxIC50 := range []float32{5000, 50000} {
									config := Config{
										EmbeddingSize:      embeddingSize,
										HiddenLayerSize:    hiddenLayerSize,
										Activation:         activation,
										Loss:               loss,
										Init:               init,
										NPretrainEpochs:    nPretrainEpochs,
										NEpochs:            trainingEpochs,
										DropoutProbability: dropout,
										MaxIC50:            maxIC50,
									}
									if !lo.Contains(configs, config) {
										configs = append(configs, config)
									}
								}
							}
						}
					}
				}
			}
		}
	}
	return configs
}

// ConfigFieldNames lists the hyperparameter fields in results column order.
var ConfigFieldNames = []string{
	"embedding_size",
	"hidden_layer_size",
	"activation",
	"loss",
	"init",
	"n_pretrain_epochs",
	"n_epochs",
	"dropout_probability",
	"max_ic50",
}

// FieldValue renders one hyperparameter field as a string, for the results
// table and the per-value summary.
func (c Config) FieldValue(name string) string {
	switch name {
	case "embedding_size":
		return strconv.Itoa(c.EmbeddingSize)
	case "hidden_layer_size":
		return strconv.Itoa(c.HiddenLayerSize)
	case "activation":
		return c.Activation
	case "loss":
		return c.Loss
	case "init":
		return c.Init
	case "n_pretrain_epochs":
		return strconv.Itoa(c.NPretrainEpochs)
	case "n_epochs":
		return strconv.Itoa(c.NEpochs)
	case "dropout_probability":
		return strconv.FormatFloat(float64(c.DropoutProbability), 'g', -1, 32)
	case "max_ic50":
		return strconv.FormatFloat(float64(c.MaxIC50), 'g', -1, 32)
	default:
		return ""
	}
}

func (c Config) String() string {
	return fmt.Sprintf(
		"Config(embedding_size=%d, hidden_layer_size=%d, activation=%s, loss=%s, init=%s, "+
			"n_pretrain_epochs=%d, n_epochs=%d, dropout_probability=%g, max_ic50=%g)",
		c.EmbeddingSize, c.HiddenLayerSize, c.Activation, c.Loss, c.Init,
		c.NPretrainEpochs, c.NEpochs, c.DropoutProbability, c.MaxIC50)
}
