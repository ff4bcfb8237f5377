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

import "reflect"

// Hyperparameters is one record of the convolutional hyperparameter grid,
// serialized as a YAML mapping by the grid command.
type Hyperparameters map[string]interface{}

// baseHyperparameters is the template every grid record starts from; swept
// axes override its values.
func baseHyperparameters() Hyperparameters {
	return Hyperparameters{
		"convolutional_filters":                  64,
		"convolutional_kernel_size":              8,
		"convolutional_kernel_l1_l2":             []float64{0.0, 0.0},
		"flanking_averages":                      true,
		"n_flank_length":                         15,
		"c_flank_length":                         15,
		"post_convolutional_dense_layer_sizes":   []int{},
		"minibatch_size":                         512,
		"dropout_rate":                           0.5,
		"convolutional_activation":               "relu",
		"patience":                               20,
		"learning_rate":                          0.001,
	}
}

// GenerateGrid enumerates the Cartesian product of the swept axes. A record
// is appended only when no structurally equal record was generated before, so
// the output preserves first-occurrence order without duplicates.
func GenerateGrid() []Hyperparameters {
	grid := make([]Hyperparameters, 0)
	for _, learningRate := range []float64{0.001} {
		for _, activation := range []string{"tanh", "relu"} {
			for _, filters := range []int{256, 512} {
				for _, flankingAverages := range []bool{true} {
					for _, kernelSize := range []int{11, 13, 15, 17} {
						for _, l1 := range []float64{0.0, 1e-6} {
							for _, denseSizes := range [][]int{{8}, {16}} {
								for _, dropout := range []float64{0.3, 0.5} {
									record := baseHyperparameters()
									record["learning_rate"] = learningRate
									record["convolutional_activation"] = activation
									record["convolutional_filters"] = filters
									record["flanking_averages"] = flankingAverages
									record["convolutional_kernel_size"] = kernelSize
									record["convolutional_kernel_l1_l2"] = []float64{l1, 0.0}
									record["post_convolutional_dense_layer_sizes"] = denseSizes
									record["dropout_rate"] = dropout
									if !containsRecord(grid, record) {
										grid = append(grid, record)
									}
								}
							}
						}
					}
				}
			}
		}
	}
	return grid
}

func containsRecord(grid []Hyperparameters, record Hyperparameters) bool {
	for _, existing := range grid {
		if reflect.DeepEqual(existing, record) {
			return true
		}
	}
	return false
}
