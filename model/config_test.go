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

	"github.com/stretchr/testify/assert"
)

func TestGenerateConfigs(t *testing.T) {
	configs := GenerateConfigs(100, 0.25)
	// 2 activations x 3 inits x 2 pretrain x 2 hidden x 3 embedding
	// x 2 dropout x 2 max_ic50
	assert.Len(t, configs, 288)
	for _, config := range configs {
		assert.Equal(t, 100, config.NEpochs)
		assert.Equal(t, "mse", config.Loss)
	}
}

func TestGenerateConfigsDropoutCollapse(t *testing.T) {
	// with maxDropout zero the dropout axis produces duplicates, which the
	// dedup removes
	configs := GenerateConfigs(100, 0)
	assert.Len(t, configs, 144)
	for _, config := range configs {
		assert.Zero(t, config.DropoutProbability)
	}
}

func TestConfigFieldValue(t *testing.T) {
	config := Config{
		EmbeddingSize:      16,
		HiddenLayerSize:    64,
		Activation:         "tanh",
		Loss:               "mse",
		Init:               "glorot_uniform",
		NPretrainEpochs:    10,
		NEpochs:            250,
		DropoutProbability: 0.25,
		MaxIC50:            50000,
	}
	expected := map[string]string{
		"embedding_size":      "16",
		"hidden_layer_size":   "64",
		"activation":          "tanh",
		"loss":                "mse",
		"init":                "glorot_uniform",
		"n_pretrain_epochs":   "10",
		"n_epochs":            "250",
		"dropout_probability": "0.25",
		"max_ic50":            "50000",
	}
	for _, name := range ConfigFieldNames {
		assert.Equal(t, expected[name], config.FieldValue(name), name)
	}
	assert.Empty(t, config.FieldValue("no_such_field"))
}
