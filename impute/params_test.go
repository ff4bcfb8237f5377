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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsGetters(t *testing.T) {
	params := Params{
		K:              4,
		Orientation:    "rows",
		ShrinkageValue: 0.02,
		Rank:           "not an int",
	}
	assert.Equal(t, 4, params.GetInt(K, 3))
	assert.Equal(t, "rows", params.GetString(Orientation, "columns"))
	assert.Equal(t, 0.02, params.GetFloat64(ShrinkageValue, 0))
	// absent names fall back to the default
	assert.Equal(t, 5, params.GetInt(NBurnIn, 5))
	assert.Equal(t, 1.0, params.GetFloat64(MaxValue, 1.0))
	assert.Equal(t, "columns", params.GetString("missing", "columns"))
	// so do type mismatches
	assert.Equal(t, 10, params.GetInt(Rank, 10))
	// ints convert to floats
	assert.Equal(t, 4.0, params.GetFloat64(K, 0))
}

func TestParamsOverwrite(t *testing.T) {
	defaults := Params{K: 3, Orientation: "columns"}
	merged := defaults.Overwrite(Params{K: 7})
	assert.Equal(t, 7, merged.GetInt(K, 0))
	assert.Equal(t, "columns", merged.GetString(Orientation, ""))
	// the receiver is untouched
	assert.Equal(t, 3, defaults.GetInt(K, 0))
}

func TestParamsCopy(t *testing.T) {
	params := Params{K: 3}
	copied := params.Copy()
	copied[K] = 9
	assert.Equal(t, 3, params.GetInt(K, 0))
	assert.Equal(t, 9, copied.GetInt(K, 0))
}
