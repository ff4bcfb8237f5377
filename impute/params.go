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
	"reflect"

	"go.uber.org/zap"

	"github.com/openvax/pmhc/base/log"
)

// ParamName is the type of imputer parameter names.
type ParamName string

// Predefined imputer parameter names.
const (
	K                    ParamName = "K"                    // neighbor count (knn)
	Orientation          ParamName = "Orientation"          // "columns" or "rows" (knn)
	PrintInterval        ParamName = "PrintInterval"        // progress interval (knn)
	Rank                 ParamName = "Rank"                 // rank of truncated SVD (svd)
	NBurnIn              ParamName = "NBurnIn"              // burn-in rounds (mice)
	NImputations         ParamName = "NImputations"         // averaged rounds (mice)
	MinValue             ParamName = "MinValue"             // lower clamp (mice)
	MaxValue             ParamName = "MaxValue"             // upper clamp (mice)
	ShrinkageValue       ParamName = "ShrinkageValue"       // threshold, 0 = auto (softimpute)
	MaxIterations        ParamName = "MaxIterations"        // iteration cap (svd, softimpute)
	ConvergenceThreshold ParamName = "ConvergenceThreshold" // relative change stop (svd, softimpute)
)

// Params stores parameters for an imputer as a map between names and values.
type Params map[ParamName]interface{}

// Copy parameters.
func (params Params) Copy() Params {
	newParams := make(Params)
	for k, v := range params {
		newParams[k] = v
	}
	return newParams
}

// Overwrite returns a copy of params with values from overrides replacing the
// defaults under the same name.
func (params Params) Overwrite(overrides Params) Params {
	merged := params.Copy()
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// GetInt gets an integer parameter by name. Returns defaultValue if it does
// not exist or the type does not match.
func (params Params) GetInt(name ParamName, defaultValue int) int {
	if val, exist := params[name]; exist {
		switch val := val.(type) {
		case int:
			return val
		default:
			log.Logger().Error("type mismatch in imputer parameter",
				zap.String("name", string(name)),
				zap.String("expect", "int"),
				zap.String("got", reflect.TypeOf(val).String()))
		}
	}
	return defaultValue
}

// GetFloat64 gets a float parameter by name. Returns defaultValue if it does
// not exist or the type does not match. Integers are converted.
func (params Params) GetFloat64(name ParamName, defaultValue float64) float64 {
	if val, exist := params[name]; exist {
		switch val := val.(type) {
		case float64:
			return val
		case float32:
			return float64(val)
		case int:
			return float64(val)
		default:
			log.Logger().Error("type mismatch in imputer parameter",
				zap.String("name", string(name)),
				zap.String("expect", "float64"),
				zap.String("got", reflect.TypeOf(val).String()))
		}
	}
	return defaultValue
}

// GetString gets a string parameter by name. Returns defaultValue if it does
// not exist or the type does not match.
func (params Params) GetString(name ParamName, defaultValue string) string {
	if val, exist := params[name]; exist {
		switch val := val.(type) {
		case string:
			return val
		default:
			log.Logger().Error("type mismatch in imputer parameter",
				zap.String("name", string(name)),
				zap.String("expect", "string"),
				zap.String("got", reflect.TypeOf(val).String()))
		}
	}
	return defaultValue
}
