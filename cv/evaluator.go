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

package cv

import (
	"sort"

	"modernc.org/sortutil"
)

// AUC computes the area under the ROC curve from the predictions of the
// positive and negative samples. Both slices are sorted in place.
func AUC(posPrediction, negPrediction []float32) float32 {
	sort.Sort(sortutil.Float32Slice(posPrediction))
	sort.Sort(sortutil.Float32Slice(negPrediction))
	var sum float32
	var nPos int
	for pPos := range posPrediction {
		// find the negative sample with the greatest prediction less than current positive sample
		for nPos < len(negPrediction) && negPrediction[nPos] < posPrediction[pPos] {
			nPos++
		}
		// add the number of negative samples have less prediction than current positive sample
		sum += float32(nPos)
	}
	if len(posPrediction)*len(negPrediction) == 0 {
		return 0
	}
	return sum / float32(len(posPrediction)*len(negPrediction))
}

// Accuracy is the fraction of samples whose predicted binary label matches
// the true label.
func Accuracy(labels, predicted []bool) float32 {
	if len(labels) == 0 {
		return 0
	}
	var correct float32
	for i := range labels {
		if labels[i] == predicted[i] {
			correct++
		}
	}
	return correct / float32(len(labels))
}
