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

import "math/rand"

// Fold is one train/test split of sample indices.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits n sample indices into k shuffled folds. The permutation is
// derived from the seed, so the same seed reproduces the same folds. The
// remainder of n/k is spread over the first folds.
func KFold(n, k int, seed int64) []Fold {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	folds := make([]Fold, k)
	foldSize := n / k
	begin, end := 0, 0
	for i := 0; i < k; i++ {
		end += foldSize
		if i < n%k {
			end++
		}
		test := perm[begin:end]
		train := make([]int, 0, n-len(test))
		train = append(train, perm[:begin]...)
		train = append(train, perm[end:]...)
		folds[i] = Fold{Train: train, Test: test}
		begin = end
	}
	return folds
}
