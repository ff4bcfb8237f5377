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

// Package cv evaluates hyperparameter configurations by per-allele k-fold
// cross-validation, scoring each fold with AUC and accuracy against the
// 500 nM binding threshold.
package cv

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/openvax/pmhc/base/log"
	"github.com/openvax/pmhc/dataset"
	"github.com/openvax/pmhc/model"
)

// BindingThreshold is the IC50 cutoff, in nanomolar, below which a peptide
// counts as a binder.
const BindingThreshold = 500

// PeptideLength is the peptide length this pipeline trains on.
const PeptideLength = 9

// foldSeed fixes the k-fold permutation for reproducible experiments.
const foldSeed = 0

// Options control the cross-validation loops.
type Options struct {
	MinSamplesPerAllele int
	CVFolds             int
	NTrainingEpochs     int
	NPretrainEpochs     int
	MaxIC50             float32
}

// CrossValidateAllele estimates per-fold AUC and accuracy of a model on one
// allele's samples. The model weights at entry are the baseline restored
// before every fold's fit. Folds whose held-out binary labels are all equal
// are skipped: AUC is undefined on them, so they contribute no score.
func CrossValidateAllele(
	m model.Model,
	alleleName string,
	x [][]int32, y, ic50 []float32,
	opts Options,
) (foldAUCs, foldAccuracies []float32) {
	initialWeights := m.GetWeights()
	log.Logger().Info("cross-validation", zap.String("allele", alleleName))
	for cvIter, fold := range KFold(len(y), opts.CVFolds, foldSeed) {
		labelTest := make([]bool, len(fold.Test))
		positives := 0
		for i, s := range fold.Test {
			labelTest[i] = ic50[s] <= BindingThreshold
			if labelTest[i] {
				positives++
			}
		}
		if positives == 0 || positives == len(fold.Test) {
			log.Logger().Info("skipping CV fold since all outputs are the same",
				zap.String("allele", alleleName),
				zap.Int("fold", cvIter))
			continue
		}

		if err := m.SetWeights(initialWeights); err != nil {
			log.Logger().Fatal("failed to reset model weights", zap.Error(err))
		}
		xTrain := gather(x, fold.Train)
		yTrain := gatherFloats(y, fold.Train)
		history := m.Fit(xTrain, yTrain, opts.NTrainingEpochs, false)

		xTest := gather(x, fold.Test)
		pred := m.Predict(xTest)
		var posPrediction, negPrediction []float32
		predictedLabels := make([]bool, len(pred))
		for i, p := range pred {
			if labelTest[i] {
				posPrediction = append(posPrediction, p)
			} else {
				negPrediction = append(negPrediction, p)
			}
			ic50Pred := dataset.InverseTransformIC50(p, opts.MaxIC50)
			predictedLabels[i] = ic50Pred <= BindingThreshold
		}
		auc := AUC(posPrediction, negPrediction)
		accuracy := Accuracy(labelTest, predictedLabels)

		if len(history.Loss) > 0 {
			log.Logger().Debug("fold loss history",
				zap.String("allele", alleleName),
				zap.Int("fold", cvIter+1),
				zap.Float32("first", history.Loss[0]),
				zap.Float32("middle", history.Loss[len(history.Loss)/2]),
				zap.Float32("last", history.Loss[len(history.Loss)-1]))
		}
		log.Logger().Info("fold score",
			zap.String("allele", alleleName),
			zap.Int("fold", cvIter+1),
			zap.Float32("auc", auc),
			zap.Float32("accuracy", accuracy))
		foldAUCs = append(foldAUCs, auc)
		foldAccuracies = append(foldAccuracies, accuracy)
	}
	return foldAUCs, foldAccuracies
}

// LeaveOutAlleleCrossValidation fits the model for every allele in the
// dataset and returns one aggregate row per allele. Malformed allele names
// (purely numeric or shorter than five characters) and alleles with too few
// samples are skipped, as are alleles where no fold produced a score. When
// pretraining is configured the model first trains on the pooled samples of
// all other alleles, after a reset to the entry weights so nothing leaks
// between alleles.
func LeaveOutAlleleCrossValidation(
	m model.Model,
	alleleData map[string]*dataset.AlleleData,
	opts Options,
) []Row {
	initialWeights := m.GetWeights()
	alleles := make([]string, 0, len(alleleData))
	for allele := range alleleData {
		alleles = append(alleles, allele)
	}
	sort.Strings(alleles)

	rows := make([]Row, 0, len(alleles))
	for _, allele := range alleles {
		if isMalformedAlleleName(allele) {
			log.Logger().Info("skipping allele with malformed name", zap.String("allele", allele))
			continue
		}
		data := alleleData[allele]
		if data.Count() < opts.MinSamplesPerAllele {
			log.Logger().Info("skipping allele with too few samples",
				zap.String("allele", allele),
				zap.Int("samples", data.Count()))
			continue
		}
		if err := m.SetWeights(initialWeights); err != nil {
			log.Logger().Fatal("failed to reset model weights", zap.Error(err))
		}
		if opts.NPretrainEpochs > 0 {
			pretrain(m, allele, alleleData, opts.NPretrainEpochs)
		}
		aucs, accuracies := CrossValidateAllele(m, allele, data.X, data.Y, data.IC50, opts)
		if len(aucs) == 0 {
			log.Logger().Info("skipping allele with no scoreable folds", zap.String("allele", allele))
			continue
		}
		rows = append(rows, newRow(allele, data.Count(), aucs, accuracies))
	}
	return rows
}

// pretrain fits the model on the pooled samples of every other allele.
func pretrain(m model.Model, allele string, alleleData map[string]*dataset.AlleleData, epochs int) {
	var pooledX [][]int32
	var pooledY []float32
	for other, data := range alleleData {
		if other == allele {
			continue
		}
		pooledX = append(pooledX, data.X...)
		pooledY = append(pooledY, data.Y...)
	}
	if len(pooledX) == 0 {
		return
	}
	log.Logger().Info("pre-training on other alleles",
		zap.String("allele", allele),
		zap.Int("samples", len(pooledX)),
		zap.Int("epochs", epochs))
	m.Fit(pooledX, pooledY, epochs, false)
}

// EvaluateConfig builds the network a configuration describes and runs the
// leave-out-allele loop over the given datasets.
func EvaluateConfig(cfg model.Config, alleleData map[string]*dataset.AlleleData, opts Options) []Row {
	m := model.FromConfig(cfg, PeptideLength)
	opts.NTrainingEpochs = cfg.NEpochs
	opts.NPretrainEpochs = cfg.NPretrainEpochs
	opts.MaxIC50 = cfg.MaxIC50
	return LeaveOutAlleleCrossValidation(m, alleleData, opts)
}

// isMalformedAlleleName reports identifiers that cannot be real allele names:
// a proper name is at least a gene letter plus four digits, e.g. C0401.
func isMalformedAlleleName(allele string) bool {
	if len(allele) < 5 {
		return true
	}
	if _, err := strconv.Atoi(strings.TrimSpace(allele)); err == nil {
		return true
	}
	return false
}

func gather(x [][]int32, indices []int) [][]int32 {
	out := make([][]int32, len(indices))
	for i, s := range indices {
		out[i] = x[s]
	}
	return out
}

func gatherFloats(v []float32, indices []int) []float32 {
	out := make([]float32, len(indices))
	for i, s := range indices {
		out[i] = v[s]
	}
	return out
}
