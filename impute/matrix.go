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

// Package impute densifies the sparse peptide-MHC affinity matrix. Observed
// affinities from every allele dataset are gathered into one matrix with NaN
// for the unobserved cells, pruned under observation-count thresholds and
// handed to a pluggable completion algorithm.
package impute

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/openvax/pmhc/base/log"
	"github.com/openvax/pmhc/dataset"
)

// Matrix is a dense affinity matrix with row and column identity. Row i holds
// the affinities of Peptides[i], column j those of Alleles[j]; unobserved
// cells are NaN. Peptides and Alleles always stay index-aligned with X.
type Matrix struct {
	X        *mat.Dense
	Peptides []string
	Alleles  []string
}

// BuildMatrix gathers every observed (peptide, allele, affinity) triple into
// a dense matrix. Alleles are ordered by name, peptides in first-seen order.
// When a dataset records the same peptide twice for one allele the first
// value wins.
func BuildMatrix(alleleData map[string]*dataset.AlleleData) *Matrix {
	alleles := make([]string, 0, len(alleleData))
	for allele := range alleleData {
		alleles = append(alleles, allele)
	}
	sort.Strings(alleles)

	type triple struct {
		row, col int
		affinity float32
	}
	peptideDict := dataset.NewDict()
	alleleDict := dataset.NewDict()
	seen := make(map[[2]int]struct{})
	triples := make([]triple, 0)
	for _, allele := range alleles {
		data := alleleData[allele]
		col := alleleDict.Id(allele)
		for i, peptide := range data.Peptides {
			row := peptideDict.Id(peptide)
			key := [2]int{row, col}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			triples = append(triples, triple{row: row, col: col, affinity: data.Y[i]})
		}
	}

	if peptideDict.Count() == 0 || alleleDict.Count() == 0 {
		return &Matrix{}
	}
	x := mat.NewDense(peptideDict.Count(), alleleDict.Count(), nil)
	for i := 0; i < peptideDict.Count(); i++ {
		for j := 0; j < alleleDict.Count(); j++ {
			x.Set(i, j, math.NaN())
		}
	}
	for _, t := range triples {
		x.Set(t.row, t.col, float64(t.affinity))
	}
	log.Logger().Info("collected binding values",
		zap.Int("values", len(triples)),
		zap.Int("alleles", alleleDict.Count()),
		zap.Int("peptides", peptideDict.Count()))
	return &Matrix{X: x, Peptides: peptideDict.Strings(), Alleles: alleleDict.Strings()}
}

// Dims returns the shape of the matrix.
func (m *Matrix) Dims() (int, int) {
	if m.X == nil {
		return 0, 0
	}
	return m.X.Dims()
}

// CountMissing returns the number of NaN cells.
func (m *Matrix) CountMissing() int {
	rows, cols := m.Dims()
	missing := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(m.X.At(i, j)) {
				missing++
			}
		}
	}
	return missing
}

// Prune drops peptide rows with fewer than minPerPeptide observations, then
// allele columns with fewer than minPerAllele observations on the row-reduced
// matrix. Label lists are reduced under the same index removal.
func (m *Matrix) Prune(minPerPeptide, minPerAllele int) *Matrix {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return &Matrix{}
	}
	keepRows := make([]int, 0, rows)
	var droppedPeptides int
	for i := 0; i < rows; i++ {
		observed := 0
		for j := 0; j < cols; j++ {
			if !math.IsNaN(m.X.At(i, j)) {
				observed++
			}
		}
		if observed >= minPerPeptide {
			keepRows = append(keepRows, i)
		} else {
			droppedPeptides++
		}
	}
	if droppedPeptides > 0 {
		log.Logger().Info("dropping peptides with too few observations",
			zap.Int("dropped", droppedPeptides),
			zap.Int("min_observations", minPerPeptide))
	}

	keepCols := make([]int, 0, cols)
	droppedAlleles := make([]string, 0)
	for j := 0; j < cols; j++ {
		observed := 0
		for _, i := range keepRows {
			if !math.IsNaN(m.X.At(i, j)) {
				observed++
			}
		}
		if observed >= minPerAllele {
			keepCols = append(keepCols, j)
		} else {
			droppedAlleles = append(droppedAlleles, m.Alleles[j])
		}
	}
	if len(droppedAlleles) > 0 {
		log.Logger().Info("dropping alleles with too few observations",
			zap.Int("dropped", len(droppedAlleles)),
			zap.Int("min_observations", minPerAllele),
			zap.Strings("alleles", droppedAlleles))
	}

	if len(keepRows) == 0 || len(keepCols) == 0 {
		return &Matrix{}
	}
	pruned := mat.NewDense(len(keepRows), len(keepCols), nil)
	peptides := make([]string, 0, len(keepRows))
	alleles := make([]string, 0, len(keepCols))
	for ii, i := range keepRows {
		for jj, j := range keepCols {
			pruned.Set(ii, jj, m.X.At(i, j))
		}
		peptides = append(peptides, m.Peptides[i])
	}
	for _, j := range keepCols {
		alleles = append(alleles, m.Alleles[j])
	}
	return &Matrix{X: pruned, Peptides: peptides, Alleles: alleles}
}

// ToNestedDict converts the matrix to an allele -> peptide -> affinity
// mapping. Only finite cells are kept, so completion algorithms may leave
// unrecoverable entries as NaN.
func (m *Matrix) ToNestedDict() map[string]map[string]float32 {
	nested := make(map[string]map[string]float32)
	for i, peptide := range m.Peptides {
		for j, allele := range m.Alleles {
			affinity := m.X.At(i, j)
			if math.IsInf(affinity, 0) || math.IsNaN(affinity) {
				continue
			}
			if _, ok := nested[allele]; !ok {
				nested[allele] = make(map[string]float32)
			}
			nested[allele][peptide] = float32(affinity)
		}
	}
	return nested
}
