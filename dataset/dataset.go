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

// Package dataset loads peptide-MHC binding measurements and groups them into
// per-allele training sets. Affinities are kept in two parallel forms: the raw
// IC50 in nanomolar and a log-rescaled value in [0,1] used as the regression
// target.
package dataset

import (
	"sort"
	"strings"

	"github.com/chewxy/math32"
	"github.com/juju/errors"
)

// Alphabet is the set of amino acid residues, in index order.
const Alphabet = "ACDEFGHIKLMNPQRSTVWY"

// NumResidues is the number of amino acid indices produced by EncodePeptide.
const NumResidues = len(Alphabet)

var residueIndex = func() map[rune]int32 {
	m := make(map[rune]int32, len(Alphabet))
	for i, r := range Alphabet {
		m[r] = int32(i)
	}
	return m
}()

// AlleleData is the training set for one MHC allele. Peptides, X, Y and IC50
// are index-aligned: X[i] is the residue-index encoding of Peptides[i], Y[i]
// the rescaled affinity and IC50[i] the raw measurement. Instances are never
// mutated after construction; imputation replaces them wholesale.
type AlleleData struct {
	Peptides []string
	X        [][]int32
	Y        []float32
	IC50     []float32
	MaxIC50  float32
}

func (d *AlleleData) Count() int {
	return len(d.Peptides)
}

// TransformIC50 rescales a raw IC50 to the [0,1] regression target:
//
//	y = 1 - log(ic50)/log(maxIC50)
func TransformIC50(ic50, maxIC50 float32) float32 {
	y := 1 - math32.Log(ic50)/math32.Log(maxIC50)
	return math32.Min(1, math32.Max(0, y))
}

// InverseTransformIC50 maps a [0,1] prediction back to nanomolar:
//
//	ic50 = maxIC50^(1-y)
func InverseTransformIC50(y, maxIC50 float32) float32 {
	return math32.Pow(maxIC50, 1-y)
}

// EncodePeptide converts a peptide sequence to residue indices.
func EncodePeptide(peptide string) ([]int32, error) {
	indices := make([]int32, 0, len(peptide))
	for _, r := range strings.ToUpper(peptide) {
		index, ok := residueIndex[r]
		if !ok {
			return nil, errors.NotValidf("residue %q in peptide %q", string(r), peptide)
		}
		indices = append(indices, index)
	}
	return indices, nil
}

// IndicesToHotshot expands residue indices to a flat one-hot encoding of
// width len(x[i]) * nIndices.
func IndicesToHotshot(x [][]int32, nIndices int) [][]float32 {
	encoded := make([][]float32, len(x))
	for i, indices := range x {
		row := make([]float32, len(indices)*nIndices)
		for pos, index := range indices {
			row[pos*nIndices+int(index)] = 1
		}
		encoded[i] = row
	}
	return encoded
}

// NewAlleleData builds an allele dataset from parallel peptide and IC50
// slices. Peptide and measurement order is preserved.
func NewAlleleData(peptides []string, ic50 []float32, maxIC50 float32) (*AlleleData, error) {
	if len(peptides) != len(ic50) {
		return nil, errors.NotValidf("%d peptides with %d measurements", len(peptides), len(ic50))
	}
	data := &AlleleData{
		Peptides: make([]string, 0, len(peptides)),
		X:        make([][]int32, 0, len(peptides)),
		Y:        make([]float32, 0, len(peptides)),
		IC50:     make([]float32, 0, len(peptides)),
		MaxIC50:  maxIC50,
	}
	for i, peptide := range peptides {
		indices, err := EncodePeptide(peptide)
		if err != nil {
			return nil, errors.Trace(err)
		}
		data.Peptides = append(data.Peptides, peptide)
		data.X = append(data.X, indices)
		data.Y = append(data.Y, TransformIC50(ic50[i], maxIC50))
		data.IC50 = append(data.IC50, ic50[i])
	}
	return data, nil
}

// NewAlleleDataFromAffinityDict builds an allele dataset from a mapping of
// peptide to rescaled affinity, as produced by matrix completion. Peptides
// are sorted for stable order and raw IC50 values are recovered by the
// inverse transform.
func NewAlleleDataFromAffinityDict(affinities map[string]float32, maxIC50 float32) (*AlleleData, error) {
	peptides := make([]string, 0, len(affinities))
	for peptide := range affinities {
		peptides = append(peptides, peptide)
	}
	sort.Strings(peptides)
	data := &AlleleData{
		Peptides: make([]string, 0, len(peptides)),
		X:        make([][]int32, 0, len(peptides)),
		Y:        make([]float32, 0, len(peptides)),
		IC50:     make([]float32, 0, len(peptides)),
		MaxIC50:  maxIC50,
	}
	for _, peptide := range peptides {
		indices, err := EncodePeptide(peptide)
		if err != nil {
			return nil, errors.Trace(err)
		}
		y := math32.Min(1, math32.Max(0, affinities[peptide]))
		data.Peptides = append(data.Peptides, peptide)
		data.X = append(data.X, indices)
		data.Y = append(data.Y, y)
		data.IC50 = append(data.IC50, InverseTransformIC50(y, maxIC50))
	}
	return data, nil
}
