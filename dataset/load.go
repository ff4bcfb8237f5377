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

package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/openvax/pmhc/base/log"
)

// binding data files carry at least these columns, comma or tab separated
var bindingDataColumns = []string{"mhc", "peptide", "meas"}

type bindingRecord struct {
	allele  string
	peptide string
	meas    float32
}

// LoadBindingData reads a binding affinity table with `mhc`, `peptide`
// (or `sequence`) and `meas` columns and groups the measurements by allele.
// Rows whose peptide length differs from peptideLength are dropped, as are
// peptides containing unknown residues. The first measurement wins when the
// same (allele, peptide) pair occurs twice.
func LoadBindingData(path string, peptideLength int, maxIC50 float32) (map[string]*AlleleData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()

	buffered := bufio.NewReader(file)
	headerLine, err := buffered.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Trace(err)
	}
	separator := ','
	if strings.Contains(headerLine, "\t") {
		separator = '\t'
	}
	columns, err := parseHeader(headerLine, separator)
	if err != nil {
		return nil, errors.Trace(err)
	}

	reader := csv.NewReader(buffered)
	reader.Comma = separator
	reader.FieldsPerRecord = -1

	var (
		records      []bindingRecord
		skippedShort int
		skippedAlien int
	)
	for line := 2; ; line++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Trace(err)
		}
		record, ok, err := parseRecord(fields, columns, peptideLength)
		if err != nil {
			return nil, errors.Annotatef(err, "line %d", line)
		} else if !ok {
			skippedShort++
			continue
		}
		if _, err := EncodePeptide(record.peptide); err != nil {
			skippedAlien++
			continue
		}
		records = append(records, record)
	}

	type alleleRows struct {
		peptides []string
		ic50     []float32
		seen     map[string]struct{}
	}
	grouped := make(map[string]*alleleRows)
	order := make([]string, 0)
	for _, record := range records {
		rows, ok := grouped[record.allele]
		if !ok {
			rows = &alleleRows{seen: map[string]struct{}{}}
			grouped[record.allele] = rows
			order = append(order, record.allele)
		}
		// first measurement wins for a repeated (allele, peptide) pair
		if _, ok := rows.seen[record.peptide]; ok {
			continue
		}
		rows.seen[record.peptide] = struct{}{}
		rows.peptides = append(rows.peptides, record.peptide)
		rows.ic50 = append(rows.ic50, record.meas)
	}

	alleleData := make(map[string]*AlleleData, len(grouped))
	for _, allele := range order {
		rows := grouped[allele]
		data, err := NewAlleleData(rows.peptides, rows.ic50, maxIC50)
		if err != nil {
			return nil, errors.Annotatef(err, "allele %s", allele)
		}
		alleleData[allele] = data
	}
	log.Logger().Info("loaded binding data",
		zap.String("path", path),
		zap.Int("measurements", len(records)),
		zap.Int("alleles", len(alleleData)),
		zap.Int("skipped_wrong_length", skippedShort),
		zap.Int("skipped_unknown_residues", skippedAlien))
	return alleleData, nil
}

func parseHeader(headerLine string, separator rune) (map[string]int, error) {
	columns := make(map[string]int)
	for i, name := range strings.Split(strings.TrimRight(headerLine, "\r\n"), string(separator)) {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	// sequence is an accepted alias for peptide
	if _, ok := columns["peptide"]; !ok {
		if index, ok := columns["sequence"]; ok {
			columns["peptide"] = index
		}
	}
	for _, name := range bindingDataColumns {
		if _, ok := columns[name]; !ok {
			return nil, errors.NotFoundf("column %q", name)
		}
	}
	return columns, nil
}

func parseRecord(fields []string, columns map[string]int, peptideLength int) (bindingRecord, bool, error) {
	for _, name := range bindingDataColumns {
		if columns[name] >= len(fields) {
			return bindingRecord{}, false, errors.NotValidf("%d fields", len(fields))
		}
	}
	peptide := strings.TrimSpace(fields[columns["peptide"]])
	if len(peptide) != peptideLength {
		return bindingRecord{}, false, nil
	}
	meas, err := strconv.ParseFloat(strings.TrimSpace(fields[columns["meas"]]), 32)
	if err != nil {
		return bindingRecord{}, false, errors.Trace(err)
	}
	return bindingRecord{
		allele:  strings.TrimSpace(fields[columns["mhc"]]),
		peptide: peptide,
		meas:    float32(meas),
	}, true, nil
}
