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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/openvax/pmhc/model"
)

// Row is the aggregate cross-validation result of one allele under one
// configuration.
type Row struct {
	AlleleName     string
	DatasetSize    int
	AUCMean        float32
	AUCMedian      float32
	AUCStd         float32
	AUCMin         float32
	AUCMax         float32
	AccuracyMean   float32
	AccuracyMedian float32
	AccuracyStd    float32
	AccuracyMin    float32
	AccuracyMax    float32
}

// ConfiguredRow tags a result row with the configuration that produced it.
type ConfiguredRow struct {
	Row
	ConfigIndex int
	Config      model.Config
}

func newRow(allele string, datasetSize int, aucs, accuracies []float32) Row {
	aucMean, aucMedian, aucStd, aucMin, aucMax := describe(aucs)
	accMean, accMedian, accStd, accMin, accMax := describe(accuracies)
	return Row{
		AlleleName:     allele,
		DatasetSize:    datasetSize,
		AUCMean:        aucMean,
		AUCMedian:      aucMedian,
		AUCStd:         aucStd,
		AUCMin:         aucMin,
		AUCMax:         aucMax,
		AccuracyMean:   accMean,
		AccuracyMedian: accMedian,
		AccuracyStd:    accStd,
		AccuracyMin:    accMin,
		AccuracyMax:    accMax,
	}
}

// describe summarizes fold scores. The standard deviation is the population
// form, matching how the result tables have historically been reported.
func describe(values []float32) (mean, median, std, min, max float32) {
	v := toFloat64(values)
	sort.Float64s(v)
	m := stat.Mean(v, nil)
	variance := 0.0
	for _, x := range v {
		variance += (x - m) * (x - m)
	}
	variance /= float64(len(v))
	return float32(m),
		float32(stat.Quantile(0.5, stat.LinInterp, v, nil)),
		float32(math.Sqrt(variance)),
		float32(floats.Min(v)),
		float32(floats.Max(v))
}

func toFloat64(values []float32) []float64 {
	v := make([]float64, len(values))
	for i, x := range values {
		v[i] = float64(x)
	}
	return v
}

// resultColumns is the CSV header: aggregate statistics, the configuration
// index, then every hyperparameter field.
var resultColumns = append([]string{
	"allele_name",
	"dataset_size",
	"auc_mean",
	"auc_median",
	"auc_std",
	"auc_min",
	"auc_max",
	"accuracy_mean",
	"accuracy_median",
	"accuracy_std",
	"accuracy_min",
	"accuracy_max",
	"config_idx",
}, model.ConfigFieldNames...)

// ResultWriter persists result rows to a CSV file incrementally: the first
// configuration overwrites the file together with the header, later ones
// append rows, so an interrupted sweep leaves an intact prefix behind.
type ResultWriter struct {
	path string
}

func NewResultWriter(path string) *ResultWriter {
	return &ResultWriter{path: path}
}

// Write appends the rows of one configuration, or rewrites the file from
// scratch when overwrite is set.
func (w *ResultWriter) Write(rows []ConfiguredRow, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	file, err := os.OpenFile(w.path, flags, 0644)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	if overwrite {
		if err := writer.Write(resultColumns); err != nil {
			return errors.Trace(err)
		}
	}
	for _, row := range rows {
		record := []string{
			row.AlleleName,
			strconv.Itoa(row.DatasetSize),
			formatFloat(row.AUCMean),
			formatFloat(row.AUCMedian),
			formatFloat(row.AUCStd),
			formatFloat(row.AUCMin),
			formatFloat(row.AUCMax),
			formatFloat(row.AccuracyMean),
			formatFloat(row.AccuracyMedian),
			formatFloat(row.AccuracyStd),
			formatFloat(row.AccuracyMin),
			formatFloat(row.AccuracyMax),
			strconv.Itoa(row.ConfigIndex),
		}
		for _, field := range model.ConfigFieldNames {
			record = append(record, row.Config.FieldValue(field))
		}
		if err := writer.Write(record); err != nil {
			return errors.Trace(err)
		}
	}
	writer.Flush()
	return errors.Trace(writer.Error())
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// SummarizeByHyperparameter renders the 25/50/75 percentiles of the per-allele
// mean AUC and accuracy, grouped by the value of each hyperparameter across
// all evaluated configurations.
func SummarizeByHyperparameter(out io.Writer, rows []ConfiguredRow) {
	for _, field := range model.ConfigFieldNames {
		groups := make(map[string][]ConfiguredRow)
		values := make([]string, 0)
		for _, row := range rows {
			value := row.Config.FieldValue(field)
			if _, ok := groups[value]; !ok {
				values = append(values, value)
			}
			groups[value] = append(groups[value], row)
		}
		sort.Strings(values)

		fmt.Fprintf(out, "\n%s\n", field)
		table := tablewriter.NewWriter(out)
		table.Header("value", "configs", "auc 25%", "auc 50%", "auc 75%", "acc 25%", "acc 50%", "acc 75%")
		for _, value := range values {
			group := groups[value]
			aucs := make([]float64, 0, len(group))
			accuracies := make([]float64, 0, len(group))
			configs := make(map[int]struct{})
			for _, row := range group {
				aucs = append(aucs, float64(row.AUCMean))
				accuracies = append(accuracies, float64(row.AccuracyMean))
				configs[row.ConfigIndex] = struct{}{}
			}
			sort.Float64s(aucs)
			sort.Float64s(accuracies)
			_ = table.Append([]string{
				value,
				strconv.Itoa(len(configs)),
				formatQuantile(aucs, 0.25),
				formatQuantile(aucs, 0.50),
				formatQuantile(aucs, 0.75),
				formatQuantile(accuracies, 0.25),
				formatQuantile(accuracies, 0.50),
				formatQuantile(accuracies, 0.75),
			})
		}
		_ = table.Render()
	}
}

func formatQuantile(sorted []float64, p float64) string {
	if len(sorted) == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", stat.Quantile(p, stat.LinInterp, sorted, nil))
}
