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

// pmhc is the peptide-MHC binding research toolbox: generate hyperparameter
// grids and run cross-validated model selection over per-allele binding data.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/openvax/pmhc/base/log"
	"github.com/openvax/pmhc/cv"
	"github.com/openvax/pmhc/dataset"
	"github.com/openvax/pmhc/impute"
	"github.com/openvax/pmhc/model"
)

const defaultBindingDataPath = "data/bdata.2009.mhci.public.1.txt"

var rootCommand = &cobra.Command{
	Use:   "pmhc",
	Short: "Research tooling for peptide-MHC binding affinity predictors.",
}

var gridCommand = &cobra.Command{
	Use:   "grid",
	Short: "Generate the hyperparameter grid as YAML on stdout.",
	Run: func(cmd *cobra.Command, args []string) {
		grid := model.GenerateGrid()
		fmt.Fprintf(os.Stderr, "Hyperparameters grid size: %d\n", len(grid))
		encoder := yaml.NewEncoder(os.Stdout)
		if err := encoder.Encode(grid); err != nil {
			log.Logger().Fatal("failed to serialize grid", zap.Error(err))
		}
		if err := encoder.Close(); err != nil {
			log.Logger().Fatal("failed to serialize grid", zap.Error(err))
		}
	},
}

var selectCommand = &cobra.Command{
	Use:   "select",
	Short: "Run cross-validated model selection over the configuration grid.",
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)

		// flags win over the optional config file
		settings := viper.New()
		if err := settings.BindPFlags(cmd.Flags()); err != nil {
			log.Logger().Fatal("failed to bind flags", zap.Error(err))
		}
		if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
			settings.SetConfigFile(configPath)
			if err := settings.ReadInConfig(); err != nil {
				log.Logger().Fatal("failed to read config", zap.Error(err))
			}
		}

		resultsFilename := settings.GetString("results-filename")
		if resultsFilename == "" {
			log.Logger().Fatal("--results-filename is required")
		}
		opts := cv.Options{
			MinSamplesPerAllele: settings.GetInt("min-samples-per-allele"),
			CVFolds:             settings.GetInt("cv-folds"),
		}
		if err := runModelSelection(
			settings.GetString("binding-data-csv-path"),
			resultsFilename,
			settings.GetInt("training-epochs"),
			float32(settings.GetFloat64("max-dropout")),
			settings.GetString("imputation-method"),
			settings.GetInt("min-observations-per-peptide"),
			settings.GetInt("min-observations-per-allele"),
			opts,
		); err != nil {
			log.Logger().Fatal("model selection failed", zap.Error(err))
		}
	},
}

func runModelSelection(
	bindingDataPath, resultsFilename string,
	trainingEpochs int,
	maxDropout float32,
	imputationMethod string,
	minObservationsPerPeptide, minObservationsPerAllele int,
	opts cv.Options,
) error {
	configs := model.GenerateConfigs(trainingEpochs, maxDropout)
	log.Logger().Info("generated configuration grid", zap.Int("configurations", len(configs)))

	imputer, err := impute.FromName(imputationMethod, nil)
	if err != nil {
		return err
	}
	cache := dataset.NewCache(bindingDataPath, cv.PeptideLength)
	imputedByCutoff := make(map[float32]map[string]*dataset.AlleleData)
	writer := cv.NewResultWriter(resultsFilename)
	bar := progressbar.Default(int64(len(configs)), "configurations")

	var all []cv.ConfiguredRow
	var elapsed []time.Duration
	for i, cfg := range configs {
		start := time.Now()
		log.Logger().Info("evaluating configuration",
			zap.Int("index", i),
			zap.Int("total", len(configs)),
			zap.String("config", cfg.String()))
		alleleData, err := cache.Get(cfg.MaxIC50)
		if err != nil {
			return err
		}
		if imputer != nil {
			imputed, ok := imputedByCutoff[cfg.MaxIC50]
			if !ok {
				imputed, err = impute.CreateImputedDatasets(alleleData, imputer,
					minObservationsPerPeptide, minObservationsPerAllele, cfg.MaxIC50)
				if err != nil {
					return err
				}
				imputedByCutoff[cfg.MaxIC50] = imputed
			}
			alleleData = imputed
		}
		rows := cv.EvaluateConfig(cfg, alleleData, opts)
		configured := lo.Map(rows, func(row cv.Row, _ int) cv.ConfiguredRow {
			return cv.ConfiguredRow{Row: row, ConfigIndex: i, Config: cfg}
		})
		if err := writer.Write(configured, i == 0); err != nil {
			return err
		}
		all = append(all, configured...)
		_ = bar.Add(1)

		elapsed = append(elapsed, time.Since(start))
		mean := lo.Sum(elapsed) / time.Duration(len(elapsed))
		log.Logger().Info("configuration evaluated",
			zap.Int("index", i),
			zap.Duration("elapsed", elapsed[len(elapsed)-1]),
			zap.Duration("estimated_remaining", time.Duration(len(configs)-i-1)*mean))
	}
	cv.SummarizeByHyperparameter(os.Stdout, all)
	return nil
}

func init() {
	rootCommand.PersistentFlags().Bool("debug", false, "enable debug logging")
	log.AddFlags(selectCommand.Flags())
	selectCommand.Flags().String("config", "", "optional config file with the same option names")
	selectCommand.Flags().String("binding-data-csv-path", defaultBindingDataPath,
		"CSV file with 'mhc', 'peptide', 'peptide_length', 'meas' columns")
	selectCommand.Flags().Int("min-samples-per-allele", 5,
		"don't train predictors for alleles with fewer samples than this")
	selectCommand.Flags().String("results-filename", "",
		"write all hyperparameter/allele results to this filename")
	selectCommand.Flags().Int("cv-folds", 5, "number of cross-validation folds")
	selectCommand.Flags().Int("training-epochs", 100,
		"number of passes over the dataset to perform during model fitting")
	selectCommand.Flags().Float64("max-dropout", 0.25,
		"degree of dropout regularization to try in hyperparameter search")
	selectCommand.Flags().String("imputation-method", "none",
		"matrix completion used to densify the training data (mice, knn, svd, svt, softimpute, mean, none)")
	selectCommand.Flags().Int("min-observations-per-peptide", 1,
		"drop peptides with fewer than this number of measurements before imputation")
	selectCommand.Flags().Int("min-observations-per-allele", 1,
		"drop alleles with fewer than this number of measurements before imputation")
	rootCommand.AddCommand(gridCommand, selectCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute command", zap.Error(err))
	}
}
