package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/saliency-bench/internal/benchmark"
	"github.com/tensorplex-labs/saliency-bench/internal/centerbias"
	"github.com/tensorplex-labs/saliency-bench/internal/config"
	"github.com/tensorplex-labs/saliency-bench/internal/report"
	"github.com/tensorplex-labs/saliency-bench/internal/utils/logger"
)

func main() {
	models := flag.String("models", "", "comma separated models to evaluate (defaults to MODELS)")
	sigma := flag.Float64("sigma", 0, "centerbias sigma used as IG baseline (defaults to CENTERBIAS_SIGMA)")
	out := flag.String("out", "", "directory for the result tables (defaults to RESULTS_DIR)")
	images := flag.Int("images", 0, "evaluate only the first n images of every transformation")
	correlations := flag.Bool("correlations", false, "also compute the correlation metrics of every model against the reference")
	compare := flag.String("compare", "", "compare two centerbias sigmas given as old:new instead of scoring models")
	sigmaRange := flag.Int("range", 0, "search the best centerbias sigma up to this value instead of scoring models")
	logger.Init()

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}
	ds, err := cfg.Dataset()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid dataset configuration")
	}

	if *models != "" {
		cfg.Models = strings.Split(*models, ",")
	}
	if *sigma > 0 {
		cfg.CenterbiasSigma = *sigma
	}
	if *out != "" {
		cfg.ResultsDir = *out
	}

	runner := benchmark.NewRunner(ds,
		benchmark.WithModels(cfg.Models...),
		benchmark.WithCenterbiasSigma(cfg.CenterbiasSigma),
		benchmark.WithImageCount(*images),
	)
	log.Info().Str("dataset", ds.Root).Strs("models", cfg.Models).Float64("sigma", cfg.CenterbiasSigma).
		Msg("Starting benchmarks")

	var failures []report.Failure
	var runs []string
	record := func(run string, err error) {
		runs = append(runs, run)
		failures = append(failures, runner.Failures()...)
		if err != nil {
			log.Warn().Str("run", run).Int("failures", len(runner.Failures())).Msg("Run finished with skipped items")
			log.Debug().Err(err).Str("run", run).Msg("Failure summary")
		}
	}

	switch {
	case *sigmaRange > 0:
		best, err := runner.CenterbiasRange(*sigmaRange, filepath.Join(cfg.ResultsDir, "centerbias_benchmarks"))
		record("centerbias_range", err)
		log.Info().Int("best_sigma", best).Msg("Centerbias range search done")

	case *compare != "":
		oldSigma, newSigma, err := parseComparison(*compare)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -compare")
		}
		rows, err := runner.CenterbiasComparison(newSigma, oldSigma)
		record("centerbias_comparison", err)
		name := fmt.Sprintf("centerbias_%s_vs_%s.csv", centerbias.FormatSigma(newSigma), centerbias.FormatSigma(oldSigma))
		writeTable(filepath.Join(cfg.ResultsDir, name), rows)

	default:
		rows, err := runner.FixationPoints()
		record("fixation_points", err)
		writeTable(filepath.Join(cfg.ResultsDir, "all_fixation_point_averages.csv"), rows)

		if *correlations {
			for _, model := range cfg.Models {
				rows, err := runner.CorrelationMetrics(model)
				record("correlation_metrics_"+model, err)
				writeTable(filepath.Join(cfg.ResultsDir, model+"_correlation_metrics.csv"), rows)
			}
		}
	}

	path := filepath.Join(cfg.ResultsDir, "failures.json")
	if err := report.WriteFailures(path, strings.Join(runs, ","), failures); err != nil {
		log.Fatal().Err(err).Msg("failed to write failure summary")
	}
	if len(failures) > 0 {
		log.Warn().Int("failures", len(failures)).Str("path", path).Msg("Benchmarks skipped items")
		return
	}
	log.Info().Msg("Benchmarks finished without failures")
}

func writeTable[T report.Row](path string, rows []T) {
	if err := report.WriteCSVFile(path, rows); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to write result table")
	}
	log.Info().Str("path", path).Int("rows", len(rows)).Msg("Wrote result table")
}

// parseComparison parses "old:new".
func parseComparison(s string) (oldSigma, newSigma float64, err error) {
	oldPart, newPart, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("expected old:new, got %q", s)
	}
	if oldSigma, err = strconv.ParseFloat(oldPart, 64); err != nil {
		return 0, 0, err
	}
	if newSigma, err = strconv.ParseFloat(newPart, 64); err != nil {
		return 0, 0, err
	}
	return oldSigma, newSigma, nil
}
