package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/saliency-bench/internal/analysis"
	"github.com/tensorplex-labs/saliency-bench/internal/config"
	"github.com/tensorplex-labs/saliency-bench/internal/report"
	"github.com/tensorplex-labs/saliency-bench/internal/utils/logger"
)

func main() {
	results := flag.String("results", "", "directory holding the result tables (defaults to RESULTS_DIR)")
	prefix := flag.String("prefix", "unisal", "model family whose resolutions are ranked")
	threshold := flag.Float64("threshold", analysis.DefaultOutlierThreshold, "z-score from which samples are dropped before fitting")
	logger.Init()

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}
	if *results != "" {
		cfg.ResultsDir = *results
	}

	averages, err := report.ReadCSVFile[report.FixationPointRow](filepath.Join(cfg.ResultsDir, "all_fixation_point_averages.csv"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read fixation point averages, run cmd/benchmark first")
	}

	printBestResolution(averages, *prefix)
	for _, metric := range []string{analysis.MetricNSS, analysis.MetricIG} {
		if err := printDegradation(averages, cfg.Models, metric); err != nil {
			log.Error().Err(err).Str("metric", metric).Msg("failed to compute degradation")
		}
	}

	tables := make(map[string][]report.CorrelationRow)
	var models []string
	for _, model := range cfg.Models {
		rows, err := report.ReadCSVFile[report.CorrelationRow](filepath.Join(cfg.ResultsDir, model+"_correlation_metrics.csv"))
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str("model", model).Msg("No correlation metrics, skipping")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("model", model).Msg("failed to read correlation metrics")
		}
		tables[model] = rows
		models = append(models, model)

		if err := printCorrelationTable(model, rows, *threshold); err != nil {
			log.Error().Err(err).Str("model", model).Msg("failed to compute correlation table")
		}
	}

	for _, pair := range []analysis.Pair{
		{X: analysis.ReferenceNSS, Y: analysis.TransformedNSS},
		{X: analysis.ReferenceIG, Y: analysis.TransformedIG},
		{X: analysis.CC, Y: analysis.TransformedNSS},
	} {
		if len(models) == 0 {
			break
		}
		fits, err := analysis.PairwiseCorrelations(tables, models, pair, *threshold, pair.X != analysis.CC)
		if err != nil {
			log.Error().Err(err).Stringer("pair", pair).Msg("failed to compute pairwise correlations")
			continue
		}
		printPairwise(pair, fits)
	}
}

func printBestResolution(rows []report.FixationPointRow, prefix string) {
	summaries := analysis.BestResolution(rows, prefix)
	if len(summaries) == 0 {
		log.Info().Str("prefix", prefix).Msg("No models match the resolution prefix")
		return
	}
	fmt.Printf("\nBest resolution (%s*):\n", prefix)
	fmt.Printf("%-24s %9s %9s %11s %11s %8s %8s\n", "model", "mean_nss", "mean_ig", "median_nss", "median_ig", "std_nss", "std_ig")
	bars := make([]analysis.Bar, 0, len(summaries))
	for _, s := range summaries {
		fmt.Printf("%-24s %9.4f %9.4f %11.4f %11.4f %8.4f %8.4f\n",
			s.Model, s.MeanNSS, s.MeanIG, s.MedianNSS, s.MedianIG, s.StdNSS, s.StdIG)
		bars = append(bars, analysis.Bar{Label: s.Model, Value: s.MeanNSS})
	}
	if err := analysis.PlotTerminal(os.Stdout, bars, "Mean NSS by resolution"); err != nil {
		log.Error().Err(err).Msg("failed to plot")
	}
}

func printDegradation(rows []report.FixationPointRow, models []string, metric string) error {
	fmt.Printf("\nPerformance degradation (%s), share of the centerbias-to-real gap lost:\n", strings.ToUpper(metric))
	bars := make(map[string][]analysis.Bar)
	for _, chain := range analysis.StandardChains() {
		losses, err := analysis.Degrade(rows, models, metric, chain)
		if err != nil {
			return fmt.Errorf("%s to %s: %w", chain[0], chain[len(chain)-1], err)
		}
		fmt.Printf("%s to %s:", chain[0], chain[len(chain)-1])
		for _, l := range losses {
			fmt.Printf("  %s loss: %.0f%%", l.Model, l.Loss*100)
			bars[l.Model] = append(bars[l.Model], analysis.Bar{Label: chain[len(chain)-1], Value: l.Loss})
		}
		fmt.Println()
	}
	for _, model := range models {
		title := fmt.Sprintf("%s %s loss", model, strings.ToUpper(metric))
		if err := analysis.PlotTerminal(os.Stdout, bars[model], title); err != nil {
			return err
		}
	}
	return nil
}

func printCorrelationTable(model string, rows []report.CorrelationRow, threshold float64) error {
	pairs := analysis.CorrelationPairs()
	table, err := analysis.CorrelationTable(rows, pairs, threshold)
	if err != nil {
		return err
	}

	headers := make([]string, len(pairs))
	for i, p := range pairs {
		headers[i] = p.String()
	}
	fmt.Printf("\nCorrelations for %s\n", model)
	fmt.Printf("transformation,%s\n", strings.Join(headers, ","))
	for _, row := range table {
		values := make([]string, len(row.Fits))
		for i, fit := range row.Fits {
			values[i] = fmt.Sprintf("%.2f", fit.CC)
		}
		fmt.Printf("%s,%s\n", row.Transformation, strings.Join(values, ","))
	}
	return nil
}

func printPairwise(pair analysis.Pair, fits []analysis.PairwiseFits) {
	fmt.Printf("\nPairwise correlations %s:\n", pair)
	for _, entry := range fits {
		fmt.Printf("%-18s", entry.Transformation)
		for _, f := range entry.Fits {
			fmt.Printf("  %s CC: %.2f (y = %.3fx %+.3f)", f.Model, f.Line.CC, f.Line.Slope, f.Line.Intercept)
		}
		fmt.Println()
	}
}
