package main

import (
	"context"
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/saliency-bench/internal/centerbias"
	"github.com/tensorplex-labs/saliency-bench/internal/config"
	"github.com/tensorplex-labs/saliency-bench/internal/utils/logger"
)

func main() {
	sigma := flag.Float64("sigma", 0, "Gaussian sigma of the centerbias (defaults to CENTERBIAS_SIGMA)")
	invalidate := flag.Bool("invalidate", false, "drop cached centerbiases for sigma before computing")
	logger.Init()

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}
	ds, err := cfg.Dataset()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid dataset configuration")
	}
	if *sigma > 0 {
		cfg.CenterbiasSigma = *sigma
	}

	sources := make([]centerbias.Source, 0, len(ds.Transformations))
	for _, dir := range ds.Directories() {
		sources = append(sources, dir)
	}

	cache := centerbias.NewCache()
	if *invalidate {
		if err := cache.InvalidateAll(cfg.CenterbiasSigma, sources...); err != nil {
			log.Fatal().Err(err).Msg("failed to invalidate centerbiases")
		}
		log.Info().Float64("sigma", cfg.CenterbiasSigma).Msg("Invalidated cached centerbiases")
	}

	if err := cache.EnsureAll(cfg.CenterbiasSigma, sources...); err != nil {
		log.Fatal().Err(err).Msg("failed to compute some centerbiases")
	}
	log.Info().Float64("sigma", cfg.CenterbiasSigma).Int("directories", len(sources)).Msg("Centerbiases ready")
}
