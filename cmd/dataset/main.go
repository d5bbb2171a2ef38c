package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/saliency-bench/internal/config"
	"github.com/tensorplex-labs/saliency-bench/internal/utils/logger"
)

func main() {
	missing := flag.Bool("report", false, "list artifacts the benchmarks need that are missing")
	archive := flag.String("archive", "", "write a zip of the images and fixations of every transformation to this path")
	logger.Init()

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}
	ds, err := cfg.Dataset()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid dataset configuration")
	}

	if !*missing && *archive == "" {
		log.Fatal().Msg("nothing to do: pass -report and/or -archive")
	}

	if *missing {
		artifacts := ds.ReportMissing(cfg.Models, cfg.CenterbiasSigma)
		for _, a := range artifacts {
			fmt.Printf("%-18s %-22s %s\n", a.Transformation, a.Kind, a.RelPath(ds.Root))
		}
		log.Info().Int("missing", len(artifacts)).Str("dataset", ds.Root).Msg("Missing artifact report done")
	}

	if *archive != "" {
		n, err := ds.ArchiveFile(*archive)
		if err != nil {
			log.Fatal().Err(err).Str("path", *archive).Msg("failed to archive dataset")
		}
		log.Info().Int("files", n).Str("path", *archive).Msg("Dataset archive written")
	}
}
