// Package config defines the environment configuration of the benchmark tools.
package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"

	"github.com/tensorplex-labs/saliency-bench/internal/dataset"
)

type AppConfig struct {
	DatasetEnvConfig
	BenchmarkEnvConfig
	Environment string `env:"ENVIRONMENT, default=dev"`
}

// DatasetEnvConfig locates the dataset and the result tables.
type DatasetEnvConfig struct {
	DatasetRoot     string   `env:"DATASET_ROOT, default=../data"`
	ResultsDir      string   `env:"RESULTS_DIR, default=../results"`
	ImageCount      int      `env:"IMAGE_COUNT, default=100"`
	Transformations []string `env:"TRANSFORMATIONS"`
}

// BenchmarkEnvConfig selects what gets evaluated.
type BenchmarkEnvConfig struct {
	CenterbiasSigma float64  `env:"CENTERBIAS_SIGMA, default=57"`
	Models          []string `env:"MODELS, default=deepgaze_1024_576,unisal_384_224"`
}

func LoadConfig(ctx context.Context) (*AppConfig, error) {
	return LoadConfigWith(ctx, envconfig.OsLookuper())
}

// LoadConfigWith reads the configuration from lookuper instead of the process
// environment.
func LoadConfigWith(ctx context.Context, lookuper envconfig.Lookuper) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if cfg.CenterbiasSigma < 0 {
		return nil, fmt.Errorf("CENTERBIAS_SIGMA must not be negative, got %v", cfg.CenterbiasSigma)
	}
	return cfg, nil
}

// Dataset returns the configured dataset: the standard transformations unless
// TRANSFORMATIONS overrides them.
func (c *DatasetEnvConfig) Dataset() (dataset.Dataset, error) {
	ds := dataset.Default(c.DatasetRoot)
	ds.ImageCount = c.ImageCount
	if len(c.Transformations) > 0 {
		ds.Transformations = c.Transformations
	}
	if err := ds.Validate(); err != nil {
		return ds, err
	}
	return ds, nil
}
