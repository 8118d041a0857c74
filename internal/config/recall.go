package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/mnemo/pkg/log"
)

type RecallConfig struct {
	SimilarityThreshold  float64 `env:"RECALL_SIMILARITY_THRESHOLD" envDefault:"0.86"`
	ProbabilityThreshold float64 `env:"RECALL_PROBABILITY_THRESHOLD" envDefault:"0.86"`
	MaxResults           int     `env:"RECALL_MAX_RESULTS" envDefault:"5"`
	// creation: last_recalled - created_at, recall: now - last_recalled
	ElapsedMode string `env:"RECALL_ELAPSED_MODE" envDefault:"creation"`
	// Upper bound for consolidation growth, 0 disables it
	MaxConsolidation float64 `env:"RECALL_MAX_CONSOLIDATION" envDefault:"0"`
}

func NewRecallConfig(ctx context.Context) *RecallConfig {
	c := &RecallConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Recall config")
	}
	if c.ElapsedMode != "creation" && c.ElapsedMode != "recall" {
		log.FromCtx(ctx).Fatal().Str("mode", c.ElapsedMode).Msg("RECALL_ELAPSED_MODE must be creation or recall")
	}
	return c
}
