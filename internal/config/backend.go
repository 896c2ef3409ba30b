package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/policyadvisor/pkg/log"
)

type BackendConfig struct {
	BaseURL string        `env:"POLICYAI_BASE_URL" envDefault:"http://localhost:8000"`
	Timeout time.Duration `env:"POLICYAI_TIMEOUT" envDefault:"60s"`
}

func NewBackendConfig(ctx context.Context) *BackendConfig {
	c := &BackendConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Backend config")
	}
	return c
}
