package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/policyadvisor/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"ADVISOR_RUNTIME_PATH" envDefault:".policyadvisor"`

	// ReplayWindow caps how many transcript turns are resent per message in
	// stateless mode. Accumulated policy ids are kept regardless of the cap.
	ReplayWindow int `env:"REPLAY_WINDOW" envDefault:"30"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "advisor.db")
}

func (c AppConfig) GetInputHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}
