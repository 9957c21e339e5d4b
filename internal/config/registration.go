package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

type RegistrationConfig struct {
	Timeout time.Duration `env:"REGISTRATION_TIMEOUT" envDefault:"30s"`
	Retries int           `env:"REGISTRATION_RETRIES" envDefault:"3"`
}

func NewRegistrationConfig(ctx context.Context) *RegistrationConfig {
	c := &RegistrationConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Registration config")
	}
	return c
}
