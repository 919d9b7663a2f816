package main

import (
	"context"

	"github.com/jingkaihe/sqlmigrate/pkg/telemetry"
	"github.com/jingkaihe/sqlmigrate/pkg/version"
	"github.com/spf13/viper"
)

func initTracing(ctx context.Context) (func(context.Context) error, error) {
	return telemetry.InitTracer(ctx, telemetry.Config{
		Enabled:        viper.GetBool("tracing.enabled"),
		ServiceName:    "sqlmigrate",
		ServiceVersion: version.Get().Version,
		SamplerType:    viper.GetString("tracing.sampler"),
		SamplerRatio:   viper.GetFloat64("tracing.ratio"),
	})
}
