package telemetry_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"wayfare/pkg/telemetry"
)

var Module = fx.Options(
	fx.Provide(provideLogger, provideEmitter),
)

func provideLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger
}

func provideEmitter(lc fx.Lifecycle, logger *zap.Logger) *telemetry.Emitter {
	emitter := telemetry.NewEmitter(telemetry.NewZapSink(logger), 256)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			emitter.Close()
			return nil
		},
	})
	return emitter
}
