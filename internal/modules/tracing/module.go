package tracing

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"

	"signal_board/internal/modules/config"
	"signal_board/pkg/logger"
	"signal_board/pkg/tracing"
)

// NewTracer поднимает jaeger-трейсер, если он включён, иначе noop.
func NewTracer(lc fx.Lifecycle, cfg *config.Config) (opentracing.Tracer, error) {
	if !cfg.Tracing.Enabled {
		return opentracing.NoopTracer{}, nil
	}

	tracer, closer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Tracing.Host,
		Port: cfg.Tracing.Port,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("tracing to %s:%d", cfg.Tracing.Host, cfg.Tracing.Port)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closer()
			return nil
		},
	})
	return tracer, nil
}

func Module() fx.Option {
	return fx.Module("tracing",
		fx.Provide(NewTracer),
	)
}
