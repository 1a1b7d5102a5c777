package board

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"

	"signal_board/internal/api"
	"signal_board/internal/board"
	"signal_board/internal/modules/config"
	"signal_board/internal/modules/health"
	health_service "signal_board/internal/modules/health/service"
	bot "signal_board/internal/modules/telegram_bot/service"
	"signal_board/internal/notify"
	"signal_board/internal/repository"
)

func NewComposer(cfg *config.Config) *notify.Composer {
	return notify.NewComposer(cfg.Telegram.ChatID)
}

func NewBoard(
	cfg *config.Config,
	repo *repository.Facade,
	composer *notify.Composer,
	sender notify.Sender,
	tracer opentracing.Tracer,
) *board.Board {
	return board.New(repo, composer, sender, board.Options{
		PurgeOnClose: cfg.Signals.PurgeOnClose,
		Tracer:       tracer,
	})
}

// NewCounts — размеры представлений для /healthz.
func NewCounts(b *board.Board) health.Counts {
	return func() map[string]int {
		v := b.Views()
		return map[string]int{
			"active":  len(v.Active),
			"pending": len(v.Pending),
			"closed":  len(v.Closed),
		}
	}
}

func Module() fx.Option {
	return fx.Module("board",
		fx.Provide(
			NewComposer,
			NewBoard,
			NewCounts,
			func(b *board.Board) api.Board { return b },
			func(b *board.Board) bot.Board { return b },
		),
		fx.Invoke(
			func(lc fx.Lifecycle, b *board.Board, state *health_service.State) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						if err := b.Initialize(ctx); err != nil {
							return err
						}
						state.SetReady(true)
						return nil
					},
					OnStop: func(ctx context.Context) error {
						state.SetReady(false)
						b.Cleanup()
						return nil
					},
				})
			},
		),
	)
}
