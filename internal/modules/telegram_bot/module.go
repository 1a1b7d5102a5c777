package telegram

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"

	"signal_board/internal/modules/config"
	health "signal_board/internal/modules/health/service"
	"signal_board/internal/modules/telegram_bot/service"
	"signal_board/internal/notify"
	"signal_board/pkg/logger"
)

// NewBotAPI — клиент Bot API; nil, если telegram выключен.
func NewBotAPI(cfg *config.Config) (*tgbot.BotAPI, error) {
	if !cfg.Telegram.Enabled {
		return nil, nil
	}
	api, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot api: %w", err)
	}
	logger.Info("telegram: authorized as @%s", api.Self.UserName)
	return api, nil
}

// NewSender: без бота уведомления уходят в лог.
func NewSender(cfg *config.Config, api *tgbot.BotAPI) notify.Sender {
	if api == nil {
		logger.Warn("telegram disabled, notifications go to stdout")
		return notify.NewStdout()
	}
	t := cfg.Telegram.Topics
	return notify.NewTelegram(api, cfg.Telegram.ChatID, notify.Topics{
		Signals:     t.Signals,
		Activations: t.Activations,
		List:        t.List,
	})
}

func NewBot(
	cfg *config.Config,
	api *tgbot.BotAPI,
	b service.Board,
	composer *notify.Composer,
	sender notify.Sender,
	state *health.State,
) *service.Bot {
	return service.NewBot(api, cfg.Telegram.ChatID, b, composer, sender, state, cfg.Telegram.HistoryLimit)
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			NewBotAPI,
			NewSender,
			NewBot,
		),
		// Запуск основного цикла через Lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, api *tgbot.BotAPI, bot *service.Bot) {
				if api == nil {
					return
				}
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						bot.Start(context.Background())
						return nil
					},
					OnStop: func(ctx context.Context) error {
						bot.Stop()
						return nil
					},
				})
			},
		),
	)
}
