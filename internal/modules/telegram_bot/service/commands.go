package service

import (
	"context"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_board/internal/auth"
	"signal_board/internal/metrics"
	"signal_board/internal/notify"
	"signal_board/internal/signal"
	"signal_board/pkg/logger"
)

// /signals — переотправить сводку.
func (t *Bot) handleSignals(ctx context.Context, msg *tgbot.Message) {
	ctx = auth.WithUser(ctx, actor(msg))
	if _, err := t.board.ResendRollUp(ctx); err != nil {
		logger.Error("/signals: %v", err)
	}
}

// /history [N] — последние закрытые сигналы.
func (t *Bot) handleHistory(ctx context.Context, msg *tgbot.Message) {
	limit := t.historyLimit
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		if n, err := strconv.Atoi(arg); err == nil && n > 0 {
			limit = n
		}
	}

	out := t.composer.History(t.board.Closed(), limit)
	if err := t.deliver(ctx, out); err != nil {
		logger.Error("/history: %v", err)
	}
}

// deliver отправляет ответ бота; success=false от транспорта тоже ошибка.
func (t *Bot) deliver(ctx context.Context, msg notify.Message) error {
	r, err := t.sender.Send(ctx, msg)
	if err == nil && !r.Success {
		err = signal.ErrNotDelivered
	}

	result := "sent"
	if err != nil {
		result = "failed"
		err = &signal.NotificationError{Event: msg.Event, Err: err}
	}
	metrics.NotificationsTotal.WithLabelValues(msg.Event, result).Inc()
	return err
}
