package service

import (
	"context"
	"strconv"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_board/internal/board"
	"signal_board/internal/models"
	"signal_board/internal/modules/health/service"
	"signal_board/internal/notify"
	"signal_board/pkg/logger"
)

// Board — то, что боту нужно от доски.
type Board interface {
	ResendRollUp(ctx context.Context) (board.Outcome, error)
	Closed() []*models.TradingSignal
}

// Bot отвечает на команды в рабочем чате. Уведомления о сигналах шлёт не он, а notify.Sender.
type Bot struct {
	api      *tgbot.BotAPI
	chatID   int64
	board    Board
	composer *notify.Composer
	sender   notify.Sender
	state    *service.State

	historyLimit int
	cancel       context.CancelFunc
	done         chan struct{}
}

func NewBot(
	api *tgbot.BotAPI,
	chatID int64,
	b Board,
	composer *notify.Composer,
	sender notify.Sender,
	state *service.State,
	historyLimit int,
) *Bot {
	return &Bot{
		api:          api,
		chatID:       chatID,
		board:        b,
		composer:     composer,
		sender:       sender,
		state:        state,
		historyLimit: historyLimit,
	}
}

// Start запускает long polling в отдельной горутине.
func (t *Bot) Start(ctx context.Context) {
	if t.api == nil {
		return
	}
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.api.GetUpdatesChan(u)
	t.state.SetBotPolling(true)

	go func() {
		defer close(t.done)
		defer t.state.SetBotPolling(false)
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(ctx, update)
			}
		}
	}()
	logger.Info("telegram bot @%s polling", t.api.Self.UserName)
}

func (t *Bot) Stop() {
	if t.api == nil || t.cancel == nil {
		return
	}
	t.api.StopReceivingUpdates()
	t.cancel()
	select {
	case <-t.done:
	case <-time.After(5 * time.Second):
		logger.Warn("telegram bot: polling did not stop in time")
	}
}

func (t *Bot) handleUpdate(ctx context.Context, update tgbot.Update) {
	t.state.TouchUpdate(time.Now())

	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	// только рабочая группа
	if msg.Chat.ID != t.chatID {
		logger.Debug("telegram: ignore command from chat %d", msg.Chat.ID)
		return
	}

	switch msg.Command() {
	case "signals":
		t.handleSignals(ctx, msg)
	case "history":
		t.handleHistory(ctx, msg)
	default:
		// /help, /start и т.п. — молча
	}
}

// actor — автор команды как пользователь доски.
func actor(msg *tgbot.Message) models.User {
	if msg.From == nil {
		return models.User{ID: "tg:unknown", Username: "unknown", Role: models.RoleTrader}
	}
	name := msg.From.UserName
	if name == "" {
		name = msg.From.FirstName
	}
	return models.User{ID: "tg:" + strconv.FormatInt(msg.From.ID, 10), Username: name, Role: models.RoleTrader}
}
