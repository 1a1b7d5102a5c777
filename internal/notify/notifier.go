package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_board/pkg/logger"
)

// Receipt — ответ транспорта. MessageID заполнен только при Success.
type Receipt struct {
	Success   bool
	MessageID int
}

// Sender — единственный примитив транспорта уведомлений.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// Topics — id топиков форум-группы.
type Topics struct {
	Signals     int
	Activations int
	List        int
}

func (t Topics) threadID(th Thread) int {
	switch th {
	case ThreadSignals:
		return t.Signals
	case ThreadActivations:
		return t.Activations
	case ThreadList:
		return t.List
	}
	return 0
}

// Telegram — отправка в группу через Bot API.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	topics Topics
}

func NewTelegram(bot *tgbot.BotAPI, chatID int64, topics Topics) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		topics: topics,
	}
}

// Send вызывает sendMessage напрямую: MessageConfig в v5 не знает message_thread_id.
func (t *Telegram) Send(ctx context.Context, msg Message) (Receipt, error) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return Receipt{}, fmt.Errorf("telegram sender is not configured")
	}
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	params := tgbot.Params{}
	params.AddNonZero64("chat_id", t.chatID)
	params.AddNonEmpty("text", msg.Text)
	params.AddNonEmpty("parse_mode", msg.Dialect.ParseMode())
	params.AddNonZero("message_thread_id", t.topics.threadID(msg.Thread))
	params.AddNonZero("reply_to_message_id", msg.ReplyTo)

	resp, err := t.bot.MakeRequest("sendMessage", params)
	if resp != nil && !resp.Ok {
		logger.Error("telegram rejected %s message: %s", msg.Event, resp.Description)
		return Receipt{Success: false}, nil
	}
	if err != nil {
		return Receipt{}, fmt.Errorf("sendMessage: %w", err)
	}

	var sent tgbot.Message
	if err := sonic.Unmarshal(resp.Result, &sent); err != nil {
		return Receipt{}, fmt.Errorf("decode sendMessage result: %w", err)
	}
	return Receipt{Success: true, MessageID: sent.MessageID}, nil
}

// Stdout — заглушка для запуска без бота: пишет в лог и выдаёт последовательные id.
type Stdout struct {
	mu   sync.Mutex
	last int
}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) Send(_ context.Context, msg Message) (Receipt, error) {
	s.mu.Lock()
	s.last++
	id := s.last
	s.mu.Unlock()

	logger.Info("[%s #%d thread=%d reply=%d]\n%s", msg.Event, id, msg.Thread, msg.ReplyTo, msg.Text)
	return Receipt{Success: true, MessageID: id}, nil
}
