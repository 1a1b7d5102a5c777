package notify

import (
	"fmt"
	"strconv"
	"strings"

	"signal_board/internal/models"
	"signal_board/internal/signal"
)

// Thread — топик форум-группы, куда уходит сообщение.
type Thread int

const (
	ThreadSignals Thread = iota + 1
	ThreadActivations
	ThreadList
)

const (
	EventCreation     = "creation"
	EventModification = "modification"
	EventActivation   = "activation"
	EventHit          = "hit"
	EventCancel       = "cancel"
	EventRollUp       = "roll-up"
)

// Message — готовый к отправке текст.
type Message struct {
	Event   string
	Text    string
	Dialect Dialect
	Thread  Thread
	ReplyTo int
}

// Composer собирает тексты уведомлений. Ничего не отправляет.
type Composer struct {
	chatID   int64
	creation Dialect
	updates  Dialect
}

type ComposerOption func(*Composer)

// WithDialects задаёт разметку для сообщения о создании и для всех остальных.
func WithDialects(creation, updates Dialect) ComposerOption {
	return func(c *Composer) {
		c.creation = creation
		c.updates = updates
	}
}

func NewComposer(chatID int64, opts ...ComposerOption) *Composer {
	c := &Composer{
		chatID:   chatID,
		creation: HTML,
		updates:  MarkdownV2,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// MessageURL — ссылка на сообщение в супергруппе (id чата без префикса -100).
func (c *Composer) MessageURL(messageID int) string {
	chat := strconv.FormatInt(c.chatID, 10)
	chat = strings.TrimPrefix(chat, "-100")
	chat = strings.TrimPrefix(chat, "-")
	return fmt.Sprintf("https://t.me/c/%s/%d", chat, messageID)
}

// signalLink ссылается на последнее сообщение о сигнале, если оно есть.
func (c *Composer) signalLink(d Dialect, s *models.TradingSignal) string {
	text := s.Pair + " " + strings.ToUpper(string(s.Position))
	if id, ok := s.ReferenceMessageID(); ok {
		return d.Link(text, c.MessageURL(id))
	}
	return d.Escape(text)
}

func (c *Composer) header(b *strings.Builder, d Dialect, title string, s *models.TradingSignal, user models.User) {
	fmt.Fprintf(b, "📍 %s\n", d.Bold(title))
	fmt.Fprintf(b, "👤 %s %s\n\n", d.Bold("Trader:"), d.Escape(user.Username))
	fmt.Fprintf(b, "💎 %s %s\n", d.Bold("Pair:"), d.Escape(s.Pair))
	fmt.Fprintf(b, "🕹️ %s %s\n", d.Bold("Type:"), d.Escape(string(s.Type)))
	fmt.Fprintf(b, "📊 %s %s", d.Bold("Position:"), d.Escape(string(s.Position)))
}

func (c *Composer) footer(b *strings.Builder, d Dialect, s *models.TradingSignal, rewardSep string) {
	if s.RiskReward != "" {
		fmt.Fprintf(b, "%s🧩 %s %s", rewardSep, d.Bold("Reward:"), d.Escape(s.RiskReward))
	}
	if s.Comments != "" {
		fmt.Fprintf(b, "\n💭 %s %s", d.Bold("Comments:"), d.Escape(s.Comments))
	}
	if s.TradingViewURL != "" {
		fmt.Fprintf(b, "\n📊 %s %s", d.Bold("Chart:"), d.Escape(s.TradingViewURL))
	}
}

func bulleted(d Dialect, levels []models.PriceLevel, sep string) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = "• " + d.Mono(l.Price)
	}
	return strings.Join(parts, sep)
}

// Creation — сообщение о новом сигнале.
func (c *Composer) Creation(s *models.TradingSignal, user models.User) Message {
	d := c.creation
	var b strings.Builder

	c.header(&b, d, "New Trading Signal", s, user)
	if s.Position.Leveraged() && s.Leverage != nil {
		fmt.Fprintf(&b, "\n🏛️ %s %s", d.Bold("Leverage:"), d.Escape(s.Leverage.String()+"x"))
	}

	fmt.Fprintf(&b, "\n\n🎯 %s\n%s", d.Bold("Entry:"), bulleted(d, s.Entries, "\n"))
	fmt.Fprintf(&b, "\n🛑 %s\n%s", d.Bold("Stop Loss:"), bulleted(d, s.StopLosses, "\n"))
	fmt.Fprintf(&b, "\n✅ %s\n%s", d.Bold("Take Profit:"), bulleted(d, s.TakeProfits, "\n"))

	c.footer(&b, d, s, "\n\n")

	return Message{Event: EventCreation, Text: b.String(), Dialect: d, Thread: ThreadSignals}
}

var categoryIcons = map[models.Category]string{
	models.CategoryEntries:     "🎯",
	models.CategoryStopLosses:  "🛑",
	models.CategoryTakeProfits: "✅",
}

// Modification — список изменений уровней, ответом на предыдущее сообщение о сигнале.
func (c *Composer) Modification(s *models.TradingSignal, user models.User, changes signal.Changes) Message {
	d := c.updates
	var b strings.Builder

	c.header(&b, d, "Signal Modification", s, user)

	for i, cat := range models.Categories {
		list := changes.For(cat)
		if len(list) == 0 {
			continue
		}
		sep := "\n"
		if i == 0 {
			sep = "\n\n"
		}
		fmt.Fprintf(&b, "%s%s ", sep, categoryIcons[cat])
		for _, ch := range list {
			label := d.Bold(fmt.Sprintf("%s %d", cat.Label(), ch.Index+1))
			switch ch.Type {
			case signal.ChangeChanged:
				fmt.Fprintf(&b, "%s was changed from %s to %s\n", label, d.Mono(ch.OldPrice), d.Mono(ch.NewPrice))
			case signal.ChangeAdded:
				fmt.Fprintf(&b, "%s was added %s\n", label, d.Mono(ch.NewPrice))
			case signal.ChangeDeleted:
				fmt.Fprintf(&b, "%s was deleted\n", label)
			}
		}
	}

	c.footer(&b, d, s, "\n")

	msg := Message{Event: EventModification, Text: b.String(), Dialect: d, Thread: ThreadSignals}
	if id, ok := s.ReferenceMessageID(); ok {
		msg.ReplyTo = id
	}
	return msg
}

// Activation — "<сигнал> from <трейдер> has been manually|automatically activated at <цена>".
func (c *Composer) Activation(s *models.TradingSignal, user models.User, mode signal.ActivationMode, price string) Message {
	d := c.updates
	activation := "automatically activated"
	if mode == signal.ActivationManual {
		activation = "manually activated"
	}
	text := fmt.Sprintf("🎯 %s from %s has been %s at %s",
		c.signalLink(d, s), d.Bold(user.Username), d.Bold(activation), d.Mono(price))
	return Message{Event: EventActivation, Text: text, Dialect: d, Thread: ThreadActivations}
}

// HitLabel — подпись сработавшего уровня.
func HitLabel(tr signal.Transition) string {
	switch tr.Event.Kind {
	case signal.EventTakeProfitHit:
		return fmt.Sprintf("Take Profit %d", tr.Event.Level)
	case signal.EventStopLossHit:
		return fmt.Sprintf("Stop Loss %d", tr.Event.Level)
	case signal.EventEntryHit:
		return fmt.Sprintf("Entry %d", tr.Event.Level)
	case signal.EventCompleted:
		return "all Take Profits"
	}
	return tr.To.Label()
}

func (c *Composer) Hit(s *models.TradingSignal, user models.User, tr signal.Transition) Message {
	d := c.updates
	text := fmt.Sprintf("🎯 %s from %s has hit %s at %s",
		c.signalLink(d, s), d.Bold(user.Username), d.Bold(HitLabel(tr)), d.Mono(tr.Price))
	return Message{Event: EventHit, Text: text, Dialect: d, Thread: ThreadActivations}
}

func (c *Composer) Cancel(s *models.TradingSignal, user models.User) Message {
	d := c.updates
	text := fmt.Sprintf("🎯 %s from %s has been %s without any entry",
		c.signalLink(d, s), d.Bold(user.Username), d.Bold("canceled"))
	return Message{Event: EventCancel, Text: text, Dialect: d, Thread: ThreadActivations}
}

func (c *Composer) rollUpLine(d Dialect, s *models.TradingSignal) string {
	lastTP := 0
	if s.Status.Kind == models.StatusTakeProfit {
		lastTP = s.Status.Level
	}

	tps := make([]string, len(s.TakeProfits))
	for i, tp := range s.TakeProfits {
		tps[i] = "• " + d.Mono(tp.Price)
		if i+1 == lastTP {
			tps[i] += " ✔️"
		}
	}

	return fmt.Sprintf("• %s\nEntry %s\nSL %s\nTP %s\n👤 %s\n",
		c.signalLink(d, s),
		bulleted(d, s.Entries, " "),
		bulleted(d, s.StopLosses, " "),
		strings.Join(tps, " "),
		d.Escape(s.Username()),
	)
}

func (c *Composer) rollUpSection(d Dialect, signals []*models.TradingSignal) string {
	if len(signals) == 0 {
		return "• N/A\n"
	}
	lines := make([]string, len(signals))
	for i, s := range signals {
		lines[i] = c.rollUpLine(d, s)
	}
	return strings.Join(lines, "\n")
}

// RollUp — сводка открытых (active) и ожидающих (pending) сигналов.
func (c *Composer) RollUp(active, pending []*models.TradingSignal) Message {
	d := c.updates
	text := fmt.Sprintf("🎯 %s %s\n\n%s\n⏰ %s %s\n\n%s",
		d.Bold("Active Signals"), d.Escape("(opened orders)"),
		c.rollUpSection(d, active),
		d.Bold("Pending Signals"), d.Escape("(waiting to open)"),
		c.rollUpSection(d, pending),
	)
	return Message{Event: EventRollUp, Text: text, Dialect: d, Thread: ThreadList}
}

// History — короткая сводка закрытых сигналов (команда бота /history).
func (c *Composer) History(closed []*models.TradingSignal, limit int) Message {
	d := c.updates
	var b strings.Builder
	fmt.Fprintf(&b, "📚 %s\n\n", d.Bold("Signal History"))
	if len(closed) == 0 {
		b.WriteString("• N/A\n")
	}
	for i, s := range closed {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(&b, "• %s %s %s\n", c.signalLink(d, s), d.Bold(s.Status.Label()), d.Escape(s.CreatedAt.UTC().Format("2006-01-02")))
	}
	return Message{Event: "history", Text: b.String(), Dialect: d, Thread: ThreadList}
}
