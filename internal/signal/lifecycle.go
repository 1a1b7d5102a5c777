package signal

import (
	"fmt"
	"strings"

	"signal_board/internal/models"
)

type EventKind int

const (
	EventActivate EventKind = iota + 1
	EventEntryHit
	EventTakeProfitHit
	EventStopLossHit
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventActivate:
		return "activate"
	case EventEntryHit:
		return "entry"
	case EventTakeProfitHit:
		return "takeProfit"
	case EventStopLossHit:
		return "stopLoss"
	case EventCompleted:
		return "completed"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// ParseEventKind принимает значения updateType из API.
func ParseEventKind(s string) (EventKind, error) {
	for _, k := range []EventKind{EventActivate, EventEntryHit, EventTakeProfitHit, EventStopLossHit, EventCompleted} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, invalid("updateType", fmt.Sprintf("unknown update type %q", s))
}

type ActivationMode string

const (
	ActivationManual    ActivationMode = "manual"
	ActivationAutomatic ActivationMode = "automatic"
)

// Event — действие трейдера над сигналом. Все попадания сообщаются вручную.
type Event struct {
	Kind  EventKind
	Level int // 1..N для entry / take profit / stop loss

	Mode  ActivationMode
	Price string // цена ручной активации
}

// Transition — результат применения события.
type Transition struct {
	Event Event
	From  models.Status
	To    models.Status
	// Price — цена активации или цена сработавшего уровня.
	Price string
}

func InitialStatus(t models.OrderType) models.Status {
	if t == models.OrderMarket {
		return models.Active
	}
	return models.Pending
}

// Apply вычисляет новый статус. Порядок уровней не проверяется: take-profit-2
// без take-profit-1 допустим, проверяется только диапазон 1..N.
func Apply(s *models.TradingSignal, ev Event) (Transition, error) {
	tr := Transition{Event: ev, From: s.Status}

	if ev.Kind == EventActivate {
		if s.Status.Kind != models.StatusPending {
			return tr, fmt.Errorf("%w: activate from %s", ErrIllegalTransition, s.Status)
		}
		switch ev.Mode {
		case ActivationManual:
			price := strings.TrimSpace(ev.Price)
			if price == "" {
				return tr, invalid("manualPrice", "Manual activation price is required")
			}
			tr.Price = price
		case ActivationAutomatic, "":
			tr.Event.Mode = ActivationAutomatic
			if len(s.Entries) == 0 {
				return tr, invalid("entries", "Signal has no entry to activate at")
			}
			tr.Price = s.Entries[0].Price
		default:
			return tr, invalid("activationType", fmt.Sprintf("unknown activation type %q", ev.Mode))
		}
		tr.To = models.Active
		return tr, nil
	}

	if !s.Status.IsOpen() {
		return tr, fmt.Errorf("%w: %s on closed signal (%s)", ErrIllegalTransition, ev.Kind, s.Status)
	}

	switch ev.Kind {
	case EventEntryHit:
		if len(s.Entries) < 2 {
			return tr, fmt.Errorf("%w: entry hit needs more than one entry", ErrIllegalTransition)
		}
		price, err := levelPrice(s.Entries, ev.Level, "Entry")
		if err != nil {
			return tr, err
		}
		tr.To, tr.Price = models.EntryHit(ev.Level), price
	case EventTakeProfitHit:
		price, err := levelPrice(s.TakeProfits, ev.Level, "Take Profit")
		if err != nil {
			return tr, err
		}
		tr.To, tr.Price = models.TakeProfitHit(ev.Level), price
	case EventStopLossHit:
		price, err := levelPrice(s.StopLosses, ev.Level, "Stop Loss")
		if err != nil {
			return tr, err
		}
		tr.To, tr.Price = models.StopLossHit(ev.Level), price
	case EventCompleted:
		if len(s.TakeProfits) == 0 {
			return tr, invalid("takeProfits", "Signal has no take profit")
		}
		tr.To, tr.Price = models.Completed, s.TakeProfits[len(s.TakeProfits)-1].Price
	default:
		return tr, invalid("updateType", fmt.Sprintf("unsupported event %s", ev.Kind))
	}
	return tr, nil
}

func levelPrice(levels []models.PriceLevel, n int, label string) (string, error) {
	if n < 1 || n > len(levels) {
		return "", invalid("targetIndex", fmt.Sprintf("%s %d does not exist (have %d)", label, n, len(levels)))
	}
	return levels[n-1].Price, nil
}

type RemovalAction int

const (
	// RemoveCancel — pending: уведомление об отмене, затем удаление.
	RemoveCancel RemovalAction = iota + 1
	// RemoveSoftClose — открытый сигнал уходит в историю с итоговым статусом.
	RemoveSoftClose
	// RemoveHardDelete — закрытый сигнал удаляется без уведомлений.
	RemoveHardDelete
)

type RemovalPlan struct {
	Action     RemovalAction
	SoftStatus models.Status
}

// HistoryReward — текст risk/reward, который пишется при переносе в историю.
const HistoryReward = "Signal moved to history"

func PlanRemoval(st models.Status) RemovalPlan {
	switch st.Kind {
	case models.StatusPending:
		return RemovalPlan{Action: RemoveCancel}
	case models.StatusTakeProfit:
		return RemovalPlan{Action: RemoveSoftClose, SoftStatus: models.PartialProfits}
	case models.StatusActive, models.StatusEntry:
		return RemovalPlan{Action: RemoveSoftClose, SoftStatus: models.Stopped}
	}
	return RemovalPlan{Action: RemoveHardDelete}
}
