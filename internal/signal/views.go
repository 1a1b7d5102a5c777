package signal

import (
	"sort"

	"signal_board/internal/models"
)

func IsActive(st models.Status) bool {
	switch st.Kind {
	case models.StatusActive, models.StatusEntry, models.StatusTakeProfit:
		return true
	}
	return false
}

func IsPending(st models.Status) bool { return st.Kind == models.StatusPending }

func IsClosed(st models.Status) bool { return st.IsClosed() }

func filter(signals []*models.TradingSignal, pred func(models.Status) bool) []*models.TradingSignal {
	out := make([]*models.TradingSignal, 0, len(signals))
	for _, s := range signals {
		if pred(s.Status) {
			out = append(out, s)
		}
	}
	return out
}

func Active(signals []*models.TradingSignal) []*models.TradingSignal {
	return filter(signals, IsActive)
}

func Pending(signals []*models.TradingSignal) []*models.TradingSignal {
	return filter(signals, IsPending)
}

// Closed — история, свежие сверху.
func Closed(signals []*models.TradingSignal) []*models.TradingSignal {
	out := filter(signals, IsClosed)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

type Views struct {
	Active  []*models.TradingSignal
	Pending []*models.TradingSignal
	Closed  []*models.TradingSignal
}

func Partition(signals []*models.TradingSignal) Views {
	return Views{
		Active:  Active(signals),
		Pending: Pending(signals),
		Closed:  Closed(signals),
	}
}
