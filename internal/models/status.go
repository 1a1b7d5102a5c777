package models

import (
	"fmt"
	"strconv"
	"strings"
)

type StatusKind int

const (
	StatusUnknown StatusKind = iota
	StatusPending
	StatusActive
	StatusEntry
	StatusTakeProfit
	StatusStopLoss
	StatusCompleted
	StatusPartialProfits
	StatusStopped
)

// Status — состояние сигнала. Level заполнен только для entry / take-profit / stop-loss.
type Status struct {
	Kind  StatusKind
	Level int
}

var (
	Pending        = Status{Kind: StatusPending}
	Active         = Status{Kind: StatusActive}
	Completed      = Status{Kind: StatusCompleted}
	PartialProfits = Status{Kind: StatusPartialProfits}
	Stopped        = Status{Kind: StatusStopped}
)

func EntryHit(n int) Status      { return Status{Kind: StatusEntry, Level: n} }
func TakeProfitHit(n int) Status { return Status{Kind: StatusTakeProfit, Level: n} }
func StopLossHit(n int) Status   { return Status{Kind: StatusStopLoss, Level: n} }

const (
	entryPrefix      = "entry-"
	takeProfitPrefix = "take-profit-"
	stopLossPrefix   = "stop-loss-"
)

// ParseStatus разбирает строковое значение колонки status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending":
		return Pending, nil
	case "active":
		return Active, nil
	case "completed":
		return Completed, nil
	// старые записи хранились через дефис
	case "partial profits", "partial-profits":
		return PartialProfits, nil
	case "stopped":
		return Stopped, nil
	}

	for _, p := range []struct {
		prefix string
		kind   StatusKind
	}{
		{entryPrefix, StatusEntry},
		{takeProfitPrefix, StatusTakeProfit},
		{stopLossPrefix, StatusStopLoss},
	} {
		if !strings.HasPrefix(s, p.prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(s, p.prefix))
		if err != nil || n < 1 {
			return Status{}, fmt.Errorf("invalid status level %q", s)
		}
		return Status{Kind: p.kind, Level: n}, nil
	}

	return Status{}, fmt.Errorf("unknown status %q", s)
}

func (s Status) String() string {
	switch s.Kind {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusEntry:
		return entryPrefix + strconv.Itoa(s.Level)
	case StatusTakeProfit:
		return takeProfitPrefix + strconv.Itoa(s.Level)
	case StatusStopLoss:
		return stopLossPrefix + strconv.Itoa(s.Level)
	case StatusCompleted:
		return "completed"
	case StatusPartialProfits:
		return "partial profits"
	case StatusStopped:
		return "stopped"
	}
	return "unknown"
}

// Label — подпись для людей. stop-loss-N всегда "Stopped", без номера.
func (s Status) Label() string {
	switch s.Kind {
	case StatusPending:
		return "Pending"
	case StatusActive:
		return "Active"
	case StatusEntry:
		return "Entry " + strconv.Itoa(s.Level)
	case StatusTakeProfit:
		return "Take Profit " + strconv.Itoa(s.Level)
	case StatusStopLoss, StatusStopped:
		return "Stopped"
	case StatusCompleted:
		return "Completed"
	case StatusPartialProfits:
		return "Partial Profits"
	}
	return "Unknown"
}

func (s Status) IsOpen() bool {
	switch s.Kind {
	case StatusPending, StatusActive, StatusEntry, StatusTakeProfit:
		return true
	}
	return false
}

func (s Status) IsClosed() bool {
	switch s.Kind {
	case StatusCompleted, StatusPartialProfits, StatusStopped, StatusStopLoss:
		return true
	}
	return false
}

func (s Status) Valid() bool { return s.IsOpen() || s.IsClosed() }

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("marshal invalid status %+v", s)
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
