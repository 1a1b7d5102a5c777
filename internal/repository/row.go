package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNoRows — бэкенд не нашёл запись по id.
var ErrNoRows = errors.New("no rows")

// LevelRow — элемент jsonb-колонок entries / stop_losses / take_profits.
type LevelRow struct {
	ID    string `json:"id"`
	Price string `json:"price"`
}

// Row — запись таблицы signals в том виде, как она хранится.
type Row struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	Username           *string    `json:"username,omitempty"`
	Pair               string     `json:"pair"`
	Type               string     `json:"type"`
	Position           string     `json:"position"`
	Leverage           *string    `json:"leverage"` // numeric строкой, без потери точности
	Entries            []LevelRow `json:"entries"`
	StopLosses         []LevelRow `json:"stop_losses"`
	TakeProfits        []LevelRow `json:"take_profits"`
	Comments           *string    `json:"comments"`
	TradingViewURL     *string    `json:"trading_view_url"`
	RiskReward         *string    `json:"risk_reward"`
	CreatedAt          time.Time  `json:"created_at"`
	Status             string     `json:"status"`
	TelegramMessageID  *int64     `json:"telegram_message_id"`
	LastModificationID *int64     `json:"last_modification_id"`
}

// Patch — частичное обновление. nil-поля не меняются.
type Patch struct {
	Entries     []LevelRow
	StopLosses  []LevelRow
	TakeProfits []LevelRow

	Comments       *string
	TradingViewURL *string
	RiskReward     *string

	Status             *string
	TelegramMessageID  *int64
	LastModificationID *int64
}

// Apply применяет патч к копии строки в памяти.
func (p Patch) Apply(r Row) Row {
	if p.Entries != nil {
		r.Entries = cloneLevels(p.Entries)
	}
	if p.StopLosses != nil {
		r.StopLosses = cloneLevels(p.StopLosses)
	}
	if p.TakeProfits != nil {
		r.TakeProfits = cloneLevels(p.TakeProfits)
	}
	if p.Comments != nil {
		r.Comments = strPtr(*p.Comments)
	}
	if p.TradingViewURL != nil {
		r.TradingViewURL = strPtr(*p.TradingViewURL)
	}
	if p.RiskReward != nil {
		r.RiskReward = strPtr(*p.RiskReward)
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.TelegramMessageID != nil {
		v := *p.TelegramMessageID
		r.TelegramMessageID = &v
	}
	if p.LastModificationID != nil {
		v := *p.LastModificationID
		r.LastModificationID = &v
	}
	return r
}

// Backend — клиент хранилища, с которым работает Facade.
type Backend interface {
	SelectAll(ctx context.Context) ([]Row, error)
	Insert(ctx context.Context, row Row) (Row, error)
	Patch(ctx context.Context, id string, p Patch) (Row, error)
	Remove(ctx context.Context, id string) error
}

func CloneRow(r Row) Row {
	r.Entries = cloneLevels(r.Entries)
	r.StopLosses = cloneLevels(r.StopLosses)
	r.TakeProfits = cloneLevels(r.TakeProfits)
	if r.Username != nil {
		r.Username = strPtr(*r.Username)
	}
	if r.Leverage != nil {
		v := *r.Leverage
		r.Leverage = &v
	}
	if r.Comments != nil {
		r.Comments = strPtr(*r.Comments)
	}
	if r.TradingViewURL != nil {
		r.TradingViewURL = strPtr(*r.TradingViewURL)
	}
	if r.RiskReward != nil {
		r.RiskReward = strPtr(*r.RiskReward)
	}
	if r.TelegramMessageID != nil {
		v := *r.TelegramMessageID
		r.TelegramMessageID = &v
	}
	if r.LastModificationID != nil {
		v := *r.LastModificationID
		r.LastModificationID = &v
	}
	return r
}

func cloneLevels(in []LevelRow) []LevelRow {
	if in == nil {
		return nil
	}
	out := make([]LevelRow, len(in))
	copy(out, in)
	return out
}

func strPtr(s string) *string { return &s }
