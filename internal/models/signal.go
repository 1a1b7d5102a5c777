package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderLimit  OrderType = "Limit"
	OrderMarket OrderType = "Market"
)

type Position string

const (
	PositionLong  Position = "Long"
	PositionShort Position = "Short"
	PositionSpot  Position = "Spot"
)

// Leveraged — плечо имеет смысл только для Long/Short.
func (p Position) Leveraged() bool { return p == PositionLong || p == PositionShort }

// TradingSignal опубликованный сигнал
type TradingSignal struct {
	ID       string           `json:"id"`
	UserID   string           `json:"userId"`
	Pair     string           `json:"pair"`
	Type     OrderType        `json:"type"`
	Position Position         `json:"position"`
	Leverage *decimal.Decimal `json:"leverage,omitempty"`

	Entries     []PriceLevel `json:"entries"`
	StopLosses  []PriceLevel `json:"stopLosses"`
	TakeProfits []PriceLevel `json:"takeProfits"`

	Comments       string `json:"comments"`
	TradingViewURL string `json:"tradingViewUrl"`
	RiskReward     string `json:"riskReward"`

	CreatedAt time.Time `json:"createdAt"`
	Status    Status    `json:"status"`

	// id сообщения о создании и последнего сообщения, ссылающегося на сигнал
	TelegramMessageID  *int `json:"telegramMessageId,omitempty"`
	LastModificationID *int `json:"lastModificationId,omitempty"`

	User *User `json:"user,omitempty"`
}

func (s *TradingSignal) Levels() LevelSet {
	return LevelSet{
		Entries:     s.Entries,
		StopLosses:  s.StopLosses,
		TakeProfits: s.TakeProfits,
	}.Clone()
}

// ReferenceMessageID — сообщение, на которое ссылаются последующие уведомления.
func (s *TradingSignal) ReferenceMessageID() (int, bool) {
	if s.LastModificationID != nil && *s.LastModificationID != 0 {
		return *s.LastModificationID, true
	}
	if s.TelegramMessageID != nil && *s.TelegramMessageID != 0 {
		return *s.TelegramMessageID, true
	}
	return 0, false
}

func (s *TradingSignal) Username() string {
	if s.User == nil || s.User.Username == "" {
		return "unknown"
	}
	return s.User.Username
}

func (s *TradingSignal) Clone() *TradingSignal {
	if s == nil {
		return nil
	}
	out := *s
	levels := s.Levels()
	out.Entries, out.StopLosses, out.TakeProfits = levels.Entries, levels.StopLosses, levels.TakeProfits
	if s.Leverage != nil {
		l := *s.Leverage
		out.Leverage = &l
	}
	out.TelegramMessageID = cloneInt(s.TelegramMessageID)
	out.LastModificationID = cloneInt(s.LastModificationID)
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return &out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SignalForm — данные формы создания / редактирования.
type SignalForm struct {
	Pair     string    `json:"pair" validate:"required"`
	Type     OrderType `json:"type" validate:"required,oneof=Limit Market"`
	Position Position  `json:"position" validate:"required,oneof=Long Short Spot"`
	Leverage string    `json:"leverage,omitempty"`

	Entries     []PriceLevel `json:"entries" validate:"min=1,dive"`
	StopLosses  []PriceLevel `json:"stopLosses" validate:"min=1,dive"`
	TakeProfits []PriceLevel `json:"takeProfits" validate:"min=1,dive"`

	Comments       string `json:"comments"`
	TradingViewURL string `json:"tradingViewUrl"`
	RiskReward     string `json:"riskReward"`

	NotifyTelegram *bool `json:"notifyTelegram,omitempty"`
}

func (f *SignalForm) Levels() LevelSet {
	return LevelSet{
		Entries:     f.Entries,
		StopLosses:  f.StopLosses,
		TakeProfits: f.TakeProfits,
	}.Clone()
}

func (f *SignalForm) SetLevels(s LevelSet) {
	f.Entries, f.StopLosses, f.TakeProfits = s.Entries, s.StopLosses, s.TakeProfits
}

// ShouldNotify — по умолчанию уведомление отправляется.
func (f *SignalForm) ShouldNotify() bool {
	return f.NotifyTelegram == nil || *f.NotifyTelegram
}

// EditForm собирает форму редактирования из сигнала: неизменяемые поля берутся как есть,
// текстовые поля очищаются.
func EditForm(s *TradingSignal) SignalForm {
	f := SignalForm{
		Pair:     s.Pair,
		Type:     s.Type,
		Position: s.Position,
	}
	if s.Leverage != nil {
		f.Leverage = s.Leverage.String()
	}
	f.SetLevels(s.Levels())
	return f
}

// StatusFields — необязательные текстовые поля при смене статуса. nil = не менять.
type StatusFields struct {
	Comments       *string `json:"comments,omitempty"`
	TradingViewURL *string `json:"tradingViewUrl,omitempty"`
	RiskReward     *string `json:"riskReward,omitempty"`
}
