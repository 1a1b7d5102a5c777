package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"signal_board/internal/models"
	"signal_board/internal/signal"
	"signal_board/pkg/logger"
)

// Facade переводит строки хранилища в сигналы и обратно. Все ошибки бэкенда
// возвращаются как *signal.PersistenceError, повторов нет.
type Facade struct {
	backend Backend
}

func NewFacade(backend Backend) *Facade {
	return &Facade{backend: backend}
}

func persistErr(op string, err error) error {
	return &signal.PersistenceError{Op: op, Err: err}
}

// List — все сигналы, новые первыми.
func (f *Facade) List(ctx context.Context) ([]*models.TradingSignal, error) {
	rows, err := f.backend.SelectAll(ctx)
	if err != nil {
		return nil, persistErr("list", err)
	}

	out := make([]*models.TradingSignal, 0, len(rows))
	for _, r := range rows {
		s, err := ToSignal(r)
		if err != nil {
			logger.Warn("skip signal %s: %v", r.ID, err)
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *Facade) Create(ctx context.Context, form models.SignalForm, owner models.User) (*models.TradingSignal, error) {
	row := Row{
		UserID:         owner.ID,
		Username:       strPtr(owner.Username),
		Pair:           strings.ToUpper(strings.TrimSpace(form.Pair)),
		Type:           string(form.Type),
		Position:       string(form.Position),
		Entries:        levelRows(form.Entries),
		StopLosses:     levelRows(form.StopLosses),
		TakeProfits:    levelRows(form.TakeProfits),
		Comments:       strPtr(form.Comments),
		TradingViewURL: strPtr(form.TradingViewURL),
		RiskReward:     strPtr(form.RiskReward),
		Status:         signal.InitialStatus(form.Type).String(),
	}
	if lev := signal.ParseLeverage(&form); lev != nil {
		row.Leverage = strPtr(lev.String())
	}

	saved, err := f.backend.Insert(ctx, row)
	if err != nil {
		return nil, persistErr("create", err)
	}
	s, err := ToSignal(saved)
	if err != nil {
		return nil, persistErr("create", err)
	}
	s.User = &models.User{ID: owner.ID, Username: owner.Username}
	return s, nil
}

// Update меняет только уровни и текстовые поля.
func (f *Facade) Update(ctx context.Context, id string, form models.SignalForm) (*models.TradingSignal, error) {
	return f.patch(ctx, "update", id, Patch{
		Entries:        levelRows(form.Entries),
		StopLosses:     levelRows(form.StopLosses),
		TakeProfits:    levelRows(form.TakeProfits),
		Comments:       strPtr(form.Comments),
		TradingViewURL: strPtr(form.TradingViewURL),
		RiskReward:     strPtr(form.RiskReward),
	})
}

func (f *Facade) UpdateStatus(ctx context.Context, id string, status models.Status, fields models.StatusFields) (*models.TradingSignal, error) {
	st := status.String()
	return f.patch(ctx, "update-status", id, Patch{
		Status:         &st,
		Comments:       fields.Comments,
		TradingViewURL: fields.TradingViewURL,
		RiskReward:     fields.RiskReward,
	})
}

func (f *Facade) SetCreationMessageID(ctx context.Context, id string, messageID int) error {
	v := int64(messageID)
	_, err := f.patch(ctx, "set-creation-message-id", id, Patch{TelegramMessageID: &v})
	return err
}

func (f *Facade) SetLastModificationID(ctx context.Context, id string, messageID int) error {
	v := int64(messageID)
	_, err := f.patch(ctx, "set-last-modification-id", id, Patch{LastModificationID: &v})
	return err
}

func (f *Facade) Delete(ctx context.Context, id string) error {
	if err := f.backend.Remove(ctx, id); err != nil {
		return persistErr("delete", err)
	}
	return nil
}

func (f *Facade) patch(ctx context.Context, op, id string, p Patch) (*models.TradingSignal, error) {
	row, err := f.backend.Patch(ctx, id, p)
	if err != nil {
		return nil, persistErr(op, err)
	}
	s, err := ToSignal(row)
	if err != nil {
		return nil, persistErr(op, err)
	}
	return s, nil
}

// ToSignal — строка хранилища -> сигнал.
func ToSignal(r Row) (*models.TradingSignal, error) {
	st, err := models.ParseStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("row %s: %w", r.ID, err)
	}

	s := &models.TradingSignal{
		ID:             r.ID,
		UserID:         r.UserID,
		Pair:           r.Pair,
		Type:           models.OrderType(r.Type),
		Position:       models.Position(r.Position),
		Entries:        priceLevels(r.Entries),
		StopLosses:     priceLevels(r.StopLosses),
		TakeProfits:    priceLevels(r.TakeProfits),
		Comments:       deref(r.Comments),
		TradingViewURL: deref(r.TradingViewURL),
		RiskReward:     deref(r.RiskReward),
		CreatedAt:      r.CreatedAt,
		Status:         st,
	}
	if r.Leverage != nil {
		lev, err := decimal.NewFromString(*r.Leverage)
		if err != nil {
			return nil, fmt.Errorf("row %s: leverage: %w", r.ID, err)
		}
		s.Leverage = &lev
	}
	if r.TelegramMessageID != nil {
		v := int(*r.TelegramMessageID)
		s.TelegramMessageID = &v
	}
	if r.LastModificationID != nil {
		v := int(*r.LastModificationID)
		s.LastModificationID = &v
	}
	if r.Username != nil {
		s.User = &models.User{ID: r.UserID, Username: *r.Username}
	}
	return s, nil
}

func levelRows(in []models.PriceLevel) []LevelRow {
	out := make([]LevelRow, len(in))
	for i, l := range in {
		out[i] = LevelRow{ID: l.ID, Price: strings.TrimSpace(l.Price)}
	}
	return out
}

func priceLevels(in []LevelRow) []models.PriceLevel {
	out := make([]models.PriceLevel, len(in))
	for i, l := range in {
		out[i] = models.PriceLevel{ID: l.ID, Price: l.Price}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
