package board

import (
	"context"
	"fmt"
	"strings"

	"signal_board/internal/auth"
	"signal_board/internal/models"
	"signal_board/internal/signal"
	"signal_board/pkg/logger"
)

// Activation — ручная или автоматическая активация pending-сигнала.
type Activation struct {
	Mode   signal.ActivationMode
	Price  string
	Fields models.StatusFields
	Silent bool // не слать уведомление об активации (сводка уходит всегда)
}

// Hit — сработавший уровень или завершение сигнала.
type Hit struct {
	Kind   signal.EventKind
	Level  int
	Fields models.StatusFields
	Silent bool
}

// Create: persist -> notify -> persist-message-id -> roll-up.
func (b *Board) Create(ctx context.Context, form models.SignalForm) (Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.begin(ctx, "create")

	user, ok := auth.FromContext(ctx)
	if !ok {
		return s.finish(signal.ErrUnauthenticated)
	}
	if err := signal.ValidateForm(&form); err != nil {
		return s.finish(err)
	}

	var created *models.TradingSignal
	if err := s.run(StepPersist, func(ctx context.Context) (err error) {
		created, err = b.repo.Create(ctx, form, user)
		return err
	}); err != nil {
		return s.finish(err)
	}
	b.signals = append([]*models.TradingSignal{created}, b.signals...)

	if form.ShouldNotify() {
		if id, ok := b.send(s, StepNotify, b.composer.Creation(created, user)); ok {
			if err := s.run(StepPersistMessageID, func(ctx context.Context) error {
				return b.repo.SetCreationMessageID(ctx, created.ID, id)
			}); err == nil {
				created.TelegramMessageID = &id
			}
		} else {
			s.skip(StepPersistMessageID)
		}
	} else {
		s.skip(StepNotify)
		s.skip(StepPersistMessageID)
	}

	b.rollUp(s)
	s.out.Signal = created.Clone()
	logger.Info("signal %s %s created by %s (%s)", created.ID, created.Pair, user.Username, created.Status)
	return s.finish(nil)
}

// Edit меняет уровни и текстовые поля. Пара, тип и позиция не меняются.
// Уведомление — ответом на последнее сообщение о сигнале.
func (b *Board) Edit(ctx context.Context, id string, form models.SignalForm) (Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.begin(ctx, "edit")

	user, i, err := b.lookup(ctx, id)
	if err != nil {
		return s.finish(err)
	}
	current := b.signals[i]

	form.Pair, form.Type, form.Position = current.Pair, current.Type, current.Position
	form.Leverage = ""
	if current.Leverage != nil {
		form.Leverage = current.Leverage.String()
	}
	if err := signal.ValidateForm(&form); err != nil {
		return s.finish(err)
	}

	var updated *models.TradingSignal
	if err := s.run(StepPersist, func(ctx context.Context) (err error) {
		updated, err = b.repo.Update(ctx, id, form)
		return err
	}); err != nil {
		return s.finish(err)
	}
	keepLocal(updated, current)
	b.replace(i, updated)

	changes := signal.Diff(current.Levels(), updated.Levels())
	b.notifyUpdate(s, updated, form.ShouldNotify(), func() (int, bool) {
		return b.send(s, StepNotify, b.composer.Modification(updated, user, changes))
	})

	b.rollUp(s)
	s.out.Signal = updated.Clone()
	return s.finish(nil)
}

// Activate переводит pending в active.
func (b *Board) Activate(ctx context.Context, id string, a Activation) (Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.begin(ctx, "activate")

	user, i, err := b.lookup(ctx, id)
	if err != nil {
		return s.finish(err)
	}

	tr, err := signal.Apply(b.signals[i], signal.Event{Kind: signal.EventActivate, Mode: a.Mode, Price: a.Price})
	if err != nil {
		return s.finish(err)
	}

	updated, err := b.applyStatus(s, i, tr.To, a.Fields)
	if err != nil {
		return s.finish(err)
	}

	b.notifyUpdate(s, updated, !a.Silent, func() (int, bool) {
		return b.send(s, StepNotify, b.composer.Activation(updated, user, tr.Event.Mode, tr.Price))
	})

	b.rollUp(s)
	s.out.Signal = updated.Clone()
	logger.Info("signal %s activated (%s) at %s", id, tr.Event.Mode, tr.Price)
	return s.finish(nil)
}

// ReportHit — entry / take profit / stop loss / completed.
func (b *Board) ReportHit(ctx context.Context, id string, h Hit) (Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.begin(ctx, "hit")

	if h.Kind == signal.EventActivate {
		return s.finish(&signal.ValidationError{Field: "updateType", Reason: "use activate for pending signals"})
	}

	user, i, err := b.lookup(ctx, id)
	if err != nil {
		return s.finish(err)
	}

	tr, err := signal.Apply(b.signals[i], signal.Event{Kind: h.Kind, Level: h.Level})
	if err != nil {
		return s.finish(err)
	}

	updated, err := b.applyStatus(s, i, tr.To, h.Fields)
	if err != nil {
		return s.finish(err)
	}

	b.notifyUpdate(s, updated, !h.Silent, func() (int, bool) {
		return b.send(s, StepNotify, b.composer.Hit(updated, user, tr))
	})

	b.rollUp(s)
	s.out.Signal = updated.Clone()
	logger.Info("signal %s: %s -> %s", id, tr.From, tr.To)
	return s.finish(nil)
}

// Remove:
//   - pending: уведомление об отмене, затем удаление;
//   - открытый: итоговый статус (partial profits / stopped) остаётся в истории;
//   - закрытый: удаление без уведомлений.
func (b *Board) Remove(ctx context.Context, id string) (Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.begin(ctx, "remove")

	user, i, err := b.lookup(ctx, id)
	if err != nil {
		return s.finish(err)
	}
	current := b.signals[i]
	plan := signal.PlanRemoval(current.Status)

	switch plan.Action {
	case signal.RemoveCancel:
		b.send(s, StepNotify, b.composer.Cancel(current, user))
		if err := b.delete(s, i); err != nil {
			return s.finish(err)
		}
		s.out.Signal = current.Clone()

	case signal.RemoveSoftClose:
		closed := current.Clone()
		closed.Status, closed.RiskReward = plan.SoftStatus, signal.HistoryReward

		if b.purgeOnClose {
			if err := b.delete(s, i); err != nil {
				return s.finish(err)
			}
		} else {
			reward := signal.HistoryReward
			updated, err := b.applyStatus(s, i, plan.SoftStatus, models.StatusFields{RiskReward: &reward})
			if err != nil {
				return s.finish(err)
			}
			closed = updated
		}
		s.out.Signal = closed.Clone()

	default:
		if err := b.delete(s, i); err != nil {
			return s.finish(err)
		}
		s.out.Signal = current.Clone()
	}

	b.rollUp(s)
	logger.Info("signal %s removed by %s (%s)", id, user.Username, s.out.Signal.Status)
	return s.finish(nil)
}

// ResendRollUp — пересылка сводки без изменений состояния.
func (b *Board) ResendRollUp(ctx context.Context) (Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.begin(ctx, "roll-up")
	if _, ok := auth.FromContext(ctx); !ok {
		return s.finish(signal.ErrUnauthenticated)
	}
	b.rollUp(s)
	if failed := s.out.Failed(); len(failed) > 0 {
		return s.finish(failed[0].Err)
	}
	return s.finish(nil)
}

// ---- шаги ----

func (b *Board) applyStatus(s *saga, i int, status models.Status, fields models.StatusFields) (*models.TradingSignal, error) {
	current := b.signals[i]
	var updated *models.TradingSignal
	if err := s.run(StepPersist, func(ctx context.Context) (err error) {
		updated, err = b.repo.UpdateStatus(ctx, current.ID, status, fields)
		return err
	}); err != nil {
		return nil, err
	}
	keepLocal(updated, current)
	b.replace(i, updated)
	return updated, nil
}

func (b *Board) delete(s *saga, i int) error {
	id := b.signals[i].ID
	if err := s.run(StepDelete, func(ctx context.Context) error {
		return b.repo.Delete(ctx, id)
	}); err != nil {
		return err
	}
	b.drop(i)
	s.out.Removed = true
	return nil
}

// notifyUpdate шлёт уведомление и запоминает его id как последнее сообщение о сигнале.
func (b *Board) notifyUpdate(s *saga, updated *models.TradingSignal, enabled bool, send func() (int, bool)) {
	if !enabled {
		s.skip(StepNotify)
		s.skip(StepPersistMessageID)
		return
	}
	msgID, ok := send()
	if !ok {
		s.skip(StepPersistMessageID)
		return
	}
	if err := s.run(StepPersistMessageID, func(ctx context.Context) error {
		return b.repo.SetLastModificationID(ctx, updated.ID, msgID)
	}); err == nil {
		updated.LastModificationID = &msgID
	}
}

// keepLocal дополняет ответ хранилища тем, чего в нём может не быть.
func keepLocal(updated, current *models.TradingSignal) {
	if updated.User == nil && current.User != nil {
		u := *current.User
		updated.User = &u
	}
	if updated.TelegramMessageID == nil {
		updated.TelegramMessageID = current.TelegramMessageID
	}
	if updated.LastModificationID == nil {
		updated.LastModificationID = current.LastModificationID
	}
}

// ApplyLevelOp — одна операция над уровнями (add / remove / set) поверх текущих уровней
// сигнала, результат уходит в Edit.
func ApplyLevelOp(s *models.TradingSignal, op string, cat models.Category, levelID, price string) (models.SignalForm, error) {
	form := models.EditForm(s)
	form.Comments, form.TradingViewURL, form.RiskReward = s.Comments, s.TradingViewURL, s.RiskReward
	levels := form.Levels()

	switch strings.ToLower(op) {
	case "add":
		id := levels.Add(cat)
		levels.SetPrice(cat, id, price)
	case "remove":
		if !levels.Remove(cat, levelID) {
			return form, &signal.ValidationError{Field: cat.String(), Reason: fmt.Sprintf("cannot remove level %q", levelID)}
		}
	case "set":
		if !levels.SetPrice(cat, levelID, price) {
			return form, &signal.ValidationError{Field: cat.String(), Reason: fmt.Sprintf("unknown level %q", levelID)}
		}
	default:
		return form, &signal.ValidationError{Field: "op", Reason: fmt.Sprintf("unknown level operation %q", op)}
	}
	form.SetLevels(levels)
	return form, nil
}
