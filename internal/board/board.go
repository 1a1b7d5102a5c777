package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opentracing/opentracing-go"

	"signal_board/internal/auth"
	"signal_board/internal/metrics"
	"signal_board/internal/models"
	"signal_board/internal/notify"
	"signal_board/internal/signal"
	"signal_board/pkg/logger"
)

// Repository — хранилище сигналов (repository.Facade).
type Repository interface {
	List(ctx context.Context) ([]*models.TradingSignal, error)
	Create(ctx context.Context, form models.SignalForm, owner models.User) (*models.TradingSignal, error)
	Update(ctx context.Context, id string, form models.SignalForm) (*models.TradingSignal, error)
	UpdateStatus(ctx context.Context, id string, status models.Status, fields models.StatusFields) (*models.TradingSignal, error)
	SetCreationMessageID(ctx context.Context, id string, messageID int) error
	SetLastModificationID(ctx context.Context, id string, messageID int) error
	Delete(ctx context.Context, id string) error
}

type Options struct {
	// PurgeOnClose — удалять открытый сигнал вместо переноса в историю.
	PurgeOnClose bool
	Tracer       opentracing.Tracer
}

// Board — владелец локального списка сигналов. Все изменения идут через него по одному.
type Board struct {
	mu      sync.Mutex
	signals []*models.TradingSignal
	ready   bool

	repo     Repository
	composer *notify.Composer
	sender   notify.Sender
	tracer   opentracing.Tracer

	purgeOnClose bool
}

func New(repo Repository, composer *notify.Composer, sender notify.Sender, opts Options) *Board {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = opentracing.GlobalTracer()
	}
	return &Board{
		repo:         repo,
		composer:     composer,
		sender:       sender,
		tracer:       tracer,
		purgeOnClose: opts.PurgeOnClose,
	}
}

// Initialize загружает сигналы из хранилища.
func (b *Board) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	signals, err := b.repo.List(ctx)
	if err != nil {
		logger.Error("initialize signals: %v", err)
		return err
	}
	b.signals = signals
	b.ready = true
	b.updateGauges()
	logger.Info("board initialized with %d signals", len(signals))
	return nil
}

func (b *Board) Cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signals = nil
	b.ready = false
	b.updateGauges()
}

func (b *Board) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// Signals — копия всего списка, новые первыми.
func (b *Board) Signals() []*models.TradingSignal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneAll(b.signals)
}

func (b *Board) Get(id string) (*models.TradingSignal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", signal.ErrNotFound, id)
	}
	return b.signals[i].Clone(), nil
}

func (b *Board) Active() []*models.TradingSignal  { return signal.Active(b.Signals()) }
func (b *Board) Pending() []*models.TradingSignal { return signal.Pending(b.Signals()) }
func (b *Board) Closed() []*models.TradingSignal  { return signal.Closed(b.Signals()) }

func (b *Board) Views() signal.Views { return signal.Partition(b.Signals()) }

// ---- helpers (под b.mu) ----

func (b *Board) indexOf(id string) int {
	for i, s := range b.signals {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// lookup — текущий пользователь и сигнал по id.
func (b *Board) lookup(ctx context.Context, id string) (models.User, int, error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return models.User{}, -1, signal.ErrUnauthenticated
	}
	i := b.indexOf(id)
	if i < 0 {
		return user, -1, fmt.Errorf("%w: %s", signal.ErrNotFound, id)
	}
	if !user.IsAdmin() && b.signals[i].UserID != user.ID {
		return user, i, signal.ErrForbidden
	}
	return user, i, nil
}

func (b *Board) replace(i int, s *models.TradingSignal) {
	b.signals[i] = s
}

func (b *Board) drop(i int) {
	b.signals = append(b.signals[:i:i], b.signals[i+1:]...)
}

// send отправляет сообщение и возвращает id, если доставлено.
func (b *Board) send(s *saga, step string, msg notify.Message) (int, bool) {
	var receipt notify.Receipt
	err := s.run(step, func(ctx context.Context) error {
		r, err := b.sender.Send(ctx, msg)
		if err == nil && !r.Success {
			err = signal.ErrNotDelivered
		}
		if err != nil {
			return &signal.NotificationError{Event: msg.Event, Err: err}
		}
		receipt = r
		return nil
	})

	result := "sent"
	if err != nil {
		result = "failed"
	}
	metrics.NotificationsTotal.WithLabelValues(msg.Event, result).Inc()
	return receipt.MessageID, err == nil && receipt.MessageID != 0
}

// rollUp пересылает сводку по свежим active / pending.
func (b *Board) rollUp(s *saga) {
	b.updateGauges()
	views := signal.Partition(b.signals)
	b.send(s, StepRollUp, b.composer.RollUp(views.Active, views.Pending))
}

func (b *Board) updateGauges() {
	views := signal.Partition(b.signals)
	metrics.Signals.WithLabelValues("active").Set(float64(len(views.Active)))
	metrics.Signals.WithLabelValues("pending").Set(float64(len(views.Pending)))
	metrics.Signals.WithLabelValues("closed").Set(float64(len(views.Closed)))
}

func cloneAll(in []*models.TradingSignal) []*models.TradingSignal {
	out := make([]*models.TradingSignal, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

// IsClientError — ошибка из-за запроса, а не из-за инфраструктуры.
func IsClientError(err error) bool {
	var v *signal.ValidationError
	return errors.As(err, &v) ||
		errors.Is(err, signal.ErrNotFound) ||
		errors.Is(err, signal.ErrUnauthenticated) ||
		errors.Is(err, signal.ErrForbidden) ||
		errors.Is(err, signal.ErrIllegalTransition)
}
