package board

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_board/internal/auth"
	"signal_board/internal/models"
	"signal_board/internal/notify"
	"signal_board/internal/repository"
	"signal_board/internal/signal"
	"signal_board/pkg/logger"
)

func init() { logger.InitNop() }

// fakeSender запоминает отправленные сообщения.
type fakeSender struct {
	mu     sync.Mutex
	sent   []notify.Message
	nextID int

	fail   map[string]error // event -> ошибка
	reject map[string]bool  // event -> success=false
}

func newFakeSender() *fakeSender {
	return &fakeSender{nextID: 100, fail: map[string]error{}, reject: map[string]bool{}}
}

func (f *fakeSender) Send(_ context.Context, msg notify.Message) (notify.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if err := f.fail[msg.Event]; err != nil {
		return notify.Receipt{}, err
	}
	if f.reject[msg.Event] {
		return notify.Receipt{Success: false}, nil
	}
	f.nextID++
	return notify.Receipt{Success: true, MessageID: f.nextID}, nil
}

func (f *fakeSender) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Event
	}
	return out
}

func (f *fakeSender) last(event string) (notify.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].Event == event {
			return f.sent[i], true
		}
	}
	return notify.Message{}, false
}

// failingBackend ломает выбранные операции поверх Memory.
type failingBackend struct {
	*repository.Memory
	failPatch  bool
	failRemove bool
	failInsert bool
}

var errStore = errors.New("store is down")

func (f *failingBackend) Insert(ctx context.Context, r repository.Row) (repository.Row, error) {
	if f.failInsert {
		return repository.Row{}, errStore
	}
	return f.Memory.Insert(ctx, r)
}

func (f *failingBackend) Patch(ctx context.Context, id string, p repository.Patch) (repository.Row, error) {
	if f.failPatch {
		return repository.Row{}, errStore
	}
	return f.Memory.Patch(ctx, id, p)
}

func (f *failingBackend) Remove(ctx context.Context, id string) error {
	if f.failRemove {
		return errStore
	}
	return f.Memory.Remove(ctx, id)
}

var (
	alice = models.User{ID: "u-alice", Username: "alice", Role: models.RoleTrader}
	bob   = models.User{ID: "u-bob", Username: "bob", Role: models.RoleTrader}
	admin = models.User{ID: "u-admin", Username: "root", Role: models.RoleAdmin}
)

type env struct {
	board   *Board
	sender  *fakeSender
	backend *failingBackend
	ctx     context.Context
}

func newEnv(t *testing.T, opts Options) *env {
	t.Helper()
	backend := &failingBackend{Memory: repository.NewMemory()}
	sender := newFakeSender()
	b := New(repository.NewFacade(backend), notify.NewComposer(-1001234567890), sender, opts)
	require.NoError(t, b.Initialize(context.Background()))
	return &env{board: b, sender: sender, backend: backend, ctx: auth.WithUser(context.Background(), alice)}
}

func levels(prices ...string) []models.PriceLevel {
	out := make([]models.PriceLevel, len(prices))
	for i, p := range prices {
		out[i] = models.PriceLevel{ID: "lvl-" + p, Price: p}
	}
	return out
}

func marketForm() models.SignalForm {
	return models.SignalForm{
		Pair:        "btc/usdt",
		Type:        models.OrderMarket,
		Position:    models.PositionLong,
		Leverage:    "10",
		Entries:     levels("50000"),
		StopLosses:  levels("48000"),
		TakeProfits: levels("55000"),
	}
}

func limitForm() models.SignalForm {
	return models.SignalForm{
		Pair:        "ETH/USDT",
		Type:        models.OrderLimit,
		Position:    models.PositionShort,
		Entries:     levels("3000", "3100"),
		StopLosses:  levels("3300"),
		TakeProfits: levels("55000", "60000"),
	}
}

func stepStatus(t *testing.T, o Outcome, name string) StepStatus {
	t.Helper()
	st, ok := o.Step(name)
	require.True(t, ok, "step %s missing", name)
	return st.Status
}

func TestCreateMarketSignal(t *testing.T) {
	e := newEnv(t, Options{})

	out, err := e.board.Create(e.ctx, marketForm())
	require.NoError(t, err)

	s := out.Signal
	assert.Equal(t, "BTC/USDT", s.Pair)
	assert.Equal(t, models.Active, s.Status)
	require.NotNil(t, s.Leverage)
	assert.Equal(t, "10", s.Leverage.String())
	require.NotNil(t, s.TelegramMessageID)

	assert.Equal(t, []string{notify.EventCreation, notify.EventRollUp}, e.sender.events())

	creation, _ := e.sender.last(notify.EventCreation)
	assert.Contains(t, creation.Text, "Leverage:")
	assert.Contains(t, creation.Text, "10x")
	assert.Equal(t, notify.HTML, creation.Dialect)

	rollUp, _ := e.sender.last(notify.EventRollUp)
	active, pending, found := strings.Cut(rollUp.Text, "Pending Signals")
	require.True(t, found)
	assert.Contains(t, active, "BTC/USDT LONG")
	assert.Contains(t, pending, "N/A")

	assert.Len(t, e.board.Active(), 1)
	assert.Empty(t, e.board.Pending())

	for _, step := range []string{StepPersist, StepNotify, StepPersistMessageID, StepRollUp} {
		assert.Equal(t, StepCommitted, stepStatus(t, out, step))
	}
}

func TestCreateLimitThenTakeProfitHit(t *testing.T) {
	e := newEnv(t, Options{})

	out, err := e.board.Create(e.ctx, limitForm())
	require.NoError(t, err)
	assert.Equal(t, models.Pending, out.Signal.Status)
	id := out.Signal.ID

	out, err = e.board.ReportHit(e.ctx, id, Hit{Kind: signal.EventTakeProfitHit, Level: 1})
	require.NoError(t, err)
	assert.Equal(t, models.TakeProfitHit(1), out.Signal.Status)

	hit, ok := e.sender.last(notify.EventHit)
	require.True(t, ok)
	assert.Contains(t, hit.Text, "Take Profit 1")
	assert.Contains(t, hit.Text, "55000")

	active := e.board.Active()
	require.Len(t, active, 1)
	assert.Equal(t, id, active[0].ID)

	// id уведомления стал последним сообщением о сигнале
	require.NotNil(t, out.Signal.LastModificationID)
	got, err := e.board.Get(id)
	require.NoError(t, err)
	assert.Equal(t, *out.Signal.LastModificationID, *got.LastModificationID)
}

func TestActivate(t *testing.T) {
	e := newEnv(t, Options{})
	out, err := e.board.Create(e.ctx, limitForm())
	require.NoError(t, err)
	id := out.Signal.ID

	out, err = e.board.Activate(e.ctx, id, Activation{Mode: signal.ActivationManual, Price: "2990"})
	require.NoError(t, err)
	assert.Equal(t, models.Active, out.Signal.Status)

	msg, ok := e.sender.last(notify.EventActivation)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "manually activated")
	assert.Contains(t, msg.Text, "2990")
	// ссылка на сообщение о создании
	assert.Contains(t, msg.Text, "https://t.me/c/1234567890/")

	_, err = e.board.Activate(e.ctx, id, Activation{Mode: signal.ActivationAutomatic})
	assert.ErrorIs(t, err, signal.ErrIllegalTransition)
}

func TestSilentUpdateStillSendsRollUp(t *testing.T) {
	e := newEnv(t, Options{})
	form := limitForm()
	silent := false
	form.NotifyTelegram = &silent

	out, err := e.board.Create(e.ctx, form)
	require.NoError(t, err)
	assert.Equal(t, StepSkipped, stepStatus(t, out, StepNotify))
	assert.Nil(t, out.Signal.TelegramMessageID)

	out, err = e.board.ReportHit(e.ctx, out.Signal.ID, Hit{Kind: signal.EventStopLossHit, Level: 1, Silent: true})
	require.NoError(t, err)
	assert.Equal(t, StepSkipped, stepStatus(t, out, StepNotify))
	assert.Equal(t, []string{notify.EventRollUp, notify.EventRollUp}, e.sender.events())
}

func TestEditSendsModificationAsReply(t *testing.T) {
	e := newEnv(t, Options{})
	out, err := e.board.Create(e.ctx, limitForm())
	require.NoError(t, err)
	created := out.Signal

	form := models.EditForm(created)
	form.Pair = "IGNORED"
	form.TakeProfits[0].Price = "56000"
	form.Comments = "moved tp"

	out, err = e.board.Edit(e.ctx, created.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "ETH/USDT", out.Signal.Pair)
	assert.Equal(t, "56000", out.Signal.TakeProfits[0].Price)

	msg, ok := e.sender.last(notify.EventModification)
	require.True(t, ok)
	assert.Equal(t, *created.TelegramMessageID, msg.ReplyTo)
	assert.Contains(t, msg.Text, "Take Profit 1* was changed from `55000` to `56000`")
	assert.Contains(t, msg.Text, "moved tp")
}

func TestEditRejectsInvalidForm(t *testing.T) {
	e := newEnv(t, Options{})
	out, err := e.board.Create(e.ctx, limitForm())
	require.NoError(t, err)

	form := models.EditForm(out.Signal)
	form.Entries[0].Price = ""
	_, err = e.board.Edit(e.ctx, out.Signal.ID, form)

	var ve *signal.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "entries", ve.Field)

	got, err := e.board.Get(out.Signal.ID)
	require.NoError(t, err)
	assert.Equal(t, "3000", got.Entries[0].Price)
}

func TestRemovePendingCancelsThenDeletes(t *testing.T) {
	e := newEnv(t, Options{})
	out, err := e.board.Create(e.ctx, limitForm())
	require.NoError(t, err)

	out, err = e.board.Remove(e.ctx, out.Signal.ID)
	require.NoError(t, err)
	assert.True(t, out.Removed)

	events := e.sender.events()
	assert.Equal(t, []string{notify.EventCreation, notify.EventRollUp, notify.EventCancel, notify.EventRollUp}, events)
	assert.Equal(t, StepNotify, out.Steps[0].Name)
	assert.Equal(t, StepDelete, out.Steps[1].Name)

	views := e.board.Views()
	assert.Empty(t, views.Active)
	assert.Empty(t, views.Pending)
	assert.Empty(t, views.Closed)
}

func TestRemoveOpenMovesToHistory(t *testing.T) {
	e := newEnv(t, Options{})
	out, err := e.board.Create(e.ctx, limitForm())
	require.NoError(t, err)
	id := out.Signal.ID

	_, err = e.board.ReportHit(e.ctx, id, Hit{Kind: signal.EventTakeProfitHit, Level: 2})
	require.NoError(t, err)

	out, err = e.board.Remove(e.ctx, id)
	require.NoError(t, err)
	assert.False(t, out.Removed)
	assert.Equal(t, models.PartialProfits, out.Signal.Status)
	assert.Equal(t, signal.HistoryReward, out.Signal.RiskReward)

	closed := e.board.Closed()
	require.Len(t, closed, 1)
	assert.Equal(t, id, closed[0].ID)

	// из истории — полное удаление без уведомлений
	before := len(e.sender.events())
	out, err = e.board.Remove(e.ctx, id)
	require.NoError(t, err)
	assert.True(t, out.Removed)
	assert.Equal(t, []string{notify.EventRollUp}, e.sender.events()[before:])
	assert.Empty(t, e.board.Signals())
}

func TestRemoveOpenWithPurge(t *testing.T) {
	e := newEnv(t, Options{PurgeOnClose: true})
	out, err := e.board.Create(e.ctx, marketForm())
	require.NoError(t, err)

	out, err = e.board.Remove(e.ctx, out.Signal.ID)
	require.NoError(t, err)
	assert.True(t, out.Removed)
	assert.Equal(t, models.Stopped, out.Signal.Status)
	assert.Empty(t, e.board.Signals())
}

func TestMissingUserAndUnknownID(t *testing.T) {
	e := newEnv(t, Options{})

	_, err := e.board.Create(context.Background(), marketForm())
	assert.ErrorIs(t, err, signal.ErrUnauthenticated)

	_, err = e.board.ReportHit(e.ctx, "nope", Hit{Kind: signal.EventCompleted})
	assert.ErrorIs(t, err, signal.ErrNotFound)

	_, err = e.board.Remove(e.ctx, "nope")
	assert.ErrorIs(t, err, signal.ErrNotFound)

	assert.Empty(t, e.sender.events())
}

func TestOtherTraderIsForbiddenAdminIsNot(t *testing.T) {
	e := newEnv(t, Options{})
	out, err := e.board.Create(e.ctx, marketForm())
	require.NoError(t, err)
	id := out.Signal.ID

	_, err = e.board.ReportHit(auth.WithUser(context.Background(), bob), id, Hit{Kind: signal.EventCompleted})
	assert.ErrorIs(t, err, signal.ErrForbidden)

	out, err = e.board.ReportHit(auth.WithUser(context.Background(), admin), id, Hit{Kind: signal.EventCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.Completed, out.Signal.Status)

	msg, _ := e.sender.last(notify.EventHit)
	assert.Contains(t, msg.Text, "all Take Profits")
}

func TestPersistenceFailureLeavesStateUntouched(t *testing.T) {
	e := newEnv(t, Options{})
	out, err := e.board.Create(e.ctx, marketForm())
	require.NoError(t, err)
	id := out.Signal.ID
	sent := len(e.sender.events())

	e.backend.failPatch = true
	out, err = e.board.ReportHit(e.ctx, id, Hit{Kind: signal.EventTakeProfitHit, Level: 1})

	var pe *signal.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, StepFailed, stepStatus(t, out, StepPersist))

	got, err := e.board.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.Active, got.Status)
	assert.Len(t, e.sender.events(), sent)

	e.backend.failInsert = true
	_, err = e.board.Create(e.ctx, marketForm())
	require.ErrorAs(t, err, &pe)
	assert.Len(t, e.board.Signals(), 1)
}

func TestNotificationFailureIsSwallowed(t *testing.T) {
	e := newEnv(t, Options{})
	e.sender.fail[notify.EventCreation] = errors.New("network down")

	out, err := e.board.Create(e.ctx, marketForm())
	require.NoError(t, err)

	st, _ := out.Step(StepNotify)
	assert.Equal(t, StepFailed, st.Status)
	var ne *signal.NotificationError
	assert.ErrorAs(t, st.Err, &ne)
	assert.Equal(t, StepSkipped, stepStatus(t, out, StepPersistMessageID))
	assert.Equal(t, StepCommitted, stepStatus(t, out, StepRollUp))
	assert.Nil(t, out.Signal.TelegramMessageID)

	// success=false тоже не ошибка операции
	e.sender.reject[notify.EventHit] = true
	out, err = e.board.ReportHit(e.ctx, out.Signal.ID, Hit{Kind: signal.EventTakeProfitHit, Level: 1})
	require.NoError(t, err)
	st, _ = out.Step(StepNotify)
	assert.ErrorIs(t, st.Err, signal.ErrNotDelivered)
	assert.Nil(t, out.Signal.LastModificationID)
	assert.Len(t, out.Failed(), 1)
}

func TestHitValidation(t *testing.T) {
	e := newEnv(t, Options{})
	out, err := e.board.Create(e.ctx, marketForm())
	require.NoError(t, err)
	id := out.Signal.ID

	var ve *signal.ValidationError
	_, err = e.board.ReportHit(e.ctx, id, Hit{Kind: signal.EventTakeProfitHit, Level: 5})
	assert.ErrorAs(t, err, &ve)

	_, err = e.board.ReportHit(e.ctx, id, Hit{Kind: signal.EventActivate})
	assert.ErrorAs(t, err, &ve)

	// один entry — entry hit недоступен
	_, err = e.board.ReportHit(e.ctx, id, Hit{Kind: signal.EventEntryHit, Level: 1})
	assert.ErrorIs(t, err, signal.ErrIllegalTransition)
}

func TestInitializeLoadsStoredSignals(t *testing.T) {
	backend := repository.NewMemory()
	facade := repository.NewFacade(backend)
	_, err := facade.Create(context.Background(), marketForm(), alice)
	require.NoError(t, err)

	b := New(facade, notify.NewComposer(-1001), newFakeSender(), Options{})
	assert.False(t, b.Ready())
	require.NoError(t, b.Initialize(context.Background()))
	assert.True(t, b.Ready())
	assert.Len(t, b.Active(), 1)

	b.Cleanup()
	assert.False(t, b.Ready())
	assert.Empty(t, b.Signals())
}

func TestResendRollUp(t *testing.T) {
	e := newEnv(t, Options{})

	_, err := e.board.ResendRollUp(context.Background())
	assert.ErrorIs(t, err, signal.ErrUnauthenticated)

	out, err := e.board.ResendRollUp(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, StepCommitted, stepStatus(t, out, StepRollUp))

	msg, _ := e.sender.last(notify.EventRollUp)
	assert.Equal(t, 2, strings.Count(msg.Text, "N/A"))
}

func TestApplyLevelOp(t *testing.T) {
	s := &models.TradingSignal{
		Pair: "BTC/USDT", Type: models.OrderLimit, Position: models.PositionSpot,
		Entries: levels("1"), StopLosses: levels("0.5"), TakeProfits: levels("2"),
		Comments: "keep",
	}

	form, err := ApplyLevelOp(s, "add", models.CategoryTakeProfits, "", "3")
	require.NoError(t, err)
	require.Len(t, form.TakeProfits, 2)
	assert.Equal(t, "3", form.TakeProfits[1].Price)
	assert.Equal(t, "keep", form.Comments)

	form, err = ApplyLevelOp(s, "set", models.CategoryEntries, "lvl-1", "1.1")
	require.NoError(t, err)
	assert.Equal(t, "1.1", form.Entries[0].Price)

	_, err = ApplyLevelOp(s, "remove", models.CategoryEntries, "lvl-1", "")
	var ve *signal.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = ApplyLevelOp(s, "swap", models.CategoryEntries, "lvl-1", "")
	assert.ErrorAs(t, err, &ve)
}
