package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_board/internal/models"
	"signal_board/internal/signal"
	"signal_board/pkg/logger"
)

func init() { logger.InitNop() }

var owner = models.User{ID: "u1", Username: "alice"}

func form() models.SignalForm {
	return models.SignalForm{
		Pair:        " ethusdt ",
		Type:        models.OrderLimit,
		Position:    models.PositionShort,
		Leverage:    "5",
		Entries:     []models.PriceLevel{{ID: "e1", Price: " 3000 "}},
		StopLosses:  []models.PriceLevel{{ID: "s1", Price: "3200"}},
		TakeProfits: []models.PriceLevel{{ID: "t1", Price: "2800"}, {ID: "t2", Price: "2600"}},
		Comments:    "scalp",
	}
}

func clock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func TestFacadeCreate(t *testing.T) {
	ctx := context.Background()
	f := NewFacade(NewMemory())

	s, err := f.Create(ctx, form(), owner)
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "ETHUSDT", s.Pair)
	assert.Equal(t, models.Pending, s.Status)
	assert.Equal(t, "3000", s.Entries[0].Price)
	require.NotNil(t, s.Leverage)
	assert.Equal(t, "5", s.Leverage.String())
	assert.Equal(t, "alice", s.Username())
	assert.Nil(t, s.TelegramMessageID)

	spot := form()
	spot.Position = models.PositionSpot
	spot.Type = models.OrderMarket
	s, err = f.Create(ctx, spot, owner)
	require.NoError(t, err)
	assert.Nil(t, s.Leverage)
	assert.Equal(t, models.Active, s.Status)
}

func TestFacadeListNewestFirst(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory().WithClock(clock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	f := NewFacade(mem)

	first, err := f.Create(ctx, form(), owner)
	require.NoError(t, err)
	second, err := f.Create(ctx, form(), owner)
	require.NoError(t, err)

	// битая строка пропускается
	_, err = mem.Insert(ctx, Row{ID: "broken", Status: "open"})
	require.NoError(t, err)

	list, err := f.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestFacadeUpdates(t *testing.T) {
	ctx := context.Background()
	f := NewFacade(NewMemory())

	s, err := f.Create(ctx, form(), owner)
	require.NoError(t, err)

	edit := form()
	edit.TakeProfits = edit.TakeProfits[:1]
	edit.Comments = ""
	s, err = f.Update(ctx, s.ID, edit)
	require.NoError(t, err)
	assert.Len(t, s.TakeProfits, 1)
	assert.Empty(t, s.Comments)

	reward := signal.HistoryReward
	s, err = f.UpdateStatus(ctx, s.ID, models.Stopped, models.StatusFields{RiskReward: &reward})
	require.NoError(t, err)
	assert.Equal(t, models.Stopped, s.Status)
	assert.Equal(t, reward, s.RiskReward)

	require.NoError(t, f.SetCreationMessageID(ctx, s.ID, 10))
	require.NoError(t, f.SetLastModificationID(ctx, s.ID, 11))

	list, err := f.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id, ok := list[0].ReferenceMessageID()
	assert.True(t, ok)
	assert.Equal(t, 11, id)
	assert.Equal(t, 10, *list[0].TelegramMessageID)

	require.NoError(t, f.Delete(ctx, s.ID))
	list, err = f.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFacadePersistenceErrors(t *testing.T) {
	ctx := context.Background()
	f := NewFacade(NewMemory())

	_, err := f.UpdateStatus(ctx, "missing", models.Completed, models.StatusFields{})
	var pe *signal.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "update-status", pe.Op)
	assert.True(t, errors.Is(err, ErrNoRows))

	err = f.Delete(ctx, "missing")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "delete", pe.Op)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = f.List(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToSignal(t *testing.T) {
	lev := "12.5"
	msg := int64(7)
	name := "bob"
	s, err := ToSignal(Row{
		ID:                "x",
		UserID:            "u2",
		Username:          &name,
		Pair:              "SOLUSDT",
		Type:              "Market",
		Position:          "Long",
		Leverage:          &lev,
		Status:            "take-profit-2",
		TelegramMessageID: &msg,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TakeProfitHit(2), s.Status)
	assert.Equal(t, "12.5", s.Leverage.String())
	assert.Equal(t, 7, *s.TelegramMessageID)
	assert.Equal(t, "bob", s.User.Username)
	assert.Empty(t, s.Entries)

	_, err = ToSignal(Row{ID: "y", Status: "weird"})
	assert.Error(t, err)
}

func TestFacadeLeverageKeepsPrecision(t *testing.T) {
	ctx := context.Background()
	f := NewFacade(NewMemory())

	in := form()
	in.Leverage = "12.123456789012345678"
	s, err := f.Create(ctx, in, owner)
	require.NoError(t, err)
	assert.Equal(t, "12.123456789012345678", s.Leverage.String())

	list, err := f.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "12.123456789012345678", list[0].Leverage.String())

	bad := "x10"
	_, err = ToSignal(Row{ID: "z", Status: "active", Leverage: &bad})
	assert.Error(t, err)
}
