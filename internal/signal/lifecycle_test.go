package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_board/internal/models"
)

func newSignal(st models.Status) *models.TradingSignal {
	return &models.TradingSignal{
		ID:          "s1",
		Pair:        "BTCUSDT",
		Type:        models.OrderLimit,
		Position:    models.PositionLong,
		Entries:     levels("50000", "49000"),
		StopLosses:  levels("48000"),
		TakeProfits: levels("55000", "60000"),
		Status:      st,
	}
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, models.Active, InitialStatus(models.OrderMarket))
	assert.Equal(t, models.Pending, InitialStatus(models.OrderLimit))
}

func TestApplyActivate(t *testing.T) {
	tr, err := Apply(newSignal(models.Pending), Event{Kind: EventActivate})
	require.NoError(t, err)
	assert.Equal(t, models.Active, tr.To)
	assert.Equal(t, ActivationAutomatic, tr.Event.Mode)
	assert.Equal(t, "50000", tr.Price)

	tr, err = Apply(newSignal(models.Pending), Event{Kind: EventActivate, Mode: ActivationManual, Price: " 50100 "})
	require.NoError(t, err)
	assert.Equal(t, "50100", tr.Price)

	_, err = Apply(newSignal(models.Pending), Event{Kind: EventActivate, Mode: ActivationManual})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "manualPrice", ve.Field)

	_, err = Apply(newSignal(models.Active), Event{Kind: EventActivate})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestApplyHits(t *testing.T) {
	tr, err := Apply(newSignal(models.Active), Event{Kind: EventTakeProfitHit, Level: 2})
	require.NoError(t, err)
	assert.Equal(t, models.TakeProfitHit(2), tr.To)
	assert.Equal(t, "60000", tr.Price)

	tr, err = Apply(newSignal(models.TakeProfitHit(1)), Event{Kind: EventStopLossHit, Level: 1})
	require.NoError(t, err)
	assert.Equal(t, models.StopLossHit(1), tr.To)
	assert.True(t, tr.To.IsClosed())

	tr, err = Apply(newSignal(models.Active), Event{Kind: EventEntryHit, Level: 2})
	require.NoError(t, err)
	assert.Equal(t, "49000", tr.Price)

	tr, err = Apply(newSignal(models.TakeProfitHit(1)), Event{Kind: EventCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.Completed, tr.To)
	assert.Equal(t, "60000", tr.Price)

	// пропуск уровня допустим
	_, err = Apply(newSignal(models.Pending), Event{Kind: EventTakeProfitHit, Level: 2})
	assert.NoError(t, err)
}

func TestApplyRejects(t *testing.T) {
	var ve *ValidationError

	_, err := Apply(newSignal(models.Active), Event{Kind: EventTakeProfitHit, Level: 3})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "targetIndex", ve.Field)

	_, err = Apply(newSignal(models.Active), Event{Kind: EventStopLossHit, Level: 0})
	assert.ErrorAs(t, err, &ve)

	_, err = Apply(newSignal(models.Completed), Event{Kind: EventTakeProfitHit, Level: 1})
	assert.ErrorIs(t, err, ErrIllegalTransition)

	single := newSignal(models.Active)
	single.Entries = levels("50000")
	_, err = Apply(single, Event{Kind: EventEntryHit, Level: 1})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestParseEventKind(t *testing.T) {
	k, err := ParseEventKind("takeProfit")
	require.NoError(t, err)
	assert.Equal(t, EventTakeProfitHit, k)

	_, err = ParseEventKind("moon")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestPlanRemoval(t *testing.T) {
	assert.Equal(t, RemovalPlan{Action: RemoveCancel}, PlanRemoval(models.Pending))
	assert.Equal(t, RemovalPlan{Action: RemoveSoftClose, SoftStatus: models.Stopped}, PlanRemoval(models.Active))
	assert.Equal(t, RemovalPlan{Action: RemoveSoftClose, SoftStatus: models.Stopped}, PlanRemoval(models.EntryHit(1)))
	assert.Equal(t, RemovalPlan{Action: RemoveSoftClose, SoftStatus: models.PartialProfits}, PlanRemoval(models.TakeProfitHit(2)))
	for _, st := range []models.Status{models.Completed, models.Stopped, models.PartialProfits, models.StopLossHit(1)} {
		assert.Equal(t, RemoveHardDelete, PlanRemoval(st).Action, st.String())
	}
}
