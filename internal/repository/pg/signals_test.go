package pg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_board/internal/repository"
)

func TestMarshalLevels(t *testing.T) {
	b, err := marshalLevels(nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = marshalLevels([]repository.LevelRow{{ID: "a", Price: "1.5"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","price":"1.5"}]`, string(b))
}

func TestFromRecord(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	lev := "12.123456789012345678"
	row, err := fromRecord(record{
		Leverage:    &lev,
		ID:          "s1",
		UserID:      "u1",
		Pair:        "BTCUSDT",
		Status:      "pending",
		CreatedAt:   created,
		Entries:     []byte(`[{"id":"e1","price":"50000"}]`),
		StopLosses:  []byte(`[]`),
		TakeProfits: []byte(`[{"id":"t1","price":"55000"},{"id":"t2","price":"60000"}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, "50000", row.Entries[0].Price)
	assert.Empty(t, row.StopLosses)
	assert.Len(t, row.TakeProfits, 2)
	assert.Equal(t, created, row.CreatedAt)
	require.NotNil(t, row.Leverage)
	assert.Equal(t, lev, *row.Leverage)

	_, err = fromRecord(record{Entries: []byte(`{`), StopLosses: []byte(`[]`), TakeProfits: []byte(`[]`)})
	assert.Error(t, err)
}
