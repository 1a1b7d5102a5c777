package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"signal_board/internal/models"
)

func levels(prices ...string) []models.PriceLevel {
	out := make([]models.PriceLevel, len(prices))
	for i, p := range prices {
		out[i] = models.PriceLevel{ID: "id-" + p, Price: p}
	}
	return out
}

func TestDiffLevels(t *testing.T) {
	t.Run("unchanged", func(t *testing.T) {
		assert.Empty(t, DiffLevels(levels("1", "2"), levels("1", "2")))
	})

	t.Run("changed and added", func(t *testing.T) {
		got := DiffLevels(levels("100"), levels("101", "105"))
		assert.Equal(t, []Change{
			{Type: ChangeChanged, Index: 0, OldPrice: "100", NewPrice: "101"},
			{Type: ChangeAdded, Index: 1, NewPrice: "105"},
		}, got)
	})

	t.Run("deleted tail", func(t *testing.T) {
		got := DiffLevels(levels("1", "2", "3"), levels("1"))
		assert.Equal(t, []Change{
			{Type: ChangeDeleted, Index: 1, OldPrice: "2"},
			{Type: ChangeDeleted, Index: 2, OldPrice: "3"},
		}, got)
	})

	// удаление из середины сравнивается по позиции, а не по id
	t.Run("positional cascade", func(t *testing.T) {
		got := DiffLevels(levels("1", "2", "3"), levels("1", "3"))
		assert.Equal(t, []Change{
			{Type: ChangeChanged, Index: 1, OldPrice: "2", NewPrice: "3"},
			{Type: ChangeDeleted, Index: 2, OldPrice: "3"},
		}, got)
	})
}

func TestDiff(t *testing.T) {
	before := models.LevelSet{Entries: levels("1"), StopLosses: levels("0.5"), TakeProfits: levels("2")}
	after := models.LevelSet{Entries: levels("1"), StopLosses: levels("0.5"), TakeProfits: levels("2", "3")}

	ch := Diff(before, after)
	assert.False(t, ch.Empty())
	assert.Empty(t, ch.For(models.CategoryEntries))
	assert.Len(t, ch.For(models.CategoryTakeProfits), 1)

	assert.True(t, Diff(before, before).Empty())
}
