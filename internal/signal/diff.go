package signal

import "signal_board/internal/models"

type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeChanged ChangeType = "changed"
	ChangeDeleted ChangeType = "deleted"
)

// Change — одна запись диффа. Index с нуля, позиционный.
type Change struct {
	Type     ChangeType `json:"type"`
	Index    int        `json:"index"`
	OldPrice string     `json:"oldPrice,omitempty"`
	NewPrice string     `json:"newPrice,omitempty"`
}

type Changes struct {
	Entries     []Change `json:"entries"`
	StopLosses  []Change `json:"stopLosses"`
	TakeProfits []Change `json:"takeProfits"`
}

func (c Changes) For(cat models.Category) []Change {
	switch cat {
	case models.CategoryEntries:
		return c.Entries
	case models.CategoryStopLosses:
		return c.StopLosses
	case models.CategoryTakeProfits:
		return c.TakeProfits
	}
	return nil
}

func (c Changes) Empty() bool {
	return len(c.Entries) == 0 && len(c.StopLosses) == 0 && len(c.TakeProfits) == 0
}

// DiffLevels сравнивает списки по позиции, не по id: перестановка уровней
// даёт каскад changed + deleted в хвосте.
func DiffLevels(before, after []models.PriceLevel) []Change {
	var out []Change
	for i, o := range before {
		switch {
		case i >= len(after):
			out = append(out, Change{Type: ChangeDeleted, Index: i, OldPrice: o.Price})
		case after[i].Price != o.Price:
			out = append(out, Change{Type: ChangeChanged, Index: i, OldPrice: o.Price, NewPrice: after[i].Price})
		}
	}
	for i := len(before); i < len(after); i++ {
		out = append(out, Change{Type: ChangeAdded, Index: i, NewPrice: after[i].Price})
	}
	return out
}

func Diff(before, after models.LevelSet) Changes {
	return Changes{
		Entries:     DiffLevels(before.Entries, after.Entries),
		StopLosses:  DiffLevels(before.StopLosses, after.StopLosses),
		TakeProfits: DiffLevels(before.TakeProfits, after.TakeProfits),
	}
}
