package models

import (
	"fmt"

	"github.com/google/uuid"
)

// PriceLevel — один уровень цены. Price хранится строкой, как её ввёл трейдер.
type PriceLevel struct {
	ID    string `json:"id" validate:"required"`
	Price string `json:"price"`
}

type Category int

const (
	CategoryEntries Category = iota
	CategoryStopLosses
	CategoryTakeProfits
)

// Categories в порядке вывода в сообщениях.
var Categories = []Category{CategoryEntries, CategoryStopLosses, CategoryTakeProfits}

func (c Category) String() string {
	switch c {
	case CategoryEntries:
		return "entries"
	case CategoryStopLosses:
		return "stopLosses"
	case CategoryTakeProfits:
		return "takeProfits"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func (c Category) Label() string {
	switch c {
	case CategoryEntries:
		return "Entry"
	case CategoryStopLosses:
		return "Stop Loss"
	case CategoryTakeProfits:
		return "Take Profit"
	}
	return c.String()
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown price level category %q", s)
}

var newLevelID = uuid.NewString

// LevelSet — три упорядоченных списка уровней, в каждом минимум один.
type LevelSet struct {
	Entries     []PriceLevel
	StopLosses  []PriceLevel
	TakeProfits []PriceLevel
}

// NewLevelSet возвращает пустую форму: по одному пустому уровню в категории.
func NewLevelSet() LevelSet {
	return LevelSet{
		Entries:     []PriceLevel{{ID: newLevelID()}},
		StopLosses:  []PriceLevel{{ID: newLevelID()}},
		TakeProfits: []PriceLevel{{ID: newLevelID()}},
	}
}

func (s *LevelSet) Levels(c Category) []PriceLevel {
	switch c {
	case CategoryEntries:
		return s.Entries
	case CategoryStopLosses:
		return s.StopLosses
	case CategoryTakeProfits:
		return s.TakeProfits
	}
	return nil
}

func (s *LevelSet) put(c Category, levels []PriceLevel) {
	switch c {
	case CategoryEntries:
		s.Entries = levels
	case CategoryStopLosses:
		s.StopLosses = levels
	case CategoryTakeProfits:
		s.TakeProfits = levels
	}
}

// Add добавляет пустой уровень в конец категории и возвращает его id.
func (s *LevelSet) Add(c Category) string {
	id := newLevelID()
	levels := s.Levels(c)
	out := make([]PriceLevel, len(levels), len(levels)+1)
	copy(out, levels)
	s.put(c, append(out, PriceLevel{ID: id}))
	return id
}

// Remove удаляет уровень по id. Последний уровень категории удалить нельзя.
func (s *LevelSet) Remove(c Category, id string) bool {
	levels := s.Levels(c)
	if len(levels) <= 1 {
		return false
	}
	out := make([]PriceLevel, 0, len(levels)-1)
	for _, l := range levels {
		if l.ID != id {
			out = append(out, l)
		}
	}
	if len(out) == len(levels) {
		return false
	}
	s.put(c, out)
	return true
}

// SetPrice меняет цену уровня с указанным id, остальные не трогает.
func (s *LevelSet) SetPrice(c Category, id, value string) bool {
	levels := s.Levels(c)
	out := make([]PriceLevel, len(levels))
	found := false
	for i, l := range levels {
		if l.ID == id {
			l.Price = value
			found = true
		}
		out[i] = l
	}
	if found {
		s.put(c, out)
	}
	return found
}

func (s LevelSet) Clone() LevelSet {
	return LevelSet{
		Entries:     cloneLevels(s.Entries),
		StopLosses:  cloneLevels(s.StopLosses),
		TakeProfits: cloneLevels(s.TakeProfits),
	}
}

func cloneLevels(in []PriceLevel) []PriceLevel {
	if in == nil {
		return nil
	}
	out := make([]PriceLevel, len(in))
	copy(out, in)
	return out
}
