package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory — бэкенд в памяти (тесты, запуск без БД).
type Memory struct {
	mu    sync.RWMutex
	data  map[string]Row
	order []string

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]Row),
		now:  time.Now,
	}
}

// WithClock подменяет часы для created_at.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) SelectAll(ctx context.Context) (rows []Row, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("memory.SelectAll: %w", err)
		}
	}()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	rows = make([]Row, 0, len(m.order))
	for _, id := range m.order {
		rows = append(rows, CloneRow(m.data[id]))
	}
	return rows, nil
}

func (m *Memory) Insert(ctx context.Context, row Row) (out Row, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("memory.Insert: %w", err)
		}
	}()
	if err = ctx.Err(); err != nil {
		return Row{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if _, exists := m.data[row.ID]; exists {
		return Row{}, fmt.Errorf("duplicate id %s", row.ID)
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = m.now().UTC()
	}
	m.data[row.ID] = CloneRow(row)
	m.order = append(m.order, row.ID)
	return CloneRow(row), nil
}

func (m *Memory) Patch(ctx context.Context, id string, p Patch) (out Row, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("memory.Patch: %w", err)
		}
	}()
	if err = ctx.Err(); err != nil {
		return Row{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.data[id]
	if !ok {
		return Row{}, ErrNoRows
	}
	row = p.Apply(row)
	m.data[id] = row
	return CloneRow(row), nil
}

func (m *Memory) Remove(ctx context.Context, id string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("memory.Remove: %w", err)
		}
	}()
	if err = ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return ErrNoRows
	}
	delete(m.data, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Load заменяет содержимое (для файлового снапшота).
func (m *Memory) Load(rows []Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]Row, len(rows))
	m.order = m.order[:0]
	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		if _, dup := m.data[r.ID]; !dup {
			m.order = append(m.order, r.ID)
		}
		m.data[r.ID] = CloneRow(r)
	}
}
