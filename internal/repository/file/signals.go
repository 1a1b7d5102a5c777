package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"signal_board/internal/repository"
)

const defaultPath = "data/signals.json"

// Signals — снапшот таблицы signals в json-файле. Сам индекс живёт в repository.Memory.
type Signals struct {
	path string

	mu     sync.Mutex
	mem    *repository.Memory
	loaded bool
}

func NewSignals(path string) *Signals {
	if path == "" {
		path = defaultPath
	}
	return &Signals{
		path: path,
		mem:  repository.NewMemory(),
	}
}

func (s *Signals) SelectAll(ctx context.Context) ([]repository.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	return s.mem.SelectAll(ctx)
}

func (s *Signals) Insert(ctx context.Context, row repository.Row) (out repository.Row, err error) {
	err = s.mutate(ctx, func() (err error) {
		out, err = s.mem.Insert(ctx, row)
		return err
	})
	return out, err
}

func (s *Signals) Patch(ctx context.Context, id string, p repository.Patch) (out repository.Row, err error) {
	err = s.mutate(ctx, func() (err error) {
		out, err = s.mem.Patch(ctx, id, p)
		return err
	})
	return out, err
}

func (s *Signals) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, func() error {
		return s.mem.Remove(ctx, id)
	})
}

// mutate применяет изменение к индексу и пишет снапшот. Если запись на диск
// не удалась, индекс откатывается к состоянию до изменения.
func (s *Signals) mutate(ctx context.Context, apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	prev, err := s.mem.SelectAll(ctx)
	if err != nil {
		return err
	}
	if err := apply(); err != nil {
		return err
	}
	if err := s.saveLocked(ctx); err != nil {
		s.mem.Load(prev)
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

// ---- storage format ----

type snapshot struct {
	UpdatedAt time.Time        `json:"updated_at"`
	Signals   []repository.Row `json:"signals"`
}

func (s *Signals) loadLocked() error {
	if s.loaded {
		return nil
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	var snap snapshot
	if err := sonic.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	s.mem.Load(snap.Signals)

	s.loaded = true
	return nil
}

func (s *Signals) saveLocked(ctx context.Context) error {
	rows, err := s.mem.SelectAll(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	b, err := sonic.ConfigStd.MarshalIndent(&snapshot{UpdatedAt: time.Now().UTC(), Signals: rows}, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path) // атомарно
}
