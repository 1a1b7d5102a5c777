package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"

	"signal_board/internal/repository"
	"signal_board/internal/repository/pg/query"
	"signal_board/pkg/db"
)

// Signals — таблица signals в postgres.
type Signals struct {
	db  *db.PgTxManager
	sql *query.Queries
}

func NewSignals(db *db.PgTxManager) *Signals {
	return &Signals{
		db:  db,
		sql: query.New(),
	}
}

func (s *Signals) SelectAll(ctx context.Context) (rows []repository.Row, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SelectAll: %w", err)
		}
	}()

	resp, err := s.sql.SelectAll(ctx, s.db.Conn())
	if err != nil {
		return nil, err
	}
	rows = make([]repository.Row, 0, len(resp))
	for _, r := range resp {
		row, err := fromRecord(record(*r))
		if err != nil {
			return nil, fmt.Errorf("signal %s: %w", r.ID, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Insert пишет профиль автора и сигнал в одной транзакции.
func (s *Signals) Insert(ctx context.Context, row repository.Row) (out repository.Row, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Insert: %w", err)
		}
	}()

	params := &query.InsertParams{
		UserID:         row.UserID,
		Pair:           row.Pair,
		Type:           row.Type,
		Position:       row.Position,
		Leverage:       row.Leverage,
		Comments:       row.Comments,
		TradingViewUrl: row.TradingViewURL,
		RiskReward:     row.RiskReward,
		Status:         row.Status,
	}
	if params.Entries, err = sonic.Marshal(row.Entries); err != nil {
		return out, err
	}
	if params.StopLosses, err = sonic.Marshal(row.StopLosses); err != nil {
		return out, err
	}
	if params.TakeProfits, err = sonic.Marshal(row.TakeProfits); err != nil {
		return out, err
	}

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		if row.Username != nil {
			if err := s.sql.UpsertProfile(ctxTx, tx, &query.UpsertProfileParams{
				ID:       row.UserID,
				Username: *row.Username,
			}); err != nil {
				return err
			}
		}
		res, err := s.sql.Insert(ctxTx, tx, params)
		if err != nil {
			return err
		}
		out = repository.CloneRow(row)
		out.ID = res.ID
		out.CreatedAt = res.CreatedAt
		if res.Username != nil {
			out.Username = res.Username
		}
		return nil
	})
	return out, err
}

func (s *Signals) Patch(ctx context.Context, id string, p repository.Patch) (out repository.Row, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Patch: %w", err)
		}
	}()

	params := &query.PatchParams{
		ID:                 id,
		Comments:           p.Comments,
		TradingViewUrl:     p.TradingViewURL,
		RiskReward:         p.RiskReward,
		Status:             p.Status,
		TelegramMessageID:  p.TelegramMessageID,
		LastModificationID: p.LastModificationID,
	}
	if params.Entries, err = marshalLevels(p.Entries); err != nil {
		return out, err
	}
	if params.StopLosses, err = marshalLevels(p.StopLosses); err != nil {
		return out, err
	}
	if params.TakeProfits, err = marshalLevels(p.TakeProfits); err != nil {
		return out, err
	}

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		res, err := s.sql.Patch(ctxTx, tx, params)
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNoRows
		}
		if err != nil {
			return err
		}
		out, err = fromRecord(record(*res))
		return err
	})
	return out, err
}

func (s *Signals) Remove(ctx context.Context, id string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Remove: %w", err)
		}
	}()

	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		n, err := s.sql.Remove(ctxTx, tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNoRows
		}
		return nil
	})
}

// record — общая форма SelectAllRow и PatchRow.
type record query.SelectAllRow

func fromRecord(r record) (repository.Row, error) {
	row := repository.Row{
		ID:                 r.ID,
		UserID:             r.UserID,
		Username:           r.Username,
		Pair:               r.Pair,
		Type:               r.Type,
		Position:           r.Position,
		Leverage:           r.Leverage,
		Comments:           r.Comments,
		TradingViewURL:     r.TradingViewUrl,
		RiskReward:         r.RiskReward,
		CreatedAt:          r.CreatedAt,
		Status:             r.Status,
		TelegramMessageID:  r.TelegramMessageID,
		LastModificationID: r.LastModificationID,
	}
	if err := sonic.Unmarshal(r.Entries, &row.Entries); err != nil {
		return row, fmt.Errorf("entries: %w", err)
	}
	if err := sonic.Unmarshal(r.StopLosses, &row.StopLosses); err != nil {
		return row, fmt.Errorf("stop_losses: %w", err)
	}
	if err := sonic.Unmarshal(r.TakeProfits, &row.TakeProfits); err != nil {
		return row, fmt.Errorf("take_profits: %w", err)
	}
	return row, nil
}

// marshalLevels: nil -> NULL, колонка не меняется.
func marshalLevels(levels []repository.LevelRow) ([]byte, error) {
	if levels == nil {
		return nil, nil
	}
	return sonic.Marshal(levels)
}
