package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the repositories can run
// against either a bare connection or a transaction-scoped view.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLStore struct {
	db *sql.DB
	q  DBTX
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

func (s *SQLStore) Slots() SlotStore {
	return &SlotRepository{q: s.q}
}

func (s *SQLStore) Swaps() SwapRequestStore {
	return &SwapRequestRepository{q: s.q}
}

func (s *SQLStore) Users() UserStore {
	return &UserRepository{q: s.q}
}

func (s *SQLStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fmt.Errorf("nested transactions are not supported")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLStore{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
