package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/conta/internal/account"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeNumericOutOfRange    = "22003"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, full_name, acc_type, cpf, balance, created_at, updated_at
const accountColumns = `id, full_name, acc_type, cpf, balance, created_at, updated_at`

func scanAccount(s scanner) (*account.Account, error) {
	var acc account.Account

	var accType string

	if err := s.Scan(
		&acc.ID, &acc.FullName, &accType, &acc.CPF, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	acc.Type = account.Type(accType)

	return &acc, nil
}

// mapError translates driver errors into account sentinels, keeping the driver error in the chain.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %w", account.ErrDuplicateCPF, err)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %w", account.ErrConflict, err)
	case codeNumericOutOfRange:
		return fmt.Errorf("%w: %w", account.ErrBalanceOverflow, err)
	}

	return err
}

func (s *Store) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (full_name, acc_type, cpf, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		acc.FullName,
		acc.Type,
		acc.CPF,
		acc.Balance,
	).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating account: %w", mapError(err))
	}

	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return acc, nil
}

func (s *Store) GetByCPF(ctx context.Context, cpf string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE cpf = $1`

	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, cpf))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account by cpf: %w", err)
	}

	return acc, nil
}

func (s *Store) Update(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET full_name = $1, acc_type = $2, cpf = $3, balance = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + accountColumns

	updated, err := scanAccount(s.db.QueryRowContext(ctx, query,
		acc.FullName,
		acc.Type,
		acc.CPF,
		acc.Balance,
		acc.ID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.ErrNotFound
		}

		return fmt.Errorf("updating account: %w", mapError(err))
	}

	*acc = *updated

	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if n == 0 {
		return account.ErrNotFound
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*account.Account{}

	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accounts, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// The balance guard lives in the WHERE clause, so the check and the write happen under the
// same row lock and a concurrent writer cannot slip in between them.
const guardedDeltaQuery = `
	UPDATE accounts
	SET balance = balance + $1, updated_at = NOW()
	WHERE id = $2 AND balance + $1 >= 0
	RETURNING ` + accountColumns

func applyDelta(ctx context.Context, q execer, id uuid.UUID, delta int64) (*account.Account, error) {
	acc, err := scanAccount(q.QueryRowContext(ctx, guardedDeltaQuery, delta, id))
	if err == nil {
		return acc, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("applying balance delta: %w", mapError(err))
	}

	// No row matched: either the account is gone or the guard refused the write.
	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking account existence: %w", mapError(err))
	}

	if !exists {
		return nil, account.ErrNotFound
	}

	return nil, account.ErrInsufficientFunds
}

func (s *Store) ApplyBalanceDelta(ctx context.Context, id uuid.UUID, delta int64) (*account.Account, error) {
	return applyDelta(ctx, s.db, id, delta)
}

// ApplyBalanceDeltas runs every delta inside one database transaction. Rows are written in
// ascending id order so two groups touching the same accounts always lock them in the same order.
func (s *Store) ApplyBalanceDeltas(ctx context.Context, deltas []account.Delta) ([]*account.Account, error) {
	order := make([]int, len(deltas))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return bytes.Compare(deltas[a].AccountID[:], deltas[b].AccountID[:])
	})

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	out := make([]*account.Account, len(deltas))

	for _, i := range order {
		acc, err := applyDelta(ctx, dbTx, deltas[i].AccountID, deltas[i].Amount)
		if err != nil {
			return nil, err
		}

		out[i] = acc
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", mapError(err))
	}

	return out, nil
}

var (
	_ account.Repository   = (*Store)(nil)
	_ account.GroupApplier = (*Store)(nil)
)
