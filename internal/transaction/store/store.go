package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conta/internal/transaction"
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

// scanTransaction reads a row in the order id, details, created_at.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var raw []byte

	if err := s.Scan(&tx.ID, &raw, &tx.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, &tx.Details); err != nil {
		return nil, fmt.Errorf("decoding details of %s: %w", tx.ID, err)
	}

	return &tx, nil
}

func (s *Store) Append(ctx context.Context, tx *transaction.Transaction) error {
	if err := tx.Details.Validate(); err != nil {
		return fmt.Errorf("%w: %w", transaction.ErrInvalidDetails, err)
	}

	details, err := json.Marshal(tx.Details)
	if err != nil {
		return fmt.Errorf("encoding details: %w", err)
	}

	query := `
		INSERT INTO transactions (id, details, created_at)
		VALUES ($1, $2, NOW())
		RETURNING created_at
	`

	if err := s.db.QueryRowContext(ctx, query, tx.ID, string(details)).Scan(&tx.CreatedAt); err != nil {
		return fmt.Errorf("appending transaction: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT id, details, created_at FROM transactions WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT id, details, created_at FROM transactions`

	var args []any

	if filter.CPF != nil {
		query += ` WHERE details->>'cpf' = $1 OR details->>'receiverCpf' = $1 OR details->>'depositerCpf' = $1`

		args = append(args, *filter.CPF)
	}

	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

var _ transaction.Repository = (*Store)(nil)
