// Package memstore is an in-process append-only transaction log.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conta/internal/transaction"
)

type Store struct {
	mu      sync.RWMutex
	records []transaction.Transaction
	index   map[uuid.UUID]int
	now     func() time.Time
}

func New() *Store {
	return &Store{
		index: make(map[uuid.UUID]int),
		now:   time.Now,
	}
}

func (s *Store) Append(_ context.Context, tx *transaction.Transaction) error {
	if err := tx.Details.Validate(); err != nil {
		return fmt.Errorf("%w: %w", transaction.ErrInvalidDetails, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.index[tx.ID]; dup {
		return fmt.Errorf("appending transaction %s: id already recorded", tx.ID)
	}

	tx.CreatedAt = s.now()

	s.index[tx.ID] = len(s.records)
	s.records = append(s.records, *tx)

	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	cp := s.records[i]

	return &cp, nil
}

func (s *Store) List(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*transaction.Transaction, 0, len(s.records))

	for _, rec := range s.records {
		if filter.CPF != nil && !rec.Details.Involves(*filter.CPF) {
			continue
		}

		cp := rec
		out = append(out, &cp)
	}

	return out, nil
}

var _ transaction.Repository = (*Store)(nil)
