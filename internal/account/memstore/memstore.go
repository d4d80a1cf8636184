// Package memstore keeps accounts in process memory. Every method takes the same mutex,
// so each call is atomic with respect to every other call.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conta/internal/account"
)

type Store struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*account.Account
	byCPF    map[string]uuid.UUID
	now      func() time.Time

	// order records insertion so List is stable even when timestamps collide.
	order map[uuid.UUID]uint64
	seq   uint64
}

func New() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]*account.Account),
		byCPF:    make(map[string]uuid.UUID),
		order:    make(map[uuid.UUID]uint64),
		now:      time.Now,
	}
}

func (s *Store) Create(_ context.Context, acc *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byCPF[acc.CPF]; taken {
		return account.ErrDuplicateCPF
	}

	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}

	now := s.now()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	stored := *acc
	s.accounts[acc.ID] = &stored
	s.byCPF[acc.CPF] = acc.ID
	s.seq++
	s.order[acc.ID] = s.seq

	return nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}

	cp := *acc

	return &cp, nil
}

func (s *Store) GetByCPF(_ context.Context, cpf string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byCPF[cpf]
	if !ok {
		return nil, account.ErrNotFound
	}

	cp := *s.accounts[id]

	return &cp, nil
}

func (s *Store) Update(_ context.Context, acc *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[acc.ID]
	if !ok {
		return account.ErrNotFound
	}

	if owner, taken := s.byCPF[acc.CPF]; taken && owner != acc.ID {
		return account.ErrDuplicateCPF
	}

	delete(s.byCPF, current.CPF)

	current.FullName = acc.FullName
	current.Type = acc.Type
	current.CPF = acc.CPF
	current.Balance = acc.Balance
	current.UpdatedAt = s.now()

	s.byCPF[current.CPF] = current.ID
	*acc = *current

	return nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return account.ErrNotFound
	}

	delete(s.byCPF, acc.CPF)
	delete(s.accounts, id)
	delete(s.order, id)

	return nil
}

func (s *Store) List(_ context.Context) ([]*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*account.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		cp := *acc
		out = append(out, &cp)
	}

	slices.SortFunc(out, func(a, b *account.Account) int {
		return cmp.Compare(s.order[a.ID], s.order[b.ID])
	})

	return out, nil
}

func (s *Store) ApplyBalanceDelta(_ context.Context, id uuid.UUID, delta int64) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}

	next, err := account.AddBalance(acc.Balance, delta)
	if err != nil {
		return nil, err
	}

	acc.Balance = next
	acc.UpdatedAt = s.now()

	cp := *acc

	return &cp, nil
}

// ApplyBalanceDeltas validates every delta against the running balances before touching
// any account, so a refused group leaves the store unchanged.
func (s *Store) ApplyBalanceDeltas(_ context.Context, deltas []account.Delta) ([]*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[uuid.UUID]int64, len(deltas))

	for _, d := range deltas {
		acc, ok := s.accounts[d.AccountID]
		if !ok {
			return nil, account.ErrNotFound
		}

		next, seen := pending[d.AccountID]
		if !seen {
			next = acc.Balance
		}

		next, err := account.AddBalance(next, d.Amount)
		if err != nil {
			return nil, err
		}

		pending[d.AccountID] = next
	}

	now := s.now()
	for id, balance := range pending {
		s.accounts[id].Balance = balance
		s.accounts[id].UpdatedAt = now
	}

	out := make([]*account.Account, len(deltas))
	for i, d := range deltas {
		cp := *s.accounts[d.AccountID]
		out[i] = &cp
	}

	return out, nil
}

var (
	_ account.Repository   = (*Store)(nil)
	_ account.GroupApplier = (*Store)(nil)
)
