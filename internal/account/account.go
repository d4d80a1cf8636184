package account

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Type is the business category of an account.
type Type string

const (
	TypeCorrente Type = "corrente"
	TypePoupanca Type = "poupança"
)

// Valid reports whether t belongs to the known set of account types.
func (t Type) Valid() bool {
	switch t {
	case TypeCorrente, TypePoupanca:
		return true
	}

	return false
}

var (
	ErrNotFound          = errors.New("account not found")
	ErrDuplicateCPF      = errors.New("cpf already registered")
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrConflict is returned by stores when a write lost a race with another writer
	// and can be retried from a fresh read.
	ErrConflict = errors.New("concurrent update conflict")
	// ErrBalanceOverflow is returned when a credit would push a balance past what int64 holds.
	ErrBalanceOverflow = errors.New("balance out of range")
)

// AddBalance returns balance + delta, refusing results below zero and credits that overflow.
func AddBalance(balance, delta int64) (int64, error) {
	if delta > 0 && balance > math.MaxInt64-delta {
		return 0, ErrBalanceOverflow
	}

	next := balance + delta
	if next < 0 {
		return 0, ErrInsufficientFunds
	}

	return next, nil
}

// Account holds a balance in minor currency units (cents).
type Account struct {
	ID        uuid.UUID
	FullName  string
	Type      Type
	CPF       string
	Balance   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
