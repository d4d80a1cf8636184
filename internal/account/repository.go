package account

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=account
type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByCPF(ctx context.Context, cpf string) (*Account, error)
	Update(ctx context.Context, acc *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Account, error)

	// ApplyBalanceDelta adds delta to the balance as a single guarded write.
	// The write is refused with ErrInsufficientFunds when the result would be negative.
	ApplyBalanceDelta(ctx context.Context, id uuid.UUID, delta int64) (*Account, error)
}

// Delta is one balance change inside a group.
type Delta struct {
	AccountID uuid.UUID
	Amount    int64
}

// GroupApplier is implemented by stores that can apply several balance deltas
// as one all-or-nothing unit. Accounts are returned in the order of the deltas.
type GroupApplier interface {
	ApplyBalanceDeltas(ctx context.Context, deltas []Delta) ([]*Account, error)
}
