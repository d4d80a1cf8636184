package transaction

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=transaction
type Repository interface {
	// Append stores a new record. Records are never updated or removed afterwards.
	Append(ctx context.Context, tx *Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

// ListFilter narrows List. The zero value lists everything.
type ListFilter struct {
	// CPF keeps only records where the cpf appears on either side.
	CPF *string
}
