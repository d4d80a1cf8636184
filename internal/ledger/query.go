package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conta/internal/account"
	"github.com/MrJamesThe3rd/conta/internal/transaction"
)

// Query serves read-only lookups over accounts and the transaction log.
type Query struct {
	accounts     account.Repository
	transactions transaction.Repository
}

func NewQuery(accounts account.Repository, transactions transaction.Repository) *Query {
	return &Query{accounts: accounts, transactions: transactions}
}

func (q *Query) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	accs, err := q.accounts.List(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list accounts", Err: err}
	}

	if accs == nil {
		accs = []*account.Account{}
	}

	return accs, nil
}

func (q *Query) ListTransactions(ctx context.Context) ([]*transaction.Transaction, error) {
	return q.listTransactions(ctx, "list transactions", transaction.ListFilter{})
}

// ListTransactionsByCPF returns every transaction where cpf appears on either side,
// including records of accounts that have since been deleted.
func (q *Query) ListTransactionsByCPF(ctx context.Context, cpf string) ([]*transaction.Transaction, error) {
	cpf = account.NormalizeCPF(cpf)
	if !account.ValidCPF(cpf) {
		return nil, invalid("cpf", "must be a valid cpf")
	}

	return q.listTransactions(ctx, "list transactions by cpf", transaction.ListFilter{CPF: &cpf})
}

func (q *Query) listTransactions(ctx context.Context, op string, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	txs, err := q.transactions.List(ctx, filter)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}

	if txs == nil {
		txs = []*transaction.Transaction{}
	}

	return txs, nil
}

func (q *Query) FindAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, err := q.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, notFound("account", id.String())
		}

		return nil, &StorageError{Op: "find account", Err: err}
	}

	return acc, nil
}

func (q *Query) FindAccountByCPF(ctx context.Context, cpf string) (*account.Account, error) {
	cpf = account.NormalizeCPF(cpf)
	if !account.ValidCPF(cpf) {
		return nil, invalid("cpf", "must be a valid cpf")
	}

	acc, err := q.accounts.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, notFound("account", cpf)
		}

		return nil, &StorageError{Op: "find account by cpf", Err: err}
	}

	return acc, nil
}

func (q *Query) FindTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	tx, err := q.transactions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			return nil, notFound("transaction", id.String())
		}

		return nil, &StorageError{Op: "find transaction", Err: err}
	}

	return tx, nil
}
