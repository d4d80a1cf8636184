// Package ledger owns every balance change: account lifecycle, transfers, deposits and
// withdrawals, and the transaction record each movement leaves behind.
//
// Balance writes go through account.Repository.ApplyBalanceDelta, which checks and writes in one
// guarded step, so two concurrent withdrawals can never both spend the same money. A store
// reporting account.ErrConflict makes the engine restart the whole read, validate and write
// sequence, up to the configured retry budget.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conta/internal/account"
	"github.com/MrJamesThe3rd/conta/internal/transaction"
)

const DefaultMaxRetries = 3

// MaxAmount caps a single movement: one trillion reais, in cents.
const MaxAmount int64 = 100_000_000_000_000

type Engine struct {
	accounts     account.Repository
	transactions transaction.Repository
	logger       *slog.Logger
	maxRetries   int
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMaxRetries sets how many times an operation is restarted after a storage conflict.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

func NewEngine(accounts account.Repository, transactions transaction.Repository, opts ...Option) *Engine {
	e := &Engine{
		accounts:     accounts,
		transactions: transactions,
		logger:       slog.Default(),
		maxRetries:   DefaultMaxRetries,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

type CreateAccountParams struct {
	FullName string
	Type     account.Type
	CPF      string
	Balance  int64
}

// UpdateAccountParams replaces every mutable field of an account.
type UpdateAccountParams struct {
	FullName string
	Type     account.Type
	CPF      string
	Balance  int64
}

type TransferParams struct {
	ReceiverCPF  string
	DepositerCPF string
	Amount       int64
}

// MovementParams describes a deposit or a withdrawal.
type MovementParams struct {
	CPF    string
	Amount int64
}

func validateProfile(fullName string, accType account.Type, cpf string, balance int64) error {
	if strings.TrimSpace(fullName) == "" {
		return invalid("fullName", "must not be empty")
	}

	if !accType.Valid() {
		return invalid("accType", fmt.Sprintf("must be %q or %q", account.TypeCorrente, account.TypePoupanca))
	}

	if !account.ValidCPF(cpf) {
		return invalid("cpf", "must be a valid cpf")
	}

	if balance < 0 {
		return invalid("balance", "must not be negative")
	}

	return nil
}

func validateMovement(field, cpf string, amount int64) error {
	if !account.ValidCPF(cpf) {
		return invalid(field, "must be a valid cpf")
	}

	if amount <= 0 {
		return invalid("amount", "must be greater than zero")
	}

	if amount > MaxAmount {
		return invalid("amount", fmt.Sprintf("must not exceed %d", MaxAmount))
	}

	return nil
}

// creditFits refuses a credit that would push the balance of cpf past what int64 holds.
func creditFits(cpf string, balance, amount int64) error {
	if balance > math.MaxInt64-amount {
		return balanceOverflow(cpf)
	}

	return nil
}

func balanceOverflow(cpf string) error {
	return invalid("amount", "would overflow the balance of account "+cpf)
}

func (e *Engine) CreateAccount(ctx context.Context, p CreateAccountParams) (*account.Account, error) {
	const op = "create account"

	cpf := account.NormalizeCPF(p.CPF)
	if err := validateProfile(p.FullName, p.Type, cpf, p.Balance); err != nil {
		return nil, err
	}

	_, err := e.accounts.GetByCPF(ctx, cpf)
	if err == nil {
		return nil, fmt.Errorf("%s: cpf %s: %w", op, cpf, ErrAlreadyExists)
	}

	if !errors.Is(err, account.ErrNotFound) {
		return nil, storeErr(op, err)
	}

	acc := &account.Account{
		FullName: strings.TrimSpace(p.FullName),
		Type:     p.Type,
		CPF:      cpf,
		Balance:  p.Balance,
	}
	if err := e.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, account.ErrDuplicateCPF) {
			return nil, fmt.Errorf("%s: cpf %s: %w", op, cpf, ErrAlreadyExists)
		}

		return nil, storeErr(op, err)
	}

	e.logger.Info("account created", "account_id", acc.ID, "cpf", acc.CPF, "type", acc.Type)

	return acc, nil
}

// Transfer moves amount from the depositer to the receiver and returns the id of the
// transaction record. The receiver is resolved first, so when both cpfs are unknown the
// error names the receiver.
func (e *Engine) Transfer(ctx context.Context, p TransferParams) (uuid.UUID, error) {
	const op = "transfer"

	receiverCPF := account.NormalizeCPF(p.ReceiverCPF)
	depositerCPF := account.NormalizeCPF(p.DepositerCPF)

	if !account.ValidCPF(receiverCPF) {
		return uuid.Nil, invalid("receiverCpf", "must be a valid cpf")
	}

	if err := validateMovement("depositerCpf", depositerCPF, p.Amount); err != nil {
		return uuid.Nil, err
	}

	if receiverCPF == depositerCPF {
		return uuid.Nil, ErrSameAccount
	}

	var receiver, depositer *account.Account

	err := e.retry(ctx, op, func() error {
		var err error

		receiver, err = e.resolve(ctx, op, "receiver account", receiverCPF)
		if err != nil {
			return err
		}

		depositer, err = e.resolve(ctx, op, "depositer account", depositerCPF)
		if err != nil {
			return err
		}

		if depositer.Balance < p.Amount {
			return fmt.Errorf("%s: depositer account %s: %w", op, depositerCPF, ErrInsufficientFunds)
		}

		if err := creditFits(receiverCPF, receiver.Balance, p.Amount); err != nil {
			return err
		}

		return e.move(ctx, op, depositer, receiver, p.Amount)
	})
	if err != nil {
		return uuid.Nil, err
	}

	return e.record(ctx, op, transaction.TransferDetails(receiverCPF, depositerCPF, p.Amount), depositer.ID, receiver.ID)
}

func (e *Engine) Deposit(ctx context.Context, p MovementParams) (uuid.UUID, error) {
	const op = "deposit"

	cpf := account.NormalizeCPF(p.CPF)
	if err := validateMovement("cpf", cpf, p.Amount); err != nil {
		return uuid.Nil, err
	}

	var acc *account.Account

	err := e.retry(ctx, op, func() error {
		current, err := e.resolve(ctx, op, "account", cpf)
		if err != nil {
			return err
		}

		if err := creditFits(cpf, current.Balance, p.Amount); err != nil {
			return err
		}

		acc, err = e.accounts.ApplyBalanceDelta(ctx, current.ID, p.Amount)

		return e.deltaErr(op, cpf, err)
	})
	if err != nil {
		return uuid.Nil, err
	}

	return e.record(ctx, op, transaction.DepositDetails(cpf, p.Amount), acc.ID)
}

func (e *Engine) Withdraw(ctx context.Context, p MovementParams) (uuid.UUID, error) {
	const op = "withdraw"

	cpf := account.NormalizeCPF(p.CPF)
	if err := validateMovement("cpf", cpf, p.Amount); err != nil {
		return uuid.Nil, err
	}

	var acc *account.Account

	err := e.retry(ctx, op, func() error {
		current, err := e.resolve(ctx, op, "account", cpf)
		if err != nil {
			return err
		}

		// Early exit only; the store re-checks the balance as part of the write.
		if current.Balance < p.Amount {
			return fmt.Errorf("%s: account %s: %w", op, cpf, ErrInsufficientFunds)
		}

		acc, err = e.accounts.ApplyBalanceDelta(ctx, current.ID, -p.Amount)

		return e.deltaErr(op, cpf, err)
	})
	if err != nil {
		return uuid.Nil, err
	}

	return e.record(ctx, op, transaction.WithdrawDetails(cpf, p.Amount), acc.ID)
}

// UpdateAccount overwrites the profile and the balance of an account. It is an administrative
// operation: the balance is set directly, no transaction record is written, and a changed
// balance is logged at warn level so it can be audited.
func (e *Engine) UpdateAccount(ctx context.Context, id uuid.UUID, p UpdateAccountParams) (*account.Account, error) {
	const op = "update account"

	cpf := account.NormalizeCPF(p.CPF)
	if err := validateProfile(p.FullName, p.Type, cpf, p.Balance); err != nil {
		return nil, err
	}

	before, err := e.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, notFound("account", id.String())
		}

		return nil, storeErr(op, err)
	}

	acc := &account.Account{
		ID:       id,
		FullName: strings.TrimSpace(p.FullName),
		Type:     p.Type,
		CPF:      cpf,
		Balance:  p.Balance,
	}
	if err := e.accounts.Update(ctx, acc); err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			return nil, notFound("account", id.String())
		case errors.Is(err, account.ErrDuplicateCPF):
			return nil, fmt.Errorf("%s: cpf %s: %w", op, cpf, ErrAlreadyExists)
		}

		return nil, storeErr(op, err)
	}

	if before.Balance != acc.Balance {
		e.logger.Warn("balance overwritten outside ledger operations",
			"account_id", id,
			"cpf", acc.CPF,
			"from", before.Balance,
			"to", acc.Balance,
		)
	}

	return acc, nil
}

func (e *Engine) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	const op = "delete account"

	if err := e.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return notFound("account", id.String())
		}

		return storeErr(op, err)
	}

	e.logger.Info("account deleted", "account_id", id)

	return nil
}

func (e *Engine) resolve(ctx context.Context, op, role, cpf string) (*account.Account, error) {
	acc, err := e.accounts.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, notFound(role, cpf)
		}

		return nil, storeErr(op, err)
	}

	return acc, nil
}

// move applies the debit and the credit of a transfer. Stores that support groups apply both
// at once; otherwise the debit goes first and is reversed if the credit fails.
func (e *Engine) move(ctx context.Context, op string, from, to *account.Account, amount int64) error {
	if group, ok := e.accounts.(account.GroupApplier); ok {
		_, err := group.ApplyBalanceDeltas(ctx, []account.Delta{
			{AccountID: from.ID, Amount: -amount},
			{AccountID: to.ID, Amount: amount},
		})

		if errors.Is(err, account.ErrBalanceOverflow) {
			return e.deltaErr(op, to.CPF, err)
		}

		return e.deltaErr(op, from.CPF, err)
	}

	if _, err := e.accounts.ApplyBalanceDelta(ctx, from.ID, -amount); err != nil {
		return e.deltaErr(op, from.CPF, err)
	}

	_, creditErr := e.accounts.ApplyBalanceDelta(ctx, to.ID, amount)
	if creditErr == nil {
		return nil
	}

	if _, err := e.accounts.ApplyBalanceDelta(context.WithoutCancel(ctx), from.ID, amount); err != nil {
		e.logger.Error("ledger inconsistent: debit could not be reversed after failed credit",
			"op", op,
			"debited_account_id", from.ID,
			"debited_cpf", from.CPF,
			"credited_account_id", to.ID,
			"credited_cpf", to.CPF,
			"amount", amount,
			"credit_error", creditErr,
			"error", err,
		)

		return &StorageError{Op: op, Err: fmt.Errorf("reversing debit of %s after credit failure (%v): %w", from.CPF, creditErr, err)}
	}

	e.logger.Warn("transfer credit failed, debit reversed",
		"op", op,
		"debited_cpf", from.CPF,
		"credited_cpf", to.CPF,
		"amount", amount,
		"error", creditErr,
	)

	return e.deltaErr(op, to.CPF, creditErr)
}

// deltaErr maps the result of a balance write. An account that disappeared between the read
// and the write is treated like a lost race: the retry re-reads and reports it as not found.
func (e *Engine) deltaErr(op, cpf string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, account.ErrNotFound):
		return fmt.Errorf("%s: account %s vanished during write: %w", op, cpf, account.ErrConflict)
	case errors.Is(err, account.ErrInsufficientFunds):
		return fmt.Errorf("%s: account %s: %w", op, cpf, ErrInsufficientFunds)
	case errors.Is(err, account.ErrBalanceOverflow):
		return balanceOverflow(cpf)
	}

	return storeErr(op, err)
}

// storeErr converts an account store error into the ledger taxonomy. Conflicts are passed
// through untouched so the retry loop can see them.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, account.ErrConflict):
		return err
	case errors.Is(err, account.ErrInsufficientFunds):
		return fmt.Errorf("%s: %w", op, ErrInsufficientFunds)
	case errors.Is(err, account.ErrDuplicateCPF):
		return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	case errors.Is(err, account.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return &StorageError{Op: op, Err: err}
}

func retryable(err error) bool {
	return errors.Is(err, account.ErrConflict) && !errors.Is(err, ErrStorage)
}

func (e *Engine) retry(ctx context.Context, op string, fn func() error) error {
	var err error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return &StorageError{Op: op, Err: ctxErr}
			}

			e.logger.Debug("retrying after conflict", "op", op, "attempt", attempt, "error", err)
		}

		err = fn()
		if !retryable(err) {
			return err
		}
	}

	e.logger.Warn("conflict retries exhausted", "op", op, "retries", e.maxRetries, "error", err)

	return fmt.Errorf("%s: %w after %d retries: %w", op, ErrConcurrencyConflict, e.maxRetries, err)
}

// record appends the transaction for a movement whose balances are already committed.
// A failure here leaves balances without a matching record, so it is logged with everything
// needed to reconcile by hand.
func (e *Engine) record(ctx context.Context, op string, details transaction.Details, accountIDs ...uuid.UUID) (uuid.UUID, error) {
	tx := &transaction.Transaction{
		ID:      uuid.New(),
		Details: details,
	}

	if err := e.transactions.Append(context.WithoutCancel(ctx), tx); err != nil {
		e.logger.Error("ledger inconsistent: balance applied without transaction record",
			"op", op,
			"transaction_id", tx.ID,
			"account_ids", accountIDs,
			"kind", details.Kind,
			"amount", details.Amount,
			"cpf", details.CPF,
			"receiver_cpf", details.ReceiverCPF,
			"depositer_cpf", details.DepositerCPF,
			"error", err,
		)

		return uuid.Nil, &StorageError{Op: op, Err: fmt.Errorf("recording transaction %s: %w", tx.ID, err)}
	}

	e.logger.Info("transaction recorded", "op", op, "transaction_id", tx.ID, "amount", details.Amount)

	return tx.ID, nil
}
